// Package domain holds the typed identifiers and small value objects shared
// across the module. IDs are distinct types over uuid.UUID so an AbsenceID
// cannot be passed where an EntryID is expected.
package domain

import (
	"fmt"

	"github.com/google/uuid"
)

type (
	// TenantID identifies a tenant organization.
	TenantID uuid.UUID

	// OrganizationID identifies an organization within a tenant.
	OrganizationID uuid.UUID

	// MemberID identifies a member (employee) logging time.
	MemberID uuid.UUID

	// EntryID identifies a work-log entry aggregate.
	EntryID uuid.UUID

	// AbsenceID identifies an absence aggregate.
	AbsenceID uuid.UUID

	// ApprovalID identifies a monthly approval aggregate.
	ApprovalID uuid.UUID

	// PatternID identifies a fiscal-year or monthly-period pattern aggregate.
	PatternID uuid.UUID

	// EventID identifies a single event in the log.
	EventID uuid.UUID
)

func (id TenantID) String() string       { return uuid.UUID(id).String() }
func (id OrganizationID) String() string { return uuid.UUID(id).String() }
func (id MemberID) String() string       { return uuid.UUID(id).String() }
func (id EntryID) String() string        { return uuid.UUID(id).String() }
func (id AbsenceID) String() string      { return uuid.UUID(id).String() }
func (id ApprovalID) String() string     { return uuid.UUID(id).String() }
func (id PatternID) String() string      { return uuid.UUID(id).String() }
func (id EventID) String() string        { return uuid.UUID(id).String() }

func (id TenantID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id OrganizationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id MemberID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id EntryID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id AbsenceID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id ApprovalID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id PatternID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id EventID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }

// The text codecs delegate to uuid.UUID so IDs serialize as canonical UUID
// strings everywhere encoding/json is involved: event payloads, snapshot
// state, and relay envelopes.
func (id TenantID) MarshalText() ([]byte, error)       { return uuid.UUID(id).MarshalText() }
func (id OrganizationID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id MemberID) MarshalText() ([]byte, error)       { return uuid.UUID(id).MarshalText() }
func (id EntryID) MarshalText() ([]byte, error)        { return uuid.UUID(id).MarshalText() }
func (id AbsenceID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }
func (id ApprovalID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id PatternID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }
func (id EventID) MarshalText() ([]byte, error)        { return uuid.UUID(id).MarshalText() }

func (id *TenantID) UnmarshalText(b []byte) error       { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *OrganizationID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *MemberID) UnmarshalText(b []byte) error       { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *EntryID) UnmarshalText(b []byte) error        { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *AbsenceID) UnmarshalText(b []byte) error      { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *ApprovalID) UnmarshalText(b []byte) error     { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *PatternID) UnmarshalText(b []byte) error      { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *EventID) UnmarshalText(b []byte) error        { return (*uuid.UUID)(id).UnmarshalText(b) }

func parse(kind, s string) (uuid.UUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", kind, err)
	}
	return u, nil
}

func ParseTenantID(s string) (TenantID, error) {
	u, err := parse("tenant id", s)
	return TenantID(u), err
}

func ParseOrganizationID(s string) (OrganizationID, error) {
	u, err := parse("organization id", s)
	return OrganizationID(u), err
}

func ParseMemberID(s string) (MemberID, error) {
	u, err := parse("member id", s)
	return MemberID(u), err
}

func ParseEntryID(s string) (EntryID, error) {
	u, err := parse("entry id", s)
	return EntryID(u), err
}

func ParseAbsenceID(s string) (AbsenceID, error) {
	u, err := parse("absence id", s)
	return AbsenceID(u), err
}

func ParseApprovalID(s string) (ApprovalID, error) {
	u, err := parse("approval id", s)
	return ApprovalID(u), err
}

func ParsePatternID(s string) (PatternID, error) {
	u, err := parse("pattern id", s)
	return PatternID(u), err
}
