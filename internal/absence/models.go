// Package absence owns the Absence aggregate: a member's vacation, sick
// leave or day off over a date range. Its status machine mirrors the
// work-log entry's four-state approval cycle.
package absence

import (
	"encoding/json"
	"fmt"
	"time"

	"tempo/internal/aggregate"
	"tempo/internal/eventlog"
	id "tempo/pkg/domain"
)

// Type classifies an absence.
type Type string

const (
	TypeVacation  Type = "vacation"
	TypeSickLeave Type = "sick_leave"
	TypeDayOff    Type = "day_off"
)

// IsValid reports whether the type is one of the closed set.
func (t Type) IsValid() bool {
	switch t {
	case TypeVacation, TypeSickLeave, TypeDayOff:
		return true
	}
	return false
}

const (
	EventAbsenceCreated         eventlog.EventType = "absence_created"
	EventAbsenceEdited          eventlog.EventType = "absence_edited"
	EventAbsenceDeleted         eventlog.EventType = "absence_deleted"
	EventAbsenceSubmitted       eventlog.EventType = "absence_submitted"
	EventAbsenceApproved        eventlog.EventType = "absence_approved"
	EventAbsenceRejected        eventlog.EventType = "absence_rejected"
	EventAbsenceReturnedToDraft eventlog.EventType = "absence_returned_to_draft"
	// EventAbsenceCascadeReverted is the workflow compensation fact; see the
	// work-log entry counterpart.
	EventAbsenceCascadeReverted eventlog.EventType = "absence_cascade_reverted"
)

// AbsenceCreatedPayload is the immutable creation fact.
type AbsenceCreatedPayload struct {
	TenantID  id.TenantID `json:"tenant_id"`
	MemberID  id.MemberID `json:"member_id"`
	Type      Type        `json:"type"`
	StartDate string      `json:"start_date"` // YYYY-MM-DD
	EndDate   string      `json:"end_date"`
	Note      string      `json:"note,omitempty"`
}

// AbsenceEditedPayload carries the replaced mutable fields.
type AbsenceEditedPayload struct {
	Type      Type   `json:"type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Note      string `json:"note,omitempty"`
}

// TransitionPayload records who drove a status transition.
type TransitionPayload struct {
	Actor      id.MemberID   `json:"actor"`
	ApprovalID id.ApprovalID `json:"approval_id,omitempty"`
}

// CascadeRevertedPayload restores a child to its pre-cascade status.
type CascadeRevertedPayload struct {
	RestoredStatus aggregate.Status `json:"restored_status"`
	Reason         string           `json:"reason,omitempty"`
}

// Absence is the folded state of one absence stream.
type Absence struct {
	ID         id.AbsenceID     `json:"id"`
	TenantID   id.TenantID      `json:"tenant_id"`
	MemberID   id.MemberID      `json:"member_id"`
	Type       Type             `json:"type"`
	StartDate  string           `json:"start_date"`
	EndDate    string           `json:"end_date"`
	Note       string           `json:"note,omitempty"`
	AbsentStat aggregate.Status `json:"status"`
	Deleted    bool             `json:"deleted"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func (a *Absence) AggregateType() eventlog.AggregateType { return eventlog.AggregateAbsence }

func (a *Absence) Status() aggregate.Status { return a.AbsentStat }

// Apply folds one event. Unknown event types are ignored so streams written
// by newer code remain foldable.
func (a *Absence) Apply(event eventlog.Event) error {
	switch event.Type {
	case EventAbsenceCreated:
		var payload AbsenceCreatedPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("decode %s: %w", event.Type, err)
		}
		absenceID, err := id.ParseAbsenceID(event.AggregateID)
		if err != nil {
			return err
		}
		a.ID = absenceID
		a.TenantID = payload.TenantID
		a.MemberID = payload.MemberID
		a.Type = payload.Type
		a.StartDate = payload.StartDate
		a.EndDate = payload.EndDate
		a.Note = payload.Note
		a.AbsentStat = aggregate.StatusDraft
		a.CreatedAt = event.OccurredAt
	case EventAbsenceEdited:
		var payload AbsenceEditedPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("decode %s: %w", event.Type, err)
		}
		a.Type = payload.Type
		a.StartDate = payload.StartDate
		a.EndDate = payload.EndDate
		a.Note = payload.Note
	case EventAbsenceDeleted:
		a.Deleted = true
	case EventAbsenceSubmitted:
		a.AbsentStat = aggregate.StatusSubmitted
	case EventAbsenceApproved:
		a.AbsentStat = aggregate.StatusApproved
	case EventAbsenceRejected:
		a.AbsentStat = aggregate.StatusRejected
	case EventAbsenceReturnedToDraft:
		a.AbsentStat = aggregate.StatusDraft
	case EventAbsenceCascadeReverted:
		var payload CascadeRevertedPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("decode %s: %w", event.Type, err)
		}
		a.AbsentStat = payload.RestoredStatus
	}
	a.UpdatedAt = event.OccurredAt
	return nil
}
