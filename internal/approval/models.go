// Package approval owns the MonthlyApproval aggregate and the multi-stream
// workflow that cascades submission, approval and rejection across every
// work-log entry and absence of one member-month.
package approval

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tempo/internal/aggregate"
	"tempo/internal/eventlog"
	id "tempo/pkg/domain"
)

const (
	EventMonthSubmitted eventlog.EventType = "month_submitted_for_approval"
	EventMonthApproved  eventlog.EventType = "month_approved"
	EventMonthRejected  eventlog.EventType = "month_rejected"
)

// approvalNamespace seeds the deterministic approval aggregate ID. One
// approval stream exists per member-month; deriving the ID from the pair
// means the first submission creates the stream and every later command
// finds it without a lookup table.
var approvalNamespace = uuid.MustParse("9f2c1a57-6f3e-4bd0-8c25-5f6c2f1d0a11")

// ApprovalIDFor returns the aggregate ID of a member-month's approval cycle.
func ApprovalIDFor(memberID id.MemberID, month id.Month) id.ApprovalID {
	name := memberID.String() + "|" + month.String()
	return id.ApprovalID(uuid.NewSHA1(approvalNamespace, []byte(name)))
}

// MonthSubmittedPayload captures the membership sets as immutable snapshots
// at submission time. Approval and rejection cascade over exactly these IDs,
// not over whatever exists later.
type MonthSubmittedPayload struct {
	TenantID    id.TenantID    `json:"tenant_id"`
	MemberID    id.MemberID    `json:"member_id"`
	Month       id.Month       `json:"month"`
	EntryIDs    []id.EntryID   `json:"work_log_entry_ids"`
	AbsenceIDs  []id.AbsenceID `json:"absence_ids"`
	SubmittedBy id.MemberID    `json:"submitted_by"`
	SubmittedAt time.Time      `json:"submitted_at"`
}

// ReviewPayload records who reviewed the month and when.
type ReviewPayload struct {
	ReviewedBy id.MemberID `json:"reviewed_by"`
	ReviewedAt time.Time   `json:"reviewed_at"`
}

// Approval is the folded state of one member-month approval stream. It is
// never deleted: the stream is the permanent audit trail of the cycle,
// including re-submissions after rejection.
type Approval struct {
	ID          id.ApprovalID    `json:"id"`
	TenantID    id.TenantID      `json:"tenant_id"`
	MemberID    id.MemberID      `json:"member_id"`
	Month       id.Month         `json:"month"`
	EntryIDs    []id.EntryID     `json:"work_log_entry_ids"`
	AbsenceIDs  []id.AbsenceID   `json:"absence_ids"`
	Stat        aggregate.Status `json:"status"`
	SubmittedBy id.MemberID      `json:"submitted_by"`
	SubmittedAt time.Time        `json:"submitted_at"`
	ReviewedBy  id.MemberID      `json:"reviewed_by"`
	ReviewedAt  time.Time        `json:"reviewed_at"`
}

func (a *Approval) AggregateType() eventlog.AggregateType { return eventlog.AggregateMonthlyApproval }

func (a *Approval) Status() aggregate.Status { return a.Stat }

// Apply folds one event.
func (a *Approval) Apply(event eventlog.Event) error {
	switch event.Type {
	case EventMonthSubmitted:
		var payload MonthSubmittedPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("decode %s: %w", event.Type, err)
		}
		approvalID, err := id.ParseApprovalID(event.AggregateID)
		if err != nil {
			return err
		}
		a.ID = approvalID
		a.TenantID = payload.TenantID
		a.MemberID = payload.MemberID
		a.Month = payload.Month
		a.EntryIDs = payload.EntryIDs
		a.AbsenceIDs = payload.AbsenceIDs
		a.SubmittedBy = payload.SubmittedBy
		a.SubmittedAt = payload.SubmittedAt
		a.Stat = aggregate.StatusSubmitted
		// A re-submission opens a fresh review.
		a.ReviewedBy = id.MemberID{}
		a.ReviewedAt = time.Time{}
	case EventMonthApproved:
		var payload ReviewPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("decode %s: %w", event.Type, err)
		}
		a.ReviewedBy = payload.ReviewedBy
		a.ReviewedAt = payload.ReviewedAt
		a.Stat = aggregate.StatusApproved
	case EventMonthRejected:
		var payload ReviewPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("decode %s: %w", event.Type, err)
		}
		a.ReviewedBy = payload.ReviewedBy
		a.ReviewedAt = payload.ReviewedAt
		a.Stat = aggregate.StatusRejected
	}
	return nil
}
