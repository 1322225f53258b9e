// Package worklog owns the WorkLogEntry aggregate: one member's logged hours
// against a project on a single day.
package worklog

import (
	"encoding/json"
	"fmt"
	"time"

	"tempo/internal/aggregate"
	"tempo/internal/eventlog"
	id "tempo/pkg/domain"
)

const (
	EventEntryCreated         eventlog.EventType = "work_log_entry_created"
	EventEntryEdited          eventlog.EventType = "work_log_entry_edited"
	EventEntryDeleted         eventlog.EventType = "work_log_entry_deleted"
	EventEntrySubmitted       eventlog.EventType = "work_log_entry_submitted"
	EventEntryApproved        eventlog.EventType = "work_log_entry_approved"
	EventEntryRejected        eventlog.EventType = "work_log_entry_rejected"
	EventEntryReturnedToDraft eventlog.EventType = "work_log_entry_returned_to_draft"
	// EventEntryCascadeReverted is a corrective fact appended by the approval
	// workflow's compensation path. It restores the pre-workflow status when
	// a cascade could not complete, the way a ledger records a reversal
	// instead of editing history. It is not reachable through commands and
	// bypasses the command transition table.
	EventEntryCascadeReverted eventlog.EventType = "work_log_entry_cascade_reverted"
)

// EntryCreatedPayload is the immutable creation fact.
type EntryCreatedPayload struct {
	TenantID id.TenantID `json:"tenant_id"`
	MemberID id.MemberID `json:"member_id"`
	Project  string      `json:"project"`
	Date     string      `json:"date"` // YYYY-MM-DD
	Hours    float64     `json:"hours"`
	Note     string      `json:"note,omitempty"`
}

// EntryEditedPayload carries the replaced mutable fields.
type EntryEditedPayload struct {
	Project string  `json:"project"`
	Date    string  `json:"date"`
	Hours   float64 `json:"hours"`
	Note    string  `json:"note,omitempty"`
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

// Entry is the folded state of one work-log entry stream.
type Entry struct {
	ID        id.EntryID       `json:"id"`
	TenantID  id.TenantID      `json:"tenant_id"`
	MemberID  id.MemberID      `json:"member_id"`
	Project   string           `json:"project"`
	Date      string           `json:"date"`
	Hours     float64          `json:"hours"`
	Note      string           `json:"note,omitempty"`
	EntryStat aggregate.Status `json:"status"`
	Deleted   bool             `json:"deleted"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (e *Entry) AggregateType() eventlog.AggregateType { return eventlog.AggregateWorkLogEntry }

func (e *Entry) Status() aggregate.Status { return e.EntryStat }

// Apply folds one event. Unknown event types are ignored so streams written
// by newer code remain foldable.
func (e *Entry) Apply(event eventlog.Event) error {
	switch event.Type {
	case EventEntryCreated:
		var payload EntryCreatedPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("decode %s: %w", event.Type, err)
		}
		entryID, err := id.ParseEntryID(event.AggregateID)
		if err != nil {
			return err
		}
		e.ID = entryID
		e.TenantID = payload.TenantID
		e.MemberID = payload.MemberID
		e.Project = payload.Project
		e.Date = payload.Date
		e.Hours = payload.Hours
		e.Note = payload.Note
		e.EntryStat = aggregate.StatusDraft
		e.CreatedAt = event.OccurredAt
	case EventEntryEdited:
		var payload EntryEditedPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("decode %s: %w", event.Type, err)
		}
		e.Project = payload.Project
		e.Date = payload.Date
		e.Hours = payload.Hours
		e.Note = payload.Note
	case EventEntryDeleted:
		e.Deleted = true
	case EventEntrySubmitted:
		e.EntryStat = aggregate.StatusSubmitted
	case EventEntryApproved:
		e.EntryStat = aggregate.StatusApproved
	case EventEntryRejected:
		e.EntryStat = aggregate.StatusRejected
	case EventEntryReturnedToDraft:
		e.EntryStat = aggregate.StatusDraft
	case EventEntryCascadeReverted:
		var payload CascadeRevertedPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("decode %s: %w", event.Type, err)
		}
		e.EntryStat = payload.RestoredStatus
	}
	e.UpdatedAt = event.OccurredAt
	return nil
}
