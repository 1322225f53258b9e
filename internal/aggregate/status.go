// Package aggregate provides the generic rehydrate-validate-apply cycle used
// by every aggregate type, and owns the per-type status state machines.
package aggregate

import (
	"sort"

	"tempo/internal/eventlog"
	dErrors "tempo/pkg/domain-errors"
)

// Status is an aggregate lifecycle status. Each aggregate type draws from a
// closed enumeration with an explicit adjacency table; an illegal transition
// is a business error, never a transient failure.
type Status string

const (
	// Approval-cycle statuses (work-log entries, absences, monthly approvals).
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"

	// Administrative statuses (tenants, organizations, period patterns).
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// approvalCycle is the shared transition table for WorkLogEntry, Absence and
// MonthlyApproval. SUBMITTED→DRAFT is the direct rejection shortcut: a
// rejected month returns its children straight to an editable state.
// APPROVED is terminal.
var approvalCycle = map[Status][]Status{
	StatusDraft:     {StatusSubmitted},
	StatusSubmitted: {StatusApproved, StatusRejected, StatusDraft},
	StatusRejected:  {StatusDraft, StatusSubmitted},
	StatusApproved:  {},
}

// adminCycle is the active↔inactive table for administrative aggregates.
var adminCycle = map[Status][]Status{
	StatusActive:   {StatusInactive},
	StatusInactive: {StatusActive},
}

var transitionTables = map[eventlog.AggregateType]map[Status][]Status{
	eventlog.AggregateWorkLogEntry:         approvalCycle,
	eventlog.AggregateAbsence:              approvalCycle,
	eventlog.AggregateMonthlyApproval:      approvalCycle,
	eventlog.AggregateTenant:               adminCycle,
	eventlog.AggregateOrganization:         adminCycle,
	eventlog.AggregateFiscalYearPattern:    adminCycle,
	eventlog.AggregateMonthlyPeriodPattern: adminCycle,
}

// CanTransition reports whether the type's table contains from→to.
func CanTransition(aggregateType eventlog.AggregateType, from, to Status) bool {
	table, ok := transitionTables[aggregateType]
	if !ok {
		return false
	}
	for _, allowed := range table[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AllowedFrom returns the transition targets reachable from a status, sorted
// for stable error messages.
func AllowedFrom(aggregateType eventlog.AggregateType, from Status) []Status {
	table, ok := transitionTables[aggregateType]
	if !ok {
		return nil
	}
	out := make([]Status, len(table[from]))
	copy(out, table[from])
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Statuses returns the closed status set of an aggregate type.
func Statuses(aggregateType eventlog.AggregateType) []Status {
	table, ok := transitionTables[aggregateType]
	if !ok {
		return nil
	}
	out := make([]Status, 0, len(table))
	for status := range table {
		out = append(out, status)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsEditable reports whether mutating commands are allowed in this status.
func (s Status) IsEditable() bool {
	return s == StatusDraft || s == StatusRejected
}

// IsDeletable mirrors IsEditable: only draft and rejected aggregates may be
// deleted.
func (s Status) IsDeletable() bool {
	return s.IsEditable()
}

// IsTerminal reports whether no further transition exists for this status in
// the type's table.
func IsTerminal(aggregateType eventlog.AggregateType, s Status) bool {
	return len(AllowedFrom(aggregateType, s)) == 0
}

// Transition validates from→to against the type's table and returns a coded
// error naming the current status, the requested status and the allowed set.
func Transition(aggregateType eventlog.AggregateType, from, to Status) error {
	if CanTransition(aggregateType, from, to) {
		return nil
	}
	return dErrors.Newf(dErrors.CodeInvalidTransition,
		"%s cannot move from %s to %s (allowed: %v)", aggregateType, from, to, AllowedFrom(aggregateType, from))
}

// RequireEditable returns a coded error when a mutating command targets a
// non-editable aggregate.
func RequireEditable(aggregateType eventlog.AggregateType, s Status) error {
	if s.IsEditable() {
		return nil
	}
	return dErrors.Newf(dErrors.CodeNotEditable,
		"%s in status %s is read-only", aggregateType, s)
}
