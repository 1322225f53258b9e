// Package eventlog is the append-only, per-aggregate-stream event store. It
// is the single source of truth: aggregate state is always a fold of a
// stream, snapshots and projections are disposable caches derived from it.
package eventlog

import (
	"encoding/json"
	"time"

	id "tempo/pkg/domain"
)

// AggregateType discriminates event streams by the kind of aggregate they
// belong to.
type AggregateType string

const (
	AggregateWorkLogEntry         AggregateType = "work_log_entry"
	AggregateAbsence              AggregateType = "absence"
	AggregateMonthlyApproval      AggregateType = "monthly_approval"
	AggregateTenant               AggregateType = "tenant"
	AggregateOrganization         AggregateType = "organization"
	AggregateFiscalYearPattern    AggregateType = "fiscal_year_pattern"
	AggregateMonthlyPeriodPattern AggregateType = "monthly_period_pattern"
)

// AggregateTypes lists every aggregate type the log stores.
var AggregateTypes = []AggregateType{
	AggregateWorkLogEntry,
	AggregateAbsence,
	AggregateMonthlyApproval,
	AggregateTenant,
	AggregateOrganization,
	AggregateFiscalYearPattern,
	AggregateMonthlyPeriodPattern,
}

// EventType discriminates events within a stream. Each feature package
// declares its own constants next to the payloads they describe.
type EventType string

// Event is one immutable fact recorded against an aggregate stream. Version
// is the aggregate version resulting from this event, strictly increasing
// per stream starting at 1. Events are never mutated or deleted once
// appended; corrections are made by appending compensating events.
type Event struct {
	ID            id.EventID      `json:"id"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType AggregateType   `json:"aggregate_type"`
	Type          EventType       `json:"type"`
	Version       int64           `json:"version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

// NewEvent builds an unversioned event; Append assigns the version when the
// batch is durably recorded.
func NewEvent(aggregateID string, aggregateType AggregateType, eventType EventType, occurredAt time.Time, payload any) (Event, error) {
	var raw json.RawMessage
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return Event{}, err
		}
		raw = encoded
	}
	return Event{
		ID:            id.EventID(newUUID()),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		Type:          eventType,
		OccurredAt:    occurredAt,
		Payload:       raw,
	}, nil
}

// TypeCount is one row of the diagnostic counts-by-type query.
type TypeCount struct {
	AggregateType AggregateType `json:"aggregate_type"`
	EventType     EventType     `json:"event_type"`
	Count         int64         `json:"count"`
}
