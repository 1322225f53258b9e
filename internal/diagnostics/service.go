// Package diagnostics exposes read-only inspection of the event log and the
// projection pipeline for operators and support tooling. Nothing here
// mutates state.
package diagnostics

import (
	"context"

	"tempo/internal/eventlog"
	"tempo/internal/projection"
	dErrors "tempo/pkg/domain-errors"
)

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 500
)

// Service answers operator queries against the log and the checker.
type Service struct {
	events  eventlog.Store
	checker *projection.Checker
}

func NewService(events eventlog.Store, checker *projection.Checker) *Service {
	return &Service{events: events, checker: checker}
}

// EventsFor returns the full ordered history of one aggregate, payloads
// included.
func (s *Service) EventsFor(ctx context.Context, aggregateID string) ([]eventlog.Event, error) {
	if aggregateID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "aggregate id is required")
	}
	events, err := s.events.ReadStream(ctx, aggregateID, 0)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "no events for aggregate %s", aggregateID)
	}
	return events, nil
}

// RecentEvents returns the newest events across all streams, newest first.
// A non-positive limit falls back to the default; oversized limits are
// clamped so a single query cannot drag the whole log over the wire.
func (s *Service) RecentEvents(ctx context.Context, limit int) ([]eventlog.Event, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	return s.events.ReadRecent(ctx, limit)
}

// EventCountsByType returns the number of stored events per aggregate and
// event type.
func (s *Service) EventCountsByType(ctx context.Context) ([]eventlog.TypeCount, error) {
	return s.events.CountsByType(ctx)
}

// ProjectionConsistency reports whether the projection has caught up with one
// aggregate's stream.
func (s *Service) ProjectionConsistency(ctx context.Context, aggregateID string) (projection.ConsistencyResult, error) {
	if aggregateID == "" {
		return projection.ConsistencyResult{}, dErrors.New(dErrors.CodeBadRequest, "aggregate id is required")
	}
	return s.checker.Check(ctx, aggregateID)
}
