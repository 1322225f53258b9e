package eventlog

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"tempo/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded event log used in unit tests and local
// development. Semantics mirror the PostgreSQL store, including the
// optimistic-concurrency contract.
type InMemory struct {
	mu      sync.Mutex
	streams map[string][]Event
	global  []Event // append order, global sequence = index+1
}

func NewInMemory() *InMemory {
	return &InMemory{streams: make(map[string][]Event)}
}

func (s *InMemory) Append(ctx context.Context, aggregateID string, aggregateType AggregateType, expectedVersion int64, events []Event) (int64, error) {
	if len(events) == 0 {
		return 0, fmt.Errorf("append: empty batch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stream := s.streams[aggregateID]
	current := int64(len(stream))
	if current != expectedVersion {
		return 0, fmt.Errorf("append %s at version %d, head is %d: %w",
			aggregateID, expectedVersion, current, sentinel.ErrVersionConflict)
	}

	for i, event := range events {
		event.AggregateID = aggregateID
		event.AggregateType = aggregateType
		event.Version = expectedVersion + int64(i) + 1
		stream = append(stream, event)
		s.global = append(s.global, event)
	}
	s.streams[aggregateID] = stream
	return int64(len(stream)), nil
}

func (s *InMemory) ReadStream(ctx context.Context, aggregateID string, fromVersion int64) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stream := s.streams[aggregateID]
	if fromVersion >= int64(len(stream)) {
		return nil, nil
	}
	out := make([]Event, len(stream[fromVersion:]))
	copy(out, stream[fromVersion:])
	return out, nil
}

func (s *InMemory) StreamVersion(ctx context.Context, aggregateID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.streams[aggregateID])), nil
}

func (s *InMemory) ReadRecent(ctx context.Context, limit int) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Event, len(s.global))
	copy(out, s.global)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemory) ReadByType(ctx context.Context, aggregateType AggregateType) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Event
	for _, event := range s.global {
		if event.AggregateType == aggregateType {
			out = append(out, event)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})
	return out, nil
}

func (s *InMemory) ReadSince(ctx context.Context, afterSeq int64, limit int) ([]Event, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if afterSeq >= int64(len(s.global)) {
		return nil, afterSeq, nil
	}
	tail := s.global[afterSeq:]
	if limit > 0 && limit < len(tail) {
		tail = tail[:limit]
	}
	out := make([]Event, len(tail))
	copy(out, tail)
	return out, afterSeq + int64(len(out)), nil
}

func (s *InMemory) CountsByType(ctx context.Context) ([]TypeCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[AggregateType]map[EventType]int64)
	for _, event := range s.global {
		if counts[event.AggregateType] == nil {
			counts[event.AggregateType] = make(map[EventType]int64)
		}
		counts[event.AggregateType][event.Type]++
	}

	var out []TypeCount
	for aggregateType, byEvent := range counts {
		for eventType, n := range byEvent {
			out = append(out, TypeCount{AggregateType: aggregateType, EventType: eventType, Count: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AggregateType != out[j].AggregateType {
			return out[i].AggregateType < out[j].AggregateType
		}
		return out[i].EventType < out[j].EventType
	})
	return out, nil
}
