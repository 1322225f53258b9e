package snapshot

import (
	"context"
	"encoding/json"
	"sync"

	"tempo/pkg/platform/sentinel"
)

// InMemory is a map-backed snapshot cache for unit tests and local runs.
type InMemory struct {
	mu        sync.RWMutex
	snapshots map[string]Snapshot
}

func NewInMemory() *InMemory {
	return &InMemory{snapshots: make(map[string]Snapshot)}
}

func (s *InMemory) Save(ctx context.Context, aggregateID string, version int64, state json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Never replace a newer snapshot with an older one; concurrent saves may
	// land out of order.
	if existing, ok := s.snapshots[aggregateID]; ok && existing.Version >= version {
		return nil
	}
	stored := make(json.RawMessage, len(state))
	copy(stored, state)
	s.snapshots[aggregateID] = Snapshot{AggregateID: aggregateID, Version: version, State: stored}
	return nil
}

func (s *InMemory) LoadLatest(ctx context.Context, aggregateID string) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[aggregateID]
	if !ok {
		return Snapshot{}, sentinel.ErrNotFound
	}
	return snap, nil
}

func (s *InMemory) Delete(ctx context.Context, aggregateID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, aggregateID)
	return nil
}
