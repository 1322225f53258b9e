// Package snapshot caches point-in-time serialized aggregate state to
// shortcut event replay. Snapshots are never the source of truth: a snapshot
// at version V must equal the fold of all events with version <= V, and the
// whole store may be wiped and regenerated at any time without loss.
package snapshot

import (
	"context"
	"encoding/json"
)

// Snapshot is one cached fold result.
type Snapshot struct {
	AggregateID string          `json:"aggregate_id"`
	Version     int64           `json:"version"`
	State       json.RawMessage `json:"state"`
}

// Store is the snapshot cache contract. Save is best effort; a failed save
// must never fail the command that triggered it.
type Store interface {
	// Save records the fold of an aggregate at the given version,
	// overwriting any older snapshot for the aggregate.
	Save(ctx context.Context, aggregateID string, version int64, state json.RawMessage) error

	// LoadLatest returns the newest snapshot for the aggregate, or
	// sentinel.ErrNotFound when none exists.
	LoadLatest(ctx context.Context, aggregateID string) (Snapshot, error)

	// Delete drops the snapshot for an aggregate. Used by operations tooling;
	// rehydration must produce identical results with or without it.
	Delete(ctx context.Context, aggregateID string) error
}

// DefaultThreshold is the number of events accumulated past the last
// snapshot before a new one is taken.
const DefaultThreshold = 20

// Due reports whether a new snapshot should be taken, given the stream head
// and the version of the latest snapshot (0 when none).
func Due(threshold int64, headVersion, snapshotVersion int64) bool {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return headVersion-snapshotVersion >= threshold
}
