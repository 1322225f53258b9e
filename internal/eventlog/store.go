package eventlog

import (
	"context"

	"github.com/google/uuid"
)

func newUUID() uuid.UUID { return uuid.New() }

// Store is the event log contract. Implementations must guarantee:
//
//   - Append is atomic per call: the whole batch is durably recorded or none
//     of it is. Partial application must never be observable.
//   - Optimistic concurrency: Append fails with sentinel.ErrVersionConflict
//     when the stream head does not equal expectedVersion. Two writers racing
//     on the same expected version produce exactly one success.
//   - Within a stream, event order is total and matches version order.
type Store interface {
	// Append persists events atomically, assigning versions
	// expectedVersion+1 … expectedVersion+len(events), and returns the new
	// stream version. expectedVersion is 0 for a fresh stream.
	Append(ctx context.Context, aggregateID string, aggregateType AggregateType, expectedVersion int64, events []Event) (int64, error)

	// ReadStream returns the events of one aggregate with version >
	// fromVersion, in version order. Restartable: callers may re-read from
	// any version. An unknown aggregate yields an empty slice, not an error;
	// command semantics decide whether that means "fresh" or "missing".
	ReadStream(ctx context.Context, aggregateID string, fromVersion int64) ([]Event, error)

	// StreamVersion returns the current head version of a stream, 0 when the
	// stream does not exist.
	StreamVersion(ctx context.Context, aggregateID string) (int64, error)

	// ReadRecent returns the most recent events across all streams, ordered
	// by occurred-at descending. Diagnostic use only.
	ReadRecent(ctx context.Context, limit int) ([]Event, error)

	// ReadByType returns events of one aggregate type ordered by occurred-at
	// descending. Diagnostic use only.
	ReadByType(ctx context.Context, aggregateType AggregateType) ([]Event, error)

	// ReadSince returns up to limit events with a global sequence greater
	// than afterSeq, in append order, together with the sequence of the last
	// returned event. Consumed by the relay and projector watermark loops.
	ReadSince(ctx context.Context, afterSeq int64, limit int) ([]Event, int64, error)

	// CountsByType returns event counts grouped by aggregate and event type.
	CountsByType(ctx context.Context) ([]TypeCount, error)
}
