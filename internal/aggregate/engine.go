package aggregate

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	enginemetrics "tempo/internal/aggregate/metrics"
	"tempo/internal/eventlog"
	"tempo/internal/snapshot"
	dErrors "tempo/pkg/domain-errors"
	"tempo/pkg/platform/sentinel"
)

// State is the in-memory shape of one aggregate. Implementations are plain
// JSON-encodable structs; the engine owns a State only for the duration of a
// command and never persists it except as a snapshot.
type State interface {
	AggregateType() eventlog.AggregateType
	Status() Status
	// Apply folds one event onto the state. It must be deterministic and
	// tolerate payloads written by older schema versions.
	Apply(event eventlog.Event) error
}

// Decide inspects the rehydrated state and returns the events a command
// produces. Returning no events makes the command a no-op.
type Decide func(state State, version int64) ([]eventlog.Event, error)

// DefaultRetries bounds rehydrate-and-retry cycles after append conflicts.
const DefaultRetries = 3

// Engine implements the generic rehydrate-validate-apply cycle.
type Engine struct {
	events        eventlog.Store
	snapshots     snapshot.Store
	log           *log.Logger
	metrics       *enginemetrics.Metrics
	snapshotEvery int64
	retries       int
}

type engineConfig struct {
	log           *log.Logger
	metrics       *enginemetrics.Metrics
	snapshotEvery int64
	retries       int
}

// Option configures an Engine.
type Option func(*engineConfig)

// WithLogger sets the logger used for swallowed snapshot failures.
func WithLogger(l *log.Logger) Option {
	return func(cfg *engineConfig) { cfg.log = l }
}

// WithMetrics attaches engine metrics.
func WithMetrics(m *enginemetrics.Metrics) Option {
	return func(cfg *engineConfig) { cfg.metrics = m }
}

// WithSnapshotEvery sets the snapshot threshold N: a snapshot is taken once
// N events accumulate past the previous one.
func WithSnapshotEvery(n int64) Option {
	return func(cfg *engineConfig) { cfg.snapshotEvery = n }
}

// WithRetries caps rehydrate-and-retry cycles on append conflict.
func WithRetries(n int) Option {
	return func(cfg *engineConfig) { cfg.retries = n }
}

// NewEngine builds an Engine. snapshots may be nil, in which case every
// rehydration replays the full stream.
func NewEngine(events eventlog.Store, snapshots snapshot.Store, opts ...Option) *Engine {
	cfg := &engineConfig{
		snapshotEvery: snapshot.DefaultThreshold,
		retries:       DefaultRetries,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.log == nil {
		cfg.log = log.Default()
	}
	return &Engine{
		events:        events,
		snapshots:     snapshots,
		log:           cfg.log,
		metrics:       cfg.metrics,
		snapshotEvery: cfg.snapshotEvery,
		retries:       cfg.retries,
	}
}

// EventStore exposes the underlying log for read-only collaborators
// (diagnostics, projections).
func (e *Engine) EventStore() eventlog.Store { return e.events }

// Rehydrate folds the aggregate's history onto state and returns the current
// version. State starts from the latest snapshot when one exists, otherwise
// from the type's zero value.
func (e *Engine) Rehydrate(ctx context.Context, aggregateID string, state State) (int64, error) {
	version, _, err := e.rehydrate(ctx, aggregateID, state)
	return version, err
}

func (e *Engine) rehydrate(ctx context.Context, aggregateID string, state State) (version, snapshotVersion int64, err error) {
	if e.metrics != nil {
		e.metrics.Rehydrations.Inc()
	}

	if e.snapshots != nil {
		snap, err := e.snapshots.LoadLatest(ctx, aggregateID)
		switch {
		case err == nil:
			if err := json.Unmarshal(snap.State, state); err != nil {
				// A corrupt snapshot is disposable: fall back to full replay.
				e.log.Printf("snapshot for %s unreadable, replaying full stream: %v", aggregateID, err)
			} else {
				snapshotVersion = snap.Version
				if e.metrics != nil {
					e.metrics.SnapshotHits.Inc()
				}
			}
		case errors.Is(err, sentinel.ErrNotFound):
			if e.metrics != nil {
				e.metrics.SnapshotMisses.Inc()
			}
		default:
			// Snapshot store trouble never fails a command.
			e.log.Printf("snapshot load for %s failed, replaying full stream: %v", aggregateID, err)
		}
	}

	events, err := e.events.ReadStream(ctx, aggregateID, snapshotVersion)
	if err != nil {
		return 0, 0, dErrors.Wrap(err, dErrors.CodeInternal, "read event stream")
	}

	version = snapshotVersion
	for _, event := range events {
		if err := state.Apply(event); err != nil {
			return 0, 0, dErrors.Wrap(err, dErrors.CodeInternal, "fold event")
		}
		version = event.Version
	}
	return version, snapshotVersion, nil
}

// Execute runs one command: rehydrate, decide, append at the expected
// version. mustExist distinguishes mutation commands (which fail with
// not-found on a fresh stream) from creation commands. Conflicts are retried
// with a fresh rehydrate up to the configured cap, then surfaced as
// CodeConflict.
func (e *Engine) Execute(ctx context.Context, aggregateID string, newState func() State, mustExist bool, decide Decide) (int64, error) {
	for attempt := 0; ; attempt++ {
		state := newState()
		version, snapshotVersion, err := e.rehydrate(ctx, aggregateID, state)
		if err != nil {
			return 0, err
		}
		if mustExist && version == 0 {
			return 0, dErrors.Newf(dErrors.CodeNotFound, "%s %s not found", state.AggregateType(), aggregateID)
		}

		events, err := decide(state, version)
		if err != nil {
			return 0, err
		}
		if len(events) == 0 {
			return version, nil
		}

		newVersion, err := e.events.Append(ctx, aggregateID, state.AggregateType(), version, events)
		if err == nil {
			e.maybeSnapshot(ctx, aggregateID, state, events, newVersion, snapshotVersion)
			return newVersion, nil
		}
		if !errors.Is(err, sentinel.ErrVersionConflict) {
			return 0, dErrors.Wrap(err, dErrors.CodeInternal, "append events")
		}
		if attempt >= e.retries {
			return 0, dErrors.Wrap(err, dErrors.CodeConflict, "concurrent update, retries exhausted")
		}
		if e.metrics != nil {
			e.metrics.AppendRetries.Inc()
		}
	}
}

// maybeSnapshot folds the freshly appended events onto state and saves a
// snapshot when the threshold is crossed. Fire-and-forget: saving never
// blocks or fails the command that triggered it.
func (e *Engine) maybeSnapshot(ctx context.Context, aggregateID string, state State, appended []eventlog.Event, newVersion, snapshotVersion int64) {
	if e.snapshots == nil || !snapshot.Due(e.snapshotEvery, newVersion, snapshotVersion) {
		return
	}

	version := newVersion - int64(len(appended))
	for i := range appended {
		appended[i].AggregateID = aggregateID
		appended[i].Version = version + int64(i) + 1
		if err := state.Apply(appended[i]); err != nil {
			e.log.Printf("snapshot fold for %s failed: %v", aggregateID, err)
			return
		}
	}

	body, err := json.Marshal(state)
	if err != nil {
		e.log.Printf("snapshot marshal for %s failed: %v", aggregateID, err)
		return
	}

	// Detached from the request context so a finished command cannot cancel
	// the write mid-flight.
	saveCtx := context.WithoutCancel(ctx)
	go func() {
		if err := e.snapshots.Save(saveCtx, aggregateID, newVersion, body); err != nil {
			if e.metrics != nil {
				e.metrics.SnapshotsFailed.Inc()
			}
			e.log.Printf("snapshot save for %s at version %d failed: %v", aggregateID, newVersion, err)
			return
		}
		if e.metrics != nil {
			e.metrics.SnapshotsTaken.Inc()
		}
	}()
}
