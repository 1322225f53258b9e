package projection

import (
	"context"
	"fmt"
	"log"
	"time"

	"tempo/internal/eventlog"
	"tempo/internal/projection/metrics"
)

const (
	defaultBatchSize    = 256
	defaultPollInterval = 250 * time.Millisecond
)

// View is a read model the projector feeds. Apply must be idempotent per
// event since a crash between applying and advancing the cursor replays the
// tail of the feed.
type View interface {
	Apply(event eventlog.Event) error
}

// Projector tails the global event feed and folds each event into a view,
// advancing per-aggregate watermarks and the feed cursor as it goes.
type Projector struct {
	events eventlog.Store
	marks  WatermarkStore
	view   View

	log      *log.Logger
	metrics  *metrics.Metrics
	batch    int
	interval time.Duration
}

// Option customises a Projector.
type Option func(*Projector)

func WithLogger(logger *log.Logger) Option {
	return func(p *Projector) { p.log = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Projector) { p.metrics = m }
}

func WithBatchSize(n int) Option {
	return func(p *Projector) {
		if n > 0 {
			p.batch = n
		}
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(p *Projector) {
		if d > 0 {
			p.interval = d
		}
	}
}

func NewProjector(events eventlog.Store, marks WatermarkStore, view View, opts ...Option) *Projector {
	p := &Projector{
		events:   events,
		marks:    marks,
		view:     view,
		log:      log.Default(),
		batch:    defaultBatchSize,
		interval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run polls the feed until the context is cancelled. Poisoned events are
// logged and skipped rather than wedging the projection; the watermark still
// advances so the checker reports them as processed.
func (p *Projector) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if _, err := p.CatchUp(ctx); err != nil {
			p.log.Printf("projection: catch-up failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// CatchUp drains the feed from the stored cursor to its current end and
// returns how many events it consumed. It is the single-pass body of Run,
// exposed so tests and diagnostics can drive the projection synchronously.
func (p *Projector) CatchUp(ctx context.Context) (int, error) {
	cursor, err := p.marks.Cursor(ctx)
	if err != nil {
		return 0, fmt.Errorf("load cursor: %w", err)
	}

	consumed := 0
	for {
		events, last, err := p.events.ReadSince(ctx, cursor, p.batch)
		if err != nil {
			return consumed, fmt.Errorf("read feed after %d: %w", cursor, err)
		}
		if len(events) == 0 {
			return consumed, nil
		}

		for _, event := range events {
			if err := p.view.Apply(event); err != nil {
				p.log.Printf("projection: skipping event %s (%s v%d): %v",
					event.ID, event.AggregateID, event.Version, err)
				if p.metrics != nil {
					p.metrics.EventsSkipped.Inc()
				}
			} else if p.metrics != nil {
				p.metrics.EventsProjected.Inc()
			}
			if err := p.marks.SetVersion(ctx, event.AggregateID, event.Version); err != nil {
				return consumed, fmt.Errorf("advance watermark for %s: %w", event.AggregateID, err)
			}
			consumed++
		}

		if err := p.marks.SetCursor(ctx, last); err != nil {
			return consumed, fmt.Errorf("advance cursor to %d: %w", last, err)
		}
		cursor = last
	}
}
