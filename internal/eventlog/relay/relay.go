// Package relay publishes committed events from the log to Kafka so external
// consumers (payroll exports, reporting) can follow the stream without
// touching the database. The log remains the source of truth; the relay is
// at-least-once delivery with a durable cursor, and records are keyed by
// aggregate id so per-stream order survives partitioning.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"tempo/internal/eventlog"
)

const (
	topicPrefix         = "tempo.events."
	defaultBatchSize    = 256
	defaultPollInterval = 500 * time.Millisecond
	defaultPartitions   = 6
)

// CursorStore persists the last relayed feed sequence so a restarted relay
// resumes instead of republishing the whole log.
type CursorStore interface {
	Cursor(ctx context.Context) (int64, error)
	SetCursor(ctx context.Context, seq int64) error
}

// Relay tails the global feed and produces one Kafka record per event on the
// topic for its aggregate type.
type Relay struct {
	events eventlog.Store
	cursor CursorStore
	client *kgo.Client

	log      *log.Logger
	batch    int
	interval time.Duration
}

// Option customises a Relay.
type Option func(*Relay)

func WithLogger(logger *log.Logger) Option {
	return func(r *Relay) { r.log = logger }
}

func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batch = n
		}
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func New(events eventlog.Store, cursor CursorStore, client *kgo.Client, opts ...Option) *Relay {
	r := &Relay{
		events:   events,
		cursor:   cursor,
		client:   client,
		log:      log.Default(),
		batch:    defaultBatchSize,
		interval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// EnsureTopics creates the per-aggregate-type topics if they do not exist.
// Call once at startup; existing topics are left untouched.
func EnsureTopics(ctx context.Context, client *kgo.Client) error {
	admin := kadm.NewClient(client)
	topics := make([]string, 0, len(eventlog.AggregateTypes))
	for _, aggregateType := range eventlog.AggregateTypes {
		topics = append(topics, TopicFor(aggregateType))
	}
	responses, err := admin.CreateTopics(ctx, defaultPartitions, 1, nil, topics...)
	if err != nil {
		return fmt.Errorf("create topics: %w", err)
	}
	for _, response := range responses {
		if response.Err != nil && !errors.Is(response.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", response.Topic, response.Err)
		}
	}
	return nil
}

// TopicFor returns the Kafka topic carrying events of one aggregate type.
func TopicFor(aggregateType eventlog.AggregateType) string {
	return topicPrefix + string(aggregateType)
}

// envelope is the wire shape of a relayed event.
type envelope struct {
	ID            string          `json:"id"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	Type          string          `json:"type"`
	Version       int64           `json:"version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

// Run polls the feed until the context is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if _, err := r.Drain(ctx); err != nil {
			r.log.Printf("relay: drain failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Drain publishes everything between the stored cursor and the feed end,
// returning how many events went out. The cursor only advances after the
// whole batch is acknowledged, so a crash mid-batch republishes it;
// consumers must dedupe on event id.
func (r *Relay) Drain(ctx context.Context) (int, error) {
	cursor, err := r.cursor.Cursor(ctx)
	if err != nil {
		return 0, fmt.Errorf("load cursor: %w", err)
	}

	published := 0
	for {
		events, last, err := r.events.ReadSince(ctx, cursor, r.batch)
		if err != nil {
			return published, fmt.Errorf("read feed after %d: %w", cursor, err)
		}
		if len(events) == 0 {
			return published, nil
		}

		records := make([]*kgo.Record, 0, len(events))
		for _, event := range events {
			record, err := r.record(event)
			if err != nil {
				return published, err
			}
			records = append(records, record)
		}
		if err := r.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
			return published, fmt.Errorf("produce batch after %d: %w", cursor, err)
		}
		published += len(records)

		if err := r.cursor.SetCursor(ctx, last); err != nil {
			return published, fmt.Errorf("advance cursor to %d: %w", last, err)
		}
		cursor = last
	}
}

func (r *Relay) record(event eventlog.Event) (*kgo.Record, error) {
	value, err := json.Marshal(envelope{
		ID:            event.ID.String(),
		AggregateID:   event.AggregateID,
		AggregateType: string(event.AggregateType),
		Type:          string(event.Type),
		Version:       event.Version,
		OccurredAt:    event.OccurredAt,
		Payload:       event.Payload,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal event %s: %w", event.ID, err)
	}
	return &kgo.Record{
		Topic: TopicFor(event.AggregateType),
		Key:   []byte(event.AggregateID),
		Value: value,
	}, nil
}
