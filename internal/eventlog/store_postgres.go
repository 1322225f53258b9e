package eventlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"tempo/internal/eventlog/metrics"
	id "tempo/pkg/domain"
	"tempo/pkg/platform/sentinel"
	txcontext "tempo/pkg/platform/tx"
)

// PostgresStore persists events in a single `events` table:
//
//	CREATE TABLE events (
//	    seq            BIGSERIAL PRIMARY KEY,
//	    id             UUID        NOT NULL UNIQUE,
//	    aggregate_id   UUID        NOT NULL,
//	    aggregate_type TEXT        NOT NULL,
//	    event_type     TEXT        NOT NULL,
//	    version        BIGINT      NOT NULL,
//	    occurred_at    TIMESTAMPTZ NOT NULL,
//	    payload        JSONB,
//	    UNIQUE (aggregate_id, version)
//	);
//	CREATE INDEX events_type_occurred_idx ON events (aggregate_type, occurred_at DESC);
//
// The UNIQUE (aggregate_id, version) constraint is the optimistic-concurrency
// check: two writers racing on the same expected version collide on the same
// version numbers and exactly one INSERT succeeds.
type PostgresStore struct {
	db      *sql.DB
	metrics *metrics.Metrics
}

// PostgresOption configures a PostgresStore.
type PostgresOption func(*PostgresStore)

// WithMetrics attaches append and read instrumentation.
func WithMetrics(m *metrics.Metrics) PostgresOption {
	return func(s *PostgresStore) { s.metrics = m }
}

func NewPostgres(db *sql.DB, opts ...PostgresOption) *PostgresStore {
	s := &PostgresStore{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type dbQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) querier(ctx context.Context) dbQuerier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func (s *PostgresStore) Append(ctx context.Context, aggregateID string, aggregateType AggregateType, expectedVersion int64, events []Event) (int64, error) {
	if len(events) == 0 {
		return 0, fmt.Errorf("append: empty batch")
	}
	start := time.Now()

	newVersion, err := s.append(ctx, aggregateID, aggregateType, expectedVersion, events)
	if s.metrics != nil {
		if err == nil {
			s.metrics.ObserveAppend(string(aggregateType), len(events), start)
		} else if errors.Is(err, sentinel.ErrVersionConflict) {
			s.metrics.IncrementConflict()
		}
	}
	return newVersion, err
}

func (s *PostgresStore) append(ctx context.Context, aggregateID string, aggregateType AggregateType, expectedVersion int64, events []Event) (int64, error) {
	// Join an ambient transaction when one is in context, otherwise open one
	// so the batch is all-or-nothing.
	if tx, ok := txcontext.From(ctx); ok {
		return s.appendIn(ctx, tx, aggregateID, aggregateType, expectedVersion, events)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin append tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	newVersion, err := s.appendIn(ctx, tx, aggregateID, aggregateType, expectedVersion, events)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit append tx: %w", err)
	}
	return newVersion, nil
}

func (s *PostgresStore) appendIn(ctx context.Context, tx dbQuerier, aggregateID string, aggregateType AggregateType, expectedVersion int64, events []Event) (int64, error) {
	// Detect a stale expectedVersion that is *ahead* of the stream (no rows
	// to collide with); the unique constraint catches the behind case.
	var current int64
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM events WHERE aggregate_id = $1`,
		aggregateID,
	).Scan(&current)
	if err != nil {
		return 0, fmt.Errorf("read stream head: %w", err)
	}
	if current != expectedVersion {
		return 0, fmt.Errorf("append %s at version %d, head is %d: %w",
			aggregateID, expectedVersion, current, sentinel.ErrVersionConflict)
	}

	const insert = `
		INSERT INTO events (id, aggregate_id, aggregate_type, event_type, version, occurred_at, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for i, event := range events {
		version := expectedVersion + int64(i) + 1
		_, err := tx.ExecContext(ctx, insert,
			uuid.UUID(event.ID),
			aggregateID,
			string(aggregateType),
			string(event.Type),
			version,
			event.OccurredAt,
			[]byte(event.Payload),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return 0, fmt.Errorf("append %s at version %d: %w",
					aggregateID, expectedVersion, sentinel.ErrVersionConflict)
			}
			return 0, fmt.Errorf("insert event: %w", err)
		}
	}
	return expectedVersion + int64(len(events)), nil
}

func (s *PostgresStore) ReadStream(ctx context.Context, aggregateID string, fromVersion int64) ([]Event, error) {
	rows, err := s.querier(ctx).QueryContext(ctx, `
		SELECT id, aggregate_id, aggregate_type, event_type, version, occurred_at, payload
		FROM events
		WHERE aggregate_id = $1 AND version > $2
		ORDER BY version ASC
	`, aggregateID, fromVersion)
	if err != nil {
		return nil, fmt.Errorf("query stream: %w", err)
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err == nil && s.metrics != nil {
		s.metrics.StreamReadLength.Observe(float64(len(events)))
	}
	return events, err
}

func (s *PostgresStore) StreamVersion(ctx context.Context, aggregateID string) (int64, error) {
	var version int64
	err := s.querier(ctx).QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM events WHERE aggregate_id = $1`,
		aggregateID,
	).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("query stream version: %w", err)
	}
	return version, nil
}

func (s *PostgresStore) ReadRecent(ctx context.Context, limit int) ([]Event, error) {
	rows, err := s.querier(ctx).QueryContext(ctx, `
		SELECT id, aggregate_id, aggregate_type, event_type, version, occurred_at, payload
		FROM events
		ORDER BY occurred_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *PostgresStore) ReadByType(ctx context.Context, aggregateType AggregateType) ([]Event, error) {
	rows, err := s.querier(ctx).QueryContext(ctx, `
		SELECT id, aggregate_id, aggregate_type, event_type, version, occurred_at, payload
		FROM events
		WHERE aggregate_type = $1
		ORDER BY occurred_at DESC
	`, string(aggregateType))
	if err != nil {
		return nil, fmt.Errorf("query events by type: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *PostgresStore) ReadSince(ctx context.Context, afterSeq int64, limit int) ([]Event, int64, error) {
	rows, err := s.querier(ctx).QueryContext(ctx, `
		SELECT seq, id, aggregate_id, aggregate_type, event_type, version, occurred_at, payload
		FROM events
		WHERE seq > $1
		ORDER BY seq ASC
		LIMIT $2
	`, afterSeq, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("query events since: %w", err)
	}
	defer rows.Close()

	lastSeq := afterSeq
	var events []Event
	for rows.Next() {
		var (
			seq     int64
			event   Event
			eventID uuid.UUID
			payload []byte
		)
		err := rows.Scan(&seq, &eventID, &event.AggregateID, &event.AggregateType,
			&event.Type, &event.Version, &event.OccurredAt, &payload)
		if err != nil {
			return nil, 0, fmt.Errorf("scan event: %w", err)
		}
		event.ID = id.EventID(eventID)
		event.Payload = payload
		events = append(events, event)
		lastSeq = seq
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate events: %w", err)
	}
	return events, lastSeq, nil
}

func (s *PostgresStore) CountsByType(ctx context.Context) ([]TypeCount, error) {
	rows, err := s.querier(ctx).QueryContext(ctx, `
		SELECT aggregate_type, event_type, COUNT(*)
		FROM events
		GROUP BY aggregate_type, event_type
		ORDER BY aggregate_type, event_type
	`)
	if err != nil {
		return nil, fmt.Errorf("query event counts: %w", err)
	}
	defer rows.Close()

	var out []TypeCount
	for rows.Next() {
		var count TypeCount
		if err := rows.Scan(&count.AggregateType, &count.EventType, &count.Count); err != nil {
			return nil, fmt.Errorf("scan event count: %w", err)
		}
		out = append(out, count)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event counts: %w", err)
	}
	return out, nil
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var (
			event   Event
			eventID uuid.UUID
			payload []byte
		)
		err := rows.Scan(&eventID, &event.AggregateID, &event.AggregateType,
			&event.Type, &event.Version, &event.OccurredAt, &payload)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		event.ID = id.EventID(eventID)
		event.Payload = payload
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}
