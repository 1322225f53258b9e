// Package projection keeps read models eventually consistent with the event
// log and reports how far behind they are. Projections are derived caches:
// they may be dropped and rebuilt from the log at any time, and only the
// event-consumption process here ever writes them, never commands.
package projection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"tempo/pkg/platform/sentinel"
)

// WatermarkStore tracks, per aggregate, the event-log version a projection
// has caught up to, plus the projection's global feed cursor. Both must be
// durable so a restarted projector resumes instead of reprocessing.
type WatermarkStore interface {
	// SetVersion records that the projection reflects the aggregate at the
	// given version.
	SetVersion(ctx context.Context, aggregateID string, version int64) error

	// Version returns the recorded version, or sentinel.ErrNotFound when the
	// projection has never seen the aggregate.
	Version(ctx context.Context, aggregateID string) (int64, error)

	// SetCursor records the global feed sequence the projector consumed.
	SetCursor(ctx context.Context, seq int64) error

	// Cursor returns the recorded feed sequence, 0 when never set.
	Cursor(ctx context.Context) (int64, error)
}

// InMemoryWatermarks is the unit-test watermark store.
type InMemoryWatermarks struct {
	mu       sync.RWMutex
	versions map[string]int64
	cursor   int64
}

func NewInMemoryWatermarks() *InMemoryWatermarks {
	return &InMemoryWatermarks{versions: make(map[string]int64)}
}

func (s *InMemoryWatermarks) SetVersion(ctx context.Context, aggregateID string, version int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.versions[aggregateID] < version {
		s.versions[aggregateID] = version
	}
	return nil
}

func (s *InMemoryWatermarks) Version(ctx context.Context, aggregateID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	version, ok := s.versions[aggregateID]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	return version, nil
}

func (s *InMemoryWatermarks) SetCursor(ctx context.Context, seq int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq > s.cursor {
		s.cursor = seq
	}
	return nil
}

func (s *InMemoryWatermarks) Cursor(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursor, nil
}

// PostgresWatermarks persists watermarks in two tables:
//
//	CREATE TABLE projection_watermarks (
//	    projection   TEXT   NOT NULL,
//	    aggregate_id UUID   NOT NULL,
//	    version      BIGINT NOT NULL,
//	    PRIMARY KEY (projection, aggregate_id)
//	);
//	CREATE TABLE projection_cursors (
//	    projection TEXT PRIMARY KEY,
//	    seq        BIGINT NOT NULL
//	);
type PostgresWatermarks struct {
	db         *sql.DB
	projection string
}

func NewPostgresWatermarks(db *sql.DB, projection string) *PostgresWatermarks {
	return &PostgresWatermarks{db: db, projection: projection}
}

func (s *PostgresWatermarks) SetVersion(ctx context.Context, aggregateID string, version int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projection_watermarks (projection, aggregate_id, version)
		VALUES ($1, $2, $3)
		ON CONFLICT (projection, aggregate_id)
		DO UPDATE SET version = EXCLUDED.version
		WHERE projection_watermarks.version < EXCLUDED.version
	`, s.projection, aggregateID, version)
	if err != nil {
		return fmt.Errorf("set watermark: %w", err)
	}
	return nil
}

func (s *PostgresWatermarks) Version(ctx context.Context, aggregateID string) (int64, error) {
	var version int64
	err := s.db.QueryRowContext(ctx, `
		SELECT version FROM projection_watermarks
		WHERE projection = $1 AND aggregate_id = $2
	`, s.projection, aggregateID).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, sentinel.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("read watermark: %w", err)
	}
	return version, nil
}

func (s *PostgresWatermarks) SetCursor(ctx context.Context, seq int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projection_cursors (projection, seq)
		VALUES ($1, $2)
		ON CONFLICT (projection)
		DO UPDATE SET seq = EXCLUDED.seq
		WHERE projection_cursors.seq < EXCLUDED.seq
	`, s.projection, seq)
	if err != nil {
		return fmt.Errorf("set cursor: %w", err)
	}
	return nil
}

func (s *PostgresWatermarks) Cursor(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT seq FROM projection_cursors WHERE projection = $1
	`, s.projection).Scan(&seq)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read cursor: %w", err)
	}
	return seq, nil
}
