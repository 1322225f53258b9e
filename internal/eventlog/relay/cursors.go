package relay

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

// InMemoryCursor is the unit-test cursor store.
type InMemoryCursor struct {
	mu  sync.Mutex
	seq int64
}

func NewInMemoryCursor() *InMemoryCursor {
	return &InMemoryCursor{}
}

func (c *InMemoryCursor) Cursor(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq, nil
}

func (c *InMemoryCursor) SetCursor(ctx context.Context, seq int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq > c.seq {
		c.seq = seq
	}
	return nil
}

// PostgresCursor persists the relay position:
//
//	CREATE TABLE relay_cursors (
//	    relay TEXT PRIMARY KEY,
//	    seq   BIGINT NOT NULL
//	);
type PostgresCursor struct {
	db    *sql.DB
	relay string
}

func NewPostgresCursor(db *sql.DB, relay string) *PostgresCursor {
	return &PostgresCursor{db: db, relay: relay}
}

func (c *PostgresCursor) Cursor(ctx context.Context) (int64, error) {
	var seq int64
	err := c.db.QueryRowContext(ctx,
		`SELECT seq FROM relay_cursors WHERE relay = $1`, c.relay).Scan(&seq)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read relay cursor: %w", err)
	}
	return seq, nil
}

func (c *PostgresCursor) SetCursor(ctx context.Context, seq int64) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO relay_cursors (relay, seq)
		VALUES ($1, $2)
		ON CONFLICT (relay)
		DO UPDATE SET seq = EXCLUDED.seq
		WHERE relay_cursors.seq < EXCLUDED.seq
	`, c.relay, seq)
	if err != nil {
		return fmt.Errorf("set relay cursor: %w", err)
	}
	return nil
}
