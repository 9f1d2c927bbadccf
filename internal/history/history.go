// Package history keeps a Postgres ledger of conversion requests,
// keyed by content hash and target format. It exists for operational
// visibility (how often the same image is re-converted); the pipeline
// works identically without it.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

// Tracker records conversion requests.
type Tracker struct {
	db *sql.DB
}

// NewTracker creates a tracker and ensures its table exists.
func NewTracker(db *sql.DB) (*Tracker, error) {
	tracker := &Tracker{db: db}
	if err := tracker.ensureTable(); err != nil {
		return nil, fmt.Errorf("failed to ensure history table: %w", err)
	}
	return tracker, nil
}

func (t *Tracker) ensureTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS conversion_history (
			content_hash TEXT,
			format TEXT,
			quality INTEGER,
			first_seen_at TIMESTAMPTZ DEFAULT NOW(),
			last_seen_at TIMESTAMPTZ DEFAULT NOW(),
			seen_count INTEGER DEFAULT 1,
			PRIMARY KEY (content_hash, format)
		)
	`

	_, err := t.db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create conversion_history table: %w", err)
	}

	log.Printf("conversion_history table ready")
	return nil
}

// Record upserts one conversion request and returns how many times
// this content has been converted to this format.
func (t *Tracker) Record(ctx context.Context, contentHash, format string, quality int) (int, error) {
	query := `
		INSERT INTO conversion_history (content_hash, format, quality, first_seen_at, last_seen_at, seen_count)
		VALUES ($1, $2, $3, NOW(), NOW(), 1)
		ON CONFLICT (content_hash, format) DO UPDATE
		SET last_seen_at = NOW(),
		    seen_count = conversion_history.seen_count + 1,
		    quality = EXCLUDED.quality
		RETURNING seen_count
	`

	var seenCount int
	err := t.db.QueryRowContext(ctx, query, contentHash, format, quality).Scan(&seenCount)
	if err != nil {
		return 0, fmt.Errorf("failed to record conversion: %w", err)
	}

	return seenCount, nil
}

// SeenCount retrieves how many times a content/format pair was
// converted, zero when never seen.
func (t *Tracker) SeenCount(ctx context.Context, contentHash, format string) (int, error) {
	query := `SELECT seen_count FROM conversion_history WHERE content_hash = $1 AND format = $2`

	var seenCount int
	err := t.db.QueryRowContext(ctx, query, contentHash, format).Scan(&seenCount)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get seen count: %w", err)
	}

	return seenCount, nil
}
