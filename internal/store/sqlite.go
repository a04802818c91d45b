package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/youtify/internal/providers"
)

// SQLiteTrackCache implements TrackCache on a SQLite database, for
// installations running without Redis. Rows carry an absolute expiry
// timestamp; expired rows are removed lazily on read.
type SQLiteTrackCache struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteTrackCache creates a track cache on the given database. The
// track_matches table must exist (see the shared migrations).
func NewSQLiteTrackCache(db *sql.DB) *SQLiteTrackCache {
	return &SQLiteTrackCache{db: db, now: time.Now}
}

// Get implements TrackCache.
func (c *SQLiteTrackCache) Get(ctx context.Context, provider providers.Provider, query string) (string, bool, error) {
	var (
		trackID   string
		expiresAt time.Time
	)
	err := c.db.QueryRowContext(ctx,
		"SELECT track_id, expires_at FROM track_matches WHERE provider = ? AND query = ?",
		provider.String(), query,
	).Scan(&trackID, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get cached match: %w", err)
	}

	if !c.now().Before(expiresAt) {
		_, err := c.db.ExecContext(ctx,
			"DELETE FROM track_matches WHERE provider = ? AND query = ?",
			provider.String(), query,
		)
		if err != nil {
			return "", false, fmt.Errorf("failed to evict expired match: %w", err)
		}
		return "", false, nil
	}

	return trackID, true, nil
}

// Put implements TrackCache.
func (c *SQLiteTrackCache) Put(ctx context.Context, provider providers.Provider, query, trackID string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTrackTTL
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO track_matches (provider, query, track_id, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(provider, query) DO UPDATE SET
			track_id = excluded.track_id,
			expires_at = excluded.expires_at`,
		provider.String(), query, trackID, c.now().Add(ttl),
	)
	if err != nil {
		return fmt.Errorf("failed to cache match: %w", err)
	}
	return nil
}

// Purge removes all expired rows. Intended for periodic housekeeping
// from the cache CLI command.
func (c *SQLiteTrackCache) Purge(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx, "DELETE FROM track_matches WHERE expires_at <= ?", c.now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged rows: %w", err)
	}
	return n, nil
}
