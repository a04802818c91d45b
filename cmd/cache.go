package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/youtify/internal/store"
)

// CacheFlush removes all cached track matches.
func (r *Runner) CacheFlush(ctx context.Context, cmd *cli.Command) error {
	if err := r.init(ctx); err != nil {
		return err
	}

	switch cache := r.cache.(type) {
	case *store.RedisTrackCache:
		if err := cache.FlushMatches(ctx); err != nil {
			return err
		}
	case *store.SQLiteTrackCache:
		if _, err := r.db.ExecContext(ctx, "DELETE FROM track_matches"); err != nil {
			return fmt.Errorf("failed to flush cache: %w", err)
		}
	}

	r.writePlainln("✓ Match cache flushed")
	return nil
}

// CachePurge removes only expired entries from the sqlite cache.
// Redis expires entries itself, so there is nothing to do there.
func (r *Runner) CachePurge(ctx context.Context, cmd *cli.Command) error {
	if err := r.init(ctx); err != nil {
		return err
	}

	cache, ok := r.cache.(*store.SQLiteTrackCache)
	if !ok {
		r.writePlainln("Redis backend expires entries automatically; nothing to purge.")
		return nil
	}

	purged, err := cache.Purge(ctx)
	if err != nil {
		return err
	}
	r.writePlainln("✓ Purged %d expired matches", purged)
	return nil
}

func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the track match cache",
		Commands: []*cli.Command{
			{
				Name:   "flush",
				Usage:  "Remove all cached matches",
				Action: r.CacheFlush,
			},
			{
				Name:   "purge",
				Usage:  "Remove expired matches (sqlite backend)",
				Action: r.CachePurge,
			},
		},
	}
}
