package store

import (
	"context"
	"testing"
	"time"

	"github.com/desertthunder/youtify/internal/providers"
	"github.com/desertthunder/youtify/internal/shared"
)

func newTestCache(t *testing.T) *SQLiteTrackCache {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return NewSQLiteTrackCache(db)
}

func TestKeys(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"credential key", CredentialKey("u1", providers.Spotify), "youtify:credential:u1:spotify"},
		{"match key", MatchKey(providers.YouTube, "Artist - Song"), "youtify:match:youtube:Artist - Song"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestSQLiteTrackCache(t *testing.T) {
	ctx := context.Background()

	t.Run("miss on empty cache", func(t *testing.T) {
		cache := newTestCache(t)

		_, ok, err := cache.Get(ctx, providers.YouTube, "Artist - Song")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if ok {
			t.Error("expected a miss on empty cache")
		}
	})

	t.Run("round trip", func(t *testing.T) {
		cache := newTestCache(t)

		if err := cache.Put(ctx, providers.YouTube, "Artist - Song", "v1", DefaultTrackTTL); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		trackID, ok, err := cache.Get(ctx, providers.YouTube, "Artist - Song")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if !ok || trackID != "v1" {
			t.Errorf("Get() = (%q, %v), want (v1, true)", trackID, ok)
		}
	})

	t.Run("scoped by provider", func(t *testing.T) {
		cache := newTestCache(t)

		if err := cache.Put(ctx, providers.YouTube, "Artist - Song", "v1", DefaultTrackTTL); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		_, ok, err := cache.Get(ctx, providers.Spotify, "Artist - Song")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if ok {
			t.Error("hit for a different provider, want miss")
		}
	})

	t.Run("overwrite replaces the match", func(t *testing.T) {
		cache := newTestCache(t)

		if err := cache.Put(ctx, providers.YouTube, "Artist - Song", "v1", DefaultTrackTTL); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if err := cache.Put(ctx, providers.YouTube, "Artist - Song", "v2", DefaultTrackTTL); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		trackID, ok, _ := cache.Get(ctx, providers.YouTube, "Artist - Song")
		if !ok || trackID != "v2" {
			t.Errorf("Get() = (%q, %v), want (v2, true)", trackID, ok)
		}
	})

	t.Run("expired entries are evicted", func(t *testing.T) {
		cache := newTestCache(t)

		base := time.Now()
		cache.now = func() time.Time { return base }

		if err := cache.Put(ctx, providers.YouTube, "Artist - Song", "v1", time.Hour); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		cache.now = func() time.Time { return base.Add(2 * time.Hour) }

		_, ok, err := cache.Get(ctx, providers.YouTube, "Artist - Song")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if ok {
			t.Error("expected expired entry to miss")
		}
	})

	t.Run("purge removes expired rows", func(t *testing.T) {
		cache := newTestCache(t)

		base := time.Now()
		cache.now = func() time.Time { return base }

		if err := cache.Put(ctx, providers.YouTube, "old", "v1", time.Minute); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if err := cache.Put(ctx, providers.YouTube, "fresh", "v2", time.Hour); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		cache.now = func() time.Time { return base.Add(10 * time.Minute) }

		purged, err := cache.Purge(ctx)
		if err != nil {
			t.Fatalf("Purge() error = %v", err)
		}
		if purged != 1 {
			t.Errorf("Purge() = %d, want 1", purged)
		}

		if _, ok, _ := cache.Get(ctx, providers.YouTube, "fresh"); !ok {
			t.Error("fresh entry was purged")
		}
	})
}
