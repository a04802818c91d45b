package tasks

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/desertthunder/youtify/internal/providers"
	"github.com/desertthunder/youtify/internal/store"
)

// Resolution is the outcome of matching one track query against the
// destination provider's catalog.
type Resolution struct {
	Query   string // display name used as the search query
	TrackID string // destination track ID, empty when Err is set
	Cached  bool   // true when served from the match cache
	Err     error  // not found or other item-local failure
}

// Resolver matches track queries against a destination provider,
// consulting the match cache before searching. Cache backend failures
// are logged and treated as misses so a degraded cache never fails a
// migration.
type Resolver struct {
	cache       store.TrackCache
	ttl         time.Duration
	concurrency int
	logger      *log.Logger
}

// NewResolver creates a resolver over the given match cache. A
// non-positive TTL falls back to the store default, a non-positive
// concurrency to the pipeline default.
func NewResolver(cache store.TrackCache, ttl time.Duration, concurrency int, logger *log.Logger) *Resolver {
	if ttl <= 0 {
		ttl = store.DefaultTrackTTL
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Resolver{cache: cache, ttl: ttl, concurrency: concurrency, logger: logger}
}

// Resolve matches every query, returning resolutions in query order.
// Duplicate queries are resolved once and share a result. A query with
// no match is recorded in its Resolution and does not fail the call;
// fatal provider errors (expired credentials, rate limiting) abort the
// whole call.
func (r *Resolver) Resolve(ctx context.Context, client providers.Client, cred providers.Credential, queries []string, progress chan<- ProgressUpdate) ([]Resolution, error) {
	out := make([]Resolution, len(queries))

	// Dedupe queries, resolving each distinct one once.
	positions := make(map[string][]int)
	unique := make([]string, 0, len(queries))
	for i, q := range queries {
		if _, seen := positions[q]; !seen {
			unique = append(unique, q)
		}
		positions[q] = append(positions[q], i)
	}

	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for _, query := range unique {
		g.Go(func() error {
			res := r.resolveOne(gctx, client, cred, query)
			if res.Err != nil && providers.Fatal(res.Err) {
				return res.Err
			}
			for _, i := range positions[query] {
				out[i] = res
			}
			sendProgress(progress, resolvedTrackUpdate(int(done.Add(1)), len(unique), res))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Resolver) resolveOne(ctx context.Context, client providers.Client, cred providers.Credential, query string) Resolution {
	provider := client.Provider()

	trackID, hit, err := r.cache.Get(ctx, provider, query)
	if err != nil {
		r.logger.Warn("match cache read failed", "provider", provider, "query", query, "error", err)
	} else if hit {
		return Resolution{Query: query, TrackID: trackID, Cached: true}
	}

	match, err := client.SearchTrack(ctx, cred, query)
	if err != nil {
		return Resolution{Query: query, Err: err}
	}

	if err := r.cache.Put(ctx, provider, query, match.TrackID, r.ttl); err != nil {
		r.logger.Warn("match cache write failed", "provider", provider, "query", query, "error", err)
	}

	return Resolution{Query: query, TrackID: match.TrackID}
}
