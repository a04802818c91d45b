package tasks

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/desertthunder/youtify/internal/providers"
)

// defaultConcurrency bounds the fan-out of track fetches and searches.
const defaultConcurrency = 4

// Pipeline fetches playlists with their full track listings from a
// source provider, fanning out track fetches across playlists while
// keeping results in playlist order.
type Pipeline struct {
	concurrency int
	logger      *log.Logger
}

// NewPipeline creates a fetch pipeline. A non-positive concurrency
// falls back to the default.
func NewPipeline(concurrency int, logger *log.Logger) *Pipeline {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Pipeline{concurrency: concurrency, logger: logger}
}

// FetchAll returns the requested playlists with tracks populated, in
// the order the IDs were given. An empty ID list selects every playlist
// the user owns, in the provider's listing order. Any track fetch
// failure fails the whole call.
func (p *Pipeline) FetchAll(ctx context.Context, client providers.Client, cred providers.Credential, playlistIDs []string, progress chan<- ProgressUpdate) ([]providers.Playlist, error) {
	sendProgress(progress, fetchingPlaylistsUpdate(client.Provider()))

	all, err := client.ListPlaylists(ctx, cred)
	if err != nil {
		return nil, err
	}

	selected, err := selectPlaylists(client.Provider(), all, playlistIDs)
	if err != nil {
		return nil, err
	}

	out := make([]providers.Playlist, len(selected))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, pl := range selected {
		g.Go(func() error {
			tracks, err := client.ListPlaylistTracks(gctx, cred, pl.ID)
			if err != nil {
				return fmt.Errorf("fetching tracks for %q: %w", pl.Name, err)
			}
			pl.Tracks = tracks
			out[i] = pl

			p.logger.Debug("fetched playlist", "playlist", pl.Name, "tracks", len(tracks))
			sendProgress(progress, fetchedTracksUpdate(int(done.Add(1)), len(selected), pl))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// selectPlaylists filters the provider's listing down to the requested
// IDs, preserving the requested order. An ID the user does not own is a
// not found error.
func selectPlaylists(provider providers.Provider, all []providers.Playlist, ids []string) ([]providers.Playlist, error) {
	if len(ids) == 0 {
		return all, nil
	}

	byID := make(map[string]providers.Playlist, len(all))
	for _, pl := range all {
		byID[pl.ID] = pl
	}

	selected := make([]providers.Playlist, 0, len(ids))
	for _, id := range ids {
		pl, ok := byID[id]
		if !ok {
			return nil, providers.Errorf(provider, providers.KindNotFound, "no playlist with id %s", id)
		}
		selected = append(selected, pl)
	}
	return selected, nil
}
