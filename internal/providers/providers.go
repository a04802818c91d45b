package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"
)

// pageSize is the bounded page size used when exhausting paginated listings.
const pageSize = 50

// Client is the uniform operation set a provider exposes to the migration
// engine. Every call takes the credential to authenticate with; clients hold
// no per-user state so one client serves all concurrent jobs.
type Client interface {
	// Provider returns the service this client talks to.
	Provider() Provider

	// ListPlaylists returns the user's playlists in provider order, tracks
	// omitted. Pagination is exhausted internally.
	ListPlaylists(ctx context.Context, cred Credential) ([]Playlist, error)

	// ListPlaylistTracks returns the playlist's tracks in playlist order.
	// Providers that mix content types filter out non-music items while
	// preserving the relative order of the rest.
	ListPlaylistTracks(ctx context.Context, cred Credential, playlistID string) ([]Track, error)

	// SearchTrack issues a single-result search. A search with zero results
	// fails with KindNotFound rather than returning an empty identifier.
	SearchTrack(ctx context.Context, cred Credential, query string) (TrackMatch, error)

	// CreatePlaylist creates an empty playlist and returns its identifier.
	CreatePlaylist(ctx context.Context, cred Credential, name, description string) (string, error)

	// AppendTrack appends one track to the end of a playlist.
	AppendTrack(ctx context.Context, cred Credential, playlistID, trackID string) error
}

// newLimiter builds the per-provider request gate. Neither provider contract
// mandates a cap, but pacing requests avoids self-inflicted bursts that trip
// rate limiting.
func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		rps = 5
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}

// doJSON performs an authenticated request and decodes a JSON response into
// result. Non-2xx responses come back as a *Error classified by classify.
func doJSON(ctx context.Context, client *http.Client, limiter *rate.Limiter, req *http.Request, classify func(status int, header http.Header, body []byte) error, result any) error {
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classify(resp.StatusCode, resp.Header, body)
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
