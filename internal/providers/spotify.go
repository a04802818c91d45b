// Spotify [Client] implementation.
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"
)

const spotifyBaseURL = "https://api.spotify.com/v1"

type spotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type spotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type spotifyAlbum struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []spotifyImage `json:"images"`
}

type spotifyTrack struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Artists []spotifyArtist `json:"artists"`
	Album   spotifyAlbum    `json:"album"`
	URI     string          `json:"uri"`
}

type spotifyPlaylistItem struct {
	AddedAt string       `json:"added_at"`
	Track   spotifyTrack `json:"track"`
}

type spotifySimplePlaylist struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Images      []spotifyImage `json:"images"`
}

type spotifyPage[T any] struct {
	Items  []T     `json:"items"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
	Next   *string `json:"next"`
}

type spotifyErrorBody struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// SpotifyClient implements [Client] against the Spotify Web API.
type SpotifyClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// SpotifyOpts configures a [SpotifyClient]. The zero value uses the public
// API endpoint, http.DefaultClient, and the default request rate.
type SpotifyOpts struct {
	BaseURL    string
	HTTPClient *http.Client
	RateLimit  float64 // requests per second
}

// NewSpotifyClient creates a Spotify client.
func NewSpotifyClient(opts SpotifyOpts) *SpotifyClient {
	if opts.BaseURL == "" {
		opts.BaseURL = spotifyBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &SpotifyClient{
		baseURL:    opts.BaseURL,
		httpClient: opts.HTTPClient,
		limiter:    newLimiter(opts.RateLimit),
	}
}

func (s *SpotifyClient) Provider() Provider {
	return Spotify
}

// classify maps a Spotify error response to the unified taxonomy.
func (s *SpotifyClient) classify(status int, header http.Header, body []byte) error {
	var errBody spotifyErrorBody
	msg := fmt.Sprintf("status %d", status)
	if err := json.Unmarshal(body, &errBody); err == nil && errBody.Error.Message != "" {
		msg = fmt.Sprintf("status %d: %s", status, errBody.Error.Message)
	}

	return &Error{
		Kind:       classifyStatus(status),
		Provider:   Spotify,
		RetryAfter: parseRetryAfter(header.Get("Retry-After")),
		Err:        fmt.Errorf("spotify API error: %s", msg),
	}
}

func (s *SpotifyClient) get(ctx context.Context, cred Credential, endpoint string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)

	return doJSON(ctx, s.httpClient, s.limiter, req, s.classify, result)
}

func (s *SpotifyClient) post(ctx context.Context, cred Credential, endpoint string, payload, result any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	return doJSON(ctx, s.httpClient, s.limiter, req, s.classify, result)
}

// ListPlaylists retrieves the user's playlists, exhausting pagination in
// pages of 50.
func (s *SpotifyClient) ListPlaylists(ctx context.Context, cred Credential) ([]Playlist, error) {
	var playlists []Playlist
	offset := 0

	for {
		var page spotifyPage[spotifySimplePlaylist]
		endpoint := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", pageSize, offset)
		if err := s.get(ctx, cred, endpoint, &page); err != nil {
			return nil, err
		}

		for _, sp := range page.Items {
			playlists = append(playlists, Playlist{
				ID:          sp.ID,
				Name:        sp.Name,
				Description: sp.Description,
				Image:       firstSpotifyImage(sp.Images),
			})
		}

		if page.Next == nil {
			break
		}
		offset += pageSize
	}

	return playlists, nil
}

// ListPlaylistTracks retrieves a playlist's tracks in playlist order.
func (s *SpotifyClient) ListPlaylistTracks(ctx context.Context, cred Credential, playlistID string) ([]Track, error) {
	var tracks []Track
	offset := 0

	for {
		var page spotifyPage[spotifyPlaylistItem]
		endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=%d", url.PathEscape(playlistID), pageSize, offset)
		if err := s.get(ctx, cred, endpoint, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			tracks = append(tracks, normalizeSpotifyTrack(item.Track))
		}

		if page.Next == nil {
			break
		}
		offset += pageSize
	}

	return tracks, nil
}

// SearchTrack issues a single-result track search.
func (s *SpotifyClient) SearchTrack(ctx context.Context, cred Credential, query string) (TrackMatch, error) {
	endpoint := fmt.Sprintf("/search?q=%s&type=track&limit=1", url.QueryEscape(query))

	var response struct {
		Tracks spotifyPage[spotifyTrack] `json:"tracks"`
	}
	if err := s.get(ctx, cred, endpoint, &response); err != nil {
		return TrackMatch{}, err
	}

	if len(response.Tracks.Items) == 0 {
		return TrackMatch{}, Errorf(Spotify, KindNotFound, "no results for %q", query)
	}

	return TrackMatch{Query: query, TrackID: response.Tracks.Items[0].ID}, nil
}

// CreatePlaylist creates a private playlist for the current user and returns
// its identifier. Spotify scopes creation to a user id, so the profile is
// fetched first.
func (s *SpotifyClient) CreatePlaylist(ctx context.Context, cred Credential, name, description string) (string, error) {
	userID, err := s.currentUserID(ctx, cred)
	if err != nil {
		return "", err
	}

	payload := struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Public      bool   `json:"public"`
	}{Name: name, Description: description, Public: false}

	var created struct {
		ID string `json:"id"`
	}
	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(userID))
	if err := s.post(ctx, cred, endpoint, payload, &created); err != nil {
		return "", err
	}

	return created.ID, nil
}

// AppendTrack appends one track to the end of a playlist.
func (s *SpotifyClient) AppendTrack(ctx context.Context, cred Credential, playlistID, trackID string) error {
	payload := struct {
		URIs []string `json:"uris"`
	}{URIs: []string{"spotify:track:" + trackID}}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	return s.post(ctx, cred, endpoint, payload, nil)
}

// currentUserID fetches the authenticated user's profile id.
func (s *SpotifyClient) currentUserID(ctx context.Context, cred Credential) (string, error) {
	var user struct {
		ID string `json:"id"`
	}
	if err := s.get(ctx, cred, "/me", &user); err != nil {
		return "", err
	}
	return user.ID, nil
}

func normalizeSpotifyTrack(t spotifyTrack) Track {
	artists := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = a.Name
	}

	return Track{
		ID:    t.ID,
		Name:  TrackName(artists, t.Name),
		Image: firstSpotifyImage(t.Album.Images),
	}
}

func firstSpotifyImage(images []spotifyImage) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}
