// YouTube Data API v3 [Client] implementation.
//
// YouTube has no dedicated music surface; playlists mix videos of every
// category, so track listings need a second metadata lookup to keep only
// music items (category 10).
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"
)

const (
	youtubeBaseURL = "https://www.googleapis.com/youtube/v3"

	// musicCategoryID is the YouTube video category for music content.
	musicCategoryID = "10"
)

type youtubeThumbnail struct {
	URL string `json:"url"`
}

type youtubeSnippet struct {
	Title        string                      `json:"title"`
	Description  string                      `json:"description"`
	ChannelTitle string                      `json:"channelTitle"`
	CategoryID   string                      `json:"categoryId"`
	Thumbnails   map[string]youtubeThumbnail `json:"thumbnails"`
	ResourceID   *youtubeResourceID          `json:"resourceId,omitempty"`
}

type youtubeResourceID struct {
	Kind    string `json:"kind"`
	VideoID string `json:"videoId"`
}

type youtubeItem struct {
	ID      string         `json:"id"`
	Snippet youtubeSnippet `json:"snippet"`
}

type youtubePage struct {
	Items         []youtubeItem `json:"items"`
	NextPageToken string        `json:"nextPageToken"`
}

type youtubeSearchItem struct {
	ID struct {
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet youtubeSnippet `json:"snippet"`
}

type youtubeErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

// YouTubeClient implements [Client] against the YouTube Data API v3.
type YouTubeClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// YouTubeOpts configures a [YouTubeClient]. The zero value uses the public
// API endpoint, http.DefaultClient, and the default request rate.
type YouTubeOpts struct {
	BaseURL    string
	HTTPClient *http.Client
	RateLimit  float64 // requests per second
}

// NewYouTubeClient creates a YouTube client.
func NewYouTubeClient(opts YouTubeOpts) *YouTubeClient {
	if opts.BaseURL == "" {
		opts.BaseURL = youtubeBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &YouTubeClient{
		baseURL:    opts.BaseURL,
		httpClient: opts.HTTPClient,
		limiter:    newLimiter(opts.RateLimit),
	}
}

func (y *YouTubeClient) Provider() Provider {
	return YouTube
}

// classify maps a YouTube error response to the unified taxonomy. Quota
// exhaustion arrives as HTTP 403 with a quotaExceeded reason and must map to
// KindRateLimited, not KindForbidden.
func (y *YouTubeClient) classify(status int, header http.Header, body []byte) error {
	kind := classifyStatus(status)
	msg := fmt.Sprintf("status %d", status)

	var errBody youtubeErrorBody
	if err := json.Unmarshal(body, &errBody); err == nil && errBody.Error.Message != "" {
		msg = fmt.Sprintf("status %d: %s", status, errBody.Error.Message)
		for _, e := range errBody.Error.Errors {
			switch e.Reason {
			case "quotaExceeded", "rateLimitExceeded", "userRateLimitExceeded":
				kind = KindRateLimited
			}
		}
	}

	return &Error{
		Kind:       kind,
		Provider:   YouTube,
		RetryAfter: parseRetryAfter(header.Get("Retry-After")),
		Err:        fmt.Errorf("youtube API error: %s", msg),
	}
}

func (y *YouTubeClient) get(ctx context.Context, cred Credential, endpoint string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, y.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)

	return doJSON(ctx, y.httpClient, y.limiter, req, y.classify, result)
}

func (y *YouTubeClient) post(ctx context.Context, cred Credential, endpoint string, payload, result any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, y.baseURL+endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	return doJSON(ctx, y.httpClient, y.limiter, req, y.classify, result)
}

// ListPlaylists retrieves the user's playlists, exhausting page tokens in
// pages of 50.
func (y *YouTubeClient) ListPlaylists(ctx context.Context, cred Credential) ([]Playlist, error) {
	var playlists []Playlist
	pageToken := ""

	for {
		endpoint := fmt.Sprintf("/playlists?part=snippet,contentDetails&mine=true&maxResults=%d", pageSize)
		if pageToken != "" {
			endpoint += "&pageToken=" + url.QueryEscape(pageToken)
		}

		var page youtubePage
		if err := y.get(ctx, cred, endpoint, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			playlists = append(playlists, Playlist{
				ID:          item.ID,
				Name:        item.Snippet.Title,
				Description: item.Snippet.Description,
				Image:       firstYouTubeThumbnail(item.Snippet.Thumbnails),
			})
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	return playlists, nil
}

// ListPlaylistTracks retrieves a playlist's items, then filters out
// non-music videos via a category lookup while preserving the relative
// order of retained items.
func (y *YouTubeClient) ListPlaylistTracks(ctx context.Context, cred Credential, playlistID string) ([]Track, error) {
	var items []youtubeItem
	pageToken := ""

	for {
		endpoint := fmt.Sprintf("/playlistItems?part=snippet&playlistId=%s&maxResults=%d", url.QueryEscape(playlistID), pageSize)
		if pageToken != "" {
			endpoint += "&pageToken=" + url.QueryEscape(pageToken)
		}

		var page youtubePage
		if err := y.get(ctx, cred, endpoint, &page); err != nil {
			return nil, err
		}

		items = append(items, page.Items...)

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	videoIDs := make([]string, 0, len(items))
	for _, item := range items {
		if item.Snippet.ResourceID != nil {
			videoIDs = append(videoIDs, item.Snippet.ResourceID.VideoID)
		}
	}

	categories, err := y.videoCategories(ctx, cred, videoIDs)
	if err != nil {
		return nil, err
	}

	var tracks []Track
	for _, item := range items {
		if item.Snippet.ResourceID == nil {
			continue
		}
		videoID := item.Snippet.ResourceID.VideoID
		if categories[videoID] != musicCategoryID {
			continue
		}
		tracks = append(tracks, Track{
			ID:    videoID,
			Name:  TrackName([]string{item.Snippet.ChannelTitle}, item.Snippet.Title),
			Image: firstYouTubeThumbnail(item.Snippet.Thumbnails),
		})
	}

	return tracks, nil
}

// videoCategories looks up the category of each video id, batched at the
// bounded page size.
func (y *YouTubeClient) videoCategories(ctx context.Context, cred Credential, videoIDs []string) (map[string]string, error) {
	categories := make(map[string]string, len(videoIDs))

	for start := 0; start < len(videoIDs); start += pageSize {
		end := start + pageSize
		if end > len(videoIDs) {
			end = len(videoIDs)
		}

		ids := strings.Join(videoIDs[start:end], ",")
		endpoint := fmt.Sprintf("/videos?part=snippet&id=%s", url.QueryEscape(ids))

		var page youtubePage
		if err := y.get(ctx, cred, endpoint, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			categories[item.ID] = item.Snippet.CategoryID
		}
	}

	return categories, nil
}

// SearchTrack issues a single-result search scoped to music videos.
func (y *YouTubeClient) SearchTrack(ctx context.Context, cred Credential, query string) (TrackMatch, error) {
	endpoint := fmt.Sprintf("/search?part=snippet&q=%s&type=video&videoCategoryId=%s&maxResults=1", url.QueryEscape(query), musicCategoryID)

	var response struct {
		Items []youtubeSearchItem `json:"items"`
	}
	if err := y.get(ctx, cred, endpoint, &response); err != nil {
		return TrackMatch{}, err
	}

	if len(response.Items) == 0 {
		return TrackMatch{}, Errorf(YouTube, KindNotFound, "no results for %q", query)
	}

	return TrackMatch{Query: query, TrackID: response.Items[0].ID.VideoID}, nil
}

// CreatePlaylist creates a private playlist and returns its identifier.
func (y *YouTubeClient) CreatePlaylist(ctx context.Context, cred Credential, name, description string) (string, error) {
	payload := map[string]any{
		"snippet": map[string]string{
			"title":       name,
			"description": description,
		},
		"status": map[string]string{
			"privacyStatus": "private",
		},
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := y.post(ctx, cred, "/playlists?part=snippet,status", payload, &created); err != nil {
		return "", err
	}

	return created.ID, nil
}

// AppendTrack appends a video to the end of a playlist.
func (y *YouTubeClient) AppendTrack(ctx context.Context, cred Credential, playlistID, trackID string) error {
	payload := map[string]any{
		"snippet": map[string]any{
			"playlistId": playlistID,
			"resourceId": youtubeResourceID{
				Kind:    "youtube#video",
				VideoID: trackID,
			},
		},
	}

	return y.post(ctx, cred, "/playlistItems?part=snippet", payload, nil)
}

func firstYouTubeThumbnail(thumbs map[string]youtubeThumbnail) string {
	for _, key := range []string{"high", "medium", "default"} {
		if t, ok := thumbs[key]; ok && t.URL != "" {
			return t.URL
		}
	}
	return ""
}
