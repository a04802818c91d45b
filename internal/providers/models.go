package providers

import (
	"strings"
	"time"
)

// Provider identifies one of the music streaming services.
type Provider string

const (
	Spotify Provider = "spotify"
	YouTube Provider = "youtube"
)

// Valid reports whether p names a known provider.
func (p Provider) Valid() bool {
	return p == Spotify || p == YouTube
}

func (p Provider) String() string {
	return string(p)
}

// ParseProvider resolves a user-supplied provider name, accepting the
// aliases the CLI has historically taken.
func ParseProvider(name string) (Provider, bool) {
	switch strings.ToLower(name) {
	case "spotify":
		return Spotify, true
	case "youtube", "yt", "ytmusic":
		return YouTube, true
	default:
		return "", false
	}
}

// Credential holds the OAuth tokens for one user on one provider.
//
// AccessToken and ExpiresAt are replaced in place on refresh; RefreshToken
// is replaced only when the provider reissues one.
type Credential struct {
	Provider     Provider  `json:"provider"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	Scopes       []string  `json:"scopes,omitempty"`
}

// Expired reports whether the access token's expiry has passed, with a
// safety margin so a token about to lapse mid-request counts as expired.
func (c Credential) Expired(now time.Time) bool {
	return !now.Add(30 * time.Second).Before(c.ExpiresAt)
}

// Track is a normalized track record. Name is the "Artist A, Artist B - Title"
// composite; it doubles as the search query when resolving the track on the
// destination provider.
type Track struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// Playlist is a normalized playlist record. Track order is playlist order
// and survives every transformation in the engine.
type Playlist struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Image       string  `json:"image,omitempty"`
	Tracks      []Track `json:"tracks,omitempty"`
}

// TrackMatch is the destination-provider identifier resolved for a search
// query.
type TrackMatch struct {
	Query   string `json:"query"`
	TrackID string `json:"track_id"`
}

// TrackName builds the composite display name from an ordered artist list
// and a title.
func TrackName(artists []string, title string) string {
	if len(artists) == 0 {
		return title
	}
	return strings.Join(artists, ", ") + " - " + title
}
