package auth

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/desertthunder/youtify/internal/providers"
)

// SpotifyEndpoint is Spotify's OAuth2 endpoint for the authorization
// code flow.
var SpotifyEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.spotify.com/authorize",
	TokenURL: "https://accounts.spotify.com/api/token",
}

// GoogleEndpoint is Google's OAuth2 endpoint, used for the YouTube Data API.
var GoogleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

// TokenRefresher exchanges a refresh token for a fresh credential.
type TokenRefresher interface {
	Refresh(ctx context.Context, cred providers.Credential) (providers.Credential, error)
}

// OAuth2Refresher implements TokenRefresher against a provider's OAuth2
// token endpoint.
type OAuth2Refresher struct {
	provider providers.Provider
	config   *oauth2.Config
}

// NewOAuth2Refresher creates a refresher for the given provider and OAuth2 config.
func NewOAuth2Refresher(provider providers.Provider, config *oauth2.Config) *OAuth2Refresher {
	return &OAuth2Refresher{provider: provider, config: config}
}

// Refresh implements TokenRefresher.
//
// A rejected refresh token surfaces as an unauthenticated error so the
// caller knows re-authorization is required; network and server
// failures surface as transient.
func (r *OAuth2Refresher) Refresh(ctx context.Context, cred providers.Credential) (providers.Credential, error) {
	if cred.RefreshToken == "" {
		return providers.Credential{}, providers.Errorf(r.provider, providers.KindUnauthenticated, "no refresh token available")
	}

	src := r.config.TokenSource(ctx, &oauth2.Token{RefreshToken: cred.RefreshToken})
	token, err := src.Token()
	if err != nil {
		return providers.Credential{}, classifyRefreshError(r.provider, err)
	}

	refreshed := providers.Credential{
		Provider:     cred.Provider,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
		Scopes:       cred.Scopes,
	}
	// Providers may omit the refresh token on refresh responses; keep
	// the one we already hold.
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = cred.RefreshToken
	}
	return refreshed, nil
}

func classifyRefreshError(provider providers.Provider, err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		switch retrieveErr.Response.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
			return providers.Errorf(provider, providers.KindUnauthenticated, "refresh token rejected: %v", err)
		case http.StatusTooManyRequests:
			return providers.Errorf(provider, providers.KindRateLimited, "token endpoint rate limited: %v", err)
		}
		if retrieveErr.Response.StatusCode >= 500 {
			return providers.Errorf(provider, providers.KindTransient, "token endpoint unavailable: %v", err)
		}
		return providers.Errorf(provider, providers.KindUnknown, "token refresh failed: %v", err)
	}
	return providers.Errorf(provider, providers.KindTransient, "token refresh failed: %v", err)
}
