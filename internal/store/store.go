package store

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/youtify/internal/providers"
)

// DefaultTrackTTL is the lifetime of a cached track resolution.
const DefaultTrackTTL = 24 * time.Hour

var (
	ErrCredentialNotFound = fmt.Errorf("credential not found")
)

// CredentialStore persists OAuth credentials per user and provider.
type CredentialStore interface {
	// Get returns the stored credential, or ErrCredentialNotFound.
	Get(ctx context.Context, userID string, provider providers.Provider) (providers.Credential, error)
	// Put stores a credential, replacing any existing one for the same
	// user and provider.
	Put(ctx context.Context, userID string, cred providers.Credential) error
	// Delete removes a stored credential. Deleting an absent credential
	// is not an error.
	Delete(ctx context.Context, userID string, provider providers.Provider) error
}

// TrackCache stores resolved query -> track ID matches scoped by the
// destination provider. A miss is reported via the boolean, not an
// error; errors indicate backend failures and callers may treat them
// as misses.
type TrackCache interface {
	Get(ctx context.Context, provider providers.Provider, query string) (string, bool, error)
	Put(ctx context.Context, provider providers.Provider, query, trackID string, ttl time.Duration) error
}
