package store

import "github.com/desertthunder/youtify/internal/providers"

const (
	// KeyPrefixCredential is the prefix for stored credentials
	KeyPrefixCredential = "youtify:credential:"
	// KeyPrefixMatch is the prefix for cached track resolutions
	KeyPrefixMatch = "youtify:match:"
)

// CredentialKey returns the Redis key for a user's credential on a provider
func CredentialKey(userID string, provider providers.Provider) string {
	return KeyPrefixCredential + userID + ":" + provider.String()
}

// MatchKey returns the Redis key for a cached resolution on a provider
func MatchKey(provider providers.Provider, query string) string {
	return KeyPrefixMatch + provider.String() + ":" + query
}
