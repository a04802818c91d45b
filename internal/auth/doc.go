// package auth manages the OAuth credential lifecycle across providers.
//
// The Manager hands out access tokens for API calls, refreshing them
// through the provider's token endpoint when they are expired or about
// to expire. Refreshes for the same user and provider are serialized so
// concurrent callers trigger at most one network round trip; later
// callers observe the credential stored by the first.
package auth
