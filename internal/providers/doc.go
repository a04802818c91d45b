// Package providers contains the typed clients for the music streaming
// services participating in a migration.
//
// # Clients
//
// The [Client] interface defines the uniform operation set every provider
// exposes: listing playlists, listing a playlist's tracks, single-result
// track search, playlist creation, and track append. [SpotifyClient] and
// [YouTubeClient] implement it against the Spotify Web API and the YouTube
// Data API v3 respectively. Every operation takes the [Credential] to use,
// supplied by the caller (the auth manager hands out valid ones).
//
// # Normalization
//
// Clients return normalized [Playlist] and [Track] records. Track names are
// the "Artist A, Artist B - Title" composite used as the search query on the
// other side of a migration. Provider-specific response shapes never leave
// this package.
//
// # Error taxonomy
//
// Every error returned by a client is an [*Error] carrying a [Kind]. Provider
// quirks are flattened here; notably, YouTube reports quota exhaustion as
// HTTP 403 with a quotaExceeded reason, which clients map to [KindRateLimited]
// rather than [KindForbidden]. Callers branch on [KindOf], never on status
// codes.
package providers
