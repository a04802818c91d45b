// package store defines persistence for credentials and resolved track
// matches.
//
// Two backends are provided. Redis holds credentials and acts as the
// primary match cache, keyed with the youtify: prefix. SQLite serves as
// a local match cache for installations without a Redis instance, using
// the shared migration machinery.
//
// Cache entries carry a TTL (24 hours by default) so stale resolutions
// age out rather than pinning a track to a removed or region-locked
// upload forever.
package store
