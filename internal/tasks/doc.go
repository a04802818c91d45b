// package tasks implements the playlist migration engine.
//
// A migration is a job moving one or more playlists from a source
// provider to a destination provider. The Engine drives it through
// three phases: fetching source playlists with their tracks, resolving
// each track against the destination's catalog (consulting the match
// cache first), and building the destination playlists track by track.
//
// Long-running operations emit ProgressUpdate values via channels for
// non-blocking status reporting to the CLI layer.
package tasks
