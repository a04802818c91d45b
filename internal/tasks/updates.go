package tasks

import (
	"fmt"

	"github.com/desertthunder/youtify/internal/providers"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	FetchPlaylists Phase = iota
	FetchTracks
	ResolveTracks
	CreatePlaylist
	AppendTracks
)

func (p Phase) String() string {
	switch p {
	case FetchPlaylists:
		return "fetch_playlists"
	case FetchTracks:
		return "fetch_tracks"
	case ResolveTracks:
		return "resolve_tracks"
	case CreatePlaylist:
		return "create_playlist"
	case AppendTracks:
		return "append_tracks"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

func fetchingPlaylistsUpdate(provider providers.Provider) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylists,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching playlists from %s...", provider),
	}
}

func fetchedTracksUpdate(step, total int, pl providers.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s (%d tracks)", step, total, pl.Name, len(pl.Tracks)),
		Data:    pl,
	}
}

func resolvedTrackUpdate(step, total int, res Resolution) ProgressUpdate {
	var msg string
	switch {
	case res.Err != nil:
		msg = fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.Query, res.Err)
	case res.Cached:
		msg = fmt.Sprintf("[%d/%d] ✓ %s (cached)", step, total, res.Query)
	default:
		msg = fmt.Sprintf("[%d/%d] ✓ %s", step, total, res.Query)
	}
	return ProgressUpdate{
		Phase:   ResolveTracks,
		Step:    step,
		Total:   total,
		Message: msg,
		Data:    res,
	}
}

func createPlaylistUpdate(name string, provider providers.Provider) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist %q on %s...", name, provider),
	}
}

func appendedTrackUpdate(step, total int, outcome TrackOutcome) ProgressUpdate {
	var msg string
	switch outcome.Status {
	case TrackAppended:
		msg = fmt.Sprintf("[%d/%d] ✓ %s", step, total, outcome.Query)
	case TrackSkipped:
		msg = fmt.Sprintf("[%d/%d] – %s (unresolved)", step, total, outcome.Query)
	default:
		msg = fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, outcome.Query, outcome.Err)
	}
	return ProgressUpdate{
		Phase:   AppendTracks,
		Step:    step,
		Total:   total,
		Message: msg,
		Data:    outcome,
	}
}
