package tasks

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/youtify/internal/providers"
)

const (
	// maxAppendAttempts is the total number of tries per track,
	// including the first.
	maxAppendAttempts = 5
	// baseAppendDelay is the wait before the first retry; it doubles
	// per attempt.
	baseAppendDelay = time.Second
)

// OutcomeStatus describes what happened to one track during playlist
// construction.
type OutcomeStatus int

const (
	TrackAppended OutcomeStatus = iota
	TrackSkipped
	TrackFailed
)

func (s OutcomeStatus) String() string {
	switch s {
	case TrackAppended:
		return "appended"
	case TrackSkipped:
		return "skipped"
	case TrackFailed:
		return "failed"
	default:
		return ""
	}
}

// TrackOutcome records the fate of one track in the destination playlist.
type TrackOutcome struct {
	Query    string
	TrackID  string
	Status   OutcomeStatus
	Attempts int
	Err      error
}

// BuildResult contains the created playlist and per-track outcomes.
// Outcomes may be partial when the build aborted early.
type BuildResult struct {
	PlaylistID string
	Outcomes   []TrackOutcome
}

// Builder constructs destination playlists one track at a time.
// Appends are serialized so the destination preserves source order.
type Builder struct {
	logger *log.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewBuilder creates a playlist builder.
func NewBuilder(logger *log.Logger) *Builder {
	return &Builder{logger: logger, sleep: sleepContext}
}

// Build creates a playlist and appends every resolved track in order.
//
// Unresolved tracks are skipped. Conflicts and transient failures are
// retried with exponential backoff; a track that exhausts its retries
// is marked failed and the build moves on. Fatal errors (rate limiting,
// expired credentials) abort the build immediately, returning the
// outcomes accumulated so far alongside the error.
func (b *Builder) Build(ctx context.Context, client providers.Client, cred providers.Credential, name, description string, resolutions []Resolution, progress chan<- ProgressUpdate) (*BuildResult, error) {
	sendProgress(progress, createPlaylistUpdate(name, client.Provider()))

	playlistID, err := client.CreatePlaylist(ctx, cred, name, description)
	if err != nil {
		return nil, err
	}

	result := &BuildResult{
		PlaylistID: playlistID,
		Outcomes:   make([]TrackOutcome, 0, len(resolutions)),
	}

	total := len(resolutions)
	for i, res := range resolutions {
		if res.Err != nil {
			outcome := TrackOutcome{Query: res.Query, Status: TrackSkipped, Err: res.Err}
			result.Outcomes = append(result.Outcomes, outcome)
			sendProgress(progress, appendedTrackUpdate(i+1, total, outcome))
			continue
		}

		attempts, err := b.appendWithRetry(ctx, client, cred, playlistID, res.TrackID)
		outcome := TrackOutcome{Query: res.Query, TrackID: res.TrackID, Attempts: attempts, Err: err}

		if err != nil {
			outcome.Status = TrackFailed
			result.Outcomes = append(result.Outcomes, outcome)
			sendProgress(progress, appendedTrackUpdate(i+1, total, outcome))

			if providers.Fatal(err) {
				b.logger.Error("playlist build aborted", "playlist", name, "track", res.Query, "error", err)
				return result, err
			}

			b.logger.Warn("track append failed", "playlist", name, "track", res.Query, "attempts", attempts, "error", err)
			continue
		}

		outcome.Status = TrackAppended
		result.Outcomes = append(result.Outcomes, outcome)
		sendProgress(progress, appendedTrackUpdate(i+1, total, outcome))
	}

	return result, nil
}

// appendWithRetry tries an append up to maxAppendAttempts times,
// doubling the wait between tries starting from baseAppendDelay.
// Only conflicts and transient failures are retried.
func (b *Builder) appendWithRetry(ctx context.Context, client providers.Client, cred providers.Credential, playlistID, trackID string) (int, error) {
	delay := baseAppendDelay

	for attempt := 1; ; attempt++ {
		err := client.AppendTrack(ctx, cred, playlistID, trackID)
		if err == nil {
			return attempt, nil
		}
		if !providers.Retryable(err) || attempt == maxAppendAttempts {
			return attempt, err
		}

		b.logger.Debug("retrying append", "track", trackID, "attempt", attempt, "wait", delay)
		if err := b.sleep(ctx, delay); err != nil {
			return attempt, err
		}
		delay *= 2
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
