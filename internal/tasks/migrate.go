package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/desertthunder/youtify/internal/providers"
	"github.com/desertthunder/youtify/internal/shared"
)

// JobState tracks a migration job through its phases.
type JobState int

const (
	JobPending JobState = iota
	JobFetching
	JobResolving
	JobBuilding
	JobCompleted
	JobFailed
)

func (s JobState) String() string {
	switch s {
	case JobPending:
		return "pending"
	case JobFetching:
		return "fetching"
	case JobResolving:
		return "resolving"
	case JobBuilding:
		return "building"
	case JobCompleted:
		return "completed"
	case JobFailed:
		return "failed"
	default:
		return ""
	}
}

// JobRequest describes a migration: whose playlists, from where, to
// where. An empty PlaylistIDs migrates every playlist the user owns.
type JobRequest struct {
	UserID      string
	Source      providers.Provider
	Destination providers.Provider
	PlaylistIDs []string
}

// PlaylistMigration records the result for one playlist within a job.
type PlaylistMigration struct {
	Source        providers.Playlist
	DestinationID string
	Outcomes      []TrackOutcome
}

// JobResult is the final record of a migration job. Playlists holds the
// per-playlist results completed before any failure.
type JobResult struct {
	ID        string
	State     JobState
	Playlists []PlaylistMigration
}

// CredentialSource yields credentials valid for immediate use.
// Implemented by auth.Manager.
type CredentialSource interface {
	Obtain(ctx context.Context, userID string, provider providers.Provider) (providers.Credential, error)
}

// Engine orchestrates migration jobs across providers.
type Engine struct {
	clients  map[providers.Provider]providers.Client
	creds    CredentialSource
	pipeline *Pipeline
	resolver *Resolver
	builder  *Builder
	logger   *log.Logger
}

// NewEngine creates a migration engine over the registered provider clients.
func NewEngine(clients map[providers.Provider]providers.Client, creds CredentialSource, pipeline *Pipeline, resolver *Resolver, builder *Builder, logger *log.Logger) *Engine {
	return &Engine{
		clients:  clients,
		creds:    creds,
		pipeline: pipeline,
		resolver: resolver,
		builder:  builder,
		logger:   logger,
	}
}

// Run executes a migration job to completion.
//
// The job moves through fetching, resolving, and building. A track with
// no match on the destination is skipped without failing the job; any
// fatal provider error fails the job, preserving the results of
// playlists already migrated.
func (e *Engine) Run(ctx context.Context, req JobRequest, progress chan<- ProgressUpdate) (*JobResult, error) {
	job := &JobResult{ID: shared.GenerateID(), State: JobPending}

	source, dest, err := e.validate(req)
	if err != nil {
		job.State = JobFailed
		return job, err
	}

	logger := e.logger.With("job", job.ID, "source", req.Source, "destination", req.Destination)
	logger.Info("migration started", "playlists", len(req.PlaylistIDs))

	srcCred, err := e.creds.Obtain(ctx, req.UserID, req.Source)
	if err != nil {
		return e.fail(logger, job, err)
	}

	job.State = JobFetching
	playlists, err := e.pipeline.FetchAll(ctx, source, srcCred, req.PlaylistIDs, progress)
	if err != nil {
		return e.fail(logger, job, err)
	}

	resolutions, err := e.resolveStage(ctx, job, req, dest, playlists, progress)
	if err != nil {
		return e.fail(logger, job, err)
	}

	if err := e.buildStage(ctx, job, req, dest, playlists, resolutions, progress); err != nil {
		return e.fail(logger, job, err)
	}

	job.State = JobCompleted
	logger.Info("migration completed", "playlists", len(job.Playlists))
	return job, nil
}

// resolveStage matches every playlist's tracks against the destination,
// fanning playlists out concurrently with results kept in playlist
// order. The credential is obtained fresh so a token that aged out
// during fetching refreshes before the searches start.
func (e *Engine) resolveStage(ctx context.Context, job *JobResult, req JobRequest, dest providers.Client, playlists []providers.Playlist, progress chan<- ProgressUpdate) ([][]Resolution, error) {
	cred, err := e.creds.Obtain(ctx, req.UserID, req.Destination)
	if err != nil {
		return nil, err
	}

	job.State = JobResolving
	resolutions := make([][]Resolution, len(playlists))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.pipeline.concurrency)

	for i, pl := range playlists {
		g.Go(func() error {
			queries := make([]string, len(pl.Tracks))
			for j, track := range pl.Tracks {
				queries[j] = track.Name
			}

			resolved, err := e.resolver.Resolve(gctx, dest, cred, queries, progress)
			if err != nil {
				return err
			}
			resolutions[i] = resolved
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resolutions, nil
}

// buildStage creates the destination playlists concurrently, appending
// results to the job in playlist order. Partial build results are
// recorded even when a playlist fails, so a fatal error still leaves
// every finished outcome on the job.
func (e *Engine) buildStage(ctx context.Context, job *JobResult, req JobRequest, dest providers.Client, playlists []providers.Playlist, resolutions [][]Resolution, progress chan<- ProgressUpdate) error {
	cred, err := e.creds.Obtain(ctx, req.UserID, req.Destination)
	if err != nil {
		return err
	}

	job.State = JobBuilding
	migrated := make([]*PlaylistMigration, len(playlists))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.pipeline.concurrency)

	for i, pl := range playlists {
		g.Go(func() error {
			description := fmt.Sprintf("Migrated from %s: %s", req.Source, pl.Name)
			built, err := e.builder.Build(gctx, dest, cred, pl.Name, description, resolutions[i], progress)
			if built != nil {
				migrated[i] = &PlaylistMigration{
					Source:        pl,
					DestinationID: built.PlaylistID,
					Outcomes:      built.Outcomes,
				}
			}
			return err
		})
	}
	buildErr := g.Wait()

	for _, m := range migrated {
		if m != nil {
			job.Playlists = append(job.Playlists, *m)
		}
	}
	return buildErr
}

func (e *Engine) validate(req JobRequest) (source, dest providers.Client, err error) {
	if !req.Source.Valid() || !req.Destination.Valid() {
		return nil, nil, fmt.Errorf("%w: unknown provider", shared.ErrInvalidArgument)
	}
	if req.Source == req.Destination {
		return nil, nil, fmt.Errorf("%w: source and destination must differ", shared.ErrInvalidArgument)
	}
	if req.UserID == "" {
		return nil, nil, fmt.Errorf("%w: user id required", shared.ErrInvalidArgument)
	}

	source, ok := e.clients[req.Source]
	if !ok {
		return nil, nil, fmt.Errorf("%w: no client for %s", shared.ErrServiceUnavailable, req.Source)
	}
	dest, ok = e.clients[req.Destination]
	if !ok {
		return nil, nil, fmt.Errorf("%w: no client for %s", shared.ErrServiceUnavailable, req.Destination)
	}
	return source, dest, nil
}

func (e *Engine) fail(logger *log.Logger, job *JobResult, err error) (*JobResult, error) {
	job.State = JobFailed
	logger.Error("migration failed", "error", err)
	return job, err
}
