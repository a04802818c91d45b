package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"

	"github.com/desertthunder/youtify/internal/auth"
	"github.com/desertthunder/youtify/internal/providers"
	"github.com/desertthunder/youtify/internal/shared"
	"github.com/desertthunder/youtify/internal/store"
	"github.com/desertthunder/youtify/internal/tasks"
	"github.com/desertthunder/youtify/internal/ui"
)

// defaultUserID keys credentials for the single local CLI user.
const defaultUserID = "local"

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config  *shared.Config
	logger  *log.Logger
	output  io.Writer
	palette *ui.Palette

	// Wired lazily so setup and help never require Redis or a database.
	initOnce sync.Once
	initErr  error
	clients  map[providers.Provider]providers.Client
	authMgr  *auth.Manager
	engine   *tasks.Engine
	cache    store.TrackCache
	db       *sql.DB
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:  opts.Config,
		logger:  opts.Logger,
		output:  opts.Output,
		palette: ui.DefaultPalette,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, playlistsCommand, migrateCommand, cacheCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// init wires the stores, provider clients, credential manager, and
// migration engine on first use.
func (r *Runner) init(ctx context.Context) error {
	r.initOnce.Do(func() { r.initErr = r.wire(ctx) })
	return r.initErr
}

func (r *Runner) wire(ctx context.Context) error {
	cfg := r.config

	redisClient, err := store.Connect(store.ConnectOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, r.logger)
	if err != nil {
		return err
	}

	credStore := store.NewRedisCredentialStore(redisClient)

	switch cfg.Cache.Backend {
	case "sqlite":
		db, err := shared.NewDatabase(cfg.Database.Path)
		if err != nil {
			return err
		}
		shared.ConfigureDatabase(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
		if err := shared.RunMigrations(db); err != nil {
			return err
		}
		r.db = db
		r.cache = store.NewSQLiteTrackCache(db)
	default:
		r.cache = store.NewRedisTrackCache(redisClient)
	}

	r.clients = map[providers.Provider]providers.Client{
		providers.Spotify: providers.NewSpotifyClient(providers.SpotifyOpts{RateLimit: cfg.Migrate.RateLimit}),
		providers.YouTube: providers.NewYouTubeClient(providers.YouTubeOpts{RateLimit: cfg.Migrate.RateLimit}),
	}

	refreshers := map[providers.Provider]auth.TokenRefresher{
		providers.Spotify: auth.NewOAuth2Refresher(providers.Spotify, r.oauthConfig(providers.Spotify)),
		providers.YouTube: auth.NewOAuth2Refresher(providers.YouTube, r.oauthConfig(providers.YouTube)),
	}
	r.authMgr = auth.NewManager(credStore, refreshers, r.logger)

	r.engine = tasks.NewEngine(
		r.clients,
		r.authMgr,
		tasks.NewPipeline(cfg.Migrate.Concurrency, r.logger),
		tasks.NewResolver(r.cache, cfg.Cache.TTL(), cfg.Migrate.Concurrency, r.logger),
		tasks.NewBuilder(r.logger),
		r.logger,
	)

	return nil
}

// oauthConfig builds the OAuth2 config for a provider from the
// application credentials.
func (r *Runner) oauthConfig(provider providers.Provider) *oauth2.Config {
	switch provider {
	case providers.Spotify:
		app := r.config.Credentials.Spotify
		return &oauth2.Config{
			ClientID:     app.ClientID,
			ClientSecret: app.ClientSecret,
			RedirectURL:  app.RedirectURI,
			Endpoint:     auth.SpotifyEndpoint,
			Scopes: []string{
				"playlist-read-private",
				"playlist-modify-private",
				"playlist-modify-public",
			},
		}
	case providers.YouTube:
		app := r.config.Credentials.YouTube
		return &oauth2.Config{
			ClientID:     app.ClientID,
			ClientSecret: app.ClientSecret,
			RedirectURL:  app.RedirectURI,
			Endpoint:     auth.GoogleEndpoint,
			Scopes:       []string{"https://www.googleapis.com/auth/youtube"},
		}
	}
	return nil
}

// parseProviderFlag resolves a --provider style flag value.
func parseProviderFlag(value string) (providers.Provider, error) {
	provider, ok := providers.ParseProvider(value)
	if !ok {
		return "", fmt.Errorf("%w: unknown provider %q", shared.ErrInvalidArgument, value)
	}
	return provider, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	return r.writePlain(format+"\n", args...)
}
