package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/youtify/internal/providers"
	"github.com/desertthunder/youtify/internal/server"
	"github.com/desertthunder/youtify/internal/shared"
)

// loginTimeout bounds how long we wait for the user to finish the
// browser consent flow.
const loginTimeout = 3 * time.Minute

// AuthLogin runs the OAuth authorization code flow for a provider.
//
// Starts a temporary callback server, opens the consent page in the
// browser, and stores the exchanged credential.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	provider, err := parseProviderFlag(cmd.String("provider"))
	if err != nil {
		return err
	}
	if err := r.init(ctx); err != nil {
		return err
	}

	oauthConfig := r.oauthConfig(provider)
	if oauthConfig.ClientID == "" || oauthConfig.ClientSecret == "" {
		return fmt.Errorf("%w: no OAuth app configured for %s", shared.ErrMissingConfig, provider)
	}

	state := shared.GenerateID()
	handler := server.NewOAuthHandler(provider, oauthConfig, state)

	router := server.NewBasicRouter()
	router.Handler(handler)

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	srv := &http.Server{Addr: addr, Handler: router}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.logger.Error("callback server failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	authURL := handler.AuthURL()
	r.writePlainln("Opening browser for %s authorization...", provider)
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warn("could not open browser", "error", err)
		r.writePlainln("Visit this URL to authorize:\n\n  %s", authURL)
	}

	select {
	case result := <-handler.Result():
		if err := result.Error(); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
		}
		if err := r.authMgr.Store(ctx, defaultUserID, result.Credential); err != nil {
			return err
		}
		r.writePlain("%s\n", r.palette.OK(fmt.Sprintf("✓ Authorized with %s", provider)))
		return nil
	case <-time.After(loginTimeout):
		return fmt.Errorf("%w: no callback received", shared.ErrTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AuthStatus reports stored credential state per provider.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.init(ctx); err != nil {
		return err
	}

	for _, provider := range []providers.Provider{providers.Spotify, providers.YouTube} {
		held, valid, err := r.authMgr.Status(ctx, defaultUserID, provider)
		if err != nil {
			return err
		}

		switch {
		case !held:
			r.writePlainln("%s: %s", provider, r.palette.Err("✗ not authorized"))
		case valid:
			r.writePlainln("%s: %s", provider, r.palette.OK("✓ authorized"))
		default:
			r.writePlainln("%s: %s", provider, r.palette.Warn("○ expired (will refresh on use)"))
		}
	}
	return nil
}

// AuthLogout removes the stored credential for a provider.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	provider, err := parseProviderFlag(cmd.String("provider"))
	if err != nil {
		return err
	}
	if err := r.init(ctx); err != nil {
		return err
	}

	if err := r.authMgr.Revoke(ctx, defaultUserID, provider); err != nil {
		return err
	}
	r.writePlainln("✓ Removed %s credential", provider)
	return nil
}

func authCommand(r *Runner) *cli.Command {
	providerFlag := &cli.StringFlag{
		Name:     "provider",
		Aliases:  []string{"p"},
		Usage:    "Provider: spotify or youtube",
		Required: true,
	}

	return &cli.Command{
		Name:  "auth",
		Usage: "Authorize with a provider",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Run the browser OAuth flow and store the credential",
				Flags:  []cli.Flag{providerFlag},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show stored credential state",
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Remove the stored credential",
				Flags:  []cli.Flag{providerFlag},
				Action: r.AuthLogout,
			},
		},
	}
}
