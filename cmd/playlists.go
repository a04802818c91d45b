package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/youtify/internal/formatter"
)

// PlaylistsList prints the user's playlists on a provider.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	provider, err := parseProviderFlag(cmd.String("provider"))
	if err != nil {
		return err
	}
	if err := r.init(ctx); err != nil {
		return err
	}

	cred, err := r.authMgr.Obtain(ctx, defaultUserID, provider)
	if err != nil {
		return err
	}

	playlists, err := r.clients[provider].ListPlaylists(ctx, cred)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, true)
	}

	r.writePlain("%s\n", r.palette.Title(string(provider)+" playlists"))
	for _, pl := range playlists {
		r.writePlainln("%s  %s", pl.ID, pl.Name)
	}
	r.writePlain("%s\n", r.palette.Help("Use --json for the full shape."))
	return nil
}

// PlaylistsShow prints one playlist with its tracks.
func (r *Runner) PlaylistsShow(ctx context.Context, cmd *cli.Command) error {
	provider, err := parseProviderFlag(cmd.String("provider"))
	if err != nil {
		return err
	}
	if err := r.init(ctx); err != nil {
		return err
	}

	cred, err := r.authMgr.Obtain(ctx, defaultUserID, provider)
	if err != nil {
		return err
	}

	client := r.clients[provider]
	playlistID := cmd.String("id")

	playlists, err := client.ListPlaylists(ctx, cred)
	if err != nil {
		return err
	}

	for _, pl := range playlists {
		if pl.ID != playlistID {
			continue
		}

		pl.Tracks, err = client.ListPlaylistTracks(ctx, cred, pl.ID)
		if err != nil {
			return err
		}

		if cmd.Bool("csv") {
			data, err := formatter.PlaylistToCSV(pl)
			if err != nil {
				return err
			}
			return r.writePlain("%s", data)
		}
		return r.writeJSON(pl, true)
	}

	return r.writePlainln("%s", r.palette.Err("✗ playlist not found: "+playlistID))
}

func playlistsCommand(r *Runner) *cli.Command {
	providerFlag := &cli.StringFlag{
		Name:     "provider",
		Aliases:  []string{"p"},
		Usage:    "Provider: spotify or youtube",
		Required: true,
	}

	return &cli.Command{
		Name:  "playlists",
		Usage: "Inspect playlists on a provider",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List the user's playlists",
				Flags: []cli.Flag{
					providerFlag,
					&cli.BoolFlag{Name: "json", Usage: "Emit JSON"},
				},
				Action: r.PlaylistsList,
			},
			{
				Name:  "show",
				Usage: "Show one playlist with tracks",
				Flags: []cli.Flag{
					providerFlag,
					&cli.StringFlag{Name: "id", Usage: "Playlist ID", Required: true},
					&cli.BoolFlag{Name: "csv", Usage: "Emit track CSV instead of JSON"},
				},
				Action: r.PlaylistsShow,
			},
		},
	}
}
