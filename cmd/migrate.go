package main

import (
	"context"
	"os"
	"sync"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/youtify/internal/formatter"
	"github.com/desertthunder/youtify/internal/tasks"
)

// MigrateRun executes a migration job from one provider to another.
func (r *Runner) MigrateRun(ctx context.Context, cmd *cli.Command) error {
	source, err := parseProviderFlag(cmd.String("from"))
	if err != nil {
		return err
	}
	dest, err := parseProviderFlag(cmd.String("to"))
	if err != nil {
		return err
	}
	if err := r.init(ctx); err != nil {
		return err
	}

	req := tasks.JobRequest{
		UserID:      defaultUserID,
		Source:      source,
		Destination: dest,
		PlaylistIDs: cmd.StringSlice("playlist"),
	}

	progress := make(chan tasks.ProgressUpdate, 256)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			r.writePlainln("%s", update.Message)
		}
	}()

	job, runErr := r.engine.Run(ctx, req, progress)
	close(progress)
	wg.Wait()

	r.writePlain("\n%s", formatter.JobToText(job))

	if reportPath := cmd.String("report"); reportPath != "" {
		if err := os.WriteFile(reportPath, formatter.JobToMarkdown(job), 0644); err != nil {
			r.logger.Warn("failed to write report", "path", reportPath, "error", err)
		} else {
			r.writePlainln("\nReport written to %s", reportPath)
		}
	}

	if runErr != nil {
		r.writePlain("%s\n", r.palette.Err("✗ migration failed"))
		return runErr
	}

	r.writePlain("%s\n", r.palette.OK("✓ migration completed"))
	return nil
}

func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Migrate playlists between providers",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run a migration job",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "from",
						Usage:    "Source provider: spotify or youtube",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "to",
						Usage:    "Destination provider: spotify or youtube",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:    "playlist",
						Aliases: []string{"id"},
						Usage:   "Playlist ID to migrate (repeatable; default is all)",
					},
					&cli.StringFlag{
						Name:  "report",
						Usage: "Write a Markdown report to this path",
					},
				},
				Action: r.MigrateRun,
			},
		},
	}
}
