package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/youtify/internal/shared"
)

// Setup writes a starter config file and, for the sqlite cache backend,
// initializes the database schema.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		r.logger.Warn("config file not created", "path", configPath, "error", err)
	} else {
		r.writePlainln("✓ Config written to %s", configPath)
	}

	if r.config.Cache.Backend != "sqlite" {
		r.writePlainln("Cache backend is %s; no database setup needed.", r.config.Cache.Backend)
		return nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return err
	}

	r.writePlainln("✓ Database ready at %s", r.config.Database.Path)
	return nil
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Write a starter config and initialize the local cache database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}
