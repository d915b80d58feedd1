// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/biosync/internal/shared"
	"github.com/urfave/cli/v3"
)

// app builds the root command. Without a subcommand it behaves like `run`.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:     "biosync",
		Usage:    "Mirror Spotify playback into a Telegram profile",
		Version:  "0.3.0",
		Flags:    globalFlags(),
		Before:   r.Setup,
		Action:   r.Run,
		Commands: r.register(),
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to settings file",
			Value:   "config.toml",
			Sources: cli.EnvVars("BIOSYNC_CONFIG"),
		},
		&cli.StringFlag{
			Name:    "credentials",
			Usage:   "Path to the credentials document",
			Value:   shared.DefaultCredentialsPath,
			Sources: cli.EnvVars("BIOSYNC_CREDENTIALS"),
		},
		&cli.StringFlag{
			Name:    "log-file",
			Usage:   "Write logs to a rotated file instead of stderr",
			Sources: cli.EnvVars("BIOSYNC_LOG_FILE"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level (debug, info, warn, error), overrides log.level",
			Sources: cli.EnvVars("BIOSYNC_LOG_LEVEL"),
		},
		&cli.BoolFlag{
			Name:    "listen",
			Usage:   "Capture the OAuth redirect with a local server instead of pasting it",
			Sources: cli.EnvVars("BIOSYNC_LISTEN"),
		},
		&cli.BoolFlag{
			Name:    "no-browser",
			Usage:   "Print the authorization URL without opening a browser",
			Sources: cli.EnvVars("BIOSYNC_NO_BROWSER"),
		},
		&cli.BoolFlag{
			Name:    "tui",
			Usage:   "Show a live status view while running",
			Sources: cli.EnvVars("BIOSYNC_TUI"),
		},
	}
}

func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "Poll playback and keep the bio in sync until interrupted",
		Action: r.Run,
	}
}

func generateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "generate",
		Aliases: []string{"gen"},
		Usage:   "Authorize Spotify, log in to Telegram, and write the credentials document",
		Action:  r.Generate,
	}
}

func initCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "init",
		Usage:  "Write a settings file with the default values",
		Action: r.Init,
	}
}
