package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/biosync/internal/models"
	"github.com/desertthunder/biosync/internal/services"
	"github.com/desertthunder/biosync/internal/shared"
	"github.com/desertthunder/biosync/internal/ui"
	"github.com/urfave/cli/v3"
)

// ServiceFactory builds the network clients a command needs.
type ServiceFactory struct {
	Auth   func(app models.AppCredentials, client *http.Client) (services.TokenService, error)
	Player func(client *http.Client) services.Player
	Bio    func(opts services.TelegramOpts) (services.BioWriter, error)
}

// DefaultServices returns the factory backed by the real Spotify and Telegram clients.
func DefaultServices() ServiceFactory {
	return ServiceFactory{
		Auth: func(app models.AppCredentials, client *http.Client) (services.TokenService, error) {
			auth, err := services.NewSpotifyAuth(app, client)
			if err != nil {
				return nil, err
			}
			return auth, nil
		},
		Player: func(client *http.Client) services.Player {
			return services.NewSpotifyPlayer(client)
		},
		Bio: func(opts services.TelegramOpts) (services.BioWriter, error) {
			bio, err := services.NewTelegramBio(opts)
			if err != nil {
				return nil, err
			}
			return bio, nil
		},
	}
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	store      *shared.CredentialStore
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	prompter   ui.Prompter
	services   ServiceFactory
	openURL    func(string) error
	signals    chan os.Signal
	after      func(time.Duration) <-chan time.Time
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Store      *shared.CredentialStore
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Prompter   ui.Prompter
	Services   *ServiceFactory
	OpenURL    func(string) error

	// Signals replaces SIGINT/SIGTERM delivery in tests.
	Signals chan os.Signal
	// After replaces [time.After] for the scheduler's sleeps.
	After func(time.Duration) <-chan time.Time
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Store == nil {
		opts.Store = shared.NewCredentialStore(shared.DefaultCredentialsPath)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.Prompter == nil {
		opts.Prompter = ui.TeaPrompter{}
	}
	if opts.Services == nil {
		svc := DefaultServices()
		opts.Services = &svc
	}
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}

	return &Runner{
		config:     opts.Config,
		store:      opts.Store,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		prompter:   opts.Prompter,
		services:   *opts.Services,
		openURL:    opts.OpenURL,
		signals:    opts.Signals,
		after:      opts.After,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){runCommand, generateCommand, initCommand} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by every command.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// Setup loads settings and credentials paths and configures logging. It runs before every command.
//
// A missing settings file is not an error: the embedded defaults are used.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("log-file"); path != "" {
		fileLogger, err := shared.NewFileLogger(path)
		if err != nil {
			return ctx, fmt.Errorf("failed to create file logger: %w", err)
		}
		r.SetLogger(fileLogger)
	}

	configPath := cmd.String("config")
	if _, err := os.Stat(configPath); err == nil {
		config, err := shared.LoadConfig(configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
		r.logger.Debug("settings loaded", "path", configPath)
	} else {
		r.logger.Debug("settings file not found, using defaults", "path", configPath)
	}

	level := r.config.Log.Level
	if flag := cmd.String("log-level"); flag != "" {
		level = flag
	}
	if err := shared.SetLogLevel(r.logger, level); err != nil {
		return ctx, err
	}

	r.store = shared.NewCredentialStore(cmd.String("credentials"))
	return ctx, nil
}

// Init writes the embedded settings to --config.
func (r *Runner) Init(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("settings file created", "path", path)
	return r.writePlain("✓ Settings written to %s\n", path)
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
