package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/biosync/internal/formatter"
	"github.com/desertthunder/biosync/internal/services"
	"github.com/desertthunder/biosync/internal/shared"
	"github.com/desertthunder/biosync/internal/tasks"
	"github.com/desertthunder/biosync/internal/ui"
	"github.com/urfave/cli/v3"
)

const tuiLogFile = "biosync.log"

// Run mirrors playback into the bio until SIGINT/SIGTERM, then restores the idle text.
//
// Missing credentials start the generate flow first.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	if !r.store.Exists() {
		r.writePlain("No credentials found at %s, starting setup.\n", r.store.Path())
		if err := r.Generate(ctx, cmd); err != nil {
			return err
		}
	}

	creds, err := r.store.Load()
	if err != nil {
		return err
	}
	if err := creds.Validate(); err != nil {
		return fmt.Errorf("%w, run `biosync generate`", err)
	}

	bio, err := formatter.FromConfig(r.config.Bio)
	if err != nil {
		return err
	}

	auth, err := r.services.Auth(creds.App, r.httpClient)
	if err != nil {
		return err
	}

	writer, err := r.services.Bio(services.TelegramOpts{
		Login:       creds.Telegram,
		HTTPClient:  r.httpClient,
		MinInterval: r.config.Telegram.MinUpdateInterval(),
	})
	if err != nil {
		return fmt.Errorf("telegram login failed: %w", err)
	}

	useTUI := cmd.Bool("tui")
	if useTUI && cmd.String("log-file") == "" {
		fileLogger, err := shared.NewFileLogger(tuiLogFile)
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		fileLogger.SetLevel(r.logger.GetLevel())
		r.SetLogger(fileLogger)
	}

	var updates chan tasks.Update
	if useTUI {
		updates = make(chan tasks.Update, 64)
	}

	opts := tasks.SchedulerOpts{
		Player:     r.services.Player(r.httpClient),
		Refresher:  auth,
		Writer:     writer,
		Formatter:  bio,
		Token:      creds.Token,
		Interval:   r.config.Poll.Interval(),
		CyclePolls: r.config.Poll.CyclePolls,
		Logger:     shared.WithLogger(r.logger, "component", "scheduler"),
		Updates:    updates,
		After:      r.after,
	}
	if r.config.Poll.PersistRefreshedToken {
		opts.Saver = r.store
	}

	scheduler, err := tasks.NewScheduler(opts)
	if err != nil {
		return err
	}

	stopWatching := r.watchSignals(scheduler, !useTUI)
	defer stopWatching()

	if useTUI {
		return r.runWithStatus(ctx, scheduler, updates)
	}

	r.writePlain("✓ Syncing bio, press Ctrl+C to stop\n")
	if err := scheduler.Run(ctx); err != nil {
		return err
	}
	r.writePlain("✓ Idle bio restored, bye\n")
	return nil
}

// watchSignals stops the scheduler on the first SIGINT or SIGTERM. The returned func releases the signals.
//
// notify prints a wait notice; it must be false while the status view owns the terminal.
func (r *Runner) watchSignals(s *tasks.Scheduler, notify bool) func() {
	sigs := r.signals
	if sigs == nil {
		sigs = make(chan os.Signal, 1)
		signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	}

	done := make(chan struct{})
	go func() {
		select {
		case sig := <-sigs:
			r.logger.Info("received signal, stopping", "signal", sig)
			if notify {
				r.writePlainln("Stopping, please wait while the idle bio is restored...")
			}
			s.Stop()
		case <-done:
		}
	}()

	return func() {
		close(done)
		if r.signals == nil {
			signal.Stop(sigs)
		}
	}
}

func (r *Runner) runWithStatus(ctx context.Context, s *tasks.Scheduler, updates <-chan tasks.Update) error {
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
		close(done)
	}()

	model := ui.NewStatusModel(updates, done, s.Stop)
	if _, err := tea.NewProgram(model, tea.WithContext(ctx)).Run(); err != nil {
		r.logger.Warn("status view exited", "error", err)
	}

	s.Stop()
	if err, ok := <-done; ok {
		return err
	}
	return model.Err()
}
