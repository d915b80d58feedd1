package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/biosync/internal/models"
	"github.com/desertthunder/biosync/internal/services"
	"github.com/desertthunder/biosync/internal/shared"
)

const (
	DefaultInterval   = 10 * time.Second
	DefaultCyclePolls = 10
)

var ErrAlreadyRunning = errors.New("scheduler already started")

// Refresher renews the access token. [services.SpotifyAuth] implements it.
type Refresher interface {
	Refresh(ctx context.Context, token models.AccessToken) (models.AccessToken, error)
}

// TokenSaver persists a refreshed token. [shared.CredentialStore] implements it.
type TokenSaver interface {
	SaveToken(token models.AccessToken) error
}

// Formatter renders a playback state. [formatter.Bio] implements it.
type Formatter interface {
	Format(state *models.PlaybackState) string
}

// SchedulerOpts contains the collaborators and cadence of a [Scheduler].
type SchedulerOpts struct {
	Player    services.Player
	Refresher Refresher
	Writer    services.BioWriter
	Formatter Formatter
	Token     models.AccessToken

	Saver      TokenSaver    // Optional, persists every refreshed token
	Interval   time.Duration // Sleep between polls, defaults to [DefaultInterval]
	CyclePolls int           // Polls between token refreshes, defaults to [DefaultCyclePolls]
	Logger     *log.Logger
	Updates    chan<- Update

	// After replaces [time.After] in tests.
	After func(time.Duration) <-chan time.Time
}

// Scheduler owns the access token and the last written bio for the lifetime of one [Scheduler.Run].
//
// Everything except [Scheduler.Stop] and [Scheduler.State] must be used from the goroutine calling Run.
type Scheduler struct {
	player     services.Player
	refresher  Refresher
	writer     services.BioWriter
	formatter  Formatter
	saver      TokenSaver
	interval   time.Duration
	cyclePolls int
	logger     *log.Logger
	updates    chan<- Update
	after      func(time.Duration) <-chan time.Time

	token   models.AccessToken
	lastBio string
	hasBio  bool
	polls   int
	cycles  int

	state    atomic.Int32
	stopped  atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewScheduler validates opts and returns an idle scheduler.
func NewScheduler(opts SchedulerOpts) (*Scheduler, error) {
	switch {
	case opts.Player == nil:
		return nil, fmt.Errorf("%w: player", shared.ErrMissingArgument)
	case opts.Refresher == nil:
		return nil, fmt.Errorf("%w: refresher", shared.ErrMissingArgument)
	case opts.Writer == nil:
		return nil, fmt.Errorf("%w: bio writer", shared.ErrMissingArgument)
	case opts.Formatter == nil:
		return nil, fmt.Errorf("%w: formatter", shared.ErrMissingArgument)
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.CyclePolls <= 0 {
		opts.CyclePolls = DefaultCyclePolls
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.After == nil {
		opts.After = time.After
	}

	return &Scheduler{
		player:     opts.Player,
		refresher:  opts.Refresher,
		writer:     opts.Writer,
		formatter:  opts.Formatter,
		saver:      opts.Saver,
		interval:   opts.Interval,
		cyclePolls: opts.CyclePolls,
		logger:     opts.Logger,
		updates:    opts.Updates,
		after:      opts.After,
		token:      opts.Token,
		stopCh:     make(chan struct{}),
	}, nil
}

// Stop requests a cooperative shutdown. It is safe to call from any goroutine, more than once.
//
// A poll in flight completes first; a pending sleep is cut short.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.stopped.Store(true)
		close(s.stopCh)
	})
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Token returns the access token currently held. Only read it after Run has returned.
func (s *Scheduler) Token() models.AccessToken {
	return s.token
}

// Run polls until [Scheduler.Stop] is called, ctx is cancelled, or an error survives its retry.
//
// Each cycle is CyclePolls polls with a sleep after each one, followed by a token refresh.
// The bio is only written when the formatted text changes. Whatever ends the loop, the idle text
// is written once before Run returns.
//
// Network calls run on a context detached from ctx's cancellation, so a cancelled ctx never aborts
// a request halfway.
func (s *Scheduler) Run(ctx context.Context) (err error) {
	if !s.state.CompareAndSwap(int32(Idle), int32(Polling)) {
		return ErrAlreadyRunning
	}

	callCtx := context.WithoutCancel(ctx)
	defer func() {
		err = errors.Join(err, s.shutdown(callCtx, err))
	}()

	s.logger.Info("starting poll loop", "interval", s.interval, "cycle_polls", s.cyclePolls)

	for !s.stopRequested(ctx) {
		for range s.cyclePolls {
			if err := s.poll(callCtx); err != nil {
				return err
			}
			if s.stopRequested(ctx) || !s.sleep(ctx) {
				return nil
			}
		}

		if err := s.refresh(callCtx); err != nil {
			return err
		}
		s.cycles++
		s.send(refreshUpdate(s.polls, s.cycles))
	}
	return nil
}

func (s *Scheduler) stopRequested(ctx context.Context) bool {
	return s.stopped.Load() || ctx.Err() != nil
}

// sleep waits one interval and reports whether the loop should continue.
func (s *Scheduler) sleep(ctx context.Context) bool {
	select {
	case <-s.after(s.interval):
		return !s.stopRequested(ctx)
	case <-s.stopCh:
		return false
	case <-ctx.Done():
		return false
	}
}

func (s *Scheduler) setState(state State) {
	s.state.Store(int32(state))
}

func (s *Scheduler) send(u Update) {
	if s.updates == nil {
		return
	}
	select {
	case s.updates <- u:
	default:
	}
}

// poll fetches one playback state and writes the bio when its text changed.
func (s *Scheduler) poll(ctx context.Context) error {
	s.setState(Polling)
	s.polls++
	s.send(pollUpdate(s.polls, s.cycles))

	state, err := s.fetch(ctx)
	if err != nil {
		var parseErr *shared.PlaybackParseError
		if errors.As(err, &parseErr) {
			s.logger.Warn("skipping malformed playback state", "poll", s.polls, "error", err)
			s.send(skippedUpdate(s.polls, s.cycles, err))
			return nil
		}
		return err
	}

	bio := s.formatter.Format(state)
	if s.hasBio && bio == s.lastBio {
		s.logger.Debug("bio unchanged", "poll", s.polls)
		return nil
	}

	if err := s.write(ctx, bio); err != nil {
		return err
	}
	s.logger.Info("bio updated", "poll", s.polls, "bio", bio)
	s.send(bioUpdate(s.polls, s.cycles, bio))
	return nil
}

// fetch retries a failed poll once. An expired token is refreshed before the retry.
func (s *Scheduler) fetch(ctx context.Context) (*models.PlaybackState, error) {
	state, err := s.player.PlaybackState(ctx, s.token)

	var parseErr *shared.PlaybackParseError
	switch {
	case err == nil:
		return state, nil
	case errors.As(err, &parseErr):
		return nil, err
	case errors.Is(err, shared.ErrTokenExpired):
		s.logger.Warn("access token rejected, refreshing early", "error", err)
		if err := s.refresh(ctx); err != nil {
			return nil, err
		}
		s.setState(Polling)
	default:
		s.logger.Warn("playback poll failed, retrying once", "error", err)
	}

	state, err = s.player.PlaybackState(ctx, s.token)
	if err != nil {
		return nil, fmt.Errorf("playback poll failed: %w", err)
	}
	return state, nil
}

// refresh replaces the held token, retrying once unless the grant itself was rejected.
func (s *Scheduler) refresh(ctx context.Context) error {
	s.setState(Refreshing)

	token, err := s.refresher.Refresh(ctx, s.token)
	if err != nil && retryable(err) {
		s.logger.Warn("token refresh failed, retrying once", "error", err)
		token, err = s.refresher.Refresh(ctx, s.token)
	}
	if err != nil {
		return fmt.Errorf("token refresh failed: %w", err)
	}

	s.token = token
	s.logger.Debug("access token refreshed", "expires_in", token.ExpiresIn)

	if s.saver != nil {
		if err := s.saver.SaveToken(token); err != nil {
			s.logger.Warn("failed to persist refreshed token", "error", err)
		}
	}
	return nil
}

func (s *Scheduler) write(ctx context.Context, bio string) error {
	err := s.writer.SetBio(ctx, bio)
	if err != nil {
		s.logger.Warn("bio update failed, retrying once", "error", err)
		err = s.writer.SetBio(ctx, bio)
	}
	if err != nil {
		return fmt.Errorf("bio update failed: %w", err)
	}

	s.lastBio = bio
	s.hasBio = true
	return nil
}

// shutdown writes the idle text unconditionally.
func (s *Scheduler) shutdown(ctx context.Context, cause error) error {
	s.setState(ShuttingDown)
	idle := s.formatter.Format(nil)
	s.send(shutdownUpdate(s.polls, s.cycles, idle))

	err := s.write(ctx, idle)
	if err != nil {
		s.logger.Error("failed to restore idle bio", "error", err)
	}

	s.setState(Stopped)
	s.send(stoppedUpdate(s.polls, s.cycles, errors.Join(cause, err)))
	s.logger.Info("poll loop stopped", "polls", s.polls, "cycles", s.cycles)
	return err
}

func retryable(err error) bool {
	var authErr *shared.AuthorizationError
	return !errors.As(err, &authErr) && !errors.Is(err, shared.ErrNoRefreshToken)
}
