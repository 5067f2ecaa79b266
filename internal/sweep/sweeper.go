// Package sweep removes stale temporary clone directories in the background.
package sweep

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/spf13/afero"

	"github.com/quantmind-br/gitingest-go/internal/metrics"
	"github.com/quantmind-br/gitingest-go/internal/utils"
)

// Default timings
const (
	DefaultInterval = 60 * time.Second
	DefaultMaxAge   = 60 * time.Minute
)

// Sweeper periodically deletes the immediate subdirectories of Root that
// are older than MaxAge.
type Sweeper struct {
	fs       afero.Fs
	root     string
	maxAge   time.Duration
	interval time.Duration
	logger   *utils.Logger
	metrics  metrics.Recorder
	now      func() time.Time

	mu        sync.Mutex
	scheduler gocron.Scheduler
	cancel    context.CancelFunc
}

// Options contains options for creating a Sweeper
type Options struct {
	Fs       afero.Fs // defaults to the OS filesystem
	Root     string
	MaxAge   time.Duration
	Interval time.Duration
	Logger   *utils.Logger
	Metrics  metrics.Recorder
}

// New creates a new Sweeper
func New(opts Options) *Sweeper {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = DefaultMaxAge
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = utils.NewNopLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NoopRecorder{}
	}
	return &Sweeper{
		fs:       opts.Fs,
		root:     opts.Root,
		maxAge:   opts.MaxAge,
		interval: opts.Interval,
		logger:   opts.Logger.WithComponent("sweep"),
		metrics:  opts.Metrics,
		now:      time.Now,
	}
}

// Start schedules the sweep. The first cycle runs immediately.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler != nil {
		return nil
	}

	sched, err := gocron.NewScheduler(gocron.WithLogger(s.logger.Slog()))
	if err != nil {
		return fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	jobCtx, cancel := context.WithCancel(ctx)
	_, err = sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() { s.Sweep(jobCtx) }),
		gocron.WithName("stale-clone-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		cancel()
		_ = sched.Shutdown()
		return fmt.Errorf("failed to create sweep job: %w", err)
	}

	sched.Start()
	s.scheduler = sched
	s.cancel = cancel

	s.logger.Info().
		Str("root", s.root).
		Dur("interval", s.interval).
		Dur("max_age", s.maxAge).
		Msg("Sweeper started")
	return nil
}

// Stop cancels the running cycle, if any, and waits for it to return
func (s *Sweeper) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler == nil {
		return nil
	}

	s.cancel()
	err := s.scheduler.Shutdown()
	s.scheduler = nil
	s.cancel = nil

	s.logger.Info().Msg("Sweeper stopped")
	return err
}

// Sweep runs one cleanup cycle and returns the number of removed directories
func (s *Sweeper) Sweep(ctx context.Context) int {
	exists, err := afero.DirExists(s.fs, s.root)
	if err != nil {
		s.logger.Error().Err(err).Str("root", s.root).Msg("Failed to stat clone root")
		s.metrics.IncSweepError()
		return 0
	}
	if !exists {
		return 0
	}

	entries, err := afero.ReadDir(s.fs, s.root)
	if err != nil {
		s.logger.Error().Err(err).Str("root", s.root).Msg("Failed to list clone root")
		s.metrics.IncSweepError()
		return 0
	}

	now := s.now()
	removed := 0
	for _, e := range entries {
		if ctx.Err() != nil {
			break
		}
		if !e.IsDir() {
			continue
		}

		age := now.Sub(e.ModTime())
		if age <= s.maxAge {
			continue
		}

		dir := filepath.Join(s.root, e.Name())
		if err := s.fs.RemoveAll(dir); err != nil {
			s.logger.Warn().Err(err).Str("dir", dir).Msg("Failed to remove stale directory")
			s.metrics.IncSweepError()
			continue
		}
		removed++
		s.logger.Debug().Str("dir", dir).Dur("age", age).Msg("Removed stale directory")
	}

	if removed > 0 {
		s.logger.Info().Int("removed", removed).Msg("Stale directories removed")
	}
	s.metrics.AddSweepRemoved(removed)
	return removed
}
