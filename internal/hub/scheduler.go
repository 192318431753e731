package hub

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/kindralabs/khub/internal/logging"
)

// Scheduler errors.
var (
	ErrSchedulerAlreadyRunning = errors.New("scheduler already running")
	ErrSchedulerNotRunning     = errors.New("scheduler not running")
)

// CycleFunc performs one sync cycle. It must honor ctx cancellation.
type CycleFunc func(ctx context.Context)

// SchedulerConfig contains configuration for the sync scheduler.
type SchedulerConfig struct {
	// Interval is the quiet period between cycles, measured from the end
	// of one cycle to the start of the next.
	// Default: 20s
	Interval time.Duration
}

// DefaultSchedulerConfig returns sensible defaults.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{Interval: 20 * time.Second}
}

// Scheduler drives the sync loop. Cycles are strictly serialized: the next
// tick is armed only after the previous cycle has fully resolved, so slow
// fetches stretch the period instead of piling up concurrent requests.
// While the visibility source reports hidden, ticks are consumed without
// running a cycle.
type Scheduler struct {
	config     SchedulerConfig
	cycle      CycleFunc
	visibility VisibilitySource
	logger     zerolog.Logger

	mu      sync.RWMutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	kick    chan struct{}
}

// NewScheduler creates a sync Scheduler. A nil visibility source means the
// loop never skips.
func NewScheduler(config SchedulerConfig, visibility VisibilitySource, cycle CycleFunc) *Scheduler {
	if config.Interval <= 0 {
		config.Interval = DefaultSchedulerConfig().Interval
	}
	if visibility == nil {
		visibility = AlwaysVisible
	}
	return &Scheduler{
		config:     config,
		cycle:      cycle,
		visibility: visibility,
		logger:     logging.Component("sync-scheduler"),
		kick:       make(chan struct{}, 1),
	}
}

// Start runs an immediate first cycle and then begins the loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrSchedulerAlreadyRunning
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.running = true

	s.logger.Info().
		Dur("interval", s.config.Interval).
		Msg("sync scheduler starting")

	s.wg.Add(1)
	go s.runLoop()

	return nil
}

// Stop halts the loop and waits for any in-flight cycle to finish, so no
// late result lands after teardown.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}

	s.logger.Info().Msg("sync scheduler stopping")
	s.cancel()
	s.running = false
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info().Msg("sync scheduler stopped")
	return nil
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// SyncNow requests an out-of-band cycle ahead of the next tick. No-op if
// one is already queued.
func (s *Scheduler) SyncNow() error {
	s.mu.RLock()
	running := s.running
	s.mu.RUnlock()

	if !running {
		return ErrSchedulerNotRunning
	}

	select {
	case s.kick <- struct{}{}:
	default:
	}
	return nil
}

func (s *Scheduler) runLoop() {
	defer s.wg.Done()

	// First cycle fires immediately so the hub has data before the first
	// interval elapses.
	s.runCycle()

	timer := time.NewTimer(s.config.Interval)
	defer timer.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.kick:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		case <-timer.C:
		}

		s.runCycle()
		timer.Reset(s.config.Interval)
	}
}

func (s *Scheduler) runCycle() {
	if s.ctx.Err() != nil {
		return
	}
	if !s.visibility.Visible() {
		s.logger.Debug().Msg("surface hidden, skipping cycle")
		return
	}

	start := time.Now()
	s.cycle(s.ctx)
	s.logger.Debug().
		Dur("elapsed", time.Since(start)).
		Msg("sync cycle completed")
}
