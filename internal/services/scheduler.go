package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"brokemate/internal/core"
)

// SchedulerConfig holds configuration for the recurring scheduler
type SchedulerConfig struct {
	// Interval is how often every partition is evaluated (default: 1h)
	Interval time.Duration

	// RunOnStart evaluates immediately when the scheduler starts (default: true)
	RunOnStart bool
}

// DefaultSchedulerConfig returns sensible defaults
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Interval:   time.Hour,
		RunOnStart: true,
	}
}

// AllUsersProcessor is the part of RecurringProcessor the scheduler drives.
type AllUsersProcessor interface {
	ProcessAll(ctx context.Context, today core.Date) (int, error)
}

// Scheduler runs evaluation passes on a timer so subscriptions fire even
// when nobody touches the subscription collection.
type Scheduler struct {
	processor AllUsersProcessor
	clock     core.Clock
	config    SchedulerConfig

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewScheduler(processor AllUsersProcessor, clock core.Clock, config SchedulerConfig) *Scheduler {
	if config.Interval <= 0 {
		config.Interval = DefaultSchedulerConfig().Interval
	}
	if clock == nil {
		clock = core.SystemClock{}
	}
	return &Scheduler{processor: processor, clock: clock, config: config}
}

// Start begins the evaluation loop. Returns an error if already running.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("recurring scheduler is already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	go s.runLoop(ctx, s.stopCh, s.doneCh)

	slog.InfoContext(ctx, "Recurring scheduler started",
		"interval", s.config.Interval,
		"run_on_start", s.config.RunOnStart)

	return nil
}

// Stop gracefully stops the scheduler and waits for the current run.
// Concurrent callers all wait for the same loop to exit.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	stopping := s.running
	if stopping {
		close(s.stopCh)
		s.running = false
	}
	done := s.doneCh
	s.mu.Unlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		if stopping {
			slog.InfoContext(ctx, "Recurring scheduler stopped gracefully")
		}
	case <-ctx.Done():
		slog.WarnContext(ctx, "Recurring scheduler stop timed out")
		return ctx.Err()
	}
	return nil
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) runLoop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	if s.config.RunOnStart {
		s.runOnce(ctx)
	}

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	today := s.clock.Today()
	if _, err := s.processor.ProcessAll(ctx, today); err != nil {
		slog.ErrorContext(ctx, "Recurring run finished with errors",
			"today", today.String(),
			"error", err)
	}
}
