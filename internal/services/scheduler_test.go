package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"brokemate/internal/core"
)

type countingProcessor struct {
	calls chan core.Date
}

func (p *countingProcessor) ProcessAll(_ context.Context, today core.Date) (int, error) {
	p.calls <- today
	return 0, nil
}

func TestDefaultSchedulerConfig(t *testing.T) {
	config := DefaultSchedulerConfig()

	if config.Interval != time.Hour {
		t.Errorf("expected Interval 1h, got %v", config.Interval)
	}
	if !config.RunOnStart {
		t.Error("expected RunOnStart true")
	}
}

func TestScheduler_IsRunning(t *testing.T) {
	s := NewScheduler(&countingProcessor{}, nil, DefaultSchedulerConfig())

	if s.IsRunning() {
		t.Error("scheduler should not be running initially")
	}
}

func TestScheduler_StartTwice(t *testing.T) {
	s := NewScheduler(&countingProcessor{}, nil, DefaultSchedulerConfig())

	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	if err := s.Start(context.Background()); err == nil {
		t.Error("expected error when starting already running scheduler")
	}
}

func TestScheduler_StopNotRunning(t *testing.T) {
	s := NewScheduler(&countingProcessor{}, nil, DefaultSchedulerConfig())

	if err := s.Stop(context.Background()); err != nil {
		t.Errorf("Stop should not error when not running: %v", err)
	}
}

func TestScheduler_RunsWithInjectedClock(t *testing.T) {
	proc := &countingProcessor{calls: make(chan core.Date, 4)}
	today := core.MustParseDate("2024-03-01")
	s := NewScheduler(proc, core.FixedClock(today), SchedulerConfig{Interval: 10 * time.Millisecond, RunOnStart: true})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err != nil {
		t.Fatal(err)
	}

	for range 2 {
		select {
		case got := <-proc.calls:
			if !got.Equal(today) {
				t.Errorf("ProcessAll(today) = %s, want %s", got, today)
			}
		case <-time.After(time.Second):
			t.Fatal("scheduler did not run")
		}
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	go func() {
		for range proc.calls {
		}
	}()
	if err := s.Stop(stopCtx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if s.IsRunning() {
		t.Error("scheduler should not be running after Stop")
	}
}

func TestScheduler_ConcurrentStop(t *testing.T) {
	s := NewScheduler(&countingProcessor{}, nil, SchedulerConfig{Interval: time.Hour})

	for round := range 2 {
		if err := s.Start(context.Background()); err != nil {
			t.Fatalf("round %d: Start() error = %v", round, err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		var wg sync.WaitGroup
		errs := make(chan error, 8)
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- s.Stop(ctx)
			}()
		}
		wg.Wait()
		cancel()
		close(errs)

		for err := range errs {
			if err != nil {
				t.Errorf("round %d: Stop() error = %v", round, err)
			}
		}
		if s.IsRunning() {
			t.Errorf("round %d: scheduler should not be running after Stop", round)
		}
	}
}
