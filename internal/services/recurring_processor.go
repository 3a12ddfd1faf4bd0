package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"brokemate/internal/core"
	"brokemate/internal/store"
)

// RecurringConfig tunes the recurring processor.
type RecurringConfig struct {
	// MaxPasses bounds the evaluation passes per user and run (default: 366)
	MaxPasses int

	// Concurrency is the number of partitions processed in parallel (default: 4)
	Concurrency int
}

func DefaultRecurringConfig() RecurringConfig {
	return RecurringConfig{MaxPasses: DefaultMaxPasses, Concurrency: 4}
}

// RecurringProcessor materializes due subscriptions of stored partitions.
type RecurringProcessor struct {
	store    store.StateStore
	events   EventPublisher
	locks    *UserLocks
	onChange ChangeHook
	config   RecurringConfig
}

// NewRecurringProcessor creates a processor. locks may be shared with a
// FinanceService working on the same store; nil creates a private set.
func NewRecurringProcessor(st store.StateStore, events EventPublisher, locks *UserLocks, config RecurringConfig) *RecurringProcessor {
	if locks == nil {
		locks = NewUserLocks()
	}
	if config.MaxPasses <= 0 {
		config.MaxPasses = DefaultMaxPasses
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}
	return &RecurringProcessor{store: st, events: events, locks: locks, config: config}
}

// OnChange registers a hook called after a partition was saved.
func (p *RecurringProcessor) OnChange(hook ChangeHook) { p.onChange = hook }

// ProcessUser catches up one partition and returns the number of
// transactions added. Materialized transactions and advanced dates are
// written in a single save.
func (p *RecurringProcessor) ProcessUser(ctx context.Context, userID string, today core.Date) (int, error) {
	if p.store == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}
	unlock := p.locks.Lock(userID)
	defer unlock()

	state, err := p.store.Load(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("load state: %w", err)
	}

	res := CatchUp(&state, today, p.config.MaxPasses)
	if !res.Changed() {
		return 0, nil
	}

	if err := p.store.Save(ctx, userID, state); err != nil {
		return 0, fmt.Errorf("save state: %w", err)
	}
	if p.onChange != nil {
		p.onChange(userID)
	}
	publishFirings(ctx, p.events, userID, res)

	added := len(res.Added())
	slog.InfoContext(ctx, "Materialized recurring transactions",
		"user_id", userID,
		"added", added,
		"advanced", len(res.Firings),
		"passes", res.Passes,
		"today", today.String())

	return added, nil
}

// ProcessAll runs ProcessUser over every stored partition. A failing
// partition is logged and does not stop the others; the joined errors are
// returned with the total count.
func (p *RecurringProcessor) ProcessAll(ctx context.Context, today core.Date) (int, error) {
	if p.store == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}
	users, err := p.store.Users(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	var (
		total int64
		mu    sync.Mutex
		errs  []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.Concurrency)

	for _, userID := range users {
		g.Go(func() error {
			n, err := p.ProcessUser(gctx, userID, today)
			if err != nil {
				slog.ErrorContext(gctx, "Failed to process recurring transactions",
					"user_id", userID,
					"error", err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("user %s: %w", userID, err))
				mu.Unlock()
				return nil
			}
			atomic.AddInt64(&total, int64(n))
			return nil
		})
	}
	_ = g.Wait()

	slog.InfoContext(ctx, "Recurring processing complete",
		"users", len(users),
		"added", total,
		"failed", len(errs))

	return int(total), errors.Join(errs...)
}
