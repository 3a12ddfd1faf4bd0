package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"brokemate/internal/amqp"
	"brokemate/internal/assistant"
	"brokemate/internal/core"
	"brokemate/internal/store"
	"brokemate/internal/store/memory"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []*amqp.LedgerEvent
	err    error
}

func (p *fakePublisher) PublishLedgerEvent(_ context.Context, ev *amqp.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *fakePublisher) types() []amqp.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]amqp.EventType, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

// flakyStore fails saves for selected users.
type flakyStore struct {
	*memory.Store
	failSave map[string]bool
}

func (s *flakyStore) Save(ctx context.Context, userID string, st core.State) error {
	if s.failSave[userID] {
		return errors.New("disk full")
	}
	return s.Store.Save(ctx, userID, st)
}

var _ store.StateStore = (*flakyStore)(nil)

func seqIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestFinance(today string, pub EventPublisher, opts ...FinanceOption) (*FinanceService, *memory.Store) {
	st := memory.New(nil)
	opts = append([]FinanceOption{
		WithClock(core.FixedClock(core.MustParseDate(today))),
		WithIDGenerator(seqIDs()),
	}, opts...)
	return NewFinanceService(st, pub, opts...), st
}

type fakeAdapter struct {
	receipt   assistant.ReceiptData
	tasks     func([]core.Task) []core.Task
	blocks    []core.TimeBlock
	insights  core.InsightResult
	advice    string
	err       error
	started   chan struct{}
	gotTasks  []core.Task
	gotTxs    []core.Transaction
	gotTotals core.Totals
}

func (a *fakeAdapter) ParseReceipt(context.Context, []byte, string) (assistant.ReceiptData, error) {
	return a.receipt, a.err
}

func (a *fakeAdapter) PrioritizeTasks(_ context.Context, tasks []core.Task) ([]core.Task, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.tasks(tasks), nil
}

func (a *fakeAdapter) GenerateSchedule(_ context.Context, pending []core.Task, _ assistant.ScheduleOptions) ([]core.TimeBlock, error) {
	a.gotTasks = pending
	return a.blocks, a.err
}

func (a *fakeAdapter) GenerateInsights(_ context.Context, txs []core.Transaction, tasks []core.Task) (core.InsightResult, error) {
	a.gotTxs, a.gotTasks = txs, tasks
	return a.insights, a.err
}

func (a *fakeAdapter) GoalAdvice(_ context.Context, _ core.FinancialGoal, totals core.Totals) (string, error) {
	a.gotTotals = totals
	return a.advice, a.err
}

func (a *fakeAdapter) SuggestWorkflow(context.Context, []core.Task) (string, error) {
	return "Start with deep work.", a.err
}

// Chat blocks until ctx is done when message is "slow".
func (a *fakeAdapter) Chat(ctx context.Context, _ []assistant.ChatMessage, message string) (string, error) {
	if message == "slow" {
		close(a.started)
		<-ctx.Done()
		return "late reply", nil
	}
	return "echo: " + message, a.err
}
