package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"brokemate/internal/amqp"
	"brokemate/internal/assistant"
	"brokemate/internal/core"
	"brokemate/internal/store"
)

// UnknownMerchant labels scanned receipts without a readable merchant.
const UnknownMerchant = "Unknown Merchant"

// FinanceService orchestrates per-user state mutations: every operation
// loads the partition, mutates it, saves the whole blob and then publishes
// ledger events. Changes to the subscription collection are followed by an
// evaluation pass inside the same save.
type FinanceService struct {
	store     store.StateStore
	events    EventPublisher
	locks     *UserLocks
	clock     core.Clock
	maxPasses int
	onChange  ChangeHook
	newID     func() string
}

// FinanceOption customizes a FinanceService.
type FinanceOption func(*FinanceService)

// WithLocks shares partition locks with a RecurringProcessor.
func WithLocks(l *UserLocks) FinanceOption { return func(s *FinanceService) { s.locks = l } }

func WithClock(c core.Clock) FinanceOption { return func(s *FinanceService) { s.clock = c } }

func WithMaxPasses(n int) FinanceOption { return func(s *FinanceService) { s.maxPasses = n } }

// WithChangeHook registers a hook called after every saved mutation.
func WithChangeHook(h ChangeHook) FinanceOption { return func(s *FinanceService) { s.onChange = h } }

// WithIDGenerator replaces uuid generation, mostly for tests.
func WithIDGenerator(f func() string) FinanceOption { return func(s *FinanceService) { s.newID = f } }

func NewFinanceService(st store.StateStore, events EventPublisher, opts ...FinanceOption) *FinanceService {
	s := &FinanceService{
		store:     st,
		events:    events,
		clock:     core.SystemClock{},
		maxPasses: DefaultMaxPasses,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.locks == nil {
		s.locks = NewUserLocks()
	}
	return s
}

// Today is the service's current date.
func (s *FinanceService) Today() core.Date { return s.clock.Today() }

// update runs fn on the loaded partition under its lock and saves when fn
// reports a change. A failing fn leaves the stored state untouched.
func (s *FinanceService) update(ctx context.Context, userID string, fn func(*core.State) (bool, error)) error {
	if strings.TrimSpace(userID) == "" {
		return ErrMissingUser
	}
	unlock := s.locks.Lock(userID)
	defer unlock()

	st, err := s.store.Load(ctx, userID)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	changed, err := fn(&st)
	if err != nil || !changed {
		return err
	}
	if err := s.store.Save(ctx, userID, st); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	if s.onChange != nil {
		s.onChange(userID)
	}
	return nil
}

func (s *FinanceService) catchUp(st *core.State) PassResult {
	return CatchUp(st, s.clock.Today(), s.maxPasses)
}

// State returns the user's full state.
func (s *FinanceService) State(ctx context.Context, userID string) (core.State, error) {
	if strings.TrimSpace(userID) == "" {
		return core.State{}, ErrMissingUser
	}
	st, err := s.store.Load(ctx, userID)
	if err != nil {
		return core.State{}, fmt.Errorf("load state: %w", err)
	}
	return st, nil
}

func (s *FinanceService) SetDarkMode(ctx context.Context, userID string, on bool) error {
	return s.update(ctx, userID, func(st *core.State) (bool, error) {
		if st.IsDarkMode == on {
			return false, nil
		}
		st.SetDarkMode(on)
		return true, nil
	})
}

// Categories

func (s *FinanceService) AddCategory(ctx context.Context, userID, label string) (bool, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return false, core.ErrEmptyCategory
	}
	var added bool
	err := s.update(ctx, userID, func(st *core.State) (bool, error) {
		added = st.AddCategory(label)
		return added, nil
	})
	return added, err
}

// RemoveCategory never touches transactions, budgets or subscriptions that
// still carry the label.
func (s *FinanceService) RemoveCategory(ctx context.Context, userID, label string) (bool, error) {
	var removed bool
	err := s.update(ctx, userID, func(st *core.State) (bool, error) {
		removed = st.RemoveCategory(label)
		return removed, nil
	})
	return removed, err
}

// Ledger

// AddTransaction records a manual entry. A recurrence tag also creates a
// subscription starting at the transaction date whose first occurrence is
// one cadence later.
func (s *FinanceService) AddTransaction(ctx context.Context, userID string, tx core.Transaction) (core.Transaction, error) {
	tx.Merchant = strings.TrimSpace(tx.Merchant)
	if tx.Recurrence == core.NoRecurrence {
		tx.Recurrence = ""
	}
	if tx.ID == "" {
		tx.ID = s.newID()
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	var res PassResult
	err := s.update(ctx, userID, func(st *core.State) (bool, error) {
		if tx.Recurrence != "" {
			next, err := NextPaymentDate(tx.Recurrence, tx.Date)
			if err != nil {
				return false, err
			}
			st.AddSubscription(core.Subscription{
				ID:              "auto-" + s.newID(),
				Name:            tx.Merchant,
				Amount:          tx.Amount,
				Category:        tx.Category,
				Type:            tx.Type,
				Frequency:       tx.Recurrence,
				StartDate:       tx.Date,
				NextPaymentDate: next,
				Status:          core.Active,
			})
		}
		st.AddTransaction(tx)
		if tx.Recurrence != "" {
			res = s.catchUp(st)
		}
		return true, nil
	})
	if err != nil {
		return core.Transaction{}, err
	}

	publishTransaction(ctx, s.events, amqp.EventTransactionCreated, userID, tx)
	publishFirings(ctx, s.events, userID, res)
	return tx, nil
}

// RecordReceipt turns a receipt extraction into an expense, filling
// missing fields with defaults. The amount may be zero.
func (s *FinanceService) RecordReceipt(ctx context.Context, userID string, r assistant.ReceiptData) (core.Transaction, error) {
	tx := core.Transaction{
		ID:       s.newID(),
		Merchant: strings.TrimSpace(r.Merchant),
		Amount:   core.Zero,
		Date:     s.clock.Today(),
		Category: strings.TrimSpace(r.Category),
		Type:     core.Expense,
	}
	if tx.Merchant == "" {
		tx.Merchant = UnknownMerchant
	}
	if r.Total != nil {
		tx.Amount = *r.Total
	}
	if d, err := core.ParseDate(strings.TrimSpace(r.Date)); err == nil {
		tx.Date = d
	}
	if tx.Category == "" {
		tx.Category = core.DefaultCategory
	}
	if err := tx.ValidateScanned(); err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %v", ErrAdapterContract, err)
	}

	err := s.update(ctx, userID, func(st *core.State) (bool, error) {
		st.AddTransaction(tx)
		return true, nil
	})
	if err != nil {
		return core.Transaction{}, err
	}
	publishTransaction(ctx, s.events, amqp.EventTransactionCreated, userID, tx)
	return tx, nil
}

// RemoveTransaction deletes by id; an unknown id is a no-op.
func (s *FinanceService) RemoveTransaction(ctx context.Context, userID, id string) (bool, error) {
	var (
		removed core.Transaction
		ok      bool
	)
	err := s.update(ctx, userID, func(st *core.State) (bool, error) {
		removed, ok = st.RemoveTransaction(id)
		return ok, nil
	})
	if err != nil || !ok {
		return false, err
	}
	publishTransaction(ctx, s.events, amqp.EventTransactionRemoved, userID, removed)
	return true, nil
}

func (s *FinanceService) Transactions(ctx context.Context, userID string, f core.Filter) ([]core.Transaction, error) {
	st, err := s.State(ctx, userID)
	if err != nil {
		return nil, err
	}
	return core.Query(st.Transactions, f), nil
}

// Overview aggregates month, or the current month when empty.
func (s *FinanceService) Overview(ctx context.Context, userID, month string) (core.MonthOverview, error) {
	st, err := s.State(ctx, userID)
	if err != nil {
		return core.MonthOverview{}, err
	}
	return core.BuildMonthOverview(st, s.month(month)), nil
}

func (s *FinanceService) month(m string) string {
	if m == "" {
		return s.clock.Today().MonthKey()
	}
	return m
}

// Budgets

// SetBudget replaces the budget of the same category or inserts a new one.
func (s *FinanceService) SetBudget(ctx context.Context, userID, category string, amount core.Amount) (core.Budget, error) {
	b := core.Budget{ID: s.newID(), Category: strings.TrimSpace(category), Amount: amount}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	err := s.update(ctx, userID, func(st *core.State) (bool, error) {
		st.SetBudget(b)
		return true, nil
	})
	if err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

func (s *FinanceService) RemoveBudget(ctx context.Context, userID, id string) (bool, error) {
	var removed bool
	err := s.update(ctx, userID, func(st *core.State) (bool, error) {
		removed = st.RemoveBudget(id)
		return removed, nil
	})
	return removed, err
}

// Budgets reports spend and status of every budget for month (current
// month when empty).
func (s *FinanceService) Budgets(ctx context.Context, userID, month string) ([]core.BudgetReport, error) {
	st, err := s.State(ctx, userID)
	if err != nil {
		return nil, err
	}
	return core.BudgetReports(st, s.month(month)), nil
}

// Goals

func (s *FinanceService) CreateGoal(ctx context.Context, userID, title string, target core.Amount, deadline core.Date) (core.FinancialGoal, error) {
	g := core.FinancialGoal{
		ID:           s.newID(),
		Title:        strings.TrimSpace(title),
		TargetAmount: target,
		Deadline:     deadline,
	}
	if err := g.Validate(); err != nil {
		return core.FinancialGoal{}, err
	}
	err := s.update(ctx, userID, func(st *core.State) (bool, error) {
		st.AddGoal(g)
		return true, nil
	})
	if err != nil {
		return core.FinancialGoal{}, err
	}
	return g, nil
}

// Contribute adds amount to a goal and records the matching savings
// expense dated today. Both land in the same save. An unknown goal returns
// ErrNotFound and changes nothing.
func (s *FinanceService) Contribute(ctx context.Context, userID, goalID string, amount core.Amount) (core.Transaction, error) {
	if err := amount.Validate(); err != nil {
		return core.Transaction{}, err
	}
	var tx core.Transaction
	err := s.update(ctx, userID, func(st *core.State) (bool, error) {
		var ok bool
		var err error
		tx, ok, err = st.Contribute(goalID, amount, s.clock.Today(), s.newID())
		if err != nil {
			return false, err
		}
		if !ok {
			return false, fmt.Errorf("goal %q: %w", goalID, ErrNotFound)
		}
		return true, nil
	})
	if err != nil {
		return core.Transaction{}, err
	}
	publishTransaction(ctx, s.events, amqp.EventGoalContributed, userID, tx)
	return tx, nil
}

func (s *FinanceService) SetGoalAdvice(ctx context.Context, userID, goalID, advice string) error {
	return s.update(ctx, userID, func(st *core.State) (bool, error) {
		if !st.SetGoalAdvice(goalID, advice) {
			return false, fmt.Errorf("goal %q: %w", goalID, ErrNotFound)
		}
		return true, nil
	})
}

// Subscriptions

// AddSubscription stores sub and evaluates it right away, so a start date
// in the past fires immediately. Missing dates default to today and the
// first payment defaults to the start date.
func (s *FinanceService) AddSubscription(ctx context.Context, userID string, sub core.Subscription) (core.Subscription, error) {
	sub.Name = strings.TrimSpace(sub.Name)
	if sub.ID == "" {
		sub.ID = s.newID()
	}
	if sub.Status == "" {
		sub.Status = core.Active
	}
	if sub.StartDate.IsZero() {
		sub.StartDate = s.clock.Today()
	}
	if sub.NextPaymentDate.IsZero() {
		sub.NextPaymentDate = sub.StartDate
	}
	if err := sub.Validate(); err != nil {
		return core.Subscription{}, err
	}

	var res PassResult
	err := s.update(ctx, userID, func(st *core.State) (bool, error) {
		st.AddSubscription(sub)
		res = s.catchUp(st)
		for _, cur := range st.Subscriptions {
			if cur.ID == sub.ID {
				sub = cur
			}
		}
		return true, nil
	})
	if err != nil {
		return core.Subscription{}, err
	}
	publishFirings(ctx, s.events, userID, res)
	return sub, nil
}

// ToggleSubscription flips active and paused without touching the next
// payment date. Resuming an overdue subscription fires it.
func (s *FinanceService) ToggleSubscription(ctx context.Context, userID, id string) (core.Subscription, error) {
	var (
		sub core.Subscription
		res PassResult
	)
	err := s.update(ctx, userID, func(st *core.State) (bool, error) {
		var ok bool
		if _, ok = st.ToggleSubscription(id); !ok {
			return false, fmt.Errorf("subscription %q: %w", id, ErrNotFound)
		}
		res = s.catchUp(st)
		for _, cur := range st.Subscriptions {
			if cur.ID == id {
				sub = cur
			}
		}
		return true, nil
	})
	if err != nil {
		return core.Subscription{}, err
	}
	publishFirings(ctx, s.events, userID, res)
	return sub, nil
}

// RemoveSubscription stops future firings; past transactions stay.
func (s *FinanceService) RemoveSubscription(ctx context.Context, userID, id string) (bool, error) {
	var removed bool
	err := s.update(ctx, userID, func(st *core.State) (bool, error) {
		removed = st.RemoveSubscription(id)
		return removed, nil
	})
	return removed, err
}

// Planner

// AddTask creates a task with planner defaults for empty fields.
func (s *FinanceService) AddTask(ctx context.Context, userID string, in core.Task) (core.Task, error) {
	t, err := core.NewTask(s.newID(), in.Title)
	if err != nil {
		return core.Task{}, err
	}
	if in.Priority != "" {
		t.Priority = in.Priority
	}
	if strings.TrimSpace(in.EstimatedTime) != "" {
		t.EstimatedTime = strings.TrimSpace(in.EstimatedTime)
	}
	t.DueDate = in.DueDate
	if err := t.Validate(); err != nil {
		return core.Task{}, err
	}
	err = s.update(ctx, userID, func(st *core.State) (bool, error) {
		st.AddTask(t)
		return true, nil
	})
	if err != nil {
		return core.Task{}, err
	}
	return t, nil
}

// ToggleTask flips a task between done and todo. An unknown id is a no-op
// reported as false.
func (s *FinanceService) ToggleTask(ctx context.Context, userID, id string) (core.Task, bool, error) {
	var (
		t  core.Task
		ok bool
	)
	err := s.update(ctx, userID, func(st *core.State) (bool, error) {
		t, ok = st.ToggleTask(id)
		return ok, nil
	})
	return t, ok, err
}

func (s *FinanceService) RemoveTask(ctx context.Context, userID, id string) (bool, error) {
	var removed bool
	err := s.update(ctx, userID, func(st *core.State) (bool, error) {
		removed = st.RemoveTask(id)
		return removed, nil
	})
	return removed, err
}

// ReplaceTasks installs a reordered task list whose id set must equal the
// stored one.
func (s *FinanceService) ReplaceTasks(ctx context.Context, userID string, tasks []core.Task) error {
	for _, t := range tasks {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("%w: task %q: %v", ErrAdapterContract, t.ID, err)
		}
	}
	return s.update(ctx, userID, func(st *core.State) (bool, error) {
		if !sameTaskIDs(st.Tasks, tasks) {
			return false, fmt.Errorf("%w: task ids changed", ErrAdapterContract)
		}
		st.ReplaceTasks(tasks)
		return true, nil
	})
}

func sameTaskIDs(a, b []core.Task) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, t := range a {
		seen[t.ID]++
	}
	for _, t := range b {
		if seen[t.ID] == 0 {
			return false
		}
		seen[t.ID]--
	}
	return true
}

// Schedule

// SetSchedule replaces the day plan. Blocks get ids when missing and must
// each be valid.
func (s *FinanceService) SetSchedule(ctx context.Context, userID string, blocks []core.TimeBlock) ([]core.TimeBlock, error) {
	out := make([]core.TimeBlock, len(blocks))
	for i, b := range blocks {
		if b.ID == "" {
			b.ID = s.newID()
		}
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		out[i] = b
	}
	var saved []core.TimeBlock
	err := s.update(ctx, userID, func(st *core.State) (bool, error) {
		st.SetSchedule(out)
		saved = st.Schedule
		return true, nil
	})
	return saved, err
}

// UpdateTimeBlock edits a block; end must be after start. An unknown id is
// a no-op reported as false.
func (s *FinanceService) UpdateTimeBlock(ctx context.Context, userID string, b core.TimeBlock) (bool, error) {
	var updated bool
	err := s.update(ctx, userID, func(st *core.State) (bool, error) {
		var err error
		updated, err = st.UpdateTimeBlock(b)
		return updated, err
	})
	return updated, err
}

func (s *FinanceService) RemoveTimeBlock(ctx context.Context, userID, id string) (bool, error) {
	var removed bool
	err := s.update(ctx, userID, func(st *core.State) (bool, error) {
		removed = st.RemoveTimeBlock(id)
		return removed, nil
	})
	return removed, err
}
