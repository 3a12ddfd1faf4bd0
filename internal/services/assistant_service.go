package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"brokemate/internal/assistant"
	"brokemate/internal/core"
)

// View identifies the screen that started an assistant request. A newer
// request for the same user and view supersedes the older one.
type View string

const (
	ViewReceipt  View = "receipt"
	ViewTasks    View = "tasks"
	ViewSchedule View = "schedule"
	ViewInsights View = "insights"
	ViewGoals    View = "goals"
	ViewWorkflow View = "workflow"
	ViewChat     View = "chat"
)

// insightSampleSize caps how many transactions and tasks are sent for insights.
const insightSampleSize = 30

type inflight struct {
	seq    uint64
	cancel context.CancelFunc
}

// AssistantService calls the assistant adapter and feeds accepted results
// back through FinanceService. Adapter failures never change state.
type AssistantService struct {
	adapter assistant.Adapter
	finance *FinanceService
	timeout time.Duration

	mu       sync.Mutex
	seq      uint64
	requests map[string]inflight
}

func NewAssistantService(adapter assistant.Adapter, finance *FinanceService, timeout time.Duration) *AssistantService {
	return &AssistantService{
		adapter:  adapter,
		finance:  finance,
		timeout:  timeout,
		requests: make(map[string]inflight),
	}
}

func requestKey(userID string, view View) string { return userID + "|" + string(view) }

// begin registers a request and cancels any older one for the same view.
// The returned finish func releases the request and reports whether its
// result may still be applied.
func (s *AssistantService) begin(ctx context.Context, userID string, view View) (context.Context, func() bool) {
	var cancel context.CancelFunc
	if s.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	key := requestKey(userID, view)
	s.mu.Lock()
	s.seq++
	seq := s.seq
	if prev, ok := s.requests[key]; ok {
		prev.cancel()
	}
	s.requests[key] = inflight{seq: seq, cancel: cancel}
	s.mu.Unlock()

	return ctx, func() bool {
		defer cancel()
		s.mu.Lock()
		defer s.mu.Unlock()
		cur, ok := s.requests[key]
		if !ok || cur.seq != seq {
			return false
		}
		delete(s.requests, key)
		return true
	}
}

// Cancel aborts the in-flight request of a view, for example when the user
// navigates away. Its response will be discarded.
func (s *AssistantService) Cancel(userID string, view View) {
	key := requestKey(userID, view)
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.requests[key]; ok {
		cur.cancel()
		delete(s.requests, key)
	}
}

func (s *AssistantService) ready() error {
	if s.adapter == nil {
		return ErrAssistantUnavailable
	}
	return nil
}

// settle converts the adapter outcome into the service result.
func settle(ctx context.Context, current bool, op string, err error) error {
	if !current {
		slog.InfoContext(ctx, "Discarding superseded assistant response", "operation", op)
		return ErrStaleResponse
	}
	if err != nil {
		slog.WarnContext(ctx, "Assistant request failed", "operation", op, "error", err)
		return fmt.Errorf("%s: %w: %w", op, ErrAdapterFailed, err)
	}
	return nil
}

// ScanReceipt parses a receipt image and records it as an expense.
func (s *AssistantService) ScanReceipt(ctx context.Context, userID string, image []byte, mimeType string) (core.Transaction, error) {
	if err := s.ready(); err != nil {
		return core.Transaction{}, err
	}
	actx, finish := s.begin(ctx, userID, ViewReceipt)
	data, err := s.adapter.ParseReceipt(actx, image, mimeType)
	if err := settle(ctx, finish(), "parse receipt", err); err != nil {
		return core.Transaction{}, err
	}
	return s.finance.RecordReceipt(ctx, userID, data)
}

// Prioritize reorders and relabels the user's tasks. A response whose id
// set differs from the stored tasks is rejected and the order is kept.
func (s *AssistantService) Prioritize(ctx context.Context, userID string) ([]core.Task, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	st, err := s.finance.State(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(st.Tasks) == 0 {
		return []core.Task{}, nil
	}

	actx, finish := s.begin(ctx, userID, ViewTasks)
	tasks, err := s.adapter.PrioritizeTasks(actx, st.Tasks)
	if err := settle(ctx, finish(), "prioritize tasks", err); err != nil {
		return nil, err
	}
	if !sameTaskIDs(st.Tasks, tasks) {
		slog.WarnContext(ctx, "Rejected prioritization with changed task ids",
			"user_id", userID,
			"sent", len(st.Tasks),
			"received", len(tasks))
		return nil, fmt.Errorf("%w: task ids changed", ErrAdapterContract)
	}
	if err := s.finance.ReplaceTasks(ctx, userID, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GenerateSchedule plans the pending tasks and replaces the day plan.
func (s *AssistantService) GenerateSchedule(ctx context.Context, userID string, opts assistant.ScheduleOptions) ([]core.TimeBlock, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	st, err := s.finance.State(ctx, userID)
	if err != nil {
		return nil, err
	}

	actx, finish := s.begin(ctx, userID, ViewSchedule)
	blocks, err := s.adapter.GenerateSchedule(actx, st.PendingTasks(), opts)
	if err := settle(ctx, finish(), "generate schedule", err); err != nil {
		return nil, err
	}
	saved, err := s.finance.SetSchedule(ctx, userID, blocks)
	if err != nil {
		if core.IsValidation(err) {
			return nil, fmt.Errorf("%w: %v", ErrAdapterContract, err)
		}
		return nil, err
	}
	return saved, nil
}

// Insights analyses the first transactions and tasks of the user.
func (s *AssistantService) Insights(ctx context.Context, userID string) (core.InsightResult, error) {
	if err := s.ready(); err != nil {
		return core.InsightResult{}, err
	}
	st, err := s.finance.State(ctx, userID)
	if err != nil {
		return core.InsightResult{}, err
	}

	actx, finish := s.begin(ctx, userID, ViewInsights)
	res, err := s.adapter.GenerateInsights(actx, head(st.Transactions, insightSampleSize), head(st.Tasks, insightSampleSize))
	if err := settle(ctx, finish(), "generate insights", err); err != nil {
		return core.InsightResult{}, err
	}
	return res, nil
}

// GoalAdvice asks for a savings plan and stores it on the goal.
func (s *AssistantService) GoalAdvice(ctx context.Context, userID, goalID string) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	st, err := s.finance.State(ctx, userID)
	if err != nil {
		return "", err
	}
	goal, ok := st.Goal(goalID)
	if !ok {
		return "", fmt.Errorf("goal %q: %w", goalID, ErrNotFound)
	}

	actx, finish := s.begin(ctx, userID, ViewGoals)
	advice, err := s.adapter.GoalAdvice(actx, goal, core.Summarize(st.Transactions))
	if err := settle(ctx, finish(), "goal advice", err); err != nil {
		return "", err
	}
	if err := s.finance.SetGoalAdvice(ctx, userID, goalID, advice); err != nil {
		return "", err
	}
	return advice, nil
}

// SuggestWorkflow returns a short plan for the day from the task list.
func (s *AssistantService) SuggestWorkflow(ctx context.Context, userID string) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	st, err := s.finance.State(ctx, userID)
	if err != nil {
		return "", err
	}

	actx, finish := s.begin(ctx, userID, ViewWorkflow)
	tip, err := s.adapter.SuggestWorkflow(actx, st.Tasks)
	if err := settle(ctx, finish(), "suggest workflow", err); err != nil {
		return "", err
	}
	return tip, nil
}

// Chat continues a conversation. History is owned by the caller.
func (s *AssistantService) Chat(ctx context.Context, userID string, history []assistant.ChatMessage, message string) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	if strings.TrimSpace(message) == "" {
		return "", core.ErrEmptyMessage
	}

	actx, finish := s.begin(ctx, userID, ViewChat)
	reply, err := s.adapter.Chat(actx, history, message)
	if err := settle(ctx, finish(), "chat", err); err != nil {
		return "", err
	}
	return reply, nil
}

func head[T any](xs []T, n int) []T {
	if len(xs) > n {
		return xs[:n]
	}
	return xs
}
