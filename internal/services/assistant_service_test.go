package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"brokemate/internal/assistant"
	"brokemate/internal/core"
)

func seedTasks(t *testing.T, svc *FinanceService, titles ...string) []core.Task {
	t.Helper()
	var out []core.Task
	for _, title := range titles {
		task, err := svc.AddTask(context.Background(), "u1", core.Task{Title: title})
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, task)
	}
	return out
}

func TestAssistantService_Unavailable(t *testing.T) {
	finance, _ := newTestFinance("2024-05-01", nil)
	s := NewAssistantService(nil, finance, time.Second)

	if _, err := s.Insights(context.Background(), "u1"); !errors.Is(err, ErrAssistantUnavailable) {
		t.Errorf("Insights() error = %v, want ErrAssistantUnavailable", err)
	}
}

func TestAssistantService_Prioritize(t *testing.T) {
	ctx := context.Background()

	t.Run("reordered response replaces tasks", func(t *testing.T) {
		finance, _ := newTestFinance("2024-05-01", nil)
		seedTasks(t, finance, "Laundry", "Exam review")
		adapter := &fakeAdapter{tasks: func(in []core.Task) []core.Task {
			out := slices.Clone(in)
			slices.Reverse(out)
			out[0].Priority = core.PriorityHigh
			return out
		}}
		s := NewAssistantService(adapter, finance, time.Second)

		got, err := s.Prioritize(ctx, "u1")
		if err != nil {
			t.Fatal(err)
		}
		state, _ := finance.State(ctx, "u1")
		if state.Tasks[0].Title != "Exam review" || state.Tasks[0].Priority != core.PriorityHigh || len(got) != 2 {
			t.Errorf("tasks after prioritize = %+v", state.Tasks)
		}
	})

	t.Run("changed id set is rejected", func(t *testing.T) {
		finance, _ := newTestFinance("2024-05-01", nil)
		seedTasks(t, finance, "Laundry", "Exam review")
		adapter := &fakeAdapter{tasks: func(in []core.Task) []core.Task { return in[:1] }}
		s := NewAssistantService(adapter, finance, time.Second)

		if _, err := s.Prioritize(ctx, "u1"); !errors.Is(err, ErrAdapterContract) {
			t.Fatalf("Prioritize() error = %v, want ErrAdapterContract", err)
		}
		state, _ := finance.State(ctx, "u1")
		if len(state.Tasks) != 2 || state.Tasks[0].Title != "Laundry" {
			t.Errorf("prior order must be kept, got %+v", state.Tasks)
		}
	})

	t.Run("adapter failure leaves state", func(t *testing.T) {
		finance, _ := newTestFinance("2024-05-01", nil)
		seedTasks(t, finance, "Laundry")
		s := NewAssistantService(&fakeAdapter{err: errors.New("quota exceeded")}, finance, time.Second)

		if _, err := s.Prioritize(ctx, "u1"); !errors.Is(err, ErrAdapterFailed) {
			t.Errorf("Prioritize() error = %v, want ErrAdapterFailed", err)
		}
	})
}

func TestAssistantService_GenerateSchedule(t *testing.T) {
	ctx := context.Background()
	finance, _ := newTestFinance("2024-05-01", nil)
	tasks := seedTasks(t, finance, "Done already", "Pending")
	if _, _, err := finance.ToggleTask(ctx, "u1", tasks[0].ID); err != nil {
		t.Fatal(err)
	}

	adapter := &fakeAdapter{blocks: []core.TimeBlock{
		{ID: "b2", StartTime: "10:00", EndTime: "11:00", Title: "Pending", Type: core.BlockFocus},
		{ID: "b1", StartTime: "09:00", EndTime: "09:15", Title: "Coffee", Type: core.BlockBreak},
	}}
	s := NewAssistantService(adapter, finance, time.Second)

	blocks, err := s.GenerateSchedule(ctx, "u1", assistant.ScheduleOptions{WorkStart: "09:00", WorkEnd: "17:00", EnergyLevel: "High"})
	if err != nil {
		t.Fatal(err)
	}
	if len(adapter.gotTasks) != 1 || adapter.gotTasks[0].Title != "Pending" {
		t.Errorf("adapter received %+v, want only pending tasks", adapter.gotTasks)
	}
	if blocks[0].ID != "b1" {
		t.Errorf("schedule not sorted: %+v", blocks)
	}

	adapter.blocks = []core.TimeBlock{{ID: "x", StartTime: "12:00", EndTime: "11:00", Title: "Broken", Type: core.BlockFocus}}
	if _, err := s.GenerateSchedule(ctx, "u1", assistant.ScheduleOptions{}); !errors.Is(err, ErrAdapterContract) {
		t.Errorf("GenerateSchedule(invalid block) error = %v, want ErrAdapterContract", err)
	}
	state, _ := finance.State(ctx, "u1")
	if len(state.Schedule) != 2 {
		t.Error("invalid schedule must not replace the stored one")
	}
}

func TestAssistantService_InsightsSample(t *testing.T) {
	ctx := context.Background()
	finance, _ := newTestFinance("2024-05-01", nil)
	for i := range 35 {
		tx := manualTx(fmt.Sprintf("2024-04-%02d", i%28+1), "")
		if _, err := finance.AddTransaction(ctx, "u1", tx); err != nil {
			t.Fatal(err)
		}
	}
	adapter := &fakeAdapter{insights: core.InsightResult{Summary: "Balanced"}}
	s := NewAssistantService(adapter, finance, time.Second)

	res, err := s.Insights(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if res.Summary != "Balanced" || len(adapter.gotTxs) != 30 {
		t.Errorf("Insights() = %+v with %d transactions sent", res, len(adapter.gotTxs))
	}
}

func TestAssistantService_GoalAdvice(t *testing.T) {
	ctx := context.Background()
	finance, _ := newTestFinance("2024-05-01", nil)
	goal, err := finance.CreateGoal(ctx, "u1", "Emergency fund", core.AmountFromInt(30000), core.MustParseDate("2025-01-01"))
	if err != nil {
		t.Fatal(err)
	}
	s := NewAssistantService(&fakeAdapter{advice: "Save 2,500 a month."}, finance, time.Second)

	if _, err := s.GoalAdvice(ctx, "u1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GoalAdvice(unknown) error = %v", err)
	}
	advice, err := s.GoalAdvice(ctx, "u1", goal.ID)
	if err != nil {
		t.Fatal(err)
	}
	state, _ := finance.State(ctx, "u1")
	g, _ := state.Goal(goal.ID)
	if g.AIAdvice != advice {
		t.Errorf("stored advice = %q, want %q", g.AIAdvice, advice)
	}
}

func TestAssistantService_CancelDiscardsLateResponse(t *testing.T) {
	finance, _ := newTestFinance("2024-05-01", nil)
	adapter := &fakeAdapter{started: make(chan struct{})}
	s := NewAssistantService(adapter, finance, time.Minute)

	errCh := make(chan error, 1)
	go func() {
		_, err := s.Chat(context.Background(), "u1", nil, "slow")
		errCh <- err
	}()

	<-adapter.started
	s.Cancel("u1", ViewChat)

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrStaleResponse) {
			t.Errorf("Chat() error = %v, want ErrStaleResponse", err)
		}
	case <-time.After(time.Second):
		t.Fatal("cancelled request did not return")
	}

	reply, err := s.Chat(context.Background(), "u1", nil, "hello")
	if err != nil || reply != "echo: hello" {
		t.Errorf("Chat() = %q, %v", reply, err)
	}
}

func TestAssistantService_ChatRejectsBlankMessage(t *testing.T) {
	finance, _ := newTestFinance("2024-05-01", nil)
	s := NewAssistantService(&fakeAdapter{}, finance, time.Second)

	for _, msg := range []string{"", "   ", "\n\t"} {
		_, err := s.Chat(context.Background(), "u1", nil, msg)
		if !errors.Is(err, core.ErrEmptyMessage) {
			t.Errorf("Chat(%q) error = %v, want ErrEmptyMessage", msg, err)
		}
		if errors.Is(err, core.ErrEmptyTitle) {
			t.Errorf("Chat(%q) error = %v, should not be ErrEmptyTitle", msg, err)
		}
		if !core.IsValidation(err) {
			t.Errorf("Chat(%q) error = %v, want a validation error", msg, err)
		}
	}
}

func TestAssistantService_ScanReceipt(t *testing.T) {
	ctx := context.Background()
	finance, _ := newTestFinance("2024-05-01", nil)
	total := core.AmountFromInt(120)
	s := NewAssistantService(&fakeAdapter{receipt: assistant.ReceiptData{Merchant: "7-Eleven", Total: &total}}, finance, time.Second)

	tx, err := s.ScanReceipt(ctx, "u1", []byte{0xff, 0xd8}, "image/jpeg")
	if err != nil {
		t.Fatal(err)
	}
	if tx.Merchant != "7-Eleven" || tx.Category != core.DefaultCategory || tx.Type != core.Expense {
		t.Errorf("ScanReceipt() = %+v", tx)
	}
}
