// Package assistant defines the contract of the language-model backed
// helpers: receipt parsing, task prioritization, schedule generation,
// insights, goal advice and chat. Implementations never mutate user state;
// callers feed their output back through the regular mutation paths.
package assistant

import (
	"context"
	"errors"

	"brokemate/internal/core"
)

// ErrUnavailable is returned when no adapter is configured.
var ErrUnavailable = errors.New("assistant unavailable")

// ReceiptData is a partial receipt extraction. Zero fields were not found.
type ReceiptData struct {
	Merchant string       `json:"merchant,omitempty"`
	Total    *core.Amount `json:"total,omitempty"`
	Date     string       `json:"date,omitempty"`
	Category string       `json:"category,omitempty"`
}

// ScheduleOptions describes the working window of a generated day plan.
type ScheduleOptions struct {
	WorkStart   string `json:"workStart"`
	WorkEnd     string `json:"workEnd"`
	EnergyLevel string `json:"energyLevel"`
}

// ChatRole values follow the model API: "user" or "model".
type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
)

type ChatMessage struct {
	Role ChatRole `json:"role"`
	Text string   `json:"text"`
}

// Adapter is the insight and scheduling port.
type Adapter interface {
	ParseReceipt(ctx context.Context, image []byte, mimeType string) (ReceiptData, error)
	PrioritizeTasks(ctx context.Context, tasks []core.Task) ([]core.Task, error)
	GenerateSchedule(ctx context.Context, pending []core.Task, opts ScheduleOptions) ([]core.TimeBlock, error)
	GenerateInsights(ctx context.Context, txs []core.Transaction, tasks []core.Task) (core.InsightResult, error)
	GoalAdvice(ctx context.Context, goal core.FinancialGoal, totals core.Totals) (string, error)
	SuggestWorkflow(ctx context.Context, tasks []core.Task) (string, error)
	Chat(ctx context.Context, history []ChatMessage, message string) (string, error)
}
