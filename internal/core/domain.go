package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
	// NoRecurrence tags a one-off transaction.
	NoRecurrence Frequency = "none"

	Income  TransactionType = "income"
	Expense TransactionType = "expense"

	Active SubscriptionStatus = "active"
	Paused SubscriptionStatus = "paused"

	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"

	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in-progress"
	TaskDone       TaskStatus = "done"

	BlockFocus   BlockType = "focus"
	BlockMeeting BlockType = "meeting"
	BlockBreak   BlockType = "break"
	BlockAdmin   BlockType = "admin"
)

// Reserved category labels.
const (
	SavingsCategory = "Savings 💰"
	DefaultCategory = "Others 📦"
)

// ClockLayout is the 24h "HH:MM" layout of time block boundaries.
const ClockLayout = "15:04"

type (
	Frequency          string
	TransactionType    string
	SubscriptionStatus string
	Priority           string
	TaskStatus         string
	BlockType          string

	Transaction struct {
		ID       string          `json:"id"`
		Merchant string          `json:"merchant"`
		Amount   Amount          `json:"amount"`
		Date     Date            `json:"date"`
		Category string          `json:"category"`
		Type     TransactionType `json:"type"`
		// Recurrence is informational only; subscriptions drive re-firing.
		Recurrence Frequency `json:"recurrence,omitempty"`
	}

	Budget struct {
		ID       string `json:"id"`
		Category string `json:"category"`
		Amount   Amount `json:"amount"` // monthly cap
	}

	FinancialGoal struct {
		ID            string `json:"id"`
		Title         string `json:"title"`
		TargetAmount  Amount `json:"targetAmount"`
		CurrentAmount Amount `json:"currentAmount"`
		Deadline      Date   `json:"deadline"`
		AIAdvice      string `json:"aiAdvice"`
	}

	Subscription struct {
		ID              string             `json:"id"`
		Name            string             `json:"name"`
		Amount          Amount             `json:"amount"`
		Category        string             `json:"category"`
		Type            TransactionType    `json:"type"`
		Frequency       Frequency          `json:"frequency"`
		StartDate       Date               `json:"startDate"`
		NextPaymentDate Date               `json:"nextPaymentDate"`
		Status          SubscriptionStatus `json:"status"`
	}

	Task struct {
		ID            string     `json:"id"`
		Title         string     `json:"title"`
		Priority      Priority   `json:"priority"`
		EstimatedTime string     `json:"estimatedTime"`
		Status        TaskStatus `json:"status"`
		DueDate       *Date      `json:"dueDate,omitempty"`
	}

	TimeBlock struct {
		ID               string    `json:"id"`
		StartTime        string    `json:"startTime"`
		EndTime          string    `json:"endTime"`
		Title            string    `json:"title"`
		Type             BlockType `json:"type"`
		SuggestionReason string    `json:"suggestionReason"`
	}

	// Profile is an entry of the profile partition. The PIN is only kept as a hash.
	Profile struct {
		ID        string    `json:"id"`
		Username  string    `json:"username"`
		PINHash   string    `json:"pinHash,omitempty"`
		CreatedAt time.Time `json:"createdAt"`
	}

	// InsightResult is the adapter's cross-functional analysis.
	InsightResult struct {
		Summary        string   `json:"summary"`
		Correlations   []string `json:"correlations"`
		Recommendation string   `json:"recommendation"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyMerchant    = errors.New("empty merchant")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyTitle       = errors.New("empty title")
	ErrEmptyMessage     = errors.New("empty message")
	ErrEmptyCategory    = errors.New("empty category")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidPriority  = errors.New("invalid priority")
	ErrInvalidBlockType = errors.New("invalid time block type")
	ErrInvalidTimeRange = errors.New("end time must be after start time")
	ErrInvalidClock     = errors.New("invalid clock time")
	ErrFieldTooLong     = errors.New("field too long")
)

var validationErrors = []error{
	ErrInvalidAmount, ErrEmptyMerchant, ErrEmptyName, ErrEmptyTitle,
	ErrEmptyMessage, ErrEmptyCategory, ErrInvalidType, ErrInvalidFrequency, ErrInvalidStatus,
	ErrInvalidPriority, ErrInvalidBlockType, ErrInvalidTimeRange,
	ErrInvalidClock, ErrFieldTooLong, ErrInvalidDate,
}

// IsValidation reports whether err was caused by rejected input.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (t TransactionType) Valid() bool { return t == Income || t == Expense }

func (f Frequency) Valid() bool {
	switch f {
	case Weekly, Monthly, Yearly:
		return true
	}
	return false
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskDone:
		return true
	}
	return false
}

func (b BlockType) Valid() bool {
	switch b {
	case BlockFocus, BlockMeeting, BlockBreak, BlockAdmin:
		return true
	}
	return false
}

// Validate checks a manually entered transaction: the amount must be positive.
func (t Transaction) Validate() error {
	if err := t.validateFields(); err != nil {
		return err
	}
	return t.Amount.Validate()
}

// ValidateScanned checks a transaction built from a scanned receipt, where a
// missing total defaults to zero.
func (t Transaction) ValidateScanned() error {
	if err := t.validateFields(); err != nil {
		return err
	}
	if t.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) validateFields() error {
	if strings.TrimSpace(t.Merchant) == "" {
		return ErrEmptyMerchant
	}
	if len(t.Merchant) > 200 {
		return fmt.Errorf("%w: merchant exceeds 200 characters", ErrFieldTooLong)
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if !t.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, t.Type)
	}
	if t.Recurrence != "" && t.Recurrence != NoRecurrence && !t.Recurrence.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, t.Recurrence)
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	return b.Amount.Validate()
}

func (g FinancialGoal) Validate() error {
	if strings.TrimSpace(g.Title) == "" {
		return ErrEmptyTitle
	}
	if err := g.TargetAmount.Validate(); err != nil {
		return err
	}
	if err := g.Deadline.Validate(); err != nil {
		return fmt.Errorf("invalid deadline: %w", err)
	}
	return nil
}

func (s Subscription) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if err := s.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(s.Category) == "" {
		return ErrEmptyCategory
	}
	if !s.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, s.Type)
	}
	if !s.Frequency.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, s.Frequency)
	}
	if err := s.StartDate.Validate(); err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	if err := s.NextPaymentDate.Validate(); err != nil {
		return fmt.Errorf("invalid next payment date: %w", err)
	}
	if s.Status != Active && s.Status != Paused {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, s.Status)
	}
	return nil
}

// Due reports whether the subscription fires on an evaluation pass run at today.
func (s Subscription) Due(today Date) bool {
	return s.Status == Active && s.NextPaymentDate.OnOrBefore(today)
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if !t.Priority.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	return nil
}

func (b TimeBlock) Validate() error {
	if strings.TrimSpace(b.Title) == "" {
		return ErrEmptyTitle
	}
	if !b.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidBlockType, b.Type)
	}
	start, err := time.Parse(ClockLayout, b.StartTime)
	if err != nil {
		return fmt.Errorf("%w: start %q", ErrInvalidClock, b.StartTime)
	}
	end, err := time.Parse(ClockLayout, b.EndTime)
	if err != nil {
		return fmt.Errorf("%w: end %q", ErrInvalidClock, b.EndTime)
	}
	if !end.After(start) {
		return ErrInvalidTimeRange
	}
	return nil
}

func (p Profile) HasPIN() bool { return p.PINHash != "" }
