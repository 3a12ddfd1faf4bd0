package core

import (
	"slices"
)

// DefaultCategories is the registry content of a fresh partition.
var DefaultCategories = []string{
	"Food 🍜",
	"Transpo 🚕",
	"Schoolwork 📚",
	"Luho 🛒",
	"Emergency 😭",
	"Bills 🧾",
	SavingsCategory,
	"Health 💊",
	DefaultCategory,
}

// State is the whole per-user data blob. Every mutation rewrites it.
type State struct {
	Transactions  []Transaction   `json:"transactions"`
	Tasks         []Task          `json:"tasks"`
	Goals         []FinancialGoal `json:"goals"`
	Budgets       []Budget        `json:"budgets"`
	Schedule      []TimeBlock     `json:"schedule"`
	Categories    []string        `json:"categories"`
	Subscriptions []Subscription  `json:"subscriptions"`
	IsDarkMode    bool            `json:"isDarkMode"`
}

// DefaultState is what a partition without a saved blob starts from.
func DefaultState() State {
	return State{
		Transactions:  []Transaction{},
		Tasks:         []Task{},
		Goals:         []FinancialGoal{},
		Budgets:       []Budget{},
		Schedule:      []TimeBlock{},
		Categories:    slices.Clone(DefaultCategories),
		Subscriptions: []Subscription{},
	}
}

// Clone returns a copy that shares no slices with s.
func (s State) Clone() State {
	c := s
	c.Transactions = slices.Clone(s.Transactions)
	c.Goals = slices.Clone(s.Goals)
	c.Budgets = slices.Clone(s.Budgets)
	c.Schedule = slices.Clone(s.Schedule)
	c.Categories = slices.Clone(s.Categories)
	c.Subscriptions = slices.Clone(s.Subscriptions)
	c.Tasks = make([]Task, len(s.Tasks))
	for i, t := range s.Tasks {
		if t.DueDate != nil {
			d := *t.DueDate
			t.DueDate = &d
		}
		c.Tasks[i] = t
	}
	return c
}

// Normalize replaces nil collections with empty ones so the blob always
// serializes with arrays.
func (s *State) Normalize() {
	if s.Transactions == nil {
		s.Transactions = []Transaction{}
	}
	if s.Tasks == nil {
		s.Tasks = []Task{}
	}
	if s.Goals == nil {
		s.Goals = []FinancialGoal{}
	}
	if s.Budgets == nil {
		s.Budgets = []Budget{}
	}
	if s.Schedule == nil {
		s.Schedule = []TimeBlock{}
	}
	if s.Categories == nil {
		s.Categories = []string{}
	}
	if s.Subscriptions == nil {
		s.Subscriptions = []Subscription{}
	}
}

// Category registry

// AddCategory appends label unless an identical label exists.
func (s *State) AddCategory(label string) bool {
	if label == "" || slices.Contains(s.Categories, label) {
		return false
	}
	s.Categories = append(s.Categories, label)
	return true
}

// RemoveCategory drops label from the registry. Entities referencing it are untouched.
func (s *State) RemoveCategory(label string) bool {
	i := slices.Index(s.Categories, label)
	if i < 0 {
		return false
	}
	s.Categories = slices.Delete(s.Categories, i, i+1)
	return true
}

// Ledger

// AddTransaction appends t. Id uniqueness is the caller's responsibility.
func (s *State) AddTransaction(t Transaction) {
	s.Transactions = append(s.Transactions, t)
}

// RemoveTransaction removes the first transaction with the given id.
func (s *State) RemoveTransaction(id string) (Transaction, bool) {
	i := slices.IndexFunc(s.Transactions, func(t Transaction) bool { return t.ID == id })
	if i < 0 {
		return Transaction{}, false
	}
	removed := s.Transactions[i]
	s.Transactions = slices.Delete(s.Transactions, i, i+1)
	return removed, true
}

func (s *State) HasTransaction(id string) bool {
	return slices.ContainsFunc(s.Transactions, func(t Transaction) bool { return t.ID == id })
}

// Budgets

// SetBudget replaces any budget with exactly the same category, otherwise inserts.
func (s *State) SetBudget(b Budget) {
	s.Budgets = slices.DeleteFunc(s.Budgets, func(old Budget) bool { return old.Category == b.Category })
	s.Budgets = append(s.Budgets, b)
}

func (s *State) RemoveBudget(id string) bool {
	n := len(s.Budgets)
	s.Budgets = slices.DeleteFunc(s.Budgets, func(b Budget) bool { return b.ID == id })
	return len(s.Budgets) != n
}

// Goals

// AddGoal stores g with a zero current amount.
func (s *State) AddGoal(g FinancialGoal) {
	g.CurrentAmount = Zero
	s.Goals = append(s.Goals, g)
}

func (s *State) goalIndex(id string) int {
	return slices.IndexFunc(s.Goals, func(g FinancialGoal) bool { return g.ID == id })
}

func (s *State) Goal(id string) (FinancialGoal, bool) {
	i := s.goalIndex(id)
	if i < 0 {
		return FinancialGoal{}, false
	}
	return s.Goals[i], true
}

// Contribute adds amount to the goal and records the matching savings expense
// dated on. Both effects happen or neither does. An unknown goal is a no-op.
func (s *State) Contribute(goalID string, amount Amount, on Date, txID string) (Transaction, bool, error) {
	if err := amount.Validate(); err != nil {
		return Transaction{}, false, err
	}
	i := s.goalIndex(goalID)
	if i < 0 {
		return Transaction{}, false, nil
	}
	tx := Transaction{
		ID:       txID,
		Merchant: "Goal: " + s.Goals[i].Title,
		Amount:   amount,
		Date:     on,
		Category: SavingsCategory,
		Type:     Expense,
	}
	s.Goals[i].CurrentAmount = s.Goals[i].CurrentAmount.Add(amount)
	s.Transactions = append(s.Transactions, tx)
	return tx, true, nil
}

func (s *State) SetGoalAdvice(goalID, advice string) bool {
	i := s.goalIndex(goalID)
	if i < 0 {
		return false
	}
	s.Goals[i].AIAdvice = advice
	return true
}

// Subscriptions

func (s *State) AddSubscription(sub Subscription) {
	s.Subscriptions = append(s.Subscriptions, sub)
}

// ToggleSubscription flips active/paused without touching the next payment date.
func (s *State) ToggleSubscription(id string) (Subscription, bool) {
	for i := range s.Subscriptions {
		if s.Subscriptions[i].ID != id {
			continue
		}
		if s.Subscriptions[i].Status == Active {
			s.Subscriptions[i].Status = Paused
		} else {
			s.Subscriptions[i].Status = Active
		}
		return s.Subscriptions[i], true
	}
	return Subscription{}, false
}

func (s *State) RemoveSubscription(id string) bool {
	n := len(s.Subscriptions)
	s.Subscriptions = slices.DeleteFunc(s.Subscriptions, func(sub Subscription) bool { return sub.ID == id })
	return len(s.Subscriptions) != n
}

// Preferences

func (s *State) SetDarkMode(on bool) { s.IsDarkMode = on }
