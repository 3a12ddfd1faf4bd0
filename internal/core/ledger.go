package core

// Filter selects ledger entries. Unset fields match everything; set fields are ANDed.
type Filter struct {
	From     Date // inclusive
	To       Date // inclusive
	Category string
	Type     TransactionType
}

func (f Filter) Match(t Transaction) bool {
	if !f.From.IsZero() && t.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && t.Date.After(f.To) {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	return true
}

// Query returns the transactions matching f, preserving ledger order.
func Query(txs []Transaction, f Filter) []Transaction {
	out := []Transaction{}
	for _, t := range txs {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Totals are the income/expense aggregates of a ledger subset.
type Totals struct {
	Income  Amount `json:"income"`
	Expense Amount `json:"expense"`
	Balance Amount `json:"balance"`
}

func Summarize(txs []Transaction) Totals {
	var t Totals
	for _, tx := range txs {
		switch tx.Type {
		case Income:
			t.Income = t.Income.Add(tx.Amount)
		case Expense:
			t.Expense = t.Expense.Add(tx.Amount)
		}
	}
	t.Balance = t.Income.Sub(t.Expense)
	return t
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string `json:"name"`
	Amount Amount `json:"amount"`
}

// CategoryTotals sums txs per category in first-seen order.
func CategoryTotals(txs []Transaction) []CategoryAmount {
	out := []CategoryAmount{}
	index := make(map[string]int)
	for _, tx := range txs {
		i, ok := index[tx.Category]
		if !ok {
			i = len(out)
			index[tx.Category] = i
			out = append(out, CategoryAmount{Name: tx.Category})
		}
		out[i].Amount = out[i].Amount.Add(tx.Amount)
	}
	return out
}
