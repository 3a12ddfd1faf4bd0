package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	BudgetOK   BudgetStatus = "ok"
	BudgetNear BudgetStatus = "near"
	BudgetOver BudgetStatus = "over"
)

type BudgetStatus string

var nearThreshold = decimal.NewFromFloat(0.8)

// SpentInMonth sums expenses in category whose date starts with month ("YYYY-MM").
func SpentInMonth(txs []Transaction, category, month string) Amount {
	var spent Amount
	for _, tx := range txs {
		if tx.Type != Expense || tx.Category != category {
			continue
		}
		if !strings.HasPrefix(tx.Date.String(), month) {
			continue
		}
		spent = spent.Add(tx.Amount)
	}
	return spent
}

// ClassifyBudget maps spent/cap to over (> 1), near (> 0.8 and <= 1) or ok.
// A zero cap is over as soon as anything is spent.
func ClassifyBudget(spent, limit Amount) BudgetStatus {
	ratio, ok := spent.Ratio(limit)
	if !ok {
		if spent.IsPositive() {
			return BudgetOver
		}
		return BudgetOK
	}
	switch {
	case ratio.GreaterThan(decimal.NewFromInt(1)):
		return BudgetOver
	case ratio.GreaterThan(nearThreshold):
		return BudgetNear
	default:
		return BudgetOK
	}
}

// BudgetReport is a budget with its live spend for one month.
type BudgetReport struct {
	Budget
	Month  string       `json:"month"`
	Spent  Amount       `json:"spent"`
	Status BudgetStatus `json:"status"`
}

// BudgetReports derives the status of every budget for month.
func BudgetReports(s State, month string) []BudgetReport {
	out := make([]BudgetReport, 0, len(s.Budgets))
	for _, b := range s.Budgets {
		spent := SpentInMonth(s.Transactions, b.Category, month)
		out = append(out, BudgetReport{
			Budget: b,
			Month:  month,
			Spent:  spent,
			Status: ClassifyBudget(spent, b.Amount),
		})
	}
	return out
}
