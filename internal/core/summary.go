package core

// MonthOverview is a compact summary for a specific month.
type MonthOverview struct {
	Month      string           `json:"month"` // YYYY-MM
	Totals     Totals           `json:"totals"`
	ByCategory []CategoryAmount `json:"byCategory"` // expenses only
	Budgets    []BudgetReport   `json:"budgets"`
}

// BuildMonthOverview aggregates the ledger entries dated in month.
func BuildMonthOverview(s State, month string) MonthOverview {
	var inMonth []Transaction
	for _, tx := range s.Transactions {
		if tx.Date.MonthKey() == month {
			inMonth = append(inMonth, tx)
		}
	}
	return MonthOverview{
		Month:      month,
		Totals:     Summarize(inMonth),
		ByCategory: CategoryTotals(Query(inMonth, Filter{Type: Expense})),
		Budgets:    BudgetReports(s, month),
	}
}
