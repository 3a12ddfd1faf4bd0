package core

import "testing"

func TestClassifyBudget(t *testing.T) {
	limit := AmountFromInt(1000)
	tests := []struct {
		name  string
		spent Amount
		want  BudgetStatus
	}{
		{"nothing spent", Zero, BudgetOK},
		{"79 percent", AmountFromInt(790), BudgetOK},
		{"exactly 80 percent", AmountFromInt(800), BudgetOK},
		{"85 percent", AmountFromInt(850), BudgetNear},
		{"exactly 100 percent", AmountFromInt(1000), BudgetNear},
		{"101 percent", AmountFromInt(1010), BudgetOver},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyBudget(tt.spent, limit); got != tt.want {
				t.Errorf("ClassifyBudget(%s, %s) = %s, want %s", tt.spent, limit, got, tt.want)
			}
		})
	}

	t.Run("zero cap", func(t *testing.T) {
		if got := ClassifyBudget(AmountFromInt(1), Zero); got != BudgetOver {
			t.Errorf("ClassifyBudget(1, 0) = %s, want over", got)
		}
		if got := ClassifyBudget(Zero, Zero); got != BudgetOK {
			t.Errorf("ClassifyBudget(0, 0) = %s, want ok", got)
		}
	})
}

func TestSpentInMonth(t *testing.T) {
	txs := []Transaction{
		{ID: "1", Amount: AmountFromInt(100), Date: MustParseDate("2024-03-01"), Category: "Food", Type: Expense},
		{ID: "2", Amount: AmountFromInt(50), Date: MustParseDate("2024-03-31"), Category: "Food", Type: Expense},
		{ID: "3", Amount: AmountFromInt(70), Date: MustParseDate("2024-04-01"), Category: "Food", Type: Expense},
		{ID: "4", Amount: AmountFromInt(999), Date: MustParseDate("2024-03-10"), Category: "Food", Type: Income},
		{ID: "5", Amount: AmountFromInt(30), Date: MustParseDate("2024-03-10"), Category: "Bills", Type: Expense},
	}

	got := SpentInMonth(txs, "Food", "2024-03")
	if !got.Equal(AmountFromInt(150)) {
		t.Errorf("SpentInMonth() = %s, want 150", got)
	}
}

func TestBudgetReports(t *testing.T) {
	s := DefaultState()
	s.SetBudget(Budget{ID: "b1", Category: "Food", Amount: AmountFromInt(100)})
	s.AddTransaction(Transaction{ID: "t1", Merchant: "Jollibee", Amount: AmountFromInt(90), Date: MustParseDate("2024-05-02"), Category: "Food", Type: Expense})

	reports := BudgetReports(s, "2024-05")
	if len(reports) != 1 {
		t.Fatalf("BudgetReports() len = %d, want 1", len(reports))
	}
	if reports[0].Status != BudgetNear || !reports[0].Spent.Equal(AmountFromInt(90)) {
		t.Errorf("BudgetReports()[0] = %+v", reports[0])
	}

	if r := BudgetReports(s, "2024-06"); r[0].Status != BudgetOK {
		t.Errorf("next month status = %s, want ok", r[0].Status)
	}
}
