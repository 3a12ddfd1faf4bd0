package memory

import (
	"context"
	"testing"

	"brokemate/internal/core"
	"brokemate/internal/sheets"
)

func TestExporterAppendRemove(t *testing.T) {
	ctx := context.Background()
	e := New()
	tx := core.Transaction{
		ID:       "tx-1",
		Merchant: "Netflix",
		Amount:   core.AmountFromInt(549),
		Date:     core.MustParseDate("2024-03-01"),
		Category: "Bills 🧾",
		Type:     core.Expense,
	}

	ref, err := e.Append(ctx, sheets.NewRow("alice", tx))
	if err != nil || ref != "mem:2024:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}
	if _, err := e.Append(ctx, sheets.Row{Date: tx.Date}); err == nil {
		t.Error("expected error for row without user and ref")
	}

	rows, _ := e.Rows(ctx, 2024)
	if len(rows) != 1 || rows[0].Merchant != "Netflix" {
		t.Fatalf("unexpected rows: %+v", rows)
	}

	// another user's row with the same ref is untouched
	if ok, _ := e.Remove(ctx, sheets.NewRow("bob", tx)); ok {
		t.Error("Remove() matched a different user")
	}
	if ok, _ := e.Remove(ctx, sheets.NewRow("alice", tx)); !ok {
		t.Error("Remove() did not find the row")
	}
	if rows, _ := e.Rows(ctx, 2024); len(rows) != 0 {
		t.Errorf("rows after remove: %+v", rows)
	}
}
