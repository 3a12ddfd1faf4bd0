package sheets

import (
	"errors"
	"testing"

	"brokemate/internal/core"
)

func TestRowRoundTrip(t *testing.T) {
	tx := core.Transaction{
		ID:         "sub-s1-2024-03-01",
		Merchant:   "Spotify",
		Amount:     core.AmountFromFloat(149.5),
		Date:       core.MustParseDate("2024-03-01"),
		Category:   "Entertainment 🎬",
		Type:       core.Expense,
		Recurrence: core.Monthly,
	}
	row := NewRow("alice", tx)

	vals := row.Values()
	if len(vals) != len(Header) {
		t.Fatalf("Values() len = %d, want %d", len(vals), len(Header))
	}
	if vals[0] != "2024-03-01" || vals[4] != 149.5 || vals[7] != tx.ID {
		t.Errorf("Values() = %v", vals)
	}

	got, err := ParseRow([]string{"2024-03-01", "Spotify", "Entertainment 🎬", "expense", "149.50", "monthly", "alice", tx.ID})
	if err != nil {
		t.Fatalf("ParseRow() error = %v", err)
	}
	if !got.Amount.Equal(tx.Amount) || got.Ref != tx.ID || got.User != "alice" || got.Recurrence != core.Monthly {
		t.Errorf("ParseRow() = %+v", got)
	}
}

func TestParseRow(t *testing.T) {
	tests := []struct {
		name    string
		cells   []string
		wantErr bool
	}{
		{"trailing cells omitted", []string{"2024-01-02", "Jollibee", "Food", "expense", "1,250.00"}, false},
		{"zero amount", []string{"2024-01-02", "Unknown Merchant", "Others 📦", "expense", "0"}, false},
		{"too short", []string{"2024-01-02", "x"}, true},
		{"bad date", []string{"02/01/2024", "x", "Food", "expense", "10"}, true},
		{"bad amount", []string{"2024-01-02", "x", "Food", "expense", "ten"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRow(tt.cells)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRow() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrMalformedRow) {
				t.Errorf("ParseRow() error = %v, want ErrMalformedRow", err)
			}
		})
	}
}

func TestIsHeader(t *testing.T) {
	if !IsHeader(Header) {
		t.Error("IsHeader(Header) = false")
	}
	if IsHeader([]string{"2024-01-01"}) || IsHeader(nil) {
		t.Error("IsHeader() matched a data row")
	}
}
