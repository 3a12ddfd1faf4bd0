// Package sheets mirrors ledger activity into a spreadsheet, one row per
// transaction with the owning user and transaction id as reference.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"brokemate/internal/core"

	"github.com/shopspring/decimal"
)

// Header is the first row of every ledger sheet.
var Header = []string{"Date", "Merchant", "Category", "Type", "Amount", "Recurrence", "User", "Ref"}

var ErrMalformedRow = errors.New("malformed ledger row")

// Ports for outbound adapters.
type (
	LedgerExporter interface {
		// Append writes the row and returns a reference to where it landed.
		Append(ctx context.Context, row Row) (rowRef string, err error)
		// Remove clears the row whose user and ref match. Missing rows are
		// not an error and report false.
		Remove(ctx context.Context, row Row) (bool, error)
	}

	LedgerReader interface {
		// Rows returns the exported rows for the given year.
		Rows(ctx context.Context, year int) ([]Row, error)
	}
)

// Row is one exported transaction.
type Row struct {
	Date       core.Date
	Merchant   string
	Category   string
	Type       core.TransactionType
	Amount     core.Amount
	Recurrence core.Frequency
	User       string
	Ref        string
}

func NewRow(userID string, tx core.Transaction) Row {
	return Row{
		Date:       tx.Date,
		Merchant:   tx.Merchant,
		Category:   tx.Category,
		Type:       tx.Type,
		Amount:     tx.Amount,
		Recurrence: tx.Recurrence,
		User:       userID,
		Ref:        tx.ID,
	}
}

// Values renders the row in Header order. Amounts go out as plain numbers so
// the sheet can sum them.
func (r Row) Values() []any {
	return []any{
		r.Date.String(),
		r.Merchant,
		r.Category,
		string(r.Type),
		r.Amount.InexactFloat64(),
		string(r.Recurrence),
		r.User,
		r.Ref,
	}
}

// ParseRow reads cells in Header order. Trailing empty cells may be omitted
// by the API, so only the first five are mandatory.
func ParseRow(cells []string) (Row, error) {
	if len(cells) < 5 {
		return Row{}, fmt.Errorf("%w: %d cells", ErrMalformedRow, len(cells))
	}
	get := func(i int) string {
		if i >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[i])
	}

	date, err := core.ParseDate(get(0))
	if err != nil {
		return Row{}, fmt.Errorf("%w: date %q", ErrMalformedRow, get(0))
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(get(4), ",", ""))
	if err != nil {
		return Row{}, fmt.Errorf("%w: amount %q", ErrMalformedRow, get(4))
	}

	return Row{
		Date:       date,
		Merchant:   get(1),
		Category:   get(2),
		Type:       core.TransactionType(get(3)),
		Amount:     core.NewAmount(amount),
		Recurrence: core.Frequency(get(5)),
		User:       get(6),
		Ref:        get(7),
	}, nil
}

// IsHeader reports whether cells look like the Header row.
func IsHeader(cells []string) bool {
	return len(cells) > 0 && strings.EqualFold(strings.TrimSpace(cells[0]), Header[0])
}
