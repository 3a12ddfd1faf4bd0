// Package core provides money parsing and handling utilities.
//
// Amounts are exact decimals in a single, configurable display currency.
// The ledger itself is currency-agnostic.
package core

import (
	"bytes"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used for display when no currency is configured.
const DefaultCurrency = "PHP"

// Amount is a decimal currency value.
type Amount struct {
	value decimal.Decimal
}

func NewAmount(v decimal.Decimal) Amount { return Amount{value: v} }
func AmountFromInt(v int64) Amount       { return Amount{value: decimal.NewFromInt(v)} }
func AmountFromFloat(v float64) Amount   { return Amount{value: decimal.NewFromFloat(v)} }

// Zero is the additive identity.
var Zero = Amount{}

func (a Amount) Decimal() decimal.Decimal     { return a.value }
func (a Amount) Add(b Amount) Amount          { return Amount{value: a.value.Add(b.value)} }
func (a Amount) Sub(b Amount) Amount          { return Amount{value: a.value.Sub(b.value)} }
func (a Amount) IsZero() bool                 { return a.value.IsZero() }
func (a Amount) IsPositive() bool             { return a.value.IsPositive() }
func (a Amount) IsNegative() bool             { return a.value.IsNegative() }
func (a Amount) Equal(b Amount) bool          { return a.value.Equal(b.value) }
func (a Amount) GreaterThan(b Amount) bool    { return a.value.GreaterThan(b.value) }
func (a Amount) LessThan(b Amount) bool       { return a.value.LessThan(b.value) }
func (a Amount) Cmp(b Amount) int             { return a.value.Cmp(b.value) }
func (a Amount) String() string               { return a.value.String() }
func (a Amount) InexactFloat64() float64      { return a.value.InexactFloat64() }

// Ratio returns a/b, or false when b is zero.
func (a Amount) Ratio(b Amount) (decimal.Decimal, bool) {
	if b.value.IsZero() {
		return decimal.Zero, false
	}
	return a.value.Div(b.value), true
}

func (a Amount) Validate() error {
	if !a.value.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// MarshalJSON writes the amount as a bare JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.value.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (a *Amount) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*a = Amount{}
		return nil
	}
	d, err := decimal.NewFromString(string(bytes.Trim(b, `"`)))
	if err != nil {
		return ErrInvalidAmount
	}
	*a = Amount{value: d}
	return nil
}

// ParseAmount converts user input into an Amount rounded to two decimals.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted. Next
// to a dot, or when repeated, commas group thousands. A lone comma followed
// by exactly three digits could be either and is rejected. Signs, empty
// input and values that round to zero are rejected with ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("199")       -> 199
//	ParseAmount("12,5")      -> 12.5
//	ParseAmount("1,234.50")  -> 1234.5
//	ParseAmount("1,234,567") -> 1234567
//	ParseAmount("1,234")     -> ErrInvalidAmount
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Amount{}, ErrInvalidAmount
	}
	s, ok := normalizeSeparators(s)
	if !ok || strings.Count(s, ".") > 1 {
		return Amount{}, ErrInvalidAmount
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return Amount{}, ErrInvalidAmount
		}
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, ErrInvalidAmount
	}
	d = d.Round(2)
	if !d.IsPositive() {
		return Amount{}, ErrInvalidAmount
	}
	return Amount{value: d}, nil
}

// normalizeSeparators rewrites s to use a single dot decimal separator and
// no grouping.
func normalizeSeparators(s string) (string, bool) {
	commas := strings.Count(s, ",")
	switch {
	case commas == 0:
		return s, true
	case commas == 1 && !strings.Contains(s, "."):
		i := strings.IndexByte(s, ',')
		if len(s)-i-1 == 3 {
			return "", false
		}
		return s[:i] + "." + s[i+1:], true
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	if strings.Contains(frac, ",") {
		return "", false
	}
	groups := strings.Split(whole, ",")
	if len(groups[0]) == 0 || len(groups[0]) > 3 {
		return "", false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return "", false
		}
	}
	whole = strings.Join(groups, "")
	if hasFrac {
		return whole + "." + frac, true
	}
	return whole, true
}

// FormatAmount renders a for display in the given ISO currency (e.g. "₱1,234.50").
func FormatAmount(a Amount, currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	cur := *money.New(0, currency).Currency()
	minor := a.value.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}
