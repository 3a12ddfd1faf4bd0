package memory

import (
	"context"
	"fmt"
	"sync"

	"brokemate/internal/sheets"
)

// Exporter keeps exported rows in process memory, grouped by year.
type Exporter struct {
	mu    sync.Mutex
	years map[int][]sheets.Row
}

var (
	_ sheets.LedgerExporter = (*Exporter)(nil)
	_ sheets.LedgerReader   = (*Exporter)(nil)
)

func New() *Exporter {
	return &Exporter{years: make(map[int][]sheets.Row)}
}

// Append stores the row and returns a synthetic row reference.
func (e *Exporter) Append(_ context.Context, row sheets.Row) (string, error) {
	if row.Ref == "" || row.User == "" {
		return "", fmt.Errorf("%w: missing user or ref", sheets.ErrMalformedRow)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	year := row.Date.Year()
	e.years[year] = append(e.years[year], row)
	return fmt.Sprintf("mem:%d:%d", year, len(e.years[year])), nil
}

func (e *Exporter) Remove(_ context.Context, row sheets.Row) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	year := row.Date.Year()
	rows := e.years[year]
	for i, r := range rows {
		if r.Ref == row.Ref && r.User == row.User {
			e.years[year] = append(rows[:i], rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (e *Exporter) Rows(_ context.Context, year int) ([]sheets.Row, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]sheets.Row(nil), e.years[year]...), nil
}
