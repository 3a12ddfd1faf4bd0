// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for subscription cadences.
// Each frequency (weekly, monthly, yearly) has its own strategy that
// computes the next payment date from the previous one.
package services

import (
	"fmt"
	"sync"

	"brokemate/internal/core"
)

// Advancer is the strategy interface for moving a subscription's next
// payment date forward by exactly one cadence unit.
type Advancer interface {
	Advance(from core.Date) core.Date
}

// WeeklyAdvancer adds seven calendar days.
type WeeklyAdvancer struct{}

func (WeeklyAdvancer) Advance(from core.Date) core.Date { return from.AddDays(7) }

// MonthlyAdvancer keeps the day of month, clamped to the end of shorter months.
type MonthlyAdvancer struct{}

func (MonthlyAdvancer) Advance(from core.Date) core.Date { return from.AddMonthsClamped(1) }

// YearlyAdvancer keeps month and day; Feb 29 becomes Feb 28 in common years.
type YearlyAdvancer struct{}

func (YearlyAdvancer) Advance(from core.Date) core.Date { return from.AddYearsClamped(1) }

var (
	advancersMu sync.RWMutex
	advancers   = map[core.Frequency]Advancer{
		core.Weekly:  WeeklyAdvancer{},
		core.Monthly: MonthlyAdvancer{},
		core.Yearly:  YearlyAdvancer{},
	}
)

// GetAdvancer returns the advancer registered for a frequency.
func GetAdvancer(frequency core.Frequency) (Advancer, error) {
	advancersMu.RLock()
	defer advancersMu.RUnlock()
	a, ok := advancers[frequency]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidFrequency, frequency)
	}
	return a, nil
}

// RegisterAdvancer installs or replaces the advancer for a frequency.
func RegisterAdvancer(frequency core.Frequency, a Advancer) {
	advancersMu.Lock()
	defer advancersMu.Unlock()
	advancers[frequency] = a
}

// NextPaymentDate advances from by one unit of frequency.
func NextPaymentDate(frequency core.Frequency, from core.Date) (core.Date, error) {
	a, err := GetAdvancer(frequency)
	if err != nil {
		return core.Date{}, err
	}
	return a.Advance(from), nil
}
