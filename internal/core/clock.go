package core

import "time"

// Clock supplies "today" so date-dependent derivations stay deterministic.
type Clock interface {
	Today() Date
}

// SystemClock reads the wall clock in Location (UTC when nil).
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Today() Date {
	now := time.Now()
	if c.Location != nil {
		now = now.In(c.Location)
	}
	return DateOf(now)
}

// FixedClock always returns the same day.
type FixedClock Date

func (c FixedClock) Today() Date { return Date(c) }
