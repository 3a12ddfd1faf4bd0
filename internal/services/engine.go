package services

import (
	"log/slog"

	"brokemate/internal/core"
)

// DefaultMaxPasses bounds CatchUp when no limit is configured.
const DefaultMaxPasses = 366

// Firing is one subscription occurrence materialized by a pass.
type Firing struct {
	SubscriptionID string
	Transaction    core.Transaction
	// Duplicate is set when the ledger already held the occurrence; the
	// date still advanced but no transaction was added.
	Duplicate bool
}

// PassResult summarizes one or more evaluation passes.
type PassResult struct {
	Passes  int
	Firings []Firing
	// Skipped lists subscriptions whose frequency has no advancer.
	Skipped []string
}

// Added returns the transactions that were actually written to the ledger.
func (r PassResult) Added() []core.Transaction {
	var out []core.Transaction
	for _, f := range r.Firings {
		if !f.Duplicate {
			out = append(out, f.Transaction)
		}
	}
	return out
}

// Changed reports whether any subscription advanced.
func (r PassResult) Changed() bool { return len(r.Firings) > 0 }

// MaterializedID is the ledger id of a subscription occurrence. It is a pure
// function of the subscription and its due date so an occurrence can never be
// recorded twice.
func MaterializedID(subscriptionID string, due core.Date) string {
	return "sub-" + subscriptionID + "-" + due.String()
}

// Materialize builds the transaction for the subscription's current due date.
func Materialize(sub core.Subscription) core.Transaction {
	return core.Transaction{
		ID:         MaterializedID(sub.ID, sub.NextPaymentDate),
		Merchant:   sub.Name,
		Amount:     sub.Amount,
		Date:       sub.NextPaymentDate,
		Category:   sub.Category,
		Type:       sub.Type,
		Recurrence: sub.Frequency,
	}
}

// EvaluatePass fires every active subscription due on or before today once
// and advances its next payment date by a single cadence unit.
func EvaluatePass(s *core.State, today core.Date) PassResult {
	res := PassResult{Passes: 1}
	for i := range s.Subscriptions {
		sub := s.Subscriptions[i]
		if !sub.Due(today) {
			continue
		}
		next, err := NextPaymentDate(sub.Frequency, sub.NextPaymentDate)
		if err != nil {
			slog.Warn("Skipping subscription with unknown cadence",
				"subscription_id", sub.ID,
				"frequency", sub.Frequency,
				"error", err)
			res.Skipped = append(res.Skipped, sub.ID)
			continue
		}

		tx := Materialize(sub)
		f := Firing{SubscriptionID: sub.ID, Transaction: tx}
		if s.HasTransaction(tx.ID) {
			f.Duplicate = true
		} else {
			s.AddTransaction(tx)
		}
		s.Subscriptions[i].NextPaymentDate = next
		res.Firings = append(res.Firings, f)
	}
	return res
}

// CatchUp runs passes until one fires nothing or maxPasses is reached.
func CatchUp(s *core.State, today core.Date, maxPasses int) PassResult {
	if maxPasses <= 0 {
		maxPasses = DefaultMaxPasses
	}
	var total PassResult
	for total.Passes < maxPasses {
		res := EvaluatePass(s, today)
		total.Passes++
		total.Firings = append(total.Firings, res.Firings...)
		if total.Passes == 1 {
			total.Skipped = res.Skipped
		}
		if !res.Changed() {
			break
		}
	}
	return total
}
