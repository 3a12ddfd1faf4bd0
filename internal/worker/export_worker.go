// Package worker mirrors ledger events into the spreadsheet export.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"brokemate/internal/amqp"
	"brokemate/internal/cache"
	"brokemate/internal/sheets"
)

const (
	seenCacheSize = 10000
	seenCacheTTL  = 24 * time.Hour
)

// ExportWorker appends created, fired and contributed transactions to the
// export and clears removed ones. Redelivered events already handled by
// this process are skipped.
type ExportWorker struct {
	exporter sheets.LedgerExporter
	seen     *cache.LRUCache[string]
}

func NewExportWorker(exporter sheets.LedgerExporter) *ExportWorker {
	return &ExportWorker{
		exporter: exporter,
		seen:     cache.NewLRUCache[string](seenCacheSize, seenCacheTTL),
	}
}

// Seen exposes the dedupe cache for periodic cleanup.
func (w *ExportWorker) Seen() cache.Cleaner { return w.seen }

// HandleLedgerEvent processes a single ledger event from AMQP. A returned
// error requeues the message.
func (w *ExportWorker) HandleLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	if ref, ok := w.seen.Get(ev.ID); ok {
		slog.DebugContext(ctx, "Skipping already exported event", "event_id", ev.ID, "ref", ref)
		return nil
	}

	row := sheets.NewRow(ev.UserID, ev.Transaction)

	switch ev.Type {
	case amqp.EventTransactionCreated, amqp.EventSubscriptionFired, amqp.EventGoalContributed:
		ref, err := w.exporter.Append(ctx, row)
		if err != nil {
			return fmt.Errorf("export transaction %s: %w", ev.Transaction.ID, err)
		}
		w.seen.Set(ev.ID, ref)
		slog.InfoContext(ctx, "Exported transaction",
			"event_id", ev.ID,
			"type", ev.Type,
			"user_id", ev.UserID,
			"transaction_id", ev.Transaction.ID,
			"ref", ref)

	case amqp.EventTransactionRemoved:
		found, err := w.exporter.Remove(ctx, row)
		if err != nil {
			return fmt.Errorf("remove exported transaction %s: %w", ev.Transaction.ID, err)
		}
		w.seen.Set(ev.ID, "removed")
		if !found {
			slog.WarnContext(ctx, "Removed transaction was never exported",
				"event_id", ev.ID,
				"user_id", ev.UserID,
				"transaction_id", ev.Transaction.ID)
			return nil
		}
		slog.InfoContext(ctx, "Cleared exported transaction",
			"event_id", ev.ID,
			"user_id", ev.UserID,
			"transaction_id", ev.Transaction.ID)

	default:
		slog.WarnContext(ctx, "Ignoring unknown ledger event", "event_id", ev.ID, "type", ev.Type)
	}

	return nil
}
