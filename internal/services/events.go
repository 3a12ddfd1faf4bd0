package services

import (
	"context"
	"log/slog"

	"brokemate/internal/amqp"
	"brokemate/internal/core"
)

// EventPublisher announces committed ledger changes. *amqp.Client satisfies it.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error
}

// ChangeHook is notified after a user's state was saved.
type ChangeHook func(userID string)

// publishEvent sends ev when a publisher is configured. Failures are logged,
// the state change they describe is already saved.
func publishEvent(ctx context.Context, p EventPublisher, ev *amqp.LedgerEvent) {
	if p == nil {
		slog.DebugContext(ctx, "Event publisher not available, skipping ledger event",
			"type", ev.Type)
		return
	}
	if err := p.PublishLedgerEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"type", ev.Type,
			"user_id", ev.UserID,
			"transaction_id", ev.Transaction.ID,
			"error", err)
	}
}

func publishFirings(ctx context.Context, p EventPublisher, userID string, res PassResult) {
	for _, f := range res.Firings {
		if f.Duplicate {
			continue
		}
		ev := amqp.NewLedgerEvent(amqp.EventSubscriptionFired, userID, f.Transaction)
		ev.SubscriptionID = f.SubscriptionID
		publishEvent(ctx, p, ev)
	}
}

func publishTransaction(ctx context.Context, p EventPublisher, typ amqp.EventType, userID string, tx core.Transaction) {
	publishEvent(ctx, p, amqp.NewLedgerEvent(typ, userID, tx))
}
