package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"brokemate/internal/core"
)

type EventType string

const (
	EventTransactionCreated EventType = "transaction.created"
	EventTransactionRemoved EventType = "transaction.removed"
	EventSubscriptionFired  EventType = "subscription.fired"
	EventGoalContributed    EventType = "goal.contributed"
)

// LedgerEvent announces a committed ledger change of one user partition.
// It carries the full transaction so consumers never read the state blob.
type LedgerEvent struct {
	ID             string           `json:"id"`
	Type           EventType        `json:"type"`
	UserID         string           `json:"user_id"`
	Transaction    core.Transaction `json:"transaction"`
	SubscriptionID string           `json:"subscription_id,omitempty"`
	Timestamp      time.Time        `json:"timestamp"`
}

// NewLedgerEvent creates an event with a fresh id and the current time.
func NewLedgerEvent(typ EventType, userID string, tx core.Transaction) *LedgerEvent {
	return &LedgerEvent{
		ID:          uuid.NewString(),
		Type:        typ,
		UserID:      userID,
		Transaction: tx,
		Timestamp:   time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes an event and rejects ones without a type or user.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var ev LedgerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	if ev.Type == "" || ev.UserID == "" {
		return nil, fmt.Errorf("ledger event %q: missing type or user", ev.ID)
	}
	return &ev, nil
}
