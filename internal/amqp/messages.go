package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"finman/internal/core"
)

// Event types published after a ledger mutation.
const (
	EventTransactionAdded = "transaction.added"
	EventBudgetSet        = "budget.set"
)

// TransactionPayload is the wire form of a recorded transaction.
type TransactionPayload struct {
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Date        string `json:"date"`
	Description string `json:"description"`
	IsIncome    bool   `json:"is_income"`
}

// BudgetPayload is the wire form of a budget change.
type BudgetPayload struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

// LedgerEvent announces a change to the ledger. Exactly one of Transaction
// and Budget is set, matching Type.
type LedgerEvent struct {
	ID          string              `json:"id"`
	Type        string              `json:"type"`
	Timestamp   time.Time           `json:"timestamp"`
	Transaction *TransactionPayload `json:"transaction,omitempty"`
	Budget      *BudgetPayload      `json:"budget,omitempty"`
}

// NewTransactionAddedEvent wraps a recorded transaction in a new event.
func NewTransactionAddedEvent(tx core.Transaction) *LedgerEvent {
	return &LedgerEvent{
		ID:        uuid.New().String(),
		Type:      EventTransactionAdded,
		Timestamp: time.Now().UTC(),
		Transaction: &TransactionPayload{
			Amount:      tx.Amount.String(),
			Category:    tx.Category,
			Date:        tx.Date.String(),
			Description: tx.Description,
			IsIncome:    tx.IsIncome,
		},
	}
}

// NewBudgetSetEvent wraps a budget change in a new event.
func NewBudgetSetEvent(category string, amount core.Money) *LedgerEvent {
	return &LedgerEvent{
		ID:        uuid.New().String(),
		Type:      EventBudgetSet,
		Timestamp: time.Now().UTC(),
		Budget: &BudgetPayload{
			Category: category,
			Amount:   amount.String(),
		},
	}
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes and sanity-checks an event body.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(e.ID); err != nil {
		return nil, fmt.Errorf("invalid event id %q: %w", e.ID, err)
	}
	switch e.Type {
	case EventTransactionAdded:
		if e.Transaction == nil {
			return nil, fmt.Errorf("%s event without transaction", e.Type)
		}
	case EventBudgetSet:
		if e.Budget == nil {
			return nil, fmt.Errorf("%s event without budget", e.Type)
		}
	default:
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}
	return &e, nil
}
