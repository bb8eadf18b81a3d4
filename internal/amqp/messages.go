package amqp

import (
	"encoding/json"
	"time"
)

// Operations carried by a transaction event.
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
)

// TransactionEvent notifies consumers that a user's ledger changed. It carries
// only identifiers, the worker fetches current data from the database.
type TransactionEvent struct {
	TransactionID int64     `json:"transaction_id"`
	UserID        int64     `json:"user_id"`
	Op            string    `json:"op"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewTransactionEvent creates an event stamped with the current time.
func NewTransactionEvent(transactionID, userID int64, op string) *TransactionEvent {
	return &TransactionEvent{
		TransactionID: transactionID,
		UserID:        userID,
		Op:            op,
		OccurredAt:    time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON parses an event from JSON bytes.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var evt TransactionEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return nil, err
	}
	return &evt, nil
}
