package amqp

import (
	"encoding/json"
	"time"

	"kasir/internal/core"
)

// Record kinds carried in LedgerChangedMessage.
const (
	KindSales          = "sales"
	KindExpense        = "expense"
	KindOpeningBalance = "opening_balance"
)

// LedgerChangedMessage tells downstream consumers (dashboards, export
// jobs) that the ledger changed for a business day. It carries no row
// data; consumers re-query the engine for fresh figures.
type LedgerChangedMessage struct {
	Kind      string    `json:"kind"`
	Date      string    `json:"date"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerChangedMessage creates a change notification for a record
// kind and business day.
func NewLedgerChangedMessage(kind string, date core.Date) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		Kind:      kind,
		Date:      date.ISO(),
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangedMessageFromJSON creates a message from JSON bytes.
func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
