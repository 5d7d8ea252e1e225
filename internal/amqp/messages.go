package amqp

import (
	"encoding/json"
	"time"
)

// LedgerEventMessage announces a ledger entry mutation. It carries ids only;
// consumers fetch whatever state they need from the database, so a stale
// message never overwrites fresher data.
type LedgerEventMessage struct {
	EntryType string    `json:"entry_type"` // "expense" or "income"
	Action    string    `json:"action"`     // "created", "updated", "deleted"
	EntryID   string    `json:"entry_id"`
	OwnerID   string    `json:"owner_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerEventMessage(entryType, action, entryID, ownerID string) *LedgerEventMessage {
	return &LedgerEventMessage{
		EntryType: entryType,
		Action:    action,
		EntryID:   entryID,
		OwnerID:   ownerID,
		Timestamp: time.Now(),
	}
}

func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
