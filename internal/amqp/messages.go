package amqp

import (
	"encoding/json"
	"time"
)

// LedgerChangeMessage tells the export worker that the ledger moved to a new
// revision. It carries no payload: the worker reloads the snapshot from its
// own backend, so messages are safe to coalesce and replay.
type LedgerChangeMessage struct {
	Revision  int64     `json:"revision"`
	ChangedAt time.Time `json:"changed_at"`
}

func NewLedgerChangeMessage(revision int64) *LedgerChangeMessage {
	return &LedgerChangeMessage{
		Revision:  revision,
		ChangedAt: time.Now(),
	}
}

func (m *LedgerChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerChangeMessageFromJSON(data []byte) (*LedgerChangeMessage, error) {
	var msg LedgerChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
