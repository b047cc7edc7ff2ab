package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Reasons carried by SnapshotSavedMessage.
const (
	ReasonAdd    = "add"
	ReasonDelete = "delete"
)

// SnapshotSavedMessage announces that the primary store now holds a new
// ledger snapshot. Consumers read the snapshot from the store itself; the
// message only says which version to expect.
type SnapshotSavedMessage struct {
	Version    uint64    `json:"version"`
	Reason     string    `json:"reason"`
	Count      int       `json:"count"`
	TotalCents int64     `json:"total_cents"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewSnapshotSavedMessage(version uint64, reason string, count int, totalCents int64) *SnapshotSavedMessage {
	return &SnapshotSavedMessage{
		Version:    version,
		Reason:     reason,
		Count:      count,
		TotalCents: totalCents,
		Timestamp:  time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SnapshotSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SnapshotSavedMessageFromJSON decodes and sanity-checks a message body.
func SnapshotSavedMessageFromJSON(data []byte) (*SnapshotSavedMessage, error) {
	var msg SnapshotSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("decode snapshot message: %w", err)
	}
	if msg.Version == 0 {
		return nil, errors.New("decode snapshot message: missing version")
	}
	if msg.Count < 0 || msg.TotalCents < 0 {
		return nil, errors.New("decode snapshot message: negative totals")
	}
	return &msg, nil
}
