package amqp

import (
	"encoding/json"
	"time"
)

// RunRecordedMessage announces a finished simulation run. It carries the
// full request and summary so the consumer can persist it without calling
// back into the API.
type RunRecordedMessage struct {
	Kind      string          `json:"kind"`
	CreatedAt time.Time       `json:"created_at"`
	Request   json.RawMessage `json:"request"`
	Summary   json.RawMessage `json:"summary"`
}

// NewRunRecordedMessage creates a run message stamped with the current time
// when createdAt is zero.
func NewRunRecordedMessage(kind string, createdAt time.Time, request, summary json.RawMessage) *RunRecordedMessage {
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return &RunRecordedMessage{
		Kind:      kind,
		CreatedAt: createdAt,
		Request:   request,
		Summary:   summary,
	}
}

// ToJSON converts the message to JSON bytes.
func (m *RunRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RunRecordedMessageFromJSON creates a message from JSON bytes.
func RunRecordedMessageFromJSON(data []byte) (*RunRecordedMessage, error) {
	var msg RunRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
