package websocket

import (
	"encoding/json"
	"time"
)

type EventType string

const (
	EventInventoryUpdated EventType = "inventory.updated"
	EventSaleUpdated      EventType = "sale.updated"
	EventConflictDetected EventType = "conflict.detected"
	EventConflictResolved EventType = "conflict.resolved"
	EventPing             EventType = "ping"
	EventPong             EventType = "pong"
)

type Message struct {
	Event     EventType       `json:"event"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

func NewMessage(event EventType, payload any) (*Message, error) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = data
	}

	return &Message{
		Event:     event,
		Timestamp: time.Now(),
		Payload:   raw,
	}, nil
}

func (m *Message) UnmarshalPayload(v any) error {
	if m.Payload == nil {
		return nil
	}
	return json.Unmarshal(m.Payload, v)
}
