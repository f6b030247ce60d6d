// Package hub fans session events out to connected websocket clients.
package hub

import (
	"encoding/json"
	"time"
)

// Message is one frame delivered to every client.
type Message struct {
	// Type names the payload ("event", "metrics", "hello").
	Type string          `json:"type"`
	Time time.Time       `json:"time"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewMessage encodes v as the payload of a message of the given type.
func NewMessage(typ string, v any) (Message, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: typ, Time: time.Now(), Data: data}, nil
}

func (m Message) marshal() ([]byte, error) {
	return json.Marshal(m)
}
