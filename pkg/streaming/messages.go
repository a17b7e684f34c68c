// Package streaming defines the messages sent to a radar overlay client.
package streaming

import (
	"encoding/json"

	"github.com/gavinsmod/gavinsextensiblemod-sub001/pkg/core"
)

// Message type constants matching the streaming protocol.
const (
	TypeHello   = "hello"
	TypeFrame   = "frame"
	TypeGoodbye = "goodbye"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the overlay's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// HelloPayload opens a stream for one session.
type HelloPayload struct {
	Session string `json:"session"`
	Version string `json:"version"`
}

// PointPayload is one radar point.
type PointPayload struct {
	X     float64    `json:"x"`
	Y     float64    `json:"y"`
	Color core.Color `json:"color"`
	Size  int        `json:"size"`
}

// FramePayload is one complete radar frame.
type FramePayload struct {
	Seq      uint64         `json:"seq"`
	Bounds   core.Box2D     `json:"bounds"`
	Backdrop core.Color     `json:"backdrop"`
	Points   []PointPayload `json:"points"`
}

// Marshal builds a JSON-encoded Envelope from a message type and payload.
func Marshal(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}
