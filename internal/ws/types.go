package ws

import (
	"encoding/json"
	"time"
)

const (
	// client -> server
	MsgPing = "ping"

	// server -> client
	MsgReady = "ready"
	MsgPong  = "pong"
	MsgError = "error"
)

// Envelope is every frame the server writes
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
	At   time.Time       `json:"at"`
}

type inbound struct {
	Type string `json:"type"`
}
