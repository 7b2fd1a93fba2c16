package ports

import "encoding/json"

// RelayEvent is the message delivered to a connected party through its
// channel. Payload holds the counterparty public info for exchange events,
// and the session as seen by the recipient for created events.
type RelayEvent struct {
	Type      string          `json:"type"`
	SwapID    string          `json:"swapId,omitempty"`
	Status    string          `json:"status,omitempty"`
	Role      string          `json:"role,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Error     string          `json:"error,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// PartyChannel is the live delivery handle of one connected party.
type PartyChannel interface {
	// Id uniquely identifies the connection.
	Id() string
	// Send enqueues the event for delivery. It must never block, and it must
	// preserve the order of the enqueued events.
	Send(event RelayEvent) error
	// Close tears down the connection.
	Close()
}
