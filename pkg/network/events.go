package network

import (
	"github.com/google/uuid"
	"github.com/lleps/peinbol/pkg/messages"
)

// ConnectEvent is queued once when a connection is accepted or established.
type ConnectEvent struct {
	ConnectionID uuid.UUID
	RemoteAddr   string
}

// DisconnectEvent is queued exactly once when a connection is torn down,
// whatever the cause.
type DisconnectEvent struct {
	ConnectionID uuid.UUID
}

// MessageEvent carries a decoded message received on a connection.
type MessageEvent struct {
	ConnectionID uuid.UUID
	Message      messages.Message
}
