package game

import (
	"github.com/google/uuid"
	"github.com/lleps/peinbol/pkg/messages"
)

// Sender delivers messages to connected clients. It must never block the game loop.
type Sender interface {
	// Send queues a message for one connection.
	Send(id uuid.UUID, m messages.Message) error
	// Multicast queues a message for the given connections.
	Multicast(ids []uuid.UUID, m messages.Message)
	// Broadcast queues a message for every connection.
	Broadcast(m messages.Message)
	// Disconnect closes a connection. A disconnect event follows through the event queue.
	Disconnect(id uuid.UUID)
}
