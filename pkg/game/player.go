package game

import (
	"time"

	"github.com/google/uuid"
	"github.com/lleps/peinbol/pkg/messages"
)

type PlayerState uint8

const (
	// PlayerStateConnecting is a connection that has not introduced itself yet
	PlayerStateConnecting PlayerState = iota
	// PlayerStateActive is a player with a character in the world
	PlayerStateActive
	// PlayerStateDisconnected is a player on its way out; it stays until the disconnect event
	PlayerStateDisconnected
)

func (s PlayerState) String() string {
	switch s {
	case PlayerStateConnecting:
		return "connecting"
	case PlayerStateActive:
		return "active"
	case PlayerStateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

type Player struct {
	ConnectionID uuid.UUID
	Name         string
	State        PlayerState
	// BoxID is the character box, 0 until the player is active
	BoxID    int32
	Input    messages.InputState
	Health   int32
	LastFire time.Time
	LastJump time.Time

	// seq orders players by arrival
	seq uint64
}

// bullet is the bookkeeping for a live bullet box.
type bullet struct {
	spawnedAt   time.Time
	emitterBox  int32
	emitterName string
}
