package state

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lleps/peinbol/pkg/physics"
)

// WorldSnapshot is a read-only view of the world after a tick.
type WorldSnapshot struct {
	// MatchID identifies the running server instance
	MatchID uuid.UUID `json:"matchId"`
	// Tick is the number of game loop iterations so far
	Tick uint64 `json:"tick"`
	// Timestamp is the time the tick ran at
	Timestamp time.Time `json:"timestamp"`
	// Players holds one entry per connected player, sorted by name
	Players []PlayerSummary `json:"players"`
	// Boxes holds every live box in simulation order
	Boxes []physics.BoxState `json:"boxes"`
}

// PlayerSummary describes a connected player.
type PlayerSummary struct {
	Name   string `json:"name"`
	State  string `json:"state"`
	BoxID  int32  `json:"boxId"`
	Health int32  `json:"health"`
}

// SnapshotStore provides shared access to the latest world snapshot.
// Implementations must be thread-safe.
type SnapshotStore interface {
	// Get returns the latest snapshot.
	Get(ctx context.Context) (*WorldSnapshot, error)
	// Set replaces the latest snapshot.
	Set(ctx context.Context, snapshot *WorldSnapshot) error
}
