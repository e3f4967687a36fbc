package game

import (
	"sort"

	"github.com/lleps/peinbol/pkg/messages"
	"github.com/lleps/peinbol/pkg/physics"
)

// Mirror is a client side copy of the server world, rebuilt from the
// messages the server streams. It is not safe for concurrent use.
type Mirror struct {
	boxes  map[int32]*physics.Box
	own    int32
	health int32
}

func NewMirror() *Mirror {
	return &Mirror{boxes: make(map[int32]*physics.Box)}
}

// Apply updates the mirror with a server message. It reports whether the
// message changed the mirror.
func (m *Mirror) Apply(msg messages.Message) bool {
	switch msg := msg.(type) {
	case *messages.BoxAdded:
		m.boxes[msg.ID] = BoxFromBoxAdded(msg)
	case *messages.BoxUpdateMotion:
		b, ok := m.boxes[msg.ID]
		if !ok {
			return false
		}
		ApplyBoxUpdateMotion(b, msg)
	case *messages.RemoveBox:
		if _, ok := m.boxes[msg.BoxID]; !ok {
			return false
		}
		delete(m.boxes, msg.BoxID)
	case *messages.Spawn:
		m.own = msg.BoxID
	case *messages.SetHealth:
		m.health = msg.Health
	default:
		return false
	}
	return true
}

// Own returns the box the server assigned to this client, if it still exists.
func (m *Mirror) Own() (*physics.Box, bool) {
	b, ok := m.boxes[m.own]
	return b, ok
}

func (m *Mirror) Health() int32 {
	return m.health
}

func (m *Mirror) Len() int {
	return len(m.boxes)
}

// Snapshot returns the state of every mirrored box ordered by id.
func (m *Mirror) Snapshot() []physics.BoxState {
	states := make([]physics.BoxState, 0, len(m.boxes))
	for _, b := range m.boxes {
		states = append(states, b.State())
	}
	sort.Slice(states, func(i, j int) bool { return states[i].ID < states[j].ID })
	return states
}
