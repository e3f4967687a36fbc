package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lleps/peinbol/pkg/kinematic"
)

const (
	// GroundFriction is the friction coefficient applied while resting on something
	GroundFriction float64 = 2.0
	// AirFriction is the drag coefficient applied while airborne
	AirFriction float64 = 0.05
	// DampingThreshold is the speed below which a bounce is snapped to zero
	DampingThreshold float64 = 0.5
)

// CollisionHandler is called once per overlapping pair and step.
type CollisionHandler func(a, b *Box)

// World is the set of simulated boxes. It is not safe for concurrent use.
type World struct {
	gravity  float64
	boxes    []*Box
	index    map[int32]int
	handlers []CollisionHandler
}

type pairKey struct {
	lo, hi int32
}

func newPairKey(a, b int32) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// NewWorld creates an empty world using the standard gravity.
func NewWorld() *World {
	return NewWorldWithGravity(kinematic.Gravity)
}

// NewWorldWithGravity creates an empty world with a custom vertical acceleration.
func NewWorldWithGravity(gravity float64) *World {
	return &World{
		gravity: gravity,
		index:   make(map[int32]int),
	}
}

// Register adds a box to the world. Registering an id twice is an error.
func (w *World) Register(b *Box) error {
	if _, ok := w.index[b.ID]; ok {
		return fmt.Errorf("box %d already registered", b.ID)
	}
	if b.Rotation == (mgl64.Quat{}) {
		b.Rotation = mgl64.QuatIdent()
	}
	w.index[b.ID] = len(w.boxes)
	w.boxes = append(w.boxes, b)
	return nil
}

// Unregister removes the box with the given id. It reports whether the box was present.
func (w *World) Unregister(id int32) bool {
	i, ok := w.index[id]
	if !ok {
		return false
	}
	last := len(w.boxes) - 1
	if i != last {
		moved := w.boxes[last]
		w.boxes[i] = moved
		w.index[moved.ID] = i
	}
	w.boxes[last] = nil
	w.boxes = w.boxes[:last]
	delete(w.index, id)
	return true
}

// Contains reports whether a box with the id is registered.
func (w *World) Contains(id int32) bool {
	_, ok := w.index[id]
	return ok
}

// Get returns the box with the given id.
func (w *World) Get(id int32) (*Box, bool) {
	i, ok := w.index[id]
	if !ok {
		return nil, false
	}
	return w.boxes[i], true
}

// Len returns the number of registered boxes.
func (w *World) Len() int {
	return len(w.boxes)
}

// Boxes returns the registered boxes in simulation order.
// The returned slice is a copy; the boxes are not.
func (w *World) Boxes() []*Box {
	boxes := make([]*Box, len(w.boxes))
	copy(boxes, w.boxes)
	return boxes
}

// Snapshot returns a copy of every box state.
func (w *World) Snapshot() []BoxState {
	states := make([]BoxState, 0, len(w.boxes))
	for _, b := range w.boxes {
		states = append(states, b.State())
	}
	return states
}

// OnCollision adds a collision handler. Handlers run in registration order.
func (w *World) OnCollision(handler CollisionHandler) {
	w.handlers = append(w.handlers, handler)
}

// Simulate advances the world by deltaMillis milliseconds.
//
// Collision handlers run after every box has been stepped, once per
// unordered overlapping pair, in the order the overlaps were found.
// Handlers may unregister boxes.
func (w *World) Simulate(deltaMillis float64) {
	if deltaMillis <= 0 {
		return
	}
	dt := deltaMillis / 1000.0

	seen := make(map[pairKey]struct{})
	var pairs [][2]*Box

	for _, b := range w.boxes {
		if !b.AffectedByPhysics {
			continue
		}
		if !b.Static() {
			w.integrate(b, dt)
			b.inGround = false
		}

		for _, other := range w.boxes {
			if other == b || !Overlaps(b, other) {
				continue
			}
			if !b.Static() {
				resolve(b, other)
			}
			key := newPairKey(b.ID, other.ID)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			pairs = append(pairs, [2]*Box{b, other})
		}
	}

	for _, pair := range pairs {
		for _, handler := range w.handlers {
			handler(pair[0], pair[1])
		}
	}
}

func (w *World) integrate(b *Box, dt float64) {
	// friction, proportional to the normal force and opposed to the motion
	if speed := b.Velocity.Len(); speed > 0 {
		coefficient := AirFriction
		if b.inGround {
			coefficient = GroundFriction
		}
		magnitude := coefficient * math.Abs(w.gravity) * b.Mass
		// never reverse the motion in a single step
		if maxMagnitude := speed / dt * b.Mass; magnitude > maxMagnitude {
			magnitude = maxMagnitude
		}
		b.ApplyForce(b.Velocity.Mul(-magnitude / speed))
	}

	b.ApplyForce(mgl64.Vec3{0, w.gravity * b.Mass, 0})

	b.Velocity = kinematic.FinalVelocity(b.Velocity, dt, b.acceleration)
	b.Position = b.Position.Add(b.Velocity.Mul(dt))
	b.acceleration = mgl64.Vec3{}

	if b.Kind != ShapeCharacter && b.AngularVelocity.Len() > 0 {
		spin := mgl64.Quat{W: 0, V: b.AngularVelocity}.Mul(b.Rotation).Scale(0.5 * dt)
		b.Rotation = b.Rotation.Add(spin).Normalize()
	}
}

// axis order used to break ties between equal penetrations
var resolveOrder = [3]int{1, 0, 2}

// resolve pushes b out of other. A box straddling the top face of other
// lands on it; anything else is pushed out along the axis of least
// penetration.
func resolve(b, other *Box) {
	bMin, bMax := b.Min(), b.Max()
	oMin, oMax := other.Min(), other.Max()

	if bMin[1] < oMax[1] && bMax[1] > oMax[1] {
		pushOut(b, other, 1, 1)
		b.inGround = true
		return
	}

	axis := -1
	depth := math.Inf(1)
	for _, i := range resolveOrder {
		d := math.Min(bMax[i], oMax[i]) - math.Max(bMin[i], oMin[i])
		if d < depth {
			depth = d
			axis = i
		}
	}

	direction := 1.0
	if b.Position[axis] < other.Position[axis] {
		direction = -1.0
	}
	pushOut(b, other, axis, direction)

	if axis == 1 && direction > 0 {
		b.inGround = true
	}
}

// pushOut places b against other on one side of the given axis and
// reflects the velocity component pointing into other.
func pushOut(b, other *Box, axis int, direction float64) {
	half := b.HalfExtents()[axis] + other.HalfExtents()[axis]
	b.Position[axis] = other.Position[axis] + direction*half

	if b.Velocity[axis]*direction < 0 {
		v := -b.Velocity[axis] * b.BounceMultiplier
		if math.Abs(v) < DampingThreshold {
			v = 0
		}
		b.Velocity[axis] = v
	}
}
