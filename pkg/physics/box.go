package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// ShapeKind tells how a box is shaped and what it stands for.
type ShapeKind uint8

const (
	// ShapeBox is a plain axis-aligned cuboid: floors, walls and crates
	ShapeBox ShapeKind = iota
	// ShapeSphere is a ball whose radius is stored in Size.X
	ShapeSphere
	// ShapeCharacter is the cuboid body of a player; it never rotates
	ShapeCharacter
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeBox:
		return "box"
	case ShapeSphere:
		return "sphere"
	case ShapeCharacter:
		return "character"
	default:
		return fmt.Sprintf("ShapeKind(%d)", uint8(k))
	}
}

// Box is a simulated entity.
type Box struct {
	ID   int32
	Kind ShapeKind

	Position        mgl64.Vec3
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3
	Rotation        mgl64.Quat
	// Size holds the full extents, or the radius in X for spheres
	Size mgl64.Vec3

	// Mass 0 makes the box static
	Mass              float64
	AffectedByPhysics bool
	BounceMultiplier  float64

	TextureID         int32
	TextureMultiplier float64

	inGround     bool
	acceleration mgl64.Vec3
}

// Static reports whether the box is never integrated.
func (b *Box) Static() bool {
	return b.Mass == 0
}

// InGround reports whether the box rested on something during the last simulation step.
func (b *Box) InGround() bool {
	return b.inGround
}

func (b *Box) IsSphere() bool {
	return b.Kind == ShapeSphere
}

func (b *Box) IsCharacter() bool {
	return b.Kind == ShapeCharacter
}

// HalfExtents returns the half size of the box's bounding box.
func (b *Box) HalfExtents() mgl64.Vec3 {
	switch b.Kind {
	case ShapeSphere:
		r := b.Size[0]
		return mgl64.Vec3{r, r, r}
	case ShapeBox, ShapeCharacter:
		return b.Size.Mul(0.5)
	default:
		panic(fmt.Sprintf("unhandled shape kind %v", b.Kind))
	}
}

// Min returns the lowest corner of the bounding box.
func (b *Box) Min() mgl64.Vec3 {
	return b.Position.Sub(b.HalfExtents())
}

// Max returns the highest corner of the bounding box.
func (b *Box) Max() mgl64.Vec3 {
	return b.Position.Add(b.HalfExtents())
}

// ApplyForce accumulates a force for the next simulation step.
// It has no effect on static boxes.
func (b *Box) ApplyForce(force mgl64.Vec3) {
	if b.Static() {
		return
	}
	b.acceleration = b.acceleration.Add(force.Mul(1 / b.Mass))
}

// ApplyImpulse changes the velocity right away.
// It has no effect on static boxes.
func (b *Box) ApplyImpulse(impulse mgl64.Vec3) {
	if b.Static() {
		return
	}
	b.Velocity = b.Velocity.Add(impulse.Mul(1 / b.Mass))
}

// Overlaps reports whether the bounding boxes of a and b intersect.
// Boxes that only touch do not overlap.
func Overlaps(a, b *Box) bool {
	aMin, aMax := a.Min(), a.Max()
	bMin, bMax := b.Min(), b.Max()
	for i := 0; i < 3; i++ {
		if aMax[i] <= bMin[i] || aMin[i] >= bMax[i] {
			return false
		}
	}
	return true
}

// BoxState is a read-only copy of a box.
type BoxState struct {
	ID                int32      `json:"id"`
	Kind              string     `json:"kind"`
	Position          mgl64.Vec3 `json:"position"`
	Velocity          mgl64.Vec3 `json:"velocity"`
	AngularVelocity   mgl64.Vec3 `json:"angularVelocity"`
	Rotation          [4]float64 `json:"rotation"`
	Size              mgl64.Vec3 `json:"size"`
	Mass              float64    `json:"mass"`
	InGround          bool       `json:"inGround"`
	TextureID         int32      `json:"textureId"`
	TextureMultiplier float64    `json:"textureMultiplier"`
}

// State returns a copy of the box that is safe to hand to other goroutines.
// Rotation is laid out x, y, z, w.
func (b *Box) State() BoxState {
	return BoxState{
		ID:                b.ID,
		Kind:              b.Kind.String(),
		Position:          b.Position,
		Velocity:          b.Velocity,
		AngularVelocity:   b.AngularVelocity,
		Rotation:          [4]float64{b.Rotation.V[0], b.Rotation.V[1], b.Rotation.V[2], b.Rotation.W},
		Size:              b.Size,
		Mass:              b.Mass,
		InGround:          b.inGround,
		TextureID:         b.TextureID,
		TextureMultiplier: b.TextureMultiplier,
	}
}
