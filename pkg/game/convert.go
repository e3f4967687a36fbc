package game

import (
	"github.com/lleps/peinbol/pkg/messages"
	"github.com/lleps/peinbol/pkg/physics"
)

func BoxAddedFromBox(b *physics.Box) *messages.BoxAdded {
	return &messages.BoxAdded{
		ID:                b.ID,
		Position:          b.Position,
		Size:              b.Size,
		Velocity:          b.Velocity,
		AngularVelocity:   b.AngularVelocity,
		Rotation:          b.Rotation,
		Mass:              b.Mass,
		AffectedByPhysics: b.AffectedByPhysics,
		TextureID:         b.TextureID,
		TextureMultiplier: b.TextureMultiplier,
		BounceMultiplier:  b.BounceMultiplier,
		IsSphere:          b.Kind == physics.ShapeSphere,
		IsCharacter:       b.Kind == physics.ShapeCharacter,
	}
}

func BoxUpdateMotionFromBox(b *physics.Box) *messages.BoxUpdateMotion {
	return &messages.BoxUpdateMotion{
		ID:              b.ID,
		Position:        b.Position,
		Velocity:        b.Velocity,
		AngularVelocity: b.AngularVelocity,
		Rotation:        b.Rotation,
	}
}

// BoxFromBoxAdded rebuilds a box from its wire description.
func BoxFromBoxAdded(m *messages.BoxAdded) *physics.Box {
	kind := physics.ShapeBox
	switch {
	case m.IsSphere:
		kind = physics.ShapeSphere
	case m.IsCharacter:
		kind = physics.ShapeCharacter
	}
	return &physics.Box{
		ID:                m.ID,
		Kind:              kind,
		Position:          m.Position,
		Velocity:          m.Velocity,
		AngularVelocity:   m.AngularVelocity,
		Rotation:          m.Rotation,
		Size:              m.Size,
		Mass:              m.Mass,
		AffectedByPhysics: m.AffectedByPhysics,
		BounceMultiplier:  m.BounceMultiplier,
		TextureID:         m.TextureID,
		TextureMultiplier: m.TextureMultiplier,
	}
}

// ApplyBoxUpdateMotion copies a motion update into b.
func ApplyBoxUpdateMotion(b *physics.Box, m *messages.BoxUpdateMotion) {
	b.Position = m.Position
	b.Velocity = m.Velocity
	b.AngularVelocity = m.AngularVelocity
	b.Rotation = m.Rotation
}
