package game

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lleps/peinbol/pkg/game/constants"
	"github.com/lleps/peinbol/pkg/kinematic"
	"github.com/lleps/peinbol/pkg/messages"
	"github.com/lleps/peinbol/pkg/physics"
)

// MovementDirection returns the unit horizontal direction the movement keys
// point to for a camera yaw in degrees, or the zero vector when they cancel out.
func MovementDirection(input *messages.InputState) mgl64.Vec3 {
	yaw := input.CameraY
	var direction mgl64.Vec3
	if input.Forward {
		direction = direction.Add(kinematic.Front(yaw, 0, 1))
	}
	if input.Backwards {
		direction = direction.Sub(kinematic.Front(yaw, 0, 1))
	}
	if input.Right {
		direction = direction.Sub(kinematic.Front(yaw+90, 0, 1))
	}
	if input.Left {
		direction = direction.Sub(kinematic.Front(yaw-90, 0, 1))
	}
	if direction.Len() < 1e-9 {
		return mgl64.Vec3{}
	}
	return direction.Normalize()
}

// SpeedCap returns the horizontal speed movement keys may accelerate a box to.
func SpeedCap(input *messages.InputState, inGround bool) float64 {
	if input.Walk && inGround {
		return constants.PlayerWalkSpeed
	}
	return constants.PlayerRunSpeed
}

// applyMovement turns the player's input into forces on its character.
func applyMovement(p *Player, box *physics.Box, now time.Time) {
	input := &p.Input

	box.Rotation = mgl64.QuatRotate(mgl64.DegToRad(input.CameraY), mgl64.Vec3{0, 1, 0})

	direction := MovementDirection(input)
	if direction.Len() > 0 && kinematic.Horizontal(box.Velocity).Len() < SpeedCap(input, box.InGround()) {
		box.ApplyForce(direction.Mul(constants.PlayerAcceleration * box.Mass))
	}

	if input.Jump && box.InGround() && now.Sub(p.LastJump) >= constants.PlayerJumpCooldown {
		box.ApplyImpulse(mgl64.Vec3{0, constants.PlayerJumpSpeed * box.Mass, 0})
		p.LastJump = now
	}
}
