package kinematic

// This package includes the equations of motion and the orientation helpers
// shared by the physics world and the movement rules.

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// Gravity is the vertical acceleration applied to every dynamic body, in m/s²
	Gravity float64 = -9.8
)

// FinalVelocity returns the final velocity of an object given its initial velocity, time, and acceleration.
func FinalVelocity(initialVelocity mgl64.Vec3, time float64, acceleration mgl64.Vec3) mgl64.Vec3 {
	return initialVelocity.Add(acceleration.Mul(time))
}

// Front returns the vector of length scale pointing where a camera with the
// given yaw and pitch (degrees) looks. Yaw 0 looks towards -Z.
func Front(yaw, pitch, scale float64) mgl64.Vec3 {
	yawRad := mgl64.DegToRad(yaw)
	pitchRad := mgl64.DegToRad(pitch)
	return mgl64.Vec3{
		-math.Sin(yawRad) * scale,
		math.Sin(pitchRad) * scale,
		-math.Cos(yawRad) * scale,
	}
}

// Horizontal drops the vertical component of v.
func Horizontal(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v[0], 0, v[2]}
}
