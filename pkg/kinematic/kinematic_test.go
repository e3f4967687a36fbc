package kinematic

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func assertVecInDelta(t *testing.T, want, got mgl64.Vec3) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], got[i], 1e-9, "component %d", i)
	}
}

func TestFront(t *testing.T) {
	tests := []struct {
		name  string
		yaw   float64
		pitch float64
		scale float64
		want  mgl64.Vec3
	}{
		{name: "forward", yaw: 0, pitch: 0, scale: 1, want: mgl64.Vec3{0, 0, -1}},
		{name: "quarter turn", yaw: 90, pitch: 0, scale: 2, want: mgl64.Vec3{-2, 0, 0}},
		{name: "backwards", yaw: 180, pitch: 0, scale: 1, want: mgl64.Vec3{0, 0, 1}},
		{name: "looking up", yaw: 0, pitch: 90, scale: 1, want: mgl64.Vec3{0, 1, -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertVecInDelta(t, tt.want, Front(tt.yaw, tt.pitch, tt.scale))
		})
	}
}

func TestFinalVelocity(t *testing.T) {
	got := FinalVelocity(mgl64.Vec3{1, 0, 0}, 0.5, mgl64.Vec3{0, Gravity, 0})
	assertVecInDelta(t, mgl64.Vec3{1, -4.9, 0}, got)
}

func TestHorizontal(t *testing.T) {
	assert.Equal(t, mgl64.Vec3{1, 0, 3}, Horizontal(mgl64.Vec3{1, 2, 3}))
}
