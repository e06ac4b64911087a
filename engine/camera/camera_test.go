package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCameraDefaults(t *testing.T) {
	c := NewCamera()

	assert.Equal(t, mgl32.Vec3{}, c.Position())
	assert.Equal(t, mgl32.Vec3{0, 0, -1}, c.Front())
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, c.Up())
	assert.Equal(t, DefaultZoom, c.Zoom())
}

func TestViewMatrixAtOriginFacingNegZIsIdentity(t *testing.T) {
	c := NewCamera()
	assert.True(t, c.ViewMatrix().ApproxEqual(mgl32.Ident4()))
}

func TestViewMatrixMovesEyeToOrigin(t *testing.T) {
	c := NewCamera(WithPosition(0.9, 0, 0), WithFront(-0.9, 0, 0))

	eye := c.ViewMatrix().Mul4x1(mgl32.Vec4{0.9, 0, 0, 1})
	assert.True(t, eye.Vec3().ApproxEqual(mgl32.Vec3{}), "eye maps to %v", eye)

	// The origin sits straight ahead, at -Z in view space.
	target := c.ViewMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, -0.9, target.Z(), 1e-6)
	assert.InDelta(t, 0, target.X(), 1e-6)
}

func TestZoomClamping(t *testing.T) {
	tests := []struct {
		name  string
		start float32
		delta float32
		want  float32
	}{
		{"narrow", 45, 5, 40},
		{"clamp low", 3, 10, MinZoom},
		{"clamp high", 44, -10, MaxZoom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCamera(WithZoom(tt.start))
			c.ProcessScroll(tt.delta)
			assert.Equal(t, tt.want, c.Zoom())
		})
	}

	c := NewCamera()
	c.SetZoom(90)
	assert.Equal(t, MaxZoom, c.Zoom())
}

type recordingFollower struct {
	positions []mgl32.Vec3
}

func (f *recordingFollower) SetPosition(pos mgl32.Vec3) {
	f.positions = append(f.positions, pos)
}

func TestOrbitApply(t *testing.T) {
	oc := NewOrbitController()
	c := NewCamera()
	f := &recordingFollower{}

	oc.Apply(c, f)

	assert.Equal(t, mgl32.Vec3{0.9, 0, 0}, c.Position())
	assert.Equal(t, mgl32.Vec3{-0.9, 0, 0}, c.Front())
	require.Len(t, f.positions, 1)
	assert.Equal(t, c.Position(), f.positions[0])
}

func TestOrbitAdvance(t *testing.T) {
	oc := NewOrbitController()
	oc.Advance()
	assert.InDelta(t, 0.01, oc.Angle(), 1e-7)

	oc.SetAngle(mgl32.DegToRad(90))
	pos := oc.Position()
	assert.InDelta(t, 0, pos.X(), 1e-6)
	assert.InDelta(t, 0.9, pos.Z(), 1e-6)
	assert.Equal(t, float32(0), pos.Y())
}

func TestOrbitRadiusClamp(t *testing.T) {
	oc := NewOrbitController(WithRadius(0.12))

	oc.Closer()
	assert.InDelta(t, 0.11, oc.Radius(), 1e-6)
	oc.Closer()
	oc.Closer()
	oc.Closer()
	assert.Equal(t, DefaultMinOrbitRadius, oc.Radius())

	oc.Farther()
	assert.InDelta(t, 0.11, oc.Radius(), 1e-6)

	oc.SetRadius(-4)
	assert.Equal(t, oc.MinRadius(), oc.Radius())

	low := NewOrbitController(WithRadius(0.01), WithMinRadius(0.05))
	assert.Equal(t, float32(0.05), low.Radius())
}

func TestOrbitCustomSteps(t *testing.T) {
	oc := NewOrbitController(WithAngle(1), WithAngleStep(0.5), WithRadiusStep(0.25), WithRadius(2))
	oc.Advance()
	oc.Farther()

	assert.Equal(t, float32(1.5), oc.Angle())
	assert.Equal(t, float32(2.25), oc.Radius())
}
