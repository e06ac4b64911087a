package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// DefaultOrbitRadius is the starting distance from the origin.
	DefaultOrbitRadius float32 = 0.9

	// DefaultMinOrbitRadius is the closest the camera may get to the origin.
	DefaultMinOrbitRadius float32 = 0.1

	// DefaultAngleStep is the orbit angle advanced per frame, in radians.
	DefaultAngleStep float32 = 0.01

	// DefaultRadiusStep is the radius change per Closer or Farther call.
	DefaultRadiusStep float32 = 0.01
)

// orbitControllerImpl is the implementation of the OrbitController interface.
type orbitControllerImpl struct {
	radius     float32
	minRadius  float32
	angle      float32
	angleStep  float32
	radiusStep float32
}

var _ OrbitController = &orbitControllerImpl{}

// NewOrbitController creates an orbit controller with radius 0.9, minimum radius 0.1 and
// 0.01 steps for both angle and radius, then applies the options.
//
// Parameters:
//   - options: variadic list of OrbitControllerOption functions
//
// Returns:
//   - OrbitController: the configured controller
func NewOrbitController(options ...OrbitControllerOption) OrbitController {
	oc := &orbitControllerImpl{
		radius:     DefaultOrbitRadius,
		minRadius:  DefaultMinOrbitRadius,
		angleStep:  DefaultAngleStep,
		radiusStep: DefaultRadiusStep,
	}
	for _, opt := range options {
		opt(oc)
	}
	oc.radius = math32.Max(oc.radius, oc.minRadius)
	return oc
}

func (oc *orbitControllerImpl) Advance() {
	oc.angle += oc.angleStep
}

func (oc *orbitControllerImpl) Closer() {
	oc.SetRadius(oc.radius - oc.radiusStep)
}

func (oc *orbitControllerImpl) Farther() {
	oc.SetRadius(oc.radius + oc.radiusStep)
}

func (oc *orbitControllerImpl) Apply(cam Camera, followers ...Follower) {
	pos := oc.Position()
	cam.SetPosition(pos)
	cam.SetFront(pos.Mul(-1))
	for _, f := range followers {
		f.SetPosition(pos)
	}
}

func (oc *orbitControllerImpl) Position() mgl32.Vec3 {
	return mgl32.Vec3{
		oc.radius * math32.Cos(oc.angle),
		0,
		oc.radius * math32.Sin(oc.angle),
	}
}

func (oc *orbitControllerImpl) Radius() float32 {
	return oc.radius
}

func (oc *orbitControllerImpl) SetRadius(radius float32) {
	oc.radius = math32.Max(radius, oc.minRadius)
}

func (oc *orbitControllerImpl) MinRadius() float32 {
	return oc.minRadius
}

func (oc *orbitControllerImpl) Angle() float32 {
	return oc.angle
}

func (oc *orbitControllerImpl) SetAngle(angle float32) {
	oc.angle = angle
}
