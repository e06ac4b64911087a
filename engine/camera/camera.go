package camera

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// DefaultZoom is the starting vertical field of view in degrees.
	DefaultZoom float32 = 45

	// MinZoom and MaxZoom bound the field of view reachable by scrolling, in degrees.
	MinZoom float32 = 1
	MaxZoom float32 = 45
)

// cameraImpl is the implementation of the Camera interface.
type cameraImpl struct {
	mu *sync.Mutex

	position mgl32.Vec3
	front    mgl32.Vec3
	up       mgl32.Vec3
	zoom     float32
}

// Camera is a free-look camera described by a position, a viewing direction and a zoom
// (vertical field of view in degrees). The draw pass reads Position for specular lighting,
// ViewMatrix for the world-to-camera transform and Zoom for the projection.
type Camera interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: the eye position
	Position() mgl32.Vec3

	// Front returns the viewing direction. It does not need to be normalized.
	//
	// Returns:
	//   - mgl32.Vec3: the direction the camera looks along
	Front() mgl32.Vec3

	// Up returns the up vector used to orient the view.
	//
	// Returns:
	//   - mgl32.Vec3: the up vector
	Up() mgl32.Vec3

	// Zoom returns the vertical field of view in degrees.
	//
	// Returns:
	//   - float32: field of view in degrees, within [MinZoom, MaxZoom]
	Zoom() float32

	// ViewMatrix returns the world-to-camera transform looking from Position along Front.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	ViewMatrix() mgl32.Mat4

	// SetPosition moves the camera.
	//
	// Parameters:
	//   - pos: the new eye position
	SetPosition(pos mgl32.Vec3)

	// SetFront changes the viewing direction.
	//
	// Parameters:
	//   - front: the new direction, any non-zero length
	SetFront(front mgl32.Vec3)

	// SetUp changes the up vector.
	//
	// Parameters:
	//   - up: the new up vector
	SetUp(up mgl32.Vec3)

	// SetZoom sets the field of view in degrees, clamped to [MinZoom, MaxZoom].
	//
	// Parameters:
	//   - zoom: field of view in degrees
	SetZoom(zoom float32)

	// ProcessScroll narrows the field of view for positive deltas and widens it for
	// negative deltas, one degree per scroll unit.
	//
	// Parameters:
	//   - delta: vertical scroll offset
	ProcessScroll(delta float32)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a camera at the origin looking down -Z with +Y up and a 45 degree
// field of view, then applies the options.
//
// Parameters:
//   - options: variadic list of CameraBuilderOption functions
//
// Returns:
//   - Camera: the configured camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:    &sync.Mutex{},
		front: mgl32.Vec3{0, 0, -1},
		up:    mgl32.Vec3{0, 1, 0},
		zoom:  DefaultZoom,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Front() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.front
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Zoom() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoom
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return mgl32.LookAtV(c.position, c.position.Add(c.front), c.up)
}

func (c *cameraImpl) SetPosition(pos mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = pos
}

func (c *cameraImpl) SetFront(front mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.front = front
}

func (c *cameraImpl) SetUp(up mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.up = up
}

func (c *cameraImpl) SetZoom(zoom float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.zoom = mgl32.Clamp(zoom, MinZoom, MaxZoom)
}

func (c *cameraImpl) ProcessScroll(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.zoom = mgl32.Clamp(c.zoom-delta, MinZoom, MaxZoom)
}
