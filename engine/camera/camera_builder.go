package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraBuilderOption is a functional option for configuring a Camera during construction.
type CameraBuilderOption func(*cameraImpl)

// WithPosition sets the camera's starting world-space position.
//
// Parameters:
//   - x, y, z: the eye position
//
// Returns:
//   - CameraBuilderOption: a function that applies the position option to a cameraImpl
func WithPosition(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position = mgl32.Vec3{x, y, z}
	}
}

// WithFront sets the camera's starting viewing direction.
//
// Parameters:
//   - x, y, z: the direction vector
//
// Returns:
//   - CameraBuilderOption: a function that applies the front option to a cameraImpl
func WithFront(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.front = mgl32.Vec3{x, y, z}
	}
}

// WithUp sets the camera's up vector.
//
// Parameters:
//   - x, y, z: the up vector
//
// Returns:
//   - CameraBuilderOption: a function that applies the up vector option to a cameraImpl
func WithUp(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.up = mgl32.Vec3{x, y, z}
	}
}

// WithZoom sets the starting field of view in degrees, clamped to [MinZoom, MaxZoom].
//
// Parameters:
//   - zoom: field of view in degrees
//
// Returns:
//   - CameraBuilderOption: a function that applies the zoom option to a cameraImpl
func WithZoom(zoom float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.zoom = mgl32.Clamp(zoom, MinZoom, MaxZoom)
	}
}
