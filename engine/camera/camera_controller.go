package camera

import "github.com/go-gl/mathgl/mgl32"

// Follower is anything that can be moved to the orbit position alongside the camera,
// such as a light.
type Follower interface {
	SetPosition(pos mgl32.Vec3)
}

// OrbitController circles a camera around the origin in the XZ plane.
//
// The controller owns the orbit state (radius and angle); the camera only receives the
// derived position and direction through Apply. The camera looks at the origin from a
// distance equal to the radius.
type OrbitController interface {
	// Advance moves the orbit angle forward by one angle step.
	Advance()

	// Closer shrinks the radius by one radius step, clamped to MinRadius.
	Closer()

	// Farther grows the radius by one radius step.
	Farther()

	// Apply writes the orbit position and inward-facing direction to the camera and moves
	// every follower to the camera position.
	//
	// Parameters:
	//   - cam: the camera to position
	//   - followers: objects that track the camera position
	Apply(cam Camera, followers ...Follower)

	// Position returns the current orbit position (r cos a, 0, r sin a).
	//
	// Returns:
	//   - mgl32.Vec3: the point on the orbit
	Position() mgl32.Vec3

	// Radius returns the current orbit radius.
	Radius() float32

	// SetRadius sets the orbit radius directly, clamped to MinRadius.
	//
	// Parameters:
	//   - radius: the new radius
	SetRadius(radius float32)

	// MinRadius returns the smallest allowed radius.
	MinRadius() float32

	// Angle returns the current orbit angle in radians.
	Angle() float32

	// SetAngle sets the orbit angle in radians.
	SetAngle(angle float32)
}
