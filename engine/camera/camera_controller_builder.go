package camera

// OrbitControllerOption is a functional option for configuring an OrbitController.
type OrbitControllerOption func(*orbitControllerImpl)

// WithRadius sets the starting orbit radius.
//
// Parameters:
//   - radius: distance from the origin
//
// Returns:
//   - OrbitControllerOption: option function to apply
func WithRadius(radius float32) OrbitControllerOption {
	return func(oc *orbitControllerImpl) {
		oc.radius = radius
	}
}

// WithMinRadius sets the smallest allowed orbit radius.
//
// Parameters:
//   - minRadius: lower radius bound
//
// Returns:
//   - OrbitControllerOption: option function to apply
func WithMinRadius(minRadius float32) OrbitControllerOption {
	return func(oc *orbitControllerImpl) {
		oc.minRadius = minRadius
	}
}

// WithAngle sets the starting orbit angle in radians.
func WithAngle(angle float32) OrbitControllerOption {
	return func(oc *orbitControllerImpl) {
		oc.angle = angle
	}
}

// WithAngleStep sets the angle advanced by each Advance call, in radians.
//
// Parameters:
//   - step: radians per frame
//
// Returns:
//   - OrbitControllerOption: option function to apply
func WithAngleStep(step float32) OrbitControllerOption {
	return func(oc *orbitControllerImpl) {
		oc.angleStep = step
	}
}

// WithRadiusStep sets the radius change applied by Closer and Farther.
//
// Parameters:
//   - step: distance per call
//
// Returns:
//   - OrbitControllerOption: option function to apply
func WithRadiusStep(step float32) OrbitControllerOption {
	return func(oc *orbitControllerImpl) {
		oc.radiusStep = step
	}
}
