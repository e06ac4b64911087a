package cube

// CubeBuilderOption is a functional option applied to a cube during construction via NewCube.
type CubeBuilderOption func(*cubeImpl)

// WithAspect sets the viewport aspect ratio used for the projection matrix.
//
// Parameters:
//   - aspect: width divided by height, ignored when not positive
//
// Returns:
//   - CubeBuilderOption: a function that applies the aspect option to a cube
func WithAspect(aspect float32) CubeBuilderOption {
	return func(c *cubeImpl) {
		if aspect > 0 {
			c.aspect = aspect
		}
	}
}

// WithClipPlanes sets the near and far clip distances of the projection.
//
// Parameters:
//   - near: near plane distance, must be > 0
//   - far: far plane distance, must be > near
//
// Returns:
//   - CubeBuilderOption: a function that applies the clip planes to a cube, or leaves the defaults for an invalid pair
func WithClipPlanes(near, far float32) CubeBuilderOption {
	return func(c *cubeImpl) {
		if near > 0 && far > near {
			c.near, c.far = near, far
		}
	}
}

// WithLabel sets the debug label of the cube's vertex buffer.
func WithLabel(label string) CubeBuilderOption {
	return func(c *cubeImpl) {
		c.label = label
	}
}
