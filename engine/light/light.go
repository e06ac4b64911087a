package light

import "github.com/go-gl/mathgl/mgl32"

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	position  mgl32.Vec3
	color     mgl32.Vec3
	intensity float32
	enabled   bool
}

// Light defines a point light source used by the Phong shading pass.
//
// Position and color are independent: moving the light never changes its color and
// recoloring it never moves it. The shader receives Radiance as the light color and
// Position as the light position.
type Light interface {
	// Position returns the world-space position of the light.
	//
	// Returns:
	//   - mgl32.Vec3: position as (x, y, z)
	Position() mgl32.Vec3

	// Color returns the RGB color of the light, before intensity is applied.
	//
	// Returns:
	//   - mgl32.Vec3: color as (r, g, b)
	Color() mgl32.Vec3

	// Intensity returns the scalar multiplier applied to Color.
	Intensity() float32

	// Enabled returns whether this light contributes to shading.
	Enabled() bool

	// Radiance returns the color actually sent to the shader: Color scaled by Intensity,
	// or black when the light is disabled.
	//
	// Returns:
	//   - mgl32.Vec3: effective light color
	Radiance() mgl32.Vec3

	// SetPosition moves the light.
	//
	// Parameters:
	//   - pos: new world-space position
	SetPosition(pos mgl32.Vec3)

	// SetColor changes the light color.
	//
	// Parameters:
	//   - color: new RGB color
	SetColor(color mgl32.Vec3)

	// SetIntensity changes the scalar multiplier applied to Color.
	SetIntensity(intensity float32)

	// SetEnabled turns the light on or off.
	SetEnabled(enabled bool)
}

var _ Light = &lightImpl{}

// NewLight creates a white point light at the origin with intensity 1, then applies the options.
//
// Parameters:
//   - opts: variadic list of LightBuilderOption functions
//
// Returns:
//   - Light: the configured light
func NewLight(opts ...LightBuilderOption) Light {
	l := &lightImpl{
		color:     mgl32.Vec3{1, 1, 1},
		intensity: 1,
		enabled:   true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Position() mgl32.Vec3 {
	return l.position
}

func (l *lightImpl) Color() mgl32.Vec3 {
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) Radiance() mgl32.Vec3 {
	if !l.enabled {
		return mgl32.Vec3{}
	}
	return l.color.Mul(l.intensity)
}

func (l *lightImpl) SetPosition(pos mgl32.Vec3) {
	l.position = pos
}

func (l *lightImpl) SetColor(color mgl32.Vec3) {
	l.color = color
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.intensity = intensity
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}
