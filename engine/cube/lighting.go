package cube

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/tempest/engine/light"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrMissingLightingParameter is returned by NewCube when the lighting configuration lacks
// a required field.
var ErrMissingLightingParameter = errors.New("missing lighting parameter")

// LightingConfig is the required lighting input of a cube. Both fields must be set.
type LightingConfig struct {
	// ObjectColor is the base color the Phong result is multiplied by.
	ObjectColor *mgl32.Vec3
	// Light is the point light. The cube keeps the reference, so moving the light later
	// moves it for the cube as well.
	Light light.Light
}

// Validate reports the first missing field.
//
// Returns:
//   - error: an error wrapping ErrMissingLightingParameter, or nil
func (c LightingConfig) Validate() error {
	if c.ObjectColor == nil {
		return fmt.Errorf("object color: %w", ErrMissingLightingParameter)
	}
	if c.Light == nil {
		return fmt.Errorf("light: %w", ErrMissingLightingParameter)
	}
	return nil
}
