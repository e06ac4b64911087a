package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Carmen-Shannon/tempest/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalidConfig is wrapped by every Config validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the demo configuration. Keys missing from a TOML file keep their defaults.
type Config struct {
	Window   WindowConfig   `toml:"window"`
	Cube     CubeConfig     `toml:"cube"`
	Orbit    OrbitConfig    `toml:"orbit"`
	Renderer RendererConfig `toml:"renderer"`

	// Profiling logs frame rate and memory statistics once per second.
	Profiling bool `toml:"profiling"`
}

// WindowConfig sizes and titles the window.
type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

// CubeConfig describes the drawn box.
type CubeConfig struct {
	// Texture is a BMP path; empty selects the generated checkerboard.
	Texture string     `toml:"texture"`
	Extents [3]float32 `toml:"extents"`
	Color   [3]float32 `toml:"color"`
}

// OrbitConfig is the starting orbit of the camera and light.
type OrbitConfig struct {
	Radius    float32 `toml:"radius"`
	MinRadius float32 `toml:"min_radius"`
	AngleStep float32 `toml:"angle_step"`
}

// RendererConfig selects presentation settings.
type RendererConfig struct {
	// PresentMode is "vsync" or "uncapped".
	PresentMode string  `toml:"present_mode"`
	MSAA        bool    `toml:"msaa"`
	FrameLimit  float64 `toml:"frame_limit"`
}

// DefaultConfig returns the orbiting cube demo settings: a 1280x720 "Hello World" window, a
// blue box with half-extents 0.2 and an orbit of radius 0.9.
//
// Returns:
//   - Config: the default configuration
func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Title:  "Hello World",
			Width:  1280,
			Height: 720,
		},
		Cube: CubeConfig{
			Texture: "",
			Extents: [3]float32{0.2, 0.2, 0.2},
			Color:   [3]float32{0, 0, 0.9},
		},
		Orbit: OrbitConfig{
			Radius:    0.9,
			MinRadius: 0.1,
			AngleStep: 0.01,
		},
		Renderer: RendererConfig{
			PresentMode: "vsync",
			MSAA:        true,
		},
	}
}

// LoadConfig reads a TOML file over DefaultConfig.
//
// Parameters:
//   - path: the TOML file path
//
// Returns:
//   - Config: the merged configuration
//   - error: an open, decode or validation error naming the path
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	cfg, err := DecodeConfig(bufio.NewReader(f))
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// DecodeConfig decodes TOML over DefaultConfig. Unknown keys are rejected.
//
// Parameters:
//   - r: the TOML document
//
// Returns:
//   - Config: the merged configuration
//   - error: a *toml.DecodeError, *toml.StrictMissingError, or an ErrInvalidConfig wrap
func DecodeConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the ranges the demo relies on.
func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height))
	}
	for i, e := range c.Cube.Extents {
		if e < 0 {
			errs = append(errs, fmt.Errorf("%w: cube extent %d is negative", ErrInvalidConfig, i))
		}
	}
	if c.Orbit.MinRadius <= 0 {
		errs = append(errs, fmt.Errorf("%w: orbit min_radius must be positive", ErrInvalidConfig))
	}
	if c.Renderer.FrameLimit < 0 {
		errs = append(errs, fmt.Errorf("%w: negative frame_limit", ErrInvalidConfig))
	}
	if _, err := c.Renderer.Mode(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ExtentsVec returns the cube half-extents as a vector.
func (c CubeConfig) ExtentsVec() mgl32.Vec3 {
	return mgl32.Vec3(c.Extents)
}

// ColorVec returns the object color as a vector.
func (c CubeConfig) ColorVec() mgl32.Vec3 {
	return mgl32.Vec3(c.Color)
}

// Mode parses PresentMode.
//
// Returns:
//   - renderer.PresentMode: the parsed mode
//   - error: ErrInvalidConfig for an unknown name
func (c RendererConfig) Mode() (renderer.PresentMode, error) {
	switch strings.ToLower(c.PresentMode) {
	case "", "vsync":
		return renderer.PresentModeVSync, nil
	case "uncapped":
		return renderer.PresentModeUncapped, nil
	default:
		return 0, fmt.Errorf("%w: unknown present_mode %q", ErrInvalidConfig, c.PresentMode)
	}
}

// MSAACount maps the MSAA switch to a sample count.
func (c RendererConfig) MSAACount() renderer.MSAASampleCount {
	if c.MSAA {
		return renderer.MSAA4x
	}
	return renderer.MSAAOff
}
