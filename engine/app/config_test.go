package app

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/tempest/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "Hello World", cfg.Window.Title)
	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.Equal(t, mgl32.Vec3{0.2, 0.2, 0.2}, cfg.Cube.ExtentsVec())
	assert.Equal(t, mgl32.Vec3{0, 0, 0.9}, cfg.Cube.ColorVec())
	assert.Empty(t, cfg.Cube.Texture)
	assert.Equal(t, float32(0.9), cfg.Orbit.Radius)
	assert.Equal(t, float32(0.1), cfg.Orbit.MinRadius)
	assert.False(t, cfg.Profiling)

	mode, err := cfg.Renderer.Mode()
	require.NoError(t, err)
	assert.Equal(t, renderer.PresentModeVSync, mode)
	assert.Equal(t, renderer.MSAA4x, cfg.Renderer.MSAACount())
}

func TestDecodeConfigOverridesDefaults(t *testing.T) {
	doc := `
profiling = true

[window]
title = "orbit"

[cube]
texture = "assets/container.bmp"
color = [1.0, 0.5, 0.31]

[renderer]
present_mode = "Uncapped"
msaa = false
frame_limit = 120.0
`
	cfg, err := DecodeConfig(strings.NewReader(doc))
	require.NoError(t, err)

	assert.True(t, cfg.Profiling)
	assert.Equal(t, "orbit", cfg.Window.Title)
	assert.Equal(t, 1280, cfg.Window.Width, "missing keys keep defaults")
	assert.Equal(t, "assets/container.bmp", cfg.Cube.Texture)
	assert.Equal(t, mgl32.Vec3{1, 0.5, 0.31}, cfg.Cube.ColorVec())
	assert.Equal(t, mgl32.Vec3{0.2, 0.2, 0.2}, cfg.Cube.ExtentsVec())
	assert.Equal(t, 120.0, cfg.Renderer.FrameLimit)
	assert.Equal(t, renderer.MSAAOff, cfg.Renderer.MSAACount())

	mode, err := cfg.Renderer.Mode()
	require.NoError(t, err)
	assert.Equal(t, renderer.PresentModeUncapped, mode)
}

func TestDecodeConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		invalid bool
	}{
		{name: "syntax", doc: "[window\n"},
		{name: "unknown key", doc: "[window]\nfullscreen = true\n"},
		{name: "zero width", doc: "[window]\nwidth = 0\n", invalid: true},
		{name: "negative extent", doc: "[cube]\nextents = [0.2, -1.0, 0.2]\n", invalid: true},
		{name: "bad present mode", doc: "[renderer]\npresent_mode = \"mailbox\"\n", invalid: true},
		{name: "negative frame limit", doc: "[renderer]\nframe_limit = -1.0\n", invalid: true},
		{name: "zero min radius", doc: "[orbit]\nmin_radius = 0.0\n", invalid: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeConfig(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Equal(t, tt.invalid, errors.Is(err, ErrInvalidConfig))
		})
	}
}

func TestDecodeConfigUnknownKeyIsStrictError(t *testing.T) {
	_, err := DecodeConfig(strings.NewReader("[orbit]\nspeed = 2.0\n"))
	var strict *toml.StrictMissingError
	assert.ErrorAs(t, err, &strict)
}

func TestValidateJoinsAllFailures(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Window.Width = 0
	cfg.Renderer.PresentMode = "fifo"

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorContains(t, err, "window size 0x720")
	assert.ErrorContains(t, err, `unknown present_mode "fifo"`)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tempest.toml")
	require.NoError(t, os.WriteFile(path, []byte("[window]\nwidth = 800\nheight = 600\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 600, cfg.Window.Height)

	_, err = LoadConfig(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, fs.ErrNotExist)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[window]\nwidth = -1\n"), 0o644))
	_, err = LoadConfig(bad)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorContains(t, err, bad)
}
