// Package app holds the orbiting cube demo state: renderer, camera, orbit, cube and input,
// passed explicitly instead of living in globals.
package app

import (
	"errors"
	"fmt"
	"log"

	"github.com/Carmen-Shannon/tempest/common"
	"github.com/Carmen-Shannon/tempest/engine"
	"github.com/Carmen-Shannon/tempest/engine/camera"
	"github.com/Carmen-Shannon/tempest/engine/cube"
	"github.com/Carmen-Shannon/tempest/engine/renderer"
	"github.com/Carmen-Shannon/tempest/engine/window"
)

// ErrMissingComponent is returned by NewContext when a required collaborator is nil.
var ErrMissingComponent = errors.New("app: missing component")

// Context is the application state for one window.
type Context struct {
	renderer renderer.Renderer
	camera   camera.Camera
	orbit    camera.OrbitController
	cube     cube.Cube

	held map[uint32]bool
}

// ContextOption is a functional option applied to a Context during construction via NewContext.
type ContextOption func(*Context)

// WithCamera replaces the default camera.
func WithCamera(cam camera.Camera) ContextOption {
	return func(c *Context) {
		if cam != nil {
			c.camera = cam
		}
	}
}

// WithOrbit replaces the default orbit controller.
func WithOrbit(orbit camera.OrbitController) ContextOption {
	return func(c *Context) {
		if orbit != nil {
			c.orbit = orbit
		}
	}
}

// NewContext creates the application context and places the camera and light on the orbit.
//
// Parameters:
//   - r: the renderer frames are recorded with
//   - c: the cube to draw
//   - options: variadic list of ContextOption functions
//
// Returns:
//   - *Context: the context
//   - error: ErrMissingComponent if r or c is nil
func NewContext(r renderer.Renderer, c cube.Cube, options ...ContextOption) (*Context, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: renderer", ErrMissingComponent)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: cube", ErrMissingComponent)
	}

	ctx := &Context{
		renderer: r,
		camera:   camera.NewCamera(),
		orbit:    camera.NewOrbitController(),
		cube:     c,
		held:     make(map[uint32]bool),
	}
	for _, opt := range options {
		opt(ctx)
	}
	ctx.orbit.Apply(ctx.camera, ctx.cube.Light())
	return ctx, nil
}

func (c *Context) Renderer() renderer.Renderer {
	return c.renderer
}

func (c *Context) Camera() camera.Camera {
	return c.camera
}

func (c *Context) Orbit() camera.OrbitController {
	return c.orbit
}

func (c *Context) Cube() cube.Cube {
	return c.cube
}

// KeyDown marks a key as held.
func (c *Context) KeyDown(key uint32) {
	c.held[key] = true
}

// KeyUp marks a key as released.
func (c *Context) KeyUp(key uint32) {
	delete(c.held, key)
}

// Held reports whether a key is currently held.
func (c *Context) Held(key uint32) bool {
	return c.held[key]
}

// Scroll zooms the camera by the vertical scroll delta.
func (c *Context) Scroll(delta float32) {
	c.camera.ProcessScroll(delta)
}

// Update runs once per frame. The orbit advances and is applied to the camera and light
// first, then a held W moves the orbit closer and a held S moves it farther. Radius changes
// show on the next frame.
func (c *Context) Update() {
	c.orbit.Advance()
	c.orbit.Apply(c.camera, c.cube.Light())

	if c.held[common.KeyW] {
		c.orbit.Closer()
	}
	if c.held[common.KeyS] {
		c.orbit.Farther()
	}
}

// Render records and presents one frame containing the cube.
//
// Returns:
//   - error: the BeginFrame error, or the cube draw error after the frame was closed
func (c *Context) Render() error {
	if err := c.renderer.BeginFrame(); err != nil {
		return fmt.Errorf("app: begin frame: %w", err)
	}
	drawErr := c.cube.Draw(c.camera)
	c.renderer.EndFrame()
	c.renderer.Present()
	if drawErr != nil {
		return fmt.Errorf("app: %w", drawErr)
	}
	return nil
}

// Resize reconfigures the surface and the projection aspect. Zero sizes, as reported while
// minimized, are ignored.
func (c *Context) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.renderer.Resize(width, height)
	c.cube.SetAspect(float32(width) / float32(height))
}

// Attach routes window input to the context and drives Update and Render from the engine.
// A render error is logged and quits the engine.
//
// Parameters:
//   - w: the window delivering key and scroll events
//   - e: the engine whose frames run Update and Render
func (c *Context) Attach(w window.Window, e engine.Engine) {
	w.SetKeyDownCallback(c.KeyDown)
	w.SetKeyUpCallback(c.KeyUp)
	w.SetScrollCallback(c.Scroll)

	e.SetResizeCallback(c.Resize)
	e.SetTickCallback(func(float32) {
		c.Update()
	})
	e.SetRenderCallback(func(float32) {
		if err := c.Render(); err != nil {
			log.Printf("[App] render failed: %v", err)
			e.Quit()
		}
	})
}

// Release frees the cube and then the renderer.
func (c *Context) Release() {
	c.cube.Release()
	c.renderer.Release()
}
