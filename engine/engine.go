package engine

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/Carmen-Shannon/tempest/engine/profiler"
	"github.com/Carmen-Shannon/tempest/engine/window"
)

// ErrNoWindow is returned by Run when the engine was built without a window.
var ErrNoWindow = errors.New("engine has no window")

// maxCatchUpTicks bounds how many fixed ticks a single slow frame may run.
const maxCatchUpTicks = 5

// engine implements the Engine interface.
// Drives tick and render callbacks from the window's message loop on one thread.
type engine struct {
	window window.Window

	profiler         *profiler.Profiler
	profilingEnabled bool

	// engineTickRate is the fixed tick step; 0 ticks once per frame with the frame delta.
	engineTickRate time.Duration
	tickBacklog    time.Duration

	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)
	resizeCallback func(width, height int)

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	lastFrame time.Time
	frames    uint64
	quitOnce  sync.Once

	now   func() time.Time
	sleep func(time.Duration)
}

// Engine is the main entry point for the engine.
// It runs the frame loop on the window's message loop.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets a fixed tick rate in ticks per second.
	// Pass 0 to tick exactly once per frame with the frame delta (default).
	//
	// Parameters:
	//   - fps: target ticks per second (0 = once per frame)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	// Use this for input handling and animation updates.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called once per frame after the ticks.
	// Use this to record and present the frame.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetResizeCallback registers the function called when the window framebuffer changes size.
	//
	// Parameters:
	//   - callback: function receiving the new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Frames returns how many frames have run since Run started.
	Frames() uint64

	// Run starts the frame loop and blocks until the window closes.
	//
	// Returns:
	//   - error: ErrNoWindow if the engine has no window
	Run() error

	// Quit asks the window to close after the current frame.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// Parameters:
//   - options: functional options for engine configuration (window, profiling, frame limit, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	return newEngine(options...)
}

func newEngine(options ...EngineBuilderOption) *engine {
	e := &engine{
		profilingEnabled: false,
		now:              time.Now,
		sleep:            time.Sleep,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithClock(e.now))
	}

	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			if width <= 0 || height <= 0 {
				return
			}
			if e.resizeCallback != nil {
				e.resizeCallback(width, height)
			}
		})
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Run() error {
	if e.window == nil {
		return ErrNoWindow
	}
	e.lastFrame = e.now()
	e.window.SetUpdateCallback(e.frame)
	e.window.ProcessMessages()
	log.Printf("[Engine] stopped after %d frames", e.frames)
	return nil
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		if e.window != nil {
			e.window.RequestClose()
		}
	})
}

func (e *engine) Frames() uint64 {
	return e.frames
}

// frame runs one loop iteration: ticks, render, profiler, then the frame limit.
// Recovers from panics in the callbacks and asks the window to close instead of crashing the process.
func (e *engine) frame() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Engine] frame recovered from panic: %v", r)
			e.Quit()
		}
	}()

	start := e.now()
	elapsed := start.Sub(e.lastFrame)
	e.lastFrame = start
	dt := float32(elapsed.Seconds())

	e.runTicks(elapsed)

	if e.renderCallback != nil {
		e.renderCallback(dt)
	}

	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick()
	}
	e.frames++

	// Frame rate limiting
	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - e.now().Sub(start); remaining > 0 {
			e.sleep(remaining)
		}
	}
}

// runTicks fires the tick callback for this frame.
// Without a fixed rate it ticks once with the frame delta; with one it drains the accumulated
// backlog in fixed steps, dropping whatever exceeds maxCatchUpTicks.
func (e *engine) runTicks(elapsed time.Duration) {
	if e.tickCallback == nil {
		return
	}
	if e.engineTickRate <= 0 {
		e.tickCallback(float32(elapsed.Seconds()))
		return
	}

	e.tickBacklog += elapsed
	step := float32(e.engineTickRate.Seconds())
	for n := 0; e.tickBacklog >= e.engineTickRate; n++ {
		if n == maxCatchUpTicks {
			e.tickBacklog = 0
			return
		}
		e.tickCallback(step)
		e.tickBacklog -= e.engineTickRate
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetTickRate(fps float64) {
	e.engineTickRate = rateToDuration(fps)
	e.tickBacklog = 0
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetRenderCallback registers the function called each render frame.
func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

func (e *engine) SetResizeCallback(callback func(width, height int)) {
	e.resizeCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	e.renderFrameLimit = rateToDuration(fps)
}

// rateToDuration converts a per-second rate into a period; non-positive rates give 0.
func rateToDuration(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
