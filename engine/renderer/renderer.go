package renderer

import (
	"fmt"
	"log"
	"sync"

	"github.com/Carmen-Shannon/tempest/common"
	"github.com/Carmen-Shannon/tempest/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/tempest/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// Surface is the window side of the renderer: where frames go and how big they are.
type Surface interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// program is the renderer's bookkeeping for one compiled pipeline.
type program struct {
	pipeline    pipeline.Pipeline
	vertexInput VertexLayout
	uniformSize uint64
	hasUniforms bool
	// nextSlot is the next free uniform slot this frame; currentSlot the last one written.
	nextSlot    int
	currentSlot int
}

// bindings is the current binding state of the protocol.
type bindings struct {
	vertexBuffer BufferHandle
	program      ProgramHandle
	attributes   *VertexLayout
	texture      TextureHandle
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backend RendererBackend

	programCache map[string]ProgramHandle
	programs     map[ProgramHandle]*program
	buffers      map[BufferHandle]uint64
	textures     map[TextureHandle]struct{}

	bound   bindings
	inFrame bool

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	msaa                 MSAASampleCount
}

// Renderer is a GPU command layer with a GL-like binding protocol. A draw uses whatever
// vertex buffer, program, attributes, texture and uniforms are bound when Draw is called:
//
//	BindVertexBuffer -> BindProgram -> BindAttributes -> BindTexture -> UploadUniforms -> Draw -> UnbindProgram
//
// Programs are cached by pipeline key, so every caller creating the same pipeline shares one
// compiled program. All methods are safe for concurrent use, though frames are expected to be
// recorded from a single goroutine.
type Renderer interface {
	// Resize reconfigures the surface for a new size.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode sets the surface present mode. A call to Resize is required for the new mode to take effect.
	SetPresentMode(mode PresentMode)

	// CreateVertexBuffer uploads vertex bytes into a new GPU buffer.
	//
	// Parameters:
	//   - label: a debug label
	//   - data: the interleaved vertex bytes
	//
	// Returns:
	//   - BufferHandle: the buffer handle
	//   - error: an error if the backend could not create the buffer
	CreateVertexBuffer(label string, data []byte) (BufferHandle, error)

	// CreateTexture uploads RGBA8 pixels with a sampler.
	//
	// Parameters:
	//   - label: a debug label
	//   - data: the pixel data and dimensions
	//   - sampler: the sampler configuration, nil selects common.DefaultSampler
	//
	// Returns:
	//   - TextureHandle: the texture handle
	//   - error: an error if the data is empty or the backend fails
	CreateTexture(label string, data common.TextureStagingData, sampler *common.SamplerStagingData) (TextureHandle, error)

	// CreateProgram compiles a pipeline, or returns the cached program for its key.
	//
	// Parameters:
	//   - p: the pipeline description
	//
	// Returns:
	//   - ProgramHandle: the shared program handle
	//   - error: a validation error, or *shader.ShaderCompileError when compilation fails
	CreateProgram(p pipeline.Pipeline) (ProgramHandle, error)

	// Program looks up a cached program by pipeline key.
	Program(key string) (ProgramHandle, bool)

	// Pipeline returns the pipeline a program was created from, or nil.
	Pipeline(h ProgramHandle) pipeline.Pipeline

	// ReleaseBuffer frees a vertex buffer, unbinding it if bound.
	ReleaseBuffer(h BufferHandle) error

	// ReleaseTexture frees a texture, unbinding it if bound.
	ReleaseTexture(h TextureHandle) error

	// BindVertexBuffer selects the vertex buffer for subsequent draws.
	BindVertexBuffer(h BufferHandle) error

	// BindProgram selects the program for subsequent uploads and draws. Attributes must be
	// bound again after every program bind.
	BindProgram(h ProgramHandle) error

	// BindAttributes declares how the bound vertex buffer is laid out for the bound program.
	//
	// Parameters:
	//   - layout: the interleaved layout of the bound buffer
	//
	// Returns:
	//   - error: ErrNoProgramBound, ErrNoVertexBuffer, or ErrVertexLayoutMismatch when the
	//     layout disagrees with the program's vertex input
	BindAttributes(layout VertexLayout) error

	// BindTexture selects the texture for subsequent draws. Zero selects the 1x1 white texture.
	BindTexture(h TextureHandle) error

	// UploadUniforms writes the bound program's uniform block into its next per-frame slot.
	// The next Draw of the program reads that slot.
	//
	// Parameters:
	//   - data: the uniform block bytes
	//
	// Returns:
	//   - error: ErrNoProgramBound, ErrUniformSize, or ErrUniformSlotsExhausted
	UploadUniforms(data []byte) error

	// Draw issues one draw of count vertices starting at first, using the current bindings.
	//
	// Parameters:
	//   - topology: triangle list or triangle fan
	//   - first: the first vertex
	//   - count: the number of vertices
	//
	// Returns:
	//   - error: a binding error, or ErrInvalidDrawRange
	Draw(topology Topology, first, count uint32) error

	// UnbindProgram clears the program and attribute bindings. The vertex buffer and texture stay bound.
	UnbindProgram()

	// BeginFrame acquires the surface image, begins the render pass and resets uniform slots.
	BeginFrame() error

	// EndFrame ends the render pass and submits the command buffer.
	EndFrame()

	// Present presents the surface to the display.
	Present()

	// Release frees every buffer, texture and program, then the backend.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer. Without WithBackend it creates the WebGPU backend for the
// surface and configures it to the surface size.
//
// Parameters:
//   - surface: the window surface, may be nil when a backend is injected
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the renderer
//   - error: ErrNoSurface, or the backend initialization error
func NewRenderer(surface Surface, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:           &sync.Mutex{},
		programCache: make(map[string]ProgramHandle),
		programs:     make(map[ProgramHandle]*program),
		buffers:      make(map[BufferHandle]uint64),
		textures:     make(map[TextureHandle]struct{}),
		msaa:         MSAA4x,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	if r.backend == nil {
		if surface == nil {
			return nil, ErrNoSurface
		}
		backend, err := newWGPURendererBackend(surface.SurfaceDescriptor(), r.forceFallbackAdapter, r.msaa)
		if err != nil {
			return nil, fmt.Errorf("renderer: init wgpu backend: %w", err)
		}
		r.backend = backend
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	if surface != nil {
		r.backend.ConfigureSurface(surface.Width(), surface.Height())
	}
	return r, nil
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) CreateVertexBuffer(label string, data []byte) (BufferHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(data) == 0 {
		return 0, fmt.Errorf("renderer: vertex buffer %q: empty data", label)
	}
	h, err := r.backend.CreateVertexBuffer(label, data)
	if err != nil {
		return 0, fmt.Errorf("renderer: vertex buffer %q: %w", label, err)
	}
	r.buffers[h] = uint64(len(data))
	return h, nil
}

func (r *renderer) CreateTexture(label string, data common.TextureStagingData, sampler *common.SamplerStagingData) (TextureHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if data.Empty() || len(data.Pixels) < int(data.Width*data.Height*4) {
		return 0, fmt.Errorf("renderer: texture %q: invalid staging data %dx%d with %d bytes", label, data.Width, data.Height, len(data.Pixels))
	}
	h, err := r.backend.CreateTexture(label, data, sampler)
	if err != nil {
		return 0, fmt.Errorf("renderer: texture %q: %w", label, err)
	}
	r.textures[h] = struct{}{}
	return h, nil
}

func (r *renderer) CreateProgram(p pipeline.Pipeline) (ProgramHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := p.PipelineKey()
	if h, ok := r.programCache[key]; ok {
		return h, nil
	}
	if err := p.Validate(); err != nil {
		return 0, err
	}

	h, err := r.backend.CreateProgram(p)
	if err != nil {
		log.Printf("[Renderer] failed to create program %q: %v", key, err)
		return 0, err
	}

	prog := &program{
		pipeline:    p,
		currentSlot: -1,
	}
	if layouts := p.Shader(shader.ShaderTypeVertex).VertexLayouts(); len(layouts) > 0 {
		prog.vertexInput = LayoutFromShader(layouts[0])
	}
	if ul, ok := p.UniformLayout(); ok {
		prog.hasUniforms = true
		prog.uniformSize = ul.Size
	}

	r.programCache[key] = h
	r.programs[h] = prog
	log.Printf("[Renderer] created program %q (%d uniform slots)", key, p.UniformSlots())
	return h, nil
}

func (r *renderer) Program(key string) (ProgramHandle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.programCache[key]
	return h, ok
}

func (r *renderer) Pipeline(h ProgramHandle) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prog, ok := r.programs[h]; ok {
		return prog.pipeline
	}
	return nil
}

func (r *renderer) ReleaseBuffer(h BufferHandle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.buffers[h]; !ok {
		return fmt.Errorf("buffer %d: %w", h, ErrUnknownHandle)
	}
	r.backend.ReleaseBuffer(h)
	delete(r.buffers, h)
	if r.bound.vertexBuffer == h {
		r.bound.vertexBuffer = 0
		r.bound.attributes = nil
	}
	return nil
}

func (r *renderer) ReleaseTexture(h TextureHandle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.textures[h]; !ok {
		return fmt.Errorf("texture %d: %w", h, ErrUnknownHandle)
	}
	r.backend.ReleaseTexture(h)
	delete(r.textures, h)
	if r.bound.texture == h {
		r.bound.texture = 0
	}
	return nil
}

func (r *renderer) BindVertexBuffer(h BufferHandle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.buffers[h]; !ok {
		return fmt.Errorf("buffer %d: %w", h, ErrUnknownHandle)
	}
	if r.bound.vertexBuffer != h {
		r.bound.attributes = nil
	}
	r.bound.vertexBuffer = h
	return nil
}

func (r *renderer) BindProgram(h ProgramHandle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.programs[h]; !ok {
		return fmt.Errorf("program %d: %w", h, ErrUnknownHandle)
	}
	r.bound.program = h
	r.bound.attributes = nil
	return nil
}

func (r *renderer) BindAttributes(layout VertexLayout) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prog, ok := r.programs[r.bound.program]
	if !ok {
		return ErrNoProgramBound
	}
	if r.bound.vertexBuffer == 0 {
		return ErrNoVertexBuffer
	}
	if !layout.Equal(prog.vertexInput) {
		return fmt.Errorf("program %q expects stride %d with %d attributes, got stride %d with %d: %w",
			prog.pipeline.PipelineKey(), prog.vertexInput.Stride, len(prog.vertexInput.Attributes),
			layout.Stride, len(layout.Attributes), ErrVertexLayoutMismatch)
	}
	r.bound.attributes = &layout
	return nil
}

func (r *renderer) BindTexture(h TextureHandle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h != 0 {
		if _, ok := r.textures[h]; !ok {
			return fmt.Errorf("texture %d: %w", h, ErrUnknownHandle)
		}
	}
	r.bound.texture = h
	return nil
}

func (r *renderer) UploadUniforms(data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prog, ok := r.programs[r.bound.program]
	if !ok {
		return ErrNoProgramBound
	}
	if uint64(len(data)) > prog.uniformSize {
		return fmt.Errorf("%d bytes for a %d byte block: %w", len(data), prog.uniformSize, ErrUniformSize)
	}
	if prog.nextSlot >= prog.pipeline.UniformSlots() {
		return fmt.Errorf("program %q: %d slots: %w", prog.pipeline.PipelineKey(), prog.pipeline.UniformSlots(), ErrUniformSlotsExhausted)
	}

	slot := prog.nextSlot
	if err := r.backend.WriteUniforms(r.bound.program, slot, data); err != nil {
		return fmt.Errorf("renderer: write uniforms: %w", err)
	}
	prog.nextSlot++
	prog.currentSlot = slot
	return nil
}

func (r *renderer) Draw(topology Topology, first, count uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.inFrame {
		return ErrFrameNotStarted
	}
	prog, ok := r.programs[r.bound.program]
	if !ok {
		return ErrNoProgramBound
	}
	if r.bound.vertexBuffer == 0 {
		return ErrNoVertexBuffer
	}
	if r.bound.attributes == nil {
		return ErrAttributesNotBound
	}

	switch topology {
	case TopologyTriangleFan:
		if count < 3 {
			return fmt.Errorf("fan of %d vertices: %w", count, ErrInvalidDrawRange)
		}
	case TopologyTriangleList:
		if count == 0 || count%3 != 0 {
			return fmt.Errorf("list of %d vertices: %w", count, ErrInvalidDrawRange)
		}
	default:
		return fmt.Errorf("%s: %w", topology, ErrInvalidDrawRange)
	}
	if stride := r.bound.attributes.Stride; stride > 0 {
		available := r.buffers[r.bound.vertexBuffer] / stride
		if uint64(first)+uint64(count) > available {
			return fmt.Errorf("vertices [%d, %d) of %d: %w", first, first+count, available, ErrInvalidDrawRange)
		}
	}

	slot := -1
	if prog.hasUniforms {
		if prog.currentSlot < 0 {
			return fmt.Errorf("program %q: %w", prog.pipeline.PipelineKey(), ErrNoUniforms)
		}
		slot = prog.currentSlot
	}

	return r.backend.Draw(DrawCommand{
		Program:      r.bound.program,
		VertexBuffer: r.bound.vertexBuffer,
		Texture:      r.bound.texture,
		UniformSlot:  slot,
		Topology:     topology,
		First:        first,
		Count:        count,
	})
}

func (r *renderer) UnbindProgram() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bound.program = 0
	r.bound.attributes = nil
}

func (r *renderer) BeginFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.inFrame {
		return ErrFrameInProgress
	}
	if err := r.backend.BeginFrame(); err != nil {
		return err
	}
	for _, prog := range r.programs {
		prog.nextSlot = 0
		prog.currentSlot = -1
	}
	r.inFrame = true
	return nil
}

func (r *renderer) EndFrame() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.inFrame {
		return
	}
	r.backend.EndFrame()
	r.inFrame = false
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for h := range r.buffers {
		r.backend.ReleaseBuffer(h)
	}
	for h := range r.textures {
		r.backend.ReleaseTexture(h)
	}
	for h := range r.programs {
		r.backend.ReleaseProgram(h)
	}
	clear(r.buffers)
	clear(r.textures)
	clear(r.programs)
	clear(r.programCache)
	r.bound = bindings{}
	r.backend.Release()
}
