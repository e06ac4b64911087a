package renderer

import (
	"github.com/Carmen-Shannon/tempest/common"
	"github.com/Carmen-Shannon/tempest/engine/renderer/pipeline"
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// RendererBackend is the GPU API beneath the Renderer. The Renderer validates the binding
// protocol and hands the backend only well-formed calls, so backends do not re-check state.
type RendererBackend interface {
	// ConfigureSurface (re)creates the swapchain and depth targets for the given size.
	ConfigureSurface(width, height int)

	// SetPresentMode selects the present mode used by the next ConfigureSurface.
	SetPresentMode(mode PresentMode)

	// CreateVertexBuffer uploads vertex data into a new buffer.
	//
	// Parameters:
	//   - label: a debug label
	//   - data: the vertex bytes
	//
	// Returns:
	//   - BufferHandle: the new non-zero handle
	//   - error: an error if the buffer could not be created
	CreateVertexBuffer(label string, data []byte) (BufferHandle, error)

	// ReleaseBuffer frees a vertex buffer.
	ReleaseBuffer(h BufferHandle)

	// CreateTexture uploads RGBA8 pixels and creates the sampler bound alongside them.
	//
	// Parameters:
	//   - label: a debug label
	//   - data: the pixels and dimensions
	//   - sampler: the sampler configuration
	//
	// Returns:
	//   - TextureHandle: the new non-zero handle
	//   - error: an error if the texture could not be created
	CreateTexture(label string, data common.TextureStagingData, sampler *common.SamplerStagingData) (TextureHandle, error)

	// ReleaseTexture frees a texture and its sampler.
	ReleaseTexture(h TextureHandle)

	// CreateProgram compiles both stages of a validated pipeline and reserves its uniform slots.
	//
	// Parameters:
	//   - p: the pipeline description
	//
	// Returns:
	//   - ProgramHandle: the new non-zero handle
	//   - error: a *shader.ShaderCompileError when a stage fails to compile
	CreateProgram(p pipeline.Pipeline) (ProgramHandle, error)

	// ReleaseProgram frees a program and its uniform buffer.
	ReleaseProgram(h ProgramHandle)

	// WriteUniforms writes one uniform slot of a program.
	//
	// Parameters:
	//   - program: the target program
	//   - slot: the slot index, below the pipeline's UniformSlots
	//   - data: the uniform bytes, at most the uniform block size
	//
	// Returns:
	//   - error: an error if the write could not be queued
	WriteUniforms(program ProgramHandle, slot int, data []byte) error

	// BeginFrame acquires the next surface image and begins the render pass.
	BeginFrame() error

	// Draw encodes one draw into the current render pass.
	Draw(cmd DrawCommand) error

	// EndFrame ends the render pass and submits the frame's commands.
	EndFrame()

	// Present displays the submitted frame.
	Present()

	// Release frees every remaining GPU resource and the device.
	Release()
}
