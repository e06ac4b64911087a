package pipeline

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/tempest/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// DefaultUniformSlots is the number of per-draw uniform slots reserved for a pipeline each frame.
const DefaultUniformSlots = 64

var (
	// ErrMissingShader is returned when a render pipeline lacks its vertex or fragment shader.
	ErrMissingShader = errors.New("pipeline missing shader")

	// ErrShaderStage is returned when a shader is assigned to the wrong stage.
	ErrShaderStage = errors.New("shader assigned to wrong stage")
)

// pipeline is the implementation of the Pipeline interface.
// It is a description only; the GPU objects built from it belong to the renderer backend.
type pipeline struct {
	// pipelineKey is the unique identifier for this pipeline, used as the program cache key
	pipelineKey string

	vertexShader, fragmentShader shader.Shader

	depthTestEnabled  bool
	depthWriteEnabled bool
	cullMode          wgpu.CullMode
	frontFace         wgpu.FrontFace
	uniformSlots      int
}

// Pipeline describes a render program: its two shader stages plus the fixed-function state
// and uniform slot count the renderer needs to build it.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline, used for caching and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Shader retrieves the shader for a stage.
	//
	// Parameters:
	//   - shaderType: the stage to retrieve
	//
	// Returns:
	//   - shader.Shader: the shader for the stage, or nil if not set
	Shader(shaderType shader.ShaderType) shader.Shader

	// DepthTestEnabled returns whether fragments are depth tested.
	DepthTestEnabled() bool

	// DepthWriteEnabled returns whether fragments write depth.
	DepthWriteEnabled() bool

	// CullMode returns the face culling mode.
	CullMode() wgpu.CullMode

	// FrontFace returns the winding treated as front facing.
	FrontFace() wgpu.FrontFace

	// UniformSlots returns how many uniform uploads the pipeline accepts per frame.
	UniformSlots() int

	// UniformLayout returns the first uniform block declared by either stage, vertex first.
	//
	// Returns:
	//   - shader.UniformLayout: the uniform layout
	//   - bool: false if neither stage declares a uniform
	UniformLayout() (shader.UniformLayout, bool)

	// Validate checks that both stages are present and assigned correctly.
	//
	// Returns:
	//   - error: ErrMissingShader or ErrShaderStage, wrapped with the pipeline key
	Validate() error
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a render pipeline description. Depth test and write default on,
// culling defaults off with counter-clockwise front faces.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:       pipelineKey,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		cullMode:          wgpu.CullModeNone,
		frontFace:         wgpu.FrontFaceCCW,
		uniformSlots:      DefaultUniformSlots,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	default:
		return nil
	}
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) UniformSlots() int {
	return p.uniformSlots
}

func (p *pipeline) UniformLayout() (shader.UniformLayout, bool) {
	for _, s := range []shader.Shader{p.vertexShader, p.fragmentShader} {
		if s == nil {
			continue
		}
		if layouts := s.UniformLayouts(); len(layouts) > 0 {
			return layouts[0], true
		}
	}
	return shader.UniformLayout{}, false
}

func (p *pipeline) Validate() error {
	if p.vertexShader == nil {
		return fmt.Errorf("pipeline %q: vertex: %w", p.pipelineKey, ErrMissingShader)
	}
	if p.fragmentShader == nil {
		return fmt.Errorf("pipeline %q: fragment: %w", p.pipelineKey, ErrMissingShader)
	}
	if p.vertexShader.ShaderType() != shader.ShaderTypeVertex {
		return fmt.Errorf("pipeline %q: %s shader as vertex: %w", p.pipelineKey, p.vertexShader.ShaderType(), ErrShaderStage)
	}
	if p.fragmentShader.ShaderType() != shader.ShaderTypeFragment {
		return fmt.Errorf("pipeline %q: %s shader as fragment: %w", p.pipelineKey, p.fragmentShader.ShaderType(), ErrShaderStage)
	}
	return nil
}
