package shader

import (
	"fmt"
	"log"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies the pipeline stage a shader runs in.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex stage, which also defines the vertex buffer layout.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment stage, paired with a vertex shader.
	ShaderTypeFragment
)

func (t ShaderType) String() string {
	switch t {
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	default:
		return fmt.Sprintf("ShaderType(%d)", int(t))
	}
}

// attribute is the WGSL entry point attribute for the stage.
func (t ShaderType) attribute() string {
	return "@" + t.String()
}

// visibility maps the stage to its bind group entry visibility flag.
func (t ShaderType) visibility() wgpu.ShaderStage {
	switch t {
	case ShaderTypeVertex:
		return wgpu.ShaderStageVertex
	case ShaderTypeFragment:
		return wgpu.ShaderStageFragment
	default:
		return wgpu.ShaderStageNone
	}
}

// shader is the implementation of the Shader interface.
type shader struct {
	key                        string
	source                     string
	shaderType                 ShaderType
	entryPoint                 string
	vertexLayouts              []wgpu.VertexBufferLayout
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	uniforms                   []UniformLayout
	module                     *wgpu.ShaderModuleDescriptor
}

// Shader is a parsed WGSL stage. It exposes what the renderer needs to build a pipeline
// (entry point, vertex layout, bind group layouts) and what draw code needs to fill
// uniforms by name.
type Shader interface {
	// Key retrieves the unique identifier for this shader.
	Key() string

	// Source retrieves the WGSL source code.
	Source() string

	// ShaderType returns the stage this shader was parsed for.
	ShaderType() ShaderType

	// EntryPoint returns the entry point function name for the stage.
	EntryPoint() string

	// VertexLayouts returns the vertex buffer layouts parsed from vertex input structs.
	// Fragment shaders return nil.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: one layout per vertex input struct
	VertexLayouts() []wgpu.VertexBufferLayout

	// BindGroupLayoutDescriptors retrieves the parsed bind group layout descriptors.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName retrieves the variable declared at a group and binding.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name, or "" if nothing is declared there
	BindGroupVarName(group, binding int) string

	// UniformLayouts returns every var<uniform> binding with its member offsets.
	UniformLayouts() []UniformLayout

	// UniformLocation resolves a uniform struct member by name.
	//
	// Parameters:
	//   - name: the member name, e.g. "lightPos"
	//
	// Returns:
	//   - int: the member's byte offset within its uniform block, or -1 if no uniform declares it
	UniformLocation(name string) int

	// Module returns the shader module descriptor built from the source.
	Module() *wgpu.ShaderModuleDescriptor
}

var _ Shader = &shader{}

// NewShader parses WGSL source for one stage. Parsing failures are logged and returned as
// a *ShaderCompileError.
//
// Parameters:
//   - key: a unique identifier for the shader, used for caching and diagnostics
//   - shaderType: the stage to parse the source for
//   - source: the WGSL source code
//
// Returns:
//   - Shader: the parsed shader
//   - error: *ShaderCompileError if the source is empty or cannot be parsed for the stage
func NewShader(key string, shaderType ShaderType, source string) (Shader, error) {
	if source == "" {
		return nil, logCompileError(NewCompileError(key, shaderType, ErrEmptySource))
	}

	parsed, err := parseSource(source, shaderType)
	if err != nil {
		return nil, logCompileError(NewCompileError(key, shaderType, err))
	}

	return &shader{
		key:                        key,
		source:                     source,
		shaderType:                 shaderType,
		entryPoint:                 parsed.entryPoint,
		vertexLayouts:              parsed.vertexLayouts,
		bindGroupLayoutDescriptors: parsed.bindGroups,
		bindingVarNames:            parsed.varNames,
		uniforms:                   parsed.uniforms,
		module: &wgpu.ShaderModuleDescriptor{
			Label: key,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
				Code: source,
			},
		},
	}, nil
}

// NewShaderFromPath reads WGSL source from a file and parses it with NewShader.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the stage to parse the source for
//   - path: the file path to read WGSL source from
//
// Returns:
//   - Shader: the parsed shader
//   - error: the read error, or *ShaderCompileError from parsing
func NewShaderFromPath(key string, shaderType ShaderType, path string) (Shader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("shader: read %q: %w", path, err)
	}
	return NewShader(key, shaderType, string(data))
}

func logCompileError(err *ShaderCompileError) *ShaderCompileError {
	log.Printf("[Shader] %s %s shader failed to compile: %s", err.Key, err.Stage, err.Message)
	return err
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) VertexLayouts() []wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupVarName(group, binding int) string {
	if s.bindingVarNames[group] == nil {
		return ""
	}
	return s.bindingVarNames[group][binding]
}

func (s *shader) UniformLayouts() []UniformLayout {
	return s.uniforms
}

func (s *shader) UniformLocation(name string) int {
	for _, u := range s.uniforms {
		if f, ok := u.Field(name); ok {
			return int(f.Offset)
		}
	}
	return -1
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}
