// Package cube draws a textured, Phong-lit box as six triangle-fan faces sharing one vertex
// buffer and one compiled program.
package cube

import (
	"fmt"
	"log"

	"github.com/Carmen-Shannon/tempest/common"
	"github.com/Carmen-Shannon/tempest/engine/camera"
	"github.com/Carmen-Shannon/tempest/engine/light"
	"github.com/Carmen-Shannon/tempest/engine/mesh"
	"github.com/Carmen-Shannon/tempest/engine/renderer"
	"github.com/Carmen-Shannon/tempest/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/tempest/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// DefaultAspect is the 1280x720 window aspect ratio.
	DefaultAspect float32 = 1280.0 / 720.0

	// DefaultNear and DefaultFar are the projection clip distances.
	DefaultNear float32 = 0.01
	DefaultFar  float32 = 100
)

// cubeImpl is the implementation of the Cube interface.
type cubeImpl struct {
	renderer renderer.Renderer
	label    string

	mesh    mesh.Mesh
	layout  renderer.VertexLayout
	buffer  renderer.BufferHandle
	program renderer.ProgramHandle
	texture renderer.TextureHandle
	block   *shader.UniformBlock

	model    mgl32.Mat4
	objColor mgl32.Vec3
	light    light.Light

	aspect    float32
	near, far float32
}

// Cube is a box mesh drawn face by face through the renderer's binding protocol.
type Cube interface {
	// BindObjColor sets the base color the lighting result is multiplied by.
	//
	// Parameters:
	//   - rgb: the object color
	BindObjColor(rgb mgl32.Vec3)

	// ObjColor returns the current object color.
	ObjColor() mgl32.Vec3

	// Translate composes a translation onto the model matrix (M = M * T). It never resets M.
	//
	// Parameters:
	//   - x, y, z: the translation
	Translate(x, y, z float32)

	// Rotate composes a rotation onto the model matrix (M = M * R). It never resets M.
	//
	// Parameters:
	//   - angle: the rotation angle in radians
	//   - x, y, z: the rotation axis, normalized before use
	Rotate(angle, x, y, z float32)

	// Model returns the accumulated model matrix.
	Model() mgl32.Mat4

	// SetAspect sets the projection aspect ratio, usually after a resize. Non-positive values are ignored.
	SetAspect(aspect float32)

	// Light returns the cube's point light. Its position is the light position uniform and
	// its radiance the light color uniform.
	Light() light.Light

	// Mesh returns the built box mesh.
	Mesh() mesh.Mesh

	// Program returns the shared program handle.
	Program() renderer.ProgramHandle

	// Texture returns the texture bound for every face.
	Texture() renderer.TextureHandle

	// Draw renders the six faces with the camera's view and projection. The surrounding
	// BeginFrame/EndFrame belong to the caller.
	//
	// Parameters:
	//   - cam: supplies the view matrix, position and zoom
	//
	// Returns:
	//   - error: the first renderer error, naming the face that failed
	Draw(cam camera.Camera) error

	// Release frees the cube's vertex buffer. The shared program stays in the renderer cache.
	Release()
}

var _ Cube = &cubeImpl{}

// NewCube builds the box mesh, uploads it and creates or reuses the shared Phong program.
//
// Parameters:
//   - r: the renderer that owns the GPU resources
//   - extents: the half-extents of the box
//   - texture: the texture bound for every face, zero for plain white
//   - lighting: the required object color and light
//   - options: variadic list of CubeBuilderOption functions
//
// Returns:
//   - Cube: the cube
//   - error: ErrMissingLightingParameter, *shader.ShaderCompileError, or a renderer error
func NewCube(r renderer.Renderer, extents mgl32.Vec3, texture renderer.TextureHandle, lighting LightingConfig, options ...CubeBuilderOption) (Cube, error) {
	if err := lighting.Validate(); err != nil {
		return nil, fmt.Errorf("cube: %w", err)
	}

	c := &cubeImpl{
		renderer: r,
		label:    "cube",
		mesh:     mesh.NewBox(extents.X(), extents.Y(), extents.Z()),
		layout:   vertexLayout(mesh.Layout()),
		texture:  texture,
		model:    mgl32.Ident4(),
		objColor: *lighting.ObjectColor,
		light:    lighting.Light,
		aspect:   DefaultAspect,
		near:     DefaultNear,
		far:      DefaultFar,
	}
	for _, opt := range options {
		opt(c)
	}

	program, err := phongProgram(r)
	if err != nil {
		return nil, err
	}
	c.program = program

	ul, ok := r.Pipeline(program).UniformLayout()
	if !ok {
		return nil, fmt.Errorf("cube: program %q declares no uniform block", PhongProgramKey)
	}
	c.block = shader.NewUniformBlock(ul)

	c.buffer, err = r.CreateVertexBuffer(c.label, c.mesh.Marshal())
	if err != nil {
		return nil, fmt.Errorf("cube: %w", err)
	}
	return c, nil
}

// phongProgram returns the cached Phong program, compiling it on first use.
func phongProgram(r renderer.Renderer) (renderer.ProgramHandle, error) {
	if h, ok := r.Program(PhongProgramKey); ok {
		return h, nil
	}

	vs, err := shader.NewShader(PhongProgramKey, shader.ShaderTypeVertex, PhongSource)
	if err != nil {
		return 0, err
	}
	fs, err := shader.NewShader(PhongProgramKey, shader.ShaderTypeFragment, PhongSource)
	if err != nil {
		return 0, err
	}

	return r.CreateProgram(pipeline.NewPipeline(PhongProgramKey,
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
		pipeline.WithDepthTest(true),
		pipeline.WithCullMode(wgpu.CullModeBack),
		pipeline.WithFrontFace(wgpu.FrontFaceCCW),
	))
}

// vertexLayout converts the mesh byte layout into the renderer's attribute binding.
func vertexLayout(l mesh.VertexLayout) renderer.VertexLayout {
	out := renderer.VertexLayout{Stride: l.Stride}
	for _, a := range l.Attributes {
		out.Attributes = append(out.Attributes, renderer.VertexAttribute{
			Location:   a.Location,
			Components: a.Components,
			Offset:     a.Offset,
		})
	}
	return out
}

func (c *cubeImpl) BindObjColor(rgb mgl32.Vec3) {
	c.objColor = rgb
}

func (c *cubeImpl) ObjColor() mgl32.Vec3 {
	return c.objColor
}

func (c *cubeImpl) Translate(x, y, z float32) {
	c.model = c.model.Mul4(mgl32.Translate3D(x, y, z))
}

func (c *cubeImpl) Rotate(angle, x, y, z float32) {
	axis := mgl32.Vec3{x, y, z}
	if axis.Len() == 0 {
		return
	}
	c.model = c.model.Mul4(mgl32.HomogRotate3D(angle, axis.Normalize()))
}

func (c *cubeImpl) Model() mgl32.Mat4 {
	return c.model
}

func (c *cubeImpl) SetAspect(aspect float32) {
	if aspect > 0 {
		c.aspect = aspect
	}
}

func (c *cubeImpl) Light() light.Light {
	return c.light
}

func (c *cubeImpl) Mesh() mesh.Mesh {
	return c.mesh
}

func (c *cubeImpl) Program() renderer.ProgramHandle {
	return c.program
}

func (c *cubeImpl) Texture() renderer.TextureHandle {
	return c.texture
}

// uniforms gathers the values every face of this frame is drawn with.
func (c *cubeImpl) uniforms(cam camera.Camera) FaceUniforms {
	return FaceUniforms{
		Model:      c.model,
		View:       cam.ViewMatrix(),
		Projection: common.Perspective(mgl32.DegToRad(cam.Zoom()), c.aspect, c.near, c.far),
		Light:      c.light.Radiance(),
		LightPos:   c.light.Position(),
		ViewPos:    cam.Position(),
		Coral:      c.objColor,
	}
}

func (c *cubeImpl) Draw(cam camera.Camera) error {
	r := c.renderer
	defer r.UnbindProgram()

	if err := r.BindVertexBuffer(c.buffer); err != nil {
		return fmt.Errorf("cube: %w", err)
	}

	u := c.uniforms(cam)
	u.Write(c.block)

	for id := mesh.FaceFront; id <= mesh.FaceBottom; id++ {
		if err := c.drawFace(id); err != nil {
			return fmt.Errorf("cube: %s face: %w", id, err)
		}
	}
	return nil
}

// drawFace runs the per-face protocol: program, attributes, texture, uniforms, fan draw, unbind.
func (c *cubeImpl) drawFace(id mesh.FaceID) error {
	r := c.renderer
	if err := r.BindProgram(c.program); err != nil {
		return err
	}
	defer r.UnbindProgram()

	if err := r.BindAttributes(c.layout); err != nil {
		return err
	}
	if err := r.BindTexture(c.texture); err != nil {
		return err
	}
	if err := r.UploadUniforms(c.block.Bytes()); err != nil {
		return err
	}
	return r.Draw(renderer.TopologyTriangleFan, mesh.FaceFirstVertex(id), mesh.VerticesPerFace)
}

func (c *cubeImpl) Release() {
	if c.buffer == 0 {
		return
	}
	if err := c.renderer.ReleaseBuffer(c.buffer); err != nil {
		log.Printf("[Cube] failed to release %q vertex buffer: %v", c.label, err)
	}
	c.buffer = 0
}
