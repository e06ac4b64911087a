package cube

import (
	"testing"

	"github.com/Carmen-Shannon/tempest/common"
	"github.com/Carmen-Shannon/tempest/engine/camera"
	"github.com/Carmen-Shannon/tempest/engine/light"
	"github.com/Carmen-Shannon/tempest/engine/mesh"
	"github.com/Carmen-Shannon/tempest/engine/renderer"
	"github.com/Carmen-Shannon/tempest/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/tempest/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(t *testing.T) (renderer.Renderer, *renderertest.Backend) {
	t.Helper()
	backend := renderertest.NewBackend()
	r, err := renderer.NewRenderer(nil, renderer.WithBackend(backend))
	require.NoError(t, err)
	return r, backend
}

func demoLighting() LightingConfig {
	color := mgl32.Vec3{0, 0, 0.9}
	return LightingConfig{
		ObjectColor: &color,
		Light:       light.NewLight(light.WithPosition(0.9, 0, 0)),
	}
}

// floatsAt decodes n float32 values starting at a byte offset.
func floatsAt(data []byte, offset, n int) []float32 {
	return common.Float32sFromBytes(data[offset : offset+n*4])
}

func TestDrawIssuesSixFanDraws(t *testing.T) {
	r, backend := newTestRenderer(t)
	c, err := NewCube(r, mgl32.Vec3{0.2, 0.2, 0.2}, 0, demoLighting())
	require.NoError(t, err)
	cam := camera.NewCamera()

	require.NoError(t, r.BeginFrame())
	require.NoError(t, c.Draw(cam))
	r.EndFrame()

	require.Len(t, backend.Draws, 6)
	for i, d := range backend.Draws {
		assert.Equal(t, uint32(i*4), d.First)
		assert.Equal(t, uint32(4), d.Count)
		assert.Equal(t, renderer.TopologyTriangleFan, d.Topology)
		assert.Equal(t, c.Program(), d.Program)
		assert.Equal(t, i, d.UniformSlot)
		assert.Equal(t, renderer.TextureHandle(0), d.Texture)
	}
	assert.Len(t, backend.Programs, 1)
	assert.Len(t, backend.UniformWrites, 6)
}

func TestDrawUploadsFaceUniforms(t *testing.T) {
	r, backend := newTestRenderer(t)
	c, err := NewCube(r, mgl32.Vec3{0.2, 0.2, 0.2}, 0, demoLighting())
	require.NoError(t, err)
	cam := camera.NewCamera()
	require.Equal(t, mgl32.Ident4(), cam.ViewMatrix())

	require.NoError(t, r.BeginFrame())
	require.NoError(t, c.Draw(cam))
	r.EndFrame()

	ident := mgl32.Ident4()
	proj := common.Perspective(mgl32.DegToRad(camera.DefaultZoom), DefaultAspect, DefaultNear, DefaultFar)
	for slot := 0; slot < 6; slot++ {
		data := backend.SlotData(c.Program(), slot)
		require.Len(t, data, 256)

		assert.Equal(t, ident[:], floatsAt(data, 0, 16), "model")
		assert.Equal(t, ident[:], floatsAt(data, 64, 16), "view")
		assert.InDeltaSlice(t, proj[:], floatsAt(data, 128, 16), 1e-6, "projection")
		assert.Equal(t, []float32{1, 1, 1}, floatsAt(data, 192, 3), "light")
		assert.Equal(t, []float32{0.9, 0, 0}, floatsAt(data, 208, 3), "lightPos")
		assert.Equal(t, []float32{0, 0, 0}, floatsAt(data, 224, 3), "viewPos")
		assert.Equal(t, []float32{0, 0, 0.9}, floatsAt(data, 240, 3), "coral")
	}
}

func TestLightColorAndPositionAreIndependent(t *testing.T) {
	r, backend := newTestRenderer(t)
	c, err := NewCube(r, mgl32.Vec3{0.2, 0.2, 0.2}, 0, demoLighting())
	require.NoError(t, err)

	c.Light().SetColor(mgl32.Vec3{1, 0.5, 0})
	c.BindObjColor(mgl32.Vec3{0.3, 0.2, 0.1})

	require.NoError(t, r.BeginFrame())
	require.NoError(t, c.Draw(camera.NewCamera(camera.WithPosition(0, 0, 3))))
	r.EndFrame()

	data := backend.SlotData(c.Program(), 0)
	assert.Equal(t, []float32{1, 0.5, 0}, floatsAt(data, 192, 3))
	assert.Equal(t, []float32{0.9, 0, 0}, floatsAt(data, 208, 3))
	assert.Equal(t, []float32{0, 0, 3}, floatsAt(data, 224, 3))
	assert.Equal(t, []float32{0.3, 0.2, 0.1}, floatsAt(data, 240, 3))
	assert.Equal(t, mgl32.Vec3{0.3, 0.2, 0.1}, c.ObjColor())
}

func TestCubesShareOneProgram(t *testing.T) {
	r, backend := newTestRenderer(t)

	a, err := NewCube(r, mgl32.Vec3{0.2, 0.2, 0.2}, 0, demoLighting())
	require.NoError(t, err)
	b, err := NewCube(r, mgl32.Vec3{1, 2, 3}, 0, demoLighting(), WithLabel("big"))
	require.NoError(t, err)

	assert.Equal(t, a.Program(), b.Program())
	assert.Len(t, backend.Programs, 1)
	assert.Len(t, backend.Buffers, 2)
}

func TestNewCubeMissingLighting(t *testing.T) {
	color := mgl32.Vec3{1, 1, 1}
	tests := []struct {
		name     string
		lighting LightingConfig
		field    string
	}{
		{"no object color", LightingConfig{Light: light.NewLight()}, "object color"},
		{"no light", LightingConfig{ObjectColor: &color}, "light"},
		{"empty", LightingConfig{}, "object color"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, backend := newTestRenderer(t)

			c, err := NewCube(r, mgl32.Vec3{1, 1, 1}, 0, tt.lighting)

			assert.Nil(t, c)
			require.ErrorIs(t, err, ErrMissingLightingParameter)
			assert.Contains(t, err.Error(), tt.field)
			assert.Empty(t, backend.Programs)
			assert.Empty(t, backend.Buffers)
		})
	}
}

func TestNewCubeCompileError(t *testing.T) {
	r, backend := newTestRenderer(t)
	backend.FailCompile[PhongProgramKey] = "expected ';'"

	c, err := NewCube(r, mgl32.Vec3{1, 1, 1}, 0, demoLighting())

	assert.Nil(t, c)
	var compileErr *shader.ShaderCompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, PhongProgramKey, compileErr.Key)
	assert.Empty(t, backend.Programs)
	assert.Empty(t, backend.Buffers, "no vertex buffer without a program")
}

func TestShaderLayoutMatchesMesh(t *testing.T) {
	vs, err := shader.NewShader(PhongProgramKey, shader.ShaderTypeVertex, PhongSource)
	require.NoError(t, err)
	require.Len(t, vs.VertexLayouts(), 1)

	fromShader := renderer.LayoutFromShader(vs.VertexLayouts()[0])
	fromMesh := vertexLayout(mesh.Layout())

	assert.True(t, fromShader.Equal(fromMesh))
	assert.Equal(t, uint64(32), fromMesh.Stride)
	assert.Equal(t, uint64(0), fromMesh.Attributes[0].Offset)
	assert.Equal(t, uint64(12), fromMesh.Attributes[1].Offset)
	assert.Equal(t, uint64(24), fromMesh.Attributes[2].Offset)
}

func TestPhongUniformLayout(t *testing.T) {
	vs, err := shader.NewShader(PhongProgramKey, shader.ShaderTypeVertex, PhongSource)
	require.NoError(t, err)
	layouts := vs.UniformLayouts()
	require.Len(t, layouts, 1)
	assert.Equal(t, uint64(256), layouts[0].Size)

	for name, offset := range map[string]int{
		"model": 0, "view": 64, "projection": 128,
		"light": 192, "lightPos": 208, "viewPos": 224, "coral": 240,
	} {
		assert.Equal(t, offset, vs.UniformLocation(name), name)
	}
	assert.Equal(t, -1, vs.UniformLocation("shininess"))

	block := shader.NewUniformBlock(layouts[0])
	assert.Equal(t, 7, FaceUniforms{}.Write(block))
}

func TestFaceUniformsSkipUndeclaredNames(t *testing.T) {
	const partial = `
struct Partial { coral: vec3<f32>, model: mat4x4<f32> };
@group(0) @binding(0) var<uniform> u: Partial;
@vertex fn vs() -> @builtin(position) vec4<f32> { return u.model * vec4<f32>(u.coral, 1.0); }
`
	vs, err := shader.NewShader("partial", shader.ShaderTypeVertex, partial)
	require.NoError(t, err)
	block := shader.NewUniformBlock(vs.UniformLayouts()[0])

	written := FaceUniforms{Model: mgl32.Ident4(), Coral: mgl32.Vec3{1, 2, 3}}.Write(block)

	assert.Equal(t, 2, written)
	assert.Equal(t, []float32{1, 2, 3}, floatsAt(block.Bytes(), 0, 3))
}

func TestTranslateComposes(t *testing.T) {
	r, _ := newTestRenderer(t)
	c, err := NewCube(r, mgl32.Vec3{1, 1, 1}, 0, demoLighting())
	require.NoError(t, err)

	c.Translate(1, 0, 0)
	c.Translate(0, 2, 0)

	t1 := mgl32.Translate3D(1, 0, 0)
	t2 := mgl32.Translate3D(0, 2, 0)
	assert.Equal(t, t2.Mul4(t1).Mul4(mgl32.Ident4()), c.Model())
	assert.Equal(t, mgl32.Vec3{1, 2, 0}, c.Model().Col(3).Vec3())
}

func TestRotateThenTranslateComposes(t *testing.T) {
	r, _ := newTestRenderer(t)
	c, err := NewCube(r, mgl32.Vec3{1, 1, 1}, 0, demoLighting())
	require.NoError(t, err)

	c.Rotate(mgl32.DegToRad(90), 0, 1, 0)
	c.Translate(1, 0, 0)

	// M = R * T, so the translation is rotated into -Z.
	pos := c.Model().Col(3).Vec3()
	assert.InDelta(t, 0, pos.X(), 1e-6)
	assert.InDelta(t, 0, pos.Y(), 1e-6)
	assert.InDelta(t, -1, pos.Z(), 1e-6)

	before := c.Model()
	c.Rotate(1, 0, 0, 0)
	assert.Equal(t, before, c.Model(), "zero axis is ignored")
}

func TestDrawOutsideFrameUnbindsProgram(t *testing.T) {
	r, _ := newTestRenderer(t)
	c, err := NewCube(r, mgl32.Vec3{1, 1, 1}, 0, demoLighting())
	require.NoError(t, err)

	err = c.Draw(camera.NewCamera())

	require.ErrorIs(t, err, renderer.ErrFrameNotStarted)
	assert.Contains(t, err.Error(), "front face")
	assert.ErrorIs(t, r.UploadUniforms(nil), renderer.ErrNoProgramBound)
}

func TestDrawBindsTexture(t *testing.T) {
	r, backend := newTestRenderer(t)
	tex, err := r.CreateTexture("checker", common.TextureStagingData{Pixels: make([]byte, 4), Width: 1, Height: 1}, &common.NearestSampler)
	require.NoError(t, err)
	c, err := NewCube(r, mgl32.Vec3{1, 1, 1}, tex, demoLighting())
	require.NoError(t, err)
	assert.Equal(t, tex, c.Texture())

	require.NoError(t, r.BeginFrame())
	require.NoError(t, c.Draw(camera.NewCamera()))
	for _, d := range backend.Draws {
		assert.Equal(t, tex, d.Texture)
	}
}

func TestReleaseFreesBuffer(t *testing.T) {
	r, backend := newTestRenderer(t)
	c, err := NewCube(r, mgl32.Vec3{1, 1, 1}, 0, demoLighting())
	require.NoError(t, err)
	require.Len(t, backend.Buffers, 1)
	for _, data := range backend.Buffers {
		assert.Len(t, data, mesh.VertexCount*mesh.FloatsPerVertex*4)
	}

	c.Release()
	c.Release()

	assert.Empty(t, backend.Buffers)
	_, ok := r.Program(PhongProgramKey)
	assert.True(t, ok, "program stays cached")
}

func TestBuilderOptions(t *testing.T) {
	r, _ := newTestRenderer(t)
	c, err := NewCube(r, mgl32.Vec3{1, 1, 1}, 0, demoLighting(),
		WithAspect(2),
		WithClipPlanes(0.5, 10),
		WithLabel("box"),
	)
	require.NoError(t, err)
	impl := c.(*cubeImpl)
	assert.Equal(t, float32(2), impl.aspect)
	assert.Equal(t, float32(0.5), impl.near)
	assert.Equal(t, float32(10), impl.far)
	assert.Equal(t, "box", impl.label)

	c, err = NewCube(r, mgl32.Vec3{1, 1, 1}, 0, demoLighting(), WithAspect(-1), WithClipPlanes(1, 0.5))
	require.NoError(t, err)
	impl = c.(*cubeImpl)
	assert.Equal(t, DefaultAspect, impl.aspect)
	assert.Equal(t, DefaultNear, impl.near)
	assert.Equal(t, DefaultFar, impl.far)
}

func TestSetAspect(t *testing.T) {
	r, _ := newTestRenderer(t)
	c, err := NewCube(r, mgl32.Vec3{1, 1, 1}, 0, demoLighting())
	require.NoError(t, err)
	impl := c.(*cubeImpl)

	c.SetAspect(4.0 / 3.0)
	assert.Equal(t, float32(4.0/3.0), impl.aspect)
	c.SetAspect(0)
	assert.Equal(t, float32(4.0/3.0), impl.aspect, "non-positive aspect ignored")
}
