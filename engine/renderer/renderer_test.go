package renderer_test

import (
	"testing"

	"github.com/Carmen-Shannon/tempest/common"
	"github.com/Carmen-Shannon/tempest/engine/renderer"
	"github.com/Carmen-Shannon/tempest/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/tempest/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/tempest/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const colorWGSL = `
struct U { color: vec3<f32> };
@group(0) @binding(0) var<uniform> u: U;
struct VIn { @location(0) pos: vec3<f32> };
@vertex fn vs(in: VIn) -> @builtin(position) vec4<f32> { return vec4<f32>(in.pos, 1.0); }
@fragment fn fs() -> @location(0) vec4<f32> { return vec4<f32>(u.color, 1.0); }
`

var posLayout = renderer.VertexLayout{
	Stride:     12,
	Attributes: []renderer.VertexAttribute{{Location: 0, Components: 3, Offset: 0}},
}

func newPipeline(t *testing.T, key string, opts ...pipeline.PipelineBuilderOption) pipeline.Pipeline {
	t.Helper()
	vs, err := shader.NewShader(key, shader.ShaderTypeVertex, colorWGSL)
	require.NoError(t, err)
	fs, err := shader.NewShader(key, shader.ShaderTypeFragment, colorWGSL)
	require.NoError(t, err)
	return pipeline.NewPipeline(key, append([]pipeline.PipelineBuilderOption{
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
	}, opts...)...)
}

func newRenderer(t *testing.T) (renderer.Renderer, *renderertest.Backend) {
	t.Helper()
	backend := renderertest.NewBackend()
	r, err := renderer.NewRenderer(nil, renderer.WithBackend(backend))
	require.NoError(t, err)
	return r, backend
}

// setup creates a program and a buffer of n vertices and binds both with matching attributes.
func setup(t *testing.T, r renderer.Renderer, n int) (renderer.ProgramHandle, renderer.BufferHandle) {
	t.Helper()
	prog, err := r.CreateProgram(newPipeline(t, "color"))
	require.NoError(t, err)
	buf, err := r.CreateVertexBuffer("verts", make([]byte, 12*n))
	require.NoError(t, err)

	require.NoError(t, r.BindVertexBuffer(buf))
	require.NoError(t, r.BindProgram(prog))
	require.NoError(t, r.BindAttributes(posLayout))
	return prog, buf
}

func TestFanIndices(t *testing.T) {
	assert.Nil(t, renderer.FanIndices(2))
	assert.Equal(t, []uint32{0, 1, 2}, renderer.FanIndices(3))
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, renderer.FanIndices(4))

	long := renderer.FanIndices(10)
	assert.Len(t, long, 24)
	assert.Equal(t, renderer.FanIndices(4), long[:6], "shorter fans are a prefix")
}

func TestFanIndexCount(t *testing.T) {
	n, err := renderer.FanIndexCount(4, 256)
	require.NoError(t, err)
	assert.Equal(t, uint32(6), n)
	assert.Len(t, renderer.FanIndices(4), int(n))

	n, err = renderer.FanIndexCount(256, 256)
	require.NoError(t, err)
	assert.Equal(t, uint32(len(renderer.FanIndices(256))), n)

	_, err = renderer.FanIndexCount(257, 256)
	assert.ErrorIs(t, err, renderer.ErrInvalidDrawRange)
	_, err = renderer.FanIndexCount(2, 256)
	assert.ErrorIs(t, err, renderer.ErrInvalidDrawRange)
}

func TestTopologyString(t *testing.T) {
	assert.Equal(t, "triangle-fan", renderer.TopologyTriangleFan.String())
	assert.Equal(t, "triangle-list", renderer.TopologyTriangleList.String())
	assert.Equal(t, "Topology(7)", renderer.Topology(7).String())
}

func TestNewRendererRequiresSurfaceOrBackend(t *testing.T) {
	_, err := renderer.NewRenderer(nil)
	assert.ErrorIs(t, err, renderer.ErrNoSurface)
}

func TestNewRendererAppliesPresentMode(t *testing.T) {
	backend := renderertest.NewBackend()
	_, err := renderer.NewRenderer(nil,
		renderer.WithBackend(backend),
		renderer.WithPresentMode(renderer.PresentModeUncapped),
	)
	require.NoError(t, err)
	assert.Equal(t, renderer.PresentModeUncapped, backend.PresentMode)
}

func TestResizeIgnoresEmptySize(t *testing.T) {
	r, backend := newRenderer(t)

	r.Resize(0, 600)
	assert.Zero(t, backend.Width)

	r.Resize(800, 600)
	assert.Equal(t, 800, backend.Width)
	assert.Equal(t, 600, backend.Height)
}

func TestCreateProgramIsCachedByKey(t *testing.T) {
	r, backend := newRenderer(t)

	a, err := r.CreateProgram(newPipeline(t, "shared"))
	require.NoError(t, err)
	b, err := r.CreateProgram(newPipeline(t, "shared"))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, backend.Programs, 1)

	h, ok := r.Program("shared")
	assert.True(t, ok)
	assert.Equal(t, a, h)
	assert.Equal(t, "shared", r.Pipeline(a).PipelineKey())

	_, ok = r.Program("missing")
	assert.False(t, ok)
	assert.Nil(t, r.Pipeline(99))
}

func TestCreateProgramValidates(t *testing.T) {
	r, backend := newRenderer(t)

	_, err := r.CreateProgram(pipeline.NewPipeline("empty"))
	assert.ErrorIs(t, err, pipeline.ErrMissingShader)
	assert.Empty(t, backend.Programs)
}

func TestCreateProgramCompileError(t *testing.T) {
	r, backend := newRenderer(t)
	backend.FailCompile["broken"] = "unknown identifier"

	_, err := r.CreateProgram(newPipeline(t, "broken"))

	var compileErr *shader.ShaderCompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, "broken", compileErr.Key)
	assert.Contains(t, compileErr.Error(), "unknown identifier")

	_, ok := r.Program("broken")
	assert.False(t, ok, "failed programs are not cached")
}

func TestCreateVertexBufferRejectsEmpty(t *testing.T) {
	r, _ := newRenderer(t)
	_, err := r.CreateVertexBuffer("empty", nil)
	assert.Error(t, err)
}

func TestCreateTextureValidatesStaging(t *testing.T) {
	r, backend := newRenderer(t)

	_, err := r.CreateTexture("short", common.TextureStagingData{Pixels: make([]byte, 4), Width: 2, Height: 2}, &common.NearestSampler)
	assert.Error(t, err)

	h, err := r.CreateTexture("ok", common.TextureStagingData{Pixels: make([]byte, 16), Width: 2, Height: 2}, &common.NearestSampler)
	require.NoError(t, err)
	assert.NotZero(t, h)
	assert.Contains(t, backend.Textures, h)

	require.NoError(t, r.ReleaseTexture(h))
	assert.NotContains(t, backend.Textures, h)
	assert.ErrorIs(t, r.ReleaseTexture(h), renderer.ErrUnknownHandle)
}

func TestCreateTextureSampler(t *testing.T) {
	r, backend := newRenderer(t)
	staging := common.TextureStagingData{Pixels: make([]byte, 4), Width: 1, Height: 1}

	nearest, err := r.CreateTexture("nearest", staging, &common.NearestSampler)
	require.NoError(t, err)
	got := backend.Samplers[nearest]
	assert.Equal(t, wgpu.FilterModeNearest, got.MagFilter)
	assert.Equal(t, wgpu.FilterModeNearest, got.MinFilter)
	assert.Equal(t, wgpu.MipmapFilterModeNearest, got.MipmapFilter)

	def, err := r.CreateTexture("default", staging, nil)
	require.NoError(t, err)
	assert.Equal(t, common.DefaultSampler, backend.Samplers[def])
}

func TestBindingProtocolErrors(t *testing.T) {
	r, _ := newRenderer(t)

	assert.ErrorIs(t, r.BindVertexBuffer(42), renderer.ErrUnknownHandle)
	assert.ErrorIs(t, r.BindProgram(42), renderer.ErrUnknownHandle)
	assert.ErrorIs(t, r.BindTexture(42), renderer.ErrUnknownHandle)
	assert.NoError(t, r.BindTexture(0), "zero is the default texture")
	assert.ErrorIs(t, r.BindAttributes(posLayout), renderer.ErrNoProgramBound)
	assert.ErrorIs(t, r.UploadUniforms(make([]byte, 16)), renderer.ErrNoProgramBound)

	prog, err := r.CreateProgram(newPipeline(t, "color"))
	require.NoError(t, err)
	require.NoError(t, r.BindProgram(prog))
	assert.ErrorIs(t, r.BindAttributes(posLayout), renderer.ErrNoVertexBuffer)
}

func TestDrawRequiresFrame(t *testing.T) {
	r, _ := newRenderer(t)
	setup(t, r, 3)
	require.NoError(t, r.UploadUniforms(make([]byte, 16)))

	assert.ErrorIs(t, r.Draw(renderer.TopologyTriangleList, 0, 3), renderer.ErrFrameNotStarted)

	require.NoError(t, r.BeginFrame())
	assert.ErrorIs(t, r.BeginFrame(), renderer.ErrFrameInProgress)
}

func TestDrawBindingOrder(t *testing.T) {
	r, _ := newRenderer(t)
	prog, err := r.CreateProgram(newPipeline(t, "color"))
	require.NoError(t, err)
	buf, err := r.CreateVertexBuffer("verts", make([]byte, 36))
	require.NoError(t, err)
	require.NoError(t, r.BeginFrame())

	assert.ErrorIs(t, r.Draw(renderer.TopologyTriangleList, 0, 3), renderer.ErrNoProgramBound)

	require.NoError(t, r.BindProgram(prog))
	assert.ErrorIs(t, r.Draw(renderer.TopologyTriangleList, 0, 3), renderer.ErrNoVertexBuffer)

	require.NoError(t, r.BindVertexBuffer(buf))
	assert.ErrorIs(t, r.Draw(renderer.TopologyTriangleList, 0, 3), renderer.ErrAttributesNotBound)

	require.NoError(t, r.BindAttributes(posLayout))
	assert.ErrorIs(t, r.Draw(renderer.TopologyTriangleList, 0, 3), renderer.ErrNoUniforms)

	require.NoError(t, r.UploadUniforms(make([]byte, 16)))
	assert.NoError(t, r.Draw(renderer.TopologyTriangleList, 0, 3))

	r.UnbindProgram()
	assert.ErrorIs(t, r.Draw(renderer.TopologyTriangleList, 0, 3), renderer.ErrNoProgramBound)

	require.NoError(t, r.BindProgram(prog))
	assert.ErrorIs(t, r.Draw(renderer.TopologyTriangleList, 0, 3), renderer.ErrAttributesNotBound, "attributes reset on program bind")
}

func TestBindAttributesLayoutMismatch(t *testing.T) {
	r, _ := newRenderer(t)
	prog, err := r.CreateProgram(newPipeline(t, "color"))
	require.NoError(t, err)
	buf, err := r.CreateVertexBuffer("verts", make([]byte, 36))
	require.NoError(t, err)
	require.NoError(t, r.BindVertexBuffer(buf))
	require.NoError(t, r.BindProgram(prog))

	wide := renderer.VertexLayout{
		Stride:     32,
		Attributes: []renderer.VertexAttribute{{Location: 0, Components: 3, Offset: 0}},
	}
	assert.ErrorIs(t, r.BindAttributes(wide), renderer.ErrVertexLayoutMismatch)

	twoComponents := renderer.VertexLayout{
		Stride:     12,
		Attributes: []renderer.VertexAttribute{{Location: 0, Components: 2, Offset: 0}},
	}
	assert.ErrorIs(t, r.BindAttributes(twoComponents), renderer.ErrVertexLayoutMismatch)
}

func TestDrawRanges(t *testing.T) {
	r, _ := newRenderer(t)
	setup(t, r, 8)
	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.UploadUniforms(make([]byte, 16)))

	tests := []struct {
		name     string
		topology renderer.Topology
		first    uint32
		count    uint32
		wantErr  bool
	}{
		{"fan of four", renderer.TopologyTriangleFan, 4, 4, false},
		{"fan too short", renderer.TopologyTriangleFan, 0, 2, true},
		{"fan past end", renderer.TopologyTriangleFan, 6, 4, true},
		{"list of six", renderer.TopologyTriangleList, 0, 6, false},
		{"list not multiple of three", renderer.TopologyTriangleList, 0, 4, true},
		{"empty list", renderer.TopologyTriangleList, 0, 0, true},
		{"unknown topology", renderer.Topology(9), 0, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Draw(tt.topology, tt.first, tt.count)
			if tt.wantErr {
				assert.ErrorIs(t, err, renderer.ErrInvalidDrawRange)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestUniformSlotsPerDraw(t *testing.T) {
	r, backend := newRenderer(t)
	prog, buf := setup(t, r, 4)
	tex, err := r.CreateTexture("tex", common.TextureStagingData{Pixels: make([]byte, 4), Width: 1, Height: 1}, &common.NearestSampler)
	require.NoError(t, err)
	require.NoError(t, r.BindTexture(tex))
	require.NoError(t, r.BeginFrame())

	for i := 0; i < 3; i++ {
		require.NoError(t, r.UploadUniforms([]byte{byte(i), 0, 0, 0}))
		require.NoError(t, r.Draw(renderer.TopologyTriangleFan, 0, 4))
	}
	r.EndFrame()
	r.Present()

	require.Len(t, backend.Draws, 3)
	for i, d := range backend.Draws {
		assert.Equal(t, i, d.UniformSlot)
		assert.Equal(t, prog, d.Program)
		assert.Equal(t, buf, d.VertexBuffer)
		assert.Equal(t, tex, d.Texture)
		assert.Equal(t, renderer.TopologyTriangleFan, d.Topology)
		assert.Equal(t, []byte{byte(i), 0, 0, 0}, backend.SlotData(prog, i))
	}
	assert.Equal(t, 1, backend.Presents)

	// Slots restart every frame.
	backend.Reset()
	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.UploadUniforms(make([]byte, 16)))
	require.NoError(t, r.Draw(renderer.TopologyTriangleFan, 0, 4))
	require.Len(t, backend.Draws, 1)
	assert.Equal(t, 0, backend.Draws[0].UniformSlot)
}

func TestUploadUniformsLimits(t *testing.T) {
	backend := renderertest.NewBackend()
	r, err := renderer.NewRenderer(nil, renderer.WithBackend(backend))
	require.NoError(t, err)

	prog, err := r.CreateProgram(newPipeline(t, "small", pipeline.WithUniformSlots(2)))
	require.NoError(t, err)
	require.NoError(t, r.BindProgram(prog))
	require.NoError(t, r.BeginFrame())

	assert.ErrorIs(t, r.UploadUniforms(make([]byte, 17)), renderer.ErrUniformSize)
	require.NoError(t, r.UploadUniforms(make([]byte, 16)))
	require.NoError(t, r.UploadUniforms(make([]byte, 16)))
	assert.ErrorIs(t, r.UploadUniforms(make([]byte, 16)), renderer.ErrUniformSlotsExhausted)
}

func TestReleaseBufferUnbinds(t *testing.T) {
	r, backend := newRenderer(t)
	_, buf := setup(t, r, 3)
	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.UploadUniforms(make([]byte, 16)))

	require.NoError(t, r.ReleaseBuffer(buf))
	assert.NotContains(t, backend.Buffers, buf)
	assert.ErrorIs(t, r.Draw(renderer.TopologyTriangleList, 0, 3), renderer.ErrNoVertexBuffer)
	assert.ErrorIs(t, r.ReleaseBuffer(buf), renderer.ErrUnknownHandle)
}

func TestReleaseFreesEverything(t *testing.T) {
	r, backend := newRenderer(t)
	setup(t, r, 3)

	r.Release()

	assert.True(t, backend.Released)
	assert.Empty(t, backend.Programs)
	assert.Empty(t, backend.Buffers)
	_, ok := r.Program("color")
	assert.False(t, ok)
}
