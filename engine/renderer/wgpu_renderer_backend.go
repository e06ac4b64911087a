package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/Carmen-Shannon/tempest/common"
	"github.com/Carmen-Shannon/tempest/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/tempest/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/tempest/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	// uniformAlignment is the WebGPU minUniformBufferOffsetAlignment default, the dynamic offset granularity.
	uniformAlignment = 256

	// maxFanVertices bounds the shared fan index buffer; longer fans are rejected.
	maxFanVertices = 256

	// textureBinding and samplerBinding are the bindings of the texture group.
	textureBinding = 0
	samplerBinding = 1
)

// wgpuProgram holds the GPU objects of one program. The provider owns the uniform ring
// buffer at binding 0 and its bind group.
type wgpuProgram struct {
	key            string
	renderPipeline *wgpu.RenderPipeline
	pipelineLayout *wgpu.PipelineLayout
	layouts        map[int]*wgpu.BindGroupLayout
	modules        []*wgpu.ShaderModule
	uniforms       bind_group_provider.BindGroupProvider

	uniformGroup int
	uniformSize  uint64
	slotStride   uint64
	textureGroup int

	// textureGroups caches one bind group per texture built against this program's layout.
	textureGroups map[TextureHandle]*wgpu.BindGroup
}

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat        *wgpu.TextureFormat
	msaaTexture          *wgpu.Texture
	msaaTextureView      *wgpu.TextureView
	depthTexture         *wgpu.Texture
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode wgpu.PresentMode // defaults to PresentModeFifo (VSync)
	sampleCount MSAASampleCount  // MSAA sample count for the main render pass

	nextHandle uint32
	meshes     map[BufferHandle]bind_group_provider.BindGroupProvider
	textures   map[TextureHandle]bind_group_provider.BindGroupProvider
	programs   map[ProgramHandle]*wgpuProgram

	// fanIndices is the shared triangle-list expansion of the longest supported fan.
	fanIndices *wgpu.Buffer

	// Frame state for batched rendering across multiple draw calls
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

// newWGPURendererBackend creates the instance, surface, adapter, device and the shared
// resources every frame uses: the fan index buffer and the 1x1 white default texture.
func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount) (*wgpuRendererBackendImpl, error) {
	runtime.LockOSThread()
	b := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
		sampleCount: sampleCount,
		nextHandle:  1,
		meshes:      make(map[BufferHandle]bind_group_provider.BindGroupProvider),
		textures:    make(map[TextureHandle]bind_group_provider.BindGroupProvider),
		programs:    make(map[ProgramHandle]*wgpuProgram),
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	b.adapter = a

	limits := wgpu.DefaultLimits()
	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	indices := FanIndices(maxFanVertices)
	b.fanIndices, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Fan Index Buffer",
		Size:  uint64(len(indices) * 4),
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("fan index buffer: %w", err)
	}
	if err := b.queue.WriteBuffer(b.fanIndices, 0, wgpu.ToBytes(indices)); err != nil {
		return nil, fmt.Errorf("fan index buffer: %w", err)
	}

	white := common.TextureStagingData{Pixels: []byte{255, 255, 255, 255}, Width: 1, Height: 1}
	provider, err := b.createTexture("Default White", white, &common.NearestSampler)
	if err != nil {
		return nil, fmt.Errorf("default texture: %w", err)
	}
	b.textures[0] = provider

	return b, nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = &capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	b.releaseTargets()

	count := uint32(b.sampleCount)
	msaaEnabled := count > 1
	if msaaEnabled {
		// The render pass draws into the MSAA texture and resolves into the swapchain view.
		b.msaaTexture, b.msaaTextureView = b.createTarget("MSAA Texture", width, height, count, *b.surfaceFormat)
	}
	// Depth texture sample count must match the color attachment.
	b.depthTexture, b.depthTextureView = b.createTarget("Depth Texture", width, height, count, wgpu.TextureFormatDepth24Plus)

	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       b.msaaTextureView, // nil when MSAA is off; set in BeginFrame
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    storeOp,
				ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
}

// createTarget creates a render attachment texture and its view. Failure here means the
// device is lost, which the renderer cannot recover from.
func (b *wgpuRendererBackendImpl) createTarget(label string, width, height int, samples uint32, format wgpu.TextureFormat) (*wgpu.Texture, *wgpu.TextureView) {
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   samples,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(fmt.Sprintf("renderer: %s: %v", label, err))
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		panic(fmt.Sprintf("renderer: %s view: %v", label, err))
	}
	return tex, view
}

func (b *wgpuRendererBackendImpl) releaseTargets() {
	for _, v := range []*wgpu.TextureView{b.msaaTextureView, b.depthTextureView} {
		if v != nil {
			v.Release()
		}
	}
	for _, t := range []*wgpu.Texture{b.msaaTexture, b.depthTexture} {
		if t != nil {
			t.Release()
		}
	}
	b.msaaTexture, b.msaaTextureView = nil, nil
	b.depthTexture, b.depthTextureView = nil, nil
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	case PresentModeVSync:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

func (b *wgpuRendererBackendImpl) handle() uint32 {
	h := b.nextHandle
	b.nextHandle++
	return h
}

func (b *wgpuRendererBackendImpl) CreateVertexBuffer(label string, data []byte) (BufferHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label + " Vertex Buffer",
		Size:  uint64(len(data)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return 0, err
	}
	if err := b.queue.WriteBuffer(buf, 0, data); err != nil {
		buf.Release()
		return 0, err
	}

	h := BufferHandle(b.handle())
	b.meshes[h] = bind_group_provider.NewBindGroupProvider(label, bind_group_provider.WithVertexBuffer(buf))
	return h, nil
}

func (b *wgpuRendererBackendImpl) ReleaseBuffer(h BufferHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if p, ok := b.meshes[h]; ok {
		p.Release()
		delete(b.meshes, h)
	}
}

func (b *wgpuRendererBackendImpl) CreateTexture(label string, data common.TextureStagingData, sampler *common.SamplerStagingData) (TextureHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	provider, err := b.createTexture(label, data, sampler)
	if err != nil {
		return 0, err
	}
	h := TextureHandle(b.handle())
	b.textures[h] = provider
	return h, nil
}

// createTexture uploads the pixels and creates the sampler. The bind group is built per
// program on first use, since it depends on the program's layout.
func (b *wgpuRendererBackendImpl) createTexture(label string, data common.TextureStagingData, sampler *common.SamplerStagingData) (bind_group_provider.BindGroupProvider, error) {
	provider := bind_group_provider.NewBindGroupProvider(label)

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     label + " Texture",
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              data.Width,
			Height:             data.Height,
			DepthOrArrayLayers: 1,
		},
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, err
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		data.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  data.Width * 4,
			RowsPerImage: data.Height,
		},
		&wgpu.Extent3D{
			Width:              data.Width,
			Height:             data.Height,
			DepthOrArrayLayers: 1,
		},
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, err
	}
	provider.SetTexture(textureBinding, tex, view)

	sd := sampler.Resolve(common.DefaultSampler)
	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         label + " Sampler",
		AddressModeU:  sd.AddressModeU,
		AddressModeV:  sd.AddressModeV,
		AddressModeW:  sd.AddressModeW,
		MagFilter:     sd.MagFilter,
		MinFilter:     sd.MinFilter,
		MipmapFilter:  sd.MipmapFilter,
		LodMinClamp:   sd.LodMinClamp,
		LodMaxClamp:   sd.LodMaxClamp,
		MaxAnisotropy: sd.MaxAnisotropy,
	})
	if err != nil {
		provider.Release()
		return nil, err
	}
	provider.SetSampler(samplerBinding, samp)
	return provider, nil
}

func (b *wgpuRendererBackendImpl) ReleaseTexture(h TextureHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.textures[h]
	if !ok || h == 0 {
		return
	}
	for _, prog := range b.programs {
		if bg, ok := prog.textureGroups[h]; ok {
			bg.Release()
			delete(prog.textureGroups, h)
		}
	}
	p.Release()
	delete(b.textures, h)
}

func (b *wgpuRendererBackendImpl) CreateProgram(p pipeline.Pipeline) (ProgramHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)
	prog := &wgpuProgram{
		key:           p.PipelineKey(),
		layouts:       make(map[int]*wgpu.BindGroupLayout),
		uniformGroup:  -1,
		textureGroup:  -1,
		textureGroups: make(map[TextureHandle]*wgpu.BindGroup),
	}

	vs, err := b.device.CreateShaderModule(vertexShader.Module())
	if err != nil {
		return 0, shader.NewCompileError(vertexShader.Key(), shader.ShaderTypeVertex, err)
	}
	prog.modules = append(prog.modules, vs)
	fs := vs
	if fragmentShader.Source() != vertexShader.Source() {
		fs, err = b.device.CreateShaderModule(fragmentShader.Module())
		if err != nil {
			prog.release()
			return 0, shader.NewCompileError(fragmentShader.Key(), shader.ShaderTypeFragment, err)
		}
		prog.modules = append(prog.modules, fs)
	}

	if ul, ok := p.UniformLayout(); ok {
		prog.uniformGroup = ul.Group
		prog.uniformSize = ul.Size
		prog.slotStride = (ul.Size + uniformAlignment - 1) / uniformAlignment * uniformAlignment
	}

	merged := mergeBindGroupLayouts(vertexShader.BindGroupLayoutDescriptors(), fragmentShader.BindGroupLayoutDescriptors())
	maxGroup := -1
	for g, desc := range merged {
		maxGroup = max(maxGroup, g)
		for i, e := range desc.Entries {
			if g == prog.uniformGroup && e.Buffer.Type == wgpu.BufferBindingTypeUniform {
				desc.Entries[i].Buffer.HasDynamicOffset = true
			}
			if e.Texture.SampleType != wgpu.TextureSampleTypeUndefined {
				prog.textureGroup = g
			}
		}
	}
	bindGroupLayouts := make([]*wgpu.BindGroupLayout, maxGroup+1)
	for g, desc := range merged {
		layout, layoutErr := b.device.CreateBindGroupLayout(&desc)
		if layoutErr != nil {
			prog.release()
			return 0, fmt.Errorf("failed to create bind group layout for group %d: %w", g, layoutErr)
		}
		prog.layouts[g] = layout
		bindGroupLayouts[g] = layout
	}

	prog.pipelineLayout, err = b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: bindGroupLayouts,
	})
	if err != nil {
		prog.release()
		return 0, err
	}

	depthCompare := wgpu.CompareFunctionLess
	if !p.DepthTestEnabled() {
		depthCompare = wgpu.CompareFunctionAlways
	}
	prog.renderPipeline, err = b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: prog.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint(),
			Buffers:    vertexShader.VertexLayouts(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentShader.EntryPoint(),
			Targets: []wgpu.ColorTargetState{{
				Format:    *b.surfaceFormat,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			// Fans are expanded to lists through the fan index buffer.
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: p.DepthWriteEnabled(),
			DepthCompare:      depthCompare,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
	})
	if err != nil {
		prog.release()
		return 0, shader.NewCompileError(p.PipelineKey(), shader.ShaderTypeFragment, err)
	}

	if prog.uniformGroup >= 0 {
		if err := b.createUniformRing(prog, p.UniformSlots()); err != nil {
			prog.release()
			return 0, err
		}
	}

	h := ProgramHandle(b.handle())
	b.programs[h] = prog
	return h, nil
}

// createUniformRing allocates slots*slotStride bytes and binds one slot-sized window of it,
// moved per draw with a dynamic offset.
func (b *wgpuRendererBackendImpl) createUniformRing(prog *wgpuProgram, slots int) error {
	prog.uniforms = bind_group_provider.NewBindGroupProvider(prog.key + " Uniforms")

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: prog.key + " Uniform Ring",
		Size:  prog.slotStride * uint64(slots),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	prog.uniforms.SetBuffer(0, buf)

	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  prog.key + " Uniform Bind Group",
		Layout: prog.layouts[prog.uniformGroup],
		Entries: []wgpu.BindGroupEntry{{
			Binding: 0,
			Buffer:  buf,
			Offset:  0,
			Size:    prog.uniformSize,
		}},
	})
	if err != nil {
		return err
	}
	prog.uniforms.SetBindGroup(bg)
	return nil
}

func (b *wgpuRendererBackendImpl) ReleaseProgram(h ProgramHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if prog, ok := b.programs[h]; ok {
		prog.release()
		delete(b.programs, h)
	}
}

func (prog *wgpuProgram) release() {
	for h, bg := range prog.textureGroups {
		bg.Release()
		delete(prog.textureGroups, h)
	}
	if prog.uniforms != nil {
		prog.uniforms.Release()
	}
	if prog.renderPipeline != nil {
		prog.renderPipeline.Release()
	}
	if prog.pipelineLayout != nil {
		prog.pipelineLayout.Release()
	}
	for _, l := range prog.layouts {
		l.Release()
	}
	for _, m := range prog.modules {
		m.Release()
	}
}

func (b *wgpuRendererBackendImpl) WriteUniforms(program ProgramHandle, slot int, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	prog, ok := b.programs[program]
	if !ok || prog.uniforms == nil {
		return fmt.Errorf("program %d: %w", program, ErrUnknownHandle)
	}
	return b.writeBuffers([]bind_group_provider.BufferWrite{{
		Provider: prog.uniforms,
		Binding:  0,
		Offset:   uint64(slot) * prog.slotStride,
		Data:     data,
	}})
}

func (b *wgpuRendererBackendImpl) writeBuffers(writes []bind_group_provider.BufferWrite) error {
	var errs []error
	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			errs = append(errs, fmt.Errorf("%s binding %d: no buffer", w.Provider.Label(), w.Binding))
			continue
		}
		if w.End() > buf.GetSize() {
			errs = append(errs, fmt.Errorf("%s binding %d: write past end %d > %d", w.Provider.Label(), w.Binding, w.End(), buf.GetSize()))
			continue
		}
		if err := b.queue.WriteBuffer(buf, w.Offset, w.Data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	// With MSAA the swapchain view is the resolve target, otherwise the color attachment itself.
	if b.sampleCount > 1 {
		b.renderPassDescriptor.ColorAttachments[0].ResolveTarget = view
	} else {
		b.renderPassDescriptor.ColorAttachments[0].View = view
	}

	b.frameEncoder = encoder
	b.framePass = encoder.BeginRenderPass(b.renderPassDescriptor)
	b.frameSurface = surfaceTexture
	b.frameView = view
	return nil
}

func (b *wgpuRendererBackendImpl) Draw(cmd DrawCommand) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return ErrFrameNotStarted
	}
	prog, ok := b.programs[cmd.Program]
	if !ok {
		return fmt.Errorf("program %d: %w", cmd.Program, ErrUnknownHandle)
	}
	mesh, ok := b.meshes[cmd.VertexBuffer]
	if !ok {
		return fmt.Errorf("buffer %d: %w", cmd.VertexBuffer, ErrUnknownHandle)
	}

	// Everything that can fail is resolved before the first pass command is recorded.
	var fanCount uint32
	if cmd.Topology == TopologyTriangleFan {
		n, err := FanIndexCount(cmd.Count, maxFanVertices)
		if err != nil {
			return err
		}
		fanCount = n
	}
	var textureGroup *wgpu.BindGroup
	if prog.textureGroup >= 0 {
		bg, err := b.textureBindGroup(prog, cmd.Texture)
		if err != nil {
			return err
		}
		textureGroup = bg
	}

	b.framePass.SetPipeline(prog.renderPipeline)
	if prog.uniformGroup >= 0 && cmd.UniformSlot >= 0 {
		offset := uint32(uint64(cmd.UniformSlot) * prog.slotStride)
		b.framePass.SetBindGroup(uint32(prog.uniformGroup), prog.uniforms.BindGroup(), []uint32{offset})
	}
	if textureGroup != nil {
		b.framePass.SetBindGroup(uint32(prog.textureGroup), textureGroup, nil)
	}
	b.framePass.SetVertexBuffer(0, mesh.VertexBuffer(), 0, wgpu.WholeSize)

	switch cmd.Topology {
	case TopologyTriangleFan:
		b.framePass.SetIndexBuffer(b.fanIndices, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		b.framePass.DrawIndexed(fanCount, 1, 0, int32(cmd.First), 0)
	default:
		b.framePass.Draw(cmd.Count, 1, cmd.First, 0)
	}
	return nil
}

// textureBindGroup returns the program's bind group for a texture, building it on first use.
func (b *wgpuRendererBackendImpl) textureBindGroup(prog *wgpuProgram, h TextureHandle) (*wgpu.BindGroup, error) {
	if bg, ok := prog.textureGroups[h]; ok {
		return bg, nil
	}
	tex, ok := b.textures[h]
	if !ok {
		return nil, fmt.Errorf("texture %d: %w", h, ErrUnknownHandle)
	}
	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  prog.key + " " + tex.Label() + " Bind Group",
		Layout: prog.layouts[prog.textureGroup],
		Entries: []wgpu.BindGroupEntry{
			{Binding: textureBinding, TextureView: tex.TextureView(textureBinding)},
			{Binding: samplerBinding, Sampler: tex.Sampler(samplerBinding)},
		},
	})
	if err != nil {
		return nil, err
	}
	prog.textureGroups[h] = bg
	return bg, nil
}

func (b *wgpuRendererBackendImpl) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}
	b.framePass.End()
	b.framePass.Release()
	b.framePass = nil

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err == nil {
		b.queue.Submit(commandBuffer)
		commandBuffer.Release()
	}
	b.frameEncoder.Release()
	b.frameEncoder = nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}
	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for h, prog := range b.programs {
		prog.release()
		delete(b.programs, h)
	}
	for h, p := range b.meshes {
		p.Release()
		delete(b.meshes, h)
	}
	for h, p := range b.textures {
		p.Release()
		delete(b.textures, h)
	}
	if b.fanIndices != nil {
		b.fanIndices.Release()
		b.fanIndices = nil
	}
	b.releaseTargets()
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// mergeBindGroupLayouts combines the vertex and fragment bind group layout descriptors into
// the set used by one pipeline layout. Entries declared by both stages at the same binding
// have their visibility ORed; entries are sorted by binding.
//
// Parameters:
//   - vertexLayouts: bind group layout descriptors from the vertex shader
//   - fragmentLayouts: bind group layout descriptors from the fragment shader
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: the merged descriptors keyed by group index
func mergeBindGroupLayouts(vertexLayouts, fragmentLayouts map[int]wgpu.BindGroupLayoutDescriptor) map[int]wgpu.BindGroupLayoutDescriptor {
	merged := make(map[int]wgpu.BindGroupLayoutDescriptor)

	byGroup := make(map[int]map[uint32]wgpu.BindGroupLayoutEntry)
	for _, layouts := range []map[int]wgpu.BindGroupLayoutDescriptor{vertexLayouts, fragmentLayouts} {
		for g, desc := range layouts {
			if byGroup[g] == nil {
				byGroup[g] = make(map[uint32]wgpu.BindGroupLayoutEntry)
			}
			for _, e := range desc.Entries {
				if existing, ok := byGroup[g][e.Binding]; ok {
					existing.Visibility |= e.Visibility
					byGroup[g][e.Binding] = existing
					continue
				}
				byGroup[g][e.Binding] = e
			}
		}
	}

	for g, entryMap := range byGroup {
		entries := make([]wgpu.BindGroupLayoutEntry, 0, len(entryMap))
		for _, e := range entryMap {
			entries = append(entries, e)
		}
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Binding < entries[j].Binding
		})
		merged[g] = wgpu.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("group %d", g),
			Entries: entries,
		}
	}
	return merged
}
