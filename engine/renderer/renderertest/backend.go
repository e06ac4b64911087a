// Package renderertest provides a RendererBackend that records calls instead of talking to a GPU.
package renderertest

import (
	"errors"
	"sync"

	"github.com/Carmen-Shannon/tempest/common"
	"github.com/Carmen-Shannon/tempest/engine/renderer"
	"github.com/Carmen-Shannon/tempest/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/tempest/engine/renderer/shader"
)

// UniformWrite is one recorded WriteUniforms call. Data is a copy.
type UniformWrite struct {
	Program renderer.ProgramHandle
	Slot    int
	Data    []byte
}

// Backend records every call made by a Renderer. The zero value is not usable, use NewBackend.
type Backend struct {
	mu sync.Mutex

	next uint32

	// FailCompile makes CreateProgram return a compile error for the given pipeline keys.
	FailCompile map[string]string

	Programs      map[renderer.ProgramHandle]pipeline.Pipeline
	Buffers       map[renderer.BufferHandle][]byte
	Textures      map[renderer.TextureHandle]common.TextureStagingData
	Samplers      map[renderer.TextureHandle]common.SamplerStagingData
	UniformWrites []UniformWrite
	Draws         []renderer.DrawCommand

	Frames      int
	Presents    int
	Width       int
	Height      int
	PresentMode renderer.PresentMode
	Released    bool

	inFrame bool
}

var _ renderer.RendererBackend = &Backend{}

// NewBackend creates an empty recording backend.
func NewBackend() *Backend {
	return &Backend{
		next:        1,
		FailCompile: make(map[string]string),
		Programs:    make(map[renderer.ProgramHandle]pipeline.Pipeline),
		Buffers:     make(map[renderer.BufferHandle][]byte),
		Textures:    make(map[renderer.TextureHandle]common.TextureStagingData),
		Samplers:    make(map[renderer.TextureHandle]common.SamplerStagingData),
	}
}

func (b *Backend) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Width, b.Height = width, height
}

func (b *Backend) SetPresentMode(mode renderer.PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.PresentMode = mode
}

func (b *Backend) CreateVertexBuffer(_ string, data []byte) (renderer.BufferHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	h := renderer.BufferHandle(b.next)
	b.next++
	b.Buffers[h] = append([]byte(nil), data...)
	return h, nil
}

func (b *Backend) ReleaseBuffer(h renderer.BufferHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.Buffers, h)
}

// CreateTexture records the pixels and the sampler as the GPU backend would resolve it.
func (b *Backend) CreateTexture(_ string, data common.TextureStagingData, sampler *common.SamplerStagingData) (renderer.TextureHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	h := renderer.TextureHandle(b.next)
	b.next++
	b.Textures[h] = data
	b.Samplers[h] = sampler.Resolve(common.DefaultSampler)
	return h, nil
}

func (b *Backend) ReleaseTexture(h renderer.TextureHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.Textures, h)
	delete(b.Samplers, h)
}

func (b *Backend) CreateProgram(p pipeline.Pipeline) (renderer.ProgramHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if msg, ok := b.FailCompile[p.PipelineKey()]; ok {
		return 0, shader.NewCompileError(p.PipelineKey(), shader.ShaderTypeFragment, errors.New(msg))
	}
	h := renderer.ProgramHandle(b.next)
	b.next++
	b.Programs[h] = p
	return h, nil
}

func (b *Backend) ReleaseProgram(h renderer.ProgramHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.Programs, h)
}

func (b *Backend) WriteUniforms(program renderer.ProgramHandle, slot int, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.Programs[program]; !ok {
		return renderer.ErrUnknownHandle
	}
	b.UniformWrites = append(b.UniformWrites, UniformWrite{
		Program: program,
		Slot:    slot,
		Data:    append([]byte(nil), data...),
	})
	return nil
}

func (b *Backend) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inFrame = true
	b.Frames++
	return nil
}

func (b *Backend) Draw(cmd renderer.DrawCommand) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.inFrame {
		return renderer.ErrFrameNotStarted
	}
	b.Draws = append(b.Draws, cmd)
	return nil
}

func (b *Backend) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inFrame = false
}

func (b *Backend) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Presents++
}

func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Released = true
}

// SlotData returns the bytes last written to a program's uniform slot, or nil.
func (b *Backend) SlotData(program renderer.ProgramHandle, slot int) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.UniformWrites) - 1; i >= 0; i-- {
		w := b.UniformWrites[i]
		if w.Program == program && w.Slot == slot {
			return w.Data
		}
	}
	return nil
}

// Reset clears the recorded draws and uniform writes, keeping created resources.
func (b *Backend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Draws = nil
	b.UniformWrites = nil
}
