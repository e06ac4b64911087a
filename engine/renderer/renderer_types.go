package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/tempest/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// BufferHandle identifies a vertex buffer owned by the renderer backend. Zero is never valid.
type BufferHandle uint32

// TextureHandle identifies a texture and its sampler. Zero selects the backend's 1x1 white texture.
type TextureHandle uint32

// ProgramHandle identifies a compiled render program. Zero is never valid.
type ProgramHandle uint32

// Topology is the primitive assembly used by a draw.
type Topology int

const (
	// TopologyTriangleList draws independent triangles from every three vertices.
	TopologyTriangleList Topology = iota

	// TopologyTriangleFan draws triangles (0, k, k+1) sharing the first vertex.
	TopologyTriangleFan
)

func (t Topology) String() string {
	switch t {
	case TopologyTriangleList:
		return "triangle-list"
	case TopologyTriangleFan:
		return "triangle-fan"
	default:
		return fmt.Sprintf("Topology(%d)", int(t))
	}
}

// VertexAttribute places one float attribute within an interleaved vertex.
type VertexAttribute struct {
	Location   uint32
	Components int
	Offset     uint64
}

// VertexLayout is the interleaved layout of a vertex buffer as bound for drawing.
type VertexLayout struct {
	Stride     uint64
	Attributes []VertexAttribute
}

// Equal reports whether two layouts have the same stride and the same attributes in order.
func (l VertexLayout) Equal(o VertexLayout) bool {
	if l.Stride != o.Stride || len(l.Attributes) != len(o.Attributes) {
		return false
	}
	for i := range l.Attributes {
		if l.Attributes[i] != o.Attributes[i] {
			return false
		}
	}
	return true
}

// LayoutFromShader converts a vertex buffer layout parsed from WGSL into a VertexLayout.
//
// Parameters:
//   - layout: the layout parsed from a vertex input struct
//
// Returns:
//   - VertexLayout: the equivalent renderer layout
func LayoutFromShader(layout wgpu.VertexBufferLayout) VertexLayout {
	out := VertexLayout{
		Stride:     layout.ArrayStride,
		Attributes: make([]VertexAttribute, 0, len(layout.Attributes)),
	}
	for _, a := range layout.Attributes {
		out.Attributes = append(out.Attributes, VertexAttribute{
			Location:   a.ShaderLocation,
			Components: shader.FormatComponents(a.Format),
			Offset:     a.Offset,
		})
	}
	return out
}

// DrawCommand is one fully resolved draw handed to the backend.
type DrawCommand struct {
	Program      ProgramHandle
	VertexBuffer BufferHandle
	Texture      TextureHandle
	// UniformSlot is the per-frame uniform slot the draw reads, or -1 when the program has no uniforms.
	UniformSlot int
	Topology    Topology
	First       uint32
	Count       uint32
}

// FanIndices expands a triangle fan of n vertices into triangle-list indices (0, k, k+1).
//
// Parameters:
//   - n: the number of fan vertices
//
// Returns:
//   - []uint32: 3*(n-2) indices, or nil when n < 3
func FanIndices(n int) []uint32 {
	if n < 3 {
		return nil
	}
	out := make([]uint32, 0, (n-2)*3)
	for k := 1; k < n-1; k++ {
		out = append(out, 0, uint32(k), uint32(k+1))
	}
	return out
}

// FanIndexCount returns how many indices of a shared fan index buffer, built with
// FanIndices(capacity), a fan of count vertices reads.
//
// Parameters:
//   - count: the number of fan vertices
//   - capacity: the vertex count the index buffer was built for
//
// Returns:
//   - uint32: 3*(count-2)
//   - error: ErrInvalidDrawRange when count < 3 or count > capacity
func FanIndexCount(count, capacity uint32) (uint32, error) {
	if count < 3 {
		return 0, fmt.Errorf("fan of %d vertices: %w", count, ErrInvalidDrawRange)
	}
	if count > capacity {
		return 0, fmt.Errorf("fan of %d vertices exceeds %d: %w", count, capacity, ErrInvalidDrawRange)
	}
	return (count - 2) * 3, nil
}
