package shader

import (
	"github.com/Carmen-Shannon/tempest/common"
	"github.com/go-gl/mathgl/mgl32"
)

// UniformBlock is the CPU-side image of one uniform struct, written member by member and
// uploaded as a whole with Bytes.
type UniformBlock struct {
	layout UniformLayout
	data   []byte
}

// NewUniformBlock allocates a zeroed block sized for the layout.
//
// Parameters:
//   - layout: the uniform layout parsed from a shader
//
// Returns:
//   - *UniformBlock: the zeroed block
func NewUniformBlock(layout UniformLayout) *UniformBlock {
	return &UniformBlock{
		layout: layout,
		data:   make([]byte, layout.Size),
	}
}

// Location returns the byte offset of a member, or -1 if the struct does not declare it.
func (b *UniformBlock) Location(name string) int {
	f, ok := b.layout.Field(name)
	if !ok {
		return -1
	}
	return int(f.Offset)
}

// SetMat4 writes a 4x4 matrix member in column-major order.
//
// Parameters:
//   - name: the member name
//   - m: the matrix value
//
// Returns:
//   - bool: false, leaving the block unchanged, if the member is undeclared or not a mat4x4
func (b *UniformBlock) SetMat4(name string, m mgl32.Mat4) bool {
	return b.put(name, 64, m[:])
}

// SetVec3 writes a vec3 member.
//
// Parameters:
//   - name: the member name
//   - v: the vector value
//
// Returns:
//   - bool: false, leaving the block unchanged, if the member is undeclared or not a vec3
func (b *UniformBlock) SetVec3(name string, v mgl32.Vec3) bool {
	return b.put(name, 12, v[:])
}

// SetFloat writes a scalar f32 member. It returns false on an undeclared or mistyped member.
func (b *UniformBlock) SetFloat(name string, v float32) bool {
	return b.put(name, 4, []float32{v})
}

func (b *UniformBlock) put(name string, size uint64, values []float32) bool {
	f, ok := b.layout.Field(name)
	if !ok || f.Size != size {
		return false
	}
	common.PutFloat32s(b.data[f.Offset:], values)
	return true
}

// Bytes returns the block contents. The slice aliases the block and is overwritten by the
// next Set call.
func (b *UniformBlock) Bytes() []byte {
	return b.data
}

// Layout returns the layout the block was built from.
func (b *UniformBlock) Layout() UniformLayout {
	return b.layout
}
