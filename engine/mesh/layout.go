package mesh

const (
	// FloatsPerVertex is the interleaved vertex stride in floats.
	FloatsPerVertex = 8

	// PositionOffset, NormalOffset and TexCoordOffset are attribute offsets in floats.
	PositionOffset = 0
	NormalOffset   = 3
	TexCoordOffset = 6

	floatSize = 4
)

// Attribute describes one vertex attribute in the interleaved buffer.
type Attribute struct {
	// Location is the @location index the attribute binds to.
	Location uint32
	// Components is the number of float32 components.
	Components int
	// Offset is the byte offset within one vertex.
	Offset uint64
}

// VertexLayout is the byte layout of the packed vertex buffer.
type VertexLayout struct {
	Stride     uint64
	Attributes []Attribute
}

// Layout returns the interleaved layout produced by Mesh.Pack: 32-byte stride with
// position, normal and texture coordinate at byte offsets 0, 12 and 24.
//
// Returns:
//   - VertexLayout: the layout shared by every box mesh
func Layout() VertexLayout {
	return VertexLayout{
		Stride: FloatsPerVertex * floatSize,
		Attributes: []Attribute{
			{Location: 0, Components: 3, Offset: PositionOffset * floatSize},
			{Location: 1, Components: 3, Offset: NormalOffset * floatSize},
			{Location: 2, Components: 2, Offset: TexCoordOffset * floatSize},
		},
	}
}
