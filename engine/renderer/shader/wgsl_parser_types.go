package shader

import "github.com/cogentcore/webgpu/wgpu"

// vertexFormatInfo holds the wgpu vertex format, its byte size and component count.
type vertexFormatInfo struct {
	format     wgpu.VertexFormat
	size       uint64
	components int
}

// wgslTypeLayout holds the byte size and alignment for a WGSL host-shareable type.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

// parsedField represents a single field extracted from a WGSL struct during parsing.
type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

// parsedStruct represents a WGSL struct block extracted during parsing.
type parsedStruct struct {
	name   string
	fields []parsedField
}

// UniformField is the byte placement of one member of a uniform struct.
type UniformField struct {
	Name   string
	Type   string
	Offset uint64
	Size   uint64
}

// UniformLayout describes one var<uniform> binding and the placement of its struct members.
type UniformLayout struct {
	Group   int
	Binding int
	VarName string
	Type    string
	// Size is the struct size rounded up to its alignment, the minimum buffer binding size.
	Size   uint64
	Fields []UniformField
}

// Field looks up a member by name.
//
// Parameters:
//   - name: the struct member name
//
// Returns:
//   - UniformField: the member placement
//   - bool: false if the struct has no such member
func (l UniformLayout) Field(name string) (UniformField, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return UniformField{}, false
}
