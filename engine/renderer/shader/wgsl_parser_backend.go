package shader

import (
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// wgslVertexFormatMap maps WGSL vertex input types to their wgpu vertex format.
var wgslVertexFormatMap = map[string]vertexFormatInfo{
	"f32":       {wgpu.VertexFormatFloat32, 4, 1},
	"vec2f":     {wgpu.VertexFormatFloat32x2, 8, 2},
	"vec2<f32>": {wgpu.VertexFormatFloat32x2, 8, 2},
	"vec3f":     {wgpu.VertexFormatFloat32x3, 12, 3},
	"vec3<f32>": {wgpu.VertexFormatFloat32x3, 12, 3},
	"vec4f":     {wgpu.VertexFormatFloat32x4, 16, 4},
	"vec4<f32>": {wgpu.VertexFormatFloat32x4, 16, 4},
	"u32":       {wgpu.VertexFormatUint32, 4, 1},
	"i32":       {wgpu.VertexFormatSint32, 4, 1},
}

// wgslPrimitiveLayoutMap maps WGSL scalar, vector and matrix type names to their size and
// alignment in the uniform address space.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
var wgslPrimitiveLayoutMap = map[string]wgslTypeLayout{
	"f32":         {4, 4},
	"i32":         {4, 4},
	"u32":         {4, 4},
	"vec2f":       {8, 8},
	"vec2<f32>":   {8, 8},
	"vec3f":       {12, 16},
	"vec3<f32>":   {12, 16},
	"vec4f":       {16, 16},
	"vec4<f32>":   {16, 16},
	"mat3x3f":     {48, 16},
	"mat3x3<f32>": {48, 16},
	"mat4x4f":     {64, 16},
	"mat4x4<f32>": {64, 16},
}

// componentsByFormat maps a vertex format back to its float/int component count.
var componentsByFormat = func() map[wgpu.VertexFormat]int {
	out := make(map[wgpu.VertexFormat]int, len(wgslVertexFormatMap))
	for _, info := range wgslVertexFormatMap {
		out[info.format] = info.components
	}
	return out
}()

// FormatComponents returns the number of components in a vertex format, or 0 if the
// format is not one the parser produces.
func FormatComponents(format wgpu.VertexFormat) int {
	return componentsByFormat[format]
}

// roundUpAlign rounds value up to the next multiple of alignment (a power of two).
func roundUpAlign(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// structLayout computes member offsets plus the total size and alignment of a struct,
// resolving members typed as previously computed structs through known.
//
// Parameters:
//   - ps: the parsed struct
//   - known: layouts of structs resolved so far
//
// Returns:
//   - []UniformField: member placements in declaration order
//   - wgslTypeLayout: the struct's rounded size and alignment
//   - bool: false if any member type is unknown
func structLayout(ps parsedStruct, known map[string]wgslTypeLayout) ([]UniformField, wgslTypeLayout, bool) {
	fields := make([]UniformField, 0, len(ps.fields))
	offset := uint64(0)
	maxAlign := uint64(1)

	for _, f := range ps.fields {
		if f.isBuiltin {
			continue
		}
		layout, ok := wgslPrimitiveLayoutMap[f.typeName]
		if !ok {
			layout, ok = known[f.typeName]
		}
		if !ok {
			return nil, wgslTypeLayout{}, false
		}

		offset = roundUpAlign(layout.align, offset)
		fields = append(fields, UniformField{
			Name:   f.name,
			Type:   f.typeName,
			Offset: offset,
			Size:   layout.size,
		})
		offset += layout.size
		maxAlign = max(maxAlign, layout.align)
	}

	return fields, wgslTypeLayout{roundUpAlign(maxAlign, offset), maxAlign}, true
}

// resolveStructs computes the layout of every struct, iterating until nested struct
// members stop resolving.
func resolveStructs(structs []parsedStruct) (map[string]wgslTypeLayout, map[string][]UniformField) {
	sizes := make(map[string]wgslTypeLayout, len(structs))
	members := make(map[string][]UniformField, len(structs))
	remaining := append([]parsedStruct(nil), structs...)

	for len(remaining) > 0 {
		next := remaining[:0]
		for _, ps := range remaining {
			fields, layout, ok := structLayout(ps, sizes)
			if !ok {
				next = append(next, ps)
				continue
			}
			sizes[ps.name] = layout
			members[ps.name] = fields
		}
		if len(next) == len(remaining) {
			break
		}
		remaining = next
	}
	return sizes, members
}

// classifyResource creates a bind group layout entry for a declared resource from its
// address space and type.
//
// Parameters:
//   - binding: the binding index from @binding(N)
//   - visibility: the declaring shader stage
//   - addressSpace: "uniform", "storage, ..." or empty for handle types
//   - typeName: the WGSL type, e.g. "FaceUniforms", "texture_2d<f32>", "sampler"
//
// Returns:
//   - wgpu.BindGroupLayoutEntry: the populated entry
func classifyResource(binding uint32, visibility wgpu.ShaderStage, addressSpace, typeName string) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: visibility,
	}

	switch {
	case addressSpace == "uniform":
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
	case strings.HasPrefix(addressSpace, "storage"):
		entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
		if strings.Contains(addressSpace, "read_write") {
			entry.Buffer.Type = wgpu.BufferBindingTypeStorage
		}
	case typeName == "sampler":
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	case strings.HasPrefix(typeName, "texture_2d"):
		entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
		entry.Texture.ViewDimension = wgpu.TextureViewDimension2D
	}
	return entry
}

// stripComments removes line (//) and nested block (/* */) comments from WGSL source.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		if i+1 < len(source) {
			pair := source[i : i+2]
			switch {
			case pair == "/*":
				depth++
				i++
				continue
			case pair == "*/" && depth > 0:
				depth--
				i++
				continue
			case pair == "//" && depth == 0:
				for i < len(source) && source[i] != '\n' {
					i++
				}
				if i < len(source) {
					sb.WriteByte('\n')
				}
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}

// isVertexInputStruct reports whether a struct has @location members and no @builtin
// members, which separates vertex inputs from vertex outputs carrying @builtin(position).
func isVertexInputStruct(ps parsedStruct) bool {
	hasLocation := false
	for _, f := range ps.fields {
		if f.isBuiltin {
			return false
		}
		if f.location >= 0 {
			hasLocation = true
		}
	}
	return hasLocation
}

// buildVertexBufferLayout converts a vertex input struct into a tightly packed
// wgpu.VertexBufferLayout. It returns false when a member type has no vertex format.
func buildVertexBufferLayout(ps parsedStruct) (wgpu.VertexBufferLayout, bool) {
	attrs := make([]wgpu.VertexAttribute, 0, len(ps.fields))
	var offset uint64

	for _, f := range ps.fields {
		info, ok := wgslVertexFormatMap[f.typeName]
		if !ok {
			return wgpu.VertexBufferLayout{}, false
		}
		attrs = append(attrs, wgpu.VertexAttribute{
			Format:         info.format,
			Offset:         offset,
			ShaderLocation: uint32(f.location),
		})
		offset += info.size
	}

	return wgpu.VertexBufferLayout{
		ArrayStride: offset,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}, true
}

// splitAtTopLevelCommas splits a struct body at commas outside angle brackets, so that
// array<T, N> stays one field.
func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
