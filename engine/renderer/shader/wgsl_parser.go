package shader

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// locationRegex matches @location(N) attributes
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)

	// builtinRegex matches @builtin(...) attributes
	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex matches a struct member: optional attributes, name, colon, type
	fieldRegex = regexp.MustCompile(`(?:@\w+\([^)]*\)\s*)*(\w+)\s*:\s*(.+)`)

	// vertexEntryRegex captures the name of the @vertex function
	vertexEntryRegex = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)

	// fragmentEntryRegex captures the name of the @fragment function
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// bindGroupDeclRegex captures group, binding, optional address space, variable name and type
	// from declarations like: @group(0) @binding(0) var<uniform> u: FaceUniforms;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// parsedSource is everything extracted from one WGSL source for one stage.
type parsedSource struct {
	entryPoint    string
	vertexLayouts []wgpu.VertexBufferLayout
	bindGroups    map[int]wgpu.BindGroupLayoutDescriptor
	varNames      map[int]map[int]string
	uniforms      []UniformLayout
}

// parseSource runs every extraction pass over the source for the given stage.
//
// Parameters:
//   - source: the raw WGSL source
//   - shaderType: the stage whose entry point and visibility apply
//
// Returns:
//   - parsedSource: the extracted metadata
//   - error: ErrMissingEntryPoint or ErrUnresolvedType wrapped with detail
func parseSource(source string, shaderType ShaderType) (parsedSource, error) {
	cleaned := stripComments(source)
	structs := parseStructBlocks(cleaned)

	out := parsedSource{
		entryPoint: parseEntryPoint(cleaned, shaderType),
	}
	if out.entryPoint == "" {
		return out, fmt.Errorf("no %s entry point: %w", shaderType.attribute(), ErrMissingEntryPoint)
	}

	if shaderType == ShaderTypeVertex {
		out.vertexLayouts = parseVertexLayouts(structs)
	}

	var err error
	out.bindGroups, out.varNames, out.uniforms, err = parseBindGroupLayouts(cleaned, structs, shaderType.visibility())
	return out, err
}

// parseVertexLayouts converts every pure vertex input struct (@location members, no @builtin)
// into a wgpu.VertexBufferLayout. Structs containing types with no vertex format are skipped.
//
// Parameters:
//   - structs: the struct blocks of the source
//
// Returns:
//   - []wgpu.VertexBufferLayout: one layout per vertex input struct, in declaration order
func parseVertexLayouts(structs []parsedStruct) []wgpu.VertexBufferLayout {
	var result []wgpu.VertexBufferLayout
	for _, ps := range structs {
		if !isVertexInputStruct(ps) {
			continue
		}
		if layout, ok := buildVertexBufferLayout(ps); ok {
			result = append(result, layout)
		}
	}
	return result
}

// parseBindGroupLayouts extracts all @group(N) @binding(M) declarations and returns them as
// bind group layout descriptors keyed by group, with entries sorted by binding. Buffer
// bindings get MinBindingSize from their resolved struct, and every var<uniform> also yields a
// UniformLayout with its member offsets.
//
// Parameters:
//   - cleaned: WGSL source with comments stripped
//   - structs: the struct blocks of the source
//   - visibility: the stage visibility applied to each entry
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
//   - map[int]map[int]string: variable names keyed by group and binding
//   - []UniformLayout: uniform bindings sorted by group then binding
//   - error: ErrUnresolvedType when a uniform's struct cannot be laid out
func parseBindGroupLayouts(cleaned string, structs []parsedStruct, visibility wgpu.ShaderStage) (map[int]wgpu.BindGroupLayoutDescriptor, map[int]map[int]string, []UniformLayout, error) {
	groups := make(map[int][]wgpu.BindGroupLayoutEntry)
	varNames := make(map[int]map[int]string)
	var uniforms []UniformLayout

	sizes, members := resolveStructs(structs)

	for _, match := range bindGroupDeclRegex.FindAllStringSubmatch(cleaned, -1) {
		group, _ := strconv.Atoi(match[1])
		binding, _ := strconv.Atoi(match[2])
		addressSpace := strings.TrimSpace(match[3])
		varName := match[4]
		typeName := strings.TrimSpace(match[5])

		entry := classifyResource(uint32(binding), visibility, addressSpace, typeName)
		if entry.Buffer.Type != wgpu.BufferBindingTypeUndefined {
			layout, ok := sizes[typeName]
			if !ok {
				layout, ok = wgslPrimitiveLayoutMap[typeName]
			}
			if !ok {
				return nil, nil, nil, fmt.Errorf("binding %s of type %s: %w", varName, typeName, ErrUnresolvedType)
			}
			entry.Buffer.MinBindingSize = layout.size

			if addressSpace == "uniform" {
				uniforms = append(uniforms, UniformLayout{
					Group:   group,
					Binding: binding,
					VarName: varName,
					Type:    typeName,
					Size:    layout.size,
					Fields:  members[typeName],
				})
			}
		}

		groups[group] = append(groups[group], entry)
		if varNames[group] == nil {
			varNames[group] = make(map[int]string)
		}
		varNames[group][binding] = varName
	}

	result := make(map[int]wgpu.BindGroupLayoutDescriptor, len(groups))
	for g, entries := range groups {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Binding < entries[j].Binding
		})
		result[g] = wgpu.BindGroupLayoutDescriptor{Entries: entries}
	}
	sort.Slice(uniforms, func(i, j int) bool {
		if uniforms[i].Group != uniforms[j].Group {
			return uniforms[i].Group < uniforms[j].Group
		}
		return uniforms[i].Binding < uniforms[j].Binding
	})

	return result, varNames, uniforms, nil
}

// parseEntryPoint returns the function name annotated for the given stage, or "".
func parseEntryPoint(cleaned string, shaderType ShaderType) string {
	var re *regexp.Regexp
	switch shaderType {
	case ShaderTypeVertex:
		re = vertexEntryRegex
	case ShaderTypeFragment:
		re = fragmentEntryRegex
	default:
		return ""
	}
	if match := re.FindStringSubmatch(cleaned); match != nil {
		return match[1]
	}
	return ""
}

// parseStructBlocks finds every struct block in the cleaned source and parses its members.
func parseStructBlocks(cleaned string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(cleaned, -1)
	structs := make([]parsedStruct, 0, len(matches))
	for _, match := range matches {
		structs = append(structs, parsedStruct{
			name:   match[1],
			fields: parseStructFields(match[2]),
		})
	}
	return structs
}

// parseStructFields splits a struct body into members, recording @location and @builtin.
//
// Parameters:
//   - body: the content between { and } of a struct declaration
//
// Returns:
//   - []parsedField: the members in declaration order
func parseStructFields(body string) []parsedField {
	parts := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fm := fieldRegex.FindStringSubmatch(part)
		if fm == nil {
			continue
		}

		field := parsedField{
			name:      fm[1],
			typeName:  strings.TrimSpace(fm[2]),
			location:  -1,
			isBuiltin: builtinRegex.MatchString(part),
		}
		if loc := locationRegex.FindStringSubmatch(part); loc != nil {
			field.location, _ = strconv.Atoi(loc[1])
		}
		fields = append(fields, field)
	}
	return fields
}
