package shader

import (
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

	// fieldRegex matches a struct field: optional attributes, name, colon, type.
	// The type capture is greedy to keep parameterized types like array<T, N> whole.
	fieldRegex = regexp.MustCompile(`(?:(?:@\w+\([^)]*\)\s*)*)*\s*(\w+)\s*:\s*(.+)`)

	// vertexEntryRegex matches @vertex functions and captures the entry point name
	vertexEntryRegex = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)

	// fragmentEntryRegex matches @fragment functions and captures the entry point name
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// bindGroupDeclRegex captures group, binding, optional address space, variable name and type
	// from declarations like: @group(0) @binding(0) var<uniform> transform: Transform;
	// or handle types: @group(1) @binding(0) var diffuseMap: texture_2d<f32>;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// VertexInput is one @location attribute consumed by a vertex entry point.
type VertexInput struct {
	Name     string
	Location uint32
	Type     string
}

// parseVertexInputs collects the attributes of every vertex input struct in the source,
// ordered by location. Shaders with no vertex input structs return nil.
func parseVertexInputs(source string) []VertexInput {
	var inputs []VertexInput
	seen := make(map[int]bool)

	for _, ps := range parseStructBlocks(stripComments(source)) {
		if !isVertexInputStruct(ps) {
			continue
		}
		for _, f := range ps.fields {
			if f.location < 0 || seen[f.location] {
				continue
			}
			seen[f.location] = true
			inputs = append(inputs, VertexInput{Name: f.name, Location: uint32(f.location), Type: f.typeName})
		}
	}

	sort.Slice(inputs, func(i, j int) bool {
		return inputs[i].Location < inputs[j].Location
	})
	return inputs
}

// parseBindGroupLayouts extracts every @group(N) @binding(M) declaration and returns the
// layout descriptors grouped by group index, entries sorted by binding. Uniform buffer entries
// carry the size of the bound struct as MinBindingSize.
//
// Parameters:
//   - source: the WGSL source
//   - visibility: the stage visibility applied to every entry
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: layout descriptors keyed by group index
//   - map[int]map[int]string: variable names keyed by group and binding index
func parseBindGroupLayouts(source string, visibility wgpu.ShaderStage) (map[int]wgpu.BindGroupLayoutDescriptor, map[int]map[int]string) {
	groups := make(map[int][]wgpu.BindGroupLayoutEntry)
	varNames := make(map[int]map[int]string)
	cleaned := stripComments(source)
	structSizes := computeStructSizes(parseStructBlocks(cleaned))

	for _, match := range bindGroupDeclRegex.FindAllStringSubmatch(cleaned, -1) {
		group, _ := strconv.Atoi(match[1])
		binding, _ := strconv.Atoi(match[2])
		addressSpace := strings.TrimSpace(match[3])
		varName := strings.TrimSpace(match[4])
		typeName := strings.TrimSpace(match[5])

		entry := classifyResource(uint32(binding), visibility, addressSpace, typeName)
		if entry.Buffer.Type != wgpu.BufferBindingTypeUndefined {
			if layout, ok := resolveTypeLayout(typeName, structSizes); ok {
				entry.Buffer.MinBindingSize = layout.size
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
	return result, varNames
}

// parseEntryPoint returns the name of the first entry point of the given type, or "".
func parseEntryPoint(source string, shaderType ShaderType) string {
	re := vertexEntryRegex
	if shaderType == ShaderTypeFragment {
		re = fragmentEntryRegex
	}
	if match := re.FindStringSubmatch(stripComments(source)); match != nil {
		return match[1]
	}
	return ""
}

// parseStructBlocks parses every struct block of comment-free source.
func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))
	for _, match := range matches {
		structs = append(structs, parsedStruct{
			name:   match[1],
			fields: parseStructFields(match[2]),
		})
	}
	return structs
}

func parseStructFields(body string) []parsedField {
	lines := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		field := parsedField{location: -1}
		field.isBuiltin = builtinRegex.MatchString(line)
		if m := locationRegex.FindStringSubmatch(line); m != nil {
			if loc, err := strconv.Atoi(m[1]); err == nil {
				field.location = loc
			}
		}

		fm := fieldRegex.FindStringSubmatch(line)
		if fm == nil {
			continue
		}
		field.name = fm[1]
		field.typeName = strings.TrimSpace(fm[2])
		fields = append(fields, field)
	}
	return fields
}
