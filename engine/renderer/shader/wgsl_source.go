package shader

import (
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// parsedField is a single field of a WGSL struct.
type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

// parsedStruct is a WGSL struct block.
type parsedStruct struct {
	name   string
	fields []parsedField
}

// textureDims maps the sampled texture types engine shaders declare to their view dimension.
var textureDims = map[string]wgpu.TextureViewDimension{
	"texture_2d":             wgpu.TextureViewDimension2D,
	"texture_2d_array":       wgpu.TextureViewDimension2DArray,
	"texture_cube":           wgpu.TextureViewDimensionCube,
	"texture_depth_2d":       wgpu.TextureViewDimension2D,
	"texture_depth_2d_array": wgpu.TextureViewDimension2DArray,
	"texture_depth_cube":     wgpu.TextureViewDimensionCube,
}

var sampleTypes = map[string]wgpu.TextureSampleType{
	"f32": wgpu.TextureSampleTypeFloat,
	"i32": wgpu.TextureSampleTypeSint,
	"u32": wgpu.TextureSampleTypeUint,
}

// classifyResource builds the bind group layout entry for one resource declaration.
//
// Parameters:
//   - binding: the binding index from @binding(N)
//   - visibility: the stage visibility flag
//   - addressSpace: the var<...> qualifier, empty for handle types
//   - typeName: the declared WGSL type
//
// Returns:
//   - wgpu.BindGroupLayoutEntry: the populated layout entry
func classifyResource(binding uint32, visibility wgpu.ShaderStage, addressSpace, typeName string) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: visibility,
	}

	if addressSpace != "" {
		switch {
		case addressSpace == "uniform":
			entry.Buffer.Type = wgpu.BufferBindingTypeUniform
			entry.Buffer.HasDynamicOffset = true
		case strings.HasPrefix(addressSpace, "storage"):
			entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
			entry.Buffer.HasDynamicOffset = true
		}
		return entry
	}

	base, param := splitTypeParams(typeName)
	switch {
	case typeName == "sampler":
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	case typeName == "sampler_comparison":
		entry.Sampler.Type = wgpu.SamplerBindingTypeComparison
	case strings.HasPrefix(base, "texture_depth_"):
		entry.Texture.SampleType = wgpu.TextureSampleTypeDepth
		entry.Texture.ViewDimension = textureDims[base]
	case strings.HasPrefix(base, "texture_"):
		entry.Texture.ViewDimension = textureDims[base]
		entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
		if st, ok := sampleTypes[param]; ok {
			entry.Texture.SampleType = st
		}
	}
	return entry
}

// splitTypeParams splits "texture_2d<f32>" into ("texture_2d", "f32").
func splitTypeParams(typeName string) (string, string) {
	base, params, ok := strings.Cut(typeName, "<")
	if !ok {
		return typeName, ""
	}
	return base, strings.TrimSpace(strings.TrimSuffix(params, ">"))
}

// stripComments removes line comments and (nested) block comments.
func stripComments(source string) string {
	return stripLineComments(stripBlockComments(source))
}

func stripLineComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	for line := range strings.SplitSeq(source, "\n") {
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func stripBlockComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		if i+1 < len(source) {
			switch {
			case source[i] == '/' && source[i+1] == '*':
				depth++
				i++
				continue
			case source[i] == '*' && source[i+1] == '/' && depth > 0:
				depth--
				i++
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}

// isVertexInputStruct reports whether a struct has @location fields and no @builtin fields,
// which separates vertex inputs from stage outputs carrying @builtin(position).
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

// splitAtTopLevelCommas splits at commas outside of angle brackets so array<T, N> stays whole.
func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth, start := 0, 0
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
