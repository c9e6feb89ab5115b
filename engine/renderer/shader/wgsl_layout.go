package shader

import (
	"strconv"
	"strings"
)

// wgslTypeLayout holds the byte size and alignment of a WGSL type in the uniform address space.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

// wgslPrimitiveLayouts maps the scalar, vector and matrix types used by engine shaders to their
// size and alignment.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
var wgslPrimitiveLayouts = map[string]wgslTypeLayout{
	"f32":  {4, 4},
	"i32":  {4, 4},
	"u32":  {4, 4},
	"bool": {4, 4},

	"vec2<f32>": {8, 8},
	"vec2f":     {8, 8},
	"vec3<f32>": {12, 16},
	"vec3f":     {12, 16},
	"vec4<f32>": {16, 16},
	"vec4f":     {16, 16},

	"vec2<i32>": {8, 8},
	"vec2i":     {8, 8},
	"vec4<i32>": {16, 16},
	"vec4i":     {16, 16},
	"vec4<u32>": {16, 16},
	"vec4u":     {16, 16},

	"mat3x3<f32>": {48, 16},
	"mat3x3f":     {48, 16},
	"mat4x4<f32>": {64, 16},
	"mat4x4f":     {64, 16},
}

func roundUpAlign(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// resolveTypeLayout resolves a primitive, a known struct or a fixed-size array.
func resolveTypeLayout(typeName string, known map[string]wgslTypeLayout) (wgslTypeLayout, bool) {
	if l, ok := wgslPrimitiveLayouts[typeName]; ok {
		return l, true
	}
	if l, ok := known[typeName]; ok {
		return l, true
	}

	inner, ok := strings.CutPrefix(typeName, "array<")
	if !ok || !strings.HasSuffix(inner, ">") {
		return wgslTypeLayout{}, false
	}
	elem, count, ok := strings.Cut(strings.TrimSuffix(inner, ">"), ",")
	if !ok {
		return wgslTypeLayout{}, false
	}
	el, ok := resolveTypeLayout(strings.TrimSpace(elem), known)
	if !ok {
		return wgslTypeLayout{}, false
	}
	n, err := strconv.ParseUint(strings.TrimSpace(count), 10, 64)
	if err != nil {
		return wgslTypeLayout{}, false
	}
	// Uniform arrays use a 16-byte element stride.
	stride := roundUpAlign(max(el.align, 16), el.size)
	return wgslTypeLayout{n * stride, max(el.align, 16)}, true
}

// computeStructLayout places each field at its next aligned offset and rounds the total size
// up to the largest field alignment.
func computeStructLayout(ps parsedStruct, known map[string]wgslTypeLayout) (wgslTypeLayout, bool) {
	offset := uint64(0)
	maxAlign := uint64(1)

	for _, f := range ps.fields {
		if f.isBuiltin {
			continue
		}
		fl, ok := resolveTypeLayout(f.typeName, known)
		if !ok {
			return wgslTypeLayout{}, false
		}
		offset = roundUpAlign(fl.align, offset) + fl.size
		maxAlign = max(maxAlign, fl.align)
	}

	return wgslTypeLayout{roundUpAlign(maxAlign, offset), maxAlign}, true
}

// computeStructSizes resolves every struct, iterating until no more structs can be resolved so
// nested structs may be declared in any order.
func computeStructSizes(structs []parsedStruct) map[string]wgslTypeLayout {
	resolved := make(map[string]wgslTypeLayout, len(structs))
	remaining := append([]parsedStruct(nil), structs...)

	for len(remaining) > 0 {
		next := remaining[:0]
		for _, ps := range remaining {
			if l, ok := computeStructLayout(ps, resolved); ok {
				resolved[ps.name] = l
			} else {
				next = append(next, ps)
			}
		}
		if len(next) == len(remaining) {
			break
		}
		remaining = next
	}
	return resolved
}
