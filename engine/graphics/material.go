package graphics

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-fx/common"
)

// MaterialSource is the canonical WGSL definition of the Material struct.
// Matches Material layout exactly (80 bytes, uniform aligned).
//
//go:embed assets/material.wgsl
var MaterialSource string

// Material is the light response of a surface. Size: 80 bytes.
type Material struct {
	Emissive  common.Color // offset  0
	Ambient   common.Color // offset 16
	Diffuse   common.Color // offset 32
	Specular  common.Color // offset 48
	Shininess float32      // offset 64: specular exponent
	_pad      [3]float32   // offset 68: padding to 80 bytes
}

// DefaultMaterial returns a white material with no emission and a shininess of 10.
func DefaultMaterial() Material {
	return Material{
		Emissive:  common.ColorBlack,
		Ambient:   common.ColorWhite,
		Diffuse:   common.ColorWhite,
		Specular:  common.ColorWhite,
		Shininess: 10,
	}
}

// MaterialFromImported converts a material read from a model file. A nil input yields the
// default material.
func MaterialFromImported(m *common.ImportedMaterial) Material {
	if m == nil {
		return DefaultMaterial()
	}
	def := DefaultMaterial()
	return Material{
		Emissive:  m.Emissive,
		Ambient:   common.Coalesce(m.Ambient, def.Ambient),
		Diffuse:   common.Coalesce(m.Diffuse, def.Diffuse),
		Specular:  common.Coalesce(m.Specular, def.Specular),
		Shininess: common.Coalesce(m.Shininess, def.Shininess),
	}
}
