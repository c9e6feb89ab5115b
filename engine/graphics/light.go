package graphics

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-fx/common"
)

// DirectionalLightSource is the canonical WGSL definition of the DirectionalLight struct.
// Matches DirectionalLight layout exactly (64 bytes, uniform aligned).
//
//go:embed assets/directional_light.wgsl
var DirectionalLightSource string

// DirectionalLight is an infinitely distant light. Size: 64 bytes.
type DirectionalLight struct {
	Ambient   common.Color   // offset  0: color applied without light contact
	Diffuse   common.Color   // offset 16: base light color
	Specular  common.Color   // offset 32: highlight color
	Direction common.Vector3 // offset 48: direction the light travels
	_pad      float32        // offset 60: padding to 64 bytes
}

// DefaultDirectionalLight returns a white light travelling along +Z.
func DefaultDirectionalLight() DirectionalLight {
	return DirectionalLight{
		Ambient:   common.ColorWhite,
		Diffuse:   common.ColorWhite,
		Specular:  common.ColorWhite,
		Direction: common.Vec3(0, 0, 1),
	}
}

// SetDirection normalizes and stores d.
func (l *DirectionalLight) SetDirection(d common.Vector3) {
	l.Direction = d.Normalize()
}
