package common

// Color is a linear RGBA color. It is 16 bytes and maps directly onto a WGSL vec4<f32>.
type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite = Color{1, 1, 1, 1}
	ColorBlack = Color{0, 0, 0, 1}
	ColorGray  = Color{0.5, 0.5, 0.5, 1}
	ColorRed   = Color{1, 0, 0, 1}
	ColorGreen = Color{0, 1, 0, 1}
	ColorBlue  = Color{0, 0, 1, 1}
)

// RGBA returns the color as a float array, the form the debug UI edits.
func (c Color) RGBA() [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}

// ColorFromArray builds a Color from a float array.
func ColorFromArray(v [4]float32) Color {
	return Color{v[0], v[1], v[2], v[3]}
}
