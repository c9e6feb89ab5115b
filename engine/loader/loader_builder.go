package loader

// LoaderBuilderOption is a functional option applied to a loader during construction via NewLoader.
type LoaderBuilderOption func(*loader)

// WithScale sets a uniform scale applied to every imported position.
//
// Parameters:
//   - scale: the scale factor, 1 keeps source units
//
// Returns:
//   - LoaderBuilderOption: a function that applies the scale option to a loader
func WithScale(scale float32) LoaderBuilderOption {
	return func(l *loader) {
		if scale != 0 {
			l.scale = scale
		}
	}
}

// WithHandednessConversion controls the right to left-handed conversion of formats that store
// right-handed data (glTF, OBJ). Enabled by default: Z is negated and triangle winding is
// reversed so front faces stay clockwise.
func WithHandednessConversion(enabled bool) LoaderBuilderOption {
	return func(l *loader) {
		l.convertHandedness = enabled
	}
}

// WithGeneratedTangents forces tangent generation even when the source provides tangents.
func WithGeneratedTangents(force bool) LoaderBuilderOption {
	return func(l *loader) {
		l.forceTangents = force
	}
}
