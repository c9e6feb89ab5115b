package loader

import (
	"io"
)

// loaderBackend defines the interface implemented by each model file format.
// Backends return geometry in the source file's own coordinate convention; the Loader converts
// it to the engine's space afterwards.
type loaderBackend interface {
	// Load imports a model from a file path. Relative resources (buffers, material libraries,
	// textures) resolve against the file's directory.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *ImportedModel: the imported model data
	//   - error: error if loading fails
	Load(path string) (*ImportedModel, error)

	// LoadReader imports a model from a stream. Relative resources resolve against baseDir.
	//
	// Parameters:
	//   - name: a name for the model, also used to key embedded textures
	//   - r: the reader providing model data
	//   - format: the format of the stream
	//   - baseDir: the directory used for relative resources, may be empty
	//
	// Returns:
	//   - *ImportedModel: the imported model data
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, format Format, baseDir string) (*ImportedModel, error)

	// RightHanded reports whether the format stores right-handed coordinates.
	RightHanded() bool

	// FlipV reports whether the format's texture V axis points up.
	FlipV() bool
}
