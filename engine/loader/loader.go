package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-fx/common"
)

// loader is the implementation of the Loader interface.
type loader struct {
	backends map[Format]loaderBackend

	scale             float32
	convertHandedness bool
	forceTangents     bool
}

// Loader decodes model files into CPU-side ImportedModel data. It has no GPU state and no cache;
// ModelManager owns caching and upload. The format is selected from the file extension.
//
// Every imported mesh is an indexed triangle list in the engine's left-handed space with
// normals and tangents present, generated from the geometry when the source has none.
type Loader interface {
	// Load imports a model file.
	//
	// Parameters:
	//   - path: the file path to the model, .gltf, .glb or .obj
	//
	// Returns:
	//   - *ImportedModel: the decoded model
	//   - error: error if the format is unsupported or decoding fails
	Load(path string) (*ImportedModel, error)

	// LoadReader imports a model from a stream.
	//
	// Parameters:
	//   - name: the model name, also used to key embedded textures
	//   - r: the reader providing model data
	//   - format: the stream format
	//   - baseDir: the directory used to resolve relative resources, may be empty
	//
	// Returns:
	//   - *ImportedModel: the decoded model
	//   - error: error if decoding fails
	LoadReader(name string, r io.Reader, format Format, baseDir string) (*ImportedModel, error)

	// Supports reports whether a file path has a supported model extension.
	//
	// Parameters:
	//   - path: the file path to check
	//
	// Returns:
	//   - bool: true if Load can decode the file
	Supports(path string) bool
}

var _ Loader = &loader{}

// NewLoader creates a Loader for glTF, GLB and OBJ files.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new Loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	gltf := newGLTFLoaderBackend()
	l := &loader{
		backends: map[Format]loaderBackend{
			FormatGLTF: gltf,
			FormatGLB:  gltf,
			FormatOBJ:  newOBJLoaderBackend(),
		},
		scale:             1,
		convertHandedness: true,
	}
	for _, option := range options {
		option(l)
	}
	return l
}

// FormatFromPath returns the format matching a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf":
		return FormatGLTF
	case ".glb":
		return FormatGLB
	case ".obj":
		return FormatOBJ
	default:
		return FormatUnknown
	}
}

func (l *loader) Supports(path string) bool {
	return FormatFromPath(path) != FormatUnknown
}

func (l *loader) Load(path string) (*ImportedModel, error) {
	backend, ok := l.backends[FormatFromPath(path)]
	if !ok {
		return nil, fmt.Errorf("unsupported model format: %s", filepath.Ext(path))
	}

	imported, err := backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	l.finish(imported, backend)

	common.Logger().Debug("model decoded", "path", path, "meshes", len(imported.Meshes), "materials", len(imported.Materials), "vertices", imported.VertexCount())
	return imported, nil
}

func (l *loader) LoadReader(name string, r io.Reader, format Format, baseDir string) (*ImportedModel, error) {
	backend, ok := l.backends[format]
	if !ok {
		return nil, fmt.Errorf("unsupported model format: %s", format)
	}

	imported, err := backend.LoadReader(name, r, format, baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}
	l.finish(imported, backend)
	return imported, nil
}

// finish brings backend output into engine space and fills in missing vertex data.
func (l *loader) finish(m *ImportedModel, backend loaderBackend) {
	flipZ := l.convertHandedness && backend.RightHanded()
	flipV := backend.FlipV()

	for i := range m.Meshes {
		mesh := &m.Meshes[i]
		transformVertices(mesh, l.scale, flipZ, flipV)
		if flipZ {
			reverseWinding(mesh.Indices)
		}
		if !mesh.hasNormals {
			generateNormals(mesh.Vertices, mesh.Indices)
		}
		if !mesh.hasTangents || l.forceTangents {
			generateTangents(mesh.Vertices, mesh.Indices)
		}
		mesh.BoundingMin, mesh.BoundingMax = calculateBounds(mesh.Vertices)
	}
}
