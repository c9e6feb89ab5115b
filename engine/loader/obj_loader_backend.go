package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// objLoaderBackendImpl is the loaderBackend for Wavefront OBJ files. Material libraries named
// by mtllib are read from disk relative to the model's directory.
type objLoaderBackendImpl struct {
	openFile func(path string) (io.ReadCloser, error)
}

var _ loaderBackend = &objLoaderBackendImpl{}

func newOBJLoaderBackend() loaderBackend {
	return &objLoaderBackendImpl{
		openFile: func(path string) (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

func (b *objLoaderBackendImpl) Load(path string) (*ImportedModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	base := filepath.Base(path)
	return b.decode(strings.TrimSuffix(base, filepath.Ext(base)), f, filepath.Dir(path))
}

func (b *objLoaderBackendImpl) LoadReader(name string, r io.Reader, _ Format, baseDir string) (*ImportedModel, error) {
	return b.decode(name, r, baseDir)
}

func (b *objLoaderBackendImpl) decode(name string, r io.Reader, baseDir string) (*ImportedModel, error) {
	meshes, materials, err := newOBJParser(baseDir, b.openFile).parse(r)
	if err != nil {
		return nil, err
	}
	if len(meshes) == 0 {
		return nil, errors.New("obj contains no faces")
	}
	return &ImportedModel{
		Name:      name,
		Meshes:    meshes,
		Materials: materials,
	}, nil
}

// OBJ is conventionally right-handed with +Y up.
func (b *objLoaderBackendImpl) RightHanded() bool {
	return true
}

// OBJ texture coordinates have their origin at the bottom left.
func (b *objLoaderBackendImpl) FlipV() bool {
	return true
}
