package loader

import (
	"io"
)

// gltfLoaderBackendImpl is the loaderBackend for glTF and GLB files. It delegates to the
// gltfImporter for parsing and extraction.
type gltfLoaderBackendImpl struct {
	importer gltfImporter
}

var _ loaderBackend = &gltfLoaderBackendImpl{}

func newGLTFLoaderBackend() loaderBackend {
	return &gltfLoaderBackendImpl{
		importer: newGLTFImporter(),
	}
}

func (b *gltfLoaderBackendImpl) Load(path string) (*ImportedModel, error) {
	return b.importer.Import(path)
}

func (b *gltfLoaderBackendImpl) LoadReader(name string, r io.Reader, format Format, baseDir string) (*ImportedModel, error) {
	return b.importer.ImportReader(name, r, format == FormatGLB, baseDir)
}

// glTF is right-handed with +Y up.
func (b *gltfLoaderBackendImpl) RightHanded() bool {
	return true
}

// glTF UVs already have their origin at the top left.
func (b *gltfLoaderBackendImpl) FlipV() bool {
	return false
}
