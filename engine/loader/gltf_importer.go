package loader

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct{}

// gltfImporter combines the parser and the extractors into a complete ImportedModel.
type gltfImporter interface {
	// Import loads a glTF/GLB file and extracts its meshes and materials.
	//
	// Parameters:
	//   - path: the file path to the glTF or GLB file
	//
	// Returns:
	//   - *ImportedModel: the imported model
	//   - error: error if import fails
	Import(path string) (*ImportedModel, error)

	// ImportReader loads a glTF document from a reader.
	//
	// Parameters:
	//   - name: the model name, used as the embedded texture key prefix
	//   - r: the reader providing glTF JSON or GLB data
	//   - isGLB: true if the reader provides GLB binary data
	//   - baseDir: the directory external buffers and images resolve against
	//
	// Returns:
	//   - *ImportedModel: the imported model
	//   - error: error if import fails
	ImportReader(name string, r io.Reader, isGLB bool, baseDir string) (*ImportedModel, error)
}

var _ gltfImporter = &gltfImporterImpl{}

func newGLTFImporter() gltfImporter {
	return &gltfImporterImpl{}
}

func (imp *gltfImporterImpl) Import(path string) (*ImportedModel, error) {
	parser := newGLTFParser()
	if err := parser.Parse(path); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return imp.importFromParser(parser, path)
}

func (imp *gltfImporterImpl) ImportReader(name string, r io.Reader, isGLB bool, baseDir string) (*ImportedModel, error) {
	parser := newGLTFParser()
	if err := parser.ParseReader(r, isGLB, baseDir); err != nil {
		return nil, fmt.Errorf("failed to parse from reader: %w", err)
	}
	return imp.importFromParser(parser, name)
}

// importFromParser extracts meshes and materials from a parser holding a loaded document.
// key names the model and prefixes embedded texture paths.
func (imp *gltfImporterImpl) importFromParser(parser gltfParser, key string) (*ImportedModel, error) {
	doc := parser.Document()
	if doc == nil {
		return nil, errors.New("no document after parsing")
	}

	meshes, err := newGLTFMeshExtractor(parser).ExtractScene()
	if err != nil {
		return nil, fmt.Errorf("mesh extraction failed: %w", err)
	}

	materials, err := newGLTFMaterialExtractor(parser, key).ExtractAllMaterials()
	if err != nil {
		return nil, fmt.Errorf("material extraction failed: %w", err)
	}
	for i := range meshes {
		if meshes[i].MaterialIndex >= len(materials) {
			meshes[i].MaterialIndex = -1
		}
	}

	return &ImportedModel{
		Name:      gltfExtractModelName(doc, key),
		Meshes:    meshes,
		Materials: materials,
	}, nil
}

// gltfExtractModelName derives a model name from the default scene or a path fallback.
func gltfExtractModelName(doc *gltfDocument, fallback string) string {
	if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
		if name := doc.Scenes[*doc.Scene].Name; name != "" {
			return name
		}
	}
	if fallback != "" {
		base := filepath.Base(fallback)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return "unnamed_model"
}
