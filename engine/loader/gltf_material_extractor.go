package loader

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/chewxy/math32"
)

// gltfMaterialExtractorImpl is the implementation of the gltfMaterialExtractor interface.
type gltfMaterialExtractorImpl struct {
	parser gltfParser
	key    string
}

// gltfMaterialExtractor maps glTF metallic-roughness materials onto the engine's
// emissive/ambient/diffuse/specular material model.
type gltfMaterialExtractor interface {
	// ExtractMaterial extracts a single material by index, including references to its textures.
	//
	// Parameters:
	//   - materialIndex: the index of the material in the document
	//
	// Returns:
	//   - *common.ImportedMaterial: the extracted material
	//   - error: error if extraction fails
	ExtractMaterial(materialIndex int) (*common.ImportedMaterial, error)

	// ExtractAllMaterials extracts all materials from the document in document order.
	//
	// Returns:
	//   - []common.ImportedMaterial: all extracted materials
	//   - error: error if extraction fails
	ExtractAllMaterials() ([]common.ImportedMaterial, error)
}

var _ gltfMaterialExtractor = &gltfMaterialExtractorImpl{}

// newGLTFMaterialExtractor creates a material extractor. key prefixes the synthetic paths of
// embedded images so they stay unique across models.
func newGLTFMaterialExtractor(parser gltfParser, key string) gltfMaterialExtractor {
	return &gltfMaterialExtractorImpl{parser: parser, key: key}
}

func (e *gltfMaterialExtractorImpl) ExtractMaterial(materialIndex int) (*common.ImportedMaterial, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errors.New("no document loaded")
	}
	if materialIndex < 0 || materialIndex >= len(doc.Materials) {
		return nil, fmt.Errorf("material index %d out of range", materialIndex)
	}
	mat := &doc.Materials[materialIndex]

	baseColor := common.ColorWhite
	metallic, roughness := float32(1), float32(1)
	var baseTexture *gltfTextureInfo
	if pbr := mat.PbrMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			baseColor = common.ColorFromArray(*pbr.BaseColorFactor)
		}
		if pbr.MetallicFactor != nil {
			metallic = common.Clamp(*pbr.MetallicFactor, 0, 1)
		}
		if pbr.RoughnessFactor != nil {
			roughness = common.Clamp(*pbr.RoughnessFactor, 0, 1)
		}
		baseTexture = pbr.BaseColorTexture
	}

	result := &common.ImportedMaterial{
		Name:      mat.Name,
		Ambient:   baseColor,
		Diffuse:   baseColor,
		Specular:  lerpColor(common.ColorGray, baseColor, metallic),
		Shininess: 1 + (1-roughness)*(1-roughness)*127,
	}
	if mat.EmissiveFactor != nil {
		f := mat.EmissiveFactor
		result.Emissive = common.Color{R: f[0], G: f[1], B: f[2], A: 1}
	}

	var err error
	if baseTexture != nil {
		if result.DiffuseTexture, err = e.loadTexture(baseTexture.Index, "diffuse"); err != nil {
			return nil, fmt.Errorf("material %d base color texture: %w", materialIndex, err)
		}
	}
	if mat.NormalTexture != nil {
		if result.NormalTexture, err = e.loadTexture(mat.NormalTexture.Index, "normal"); err != nil {
			return nil, fmt.Errorf("material %d normal texture: %w", materialIndex, err)
		}
	}
	return result, nil
}

func (e *gltfMaterialExtractorImpl) ExtractAllMaterials() ([]common.ImportedMaterial, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errors.New("no document loaded")
	}
	result := make([]common.ImportedMaterial, 0, len(doc.Materials))
	for i := range doc.Materials {
		mat, err := e.ExtractMaterial(i)
		if err != nil {
			return nil, err
		}
		result = append(result, *mat)
	}
	return result, nil
}

// loadTexture resolves a texture to its image. Images stored in a buffer view or a data URI
// carry their bytes; external images carry only their resolved path.
func (e *gltfMaterialExtractorImpl) loadTexture(textureIndex int, name string) (*common.ImportedTexture, error) {
	doc := e.parser.Document()
	if textureIndex < 0 || textureIndex >= len(doc.Textures) {
		return nil, fmt.Errorf("texture index %d out of range", textureIndex)
	}
	tex := &doc.Textures[textureIndex]
	if tex.Source == nil || *tex.Source < 0 || *tex.Source >= len(doc.Images) {
		return nil, fmt.Errorf("texture %d has no valid image source", textureIndex)
	}
	imageIndex := *tex.Source
	img := &doc.Images[imageIndex]

	result := &common.ImportedTexture{Name: name, MimeType: img.MimeType}
	switch {
	case img.BufferView != nil:
		data, err := e.parser.ReadBufferView(*img.BufferView)
		if err != nil {
			return nil, err
		}
		result.Data = data
		result.Path = e.embeddedKey(img, imageIndex)
	case strings.HasPrefix(img.URI, "data:"):
		data, mimeType, err := decodeDataURI(img.URI)
		if err != nil {
			return nil, err
		}
		result.Data = data
		result.MimeType = common.Coalesce(img.MimeType, mimeType)
		result.Path = e.embeddedKey(img, imageIndex)
	case img.URI != "":
		result.Path = filepath.Join(e.parser.BaseDir(), filepath.FromSlash(img.URI))
	default:
		return nil, fmt.Errorf("image %d has neither bufferView nor uri", imageIndex)
	}
	return result, nil
}

func (e *gltfMaterialExtractorImpl) embeddedKey(img *gltfImage, imageIndex int) string {
	return e.key + "#" + common.Coalesce(img.Name, strconv.Itoa(imageIndex))
}

func lerpColor(a, b common.Color, t float32) common.Color {
	return common.Color{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
		A: math32.Max(a.A, b.A),
	}
}
