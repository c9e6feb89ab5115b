// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImportedMaterial represents the light-response properties and texture references of one
// material read from a model file (MTL or glTF).
type ImportedMaterial struct {
	// Name is the material identifier.
	Name string

	// Emissive, Ambient, Diffuse and Specular are the light-response colors.
	Emissive Color
	Ambient  Color
	Diffuse  Color
	Specular Color

	// Shininess is the specular exponent.
	Shininess float32

	// DiffuseTexture, SpecularTexture, NormalTexture and BumpTexture reference the maps
	// used by the material. A nil entry means the map is absent.
	DiffuseTexture  *ImportedTexture
	SpecularTexture *ImportedTexture
	NormalTexture   *ImportedTexture
	BumpTexture     *ImportedTexture
}

// ImportedTexture represents texture data referenced by a model file.
// For embedded textures (GLB), the Data field contains raw image bytes and Path holds a
// synthetic key of the form "<model path>#<name>".
// For external textures, the Path field contains the file path.
type ImportedTexture struct {
	// Name is an identifier for this texture (e.g., "diffuse", "normal").
	Name string

	// Path is the file path for external textures, or the synthetic key for embedded ones.
	Path string

	// Data contains raw image bytes for embedded textures.
	Data []byte

	// MimeType indicates the image format (e.g., "image/png", "image/jpeg").
	MimeType string

	// Width is the texture width in pixels (populated after Decode).
	Width int

	// Height is the texture height in pixels (populated after Decode).
	Height int
}

// Embedded reports whether the texture bytes are carried inline.
func (t *ImportedTexture) Embedded() bool {
	return t != nil && len(t.Data) > 0
}

// DecodeRGBA decodes the texture into an RGBA image.
// Uses either embedded Data bytes or loads from Path on disk.
// Supports PNG, JPEG, BMP, TIFF and WebP.
func (t *ImportedTexture) DecodeRGBA() (*image.RGBA, error) {
	if t == nil {
		return nil, fmt.Errorf("texture is nil")
	}

	var img image.Image
	var err error

	switch {
	case len(t.Data) > 0:
		img, err = decodeImage(bytes.NewReader(t.Data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode embedded image %s: %w", t.Path, err)
		}
	case t.Path != "":
		file, fileErr := os.Open(t.Path)
		if fileErr != nil {
			return nil, fmt.Errorf("failed to open texture file %s: %w", t.Path, fileErr)
		}
		defer file.Close()

		img, err = decodeImage(file)
		if err != nil {
			return nil, fmt.Errorf("failed to decode texture file %s: %w", t.Path, err)
		}
	default:
		return nil, fmt.Errorf("texture has neither data nor path")
	}

	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || bounds.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}

	t.Width = bounds.Dx()
	t.Height = bounds.Dy()
	return rgba, nil
}

// Decode decodes the texture to raw RGBA pixel data.
//
// Returns:
//   - []byte: raw RGBA pixel data (4 bytes per pixel, row-major order)
//   - uint32: texture width in pixels
//   - uint32: texture height in pixels
//   - error: error if decoding fails
func (t *ImportedTexture) Decode() ([]byte, uint32, uint32, error) {
	rgba, err := t.DecodeRGBA()
	if err != nil {
		return nil, 0, 0, err
	}
	return rgba.Pix, uint32(t.Width), uint32(t.Height), nil
}

func decodeImage(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	return img, err
}
