package resource

import (
	"fmt"
	"image"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"golang.org/x/image/draw"
)

// decodeTexture decodes an image into an upload descriptor, optionally with a full mip chain.
func decodeTexture(src *common.ImportedTexture, mips bool, format renderer.TextureFormat) (renderer.TextureDesc, error) {
	img, err := src.DecodeRGBA()
	if err != nil {
		return renderer.TextureDesc{}, err
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w == 0 || h == 0 {
		return renderer.TextureDesc{}, fmt.Errorf("image %s is empty", src.Path)
	}

	desc := renderer.TextureDesc{
		Label:  src.Path,
		Width:  uint32(w),
		Height: uint32(h),
		Format: format,
	}
	if mips {
		desc.Mips = buildMipChain(img)
	} else {
		desc.Mips = [][]byte{tightPixels(img)}
	}
	return desc, nil
}

// buildMipChain halves the image until it reaches 1x1. Each level is filtered from the one
// above it.
func buildMipChain(img *image.RGBA) [][]byte {
	levels := [][]byte{tightPixels(img)}
	prev := img
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	for w > 1 || h > 1 {
		w, h = max(1, w/2), max(1, h/2)
		next := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.BiLinear.Scale(next, next.Bounds(), prev, prev.Bounds(), draw.Src, nil)
		levels = append(levels, next.Pix)
		prev = next
	}
	return levels
}

// tightPixels returns the pixel rows without stride padding.
func tightPixels(img *image.RGBA) []byte {
	b := img.Bounds()
	rowBytes := b.Dx() * 4
	if img.Stride == rowBytes && b.Min == (image.Point{}) {
		return img.Pix[:rowBytes*b.Dy()]
	}
	out := make([]byte, 0, rowBytes*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		start := img.PixOffset(b.Min.X, y)
		out = append(out, img.Pix[start:start+rowBytes]...)
	}
	return out
}
