package resource

import (
	"runtime"

	"github.com/Carmen-Shannon/oxy-fx/engine/loader"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
)

// TextureManagerBuilderOption is a functional option applied to a texture manager during
// construction via NewTextureManager.
type TextureManagerBuilderOption func(*textureManager)

// ModelManagerBuilderOption is a functional option applied to a model manager during
// construction via NewModelManager.
type ModelManagerBuilderOption func(*modelManager)

func defaultWorkers() int {
	return max(1, runtime.NumCPU()-1)
}

// WithMipmaps controls mip chain generation for loaded textures. Enabled by default.
func WithMipmaps(enabled bool) TextureManagerBuilderOption {
	return func(m *textureManager) {
		m.generateMips = enabled
	}
}

// WithTextureFormat sets the GPU format textures are uploaded as. Defaults to
// renderer.TextureFormatRGBA8. Depth formats are rejected by the renderer.
func WithTextureFormat(format renderer.TextureFormat) TextureManagerBuilderOption {
	return func(m *textureManager) {
		m.format = format
	}
}

// WithTextureWorkers sets how many goroutines decode images in LoadTextures.
//
// Parameters:
//   - n: the worker count, values below 1 are ignored
//
// Returns:
//   - TextureManagerBuilderOption: a function that applies the worker count to a texture manager
func WithTextureWorkers(n int) TextureManagerBuilderOption {
	return func(m *textureManager) {
		if n > 0 {
			m.workers = n
		}
	}
}

// WithModelLoader replaces the model decoder, for example to pass loader options such as a
// scale.
func WithModelLoader(l loader.Loader) ModelManagerBuilderOption {
	return func(m *modelManager) {
		if l != nil {
			m.loader = l
		}
	}
}

// WithModelWorkers sets how many goroutines decode models in LoadModels.
func WithModelWorkers(n int) ModelManagerBuilderOption {
	return func(m *modelManager) {
		if n > 0 {
			m.workers = n
		}
	}
}
