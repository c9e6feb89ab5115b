package graphics

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
)

// noCopy marks a struct that must not be copied after first use (reported by go vet copylocks).
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Texture owns one sampled GPU texture. Textures are held by pointer and never copied;
// ownership only moves.
type Texture struct {
	noCopy noCopy

	r      renderer.Renderer
	h      renderer.TextureHandle
	width  uint32
	height uint32
	label  string
}

// NewTexture uploads a texture. It panics on failure.
//
// Parameters:
//   - r: the renderer that owns the texture
//   - desc: the pixel data, one entry per mip level
//
// Returns:
//   - *Texture: the uploaded texture
func NewTexture(r renderer.Renderer, desc renderer.TextureDesc) *Texture {
	t := &Texture{r: r}
	if err := t.Replace(desc); err != nil {
		panic(fmt.Sprintf("graphics: %v", err))
	}
	return t
}

// Replace uploads new pixel data in place of the current texture. Used for hot reload; on
// failure the current texture is kept.
func (t *Texture) Replace(desc renderer.TextureDesc) error {
	h, err := t.r.CreateTexture(desc)
	if err != nil {
		return fmt.Errorf("failed to create texture %q: %w", desc.Label, err)
	}
	if t.h != 0 {
		t.r.DestroyTexture(t.h)
	}
	t.h, t.width, t.height, t.label = h, desc.Width, desc.Height, desc.Label
	return nil
}

// BindVS attaches the texture to a vertex stage slot.
func (t *Texture) BindVS(slot int) {
	t.r.BindTexture(renderer.StageVertex, slot, t.h)
}

// BindPS attaches the texture to a pixel stage slot.
func (t *Texture) BindPS(slot int) {
	t.r.BindTexture(renderer.StagePixel, slot, t.h)
}

// UnbindPS clears a pixel stage texture slot.
func UnbindPS(r renderer.Renderer, slot int) {
	r.UnbindTexture(renderer.StagePixel, slot)
}

// UnbindVS clears a vertex stage texture slot.
func UnbindVS(r renderer.Renderer, slot int) {
	r.UnbindTexture(renderer.StageVertex, slot)
}

// Size returns the texture dimensions in pixels.
func (t *Texture) Size() (width, height uint32) { return t.width, t.height }

// Label returns the label the texture was created with.
func (t *Texture) Label() string { return t.label }

// RawData returns the renderer handle of the texture, the form the debug UI previews.
func (t *Texture) RawData() renderer.TextureHandle { return t.h }

// Terminate releases the texture.
func (t *Texture) Terminate() {
	if t == nil || t.h == 0 {
		return
	}
	t.r.DestroyTexture(t.h)
	t.h = 0
}
