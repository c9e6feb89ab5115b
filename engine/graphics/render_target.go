package graphics

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
)

// RenderTarget owns an off-screen color or depth texture that can be rendered into and then
// sampled. BeginRender/EndRender pairs nest: each EndRender restores the target that was
// active at the matching BeginRender.
type RenderTarget struct {
	r       renderer.Renderer
	h       renderer.TargetHandle
	tex     renderer.TextureHandle
	width   uint32
	height  uint32
	format  renderer.TextureFormat
	label   string
	clear   common.Color
	restore []renderer.TargetHandle
}

// RenderTargetBuilderOption is a functional option applied to a render target during
// construction via NewRenderTarget.
type RenderTargetBuilderOption func(*RenderTarget)

// WithClearColor sets the color BeginRender clears to. Defaults to opaque black.
func WithClearColor(c common.Color) RenderTargetBuilderOption {
	return func(t *RenderTarget) {
		t.clear = c
	}
}

// WithLabel sets the debug label of the target.
func WithLabel(label string) RenderTargetBuilderOption {
	return func(t *RenderTarget) {
		t.label = label
	}
}

// NewRenderTarget creates an off-screen target. Color formats get their own depth buffer;
// renderer.TextureFormatDepth32 creates a depth-only target whose depth is sampled, as used
// by shadow maps. It panics on failure.
//
// Parameters:
//   - r: the renderer that owns the target
//   - width: the target width in pixels
//   - height: the target height in pixels
//   - format: the texture format
//   - opts: builder options such as WithClearColor
//
// Returns:
//   - *RenderTarget: the new target
func NewRenderTarget(r renderer.Renderer, width, height uint32, format renderer.TextureFormat, opts ...RenderTargetBuilderOption) *RenderTarget {
	t := &RenderTarget{
		r:      r,
		format: format,
		label:  "Render Target",
		clear:  common.ColorBlack,
	}
	for _, opt := range opts {
		opt(t)
	}
	if err := t.create(width, height); err != nil {
		panic(fmt.Sprintf("graphics: %v", err))
	}
	return t
}

func (t *RenderTarget) create(width, height uint32) error {
	h, tex, err := t.r.CreateRenderTarget(renderer.RenderTargetDesc{
		Label:  t.label,
		Width:  width,
		Height: height,
		Format: t.format,
	})
	if err != nil {
		return fmt.Errorf("failed to create render target %q (%dx%d): %w", t.label, width, height, err)
	}
	t.h, t.tex, t.width, t.height = h, tex, width, height
	return nil
}

// BeginRender makes this target active and clears it. The previously active target is
// remembered for EndRender. It panics outside of a frame.
func (t *RenderTarget) BeginRender() {
	t.restore = append(t.restore, t.r.RenderTarget())
	t.r.SetRenderTarget(t.h)
	if err := t.r.Clear(t.clear); err != nil {
		panic(fmt.Sprintf("graphics: render target %q: %v", t.label, err))
	}
}

// EndRender restores the target that was active when the matching BeginRender was called.
// It panics without a matching BeginRender.
func (t *RenderTarget) EndRender() {
	n := len(t.restore)
	if n == 0 {
		panic(fmt.Sprintf("graphics: render target %q: EndRender without BeginRender", t.label))
	}
	prev := t.restore[n-1]
	t.restore = t.restore[:n-1]
	t.r.SetRenderTarget(prev)
}

// Rendering reports whether a BeginRender is waiting for its EndRender.
func (t *RenderTarget) Rendering() bool { return len(t.restore) > 0 }

// BindPS attaches the target's texture to a pixel stage slot.
func (t *RenderTarget) BindPS(slot int) {
	t.r.BindTexture(renderer.StagePixel, slot, t.tex)
}

// BindVS attaches the target's texture to a vertex stage slot.
func (t *RenderTarget) BindVS(slot int) {
	t.r.BindTexture(renderer.StageVertex, slot, t.tex)
}

// Handle returns the renderer target handle.
func (t *RenderTarget) Handle() renderer.TargetHandle { return t.h }

// Texture returns the handle used to sample the target.
func (t *RenderTarget) Texture() renderer.TextureHandle { return t.tex }

// RawData returns the sampled texture handle for debug UI previews.
func (t *RenderTarget) RawData() renderer.TextureHandle { return t.tex }

// Size returns the target dimensions in pixels.
func (t *RenderTarget) Size() (width, height uint32) { return t.width, t.height }

// Format returns the target's texture format.
func (t *RenderTarget) Format() renderer.TextureFormat { return t.format }

// Resize recreates the target at a new size. The target must not be rendering.
func (t *RenderTarget) Resize(width, height uint32) {
	if width == t.width && height == t.height {
		return
	}
	if t.Rendering() {
		panic(fmt.Sprintf("graphics: render target %q resized while rendering", t.label))
	}
	t.r.DestroyRenderTarget(t.h)
	if err := t.create(width, height); err != nil {
		panic(fmt.Sprintf("graphics: %v", err))
	}
}

// Terminate releases the target. If it is active, the back buffer becomes active.
func (t *RenderTarget) Terminate() {
	if t == nil || t.h == 0 {
		return
	}
	t.r.DestroyRenderTarget(t.h)
	t.h, t.tex = 0, 0
	t.restore = nil
}
