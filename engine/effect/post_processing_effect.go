package effect

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/debug_ui"
	"github.com/Carmen-Shannon/oxy-fx/engine/graphics"
	"github.com/Carmen-Shannon/oxy-fx/engine/render_object"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"
)

// PostProcessMode selects the screen-space filter of a PostProcessingEffect.
type PostProcessMode int32

const (
	ModeNone PostProcessMode = iota
	ModeMonochrome
	ModeInvert
	ModeMirror
	ModeBlur
	ModeCombine2
	ModeMotionBlur
	ModeChromaticAberration
	ModeWave
	ModeInfrared
	modeCount
)

var modeNames = [modeCount]string{
	"None",
	"Monochrome",
	"Invert",
	"Mirror",
	"Blur",
	"Combine2",
	"MotionBlur",
	"ChromaticAberration",
	"Wave",
	"Infrared",
}

func (m PostProcessMode) String() string {
	if m < 0 || m >= modeCount {
		return fmt.Sprintf("PostProcessMode(%d)", int32(m))
	}
	return modeNames[m]
}

// PostProcessInputs is the number of texture inputs: slot 0 is the scene, slot 1 the texture
// combined with it.
const PostProcessInputs = 2

// postProcessParams mirrors PostProcessParams. Size: 16 bytes.
type postProcessParams struct {
	Mode   int32
	Param0 float32
	Param1 float32
	Param2 float32
}

// postProcessingEffect is the implementation of the PostProcessingEffect interface.
type postProcessingEffect struct {
	r renderer.Renderer

	vs           *graphics.VertexShader
	ps           *graphics.PixelShader
	sampler      *graphics.Sampler
	paramsBuffer *graphics.TypedConstantBuffer[postProcessParams]

	textures [PostProcessInputs]TextureBinder
	mode     PostProcessMode

	mirrorScaleX    float32
	mirrorScaleY    float32
	blurStrength    float32
	combineAlpha    float32
	aberrationValue float32
	waveLength      float32
	numWaves        float32
	heatIntensity   float32
	heatBlur        float32
}

// PostProcessingEffect filters a rendered scene while drawing it as a full-screen quad.
//
// Begin maps the mode to its parameters and uploads them once for the pass. Each mode reads only
// its own parameters:
//   - Mirror: the x and y texture coordinate scales
//   - Blur and MotionBlur: the blur strength in pixels, divided by the back buffer width and height
//   - Combine2: the opacity of input 1 over input 0
//   - ChromaticAberration: the channel offset in texture coordinates
//   - Wave: the wave amplitude in texture coordinates and the number of waves
//   - Infrared: the time, the distortion intensity and the blur strength divided by the width
type PostProcessingEffect interface {
	// Begin binds the pass state and uploads the parameters of the current mode.
	//
	// Parameters:
	//   - time: the running time in seconds, animating the modes that use it
	Begin(time float32)

	// End unbinds every input slot so the inputs can be rendered into again.
	End()

	// Render draws a full-screen quad, typically built with mesh_builder.CreateScreenQuadPX.
	Render(o *render_object.RenderObject)

	// SetTexture sets an input. Nil clears the slot.
	//
	// Parameters:
	//   - tex: the input texture or render target
	//   - slot: the input slot, below PostProcessInputs
	SetTexture(tex TextureBinder, slot int)

	// SetMode selects the filter.
	SetMode(mode PostProcessMode)

	// Mode returns the selected filter.
	Mode() PostProcessMode

	// SetMirrorScale sets the texture coordinate scales of Mirror. -1 flips an axis.
	SetMirrorScale(x, y float32)

	// SetBlurStrength sets the blur radius of Blur and MotionBlur in pixels.
	SetBlurStrength(strength float32)

	// SetCombineAlpha sets the opacity of input 1 in Combine2.
	SetCombineAlpha(alpha float32)

	// SetAberrationValue sets the channel offset of ChromaticAberration.
	SetAberrationValue(value float32)

	// SetWave sets the amplitude and number of waves of Wave.
	SetWave(length, count float32)

	// SetHeat sets the distortion intensity and blur radius in pixels of Infrared.
	SetHeat(intensity, blur float32)

	// DebugUI draws a mode selector and the parameters of the selected mode.
	DebugUI(ui debug_ui.UI)

	// Terminate releases the effect's GPU resources.
	Terminate()
}

var _ PostProcessingEffect = &postProcessingEffect{}

// NewPostProcessingEffect compiles the post processing shaders and creates a point sampler that
// wraps at the edges, so Mirror and Wave sample back into the image.
func NewPostProcessingEffect(r renderer.Renderer) PostProcessingEffect {
	opt := shader.WithStruct("params", "PostProcessParams", postProcessParamsSource)
	e := &postProcessingEffect{
		r:            r,
		vs:           graphics.NewVertexShader(r, "post_processing", postProcessingSource, opt),
		ps:           graphics.NewPixelShader(r, "post_processing", postProcessingSource, opt),
		sampler:      graphics.NewSampler(r, renderer.FilterPoint, renderer.AddressWrap),
		paramsBuffer: graphics.NewTypedConstantBuffer[postProcessParams](r),

		mirrorScaleX:    -1,
		mirrorScaleY:    1,
		blurStrength:    5,
		combineAlpha:    0.5,
		aberrationValue: 0.005,
		waveLength:      0.05,
		numWaves:        10,
		heatIntensity:   1,
		heatBlur:        3,
	}
	common.Logger().Debug("post processing effect initialized")
	return e
}

// params maps the mode to the values the shader reads.
func (e *postProcessingEffect) params(time float32) postProcessParams {
	w, h := e.r.Size()
	width, height := float32(max(w, 1)), float32(max(h, 1))

	p := postProcessParams{Mode: int32(e.mode)}
	switch e.mode {
	case ModeMirror:
		p.Param0 = e.mirrorScaleX
		p.Param1 = e.mirrorScaleY
	case ModeBlur, ModeMotionBlur:
		p.Param0 = e.blurStrength / width
		p.Param1 = e.blurStrength / height
	case ModeCombine2:
		p.Param0 = e.combineAlpha
	case ModeChromaticAberration:
		p.Param0 = e.aberrationValue
		p.Param1 = e.aberrationValue
	case ModeWave:
		p.Param0 = e.waveLength
		p.Param1 = e.numWaves
	case ModeInfrared:
		p.Param0 = time
		p.Param1 = e.heatIntensity
		p.Param2 = e.heatBlur / width
	}
	return p
}

func (e *postProcessingEffect) Begin(time float32) {
	e.vs.Bind()
	e.ps.Bind()
	e.sampler.BindPS(0)

	for slot, tex := range e.textures {
		if tex != nil {
			tex.BindPS(slot)
		}
	}

	e.paramsBuffer.Update(e.params(time))
	e.paramsBuffer.BindPS(0)
}

func (e *postProcessingEffect) End() {
	for slot := range e.textures {
		graphics.UnbindPS(e.r, slot)
	}
}

func (e *postProcessingEffect) Render(o *render_object.RenderObject) {
	o.MeshBuffer.Render()
}

func (e *postProcessingEffect) SetTexture(tex TextureBinder, slot int) {
	if slot < 0 || slot >= PostProcessInputs {
		panic(fmt.Sprintf("effect: PostProcessingEffect has no input slot %d", slot))
	}
	e.textures[slot] = tex
}

func (e *postProcessingEffect) SetMode(mode PostProcessMode) {
	if mode < 0 || mode >= modeCount {
		panic(fmt.Sprintf("effect: invalid post processing mode %d", int32(mode)))
	}
	e.mode = mode
}

func (e *postProcessingEffect) Mode() PostProcessMode {
	return e.mode
}

func (e *postProcessingEffect) SetMirrorScale(x, y float32) {
	e.mirrorScaleX, e.mirrorScaleY = x, y
}

func (e *postProcessingEffect) SetBlurStrength(strength float32) {
	e.blurStrength = strength
}

func (e *postProcessingEffect) SetCombineAlpha(alpha float32) {
	e.combineAlpha = common.Clamp(alpha, 0, 1)
}

func (e *postProcessingEffect) SetAberrationValue(value float32) {
	e.aberrationValue = value
}

func (e *postProcessingEffect) SetWave(length, count float32) {
	e.waveLength, e.numWaves = length, count
}

func (e *postProcessingEffect) SetHeat(intensity, blur float32) {
	e.heatIntensity, e.heatBlur = intensity, blur
}

func (e *postProcessingEffect) DebugUI(ui debug_ui.UI) {
	if !ui.CollapsingHeader("PostProcessingEffect", true) {
		return
	}
	current := int(e.mode)
	if ui.Combo("Mode", &current, modeNames[:]) {
		e.mode = PostProcessMode(current)
	}

	switch e.mode {
	case ModeMirror:
		ui.DragFloat("MirrorScaleX", &e.mirrorScaleX, 0.1, -1, 1)
		ui.DragFloat("MirrorScaleY", &e.mirrorScaleY, 0.1, -1, 1)
	case ModeBlur, ModeMotionBlur:
		ui.DragFloat("BlurStrength", &e.blurStrength, 1, 0, 100)
	case ModeCombine2:
		ui.DragFloat("CombineAlpha", &e.combineAlpha, 0.01, 0, 1)
	case ModeChromaticAberration:
		ui.DragFloat("AberrationValue", &e.aberrationValue, 0.001, 0, 0.1)
	case ModeWave:
		ui.DragFloat("WaveLength", &e.waveLength, 0.001, 0, 0.5)
		ui.DragFloat("NumWaves", &e.numWaves, 1, 0, 100)
	case ModeInfrared:
		ui.DragFloat("HeatIntensity", &e.heatIntensity, 0.1, 0, 10)
		ui.DragFloat("HeatBlur", &e.heatBlur, 1, 0, 100)
	}
}

func (e *postProcessingEffect) Terminate() {
	e.paramsBuffer.Terminate()
	e.sampler.Terminate()
	e.ps.Terminate()
	e.vs.Terminate()
}
