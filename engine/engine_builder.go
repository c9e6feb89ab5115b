package engine

import (
	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/debug_ui"
	"github.com/Carmen-Shannon/oxy-fx/engine/profiler"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/resource"
	"github.com/Carmen-Shannon/oxy-fx/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables frame statistics logging.
//
// Parameters:
//   - enabled: if true, enables the profiler
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled.Store(enabled)
	}
}

// WithProfiler replaces the default profiler, for example to change its sample interval.
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		if p != nil {
			e.profiler = p
		}
	}
}

// WithTickRate sets the fixed update rate in ticks per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.engineTickRate = tickInterval(fps)
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.renderFrameLimit = frameLimit(fps)
	}
}

// WithWindow sets the window the engine presents to and runs the message loop of.
//
// Parameters:
//   - w: a window created with window.NewWindow
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer injects a renderer instead of creating one for the window. With no window the
// engine runs headless and is driven through Step.
//
// Parameters:
//   - r: the renderer to use
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithRendererOptions sets the options the window renderer is created with. Ignored when
// WithRenderer is given.
func WithRendererOptions(options ...renderer.RendererBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.rendererOptions = append(e.rendererOptions, options...)
	}
}

// WithState sets the first state. It is initialized on the first frame.
func WithState(s State) EngineBuilderOption {
	return func(e *engine) {
		e.nextState = s
	}
}

// WithTextureRoot sets the directory texture paths are resolved against.
func WithTextureRoot(root string) EngineBuilderOption {
	return func(e *engine) {
		e.textureRoot = root
	}
}

// WithModelRoot sets the directory model paths are resolved against.
func WithModelRoot(root string) EngineBuilderOption {
	return func(e *engine) {
		e.modelRoot = root
	}
}

// WithTextureOptions sets the options the texture manager is created with.
func WithTextureOptions(options ...resource.TextureManagerBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.textureOptions = append(e.textureOptions, options...)
	}
}

// WithModelOptions sets the options the model manager is created with.
func WithModelOptions(options ...resource.ModelManagerBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.modelOptions = append(e.modelOptions, options...)
	}
}

// WithTextureHotReload watches loaded texture files and reloads changed ones at the start of
// each frame.
func WithTextureHotReload(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.textureHotReload = enabled
	}
}

// WithDebugUI sets the immediate-mode UI states draw their settings into. Defaults to
// debug_ui.Nop, which draws nothing.
func WithDebugUI(ui debug_ui.UI) EngineBuilderOption {
	return func(e *engine) {
		if ui != nil {
			e.ui = ui
		}
	}
}

// WithClearColor sets the back buffer clear color. Defaults to opaque black.
func WithClearColor(c common.Color) EngineBuilderOption {
	return func(e *engine) {
		e.clearColor = c
	}
}
