package engine

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/debug_ui"
	"github.com/Carmen-Shannon/oxy-fx/engine/profiler"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/resource"
	"github.com/Carmen-Shannon/oxy-fx/engine/window"
)

// tickQueueSize bounds how many fixed ticks can wait for the render goroutine. Ticks beyond it
// are dropped while rendering falls behind.
const tickQueueSize = 8

// State is an application screen driven by the engine. Every method runs on the render goroutine,
// so a State may create and bind GPU resources freely.
type State interface {
	// Initialize creates the state's resources. It runs once, before the first Update.
	//
	// Parameters:
	//   - e: the engine, which provides the renderer and the resource managers
	Initialize(e Engine)

	// Terminate releases everything Initialize acquired, including every texture id, before the
	// managers shut down.
	Terminate()

	// Update advances the state by one fixed tick.
	//
	// Parameters:
	//   - deltaTime: the tick length in seconds
	Update(deltaTime float32)

	// Render draws the frame. The back buffer is bound and cleared.
	Render()

	// DebugUI draws the state's tweakable settings into the debug window.
	//
	// Parameters:
	//   - ui: the immediate-mode UI of the current frame
	DebugUI(ui debug_ui.UI)
}

// Resizer is implemented by states that react to back buffer size changes, for example to update
// a camera's aspect ratio.
type Resizer interface {
	Resize(width, height int)
}

// engine implements the Engine interface.
// It runs the tick goroutine and the render goroutine, while the window message loop keeps the
// goroutine that called Run.
type engine struct {
	tickRateChannel chan time.Duration
	tickChannel     chan float32
	resizeChannel   chan [2]int

	running atomic.Bool
	wg      sync.WaitGroup

	quitChannel   chan struct{}
	quitOnce      sync.Once
	terminateOnce sync.Once

	window   window.Window
	renderer renderer.Renderer
	textures resource.TextureManager
	models   resource.ModelManager
	ui       debug_ui.UI

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	engineTickRate   time.Duration
	renderFrameLimit time.Duration
	clearColor       common.Color

	stateMu     sync.Mutex
	state       State
	nextState   State
	initialized bool

	// Pre-creation config collected from builder options
	rendererOptions  []renderer.RendererBuilderOption
	textureOptions   []resource.TextureManagerBuilderOption
	modelOptions     []resource.ModelManagerBuilderOption
	textureRoot      string
	modelRoot        string
	textureHotReload bool
}

// Engine is the composition root. It owns the window, the renderer, the texture and model
// managers and the debug UI, and drives a State with a fixed-rate update and a frame loop.
type Engine interface {
	// Window returns the window, or nil when the engine runs headless.
	Window() window.Window

	// Renderer returns the renderer every effect and primitive is created on.
	Renderer() renderer.Renderer

	// Textures returns the texture manager.
	Textures() resource.TextureManager

	// Models returns the model manager.
	Models() resource.ModelManager

	// SetState schedules a state change. The current state is terminated and the new one
	// initialized at the start of the next frame.
	//
	// Parameters:
	//   - s: the state to switch to
	SetState(s State)

	// State returns the active state, or the scheduled one before the first frame.
	State() State

	// EnableProfiler enables frame statistics logging.
	EnableProfiler()

	// DisableProfiler disables frame statistics logging.
	DisableProfiler()

	// SetTickRate sets the fixed update rate. If the engine is running the change takes effect
	// immediately.
	//
	// Parameters:
	//   - fps: ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetRenderFrameLimit sets an optional render frame rate cap.
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// SetClearColor sets the color the back buffer is cleared to each frame.
	SetClearColor(c common.Color)

	// Resize schedules a back buffer resize for the next frame. The window's resize events are
	// routed here.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// Step runs one update and one frame on the calling goroutine. It serves headless rendering
	// and tests, and must not be mixed with Run.
	//
	// Parameters:
	//   - deltaTime: the update length in seconds
	//
	// Returns:
	//   - error: error if the frame could not be rendered
	Step(deltaTime float32) error

	// Run starts the engine and blocks until the window closes or Quit is called. Everything the
	// engine owns is terminated when it returns.
	Run()

	// Quit signals all engine goroutines to stop. Safe to call multiple times.
	Quit()

	// Terminate releases the state, the managers and the renderer. Run calls it on exit. Safe to
	// call multiple times.
	Terminate()
}

var _ Engine = &engine{}

// NewEngine creates an Engine. Unless WithRenderer is given, a WebGPU renderer is created for
// the window supplied with WithWindow. The texture and model managers are initialized with
// their root directories.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		tickChannel:     make(chan float32, tickQueueSize),
		resizeChannel:   make(chan [2]int, 1),
		quitChannel:     make(chan struct{}),
		ui:              debug_ui.Nop{},
		profiler:        profiler.NewProfiler(),
		engineTickRate:  time.Second / 60,
		clearColor:      common.ColorBlack,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.renderer == nil {
		if e.window == nil {
			panic("engine: a window or a renderer is required")
		}
		e.renderer = renderer.NewRenderer(renderer.BackendTypeWGPU, e.window, e.rendererOptions...)
	}

	e.textures = resource.NewTextureManager(e.renderer, e.textureOptions...)
	e.textures.Initialize(e.textureRoot)
	e.models = resource.NewModelManager(e.modelOptions...)
	e.models.Initialize(e.modelRoot)

	if e.textureHotReload {
		if err := e.textures.WatchTextures(); err != nil {
			common.Logger().Warn("texture hot reload disabled", "error", err)
		}
	}

	if e.window != nil {
		e.window.SetResizeCallback(e.Resize)
	}

	common.Logger().Info("engine created", "tickRate", e.engineTickRate, "headless", e.window == nil)
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Textures() resource.TextureManager {
	return e.textures
}

func (e *engine) Models() resource.ModelManager {
	return e.models
}

func (e *engine) SetState(s State) {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	e.nextState = s
}

func (e *engine) State() State {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	if e.nextState != nil {
		return e.nextState
	}
	return e.state
}

// switchState terminates the current state and initializes the scheduled one. Render goroutine
// only.
func (e *engine) switchState() {
	e.stateMu.Lock()
	next := e.nextState
	e.nextState = nil
	e.stateMu.Unlock()
	if next == nil {
		return
	}

	if e.state != nil && e.initialized {
		e.state.Terminate()
	}
	e.state = next
	e.initialized = false
	e.state.Initialize(e)
	e.initialized = true
	common.Logger().Info("state initialized", "state", fmt.Sprintf("%T", next))
}

func (e *engine) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	// Keep only the newest size.
	select {
	case e.resizeChannel <- [2]int{width, height}:
	default:
		select {
		case <-e.resizeChannel:
		default:
		}
		e.resizeChannel <- [2]int{width, height}
	}
}

// applyResize resizes the back buffer and notifies the state. Render goroutine only.
func (e *engine) applyResize() {
	select {
	case size := <-e.resizeChannel:
		e.renderer.Resize(size[0], size[1])
		if r, ok := e.state.(Resizer); ok {
			r.Resize(size[0], size[1])
		}
		common.Logger().Debug("back buffer resized", "width", size[0], "height", size[1])
	default:
	}
}

func (e *engine) update(dt float32) {
	if e.state != nil {
		e.state.Update(dt)
	}
}

// frame renders one frame of the current state. A frame the surface cannot provide is skipped.
func (e *engine) frame() error {
	e.applyResize()
	if n := e.textures.ReloadChanged(); n > 0 {
		common.Logger().Info("textures reloaded", "count", n)
	}

	if err := e.renderer.BeginFrame(); err != nil {
		return fmt.Errorf("engine: failed to begin frame: %w", err)
	}
	if err := e.renderer.Clear(e.clearColor); err != nil {
		e.renderer.EndFrame()
		return fmt.Errorf("engine: failed to clear back buffer: %w", err)
	}

	if e.state != nil {
		e.state.Render()
		if e.ui.Begin("oxy-fx") {
			e.state.DebugUI(e.ui)
		}
		e.ui.End()
	}

	e.renderer.EndFrame()
	e.renderer.Present()

	if e.profilingEnabled.Load() {
		e.profiler.Tick()
	}
	return nil
}

func (e *engine) Step(deltaTime float32) error {
	e.switchState()
	if e.state == nil {
		return fmt.Errorf("engine: no state set")
	}
	e.update(deltaTime)
	return e.frame()
}

func (e *engine) Run() {
	if e.State() == nil {
		panic("engine: Run called without a state")
	}
	e.running.Store(true)
	e.handle()

	if e.window != nil {
		e.window.ProcessMessages()
		e.signalQuit()
	}
	e.wg.Wait()

	if e.window != nil {
		if err := e.window.Close(); err != nil {
			common.Logger().Warn("failed to close window", "error", err)
		}
	}
}

func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel and stops the window message loop. Uses sync.Once so the
// channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running.Store(false)
		close(e.quitChannel)
		if e.window != nil {
			e.window.RequestClose()
		}
	})
}

// handle launches the tick and render goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(2)
	go e.handleEngine()
	go e.handleRender()
}

// handleEngine runs the fixed-rate tick loop in its own goroutine.
// It measures each tick and queues it for the render goroutine, which owns the state.
// Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			select {
			case e.tickChannel <- dt:
			default:
				common.Logger().Debug("dropping tick, render loop is behind", "deltaTime", dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the frame loop in its own goroutine: pending ticks become State.Update calls,
// then one frame is rendered.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			common.Logger().Error("render goroutine recovered from panic", "panic", r)
			e.signalQuit()
		}
	}()
	defer e.Terminate()

	for {
		frameStart := time.Now()

		select {
		case <-e.quitChannel:
			return
		default:
		}

		e.switchState()
	drain:
		for {
			select {
			case dt := <-e.tickChannel:
				e.update(dt)
			default:
				break drain
			}
		}

		if err := e.frame(); err != nil {
			common.Logger().Debug("frame skipped", "error", err)
		}

		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - time.Since(frameStart); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

func (e *engine) Terminate() {
	e.terminateOnce.Do(func() {
		if e.state != nil && e.initialized {
			e.state.Terminate()
			e.initialized = false
		}
		e.models.Terminate()
		e.textures.Terminate()
		e.renderer.Release()
		common.Logger().Info("engine terminated")
	})
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

func (e *engine) SetTickRate(fps float64) {
	newRate := tickInterval(fps)

	if e.running.Load() {
		// Non-blocking send; a pending update is replaced.
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	e.renderFrameLimit = frameLimit(fps)
}

func (e *engine) SetClearColor(c common.Color) {
	e.clearColor = c
}

func tickInterval(fps float64) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Duration(float64(time.Second) / fps)
}

func frameLimit(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
