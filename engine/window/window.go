package window

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/cogentcore/webgpu/wgpu"
)

// MouseButton identifies a mouse button in mouse button callbacks.
type MouseButton int

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
)

// Window is the OS window the renderer presents to. It runs the platform message loop and
// forwards input to registered callbacks.
//
// Callbacks run on the goroutine that called ProcessMessages. Width, Height, IsRunning and
// RequestClose may be called from any goroutine.
type Window interface {
	// SetUpdateCallback sets the function called once per message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer size changes.
	//
	// Parameters:
	//   - callback: function receiving the new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the function called for mouse wheel events.
	//
	// Parameters:
	//   - callback: function receiving the scroll delta, positive when scrolling up
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the function called when a key is pressed or repeats.
	//
	// Parameters:
	//   - callback: function receiving the key code, see common.Key*
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the function called when a key is released.
	//
	// Parameters:
	//   - callback: function receiving the key code, see common.Key*
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetMouseButtonCallback sets the function called when a mouse button is pressed or released.
	//
	// Parameters:
	//   - callback: function receiving the button, whether it is down and the cursor position
	SetMouseButtonCallback(callback func(button MouseButton, down bool, x, y int32))

	// SetMouseMoveCallback sets the function called when the cursor moves within the window.
	//
	// Parameters:
	//   - callback: function receiving the cursor position in pixels
	SetMouseMoveCallback(callback func(x, y int32))

	// SurfaceDescriptor returns the platform surface descriptor the renderer creates its
	// WebGPU surface from.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the surface descriptor, or nil if the window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning reports whether the message loop should keep running.
	IsRunning() bool

	// RequestClose asks the message loop to stop after its current iteration. The platform window
	// stays alive until Close.
	RequestClose()

	// Close destroys the platform window.
	//
	// Returns:
	//   - error: error if the window was never created or is already closed
	Close() error

	// ProcessMessages runs the message loop until the window is closed or RequestClose is called.
	// It must run on the main goroutine.
	ProcessMessages()

	// Width returns the current framebuffer width in pixels.
	Width() int

	// Height returns the current framebuffer height in pixels.
	Height() int

	// Title returns the title the window was created with.
	Title() string
}

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	title     string
	resizable bool

	maxWidth, maxHeight int
	minWidth, minHeight int

	// framebuffer size, written by the resize callback and read by the render goroutine
	width  atomic.Int64
	height atomic.Int64

	running        atomic.Bool
	internalWindow *glfwWindow

	onUpdate      func()
	onResize      func(width, height int)
	onScroll      func(delta float32)
	onKeyDown     func(keyCode uint32)
	onKeyUp       func(keyCode uint32)
	onMouseButton func(button MouseButton, down bool, x, y int32)
	onMouseMove   func(x, y int32)
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a window. Options are applied over the defaults: a resizable
// 1280x720 window that may be resized between 600x200 and 1600x1200.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the created window
func NewWindow(options ...WindowBuilderOption) Window {
	cfg := &windowConfig{
		title:     "oxy-fx",
		resizable: true,
		maxWidth:  1600,
		maxHeight: 1200,
		minWidth:  600,
		minHeight: 200,
		width:     1280,
		height:    720,
	}
	for _, opt := range options {
		opt(cfg)
	}

	w := &engineWindow{
		title:     cfg.title,
		resizable: cfg.resizable,
		maxWidth:  cfg.maxWidth,
		maxHeight: cfg.maxHeight,
		minWidth:  cfg.minWidth,
		minHeight: cfg.minHeight,
	}
	w.setSize(cfg.width, cfg.height)

	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	w.running.Store(true)
	return w
}

func (w *engineWindow) setSize(width, height int) {
	w.width.Store(int64(width))
	w.height.Store(int64(height))
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.onKeyUp = callback
}

func (w *engineWindow) SetMouseButtonCallback(callback func(button MouseButton, down bool, x, y int32)) {
	w.onMouseButton = callback
}

func (w *engineWindow) SetMouseMoveCallback(callback func(x, y int32)) {
	w.onMouseMove = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return w.running.Load() && platformIsRunningCheck(w)
}

func (w *engineWindow) RequestClose() {
	w.running.Store(false)
}

func (w *engineWindow) Close() error {
	w.running.Store(false)
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if ok := platformProcessMessages(w); !ok {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return int(w.width.Load())
}

func (w *engineWindow) Height() int {
	return int(w.height.Load())
}

func (w *engineWindow) Title() string {
	return w.title
}
