package window

import (
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwWindow holds the GLFW window handle.
type glfwWindow struct {
	window *glfw.Window
	closed bool
}

var glfwButtons = map[glfw.MouseButton]MouseButton{
	glfw.MouseButtonLeft:   MouseButtonLeft,
	glfw.MouseButtonRight:  MouseButtonRight,
	glfw.MouseButtonMiddle: MouseButtonMiddle,
}

func boolHint(v bool) int {
	if v {
		return glfw.True
	}
	return glfw.False
}

// newPlatformWindow creates the GLFW window and registers the input callbacks.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
func newPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	// WebGPU owns the surface, GLFW must not create an OpenGL context.
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, boolHint(w.resizable))

	win, err := glfw.CreateWindow(w.Width(), w.Height(), w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create GLFW window: %w", err)
	}
	win.SetSizeLimits(w.minWidth, w.minHeight, w.maxWidth, w.maxHeight)
	w.internalWindow = &glfwWindow{window: win}

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.RequestClose()
			return
		}
		switch action {
		case glfw.Press, glfw.Repeat:
			if w.onKeyDown != nil {
				w.onKeyDown(uint32(key))
			}
		case glfw.Release:
			if w.onKeyUp != nil {
				w.onKeyUp(uint32(key))
			}
		}
	})

	win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		if w.onScroll != nil {
			w.onScroll(float32(yoff))
		}
	})

	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		b, ok := glfwButtons[button]
		if !ok || w.onMouseButton == nil {
			return
		}
		x, y := win.GetCursorPos()
		w.onMouseButton(b, action == glfw.Press, int32(x), int32(y))
	})

	win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		if w.onMouseMove != nil {
			w.onMouseMove(int32(x), int32(y))
		}
	})

	// The framebuffer size is in pixels and differs from the window size on high-DPI displays.
	// The renderer configures the surface in pixels.
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.setSize(width, height)
		if w.onResize != nil {
			w.onResize(width, height)
		}
	})

	fbWidth, fbHeight := win.GetFramebufferSize()
	w.setSize(fbWidth, fbHeight)
	common.Logger().Info("window created", "title", w.title, "width", fbWidth, "height", fbHeight)
	return nil
}

// platformGetSurfaceDescriptor builds the surface descriptor through the wgpuglfw bridge, which
// covers Windows, X11, Wayland and macOS.
func platformGetSurfaceDescriptor(w *engineWindow) *wgpu.SurfaceDescriptor {
	if w.internalWindow == nil || w.internalWindow.closed {
		return nil
	}
	return wgpuglfw.GetSurfaceDescriptor(w.internalWindow.window)
}

func platformIsRunningCheck(w *engineWindow) bool {
	gw := w.internalWindow
	if gw == nil || gw.closed {
		return false
	}
	return !gw.window.ShouldClose()
}

// platformCloseWindow destroys the GLFW window and terminates the GLFW library.
func platformCloseWindow(w *engineWindow) error {
	gw := w.internalWindow
	if gw == nil || gw.closed {
		return fmt.Errorf("window is not open")
	}
	gw.closed = true
	gw.window.Destroy()
	glfw.Terminate()
	common.Logger().Info("window closed", "title", w.title)
	return nil
}

// platformProcessMessages polls pending events without blocking.
func platformProcessMessages(w *engineWindow) bool {
	glfw.PollEvents()
	return w.IsRunning()
}
