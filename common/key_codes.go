package common

// Virtual key codes consumed by the window layer and the demo camera controls.
// Printable keys use their ASCII values, matching GLFW.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyW     = 87
	KeyA     = 65
	KeyS     = 83
	KeyD     = 68
	KeyQ     = 81
	KeyE     = 69
	KeyF     = 70
	KeyM     = 77
	KeyP     = 80
	KeySpace = 32
	KeyEsc   = 256 // GLFW

	Key0 = 48
	Key1 = 49
	Key2 = 50
	Key3 = 51
	Key4 = 52
	Key5 = 53
	Key6 = 54
	Key7 = 55
	Key8 = 56
	Key9 = 57
)

// Non-printable keys (GLFW values).
const (
	KeyRight     = 262
	KeyLeft      = 263
	KeyDown      = 264
	KeyUp        = 265
	KeyLeftShift = 340
)
