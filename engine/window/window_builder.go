package window

// windowConfig collects the builder options before the platform window is created.
type windowConfig struct {
	title               string
	resizable           bool
	width, height       int
	maxWidth, maxHeight int
	minWidth, minHeight int
}

// WindowBuilderOption is a functional option applied to a window during construction via
// NewWindow.
type WindowBuilderOption func(c *windowConfig)

// WithTitle sets the window title displayed in the title bar.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(c *windowConfig) {
		c.title = title
	}
}

// WithSize sets the initial client area size. Non-positive values keep the default.
//
// Parameters:
//   - width: initial width in pixels
//   - height: initial height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(width, height int) WindowBuilderOption {
	return func(c *windowConfig) {
		if width > 0 {
			c.width = width
		}
		if height > 0 {
			c.height = height
		}
	}
}

// WithMaxSize sets the largest size the user can resize the window to.
func WithMaxSize(width, height int) WindowBuilderOption {
	return func(c *windowConfig) {
		c.maxWidth, c.maxHeight = width, height
	}
}

// WithMinSize sets the smallest size the user can resize the window to.
func WithMinSize(width, height int) WindowBuilderOption {
	return func(c *windowConfig) {
		c.minWidth, c.minHeight = width, height
	}
}

// WithResizable controls whether the user can resize the window. Defaults to true.
func WithResizable(resizable bool) WindowBuilderOption {
	return func(c *windowConfig) {
		c.resizable = resizable
	}
}
