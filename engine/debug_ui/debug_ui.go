// Package debug_ui defines the immediate-mode widget calls that effects and game states use to
// expose their settings. The widget library itself lives outside the engine; anything that
// implements UI can be plugged in.
package debug_ui

import (
	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
)

// UI is one frame of an immediate-mode debug interface. Widgets take a pointer to the value they
// edit and report whether the user changed it this frame.
type UI interface {
	// Begin opens a window. Widgets up to the matching End are placed inside it.
	//
	// Parameters:
	//   - name: the window title, also its identity across frames
	//
	// Returns:
	//   - bool: false when the window is collapsed and its widgets can be skipped
	Begin(name string) bool

	// End closes the window opened by Begin.
	End()

	// CollapsingHeader draws a header that shows or hides the widgets after it.
	//
	// Parameters:
	//   - label: the header text
	//   - defaultOpen: whether the header starts expanded
	//
	// Returns:
	//   - bool: true when the section is expanded
	CollapsingHeader(label string, defaultOpen bool) bool

	// Checkbox edits a bool.
	Checkbox(label string, v *bool) bool

	// DragFloat edits a float by dragging.
	//
	// Parameters:
	//   - label: the widget label
	//   - v: the value to edit
	//   - speed: the change per pixel dragged
	//   - min: the lower bound
	//   - max: the upper bound
	//
	// Returns:
	//   - bool: true when v changed
	DragFloat(label string, v *float32, speed, min, max float32) bool

	// DragFloat3 edits a vector by dragging each component.
	DragFloat3(label string, v *common.Vector3, speed float32) bool

	// ColorEdit4 edits an RGBA color.
	ColorEdit4(label string, c *common.Color) bool

	// Combo picks one entry of items.
	//
	// Parameters:
	//   - label: the widget label
	//   - current: the index of the selected item
	//   - items: the entries to choose from
	//
	// Returns:
	//   - bool: true when the selection changed
	Combo(label string, current *int, items []string) bool

	// Image previews a texture, such as a render target or a shadow map.
	//
	// Parameters:
	//   - tex: the texture to draw
	//   - width: the preview width in pixels
	//   - height: the preview height in pixels
	Image(tex renderer.TextureHandle, width, height float32)

	// Text draws a formatted line.
	Text(format string, args ...any)

	// PushID scopes the labels of the following widgets so repeated labels stay distinct.
	PushID(id string)

	// PopID ends the scope opened by PushID.
	PopID()
}

// Nop is a UI that draws nothing and never reports a change. It is used when no debug interface
// is attached.
type Nop struct{}

var _ UI = Nop{}

func (Nop) Begin(string) bool { return false }
func (Nop) End() {}
func (Nop) CollapsingHeader(string, bool) bool { return false }
func (Nop) Checkbox(string, *bool) bool { return false }
func (Nop) DragFloat(string, *float32, float32, float32, float32) bool { return false }
func (Nop) DragFloat3(string, *common.Vector3, float32) bool { return false }
func (Nop) ColorEdit4(string, *common.Color) bool { return false }
func (Nop) Combo(string, *int, []string) bool { return false }
func (Nop) Image(renderer.TextureHandle, float32, float32) {}
func (Nop) Text(string, ...any) {}
func (Nop) PushID(string) {}
func (Nop) PopID() {}

// BoolFlag edits an int32 shader flag through a checkbox. Any non-zero value shows as checked.
func BoolFlag(ui UI, label string, flag *int32) bool {
	on := *flag != 0
	if !ui.Checkbox(label, &on) {
		return false
	}
	*flag = common.BoolToFlag(on)
	return true
}
