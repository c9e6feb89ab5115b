package debug_ui

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
)

// WidgetKind identifies the widget a Recorder saw.
type WidgetKind string

const (
	KindWindow     WidgetKind = "window"
	KindHeader     WidgetKind = "header"
	KindCheckbox   WidgetKind = "checkbox"
	KindDragFloat  WidgetKind = "drag_float"
	KindDragFloat3 WidgetKind = "drag_float3"
	KindColor      WidgetKind = "color"
	KindCombo      WidgetKind = "combo"
	KindImage      WidgetKind = "image"
	KindText       WidgetKind = "text"
)

// Widget is one recorded widget call. Value holds the widget's value after any scripted edit
// was applied: bool, float32, common.Vector3, common.Color, int, renderer.TextureHandle or string.
type Widget struct {
	Kind  WidgetKind
	Label string
	Value any
}

// Recorder is a UI that records every widget drawn and applies scripted edits, so code that
// draws debug widgets can be tested without a display. Labels are recorded with their PushID
// scopes joined by "/". Every window and header is open unless closed with Collapse.
type Recorder struct {
	Widgets []Widget

	edits     map[string]any
	collapsed map[string]bool
	scope     []string
}

var _ UI = &Recorder{}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		edits:     make(map[string]any),
		collapsed: make(map[string]bool),
	}
}

// Set schedules an edit: the next widget drawn with label takes value and reports a change.
// The value type must match the widget, as listed on Widget.
func (r *Recorder) Set(label string, value any) {
	r.edits[label] = value
}

// Collapse closes a window or header so the widgets under it are skipped.
func (r *Recorder) Collapse(label string) {
	r.collapsed[label] = true
}

// Reset forgets the recorded widgets, keeping pending edits.
func (r *Recorder) Reset() {
	r.Widgets = nil
	r.scope = nil
}

// Find returns the last widget recorded with label.
func (r *Recorder) Find(label string) (Widget, bool) {
	for i := len(r.Widgets) - 1; i >= 0; i-- {
		if r.Widgets[i].Label == label {
			return r.Widgets[i], true
		}
	}
	return Widget{}, false
}

// Labels returns the labels of every widget of kind, in drawing order.
func (r *Recorder) Labels(kind WidgetKind) []string {
	var out []string
	for _, w := range r.Widgets {
		if w.Kind == kind {
			out = append(out, w.Label)
		}
	}
	return out
}

func (r *Recorder) label(label string) string {
	if len(r.scope) == 0 {
		return label
	}
	return strings.Join(r.scope, "/") + "/" + label
}

// edit applies a pending edit for label to v.
func edit[T any](r *Recorder, label string, v *T) bool {
	value, ok := r.edits[label]
	if !ok {
		return false
	}
	typed, ok := value.(T)
	if !ok {
		panic(fmt.Sprintf("debug_ui: edit for %q is %T, widget expects %T", label, value, *v))
	}
	delete(r.edits, label)
	*v = typed
	return true
}

func (r *Recorder) record(kind WidgetKind, label string, value any) {
	r.Widgets = append(r.Widgets, Widget{Kind: kind, Label: label, Value: value})
}

func (r *Recorder) Begin(name string) bool {
	label := r.label(name)
	r.record(KindWindow, label, nil)
	return !r.collapsed[label]
}

func (r *Recorder) End() {}

func (r *Recorder) CollapsingHeader(label string, defaultOpen bool) bool {
	label = r.label(label)
	r.record(KindHeader, label, defaultOpen)
	return !r.collapsed[label]
}

func (r *Recorder) Checkbox(label string, v *bool) bool {
	label = r.label(label)
	changed := edit(r, label, v)
	r.record(KindCheckbox, label, *v)
	return changed
}

func (r *Recorder) DragFloat(label string, v *float32, _, min, max float32) bool {
	label = r.label(label)
	changed := edit(r, label, v)
	if changed {
		*v = common.Clamp(*v, min, max)
	}
	r.record(KindDragFloat, label, *v)
	return changed
}

func (r *Recorder) DragFloat3(label string, v *common.Vector3, _ float32) bool {
	label = r.label(label)
	changed := edit(r, label, v)
	r.record(KindDragFloat3, label, *v)
	return changed
}

func (r *Recorder) ColorEdit4(label string, c *common.Color) bool {
	label = r.label(label)
	changed := edit(r, label, c)
	r.record(KindColor, label, *c)
	return changed
}

func (r *Recorder) Combo(label string, current *int, items []string) bool {
	label = r.label(label)
	changed := edit(r, label, current)
	if changed && (*current < 0 || *current >= len(items)) {
		panic(fmt.Sprintf("debug_ui: combo %q has no item %d", label, *current))
	}
	r.record(KindCombo, label, *current)
	return changed
}

func (r *Recorder) Image(tex renderer.TextureHandle, _, _ float32) {
	r.record(KindImage, r.label("image"), tex)
}

func (r *Recorder) Text(format string, args ...any) {
	r.record(KindText, r.label("text"), fmt.Sprintf(format, args...))
}

func (r *Recorder) PushID(id string) {
	r.scope = append(r.scope, id)
}

func (r *Recorder) PopID() {
	if len(r.scope) > 0 {
		r.scope = r.scope[:len(r.scope)-1]
	}
}
