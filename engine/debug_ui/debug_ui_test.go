package debug_ui_test

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/debug_ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_AppliesEditsOnce(t *testing.T) {
	r := debug_ui.NewRecorder()
	r.Set("Strength", float32(500))
	r.Set("Enabled", false)

	strength := float32(1)
	enabled := true
	assert.True(t, r.DragFloat("Strength", &strength, 0.1, 0, 100))
	assert.Equal(t, float32(100), strength, "drags are clamped to their range")
	assert.True(t, r.Checkbox("Enabled", &enabled))
	assert.False(t, enabled)

	assert.False(t, r.DragFloat("Strength", &strength, 0.1, 0, 100), "edits are consumed")

	w, ok := r.Find("Enabled")
	require.True(t, ok)
	assert.Equal(t, debug_ui.KindCheckbox, w.Kind)
	assert.Equal(t, false, w.Value)
}

func TestRecorder_ScopesAndCollapse(t *testing.T) {
	r := debug_ui.NewRecorder()
	r.Collapse("Hidden")
	r.Set("Part0/Diffuse", common.ColorRed)

	assert.True(t, r.Begin("Debug"))
	assert.False(t, r.CollapsingHeader("Hidden", true))
	for _, id := range []string{"Part0", "Part1"} {
		r.PushID(id)
		c := common.ColorWhite
		changed := r.ColorEdit4("Diffuse", &c)
		assert.Equal(t, id == "Part0", changed)
		r.PopID()
	}
	r.End()

	assert.Equal(t, []string{"Part0/Diffuse", "Part1/Diffuse"}, r.Labels(debug_ui.KindColor))
	w, _ := r.Find("Part0/Diffuse")
	assert.Equal(t, common.ColorRed, w.Value)

	r.Reset()
	assert.Empty(t, r.Widgets)
}

func TestRecorder_WrongEditTypePanics(t *testing.T) {
	r := debug_ui.NewRecorder()
	r.Set("Mode", "blur")
	mode := 0
	assert.Panics(t, func() { r.Combo("Mode", &mode, []string{"none", "blur"}) })

	r.Set("Mode", 5)
	assert.Panics(t, func() { r.Combo("Mode", &mode, []string{"none", "blur"}) })
}

func TestBoolFlag(t *testing.T) {
	r := debug_ui.NewRecorder()
	flag := int32(1)
	assert.False(t, debug_ui.BoolFlag(r, "UseShadowMap", &flag))
	assert.Equal(t, int32(1), flag)

	r.Set("UseShadowMap", false)
	assert.True(t, debug_ui.BoolFlag(r, "UseShadowMap", &flag))
	assert.Equal(t, int32(0), flag)

	assert.False(t, debug_ui.BoolFlag(debug_ui.Nop{}, "UseShadowMap", &flag))
}
