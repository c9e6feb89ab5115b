package config_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/engine"
	"github.com/Carmen-Shannon/oxy-fx/engine/config"
	"github.com/Carmen-Shannon/oxy-fx/engine/debug_ui"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/renderertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tomlConfig = `
[window]
title = "Shadows"
width = 1024
height = 768

[renderer]
vsync = false
tick_rate = 30.0
frame_limit = 144.0
clear_color = [0.1, 0.2, 0.3, 1.0]

[assets]
texture_root = "data/textures"
hot_reload = true
workers = 2

[log]
level = "debug"
format = "json"
`

const yamlConfig = `
window:
  title: Post processing
  resizable: false
renderer:
  msaa: false
  profiling: true
assets:
  model_root: data/models
log:
  level: warn
`

type nopState struct{}

func (nopState) Initialize(engine.Engine) {}
func (nopState) Terminate()               {}
func (nopState) Update(float32)           {}
func (nopState) Render()                  {}
func (nopState) DebugUI(debug_ui.UI)      {}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoad_TOML(t *testing.T) {
	cfg, err := config.Load(writeFile(t, "engine.toml", tomlConfig))
	require.NoError(t, err)

	assert.Equal(t, "Shadows", cfg.Window.Title)
	assert.Equal(t, 1024, cfg.Window.Width)
	assert.Equal(t, 768, cfg.Window.Height)
	assert.True(t, cfg.Window.Resizable, "missing keys keep their defaults")

	assert.False(t, cfg.Renderer.VSync)
	assert.True(t, cfg.Renderer.MSAA)
	assert.Equal(t, 30.0, cfg.Renderer.TickRate)
	assert.Equal(t, 144.0, cfg.Renderer.FrameLimit)
	assert.Equal(t, [4]float32{0.1, 0.2, 0.3, 1}, cfg.Renderer.ClearColor)

	assert.Equal(t, "data/textures", cfg.Assets.TextureRoot)
	assert.Equal(t, "assets/models", cfg.Assets.ModelRoot)
	assert.True(t, cfg.Assets.HotReload)
	assert.Equal(t, 2, cfg.Assets.Workers)

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_YAML(t *testing.T) {
	for _, name := range []string{"engine.yaml", "engine.yml"} {
		t.Run(name, func(t *testing.T) {
			cfg, err := config.Load(writeFile(t, name, yamlConfig))
			require.NoError(t, err)

			assert.Equal(t, "Post processing", cfg.Window.Title)
			assert.False(t, cfg.Window.Resizable)
			assert.Equal(t, 1280, cfg.Window.Width)
			assert.False(t, cfg.Renderer.MSAA)
			assert.True(t, cfg.Renderer.Profiling)
			assert.Equal(t, "data/models", cfg.Assets.ModelRoot)
			assert.Equal(t, "warn", cfg.Log.Level)
		})
	}
}

func TestParse_EmptyYAMLGivesDefaults(t *testing.T) {
	cfg, err := config.Parse(nil, config.FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"unsupported extension", "engine.json", "{}"},
		{"unknown toml key", "engine.toml", "[window]\ncolour = 1\n"},
		{"unknown yaml key", "engine.yaml", "renderer:\n  shadows: true\n"},
		{"malformed toml", "engine.toml", "[window\n"},
		{"invalid size", "engine.toml", "[window]\nwidth = 0\n"},
		{"invalid tick rate", "engine.yaml", "renderer:\n  tick_rate: -1\n"},
		{"invalid log level", "engine.toml", "[log]\nlevel = \"loud\"\n"},
		{"invalid log format", "engine.toml", "[log]\nformat = \"xml\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeFile(t, tt.file, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate_JoinsErrors(t *testing.T) {
	cfg := config.Default()
	cfg.Window.Width = 0
	cfg.Assets.Workers = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "window size")
	assert.Contains(t, err.Error(), "workers")
}

func TestNewLogger_UsesLevelAndFormat(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = "warn"
	cfg.Log.Format = "json"

	var buf bytes.Buffer
	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "id", 7)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"id":7`)
}

func TestEngineOptions_ConfigureEngine(t *testing.T) {
	cfg, err := config.Parse([]byte(tomlConfig), config.FormatTOML)
	require.NoError(t, err)
	cfg.Assets.HotReload = false
	cfg.Assets.TextureRoot = t.TempDir()

	r, backend := renderertest.NewRenderer()
	opts := append(cfg.EngineOptions(), engine.WithRenderer(r))
	e := engine.NewEngine(opts...)
	t.Cleanup(e.Terminate)

	assert.Equal(t, cfg.Assets.TextureRoot, e.Textures().Root())
	assert.Equal(t, cfg.Assets.ModelRoot, e.Models().Root())

	e.SetState(nopState{})
	require.NoError(t, e.Step(0.1))
	require.Len(t, backend.Clears, 1)
	assert.Equal(t, float32(0.2), backend.Clears[0].Color.G)
}

func TestWindowAndRendererOptions(t *testing.T) {
	cfg := config.Default()
	assert.Len(t, cfg.WindowOptions(), 3)

	r, backend := renderertest.NewRenderer(cfg.RendererOptions()...)
	w, h := r.Size()
	assert.Equal(t, [2]int{1280, 720}, [2]int{w, h})
	assert.Equal(t, [2]int{1280, 720}, [2]int{backend.Width, backend.Height})
}
