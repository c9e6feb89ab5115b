// Package config loads engine settings from TOML or YAML files and turns them into engine,
// window and logger options.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/resource"
	"github.com/Carmen-Shannon/oxy-fx/engine/window"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a config file syntax.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Config is the file form of the engine settings. Fields missing from a file keep their
// Default values.
type Config struct {
	Window   WindowConfig   `toml:"window" yaml:"window"`
	Renderer RendererConfig `toml:"renderer" yaml:"renderer"`
	Assets   AssetsConfig   `toml:"assets" yaml:"assets"`
	Log      LogConfig      `toml:"log" yaml:"log"`
}

// WindowConfig configures the OS window.
type WindowConfig struct {
	Title     string `toml:"title" yaml:"title"`
	Width     int    `toml:"width" yaml:"width"`
	Height    int    `toml:"height" yaml:"height"`
	Resizable bool   `toml:"resizable" yaml:"resizable"`
}

// RendererConfig configures the renderer and the engine loops.
type RendererConfig struct {
	VSync      bool       `toml:"vsync" yaml:"vsync"`
	MSAA       bool       `toml:"msaa" yaml:"msaa"`
	Software   bool       `toml:"software" yaml:"software"`
	TickRate   float64    `toml:"tick_rate" yaml:"tick_rate"`
	FrameLimit float64    `toml:"frame_limit" yaml:"frame_limit"`
	Profiling  bool       `toml:"profiling" yaml:"profiling"`
	ClearColor [4]float32 `toml:"clear_color" yaml:"clear_color"`
}

// AssetsConfig configures the texture and model managers.
type AssetsConfig struct {
	TextureRoot string `toml:"texture_root" yaml:"texture_root"`
	ModelRoot   string `toml:"model_root" yaml:"model_root"`
	Mipmaps     bool   `toml:"mipmaps" yaml:"mipmaps"`
	HotReload   bool   `toml:"hot_reload" yaml:"hot_reload"`
	Workers     int    `toml:"workers" yaml:"workers"`
}

// LogConfig configures the engine logger.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// Default returns the settings used when no file overrides them.
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:     "oxy-fx",
			Width:     1280,
			Height:    720,
			Resizable: true,
		},
		Renderer: RendererConfig{
			VSync:      true,
			MSAA:       true,
			TickRate:   60,
			ClearColor: common.ColorBlack.RGBA(),
		},
		Assets: AssetsConfig{
			TextureRoot: "assets/textures",
			ModelRoot:   "assets/models",
			Mipmaps:     true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// FormatOf picks the format from a file extension.
//
// Parameters:
//   - path: the config file path
//
// Returns:
//   - Format: FormatTOML for .toml, FormatYAML for .yaml and .yml
//   - error: error for any other extension
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("config: unsupported file type %q", filepath.Ext(path))
	}
}

// Load reads, decodes and validates a config file.
//
// Parameters:
//   - path: a .toml, .yaml or .yml file
//
// Returns:
//   - Config: Default overridden by the file
//   - error: error if the file cannot be read, decoded or validated
func Load(path string) (Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	cfg, err := Parse(data, format)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates config data. Unknown keys are rejected.
func Parse(data []byte, format Format) (Config, error) {
	cfg := Default()
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("failed to decode toml: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("failed to decode yaml: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported format %q", format)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	if c.Renderer.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("tick_rate must be positive, got %v", c.Renderer.TickRate))
	}
	if c.Renderer.FrameLimit < 0 {
		errs = append(errs, fmt.Errorf("frame_limit must not be negative, got %v", c.Renderer.FrameLimit))
	}
	if c.Assets.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Assets.Workers))
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log format must be text or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// LogLevel parses the log level name: debug, info, warn or error.
func (c Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	return level, nil
}

// NewLogger builds the slog logger the config describes.
//
// Parameters:
//   - w: the log destination
//
// Returns:
//   - *slog.Logger: a text or JSON logger at the configured level
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := c.LogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// InstallLogger makes the configured logger the engine logger.
func (c Config) InstallLogger(w io.Writer) {
	common.SetLogger(c.NewLogger(w))
}

// WindowOptions converts the window settings.
func (c Config) WindowOptions() []window.WindowBuilderOption {
	return []window.WindowBuilderOption{
		window.WithTitle(c.Window.Title),
		window.WithSize(c.Window.Width, c.Window.Height),
		window.WithResizable(c.Window.Resizable),
	}
}

// RendererOptions converts the renderer settings.
func (c Config) RendererOptions() []renderer.RendererBuilderOption {
	present := renderer.PresentModeUncapped
	if c.Renderer.VSync {
		present = renderer.PresentModeVSync
	}
	msaa := renderer.MSAAOff
	if c.Renderer.MSAA {
		msaa = renderer.MSAA4x
	}
	return []renderer.RendererBuilderOption{
		renderer.WithPresentMode(present),
		renderer.WithMSAA(msaa),
		renderer.WithForceSoftwareRenderer(c.Renderer.Software),
		renderer.WithSurfaceSize(c.Window.Width, c.Window.Height),
	}
}

// EngineOptions converts the renderer, loop and asset settings. The window is not included: it
// must be created on the main goroutine with WindowOptions and passed with engine.WithWindow.
func (c Config) EngineOptions() []engine.EngineBuilderOption {
	textureOptions := []resource.TextureManagerBuilderOption{resource.WithMipmaps(c.Assets.Mipmaps)}
	var modelOptions []resource.ModelManagerBuilderOption
	if c.Assets.Workers > 0 {
		textureOptions = append(textureOptions, resource.WithTextureWorkers(c.Assets.Workers))
		modelOptions = append(modelOptions, resource.WithModelWorkers(c.Assets.Workers))
	}

	return []engine.EngineBuilderOption{
		engine.WithRendererOptions(c.RendererOptions()...),
		engine.WithTickRate(c.Renderer.TickRate),
		engine.WithRenderFrameLimit(c.Renderer.FrameLimit),
		engine.WithProfiling(c.Renderer.Profiling),
		engine.WithClearColor(common.ColorFromArray(c.Renderer.ClearColor)),
		engine.WithTextureRoot(c.Assets.TextureRoot),
		engine.WithModelRoot(c.Assets.ModelRoot),
		engine.WithTextureOptions(textureOptions...),
		engine.WithModelOptions(modelOptions...),
		engine.WithTextureHotReload(c.Assets.HotReload),
	}
}
