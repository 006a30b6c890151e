package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
)

type ApplicationConfig struct {
	// The application name used in windowing, if applicable.
	Name string `toml:"name"`
	// Window starting width, if applicable.
	StartWidth uint32 `toml:"start_width"`
	// Window starting height, if applicable.
	StartHeight uint32 `toml:"start_height"`
	// Titles of the windows opened at startup.
	Windows []string `toml:"windows"`
}

type RendererConfig struct {
	// Directory holding the precompiled SPIR-V shaders.
	ShaderDir string `toml:"shader_dir"`
	// Colour the render pass clears every image to.
	ClearColor [4]float32 `toml:"clear_color"`
	// Enables the Khronos validation layer.
	Validation bool `toml:"validation"`
	// Requested swapchain image count. 0 picks the surface minimum plus one.
	ImageCount uint32 `toml:"image_count"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type Config struct {
	Application ApplicationConfig `toml:"application"`
	Renderer    RendererConfig    `toml:"renderer"`
	Log         LogConfig         `toml:"log"`
}

func DefaultConfig() *Config {
	return &Config{
		Application: ApplicationConfig{
			Name:        "PolyEngine",
			StartWidth:  1280,
			StartHeight: 720,
			Windows:     []string{"PolyEngine client"},
		},
		Renderer: RendererConfig{
			ShaderDir:  "assets/shaders",
			ClearColor: [4]float32{0.0, 0.0, 1.0, 1.0},
		},
		Log: LogConfig{
			Level: "debug",
		},
	}
}

// LoadConfig reads a TOML config file. A missing file yields the defaults;
// fields left empty in the file keep their default value.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		LogWarn("config file `%s` not found, using defaults", path)
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config `%s`: %w", path, err)
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if c.Application.Name == "" {
		c.Application.Name = def.Application.Name
	}
	if c.Application.StartWidth == 0 {
		c.Application.StartWidth = def.Application.StartWidth
	}
	if c.Application.StartHeight == 0 {
		c.Application.StartHeight = def.Application.StartHeight
	}
	if len(c.Application.Windows) == 0 {
		c.Application.Windows = def.Application.Windows
	}
	if c.Renderer.ShaderDir == "" {
		c.Renderer.ShaderDir = def.Renderer.ShaderDir
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}

func (c *Config) Validate() error {
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level `%s`: %w", c.Log.Level, err)
	}
	for i, v := range c.Renderer.ClearColor {
		if v < 0 || v > 1 {
			return fmt.Errorf("clear_color[%d] = %f is outside [0, 1]", i, v)
		}
	}
	return nil
}

// WatchConfig reloads the config file every time it is written and hands the
// result to onChange. It returns when ctx is cancelled. Parse errors are
// logged and the previous config stays in effect.
func WatchConfig(ctx context.Context, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Editors often replace the file, so watch the directory instead of the file.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}
	target := filepath.Clean(path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(e.Name) != target {
				continue
			}
			if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := LoadConfig(path)
			if err != nil {
				LogError("config reload failed: %s", err)
				continue
			}
			LogInfo("config `%s` reloaded", path)
			onChange(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			LogError(err.Error())
		}
	}
}
