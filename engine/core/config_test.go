package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigOverridesAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.toml")
	writeFile(t, path, `
[application]
name = "Editor"
windows = ["left", "right"]

[renderer]
clear_color = [0.1, 0.2, 0.3, 1.0]
image_count = 3

[log]
level = "warn"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "Editor", cfg.Application.Name)
	assert.Equal(t, []string{"left", "right"}, cfg.Application.Windows)
	assert.Equal(t, uint32(1280), cfg.Application.StartWidth)
	assert.Equal(t, "assets/shaders", cfg.Renderer.ShaderDir)
	assert.Equal(t, [4]float32{0.1, 0.2, 0.3, 1.0}, cfg.Renderer.ClearColor)
	assert.Equal(t, uint32(3), cfg.Renderer.ImageCount)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadConfigRejectsMalformedInput(t *testing.T) {
	dir := t.TempDir()

	broken := filepath.Join(dir, "broken.toml")
	writeFile(t, broken, "[application\nname = ")
	_, err := LoadConfig(broken)
	assert.Error(t, err)

	badLevel := filepath.Join(dir, "level.toml")
	writeFile(t, badLevel, "[log]\nlevel = \"loud\"\n")
	_, err = LoadConfig(badLevel)
	assert.Error(t, err)

	badColor := filepath.Join(dir, "color.toml")
	writeFile(t, badColor, "[renderer]\nclear_color = [2.0, 0.0, 0.0, 1.0]\n")
	_, err = LoadConfig(badColor)
	assert.Error(t, err)
}

func TestWatchConfigReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.toml")
	writeFile(t, path, "[log]\nlevel = \"debug\"\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	levels := make(chan string, 8)
	done := make(chan error, 1)
	go func() {
		done <- WatchConfig(ctx, path, func(c *Config) { levels <- c.Log.Level })
	}()

	// The watcher needs a moment to register before the write lands.
	assert.Eventually(t, func() bool {
		writeFile(t, path, "[log]\nlevel = \"error\"\n")
		select {
		case lvl := <-levels:
			return lvl == "error"
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 100*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
