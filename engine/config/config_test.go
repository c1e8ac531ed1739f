package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[window]
title = "Action Game"

[renderer]
backend = "wgpu"
max_sprites = 1024
`))
	require.NoError(t, err)

	d := Default()
	assert.Equal(t, "Action Game", cfg.Window.Title)
	assert.Equal(t, d.Window.Width, cfg.Window.Width)
	assert.Equal(t, d.Window.Height, cfg.Window.Height)
	require.NotNil(t, cfg.Window.VSync)
	assert.True(t, *cfg.Window.VSync)
	assert.Equal(t, "wgpu", cfg.Renderer.Backend)
	assert.Equal(t, 1024, cfg.Renderer.MaxSprites)
	assert.Equal(t, d.Renderer.VertexShader, cfg.Renderer.VertexShader)
	assert.Equal(t, d.Renderer.ClearColor, cfg.Renderer.ClearColor)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestParseExplicitValues(t *testing.T) {
	cfg, err := Parse([]byte(`
[window]
width = 640
height = 480
vsync = false
fixed = true

[renderer]
vertex_shader = "shaders/sprite.wgsl.vert"
fragment_shader = "shaders/sprite.wgsl.frag"
clear_color = [0.0, 0.0, 0.0, 1.0]
nearest_filter = true
debug = true
hot_reload = true

[log]
level = "debug"
dir = "logs"
stderr = true
`))
	require.NoError(t, err)
	assert.Equal(t, 640, cfg.Window.Width)
	assert.False(t, *cfg.Window.VSync)
	assert.True(t, cfg.Window.Fixed)
	assert.Equal(t, [4]float32{0, 0, 0, 1}, cfg.Renderer.ClearColor)
	assert.True(t, cfg.Renderer.NearestFilter)
	assert.True(t, cfg.Renderer.Debug)
	assert.True(t, cfg.Renderer.HotReload)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "logs", cfg.Log.Dir)
	assert.True(t, cfg.Log.Stderr)
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"syntax", `[window`},
		{"unknown key", "[window]\nfullscreen = true"},
		{"wrong type", "[window]\nwidth = \"wide\""},
		{"negative size", "[window]\nwidth = -1"},
		{"too many sprites", "[renderer]\nmax_sprites = 20000"},
		{"unknown backend", "[renderer]\nbackend = \"vulkan\""},
		{"unknown level", "[log]\nlevel = \"trace\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.toml")
	require.NoError(t, os.WriteFile(path, []byte("[renderer]\nmax_sprites = 16\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Renderer.MaxSprites)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NotErrorIs(t, err, ErrInvalid)
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}
