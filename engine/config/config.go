// Package config loads the game's TOML configuration: window, renderer and logging settings.
// Missing values take the defaults of Default.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-sprite/common"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid is wrapped by every parse and validation failure.
var ErrInvalid = errors.New("invalid configuration")

// maxSprites mirrors the sprite renderer's 16-bit index limit.
const maxSprites = 65536 / 4

// Window configures the game window.
type Window struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	VSync  *bool  `toml:"vsync"`

	// Fixed windows cannot be resized interactively.
	Fixed bool `toml:"fixed"`
}

// Renderer configures the device and the sprite renderer.
type Renderer struct {
	Backend        string     `toml:"backend"`
	MaxSprites     int        `toml:"max_sprites"`
	VertexShader   string     `toml:"vertex_shader"`
	FragmentShader string     `toml:"fragment_shader"`
	ClearColor     [4]float32 `toml:"clear_color"`
	NearestFilter  bool       `toml:"nearest_filter"`
	Debug          bool       `toml:"debug"`
	HotReload      bool       `toml:"hot_reload"`
	Profile        bool       `toml:"profile"`
}

// Log configures the engine logger.
type Log struct {
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
	Stderr bool   `toml:"stderr"`
}

// Config is the complete configuration file.
type Config struct {
	Window   Window   `toml:"window"`
	Renderer Renderer `toml:"renderer"`
	Log      Log      `toml:"log"`
}

// Default returns the configuration used for every value a file leaves out.
func Default() Config {
	vsync := true
	return Config{
		Window: Window{
			Title:  "oxy-sprite",
			Width:  1280,
			Height: 720,
			VSync:  &vsync,
		},
		Renderer: Renderer{
			Backend:        "opengl",
			MaxSprites:     4096,
			VertexShader:   "Res/Sprite.vert",
			FragmentShader: "Res/Sprite.frag",
			ClearColor:     [4]float32{0.1, 0.3, 0.5, 1},
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Load reads and validates a configuration file.
//
// Parameters:
//   - path: path of the TOML file
//
// Returns:
//   - Config: the configuration with defaults applied
//   - error: the read error, or an error wrapping ErrInvalid
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML and applies defaults. Unknown keys are rejected.
//
// Parameters:
//   - data: TOML document
//
// Returns:
//   - Config: the configuration with defaults applied
//   - error: an error wrapping ErrInvalid
func Parse(data []byte) (Config, error) {
	var cfg Config
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("%w: %s", ErrInvalid, strict.String())
		}
		return Config{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	d := Default()
	c.Window.Title = common.Coalesce(c.Window.Title, d.Window.Title)
	c.Window.Width = common.Coalesce(c.Window.Width, d.Window.Width)
	c.Window.Height = common.Coalesce(c.Window.Height, d.Window.Height)
	if c.Window.VSync == nil {
		c.Window.VSync = d.Window.VSync
	}
	c.Renderer.Backend = common.Coalesce(c.Renderer.Backend, d.Renderer.Backend)
	c.Renderer.MaxSprites = common.Coalesce(c.Renderer.MaxSprites, d.Renderer.MaxSprites)
	c.Renderer.VertexShader = common.Coalesce(c.Renderer.VertexShader, d.Renderer.VertexShader)
	c.Renderer.FragmentShader = common.Coalesce(c.Renderer.FragmentShader, d.Renderer.FragmentShader)
	c.Renderer.ClearColor = common.Coalesce(c.Renderer.ClearColor, d.Renderer.ClearColor)
	c.Log.Level = common.Coalesce(c.Log.Level, d.Log.Level)
}

// Validate checks ranges and enumerations.
//
// Returns:
//   - error: an error wrapping ErrInvalid naming the first bad field
func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	case c.Renderer.MaxSprites <= 0 || c.Renderer.MaxSprites > maxSprites:
		return fmt.Errorf("%w: renderer.max_sprites %d outside 1..%d", ErrInvalid, c.Renderer.MaxSprites, maxSprites)
	}
	switch c.Renderer.Backend {
	case "opengl", "gl", "wgpu", "webgpu":
	default:
		return fmt.Errorf("%w: renderer.backend %q", ErrInvalid, c.Renderer.Backend)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	return nil
}
