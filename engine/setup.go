package engine

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-sprite/common"
	"github.com/Carmen-Shannon/oxy-sprite/engine/config"
	"github.com/Carmen-Shannon/oxy-sprite/engine/log"
	"github.com/Carmen-Shannon/oxy-sprite/engine/renderer"
	"github.com/Carmen-Shannon/oxy-sprite/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-sprite/engine/window"
)

// NewFromConfig builds the logger, window, renderer and optional shader watcher described by cfg and
// returns an engine driving them. Scenes are pushed afterwards through Scenes so they can create
// their resources on the engine's device.
//
// Parameters:
//   - cfg: a validated configuration
//   - options: extra options applied after the configured ones
//
// Returns:
//   - Engine: the engine; call Release when done
//   - error: error if any component fails to start; components already created are released
func NewFromConfig(cfg config.Config, options ...EngineBuilderOption) (Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	backend, err := renderer.ParseBackendType(cfg.Renderer.Backend)
	if err != nil {
		return nil, err
	}

	logger := log.New(
		log.WithLevel(cfg.Log.Level),
		log.WithDir(cfg.Log.Dir),
		log.WithStderr(cfg.Log.Stderr),
	)

	vsync := common.ValueOr(cfg.Window.VSync, true)
	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
		window.WithResizable(!cfg.Window.Fixed),
		window.WithClientAPI(backend.ClientAPI()),
		window.WithVSync(vsync),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	presentMode := renderer.PresentModeVSync
	if !vsync {
		presentMode = renderer.PresentModeUncapped
	}
	r, err := renderer.NewRenderer(backend, win,
		renderer.WithLogger(logger),
		renderer.WithPresentMode(presentMode),
		renderer.WithClearColor(cfg.Renderer.ClearColor),
		renderer.WithNearestFilter(cfg.Renderer.NearestFilter),
	)
	if err != nil {
		_ = win.Close()
		return nil, err
	}

	var watcher *shader.Watcher
	if cfg.Renderer.HotReload {
		watcher, err = shader.NewWatcher(logger)
		if err != nil {
			logger.Warn("shader hot reload disabled", "error", err)
			watcher = nil
		}
	}

	opts := []EngineBuilderOption{
		WithLogger(logger),
		WithWindow(win),
		WithRenderer(r),
		WithProfiling(cfg.Renderer.Profile),
	}
	if watcher != nil {
		opts = append(opts, WithShaderWatcher(watcher))
	}
	e, err := NewEngine(append(opts, options...)...)
	if err != nil {
		if watcher != nil {
			_ = watcher.Close()
		}
		r.Release()
		_ = win.Close()
		return nil, err
	}

	logger.Info("engine started", "backend", backend.String(), "width", cfg.Window.Width, "height", cfg.Window.Height)
	return e, nil
}
