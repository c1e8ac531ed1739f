package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-sprite/engine/log"
	"github.com/Carmen-Shannon/oxy-sprite/engine/profiler"
	"github.com/Carmen-Shannon/oxy-sprite/engine/renderer"
	"github.com/Carmen-Shannon/oxy-sprite/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-sprite/engine/scene"
	"github.com/Carmen-Shannon/oxy-sprite/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler replaces the default profiler.
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithStatsSource sets the function the profiler samples each frame for draw-call and sprite counts.
//
// Parameters:
//   - fn: returns the rendering work of the frame just presented
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithStatsSource(fn func() profiler.FrameStats) EngineBuilderOption {
	return func(e *engine) {
		e.stats = fn
	}
}

// WithWindow sets the window the engine polls and renders into.
//
// Parameters:
//   - w: a spawned Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer sets the renderer that brackets each frame.
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithScene pushes a scene onto the stack during engine construction. Scenes are pushed in
// option order, so the last one is on top.
//
// Parameters:
//   - s: the Scene to push
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.initialScenes = append(e.initialScenes, s)
	}
}

// WithLogger sets the logger for frame errors and scene transitions.
func WithLogger(logger *log.Logger) EngineBuilderOption {
	return func(e *engine) {
		e.logger = logger
	}
}

// WithShaderWatcher polls w once per frame so edited shader files are rebuilt on the render thread.
func WithShaderWatcher(w *shader.Watcher) EngineBuilderOption {
	return func(e *engine) {
		e.watcher = w
	}
}

// WithResizeCallback sets a function called after the renderer has been resized.
func WithResizeCallback(fn func(width, height int)) EngineBuilderOption {
	return func(e *engine) {
		e.onResize = fn
	}
}

// WithRenderFrameLimit sets an optional frame rate cap in frames per second.
// Pass 0 to uncap the loop (default).
//
// Parameters:
//   - fps: maximum frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
	}
}
