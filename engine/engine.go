package engine

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-sprite/engine/log"
	"github.com/Carmen-Shannon/oxy-sprite/engine/profiler"
	"github.com/Carmen-Shannon/oxy-sprite/engine/renderer"
	"github.com/Carmen-Shannon/oxy-sprite/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-sprite/engine/scene"
	"github.com/Carmen-Shannon/oxy-sprite/engine/window"
)

// engine implements the Engine interface.
// Drives the window, scene stack and renderer from a single thread.
type engine struct {
	window   window.Window
	renderer renderer.Renderer
	scenes   scene.Stack
	logger   *log.Logger
	watcher  *shader.Watcher

	profiler         *profiler.Profiler
	profilingEnabled bool
	stats            func() profiler.FrameStats

	onResize func(width, height int)

	initialScenes    []scene.Scene
	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	sleep            func(time.Duration)
	quit             bool
}

// Engine is the main entry point for the engine.
// It owns the frame loop: poll events, advance the timer, update scenes, render scenes, present.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the renderer whose device scenes draw through.
	Renderer() renderer.Renderer

	// Scenes returns the scene stack.
	Scenes() scene.Stack

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetRenderFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the loop (default).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Step runs one frame: timer, shader reload, scene update, scene render inside BeginFrame /
	// EndFrame, profiler tick.
	//
	// Returns:
	//   - error: the first frame begin/end error
	Step() error

	// Run locks the calling goroutine to its OS thread and steps frames until the window closes or
	// Quit is called, then finalizes every scene.
	//
	// Returns:
	//   - error: a frame error that stopped the loop
	Run() error

	// Quit stops Run after the current frame. Safe to call from scenes.
	Quit()

	// Logger returns the engine logger. May be nil.
	Logger() *log.Logger

	// WatchShader reloads p whenever its source files change. A no-op when the engine has no
	// shader watcher.
	//
	// Parameters:
	//   - p: a program built from files
	//
	// Returns:
	//   - error: error if the program's directories cannot be watched
	WatchShader(p shader.Program) error

	// Release closes the shader watcher, the renderer and the window, in that order.
	Release()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options. A window and a renderer are
// required; initial scenes are pushed in order.
//
// Parameters:
//   - options: functional options for engine configuration (window, renderer, scenes, profiling)
//
// Returns:
//   - Engine: the newly created engine
//   - error: error if the window or renderer is missing or an initial scene fails to initialize
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		sleep: time.Sleep,
	}
	for _, opt := range options {
		opt(e)
	}
	if e.window == nil {
		return nil, errors.New("engine requires a window")
	}
	if e.renderer == nil {
		return nil, errors.New("engine requires a renderer")
	}
	if e.scenes == nil {
		e.scenes = scene.NewStack(scene.WithLogger(e.logger))
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}

	e.window.SetResizeCallback(func(width, height int) {
		e.renderer.Resize(width, height)
		if e.onResize != nil {
			e.onResize(width, height)
		}
	})

	for _, s := range e.initialScenes {
		if err := e.scenes.Push(s); err != nil {
			e.scenes.Clear()
			return nil, err
		}
	}
	return e, nil
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Scenes() scene.Stack {
	return e.scenes
}

func (e *engine) Run() error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	e.quit = false
	var err error
	for !e.quit && e.window.PollEvents() {
		if err = e.Step(); err != nil {
			e.logger.Error("frame failed", "error", err)
			break
		}
	}
	e.scenes.Clear()
	return err
}

func (e *engine) Step() error {
	start := time.Now()

	deltaTime := e.window.DeltaTime()
	e.window.UpdateTimer()

	if e.watcher != nil {
		if n := e.watcher.Poll(); n > 0 {
			e.logger.Info("shaders reloaded", "programs", n)
		}
	}

	e.scenes.Update(deltaTime)

	if err := e.renderer.BeginFrame(); err != nil {
		return fmt.Errorf("begin frame: %w", err)
	}
	e.scenes.Render()
	if err := e.renderer.EndFrame(); err != nil {
		return fmt.Errorf("end frame: %w", err)
	}

	if e.profilingEnabled && e.profiler != nil {
		var stats profiler.FrameStats
		if e.stats != nil {
			stats = e.stats()
		}
		e.profiler.Tick(stats)
	}

	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - time.Since(start); remaining > 0 {
			e.sleep(remaining)
		}
	}
	return nil
}

// Quit stops Run after the current frame.
func (e *engine) Quit() {
	e.quit = true
}

func (e *engine) Logger() *log.Logger {
	return e.logger
}

func (e *engine) WatchShader(p shader.Program) error {
	if e.watcher == nil {
		return nil
	}
	return e.watcher.Watch(p)
}

func (e *engine) Release() {
	if e.watcher != nil {
		if err := e.watcher.Close(); err != nil {
			e.logger.Warn("failed to close shader watcher", "error", err)
		}
		e.watcher = nil
	}
	if e.renderer != nil {
		e.renderer.Release()
	}
	if e.window != nil {
		if err := e.window.Close(); err != nil {
			e.logger.Warn("failed to close window", "error", err)
		}
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetRenderFrameLimit sets an optional frame rate cap.
// Pass 0 to uncap the loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}
