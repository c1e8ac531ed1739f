package scene

import "github.com/Carmen-Shannon/oxy-sprite/engine/log"

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithInitialize sets the function run when the scene is pushed.
//
// Parameters:
//   - fn: returns an error to keep the scene off the stack
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithInitialize(fn func() error) SceneBuilderOption {
	return func(s *scene) {
		s.onInitialize = fn
	}
}

// WithProcessInput sets the input handler run while the scene is on top.
func WithProcessInput(fn func()) SceneBuilderOption {
	return func(s *scene) {
		s.onProcessInput = fn
	}
}

// WithUpdate sets the per-frame update.
//
// Parameters:
//   - fn: receives the frame duration in seconds
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithUpdate(fn func(deltaTime float32)) SceneBuilderOption {
	return func(s *scene) {
		s.onUpdate = fn
	}
}

// WithRender sets the per-frame draw.
func WithRender(fn func()) SceneBuilderOption {
	return func(s *scene) {
		s.onRender = fn
	}
}

// WithFinalize sets the function run when the scene leaves the stack.
func WithFinalize(fn func()) SceneBuilderOption {
	return func(s *scene) {
		s.onFinalize = fn
	}
}

// WithVisible sets whether the scene starts visible.
func WithVisible(visible bool) SceneBuilderOption {
	return func(s *scene) {
		s.visible = visible
	}
}

// StackBuilderOption is a functional option for configuring a Stack.
type StackBuilderOption func(s *stack)

// WithLogger sets the logger for scene transitions.
func WithLogger(logger *log.Logger) StackBuilderOption {
	return func(s *stack) {
		s.logger = logger
	}
}
