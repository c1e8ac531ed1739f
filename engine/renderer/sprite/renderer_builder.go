package sprite

import (
	"github.com/Carmen-Shannon/oxy-sprite/engine/log"
	"github.com/Carmen-Shannon/oxy-sprite/engine/renderer/shader"
)

// RendererBuilderOption is a functional option applied to a Renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithProgram draws with an already built program instead of building one from the shader paths.
// The renderer takes its own reference.
//
// Parameters:
//   - p: a valid program
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithProgram(p shader.Program) RendererBuilderOption {
	return func(r *renderer) {
		r.program = p
	}
}

// WithProgramOptions passes options through to shader.BuildFromFiles.
func WithProgramOptions(opts ...shader.ProgramBuilderOption) RendererBuilderOption {
	return func(r *renderer) {
		r.programOpts = append(r.programOpts, opts...)
	}
}

// WithLogger sets the logger for renderer warnings and diagnostics. It is also handed to the program
// the renderer builds.
func WithLogger(logger *log.Logger) RendererBuilderOption {
	return func(r *renderer) {
		r.logger = logger
	}
}

// WithDebug makes contract violations panic. Defaults to on in spritedebug builds.
//
// Parameters:
//   - enabled: true to panic on out-of-order calls
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithDebug(enabled bool) RendererBuilderOption {
	return func(r *renderer) {
		r.debug = enabled
	}
}
