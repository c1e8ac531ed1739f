package renderer

import (
	"github.com/Carmen-Shannon/oxy-sprite/engine/gpu"
	"github.com/Carmen-Shannon/oxy-sprite/engine/log"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithDevice uses an existing device instead of creating one for the backend. The renderer does not
// release a device it was given.
//
// Parameters:
//   - dev: the device to draw through
//
// Returns:
//   - RendererBuilderOption: a function that applies the device option to a renderer
func WithDevice(dev gpu.Device) RendererBuilderOption {
	return func(r *renderer) {
		r.device = dev
	}
}

// WithLogger sets the logger passed to the device.
func WithLogger(logger *log.Logger) RendererBuilderOption {
	return func(r *renderer) {
		r.logger = logger
	}
}

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
// OpenGL windows take their swap interval from window.WithVSync instead.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.presentMode = mode
	}
}

// WithClearColor sets the initial clear color.
func WithClearColor(color [4]float32) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = color
	}
}

// WithNearestFilter samples sprite textures without interpolation, for pixel art.
func WithNearestFilter(enabled bool) RendererBuilderOption {
	return func(r *renderer) {
		r.nearest = enabled
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}
