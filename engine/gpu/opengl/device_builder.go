package opengl

import "github.com/Carmen-Shannon/oxy-sprite/engine/log"

// DeviceBuilderOption is a functional option applied to the device during construction via New.
type DeviceBuilderOption func(*device)

// WithLogger sets the logger for driver information and resource records.
func WithLogger(logger *log.Logger) DeviceBuilderOption {
	return func(d *device) {
		d.logger = logger
	}
}

// WithFramebufferSize sets the initial viewport.
//
// Parameters:
//   - width, height: framebuffer size in pixels
//
// Returns:
//   - DeviceBuilderOption: option function to apply
func WithFramebufferSize(width, height int) DeviceBuilderOption {
	return func(d *device) {
		d.width, d.height = width, height
	}
}

// WithNearestFilter samples textures without interpolation, for pixel art.
func WithNearestFilter(enabled bool) DeviceBuilderOption {
	return func(d *device) {
		d.nearest = enabled
	}
}
