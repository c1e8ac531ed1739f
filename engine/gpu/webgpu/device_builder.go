package webgpu

import (
	"github.com/Carmen-Shannon/oxy-sprite/engine/log"
	"github.com/cogentcore/webgpu/wgpu"
)

// DeviceBuilderOption is a functional option applied to the device during construction via New.
type DeviceBuilderOption func(*device)

// WithLogger sets the logger for adapter information and resource records.
func WithLogger(logger *log.Logger) DeviceBuilderOption {
	return func(d *device) {
		d.logger = logger
	}
}

// WithPresentMode sets how frames are presented.
//
// Parameters:
//   - mode: PresentModeVSync or PresentModeUncapped
//
// Returns:
//   - DeviceBuilderOption: option function to apply
func WithPresentMode(mode PresentMode) DeviceBuilderOption {
	return func(d *device) {
		switch mode {
		case PresentModeUncapped:
			d.presentMode = wgpu.PresentModeImmediate
		default:
			d.presentMode = wgpu.PresentModeFifo
		}
	}
}

// WithForceFallbackAdapter requests the software adapter.
func WithForceFallbackAdapter(force bool) DeviceBuilderOption {
	return func(d *device) {
		d.forceFallback = force
	}
}

// WithNearestFilter samples textures without interpolation, for pixel art.
func WithNearestFilter(enabled bool) DeviceBuilderOption {
	return func(d *device) {
		d.nearest = enabled
	}
}
