package renderer

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-sprite/engine/window"
)

// BackendType identifies the GPU device implementation used by the Renderer.
type BackendType int

const (
	// BackendTypeWGPU selects the WebGPU device.
	BackendTypeWGPU BackendType = iota

	// BackendTypeOpenGL selects the OpenGL 3.3 core device.
	BackendTypeOpenGL
)

func (b BackendType) String() string {
	switch b {
	case BackendTypeWGPU:
		return "wgpu"
	case BackendTypeOpenGL:
		return "opengl"
	default:
		return fmt.Sprintf("BackendType(%d)", int(b))
	}
}

// ClientAPI returns the window context the backend renders through.
//
// Returns:
//   - window.ClientAPI: ClientAPIOpenGL for OpenGL, ClientAPINone for WebGPU
func (b BackendType) ClientAPI() window.ClientAPI {
	if b == BackendTypeOpenGL {
		return window.ClientAPIOpenGL
	}
	return window.ClientAPINone
}

// ParseBackendType parses a backend name as written in configuration files.
//
// Parameters:
//   - name: "wgpu" / "webgpu" or "opengl" / "gl", case-insensitive
//
// Returns:
//   - BackendType: the parsed backend
//   - error: error if the name is unknown
func ParseBackendType(name string) (BackendType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "wgpu", "webgpu":
		return BackendTypeWGPU, nil
	case "opengl", "gl":
		return BackendTypeOpenGL, nil
	default:
		return 0, fmt.Errorf("unknown renderer backend %q", name)
	}
}

// PresentMode controls how rendered frames are presented to the display.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)
