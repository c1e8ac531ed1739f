package renderer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-sprite/engine/gpu"
	"github.com/Carmen-Shannon/oxy-sprite/engine/gpu/opengl"
	"github.com/Carmen-Shannon/oxy-sprite/engine/gpu/webgpu"
	"github.com/Carmen-Shannon/oxy-sprite/engine/log"
	"github.com/Carmen-Shannon/oxy-sprite/engine/window"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	backendType BackendType
	device      gpu.Device
	window      window.Window
	logger      *log.Logger

	clearColor  [4]float32
	inFrame     bool
	frames      uint64
	ownsDevice  bool
	presentMode PresentMode
	nearest     bool

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
}

// Renderer owns the GPU device for a window and the frame lifecycle around it.
//
// The sprite and shader packages draw through Device(); the engine loop brackets their draws with
// BeginFrame and EndFrame. On OpenGL EndFrame also swaps the window's buffers; WebGPU presents the
// surface itself.
type Renderer interface {
	// Device returns the GPU device every program, texture and sprite renderer is created on.
	Device() gpu.Device

	// Backend returns the backend the device was created for.
	Backend() BackendType

	// SetClearColor sets the color the frame target is cleared to in BeginFrame.
	//
	// Parameters:
	//   - color: RGBA in [0,1]
	SetClearColor(color [4]float32)

	// BeginFrame starts a frame and clears the target.
	//
	// Returns:
	//   - error: an error if a frame is already open or the swapchain texture could not be acquired
	BeginFrame() error

	// EndFrame submits and presents the frame.
	//
	// Returns:
	//   - error: an error if no frame is open or the device reported a failure
	EndFrame() error

	// Frames returns the number of frames presented.
	Frames() uint64

	// Resize configures the device for a new framebuffer size.
	// This should be called when re-sizing the window.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// Release frees the device when the renderer created it.
	Release()
}

var _ Renderer = &renderer{}

// ErrFrameState is returned when BeginFrame and EndFrame are not called in pairs.
var ErrFrameState = errors.New("frame begin/end out of order")

// NewRenderer creates a Renderer for the window with the specified backend. The window must have
// been created with the backend's ClientAPI.
//
// Parameters:
//   - backendType: the type of device to create (WGPU or OpenGL)
//   - w: the window to render into
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the renderer
//   - error: error if the device cannot be created
func NewRenderer(backendType BackendType, w window.Window, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		backendType: backendType,
		window:      w,
		clearColor:  [4]float32{0, 0, 0, 1},
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	if r.device == nil {
		dev, err := NewDevice(backendType, w, r.deviceConfig())
		if err != nil {
			return nil, err
		}
		r.device = dev
		r.ownsDevice = true
	}
	r.logger.Info("renderer created", "backend", backendType.String())
	return r, nil
}

// DeviceConfig collects the device settings NewDevice passes to either backend.
type DeviceConfig struct {
	Logger        *log.Logger
	PresentMode   PresentMode
	ForceFallback bool
	NearestFilter bool
}

func (r *renderer) deviceConfig() DeviceConfig {
	return DeviceConfig{
		Logger:        r.logger,
		PresentMode:   r.presentMode,
		ForceFallback: r.forceFallbackAdapter,
		NearestFilter: r.nearest,
	}
}

// NewDevice creates the gpu.Device for a backend on the window.
//
// Parameters:
//   - backendType: the device implementation
//   - w: the window; for OpenGL its context must be current on the calling thread
//   - cfg: device settings
//
// Returns:
//   - gpu.Device: the device
//   - error: error if the window lacks the required surface or context, or device creation fails
func NewDevice(backendType BackendType, w window.Window, cfg DeviceConfig) (gpu.Device, error) {
	if w == nil {
		return nil, errors.New("renderer requires a window")
	}
	if w.ClientAPI() != backendType.ClientAPI() {
		return nil, fmt.Errorf("%s renderer needs a window created with client API %d", backendType, backendType.ClientAPI())
	}

	switch backendType {
	case BackendTypeOpenGL:
		return opengl.New(
			opengl.WithLogger(cfg.Logger),
			opengl.WithFramebufferSize(w.Width(), w.Height()),
			opengl.WithNearestFilter(cfg.NearestFilter),
		)
	case BackendTypeWGPU:
		mode := webgpu.PresentModeVSync
		if cfg.PresentMode == PresentModeUncapped {
			mode = webgpu.PresentModeUncapped
		}
		return webgpu.New(w.SurfaceDescriptor(), w.Width(), w.Height(),
			webgpu.WithLogger(cfg.Logger),
			webgpu.WithPresentMode(mode),
			webgpu.WithForceFallbackAdapter(cfg.ForceFallback),
			webgpu.WithNearestFilter(cfg.NearestFilter),
		)
	default:
		return nil, fmt.Errorf("unsupported renderer backend %s", backendType)
	}
}

func (r *renderer) Device() gpu.Device {
	return r.device
}

func (r *renderer) Backend() BackendType {
	return r.backendType
}

func (r *renderer) SetClearColor(color [4]float32) {
	r.clearColor = color
}

func (r *renderer) BeginFrame() error {
	if r.inFrame {
		return fmt.Errorf("BeginFrame: %w", ErrFrameState)
	}
	if err := r.device.BeginFrame(r.clearColor); err != nil {
		return err
	}
	r.inFrame = true
	return nil
}

func (r *renderer) EndFrame() error {
	if !r.inFrame {
		return fmt.Errorf("EndFrame: %w", ErrFrameState)
	}
	r.inFrame = false
	err := r.device.EndFrame()
	if r.backendType == BackendTypeOpenGL && r.window != nil {
		r.window.SwapBuffers()
	}
	r.frames++
	return err
}

func (r *renderer) Frames() uint64 {
	return r.frames
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.device.Resize(width, height)
}

func (r *renderer) Release() {
	if r.device == nil {
		return
	}
	if r.ownsDevice {
		r.device.Release()
	}
	r.device = nil
}
