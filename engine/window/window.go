package window

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-sprite/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// ClientAPI selects the graphics API the window creates a context for.
type ClientAPI int

const (
	// ClientAPINone creates no context; the WebGPU device renders to the window surface.
	ClientAPINone ClientAPI = iota
	// ClientAPIOpenGL creates an OpenGL 3.3 core context and makes it current.
	ClientAPIOpenGL
)

// Window owns the platform window, forwards input to callbacks and measures frame time.
// All methods must be called from the thread that created the window.
type Window interface {
	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving the new framebuffer width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetKeyCallback sets the function called when a key is pressed, repeated or released.
	//
	// Parameters:
	//   - callback: function receiving the key code (see common.Key*) and whether it is held
	SetKeyCallback(callback func(keyCode uint32, pressed bool))

	// SetMouseButtonCallback sets the function called when a mouse button changes state.
	//
	// Parameters:
	//   - callback: function receiving the button (see common.Mouse*), whether it is held and
	//     the cursor position in sprite coordinates
	SetMouseButtonCallback(callback func(button int, pressed bool, at [2]float32))

	// SetScrollCallback sets the function called for vertical scroll wheel movement.
	//
	// Parameters:
	//   - callback: function receiving the scroll delta, positive away from the user
	SetScrollCallback(callback func(delta float32))

	// Cursor returns the last known cursor position in sprite coordinates: origin at the window
	// center, y up, in framebuffer pixels.
	Cursor() [2]float32

	// ClientAPI returns the graphics API the window was created for.
	ClientAPI() ClientAPI

	// SurfaceDescriptor returns the platform surface descriptor for a WebGPU surface.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the descriptor, or nil for closed or OpenGL windows
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// PollEvents dispatches pending window and input events to the registered callbacks.
	//
	// Returns:
	//   - bool: false once the window has been asked to close
	PollEvents() bool

	// SwapBuffers presents the back buffer of an OpenGL context. No-op without a context.
	SwapBuffers()

	// RequestClose marks the window to close; the next PollEvents returns false.
	RequestClose()

	// IsRunning reports whether the window is open and no close has been requested.
	IsRunning() bool

	// Close destroys the window and terminates GLFW.
	//
	// Returns:
	//   - error: error if the window was already closed
	Close() error

	// UpdateTimer samples the frame clock. Call once per frame.
	UpdateTimer()

	// DeltaTime returns the duration of the last frame in seconds, as measured by UpdateTimer.
	DeltaTime() float32

	// Width returns the framebuffer width in pixels.
	Width() int

	// Height returns the framebuffer height in pixels.
	Height() int

	// ViewSize returns the framebuffer size as the view size sprite draws expect.
	ViewSize() [2]float32
}

// engineWindow is the GLFW implementation of the Window interface.
type engineWindow struct {
	title     string
	clientAPI ClientAPI
	vsync     bool
	resizable bool

	// closeOnEscape closes the window on Escape before the key callback sees it.
	closeOnEscape bool

	// minSize and maxSize bound interactive resizing; glfw.DontCare leaves a side unbounded.
	minSize [2]int
	maxSize [2]int

	// width and height track the framebuffer, which differs from the window size on high-DPI displays.
	width  int
	height int

	// cursor is the last cursor position in window screen coordinates.
	cursor [2]float64

	timer  *common.FrameTimer
	handle *glfw.Window

	onResize      func(width, height int)
	onKey         func(keyCode uint32, pressed bool)
	onMouseButton func(button int, pressed bool, at [2]float32)
	onScroll      func(delta float32)
}

var _ Window = &engineWindow{}

// NewWindow opens a window configured by options. Must be called from the main thread.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the opened window
//   - error: error if GLFW or the window and its context cannot be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:         "oxy-sprite",
		width:         1280,
		height:        720,
		minSize:       [2]int{320, 240},
		maxSize:       [2]int{glfw.DontCare, glfw.DontCare},
		vsync:         true,
		resizable:     true,
		closeOnEscape: true,
	}
	for _, opt := range options {
		opt(w)
	}
	if w.width <= 0 || w.height <= 0 {
		return nil, fmt.Errorf("invalid window size %dx%d", w.width, w.height)
	}
	if err := w.open(); err != nil {
		return nil, err
	}
	w.timer = common.NewFrameTimer(glfw.GetTime)
	return w, nil
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetKeyCallback(callback func(keyCode uint32, pressed bool)) {
	w.onKey = callback
}

func (w *engineWindow) SetMouseButtonCallback(callback func(button int, pressed bool, at [2]float32)) {
	w.onMouseButton = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *engineWindow) Cursor() [2]float32 {
	// Cursor positions arrive in screen coordinates; scale them to framebuffer pixels.
	sx, sy := float32(1), float32(1)
	if w.handle != nil {
		if ww, wh := w.handle.GetSize(); ww > 0 && wh > 0 {
			sx, sy = float32(w.width)/float32(ww), float32(w.height)/float32(wh)
		}
	}
	return common.ScreenToWorld(float32(w.cursor[0])*sx, float32(w.cursor[1])*sy, float32(w.width), float32(w.height))
}

func (w *engineWindow) ClientAPI() ClientAPI {
	return w.clientAPI
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	if w.handle == nil || w.clientAPI != ClientAPINone {
		return nil
	}
	return surfaceDescriptor(w.handle)
}

func (w *engineWindow) PollEvents() bool {
	glfw.PollEvents()
	return w.IsRunning()
}

func (w *engineWindow) SwapBuffers() {
	if w.handle != nil && w.clientAPI == ClientAPIOpenGL {
		w.handle.SwapBuffers()
	}
}

func (w *engineWindow) RequestClose() {
	if w.handle != nil {
		w.handle.SetShouldClose(true)
	}
}

func (w *engineWindow) IsRunning() bool {
	return w.handle != nil && !w.handle.ShouldClose()
}

func (w *engineWindow) Close() error {
	if w.handle == nil {
		return fmt.Errorf("window %q is already closed", w.title)
	}
	w.handle.Destroy()
	w.handle = nil
	glfw.Terminate()
	return nil
}

func (w *engineWindow) UpdateTimer() {
	w.timer.Update()
}

func (w *engineWindow) DeltaTime() float32 {
	return w.timer.Delta()
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

func (w *engineWindow) ViewSize() [2]float32 {
	return [2]float32{float32(w.width), float32(w.height)}
}
