package window

// WindowBuilderOption configures a window before it is opened.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the title bar text.
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithSize sets the requested window size. The framebuffer may be larger on high-DPI displays;
// Width and Height report the framebuffer.
//
// Parameters:
//   - width, height: window size in screen coordinates
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.width = width
		w.height = height
	}
}

// WithSizeLimits bounds interactive resizing. Pass a negative value to leave a bound open.
//
// Parameters:
//   - minWidth, minHeight: smallest allowed size
//   - maxWidth, maxHeight: largest allowed size
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSizeLimits(minWidth, minHeight, maxWidth, maxHeight int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.minSize = [2]int{dontCare(minWidth), dontCare(minHeight)}
		w.maxSize = [2]int{dontCare(maxWidth), dontCare(maxHeight)}
	}
}

// WithResizable allows or forbids interactive resizing. Windows are resizable by default.
func WithResizable(resizable bool) WindowBuilderOption {
	return func(w *engineWindow) {
		w.resizable = resizable
	}
}

// WithCloseOnEscape closes the window when Escape is pressed. Enabled by default; disable it to
// receive Escape in the key callback.
func WithCloseOnEscape(enabled bool) WindowBuilderOption {
	return func(w *engineWindow) {
		w.closeOnEscape = enabled
	}
}

// WithClientAPI selects the graphics context the window creates. Use ClientAPIOpenGL for the
// OpenGL device and ClientAPINone (the default) for WebGPU.
//
// Parameters:
//   - api: the client API
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithClientAPI(api ClientAPI) WindowBuilderOption {
	return func(w *engineWindow) {
		w.clientAPI = api
	}
}

// WithVSync sets the swap interval of an OpenGL context. WebGPU presentation is configured on the device.
func WithVSync(enabled bool) WindowBuilderOption {
	return func(w *engineWindow) {
		w.vsync = enabled
	}
}

// dontCare maps negative limits to glfw.DontCare (-1).
func dontCare(v int) int {
	if v < 0 {
		return -1
	}
	return v
}
