package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// open initializes GLFW, creates the window and its optional OpenGL context, and installs the
// input callbacks.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
func (w *engineWindow) open() error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.Resizable, boolHint(w.resizable))
	// Reference: https://www.glfw.org/docs/latest/window_guide.html#window_hints_ctx
	switch w.clientAPI {
	case ClientAPIOpenGL:
		glfw.WindowHint(glfw.ClientAPI, glfw.OpenGLAPI)
		glfw.WindowHint(glfw.ContextVersionMajor, 3)
		glfw.WindowHint(glfw.ContextVersionMinor, 3)
		glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
		glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	default:
		glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	}

	handle, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create GLFW window: %w", err)
	}
	handle.SetSizeLimits(w.minSize[0], w.minSize[1], w.maxSize[0], w.maxSize[1])

	if w.clientAPI == ClientAPIOpenGL {
		handle.MakeContextCurrent()
		interval := 0
		if w.vsync {
			interval = 1
		}
		glfw.SwapInterval(interval)
	}

	w.handle = handle
	w.width, w.height = handle.GetFramebufferSize()
	w.cursor[0], w.cursor[1] = handle.GetCursorPos()
	w.installCallbacks()
	return nil
}

// installCallbacks routes GLFW events to the engineWindow callbacks.
//
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetKeyCallback
func (w *engineWindow) installCallbacks() {
	w.handle.SetKeyCallback(func(win *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if w.closeOnEscape && key == glfw.KeyEscape && action == glfw.Press {
			win.SetShouldClose(true)
			return
		}
		if w.onKey != nil && key != glfw.KeyUnknown {
			w.onKey(uint32(key), action != glfw.Release)
		}
	})

	w.handle.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if w.onMouseButton != nil {
			w.onMouseButton(int(button), action == glfw.Press, w.Cursor())
		}
	})

	w.handle.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		w.cursor = [2]float64{x, y}
	})

	w.handle.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		if w.onScroll != nil {
			w.onScroll(float32(yoff))
		}
	})

	// Framebuffer size, not window size: the devices configure their surfaces in pixels.
	w.handle.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.width, w.height = width, height
		if w.onResize != nil {
			w.onResize(width, height)
		}
	})
}

// surfaceDescriptor builds a platform surface descriptor (Windows, X11, Wayland or Metal).
//
// Reference: https://pkg.go.dev/github.com/cogentcore/webgpu/wgpuglfw#GetSurfaceDescriptor
func surfaceDescriptor(handle *glfw.Window) *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(handle)
}

func boolHint(v bool) int {
	if v {
		return glfw.True
	}
	return glfw.False
}
