package app

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"material-sandbox/core"
)

func init() {
	// GLFW and GL calls must stay on the main thread.
	runtime.LockOSThread()
}

// Window is a GLFW window with a current OpenGL 4.1 core context.
type Window struct {
	Handle *glfw.Window
	Width  int
	Height int
	Title  string
}

// NewWindow initializes GLFW and opens a window sized and titled from cfg.
func NewWindow(cfg core.Config) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, boolToInt(cfg.Resizable))

	handle, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	handle.MakeContextCurrent()
	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	window := &Window{
		Handle: handle,
		Width:  cfg.Width,
		Height: cfg.Height,
		Title:  cfg.Title,
	}
	handle.SetSizeCallback(func(w *glfw.Window, width, height int) {
		window.Width = width
		window.Height = height
	})
	return window, nil
}

func (w *Window) ShouldClose() bool {
	return w.Handle.ShouldClose()
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

func (w *Window) SwapBuffers() {
	w.Handle.SwapBuffers()
}

// FramebufferSize is the drawable size in pixels.
func (w *Window) FramebufferSize() (int, int) {
	return w.Handle.GetFramebufferSize()
}

func (w *Window) Destroy() {
	w.Handle.Destroy()
	glfw.Terminate()
}

func (w *Window) IsKeyPressed(key glfw.Key) bool {
	return w.Handle.GetKey(key) == glfw.Press
}

// CursorPos is the cursor position in window coordinates.
func (w *Window) CursorPos() (float64, float64) {
	return w.Handle.GetCursorPos()
}

// ScrollCallback is the type for scroll event handlers
type ScrollCallback func(xoff, yoff float64)

func (w *Window) SetScrollCallback(cb ScrollCallback) {
	w.Handle.SetScrollCallback(func(win *glfw.Window, xoff, yoff float64) {
		cb(xoff, yoff)
	})
}

// MouseButtonCallback receives presses and releases with the cursor
// position at the time of the event.
type MouseButtonCallback func(button glfw.MouseButton, pressed bool, x, y float64)

func (w *Window) SetMouseButtonCallback(cb MouseButtonCallback) {
	w.Handle.SetMouseButtonCallback(func(win *glfw.Window, b glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		x, y := win.GetCursorPos()
		cb(b, action == glfw.Press, x, y)
	})
}

// CursorPosCallback receives cursor moves in window coordinates.
type CursorPosCallback func(x, y float64)

func (w *Window) SetCursorPosCallback(cb CursorPosCallback) {
	w.Handle.SetCursorPosCallback(func(win *glfw.Window, x, y float64) {
		cb(x, y)
	})
}

// KeyCallback receives key presses.
type KeyCallback func(key glfw.Key)

func (w *Window) SetKeyCallback(cb KeyCallback) {
	w.Handle.SetKeyCallback(func(win *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action == glfw.Press {
			cb(key)
		}
	})
}

func boolToInt(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}
