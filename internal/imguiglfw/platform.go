// Package imguiglfw feeds GLFW window input to Dear ImGui and exposes ImGui
// as a gui.Widgets implementation.
package imguiglfw

import (
	"math"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/inkyblackness/imgui-go/v4"
)

var mouseButtons = []glfw.MouseButton{glfw.MouseButton1, glfw.MouseButton2, glfw.MouseButton3}

// Platform connects a GLFW window to an ImGui context. Its callbacks chain
// to the ones installed before it unless ImGui wants the input.
type Platform struct {
	window  *glfw.Window
	context *imgui.Context
	io      imgui.IO

	time             float64
	mouseJustPressed [3]bool

	prevMouseButton glfw.MouseButtonCallback
	prevScroll      glfw.ScrollCallback
	prevKey         glfw.KeyCallback
	prevChar        glfw.CharCallback
}

// NewPlatform creates the ImGui context for window and installs input
// callbacks. Install the application's own callbacks first.
func NewPlatform(window *glfw.Window) *Platform {
	context := imgui.CreateContext(nil)
	io := imgui.CurrentIO()
	io.SetIniFilename("")

	p := &Platform{window: window, context: context, io: io}
	p.mapKeys()
	p.installCallbacks()
	return p
}

// IO is the ImGui IO the platform feeds.
func (p *Platform) IO() imgui.IO { return p.io }

// Dispose destroys the ImGui context.
func (p *Platform) Dispose() {
	p.context.Destroy()
}

// DisplaySize is the window size in screen coordinates.
func (p *Platform) DisplaySize() [2]float32 {
	w, h := p.window.GetSize()
	return [2]float32{float32(w), float32(h)}
}

// FramebufferSize is the window size in pixels.
func (p *Platform) FramebufferSize() [2]float32 {
	w, h := p.window.GetFramebufferSize()
	return [2]float32{float32(w), float32(h)}
}

// NewFrame updates display size, time and mouse state, then starts an ImGui
// frame.
func (p *Platform) NewFrame() {
	size := p.DisplaySize()
	p.io.SetDisplaySize(imgui.Vec2{X: size[0], Y: size[1]})

	now := glfw.GetTime()
	if p.time > 0 {
		p.io.SetDeltaTime(float32(now - p.time))
	}
	p.time = now

	if p.window.GetAttrib(glfw.Focused) != 0 {
		x, y := p.window.GetCursorPos()
		p.io.SetMousePosition(imgui.Vec2{X: float32(x), Y: float32(y)})
	} else {
		p.io.SetMousePosition(imgui.Vec2{X: -math.MaxFloat32, Y: -math.MaxFloat32})
	}
	for i, b := range mouseButtons {
		down := p.mouseJustPressed[i] || p.window.GetMouseButton(b) == glfw.Press
		p.io.SetMouseButtonDown(i, down)
		p.mouseJustPressed[i] = false
	}

	imgui.NewFrame()
}

// WantsMouse reports whether ImGui is using the mouse this frame.
func (p *Platform) WantsMouse() bool { return p.io.WantCaptureMouse() }

// WantsKeyboard reports whether ImGui is using the keyboard this frame.
func (p *Platform) WantsKeyboard() bool { return p.io.WantCaptureKeyboard() }

func (p *Platform) mapKeys() {
	for imguiKey, key := range map[int]glfw.Key{
		imgui.KeyTab:        glfw.KeyTab,
		imgui.KeyLeftArrow:  glfw.KeyLeft,
		imgui.KeyRightArrow: glfw.KeyRight,
		imgui.KeyUpArrow:    glfw.KeyUp,
		imgui.KeyDownArrow:  glfw.KeyDown,
		imgui.KeyPageUp:     glfw.KeyPageUp,
		imgui.KeyPageDown:   glfw.KeyPageDown,
		imgui.KeyHome:       glfw.KeyHome,
		imgui.KeyEnd:        glfw.KeyEnd,
		imgui.KeyInsert:     glfw.KeyInsert,
		imgui.KeyDelete:     glfw.KeyDelete,
		imgui.KeyBackspace:  glfw.KeyBackspace,
		imgui.KeySpace:      glfw.KeySpace,
		imgui.KeyEnter:      glfw.KeyEnter,
		imgui.KeyEscape:     glfw.KeyEscape,
		imgui.KeyA:          glfw.KeyA,
		imgui.KeyC:          glfw.KeyC,
		imgui.KeyV:          glfw.KeyV,
		imgui.KeyX:          glfw.KeyX,
		imgui.KeyY:          glfw.KeyY,
		imgui.KeyZ:          glfw.KeyZ,
	} {
		p.io.KeyMap(imguiKey, int(key))
	}
}

func (p *Platform) installCallbacks() {
	p.prevMouseButton = p.window.SetMouseButtonCallback(p.mouseButtonChange)
	p.prevScroll = p.window.SetScrollCallback(p.mouseScrollChange)
	p.prevKey = p.window.SetKeyCallback(p.keyChange)
	p.prevChar = p.window.SetCharCallback(p.charChange)
}

func (p *Platform) mouseButtonChange(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	for i, b := range mouseButtons {
		if b == button && action == glfw.Press {
			p.mouseJustPressed[i] = true
		}
	}
	// Releases always pass through so drags started in a view end there.
	if p.prevMouseButton != nil && (action == glfw.Release || !p.io.WantCaptureMouse()) {
		p.prevMouseButton(w, button, action, mods)
	}
}

func (p *Platform) mouseScrollChange(w *glfw.Window, x, y float64) {
	p.io.AddMouseWheelDelta(float32(x), float32(y))
	if p.prevScroll != nil && !p.io.WantCaptureMouse() {
		p.prevScroll(w, x, y)
	}
}

func (p *Platform) keyChange(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action == glfw.Press {
		p.io.KeyPress(int(key))
	}
	if action == glfw.Release {
		p.io.KeyRelease(int(key))
	}
	p.io.KeyCtrl(int(glfw.KeyLeftControl), int(glfw.KeyRightControl))
	p.io.KeyShift(int(glfw.KeyLeftShift), int(glfw.KeyRightShift))
	p.io.KeyAlt(int(glfw.KeyLeftAlt), int(glfw.KeyRightAlt))
	p.io.KeySuper(int(glfw.KeyLeftSuper), int(glfw.KeyRightSuper))
	if p.prevKey != nil && !p.io.WantCaptureKeyboard() {
		p.prevKey(w, key, scancode, action, mods)
	}
}

func (p *Platform) charChange(w *glfw.Window, char rune) {
	p.io.AddInputCharacters(string(char))
	if p.prevChar != nil && !p.io.WantTextInput() {
		p.prevChar(w, char)
	}
}
