// Package app drives the sandbox: it opens the window, creates the engine,
// views and renderer, and runs the frame loop that calls the sandbox
// callbacks.
package app

import (
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/inkyblackness/imgui-go/v4"
	"go.uber.org/zap"

	"material-sandbox/engine"
	"material-sandbox/internal/imguiglfw"
	"material-sandbox/internal/opengl"
	"material-sandbox/sandbox"
)

// Meshes are placed 4 units in front of the starting camera.
var sceneTarget = mgl32.Vec3{0, 0, -4}

// Launch opens the window and runs sb until the window closes. It matches
// sandbox.Launcher.
func Launch(opts sandbox.Options, sb *sandbox.Sandbox, log *zap.Logger) error {
	cfg := opts.Config
	window, err := NewWindow(cfg)
	if err != nil {
		return err
	}
	defer window.Destroy()

	e := engine.New(cfg.Backend, log)
	defer e.Shutdown()

	renderer, err := opengl.NewRenderer(log)
	if err != nil {
		return fmt.Errorf("renderer: %w", err)
	}
	defer renderer.Destroy()
	e.SetDriver(renderer)

	scene := e.CreateScene()
	defer e.DestroyScene(scene)
	ibl := LoadIndirectLight(e, cfg.IBLDirectory, log)
	defer e.DestroyIndirectLight(ibl)
	scene.SetIndirectLight(ibl)

	views := NewViews(e, scene, cfg.SplitView)
	defer views.Destroy(e, renderer.ReleaseView)

	manip := NewManipulator(sceneTarget, 4)
	installInput(window, views, manip)

	// The platform chains to the callbacks installed above.
	platform := imguiglfw.NewPlatform(window.Handle)
	defer platform.Dispose()
	ui, err := opengl.NewImGuiRenderer(platform.IO())
	if err != nil {
		return fmt.Errorf("gui renderer: %w", err)
	}
	defer ui.Destroy()

	// Cleanup runs even when Setup fails part way.
	defer sb.Cleanup(e, views.Main, scene)
	if err := sb.Setup(e, views.Main, scene); err != nil {
		return err
	}

	log.Info("window open",
		zap.String("title", cfg.Title),
		zap.Bool("splitView", cfg.SplitView),
		zap.Stringer("backend", e.Backend()))

	widgets := &imguiglfw.Widgets{}
	start := glfw.GetTime()
	for !window.ShouldClose() {
		window.PollEvents()

		width, height := window.FramebufferSize()
		views.Layout(width, height)
		views.Update(manip, glfw.GetTime()-start)

		platform.NewFrame()
		sb.GUI(e, views.Main, widgets)
		imgui.Render()

		for _, v := range views.All() {
			sb.PreRender(e, v, scene)
		}

		renderer.BeginFrame(width, height)
		for _, v := range views.All() {
			renderer.RenderView(e, v)
		}
		ui.Render(platform.DisplaySize(), platform.FramebufferSize(), imgui.RenderedDrawData())

		window.SwapBuffers()
	}
	return nil
}

// installInput routes mouse input in the main view to the manipulator.
func installInput(w *Window, views *Views, m *Manipulator) {
	// Cursor positions are in window coordinates; views are in pixels.
	toPixels := func(x, y float64) (float64, float64, int) {
		fw, fh := w.FramebufferSize()
		if w.Width == 0 || w.Height == 0 {
			return x, y, fh
		}
		return x * float64(fw) / float64(w.Width), y * float64(fh) / float64(w.Height), fh
	}

	w.SetMouseButtonCallback(func(b glfw.MouseButton, pressed bool, x, y float64) {
		if b != glfw.MouseButtonLeft {
			return
		}
		if !pressed {
			m.Release()
			return
		}
		if px, py, fh := toPixels(x, y); views.MainContains(px, py, fh) {
			m.Grab(x, y)
		}
	})
	w.SetCursorPosCallback(func(x, y float64) {
		m.Drag(x, y)
	})
	w.SetScrollCallback(func(_, yoff float64) {
		x, y := w.CursorPos()
		if px, py, fh := toPixels(x, y); views.MainContains(px, py, fh) {
			m.Scroll(yoff)
		}
	})
	w.SetKeyCallback(func(key glfw.Key) {
		switch key {
		case glfw.KeyEscape:
			w.Handle.SetShouldClose(true)
		case glfw.KeyR:
			m.Reset()
		}
	})
}
