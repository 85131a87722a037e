package app

import (
	"github.com/go-gl/mathgl/mgl32"

	"material-sandbox/engine"
)

const (
	fovY        = 45.0
	nearPlane   = 0.1
	farPlane    = 100.0
	godDistance = 16.0
	godPitch    = 55.0
	godSpeed    = 10.0 // degrees per second
	orthoHeight = 3.0  // half extent of the ortho views
	orthoDepth  = 20.0
)

// Views owns the window's views and their cameras. Without split view only
// the main view is used.
type Views struct {
	Main  *engine.View
	God   *engine.View
	Top   *engine.View
	Front *engine.View

	split   bool
	cameras []*engine.Camera
}

// NewViews creates the views for scene. The main camera gets the sandbox
// exposure of f/16, 1/125 s, ISO 100.
func NewViews(e *engine.Engine, scene *engine.Scene, split bool) *Views {
	vs := &Views{split: split}
	newView := func(name string) *engine.View {
		c := e.CreateCamera()
		c.SetExposure(16, 1.0/125.0, 100)
		v := e.CreateView(name)
		v.SetScene(scene)
		v.SetCamera(c)
		vs.cameras = append(vs.cameras, c)
		return v
	}
	vs.Main = newView("main")
	if split {
		vs.God = newView("god")
		vs.Top = newView("top")
		vs.Front = newView("front")
	}
	return vs
}

// All lists the views in draw order.
func (vs *Views) All() []*engine.View {
	if !vs.split {
		return []*engine.View{vs.Main}
	}
	return []*engine.View{vs.Main, vs.God, vs.Top, vs.Front}
}

// Layout assigns viewports for a framebuffer of width x height pixels and
// updates the camera projections to match.
func (vs *Views) Layout(width, height int) {
	for i, vp := range layout(width, height, vs.split) {
		v := vs.All()[i]
		v.SetViewport(vp)
		aspect := float32(1)
		if vp.Height > 0 {
			aspect = float32(vp.Width) / float32(vp.Height)
		}
		c := v.Camera()
		if v == vs.Top || v == vs.Front {
			c.SetOrtho(-orthoHeight*aspect, orthoHeight*aspect, -orthoHeight, orthoHeight, nearPlane, orthoDepth*2)
		} else {
			c.SetProjection(fovY, aspect, nearPlane, farPlane)
		}
	}
}

// Update places every camera for this frame. seconds is the time since
// start and drives the god camera orbit.
func (vs *Views) Update(m *Manipulator, seconds float64) {
	m.Apply(vs.Main.Camera())
	if !vs.split {
		return
	}
	target := m.Target
	up := mgl32.Vec3{0, 1, 0}
	vs.God.Camera().LookAt(godEye(target, seconds), target, up)
	vs.Top.Camera().LookAt(target.Add(mgl32.Vec3{0, orthoDepth, 0}), target, mgl32.Vec3{0, 0, -1})
	vs.Front.Camera().LookAt(target.Add(mgl32.Vec3{0, 0, orthoDepth}), target, up)
}

// MainContains reports whether pixel position x, y, measured from the top
// left of a framebuffer of the given height, is inside the main view.
func (vs *Views) MainContains(x, y float64, height int) bool {
	vp := vs.Main.Viewport()
	py := float64(height) - y
	return x >= float64(vp.Left) && x < float64(vp.Left+vp.Width) &&
		py >= float64(vp.Bottom) && py < float64(vp.Bottom+vp.Height)
}

// Destroy destroys the views and cameras. release frees per-view renderer
// state first.
func (vs *Views) Destroy(e *engine.Engine, release func(*engine.View)) {
	for _, v := range vs.All() {
		if release != nil {
			release(v)
		}
		e.DestroyView(v)
	}
	for _, c := range vs.cameras {
		e.DestroyCamera(c)
	}
	vs.cameras = nil
}

// layout splits a framebuffer into the view viewports, main first. Split
// view puts main bottom left, god top right, top bottom right and front
// top left.
func layout(width, height int, split bool) []engine.Viewport {
	if !split {
		return []engine.Viewport{{Width: width, Height: height}}
	}
	hw, hh := width/2, height/2
	return []engine.Viewport{
		{Left: 0, Bottom: 0, Width: hw, Height: hh},
		{Left: hw, Bottom: hh, Width: width - hw, Height: height - hh},
		{Left: hw, Bottom: 0, Width: width - hw, Height: hh},
		{Left: 0, Bottom: hh, Width: hw, Height: height - hh},
	}
}

func godEye(target mgl32.Vec3, seconds float64) mgl32.Vec3 {
	yaw := float32(seconds * godSpeed)
	return target.Add(orbitOffset(yaw, godPitch, godDistance))
}
