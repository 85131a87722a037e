package app

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"material-sandbox/engine"
)

const (
	maxPitch    = 88.0 // degrees
	minDistance = 0.5
	maxDistance = 50.0
	zoomStep    = 0.9
)

// Manipulator orbits a camera around a target. Dragging turns the camera
// around the target and scrolling moves it closer or farther.
type Manipulator struct {
	Target   mgl32.Vec3
	Distance float32
	Yaw      float32 // degrees, 0 looks down -Z
	Pitch    float32 // degrees, positive looks down on the target

	lookSpeed float32 // degrees per pixel
	lastX     float64
	lastY     float64
	dragging  bool
	home      orbit
}

type orbit struct {
	target     mgl32.Vec3
	distance   float32
	yaw, pitch float32
}

// NewManipulator returns a manipulator with the camera distance units in
// front of target, looking down -Z.
func NewManipulator(target mgl32.Vec3, distance float32) *Manipulator {
	m := &Manipulator{
		Target:    target,
		Distance:  distance,
		lookSpeed: 0.3,
	}
	m.home = orbit{target: target, distance: distance}
	return m
}

// Grab starts a drag at window position x, y.
func (m *Manipulator) Grab(x, y float64) {
	m.lastX, m.lastY = x, y
	m.dragging = true
}

// Drag turns the camera by the cursor movement since the last call.
func (m *Manipulator) Drag(x, y float64) {
	if !m.dragging {
		return
	}
	m.Yaw -= float32(x-m.lastX) * m.lookSpeed
	m.Pitch += float32(y-m.lastY) * m.lookSpeed
	m.Pitch = mgl32.Clamp(m.Pitch, -maxPitch, maxPitch)
	m.lastX, m.lastY = x, y
}

// Release ends a drag.
func (m *Manipulator) Release() { m.dragging = false }

// Dragging reports whether a drag is in progress.
func (m *Manipulator) Dragging() bool { return m.dragging }

// Scroll zooms; positive steps move the camera closer.
func (m *Manipulator) Scroll(steps float64) {
	m.Distance *= math32.Pow(zoomStep, float32(steps))
	m.Distance = mgl32.Clamp(m.Distance, minDistance, maxDistance)
}

// Reset restores the initial placement.
func (m *Manipulator) Reset() {
	m.Target, m.Distance, m.Yaw, m.Pitch = m.home.target, m.home.distance, m.home.yaw, m.home.pitch
	m.dragging = false
}

// Eye is the camera position.
func (m *Manipulator) Eye() mgl32.Vec3 {
	return m.Target.Add(orbitOffset(m.Yaw, m.Pitch, m.Distance))
}

// Apply places c at Eye looking at Target.
func (m *Manipulator) Apply(c *engine.Camera) {
	c.LookAt(m.Eye(), m.Target, mgl32.Vec3{0, 1, 0})
}

// orbitOffset is the vector from the target to a camera at yaw and pitch
// degrees and distance away.
func orbitOffset(yaw, pitch, distance float32) mgl32.Vec3 {
	y := mgl32.DegToRad(yaw)
	p := mgl32.DegToRad(pitch)
	return mgl32.Vec3{
		math32.Cos(p) * math32.Sin(y),
		math32.Sin(p),
		math32.Cos(p) * math32.Cos(y),
	}.Mul(distance)
}
