package engine

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Projection is the kind of projection a camera uses.
type Projection int

const (
	ProjectionPerspective Projection = iota
	ProjectionOrtho
)

// Camera holds a projection, a placement in the world and physically based
// exposure settings.
type Camera struct {
	projection Projection

	// Perspective.
	fovY   float32 // degrees
	aspect float32

	// Ortho.
	left, right, bottom, top float32

	near, far float32

	eye, center, up mgl32.Vec3

	aperture     float32 // f-stops
	shutterSpeed float32 // seconds
	sensitivity  float32 // ISO

	// Cached matrices
	view       mgl32.Mat4
	projMatrix mgl32.Mat4
	dirty      bool
}

func newCamera() *Camera {
	c := &Camera{
		projection: ProjectionPerspective,
		fovY:       45,
		aspect:     1,
		near:       0.1,
		far:        100,
		center:     mgl32.Vec3{0, 0, -1},
		up:         mgl32.Vec3{0, 1, 0},
		dirty:      true,
	}
	c.SetExposure(16, 1.0/125.0, 100)
	return c
}

// SetProjection makes the camera a perspective camera. fovY is the vertical
// field of view in degrees.
func (c *Camera) SetProjection(fovY, aspect, near, far float32) {
	c.projection = ProjectionPerspective
	c.fovY, c.aspect, c.near, c.far = fovY, aspect, near, far
	c.dirty = true
}

// SetOrtho makes the camera orthographic.
func (c *Camera) SetOrtho(left, right, bottom, top, near, far float32) {
	c.projection = ProjectionOrtho
	c.left, c.right, c.bottom, c.top = left, right, bottom, top
	c.near, c.far = near, far
	c.dirty = true
}

// LookAt places the camera at eye looking at center.
func (c *Camera) LookAt(eye, center, up mgl32.Vec3) {
	c.eye, c.center, c.up = eye, center, up
	c.dirty = true
}

// SetExposure sets aperture (f-stops), shutter speed (s) and ISO.
func (c *Camera) SetExposure(aperture, shutterSpeed, sensitivity float32) {
	c.aperture, c.shutterSpeed, c.sensitivity = aperture, shutterSpeed, sensitivity
}

// EV100 is the exposure value at ISO 100 for the camera settings.
func (c *Camera) EV100() float32 {
	return math32.Log2((c.aperture * c.aperture) / c.shutterSpeed * 100 / c.sensitivity)
}

// Exposure is the factor that maps luminance in cd/m² to the [0, 1]
// range of the sensor.
func (c *Camera) Exposure() float32 {
	return 1.0 / (1.2 * math32.Pow(2, c.EV100()))
}

func (c *Camera) Projection() Projection { return c.projection }
func (c *Camera) Near() float32          { return c.near }
func (c *Camera) Far() float32           { return c.far }
func (c *Camera) FovY() float32          { return c.fovY }
func (c *Camera) Aspect() float32        { return c.aspect }
func (c *Camera) Position() mgl32.Vec3   { return c.eye }
func (c *Camera) Target() mgl32.Vec3     { return c.center }

// Forward is the unit vector the camera looks along.
func (c *Camera) Forward() mgl32.Vec3 {
	return normalizeOr(c.center.Sub(c.eye), mgl32.Vec3{0, 0, -1})
}

// ViewMatrix is the world to camera transform.
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	if c.dirty {
		c.updateMatrices()
	}
	return c.view
}

// ProjectionMatrix is the camera to clip transform.
func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	if c.dirty {
		c.updateMatrices()
	}
	return c.projMatrix
}

// ModelMatrix is the camera to world transform.
func (c *Camera) ModelMatrix() mgl32.Mat4 {
	return c.ViewMatrix().Inv()
}

func (c *Camera) updateMatrices() {
	c.view = mgl32.LookAtV(c.eye, c.center, c.up)
	switch c.projection {
	case ProjectionOrtho:
		c.projMatrix = mgl32.Ortho(c.left, c.right, c.bottom, c.top, c.near, c.far)
	default:
		c.projMatrix = mgl32.Perspective(mgl32.DegToRad(c.fovY), c.aspect, c.near, c.far)
	}
	c.dirty = false
}
