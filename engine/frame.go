package engine

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Draw is one primitive of a scene renderable, placed in the world.
type Draw struct {
	Entity Entity
	Primitive
	World mgl32.Mat4
	// Bounds is the renderable's box in world space.
	Bounds         Box
	CastShadows    bool
	ReceiveShadows bool
	Culling        bool
	// Depth is the distance from the camera to the center of Bounds.
	Depth float32
}

// Frame is everything a driver needs to render a view once.
type Frame struct {
	View           mgl32.Mat4
	Projection     mgl32.Mat4
	CameraPosition mgl32.Vec3
	Exposure       float32

	// Opaque draws keep scene order. Blended draws are sorted back to front.
	Opaque  []Draw
	Blended []Draw

	Sun    Light
	HasSun bool

	Shadow    ShadowFrustum
	HasShadow bool

	Indirect *IndirectLight
}

// PrepareFrame gathers the draws and lights of v's scene as seen by v's
// camera. It reports false when the view has no scene or camera.
//
// With DebugOptions.CameraAtOrigin the world is translated so the camera
// sits at the origin. The image is unchanged; only the matrices differ.
func (e *Engine) PrepareFrame(v *View) (Frame, bool) {
	scene, cam := v.Scene(), v.Camera()
	if scene == nil || cam == nil {
		return Frame{}, false
	}

	f := Frame{
		View:           cam.ViewMatrix(),
		Projection:     cam.ProjectionMatrix(),
		CameraPosition: cam.Position(),
		Exposure:       cam.Exposure(),
		Indirect:       scene.IndirectLight(),
	}

	var casters, receivers []Box
	for _, ent := range scene.Entities() {
		if l, ok := e.lights.Light(ent); ok && !f.HasSun &&
			(l.Type == LightSun || l.Type == LightDirectional) {
			f.Sun, f.HasSun = l, true
		}
		if !e.renderables.Has(ent) {
			continue
		}
		world := e.transforms.WorldTransform(ent)
		bounds := e.renderables.BoundingBox(ent).Transform(world)
		cast := e.renderables.CastShadows(ent)
		receive := e.renderables.ReceiveShadows(ent)
		if cast {
			casters = append(casters, bounds)
		}
		if receive {
			receivers = append(receivers, bounds)
		}
		for _, p := range e.renderables.Primitives(ent) {
			if p.Material == nil || p.Material.destroyed || p.Vertices == nil || p.Vertices.destroyed {
				continue
			}
			d := Draw{
				Entity:         ent,
				Primitive:      p,
				World:          world,
				Bounds:         bounds,
				CastShadows:    cast,
				ReceiveShadows: receive,
				Culling:        e.renderables.Culling(ent),
				Depth:          bounds.Center.Sub(f.CameraPosition).Len(),
			}
			if p.Material.material.desc.Blending == BlendingOpaque {
				f.Opaque = append(f.Opaque, d)
			} else {
				f.Blended = append(f.Blended, d)
			}
		}
	}
	sort.SliceStable(f.Blended, func(i, j int) bool {
		return f.Blended[i].Depth > f.Blended[j].Depth
	})

	if f.HasSun && f.Sun.CastShadows && v.ShadowsEnabled() {
		f.Shadow, f.HasShadow = FitShadowFrustum(f.Sun.Direction, casters, receivers,
			e.Options.FocusShadowCasters, e.Options.FarUsesShadowCasters)
	}

	if e.Options.CameraAtOrigin {
		toWorld := mgl32.Translate3D(f.CameraPosition[0], f.CameraPosition[1], f.CameraPosition[2])
		toCamera := mgl32.Translate3D(-f.CameraPosition[0], -f.CameraPosition[1], -f.CameraPosition[2])
		f.View = f.View.Mul4(toWorld)
		f.Shadow.View = f.Shadow.View.Mul4(toWorld)
		for _, list := range [][]Draw{f.Opaque, f.Blended} {
			for i := range list {
				list[i].World = toCamera.Mul4(list[i].World)
			}
		}
		f.CameraPosition = mgl32.Vec3{}
	}
	return f, true
}
