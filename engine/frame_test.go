package engine

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"material-sandbox/core"
)

type frameFixture struct {
	e     *Engine
	scene *Scene
	view  *View
	cam   *Camera
}

func newFrameFixture(t *testing.T) *frameFixture {
	t.Helper()
	e := New(core.BackendOpenGL, nil)
	f := &frameFixture{e: e, scene: e.CreateScene(), view: e.CreateView("main"), cam: e.CreateCamera()}
	f.cam.LookAt(mgl32.Vec3{0, 0, 2}, mgl32.Vec3{0, 0, -4}, mgl32.Vec3{0, 1, 0})
	f.view.SetScene(f.scene)
	f.view.SetCamera(f.cam)
	return f
}

func (f *frameFixture) add(t *testing.T, blending Blending, at mgl32.Vec3) Entity {
	t.Helper()
	vb, ib := quad(t, f.e)
	m, err := f.e.CreateMaterial(MaterialDesc{Name: blending.String(), Shading: ShadingLit, Blending: blending})
	require.NoError(t, err)
	ent := f.e.EntityManager().Create()
	require.NoError(t, NewRenderableBuilder(1).
		BoundingBox(Box{HalfExtent: mgl32.Vec3{1, 1e-4, 1}}).
		Material(0, m.DefaultInstance()).
		Geometry(0, PrimitiveTriangles, vb, ib, 0, 6).
		CastShadows(true).
		Build(f.e, ent))
	f.e.TransformManager().Create(ent, 0, mgl32.Translate3D(at[0], at[1], at[2]))
	f.scene.AddEntity(ent)
	return ent
}

func (f *frameFixture) sun(t *testing.T, castShadows bool) Entity {
	t.Helper()
	ent := f.e.EntityManager().Create()
	require.NoError(t, NewLightBuilder(LightSun).
		Direction(mgl32.Vec3{0.1, -1, 0}).
		Intensity(110000).
		CastShadows(castShadows).
		Build(f.e, ent))
	f.scene.AddEntity(ent)
	return ent
}

func TestPrepareFrameNeedsSceneAndCamera(t *testing.T) {
	e := New(core.BackendOpenGL, nil)
	v := e.CreateView("empty")
	_, ok := e.PrepareFrame(v)
	assert.False(t, ok)

	v.SetScene(e.CreateScene())
	_, ok = e.PrepareFrame(v)
	assert.False(t, ok)
}

func TestPrepareFrameSplitsAndSortsDraws(t *testing.T) {
	f := newFrameFixture(t)
	opaque := f.add(t, BlendingOpaque, mgl32.Vec3{0, 0, -4})
	near := f.add(t, BlendingTransparent, mgl32.Vec3{0, 0, -1})
	far := f.add(t, BlendingFade, mgl32.Vec3{0, 0, -9})

	fr, ok := f.e.PrepareFrame(f.view)
	require.True(t, ok)
	require.Len(t, fr.Opaque, 1)
	assert.Equal(t, opaque, fr.Opaque[0].Entity)
	require.Len(t, fr.Blended, 2)
	assert.Equal(t, far, fr.Blended[0].Entity)
	assert.Equal(t, near, fr.Blended[1].Entity)

	assert.InDelta(t, 6, fr.Opaque[0].Depth, 1e-5)
	assert.Equal(t, mgl32.Vec3{0, 0, -4}, fr.Opaque[0].Bounds.Center)
	assert.Equal(t, f.cam.Exposure(), fr.Exposure)
	assert.False(t, fr.HasSun)
	assert.False(t, fr.HasShadow)
}

func TestPrepareFrameSkipsDrawsWithoutMaterial(t *testing.T) {
	f := newFrameFixture(t)
	ent := f.add(t, BlendingOpaque, mgl32.Vec3{})
	require.NoError(t, f.e.RenderableManager().SetMaterialInstanceAt(ent, 0, nil))

	fr, ok := f.e.PrepareFrame(f.view)
	require.True(t, ok)
	assert.Empty(t, fr.Opaque)
}

func TestPrepareFrameShadows(t *testing.T) {
	f := newFrameFixture(t)
	f.add(t, BlendingOpaque, mgl32.Vec3{0, 0, -4})
	f.sun(t, true)

	fr, ok := f.e.PrepareFrame(f.view)
	require.True(t, ok)
	assert.True(t, fr.HasSun)
	assert.Equal(t, float32(110000), fr.Sun.Intensity)
	assert.True(t, fr.HasShadow)

	f.view.SetShadowsEnabled(false)
	fr, _ = f.e.PrepareFrame(f.view)
	assert.True(t, fr.HasSun)
	assert.False(t, fr.HasShadow)

	f.view.SetShadowsEnabled(true)
	for _, ent := range f.scene.Entities() {
		f.e.RenderableManager().SetCastShadows(ent, false)
	}
	fr, _ = f.e.PrepareFrame(f.view)
	assert.False(t, fr.HasShadow, "nothing casts")
}

func TestPrepareFrameCameraAtOrigin(t *testing.T) {
	f := newFrameFixture(t)
	f.add(t, BlendingOpaque, mgl32.Vec3{0, 0, -4})
	f.sun(t, true)

	plain, ok := f.e.PrepareFrame(f.view)
	require.True(t, ok)

	f.e.Options.CameraAtOrigin = true
	shifted, ok := f.e.PrepareFrame(f.view)
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{}, shifted.CameraPosition)

	// Same clip-space result for a point on the quad.
	p := mgl32.Vec4{0.5, 0, 0.5, 1}
	clip := func(fr Frame) mgl32.Vec4 {
		return fr.Projection.Mul4(fr.View).Mul4(fr.Opaque[0].World).Mul4x1(p)
	}
	shadow := func(fr Frame) mgl32.Vec4 {
		return fr.Shadow.ViewProjection().Mul4(fr.Opaque[0].World).Mul4x1(p)
	}
	assert.True(t, clip(plain).ApproxEqualThreshold(clip(shifted), 1e-4))
	assert.True(t, shadow(plain).ApproxEqualThreshold(shadow(shifted), 1e-4))
}
