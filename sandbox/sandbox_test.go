package sandbox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"material-sandbox/core"
	"material-sandbox/engine"
	"material-sandbox/gui/guitest"
)

const cubeOBJ = `o cube
v -1 -1  1
v  1 -1  1
v  1  1  1
v -1  1  1
v -1 -1 -1
v  1 -1 -1
v  1  1 -1
v -1  1 -1
f 1 2 3 4
f 6 5 8 7
f 5 1 4 8
f 2 6 7 3
f 4 3 7 8
f 5 6 2 1
`

type fixture struct {
	engine *engine.Engine
	view   *engine.View
	scene  *engine.Scene
	sb     *Sandbox
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cube.obj")
	require.NoError(t, os.WriteFile(path, []byte(cubeOBJ), 0o644))

	e := engine.New(core.BackendOpenGL, nil)
	f := &fixture{
		engine: e,
		view:   e.CreateView("main"),
		scene:  e.CreateScene(),
		sb:     New(opts, []string{path}, nil),
	}
	require.NoError(t, f.sb.Setup(f.engine, f.view, f.scene))
	return f
}

func (f *fixture) gui(w *guitest.Recorder) {
	w.Reset()
	f.sb.GUI(f.engine, f.view, w)
}

func TestSetupPopulatesScene(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	rm := f.engine.RenderableManager()

	assert.Equal(t, 1, f.scene.RenderableCount(rm))
	assert.Equal(t, 1, f.scene.LightCount(f.engine.LightManager()))
	assert.True(t, f.scene.HasEntity(f.sb.Params.Light))
	assert.Equal(t, int(variantCount), f.engine.MaterialCount()-1, "variants plus the mesh material")

	mesh := f.sb.meshes.Renderables()[1]
	assert.True(t, rm.CastShadows(mesh))
	for i := 0; i < rm.PrimitiveCount(mesh); i++ {
		assert.Same(t, f.sb.Params.Instances[VariantLit], rm.MaterialInstanceAt(mesh, i))
	}

	light, ok := f.engine.LightManager().Light(f.sb.Params.Light)
	require.True(t, ok)
	assert.Equal(t, engine.LightSun, light.Type)
	assert.True(t, light.CastShadows)
	assert.Equal(t, float32(110000), light.Intensity)
}

func TestSetupPlacesRoot(t *testing.T) {
	opts := DefaultOptions()
	opts.Config.Scale = 2
	f := newFixture(t, opts)

	root := f.sb.meshes.Renderables()[0]
	world := f.engine.TransformManager().WorldTransform(root)
	// The cube is already unit sized and centered, so the root only scales
	// and pushes it back.
	p := mgl32.TransformCoordinate(mgl32.Vec3{1, 1, 1}, world)
	assert.InDelta(t, 2, p[0], 1e-5)
	assert.InDelta(t, 2, p[1], 1e-5)
	assert.InDelta(t, -2, p[2], 1e-5)
}

func TestLightToggleRoundTrips(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	w := guitest.New()
	light := f.sb.Params.Light
	before := f.scene.HasEntity(light)
	require.True(t, before)

	w.Set("enabled", false)
	f.gui(w)
	assert.False(t, f.scene.HasEntity(light))
	assert.False(t, f.sb.Params.HasDirectionalLight)

	// No change, no effect.
	f.gui(w)
	assert.False(t, f.scene.HasEntity(light))

	w.Set("enabled", true)
	f.gui(w)
	assert.Equal(t, before, f.scene.HasEntity(light))
	assert.Equal(t, 1, f.scene.LightCount(f.engine.LightManager()))
}

func TestClothHidesLitControls(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	w := guitest.New()

	f.gui(w)
	for _, l := range []string{"blending", "metallic", "reflectance", "clearCoat", "clearCoatRoughness", "anisotropy"} {
		assert.True(t, w.Drew(l), l)
	}
	assert.False(t, w.Drew("sheenColor"))

	w.Set("model", int32(ModelCloth))
	f.gui(w)
	assert.Equal(t, ModelCloth, f.sb.Params.Model)
	for _, l := range []string{"blending", "metallic", "reflectance", "clearCoat", "clearCoatRoughness", "anisotropy", "thickness"} {
		assert.False(t, w.Drew(l), l)
	}
	assert.True(t, w.Drew("sheenColor"))
	assert.True(t, w.Drew("subsurfaceColor"))
	assert.True(t, w.Drew("roughness"))

	mesh := f.sb.meshes.Renderables()[1]
	assert.Same(t, f.sb.Params.Instances[VariantCloth], f.engine.RenderableManager().MaterialInstanceAt(mesh, 0))
}

func TestMaterialControlsPerModel(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	w := guitest.New()

	f.sb.Params.Model = ModelUnlit
	f.gui(w)
	assert.True(t, w.Drew("baseColor"))
	assert.False(t, w.Drew("roughness"))
	assert.False(t, w.Drew("blending"))

	f.sb.Params.Model = ModelSubsurface
	f.gui(w)
	for _, l := range []string{"roughness", "metallic", "reflectance", "thickness", "subsurfacePower", "subsurfaceColor"} {
		assert.True(t, w.Drew(l), l)
	}
	assert.False(t, w.Drew("clearCoat"))
	assert.False(t, w.Drew("alpha"))

	f.sb.Params.Model = ModelLit
	f.sb.Params.Blending = BlendingFade
	f.gui(w)
	assert.True(t, w.Drew("alpha"))
}

func TestMaterialHeaderClosed(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	w := guitest.New()
	w.Close("Material")
	f.gui(w)
	assert.True(t, w.Drew("Material"))
	assert.False(t, w.Drew("model"))
	assert.True(t, w.Drew("castShadows"))
}

func TestUpdateInstancesSelectsVariant(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	p := &f.sb.Params

	tests := []struct {
		model    MaterialModel
		blending BlendingMode
		want     Variant
	}{
		{ModelUnlit, BlendingFade, VariantUnlit},
		{ModelLit, BlendingOpaque, VariantLit},
		{ModelLit, BlendingTransparent, VariantTransparent},
		{ModelLit, BlendingFade, VariantFade},
		{ModelSubsurface, BlendingTransparent, VariantSubsurface},
		{ModelCloth, BlendingOpaque, VariantCloth},
	}
	for _, tt := range tests {
		p.Model, p.Blending = tt.model, tt.blending
		mi, err := updateInstances(p, f.engine)
		require.NoError(t, err)
		assert.Same(t, p.Instances[tt.want], mi, "%s/%s", tt.model, tt.blending)
	}
}

func TestUpdateInstancesConvertsColors(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	p := &f.sb.Params
	p.Model, p.Blending = ModelLit, BlendingTransparent
	p.Color = mgl32.Vec3{1, 0.5, 0}
	p.Alpha = 0.5
	p.Roughness = 0.25

	mi, err := updateInstances(p, f.engine)
	require.NoError(t, err)
	c, _ := mi.Vec4("baseColor")
	assert.InDelta(t, 0.5, c[0], 1e-6)
	assert.InDelta(t, core.SRGBToLinear(0.5)*0.5, c[1], 1e-6)
	assert.InDelta(t, 0.5, c[3], 1e-6)
	r, _ := mi.Float("roughness")
	assert.Equal(t, float32(0.25), r)

	p.Model = ModelCloth
	p.SheenColor = mgl32.Vec3{0.5, 0.5, 0.5}
	mi, err = updateInstances(p, f.engine)
	require.NoError(t, err)
	sheen, _ := mi.Vec4("sheenColor")
	assert.InDelta(t, core.SRGBToLinear(0.5), sheen[0], 1e-6)
}

func TestGUIUpdatesLightAndIBL(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	ibl := f.engine.CreateIndirectLight(engine.DefaultSphericalHarmonics(), 1)
	f.scene.SetIndirectLight(ibl)

	w := guitest.New()
	w.Set("lux", float32(5000))
	w.Set("ibl", float32(12000))
	w.Set("ibl rotation", math32.Pi/2)
	w.Set("direction", [3]float32{0, -1, 0})
	f.gui(w)

	light, _ := f.engine.LightManager().Light(f.sb.Params.Light)
	assert.Equal(t, float32(5000), light.Intensity)
	assert.InDelta(t, -1, light.Direction[1], 1e-6)
	assert.Equal(t, float32(12000), ibl.Intensity())
	assert.True(t, ibl.Rotation().ApproxEqual(mgl32.Rotate3DY(math32.Pi/2)))
}

func TestGUICastShadows(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	w := guitest.New()
	w.Set("castShadows", false)
	f.gui(w)
	mesh := f.sb.meshes.Renderables()[1]
	assert.False(t, f.engine.RenderableManager().CastShadows(mesh))
}

func TestDebugSection(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	w := guitest.New()

	w.Set("Camera at origin", true)
	f.gui(w)
	assert.True(t, f.engine.Options.CameraAtOrigin)
	assert.True(t, w.Drew("Light Far uses shadow casters"))
	assert.True(t, w.Drew("Focus shadow casters"))
	assert.False(t, w.Drew("Enable LiSPSM"))

	lispsm, dzn, dzf := false, float32(0), float32(0)
	reg := f.engine.DebugRegistry()
	reg.RegisterBool(DebugLiSPSM, &lispsm)
	reg.RegisterFloat(DebugDzn, &dzn)
	reg.RegisterFloat(DebugDzf, &dzf)

	f.gui(w)
	assert.True(t, w.Drew("Enable LiSPSM"))
	assert.False(t, w.Drew("dzn"))

	lispsm = true
	w.Set("dzf", float32(-3))
	f.gui(w)
	assert.True(t, w.Drew("dzn"))
	assert.Equal(t, float32(-1), dzf)
}

func TestPostProcessingIndentsDithering(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	w := guitest.New()
	f.gui(w)
	assert.Equal(t, 1, w.Indentation("dithering"))
	assert.Equal(t, 0, w.Indentation("fxaa"))
}

func TestPreRender(t *testing.T) {
	f := newFixture(t, DefaultOptions())

	f.sb.PreRender(f.engine, f.view, f.scene)
	assert.Equal(t, engine.AntiAliasingFXAA, f.view.AntiAliasing())
	assert.Equal(t, engine.ToneMappingACES, f.view.ToneMapping())
	assert.Equal(t, engine.DitheringTemporal, f.view.Dithering())
	assert.Equal(t, 1, f.view.SampleCount())

	p := &f.sb.Params
	p.FXAA, p.ToneMapping, p.Dithering, p.MSAA = false, false, false, true
	f.sb.PreRender(f.engine, f.view, f.scene)
	assert.Equal(t, engine.AntiAliasingNone, f.view.AntiAliasing())
	assert.Equal(t, engine.ToneMappingLinear, f.view.ToneMapping())
	assert.Equal(t, engine.DitheringNone, f.view.Dithering())
	assert.Equal(t, 4, f.view.SampleCount())
}

func TestShadowPlaneAddsOneRenderable(t *testing.T) {
	without := newFixture(t, DefaultOptions())
	opts := DefaultOptions()
	opts.ShadowPlane = true
	with := newFixture(t, opts)

	rm := with.engine.RenderableManager()
	assert.Equal(t, without.scene.RenderableCount(without.engine.RenderableManager())+1, with.scene.RenderableCount(rm))

	plane := with.sb.plane.entity
	require.True(t, with.scene.HasEntity(plane))
	prims := rm.Primitives(plane)
	require.Len(t, prims, 1)
	assert.Equal(t, planeVertices, prims[0].Vertices.Data().Positions)
	assert.Equal(t, []uint32{0, 1, 2, 2, 3, 0}, prims[0].Indices.Indices())
	assert.Equal(t, 6, prims[0].Count)
	assert.False(t, rm.CastShadows(plane))
	assert.True(t, rm.ReceiveShadows(plane))
	assert.False(t, rm.Culling(plane))
	assert.Equal(t, ShadowPlaneMaterial, prims[0].Material.Material().Name())
	assert.Equal(t, engine.ShadingShadowOnly, prims[0].Material.Material().Shading())

	n := prims[0].Vertices.Data().Normals[0]
	assert.InDelta(t, 1, n[1], 1e-6)
	world := with.engine.TransformManager().WorldTransform(plane)
	assert.Equal(t, mgl32.Vec3{0, -1, -4}, world.Col(3).Vec3())
}

func TestCleanupReleasesEverything(t *testing.T) {
	opts := DefaultOptions()
	opts.ShadowPlane = true
	f := newFixture(t, opts)
	f.gui(guitest.New())

	f.sb.Cleanup(f.engine, f.view, f.scene)
	assert.Zero(t, f.engine.MaterialCount())
	assert.Zero(t, f.engine.InstanceCount())
	assert.Zero(t, f.engine.BufferCount())
	assert.Zero(t, f.engine.EntityManager().Count())
	assert.Zero(t, f.engine.LightManager().Count())
	assert.Zero(t, f.engine.RenderableManager().Count())
	assert.Empty(t, f.sb.meshInstances)
}

func TestSetupFailsOnBadMesh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.fbx")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	e := engine.New(core.BackendOpenGL, nil)
	sb := New(DefaultOptions(), []string{path}, nil)
	err := sb.Setup(e, e.CreateView("main"), e.CreateScene())
	assert.ErrorContains(t, err, "unsupported file format")

	sb.Cleanup(e, nil, nil)
	assert.Zero(t, e.MaterialCount())
}
