// Package sandbox is the material sandbox: a parameter store edited through
// an immediate-mode GUI and pushed into engine materials, lights and views
// every frame.
package sandbox

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"material-sandbox/core"
	"material-sandbox/engine"
	"material-sandbox/gui"
	"material-sandbox/mesh"
)

// Debug properties the GUI shows only when the engine registers them.
const (
	DebugLiSPSM = "d.shadowmap.lispsm"
	DebugDzn    = "d.shadowmap.dzn"
	DebugDzf    = "d.shadowmap.dzf"
)

// Sandbox holds the state shared by the application callbacks.
type Sandbox struct {
	Options Options
	Files   []string
	Params  Parameters

	log *zap.Logger

	scene         *engine.Scene
	meshes        *mesh.Set
	meshInstances map[string]*engine.MaterialInstance
	plane         *shadowPlane
	presets       *PresetWatcher
}

// New returns a sandbox that will load files at setup.
func New(opts Options, files []string, log *zap.Logger) *Sandbox {
	return &Sandbox{
		Options:       opts,
		Files:         files,
		Params:        DefaultParameters(),
		log:           core.OrNop(log),
		meshInstances: map[string]*engine.MaterialInstance{},
	}
}

// Setup loads the meshes into scene and creates the material variants, the
// sun and optionally the shadow plane.
func (s *Sandbox) Setup(e *engine.Engine, view *engine.View, scene *engine.Scene) error {
	s.scene = scene

	if path := s.Options.PresetPath; path != "" {
		if err := LoadPreset(path, &s.Params.Tunables); err != nil {
			s.log.Warn("preset not loaded", zap.String("path", path), zap.Error(err))
		}
		pw, err := WatchPreset(path, s.log)
		if err != nil {
			s.log.Warn("preset not watched", zap.String("path", path), zap.Error(err))
		} else {
			s.presets = pw
		}
	}

	s.meshes = mesh.NewSet(e, s.log)
	if err := createInstances(&s.Params, e); err != nil {
		return fmt.Errorf("setup: %w", err)
	}

	for _, filename := range s.Files {
		if err := s.meshes.AddFromFile(filename, s.meshInstances); err != nil {
			return fmt.Errorf("setup: %w", err)
		}
	}

	tm := e.TransformManager()
	rm := e.RenderableManager()
	renderables := s.meshes.Renderables()
	if len(renderables) > 0 {
		root := renderables[0]
		sc := s.Options.Config.Scale
		placement := mgl32.Translate3D(0, 0, -4).Mul4(mgl32.Scale3D(sc, sc, sc))
		tm.SetTransform(root, placement.Mul4(tm.WorldTransform(root)))
	}

	lit := s.Params.Instances[VariantLit]
	for _, r := range renderables {
		if !rm.Has(r) {
			continue
		}
		rm.SetCastShadows(r, s.Params.CastShadows)
		for i := 0; i < rm.PrimitiveCount(r); i++ {
			if err := rm.SetMaterialInstanceAt(r, i, lit); err != nil {
				return fmt.Errorf("setup: %w", err)
			}
		}
		scene.AddEntity(r)
	}

	scene.AddEntity(s.Params.Light)
	s.Params.HasDirectionalLight = true
	// A preset may start with the light off.
	s.applyLightToggle()

	if s.Options.ShadowPlane {
		plane, err := createShadowPlane(e)
		if err != nil {
			return fmt.Errorf("setup: %w", err)
		}
		s.plane = plane
		scene.AddEntity(plane.entity)
	}

	s.log.Info("scene ready",
		zap.Int("files", len(s.Files)),
		zap.Int("renderables", scene.RenderableCount(rm)),
		zap.Bool("shadowPlane", s.plane != nil))
	return nil
}

// Cleanup destroys everything Setup created.
func (s *Sandbox) Cleanup(e *engine.Engine, view *engine.View, scene *engine.Scene) {
	var errs []error
	if s.presets != nil {
		errs = append(errs, s.presets.Close())
		s.presets = nil
	}
	for name, mi := range s.meshInstances {
		errs = append(errs, e.DestroyMaterialInstance(mi))
		delete(s.meshInstances, name)
	}
	errs = append(errs, destroyInstances(&s.Params, e))
	if s.meshes != nil {
		s.meshes.Destroy()
		s.meshes = nil
	}
	if s.plane != nil {
		errs = append(errs, s.plane.destroy(e))
		s.plane = nil
	}
	if err := errors.Join(errs...); err != nil {
		s.log.Error("cleanup", zap.Error(err))
	}
}

// PreRender copies the post-processing settings onto view.
func (s *Sandbox) PreRender(e *engine.Engine, view *engine.View, scene *engine.Scene) {
	p := &s.Params
	if p.FXAA {
		view.SetAntiAliasing(engine.AntiAliasingFXAA)
	} else {
		view.SetAntiAliasing(engine.AntiAliasingNone)
	}
	if p.ToneMapping {
		view.SetToneMapping(engine.ToneMappingACES)
	} else {
		view.SetToneMapping(engine.ToneMappingLinear)
	}
	if p.Dithering {
		view.SetDithering(engine.DitheringTemporal)
	} else {
		view.SetDithering(engine.DitheringNone)
	}
	if p.MSAA {
		view.SetSampleCount(4)
	} else {
		view.SetSampleCount(1)
	}
}

// GUI draws the parameter window and applies the parameters to the scene.
func (s *Sandbox) GUI(e *engine.Engine, view *engine.View, w gui.Widgets) {
	s.reloadPreset()

	p := &s.Params
	w.SetNextWindowSize(0, 0)
	w.Begin("Parameters")
	s.materialSection(w)
	if w.CollapsingHeader("Object", false) {
		w.Checkbox("castShadows", &p.CastShadows)
	}
	s.lightSection(w)
	if w.CollapsingHeader("Post-processing", false) {
		w.Checkbox("msaa 4x", &p.MSAA)
		w.Checkbox("tone-mapping", &p.ToneMapping)
		w.Indent()
		w.Checkbox("dithering", &p.Dithering)
		w.Unindent()
		w.Checkbox("fxaa", &p.FXAA)
	}
	debugSection(e.DebugRegistry(), w)
	s.presetSection(w)
	w.End()

	s.apply(e)
}

func (s *Sandbox) materialSection(w gui.Widgets) {
	p := &s.Params
	if !w.CollapsingHeader("Material", true) {
		return
	}
	w.Combo("model", (*int32)(&p.Model), modelNames)
	if p.Model == ModelLit {
		w.Combo("blending", (*int32)(&p.Blending), blendingNames)
	}
	w.ColorEdit3("baseColor", (*[3]float32)(&p.Color))

	if p.Model <= ModelUnlit {
		return
	}
	if p.Blending == BlendingTransparent || p.Blending == BlendingFade {
		w.SliderFloat("alpha", &p.Alpha, 0, 1)
	}
	w.SliderFloat("roughness", &p.Roughness, 0, 1)
	if p.Model != ModelCloth {
		w.SliderFloat("metallic", &p.Metallic, 0, 1)
		w.SliderFloat("reflectance", &p.Reflectance, 0, 1)
	}
	if p.Model != ModelCloth && p.Model != ModelSubsurface {
		w.SliderFloat("clearCoat", &p.ClearCoat, 0, 1)
		w.SliderFloat("clearCoatRoughness", &p.ClearCoatRoughness, 0, 1)
		w.SliderFloat("anisotropy", &p.Anisotropy, -1, 1)
	}
	switch p.Model {
	case ModelSubsurface:
		w.SliderFloat("thickness", &p.Thickness, 0, 1)
		w.SliderFloat("subsurfacePower", &p.SubsurfacePower, 1, 24)
		w.ColorEdit3("subsurfaceColor", (*[3]float32)(&p.SubsurfaceColor))
	case ModelCloth:
		w.ColorEdit3("sheenColor", (*[3]float32)(&p.SheenColor))
		w.ColorEdit3("subsurfaceColor", (*[3]float32)(&p.SubsurfaceColor))
	}
}

func (s *Sandbox) lightSection(w gui.Widgets) {
	p := &s.Params
	if !w.CollapsingHeader("Light", false) {
		return
	}
	w.Checkbox("enabled", &p.DirectionalLightEnabled)
	w.ColorEdit3("color", (*[3]float32)(&p.LightColor))
	w.SliderFloat("lux", &p.LightIntensity, 0, 150000)
	w.SliderFloat("sunSize", &p.SunAngularRadius, 0.1, 10)
	w.SliderFloat("haloSize", &p.SunHaloSize, 1.01, 40)
	w.SliderFloat("haloFalloff", &p.SunHaloFalloff, 0, 2048)
	w.SliderFloat("ibl", &p.IBLIntensity, 0, 50000)
	w.SliderAngle("ibl rotation", &p.IBLRotation)
	w.Direction("direction", (*[3]float32)(&p.LightDirection))
}

func debugSection(r *engine.DebugRegistry, w gui.Widgets) {
	if !w.CollapsingHeader("Debug", false) {
		return
	}
	if v, ok := r.BoolProperty(engine.DebugCameraAtOrigin); ok {
		w.Checkbox("Camera at origin", v)
	}
	if v, ok := r.BoolProperty(engine.DebugFarUsesShadowCasters); ok {
		w.Checkbox("Light Far uses shadow casters", v)
	}
	if v, ok := r.BoolProperty(engine.DebugFocusShadowCasters); ok {
		w.Checkbox("Focus shadow casters", v)
	}
	lispsm, ok := r.BoolProperty(DebugLiSPSM)
	if !ok {
		return
	}
	w.Checkbox("Enable LiSPSM", lispsm)
	if !*lispsm {
		return
	}
	if v, ok := r.FloatProperty(DebugDzn); ok {
		w.SliderFloat("dzn", v, 0, 1)
	}
	if v, ok := r.FloatProperty(DebugDzf); ok {
		w.SliderFloat("dzf", v, -1, 0)
	}
}

func (s *Sandbox) presetSection(w gui.Widgets) {
	path := s.Options.PresetPath
	if path == "" || !w.CollapsingHeader("Preset", false) {
		return
	}
	w.Text(path)
	if w.Button("save preset") {
		if err := SavePreset(path, s.Params.Tunables); err != nil {
			s.log.Error("preset not saved", zap.String("path", path), zap.Error(err))
		} else {
			s.log.Info("preset saved", zap.String("path", path))
		}
	}
}

// reloadPreset applies a pending change reported by the preset watcher.
func (s *Sandbox) reloadPreset() {
	if s.presets == nil {
		return
	}
	select {
	case <-s.presets.Changed():
	default:
		return
	}
	path := s.Options.PresetPath
	if err := LoadPreset(path, &s.Params.Tunables); err != nil {
		s.log.Warn("preset not reloaded", zap.String("path", path), zap.Error(err))
		return
	}
	s.log.Info("preset reloaded", zap.String("path", path))
}

// apply pushes the parameter store into the engine.
func (s *Sandbox) apply(e *engine.Engine) {
	p := &s.Params
	mi, err := updateInstances(p, e)
	if err != nil {
		s.log.Error("material not updated", zap.Error(err))
		return
	}

	rm := e.RenderableManager()
	if s.meshes != nil {
		for _, r := range s.meshes.Renderables() {
			if !rm.Has(r) {
				continue
			}
			for i := 0; i < rm.PrimitiveCount(r); i++ {
				if err := rm.SetMaterialInstanceAt(r, i, mi); err != nil {
					s.log.Error("material not assigned", zap.Error(err))
				}
			}
			rm.SetCastShadows(r, p.CastShadows)
		}
	}

	s.applyLightToggle()

	if s.scene == nil {
		return
	}
	if ibl := s.scene.IndirectLight(); ibl != nil {
		ibl.SetIntensity(p.IBLIntensity)
		ibl.SetRotation(mgl32.Rotate3DY(p.IBLRotation))
	}
}

// applyLightToggle adds or removes the sun when the enabled flag changed.
func (s *Sandbox) applyLightToggle() {
	p := &s.Params
	if s.scene == nil || p.Light.IsNull() {
		return
	}
	switch {
	case p.DirectionalLightEnabled && !p.HasDirectionalLight:
		s.scene.AddEntity(p.Light)
		p.HasDirectionalLight = true
	case !p.DirectionalLightEnabled && p.HasDirectionalLight:
		s.scene.Remove(p.Light)
		p.HasDirectionalLight = false
	}
}
