package sandbox

import (
	"errors"
	"fmt"

	"material-sandbox/core"
	"material-sandbox/engine"
)

func float(name string) engine.Parameter  { return engine.Parameter{Name: name, Type: engine.ParamFloat} }
func float3(name string) engine.Parameter { return engine.Parameter{Name: name, Type: engine.ParamFloat3} }
func float4(name string) engine.Parameter { return engine.Parameter{Name: name, Type: engine.ParamFloat4} }

var litParameters = []engine.Parameter{
	float("roughness"),
	float("metallic"),
	float("reflectance"),
	float("clearCoat"),
	float("clearCoatRoughness"),
	float("anisotropy"),
}

func variantDesc(v Variant) engine.MaterialDesc {
	name := "sandbox" + upperFirst(v.String())
	switch v {
	case VariantUnlit:
		return engine.MaterialDesc{
			Name:       name,
			Shading:    engine.ShadingUnlit,
			Parameters: []engine.Parameter{float3("baseColor")},
		}
	case VariantSubsurface:
		return engine.MaterialDesc{
			Name:    name,
			Shading: engine.ShadingSubsurface,
			Parameters: []engine.Parameter{
				float3("baseColor"),
				float("roughness"),
				float("metallic"),
				float("reflectance"),
				float("thickness"),
				float("subsurfacePower"),
				float3("subsurfaceColor"),
			},
		}
	case VariantCloth:
		return engine.MaterialDesc{
			Name:    name,
			Shading: engine.ShadingCloth,
			Parameters: []engine.Parameter{
				float3("baseColor"),
				float("roughness"),
				float3("sheenColor"),
				float3("subsurfaceColor"),
			},
		}
	case VariantTransparent, VariantFade:
		blending := engine.BlendingTransparent
		if v == VariantFade {
			blending = engine.BlendingFade
		}
		return engine.MaterialDesc{
			Name:       name,
			Shading:    engine.ShadingLit,
			Blending:   blending,
			Parameters: append([]engine.Parameter{float4("baseColor")}, litParameters...),
		}
	}
	return engine.MaterialDesc{
		Name:       name,
		Shading:    engine.ShadingLit,
		Parameters: append([]engine.Parameter{float3("baseColor")}, litParameters...),
	}
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}

// createInstances builds one material and instance per variant and the sun
// light, storing the handles in p.
func createInstances(p *Parameters, e *engine.Engine) error {
	for v := Variant(0); v < variantCount; v++ {
		m, err := e.CreateMaterial(variantDesc(v))
		if err != nil {
			return fmt.Errorf("material %s: %w", v, err)
		}
		p.Materials[v] = m
		mi, err := e.CreateInstance(m)
		if err != nil {
			return fmt.Errorf("instance %s: %w", v, err)
		}
		p.Instances[v] = mi
	}

	p.Light = e.EntityManager().Create()
	err := engine.NewLightBuilder(engine.LightSun).
		Color(core.RGBToLinear(p.LightColor)).
		Intensity(p.LightIntensity).
		Direction(p.LightDirection).
		CastShadows(true).
		SunAngularRadius(p.SunAngularRadius).
		SunHaloSize(p.SunHaloSize).
		SunHaloFalloff(p.SunHaloFalloff).
		Build(e, p.Light)
	if err != nil {
		return fmt.Errorf("sun light: %w", err)
	}
	return nil
}

// updateInstances pushes the tunables into the instance of the selected
// variant and returns it.
func updateInstances(p *Parameters, e *engine.Engine) (*engine.MaterialInstance, error) {
	v := p.Variant()
	mi := p.Instances[v]
	if mi == nil {
		return nil, fmt.Errorf("variant %s: no instance", v)
	}
	color := core.RGBToLinear(p.Color)

	var errs []error
	switch v {
	case VariantUnlit:
		errs = append(errs, mi.SetRGB("baseColor", color))
	case VariantLit, VariantTransparent, VariantFade:
		if v == VariantLit {
			errs = append(errs, mi.SetRGB("baseColor", color))
		} else {
			errs = append(errs, mi.SetRGBA("baseColor", core.RGBAToLinear(p.Color, p.Alpha)))
		}
		errs = append(errs,
			mi.SetFloat("roughness", p.Roughness),
			mi.SetFloat("metallic", p.Metallic),
			mi.SetFloat("reflectance", p.Reflectance),
			mi.SetFloat("clearCoat", p.ClearCoat),
			mi.SetFloat("clearCoatRoughness", p.ClearCoatRoughness),
			mi.SetFloat("anisotropy", p.Anisotropy))
	case VariantSubsurface:
		errs = append(errs,
			mi.SetRGB("baseColor", color),
			mi.SetFloat("roughness", p.Roughness),
			mi.SetFloat("metallic", p.Metallic),
			mi.SetFloat("reflectance", p.Reflectance),
			mi.SetFloat("thickness", p.Thickness),
			mi.SetFloat("subsurfacePower", p.SubsurfacePower),
			mi.SetRGB("subsurfaceColor", core.RGBToLinear(p.SubsurfaceColor)))
	case VariantCloth:
		errs = append(errs,
			mi.SetRGB("baseColor", color),
			mi.SetFloat("roughness", p.Roughness),
			mi.SetRGB("sheenColor", core.RGBToLinear(p.SheenColor)),
			mi.SetRGB("subsurfaceColor", core.RGBToLinear(p.SubsurfaceColor)))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("update %s: %w", v, err)
	}

	if lm := e.LightManager(); lm.Has(p.Light) {
		lm.SetColor(p.Light, core.RGBToLinear(p.LightColor))
		lm.SetIntensity(p.Light, p.LightIntensity)
		lm.SetDirection(p.Light, p.LightDirection)
		lm.SetSunAngularRadius(p.Light, p.SunAngularRadius)
		lm.SetSunHaloSize(p.Light, p.SunHaloSize)
		lm.SetSunHaloFalloff(p.Light, p.SunHaloFalloff)
	}
	return mi, nil
}

// destroyInstances releases what createInstances built.
func destroyInstances(p *Parameters, e *engine.Engine) error {
	var errs []error
	for v := Variant(0); v < variantCount; v++ {
		if mi := p.Instances[v]; mi != nil {
			errs = append(errs, e.DestroyMaterialInstance(mi))
			p.Instances[v] = nil
		}
	}
	for v := Variant(0); v < variantCount; v++ {
		if m := p.Materials[v]; m != nil {
			errs = append(errs, e.DestroyMaterial(m))
			p.Materials[v] = nil
		}
	}
	if !p.Light.IsNull() {
		e.DestroyEntity(p.Light)
		e.EntityManager().Destroy(p.Light)
		p.Light = 0
	}
	return errors.Join(errs...)
}
