package sandbox

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"material-sandbox/engine"
)

// MaterialModel selects the shading model edited in the GUI.
type MaterialModel int32

const (
	ModelUnlit MaterialModel = iota
	ModelLit
	ModelSubsurface
	ModelCloth
)

var modelNames = []string{"unlit", "lit", "subsurface", "cloth"}

func (m MaterialModel) String() string {
	if m >= 0 && int(m) < len(modelNames) {
		return modelNames[m]
	}
	return fmt.Sprintf("MaterialModel(%d)", int32(m))
}

func (m MaterialModel) MarshalText() ([]byte, error) {
	if m < 0 || int(m) >= len(modelNames) {
		return nil, fmt.Errorf("invalid material model %d", int32(m))
	}
	return []byte(m.String()), nil
}

func (m *MaterialModel) UnmarshalText(text []byte) error {
	i, err := lookup(modelNames, string(text))
	if err != nil {
		return fmt.Errorf("material model: %w", err)
	}
	*m = MaterialModel(i)
	return nil
}

// BlendingMode applies to the lit model only.
type BlendingMode int32

const (
	BlendingOpaque BlendingMode = iota
	BlendingTransparent
	BlendingFade
)

var blendingNames = []string{"opaque", "transparent", "fade"}

func (b BlendingMode) String() string {
	if b >= 0 && int(b) < len(blendingNames) {
		return blendingNames[b]
	}
	return fmt.Sprintf("BlendingMode(%d)", int32(b))
}

func (b BlendingMode) MarshalText() ([]byte, error) {
	if b < 0 || int(b) >= len(blendingNames) {
		return nil, fmt.Errorf("invalid blending mode %d", int32(b))
	}
	return []byte(b.String()), nil
}

func (b *BlendingMode) UnmarshalText(text []byte) error {
	i, err := lookup(blendingNames, string(text))
	if err != nil {
		return fmt.Errorf("blending mode: %w", err)
	}
	*b = BlendingMode(i)
	return nil
}

func lookup(names []string, s string) (int, error) {
	for i, n := range names {
		if n == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown value %q", s)
}

// Variant indexes the material and instance created per shading setup.
type Variant int

const (
	VariantUnlit Variant = iota
	VariantLit
	VariantSubsurface
	VariantCloth
	VariantTransparent
	VariantFade

	variantCount
)

var variantNames = [variantCount]string{"unlit", "lit", "subsurface", "cloth", "transparent", "fade"}

func (v Variant) String() string {
	if v >= 0 && v < variantCount {
		return variantNames[v]
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

// Tunables holds every value the GUI edits. Colors are sRGB.
type Tunables struct {
	Model    MaterialModel `toml:"model"`
	Blending BlendingMode  `toml:"blending"`

	Color              mgl32.Vec3 `toml:"baseColor"`
	Alpha              float32    `toml:"alpha"`
	Roughness          float32    `toml:"roughness"`
	Metallic           float32    `toml:"metallic"`
	Reflectance        float32    `toml:"reflectance"`
	ClearCoat          float32    `toml:"clearCoat"`
	ClearCoatRoughness float32    `toml:"clearCoatRoughness"`
	Anisotropy         float32    `toml:"anisotropy"`
	Thickness          float32    `toml:"thickness"`
	SubsurfacePower    float32    `toml:"subsurfacePower"`
	SubsurfaceColor    mgl32.Vec3 `toml:"subsurfaceColor"`
	SheenColor         mgl32.Vec3 `toml:"sheenColor"`

	CastShadows bool `toml:"castShadows"`

	LightColor              mgl32.Vec3 `toml:"lightColor"`
	LightIntensity          float32    `toml:"lightIntensity"`
	LightDirection          mgl32.Vec3 `toml:"lightDirection"`
	SunAngularRadius        float32    `toml:"sunAngularRadius"`
	SunHaloSize             float32    `toml:"sunHaloSize"`
	SunHaloFalloff          float32    `toml:"sunHaloFalloff"`
	DirectionalLightEnabled bool       `toml:"directionalLightEnabled"`

	IBLIntensity float32 `toml:"iblIntensity"`
	IBLRotation  float32 `toml:"iblRotation"`

	MSAA        bool `toml:"msaa"`
	ToneMapping bool `toml:"tonemapping"`
	Dithering   bool `toml:"dithering"`
	FXAA        bool `toml:"fxaa"`
}

// Parameters is the parameter store: the tunables plus the engine objects
// created for them. Handles are valid between Setup and Cleanup.
type Parameters struct {
	Tunables

	// HasDirectionalLight tracks whether the light is in the scene.
	HasDirectionalLight bool

	Materials [variantCount]*engine.Material
	Instances [variantCount]*engine.MaterialInstance
	Light     engine.Entity
}

// DefaultTunables returns the startup values.
func DefaultTunables() Tunables {
	return Tunables{
		Model:    ModelLit,
		Blending: BlendingOpaque,

		Color:           mgl32.Vec3{0.69, 0.69, 0.69},
		Alpha:           1,
		Roughness:       0.6,
		Reflectance:     0.5,
		Thickness:       1,
		SubsurfacePower: 12.234,
		SheenColor:      mgl32.Vec3{0.83, 0.83, 0.83},

		CastShadows: true,

		LightColor:              mgl32.Vec3{0.98, 0.92, 0.89},
		LightIntensity:          110000,
		LightDirection:          mgl32.Vec3{0.6, -1, -0.8},
		SunAngularRadius:        1.9,
		SunHaloSize:             10,
		SunHaloFalloff:          80,
		DirectionalLightEnabled: true,

		IBLIntensity: 30000,

		ToneMapping: true,
		Dithering:   true,
		FXAA:        true,
	}
}

// DefaultParameters returns a store with default tunables and no engine
// objects.
func DefaultParameters() Parameters {
	return Parameters{Tunables: DefaultTunables(), HasDirectionalLight: true}
}

// Variant returns the variant the current model and blending select.
// Blending only matters for the lit model.
func (t *Tunables) Variant() Variant {
	switch t.Model {
	case ModelUnlit:
		return VariantUnlit
	case ModelSubsurface:
		return VariantSubsurface
	case ModelCloth:
		return VariantCloth
	}
	switch t.Blending {
	case BlendingTransparent:
		return VariantTransparent
	case BlendingFade:
		return VariantFade
	}
	return VariantLit
}
