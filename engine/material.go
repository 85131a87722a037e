package engine

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

var (
	// ErrUnknownParameter is returned when setting a parameter the material
	// does not declare.
	ErrUnknownParameter = errors.New("engine: unknown material parameter")
	// ErrParameterType is returned when a parameter is set with the wrong type.
	ErrParameterType = errors.New("engine: material parameter type mismatch")
)

// Shading selects the lighting model a material is evaluated with.
type Shading int

const (
	ShadingUnlit Shading = iota
	ShadingLit
	ShadingSubsurface
	ShadingCloth
	// ShadingShadowOnly renders only the shadows a surface receives.
	ShadingShadowOnly
)

func (s Shading) String() string {
	switch s {
	case ShadingUnlit:
		return "unlit"
	case ShadingLit:
		return "lit"
	case ShadingSubsurface:
		return "subsurface"
	case ShadingCloth:
		return "cloth"
	case ShadingShadowOnly:
		return "shadowOnly"
	}
	return fmt.Sprintf("Shading(%d)", int(s))
}

// Blending selects how a material composites over what is behind it.
type Blending int

const (
	BlendingOpaque Blending = iota
	// BlendingTransparent expects premultiplied color; specular highlights
	// stay visible when alpha goes to zero.
	BlendingTransparent
	// BlendingFade fades the whole surface, specular included.
	BlendingFade
)

func (b Blending) String() string {
	switch b {
	case BlendingOpaque:
		return "opaque"
	case BlendingTransparent:
		return "transparent"
	case BlendingFade:
		return "fade"
	}
	return fmt.Sprintf("Blending(%d)", int(b))
}

// ParamType is the type of a material parameter.
type ParamType int

const (
	ParamFloat ParamType = iota
	ParamFloat3
	ParamFloat4
)

// Parameter declares one material input.
type Parameter struct {
	Name string
	Type ParamType
}

// MaterialDesc describes a material to create.
type MaterialDesc struct {
	Name       string
	Shading    Shading
	Blending   Blending
	Parameters []Parameter
	// DoubleSided disables back-face culling.
	DoubleSided bool
}

// Material is a shading model plus a parameter layout. Values live in its
// instances.
type Material struct {
	desc            MaterialDesc
	params          map[string]ParamType
	defaultInstance *MaterialInstance
	instanceSeq     int
	live            int
	destroyed       bool
}

// CreateMaterial validates desc and creates the material and its default
// instance.
func (e *Engine) CreateMaterial(desc MaterialDesc) (*Material, error) {
	if desc.Name == "" {
		return nil, fmt.Errorf("create material: empty name")
	}
	params := make(map[string]ParamType, len(desc.Parameters))
	for _, p := range desc.Parameters {
		if p.Name == "" {
			return nil, fmt.Errorf("create material %q: parameter with empty name", desc.Name)
		}
		if _, dup := params[p.Name]; dup {
			return nil, fmt.Errorf("create material %q: duplicate parameter %q", desc.Name, p.Name)
		}
		params[p.Name] = p.Type
	}
	desc.Parameters = append([]Parameter(nil), desc.Parameters...)

	m := &Material{desc: desc, params: params}
	m.defaultInstance = &MaterialInstance{
		material: m,
		name:     desc.Name,
		values:   map[string]mgl32.Vec4{},
	}
	e.materials[m] = struct{}{}
	e.log.Debug("material created", zap.String("name", desc.Name), zap.Stringer("shading", desc.Shading))
	return m, nil
}

func (m *Material) Name() string            { return m.desc.Name }
func (m *Material) Shading() Shading        { return m.desc.Shading }
func (m *Material) Blending() Blending      { return m.desc.Blending }
func (m *Material) DoubleSided() bool       { return m.desc.DoubleSided }
func (m *Material) Parameters() []Parameter { return append([]Parameter(nil), m.desc.Parameters...) }
func (m *Material) IsDestroyed() bool       { return m.destroyed }

// DefaultInstance returns the instance owned by the material itself.
func (m *Material) DefaultInstance() *MaterialInstance { return m.defaultInstance }

// HasParameter reports whether the material declares name.
func (m *Material) HasParameter(name string) bool {
	_, ok := m.params[name]
	return ok
}

// CreateInstance returns a new instance of m. Its values start unset, which
// renderers treat as the parameter's built-in default.
func (e *Engine) CreateInstance(m *Material) (*MaterialInstance, error) {
	if m == nil || m.destroyed {
		return nil, fmt.Errorf("create instance: %w", ErrDestroyed)
	}
	m.instanceSeq++
	mi := &MaterialInstance{
		material: m,
		name:     fmt.Sprintf("%s#%d", m.desc.Name, m.instanceSeq),
		values:   map[string]mgl32.Vec4{},
	}
	m.live++
	e.instances[mi] = struct{}{}
	return mi, nil
}

// MaterialInstance holds the parameter values for one use of a Material.
type MaterialInstance struct {
	material  *Material
	name      string
	values    map[string]mgl32.Vec4
	destroyed bool
}

func (mi *MaterialInstance) Material() *Material { return mi.material }
func (mi *MaterialInstance) Name() string        { return mi.name }
func (mi *MaterialInstance) IsDestroyed() bool   { return mi.destroyed }

func (mi *MaterialInstance) set(name string, t ParamType, v mgl32.Vec4) error {
	if mi.destroyed {
		return fmt.Errorf("set %q on %q: %w", name, mi.name, ErrDestroyed)
	}
	want, ok := mi.material.params[name]
	if !ok {
		return fmt.Errorf("%w: %q on material %q", ErrUnknownParameter, name, mi.material.desc.Name)
	}
	if want != t {
		return fmt.Errorf("%w: %q on material %q", ErrParameterType, name, mi.material.desc.Name)
	}
	mi.values[name] = v
	return nil
}

// SetFloat sets a scalar parameter.
func (mi *MaterialInstance) SetFloat(name string, v float32) error {
	return mi.set(name, ParamFloat, mgl32.Vec4{v, 0, 0, 0})
}

// SetRGB sets a float3 color parameter. The color must already be linear.
func (mi *MaterialInstance) SetRGB(name string, c mgl32.Vec3) error {
	return mi.set(name, ParamFloat3, c.Vec4(1))
}

// SetRGBA sets a float4 color parameter. The color must already be linear
// and premultiplied.
func (mi *MaterialInstance) SetRGBA(name string, c mgl32.Vec4) error {
	return mi.set(name, ParamFloat4, c)
}

// Float returns a scalar parameter's value.
func (mi *MaterialInstance) Float(name string) (float32, bool) {
	v, ok := mi.values[name]
	return v[0], ok
}

// Vec4 returns a color parameter's value; float3 parameters have w = 1.
func (mi *MaterialInstance) Vec4(name string) (mgl32.Vec4, bool) {
	v, ok := mi.values[name]
	return v, ok
}

// FloatOr returns the scalar parameter or def when it is unset.
func (mi *MaterialInstance) FloatOr(name string, def float32) float32 {
	if v, ok := mi.values[name]; ok {
		return v[0]
	}
	return def
}

// Vec4Or returns the color parameter or def when it is unset.
func (mi *MaterialInstance) Vec4Or(name string, def mgl32.Vec4) mgl32.Vec4 {
	if v, ok := mi.values[name]; ok {
		return v
	}
	return def
}

// SetNames returns the names of parameters that have a value, sorted.
func (mi *MaterialInstance) SetNames() []string {
	names := make([]string, 0, len(mi.values))
	for n := range mi.values {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
