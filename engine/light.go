package engine

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// LightType selects the kind of light.
type LightType int

const (
	// LightSun is a directional light that also draws a sun disk and halo
	// in the sky.
	LightSun LightType = iota
	LightDirectional
	LightPoint
)

// Light is the state of a light component.
type Light struct {
	Type      LightType
	Color     mgl32.Vec3
	Intensity float32 // lux for directional lights, lumens otherwise
	Direction mgl32.Vec3
	Position  mgl32.Vec3

	// Sun only.
	SunAngularRadius float32 // degrees
	SunHaloSize      float32
	SunHaloFalloff   float32

	CastShadows bool
}

// LightBuilder configures a light component.
type LightBuilder struct {
	l Light
}

// NewLightBuilder starts a white 100000 lux light pointing down.
func NewLightBuilder(t LightType) *LightBuilder {
	return &LightBuilder{l: Light{
		Type:             t,
		Color:            mgl32.Vec3{1, 1, 1},
		Intensity:        100000,
		Direction:        mgl32.Vec3{0, -1, 0},
		SunAngularRadius: 0.545,
		SunHaloSize:      10,
		SunHaloFalloff:   80,
	}}
}

func (b *LightBuilder) Color(c mgl32.Vec3) *LightBuilder         { b.l.Color = c; return b }
func (b *LightBuilder) Intensity(v float32) *LightBuilder        { b.l.Intensity = v; return b }
func (b *LightBuilder) Direction(d mgl32.Vec3) *LightBuilder     { b.l.Direction = d; return b }
func (b *LightBuilder) Position(p mgl32.Vec3) *LightBuilder      { b.l.Position = p; return b }
func (b *LightBuilder) SunAngularRadius(v float32) *LightBuilder { b.l.SunAngularRadius = v; return b }
func (b *LightBuilder) SunHaloSize(v float32) *LightBuilder      { b.l.SunHaloSize = v; return b }
func (b *LightBuilder) SunHaloFalloff(v float32) *LightBuilder   { b.l.SunHaloFalloff = v; return b }
func (b *LightBuilder) CastShadows(v bool) *LightBuilder         { b.l.CastShadows = v; return b }

// Build attaches the light component to entity.
func (b *LightBuilder) Build(e *Engine, entity Entity) error {
	if entity.IsNull() {
		return fmt.Errorf("light: null entity")
	}
	l := b.l
	l.Direction = normalizeOr(l.Direction, mgl32.Vec3{0, -1, 0})
	e.lights.items[entity] = &l
	return nil
}

// LightManager stores light components.
type LightManager struct {
	items map[Entity]*Light
}

func newLightManager() *LightManager {
	return &LightManager{items: map[Entity]*Light{}}
}

// Has reports whether e has a light component.
func (lm *LightManager) Has(e Entity) bool {
	_, ok := lm.items[e]
	return ok
}

// Count is the number of light components.
func (lm *LightManager) Count() int { return len(lm.items) }

// Light returns a copy of e's light state.
func (lm *LightManager) Light(e Entity) (Light, bool) {
	if l, ok := lm.items[e]; ok {
		return *l, true
	}
	return Light{}, false
}

func (lm *LightManager) update(e Entity, f func(*Light)) {
	if l, ok := lm.items[e]; ok {
		f(l)
	}
}

func (lm *LightManager) SetColor(e Entity, c mgl32.Vec3) {
	lm.update(e, func(l *Light) { l.Color = c })
}

func (lm *LightManager) SetIntensity(e Entity, v float32) {
	lm.update(e, func(l *Light) { l.Intensity = v })
}

// SetDirection sets the direction the light travels in. A zero vector is
// ignored.
func (lm *LightManager) SetDirection(e Entity, d mgl32.Vec3) {
	lm.update(e, func(l *Light) { l.Direction = normalizeOr(d, l.Direction) })
}

func (lm *LightManager) SetSunAngularRadius(e Entity, v float32) {
	lm.update(e, func(l *Light) { l.SunAngularRadius = v })
}

func (lm *LightManager) SetSunHaloSize(e Entity, v float32) {
	lm.update(e, func(l *Light) { l.SunHaloSize = v })
}

func (lm *LightManager) SetSunHaloFalloff(e Entity, v float32) {
	lm.update(e, func(l *Light) { l.SunHaloFalloff = v })
}

func (lm *LightManager) destroy(e Entity) {
	delete(lm.items, e)
}

func normalizeOr(v, fallback mgl32.Vec3) mgl32.Vec3 {
	if v.Len() < 1e-6 {
		return fallback
	}
	return v.Normalize()
}
