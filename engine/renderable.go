package engine

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// PrimitiveType is the topology of a primitive's indices.
type PrimitiveType int

const (
	PrimitiveTriangles PrimitiveType = iota
	PrimitiveLines
	PrimitivePoints
)

// Box is an axis-aligned box given by its center and half extent.
type Box struct {
	Center     mgl32.Vec3
	HalfExtent mgl32.Vec3
}

// BoxFromMinMax builds a Box from two corners.
func BoxFromMinMax(min, max mgl32.Vec3) Box {
	return Box{Center: min.Add(max).Mul(0.5), HalfExtent: max.Sub(min).Mul(0.5)}
}

func (b Box) Min() mgl32.Vec3 { return b.Center.Sub(b.HalfExtent) }
func (b Box) Max() mgl32.Vec3 { return b.Center.Add(b.HalfExtent) }

// Transform returns the box enclosing b transformed by m.
func (b Box) Transform(m mgl32.Mat4) Box {
	c := mgl32.TransformCoordinate(b.Center, m)
	var h mgl32.Vec3
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			v := m.At(row, col)
			if v < 0 {
				v = -v
			}
			h[row] += v * b.HalfExtent[col]
		}
	}
	return Box{Center: c, HalfExtent: h}
}

// Union returns the smallest box containing b and o.
func (b Box) Union(o Box) Box {
	min1, max1 := b.Min(), b.Max()
	min2, max2 := o.Min(), o.Max()
	var lo, hi mgl32.Vec3
	for i := 0; i < 3; i++ {
		lo[i] = minf(min1[i], min2[i])
		hi[i] = maxf(max1[i], max2[i])
	}
	return BoxFromMinMax(lo, hi)
}

// Primitive is one draw of a renderable.
type Primitive struct {
	Type     PrimitiveType
	Vertices *VertexBuffer
	Indices  *IndexBuffer
	Offset   int
	Count    int
	Material *MaterialInstance
}

type renderable struct {
	box            Box
	primitives     []Primitive
	culling        bool
	castShadows    bool
	receiveShadows bool
}

// RenderableBuilder configures a renderable component. Errors are collected
// and reported by Build.
type RenderableBuilder struct {
	r   renderable
	err error
}

// NewRenderableBuilder starts a renderable with count primitives. Culling
// and receiving shadows default to on, casting shadows to off.
func NewRenderableBuilder(count int) *RenderableBuilder {
	b := &RenderableBuilder{r: renderable{
		culling:        true,
		receiveShadows: true,
	}}
	if count <= 0 {
		b.err = fmt.Errorf("renderable: primitive count %d", count)
		return b
	}
	b.r.primitives = make([]Primitive, count)
	return b
}

func (b *RenderableBuilder) prim(index int) *Primitive {
	if b.err != nil {
		return nil
	}
	if index < 0 || index >= len(b.r.primitives) {
		b.err = fmt.Errorf("renderable: primitive %d out of range [0,%d)", index, len(b.r.primitives))
		return nil
	}
	return &b.r.primitives[index]
}

func (b *RenderableBuilder) BoundingBox(box Box) *RenderableBuilder {
	b.r.box = box
	return b
}

func (b *RenderableBuilder) Material(index int, mi *MaterialInstance) *RenderableBuilder {
	if p := b.prim(index); p != nil {
		p.Material = mi
	}
	return b
}

// Geometry sets primitive index to draw count indices of ib starting at offset.
func (b *RenderableBuilder) Geometry(index int, t PrimitiveType, vb *VertexBuffer, ib *IndexBuffer, offset, count int) *RenderableBuilder {
	p := b.prim(index)
	if p == nil {
		return b
	}
	switch {
	case vb == nil || ib == nil:
		b.err = fmt.Errorf("renderable: primitive %d: missing buffer", index)
	case offset < 0 || count <= 0 || offset+count > ib.IndexCount():
		b.err = fmt.Errorf("renderable: primitive %d: range [%d,%d) outside %d indices",
			index, offset, offset+count, ib.IndexCount())
	default:
		for _, i := range ib.indices[offset : offset+count] {
			if int(i) >= vb.VertexCount() {
				b.err = fmt.Errorf("renderable: primitive %d: index %d >= %d vertices", index, i, vb.VertexCount())
				return b
			}
		}
		*p = Primitive{Type: t, Vertices: vb, Indices: ib, Offset: offset, Count: count, Material: p.Material}
	}
	return b
}

func (b *RenderableBuilder) Culling(enabled bool) *RenderableBuilder {
	b.r.culling = enabled
	return b
}

func (b *RenderableBuilder) CastShadows(enabled bool) *RenderableBuilder {
	b.r.castShadows = enabled
	return b
}

func (b *RenderableBuilder) ReceiveShadows(enabled bool) *RenderableBuilder {
	b.r.receiveShadows = enabled
	return b
}

// Build attaches the renderable component to entity.
func (b *RenderableBuilder) Build(e *Engine, entity Entity) error {
	if b.err != nil {
		return b.err
	}
	if entity.IsNull() {
		return fmt.Errorf("renderable: null entity")
	}
	for i, p := range b.r.primitives {
		if p.Vertices == nil {
			return fmt.Errorf("renderable: primitive %d has no geometry", i)
		}
	}
	r := b.r
	r.primitives = append([]Primitive(nil), b.r.primitives...)
	e.renderables.items[entity] = &r
	return nil
}

// RenderableManager stores renderable components.
type RenderableManager struct {
	items map[Entity]*renderable
}

func newRenderableManager() *RenderableManager {
	return &RenderableManager{items: map[Entity]*renderable{}}
}

// Has reports whether e has a renderable component.
func (rm *RenderableManager) Has(e Entity) bool {
	_, ok := rm.items[e]
	return ok
}

// Count is the number of renderable components.
func (rm *RenderableManager) Count() int { return len(rm.items) }

// PrimitiveCount returns the number of primitives of e, 0 without a component.
func (rm *RenderableManager) PrimitiveCount(e Entity) int {
	if r, ok := rm.items[e]; ok {
		return len(r.primitives)
	}
	return 0
}

// SetMaterialInstanceAt replaces the material of primitive i.
func (rm *RenderableManager) SetMaterialInstanceAt(e Entity, i int, mi *MaterialInstance) error {
	r, ok := rm.items[e]
	if !ok {
		return ErrNoComponent
	}
	if i < 0 || i >= len(r.primitives) {
		return fmt.Errorf("set material: primitive %d out of range [0,%d)", i, len(r.primitives))
	}
	if mi != nil && mi.destroyed {
		return fmt.Errorf("set material %q: %w", mi.name, ErrDestroyed)
	}
	r.primitives[i].Material = mi
	return nil
}

// MaterialInstanceAt returns the material of primitive i, or nil.
func (rm *RenderableManager) MaterialInstanceAt(e Entity, i int) *MaterialInstance {
	r, ok := rm.items[e]
	if !ok || i < 0 || i >= len(r.primitives) {
		return nil
	}
	return r.primitives[i].Material
}

// Primitives returns a copy of e's primitives.
func (rm *RenderableManager) Primitives(e Entity) []Primitive {
	if r, ok := rm.items[e]; ok {
		return append([]Primitive(nil), r.primitives...)
	}
	return nil
}

func (rm *RenderableManager) SetCastShadows(e Entity, enabled bool) {
	if r, ok := rm.items[e]; ok {
		r.castShadows = enabled
	}
}

func (rm *RenderableManager) SetReceiveShadows(e Entity, enabled bool) {
	if r, ok := rm.items[e]; ok {
		r.receiveShadows = enabled
	}
}

func (rm *RenderableManager) CastShadows(e Entity) bool {
	r, ok := rm.items[e]
	return ok && r.castShadows
}

func (rm *RenderableManager) ReceiveShadows(e Entity) bool {
	r, ok := rm.items[e]
	return ok && r.receiveShadows
}

func (rm *RenderableManager) Culling(e Entity) bool {
	r, ok := rm.items[e]
	return ok && r.culling
}

// BoundingBox returns e's local bounding box.
func (rm *RenderableManager) BoundingBox(e Entity) Box {
	if r, ok := rm.items[e]; ok {
		return r.box
	}
	return Box{}
}

func (rm *RenderableManager) destroy(e Entity) {
	delete(rm.items, e)
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
