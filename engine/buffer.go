package engine

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// VertexData is the attribute set of a vertex buffer. Positions are
// required; every other attribute is either empty or has one entry per
// position.
type VertexData struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	// Tangents carry the bitangent sign in w.
	Tangents []mgl32.Vec4
	UVs      []mgl32.Vec2
	Colors   []mgl32.Vec4
}

// VertexBuffer is immutable vertex data owned by the engine.
type VertexBuffer struct {
	data      VertexData
	destroyed bool
}

// CreateVertexBuffer validates and copies data into a new buffer.
func (e *Engine) CreateVertexBuffer(data VertexData) (*VertexBuffer, error) {
	n := len(data.Positions)
	if n == 0 {
		return nil, fmt.Errorf("create vertex buffer: no positions")
	}
	check := func(name string, l int) error {
		if l != 0 && l != n {
			return fmt.Errorf("create vertex buffer: %d %s for %d positions", l, name, n)
		}
		return nil
	}
	for _, c := range []struct {
		name string
		l    int
	}{
		{"normals", len(data.Normals)},
		{"tangents", len(data.Tangents)},
		{"uvs", len(data.UVs)},
		{"colors", len(data.Colors)},
	} {
		if err := check(c.name, c.l); err != nil {
			return nil, err
		}
	}

	vb := &VertexBuffer{data: VertexData{
		Positions: append([]mgl32.Vec3(nil), data.Positions...),
		Normals:   append([]mgl32.Vec3(nil), data.Normals...),
		Tangents:  append([]mgl32.Vec4(nil), data.Tangents...),
		UVs:       append([]mgl32.Vec2(nil), data.UVs...),
		Colors:    append([]mgl32.Vec4(nil), data.Colors...),
	}}
	e.vertexBuffers[vb] = struct{}{}
	return vb, nil
}

// VertexCount is the number of vertices.
func (vb *VertexBuffer) VertexCount() int { return len(vb.data.Positions) }

// Data returns the buffer contents. Callers must not modify the slices.
func (vb *VertexBuffer) Data() VertexData { return vb.data }

// IsDestroyed reports whether the buffer was destroyed.
func (vb *VertexBuffer) IsDestroyed() bool { return vb.destroyed }

// IndexBuffer is immutable 32-bit index data owned by the engine.
type IndexBuffer struct {
	indices   []uint32
	destroyed bool
}

// CreateIndexBuffer copies indices into a new buffer.
func (e *Engine) CreateIndexBuffer(indices []uint32) (*IndexBuffer, error) {
	if len(indices) == 0 {
		return nil, fmt.Errorf("create index buffer: no indices")
	}
	ib := &IndexBuffer{indices: append([]uint32(nil), indices...)}
	e.indexBuffers[ib] = struct{}{}
	return ib, nil
}

// IndexCount is the number of indices.
func (ib *IndexBuffer) IndexCount() int { return len(ib.indices) }

// Indices returns the buffer contents. Callers must not modify the slice.
func (ib *IndexBuffer) Indices() []uint32 { return ib.indices }

// IsDestroyed reports whether the buffer was destroyed.
func (ib *IndexBuffer) IsDestroyed() bool { return ib.destroyed }

// TangentFrame splits a tangent-space basis whose columns are tangent,
// bitangent and normal into the per-vertex normal and tangent attributes.
// The tangent's w is the handedness: -1 when the basis is mirrored.
func TangentFrame(m mgl32.Mat3) (normal mgl32.Vec3, tangent mgl32.Vec4) {
	t := m.Col(0).Normalize()
	n := m.Col(2).Normalize()
	w := float32(1)
	if m.Det() < 0 {
		w = -1
	}
	return n, t.Vec4(w)
}
