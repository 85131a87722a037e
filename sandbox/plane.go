package sandbox

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"material-sandbox/engine"
)

// ShadowPlaneMaterial names the shadow-only ground material.
const ShadowPlaneMaterial = "groundShadow"

var (
	planeVertices = []mgl32.Vec3{
		{-10, 0, -10},
		{-10, 0, 10},
		{10, 0, 10},
		{10, 0, -10},
	}
	planeIndices = []uint32{0, 1, 2, 2, 3, 0}
)

// shadowPlane is a ground quad that only shows the shadows it receives.
type shadowPlane struct {
	entity   engine.Entity
	material *engine.Material
	vb       *engine.VertexBuffer
	ib       *engine.IndexBuffer
}

func createShadowPlane(e *engine.Engine) (*shadowPlane, error) {
	p := &shadowPlane{}
	m, err := e.CreateMaterial(engine.MaterialDesc{
		Name:     ShadowPlaneMaterial,
		Shading:  engine.ShadingShadowOnly,
		Blending: engine.BlendingTransparent,
	})
	if err != nil {
		return nil, fmt.Errorf("shadow plane: %w", err)
	}
	p.material = m

	normal, tangent := engine.TangentFrame(mgl32.Mat3FromCols(
		mgl32.Vec3{1, 0, 0},
		mgl32.Vec3{0, 0, 1},
		mgl32.Vec3{0, 1, 0},
	))
	data := engine.VertexData{Positions: planeVertices}
	for range planeVertices {
		data.Normals = append(data.Normals, normal)
		data.Tangents = append(data.Tangents, tangent)
	}

	if p.vb, err = e.CreateVertexBuffer(data); err != nil {
		return nil, errors.Join(fmt.Errorf("shadow plane: %w", err), p.destroy(e))
	}
	if p.ib, err = e.CreateIndexBuffer(planeIndices); err != nil {
		return nil, errors.Join(fmt.Errorf("shadow plane: %w", err), p.destroy(e))
	}

	p.entity = e.EntityManager().Create()
	err = engine.NewRenderableBuilder(1).
		BoundingBox(engine.Box{HalfExtent: mgl32.Vec3{10, 1e-4, 10}}).
		Material(0, m.DefaultInstance()).
		Geometry(0, engine.PrimitiveTriangles, p.vb, p.ib, 0, len(planeIndices)).
		Culling(false).
		ReceiveShadows(true).
		CastShadows(false).
		Build(e, p.entity)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("shadow plane: %w", err), p.destroy(e))
	}
	e.TransformManager().SetTransform(p.entity, mgl32.Translate3D(0, -1, -4))
	return p, nil
}

func (p *shadowPlane) destroy(e *engine.Engine) error {
	var errs []error
	if !p.entity.IsNull() {
		e.DestroyEntity(p.entity)
		e.EntityManager().Destroy(p.entity)
		p.entity = 0
	}
	if p.vb != nil {
		errs = append(errs, e.DestroyVertexBuffer(p.vb))
		p.vb = nil
	}
	if p.ib != nil {
		errs = append(errs, e.DestroyIndexBuffer(p.ib))
		p.ib = nil
	}
	if p.material != nil {
		errs = append(errs, e.DestroyMaterial(p.material))
		p.material = nil
	}
	return errors.Join(errs...)
}
