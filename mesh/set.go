// Package mesh imports mesh files into engine renderables.
package mesh

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"material-sandbox/core"
	"material-sandbox/engine"
)

// ErrUnsupportedFormat is returned for files no loader handles.
var ErrUnsupportedFormat = errors.New("mesh: unsupported file format")

// DefaultMaterialName names the material imported parts are instanced from.
const DefaultMaterialName = "mesh_default"

// Set owns the renderables, buffers and material created for a group of
// imported files. Renderables()[0] is the group's root entity: it has a
// transform but no renderable component, and its transform scales and
// centers the whole group into a unit cube around the origin.
type Set struct {
	engine *engine.Engine
	log    *zap.Logger

	material      *engine.Material
	root          engine.Entity
	renderables   []engine.Entity
	vertexBuffers []*engine.VertexBuffer
	indexBuffers  []*engine.IndexBuffer

	bounds    engine.Box
	hasBounds bool
}

// NewSet returns an empty set.
func NewSet(e *engine.Engine, log *zap.Logger) *Set {
	return &Set{engine: e, log: core.OrNop(log)}
}

// SupportedExtension reports whether path has an extension AddFromFile
// can load.
func SupportedExtension(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj", ".gltf", ".glb":
		return true
	}
	return false
}

// AddFromFile loads path and adds its meshes under the set's root. For
// every material name a part uses, instances receives an instance the
// first time the name is seen; existing entries are reused.
func (s *Set) AddFromFile(path string, instances map[string]*engine.MaterialInstance) error {
	var (
		mdl *model
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		mdl, err = loadOBJ(path, s.log)
	case ".gltf", ".glb":
		mdl, err = loadGLTF(path, s.log)
	default:
		return fmt.Errorf("%q: %w", path, ErrUnsupportedFormat)
	}
	if err != nil {
		return err
	}

	if err := s.add(mdl, instances); err != nil {
		return fmt.Errorf("add %q: %w", path, err)
	}
	s.log.Info("mesh loaded",
		zap.String("path", path),
		zap.Int("meshes", len(mdl.meshes)),
		zap.Int("materials", len(mdl.materials)))
	return nil
}

func (s *Set) ensureRoot() error {
	if !s.root.IsNull() {
		return nil
	}
	m, err := s.engine.CreateMaterial(engine.MaterialDesc{
		Name:    DefaultMaterialName,
		Shading: engine.ShadingLit,
		Parameters: []engine.Parameter{
			{Name: "baseColor", Type: engine.ParamFloat3},
			{Name: "metallic", Type: engine.ParamFloat},
			{Name: "roughness", Type: engine.ParamFloat},
			{Name: "reflectance", Type: engine.ParamFloat},
		},
	})
	if err != nil {
		return err
	}
	s.material = m
	s.root = s.engine.EntityManager().Create()
	s.engine.TransformManager().Create(s.root, 0, mgl32.Ident4())
	s.renderables = append(s.renderables, s.root)
	return nil
}

func (s *Set) instanceFor(name string, mdl *model, instances map[string]*engine.MaterialInstance) (*engine.MaterialInstance, error) {
	if mi, ok := instances[name]; ok && mi != nil {
		return mi, nil
	}
	mi, err := s.engine.CreateInstance(s.material)
	if err != nil {
		return nil, err
	}
	md, ok := mdl.materials[name]
	if !ok {
		md = defaultMaterialData()
	}
	for _, err := range []error{
		mi.SetRGB("baseColor", md.baseColor),
		mi.SetFloat("metallic", md.metallic),
		mi.SetFloat("roughness", md.roughness),
		mi.SetFloat("reflectance", 0.5),
	} {
		if err != nil {
			return nil, err
		}
	}
	instances[name] = mi
	return mi, nil
}

func (s *Set) add(mdl *model, instances map[string]*engine.MaterialInstance) error {
	if err := s.ensureRoot(); err != nil {
		return err
	}
	tm := s.engine.TransformManager()

	for _, md := range mdl.meshes {
		data := md.vertices
		data.Tangents = computeTangents(data.Positions, data.Normals, data.UVs, md.indices)

		vb, err := s.engine.CreateVertexBuffer(data)
		if err != nil {
			return fmt.Errorf("mesh %q: %w", md.name, err)
		}
		s.vertexBuffers = append(s.vertexBuffers, vb)
		ib, err := s.engine.CreateIndexBuffer(md.indices)
		if err != nil {
			return fmt.Errorf("mesh %q: %w", md.name, err)
		}
		s.indexBuffers = append(s.indexBuffers, ib)

		box := md.bounds()
		b := engine.NewRenderableBuilder(len(md.parts)).
			BoundingBox(box).
			CastShadows(true).
			ReceiveShadows(true)
		for i, p := range md.parts {
			mi, err := s.instanceFor(p.material, mdl, instances)
			if err != nil {
				return fmt.Errorf("mesh %q: %w", md.name, err)
			}
			b.Geometry(i, engine.PrimitiveTriangles, vb, ib, p.offset, p.count).Material(i, mi)
		}

		ent := s.engine.EntityManager().Create()
		if err := b.Build(s.engine, ent); err != nil {
			s.engine.EntityManager().Destroy(ent)
			return fmt.Errorf("mesh %q: %w", md.name, err)
		}
		tm.Create(ent, s.root, md.transform)
		s.renderables = append(s.renderables, ent)

		world := box.Transform(md.transform)
		if s.hasBounds {
			s.bounds = s.bounds.Union(world)
		} else {
			s.bounds, s.hasBounds = world, true
		}
	}

	tm.SetTransform(s.root, s.fitTransform())
	return nil
}

// fitTransform scales the group's bounds to fit a cube of half-size 1 and
// moves its center to the origin.
func (s *Set) fitTransform() mgl32.Mat4 {
	h := s.bounds.HalfExtent
	extent := math32.Max(h[0], math32.Max(h[1], h[2]))
	if extent <= 0 {
		extent = 1
	}
	c := s.bounds.Center
	return mgl32.Scale3D(1/extent, 1/extent, 1/extent).Mul4(mgl32.Translate3D(-c[0], -c[1], -c[2]))
}

// Renderables returns the root entity followed by one entity per imported
// mesh.
func (s *Set) Renderables() []engine.Entity {
	return append([]engine.Entity(nil), s.renderables...)
}

// Bounds returns the group's bounding box before the root transform.
func (s *Set) Bounds() engine.Box { return s.bounds }

// Destroy releases every entity and buffer of the set and its material. The
// material instances handed out through AddFromFile must be destroyed first.
func (s *Set) Destroy() {
	em := s.engine.EntityManager()
	for _, ent := range s.renderables {
		s.engine.DestroyEntity(ent)
		em.Destroy(ent)
	}
	for _, vb := range s.vertexBuffers {
		if err := s.engine.DestroyVertexBuffer(vb); err != nil {
			s.log.Warn("vertex buffer", zap.Error(err))
		}
	}
	for _, ib := range s.indexBuffers {
		if err := s.engine.DestroyIndexBuffer(ib); err != nil {
			s.log.Warn("index buffer", zap.Error(err))
		}
	}
	if s.material != nil {
		if err := s.engine.DestroyMaterial(s.material); err != nil {
			s.log.Error("mesh material not destroyed", zap.Error(err))
		}
	}
	*s = Set{engine: s.engine, log: s.log}
}
