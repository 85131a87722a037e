package mesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"
)

// loadGLTF opens a .glb or .gltf file. Every node that references a mesh
// becomes one meshData carrying the node's world transform; the mesh's
// triangle primitives become its parts.
func loadGLTF(path string, log *zap.Logger) (*model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}

	mdl := &model{materials: map[string]materialData{}}

	// ── 1. Materials ─────────────────────────────────────────────────────────
	matNames := make([]string, len(doc.Materials))
	for i, gm := range doc.Materials {
		name := gm.Name
		if name == "" {
			name = fmt.Sprintf("material_%d", i)
		}
		matNames[i] = name

		md := defaultMaterialData()
		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			cf := pbr.BaseColorFactorOrDefault()
			md.baseColor = mgl32.Vec3{float32(cf[0]), float32(cf[1]), float32(cf[2])}
			md.metallic = float32(pbr.MetallicFactorOrDefault())
			md.roughness = float32(pbr.RoughnessFactorOrDefault())
		}
		mdl.materials[name] = md
	}

	// ── 2. Meshes ────────────────────────────────────────────────────────────
	meshes := make([]*meshData, len(doc.Meshes))
	for mi, gm := range doc.Meshes {
		md := &meshData{name: gm.Name}
		if md.name == "" {
			md.name = fmt.Sprintf("mesh_%d", mi)
		}
		for pi, prim := range gm.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				log.Debug("gltf: skipping non-triangle primitive", zap.Int("mesh", mi), zap.Int("primitive", pi))
				continue
			}
			mat := ""
			if prim.Material != nil && *prim.Material < len(matNames) {
				mat = matNames[*prim.Material]
			}
			if err := appendGLTFPrimitive(doc, md, prim, mat); err != nil {
				log.Warn("gltf: primitive skipped",
					zap.Int("mesh", mi), zap.Int("primitive", pi), zap.Error(err))
			}
		}
		if len(md.parts) > 0 {
			meshes[mi] = md
		}
	}

	// ── 3. Nodes ─────────────────────────────────────────────────────────────
	var visit func(idx int, parent mgl32.Mat4, depth int)
	visit = func(idx int, parent mgl32.Mat4, depth int) {
		if idx < 0 || idx >= len(doc.Nodes) || depth > len(doc.Nodes) {
			return
		}
		gn := doc.Nodes[idx]
		world := parent.Mul4(nodeMatrix(gn))
		if gn.Mesh != nil && *gn.Mesh < len(meshes) && meshes[*gn.Mesh] != nil {
			md := *meshes[*gn.Mesh]
			md.transform = world
			mdl.meshes = append(mdl.meshes, md)
		}
		for _, c := range gn.Children {
			visit(c, world, depth+1)
		}
	}
	for _, root := range gltfRoots(doc) {
		visit(root, mgl32.Ident4(), 0)
	}

	if len(mdl.meshes) == 0 {
		return nil, fmt.Errorf("no geometry found in %q", path)
	}
	return mdl, nil
}

// gltfRoots returns the default scene's root nodes, or every parentless node
// when the file has no default scene.
func gltfRoots(doc *gltf.Document) []int {
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}
	hasParent := make([]bool, len(doc.Nodes))
	for _, gn := range doc.Nodes {
		for _, c := range gn.Children {
			if c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !hasParent[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

// nodeMatrix returns a node's local matrix, from its matrix when present and
// from translation, rotation and scale otherwise.
func nodeMatrix(gn *gltf.Node) mgl32.Mat4 {
	var m mgl32.Mat4
	raw := gn.MatrixOrDefault()
	for i := range m {
		m[i] = float32(raw[i])
	}
	if m != mgl32.Ident4() {
		return m
	}

	t := gn.TranslationOrDefault()
	r := gn.RotationOrDefault() // [x, y, z, w]
	s := gn.ScaleOrDefault()
	q := mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
	return mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul4(q.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
}

// appendGLTFPrimitive appends one primitive's vertices to md and records the
// part.
func appendGLTFPrimitive(doc *gltf.Document, md *meshData, prim *gltf.Primitive, material string) error {
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var uvs [][2]float32
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		normals, _ = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, _ = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return fmt.Errorf("indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	local := make([]mgl32.Vec3, len(positions))
	for i, p := range positions {
		local[i] = mgl32.Vec3{p[0], p[1], p[2]}
	}
	norms := make([]mgl32.Vec3, len(positions))
	if len(normals) == len(positions) {
		for i, n := range normals {
			norms[i] = mgl32.Vec3{n[0], n[1], n[2]}
		}
	} else {
		norms = generateNormals(local, indices)
	}

	base := uint32(len(md.vertices.Positions))
	p := part{material: material, offset: len(md.indices), count: len(indices)}
	for _, i := range indices {
		if int(i) >= len(positions) {
			return fmt.Errorf("index %d out of range", i)
		}
	}
	for _, i := range indices {
		md.indices = append(md.indices, base+i)
	}
	md.vertices.Positions = append(md.vertices.Positions, local...)
	md.vertices.Normals = append(md.vertices.Normals, norms...)
	// UVs are kept only while every primitive so far provides them.
	if len(uvs) == len(positions) && len(md.vertices.UVs) == int(base) {
		for _, uv := range uvs {
			md.vertices.UVs = append(md.vertices.UVs, mgl32.Vec2{uv[0], uv[1]})
		}
	} else {
		md.vertices.UVs = nil
	}
	md.parts = append(md.parts, p)
	return nil
}
