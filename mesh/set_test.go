package mesh

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"material-sandbox/core"
	"material-sandbox/engine"
)

const twoMaterialOBJ = `# two quads, two materials
mtllib quads.mtl
o quads
v 0 0 0
v 2 0 0
v 2 2 0
v 0 2 0
v 0 0 -4
v 2 0 -4
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
usemtl red
f 1/1/1 2/2/1 3/3/1 4/4/1
usemtl blue
f 5 6 3
`

const quadsMTL = `newmtl red
Kd 1 0 0
Ns 98
newmtl blue
Kd 0 0 1
Pm 1
`

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func TestAddFromFileOBJ(t *testing.T) {
	dir := writeFiles(t, map[string]string{"quads.obj": twoMaterialOBJ, "quads.mtl": quadsMTL})
	e := engine.New(core.BackendOpenGL, nil)
	set := NewSet(e, nil)
	instances := map[string]*engine.MaterialInstance{}

	require.NoError(t, set.AddFromFile(filepath.Join(dir, "quads.obj"), instances))

	ents := set.Renderables()
	require.Len(t, ents, 2)
	rm := e.RenderableManager()
	assert.False(t, rm.Has(ents[0]), "root has no renderable")
	require.True(t, rm.Has(ents[1]))
	assert.Equal(t, 2, rm.PrimitiveCount(ents[1]))
	assert.True(t, rm.CastShadows(ents[1]))

	prims := rm.Primitives(ents[1])
	assert.Equal(t, 6, prims[0].Count)
	assert.Equal(t, 3, prims[1].Count)
	assert.Same(t, instances["red"], prims[0].Material)
	assert.Same(t, instances["blue"], prims[1].Material)

	red, _ := instances["red"].Vec4("baseColor")
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, red)
	metal, _ := instances["blue"].Float("metallic")
	assert.Equal(t, float32(1), metal)
	rough, _ := instances["red"].Float("roughness")
	assert.InDelta(t, 0.1414, rough, 1e-3)

	// Bounds are [0,2]x[0,2]x[-4,0]; the largest half extent is 2.
	root := e.TransformManager().WorldTransform(ents[0])
	p := mgl32.TransformCoordinate(mgl32.Vec3{2, 2, 0}, root)
	assert.InDelta(t, 0.5, p[0], 1e-6)
	assert.InDelta(t, 0.5, p[1], 1e-6)
	assert.InDelta(t, 1.0, p[2], 1e-6)
}

func TestAddFromFileReusesInstances(t *testing.T) {
	dir := writeFiles(t, map[string]string{"quads.obj": twoMaterialOBJ, "quads.mtl": quadsMTL})
	e := engine.New(core.BackendOpenGL, nil)
	set := NewSet(e, nil)
	instances := map[string]*engine.MaterialInstance{}

	require.NoError(t, set.AddFromFile(filepath.Join(dir, "quads.obj"), instances))
	red := instances["red"]
	require.NoError(t, set.AddFromFile(filepath.Join(dir, "quads.obj"), instances))

	assert.Same(t, red, instances["red"])
	assert.Len(t, set.Renderables(), 3, "one root shared by both files")
	assert.Equal(t, 2, e.InstanceCount())
}

func TestSetDestroy(t *testing.T) {
	dir := writeFiles(t, map[string]string{"quads.obj": twoMaterialOBJ, "quads.mtl": quadsMTL})
	e := engine.New(core.BackendOpenGL, nil)
	set := NewSet(e, nil)
	instances := map[string]*engine.MaterialInstance{}
	require.NoError(t, set.AddFromFile(filepath.Join(dir, "quads.obj"), instances))

	for _, mi := range instances {
		require.NoError(t, e.DestroyMaterialInstance(mi))
	}
	set.Destroy()

	assert.Zero(t, e.MaterialCount())
	assert.Zero(t, e.InstanceCount())
	assert.Zero(t, e.BufferCount())
	assert.Zero(t, e.EntityManager().Count())
	assert.Empty(t, set.Renderables())
}

func TestAddFromFileErrors(t *testing.T) {
	dir := writeFiles(t, map[string]string{"empty.obj": "# nothing\n", "mesh.fbx": "x"})
	set := NewSet(engine.New(core.BackendOpenGL, nil), nil)
	instances := map[string]*engine.MaterialInstance{}

	err := set.AddFromFile(filepath.Join(dir, "mesh.fbx"), instances)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	err = set.AddFromFile(filepath.Join(dir, "empty.obj"), instances)
	assert.ErrorContains(t, err, "no geometry")

	err = set.AddFromFile(filepath.Join(dir, "missing.obj"), instances)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestSupportedExtension(t *testing.T) {
	assert.True(t, SupportedExtension("a/b/Bunny.OBJ"))
	assert.True(t, SupportedExtension("x.glb"))
	assert.False(t, SupportedExtension("x.fbx"))
}

func TestParseFaceVertex(t *testing.T) {
	assert.Equal(t, objIndex{0, -1, -1}, parseFaceVertex("1", 4, 0, 0))
	assert.Equal(t, objIndex{1, -1, 2}, parseFaceVertex("2//3", 4, 0, 3))
	assert.Equal(t, objIndex{3, 1, -1}, parseFaceVertex("-1/-1", 4, 2, 0))
}

func TestOBJWithoutNormalsGetsGenerated(t *testing.T) {
	mdl, err := parseOBJ(strings.NewReader("v 0 0 0\nv 1 0 0\nv 0 0 -1\nf 1 2 3\n"), ".", "tri", zap.NewNop())
	require.NoError(t, err)
	require.Len(t, mdl.meshes, 1)
	n := mdl.meshes[0].vertices.Normals[0]
	assert.InDelta(t, 1, n[1], 1e-6)
	assert.Nil(t, mdl.meshes[0].vertices.UVs)
}

func TestComputeTangents(t *testing.T) {
	pos := []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}}
	nrm := []mgl32.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}}
	uvs := []mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}}
	tan := computeTangents(pos, nrm, uvs, []uint32{0, 1, 2})
	for _, v := range tan {
		assert.InDelta(t, 1, v[0], 1e-6)
		assert.Equal(t, float32(1), v[3])
	}

	// Mirrored V flips the handedness.
	flipped := []mgl32.Vec2{{0, 1}, {1, 1}, {1, 0}}
	tan = computeTangents(pos, nrm, flipped, []uint32{0, 1, 2})
	assert.Equal(t, float32(-1), tan[0][3])

	// No UVs still yields unit tangents perpendicular to the normal.
	tan = computeTangents(pos, nrm, nil, []uint32{0, 1, 2})
	assert.InDelta(t, 0, tan[0].Vec3().Dot(nrm[0]), 1e-6)
	assert.InDelta(t, 1, tan[0].Vec3().Len(), 1e-6)
}

const triangleGLTF = `{
  "asset": {"version": "2.0"},
  "scene": 0,
  "scenes": [{"nodes": [0]}],
  "nodes": [{"name": "node", "mesh": 0, "translation": [0, 0, 3]}],
  "materials": [{"name": "gold", "pbrMetallicRoughness": {"baseColorFactor": [1, 0.8, 0.2, 1], "metallicFactor": 1}}],
  "meshes": [{"name": "tri", "primitives": [{"attributes": {"POSITION": 0}, "indices": 1, "material": 0}]}],
  "buffers": [{"byteLength": 44, "uri": "data:application/octet-stream;base64,AAAAAAAAAAAAAAAAAACAPwAAAAAAAAAAAAAAAAAAgD8AAAAAAAABAAIAAAA="}],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 36},
    {"buffer": 0, "byteOffset": 36, "byteLength": 6}
  ],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3", "min": [0, 0, 0], "max": [1, 1, 0]},
    {"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
  ]
}`

func TestAddFromFileGLTF(t *testing.T) {
	dir := writeFiles(t, map[string]string{"tri.gltf": triangleGLTF})

	e := engine.New(core.BackendOpenGL, nil)
	set := NewSet(e, nil)
	instances := map[string]*engine.MaterialInstance{}
	require.NoError(t, set.AddFromFile(filepath.Join(dir, "tri.gltf"), instances))

	ents := set.Renderables()
	require.Len(t, ents, 2)
	assert.Equal(t, 1, e.RenderableManager().PrimitiveCount(ents[1]))
	require.Contains(t, instances, "gold")
	metal, _ := instances["gold"].Float("metallic")
	assert.Equal(t, float32(1), metal)

	local := e.TransformManager().Transform(ents[1])
	assert.Equal(t, float32(3), local.Col(3)[2])
}
