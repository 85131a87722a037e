package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"material-sandbox/core"
)

// objFace is an already-triangulated face (three vertex references).
type objFace struct {
	vIdx, vtIdx, vnIdx [3]int // 0-based position / UV / normal indices (-1 = absent)
	material           string
}

type objObject struct {
	name  string
	faces []objFace
}

// loadOBJ parses a Wavefront .obj file into one mesh per object/group, each
// split into one part per material. A companion .mtl file is loaded when
// referenced via "mtllib".
func loadOBJ(path string, log *zap.Logger) (*model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj %q: %w", path, err)
	}
	defer f.Close()
	return parseOBJ(f, filepath.Dir(path), path, log)
}

func parseOBJ(r io.Reader, dir, name string, log *zap.Logger) (*model, error) {
	var positions []mgl32.Vec3
	var normals []mgl32.Vec3
	var uvs []mgl32.Vec2

	mdl := &model{materials: map[string]materialData{}}

	var objects []objObject
	cur := &objObject{name: "default"}
	material := ""

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "v":
			if len(fields) >= 4 {
				positions = append(positions, parseVec3(fields[1:4]))
			}

		case "vn":
			if len(fields) >= 4 {
				normals = append(normals, parseVec3(fields[1:4]))
			}

		case "vt":
			if len(fields) >= 3 {
				u, _ := strconv.ParseFloat(fields[1], 32)
				v, _ := strconv.ParseFloat(fields[2], 32)
				uvs = append(uvs, mgl32.Vec2{float32(u), float32(v)})
			}

		case "o", "g":
			if len(cur.faces) > 0 {
				objects = append(objects, *cur)
			}
			objName := "default"
			if len(fields) > 1 {
				objName = fields[1]
			}
			cur = &objObject{name: objName}

		case "usemtl":
			if len(fields) > 1 {
				material = fields[1]
			}

		case "mtllib":
			if len(fields) > 1 {
				mtlPath := filepath.Join(dir, fields[1])
				loaded, err := loadMTL(mtlPath)
				if err != nil {
					log.Warn("mtl not loaded", zap.String("path", mtlPath), zap.Error(err))
					continue
				}
				for k, v := range loaded {
					mdl.materials[k] = v
				}
			}

		case "f":
			if len(fields) < 4 {
				continue
			}
			var fverts []objIndex
			for _, tok := range fields[1:] {
				fverts = append(fverts, parseFaceVertex(tok, len(positions), len(uvs), len(normals)))
			}
			// Fan triangulation: 0-1-2, 0-2-3, 0-3-4, ...
			for i := 1; i+1 < len(fverts); i++ {
				f0, f1, f2 := fverts[0], fverts[i], fverts[i+1]
				cur.faces = append(cur.faces, objFace{
					vIdx:     [3]int{f0.v, f1.v, f2.v},
					vtIdx:    [3]int{f0.vt, f1.vt, f2.vt},
					vnIdx:    [3]int{f0.vn, f1.vn, f2.vn},
					material: material,
				})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan obj %q: %w", name, err)
	}
	if len(cur.faces) > 0 {
		objects = append(objects, *cur)
	}
	if len(objects) == 0 {
		return nil, fmt.Errorf("no geometry found in %q", name)
	}

	for _, obj := range objects {
		mdl.meshes = append(mdl.meshes, buildOBJMesh(obj, positions, normals, uvs))
	}
	return mdl, nil
}

type objIndex struct{ v, vt, vn int }

// parseFaceVertex parses one face vertex token: "v", "v/vt", "v//vn", "v/vt/vn".
// Returns 0-based indices (-1 if absent). Negative OBJ indices count back
// from the most recent element.
func parseFaceVertex(tok string, nv, nvt, nvn int) objIndex {
	parseIdx := func(s string, count int) int {
		if s == "" {
			return -1
		}
		n, err := strconv.Atoi(s)
		switch {
		case err != nil || n == 0:
			return -1
		case n > 0:
			return n - 1
		default:
			return count + n
		}
	}
	parts := strings.Split(tok, "/")
	res := objIndex{v: -1, vt: -1, vn: -1}
	res.v = parseIdx(parts[0], nv)
	if len(parts) > 1 {
		res.vt = parseIdx(parts[1], nvt)
	}
	if len(parts) > 2 {
		res.vn = parseIdx(parts[2], nvn)
	}
	return res
}

// buildOBJMesh deduplicates an object's vertices and groups its faces by
// material, in order of first use.
func buildOBJMesh(obj objObject, positions, normals []mgl32.Vec3, uvs []mgl32.Vec2) meshData {
	var order []string
	byMat := map[string][]objFace{}
	for _, f := range obj.faces {
		if _, ok := byMat[f.material]; !ok {
			order = append(order, f.material)
		}
		byMat[f.material] = append(byMat[f.material], f)
	}

	type key struct{ v, vt, vn int }
	vertMap := map[key]uint32{}
	md := meshData{name: obj.name, transform: mgl32.Ident4()}
	hasNormals, hasUVs := true, true

	for _, mat := range order {
		p := part{material: mat, offset: len(md.indices)}
		for _, face := range byMat[mat] {
			for c := 0; c < 3; c++ {
				k := key{face.vIdx[c], face.vtIdx[c], face.vnIdx[c]}
				idx, ok := vertMap[k]
				if !ok {
					idx = uint32(len(md.vertices.Positions))
					vertMap[k] = idx
					md.vertices.Positions = append(md.vertices.Positions, at(positions, k.v, mgl32.Vec3{}))
					md.vertices.Normals = append(md.vertices.Normals, at(normals, k.vn, mgl32.Vec3{}))
					md.vertices.UVs = append(md.vertices.UVs, at(uvs, k.vt, mgl32.Vec2{}))
					hasNormals = hasNormals && k.vn >= 0 && k.vn < len(normals)
					hasUVs = hasUVs && k.vt >= 0 && k.vt < len(uvs)
				}
				md.indices = append(md.indices, idx)
			}
		}
		p.count = len(md.indices) - p.offset
		md.parts = append(md.parts, p)
	}

	if !hasNormals {
		md.vertices.Normals = generateNormals(md.vertices.Positions, md.indices)
	}
	if !hasUVs {
		md.vertices.UVs = nil
	}
	return md
}

func at[T any](s []T, i int, def T) T {
	if i >= 0 && i < len(s) {
		return s[i]
	}
	return def
}

func parseVec3(f []string) mgl32.Vec3 {
	var v mgl32.Vec3
	for i := 0; i < 3; i++ {
		x, _ := strconv.ParseFloat(f[i], 32)
		v[i] = float32(x)
	}
	return v
}

// ── MTL loader ───────────────────────────────────────────────────────────────

// loadMTL reads diffuse color and shininess per material. Kd is taken as
// sRGB, Ns is mapped to a roughness.
func loadMTL(path string) (map[string]materialData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mats := map[string]materialData{}
	var cur string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "newmtl":
			if len(fields) > 1 {
				cur = fields[1]
				mats[cur] = defaultMaterialData()
			}
		case "Kd":
			if m, ok := mats[cur]; ok && len(fields) >= 4 {
				m.baseColor = core.RGBToLinear(parseVec3(fields[1:4]))
				mats[cur] = m
			}
		case "Ns":
			if m, ok := mats[cur]; ok && len(fields) >= 2 {
				ns, _ := strconv.ParseFloat(fields[1], 32)
				m.roughness = shininessToRoughness(float32(ns))
				mats[cur] = m
			}
		case "Pm":
			if m, ok := mats[cur]; ok && len(fields) >= 2 {
				pm, _ := strconv.ParseFloat(fields[1], 32)
				m.metallic = float32(pm)
				mats[cur] = m
			}
		}
	}
	return mats, scanner.Err()
}
