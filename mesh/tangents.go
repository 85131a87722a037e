package mesh

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// computeTangents generates per-vertex tangents for indexed triangles. The
// bitangent is not stored; its handedness goes into the tangent's w.
// Triangles with a degenerate UV area are skipped, and vertices left without
// a usable tangent get an arbitrary one perpendicular to the normal.
func computeTangents(positions, normals []mgl32.Vec3, uvs []mgl32.Vec2, indices []uint32) []mgl32.Vec4 {
	tan := make([]mgl32.Vec3, len(positions))
	bit := make([]mgl32.Vec3, len(positions))

	if len(uvs) == len(positions) {
		for i := 0; i+2 < len(indices); i += 3 {
			i0, i1, i2 := indices[i], indices[i+1], indices[i+2]

			e1 := positions[i1].Sub(positions[i0])
			e2 := positions[i2].Sub(positions[i0])
			d1 := uvs[i1].Sub(uvs[i0])
			d2 := uvs[i2].Sub(uvs[i0])

			denom := d1[0]*d2[1] - d2[0]*d1[1]
			if denom == 0 {
				continue
			}
			r := 1 / denom
			t := e1.Mul(d2[1] * r).Sub(e2.Mul(d1[1] * r))
			b := e2.Mul(d1[0] * r).Sub(e1.Mul(d2[0] * r))

			for _, idx := range [3]uint32{i0, i1, i2} {
				tan[idx] = tan[idx].Add(t)
				bit[idx] = bit[idx].Add(b)
			}
		}
	}

	out := make([]mgl32.Vec4, len(positions))
	for i := range positions {
		n := normals[i]
		// T = normalize(T - N*(N·T))
		t := tan[i].Sub(n.Mul(n.Dot(tan[i])))
		if t.LenSqr() < 1e-8 {
			t = perpendicular(n)
		}
		t = t.Normalize()

		w := float32(1)
		if bit[i].LenSqr() > 1e-8 && n.Cross(t).Dot(bit[i]) < 0 {
			w = -1
		}
		out[i] = t.Vec4(w)
	}
	return out
}

func perpendicular(n mgl32.Vec3) mgl32.Vec3 {
	if math32.Abs(n[0]) < 0.9 {
		return mgl32.Vec3{1, 0, 0}.Sub(n.Mul(n[0]))
	}
	return mgl32.Vec3{0, 1, 0}.Sub(n.Mul(n[1]))
}

// generateNormals computes area-weighted smooth normals.
func generateNormals(positions []mgl32.Vec3, indices []uint32) []mgl32.Vec3 {
	normals := make([]mgl32.Vec3, len(positions))
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		n := positions[i1].Sub(positions[i0]).Cross(positions[i2].Sub(positions[i0]))
		normals[i0] = normals[i0].Add(n)
		normals[i1] = normals[i1].Add(n)
		normals[i2] = normals[i2].Add(n)
	}
	for i, n := range normals {
		if n.LenSqr() > 0 {
			normals[i] = n.Normalize()
		} else {
			normals[i] = mgl32.Vec3{0, 1, 0}
		}
	}
	return normals
}
