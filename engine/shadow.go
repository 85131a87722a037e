package engine

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ShadowFrustum is the light-space camera of a directional shadow map.
type ShadowFrustum struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
}

// ViewProjection is Projection × View.
func (f ShadowFrustum) ViewProjection() mgl32.Mat4 {
	return f.Projection.Mul4(f.View)
}

// FitShadowFrustum fits an orthographic light frustum around world-space
// boxes. casters are the boxes of shadow casters, receivers those of shadow
// receivers. With focusCasters the frustum's footprint covers the casters
// only, otherwise casters and receivers. With farUsesCasters the far plane
// stops at the last caster, otherwise at the last receiver. It reports false
// when there is nothing to cast a shadow.
func FitShadowFrustum(dir mgl32.Vec3, casters, receivers []Box, focusCasters, farUsesCasters bool) (ShadowFrustum, bool) {
	if len(casters) == 0 {
		return ShadowFrustum{}, false
	}
	dir = normalizeOr(dir, mgl32.Vec3{0, -1, 0})

	all := casters[0]
	for _, b := range casters[1:] {
		all = all.Union(b)
	}
	for _, b := range receivers {
		all = all.Union(b)
	}

	up := mgl32.Vec3{0, 1, 0}
	if math32.Abs(dir.Dot(up)) > 0.99 {
		up = mgl32.Vec3{0, 0, 1}
	}
	radius := all.HalfExtent.Len()
	eye := all.Center.Sub(dir.Mul(radius * 2))
	view := mgl32.LookAtV(eye, all.Center, up)

	casterLo, casterHi := lightSpaceBounds(view, casters)
	footLo, footHi := casterLo, casterHi
	farLo := casterLo
	if len(receivers) > 0 {
		allLo, allHi := lightSpaceBounds(view, append(append([]Box(nil), casters...), receivers...))
		if !focusCasters {
			footLo, footHi = allLo, allHi
		}
		if !farUsesCasters {
			farLo = allLo
		}
	}

	// Light space looks down -Z: near is the largest z, far the smallest.
	near := -casterHi[2]
	far := -farLo[2]
	const pad = 0.01
	proj := mgl32.Ortho(footLo[0]-pad, footHi[0]+pad, footLo[1]-pad, footHi[1]+pad, near-pad, far+pad)
	return ShadowFrustum{View: view, Projection: proj}, true
}

func lightSpaceBounds(view mgl32.Mat4, boxes []Box) (lo, hi mgl32.Vec3) {
	inf := math32.Inf(1)
	lo = mgl32.Vec3{inf, inf, inf}
	hi = mgl32.Vec3{-inf, -inf, -inf}
	for _, b := range boxes {
		min, max := b.Min(), b.Max()
		for i := 0; i < 8; i++ {
			c := mgl32.Vec3{min[0], min[1], min[2]}
			if i&1 != 0 {
				c[0] = max[0]
			}
			if i&2 != 0 {
				c[1] = max[1]
			}
			if i&4 != 0 {
				c[2] = max[2]
			}
			p := mgl32.TransformCoordinate(c, view)
			for k := 0; k < 3; k++ {
				lo[k] = minf(lo[k], p[k])
				hi[k] = maxf(hi[k], p[k])
			}
		}
	}
	return lo, hi
}
