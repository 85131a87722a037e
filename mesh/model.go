package mesh

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"material-sandbox/engine"
)

// model is the loader-independent result of importing one file.
type model struct {
	meshes    []meshData
	materials map[string]materialData
}

// meshData becomes one renderable. Its vertices are shared by all parts.
type meshData struct {
	name      string
	vertices  engine.VertexData
	indices   []uint32
	parts     []part
	transform mgl32.Mat4 // relative to the file's root
}

// part is a range of indices drawn with one material.
type part struct {
	material      string
	offset, count int
}

type materialData struct {
	baseColor mgl32.Vec3 // linear
	metallic  float32
	roughness float32
}

func defaultMaterialData() materialData {
	return materialData{
		baseColor: mgl32.Vec3{0.8, 0.8, 0.8},
		roughness: 0.5,
	}
}

// shininessToRoughness maps a Phong exponent to a perceptual roughness.
func shininessToRoughness(ns float32) float32 {
	if ns <= 0 {
		return 1
	}
	return mgl32.Clamp(math32.Sqrt(2/(ns+2)), 0, 1)
}

// bounds returns the local bounding box of the mesh's vertices.
func (m meshData) bounds() engine.Box {
	lo := m.vertices.Positions[0]
	hi := lo
	for _, p := range m.vertices.Positions[1:] {
		for i := 0; i < 3; i++ {
			lo[i] = math32.Min(lo[i], p[i])
			hi[i] = math32.Max(hi[i], p[i])
		}
	}
	return engine.BoxFromMinMax(lo, hi)
}
