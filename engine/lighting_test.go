package engine

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"material-sandbox/core"
)

const cmgenSH = `( 0.642709017,  0.644208312,  0.659402072); // L00, irradiance, pre-scaled base
( 0.305108517,  0.347152590,  0.410113692); // L1-1, irradiance, pre-scaled base
( 0.178066462,  0.164815381,  0.146102667); // L10, irradiance, pre-scaled base
(-0.006208930, -0.008023391, -0.010124236); // L11, irradiance, pre-scaled base
(-0.023082163, -0.022929288, -0.023513602); // L2-2, irradiance, pre-scaled base
( 0.071019620,  0.065785639,  0.058224361); // L2-1, irradiance, pre-scaled base
( 0.014221765,  0.010941207,  0.006213985); // L20, irradiance, pre-scaled base
(-0.020143187, -0.020039117, -0.020208530); // L21, irradiance, pre-scaled base
(-0.034286629, -0.034055263, -0.033778533); // L22, irradiance, pre-scaled base
`

func TestParseSphericalHarmonics(t *testing.T) {
	sh, err := ParseSphericalHarmonics(strings.NewReader(cmgenSH))
	require.NoError(t, err)
	assert.InDelta(t, 0.642709017, sh[0][0], 1e-7)
	assert.InDelta(t, -0.033778533, sh[8][2], 1e-7)
}

func TestParseSphericalHarmonicsErrors(t *testing.T) {
	_, err := ParseSphericalHarmonics(strings.NewReader("(1, 2, 3);\n"))
	assert.ErrorContains(t, err, "got 1 coefficients")

	_, err = ParseSphericalHarmonics(strings.NewReader("(1, 2);\n"))
	assert.ErrorContains(t, err, "want 3 components")

	_, err = ParseSphericalHarmonics(strings.NewReader("(1, x, 3);\n"))
	assert.Error(t, err)
}

func TestIrradianceRotation(t *testing.T) {
	e := New(core.BackendOpenGL, nil)
	sh := SHCoefficients{{0.5, 0.5, 0.5}, {}, {}, {0.5, 0, 0}}
	il := e.CreateIndirectLight(sh, 30000)

	// +X is lit brighter in red.
	assert.InDelta(t, 1.0, il.Irradiance(mgl32.Vec3{1, 0, 0})[0], 1e-6)
	assert.InDelta(t, 0.0, il.Irradiance(mgl32.Vec3{-1, 0, 0})[0], 1e-6)

	// Rotating the environment by 180° about Y swaps the sides.
	il.SetRotation(mgl32.Rotate3DY(mgl32.DegToRad(180)))
	assert.InDelta(t, 0.0, il.Irradiance(mgl32.Vec3{1, 0, 0})[0], 1e-5)
	assert.InDelta(t, 1.0, il.Irradiance(mgl32.Vec3{-1, 0, 0})[0], 1e-5)

	il.SetIntensity(10)
	assert.Equal(t, float32(10), il.Intensity())
}

func TestDefaultSkyIsBrighterAbove(t *testing.T) {
	sh := DefaultSphericalHarmonics()
	up := sh.Irradiance(mgl32.Vec3{0, 1, 0})
	down := sh.Irradiance(mgl32.Vec3{0, -1, 0})
	assert.Greater(t, core.Luminance(up), core.Luminance(down))
}

func TestFitShadowFrustum(t *testing.T) {
	caster := Box{Center: mgl32.Vec3{0, 0, -4}, HalfExtent: mgl32.Vec3{1, 1, 1}}
	ground := Box{Center: mgl32.Vec3{0, -1, -4}, HalfExtent: mgl32.Vec3{10, 1e-4, 10}}

	_, ok := FitShadowFrustum(mgl32.Vec3{0, -1, 0}, nil, []Box{ground}, true, true)
	assert.False(t, ok)

	focused, ok := FitShadowFrustum(mgl32.Vec3{0.01, -1, 0}, []Box{caster}, []Box{ground}, true, true)
	require.True(t, ok)
	wide, ok := FitShadowFrustum(mgl32.Vec3{0.01, -1, 0}, []Box{caster}, []Box{ground}, false, false)
	require.True(t, ok)

	// The caster's center must land inside clip space either way.
	for _, f := range []ShadowFrustum{focused, wide} {
		p := mgl32.TransformCoordinate(caster.Center, f.ViewProjection())
		for i := 0; i < 3; i++ {
			assert.True(t, p[i] >= -1 && p[i] <= 1, "axis %d = %v", i, p[i])
		}
	}

	// A far ground corner is only covered by the unfocused frustum.
	corner := mgl32.Vec3{9, -1, 5}
	pf := mgl32.TransformCoordinate(corner, focused.ViewProjection())
	pw := mgl32.TransformCoordinate(corner, wide.ViewProjection())
	assert.True(t, pf[0] > 1 || pf[0] < -1 || pf[1] > 1 || pf[1] < -1)
	assert.True(t, pw[0] >= -1 && pw[0] <= 1 && pw[1] >= -1 && pw[1] <= 1)
}
