package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"material-sandbox/engine"
)

func TestLoadIndirectLightDefault(t *testing.T) {
	e := engine.New(0, nil)
	il := LoadIndirectLight(e, "", zap.NewNop())
	require.NotNil(t, il)
	assert.Equal(t, engine.DefaultSphericalHarmonics(), il.Coefficients())
	assert.Equal(t, float32(defaultIBLIntensity), il.Intensity())
}

func TestLoadIndirectLightFromDirectory(t *testing.T) {
	dir := t.TempDir()
	var b strings.Builder
	for i := 0; i < 9; i++ {
		b.WriteString("( 0.5, 0.25, 0.125); // coefficient\n")
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, shFile), []byte(b.String()), 0o644))

	il := LoadIndirectLight(engine.New(0, nil), dir, zap.NewNop())
	for _, c := range il.Coefficients() {
		assert.InDelta(t, 0.25, c.Y(), 1e-6)
	}
}

func TestLoadIndirectLightFallsBack(t *testing.T) {
	dir := t.TempDir()
	e := engine.New(0, nil)
	assert.Equal(t, engine.DefaultSphericalHarmonics(), LoadIndirectLight(e, dir, zap.NewNop()).Coefficients())

	require.NoError(t, os.WriteFile(filepath.Join(dir, shFile), []byte("(1, 2)\n"), 0o644))
	assert.Equal(t, engine.DefaultSphericalHarmonics(), LoadIndirectLight(e, dir, zap.NewNop()).Coefficients())
}
