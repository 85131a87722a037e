package sandbox

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"material-sandbox/gui/guitest"
)

func TestPresetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.toml")
	want := DefaultTunables()
	want.Model = ModelCloth
	want.Blending = BlendingFade
	want.SheenColor = mgl32.Vec3{0.1, 0.2, 0.3}
	want.IBLRotation = 1.25
	want.MSAA = true
	require.NoError(t, SavePreset(path, want))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "model = 'cloth'")
	assert.Contains(t, string(data), "blending = 'fade'")

	var got Tunables
	require.NoError(t, LoadPreset(path, &got))
	assert.Equal(t, want, got)
}

func TestPresetRejectsUnknownKeys(t *testing.T) {
	before := DefaultTunables()
	got := before
	err := decodePreset([]byte("roughness = 0.1\nshininess = 3\n"), &got)

	var strict *toml.StrictMissingError
	assert.True(t, errors.As(err, &strict))
	assert.Equal(t, before, got, "rejected presets leave the store untouched")
}

func TestPresetRejectsUnknownModel(t *testing.T) {
	got := DefaultTunables()
	assert.Error(t, decodePreset([]byte("model = 'velvet'\n"), &got))
	assert.Equal(t, ModelLit, got.Model)
}

func TestPartialPresetKeepsOtherValues(t *testing.T) {
	got := DefaultTunables()
	require.NoError(t, decodePreset([]byte("roughness = 0.1\nlightColor = [1.0, 0.0, 0.0]\n"), &got))

	want := DefaultTunables()
	want.Roughness = 0.1
	want.LightColor = mgl32.Vec3{1, 0, 0}
	assert.Equal(t, want, got)
}

func TestPresetWatcherReportsWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.toml")
	require.NoError(t, SavePreset(path, DefaultTunables()))

	pw, err := WatchPreset(path, nil)
	require.NoError(t, err)
	defer pw.Close()

	// Unrelated files in the same directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.toml"), nil, 0o644))
	require.NoError(t, os.WriteFile(path, []byte("roughness = 0.9\n"), 0o644))

	select {
	case <-pw.Changed():
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestSandboxSavesAndReloadsPreset(t *testing.T) {
	opts := DefaultOptions()
	opts.PresetPath = filepath.Join(t.TempDir(), "preset.toml")
	require.NoError(t, os.WriteFile(opts.PresetPath, []byte("roughness = 0.3\nmodel = 'subsurface'\n"), 0o644))

	f := newFixture(t, opts)
	defer f.sb.Cleanup(f.engine, f.view, f.scene)
	assert.Equal(t, float32(0.3), f.sb.Params.Roughness)
	assert.Equal(t, ModelSubsurface, f.sb.Params.Model)

	w := guitest.New()
	w.Set("roughness", float32(0.7))
	w.Set("save preset", true)
	f.gui(w)

	var saved Tunables
	require.NoError(t, LoadPreset(opts.PresetPath, &saved))
	assert.Equal(t, float32(0.7), saved.Roughness)

	require.NoError(t, os.WriteFile(opts.PresetPath, []byte("roughness = 0.2\n"), 0o644))
	require.Eventually(t, func() bool {
		f.gui(guitest.New())
		return f.sb.Params.Roughness == 0.2
	}, 5*time.Second, 20*time.Millisecond)
}
