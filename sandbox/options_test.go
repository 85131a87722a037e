package sandbox

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"material-sandbox/core"
)

func TestParseOptions(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		want  func(*Options)
		files []string
		warn  string
	}{
		{
			name:  "defaults",
			args:  []string{"bunny.obj"},
			want:  func(*Options) {},
			files: []string{"bunny.obj"},
		},
		{
			name: "short flags",
			args: []string{"-a", "vulkan", "-i", "/envs/venetian", "-v", "-s", "2.5", "-p", "a.obj", "b.glb"},
			want: func(o *Options) {
				o.Config.Backend = core.BackendVulkan
				o.Config.IBLDirectory = "/envs/venetian"
				o.Config.SplitView = true
				o.Config.Scale = 2.5
				o.ShadowPlane = true
			},
			files: []string{"a.obj", "b.glb"},
		},
		{
			name: "long flags",
			args: []string{"--api=metal", "--ibl=/envs/park", "--split-view", "--scale=0.5", "--shadow-plane", "m.gltf"},
			want: func(o *Options) {
				o.Config.Backend = core.BackendMetal
				o.Config.IBLDirectory = "/envs/park"
				o.Config.SplitView = true
				o.Config.Scale = 0.5
				o.ShadowPlane = true
			},
			files: []string{"m.gltf"},
		},
		{
			name:  "interspersed positionals",
			args:  []string{"a.obj", "--api", "opengl", "b.obj"},
			want:  func(o *Options) { o.Config.Backend = core.BackendOpenGL },
			files: []string{"a.obj", "b.obj"},
		},
		{
			name:  "unknown backend keeps default",
			args:  []string{"--api", "directx", "a.obj"},
			want:  func(*Options) {},
			files: []string{"a.obj"},
			warn:  "Unrecognized backend. Must be 'opengl'|'vulkan'|'metal'.\n",
		},
		{
			name:  "unknown backend keeps previous choice",
			args:  []string{"-a", "vulkan", "-a", "directx", "a.obj"},
			want:  func(o *Options) { o.Config.Backend = core.BackendVulkan },
			files: []string{"a.obj"},
			warn:  "Unrecognized backend. Must be 'opengl'|'vulkan'|'metal'.\n",
		},
		{
			name:  "malformed scale keeps default",
			args:  []string{"--scale", "big", "a.obj"},
			want:  func(*Options) {},
			files: []string{"a.obj"},
		},
		{
			name:  "malformed scale keeps previous value",
			args:  []string{"-s", "3", "-s", "nan", "a.obj"},
			want:  func(o *Options) { o.Config.Scale = 3 },
			files: []string{"a.obj"},
		},
		{
			name: "added flags",
			args: []string{"--preset=/tmp/p.toml", "--log-file", "/tmp/sandbox.log", "--verbose", "a.obj"},
			want: func(o *Options) {
				o.PresetPath = "/tmp/p.toml"
				o.LogFile = "/tmp/sandbox.log"
				o.Verbose = true
			},
			files: []string{"a.obj"},
		},
		{
			name:  "no positionals",
			args:  []string{"-p"},
			want:  func(o *Options) { o.ShadowPlane = true },
			files: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var warn bytes.Buffer
			got := DefaultOptions()
			files, err := ParseOptions(tt.args, &got, &warn)
			require.NoError(t, err)

			want := DefaultOptions()
			tt.want(&want)
			assert.Equal(t, want, got)
			if len(tt.files) == 0 {
				assert.Empty(t, files)
			} else {
				assert.Equal(t, tt.files, files)
			}
			assert.Equal(t, tt.warn, warn.String())
		})
	}
}

func TestParseOptionsHelp(t *testing.T) {
	for _, args := range [][]string{{"-h"}, {"--help"}, {"a.obj", "--help"}} {
		opts := DefaultOptions()
		_, err := ParseOptions(args, &opts, nil)
		assert.True(t, errors.Is(err, ErrHelp), "%v", args)
	}
}

func TestParseOptionsUsageErrors(t *testing.T) {
	for _, args := range [][]string{{"--bogus"}, {"-x"}, {"a.obj", "--api"}, {"-s"}} {
		opts := DefaultOptions()
		_, err := ParseOptions(args, &opts, nil)
		assert.Error(t, err, "%v", args)
		assert.False(t, errors.Is(err, ErrHelp))
	}
}

func TestParseOptionsExpandsHome(t *testing.T) {
	home, err := homedir.Dir()
	if err != nil {
		t.Skip("no home directory")
	}
	opts := DefaultOptions()
	_, err = ParseOptions([]string{"--ibl", "~/envs/park", "--preset=~/p.toml"}, &opts, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "envs/park"), opts.Config.IBLDirectory)
	assert.Equal(t, filepath.Join(home, "p.toml"), opts.PresetPath)
}

func TestUsage(t *testing.T) {
	u := Usage("material_sandbox")
	assert.True(t, strings.HasPrefix(u, "material_sandbox showcases all material models\nUsage:\n"))
	assert.Contains(t, u, "    material_sandbox [options] <mesh files (.obj, .gltf, .glb)>\n")
	for _, flag := range []string{"--help, -h", "--api, -a", "--ibl=", "--split-view, -v", "--scale=", "--shadow-plane, -p", "--preset=", "--log-file=", "--verbose"} {
		assert.Contains(t, u, flag)
	}
}

func runArgs(t *testing.T, args ...string) (code int, stdout, stderr string, launched *Sandbox) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = Run(append([]string{"/usr/bin/material_sandbox"}, args...), &out, &errOut,
		func(opts Options, sb *Sandbox, log *zap.Logger) error {
			launched = sb
			return nil
		})
	return code, out.String(), errOut.String(), launched
}

func TestRunWithoutMeshes(t *testing.T) {
	code, out, _, sb := runArgs(t, "-p")
	assert.Equal(t, 1, code)
	assert.Equal(t, Usage("material_sandbox"), out)
	assert.Nil(t, sb)
}

func TestRunHelp(t *testing.T) {
	code, out, _, sb := runArgs(t, "--help", "x.obj")
	assert.Equal(t, 0, code)
	assert.Equal(t, Usage("material_sandbox"), out)
	assert.Nil(t, sb)
}

func TestRunUsageError(t *testing.T) {
	code, out, errOut, _ := runArgs(t, "--frobnicate", "x.obj")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "frobnicate")
	assert.Equal(t, Usage("material_sandbox"), out)
}

func TestRunMissingFile(t *testing.T) {
	code, _, errOut, sb := runArgs(t, "nope/missing.obj")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "file nope/missing.obj not found!\n")
	assert.Nil(t, sb)
}

func TestRunLaunches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cube.obj")
	require.NoError(t, os.WriteFile(path, []byte(cubeOBJ), 0o644))

	code, _, _, sb := runArgs(t, "-v", "-s", "2", path)
	assert.Equal(t, 0, code)
	require.NotNil(t, sb)
	assert.Equal(t, []string{path}, sb.Files)
	assert.True(t, sb.Options.Config.SplitView)
	assert.Equal(t, float32(2), sb.Options.Config.Scale)
}

func TestRunLauncherFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cube.obj")
	require.NoError(t, os.WriteFile(path, []byte(cubeOBJ), 0o644))

	var out, errOut bytes.Buffer
	code := Run([]string{"material_sandbox", path}, &out, &errOut,
		func(Options, *Sandbox, *zap.Logger) error { return errors.New("no GL context") })
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "no GL context")
}
