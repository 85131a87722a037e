package sandbox

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"

	"material-sandbox/core"
)

// ErrHelp is returned by ParseOptions when help was requested.
var ErrHelp = pflag.ErrHelp

// Options is everything the command line configures.
type Options struct {
	Config      core.Config
	ShadowPlane bool
	PresetPath  string
	LogFile     string
	Verbose     bool
}

// DefaultOptions returns the options used when no flag is given.
func DefaultOptions() Options {
	return Options{Config: core.DefaultConfig()}
}

// backendValue applies each --api occurrence in order. Unknown names are
// reported on warn and leave the backend unchanged.
type backendValue struct {
	b    *core.Backend
	warn io.Writer
}

func (v *backendValue) String() string {
	if v.b == nil {
		return ""
	}
	return v.b.String()
}

func (v *backendValue) Set(s string) error {
	if b, ok := core.ParseBackend(s); ok {
		*v.b = b
		return nil
	}
	fmt.Fprintf(v.warn, "Unrecognized backend. Must be %s.\n", core.QuotedBackendNames())
	return nil
}

func (v *backendValue) Type() string { return "api" }

// scaleValue keeps the previous scale when s is not a finite number.
type scaleValue struct{ f *float32 }

func (v *scaleValue) String() string {
	if v.f == nil {
		return ""
	}
	return strconv.FormatFloat(float64(*v.f), 'g', -1, 32)
}

func (v *scaleValue) Set(s string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	if err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		*v.f = float32(f)
	}
	return nil
}

func (v *scaleValue) Type() string { return "float" }

// pathValue expands a leading ~ to the home directory.
type pathValue struct{ s *string }

func (v *pathValue) String() string {
	if v.s == nil {
		return ""
	}
	return *v.s
}

func (v *pathValue) Set(s string) error {
	p, err := homedir.Expand(s)
	if err != nil {
		return err
	}
	*v.s = p
	return nil
}

func (v *pathValue) Type() string { return "path" }

func newFlagSet(opts *Options, warn io.Writer, help *bool) *pflag.FlagSet {
	fs := pflag.NewFlagSet("material_sandbox", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.SortFlags = false

	fs.BoolVarP(help, "help", "h", false, "Prints this message")
	fs.VarP(&backendValue{b: &opts.Config.Backend, warn: warn}, "api", "a",
		"Specify the backend API: opengl (default), vulkan, or metal")
	fs.VarP(&pathValue{s: &opts.Config.IBLDirectory}, "ibl", "i",
		"Use the specified image based lighting directory")
	fs.BoolVarP(&opts.Config.SplitView, "split-view", "v", opts.Config.SplitView,
		"Splits the window into 4 views")
	fs.VarP(&scaleValue{f: &opts.Config.Scale}, "scale", "s",
		"Applies uniform scale")
	fs.BoolVarP(&opts.ShadowPlane, "shadow-plane", "p", opts.ShadowPlane,
		"Enable shadow plane")
	fs.Var(&pathValue{s: &opts.PresetPath}, "preset",
		"Load parameters from a TOML preset and reload it when it changes")
	fs.Var(&pathValue{s: &opts.LogFile}, "log-file",
		"Also write JSON logs to a rotated file")
	fs.BoolVar(&opts.Verbose, "verbose", opts.Verbose,
		"Log debug messages")
	return fs
}

// ParseOptions parses args, which excludes the program name, into opts and
// returns the positional arguments. Backend warnings are written to warn.
func ParseOptions(args []string, opts *Options, warn io.Writer) ([]string, error) {
	if warn == nil {
		warn = io.Discard
	}
	var help bool
	fs := newFlagSet(opts, warn, &help)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if help {
		return nil, ErrHelp
	}
	return fs.Args(), nil
}

var usageEntries = []struct {
	flags, arg string
	lines      []string
}{
	{"--help, -h", "", []string{"Prints this message"}},
	{"--api, -a", "<api>", []string{"Specify the backend API: opengl (default), vulkan, or metal"}},
	{"--ibl=<path to cmgen IBL>, -i <path>", "", []string{"Use the specified image based lighting"}},
	{"--split-view, -v", "", []string{"Splits the window into 4 views"}},
	{"--scale=[number], -s [number]", "", []string{"Applies uniform scale"}},
	{"--shadow-plane, -p", "", []string{"Enable shadow plane"}},
	{"--preset=<file>", "", []string{"Load parameters from a TOML preset", "and reload it when it changes"}},
	{"--log-file=<file>", "", []string{"Also write JSON logs to a rotated file"}},
	{"--verbose", "", []string{"Log debug messages"}},
}

// Usage returns the help text with name as the program name.
func Usage(name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s showcases all material models\n", name)
	b.WriteString("Usage:\n")
	fmt.Fprintf(&b, "    %s [options] <mesh files (.obj, .gltf, .glb)>\n", name)
	b.WriteString("Options:\n")
	for _, e := range usageEntries {
		b.WriteString("   " + e.flags)
		if e.arg != "" {
			b.WriteString(" " + e.arg)
		}
		b.WriteString("\n")
		for _, l := range e.lines {
			b.WriteString("       " + l + "\n")
		}
	}
	b.WriteString("\n")
	return b.String()
}
