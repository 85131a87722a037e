package sandbox

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"go.uber.org/zap"

	"material-sandbox/core"
)

// Launcher runs the application loop for sb until the window closes.
type Launcher func(opts Options, sb *Sandbox, log *zap.Logger) error

// Run parses args, args[0] being the program, checks the mesh files and
// hands the sandbox to launch. It returns the process exit code.
func Run(args []string, stdout, stderr io.Writer, launch Launcher) int {
	name := "material_sandbox"
	if len(args) > 0 {
		name = filepath.Base(args[0])
		args = args[1:]
	}

	opts := DefaultOptions()
	files, err := ParseOptions(args, &opts, stderr)
	switch {
	case errors.Is(err, ErrHelp):
		fmt.Fprint(stdout, Usage(name))
		return 0
	case err != nil:
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		fmt.Fprint(stdout, Usage(name))
		return 1
	}

	if len(files) == 0 {
		fmt.Fprint(stdout, Usage(name))
		return 1
	}
	for i, f := range files {
		if p, err := homedir.Expand(f); err == nil {
			files[i] = p
		}
		if _, err := os.Stat(files[i]); err != nil {
			fmt.Fprintf(stderr, "file %s not found!\n", f)
			return 1
		}
	}

	log := core.NewLogger(core.LogConfig{File: opts.LogFile, Verbose: opts.Verbose}, stderr)
	defer log.Sync()

	sb := New(opts, files, log)
	if err := launch(opts, sb, log); err != nil {
		log.Error("material sandbox failed", zap.Error(err))
		return 1
	}
	return 0
}
