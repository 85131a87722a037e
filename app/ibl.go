package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"material-sandbox/core"
	"material-sandbox/engine"
)

// shFile is the spherical harmonics file cmgen writes into an IBL directory.
const shFile = "sh.txt"

// defaultIBLIntensity is the starting indirect light intensity in lux.
const defaultIBLIntensity = 30000

// LoadIndirectLight creates the scene's indirect light from dir/sh.txt.
// Without a directory, or when the file is missing or malformed, the
// built-in sky is used and the problem is logged.
func LoadIndirectLight(e *engine.Engine, dir string, log *zap.Logger) *engine.IndirectLight {
	log = core.OrNop(log)
	sh := engine.DefaultSphericalHarmonics()
	if dir != "" {
		loaded, err := readSphericalHarmonics(filepath.Join(dir, shFile))
		switch {
		case err == nil:
			sh = loaded
			log.Info("indirect light loaded", zap.String("dir", dir))
		case errors.Is(err, os.ErrNotExist):
			log.Warn("no spherical harmonics in IBL directory, using default sky", zap.String("dir", dir))
		default:
			log.Warn("spherical harmonics not loaded, using default sky", zap.String("dir", dir), zap.Error(err))
		}
	}
	return e.CreateIndirectLight(sh, defaultIBLIntensity)
}

func readSphericalHarmonics(path string) (engine.SHCoefficients, error) {
	f, err := os.Open(path)
	if err != nil {
		return engine.SHCoefficients{}, err
	}
	defer f.Close()
	sh, err := engine.ParseSphericalHarmonics(f)
	if err != nil {
		return sh, fmt.Errorf("%s: %w", path, err)
	}
	return sh, nil
}
