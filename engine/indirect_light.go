package engine

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// SHCoefficients is a 3-band spherical harmonics irradiance, pre-scaled so
// that Irradiance can evaluate it with plain polynomials.
type SHCoefficients [9]mgl32.Vec3

// IndirectLight is diffuse image based lighting.
type IndirectLight struct {
	sh        SHCoefficients
	intensity float32
	rotation  mgl32.Mat3
}

// CreateIndirectLight creates an image based light from sh. intensity is in
// lux.
func (e *Engine) CreateIndirectLight(sh SHCoefficients, intensity float32) *IndirectLight {
	il := &IndirectLight{sh: sh, intensity: intensity, rotation: mgl32.Ident3()}
	e.indirect[il] = struct{}{}
	return il
}

func (il *IndirectLight) SetIntensity(v float32)       { il.intensity = v }
func (il *IndirectLight) Intensity() float32           { return il.intensity }
func (il *IndirectLight) SetRotation(r mgl32.Mat3)     { il.rotation = r }
func (il *IndirectLight) Rotation() mgl32.Mat3         { return il.rotation }
func (il *IndirectLight) Coefficients() SHCoefficients { return il.sh }

// Irradiance evaluates the light's SH in world direction n, rotation
// applied, intensity not applied.
func (il *IndirectLight) Irradiance(n mgl32.Vec3) mgl32.Vec3 {
	return il.sh.Irradiance(il.rotation.Transpose().Mul3x1(n))
}

// Irradiance evaluates the SH in direction n.
func (sh SHCoefficients) Irradiance(n mgl32.Vec3) mgl32.Vec3 {
	x, y, z := n[0], n[1], n[2]
	basis := [9]float32{
		1,
		y,
		z,
		x,
		y * x,
		y * z,
		3*z*z - 1,
		z * x,
		x*x - y*y,
	}
	var out mgl32.Vec3
	for i, b := range basis {
		out = out.Add(sh[i].Mul(b))
	}
	for i := range out {
		if out[i] < 0 {
			out[i] = 0
		}
	}
	return out
}

// DefaultSphericalHarmonics is a soft overcast sky: bright above, darker
// toward the ground, slightly blue.
func DefaultSphericalHarmonics() SHCoefficients {
	return SHCoefficients{
		{0.62, 0.66, 0.74},
		{0.22, 0.24, 0.30},
		{0.02, 0.02, 0.02},
		{0.01, 0.01, 0.01},
	}
}

// ParseSphericalHarmonics reads the sh.txt file cmgen writes next to its
// cubemaps. Each coefficient is a line of the form
//
//	( 0.642709017,  0.644208312,  0.659402072); // L00, irradiance, pre-scaled base
//
// Lines without parentheses are ignored. Exactly 9 coefficients are read.
func ParseSphericalHarmonics(r io.Reader) (SHCoefficients, error) {
	var sh SHCoefficients
	n := 0
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		open := strings.IndexByte(text, '(')
		end := strings.IndexByte(text, ')')
		if open < 0 || end < open {
			continue
		}
		if n == len(sh) {
			break
		}
		fields := strings.Split(text[open+1:end], ",")
		if len(fields) != 3 {
			return sh, fmt.Errorf("sh line %d: want 3 components, got %d", line, len(fields))
		}
		for i, f := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 32)
			if err != nil {
				return sh, fmt.Errorf("sh line %d: %w", line, err)
			}
			sh[n][i] = float32(v)
		}
		n++
	}
	if err := scanner.Err(); err != nil {
		return sh, fmt.Errorf("read sh: %w", err)
	}
	if n != len(sh) {
		return sh, fmt.Errorf("read sh: got %d coefficients, want %d", n, len(sh))
	}
	return sh, nil
}
