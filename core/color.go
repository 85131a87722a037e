package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ── sRGB transfer functions ──────────────────────────────────────────────────

// SRGBToLinear converts one sRGB-encoded channel to linear light using the
// exact piecewise curve.
func SRGBToLinear(c float32) float32 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math32.Pow((c+0.055)/1.055, 2.4)
}

// LinearToSRGB is the inverse of SRGBToLinear.
func LinearToSRGB(c float32) float32 {
	if c <= 0.0031308 {
		return c * 12.92
	}
	return 1.055*math32.Pow(c, 1.0/2.4) - 0.055
}

// RGBToLinear converts an sRGB color to linear.
func RGBToLinear(c mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{SRGBToLinear(c[0]), SRGBToLinear(c[1]), SRGBToLinear(c[2])}
}

// RGBToSRGB converts a linear color to sRGB.
func RGBToSRGB(c mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{LinearToSRGB(c[0]), LinearToSRGB(c[1]), LinearToSRGB(c[2])}
}

// RGBAToLinear converts the color channels to linear and premultiplies them
// by alpha, the form transparent materials expect.
func RGBAToLinear(c mgl32.Vec3, alpha float32) mgl32.Vec4 {
	l := RGBToLinear(c).Mul(alpha)
	return mgl32.Vec4{l[0], l[1], l[2], alpha}
}

// Luminance returns the relative luminance of a linear color.
func Luminance(c mgl32.Vec3) float32 {
	return c.Dot(mgl32.Vec3{0.2126, 0.7152, 0.0722})
}
