package opengl

import (
	"fmt"

	"github.com/chewxy/math32"
	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"material-sandbox/engine"
)

// Sky draws the environment behind the scene: the indirect light's
// irradiance plus the sun disk and halo. It renders an inverted unit cube
// with the xyww trick so every fragment lands on the far plane.
type Sky struct {
	vao  uint32
	vbo  uint32
	prog uint32

	vpLoc        int32
	shLoc        [9]int32
	rotationLoc  int32
	intensityLoc int32
	hasIBLLoc    int32
	exposureLoc  int32
	hasSunLoc    int32
	sunDirLoc    int32
	sunColorLoc  int32
	sunParamsLoc int32
}

// ── Shaders ───────────────────────────────────────────────────────────────────

const skyVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;

uniform mat4 skyVP;

out vec3 fragDir;

void main() {
    fragDir = inPosition;
    vec4 pos = skyVP * vec4(inPosition, 1.0);
    gl_Position = pos.xyww;
}
` + "\x00"

// sunParams: cos(radius), unused, 1/(cos(radius·haloSize) − cos(radius)),
// halo falloff.
const skyFragSrc = `
#version 410 core
in vec3 fragDir;
out vec4 outColor;

uniform bool  hasIBL;
uniform vec3  sh[9];
uniform mat3  iblRotation;
uniform float iblIntensity;
uniform float exposure;

uniform bool  hasSun;
uniform vec3  sunDir;
uniform vec3  sunColor;
uniform vec4  sunParams;

vec3 irradianceSH(vec3 n) {
    n = iblRotation * n;
    vec3 r = sh[0]
        + sh[1] * n.y
        + sh[2] * n.z
        + sh[3] * n.x
        + sh[4] * (n.y * n.x)
        + sh[5] * (n.y * n.z)
        + sh[6] * (3.0 * n.z * n.z - 1.0)
        + sh[7] * (n.z * n.x)
        + sh[8] * (n.x * n.x - n.y * n.y);
    return max(r, vec3(0.0));
}

void main() {
    vec3 dir = normalize(fragDir);
    vec3 color = vec3(0.0);
    if (hasIBL) {
        color = irradianceSH(dir) * iblIntensity;
    }
    if (hasSun) {
        float cosAngle = dot(dir, -sunDir);
        float x = (cosAngle - sunParams.x) * sunParams.z;
        float gradient = pow(1.0 - clamp(x, 0.0, 1.0), sunParams.w);
        color += gradient * sunColor;
    }
    outColor = vec4(color * exposure, 1.0);
}
` + "\x00"

// ── Cube geometry ─────────────────────────────────────────────────────────────

// 36 positions for a unit cube, CCW from the outside. Culling is off while
// drawing so the inside faces show.
var skyboxVerts = []float32{
	// -Z face
	-1, -1, -1, 1, 1, -1, 1, -1, -1,
	1, 1, -1, -1, -1, -1, -1, 1, -1,
	// +Z face
	-1, -1, 1, 1, -1, 1, 1, 1, 1,
	1, 1, 1, -1, 1, 1, -1, -1, 1,
	// -X face
	-1, 1, 1, -1, 1, -1, -1, -1, -1,
	-1, -1, -1, -1, -1, 1, -1, 1, 1,
	// +X face
	1, 1, 1, 1, -1, -1, 1, 1, -1,
	1, -1, -1, 1, 1, 1, 1, -1, 1,
	// -Y face
	-1, -1, -1, 1, -1, -1, 1, -1, 1,
	1, -1, 1, -1, -1, 1, -1, -1, -1,
	// +Y face
	-1, 1, -1, 1, 1, 1, 1, 1, -1,
	1, 1, 1, -1, 1, -1, -1, 1, 1,
}

// ── Constructor ───────────────────────────────────────────────────────────────

// NewSky compiles the sky shader and uploads the cube.
func NewSky() (*Sky, error) {
	prog, err := newProgram(skyVertSrc, skyFragSrc)
	if err != nil {
		return nil, fmt.Errorf("sky shader: %w", err)
	}

	s := &Sky{
		prog:         prog,
		vpLoc:        uniform(prog, "skyVP"),
		rotationLoc:  uniform(prog, "iblRotation"),
		intensityLoc: uniform(prog, "iblIntensity"),
		hasIBLLoc:    uniform(prog, "hasIBL"),
		exposureLoc:  uniform(prog, "exposure"),
		hasSunLoc:    uniform(prog, "hasSun"),
		sunDirLoc:    uniform(prog, "sunDir"),
		sunColorLoc:  uniform(prog, "sunColor"),
		sunParamsLoc: uniform(prog, "sunParams"),
	}
	for i := range s.shLoc {
		s.shLoc[i] = uniform(prog, fmt.Sprintf("sh[%d]", i))
	}

	gl.GenVertexArrays(1, &s.vao)
	gl.GenBuffers(1, &s.vbo)
	gl.BindVertexArray(s.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, s.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(skyboxVerts)*4, gl.Ptr(skyboxVerts), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 12, gl.PtrOffset(0))
	gl.BindVertexArray(0)

	return s, nil
}

// ── Draw ──────────────────────────────────────────────────────────────────────

// sunParams packs the sun disk and halo shape for the shader.
func sunParams(l engine.Light) mgl32.Vec4 {
	radius := mgl32.DegToRad(l.SunAngularRadius)
	halo := math32.Max(l.SunHaloSize, 1.0001)
	cosRadius := math32.Cos(radius)
	return mgl32.Vec4{
		cosRadius,
		math32.Sin(radius),
		1 / (math32.Cos(radius*halo) - cosRadius),
		l.SunHaloFalloff,
	}
}

// Draw renders the sky for frame f. The view's translation is dropped so
// the sky stays at infinity.
func (s *Sky) Draw(f *engine.Frame) {
	view := f.View.Mat3().Mat4()
	vp := f.Projection.Mul4(view)

	gl.DepthFunc(gl.LEQUAL)
	gl.DepthMask(false)
	gl.Disable(gl.CULL_FACE)

	gl.UseProgram(s.prog)
	setMat4(s.vpLoc, vp)
	gl.Uniform1f(s.exposureLoc, f.Exposure)

	setBool(s.hasIBLLoc, f.Indirect != nil)
	if il := f.Indirect; il != nil {
		sh := il.Coefficients()
		for i, c := range sh {
			setVec3(s.shLoc[i], c)
		}
		setMat3(s.rotationLoc, il.Rotation().Transpose())
		gl.Uniform1f(s.intensityLoc, il.Intensity())
	}

	sun := f.HasSun && f.Sun.Type == engine.LightSun
	setBool(s.hasSunLoc, sun)
	if sun {
		dir := f.Sun.Direction.Normalize()
		setVec3(s.sunDirLoc, dir)
		setVec3(s.sunColorLoc, f.Sun.Color.Mul(f.Sun.Intensity))
		p := sunParams(f.Sun)
		gl.Uniform4f(s.sunParamsLoc, p[0], p[1], p[2], p[3])
	}

	gl.BindVertexArray(s.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 36)
	gl.BindVertexArray(0)

	gl.DepthMask(true)
	gl.DepthFunc(gl.LESS)
}

// Destroy frees all GPU resources owned by the sky.
func (s *Sky) Destroy() {
	gl.DeleteVertexArrays(1, &s.vao)
	gl.DeleteBuffers(1, &s.vbo)
	gl.DeleteProgram(s.prog)
}
