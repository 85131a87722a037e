package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// shadowMapSize is the resolution of the sun's shadow map.
const shadowMapSize = 2048

// shadowPass renders casters into a depth texture sampled with hardware
// comparison by the surface shader.
type shadowPass struct {
	prog      uint32
	mvpLoc    int32
	fbo       uint32
	depth     uint32
	size      int32
	lightProj mgl32.Mat4
}

func newShadowPass(size int32) (*shadowPass, error) {
	prog, err := newProgram(depthVertSrc, depthFragSrc)
	if err != nil {
		return nil, fmt.Errorf("depth shader compile: %w", err)
	}
	s := &shadowPass{prog: prog, mvpLoc: uniform(prog, "lightMVP"), size: size}

	gl.GenTextures(1, &s.depth)
	gl.BindTexture(gl.TEXTURE_2D, s.depth)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT32F, size, size, 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
	for _, p := range [][2]int32{
		{gl.TEXTURE_MIN_FILTER, gl.LINEAR},
		{gl.TEXTURE_MAG_FILTER, gl.LINEAR},
		{gl.TEXTURE_WRAP_S, gl.CLAMP_TO_BORDER},
		{gl.TEXTURE_WRAP_T, gl.CLAMP_TO_BORDER},
		{gl.TEXTURE_COMPARE_MODE, gl.COMPARE_REF_TO_TEXTURE},
		{gl.TEXTURE_COMPARE_FUNC, gl.LEQUAL},
	} {
		gl.TexParameteri(gl.TEXTURE_2D, uint32(p[0]), p[1])
	}
	// Outside the map is lit.
	border := [4]float32{1, 1, 1, 1}
	gl.TexParameterfv(gl.TEXTURE_2D, gl.TEXTURE_BORDER_COLOR, &border[0])

	gl.GenFramebuffers(1, &s.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, s.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, s.depth, 0)
	gl.DrawBuffer(gl.NONE)
	gl.ReadBuffer(gl.NONE)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if status != gl.FRAMEBUFFER_COMPLETE {
		s.destroy()
		return nil, fmt.Errorf("shadow FBO incomplete: status=0x%X", status)
	}
	return s, nil
}

// texel is the size of one shadow map texel in texture coordinates.
func (s *shadowPass) texel() float32 { return 1 / float32(s.size) }

// begin binds and clears the depth target for a light with the given
// view-projection. Polygon offset keeps flat casters from shadowing
// themselves.
func (s *shadowPass) begin(lightViewProj mgl32.Mat4) {
	s.lightProj = lightViewProj
	gl.BindFramebuffer(gl.FRAMEBUFFER, s.fbo)
	gl.Viewport(0, 0, s.size, s.size)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthMask(true)
	gl.Clear(gl.DEPTH_BUFFER_BIT)
	gl.Disable(gl.CULL_FACE)
	gl.Enable(gl.POLYGON_OFFSET_FILL)
	gl.PolygonOffset(2, 4)
	gl.UseProgram(s.prog)
}

// caster sets the transform of the next caster drawn.
func (s *shadowPass) caster(world mgl32.Mat4) {
	setMat4(s.mvpLoc, s.lightProj.Mul4(world))
}

// end unbinds the depth target. The caller restores its own viewport.
func (s *shadowPass) end() {
	gl.Disable(gl.POLYGON_OFFSET_FILL)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// bind makes the depth texture available on texture unit.
func (s *shadowPass) bind(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, s.depth)
	gl.ActiveTexture(gl.TEXTURE0)
}

func (s *shadowPass) destroy() {
	if s.fbo != 0 {
		gl.DeleteFramebuffers(1, &s.fbo)
		s.fbo = 0
	}
	if s.depth != 0 {
		gl.DeleteTextures(1, &s.depth)
		s.depth = 0
	}
	if s.prog != 0 {
		gl.DeleteProgram(s.prog)
		s.prog = 0
	}
}
