package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"material-sandbox/engine"
)

// renderTarget is the off-screen HDR buffer of one view. With MSAA the scene
// renders into multisampled renderbuffers that are resolved into ColorTex.
type renderTarget struct {
	Width   int32
	Height  int32
	Samples int32

	msFBO     uint32
	msColorRB uint32
	msDepthRB uint32

	FBO      uint32
	ColorTex uint32 // RGBA16F
	DepthRB  uint32

	// Tone mapped result, FXAA input.
	ldrFBO uint32
	LDRTex uint32
}

// PostProcess owns the per-view HDR targets and the passes that bring them
// to the screen: MSAA resolve, tone mapping with dithering, then FXAA.
type PostProcess struct {
	log *zap.Logger

	tonemapProg    uint32
	hdrLoc         int32
	toneMappingLoc int32
	ditherLoc      int32
	frameLoc       int32

	fxaaProg uint32
	ldrLoc   int32
	texelLoc int32

	quadVAO uint32 // empty VAO for the fullscreen triangle

	targets map[*engine.View]*renderTarget
}

// ── Shaders ───────────────────────────────────────────────────────────────────

// ppVertSrc — fullscreen triangle via gl_VertexID (no VBO needed).
const ppVertSrc = `
#version 410 core
out vec2 fragUV;
void main() {
    const vec2 pos[3] = vec2[3](
        vec2(-1.0, -1.0),
        vec2( 3.0, -1.0),
        vec2(-1.0,  3.0)
    );
    gl_Position = vec4(pos[gl_VertexID], 0.0, 1.0);
    fragUV      = pos[gl_VertexID] * 0.5 + 0.5;
}
` + "\x00"

// The scene is pre-exposed, so tone mapping starts from display-referred
// luminance. Output is gamma encoded.
const tonemapFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;

uniform sampler2D hdrBuffer;
uniform int       toneMapping; // 0 linear, 1 ACES
uniform bool      dithering;
uniform float     frame;

vec3 ACES(vec3 x) {
    const float a = 2.51;
    const float b = 0.03;
    const float c = 2.43;
    const float d = 0.59;
    const float e = 0.14;
    return (x * (a * x + b)) / (x * (c * x + d) + e);
}

vec3 OETF_sRGB(vec3 linear) {
    vec3 lo = linear * 12.92;
    vec3 hi = pow(linear, vec3(1.0 / 2.4)) * 1.055 - 0.055;
    return mix(hi, lo, vec3(lessThanEqual(linear, vec3(0.0031308))));
}

float interleavedGradientNoise(vec2 p) {
    p += frame * 5.588238;
    return fract(52.9829189 * fract(dot(p, vec2(0.06711056, 0.00583715))));
}

void main() {
    vec3 color = texture(hdrBuffer, fragUV).rgb;
    color = toneMapping == 1 ? ACES(color) : color;
    color = OETF_sRGB(clamp(color, 0.0, 1.0));
    if (dithering) {
        // Triangular noise of ±1 LSB.
        float n = interleavedGradientNoise(gl_FragCoord.xy) * 2.0 - 1.0;
        n = sign(n) * (1.0 - sqrt(1.0 - abs(n)));
        color += n / 255.0;
    }
    outColor = vec4(color, 1.0);
}
` + "\x00"

// FXAA on gamma-encoded input, luma from green-weighted rgb.
const fxaaFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;

uniform sampler2D ldrBuffer;
uniform vec2      texel;

const float EDGE_MIN   = 1.0 / 128.0;
const float EDGE_SCALE = 1.0 / 8.0;
const float SPAN_MAX   = 8.0;

float luma(vec3 c) { return dot(c, vec3(0.299, 0.587, 0.114)); }

void main() {
    vec3 rgbNW = texture(ldrBuffer, fragUV + vec2(-1.0, -1.0) * texel).rgb;
    vec3 rgbNE = texture(ldrBuffer, fragUV + vec2( 1.0, -1.0) * texel).rgb;
    vec3 rgbSW = texture(ldrBuffer, fragUV + vec2(-1.0,  1.0) * texel).rgb;
    vec3 rgbSE = texture(ldrBuffer, fragUV + vec2( 1.0,  1.0) * texel).rgb;
    vec3 rgbM  = texture(ldrBuffer, fragUV).rgb;

    float lNW = luma(rgbNW);
    float lNE = luma(rgbNE);
    float lSW = luma(rgbSW);
    float lSE = luma(rgbSE);
    float lM  = luma(rgbM);
    float lMin = min(lM, min(min(lNW, lNE), min(lSW, lSE)));
    float lMax = max(lM, max(max(lNW, lNE), max(lSW, lSE)));

    vec2 dir = vec2(-((lNW + lNE) - (lSW + lSE)), (lNW + lSW) - (lNE + lSE));
    float reduce = max((lNW + lNE + lSW + lSE) * 0.25 * EDGE_SCALE, EDGE_MIN);
    float rcpMin = 1.0 / (min(abs(dir.x), abs(dir.y)) + reduce);
    dir = clamp(dir * rcpMin, vec2(-SPAN_MAX), vec2(SPAN_MAX)) * texel;

    vec3 a = 0.5 * (
        texture(ldrBuffer, fragUV + dir * (1.0 / 3.0 - 0.5)).rgb +
        texture(ldrBuffer, fragUV + dir * (2.0 / 3.0 - 0.5)).rgb);
    vec3 b = a * 0.5 + 0.25 * (
        texture(ldrBuffer, fragUV + dir * -0.5).rgb +
        texture(ldrBuffer, fragUV + dir *  0.5).rgb);
    float lB = luma(b);
    outColor = vec4((lB < lMin || lB > lMax) ? a : b, 1.0);
}
` + "\x00"

// ── Constructor ───────────────────────────────────────────────────────────────

// NewPostProcess compiles the tone mapping and FXAA passes.
func NewPostProcess(log *zap.Logger) (*PostProcess, error) {
	tonemap, err := newProgram(ppVertSrc, tonemapFragSrc)
	if err != nil {
		return nil, fmt.Errorf("tone mapping shader: %w", err)
	}
	fxaa, err := newProgram(ppVertSrc, fxaaFragSrc)
	if err != nil {
		gl.DeleteProgram(tonemap)
		return nil, fmt.Errorf("fxaa shader: %w", err)
	}

	pp := &PostProcess{
		log:            log,
		tonemapProg:    tonemap,
		hdrLoc:         uniform(tonemap, "hdrBuffer"),
		toneMappingLoc: uniform(tonemap, "toneMapping"),
		ditherLoc:      uniform(tonemap, "dithering"),
		frameLoc:       uniform(tonemap, "frame"),
		fxaaProg:       fxaa,
		ldrLoc:         uniform(fxaa, "ldrBuffer"),
		texelLoc:       uniform(fxaa, "texel"),
		targets:        map[*engine.View]*renderTarget{},
	}
	gl.UseProgram(tonemap)
	gl.Uniform1i(pp.hdrLoc, 0)
	gl.UseProgram(fxaa)
	gl.Uniform1i(pp.ldrLoc, 0)

	gl.GenVertexArrays(1, &pp.quadVAO)
	return pp, nil
}

// ── Target lifecycle ──────────────────────────────────────────────────────────

func newColorTexture(internal int32, format, xtype uint32, w, h int32) uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internal, w, h, 0, format, xtype, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return tex
}

func (pp *PostProcess) allocTarget(w, h, samples int32) *renderTarget {
	t := &renderTarget{Width: w, Height: h, Samples: samples}

	t.ColorTex = newColorTexture(gl.RGBA16F, gl.RGBA, gl.HALF_FLOAT, w, h)
	gl.GenRenderbuffers(1, &t.DepthRB)
	gl.BindRenderbuffer(gl.RENDERBUFFER, t.DepthRB)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, w, h)
	gl.GenFramebuffers(1, &t.FBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.FBO)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.ColorTex, 0)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, t.DepthRB)
	pp.checkFramebuffer("hdr")

	if samples > 1 {
		gl.GenRenderbuffers(1, &t.msColorRB)
		gl.BindRenderbuffer(gl.RENDERBUFFER, t.msColorRB)
		gl.RenderbufferStorageMultisample(gl.RENDERBUFFER, samples, gl.RGBA16F, w, h)
		gl.GenRenderbuffers(1, &t.msDepthRB)
		gl.BindRenderbuffer(gl.RENDERBUFFER, t.msDepthRB)
		gl.RenderbufferStorageMultisample(gl.RENDERBUFFER, samples, gl.DEPTH_COMPONENT24, w, h)
		gl.GenFramebuffers(1, &t.msFBO)
		gl.BindFramebuffer(gl.FRAMEBUFFER, t.msFBO)
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.RENDERBUFFER, t.msColorRB)
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, t.msDepthRB)
		pp.checkFramebuffer("msaa")
	}

	t.LDRTex = newColorTexture(gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE, w, h)
	gl.GenFramebuffers(1, &t.ldrFBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.ldrFBO)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.LDRTex, 0)
	pp.checkFramebuffer("ldr")

	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return t
}

func (pp *PostProcess) checkFramebuffer(name string) {
	if s := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); s != gl.FRAMEBUFFER_COMPLETE {
		pp.log.Warn("framebuffer incomplete", zap.String("target", name), zap.Uint32("status", s))
	}
}

func (t *renderTarget) free() {
	for _, fbo := range []*uint32{&t.FBO, &t.msFBO, &t.ldrFBO} {
		if *fbo != 0 {
			gl.DeleteFramebuffers(1, fbo)
			*fbo = 0
		}
	}
	for _, rb := range []*uint32{&t.DepthRB, &t.msColorRB, &t.msDepthRB} {
		if *rb != 0 {
			gl.DeleteRenderbuffers(1, rb)
			*rb = 0
		}
	}
	for _, tex := range []*uint32{&t.ColorTex, &t.LDRTex} {
		if *tex != 0 {
			gl.DeleteTextures(1, tex)
			*tex = 0
		}
	}
}

// target returns v's render target, reallocating it when the viewport size
// or sample count changed.
func (pp *PostProcess) target(v *engine.View) *renderTarget {
	vp := v.Viewport()
	w, h, samples := int32(vp.Width), int32(vp.Height), int32(v.SampleCount())
	t := pp.targets[v]
	if t != nil && t.Width == w && t.Height == h && t.Samples == samples {
		return t
	}
	if t != nil {
		t.free()
	}
	t = pp.allocTarget(w, h, samples)
	pp.targets[v] = t
	pp.log.Debug("render target allocated",
		zap.String("view", v.Name()), zap.Int32("width", w), zap.Int32("height", h), zap.Int32("samples", samples))
	return t
}

// Release frees the target of a view that will not be rendered again.
func (pp *PostProcess) Release(v *engine.View) {
	if t, ok := pp.targets[v]; ok {
		t.free()
		delete(pp.targets, v)
	}
}

// Destroy frees all GPU resources owned by this object.
func (pp *PostProcess) Destroy() {
	for v := range pp.targets {
		pp.Release(v)
	}
	gl.DeleteProgram(pp.tonemapProg)
	gl.DeleteProgram(pp.fxaaProg)
	gl.DeleteVertexArrays(1, &pp.quadVAO)
}

// ── Passes ────────────────────────────────────────────────────────────────────

// Begin binds v's HDR target for the scene pass and clears it.
func (pp *PostProcess) Begin(v *engine.View) {
	t := pp.target(v)
	if t.Samples > 1 {
		gl.BindFramebuffer(gl.FRAMEBUFFER, t.msFBO)
	} else {
		gl.BindFramebuffer(gl.FRAMEBUFFER, t.FBO)
	}
	gl.Viewport(0, 0, t.Width, t.Height)
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Finish resolves v's target and draws it into v's viewport of the default
// framebuffer.
func (pp *PostProcess) Finish(v *engine.View, frame uint32) {
	t := pp.targets[v]
	if t == nil {
		return
	}
	if t.Samples > 1 {
		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, t.msFBO)
		gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, t.FBO)
		gl.BlitFramebuffer(0, 0, t.Width, t.Height, 0, 0, t.Width, t.Height, gl.COLOR_BUFFER_BIT, gl.NEAREST)
	}

	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.BLEND)
	gl.Disable(gl.CULL_FACE)
	gl.BindVertexArray(pp.quadVAO)

	vp := v.Viewport()
	fxaa := v.AntiAliasing() == engine.AntiAliasingFXAA
	if fxaa {
		gl.BindFramebuffer(gl.FRAMEBUFFER, t.ldrFBO)
		gl.Viewport(0, 0, t.Width, t.Height)
	} else {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.Viewport(int32(vp.Left), int32(vp.Bottom), t.Width, t.Height)
	}
	gl.UseProgram(pp.tonemapProg)
	gl.Uniform1i(pp.toneMappingLoc, int32(v.ToneMapping()))
	setBool(pp.ditherLoc, v.Dithering() == engine.DitheringTemporal)
	gl.Uniform1f(pp.frameLoc, float32(frame%64))
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, t.ColorTex)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)

	if fxaa {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.Viewport(int32(vp.Left), int32(vp.Bottom), t.Width, t.Height)
		gl.UseProgram(pp.fxaaProg)
		gl.Uniform2f(pp.texelLoc, 1/float32(t.Width), 1/float32(t.Height))
		gl.BindTexture(gl.TEXTURE_2D, t.LDRTex)
		gl.DrawArrays(gl.TRIANGLES, 0, 3)
	}

	gl.BindVertexArray(0)
	gl.Enable(gl.DEPTH_TEST)
}
