// Package opengl draws engine views with OpenGL 4.1 core.
package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"material-sandbox/core"
	"material-sandbox/engine"
)

// floatsPerVertex is position 3, normal 3, tangent 4, uv 2, color 4.
const floatsPerVertex = 16

// GPUMesh holds the vertex array of one vertex/index buffer pair.
type GPUMesh struct {
	VAO uint32
	VBO uint32
	EBO uint32
}

type meshKey struct {
	vb *engine.VertexBuffer
	ib *engine.IndexBuffer
}

// surfaceProgram is the material shader and its uniform locations.
type surfaceProgram struct {
	prog uint32

	modelLoc         int32
	normalMatrixLoc  int32
	viewProjLoc      int32
	lightViewProjLoc int32

	shadingModelLoc       int32
	blendingLoc           int32
	baseColorLoc          int32
	roughnessLoc          int32
	metallicLoc           int32
	reflectanceLoc        int32
	clearCoatLoc          int32
	clearCoatRoughnessLoc int32
	anisotropyLoc         int32
	thicknessLoc          int32
	subsurfacePowerLoc    int32
	subsurfaceColorLoc    int32
	sheenColorLoc         int32

	cameraPosLoc int32
	exposureLoc  int32

	hasLightLoc       int32
	lightDirLoc       int32
	lightColorLoc     int32
	lightIntensityLoc int32

	hasShadowsLoc     int32
	receiveShadowsLoc int32
	shadowMapLoc      int32
	shadowTexelLoc    int32

	hasIBLLoc       int32
	shLoc           [9]int32
	iblRotationLoc  int32
	iblIntensityLoc int32
}

func newSurfaceProgram() (*surfaceProgram, error) {
	prog, err := newProgram(surfaceVertSrc, surfaceFragSrc)
	if err != nil {
		return nil, err
	}
	p := &surfaceProgram{
		prog:             prog,
		modelLoc:         uniform(prog, "model"),
		normalMatrixLoc:  uniform(prog, "normalMatrix"),
		viewProjLoc:      uniform(prog, "viewProj"),
		lightViewProjLoc: uniform(prog, "lightViewProj"),

		shadingModelLoc:       uniform(prog, "shadingModel"),
		blendingLoc:           uniform(prog, "blending"),
		baseColorLoc:          uniform(prog, "baseColor"),
		roughnessLoc:          uniform(prog, "roughness"),
		metallicLoc:           uniform(prog, "metallic"),
		reflectanceLoc:        uniform(prog, "reflectance"),
		clearCoatLoc:          uniform(prog, "clearCoat"),
		clearCoatRoughnessLoc: uniform(prog, "clearCoatRoughness"),
		anisotropyLoc:         uniform(prog, "anisotropy"),
		thicknessLoc:          uniform(prog, "thickness"),
		subsurfacePowerLoc:    uniform(prog, "subsurfacePower"),
		subsurfaceColorLoc:    uniform(prog, "subsurfaceColor"),
		sheenColorLoc:         uniform(prog, "sheenColor"),

		cameraPosLoc: uniform(prog, "cameraPos"),
		exposureLoc:  uniform(prog, "exposure"),

		hasLightLoc:       uniform(prog, "hasLight"),
		lightDirLoc:       uniform(prog, "lightDir"),
		lightColorLoc:     uniform(prog, "lightColor"),
		lightIntensityLoc: uniform(prog, "lightIntensity"),

		hasShadowsLoc:     uniform(prog, "hasShadows"),
		receiveShadowsLoc: uniform(prog, "receiveShadows"),
		shadowMapLoc:      uniform(prog, "shadowMap"),
		shadowTexelLoc:    uniform(prog, "shadowTexel"),

		hasIBLLoc:       uniform(prog, "hasIBL"),
		iblRotationLoc:  uniform(prog, "iblRotation"),
		iblIntensityLoc: uniform(prog, "iblIntensity"),
	}
	for i := range p.shLoc {
		p.shLoc[i] = uniform(prog, fmt.Sprintf("sh[%d]", i))
	}
	gl.UseProgram(prog)
	gl.Uniform1i(p.shadowMapLoc, 1)
	return p, nil
}

// Renderer is the OpenGL rendering backend. It implements engine.Driver.
type Renderer struct {
	log *zap.Logger

	surface *surfaceProgram

	shadows *shadowPass

	sky  *Sky
	post *PostProcess

	meshes map[meshKey]*GPUMesh
	frame  uint32
}

// ── NewRenderer ───────────────────────────────────────────────────────────────

// NewRenderer initialises OpenGL and compiles every pass.
// Must be called after the GLFW window context is made current.
func NewRenderer(log *zap.Logger) (*Renderer, error) {
	log = core.OrNop(log)
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log.Info("opengl ready",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))

	r := &Renderer{log: log, meshes: map[meshKey]*GPUMesh{}}
	var err error
	if r.surface, err = newSurfaceProgram(); err != nil {
		return nil, fmt.Errorf("surface shader compile: %w", err)
	}
	if r.shadows, err = newShadowPass(shadowMapSize); err != nil {
		r.Destroy()
		return nil, err
	}
	if r.sky, err = NewSky(); err != nil {
		r.Destroy()
		return nil, err
	}
	if r.post, err = NewPostProcess(log); err != nil {
		r.Destroy()
		return nil, err
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	return r, nil
}

// ── Frame ─────────────────────────────────────────────────────────────────────

// BeginFrame clears the whole window. Views then draw into their viewports.
func (r *Renderer) BeginFrame(width, height int) {
	r.frame++
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(width), int32(height))
	gl.Disable(gl.SCISSOR_TEST)
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// RenderView draws v: shadow pass, scene and sky into the view's HDR target,
// then post-processing into the view's viewport.
func (r *Renderer) RenderView(e *engine.Engine, v *engine.View) {
	vp := v.Viewport()
	if vp.Width <= 0 || vp.Height <= 0 {
		return
	}
	f, ok := e.PrepareFrame(v)
	if !ok {
		return
	}

	if f.HasShadow {
		r.drawShadows(&f)
	}

	r.post.Begin(v)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Disable(gl.BLEND)
	gl.DepthMask(true)

	r.bindFrame(&f)
	for i := range f.Opaque {
		r.drawSurface(&f.Opaque[i])
	}

	r.sky.Draw(&f)

	if len(f.Blended) > 0 {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.ONE, gl.ONE_MINUS_SRC_ALPHA)
		gl.DepthMask(false)
		r.bindFrame(&f)
		for i := range f.Blended {
			r.drawSurface(&f.Blended[i])
		}
		gl.DepthMask(true)
		gl.Disable(gl.BLEND)
	}

	r.post.Finish(v, r.frame)
}

// ReleaseView frees the off-screen target kept for v.
func (r *Renderer) ReleaseView(v *engine.View) {
	r.post.Release(v)
}

// ── Shadow map ────────────────────────────────────────────────────────────────

func (r *Renderer) drawShadows(f *engine.Frame) {
	r.shadows.begin(f.Shadow.ViewProjection())
	for _, list := range [][]engine.Draw{f.Opaque, f.Blended} {
		for i := range list {
			d := &list[i]
			if !d.CastShadows || d.Material.Material().Shading() == engine.ShadingShadowOnly {
				continue
			}
			gpu := r.ensureUploaded(d.Vertices, d.Indices)
			r.shadows.caster(d.World)
			r.submit(gpu, d)
		}
	}
	r.shadows.end()
}

// ── Surfaces ──────────────────────────────────────────────────────────────────

// bindFrame sets the per-view uniforms of the surface shader.
func (r *Renderer) bindFrame(f *engine.Frame) {
	p := r.surface
	gl.UseProgram(p.prog)

	setMat4(p.viewProjLoc, f.Projection.Mul4(f.View))
	setVec3(p.cameraPosLoc, f.CameraPosition)
	gl.Uniform1f(p.exposureLoc, f.Exposure)

	setBool(p.hasLightLoc, f.HasSun)
	if f.HasSun {
		setVec3(p.lightDirLoc, f.Sun.Direction.Normalize())
		setVec3(p.lightColorLoc, f.Sun.Color)
		gl.Uniform1f(p.lightIntensityLoc, f.Sun.Intensity)
	}

	setBool(p.hasShadowsLoc, f.HasShadow)
	if f.HasShadow {
		setMat4(p.lightViewProjLoc, f.Shadow.ViewProjection())
		gl.Uniform1f(p.shadowTexelLoc, r.shadows.texel())
		r.shadows.bind(1)
	} else {
		setMat4(p.lightViewProjLoc, mgl32.Ident4())
	}

	setBool(p.hasIBLLoc, f.Indirect != nil)
	if il := f.Indirect; il != nil {
		for i, c := range il.Coefficients() {
			setVec3(p.shLoc[i], c)
		}
		setMat3(p.iblRotationLoc, il.Rotation().Transpose())
		gl.Uniform1f(p.iblIntensityLoc, il.Intensity())
	}
}

func (r *Renderer) drawSurface(d *engine.Draw) {
	p := r.surface
	gpu := r.ensureUploaded(d.Vertices, d.Indices)

	setMat4(p.modelLoc, d.World)
	setMat3(p.normalMatrixLoc, d.World.Mat3().Inv().Transpose())
	setBool(p.receiveShadowsLoc, d.ReceiveShadows)
	r.applyMaterial(d.Material)

	if d.Culling && !d.Material.Material().DoubleSided() {
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	} else {
		gl.Disable(gl.CULL_FACE)
	}
	r.submit(gpu, d)
}

// applyMaterial uploads an instance's values. Unset parameters fall back to
// the defaults of a plain white dielectric.
func (r *Renderer) applyMaterial(mi *engine.MaterialInstance) {
	p := r.surface
	m := mi.Material()
	gl.Uniform1i(p.shadingModelLoc, int32(m.Shading()))
	gl.Uniform1i(p.blendingLoc, int32(m.Blending()))

	c := mi.Vec4Or("baseColor", mgl32.Vec4{1, 1, 1, 1})
	gl.Uniform4f(p.baseColorLoc, c[0], c[1], c[2], c[3])
	gl.Uniform1f(p.roughnessLoc, mi.FloatOr("roughness", 1))
	gl.Uniform1f(p.metallicLoc, mi.FloatOr("metallic", 0))
	gl.Uniform1f(p.reflectanceLoc, mi.FloatOr("reflectance", 0.5))
	gl.Uniform1f(p.clearCoatLoc, mi.FloatOr("clearCoat", 0))
	gl.Uniform1f(p.clearCoatRoughnessLoc, mi.FloatOr("clearCoatRoughness", 0))
	gl.Uniform1f(p.anisotropyLoc, mi.FloatOr("anisotropy", 0))
	gl.Uniform1f(p.thicknessLoc, mi.FloatOr("thickness", 0.5))
	gl.Uniform1f(p.subsurfacePowerLoc, mi.FloatOr("subsurfacePower", 12.234))
	setVec3(p.subsurfaceColorLoc, mi.Vec4Or("subsurfaceColor", mgl32.Vec4{}).Vec3())
	setVec3(p.sheenColorLoc, mi.Vec4Or("sheenColor", mgl32.Vec4{0.04, 0.04, 0.04, 1}).Vec3())
}

func primitiveMode(t engine.PrimitiveType) uint32 {
	switch t {
	case engine.PrimitiveLines:
		return gl.LINES
	case engine.PrimitivePoints:
		return gl.POINTS
	}
	return gl.TRIANGLES
}

func (r *Renderer) submit(gpu *GPUMesh, d *engine.Draw) {
	gl.BindVertexArray(gpu.VAO)
	mode := primitiveMode(d.Type)
	if d.Indices != nil {
		gl.DrawElements(mode, int32(d.Count), gl.UNSIGNED_INT, gl.PtrOffset(d.Offset*4))
	} else {
		gl.DrawArrays(mode, int32(d.Offset), int32(d.Count))
	}
	gl.BindVertexArray(0)
}

// ── Resource management ───────────────────────────────────────────────────────

// interleave packs vertex data in the surface shader's attribute layout,
// filling missing attributes with neutral values.
func interleave(data engine.VertexData) []float32 {
	out := make([]float32, 0, len(data.Positions)*floatsPerVertex)
	for i, p := range data.Positions {
		n := mgl32.Vec3{0, 0, 1}
		if i < len(data.Normals) {
			n = data.Normals[i]
		}
		t := mgl32.Vec4{1, 0, 0, 1}
		if i < len(data.Tangents) {
			t = data.Tangents[i]
		}
		var uv mgl32.Vec2
		if i < len(data.UVs) {
			uv = data.UVs[i]
		}
		c := mgl32.Vec4{1, 1, 1, 1}
		if i < len(data.Colors) {
			c = data.Colors[i]
		}
		out = append(out, p[0], p[1], p[2], n[0], n[1], n[2], t[0], t[1], t[2], t[3], uv[0], uv[1], c[0], c[1], c[2], c[3])
	}
	return out
}

// ensureUploaded returns the vertex array for a buffer pair, uploading it on
// first use. ib may be nil.
func (r *Renderer) ensureUploaded(vb *engine.VertexBuffer, ib *engine.IndexBuffer) *GPUMesh {
	key := meshKey{vb, ib}
	if gpu, ok := r.meshes[key]; ok {
		return gpu
	}

	gpu := &GPUMesh{}
	verts := interleave(vb.Data())
	const stride = floatsPerVertex * 4

	gl.GenVertexArrays(1, &gpu.VAO)
	gl.GenBuffers(1, &gpu.VBO)
	gl.BindVertexArray(gpu.VAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(verts), gl.STATIC_DRAW)

	attribs := []struct {
		size   int32
		offset int
	}{
		{3, 0},  // position
		{3, 3},  // normal
		{4, 6},  // tangent
		{2, 10}, // uv
		{4, 12}, // color
	}
	for i, a := range attribs {
		gl.EnableVertexAttribArray(uint32(i))
		gl.VertexAttribPointer(uint32(i), a.size, gl.FLOAT, false, stride, gl.PtrOffset(a.offset*4))
	}

	if ib != nil {
		indices := ib.Indices()
		gl.GenBuffers(1, &gpu.EBO)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gpu.EBO)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)
	}
	gl.BindVertexArray(0)

	r.meshes[key] = gpu
	r.log.Debug("mesh uploaded", zap.Int("vertices", vb.VertexCount()))
	return gpu
}

func (r *Renderer) releaseMesh(key meshKey) {
	gpu, ok := r.meshes[key]
	if !ok {
		return
	}
	gl.DeleteVertexArrays(1, &gpu.VAO)
	gl.DeleteBuffers(1, &gpu.VBO)
	if gpu.EBO != 0 {
		gl.DeleteBuffers(1, &gpu.EBO)
	}
	delete(r.meshes, key)
}

// Release frees the GPU copies of a destroyed engine object.
func (r *Renderer) Release(obj any) {
	for key := range r.meshes {
		switch o := obj.(type) {
		case *engine.VertexBuffer:
			if key.vb == o {
				r.releaseMesh(key)
			}
		case *engine.IndexBuffer:
			if key.ib == o {
				r.releaseMesh(key)
			}
		}
	}
}

// Destroy releases all GPU resources.
func (r *Renderer) Destroy() {
	for key := range r.meshes {
		r.releaseMesh(key)
	}
	if r.post != nil {
		r.post.Destroy()
		r.post = nil
	}
	if r.sky != nil {
		r.sky.Destroy()
		r.sky = nil
	}
	if r.shadows != nil {
		r.shadows.destroy()
		r.shadows = nil
	}
	if r.surface != nil {
		gl.DeleteProgram(r.surface.prog)
		r.surface = nil
	}
}
