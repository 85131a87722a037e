package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/inkyblackness/imgui-go/v4"
)

// ImGuiRenderer draws Dear ImGui draw data on top of the views.
type ImGuiRenderer struct {
	prog        uint32
	texLoc      int32
	projLoc     int32
	fontTexture uint32

	vao uint32
	vbo uint32
	ebo uint32
}

// ── Shaders ───────────────────────────────────────────────────────────────────

const imguiVertSrc = `
#version 410 core
layout(location = 0) in vec2 inPosition;
layout(location = 1) in vec2 inUV;
layout(location = 2) in vec4 inColor;

uniform mat4 projection;

out vec2 fragUV;
out vec4 fragColor;

void main() {
    fragUV = inUV;
    fragColor = inColor;
    gl_Position = projection * vec4(inPosition, 0.0, 1.0);
}
` + "\x00"

// The font atlas is a single red channel used as coverage.
const imguiFragSrc = `
#version 410 core
in vec2 fragUV;
in vec4 fragColor;
out vec4 outColor;

uniform sampler2D tex;

void main() {
    outColor = vec4(fragColor.rgb, fragColor.a * texture(tex, fragUV).r);
}
` + "\x00"

// ── Constructor ───────────────────────────────────────────────────────────────

// NewImGuiRenderer compiles the UI shader and uploads io's font atlas.
func NewImGuiRenderer(io imgui.IO) (*ImGuiRenderer, error) {
	prog, err := newProgram(imguiVertSrc, imguiFragSrc)
	if err != nil {
		return nil, fmt.Errorf("imgui shader: %w", err)
	}
	r := &ImGuiRenderer{
		prog:    prog,
		texLoc:  uniform(prog, "tex"),
		projLoc: uniform(prog, "projection"),
	}

	gl.GenVertexArrays(1, &r.vao)
	gl.GenBuffers(1, &r.vbo)
	gl.GenBuffers(1, &r.ebo)
	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)
	size, posOff, uvOff, colOff := imgui.VertexBufferLayout()
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, int32(size), gl.PtrOffset(posOff))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, int32(size), gl.PtrOffset(uvOff))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 4, gl.UNSIGNED_BYTE, true, int32(size), gl.PtrOffset(colOff))
	gl.BindVertexArray(0)

	image := io.Fonts().TextureDataAlpha8()
	gl.GenTextures(1, &r.fontTexture)
	gl.BindTexture(gl.TEXTURE_2D, r.fontTexture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RED, int32(image.Width), int32(image.Height),
		0, gl.RED, gl.UNSIGNED_BYTE, image.Pixels)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	io.Fonts().SetTextureID(imgui.TextureID(r.fontTexture))

	return r, nil
}

// ── Draw ──────────────────────────────────────────────────────────────────────

// Render draws the UI. displaySize is in window coordinates, fbSize in
// pixels; they differ on high density displays.
func (r *ImGuiRenderer) Render(displaySize, fbSize [2]float32, data imgui.DrawData) {
	w, h := displaySize[0], displaySize[1]
	if fbSize[0] <= 0 || fbSize[1] <= 0 || w <= 0 || h <= 0 {
		return
	}
	data.ScaleClipRects(imgui.Vec2{X: fbSize[0] / w, Y: fbSize[1] / h})

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Enable(gl.BLEND)
	gl.BlendEquation(gl.FUNC_ADD)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Disable(gl.CULL_FACE)
	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.SCISSOR_TEST)
	gl.Viewport(0, 0, int32(fbSize[0]), int32(fbSize[1]))

	proj := [16]float32{
		2 / w, 0, 0, 0,
		0, -2 / h, 0, 0,
		0, 0, -1, 0,
		-1, 1, 0, 1,
	}
	gl.UseProgram(r.prog)
	gl.Uniform1i(r.texLoc, 0)
	gl.UniformMatrix4fv(r.projLoc, 1, false, &proj[0])
	gl.ActiveTexture(gl.TEXTURE0)

	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)

	indexSize := imgui.IndexBufferLayout()
	indexType := uint32(gl.UNSIGNED_SHORT)
	if indexSize == 4 {
		indexType = gl.UNSIGNED_INT
	}

	for _, list := range data.CommandLists() {
		vertices, vertexBytes := list.VertexBuffer()
		gl.BufferData(gl.ARRAY_BUFFER, vertexBytes, vertices, gl.STREAM_DRAW)
		indices, indexBytes := list.IndexBuffer()
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, indexBytes, indices, gl.STREAM_DRAW)

		offset := 0
		for _, cmd := range list.Commands() {
			if cmd.HasUserCallback() {
				cmd.CallUserCallback(list)
			} else {
				clip := cmd.ClipRect()
				gl.Scissor(int32(clip.X), int32(fbSize[1])-int32(clip.W),
					int32(clip.Z-clip.X), int32(clip.W-clip.Y))
				gl.BindTexture(gl.TEXTURE_2D, uint32(cmd.TextureID()))
				gl.DrawElements(gl.TRIANGLES, int32(cmd.ElementCount()), indexType, gl.PtrOffset(offset))
			}
			offset += cmd.ElementCount() * indexSize
		}
	}

	gl.BindVertexArray(0)
	gl.Disable(gl.SCISSOR_TEST)
	gl.Disable(gl.BLEND)
	gl.Enable(gl.DEPTH_TEST)
}

// Destroy frees all GPU resources owned by the UI renderer.
func (r *ImGuiRenderer) Destroy() {
	gl.DeleteVertexArrays(1, &r.vao)
	gl.DeleteBuffers(1, &r.vbo)
	gl.DeleteBuffers(1, &r.ebo)
	gl.DeleteTextures(1, &r.fontTexture)
	gl.DeleteProgram(r.prog)
}
