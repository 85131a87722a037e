package imguiglfw

import (
	"github.com/chewxy/math32"
	"github.com/inkyblackness/imgui-go/v4"

	"material-sandbox/gui"
)

// Widgets draws gui widgets with Dear ImGui. Use it between
// Platform.NewFrame and imgui.Render.
type Widgets struct {
	nextWidth, nextHeight float32
	sized                 bool
}

var _ gui.Widgets = (*Widgets)(nil)

func (w *Widgets) SetNextWindowSize(width, height float32) {
	w.nextWidth, w.nextHeight = width, height
	w.sized = true
	if width > 0 || height > 0 {
		imgui.SetNextWindowSizeV(imgui.Vec2{X: width, Y: height}, imgui.ConditionFirstUseEver)
	}
}

func (w *Widgets) Begin(name string) bool {
	var flags imgui.WindowFlags
	if w.sized && w.nextWidth == 0 && w.nextHeight == 0 {
		flags |= imgui.WindowFlagsAlwaysAutoResize
	}
	w.sized = false
	return imgui.BeginV(name, nil, flags)
}

func (w *Widgets) End() { imgui.End() }

func (w *Widgets) CollapsingHeader(label string, defaultOpen bool) bool {
	var flags imgui.TreeNodeFlags
	if defaultOpen {
		flags = imgui.TreeNodeFlagsDefaultOpen
	}
	return imgui.CollapsingHeaderV(label, flags)
}

func (w *Widgets) Combo(label string, current *int32, items []string) bool {
	preview := ""
	if *current >= 0 && int(*current) < len(items) {
		preview = items[*current]
	}
	if !imgui.BeginCombo(label, preview) {
		return false
	}
	changed := false
	for i, item := range items {
		selected := int32(i) == *current
		if imgui.SelectableV(item, selected, 0, imgui.Vec2{}) && !selected {
			*current = int32(i)
			changed = true
		}
		if selected {
			imgui.SetItemDefaultFocus()
		}
	}
	imgui.EndCombo()
	return changed
}

func (w *Widgets) Checkbox(label string, v *bool) bool { return imgui.Checkbox(label, v) }

func (w *Widgets) SliderFloat(label string, v *float32, min, max float32) bool {
	return imgui.SliderFloatV(label, v, min, max, "%.3f", imgui.SliderFlagsNone)
}

func (w *Widgets) SliderAngle(label string, radians *float32) bool {
	degrees := *radians * 180 / math32.Pi
	if !imgui.SliderFloatV(label, &degrees, -360, 360, "%.0f deg", imgui.SliderFlagsNone) {
		return false
	}
	*radians = degrees * math32.Pi / 180
	return true
}

func (w *Widgets) ColorEdit3(label string, rgb *[3]float32) bool {
	return imgui.ColorEdit3V(label, rgb, 0)
}

// Direction shows one slider per axis and renormalizes after an edit. A
// zero vector is left unchanged.
func (w *Widgets) Direction(label string, dir *[3]float32) bool {
	imgui.Text(label)
	imgui.PushID(label)
	defer imgui.PopID()

	v := *dir
	changed := false
	for i, axis := range []string{"x", "y", "z"} {
		if imgui.SliderFloatV(axis, &v[i], -1, 1, "%.3f", imgui.SliderFlagsNone) {
			changed = true
		}
	}
	if !changed {
		return false
	}
	n := math32.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if n == 0 {
		return false
	}
	*dir = [3]float32{v[0] / n, v[1] / n, v[2] / n}
	return true
}

func (w *Widgets) Button(label string) bool { return imgui.Button(label) }

func (w *Widgets) Text(text string) { imgui.Text(text) }

func (w *Widgets) Indent()   { imgui.Indent() }
func (w *Widgets) Unindent() { imgui.Unindent() }
