// Package gui defines the immediate-mode widget set the sandbox draws its
// parameter window with. The production implementation is backed by Dear
// ImGui; tests use guitest.Recorder.
package gui

// Widgets is an immediate-mode widget library. Every call draws the widget
// for this frame; value widgets edit the pointed-to value in place and
// report whether the user changed it.
type Widgets interface {
	// SetNextWindowSize sizes the next window. 0 on an axis fits the
	// window to its content.
	SetNextWindowSize(width, height float32)
	Begin(name string) bool
	End()

	// CollapsingHeader reports whether the section is open.
	CollapsingHeader(label string, defaultOpen bool) bool
	Combo(label string, current *int32, items []string) bool
	Checkbox(label string, v *bool) bool
	SliderFloat(label string, v *float32, min, max float32) bool
	// SliderAngle edits an angle in radians shown in degrees.
	SliderAngle(label string, radians *float32) bool
	ColorEdit3(label string, rgb *[3]float32) bool
	// Direction edits a unit vector.
	Direction(label string, dir *[3]float32) bool
	Button(label string) bool
	Text(text string)

	Indent()
	Unindent()
}
