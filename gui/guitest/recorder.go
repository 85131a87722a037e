// Package guitest provides a gui.Widgets that records what was drawn and
// replays scripted user input.
package guitest

import "material-sandbox/gui"

var _ gui.Widgets = (*Recorder)(nil)

// Recorder records the label of every widget drawn. Headers are open unless
// closed with Close. Values queued with Set are written into the matching
// widget the next time it is drawn, as if the user had edited it.
type Recorder struct {
	labels  []string
	closed  map[string]bool
	pending map[string]any
	indent  int
	indents map[string]int
}

// New returns an empty recorder.
func New() *Recorder {
	return &Recorder{
		closed:  map[string]bool{},
		pending: map[string]any{},
		indents: map[string]int{},
	}
}

// Close makes the header with label report closed.
func (r *Recorder) Close(label string) { r.closed[label] = true }

// Set queues an edit for the widget with label. v must match the widget's
// value type: bool, int32, float32, [3]float32; true for a button click.
func (r *Recorder) Set(label string, v any) { r.pending[label] = v }

// Reset forgets everything drawn so far.
func (r *Recorder) Reset() {
	r.labels = nil
	r.indents = map[string]int{}
	r.indent = 0
}

// Labels returns the drawn labels in order.
func (r *Recorder) Labels() []string { return append([]string(nil), r.labels...) }

// Drew reports whether a widget with label was drawn.
func (r *Recorder) Drew(label string) bool {
	for _, l := range r.labels {
		if l == label {
			return true
		}
	}
	return false
}

// Indentation returns the indent level label was drawn at.
func (r *Recorder) Indentation(label string) int { return r.indents[label] }

func (r *Recorder) record(label string) {
	r.labels = append(r.labels, label)
	r.indents[label] = r.indent
}

func take[T any](r *Recorder, label string) (T, bool) {
	v, ok := r.pending[label]
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	if ok {
		delete(r.pending, label)
	}
	return t, ok
}

func (r *Recorder) SetNextWindowSize(width, height float32) {}

func (r *Recorder) Begin(name string) bool {
	r.record(name)
	return true
}

func (r *Recorder) End() {}

func (r *Recorder) CollapsingHeader(label string, defaultOpen bool) bool {
	r.record(label)
	return !r.closed[label]
}

func (r *Recorder) Combo(label string, current *int32, items []string) bool {
	r.record(label)
	if v, ok := take[int32](r, label); ok && v >= 0 && int(v) < len(items) {
		*current = v
		return true
	}
	return false
}

func (r *Recorder) Checkbox(label string, v *bool) bool {
	r.record(label)
	if nv, ok := take[bool](r, label); ok {
		*v = nv
		return true
	}
	return false
}

func (r *Recorder) SliderFloat(label string, v *float32, min, max float32) bool {
	r.record(label)
	if nv, ok := take[float32](r, label); ok {
		*v = clamp(nv, min, max)
		return true
	}
	return false
}

func (r *Recorder) SliderAngle(label string, radians *float32) bool {
	r.record(label)
	if nv, ok := take[float32](r, label); ok {
		*radians = nv
		return true
	}
	return false
}

func (r *Recorder) ColorEdit3(label string, rgb *[3]float32) bool {
	r.record(label)
	if nv, ok := take[[3]float32](r, label); ok {
		*rgb = nv
		return true
	}
	return false
}

func (r *Recorder) Direction(label string, dir *[3]float32) bool {
	r.record(label)
	if nv, ok := take[[3]float32](r, label); ok {
		*dir = nv
		return true
	}
	return false
}

func (r *Recorder) Button(label string) bool {
	r.record(label)
	v, _ := take[bool](r, label)
	return v
}

func (r *Recorder) Text(text string) {}

func (r *Recorder) Indent()   { r.indent++ }
func (r *Recorder) Unindent() { r.indent-- }

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
