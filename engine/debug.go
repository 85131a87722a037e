package engine

import "sort"

// DebugRegistry exposes engine internals as named properties that tools can
// bind widgets to. Properties are addressed by dotted names such as
// "d.view.camera_at_origin".
type DebugRegistry struct {
	bools  map[string]*bool
	floats map[string]*float32
}

func newDebugRegistry() *DebugRegistry {
	return &DebugRegistry{
		bools:  map[string]*bool{},
		floats: map[string]*float32{},
	}
}

// RegisterBool publishes p under name, replacing any previous binding.
func (r *DebugRegistry) RegisterBool(name string, p *bool) {
	r.bools[name] = p
}

// RegisterFloat publishes p under name, replacing any previous binding.
func (r *DebugRegistry) RegisterFloat(name string, p *float32) {
	r.floats[name] = p
}

// BoolProperty returns the address of a boolean property.
func (r *DebugRegistry) BoolProperty(name string) (*bool, bool) {
	p, ok := r.bools[name]
	return p, ok
}

// FloatProperty returns the address of a float property.
func (r *DebugRegistry) FloatProperty(name string) (*float32, bool) {
	p, ok := r.floats[name]
	return p, ok
}

// Names lists every registered property, sorted.
func (r *DebugRegistry) Names() []string {
	names := make([]string, 0, len(r.bools)+len(r.floats))
	for n := range r.bools {
		names = append(names, n)
	}
	for n := range r.floats {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
