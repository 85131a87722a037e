package engine

// Scene is the set of entities a view renders. Membership is set-like:
// adding an entity twice or removing an absent one is a no-op.
type Scene struct {
	order    []Entity
	members  map[Entity]struct{}
	indirect *IndirectLight
}

func newScene() *Scene {
	return &Scene{members: map[Entity]struct{}{}}
}

// AddEntity adds e to the scene.
func (s *Scene) AddEntity(e Entity) {
	if e.IsNull() {
		return
	}
	if _, ok := s.members[e]; ok {
		return
	}
	s.members[e] = struct{}{}
	s.order = append(s.order, e)
}

// Remove takes e out of the scene.
func (s *Scene) Remove(e Entity) {
	if _, ok := s.members[e]; !ok {
		return
	}
	delete(s.members, e)
	for i, x := range s.order {
		if x == e {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// HasEntity reports whether e is in the scene.
func (s *Scene) HasEntity(e Entity) bool {
	_, ok := s.members[e]
	return ok
}

// Entities returns the members in insertion order.
func (s *Scene) Entities() []Entity {
	out := make([]Entity, len(s.order))
	copy(out, s.order)
	return out
}

// EntityCount is the number of members.
func (s *Scene) EntityCount() int { return len(s.order) }

// RenderableCount counts members that have a renderable component.
func (s *Scene) RenderableCount(rm *RenderableManager) int {
	n := 0
	for _, e := range s.order {
		if rm.Has(e) {
			n++
		}
	}
	return n
}

// LightCount counts members that have a light component.
func (s *Scene) LightCount(lm *LightManager) int {
	n := 0
	for _, e := range s.order {
		if lm.Has(e) {
			n++
		}
	}
	return n
}

// SetIndirectLight sets the image based light. nil removes it.
func (s *Scene) SetIndirectLight(il *IndirectLight) { s.indirect = il }

// IndirectLight returns the image based light, or nil.
func (s *Scene) IndirectLight() *IndirectLight { return s.indirect }
