package engine

import "github.com/go-gl/mathgl/mgl32"

type transformNode struct {
	local    mgl32.Mat4
	parent   Entity
	children []Entity
}

// TransformManager stores a local transform and parent link per entity.
// World transforms are resolved on demand through the parent chain.
type TransformManager struct {
	nodes map[Entity]*transformNode
}

func newTransformManager() *TransformManager {
	return &TransformManager{nodes: map[Entity]*transformNode{}}
}

// Create attaches a transform component to e. An existing component is
// overwritten in place and keeps its children.
func (tm *TransformManager) Create(e Entity, parent Entity, local mgl32.Mat4) {
	n, ok := tm.nodes[e]
	if !ok {
		n = &transformNode{}
		tm.nodes[e] = n
	}
	n.local = local
	tm.SetParent(e, parent)
}

// Has reports whether e has a transform component.
func (tm *TransformManager) Has(e Entity) bool {
	_, ok := tm.nodes[e]
	return ok
}

// SetTransform sets e's local transform, creating the component if needed.
func (tm *TransformManager) SetTransform(e Entity, local mgl32.Mat4) {
	n, ok := tm.nodes[e]
	if !ok {
		tm.nodes[e] = &transformNode{local: local}
		return
	}
	n.local = local
}

// Transform returns e's local transform, identity when e has none.
func (tm *TransformManager) Transform(e Entity) mgl32.Mat4 {
	if n, ok := tm.nodes[e]; ok {
		return n.local
	}
	return mgl32.Ident4()
}

// WorldTransform returns the product of the local transforms from the root
// down to e.
func (tm *TransformManager) WorldTransform(e Entity) mgl32.Mat4 {
	n, ok := tm.nodes[e]
	if !ok {
		return mgl32.Ident4()
	}
	if n.parent.IsNull() {
		return n.local
	}
	return tm.WorldTransform(n.parent).Mul4(n.local)
}

// SetParent reparents e. A null parent makes e a root. Cycles are refused.
func (tm *TransformManager) SetParent(e, parent Entity) {
	n, ok := tm.nodes[e]
	if !ok {
		return
	}
	for p := parent; !p.IsNull(); {
		if p == e {
			return
		}
		pn, ok := tm.nodes[p]
		if !ok {
			break
		}
		p = pn.parent
	}

	if old, ok := tm.nodes[n.parent]; ok {
		old.children = removeEntity(old.children, e)
	}
	n.parent = 0
	if pn, ok := tm.nodes[parent]; ok {
		n.parent = parent
		pn.children = append(pn.children, e)
	}
}

// Parent returns e's parent, or the null entity.
func (tm *TransformManager) Parent(e Entity) Entity {
	if n, ok := tm.nodes[e]; ok {
		return n.parent
	}
	return 0
}

// Children returns e's direct children.
func (tm *TransformManager) Children(e Entity) []Entity {
	n, ok := tm.nodes[e]
	if !ok {
		return nil
	}
	return append([]Entity(nil), n.children...)
}

// destroy detaches e from its parent and turns its children into roots.
func (tm *TransformManager) destroy(e Entity) {
	n, ok := tm.nodes[e]
	if !ok {
		return
	}
	if pn, ok := tm.nodes[n.parent]; ok {
		pn.children = removeEntity(pn.children, e)
	}
	for _, c := range n.children {
		if cn, ok := tm.nodes[c]; ok {
			cn.parent = 0
		}
	}
	delete(tm.nodes, e)
}

func removeEntity(list []Entity, e Entity) []Entity {
	for i, x := range list {
		if x == e {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
