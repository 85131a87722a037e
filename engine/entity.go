package engine

// Entity is an opaque id. Components are attached to it through the
// managers. The zero Entity is the null entity.
type Entity uint32

// IsNull reports whether e is the null entity.
func (e Entity) IsNull() bool { return e == 0 }

// EntityManager hands out entity ids.
type EntityManager struct {
	next  Entity
	alive map[Entity]struct{}
}

func newEntityManager() *EntityManager {
	return &EntityManager{alive: map[Entity]struct{}{}}
}

// Create returns a new live entity.
func (em *EntityManager) Create() Entity {
	em.next++
	em.alive[em.next] = struct{}{}
	return em.next
}

// Destroy releases the id. Components must be destroyed separately.
func (em *EntityManager) Destroy(e Entity) {
	delete(em.alive, e)
}

// IsAlive reports whether e was created and not yet destroyed.
func (em *EntityManager) IsAlive(e Entity) bool {
	_, ok := em.alive[e]
	return ok
}

// Count is the number of live entities.
func (em *EntityManager) Count() int { return len(em.alive) }
