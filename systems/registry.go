package systems

import "github.com/mlange-42/ark/ecs"

// KnownFood is the colony-wide set of discovered food entities.
// Discovery order is kept so nearest-food ties resolve deterministically.
type KnownFood struct {
	order []ecs.Entity
	set   map[ecs.Entity]struct{}
}

// NewKnownFood creates an empty registry.
func NewKnownFood() *KnownFood {
	return &KnownFood{set: make(map[ecs.Entity]struct{})}
}

// Add records a discovery. Returns false if the food was already known.
func (k *KnownFood) Add(e ecs.Entity) bool {
	if _, ok := k.set[e]; ok {
		return false
	}
	k.set[e] = struct{}{}
	k.order = append(k.order, e)
	return true
}

// Contains reports whether the food is known.
func (k *KnownFood) Contains(e ecs.Entity) bool {
	_, ok := k.set[e]
	return ok
}

// Forget removes a single food. Returns false if it was not known.
func (k *KnownFood) Forget(e ecs.Entity) bool {
	if _, ok := k.set[e]; !ok {
		return false
	}
	delete(k.set, e)
	for i, o := range k.order {
		if o == e {
			k.order = append(k.order[:i], k.order[i+1:]...)
			break
		}
	}
	return true
}

// Prune drops every entry for which alive returns false. Returns the number removed.
func (k *KnownFood) Prune(alive func(ecs.Entity) bool) int {
	kept := k.order[:0]
	removed := 0
	for _, e := range k.order {
		if alive(e) {
			kept = append(kept, e)
			continue
		}
		delete(k.set, e)
		removed++
	}
	k.order = kept
	return removed
}

// Len returns the number of known foods.
func (k *KnownFood) Len() int {
	return len(k.order)
}

// Entities returns a copy of the known foods in discovery order.
func (k *KnownFood) Entities() []ecs.Entity {
	out := make([]ecs.Entity, len(k.order))
	copy(out, k.order)
	return out
}
