package fx

import "reflect"

// Registry maps an entity to the animations it currently owns. Entities are
// compared by identity, so they must be comparable (normally pointers).
type Registry struct {
	lists map[any][]*Animation
}

// NewRegistry creates an instance of a Registry.
func NewRegistry() *Registry {
	r := new(Registry)
	r.lists = make(map[any][]*Animation)
	return r
}

// List returns the animations owned by entity. The slice is a copy.
func (r *Registry) List(entity any) []*Animation {
	if !identifiable(entity) {
		return nil
	}
	l := r.lists[entity]
	if len(l) == 0 {
		return nil
	}
	out := make([]*Animation, len(l))
	copy(out, l)
	return out
}

// Set replaces the list for entity. An empty list clears the entry.
func (r *Registry) Set(entity any, list []*Animation) {
	if !identifiable(entity) {
		return
	}
	if len(list) == 0 {
		r.Clear(entity)
		return
	}
	r.lists[entity] = list
}

// Clear removes the entry for entity.
func (r *Registry) Clear(entity any) {
	if !identifiable(entity) {
		return
	}
	delete(r.lists, entity)
}

// Len returns the number of entities with at least one animation.
func (r *Registry) Len() int {
	return len(r.lists)
}

func (r *Registry) add(entity any, a *Animation) {
	r.Set(entity, append(r.lists[entity], a))
}

func (r *Registry) remove(entity any, a *Animation) {
	l := r.lists[entity]
	for i, x := range l {
		if x == a {
			l = append(l[:i], l[i+1:]...)
			break
		}
	}
	r.Set(entity, l)
}

func identifiable(entity any) bool {
	return entity != nil && reflect.TypeOf(entity).Comparable()
}
