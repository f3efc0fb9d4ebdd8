package markdown

import (
	"sort"
)

// Registry is a named collection of processors ordered by priority.
//
// Items with a higher priority run first. Items sharing a priority keep their
// registration order. Registering a name that already exists replaces the
// previous entry in place of its old priority.
type Registry[T any] struct {
	entries []registryEntry[T]
	seq     int
}

type registryEntry[T any] struct {
	name     string
	priority int
	seq      int
	item     T
}

// NewRegistry returns an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{}
}

// Register adds item under name with the given priority.
func (r *Registry[T]) Register(item T, name string, priority int) {
	r.Deregister(name)
	r.seq++
	r.entries = append(r.entries, registryEntry[T]{
		name:     name,
		priority: priority,
		seq:      r.seq,
		item:     item,
	})
	sort.SliceStable(r.entries, func(i, j int) bool {
		if r.entries[i].priority != r.entries[j].priority {
			return r.entries[i].priority > r.entries[j].priority
		}
		return r.entries[i].seq < r.entries[j].seq
	})
}

// Deregister removes name and reports whether it was present.
func (r *Registry[T]) Deregister(name string) bool {
	for i, e := range r.entries {
		if e.name == name {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Has reports whether name is registered.
func (r *Registry[T]) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Get returns the item registered under name.
func (r *Registry[T]) Get(name string) (T, bool) {
	for _, e := range r.entries {
		if e.name == name {
			return e.item, true
		}
	}
	var zero T
	return zero, false
}

// Priority returns the priority name was registered with.
func (r *Registry[T]) Priority(name string) (int, bool) {
	for _, e := range r.entries {
		if e.name == name {
			return e.priority, true
		}
	}
	return 0, false
}

// Names returns registered names in run order.
func (r *Registry[T]) Names() []string {
	names := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		names = append(names, e.name)
	}
	return names
}

// Items returns registered items in run order.
func (r *Registry[T]) Items() []T {
	items := make([]T, 0, len(r.entries))
	for _, e := range r.entries {
		items = append(items, e.item)
	}
	return items
}

// Len returns the number of registered items.
func (r *Registry[T]) Len() int {
	return len(r.entries)
}
