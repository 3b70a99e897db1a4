package store

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Container holds one Set per category.
//
// Sets are created the first time a category is read or written and stay in
// the Container until DeleteCategory removes them. Categories are visited in
// the order they were first touched.
type Container[K Category, E Entry] struct {
	sets *orderedmap.OrderedMap[K, *Set[E]]
}

// NewContainer creates an empty Container.
func NewContainer[K Category, E Entry]() *Container[K, E] {
	return &Container[K, E]{
		sets: orderedmap.New[K, *Set[E]](),
	}
}

// Set returns the Set for category, creating it if absent.
func (c *Container[K, E]) Set(category K) *Set[E] {
	if set, ok := c.sets.Get(category); ok {
		return set
	}
	set := NewSet[E]()
	c.sets.Set(category, set)
	return set
}

// Get returns the entries stored under id within category.
func (c *Container[K, E]) Get(category K, id string) []E {
	return c.Set(category).Get(id)
}

// Add stores entry in the Set for category.
func (c *Container[K, E]) Add(category K, entry E) {
	c.Set(category).Add(entry)
}

// Has reports whether id holds at least one entry within category.
func (c *Container[K, E]) Has(category K, id string) bool {
	return c.Set(category).Has(id)
}

// Delete removes the group for id within category and reports whether it existed.
func (c *Container[K, E]) Delete(category K, id string) bool {
	return c.Set(category).Delete(id)
}

// DeleteCategory drops the whole Set for category and reports whether it existed.
func (c *Container[K, E]) DeleteCategory(category K) bool {
	_, ok := c.sets.Delete(category)
	return ok
}

// Categories returns the categories present in the Container.
func (c *Container[K, E]) Categories() []K {
	out := make([]K, 0, c.sets.Len())
	for pair := c.sets.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// Len returns the number of entries across all categories.
func (c *Container[K, E]) Len() int {
	n := 0
	for pair := c.sets.Oldest(); pair != nil; pair = pair.Next() {
		n += pair.Value.Count()
	}
	return n
}

// DeleteIf removes every entry matching fn across all categories and returns
// the number of id groups affected.
func (c *Container[K, E]) DeleteIf(fn Predicate[K, E]) int {
	removed := 0
	for pair := c.sets.Oldest(); pair != nil; pair = pair.Next() {
		removed += pair.Value.DeleteIf(scoped(fn, pair.Key))
	}
	return removed
}

// ForEach calls fn for every entry of every category.
func (c *Container[K, E]) ForEach(fn func(entry E, id string, category K)) {
	for pair := c.sets.Oldest(); pair != nil; pair = pair.Next() {
		category := pair.Key
		pair.Value.ForEach(func(entry E, id string) {
			fn(entry, id, category)
		})
	}
}

// Filter returns every entry matching fn, in traversal order.
func (c *Container[K, E]) Filter(fn Predicate[K, E]) []E {
	var out []E
	for pair := c.sets.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value.Filter(scoped(fn, pair.Key))...)
	}
	return out
}

// Find returns the first entry matching fn across categories.
func (c *Container[K, E]) Find(fn Predicate[K, E]) (E, bool) {
	for pair := c.sets.Oldest(); pair != nil; pair = pair.Next() {
		if entry, ok := pair.Value.Find(scoped(fn, pair.Key)); ok {
			return entry, true
		}
	}
	var zero E
	return zero, false
}

// References returns a view addressing the Container by entry reference.
func (c *Container[K, E]) References() *ContainerRefs[K, E] {
	return &ContainerRefs[K, E]{container: c}
}

// ContainerRefs addresses a Container by reference across every category.
type ContainerRefs[K Category, E Entry] struct {
	container *Container[K, E]
}

// Get returns every entry whose reference equals ref.
func (r *ContainerRefs[K, E]) Get(ref string) []E {
	var out []E
	for pair := r.container.sets.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value.References().Get(ref)...)
	}
	return out
}

// Delete removes every entry whose reference equals ref and returns the
// number of id groups affected.
func (r *ContainerRefs[K, E]) Delete(ref string) int {
	removed := 0
	for pair := r.container.sets.Oldest(); pair != nil; pair = pair.Next() {
		removed += pair.Value.References().Delete(ref)
	}
	return removed
}

// DeleteStartsWith removes every entry whose reference starts with prefix and
// returns the number of id groups affected.
func (r *ContainerRefs[K, E]) DeleteStartsWith(prefix string) int {
	removed := 0
	for pair := r.container.sets.Oldest(); pair != nil; pair = pair.Next() {
		removed += pair.Value.References().DeleteStartsWith(prefix)
	}
	return removed
}
