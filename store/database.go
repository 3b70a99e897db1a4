package store

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Database binds a Container to each registered root reference and routes
// entries to the Container whose root is a prefix of their reference.
//
// Roots may overlap. Registration order decides precedence: FindContainer
// returns the earliest registered match, FindContainers returns all of them.
type Database[K Category, E Entry] struct {
	containers *orderedmap.OrderedMap[string, *Container[K, E]]
}

// NewDatabase creates a Database with no registered roots.
func NewDatabase[K Category, E Entry]() *Database[K, E] {
	return &Database[K, E]{
		containers: orderedmap.New[string, *Container[K, E]](),
	}
}

// NewContainer binds a fresh Container to root, replacing any previous
// binding for that exact root. A replaced root keeps its registration order.
func (d *Database[K, E]) NewContainer(root string) *Container[K, E] {
	c := NewContainer[K, E]()
	d.containers.Set(root, c)
	return c
}

// GetContainer returns the Container bound to root, binding an empty one if absent.
func (d *Database[K, E]) GetContainer(root string) *Container[K, E] {
	if c, ok := d.containers.Get(root); ok {
		return c
	}
	return d.NewContainer(root)
}

// DeleteContainer unbinds root and reports whether it was registered.
func (d *Database[K, E]) DeleteContainer(root string) bool {
	_, ok := d.containers.Delete(root)
	return ok
}

// Roots returns the registered roots in registration order.
func (d *Database[K, E]) Roots() []string {
	out := make([]string, 0, d.containers.Len())
	for pair := d.containers.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// Len returns the number of entries across all Containers.
func (d *Database[K, E]) Len() int {
	n := 0
	for pair := d.containers.Oldest(); pair != nil; pair = pair.Next() {
		n += pair.Value.Len()
	}
	return n
}

// FindContainer returns the first registered Container whose root is a
// prefix of ref.
func (d *Database[K, E]) FindContainer(ref string) (*Container[K, E], bool) {
	for pair := d.containers.Oldest(); pair != nil; pair = pair.Next() {
		if strings.HasPrefix(ref, pair.Key) {
			return pair.Value, true
		}
	}
	return nil, false
}

// ContainerFor is FindContainer applied to the reference of entry.
func (d *Database[K, E]) ContainerFor(entry E) (*Container[K, E], bool) {
	return d.FindContainer(entry.Reference())
}

// FindContainers returns every Container whose root is a prefix of ref, in
// registration order.
func (d *Database[K, E]) FindContainers(ref string) []*Container[K, E] {
	var out []*Container[K, E]
	for pair := d.containers.Oldest(); pair != nil; pair = pair.Next() {
		if strings.HasPrefix(ref, pair.Key) {
			out = append(out, pair.Value)
		}
	}
	return out
}

// Add stores entry under category in the Container routed from its reference.
// It returns false, storing nothing, when no registered root matches.
func (d *Database[K, E]) Add(category K, entry E) bool {
	c, ok := d.ContainerFor(entry)
	if !ok {
		return false
	}
	c.Add(category, entry)
	return true
}

// Find returns the first entry matching fn, scanning Containers in
// registration order.
func (d *Database[K, E]) Find(fn Predicate[K, E]) (E, bool) {
	for pair := d.containers.Oldest(); pair != nil; pair = pair.Next() {
		if entry, ok := pair.Value.Find(fn); ok {
			return entry, true
		}
	}
	var zero E
	return zero, false
}

// ForEach calls fn for every entry of every Container.
func (d *Database[K, E]) ForEach(fn func(entry E, id string, category K)) {
	for pair := d.containers.Oldest(); pair != nil; pair = pair.Next() {
		pair.Value.ForEach(fn)
	}
}

// Filter returns every entry matching fn, in traversal order.
func (d *Database[K, E]) Filter(fn Predicate[K, E]) []E {
	var out []E
	for pair := d.containers.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value.Filter(fn)...)
	}
	return out
}

// DeleteIf removes every entry matching fn and returns the number of id
// groups affected, summed over all Containers.
func (d *Database[K, E]) DeleteIf(fn Predicate[K, E]) int {
	removed := 0
	for pair := d.containers.Oldest(); pair != nil; pair = pair.Next() {
		removed += pair.Value.DeleteIf(fn)
	}
	return removed
}

// ByType returns a view of the Database restricted to one category.
func (d *Database[K, E]) ByType(category K) *CategoryView[K, E] {
	return &CategoryView[K, E]{db: d, category: category}
}

// ByReference returns a view addressing the Database by entry reference.
func (d *Database[K, E]) ByReference() *DatabaseRefs[K, E] {
	return &DatabaseRefs[K, E]{db: d}
}
