package store

// CategoryView presents a Database as if it held a single category.
type CategoryView[K Category, E Entry] struct {
	db       *Database[K, E]
	category K
}

// Category returns the category the view is restricted to.
func (v *CategoryView[K, E]) Category() K {
	return v.category
}

// Get returns the entries stored under id in every Container.
func (v *CategoryView[K, E]) Get(id string) []E {
	var out []E
	for pair := v.db.containers.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value.Get(v.category, id)...)
	}
	return out
}

// Has reports whether any Container holds an entry under id.
func (v *CategoryView[K, E]) Has(id string) bool {
	for pair := v.db.containers.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.Has(v.category, id) {
			return true
		}
	}
	return false
}

// Add routes entry like Database.Add.
func (v *CategoryView[K, E]) Add(entry E) bool {
	return v.db.Add(v.category, entry)
}

// Delete removes the group for id from every Container and reports whether
// any of them held it.
func (v *CategoryView[K, E]) Delete(id string) bool {
	deleted := false
	for pair := v.db.containers.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.Delete(v.category, id) {
			deleted = true
		}
	}
	return deleted
}

// Sets returns the Set for the category from every Container, empty ones included.
func (v *CategoryView[K, E]) Sets() []*Set[E] {
	out := make([]*Set[E], 0, v.db.containers.Len())
	for pair := v.db.containers.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value.Set(v.category))
	}
	return out
}

// ForEach calls fn for every entry of the category.
func (v *CategoryView[K, E]) ForEach(fn func(entry E, id string)) {
	for _, set := range v.Sets() {
		set.ForEach(fn)
	}
}

// Filter returns every entry of the category matching fn.
func (v *CategoryView[K, E]) Filter(fn SetPredicate[E]) []E {
	var out []E
	for _, set := range v.Sets() {
		out = append(out, set.Filter(fn)...)
	}
	return out
}

// Find returns the first entry of the category matching fn.
func (v *CategoryView[K, E]) Find(fn SetPredicate[E]) (E, bool) {
	for _, set := range v.Sets() {
		if entry, ok := set.Find(fn); ok {
			return entry, true
		}
	}
	var zero E
	return zero, false
}

// DeleteIf removes every entry of the category matching fn and returns the
// number of id groups affected.
func (v *CategoryView[K, E]) DeleteIf(fn SetPredicate[E]) int {
	removed := 0
	for _, set := range v.Sets() {
		removed += set.DeleteIf(fn)
	}
	return removed
}

// DatabaseRefs addresses a Database by reference, visiting only the
// Containers whose root is a prefix of the given reference.
type DatabaseRefs[K Category, E Entry] struct {
	db *Database[K, E]
}

// Get returns every entry whose reference equals ref.
func (r *DatabaseRefs[K, E]) Get(ref string) []E {
	var out []E
	for _, c := range r.db.FindContainers(ref) {
		out = append(out, c.References().Get(ref)...)
	}
	return out
}

// Delete removes every entry whose reference equals ref and returns the
// number of id groups affected.
func (r *DatabaseRefs[K, E]) Delete(ref string) int {
	removed := 0
	for _, c := range r.db.FindContainers(ref) {
		removed += c.References().Delete(ref)
	}
	return removed
}

// DeleteStartsWith removes every entry whose reference starts with prefix and
// returns the number of id groups affected. Only Containers whose root is a
// prefix of prefix are visited.
func (r *DatabaseRefs[K, E]) DeleteStartsWith(prefix string) int {
	removed := 0
	for _, c := range r.db.FindContainers(prefix) {
		removed += c.References().DeleteStartsWith(prefix)
	}
	return removed
}
