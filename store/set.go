package store

import (
	"iter"
	"slices"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Set stores the entries of one category, grouped by id.
//
// Within a group no two entries share a reference: adding an entry whose
// reference is already present replaces it in place, any other entry is
// appended. Groups are kept in insertion order.
type Set[E Entry] struct {
	groups *orderedmap.OrderedMap[string, []E]
}

// NewSet creates an empty Set.
func NewSet[E Entry]() *Set[E] {
	return &Set[E]{
		groups: orderedmap.New[string, []E](),
	}
}

// Get returns the entries stored under id, or nil if there are none.
func (s *Set[E]) Get(id string) []E {
	group, _ := s.groups.Get(id)
	return slices.Clone(group)
}

// All iterates over every id group in insertion order.
// The yielded slices are copies and may be retained by the caller.
func (s *Set[E]) All() iter.Seq2[string, []E] {
	return func(yield func(string, []E) bool) {
		for pair := s.groups.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Key, slices.Clone(pair.Value)) {
				return
			}
		}
	}
}

// IDs returns the ids that currently hold entries, in insertion order.
func (s *Set[E]) IDs() []string {
	ids := make([]string, 0, s.groups.Len())
	for pair := s.groups.Oldest(); pair != nil; pair = pair.Next() {
		ids = append(ids, pair.Key)
	}
	return ids
}

// Len returns the number of id groups.
func (s *Set[E]) Len() int {
	return s.groups.Len()
}

// Count returns the number of entries across all groups.
func (s *Set[E]) Count() int {
	n := 0
	for pair := s.groups.Oldest(); pair != nil; pair = pair.Next() {
		n += len(pair.Value)
	}
	return n
}

// Put replaces the whole group for id without checking references.
// The caller asserts that entries holds no duplicate references.
// An empty slice removes the group.
func (s *Set[E]) Put(id string, entries []E) {
	if len(entries) == 0 {
		s.groups.Delete(id)
		return
	}
	s.groups.Set(id, slices.Clone(entries))
}

// Add stores entry under its id, replacing an entry with the same reference.
func (s *Set[E]) Add(entry E) {
	id := entry.ID()
	group, _ := s.groups.Get(id)
	for i, existing := range group {
		if Equal(existing, entry) {
			group[i] = entry
			return
		}
	}
	s.groups.Set(id, append(group, entry))
}

// Has reports whether id holds at least one entry.
func (s *Set[E]) Has(id string) bool {
	group, _ := s.groups.Get(id)
	return len(group) > 0
}

// Delete removes the whole group for id and reports whether it existed.
func (s *Set[E]) Delete(id string) bool {
	_, ok := s.groups.Delete(id)
	return ok
}

// DeleteIf removes every entry matching fn and returns the number of id
// groups that lost at least one entry. Survivors keep their order; groups
// left empty are dropped.
func (s *Set[E]) DeleteIf(fn SetPredicate[E]) int {
	removed := 0
	for pair := s.groups.Oldest(); pair != nil; {
		next := pair.Next()
		group := pair.Value
		kept := group[:0]
		for _, entry := range group {
			if !fn(entry, pair.Key) {
				kept = append(kept, entry)
			}
		}
		if len(kept) != len(group) {
			removed++
			clear(group[len(kept):])
			if len(kept) == 0 {
				s.groups.Delete(pair.Key)
			} else {
				s.groups.Set(pair.Key, kept)
			}
		}
		pair = next
	}
	return removed
}

// ForEach calls fn for every entry, group by group.
// fn must not modify the Set.
func (s *Set[E]) ForEach(fn func(entry E, id string)) {
	for pair := s.groups.Oldest(); pair != nil; pair = pair.Next() {
		for _, entry := range pair.Value {
			fn(entry, pair.Key)
		}
	}
}

// Filter returns every entry matching fn, in traversal order.
func (s *Set[E]) Filter(fn SetPredicate[E]) []E {
	var out []E
	s.ForEach(func(entry E, id string) {
		if fn(entry, id) {
			out = append(out, entry)
		}
	})
	return out
}

// Find returns the first entry matching fn.
func (s *Set[E]) Find(fn SetPredicate[E]) (E, bool) {
	for pair := s.groups.Oldest(); pair != nil; pair = pair.Next() {
		for _, entry := range pair.Value {
			if fn(entry, pair.Key) {
				return entry, true
			}
		}
	}
	var zero E
	return zero, false
}

// References returns a view addressing the Set by entry reference.
func (s *Set[E]) References() *SetRefs[E] {
	return &SetRefs[E]{set: s}
}

// SetRefs addresses a Set by reference. Every operation is a linear scan.
type SetRefs[E Entry] struct {
	set *Set[E]
}

// Get returns every entry whose reference equals ref.
func (r *SetRefs[E]) Get(ref string) []E {
	return r.set.Filter(referenceIs[E](ref))
}

// Delete removes every entry whose reference equals ref and returns the
// number of id groups affected.
func (r *SetRefs[E]) Delete(ref string) int {
	return r.set.DeleteIf(referenceIs[E](ref))
}

// DeleteStartsWith removes every entry whose reference starts with prefix and
// returns the number of id groups affected.
func (r *SetRefs[E]) DeleteStartsWith(prefix string) int {
	return r.set.DeleteIf(referenceHasPrefix[E](prefix))
}
