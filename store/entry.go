package store

import "strings"

// Entry is the capability every stored value must expose.
type Entry interface {
	// ID returns the identifier the entry is grouped under (e.g., a qualified symbol name).
	ID() string

	// Reference returns the artifact the entry came from (e.g., "ws1/src/main.go").
	Reference() string
}

// Category constrains category tags. Tags are plain strings declared by a schema.
type Category interface {
	~string
}

// Equal reports whether two entries share the same id and reference.
func Equal[E Entry](a, b E) bool {
	return a.ID() == b.ID() && a.Reference() == b.Reference()
}

// SetPredicate is evaluated for every entry of a Set together with its group id.
type SetPredicate[E Entry] func(entry E, id string) bool

// Predicate is evaluated for every entry of a Container or Database together
// with its group id and category.
type Predicate[K Category, E Entry] func(entry E, id string, category K) bool

// scoped adapts a Predicate to a single category's Set.
func scoped[K Category, E Entry](fn Predicate[K, E], category K) SetPredicate[E] {
	return func(entry E, id string) bool {
		return fn(entry, id, category)
	}
}

// referenceIs matches entries whose reference equals ref.
func referenceIs[E Entry](ref string) SetPredicate[E] {
	return func(entry E, _ string) bool {
		return entry.Reference() == ref
	}
}

// referenceHasPrefix matches entries whose reference starts with prefix.
func referenceHasPrefix[E Entry](prefix string) SetPredicate[E] {
	return func(entry E, _ string) bool {
		return strings.HasPrefix(entry.Reference(), prefix)
	}
}
