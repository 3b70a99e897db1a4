package store

import (
	"fmt"
	"sync"
)

// Locked guards one Database tree with a single critical section.
//
// Reads create categories lazily, so every access takes the same exclusive
// lock; there is no shared read mode.
type Locked[K Category, E Entry] struct {
	mu sync.Mutex
	db *Database[K, E]
}

// NewLocked wraps db. The caller must not touch db directly afterwards.
func NewLocked[K Category, E Entry](db *Database[K, E]) *Locked[K, E] {
	return &Locked[K, E]{db: db}
}

// Do runs fn while holding the lock. fn must not retain db.
func (l *Locked[K, E]) Do(fn func(db *Database[K, E])) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.db)
}

// Add stores entry under category, returning ErrNoMatchingRoot on a routing miss.
func (l *Locked[K, E]) Add(category K, entry E) error {
	var ok bool
	l.Do(func(db *Database[K, E]) {
		ok = db.Add(category, entry)
	})
	if !ok {
		return fmt.Errorf("%w: %q", ErrNoMatchingRoot, entry.Reference())
	}
	return nil
}

// Remove deletes the entry identified by id and ref from category and
// reports whether anything was removed.
func (l *Locked[K, E]) Remove(category K, id, ref string) bool {
	removed := 0
	l.Do(func(db *Database[K, E]) {
		for _, c := range db.FindContainers(ref) {
			removed += c.Set(category).DeleteIf(func(e E, groupID string) bool {
				return groupID == id && e.Reference() == ref
			})
		}
	})
	return removed > 0
}

// Len returns the number of entries in the Database.
func (l *Locked[K, E]) Len() int {
	var n int
	l.Do(func(db *Database[K, E]) {
		n = db.Len()
	})
	return n
}
