// Package store provides an in-memory, multi-index object store for entries
// extracted from source artifacts.
//
// Every entry carries an id and a reference (the artifact it came from,
// typically a path). Entries can be retrieved by id, by category, and by
// reference or reference prefix, and can be invalidated in bulk when a file or
// folder goes away.
//
// # Levels
//
//   - [Set] groups the entries of one category by id. Within a group no two
//     entries share a reference; adding a duplicate replaces it in place.
//   - [Container] holds one Set per category, created on first touch.
//   - [Database] binds a Container to each registered root reference and
//     routes entries by prefix-matching their reference against the roots.
//
// # Entry Interface
//
// All entries must implement [Entry]:
//
//	type Entry interface {
//	    ID() string
//	    Reference() string
//	}
//
// # Routing
//
// Roots may overlap. [Database.FindContainer] returns the first registered
// match and is what [Database.Add] uses; [Database.FindContainers] returns all
// matches and is what the reference view uses:
//
//	db := store.NewDatabase[Kind, store.Entry]()
//	db.NewContainer("ws1/")
//	if !db.Add("classes", class) {
//	    // no root covers class.Reference(); register one first
//	}
//	db.ByReference().DeleteStartsWith("ws1/src/")
//
// # Deletion Counts
//
// DeleteIf, Delete(reference) and DeleteStartsWith return the number of id
// groups that lost at least one entry, summed across categories and
// Containers.
//
// # Concurrency
//
// Nothing in this package is safe for concurrent use. Wrap a Database in
// [Locked] when several goroutines mutate it.
package store
