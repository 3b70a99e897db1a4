package watch

import (
	"time"

	"github.com/fsnotify/fsnotify"
)

// Op is the kind of filesystem change.
type Op int

const (
	OpCreate Op = iota
	OpWrite
	OpRemove
	OpRename
)

func (op Op) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Invalidates reports whether entries under the changed path must be dropped.
func (op Op) Invalidates() bool {
	return op == OpRemove || op == OpRename
}

// Change is a single filesystem change.
type Change struct {
	Path string
	Op   Op
	Time time.Time
}

// opFor maps an fsnotify event to an Op. Remove and rename win over create
// and write when fsnotify coalesces several into one event.
func opFor(op fsnotify.Op) Op {
	switch {
	case op.Has(fsnotify.Remove):
		return OpRemove
	case op.Has(fsnotify.Rename):
		return OpRename
	case op.Has(fsnotify.Create):
		return OpCreate
	default:
		return OpWrite
	}
}

// dedupe keeps the latest change per path, in order of first appearance.
func dedupe(changes []Change) []Change {
	seen := make(map[string]int, len(changes))
	out := make([]Change, 0, len(changes))
	for _, c := range changes {
		if i, ok := seen[c.Path]; ok {
			out[i] = c
			continue
		}
		seen[c.Path] = len(out)
		out = append(out, c)
	}
	return out
}
