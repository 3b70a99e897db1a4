package watch

import (
	"context"
	"log/slog"

	"github.com/jacentio/refstore/internal/refpath"
	"github.com/jacentio/refstore/internal/telemetry"
	"github.com/jacentio/refstore/store"
)

// Invalidator drops store entries whose files disappeared from a workspace.
type Invalidator[K store.Category] struct {
	db      *store.Locked[K, store.Entry]
	root    string
	refRoot string
	logger  *slog.Logger
}

// NewInvalidator creates an Invalidator mapping paths under config.Root to
// references under config.ReferenceRoot.
func NewInvalidator[K store.Category](db *store.Locked[K, store.Entry], config Config, logger *slog.Logger) *Invalidator[K] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Invalidator[K]{
		db:      db,
		root:    config.Root,
		refRoot: config.ReferenceRoot,
		logger:  logger,
	}
}

// Handle is a Handler that applies changes to the store.
func (i *Invalidator[K]) Handle(ctx context.Context, changes []Change) {
	i.Apply(ctx, changes)
}

// Apply removes every entry referencing a removed or renamed path, or any
// path inside it when it was a folder. Creates and writes are ignored; new
// content arrives through the stream. It returns the number of id groups
// removed.
func (i *Invalidator[K]) Apply(ctx context.Context, changes []Change) int {
	total := 0
	for _, change := range changes {
		if !change.Op.Invalidates() {
			continue
		}
		ref, ok := refpath.FromPath(i.root, i.refRoot, change.Path)
		if !ok {
			i.logger.Debug("change outside workspace", "path", change.Path)
			continue
		}

		var n int
		i.db.Do(func(db *store.Database[K, store.Entry]) {
			refs := db.ByReference()
			n = refs.Delete(ref) + refs.DeleteStartsWith(refpath.FolderPrefix(ref))
		})
		total += n

		i.logger.Debug("invalidated reference",
			"reference", ref,
			"op", change.Op.String(),
			"groups", n,
		)
	}

	if total > 0 {
		telemetry.RecordInvalidated(ctx, telemetry.SourceWatch, total)
		i.logger.Info("invalidated entries",
			"changes", len(changes),
			"groups", total,
		)
	}
	return total
}
