// Package watch keeps a store consistent with a workspace on disk by dropping
// entries whose files are removed or renamed.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/jacentio/refstore/internal/telemetry"
)

// ErrAlreadyStarted is returned by Start on a running Watcher.
var ErrAlreadyStarted = errors.New("refstore: watcher already started")

// Handler receives a debounced batch of changes. It is called from a single
// goroutine.
type Handler func(ctx context.Context, changes []Change)

// Watcher watches a directory tree and delivers debounced change batches.
type Watcher struct {
	config  Config
	handler Handler
	logger  *slog.Logger

	fs      *fsnotify.Watcher
	changes chan Change

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	group   *errgroup.Group
}

// New creates a Watcher for config.Root. Call Start to begin watching.
func New(config Config, handler Handler, logger *slog.Logger) (*Watcher, error) {
	config.validate()
	if logger == nil {
		logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		config:  config,
		handler: handler,
		logger:  logger.With("root", config.Root),
		fs:      fw,
		changes: make(chan Change, config.BufferSize),
	}, nil
}

// Start registers watches on Root and its subdirectories, then processes
// events in the background until ctx is canceled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return ErrAlreadyStarted
	}

	if err := w.addRecursive(w.config.Root); err != nil {
		return err
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.group, ctx = errgroup.WithContext(ctx)
	w.group.Go(func() error { return w.readEvents(ctx) })
	w.group.Go(func() error { return w.debounce(ctx) })
	w.started = true

	w.logger.Info("watching workspace", "referenceRoot", w.config.ReferenceRoot)
	return nil
}

// Stop ends watching, flushes pending changes, and waits for the background
// goroutines to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	cancel, group := w.cancel, w.group
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	var err error
	if group != nil {
		err = group.Wait()
	}
	if cerr := w.fs.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// addRecursive adds root and every non-ignored subdirectory.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.ignored(path) {
			return filepath.SkipDir
		}
		return w.fs.Add(path)
	})
}

// ignored reports whether any element of path below Root matches an ignore
// pattern.
func (w *Watcher) ignored(path string) bool {
	rel, err := filepath.Rel(w.config.Root, path)
	if err != nil {
		rel = path
	}
	for _, elem := range strings.Split(filepath.ToSlash(rel), "/") {
		for _, pattern := range w.config.IgnorePatterns {
			if ok, _ := filepath.Match(pattern, elem); ok {
				return true
			}
		}
	}
	return false
}

func (w *Watcher) readEvents(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if w.ignored(event.Name) {
				continue
			}
			change := Change{Path: event.Name, Op: opFor(event.Op), Time: time.Now()}

			select {
			case w.changes <- change:
			default:
				telemetry.RecordSkipped(ctx, telemetry.SourceWatch, "overflow", 1)
				w.logger.Warn("change buffer full, dropping change",
					"path", change.Path,
					"op", change.Op.String(),
				)
			}

			// New directories need their own watch.
			if change.Op == OpCreate {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil {
						w.logger.Warn("failed to watch directory",
							"path", event.Name,
							"error", err,
						)
					}
				}
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// drain appends every change already buffered in w.changes to batch without
// blocking.
func (w *Watcher) drain(batch []Change) []Change {
	for {
		select {
		case change := <-w.changes:
			batch = append(batch, change)
		default:
			return batch
		}
	}
}

func (w *Watcher) debounce(ctx context.Context) error {
	var (
		batch  []Change
		timer  *time.Timer
		timerC <-chan time.Time
	)

	flush := func(ctx context.Context) {
		if timer != nil {
			timer.Stop()
			timer, timerC = nil, nil
		}
		if len(batch) == 0 {
			return
		}
		changes := dedupe(batch)
		batch = nil
		if w.handler != nil {
			w.handler(ctx, changes)
		}
	}

	for {
		select {
		case <-ctx.Done():
			// Pending changes, buffered ones included, are delivered before exiting.
			batch = w.drain(batch)
			flush(context.WithoutCancel(ctx))
			return ctx.Err()
		case change := <-w.changes:
			batch = append(batch, change)
			if timer == nil {
				timer = time.NewTimer(w.config.Debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.config.Debounce)
			}
		case <-timerC:
			flush(ctx)
		}
	}
}
