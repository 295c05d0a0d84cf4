// Package watch reruns a generation whenever the annotation file changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/retroenv/retrogolib/log"
)

// DefaultDelay collapses the burst of events an editor produces when saving.
const DefaultDelay = 100 * time.Millisecond

// Func is called once on start and after every change of the watched file.
type Func func(ctx context.Context) error

// Watcher watches a single file.
type Watcher struct {
	logger *log.Logger
	path   string
	delay  time.Duration
}

// New returns a watcher for the given file.
func New(logger *log.Logger, path string) *Watcher {
	return &Watcher{
		logger: logger,
		path:   filepath.Clean(path),
		delay:  DefaultDelay,
	}
}

// Run calls fn and then again after each change of the file until the
// context is canceled. Errors returned by fn are logged, watching continues.
func (w *Watcher) Run(ctx context.Context, fn Func) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	// editors often replace the file instead of writing it, the directory
	// watch keeps working across renames.
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watching %s: %w", w.path, err)
	}

	w.run(ctx, fn)
	w.logger.Info("Watching for changes", log.String("file", w.path))

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("File changed", log.String("file", event.Name), log.String("op", event.Op.String()))
			pending = time.After(w.delay)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("File watcher error", log.Err(err))

		case <-pending:
			pending = nil
			w.run(ctx, fn)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create) != 0
}

func (w *Watcher) run(ctx context.Context, fn Func) {
	err := fn(ctx)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
	default:
		w.logger.Error("Generation failed", log.Err(err))
	}
}
