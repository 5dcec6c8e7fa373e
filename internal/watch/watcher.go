// Package watch reruns a sync whenever the Hamster database changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"hamstercal-go/internal/hamstercal"
)

// DefaultSettle is how long events are discarded after a run, so the run's
// own writes to the state row do not schedule another one.
const DefaultSettle = 500 * time.Millisecond

// Watcher watches a database file and calls a function after writes to it
// have been quiet for the debounce interval. Runs never overlap.
type Watcher struct {
	dir      string
	prefix   string
	debounce time.Duration
	settle   time.Duration
	logger   hamstercal.Logger
}

// NewWatcher creates a Watcher for the database at dbPath. Events on
// sibling files sharing its name (journal, WAL) count as writes.
func NewWatcher(dbPath string, debounce time.Duration, logger hamstercal.Logger) (*Watcher, error) {
	if debounce <= 0 {
		return nil, fmt.Errorf("debounce must be positive, got %s", debounce)
	}
	abs, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("resolving database path: %w", err)
	}
	return &Watcher{
		dir:      filepath.Dir(abs),
		prefix:   filepath.Base(abs),
		debounce: debounce,
		settle:   DefaultSettle,
		logger:   logger,
	}, nil
}

// WithSettle overrides DefaultSettle.
func (w *Watcher) WithSettle(d time.Duration) *Watcher {
	w.settle = d
	return w
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	return strings.HasPrefix(filepath.Base(ev.Name), w.prefix)
}

// Run calls fn once immediately and then after each debounced change, until
// ctx is cancelled or fn returns an error. Cancellation returns nil.
func (w *Watcher) Run(ctx context.Context, fn func(context.Context) error) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer fsw.Close()

	// The directory is watched rather than the file so replaced files
	// (rename over) keep being seen.
	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching database", "dir", w.dir, "file", w.prefix, "debounce", w.debounce)

	run := func() error {
		if err := fn(ctx); err != nil {
			return err
		}
		w.drain(ctx, fsw)
		return nil
	}

	if err := run(); err != nil {
		return err
	}

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("database changed", "file", ev.Name, "op", ev.Op.String())
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)

		case <-timer.C:
			if err := run(); err != nil {
				return err
			}
		}
	}
}

// drain discards events for the settle interval.
func (w *Watcher) drain(ctx context.Context, fsw *fsnotify.Watcher) {
	if w.settle <= 0 {
		return
	}
	deadline := time.NewTimer(w.settle)
	defer deadline.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			return
		case _, ok := <-fsw.Events:
			if !ok {
				return
			}
		}
	}
}
