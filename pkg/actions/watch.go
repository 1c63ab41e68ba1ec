package actions

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Store holds the current table. Sessions read it on every click while
// a watcher may swap it.
type Store struct {
	table atomic.Pointer[Table]
}

// NewStore creates a store holding t.
func NewStore(t *Table) *Store {
	s := &Store{}
	s.table.Store(t)
	return s
}

// Table returns the current table.
func (s *Store) Table() *Table {
	return s.table.Load()
}

// Replace swaps in a new table.
func (s *Store) Replace(t *Table) {
	s.table.Store(t)
}

// Watch reloads path whenever it changes and passes each table that
// parses to fn. Tables that fail to parse are logged and skipped, leaving
// the previous one in effect. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, fn func(*Table), logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default().With("component", "actions")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("actions: watch: %w", err)
	}
	defer watcher.Close()

	// Watch the directory; editors often replace the file rather than
	// writing it in place.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("actions: watch %s: %w", path, err)
	}
	filename := filepath.Base(path)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			t, err := Load(path)
			if err != nil {
				logger.Warn("action table reload failed", "path", path, "error", err)
				continue
			}
			logger.Info("action table reloaded", "path", path, "labels", len(t.Labels), "roles", len(t.Roles))
			fn(t)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("action table watcher error", "error", err)

		case <-ctx.Done():
			return nil
		}
	}
}
