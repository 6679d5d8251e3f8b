// Package watch reloads the Book Store when its slot file is edited outside
// the process.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 200 * time.Millisecond

// Refresher is implemented by bookstore.Store.
type Refresher interface {
	Refresh(ctx context.Context) (bool, error)
}

// ReloadCallback is called after a refresh that changed the collection.
type ReloadCallback func()

// Watch starts an fsnotify watcher on the directory holding slotPath and
// calls r.Refresh once changes to that file settle. It runs until ctx is
// cancelled. cb may be nil.
//
// The directory is watched rather than the file itself because atomic writes
// replace the file through a rename, which ends a watch on the old inode.
func Watch(ctx context.Context, r Refresher, slotPath string, debounce time.Duration, logger *slog.Logger, cb ReloadCallback) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(slotPath)
	name := filepath.Base(slotPath)
	if err := w.Add(dir); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("path", slotPath))

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			changed, err := r.Refresh(ctx)
			if err != nil {
				logger.Warn("watcher: refresh failed", slog.String("error", err.Error()))
				continue
			}
			if !changed {
				continue
			}
			logger.Info("watcher: reloaded books", slog.String("path", slotPath))
			if cb != nil {
				cb()
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("watcher: slot changed", slog.String("op", ev.Op.String()))
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
