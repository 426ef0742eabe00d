package services

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher triggers a scan when video files or directories change below the
// watched media locations. Bursts of events are collapsed into one trigger.
type Watcher struct {
	watcher  *fsnotify.Watcher
	trigger  func()
	debounce time.Duration
	wg       sync.WaitGroup
}

func NewWatcher(trigger func(), debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = 2 * time.Second
	}
	return &Watcher{watcher: fw, trigger: trigger, debounce: debounce}, nil
}

// Add watches root and every non-hidden directory below it.
func (w *Watcher) Add(root string) error {
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	return filepath.WalkDir(resolved, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == resolved {
				return err
			}
			slog.Debug("Skipping unreadable directory", "path", p, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != resolved && isHidden(d.Name()) {
			return fs.SkipDir
		}
		if err := w.watcher.Add(p); err != nil {
			slog.Debug("Failed to add watch for directory", "path", p, "error", err)
		}
		return nil
	})
}

// Start runs the event loop until ctx is cancelled or Close is called.
func (w *Watcher) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.loop(ctx)
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.relevant(event) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("File watcher error", "error", err)

		case <-timer.C:
			slog.Info("Media files changed, triggering scan")
			w.trigger()

		case <-ctx.Done():
			return
		}
	}
}

// relevant reports whether event can change the catalog. New directories are
// watched as a side effect.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if isHidden(filepath.Base(event.Name)) {
		return false
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.Add(event.Name); err != nil {
				slog.Error("Failed to watch new directory", "path", event.Name, "error", err)
			}
			return true
		}
	}

	if event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
		// Removed directories can no longer be stat'ed, so extensionless names count.
		return IsVideoFile(event.Name) || filepath.Ext(event.Name) == ""
	}
	return false
}

// Close stops the watcher and waits for the event loop to exit.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}
