package linktree

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadFunc is invoked after a debounced change to a watched catalog file.
type ReloadFunc func()

// Watch monitors the keyword-tree file and the tagged-records CSV for
// external edits and calls reload until ctx is cancelled. Events for either
// file are debounced into a single reload; editors that write via rename are
// covered because the parent directories are watched, not the files.
func Watch(ctx context.Context, treePath, taggedPath string, logger *slog.Logger, reload ReloadFunc) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	watched := map[string]struct{}{
		filepath.Clean(treePath):   {},
		filepath.Clean(taggedPath): {},
	}
	dirs := map[string]struct{}{}
	for p := range watched {
		dirs[filepath.Dir(p)] = struct{}{}
	}
	for d := range dirs {
		if err := w.Add(d); err != nil {
			return err
		}
	}

	logger.Info("catalog watcher: started",
		slog.String("tree", treePath),
		slog.String("tagged", taggedPath))

	var debounce *time.Timer
	var debounceCh <-chan time.Time

	scheduleReload := func() {
		if debounce == nil {
			debounce = time.NewTimer(200 * time.Millisecond)
			debounceCh = debounce.C
		} else {
			debounce.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			logger.Info("catalog watcher: stopped")
			return nil

		case <-debounceCh:
			logger.Debug("catalog watcher: reloading")
			reload()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if _, ours := watched[filepath.Clean(ev.Name)]; !ours {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) != 0 {
				scheduleReload()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("catalog watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
