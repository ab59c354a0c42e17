package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rowanhart/curator/internal/storage"
)

// Watch runs an fsnotify watcher over the vault root and keeps the index
// current until ctx is cancelled. New directories created at runtime are
// added to the watch list. Rename events fire on the old path only, so a
// short debounced reconciliation pass catches the new path.
func Watch(ctx context.Context, db *DB, store storage.Provider, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := store.Root()
	if err := addDirsRecursive(w, root); err != nil {
		return err
	}
	logger.Info("watcher started", slog.String("root", root))

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher stopped")
			return nil

		case <-reconcileCh:
			if err := Sync(db, store, logger); err != nil {
				logger.Warn("reconcile failed", slog.Any("error", err))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			abs := ev.Name

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(abs); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, abs); addErr != nil {
						logger.Warn("watching new dir failed",
							slog.String("path", abs), slog.Any("error", addErr))
					}
					scheduleReconcile()
					continue
				}
			}

			rel, relErr := filepath.Rel(root, abs)
			if relErr != nil || !indexable(rel) {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				data, readErr := store.Read(rel)
				if readErr != nil {
					logger.Warn("watcher read failed", slog.String("path", rel), slog.Any("error", readErr))
					continue
				}
				if idxErr := indexFile(db, rel, data); idxErr != nil {
					logger.Warn("watcher index failed", slog.String("path", rel), slog.Any("error", idxErr))
					continue
				}
				logger.Debug("indexed", slog.String("path", rel))

			case ev.Op&fsnotify.Remove != 0:
				if delErr := db.DeleteNote(rel); delErr != nil {
					logger.Warn("watcher delete failed", slog.String("path", rel), slog.Any("error", delErr))
					continue
				}
				logger.Debug("unindexed", slog.String("path", rel))

			case ev.Op&fsnotify.Rename != 0:
				if delErr := db.DeleteNote(rel); delErr != nil {
					logger.Warn("watcher rename delete failed", slog.String("path", rel), slog.Any("error", delErr))
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", slog.Any("error", watchErr))
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
