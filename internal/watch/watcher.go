// Package watch monitors vault directories for external note changes and
// forwards them as events, so SSE clients see edits made outside the server
// (e.g. directly in Obsidian).
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/nbaradar/obsidian-mcp-server/internal/vault"
)

// EventCallback is called for each observed note change.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind, vaultName, path string)

// Watch starts an fsnotify watcher on the vault root and forwards file
// change events until ctx is cancelled.
//
// New directories created at runtime are automatically added to the watch
// list. fsnotify fires Rename on the old path only; it is reported as a
// deletion, and the new path arrives as a separate Create event when it
// lands inside a watched directory.
func Watch(ctx context.Context, v vault.Vault, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, v.Root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("vault", v.Name), slog.String("root", v.Root))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped", slog.String("vault", v.Name))
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					// Report .md files that arrived with the directory,
					// e.g. a folder moved into the vault wholesale.
					reportNewDir(v, absPath, logger, cb)
					continue
				}
			}

			if !strings.HasSuffix(absPath, ".md") {
				continue
			}
			rel := vault.DisplayName(v, absPath)

			switch {
			case ev.Op&fsnotify.Create != 0:
				logger.Debug("watcher: created", slog.String("vault", v.Name), slog.String("path", rel))
				if cb != nil {
					cb("created", v.Name, rel)
				}

			case ev.Op&fsnotify.Write != 0:
				logger.Debug("watcher: updated", slog.String("vault", v.Name), slog.String("path", rel))
				if cb != nil {
					cb("updated", v.Name, rel)
				}

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				logger.Debug("watcher: deleted", slog.String("vault", v.Name), slog.String("path", rel))
				if cb != nil {
					cb("deleted", v.Name, rel)
				}
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("vault", v.Name), slog.String("error", watchErr.Error()))
		}
	}
}

// reportNewDir reports any .md files found in a newly created directory.
func reportNewDir(v vault.Vault, dirPath string, logger *slog.Logger, cb EventCallback) {
	_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}
		rel := vault.DisplayName(v, path)
		logger.Debug("watcher: created from new dir", slog.String("vault", v.Name), slog.String("path", rel))
		if cb != nil {
			cb("created", v.Name, rel)
		}
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
