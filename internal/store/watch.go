package store

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay coalesces the burst of events a single save produces.
const reloadDelay = 100 * time.Millisecond

// Watch reloads the snapshot at path every time it is written or
// replaced, and hands each successfully loaded store to onLoad.
// A snapshot that fails to load is logged and skipped.
// Watch blocks until ctx is cancelled.
func Watch(ctx context.Context, path string, onLoad func(*Store)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve snapshot path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: atomic replaces swap the inode under a file watch.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	slog.Debug("watching snapshot", "path", abs)

	timer := time.NewTimer(reloadDelay)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			timer.Reset(reloadDelay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("snapshot watcher error", "error", err)

		case <-timer.C:
			s, err := LoadFile(abs)
			if err != nil {
				slog.Warn("snapshot reload failed, keeping previous", "path", abs, "error", err)
				continue
			}
			slog.Info("snapshot reloaded", "path", abs, "documents", s.Len())
			onLoad(s)
		}
	}
}
