package host

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchDispatchFile drops the module cache whenever the dispatch file is
// written, created, renamed or removed. Watching stops when ctx is done.
func (l *Loader) WatchDispatchFile(ctx context.Context) error {
	path := l.dispatchPath()
	if path == "" {
		return fmt.Errorf("no dispatch file configured")
	}
	path, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// The directory is watched so atomic renames are seen.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}

	go l.watchLoop(ctx, watcher, path)
	l.cfg.logger.InfoContext(ctx, "watching dispatch file", "path", path)
	return nil
}

func (l *Loader) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string) {
	defer func() { _ = watcher.Close() }()
	const relevant = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path || event.Op&relevant == 0 {
				continue
			}
			n := l.PurgeCache(ctx)
			l.cfg.logger.DebugContext(ctx, "dispatch file changed",
				"event", event.Op.String(), "evicted", n)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			l.cfg.logger.ErrorContext(ctx, "dispatch file watcher error", "error", err)
		}
	}
}
