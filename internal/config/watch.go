package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/1broseidon/panedesk/internal/logging"
)

const defaultWatchDebounce = 150 * time.Millisecond

// Watcher reloads a config file and its includes when they change on disk.
type Watcher struct {
	path     string
	logger   *logging.ScopedLogger
	fs       *fsnotify.Watcher
	debounce time.Duration

	files map[string]struct{}
	dirs  map[string]struct{}
}

// NewWatcher starts watching path and every file it currently includes.
// Directories are watched rather than files so editors that save by rename
// are still seen; a missing config directory is created.
func NewWatcher(path string, logger *logging.ScopedLogger) (*Watcher, error) {
	if logger == nil {
		logger = logging.NopLogger()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		path:     path,
		logger:   logger,
		fs:       fsw,
		debounce: defaultWatchDebounce,
		files:    make(map[string]struct{}),
		dirs:     make(map[string]struct{}),
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	files := []string{path}
	if res, err := LoadFromPath(path); err == nil {
		files = append(files, res.Files...)
	}
	if err := w.track(files); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run delivers each successfully reloaded configuration to onChange until ctx
// is cancelled. A change that fails to load or validate is logged and the
// previous configuration stays in effect.
func (w *Watcher) Run(ctx context.Context, onChange func(*LoadResult)) error {
	defer w.fs.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if _, watched := w.files[watchKey(event.Name)]; !watched {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				timer.Reset(w.debounce)
			}

		case <-timer.C:
			res, err := LoadFromPath(w.path)
			if err != nil {
				w.logger.Warn("config reload failed, keeping previous config", "path", w.path, "error", err)
				continue
			}
			if err := w.track(res.Files); err != nil {
				w.logger.Warn("failed to watch included config", "error", err)
			}
			w.logger.Info("config reloaded", "path", w.path, "files", len(res.Files))
			onChange(res)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}

// Close stops watching without waiting for Run.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func (w *Watcher) track(files []string) error {
	for _, file := range files {
		key := watchKey(file)
		w.files[key] = struct{}{}

		dir := filepath.Dir(key)
		if _, ok := w.dirs[dir]; ok {
			continue
		}
		if err := w.fs.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
		w.dirs[dir] = struct{}{}
	}
	return nil
}

// watchKey normalises a path through its directory so an event name and a
// configured path compare equal even when the file itself does not exist.
func watchKey(path string) string {
	dir, err := canonicalPath(filepath.Dir(path))
	if err != nil {
		return filepath.Clean(path)
	}
	return filepath.Join(dir, filepath.Base(path))
}
