package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchFile calls run once, then again after each burst of writes to path,
// until ctx is done. Errors from run are passed to report and do not stop
// the watch. The parent directory is watched so editors that replace the
// file on save keep triggering runs.
func watchFile(ctx context.Context, path string, debounce time.Duration, run func() error, report func(error)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}

	if err := run(); err != nil {
		report(err)
	}

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			fire = time.After(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			report(err)
		case <-fire:
			fire = nil
			if err := run(); err != nil {
				report(err)
			}
		}
	}
}
