// Package watch re-runs a callback when any of a set of files changes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups bursts of editor writes into one callback
const DefaultDebounce = 300 * time.Millisecond

// Files watches the parent directories of the given files so that atomic
// replaces (write to temp, rename) are seen as well. Files that do not
// exist yet are picked up once they are created.
type Files struct {
	files    map[string]bool
	debounce time.Duration
	onChange func()
}

// New creates a watcher that calls onChange after files change
func New(files []string, debounce time.Duration, onChange func()) (*Files, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	set := make(map[string]bool, len(files))
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("invalid path %s: %w", f, err)
		}
		set[abs] = true
	}
	return &Files{files: set, debounce: debounce, onChange: onChange}, nil
}

// Run blocks until ctx is cancelled. onChange is called from Run itself.
func (w *Files) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dirs := make(map[string]bool)
	for f := range w.files {
		dir := filepath.Dir(f)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
		log.Debug("Watching directory", "dir", dir)
	}

	// onChange runs on this goroutine, so calls never overlap and none is
	// left running once Run returns.
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-fire:
			fire = nil
			w.onChange()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.files[filepath.Clean(event.Name)] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}

			log.Debug("Input changed", "file", event.Name, "op", event.Op.String())

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("Watcher error", "err", err)
		}
	}
}
