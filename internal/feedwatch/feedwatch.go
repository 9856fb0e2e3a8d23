// Package feedwatch invalidates the provider's cached source list when the
// engine's configuration file changes on disk. Users run the engine CLI
// directly alongside the provider, so feed changes can arrive outside any
// provider operation; watching the config file keeps ResolvePackageSources
// from serving a stale cache indefinitely.
package feedwatch

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow coalesces the burst of write events an engine config
// rewrite produces into one notification.
const debounceWindow = 500 * time.Millisecond

// Watcher watches one engine configuration file and fires a callback after
// each (debounced) change.
type Watcher struct {
	path     string
	onChange func()
	log      *slog.Logger

	fsw    *fsnotify.Watcher
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a Watcher for the engine config file at path. onChange is
// invoked from the watcher goroutine after each debounced change; it must
// be safe to call from a goroutine other than the one that created the
// Watcher.
func New(path string, onChange func(), log *slog.Logger) (*Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("feedwatch: path cannot be empty")
	}
	if onChange == nil {
		return nil, fmt.Errorf("feedwatch: onChange cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{
		path:     path,
		onChange: onChange,
		log:      log,
		stopCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. The parent directory is watched rather than the
// file itself so atomic rename-based rewrites keep being seen.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("feedwatch: create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return fmt.Errorf("feedwatch: watch %s: %w", filepath.Dir(w.path), err)
	}

	w.fsw = fsw
	w.wg.Add(1)
	go w.run()
	return nil
}

// run drains fsnotify events until stopped, debouncing matches on the
// config file into onChange calls.
func (w *Watcher) run() {
	defer w.wg.Done()

	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			w.log.Debug("engine config changed", "path", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
				timerCh = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounceWindow)
			}

		case <-timerCh:
			timer = nil
			timerCh = nil
			w.onChange()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("feed watcher error", "err", err)

		case <-w.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// Stop halts the watcher and waits for the goroutine to exit.
func (w *Watcher) Stop() error {
	close(w.stopCh)
	var err error
	if w.fsw != nil {
		err = w.fsw.Close()
	}
	w.wg.Wait()
	return err
}
