// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jeranaias/mentor-tui/internal/util"
)

// debounceWindow coalesces editor write bursts into one reload.
const debounceWindow = 250 * time.Millisecond

// Watcher reloads display options when the config file changes on disk.
// Only the Display section is hot-reloaded; credentials and addresses
// require a restart.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onApply  func(Display)
	debounce *util.Debouncer
	done     chan struct{}
}

// NewWatcher watches path and invokes onApply with the new display options
// after each successful reload.
func NewWatcher(path string, onApply func(Display)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory: editors replace files via rename, which drops a
	// watch held on the file itself.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		path:     path,
		watcher:  fw,
		onApply:  onApply,
		debounce: util.NewDebouncer(debounceWindow),
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.debounce.Trigger(w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("CONFIG_WATCH_ERROR: %v", err)

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		log.Printf("CONFIG_RELOAD_FAILED: path=%s error=%v", w.path, err)
		return
	}
	log.Printf("CONFIG_RELOADED: path=%s", w.path)
	if w.onApply != nil {
		w.onApply(cfg.Display)
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	w.debounce.Stop()
	return w.watcher.Close()
}
