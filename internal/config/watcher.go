// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the burst of write events most editors emit when
// saving a file.
const watchDebounce = 250 * time.Millisecond

// =============================================================================
// CONFIG WATCHER
// =============================================================================

// Watcher watches the configuration file and delivers a freshly loaded
// Config on the channel returned by Changes whenever the file is edited.
// Invalid edits are logged and skipped; the previous configuration stays in
// effect.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	changes chan Config
	cancel  context.CancelFunc
}

// NewWatcher creates a watcher for the config file at path.
// The parent directory is watched rather than the file itself so saves that
// replace the file (write-temp-then-rename) are still observed.
func NewWatcher(path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		path:    path,
		watcher: fsw,
		changes: make(chan Config, 1),
		cancel:  cancel,
	}
	go w.run(ctx)
	return w, nil
}

// Changes returns the channel of reloaded configurations.
func (w *Watcher) Changes() <-chan Config {
	return w.changes
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.cancel()
	return w.watcher.Close()
}

// run processes file system events until the watcher is closed.
func (w *Watcher) run(ctx context.Context) {
	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			cfg, err := Load(w.path)
			if err != nil {
				slog.Warn("config reload skipped", "path", w.path, "error", err)
				continue
			}
			// Keep only the most recent config if nobody is draining.
			select {
			case w.changes <- cfg:
			default:
				select {
				case <-w.changes:
				default:
				}
				w.changes <- cfg
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("config watcher error", "error", err)
		}
	}
}
