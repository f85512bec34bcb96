// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/stacklok/vgate/pkg/gwlogging"
)

// DebounceInterval is the minimum quiet period after the last observed
// filesystem event before a reload fires, per spec §4.2 (>=250ms).
const DebounceInterval = 250 * time.Millisecond

// Watch watches the registry's configured directories for changes and calls
// Reload after each debounce window. It blocks until ctx is cancelled. Reload
// errors are logged as health warnings, never returned: the watcher must
// keep running on a bad edit so a later fix can still reload cleanly.
func (r *Registry) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	for _, dir := range r.dirs {
		if err := w.Add(dir); err != nil {
			return err
		}
	}

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	reloadCh := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.AfterFunc(DebounceInterval, func() {
					select {
					case reloadCh <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(DebounceInterval)
			}
		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			gwlogging.Warnf("registry watcher: %v", werr)
		case <-reloadCh:
			if err := r.Reload(); err != nil {
				gwlogging.Warnf("registry reload failed, keeping previous catalog: %v", err)
			}
		}
	}
}
