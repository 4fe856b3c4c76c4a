// ABOUTME: Polling-based file watcher used to hot-reload the mention directory file
// ABOUTME: Compares mtime and size at a fixed interval; stops when its context ends

package config

import (
	"context"
	"os"
	"sync"
	"time"
)

// DefaultWatchInterval is the polling period used when none is set.
const DefaultWatchInterval = 2 * time.Second

type fileStamp struct {
	mod  time.Time
	size int64
}

// Watcher reports which of its files changed between polls.
type Watcher struct {
	paths    []string
	onChange func(changed []string)
	interval time.Duration

	mu     sync.Mutex
	stamps map[string]fileStamp
	done   chan struct{}
}

// NewWatcher creates a watcher that calls onChange with the paths that were
// modified, created or removed.
func NewWatcher(paths []string, onChange func(changed []string)) *Watcher {
	return &Watcher{
		paths:    append([]string(nil), paths...),
		onChange: onChange,
		interval: DefaultWatchInterval,
		stamps:   make(map[string]fileStamp),
	}
}

// SetInterval overrides the polling interval. Call before Start.
func (w *Watcher) SetInterval(d time.Duration) {
	if d > 0 {
		w.interval = d
	}
}

// Start snapshots the files and polls until ctx is done. Calling Start on a
// running watcher is a no-op.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.done != nil {
		w.mu.Unlock()
		return
	}
	w.done = make(chan struct{})
	w.snapshotLocked()
	w.mu.Unlock()

	go w.loop(ctx)
}

// Wait blocks until the polling goroutine has exited.
func (w *Watcher) Wait() {
	w.mu.Lock()
	done := w.done
	w.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Check polls once and reports the changed paths, invoking onChange when
// any changed.
func (w *Watcher) Check() []string {
	w.mu.Lock()
	changed := w.diffLocked()
	if len(changed) > 0 {
		w.snapshotLocked()
	}
	w.mu.Unlock()

	if len(changed) > 0 && w.onChange != nil {
		w.onChange(changed)
	}
	return changed
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Check()
		}
	}
}

func stat(path string) (fileStamp, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}, false
	}
	return fileStamp{mod: info.ModTime(), size: info.Size()}, true
}

// diffLocked compares current stamps with the snapshot. Must hold mu.
func (w *Watcher) diffLocked() []string {
	var changed []string
	for _, path := range w.paths {
		cur, exists := stat(path)
		prev, known := w.stamps[path]
		switch {
		case exists != known:
			changed = append(changed, path)
		case exists && (!cur.mod.Equal(prev.mod) || cur.size != prev.size):
			changed = append(changed, path)
		}
	}
	return changed
}

// snapshotLocked records current stamps. Must hold mu.
func (w *Watcher) snapshotLocked() {
	for _, path := range w.paths {
		if st, ok := stat(path); ok {
			w.stamps[path] = st
		} else {
			delete(w.stamps, path)
		}
	}
}
