// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 200 * time.Millisecond

// ReloadFunc receives the reloaded config, or the error that kept it from loading.
type ReloadFunc func(cfg *Config, err error)

// =============================================================================
// FSNOTIFY WATCHER
// =============================================================================

// Watcher reloads one config file when it changes on disk.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onReload ReloadFunc

	mu      sync.Mutex
	timer   *time.Timer
	ctx     context.Context
	cancel  context.CancelFunc
	stopped sync.WaitGroup
}

// Watch starts watching path and calls onReload after each settled change.
// The parent directory is watched so atomic rename-over saves are seen.
func Watch(path string, onReload ReloadFunc) (*Watcher, error) {
	return WatchWithDebounce(path, DefaultDebounce, onReload)
}

// WatchWithDebounce is Watch with an explicit debounce window.
func WatchWithDebounce(path string, debounce time.Duration, onReload ReloadFunc) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		path:     abs,
		watcher:  fw,
		debounce: debounce,
		onReload: onReload,
		ctx:      ctx,
		cancel:   cancel,
	}

	w.stopped.Add(1)
	go w.processEvents()

	log.Printf("CONFIG_WATCH | path=%s", abs)
	return w, nil
}

// Path returns the watched file.
func (w *Watcher) Path() string { return w.path }

// Close stops watching. Pending reloads are dropped.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.watcher.Close()
	w.stopped.Wait()

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return err
}

func (w *Watcher) processEvents() {
	defer w.stopped.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("CONFIG_WATCH_PANIC | path=%s err=%v", w.path, r)
		}
	}()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.schedule()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("WARNING: CONFIG_WATCH | path=%s err=%v", w.path, err)
		}
	}
}

// schedule restarts the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	if w.ctx.Err() != nil {
		return
	}

	cfg, err := LoadFromPath(w.path)
	if err != nil {
		log.Printf("WARNING: CONFIG_RELOAD | path=%s err=%v", w.path, err)
	} else {
		log.Printf("CONFIG_RELOAD | path=%s url=%s", w.path, cfg.Backend.URL)
	}
	if w.onReload != nil {
		w.onReload(cfg, err)
	}
}
