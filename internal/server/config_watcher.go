package server

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/textkit/internal/config"
)

// ConfigWatcher monitors the configuration file and triggers reloads when it
// changes. Editors often replace files on save, so the parent directory is
// watched and events are filtered by path.
type ConfigWatcher struct {
	configPath   string
	apply        func(*config.Config)
	watcher      *fsnotify.Watcher
	stopChan     chan struct{}
	debounceTime time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewConfigWatcher creates a watcher that calls apply with each successfully
// reloaded configuration.
func NewConfigWatcher(configPath string, apply func(*config.Config)) (*ConfigWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	return &ConfigWatcher{
		configPath:   absPath,
		apply:        apply,
		watcher:      watcher,
		stopChan:     make(chan struct{}),
		debounceTime: 2 * time.Second, // Debounce rapid file changes
	}, nil
}

// Start begins monitoring in a background goroutine.
func (w *ConfigWatcher) Start(ctx context.Context) {
	go w.loop(ctx)
	slog.Info("Watching configuration file", "path", w.configPath)
}

// Stop ends monitoring, cancels any pending debounced reload, and releases
// the watcher.
func (w *ConfigWatcher) Stop() {
	close(w.stopChan)
	w.mu.Lock()
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()
	_ = w.watcher.Close()
}

func (w *ConfigWatcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.configPath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.scheduleReload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("Config watcher error", "error", err)
		}
	}
}

// scheduleReload arms (or re-arms) the debounce timer.
func (w *ConfigWatcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounceTime, w.reload)
}

func (w *ConfigWatcher) reload() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	cfg, err := config.Load(w.configPath)
	if err != nil {
		slog.Error("Config reload failed, keeping previous configuration",
			"path", w.configPath,
			"error", err)
		return
	}
	w.apply(cfg)
}
