package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/platformbuilds/acdice-core/pkg/logger"
)

// ConfigWatcher reloads settings when the env file changes and publishes the
// new instance through a Store.
type ConfigWatcher struct {
	envFile  string
	store    *Store
	logger   logger.Logger
	opts     []LoadOption
	mu       sync.RWMutex
	apply    func(Settings) error
	watchers []func(Settings)
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewConfigWatcher(envFile string, store *Store, log logger.Logger, opts ...LoadOption) *ConfigWatcher {
	if log == nil {
		log = logger.NewNop()
	}
	return &ConfigWatcher{
		envFile:  envFile,
		store:    store,
		logger:   log,
		opts:     opts,
		watchers: make([]func(Settings), 0),
		stopCh:   make(chan struct{}),
	}
}

// Start begins watching for env file changes. It blocks until ctx is done
// or Stop is called. The file's directory is watched so that files replaced
// by rename, or created after startup, are picked up.
func (w *ConfigWatcher) Start(ctx context.Context) error {
	path, err := filepath.Abs(w.envFile)
	if err != nil {
		return fmt.Errorf("failed to resolve env file path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch env file directory: %w", err)
	}

	w.logger.Info("Configuration watcher started", "envFile", path)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.logger.Info("Env file changed, reloading settings", "file", event.Name)

				settings, err := w.reload(path)
				if err != nil {
					w.logger.Error("Failed to reload settings, keeping previous", "error", err)
					continue
				}

				w.notifyWatchers(settings)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Configuration watcher error", "error", err)

		case <-ctx.Done():
			w.logger.Info("Configuration watcher stopping")
			return nil

		case <-w.stopCh:
			w.logger.Info("Configuration watcher stopped")
			return nil
		}
	}
}

// RegisterWatcher adds a callback for settings changes. Callbacks run in
// registration order on the watcher goroutine.
func (w *ConfigWatcher) RegisterWatcher(callback func(Settings)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.watchers = append(w.watchers, callback)
}

// SetApplier installs fn to run on every reloaded Settings before it is
// published to the store. An error from fn rejects the reload and the
// previous settings stay in place.
func (w *ConfigWatcher) SetApplier(fn func(Settings) error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.apply = fn
}

// Stop stops the configuration watcher
func (w *ConfigWatcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

func (w *ConfigWatcher) reload(path string) (Settings, error) {
	opts := append(append([]LoadOption{}, w.opts...), WithEnvFile(path))

	settings, err := Load(opts...)
	if err == nil {
		w.mu.RLock()
		apply := w.apply
		w.mu.RUnlock()
		if apply != nil {
			err = apply(settings)
		}
	}
	RecordConfigReload(err == nil)
	if err != nil {
		return Settings{}, err
	}

	w.store.Replace(settings)
	w.logger.Info("Settings reloaded successfully", "logLevel", settings.LogLevel)
	return settings, nil
}

func (w *ConfigWatcher) notifyWatchers(settings Settings) {
	w.mu.RLock()
	watchers := make([]func(Settings), len(w.watchers))
	copy(watchers, w.watchers)
	w.mu.RUnlock()

	for _, watcher := range watchers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					w.logger.Error("Configuration watcher callback panicked", "panic", r)
				}
			}()
			watcher(settings)
		}()
	}
}
