package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reloads the config file whenever it changes and swaps the result
// into store. A reload that fails keeps the previous config. Watch blocks
// until ctx is done.
//
// The parent directory is watched rather than the file itself so that
// editors which replace the file on save are still picked up.
func Watch(ctx context.Context, loader Loader, store *Store, logger *zap.Logger) error {
	if loader.Path == "" {
		return fmt.Errorf("watch config: no config file set")
	}

	path, err := filepath.Abs(loader.Path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	logger.Info("watching config file", zap.String("path", path))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := loader.Load()
			if err != nil {
				logger.Warn("config reload failed, keeping previous config", zap.Error(err))
				continue
			}
			store.Set(cfg)

			logger.Info("config reloaded",
				zap.String("upstream", cfg.Upstream.URL),
				zap.Bool("api_key_set", cfg.Upstream.APIKey != ""),
			)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher error", zap.Error(err))
		}
	}
}
