package identity

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDelay = 100 * time.Millisecond

// LoadFile loads the policies defined in the YAML file at path.
func (s *PolicySet) LoadFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // Path is set by the administrator.
	if err != nil {
		return fmt.Errorf("failed reading policies file: %w", err)
	}

	return s.Load(ctx, data)
}

// Watch loads the policies file at path, and reloads it whenever it changes
// until ctx is done. Reload failures are logged, and the previous policies
// remain in effect.
func (s *PolicySet) Watch(ctx context.Context, path string, logger *slog.Logger) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed resolving policies file path: %w", err)
	}

	if err = s.LoadFile(ctx, absPath); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed creating policies file watcher: %w", err)
	}
	// Editors often replace the file, so watch its directory instead.
	if err = watcher.Add(filepath.Dir(absPath)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed watching policies file: %w", err)
	}

	logger = logger.With("component", "policies", "path", absPath)
	go func() {
		defer watcher.Close()
		watchLoop(ctx, watcher.Events, watcher.Errors, absPath, func() {
			if err := s.LoadFile(ctx, absPath); err != nil {
				logger.Error("failed reloading policies", "error", err)
				return
			}
			logger.Info("policies reloaded", "policies", s.Names())
		}, logger)
	}()

	return nil
}

// watchLoop calls reload once writes to path settle for reloadDelay. Reloads
// run on the loop goroutine, so they never overlap.
func watchLoop(
	ctx context.Context, events <-chan fsnotify.Event, errs <-chan error,
	path string, reload func(), logger *slog.Logger,
) {
	timer := time.NewTimer(reloadDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path ||
				!event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			timer.Reset(reloadDelay)
		case <-timer.C:
			reload()
		case err, ok := <-errs:
			if !ok {
				return
			}
			logger.Warn("policies file watcher error", "error", err)
		}
	}
}
