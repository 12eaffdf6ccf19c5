// Package watch re-runs a callback when watched files change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce coalesces bursts of editor writes into one trigger.
const DefaultDebounce = 300 * time.Millisecond

// Func is invoked for each trigger. Its context is cancelled when a newer
// trigger arrives or Watch returns.
type Func func(ctx context.Context, changed string)

type settings struct {
	logger     *zap.Logger
	initialRun bool
}

// Option configures Watch.
type Option func(*settings)

// WithLogger sets the logger for watcher errors and triggers.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithInitialRun invokes fn once with an empty path before any change.
func WithInitialRun() Option {
	return func(s *settings) {
		s.initialRun = true
	}
}

// Watch blocks until ctx ends, calling fn after changes to any of paths
// settle for debounce. Parent directories are watched so that editors which
// replace files on save are still seen. Watch waits for the last fn call to
// return before it returns.
func Watch(ctx context.Context, paths []string, debounce time.Duration, fn Func, opts ...Option) error {
	if fn == nil {
		return errors.New("watch: callback is required")
	}
	if len(paths) == 0 {
		return errors.New("watch: no paths to watch")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	cfg := settings{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	targets := make(map[string]struct{}, len(paths))
	dirs := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("watch: resolve %s: %w", path, err)
		}
		targets[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer watcher.Close()
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch: add %s: %w", dir, err)
		}
		cfg.logger.Debug("watching directory", zap.String("dir", dir))
	}

	var (
		wg        sync.WaitGroup
		runCancel context.CancelFunc
	)
	trigger := func(changed string) {
		if runCancel != nil {
			runCancel()
		}
		runCtx, cancel := context.WithCancel(ctx)
		runCancel = cancel
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(runCtx, changed)
		}()
	}
	defer func() {
		if runCancel != nil {
			runCancel()
		}
		wg.Wait()
	}()

	if cfg.initialRun {
		trigger("")
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()
	var pending string

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event, targets) {
				continue
			}
			pending = filepath.Clean(event.Name)
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cfg.logger.Warn("watch error", zap.Error(err))
		case <-timer.C:
			cfg.logger.Info("file changed", zap.String("path", pending))
			trigger(pending)
		}
	}
}

func relevant(event fsnotify.Event, targets map[string]struct{}) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	_, ok := targets[abs]
	return ok
}
