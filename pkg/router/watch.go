package router

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"

	"github.com/icdev-ai/llmcore/pkg/config"
)

// WatchConfig reloads the routing tables when the configuration file
// changes on disk. It blocks until the context is cancelled. Editors
// typically write via rename, so the parent directory is watched and
// events are filtered to the target path.
func (r *Router) WatchConfig(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	slog.Info("watching configuration file", "path", path)

	// Debounce timer; rapid event bursts collapse into one reload.
	var pending *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(250*time.Millisecond, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			cfg, err := config.LoadConfig(path)
			if err != nil {
				slog.Error("configuration reload failed", "path", path, "error", err)
				continue
			}
			r.Reload(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			slog.Error("configuration watcher error", "error", err)
		}
	}
}

// StartAvailabilityRefresh re-probes every routed model on a cron
// schedule (e.g., "*/30 * * * *"). It returns a stop function. An
// empty schedule is a no-op.
func (r *Router) StartAvailabilityRefresh(ctx context.Context, schedule string) (func(), error) {
	if schedule == "" {
		return func() {}, nil
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		slog.Debug("scheduled availability refresh starting")
		r.RefreshAvailability(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule availability refresh: %w", err)
	}

	c.Start()
	slog.Info("availability refresh scheduled", "schedule", schedule)

	go func() {
		<-ctx.Done()
		c.Stop()
	}()

	return func() { c.Stop() }, nil
}
