package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"blogbuild/pkg/logger"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const watchDebounce = 300 * time.Millisecond

// watchTarget is one watched directory: either all of it or only some of
// its files.
type watchTarget struct {
	all   bool
	files map[string]bool
}

func (t *watchTarget) covers(name string) bool {
	return t.all || t.files[filepath.Base(name)]
}

// Watch rebuilds through build whenever something in paths changes, until ctx
// is cancelled. A path may be a directory or a single file; for a file its
// directory is watched and other entries there are ignored. Bursts of events
// within the debounce window trigger one build. Missing paths are skipped.
func Watch(ctx context.Context, paths []string, build func(context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	targets := make(map[string]*watchTarget)
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			logger.Log.Warn("not watching path", zap.String("path", p), zap.Error(err))
			continue
		}
		dir, file := filepath.Clean(p), ""
		if !info.IsDir() {
			dir, file = filepath.Dir(dir), filepath.Base(dir)
		}
		t, ok := targets[dir]
		if !ok {
			if err := watcher.Add(dir); err != nil {
				logger.Log.Warn("not watching directory", zap.String("dir", dir), zap.Error(err))
				continue
			}
			t = &watchTarget{files: make(map[string]bool)}
			targets[dir] = t
		}
		if file == "" {
			t.all = true
		} else {
			t.files[file] = true
		}
		logger.Log.Info("watching for changes", zap.String("path", p))
	}
	if len(targets) == 0 {
		return errors.New("nothing to watch")
	}

	var (
		timer   *time.Timer
		trigger <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			t := targets[filepath.Dir(event.Name)]
			if t == nil || !t.covers(event.Name) || !relevant(event) {
				continue
			}
			logger.Log.Debug("change detected", zap.String("file", event.Name), zap.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			trigger = timer.C

		case <-trigger:
			trigger = nil
			if err := build(ctx); err != nil && !errors.Is(err, ErrNoDrafts) {
				logger.Log.Error("rebuild failed", zap.Error(err))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Log.Error("watcher error", zap.Error(err))
		}
	}
}

// relevant filters out chmod-only events and editor swap files.
func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	base := filepath.Base(event.Name)
	if base == "" || base[0] == '.' || base[len(base)-1] == '~' {
		return false
	}
	switch filepath.Ext(base) {
	case ".swp", ".swx", ".tmp":
		return false
	}
	return true
}
