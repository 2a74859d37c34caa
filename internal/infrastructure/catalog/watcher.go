package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kirillkom/legal-intake/internal/core/domain"
)

const defaultDebounce = 200 * time.Millisecond

// Watcher reloads a YAML catalog file whenever it changes on disk and hands
// the parsed templates to onReload. Parse failures keep the previous catalog.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onReload func([]domain.Template)
	debounce time.Duration

	started  atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewWatcher(path string, onReload func([]domain.Template)) (*Watcher, error) {
	if onReload == nil {
		return nil, fmt.Errorf("catalog watcher: reload callback is nil")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fs watcher: %w", err)
	}
	// Watch the directory: editors often replace the file instead of writing it.
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch catalog dir: %w", err)
	}
	return &Watcher{
		path:     filepath.Clean(path),
		watcher:  w,
		onReload: onReload,
		debounce: defaultDebounce,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

func (w *Watcher) Start(ctx context.Context) {
	if w.started.CompareAndSwap(false, true) {
		go w.run(ctx)
	}
}

func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
		_ = w.watcher.Close()
	})
	if w.started.Load() {
		<-w.done
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("catalog_watch_error", "path", w.path, "error", err)
		}
	}
}

func (w *Watcher) reload() {
	templates, err := LoadFile(w.path)
	if err != nil {
		slog.Warn("catalog_reload_failed", "path", w.path, "error", err)
		return
	}
	w.onReload(templates)
	slog.Info("catalog_reloaded", "path", w.path, "templates", len(templates))
}
