package worker

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sitelog/sitelog/pkg/utils/errutil"
	"github.com/sitelog/sitelog/pkg/utils/logging"
)

// DefaultDebounce coalesces the burst of events editors emit for a single save.
const DefaultDebounce = 200 * time.Millisecond

// ReloadFunc re-reads the watched file. An error is logged and the previous
// configuration stays in effect.
type ReloadFunc func(ctx context.Context) error

// SiteConfigWatcher reloads the site config file whenever it changes on disk.
//
// The parent directory is watched rather than the file itself so that editors
// which save by renaming a temporary file over the original keep triggering
// reloads.
type SiteConfigWatcher struct {
	path     string
	reload   ReloadFunc
	debounce time.Duration
	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	doneCh   chan struct{}
}

type WatcherOption func(*SiteConfigWatcher)

func WithDebounce(d time.Duration) WatcherOption {
	return func(w *SiteConfigWatcher) {
		w.debounce = d
	}
}

// NewSiteConfigWatcher creates a watcher for path. Start must be called to begin watching.
func NewSiteConfigWatcher(path string, reload ReloadFunc, opts ...WatcherOption) *SiteConfigWatcher {
	w := &SiteConfigWatcher{
		path:     filepath.Clean(path),
		reload:   reload,
		debounce: DefaultDebounce,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start registers the watch and runs the event loop in the background.
func (w *SiteConfigWatcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return goerr.Wrap(err, "failed to create file watcher")
	}

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return goerr.Wrap(err, "failed to watch site config directory", goerr.V("dir", dir))
	}
	w.watcher = watcher

	logging.Default().Info("Site config watcher starting", "path", w.path)
	go w.run(ctx)
	return nil
}

// Stop signals the watcher to stop and waits for the loop to exit
func (w *SiteConfigWatcher) Stop() {
	logging.Default().Info("Site config watcher stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Site config watcher stopped")
}

// Run starts the watcher and blocks until ctx is cancelled.
func (w *SiteConfigWatcher) Run(ctx context.Context) error {
	if err := w.Start(ctx); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
	case <-w.doneCh:
	}
	w.Stop()
	return nil
}

func (w *SiteConfigWatcher) run(ctx context.Context) {
	defer close(w.doneCh)
	defer func() {
		if err := w.watcher.Close(); err != nil {
			logging.Default().Warn("failed to close file watcher", "error", err.Error())
		}
	}()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
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
			if err := w.reload(ctx); err != nil {
				_ = errutil.Handle(ctx, err, "failed to reload site config, keeping previous values")
				continue
			}
			logging.Default().Info("Site config reloaded", "path", w.path)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Default().Error("file watcher error", "error", err.Error())

		case <-w.stopCh:
			return

		case <-ctx.Done():
			return
		}
	}
}

func (w *SiteConfigWatcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}
