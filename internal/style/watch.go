package style

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a registry's file profiles when the styles directory
// changes.
type Watcher struct {
	dir     string
	reg     *Registry
	log     *slog.Logger
	watcher *fsnotify.Watcher

	// Debounce is how long the directory must stay quiet before a reload.
	Debounce time.Duration

	wg sync.WaitGroup
}

// NewWatcher creates a watcher over dir. It does not watch until Start.
func NewWatcher(dir string, reg *Registry, log *slog.Logger) (*Watcher, error) {
	if log == nil {
		log = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create style watcher: %w", err)
	}
	return &Watcher{
		dir:      dir,
		reg:      reg,
		log:      log,
		watcher:  fw,
		Debounce: 500 * time.Millisecond,
	}, nil
}

// Start begins watching. The watch loop ends when ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch styles dir %s: %w", w.dir, err)
	}
	w.log.Info("watching style profiles", "dir", w.dir)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.loop(ctx)
	}()
	return nil
}

// Close stops the watch loop and releases the underlying watcher.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

// Reload re-reads the directory and replaces the registry's file profiles.
// A failed reload leaves the previous profiles registered.
func (w *Watcher) Reload() error {
	profiles, err := LoadDir(w.dir)
	if err != nil {
		return err
	}
	return w.reg.Replace(profiles...)
}

func (w *Watcher) loop(ctx context.Context) {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isStyleFile(ev.Name) || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) {
				continue
			}
			w.log.Debug("style file changed", "file", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.Debounce)
			} else {
				timer.Reset(w.Debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if err := w.Reload(); err != nil {
				w.log.Error("style reload failed", "dir", w.dir, "error", err)
				continue
			}
			w.log.Info("reloaded style profiles", "styles", w.reg.Names())

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("style watcher error", "error", err)
		}
	}
}

func isStyleFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
