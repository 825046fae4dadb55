package prompt

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/sandevgo/searchbot/pkg/log"
)

// Watcher reloads a Store whenever its file changes on disk.
type Watcher struct {
	store    *Store
	watcher  *fsnotify.Watcher
	done     chan struct{}
	once     sync.Once
	onReload func()
}

func NewWatcher(store *Store) *Watcher {
	return &Watcher{
		store: store,
		done:  make(chan struct{}),
	}
}

// Start blocks until ctx is cancelled or Shutdown is called.
func (w *Watcher) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	w.watcher = watcher
	defer watcher.Close()

	// editors replace files on save, so watch the directory
	dir := filepath.Dir(w.store.Path())
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	logger.Info().Str("path", w.store.Path()).Msg("watching prompts")

	name := filepath.Clean(w.store.Path())
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.done:
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != name {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if err := w.store.Reload(); err != nil {
				logger.Error().Err(err).Msg("failed to reload prompts")
				continue
			}
			logger.Info().Msg("prompts reloaded")
			if w.onReload != nil {
				w.onReload()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error().Err(err).Msg("prompt watcher error")
		}
	}
}

func (w *Watcher) Shutdown(ctx context.Context) error {
	w.once.Do(func() { close(w.done) })
	return nil
}
