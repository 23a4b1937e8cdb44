// ABOUTME: Watches the modules/ directory and re-syncs derived files on change
// ABOUTME: fsnotify events are debounced so bursts of writes trigger one sync

package watch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/monoforge/monoforge/internal/log"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher re-runs a sync function whenever the watched directory changes.
type Watcher struct {
	dir      string
	debounce time.Duration
	onSync   func() error
	fw       *fsnotify.Watcher
}

// New creates a watcher over dir. onSync runs after each debounced burst of
// events. A non-positive debounce selects the default window.
func New(dir string, debounce time.Duration, onSync func() error) (*Watcher, error) {
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	return &Watcher{dir: dir, debounce: debounce, onSync: onSync, fw: fw}, nil
}

// Run watches until ctx is cancelled. A failing sync stops the watcher and
// returns the sync error; cancellation returns nil.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fw.Close()

	if err := w.fw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	log.Info("watching %s", w.dir)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		timer := time.NewTimer(w.debounce)
		if !timer.Stop() {
			<-timer.C
		}
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case ev, ok := <-w.fw.Events:
				if !ok {
					return nil
				}
				log.Debug("fs event: %s", ev)
				timer.Reset(w.debounce)
			case <-timer.C:
				if err := w.onSync(); err != nil {
					return fmt.Errorf("sync: %w", err)
				}
			}
		}
	})

	g.Go(func() error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher: %w", err)
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
