package index

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/cardex/internal/store"
)

// EventCallback is called after a watcher-driven index change.
type EventCallback func()

// Watch starts an fsnotify watcher on the directory holding the record blob
// and resyncs the index whenever the blob changes on disk (our own atomic
// writes included, plus edits from other processes). It runs until ctx is
// cancelled and calls cb (if non-nil) after each resync that followed an
// actual content change.
//
// Events are debounced: the blob is written by rename, which can surface as
// several events in quick succession.
func Watch(ctx context.Context, db *DB, st store.Provider, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(st.Path())
	base := filepath.Base(st.Path())
	if err := w.Add(dir); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("file", st.Path()))

	lastSeen := st.Checksum()

	var debounce *time.Timer
	var debounceCh <-chan time.Time
	schedule := func() {
		if debounce == nil {
			debounce = time.NewTimer(200 * time.Millisecond)
			debounceCh = debounce.C
		} else {
			debounce.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-debounceCh:
			cs := st.Checksum()
			if cs == lastSeen {
				continue
			}
			lastSeen = cs
			if err := Sync(db, st, logger); err != nil {
				logger.Warn("watcher: sync failed", slog.String("error", err.Error()))
				continue
			}
			logger.Debug("watcher: resynced")
			if cb != nil {
				cb()
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
