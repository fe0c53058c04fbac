package lock

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/flist-dev/flist/internal/logging"
)

// Watcher notifies a lock holder promptly when its record is deleted or
// rewritten by another process, instead of waiting for the next heartbeat
// to discover the theft. It is purely advisory: the heartbeat CAS remains
// the authoritative theft detector.
type Watcher struct {
	dir    string
	store  Store
	logger *logging.Logger
}

// NewWatcher creates a Watcher over the project directory's lock record.
func NewWatcher(dir string, store Store, logger *logging.Logger) *Watcher {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Watcher{
		dir:    dir,
		store:  store,
		logger: logger.WithComponent("watcher"),
	}
}

// Run watches the lock record until ctx is canceled or the record no longer
// belongs to ownerID, in which case onStolen is invoked once and Run
// returns. The watch is on the project directory rather than the record
// file itself, since atomic replacement renames a new file into place.
func (w *Watcher) Run(ctx context.Context, ownerID string, onStolen func()) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return err
	}

	target := filepath.Join(w.dir, RecordFileName)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Name != target {
				continue
			}
			if !event.Has(fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename) {
				continue
			}
			rec, err := w.store.Read()
			if err != nil {
				w.logger.Warn("watcher failed to read lock record", "error", err.Error())
				continue
			}
			if rec.OwnedBy(ownerID) {
				// Our own heartbeat or announce.
				continue
			}
			w.logger.Warn("lock record changed owner underneath holder",
				"owner_id", ownerID,
			)
			if onStolen != nil {
				onStolen()
			}
			return nil
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("lock watcher error", "error", err.Error())
		}
	}
}
