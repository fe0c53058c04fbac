package project

import (
	"context"
	"sync"

	"github.com/flist-dev/flist/internal/lock"
	"github.com/flist-dev/flist/internal/logging"
)

// Session is one process's exclusive view of a project: it couples the
// loaded entry data with the lock handle guarding it. Every mutation a
// session performs happens between a successful Acquire and the matching
// Release.
type Session struct {
	Project *Project

	client *lock.Client
	handle *lock.Handle
	logger *logging.Logger

	closeOnce sync.Once
	closeErr  error
}

// Open starts a session: it validates and loads the project config,
// acquires the project lock within the configured timeout, and loads the
// entry lists. On any failure no lock is left behind.
func Open(ctx context.Context, root string, lockCfg lock.Config, logger *logging.Logger) (*Session, error) {
	if logger == nil {
		logger = logging.NopLogger()
	}

	cfg, err := LoadConfig(root)
	if err != nil {
		return nil, err
	}

	client, err := lock.NewClient(root, lockCfg, logger)
	if err != nil {
		return nil, err
	}

	handle, err := client.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	proj, err := Load(root, cfg, logger)
	if err != nil {
		_ = handle.Release()
		return nil, err
	}

	return &Session{
		Project: proj,
		client:  client,
		handle:  handle,
		logger:  logger.WithProject(root).WithComponent("session"),
	}, nil
}

// Handle returns the session's lock handle.
func (s *Session) Handle() *lock.Handle {
	return s.handle
}

// Holder reports the lock record currently stored for the project.
func (s *Session) Holder() (*lock.Record, error) {
	return s.client.Holder()
}

// Keep guards a long-lived session: it heartbeats the lock at the
// configured interval and watches the record file for out-of-band changes,
// so theft is noticed between heartbeats too. onStolen is invoked at most
// once; after it fires the session must abort in-flight mutation. Keep
// returns when ctx is canceled or the lock is lost.
func (s *Session) Keep(ctx context.Context, onStolen func()) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var once sync.Once
	stolen := func() {
		if s.handle.Released() {
			// A record removed by our own release is not theft.
			cancel()
			return
		}
		once.Do(func() {
			s.logger.Warn("session lost its lock")
			if onStolen != nil {
				onStolen()
			}
		})
		cancel()
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.handle.Keep(ctx, stolen)
		cancel()
	}()
	go func() {
		defer wg.Done()
		watcher := lock.NewWatcher(s.Project.Root, s.client.Store(), s.logger)
		if err := watcher.Run(ctx, s.handle.OwnerID(), stolen); err != nil {
			// Watcher failure degrades theft detection to heartbeat
			// latency only; the session stays correct.
			s.logger.Warn("lock watcher unavailable", "error", err.Error())
		}
	}()
	wg.Wait()
}

// Save persists the project's entry lists. The session must still hold a
// valid handle; a stolen lock means the write may clobber the new owner,
// so Save refuses it.
func (s *Session) Save() error {
	if s.handle.Stolen() {
		return s.handle.Heartbeat() // returns ErrStolen with context
	}
	return s.Project.Save()
}

// Close releases the lock. Safe to call multiple times; only the first
// call does the release.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.handle.Release()
	})
	return s.closeErr
}
