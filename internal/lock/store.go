package lock

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/flist-dev/flist/internal/errors"
	"github.com/flist-dev/flist/internal/logging"
)

// Store is the durable representation of the current lock record for one
// project. All three mutating primitives are atomic with respect to
// concurrent callers from different processes; callers must never combine
// them into a check-then-act pair split across calls.
type Store interface {
	// Read returns the current record, or nil if the project is unlocked.
	// It has no side effects.
	Read() (*Record, error)

	// TryCreate atomically creates the record only if none exists.
	// Returns errors.ErrAlreadyLocked if a concurrent creation won the race.
	TryCreate(rec *Record) error

	// Replace swaps the stored record for updated only if it still matches
	// expected. Returns errors.ErrConflict otherwise. Used for heartbeats
	// and for staleness reclamation.
	Replace(expected, updated *Record) error

	// Delete removes the record only if it still matches expected.
	// Returns errors.ErrConflict otherwise.
	Delete(expected *Record) error
}

// FileStore implements Store on the project directory's filesystem.
//
// Exclusive creation rides on O_CREATE|O_EXCL, which the OS arbitrates
// across processes. The compare-and-swap primitives wrap their
// read-compare-write sequence in an flock(2) guard on a sidecar file, and
// replacements land via write-to-temp-then-rename so readers never observe
// a partially written record.
type FileStore struct {
	dir    string
	path   string
	guard  *guard
	logger *logging.Logger

	// mu serializes store operations within this process; the flock guard
	// handles exclusion across processes but a single guard's file handle
	// is not safe for concurrent use.
	mu sync.Mutex
}

// NewFileStore creates a FileStore for the given project directory.
func NewFileStore(dir string, logger *logging.Logger) *FileStore {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &FileStore{
		dir:    dir,
		path:   filepath.Join(dir, RecordFileName),
		guard:  newGuard(dir),
		logger: logger.WithComponent("store"),
	}
}

// Path returns the location of the record file.
func (s *FileStore) Path() string {
	return s.path
}

// Read returns the current record, or nil if the project is unlocked.
func (s *FileStore) Read() (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard.lock(); err != nil {
		return nil, err
	}
	defer func() { _ = s.guard.unlock() }()

	return s.readLocked()
}

// readLocked reads the record file. Callers must hold the guard.
func (s *FileStore) readLocked() (*Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read lock record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse lock record: %w", err)
	}
	return &rec, nil
}

// TryCreate atomically creates the record only if none exists.
func (s *FileStore) TryCreate(rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard.lock(); err != nil {
		return err
	}
	defer func() { _ = s.guard.unlock() }()

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal lock record: %w", err)
	}

	// O_EXCL is the authoritative cross-process primitive here; the guard
	// only keeps readers from observing a half-written file.
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return errors.ErrAlreadyLocked
		}
		return fmt.Errorf("create lock record: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(s.path)
		return fmt.Errorf("write lock record: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(s.path)
		return fmt.Errorf("close lock record: %w", err)
	}

	s.logger.Debug("lock record created",
		"owner_id", rec.OwnerID,
		"pid", rec.PID,
	)
	return nil
}

// Replace swaps the stored record for updated only if it still matches
// expected.
func (s *FileStore) Replace(expected, updated *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard.lock(); err != nil {
		return err
	}
	defer func() { _ = s.guard.unlock() }()

	current, err := s.readLocked()
	if err != nil {
		return err
	}
	if !current.Matches(expected) {
		return errors.ErrConflict
	}

	if err := s.writeLocked(updated); err != nil {
		return err
	}

	s.logger.Debug("lock record replaced",
		"owner_id", updated.OwnerID,
		"previous_owner", expected.OwnerID,
	)
	return nil
}

// Delete removes the record only if it still matches expected.
func (s *FileStore) Delete(expected *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard.lock(); err != nil {
		return err
	}
	defer func() { _ = s.guard.unlock() }()

	current, err := s.readLocked()
	if err != nil {
		return err
	}
	if !current.Matches(expected) {
		return errors.ErrConflict
	}

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove lock record: %w", err)
	}

	s.logger.Debug("lock record deleted", "owner_id", expected.OwnerID)
	return nil
}

// writeLocked atomically replaces the record file contents via a temp file
// and rename. Callers must hold the guard.
func (s *FileStore) writeLocked(rec *Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal lock record: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, RecordFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp record: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp record: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename temp record: %w", err)
	}
	return nil
}
