package lock

import (
	"fmt"

	"github.com/flist-dev/flist/internal/errors"
	"github.com/flist-dev/flist/internal/logging"
)

// RequestKind identifies the operation carried by a lock request.
type RequestKind int

const (
	// AcquireRequest asks for ownership of the project lock.
	AcquireRequest RequestKind = iota
	// ReleaseRequest gives up ownership.
	ReleaseRequest
	// HeartbeatRequest refreshes a held lock's heartbeat timestamp.
	HeartbeatRequest
)

// String returns the request kind's name.
func (k RequestKind) String() string {
	switch k {
	case AcquireRequest:
		return "acquire"
	case ReleaseRequest:
		return "release"
	case HeartbeatRequest:
		return "heartbeat"
	default:
		return "unknown"
	}
}

// Request is a transient arbitration message: the requester's record and
// the kind of operation. It exists only for the duration of one exchange
// and is never persisted.
type Request struct {
	Kind   RequestKind
	Record *Record
}

// Arbiter is the single synchronization point that turns concurrent lock
// requests into a linear, conflict-free sequence of store operations. It
// does not hold the lock itself; it mediates access to the store's atomic
// primitives. Every request is answered through one of those primitives,
// never through a check-then-act pair split across separate calls.
type Arbiter struct {
	store    Store
	detector *Detector
	logger   *logging.Logger
}

// NewArbiter creates an Arbiter over the given store and detector.
func NewArbiter(store Store, detector *Detector, logger *logging.Logger) *Arbiter {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Arbiter{
		store:    store,
		detector: detector,
		logger:   logger.WithComponent("arbiter"),
	}
}

// Submit answers a single lock request. Store-level errors never escape
// untranslated: callers see the client-level taxonomy plus the retryable
// ErrAlreadyLocked for contended acquires.
//
// For AcquireRequest the returned record is the one now stored (the
// request's own record on success). For HeartbeatRequest it is the
// refreshed record the holder must use for subsequent requests.
func (a *Arbiter) Submit(req Request) (*Record, error) {
	if req.Record == nil {
		return nil, errors.ErrInvalidRequest
	}

	switch req.Kind {
	case AcquireRequest:
		return a.acquire(req.Record)
	case ReleaseRequest:
		return nil, a.release(req.Record)
	case HeartbeatRequest:
		return a.heartbeat(req.Record)
	default:
		return nil, fmt.Errorf("%w: unknown request kind %d", errors.ErrInvalidRequest, req.Kind)
	}
}

// acquire tries exclusive creation first; on contention it consults the
// staleness detector and attempts reclamation before reporting failure.
func (a *Arbiter) acquire(claim *Record) (*Record, error) {
	err := a.store.TryCreate(claim)
	if err == nil {
		a.logger.Info("lock acquired",
			"owner_id", claim.OwnerID,
			"pid", claim.PID,
		)
		return claim, nil
	}
	if !errors.Is(err, errors.ErrAlreadyLocked) {
		return nil, err
	}

	current, readErr := a.store.Read()
	if readErr != nil {
		return nil, readErr
	}
	if current == nil {
		// The holder released between our create and read; the caller's
		// next retry will win.
		return nil, errors.ErrAlreadyLocked
	}

	if a.detector.Stale(current) {
		if reclaimErr := a.detector.Reclaim(a.store, current, claim); reclaimErr == nil {
			a.logger.Info("lock acquired by reclamation",
				"owner_id", claim.OwnerID,
				"pid", claim.PID,
			)
			return claim, nil
		} else if !errors.Is(reclaimErr, errors.ErrConflict) {
			return nil, reclaimErr
		}
		// Lost the reclamation race; treat as still locked and let the
		// caller retry from the top.
		return nil, errors.ErrAlreadyLocked
	}

	return nil, errors.NewLockedError(errors.ErrAlreadyLocked).
		WithHolder(current.PID, current.Hostname, current.Addr, current.HeartbeatAt)
}

// release deletes the record the caller believes it owns. A conflict means
// the lock was already reclaimed as stale; that is a non-fatal release, but
// the caller is warned its exclusivity may have been violated.
func (a *Arbiter) release(held *Record) error {
	err := a.store.Delete(held)
	if err == nil {
		a.logger.Info("lock released", "owner_id", held.OwnerID)
		return nil
	}
	if errors.Is(err, errors.ErrConflict) {
		a.logger.Warn("release found lock already reclaimed",
			"owner_id", held.OwnerID,
		)
		return fmt.Errorf("release: %w", errors.ErrStolen)
	}
	return err
}

// heartbeat refreshes a held record. A conflict means the lock was stolen;
// the holder must abort its in-progress mutation.
func (a *Arbiter) heartbeat(held *Record) (*Record, error) {
	refreshed := held.Refreshed()
	err := a.store.Replace(held, refreshed)
	if err == nil {
		return refreshed, nil
	}
	if errors.Is(err, errors.ErrConflict) {
		a.logger.Warn("heartbeat lost the lock",
			"owner_id", held.OwnerID,
		)
		return nil, fmt.Errorf("heartbeat: %w", errors.ErrStolen)
	}
	return nil, err
}
