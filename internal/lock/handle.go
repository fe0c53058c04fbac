package lock

import (
	"context"
	"sync"
	"time"

	"github.com/flist-dev/flist/internal/errors"
	"github.com/flist-dev/flist/internal/logging"
)

// Handle is the capability a process holds while it owns the project lock.
// It is used to heartbeat, release, publish a listener address, and detect
// theft. A Handle is safe for concurrent use; a background Keep loop and a
// foreground session may share it.
//
// Per-attempt state machine: Idle -> Requesting -> {Held, Timeout,
// InvalidRequest}; from Held: -> {Released, Stolen}. A Handle only exists
// in the Held state and transitions out of it exactly once.
type Handle struct {
	arb    *Arbiter
	cfg    Config
	logger *logging.Logger

	mu       sync.Mutex
	rec      *Record
	released bool
	stolen   bool
}

func newHandle(arb *Arbiter, rec *Record, cfg Config, logger *logging.Logger) *Handle {
	return &Handle{
		arb:    arb,
		cfg:    cfg,
		rec:    rec,
		logger: logger,
	}
}

// Record returns a copy of the handle's current record.
func (h *Handle) Record() Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	return *h.rec
}

// OwnerID returns the handle's immutable owner identity.
func (h *Handle) OwnerID() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rec.OwnerID
}

// Heartbeat refreshes the held lock so other processes do not reclaim it as
// stale during a long operation. Returns errors.ErrStolen if the lock was
// reclaimed underneath; the holder must then abort in-flight mutation.
func (h *Handle) Heartbeat() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.heartbeatLocked()
}

func (h *Handle) heartbeatLocked() error {
	if h.released {
		return errors.ErrReleased
	}
	if h.stolen {
		return errors.ErrStolen
	}

	refreshed, err := h.arb.Submit(Request{Kind: HeartbeatRequest, Record: h.rec})
	if err != nil {
		if errors.Is(err, errors.ErrStolen) {
			h.stolen = true
		}
		return err
	}
	h.rec = refreshed
	return nil
}

// Announce publishes a listener address in the lock record so other
// processes can forward requests to this holder. The address rides on the
// next heartbeat; CAS matching is by owner and heartbeat instant, so the
// address change itself cannot conflict.
func (h *Handle) Announce(addr string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return errors.ErrReleased
	}
	h.rec = h.rec.WithAddr(addr)
	return h.heartbeatLocked()
}

// Release gives up the lock. It is idempotent: releasing an already
// released handle is a no-op, and releasing a handle whose lock was stolen
// returns nil after logging a warning, since the caller's session still
// completes and the new owner must not be disturbed.
func (h *Handle) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.released {
		return nil
	}
	h.released = true

	if h.stolen {
		h.logger.Warn("releasing stolen lock handle", "owner_id", h.rec.OwnerID)
		return nil
	}

	_, err := h.arb.Submit(Request{Kind: ReleaseRequest, Record: h.rec})
	if err != nil {
		if errors.Is(err, errors.ErrStolen) {
			h.stolen = true
			h.logger.Warn("lock was reclaimed before release; exclusivity may have been violated",
				"owner_id", h.rec.OwnerID,
			)
			return nil
		}
		return err
	}
	return nil
}

// Released reports whether Release has been called on the handle.
func (h *Handle) Released() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}

// Stolen reports whether the lock was observed to be reclaimed by another
// process.
func (h *Handle) Stolen() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stolen
}

// Keep heartbeats the lock at the configured interval until ctx is
// canceled, the handle is released, or the lock is stolen. If the lock is
// stolen, onStolen is invoked once before Keep returns. Intended to run in
// its own goroutine for long-lived sessions.
func (h *Handle) Keep(ctx context.Context, onStolen func()) {
	ticker := time.NewTicker(h.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := h.Heartbeat()
			if err == nil {
				continue
			}
			if errors.Is(err, errors.ErrReleased) {
				return
			}
			if errors.Is(err, errors.ErrStolen) {
				if onStolen != nil {
					onStolen()
				}
				return
			}
			// Transient store errors: log and try again on the next tick.
			h.logger.Warn("heartbeat failed", "error", err.Error())
		}
	}
}
