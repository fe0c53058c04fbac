package lock

import (
	"time"

	"github.com/flist-dev/flist/internal/logging"
)

// Detector decides whether an existing lock record should be treated as
// abandoned and reclaims it safely through the store's compare-and-swap
// primitive.
type Detector struct {
	threshold time.Duration
	now       func() time.Time
	logger    *logging.Logger
}

// NewDetector creates a Detector with the given staleness threshold.
func NewDetector(threshold time.Duration, logger *logging.Logger) *Detector {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Detector{
		threshold: threshold,
		now:       time.Now,
		logger:    logger.WithComponent("staleness"),
	}
}

// Stale reports whether the record's holder has not heartbeated within the
// staleness threshold. A crashed holder leaves a frozen heartbeat, so any
// other process's acquire attempt succeeds here once the threshold elapses.
func (d *Detector) Stale(rec *Record) bool {
	if rec == nil {
		return false
	}
	return d.now().Sub(rec.HeartbeatAt) > d.threshold
}

// Reclaim attempts to take ownership of a stale record by swapping it for
// the claimant's record. A conflict means another process already reclaimed
// or refreshed the lock; the caller must then retry the whole acquire flow
// within its timeout budget.
func (d *Detector) Reclaim(store Store, stale *Record, claim *Record) error {
	if err := store.Replace(stale, claim); err != nil {
		return err
	}
	d.logger.Warn("stale lock reclaimed",
		"old_owner", stale.OwnerID,
		"old_pid", stale.PID,
		"heartbeat_age", d.now().Sub(stale.HeartbeatAt).String(),
		"new_owner", claim.OwnerID,
	)
	return nil
}
