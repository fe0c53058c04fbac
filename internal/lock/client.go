package lock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/flist-dev/flist/internal/errors"
	"github.com/flist-dev/flist/internal/logging"
)

// ConfigFileName is the marker file that identifies an initialized project
// directory. Acquiring a lock on a directory without it is an invalid
// request, failed immediately and never retried.
const ConfigFileName = "flist.toml"

// Client is the per-process facade used by a project session to acquire,
// heartbeat, and release the project lock.
type Client struct {
	dir    string
	cfg    Config
	store  Store
	arb    *Arbiter
	logger *logging.Logger

	// newRecord is swappable in tests to control identity and timestamps.
	newRecord func() *Record
}

// NewClient creates a Client for the given project directory. The
// configuration is validated up front so a misconfigured staleness
// threshold cannot silently undermine mutual exclusion.
func NewClient(dir string, cfg Config, logger *logging.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	logger = logger.WithProject(dir)

	store := NewFileStore(dir, logger)
	detector := NewDetector(cfg.StalenessThreshold, logger)
	return &Client{
		dir:       dir,
		cfg:       cfg,
		store:     store,
		arb:       NewArbiter(store, detector, logger),
		logger:    logger.WithComponent("client"),
		newRecord: NewRecord,
	}, nil
}

// Store returns the client's lock store. Used by watchers and by status
// reporting; mutation goes through the arbiter only.
func (c *Client) Store() Store {
	return c.store
}

// Holder returns the currently stored record, or nil if the project is
// unlocked. It never mutates the store.
func (c *Client) Holder() (*Record, error) {
	return c.store.Read()
}

// Acquire attempts to take the project lock, retrying with a short backoff
// until the configured acquisition timeout elapses. It returns:
//
//   - a Handle on success
//   - errors.ErrInvalidRequest immediately if the directory is not an
//     initialized project (no retries, no timeout wait)
//   - errors.ErrTimeout (as a LockedError carrying the observed holder)
//     once the budget is exhausted
//   - ctx.Err() if the caller abandons the attempt between retries
func (c *Client) Acquire(ctx context.Context) (*Handle, error) {
	if err := c.validateProject(); err != nil {
		return nil, err
	}

	claim := c.newRecord()
	logger := c.logger.WithOwner(claim.OwnerID)
	deadline := time.Now().Add(c.cfg.AcquireTimeout)

	var lastLocked *errors.LockedError
	for attempt := 1; ; attempt++ {
		rec, err := c.arb.Submit(Request{Kind: AcquireRequest, Record: claim})
		if err == nil {
			logger.Debug("acquire succeeded", "attempt", attempt)
			return newHandle(c.arb, rec, c.cfg, logger), nil
		}
		if !errors.Is(err, errors.ErrAlreadyLocked) {
			return nil, err
		}
		errors.As(err, &lastLocked)

		if time.Now().After(deadline) {
			logger.Info("acquire timed out",
				"attempts", attempt,
				"timeout", c.cfg.AcquireTimeout.String(),
			)
			timeout := errors.NewLockedError(errors.ErrTimeout)
			if lastLocked != nil {
				timeout.WithHolder(lastLocked.PID, lastLocked.Hostname,
					lastLocked.Addr, lastLocked.HeartbeatAt)
			}
			return nil, timeout
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.cfg.RetryInterval):
		}

		// Same owner identity across attempts, fresh timestamps: a claim
		// that waited out several retries must not be born stale.
		claim = claim.Refreshed()
	}
}

// validateProject rejects out-of-protocol requests before any retry loop:
// the project directory must exist and contain a config file.
func (c *Client) validateProject() error {
	info, err := os.Stat(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: project directory %s does not exist",
				errors.ErrInvalidRequest, c.dir)
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", errors.ErrInvalidRequest, c.dir)
	}
	if _, err := os.Stat(filepath.Join(c.dir, ConfigFileName)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s is not an initialized project",
				errors.ErrInvalidRequest, c.dir)
		}
		return err
	}
	return nil
}
