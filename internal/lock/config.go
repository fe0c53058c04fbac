package lock

import (
	"time"

	"github.com/flist-dev/flist/internal/errors"
)

// Defaults for the coordination tunables. The acquisition timeout matches
// the documented 250ms connection timeout for locked projects; the
// staleness threshold is a deliberately separate, larger value, since
// reclaiming a lock too eagerly risks two processes believing they hold it
// simultaneously.
const (
	// DefaultAcquireTimeout bounds how long Acquire retries before failing.
	DefaultAcquireTimeout = 250 * time.Millisecond

	// DefaultRetryInterval is the backoff between acquisition attempts.
	DefaultRetryInterval = 25 * time.Millisecond

	// DefaultHeartbeatInterval is how often a holder refreshes its record.
	DefaultHeartbeatInterval = 2 * time.Second

	// DefaultStalenessThreshold is how old a record's heartbeat must be
	// before another process may reclaim it.
	DefaultStalenessThreshold = 10 * time.Second
)

// Config holds the coordination tunables consumed by the lock core.
type Config struct {
	// AcquireTimeout bounds a single Acquire call, including retries.
	AcquireTimeout time.Duration `mapstructure:"acquire_timeout"`

	// RetryInterval is the backoff between acquisition attempts.
	RetryInterval time.Duration `mapstructure:"retry_interval"`

	// HeartbeatInterval is how often Keep refreshes a held lock.
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`

	// StalenessThreshold is the heartbeat age beyond which a record is
	// considered abandoned. Must be larger than HeartbeatInterval.
	StalenessThreshold time.Duration `mapstructure:"staleness_threshold"`
}

// DefaultConfig returns the default coordination tunables.
func DefaultConfig() Config {
	return Config{
		AcquireTimeout:     DefaultAcquireTimeout,
		RetryInterval:      DefaultRetryInterval,
		HeartbeatInterval:  DefaultHeartbeatInterval,
		StalenessThreshold: DefaultStalenessThreshold,
	}
}

// Validate checks the configuration for values that would break the
// coordination protocol.
func (c Config) Validate() error {
	if c.AcquireTimeout <= 0 {
		return errors.NewValidationError("acquire_timeout", c.AcquireTimeout, "must be positive")
	}
	if c.RetryInterval <= 0 {
		return errors.NewValidationError("retry_interval", c.RetryInterval, "must be positive")
	}
	if c.RetryInterval > c.AcquireTimeout {
		return errors.NewValidationError("retry_interval", c.RetryInterval,
			"must not exceed acquire_timeout")
	}
	if c.HeartbeatInterval <= 0 {
		return errors.NewValidationError("heartbeat_interval", c.HeartbeatInterval, "must be positive")
	}
	if c.StalenessThreshold <= c.HeartbeatInterval {
		return errors.NewValidationError("staleness_threshold", c.StalenessThreshold,
			"must be larger than heartbeat_interval")
	}
	return nil
}
