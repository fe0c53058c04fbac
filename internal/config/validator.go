package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "lock.acquire_timeout_ms")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError
	errors = append(errors, c.validateLock()...)
	errors = append(errors, c.validateRemote()...)
	errors = append(errors, c.validateTitle()...)
	errors = append(errors, c.validateLogging()...)
	return errors
}

func (c *Config) validateLock() []ValidationError {
	var errors []ValidationError

	if c.Lock.AcquireTimeoutMs <= 0 {
		errors = append(errors, ValidationError{
			Field:   "lock.acquire_timeout_ms",
			Value:   c.Lock.AcquireTimeoutMs,
			Message: "must be positive",
		})
	}
	if c.Lock.RetryIntervalMs <= 0 {
		errors = append(errors, ValidationError{
			Field:   "lock.retry_interval_ms",
			Value:   c.Lock.RetryIntervalMs,
			Message: "must be positive",
		})
	} else if c.Lock.RetryIntervalMs > c.Lock.AcquireTimeoutMs {
		errors = append(errors, ValidationError{
			Field:   "lock.retry_interval_ms",
			Value:   c.Lock.RetryIntervalMs,
			Message: "must not exceed lock.acquire_timeout_ms",
		})
	}
	if c.Lock.HeartbeatIntervalMs <= 0 {
		errors = append(errors, ValidationError{
			Field:   "lock.heartbeat_interval_ms",
			Value:   c.Lock.HeartbeatIntervalMs,
			Message: "must be positive",
		})
	}
	// A threshold at or below the heartbeat interval would let a healthy
	// holder's lock be reclaimed between two of its own heartbeats.
	if c.Lock.StalenessThresholdMs <= c.Lock.HeartbeatIntervalMs {
		errors = append(errors, ValidationError{
			Field:   "lock.staleness_threshold_ms",
			Value:   c.Lock.StalenessThresholdMs,
			Message: "must exceed lock.heartbeat_interval_ms",
		})
	}

	return errors
}

func (c *Config) validateRemote() []ValidationError {
	var errors []ValidationError

	if c.Remote.DialTimeoutMs <= 0 {
		errors = append(errors, ValidationError{
			Field:   "remote.dial_timeout_ms",
			Value:   c.Remote.DialTimeoutMs,
			Message: "must be positive",
		})
	}

	return errors
}

func (c *Config) validateTitle() []ValidationError {
	var errors []ValidationError

	if c.Title.FetchTimeoutMs <= 0 {
		errors = append(errors, ValidationError{
			Field:   "title.fetch_timeout_ms",
			Value:   c.Title.FetchTimeoutMs,
			Message: "must be positive",
		})
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}
