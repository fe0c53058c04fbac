// Package errors provides centralized error definitions and error handling
// utilities for the flist codebase. It defines the lock coordination error
// taxonomy, project-level sentinel errors, semantic error types with context
// wrapping, and classification helpers.
//
// # Error Taxonomy
//
// Lock coordination errors come in two layers. Store-level errors
// (ErrAlreadyLocked, ErrConflict) are produced by the lock store's atomic
// primitives and never escape the request arbiter untranslated. Client-level
// errors (ErrTimeout, ErrInvalidRequest, ErrStolen) are what sessions branch
// on to decide between retry, abort, and user-facing failure.
//
// # Usage
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrTimeout) { ... }
//
//	var locked *errors.LockedError
//	if errors.As(err, &locked) { fmt.Println(locked.PID) }
//
//	if errors.IsRetryable(err) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Lock store sentinel errors. These are returned by the lock store's atomic
// primitives and are recoverable by retrying within the acquisition budget.
var (
	// ErrAlreadyLocked indicates an exclusive-create lost the race because a
	// lock record already exists for the project.
	ErrAlreadyLocked = New("project is already locked")
	// ErrConflict indicates a compare-and-swap failed because the stored lock
	// record no longer matches the expected one.
	ErrConflict = New("lock record changed underneath")
)

// Lock client sentinel errors. These are terminal for a single user-initiated
// operation and are surfaced to sessions.
var (
	// ErrTimeout indicates lock acquisition did not succeed within the
	// configured acquisition timeout.
	ErrTimeout = New("timed out waiting for project lock")
	// ErrInvalidRequest indicates a malformed lock request, such as acquiring
	// a project directory that does not exist or was never initialized.
	ErrInvalidRequest = New("invalid lock request")
	// ErrStolen indicates the caller's lock was reclaimed as stale by another
	// process. The holder must abort any in-flight mutation.
	ErrStolen = New("lock was reclaimed by another process")
	// ErrReleased indicates an operation on a handle that was already
	// released by its owner.
	ErrReleased = New("lock handle already released")
)

// Project sentinel errors.
var (
	// ErrProjectNotFound indicates the directory holds no flist project.
	ErrProjectNotFound = New("no flist.toml found in project directory")
	// ErrProjectExists indicates an attempt to initialize over an existing
	// project without --force.
	ErrProjectExists = New("project already exists")
	// ErrEntryIndex indicates an entry index outside the list bounds.
	ErrEntryIndex = New("entry index out of range")
)

// Remote sentinel errors.
var (
	// ErrNoListener indicates the lock holder did not publish a listener
	// address, so requests cannot be forwarded to it.
	ErrNoListener = New("lock holder is not accepting forwarded requests")
)

// -----------------------------------------------------------------------------
// Typed Errors
// -----------------------------------------------------------------------------

// LockedError reports that a project is held by another process. It carries
// the observed lock record fields so callers can tell the user who holds the
// lock, and so `add` can forward its request to a listening holder.
//
// LockedError unwraps to a lock sentinel (ErrAlreadyLocked or ErrTimeout), so
// errors.Is checks keep working.
type LockedError struct {
	PID         int
	Hostname    string
	Addr        string
	HeartbeatAt time.Time

	cause error
}

// NewLockedError creates a LockedError wrapping the given sentinel.
func NewLockedError(cause error) *LockedError {
	return &LockedError{cause: cause}
}

// WithHolder records the observed holder's identity on the error.
func (e *LockedError) WithHolder(pid int, hostname string, addr string, heartbeatAt time.Time) *LockedError {
	e.PID = pid
	e.Hostname = hostname
	e.Addr = addr
	e.HeartbeatAt = heartbeatAt
	return e
}

// Error returns the formatted error message.
func (e *LockedError) Error() string {
	if e.PID == 0 {
		return e.cause.Error()
	}
	msg := fmt.Sprintf("%v: held by PID %d on %s", e.cause, e.PID, e.Hostname)
	if !e.HeartbeatAt.IsZero() {
		msg += fmt.Sprintf(" (last heartbeat %s)", e.HeartbeatAt.Format(time.RFC3339))
	}
	return msg
}

// Unwrap returns the wrapped sentinel.
func (e *LockedError) Unwrap() error {
	return e.cause
}

// Listening reports whether the holder published a forwarding address.
func (e *LockedError) Listening() bool {
	return e.Addr != ""
}

// ValidationError represents invalid input or state, such as a lock
// configuration whose staleness threshold does not exceed the heartbeat
// interval.
type ValidationError struct {
	Field   string
	Value   any
	message string
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, message: message}
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.message
	}
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.message)
}

// Is reports whether the target is ErrInvalidRequest; validation failures are
// a form of invalid request and are never retried.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidRequest
}

// ProjectError represents errors from the project persistence layer.
type ProjectError struct {
	Op   string // operation that failed: "load", "save", "init", ...
	Root string // project directory
	Err  error
}

// NewProjectError creates a new ProjectError.
func NewProjectError(op, root string, err error) *ProjectError {
	return &ProjectError{Op: op, Root: root, Err: err}
}

// Error returns the formatted error message.
func (e *ProjectError) Error() string {
	var b strings.Builder
	b.WriteString("project ")
	b.WriteString(e.Op)
	if e.Root != "" {
		fmt.Fprintf(&b, " [%s]", e.Root)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

// Unwrap returns the underlying error.
func (e *ProjectError) Unwrap() error {
	return e.Err
}

// -----------------------------------------------------------------------------
// Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error is transient and the operation may
// succeed on a later attempt within the acquisition budget. Store-level
// contention errors are retryable; client-level terminal errors are not.
func IsRetryable(err error) bool {
	return Is(err, ErrAlreadyLocked) || Is(err, ErrConflict)
}

// IsTerminal returns true if the error ends the current user-initiated
// operation: exhausted timeouts, malformed requests, and stolen locks.
func IsTerminal(err error) bool {
	return Is(err, ErrTimeout) || Is(err, ErrInvalidRequest) || Is(err, ErrStolen)
}

// IsUserFacing returns true if the error message is safe and useful to
// display to end users.
func IsUserFacing(err error) bool {
	switch {
	case Is(err, ErrTimeout),
		Is(err, ErrInvalidRequest),
		Is(err, ErrStolen),
		Is(err, ErrProjectNotFound),
		Is(err, ErrProjectExists),
		Is(err, ErrNoListener):
		return true
	}
	var locked *LockedError
	return As(err, &locked)
}
