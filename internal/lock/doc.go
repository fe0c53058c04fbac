// Package lock implements cross-process coordination for a shared flist
// project. Multiple independently launched processes on one machine may
// target the same project directory; this package arbitrates which process
// may mutate it at a given moment, detects locks abandoned by crashed
// processes, and bounds how long a waiter blocks before giving up.
//
// # Architecture
//
// The [Store] holds the on-disk lock [Record] for a project and exposes
// three atomic primitives: exclusive creation, compare-and-swap replacement,
// and compare-and-swap deletion. The [Arbiter] is the single decision point
// that turns concurrent lock requests into a linear sequence of store
// operations; it never splits a check and an act across separate calls.
// The [Detector] decides when an existing record is stale (its holder
// stopped heartbeating) and reclaims it through the store's CAS primitive.
// The [Client] is the per-process facade: it retries acquisition with a
// short backoff until the acquisition timeout elapses and returns a
// [Handle] used to heartbeat, release, and observe theft.
//
// # Invariants
//
// At most one live (non-stale) record exists per project at any instant.
// A record's owner ID is immutable for the record's lifetime; ownership
// transfer destroys and recreates the record.
//
// # Basic Usage
//
//	client, err := lock.NewClient(projectDir, lock.DefaultConfig(), logger)
//	handle, err := client.Acquire(ctx)
//	defer handle.Release()
//
//	// long-running holders keep the lock fresh:
//	go handle.Keep(ctx, func() { /* lock was stolen, abort */ })
package lock
