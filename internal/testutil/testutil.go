// Package testutil provides testing utilities for flist tests.
package testutil

import (
	"testing"
	"time"

	"github.com/flist-dev/flist/internal/lock"
	"github.com/flist-dev/flist/internal/project"
)

// SetupTestProject creates a temporary flist project directory. It is
// cleaned up when the test completes.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	if err := project.Init(dir, project.DefaultProjectConfig(), project.InitOptions{}); err != nil {
		t.Fatalf("failed to init test project: %v", err)
	}
	return dir
}

// SetupTestProjectWithEntries creates a test project whose live list holds
// the named entries, in order.
func SetupTestProjectWithEntries(t *testing.T, names ...string) string {
	t.Helper()

	dir := SetupTestProject(t)
	proj, err := project.Load(dir, project.DefaultProjectConfig(), nil)
	if err != nil {
		t.Fatalf("failed to load test project: %v", err)
	}
	for i := len(names) - 1; i >= 0; i-- {
		proj.Insert(project.NewEntry(names[i], "https://example.com/"+names[i], nil))
	}
	if err := proj.Save(); err != nil {
		t.Fatalf("failed to save test project: %v", err)
	}
	return dir
}

// FastLockConfig returns lock timing scaled down for tests: acquisition
// gives up quickly and heartbeats are frequent, so staleness and theft
// scenarios run in milliseconds instead of seconds.
func FastLockConfig() lock.Config {
	return lock.Config{
		AcquireTimeout:     150 * time.Millisecond,
		RetryInterval:      10 * time.Millisecond,
		HeartbeatInterval:  20 * time.Millisecond,
		StalenessThreshold: 200 * time.Millisecond,
	}
}
