package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// GuardFileName is the name of the flock(2) sidecar file within a project
// directory. Unlike the record file it is never deleted, so every process
// always locks the same inode.
const GuardFileName = "flist.guard"

// guard provides cross-process mutual exclusion using flock(2). It
// serializes the read-compare-write sequences behind the store's
// compare-and-swap primitives so they are atomic with respect to other
// processes touching the same project directory.
type guard struct {
	path string
	file *os.File
}

// newGuard creates a guard for the given project directory.
func newGuard(dir string) *guard {
	return &guard{
		path: filepath.Join(dir, GuardFileName),
	}
}

// lock acquires the exclusive flock, blocking until available.
// The guard file is created if it does not exist.
func (g *guard) lock() error {
	f, err := os.OpenFile(g.path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("open guard file: %w", err)
	}
	g.file = f

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		_ = f.Close()
		g.file = nil
		return fmt.Errorf("flock: %w", err)
	}
	return nil
}

// unlock releases the flock and closes the guard file.
func (g *guard) unlock() error {
	if g.file == nil {
		return nil
	}

	if err := syscall.Flock(int(g.file.Fd()), syscall.LOCK_UN); err != nil {
		_ = g.file.Close()
		g.file = nil
		return fmt.Errorf("funlock: %w", err)
	}

	err := g.file.Close()
	g.file = nil
	return err
}
