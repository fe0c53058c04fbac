package project

import (
	"context"
	"testing"
	"time"

	"github.com/flist-dev/flist/internal/errors"
	"github.com/flist-dev/flist/internal/lock"
)

func sessionLockConfig() lock.Config {
	return lock.Config{
		AcquireTimeout:     150 * time.Millisecond,
		RetryInterval:      10 * time.Millisecond,
		HeartbeatInterval:  20 * time.Millisecond,
		StalenessThreshold: 200 * time.Millisecond,
	}
}

// stealLock replaces the project's lock record with a rival's, as a
// staleness reclaim by another process would.
func stealLock(t *testing.T, sess *Session) {
	t.Helper()
	store := lock.NewFileStore(sess.Project.Root, nil)
	current, err := store.Read()
	if err != nil {
		t.Fatalf("read record: %v", err)
	}
	if err := store.Replace(current, lock.NewRecord()); err != nil {
		t.Fatalf("replace record: %v", err)
	}
}

func TestSessionOpenClose(t *testing.T) {
	dir := testProjectDir(t)

	sess, err := Open(context.Background(), dir, sessionLockConfig(), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	holder, err := sess.Holder()
	if err != nil {
		t.Fatalf("Holder: %v", err)
	}
	if holder == nil || holder.OwnerID != sess.Handle().OwnerID() {
		t.Error("the session should hold the project lock")
	}

	if err := sess.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := sess.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}

	holder, err = sess.Holder()
	if err != nil {
		t.Fatalf("Holder after close: %v", err)
	}
	if holder != nil {
		t.Error("the lock record should be gone after Close")
	}
}

func TestSessionOpenMissingProject(t *testing.T) {
	_, err := Open(context.Background(), t.TempDir(), sessionLockConfig(), nil)
	if !errors.Is(err, errors.ErrProjectNotFound) {
		t.Errorf("err = %v, want ErrProjectNotFound", err)
	}
}

func TestSessionExclusive(t *testing.T) {
	dir := testProjectDir(t)

	first, err := Open(context.Background(), dir, sessionLockConfig(), nil)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	defer first.Close()

	_, err = Open(context.Background(), dir, sessionLockConfig(), nil)
	if !errors.Is(err, errors.ErrTimeout) {
		t.Fatalf("second Open = %v, want a timeout", err)
	}
	var locked *errors.LockedError
	if !errors.As(err, &locked) {
		t.Fatal("second Open should report the holder")
	}
	if locked.PID <= 0 {
		t.Errorf("holder PID = %d, want the first session's process", locked.PID)
	}
}

func TestSessionSaveAndReload(t *testing.T) {
	dir := testProjectDir(t)

	sess, err := Open(context.Background(), dir, sessionLockConfig(), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	sess.Project.Insert(NewEntry("kept", "https://example.com", nil))
	if err := sess.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := sess.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	next, err := Open(context.Background(), dir, sessionLockConfig(), nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer next.Close()
	if len(next.Project.Entries) != 1 || next.Project.Entries[0].Name != "kept" {
		t.Errorf("reloaded entries = %+v, want the saved entry", next.Project.Entries)
	}
}

func TestSessionSaveRefusedWhenStolen(t *testing.T) {
	dir := testProjectDir(t)

	sess, err := Open(context.Background(), dir, sessionLockConfig(), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer sess.Close()

	stealLock(t, sess)

	if err := sess.Handle().Heartbeat(); !errors.Is(err, errors.ErrStolen) {
		t.Fatalf("heartbeat after theft = %v, want ErrStolen", err)
	}
	if err := sess.Save(); !errors.Is(err, errors.ErrStolen) {
		t.Errorf("Save after theft = %v, want ErrStolen", err)
	}
}

func TestSessionKeepReportsTheft(t *testing.T) {
	dir := testProjectDir(t)

	sess, err := Open(context.Background(), dir, sessionLockConfig(), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer sess.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	stolen := make(chan struct{})
	go sess.Keep(ctx, func() { close(stolen) })

	// Let the keeper start, then steal the record.
	time.Sleep(50 * time.Millisecond)
	stealLock(t, sess)

	select {
	case <-stolen:
	case <-ctx.Done():
		t.Fatal("Keep never reported the stolen lock")
	}
}

func TestSessionKeepQuietOnClose(t *testing.T) {
	dir := testProjectDir(t)

	sess, err := Open(context.Background(), dir, sessionLockConfig(), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	stolen := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		sess.Keep(ctx, func() { stolen <- struct{}{} })
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	if err := sess.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("Keep should return once the lock is released")
	}
	select {
	case <-stolen:
		t.Error("our own release must not look like theft")
	default:
	}
}
