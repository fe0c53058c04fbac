package lock

import (
	"os"
	"time"

	"github.com/google/uuid"
)

// RecordFileName is the name of the lock record file within a project
// directory.
const RecordFileName = "flist.lock"

// Record is the host-visible claim of exclusive access to a project.
// It is serialized as JSON into the project's lock file.
//
// The owner ID is immutable for the record's lifetime: refreshing a
// heartbeat or publishing a listener address produces a new record with the
// same owner, while ownership transfer destroys the record and creates a
// fresh one under the new owner's identity.
type Record struct {
	OwnerID     string    `json:"owner_id"`
	PID         int       `json:"pid"`
	Hostname    string    `json:"hostname"`
	Addr        string    `json:"addr,omitempty"`
	AcquiredAt  time.Time `json:"acquired_at"`
	HeartbeatAt time.Time `json:"heartbeat_at"`
}

// NewRecord creates a record claiming ownership for this process,
// with a freshly generated owner ID and both timestamps set to now.
func NewRecord() *Record {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	now := time.Now()
	return &Record{
		OwnerID:     uuid.NewString(),
		PID:         os.Getpid(),
		Hostname:    hostname,
		AcquiredAt:  now,
		HeartbeatAt: now,
	}
}

// Refreshed returns a copy of the record with the heartbeat timestamp set
// to now. The owner identity and acquisition time are carried over.
func (r *Record) Refreshed() *Record {
	next := *r
	next.HeartbeatAt = time.Now()
	return &next
}

// WithAddr returns a copy of the record carrying the given listener
// address. Holders that accept forwarded insert requests publish their
// address this way; the owner identity is unchanged.
func (r *Record) WithAddr(addr string) *Record {
	next := *r
	next.Addr = addr
	return &next
}

// Matches reports whether two records describe the same stored state for
// compare-and-swap purposes: same owner and same heartbeat instant.
func (r *Record) Matches(other *Record) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.OwnerID == other.OwnerID && r.HeartbeatAt.Equal(other.HeartbeatAt)
}

// OwnedBy reports whether the record belongs to the given owner ID.
func (r *Record) OwnedBy(ownerID string) bool {
	return r != nil && r.OwnerID == ownerID
}
