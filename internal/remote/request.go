// Package remote forwards entry insertions between flist processes on the
// same host. A long-running view session announces a loopback listener
// address in its lock record; an add command that finds the project locked
// by a listening holder sends the entry there instead of waiting for the
// lock.
package remote

import (
	"encoding/json"
	"fmt"

	"github.com/flist-dev/flist/internal/errors"
)

// InsertRequest is the wire form of a forwarded entry insertion: one JSON
// object per connection, newline-terminated.
type InsertRequest struct {
	Name     string   `json:"name"`
	Link     string   `json:"link"`
	Metadata []string `json:"metadata,omitempty"`
}

// Validate checks the request is actionable before it crosses the wire or
// mutates a project.
func (r *InsertRequest) Validate() error {
	if r.Link == "" {
		return errors.NewValidationError("link", r.Link, "must not be empty")
	}
	return nil
}

// encode serializes a request for transmission.
func (r *InsertRequest) encode() ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode insert request: %w", err)
	}
	return append(data, '\n'), nil
}

// decodeInsertRequest parses a received request line.
func decodeInsertRequest(line []byte) (*InsertRequest, error) {
	var req InsertRequest
	if err := json.Unmarshal(line, &req); err != nil {
		return nil, fmt.Errorf("%w: malformed insert request: %v", errors.ErrInvalidRequest, err)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}
