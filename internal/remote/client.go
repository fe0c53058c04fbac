package remote

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/flist-dev/flist/internal/errors"
)

// DefaultDialTimeout bounds the connection attempt to a lock holder's
// listener. The listener is on loopback, so a dial that takes longer than
// this is a dead address.
const DefaultDialTimeout = 250 * time.Millisecond

// Send forwards an insert request to a lock holder's published listener
// address and waits for the acknowledgment. A zero timeout uses
// DefaultDialTimeout. Returns errors.ErrNoListener when addr is empty.
func Send(addr string, req *InsertRequest, timeout time.Duration) error {
	if addr == "" {
		return errors.ErrNoListener
	}
	if err := req.Validate(); err != nil {
		return err
	}
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}

	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %v", errors.ErrNoListener, addr, err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(readTimeout))

	data, err := req.encode()
	if err != nil {
		return err
	}
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("forward insert to %s: %w", addr, err)
	}

	ack, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return fmt.Errorf("no acknowledgment from %s: %w", addr, err)
	}
	if strings.TrimSpace(ack) != strings.TrimSpace(ackOK) {
		return fmt.Errorf("holder at %s rejected the insert: %s", addr, strings.TrimSpace(ack))
	}
	return nil
}
