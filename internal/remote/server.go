package remote

import (
	"bufio"
	"context"
	"net"
	"sync"
	"time"

	"github.com/flist-dev/flist/internal/logging"
)

// readTimeout bounds how long a connection may dribble its request; a
// forwarding client sends immediately, so a slow peer is a broken one.
const readTimeout = 2 * time.Second

// ackOK is written back once the insert has been applied.
const ackOK = "ok\n"

// Server accepts forwarded insert requests on a loopback listener and
// hands them to the apply callback, which runs them on the lock holder's
// live project.
type Server struct {
	listener net.Listener
	apply    func(*InsertRequest) error
	logger   *logging.Logger

	wg sync.WaitGroup
}

// Listen starts a server on an ephemeral loopback port. The apply
// callback is invoked once per valid request; it may be called from
// multiple connection goroutines and must synchronize itself.
func Listen(apply func(*InsertRequest) error, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.NopLogger()
	}
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		apply:    apply,
		logger:   logger.WithComponent("remote"),
	}, nil
}

// Addr returns the listener's address for publication in the lock record.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Serve accepts connections until ctx is canceled or the listener is
// closed. It blocks; run it in its own goroutine.
func (s *Server) Serve(ctx context.Context) {
	go func() {
		<-ctx.Done()
		s.listener.Close()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			// Closed listener means shutdown.
			s.wg.Wait()
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(conn)
		}()
	}
}

// Close stops the listener; in-flight connections drain in Serve.
func (s *Server) Close() error {
	return s.listener.Close()
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(readTimeout))

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		s.logger.Warn("dropping forwarded request", "error", err.Error())
		return
	}

	req, err := decodeInsertRequest(line)
	if err != nil {
		s.logger.Warn("rejecting forwarded request", "error", err.Error())
		return
	}

	if err := s.apply(req); err != nil {
		s.logger.Error("forwarded insert failed", "link", req.Link, "error", err.Error())
		return
	}

	s.logger.Info("applied forwarded insert", "name", req.Name, "link", req.Link)
	if _, err := conn.Write([]byte(ackOK)); err != nil {
		s.logger.Warn("ack not delivered", "error", err.Error())
	}
}
