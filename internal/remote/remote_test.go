package remote

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/flist-dev/flist/internal/errors"
)

func startServer(t *testing.T, apply func(*InsertRequest) error) *Server {
	t.Helper()
	srv, err := Listen(apply, nil)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		srv.Serve(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("server did not shut down")
		}
	})
	return srv
}

func TestForwardInsert(t *testing.T) {
	var mu sync.Mutex
	var got []InsertRequest
	srv := startServer(t, func(req *InsertRequest) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, *req)
		return nil
	})

	req := &InsertRequest{
		Name:     "docs",
		Link:     "https://go.dev/doc",
		Metadata: []string{"reference"},
	}
	if err := Send(srv.Addr(), req, 0); err != nil {
		t.Fatalf("Send: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("applied %d requests, want 1", len(got))
	}
	if got[0].Name != "docs" || got[0].Link != "https://go.dev/doc" {
		t.Errorf("applied request = %+v", got[0])
	}
	if len(got[0].Metadata) != 1 || got[0].Metadata[0] != "reference" {
		t.Errorf("metadata = %v, want [reference]", got[0].Metadata)
	}
}

func TestForwardConcurrent(t *testing.T) {
	var mu sync.Mutex
	count := 0
	srv := startServer(t, func(*InsertRequest) error {
		mu.Lock()
		defer mu.Unlock()
		count++
		return nil
	})

	const senders = 8
	var wg sync.WaitGroup
	errs := make(chan error, senders)
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- Send(srv.Addr(), &InsertRequest{Link: "https://example.com"}, 0)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Send: %v", err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if count != senders {
		t.Errorf("applied %d inserts, want %d", count, senders)
	}
}

func TestSendNoAddr(t *testing.T) {
	err := Send("", &InsertRequest{Link: "https://example.com"}, 0)
	if !errors.Is(err, errors.ErrNoListener) {
		t.Errorf("err = %v, want ErrNoListener", err)
	}
}

func TestSendDeadAddr(t *testing.T) {
	// Grab a port and close it so nothing is listening there.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := l.Addr().String()
	l.Close()

	start := time.Now()
	err = Send(addr, &InsertRequest{Link: "https://example.com"}, 100*time.Millisecond)
	if !errors.Is(err, errors.ErrNoListener) {
		t.Fatalf("err = %v, want ErrNoListener", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("dial took %v, should fail fast", elapsed)
	}
}

func TestSendInvalidRequest(t *testing.T) {
	err := Send("127.0.0.1:1", &InsertRequest{}, 0)
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("err = %v, want ErrInvalidRequest", err)
	}
}

func TestApplyFailureNotAcked(t *testing.T) {
	srv := startServer(t, func(*InsertRequest) error {
		return errors.New("project gone")
	})

	err := Send(srv.Addr(), &InsertRequest{Link: "https://example.com"}, 0)
	if err == nil {
		t.Error("a failed apply must not be acknowledged")
	}
}

func TestMalformedRequestDropped(t *testing.T) {
	applied := make(chan struct{}, 1)
	srv := startServer(t, func(*InsertRequest) error {
		applied <- struct{}{}
		return nil
	})

	conn, err := net.Dial("tcp", srv.Addr())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if _, err := conn.Write([]byte("{not json\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case <-applied:
		t.Error("malformed request must not be applied")
	case <-time.After(100 * time.Millisecond):
	}
}
