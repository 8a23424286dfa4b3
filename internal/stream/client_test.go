package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// wsTestServer upgrades every connection and sends the given frames,
// then closes. It counts accepted connections.
type wsTestServer struct {
	*httptest.Server

	mu       sync.Mutex
	accepted int
	frames   []string
}

func newWSTestServer(t *testing.T, frames []string) *wsTestServer {
	t.Helper()
	s := &wsTestServer{frames: frames}
	upgrader := websocket.Upgrader{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		s.mu.Lock()
		s.accepted++
		s.mu.Unlock()
		for _, f := range s.frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				break
			}
		}
		_ = conn.Close()
	}))
	return s
}

func (s *wsTestServer) wsURL() string {
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

func (s *wsTestServer) connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accepted
}

func collectFrames(ch chan<- string) FrameHandler {
	return func(frame []byte) {
		select {
		case ch <- string(frame):
		default:
		}
	}
}

func TestClient_DeliversFrames(t *testing.T) {
	srv := newWSTestServer(t, []string{`{"type":"Stats","payload":{}}`, `{"type":"History","payload":[]}`})
	defer srv.Close()

	got := make(chan string, 16)
	c := New(Config{Endpoint: srv.wsURL(), ReconnectDelay: 50 * time.Millisecond}, collectFrames(got), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	for i := 0; i < 2; i++ {
		select {
		case frame := <-got:
			if !strings.Contains(frame, `"type"`) {
				t.Errorf("unexpected frame: %s", frame)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for frame")
		}
	}
}

func TestClient_ReconnectsAfterClose(t *testing.T) {
	srv := newWSTestServer(t, []string{`{"type":"Stats","payload":{}}`})
	defer srv.Close()

	got := make(chan string, 16)
	c := New(Config{Endpoint: srv.wsURL(), ReconnectDelay: 20 * time.Millisecond}, collectFrames(got), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	deadline := time.After(3 * time.Second)
	for srv.connections() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected repeated reconnects, saw %d connections", srv.connections())
		case <-time.After(10 * time.Millisecond):
		}
	}
	if c.Reconnects() == 0 {
		t.Error("reconnect counter never advanced")
	}
}

func TestClient_ConnectivityStateChanges(t *testing.T) {
	srv := newWSTestServer(t, []string{`{"type":"Stats","payload":{}}`})
	defer srv.Close()

	states := make(chan bool, 16)
	c := New(Config{Endpoint: srv.wsURL(), ReconnectDelay: 20 * time.Millisecond}, func([]byte) {}, nil)
	c.OnStateChange(func(up bool) {
		select {
		case states <- up:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	// First transition must be up, then down when the server closes.
	expect := []bool{true, false}
	for _, want := range expect {
		select {
		case got := <-states:
			if got != want {
				t.Fatalf("expected state %v, got %v", want, got)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for state change")
		}
	}
}

func TestClient_DialFailureKeepsRetrying(t *testing.T) {
	// A closed server: every dial fails, the client must not give up.
	srv := newWSTestServer(t, nil)
	endpoint := srv.wsURL()
	srv.Close()

	c := New(Config{Endpoint: endpoint, ReconnectDelay: 10 * time.Millisecond}, func([]byte) {}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	c.Run(ctx) // returns only on ctx cancel

	if c.Connected() {
		t.Error("client should not report connected")
	}
	if c.Reconnects() < 2 {
		t.Errorf("expected repeated retry attempts, got %d", c.Reconnects())
	}
}

func TestClient_StopsOnContextCancel(t *testing.T) {
	srv := newWSTestServer(t, nil)
	defer srv.Close()

	c := New(Config{Endpoint: srv.wsURL(), ReconnectDelay: 10 * time.Millisecond}, func([]byte) {}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on context cancel")
	}
}
