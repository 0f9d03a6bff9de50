package syncview

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

// pushServer is a test double for the backend's websocket endpoints.
type pushServer struct {
	t        *testing.T
	upgrader websocket.Upgrader

	mu       sync.Mutex
	received []map[string]interface{}

	// outbound carries frames the test wants pushed to the client
	outbound chan interface{}

	// closeAbruptly skips the close handshake when the outbound stream ends
	closeAbruptly bool
}

func newPushServer(t *testing.T) (*pushServer, *httptest.Server, string) {
	ps := &pushServer{
		t:        t,
		outbound: make(chan interface{}, 16),
	}
	srv := httptest.NewServer(http.HandlerFunc(ps.handle))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	return ps, srv, wsURL
}

func (ps *pushServer) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := ps.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ps.t.Errorf("Upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	go func() {
		for msg := range ps.outbound {
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		}
		if ps.closeAbruptly {
			conn.Close()
		} else {
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		}
	}()

	for {
		var req map[string]interface{}
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		ps.mu.Lock()
		ps.received = append(ps.received, req)
		ps.mu.Unlock()
	}
}

func (ps *pushServer) receivedCount() int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return len(ps.received)
}

func TestOpenAndReceiveInOrder(t *testing.T) {
	ps, _, wsURL := newPushServer(t)

	var mu sync.Mutex
	var got []string
	done := make(chan struct{})

	mgr := NewManager(nil)
	session, err := mgr.Open(context.Background(), wsURL, func(raw []byte) {
		mu.Lock()
		got = append(got, string(raw))
		if len(got) == 3 {
			close(done)
		}
		mu.Unlock()
	}, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer session.Close()

	if session.State() != SessionOpen {
		t.Fatalf("Expected open session, got %v", session.State())
	}

	for i := 1; i <= 3; i++ {
		ps.outbound <- map[string]int{"seq": i}
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for messages")
	}

	mu.Lock()
	defer mu.Unlock()
	for i, raw := range got {
		if !strings.Contains(raw, `"seq":`+string(rune('1'+i))) {
			t.Errorf("Message %d out of order: %s", i, raw)
		}
	}
}

func TestSendAfterCloseReturnsError(t *testing.T) {
	_, _, wsURL := newPushServer(t)

	mgr := NewManager(nil)
	session, err := mgr.Open(context.Background(), wsURL, nil, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := session.Send(NewPaginationRequest(2, 10)); err != nil {
		t.Fatalf("Send on open session failed: %v", err)
	}

	session.Close()

	if err := session.Send(NewPaginationRequest(3, 10)); err != ErrSessionNotOpen {
		t.Errorf("Expected ErrSessionNotOpen, got %v", err)
	}
	if session.Reason() != CloseClientClosed {
		t.Errorf("Expected client close reason, got %v", session.Reason())
	}
}

func TestServerCloseReportedOnce(t *testing.T) {
	ps, _, wsURL := newPushServer(t)

	var mu sync.Mutex
	var reasons []CloseReason
	closed := make(chan struct{})

	mgr := NewManager(nil)
	session, err := mgr.Open(context.Background(), wsURL, nil, func(reason CloseReason, err error) {
		mu.Lock()
		reasons = append(reasons, reason)
		mu.Unlock()
		close(closed)
	})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	// Server finishes its outbound stream and closes cleanly
	close(ps.outbound)

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for close callback")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(reasons) != 1 {
		t.Fatalf("Expected exactly one close callback, got %d", len(reasons))
	}
	if reasons[0] != CloseServerClosed {
		t.Errorf("Expected server close reason, got %v", reasons[0])
	}
	if session.State() != SessionClosed {
		t.Errorf("Expected closed state, got %v", session.State())
	}
}

func TestClientMessagesReachServer(t *testing.T) {
	ps, _, wsURL := newPushServer(t)

	mgr := NewManager(nil)
	session, err := mgr.Open(context.Background(), wsURL, nil, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer session.Close()

	if err := session.Send(NewToggleLiveModeRequest(false)); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for ps.receivedCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("Server never received the message")
		case <-time.After(10 * time.Millisecond):
		}
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()
	req := ps.received[0]
	if req["type"] != MessageTypeToggleLiveMode {
		t.Errorf("Unexpected message type: %v", req["type"])
	}
	if req["live_mode"] != false {
		t.Errorf("Unexpected live_mode: %v", req["live_mode"])
	}
}

func TestOpenFailsAgainstDeadEndpoint(t *testing.T) {
	mgr := NewManager(nil)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	_, err := mgr.Open(ctx, "ws://127.0.0.1:1/ws/yaml_configs", nil, nil)
	if err == nil {
		t.Fatal("Expected dial error")
	}
}
