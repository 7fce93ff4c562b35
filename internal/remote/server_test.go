package remote

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fkcurrie/omega-matrix-golang/pkg/shiftmatrix"
)

type recorder struct {
	mu     sync.Mutex
	frames []shiftmatrix.Frame
}

func (r *recorder) Render(f *shiftmatrix.Frame) {
	r.mu.Lock()
	r.frames = append(r.frames, *f)
	r.mu.Unlock()
}

func (r *recorder) last() (shiftmatrix.Frame, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return shiftmatrix.Frame{}, 0
	}
	return r.frames[len(r.frames)-1], len(r.frames)
}

func dial(t *testing.T, s *Server) (*websocket.Conn, func()) {
	t.Helper()
	srv := httptest.NewServer(s.Handler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("Dial() error = %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for s.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(time.Millisecond)
	}
	return conn, func() {
		conn.Close()
		s.Close()
		srv.Close()
	}
}

func readText(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(time.Second))
	kind, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	if kind != websocket.TextMessage {
		t.Fatalf("message type = %d, want text", kind)
	}
	return string(msg)
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(NewServer(&recorder{}, nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health error = %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "OK" {
		t.Errorf("GET /health = %d %q, want 200 OK", resp.StatusCode, body)
	}
}

func TestFrameMessages(t *testing.T) {
	rec := &recorder{}
	s := NewServer(rec, nil)
	conn, cleanup := dial(t, s)
	defer cleanup()

	var want shiftmatrix.Frame
	want.Set(3, 4, true)
	if err := conn.WriteMessage(websocket.BinaryMessage, want[:]); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for {
		got, n := rec.last()
		if n == 1 {
			if got != want {
				t.Error("rendered frame differs from the one sent")
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("frame was not rendered")
		}
		time.Sleep(time.Millisecond)
	}

	if err := conn.WriteMessage(websocket.BinaryMessage, make([]byte, 10)); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
	if msg := readText(t, conn); !strings.HasPrefix(msg, "ERROR ") {
		t.Errorf("reply to short frame = %q, want an error", msg)
	}
	if _, n := rec.last(); n != 1 {
		t.Errorf("rendered %d frames, want the short one rejected", n)
	}
}

func TestBroadcast(t *testing.T) {
	s := NewServer(&recorder{}, nil)
	conn, cleanup := dial(t, s)
	defer cleanup()

	for _, e := range []shiftmatrix.Event{shiftmatrix.RedDown, shiftmatrix.RedUp} {
		s.Broadcast(e)
	}
	if got := readText(t, conn); got != "RED_DOWN" {
		t.Errorf("first event = %q, want RED_DOWN", got)
	}
	if got := readText(t, conn); got != "RED_UP" {
		t.Errorf("second event = %q, want RED_UP", got)
	}
}
