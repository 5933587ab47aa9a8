//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/comptoir-labs/comptoir/internal/gate"
	"github.com/comptoir-labs/comptoir/internal/identity"
	"github.com/comptoir-labs/comptoir/internal/session"
	"github.com/google/go-cmp/cmp"
)

func TestChatSocket(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, gate.DefaultPolicy(), nil)
	srv := httptest.NewServer(s.router)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/chat?session_id=tab1", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	readUntilDone := func() []wsMessage {
		var frames []wsMessage
		for {
			var msg wsMessage
			if err := wsjson.Read(ctx, conn, &msg); err != nil {
				t.Fatalf("read: %v", err)
			}
			frames = append(frames, msg)
			if msg.Type != eventChunk {
				return frames
			}
		}
	}

	if err := wsjson.Write(ctx, conn, wsMessage{Type: "chat", Request: &ChatRequest{Message: "hi", Language: "en"}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	frames := readUntilDone()

	var types []string
	for _, f := range frames {
		types = append(types, f.Type)
	}
	if diff := cmp.Diff([]string{"chunk", "chunk", "done"}, types); diff != "" {
		t.Fatalf("frame types mismatch (-want +got):\n%s", diff)
	}
	done := frames[len(frames)-1]
	if done.Reply != "Hello there." || done.Session == nil || done.Session.MessageCount != 1 {
		t.Errorf("done frame = %+v", done)
	}

	// Blank input is rejected without closing the socket.
	if err := wsjson.Write(ctx, conn, wsMessage{Type: "chat", Request: &ChatRequest{Message: " "}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if frames := readUntilDone(); frames[0].Type != eventError || frames[0].Message != "message is required" {
		t.Errorf("blank message frames = %+v", frames)
	}

	if err := wsjson.Write(ctx, conn, wsMessage{Type: "ping"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if frames := readUntilDone(); frames[0].Type != "pong" {
		t.Errorf("ping answered with %+v", frames)
	}
}

func TestOriginPatterns(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		want    []string
	}{
		{"wildcard", []string{"https://a.example", "*"}, []string{"*"}},
		{"hosts", []string{"https://App.Example:8443", "http://localhost:5173"}, []string{"app.example:8443", "localhost:5173"}},
		{"skips garbage", []string{"not a url", ""}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, originPatterns(tt.origins)); diff != "" {
				t.Errorf("originPatterns mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResetClosesChatSocket(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, gate.DefaultPolicy(), nil)
	srv := httptest.NewServer(s.router)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/chat", &websocket.DialOptions{
		HTTPHeader: http.Header{identity.SessionHeaderName: []string{"tab1"}},
	})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	key := session.Key(testVisitor, "tab1")
	for s.h.sockets.Count(key) == 0 {
		if ctx.Err() != nil {
			t.Fatal("socket never registered")
		}
		time.Sleep(time.Millisecond)
	}

	if w := s.do(t, http.MethodPost, "/api/session/reset", nil); w.Code != http.StatusOK {
		t.Fatalf("reset status = %d", w.Code)
	}

	var msg wsMessage
	err = wsjson.Read(ctx, conn, &msg)
	if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
		t.Fatalf("read after reset: err = %v, want normal closure", err)
	}
	if n := s.h.sockets.Count(key); n != 0 {
		t.Errorf("registry still holds %d sockets", n)
	}
}

func TestSocketRegistry(t *testing.T) {
	reg := NewSocketRegistry()
	a, b := &websocket.Conn{}, &websocket.Conn{}

	reg.Register("k", a)
	reg.Register("k", b)
	if n := reg.Count("k"); n != 2 {
		t.Fatalf("Count = %d, want 2", n)
	}
	reg.Unregister("k", a)
	reg.Unregister("other", b)
	if n := reg.Count("k"); n != 1 {
		t.Fatalf("Count = %d, want 1", n)
	}
	reg.Unregister("k", b)
	if n := reg.Count("k"); n != 0 {
		t.Fatalf("Count = %d, want 0", n)
	}
	reg.CloseSession("k")
}
