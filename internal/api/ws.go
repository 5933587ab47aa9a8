package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/comptoir-labs/comptoir/internal/conversation"
)

// wsMessage is both the client request frame and the server event frame.
type wsMessage struct {
	Type      string       `json:"type"`
	Text      string       `json:"text,omitempty"`
	Message   string       `json:"message,omitempty"`
	Request   *ChatRequest `json:"request,omitempty"`
	Reply     string       `json:"reply,omitempty"`
	Session   *sessionView `json:"session,omitempty"`
	Remaining *int         `json:"remaining,omitempty"`
}

// ChatSocket serves the chat turn protocol over a WebSocket. Each client
// frame {"type":"chat","request":{...}} runs one turn; the server answers with
// chunk frames then done, or a single error / exhausted frame.
func (h *Handler) ChatSocket(w http.ResponseWriter, r *http.Request) {
	key, visitorID, tabID, ok := sessionKey(w, r)
	if !ok {
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns(h.origins),
	})
	if err != nil {
		h.logger.Warn("failed to accept websocket", "session_id", key, "error", err)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			h.logger.Debug("failed to close websocket", "session_id", key, "error", closeErr)
		}
	}()

	h.sockets.Register(key, ws)
	defer h.sockets.Unregister(key, ws)

	h.logger.Info("chat socket connected", "session_id", key, "ip", r.RemoteAddr)
	ctx := r.Context()
	for {
		var msg wsMessage
		if err := wsjson.Read(ctx, ws, &msg); err != nil {
			if websocket.CloseStatus(err) != -1 || errors.Is(err, context.Canceled) {
				h.logger.Debug("chat socket closed by client", "session_id", key)
			} else {
				h.logger.Warn("chat socket read failed", "session_id", key, "error", err)
			}
			return
		}

		switch msg.Type {
		case "ping":
			if err := wsjson.Write(ctx, ws, wsMessage{Type: "pong"}); err != nil {
				return
			}
		case "chat":
			if msg.Request == nil {
				if err := wsjson.Write(ctx, ws, wsMessage{Type: eventError, Message: "request is required"}); err != nil {
					return
				}
				continue
			}
			in := turnInput(r, *msg.Request, key, visitorID, tabID, "chat_ws")
			if !h.socketTurn(ctx, ws, in) {
				return
			}
		default:
			if err := wsjson.Write(ctx, ws, wsMessage{Type: eventError, Message: "unknown message type"}); err != nil {
				return
			}
		}
	}
}

// socketTurn runs one turn over ws and reports whether the connection is
// still usable.
func (h *Handler) socketTurn(ctx context.Context, ws *websocket.Conn, in conversation.TurnInput) bool {
	for ev, err := range h.conv.Turn(ctx, in) {
		if err != nil {
			if _, msg, isReq := requestError(err); isReq {
				return wsjson.Write(ctx, ws, wsMessage{Type: eventError, Message: msg}) == nil
			}
			event, payload := h.turnNotice(ctx, err, in.Language, in.SessionKey)
			remaining := payload.Remaining
			return wsjson.Write(ctx, ws, wsMessage{Type: event, Message: payload.Message, Remaining: &remaining}) == nil
		}
		if ev.Result != nil {
			view := h.view(ev.Result.Session)
			if err := wsjson.Write(ctx, ws, wsMessage{Type: eventDone, Reply: ev.Result.Reply, Session: &view}); err != nil {
				return false
			}
			continue
		}
		if err := wsjson.Write(ctx, ws, wsMessage{Type: eventChunk, Text: ev.Chunk}); err != nil {
			h.logger.Debug("chat socket write failed", "session_id", in.SessionKey, "error", err)
			return false
		}
	}
	return true
}

// originPatterns turns configured origins into host patterns for Accept.
// Same-host requests are always allowed by the websocket package.
func originPatterns(origins []string) []string {
	var out []string
	for _, o := range origins {
		if o == "*" {
			return []string{"*"}
		}
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			continue
		}
		out = append(out, strings.ToLower(u.Host))
	}
	return out
}
