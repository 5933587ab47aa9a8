package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/comptoir-labs/comptoir/internal/conversation"
	"github.com/comptoir-labs/comptoir/internal/i18n"
	"github.com/comptoir-labs/comptoir/internal/llm"
	"github.com/comptoir-labs/comptoir/internal/persona"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// SSE and WebSocket event names.
const (
	eventChunk     = "chunk"
	eventDone      = "done"
	eventError     = "error"
	eventExhausted = "exhausted"
)

// ChatRequest is one visitor message plus the context selected in the UI.
type ChatRequest struct {
	Message    string `json:"message"`
	PersonaID  string `json:"persona_id"`
	Framing    string `json:"framing"`
	JobContext string `json:"job_context"`
	Language   string `json:"language"`
}

type chunkPayload struct {
	Text string `json:"text"`
}

type donePayload struct {
	Reply string `json:"reply"`
	sessionView
}

type noticePayload struct {
	Message   string `json:"message"`
	Remaining int    `json:"remaining"`
}

// turnInput builds the driver input for a request.
func turnInput(r *http.Request, req ChatRequest, key, visitorID, tabID, channel string) conversation.TurnInput {
	lang := req.Language
	if lang == "" || lang == "auto" {
		lang = i18n.Negotiate(r.Header.Get("Accept-Language"))
	}
	return conversation.TurnInput{
		SessionKey: key,
		VisitorID:  visitorID,
		TabID:      tabID,
		PersonaID:  req.PersonaID,
		Framing:    req.Framing,
		JobContext: req.JobContext,
		Language:   i18n.Normalize(lang),
		Message:    req.Message,
		RequestID:  chiMiddleware.GetReqID(r.Context()),
		Channel:    channel,
	}
}

// requestError maps turn errors that mean the request itself was unusable.
// They are answered with a plain JSON error before any stream starts.
func requestError(err error) (int, string, bool) {
	switch {
	case errors.Is(err, conversation.ErrEmptyMessage):
		return http.StatusBadRequest, "message is required", true
	case errors.Is(err, conversation.ErrUnknownFraming):
		return http.StatusBadRequest, "unknown framing", true
	case errors.Is(err, persona.ErrNotFound):
		return http.StatusBadRequest, "unknown persona", true
	case errors.Is(err, conversation.ErrTurnInProgress):
		return http.StatusConflict, "a reply is still streaming for this session", true
	}
	return 0, "", false
}

// turnNotice renders a stream-level failure as an event name and the
// visitor-facing payload. Model failures never leak provider details.
func (h *Handler) turnNotice(ctx context.Context, err error, lang, key string) (string, noticePayload) {
	strs := i18n.Lookup(lang)
	policy := h.conv.Policy()
	if errors.Is(err, conversation.ErrQuotaExhausted) {
		sess, snapErr := h.conv.Snapshot(context.WithoutCancel(ctx), key)
		quota := policy.FreeQuota
		if snapErr == nil {
			quota = policy.Evaluate(sess).Quota
		}
		return eventExhausted, noticePayload{Message: strs.ExhaustedText(quota)}
	}

	if errors.Is(err, llm.ErrAuth) {
		h.logger.Error("model authentication failed", "session_id", key, "error", err)
	} else if !errors.Is(err, llm.ErrAPI) {
		h.logger.Error("turn failed", "session_id", key, "error", err)
	}
	remaining := -1
	if sess, snapErr := h.conv.Snapshot(context.WithoutCancel(ctx), key); snapErr == nil {
		remaining = policy.Remaining(sess)
	}
	return eventError, noticePayload{Message: strs.ModelError, Remaining: remaining}
}

// HandleChat handles POST /api/chat, streaming the reply as server-sent
// events: chunk* then done, or a single error / exhausted event.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	key, visitorID, tabID, ok := sessionKey(w, r)
	if !ok {
		return
	}

	var req ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		Error(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	in := turnInput(r, req, key, visitorID, tabID, "chat_http")
	h.logger.Info("chat request",
		"session_id", key,
		"persona_id", req.PersonaID,
		"language", in.Language,
		"message_length", len(req.Message),
		"request_id", in.RequestID,
	)

	started := false
	start := func() {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		started = true
	}

	for ev, err := range h.conv.Turn(r.Context(), in) {
		if err != nil {
			if !started {
				if status, msg, isReq := requestError(err); isReq {
					Error(w, status, msg)
					return
				}
				start()
			}
			event, payload := h.turnNotice(r.Context(), err, in.Language, key)
			if writeErr := writeSSEJSON(w, event, payload); writeErr != nil {
				h.logger.Warn("failed to write SSE event", "event", event, "error", writeErr)
				return
			}
			flusher.Flush()
			return
		}

		if !started {
			start()
		}

		if ev.Result != nil {
			payload := donePayload{Reply: ev.Result.Reply, sessionView: h.view(ev.Result.Session)}
			if err := writeSSEJSON(w, eventDone, payload); err != nil {
				h.logger.Warn("failed to write SSE done event", "error", err)
				return
			}
			flusher.Flush()
			continue
		}

		if err := writeSSEJSON(w, eventChunk, chunkPayload{Text: ev.Chunk}); err != nil {
			// Breaking out abandons the turn; nothing is committed.
			h.logger.Warn("failed to write SSE chunk", "session_id", key, "error", err)
			return
		}
		flusher.Flush()
	}
}

func writeSSE(w io.Writer, event, data string) error {
	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}

func writeSSEJSON(w io.Writer, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event, err)
	}
	return writeSSE(w, event, string(data))
}
