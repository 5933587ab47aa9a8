package api

import (
	"net/http"

	"github.com/comptoir-labs/comptoir/internal/domain"
	"github.com/comptoir-labs/comptoir/internal/gate"
)

// sessionView is the visitor-visible state of a session.
type sessionView struct {
	PersonaID      string            `json:"persona_id"`
	Messages       []domain.Message  `json:"messages"`
	MessageCount   int               `json:"message_count"`
	Remaining      int               `json:"remaining"`
	Exhausted      bool              `json:"exhausted"`
	Unlocked       bool              `json:"unlocked"`
	EmailSubmitted bool              `json:"email_submitted"`
	Tier           domain.AccessTier `json:"tier"`
	EstimatedCost  float64           `json:"estimated_cost"`
}

func newSessionView(policy gate.Policy, pricing gate.Pricing, s *domain.Session) sessionView {
	return sessionView{
		PersonaID:      s.PersonaID,
		Messages:       s.History(),
		MessageCount:   s.MessageCount,
		Remaining:      policy.Remaining(s),
		Exhausted:      policy.Exhausted(s),
		Unlocked:       s.Unlocked,
		EmailSubmitted: s.EmailSubmitted,
		Tier:           policy.Evaluate(s),
		EstimatedCost:  pricing.EstimatedCost(s.MessageCount),
	}
}

func (h *Handler) view(s *domain.Session) sessionView {
	return newSessionView(h.conv.Policy(), h.pricing, s)
}

// GetSession returns the caller's session, creating an empty one if needed.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	key, _, _, ok := sessionKey(w, r)
	if !ok {
		return
	}
	sess, err := h.conv.Snapshot(r.Context(), key)
	if err != nil {
		h.stateError(w, err, key)
		return
	}
	JSON(w, http.StatusOK, h.view(sess))
}

// ResetSession ends the caller's session. The next request starts over with
// an empty history and a zero counter.
func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	key, _, _, ok := sessionKey(w, r)
	if !ok {
		return
	}
	if err := h.sessions.Reset(r.Context(), key); err != nil {
		h.stateError(w, err, key)
		return
	}
	h.sockets.CloseSession(key)
	h.logger.Info("session reset", "session_id", key)
	JSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

type personaRequest struct {
	PersonaID string `json:"persona_id"`
}

// SelectPersona switches the caller's session to another persona.
func (h *Handler) SelectPersona(w http.ResponseWriter, r *http.Request) {
	key, _, _, ok := sessionKey(w, r)
	if !ok {
		return
	}
	var req personaRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.PersonaID == "" {
		Error(w, http.StatusBadRequest, "persona_id is required")
		return
	}
	sess, err := h.conv.SelectPersona(r.Context(), key, req.PersonaID)
	if err != nil {
		h.stateError(w, err, key)
		return
	}
	JSON(w, http.StatusOK, h.view(sess))
}
