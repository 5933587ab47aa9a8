package api

import (
	"net/http"
	"net/mail"
	"strings"

	"github.com/comptoir-labs/comptoir/internal/domain"
	"github.com/comptoir-labs/comptoir/internal/i18n"
)

type unlockRequest struct {
	Passcode string `json:"passcode"`
	Language string `json:"language"`
}

// Unlock handles POST /api/unlock. A wrong passcode is not an HTTP error:
// the visitor gets the localized rejection and the session is unchanged.
// A blank passcode gets no message at all.
func (h *Handler) Unlock(w http.ResponseWriter, r *http.Request) {
	key, _, _, ok := sessionKey(w, r)
	if !ok {
		return
	}
	var req unlockRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sess, matched, err := h.conv.Unlock(r.Context(), key, req.Passcode, h.codes)
	if err != nil {
		h.stateError(w, err, key)
		return
	}

	strs := i18n.Lookup(req.Language)
	var message string
	switch {
	case matched:
		message = strs.PasscodeSuccess
	case strings.TrimSpace(req.Passcode) != "":
		message = strs.PasscodeInvalid
	}
	JSON(w, http.StatusOK, map[string]any{
		"unlocked": sess.Unlocked,
		"message":  message,
		"session":  h.view(sess),
	})
}

type accessRequest struct {
	Email     string `json:"email"`
	PersonaID string `json:"persona_id"`
	Language  string `json:"language"`
}

// validEmail accepts a bare address with a dotted domain.
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	return at > 0 && strings.Contains(s[at+1:], ".")
}

// RequestAccess handles POST /api/access-request: it records the lead and
// marks the session so the page stops asking.
func (h *Handler) RequestAccess(w http.ResponseWriter, r *http.Request) {
	key, visitorID, _, ok := sessionKey(w, r)
	if !ok {
		return
	}
	var req accessRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	lang := i18n.Normalize(req.Language)
	strs := i18n.Lookup(lang)
	email := strings.TrimSpace(req.Email)
	if !validEmail(email) {
		JSON(w, http.StatusBadRequest, map[string]string{
			"error":   "invalid email",
			"message": strs.EmailInvalid,
		})
		return
	}

	lead := &domain.AccessRequest{
		Email:      email,
		VisitorID:  visitorID,
		SessionKey: key,
		PersonaID:  req.PersonaID,
		Language:   lang,
	}
	if err := h.repo.SaveAccessRequest(r.Context(), lead); err != nil {
		h.stateError(w, err, key)
		return
	}

	sess, err := h.conv.MarkEmailSubmitted(r.Context(), key)
	if err != nil {
		h.stateError(w, err, key)
		return
	}

	h.logger.Info("access requested", "session_id", key, "request_id", lead.ID, "persona_id", req.PersonaID)
	JSON(w, http.StatusCreated, map[string]any{
		"id":              lead.ID,
		"email_submitted": sess.EmailSubmitted,
		"message":         strs.EmailThanks,
	})
}
