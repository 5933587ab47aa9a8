package api

import (
	"net/http"

	"github.com/comptoir-labs/comptoir/internal/domain"
	"github.com/comptoir-labs/comptoir/internal/i18n"
	"github.com/go-chi/chi/v5"
)

type personaView struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Framings       []domain.Framing `json:"framings"`
	DefaultFraming string           `json:"default_framing"`
	ContactEmail   string           `json:"contact_email,omitempty"`
}

// GetConfig returns what the chat page needs to render its controls.
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	personas := make([]personaView, 0)
	if h.roster != nil {
		for _, p := range h.roster.All() {
			contact := p.ContactEmail
			if contact == "" {
				contact = h.contact
			}
			personas = append(personas, personaView{
				ID:             p.ID,
				Name:           p.Name,
				Framings:       p.Framings,
				DefaultFraming: p.DefaultFraming,
				ContactEmail:   contact,
			})
		}
	}

	policy := h.conv.Policy()
	JSON(w, http.StatusOK, map[string]any{
		"languages":        i18n.Languages,
		"default_language": i18n.Negotiate(r.Header.Get("Accept-Language")),
		"personas":         personas,
		"model":            h.model,
		"quotas": map[string]int{
			"free":     policy.FreeQuota,
			"unlocked": policy.UnlockedQuota,
		},
	})
}

// GetStrings returns the UI string table for {lang}. "auto" negotiates from
// Accept-Language; ?persona= fills in the persona's name.
func (h *Handler) GetStrings(w http.ResponseWriter, r *http.Request) {
	lang := chi.URLParam(r, "lang")
	if lang == "auto" {
		lang = i18n.Negotiate(r.Header.Get("Accept-Language"))
	}
	lang = i18n.Normalize(lang)
	strs := i18n.Lookup(lang)

	if id := r.URL.Query().Get("persona"); id != "" && h.roster != nil {
		p, err := h.roster.Get(id)
		if err != nil {
			Error(w, http.StatusNotFound, "unknown persona")
			return
		}
		strs = strs.WithName(p.Name)
	}

	JSON(w, http.StatusOK, map[string]any{
		"language": lang,
		"strings":  strs,
	})
}
