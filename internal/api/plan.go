package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/comptoir-labs/comptoir/internal/i18n"
)

func (h *Handler) planLanguage(r *http.Request) string {
	lang := r.URL.Query().Get("lang")
	if lang == "" || lang == "auto" {
		lang = i18n.Negotiate(r.Header.Get("Accept-Language"))
	}
	return i18n.Normalize(lang)
}

// GetPlan returns the marketing plan table for ?lang= as JSON.
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, h.plans.Get(h.planLanguage(r)))
}

// PlanPDF renders the marketing plan for ?lang= as a PDF download.
func (h *Handler) PlanPDF(w http.ResponseWriter, r *http.Request) {
	p := h.plans.Get(h.planLanguage(r))

	var buf bytes.Buffer
	if err := h.pdf.Render(&buf, p); err != nil {
		h.logger.Error("render plan pdf failed", "language", p.Language, "error", err)
		Error(w, http.StatusInternalServerError, "failed to render pdf")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="marketing-plan-%s.pdf"`, p.Language))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Debug("write plan pdf failed", "error", err)
	}
}
