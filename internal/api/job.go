package api

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/comptoir-labs/comptoir/internal/jobfetch"
)

type jobFetchRequest struct {
	URL string `json:"url"`
}

// FetchJob handles POST /api/job/fetch. A failed fetch is reported as a
// warning with 200 so the page can fall back to "no job context".
func (h *Handler) FetchJob(w http.ResponseWriter, r *http.Request) {
	key, _, _, ok := sessionKey(w, r)
	if !ok {
		return
	}
	var req jobFetchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rawURL := strings.TrimSpace(req.URL)
	if rawURL == "" {
		Error(w, http.StatusBadRequest, "url is required")
		return
	}

	text, err := h.jobs.Fetch(r.Context(), rawURL)
	if err != nil {
		h.logger.Warn("job fetch failed", "session_id", key, "url", rawURL, "error", err)
		JSON(w, http.StatusOK, map[string]string{"warning": jobfetch.Describe(err)})
		return
	}

	JSON(w, http.StatusOK, map[string]any{
		"text":  text,
		"chars": utf8.RuneCountInString(text),
	})
}
