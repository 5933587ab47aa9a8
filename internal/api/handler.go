// Package api provides HTTP handlers for the comptoir API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"iter"
	"log/slog"
	"net/http"

	"github.com/comptoir-labs/comptoir/internal/conversation"
	"github.com/comptoir-labs/comptoir/internal/domain"
	"github.com/comptoir-labs/comptoir/internal/gate"
	"github.com/comptoir-labs/comptoir/internal/identity"
	"github.com/comptoir-labs/comptoir/internal/pdf"
	"github.com/comptoir-labs/comptoir/internal/persona"
	"github.com/comptoir-labs/comptoir/internal/plan"
	"github.com/comptoir-labs/comptoir/internal/session"
	"github.com/comptoir-labs/comptoir/internal/store"
	"github.com/go-chi/chi/v5"
)

const maxRequestBodySize = 1 << 20

// Conversation is the subset of conversation.Service the handlers drive.
type Conversation interface {
	Turn(ctx context.Context, in conversation.TurnInput) iter.Seq2[conversation.Event, error]
	Snapshot(ctx context.Context, key string) (*domain.Session, error)
	Unlock(ctx context.Context, key, candidate string, codes gate.Codes) (*domain.Session, bool, error)
	MarkEmailSubmitted(ctx context.Context, key string) (*domain.Session, error)
	SelectPersona(ctx context.Context, key, personaID string) (*domain.Session, error)
	Policy() gate.Policy
}

var _ Conversation = (*conversation.Service)(nil)

// SessionResetter ends a session so the next request starts a fresh one.
type SessionResetter interface {
	Reset(ctx context.Context, key string) error
}

var _ SessionResetter = (*session.Manager)(nil)

// JobFetcher downloads a job posting as plain text.
type JobFetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// Deps wires the handler to its collaborators.
type Deps struct {
	Conversation   Conversation
	Sessions       SessionResetter
	Roster         *persona.Roster
	Repo           store.Repository
	Jobs           JobFetcher
	Plans          *plan.Book
	PDF            *pdf.Renderer
	Codes          gate.Codes
	Pricing        gate.Pricing
	Model          string
	ContactEmail   string
	AllowedOrigins []string
	Sockets        *SocketRegistry
	Logger         *slog.Logger
}

// Handler serves the visitor-facing API.
type Handler struct {
	conv     Conversation
	sessions SessionResetter
	roster   *persona.Roster
	repo     store.Repository
	jobs     JobFetcher
	plans    *plan.Book
	pdf      *pdf.Renderer
	codes    gate.Codes
	pricing  gate.Pricing
	model    string
	contact  string
	origins  []string
	sockets  *SocketRegistry
	logger   *slog.Logger
}

// NewHandler creates a Handler from deps.
func NewHandler(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	renderer := d.PDF
	if renderer == nil {
		renderer = pdf.New()
	}
	sockets := d.Sockets
	if sockets == nil {
		sockets = NewSocketRegistry()
	}
	return &Handler{
		conv:     d.Conversation,
		sessions: d.Sessions,
		roster:   d.Roster,
		repo:     d.Repo,
		jobs:     d.Jobs,
		plans:    d.Plans,
		pdf:      renderer,
		codes:    d.Codes,
		pricing:  d.Pricing,
		model:    d.Model,
		contact:  d.ContactEmail,
		origins:  d.AllowedOrigins,
		sockets:  sockets,
		logger:   logger,
	}
}

// RegisterRoutes registers the API and WebSocket routes. The identity
// middleware must run before these handlers.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/config", h.GetConfig)
		r.Get("/i18n/{lang}", h.GetStrings)

		r.Get("/session", h.GetSession)
		r.Post("/session/reset", h.ResetSession)
		r.Post("/session/persona", h.SelectPersona)

		r.Post("/chat", h.HandleChat)
		r.Post("/unlock", h.Unlock)
		r.Post("/access-request", h.RequestAccess)
		r.Post("/job/fetch", h.FetchJob)

		r.Get("/plan", h.GetPlan)
		r.Get("/plan.pdf", h.PlanPDF)
	})
	r.Get("/ws/chat", h.ChatSocket)
}

// CloseSession closes any chat sockets still open for key. It matches
// session.ExpiryCallback so the sweeper can call it.
func (h *Handler) CloseSession(key string) {
	h.sockets.CloseSession(key)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// decodeJSON reads a size-limited JSON body into v and writes the error
// response itself when it fails.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// sessionKey derives the session store key for the request, writing a 401
// when the visitor is unknown.
func sessionKey(w http.ResponseWriter, r *http.Request) (key, visitorID, tabID string, ok bool) {
	visitorID = identity.VisitorIDFromContext(r.Context())
	if visitorID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return "", "", "", false
	}
	tabID = identity.SessionIDFromContext(r.Context())
	return session.Key(visitorID, tabID), visitorID, tabID, true
}

// stateError maps session mutation failures onto HTTP responses.
func (h *Handler) stateError(w http.ResponseWriter, err error, key string) {
	switch {
	case errors.Is(err, conversation.ErrTurnInProgress):
		Error(w, http.StatusConflict, "a reply is still streaming for this session")
	case errors.Is(err, persona.ErrNotFound):
		Error(w, http.StatusBadRequest, "unknown persona")
	case errors.Is(err, store.ErrBusy):
		Error(w, http.StatusServiceUnavailable, "storage busy")
	default:
		h.logger.Error("session operation failed", "session_id", key, "error", err)
		Error(w, http.StatusInternalServerError, "internal error")
	}
}
