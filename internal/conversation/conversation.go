// Package conversation drives one visitor turn: gate check, prompt assembly,
// model streaming and the history commit.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/comptoir-labs/comptoir/internal/convlog"
	"github.com/comptoir-labs/comptoir/internal/domain"
	"github.com/comptoir-labs/comptoir/internal/gate"
	"github.com/comptoir-labs/comptoir/internal/i18n"
	"github.com/comptoir-labs/comptoir/internal/llm"
	"github.com/comptoir-labs/comptoir/internal/persona"
	"github.com/comptoir-labs/comptoir/internal/prompt"
	"github.com/comptoir-labs/comptoir/internal/session"
)

var (
	// ErrQuotaExhausted means the session used up its tier's turns.
	ErrQuotaExhausted = errors.New("message quota exhausted")
	// ErrTurnInProgress means another turn on the same session is running.
	ErrTurnInProgress = session.ErrBusy
	// ErrEmptyMessage rejects blank visitor input.
	ErrEmptyMessage = errors.New("message is required")
	// ErrUnknownFraming rejects a framing label the persona does not define.
	ErrUnknownFraming = errors.New("unknown framing")
	// ErrEmptyReply means the model finished without producing text.
	ErrEmptyReply = errors.New("model returned an empty reply")
)

// Sessions is the subset of session.Manager the driver needs.
type Sessions interface {
	GetOrCreate(ctx context.Context, key string) (*domain.Session, error)
	Save(ctx context.Context, s *domain.Session) error
	TryLock(key string) (release func(), ok bool)
}

var _ Sessions = (*session.Manager)(nil)

// Config holds driver settings.
type Config struct {
	Model  string
	Policy gate.Policy
}

// Service runs conversation turns.
type Service struct {
	sessions Sessions
	roster   *persona.Roster
	gen      llm.Generator
	cfg      Config
	log      convlog.Logger
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a conversation driver.
func NewService(sessions Sessions, roster *persona.Roster, gen llm.Generator, cfg Config, transcript convlog.Logger, logger *slog.Logger) *Service {
	if transcript == nil {
		transcript = convlog.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		sessions: sessions,
		roster:   roster,
		gen:      gen,
		cfg:      cfg,
		log:      transcript,
		logger:   logger,
		now:      time.Now,
	}
}

// Policy returns the gate policy in force.
func (s *Service) Policy() gate.Policy { return s.cfg.Policy }

// TurnInput is one visitor message plus the context chosen in the UI.
type TurnInput struct {
	SessionKey string
	VisitorID  string
	TabID      string
	PersonaID  string
	Framing    string
	JobContext string
	Language   string
	Message    string
	RequestID  string
	Channel    string
}

// Event is one item of a turn stream: either a text chunk or, last, the
// committed result.
type Event struct {
	Chunk  string
	Result *Result
}

// Result describes the session after a committed turn.
type Result struct {
	Reply     string
	Session   *domain.Session
	Tier      domain.AccessTier
	Remaining int
	Exhausted bool
}

// Turn streams one visitor turn. Chunks are yielded as the model produces
// them; the final event carries the Result once history and counter have
// been committed. Any error, an empty reply, or the consumer stopping early
// leaves the session's history and counter untouched.
func (s *Service) Turn(ctx context.Context, in TurnInput) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		text := strings.TrimSpace(in.Message)
		if text == "" {
			yield(Event{}, ErrEmptyMessage)
			return
		}

		release, ok := s.sessions.TryLock(in.SessionKey)
		if !ok {
			yield(Event{}, ErrTurnInProgress)
			return
		}
		defer release()

		sess, err := s.sessions.GetOrCreate(ctx, in.SessionKey)
		if err != nil {
			yield(Event{}, fmt.Errorf("load session: %w", err))
			return
		}

		p, err := s.roster.Get(in.PersonaID)
		if err != nil {
			yield(Event{}, err)
			return
		}
		framing, ok := p.Framing(in.Framing)
		if !ok && in.Framing != "" {
			yield(Event{}, fmt.Errorf("%w: %s", ErrUnknownFraming, in.Framing))
			return
		}

		if sess.SwitchPersona(p.ID) {
			if err := s.sessions.Save(ctx, sess); err != nil {
				yield(Event{}, fmt.Errorf("save session: %w", err))
				return
			}
		}

		policy := s.cfg.Policy
		tier := policy.Evaluate(sess)
		if !policy.Admit(sess, tier) {
			yield(Event{}, ErrQuotaExhausted)
			return
		}

		in.Language = i18n.Normalize(in.Language)
		input := prompt.Input{
			PersonaName: p.Name,
			Guidance:    p.Guidance,
			Content:     p.Content,
			JobContext:  in.JobContext,
			Language:    in.Language,
			Verbosity:   tier.Verbosity,
		}
		if ok {
			input.Framing = &framing
		}

		now := s.now()
		visitorMsg := domain.NewMessage(domain.RoleVisitor, text, now)
		history := append(sess.History(), visitorMsg)

		s.logMessage(in, p.ID, convlog.DirectionInbound, "visitor_message", text, nil)

		req := llm.Request{
			Model:           s.cfg.Model,
			MaxOutputTokens: tier.MaxResponseTokens,
			System:          prompt.Assemble(input),
			History:         history,
		}

		var reply strings.Builder
		chunks := 0
		for chunk, err := range s.gen.Stream(ctx, req) {
			if err != nil {
				s.logger.Error("model stream failed",
					"session_id", in.SessionKey,
					"provider", s.gen.Name(),
					"chunks", chunks,
					"error", err)
				s.logReply(in, p.ID, reply.String(), chunks, err)
				yield(Event{}, err)
				return
			}
			if chunk == "" {
				continue
			}
			chunks++
			reply.WriteString(chunk)
			if !yield(Event{Chunk: chunk}, nil) {
				s.logger.Info("turn abandoned by client", "session_id", in.SessionKey, "chunks", chunks)
				s.logReply(in, p.ID, reply.String(), chunks, context.Canceled)
				return
			}
		}

		full := reply.String()
		if strings.TrimSpace(full) == "" {
			s.logReply(in, p.ID, full, chunks, ErrEmptyReply)
			yield(Event{}, fmt.Errorf("%w: %w", llm.ErrAPI, ErrEmptyReply))
			return
		}

		sess.Messages = append(sess.Messages, visitorMsg, domain.NewMessage(domain.RoleAgent, full, s.now()))
		policy.RecordTurn(sess)
		if err := s.sessions.Save(ctx, sess); err != nil {
			yield(Event{}, fmt.Errorf("save session: %w", err))
			return
		}
		s.logReply(in, p.ID, full, chunks, nil)

		s.logger.Info("turn completed",
			"session_id", in.SessionKey,
			"persona_id", p.ID,
			"message_count", sess.MessageCount,
			"unlocked", sess.Unlocked,
			"chunks", chunks)

		yield(Event{Result: &Result{
			Reply:     full,
			Session:   sess,
			Tier:      tier,
			Remaining: policy.Remaining(sess),
			Exhausted: policy.Exhausted(sess),
		}}, nil)
	}
}

func (s *Service) logMessage(in TurnInput, personaID, direction, eventType, content string, meta map[string]any) {
	if meta == nil {
		meta = map[string]any{}
	}
	meta["request_id"] = in.RequestID
	meta["language"] = in.Language
	s.log.Log(convlog.Event{
		Timestamp:  s.now().UTC().Format(time.RFC3339Nano),
		VisitorID:  in.VisitorID,
		SessionID:  in.TabID,
		PersonaID:  personaID,
		Channel:    in.Channel,
		Direction:  direction,
		EventType:  eventType,
		ContentRaw: content,
		Meta:       meta,
	})
}

func (s *Service) logReply(in TurnInput, personaID, content string, chunks int, streamErr error) {
	meta := map[string]any{
		"stream_chunks": chunks,
		"partial":       streamErr != nil,
	}
	if streamErr != nil {
		meta["stream_error"] = streamErr.Error()
	}
	s.logMessage(in, personaID, convlog.DirectionOutbound, "agent_message", content, meta)
}
