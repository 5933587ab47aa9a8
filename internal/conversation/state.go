package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/comptoir-labs/comptoir/internal/domain"
	"github.com/comptoir-labs/comptoir/internal/gate"
)

// Snapshot returns the session under key, creating it if needed.
func (s *Service) Snapshot(ctx context.Context, key string) (*domain.Session, error) {
	return s.sessions.GetOrCreate(ctx, key)
}

// Unlock checks candidate against codes and, on a match, moves the session
// to the unlocked tier. It reports whether the session is unlocked afterwards
// and whether this call changed anything.
func (s *Service) Unlock(ctx context.Context, key, candidate string, codes gate.Codes) (sess *domain.Session, matched bool, err error) {
	sess, err = s.mutate(ctx, key, func(sess *domain.Session) bool {
		matched = gate.Unlock(sess, candidate, codes)
		return matched
	})
	if err != nil {
		return nil, false, err
	}
	if matched {
		s.logger.Info("session unlocked", "session_id", key, "message_count", sess.MessageCount)
	} else if strings.TrimSpace(candidate) != "" {
		s.logger.Info("passcode rejected", "session_id", key)
	}
	return sess, matched, nil
}

// MarkEmailSubmitted records that the visitor left an email address.
func (s *Service) MarkEmailSubmitted(ctx context.Context, key string) (*domain.Session, error) {
	return s.mutate(ctx, key, func(sess *domain.Session) bool {
		if sess.EmailSubmitted {
			return false
		}
		sess.EmailSubmitted = true
		return true
	})
}

// SelectPersona points the session at personaID, clearing history when the
// persona changes.
func (s *Service) SelectPersona(ctx context.Context, key, personaID string) (*domain.Session, error) {
	p, err := s.roster.Get(personaID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, key, func(sess *domain.Session) bool {
		return sess.SwitchPersona(p.ID)
	})
}

// mutate applies fn under the session's turn lock so it cannot race a
// running turn's commit. The session is saved only when fn reports a change.
func (s *Service) mutate(ctx context.Context, key string, fn func(*domain.Session) bool) (*domain.Session, error) {
	release, ok := s.sessions.TryLock(key)
	if !ok {
		return nil, ErrTurnInProgress
	}
	defer release()

	sess, err := s.sessions.GetOrCreate(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if fn(sess) {
		if err := s.sessions.Save(ctx, sess); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
	}
	return sess, nil
}
