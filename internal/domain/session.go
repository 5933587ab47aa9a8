// Package domain contains core domain types for the comptoir service.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a message.
type Role string

const (
	RoleVisitor Role = "visitor"
	RoleAgent   Role = "agent"
)

// Message is one immutable conversation entry. Order is significant: the
// sequence is replayed verbatim to the model as history.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMessage creates a message stamped with a fresh id.
func NewMessage(role Role, text string, now time.Time) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		CreatedAt: now,
	}
}

// Session holds one visitor's interaction state. It is owned by a single
// visitor session and never shared.
type Session struct {
	Key            string    `json:"key"`
	PersonaID      string    `json:"persona_id"`
	Messages       []Message `json:"messages"`
	MessageCount   int       `json:"message_count"`
	Unlocked       bool      `json:"unlocked"`
	EmailSubmitted bool      `json:"email_submitted"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewSession creates an empty, locked session.
func NewSession(key string, now time.Time) *Session {
	return &Session{
		Key:       key,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// History returns a copy of the message sequence.
func (s *Session) History() []Message {
	out := make([]Message, len(s.Messages))
	copy(out, s.Messages)
	return out
}

// SwitchPersona points the session at another persona. History about the
// previous persona is dropped; the counter and unlock state are kept.
// Returns true if the persona changed.
func (s *Session) SwitchPersona(personaID string) bool {
	if s.PersonaID == personaID {
		return false
	}
	if s.PersonaID != "" {
		s.Messages = nil
	}
	s.PersonaID = personaID
	return true
}

// Clone returns a deep copy, used by stores that hand out snapshots.
func (s *Session) Clone() *Session {
	c := *s
	c.Messages = s.History()
	return &c
}
