package session

import (
	"context"
	"sync"
	"time"

	"github.com/comptoir-labs/comptoir/internal/domain"
)

// Memory is an in-process Store.
type Memory struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{sessions: make(map[string]*domain.Session)}
}

// Load returns a copy of the session under key.
func (m *Memory) Load(_ context.Context, key string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[key]
	if !ok {
		return nil, ErrNotFound
	}
	return s.Clone(), nil
}

// Save stores a copy of s.
func (m *Memory) Save(_ context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[s.Key] = s.Clone()
	return nil
}

// Delete removes the session under key.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[key]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, key)
	return nil
}

// Len returns the number of live sessions.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep drops sessions not updated since idleSince and returns their keys.
func (m *Memory) Sweep(_ context.Context, idleSince time.Time, keep func(key string) bool) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expired []string
	for key, s := range m.sessions {
		if s.UpdatedAt.Before(idleSince) && (keep == nil || !keep(key)) {
			expired = append(expired, key)
			delete(m.sessions, key)
		}
	}
	return expired, nil
}
