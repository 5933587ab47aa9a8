// Package session stores per-visitor interaction state for the lifetime of a
// browsing session and serializes turns on each session.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/comptoir-labs/comptoir/internal/domain"
)

var (
	// ErrNotFound is returned by a Store when no session exists under a key.
	ErrNotFound = errors.New("session not found")
	// ErrBusy means a turn holds the session's lock.
	ErrBusy = errors.New("a turn is already in progress for this session")
)

// Store persists sessions for their lifetime. Implementations return copies:
// mutating a loaded session has no effect until it is saved.
type Store interface {
	Load(ctx context.Context, key string) (*domain.Session, error)
	Save(ctx context.Context, s *domain.Session) error
	Delete(ctx context.Context, key string) error
}

// Sweeper is implemented by stores that need explicit idle expiry. Keys for
// which keep returns true are left in place.
type Sweeper interface {
	Sweep(ctx context.Context, idleSince time.Time, keep func(key string) bool) ([]string, error)
}

// Manager fronts a Store with get-or-create semantics and per-session turn
// locks. Locks are process-local even when the store is shared.
type Manager struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time

	mu   sync.Mutex
	busy map[string]struct{}
}

// NewManager creates a session manager over store.
func NewManager(store Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:  store,
		logger: logger,
		now:    time.Now,
		busy:   make(map[string]struct{}),
	}
}

// Key builds the store key for a visitor's browser tab.
func Key(visitorID, tabID string) string {
	return visitorID + ":" + tabID
}

// GetOrCreate loads the session under key, creating an empty one if absent.
func (m *Manager) GetOrCreate(ctx context.Context, key string) (*domain.Session, error) {
	s, err := m.store.Load(ctx, key)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	s = domain.NewSession(key, m.now())
	if err := m.store.Save(ctx, s); err != nil {
		return nil, err
	}
	m.logger.Debug("session created", "session_id", key)
	return s, nil
}

// Save stamps the session as active and writes it back.
func (m *Manager) Save(ctx context.Context, s *domain.Session) error {
	s.UpdatedAt = m.now()
	return m.store.Save(ctx, s)
}

// Reset ends the session under key. The next request starts a fresh one.
// It returns ErrBusy while a turn is running so the turn's commit cannot
// bring the old session back.
func (m *Manager) Reset(ctx context.Context, key string) error {
	release, ok := m.TryLock(key)
	if !ok {
		return ErrBusy
	}
	defer release()

	if err := m.store.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	m.logger.Info("session reset", "session_id", key)
	return nil
}

// TryLock claims the turn lock for key. It reports false when another turn on
// the same session is still running. The returned release func must be
// called exactly once.
func (m *Manager) TryLock(key string) (release func(), ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.busy[key]; taken {
		return nil, false
	}
	m.busy[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.busy, key)
			m.mu.Unlock()
		})
	}, true
}

// Busy reports whether a turn is running on key.
func (m *Manager) Busy(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, taken := m.busy[key]
	return taken
}
