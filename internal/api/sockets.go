package api

import (
	"log/slog"
	"sync"

	"github.com/coder/websocket"
)

// SocketRegistry tracks open chat sockets per session key so they can be
// closed when the session ends.
type SocketRegistry struct {
	mu     sync.RWMutex
	active map[string]map[*websocket.Conn]struct{}
}

// NewSocketRegistry creates an empty registry.
func NewSocketRegistry() *SocketRegistry {
	return &SocketRegistry{
		active: make(map[string]map[*websocket.Conn]struct{}),
	}
}

// Count returns how many sockets are open for key.
func (m *SocketRegistry) Count(key string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.active[key])
}

// Register adds conn under key.
func (m *SocketRegistry) Register(key string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.active[key]; !exists {
		m.active[key] = make(map[*websocket.Conn]struct{})
	}
	m.active[key][conn] = struct{}{}
	slog.Debug("Chat socket registered", "session_id", key)
}

// Unregister removes conn from key.
func (m *SocketRegistry) Unregister(key string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if conns, ok := m.active[key]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(m.active, key)
		}
	}
}

// CloseSession closes every socket open for key.
func (m *SocketRegistry) CloseSession(key string) {
	m.mu.Lock()
	conns := m.active[key]
	delete(m.active, key)
	m.mu.Unlock()

	for conn := range conns {
		_ = conn.Close(websocket.StatusNormalClosure, "session ended")
	}
	if len(conns) > 0 {
		slog.Info("Chat sockets closed", "session_id", key, "count", len(conns))
	}
}
