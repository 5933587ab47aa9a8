package session

import (
	"context"
	"time"
)

const sweepInterval = time.Minute

// ExpiryCallback is called for each session the sweeper removes.
type ExpiryCallback func(key string)

// StartSweeper runs a background goroutine that drops sessions idle for
// longer than ttl. Sessions with a running turn are skipped. It is a no-op when the store expires sessions itself.
func (m *Manager) StartSweeper(ctx context.Context, ttl time.Duration, onExpire ExpiryCallback) {
	sw, ok := m.store.(Sweeper)
	if !ok || ttl <= 0 {
		return
	}

	ticker := time.NewTicker(sweepInterval)
	go func() {
		defer ticker.Stop()
		m.logger.Info("session sweeper started", "interval", sweepInterval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				m.sweep(ctx, sw, ttl, onExpire)
			case <-ctx.Done():
				m.logger.Info("session sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func (m *Manager) sweep(ctx context.Context, sw Sweeper, ttl time.Duration, onExpire ExpiryCallback) int {
	expired, err := sw.Sweep(ctx, m.now().Add(-ttl), m.Busy)
	if err != nil {
		m.logger.Error("session sweep failed", "error", err)
		return 0
	}
	if len(expired) == 0 {
		return 0
	}

	for _, key := range expired {
		if onExpire != nil {
			onExpire(key)
		}
	}
	m.logger.Info("session sweep completed", "expired", len(expired))
	return len(expired)
}
