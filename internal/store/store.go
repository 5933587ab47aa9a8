// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"errors"

	"github.com/comptoir-labs/comptoir/internal/domain"
)

// ErrBusy means the database was locked by another writer.
var ErrBusy = errors.New("database busy")

// Repository persists access requests left by visitors. Conversation state
// is never stored here.
type Repository interface {
	// SaveAccessRequest records a lead.
	SaveAccessRequest(ctx context.Context, req *domain.AccessRequest) error

	// ListAccessRequests returns the newest requests first, at most limit.
	ListAccessRequests(ctx context.Context, limit int) ([]*domain.AccessRequest, error)

	// CountAccessRequestsByVisitor returns how many requests a visitor made.
	CountAccessRequestsByVisitor(ctx context.Context, visitorID string) (int, error)

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
