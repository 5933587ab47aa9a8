package llm

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/comptoir-labs/comptoir/internal/domain"
)

// Mock is a deterministic generator for local development. It answers by
// quoting the last visitor message, one word per chunk.
type Mock struct{}

// NewMock creates a mock generator.
func NewMock() *Mock { return &Mock{} }

// Name identifies the provider.
func (m *Mock) Name() string { return "mock" }

// Stream yields the canned reply word by word.
func (m *Mock) Stream(ctx context.Context, req Request) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		var last string
		for i := len(req.History) - 1; i >= 0; i-- {
			if req.History[i].Role == domain.RoleVisitor {
				last = req.History[i].Text
				break
			}
		}
		reply := fmt.Sprintf("(mock, %d tokens max) You asked: %q", req.MaxOutputTokens, last)
		words := strings.SplitAfter(reply, " ")
		for _, w := range words {
			if err := ctx.Err(); err != nil {
				yield("", fmt.Errorf("%w: %w", ErrAPI, err))
				return
			}
			if !yield(w, nil) {
				return
			}
		}
	}
}

// Unavailable stands in when no model client could be built. Every call
// fails with ErrAuth so the visitor sees the generic error and no quota is
// spent.
type Unavailable struct {
	Reason error
}

// Name identifies the provider.
func (u Unavailable) Name() string { return "unavailable" }

// Stream fails immediately.
func (u Unavailable) Stream(context.Context, Request) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		yield("", fmt.Errorf("%w: %w", ErrAuth, u.Reason))
	}
}
