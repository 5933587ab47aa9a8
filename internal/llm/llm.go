// Package llm streams text completions from a language model.
package llm

import (
	"context"
	"errors"
	"iter"

	"github.com/comptoir-labs/comptoir/internal/domain"
)

var (
	// ErrAuth means the model API rejected our credentials.
	ErrAuth = errors.New("model authentication failed")
	// ErrAPI covers every other model API failure.
	ErrAPI = errors.New("model API failure")
)

// Request is one completion call.
type Request struct {
	Model           string
	MaxOutputTokens int
	System          string
	History         []domain.Message
}

// Generator produces a streamed completion. Implementations yield text chunks
// in order and end the sequence with a non-nil error on failure.
type Generator interface {
	Stream(ctx context.Context, req Request) iter.Seq2[string, error]
	Name() string
}

var (
	_ Generator = (*Gemini)(nil)
	_ Generator = (*Mock)(nil)
	_ Generator = Unavailable{}
)

// Collect drains a stream into a single string, stopping at the first error.
func Collect(seq iter.Seq2[string, error]) (string, error) {
	var out []byte
	var failure error
	seq(func(chunk string, err error) bool {
		if err != nil {
			failure = err
			return false
		}
		out = append(out, chunk...)
		return true
	})
	return string(out), failure
}
