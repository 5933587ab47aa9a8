package llm

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"strings"

	"github.com/comptoir-labs/comptoir/internal/domain"
	"google.golang.org/genai"
)

// Gemini streams completions from the Gemini API.
type Gemini struct {
	client *genai.Client
	logger *slog.Logger
}

// NewGemini creates a Gemini client. An empty apiKey leaves credential
// resolution to the SDK (GOOGLE_API_KEY / GEMINI_API_KEY).
func NewGemini(ctx context.Context, apiKey string, logger *slog.Logger) (*Gemini, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{client: client, logger: logger}, nil
}

// Name identifies the provider.
func (g *Gemini) Name() string { return "gemini" }

// Stream sends the system instruction and history and yields text chunks.
func (g *Gemini) Stream(ctx context.Context, req Request) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		contents := make([]*genai.Content, 0, len(req.History))
		for _, m := range req.History {
			var role genai.Role = genai.RoleUser
			if m.Role == domain.RoleAgent {
				role = genai.RoleModel
			}
			contents = append(contents, genai.NewContentFromText(m.Text, role))
		}

		cfg := &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
			MaxOutputTokens:   int32(req.MaxOutputTokens),
		}

		for resp, err := range g.client.Models.GenerateContentStream(ctx, req.Model, contents, cfg) {
			if err != nil {
				g.logger.Error("gemini stream failed", "model", req.Model, "error", err)
				yield("", classify(err))
				return
			}
			if resp == nil {
				continue
			}
			if text := resp.Text(); text != "" {
				if !yield(text, nil) {
					return
				}
			}
		}
	}
}

func classify(err error) error {
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &apiErrPtr):
		apiErr = *apiErrPtr
	}
	if isAuthFailure(apiErr) {
		return fmt.Errorf("%w: %w", ErrAuth, err)
	}
	return fmt.Errorf("%w: %w", ErrAPI, err)
}

// isAuthFailure also covers the 400 INVALID_ARGUMENT the Gemini API returns
// for a malformed or revoked API key.
func isAuthFailure(e genai.APIError) bool {
	switch e.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true
	case http.StatusBadRequest:
		for _, d := range e.Details {
			if reason, _ := d["reason"].(string); reason == "API_KEY_INVALID" {
				return true
			}
		}
		return strings.Contains(e.Message, "API key not valid")
	}
	return false
}
