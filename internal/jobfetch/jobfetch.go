// Package jobfetch downloads a job posting and reduces it to plain text.
package jobfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/comptoir-labs/comptoir/internal/domain"
	"github.com/comptoir-labs/comptoir/internal/prompt"
	"golang.org/x/net/html"
)

const (
	// DefaultTimeout bounds the whole fetch.
	DefaultTimeout = 15 * time.Second
	// UserAgent identifies us to job boards that reject bare clients.
	UserAgent = "Mozilla/5.0 (compatible; Comptoir/1.0)"

	maxBodyBytes = 2 << 20
)

// ErrInvalidURL rejects anything that is not an absolute http(s) URL.
var ErrInvalidURL = errors.New("invalid URL")

var whitespace = regexp.MustCompile(`\s+`)

// Fetcher retrieves job postings over HTTP.
type Fetcher struct {
	client  *http.Client
	maxRune int
}

// New creates a Fetcher. A nil client gets one with DefaultTimeout.
func New(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &Fetcher{client: client, maxRune: prompt.MaxJobContextChars}
}

// Fetch downloads rawURL and returns its readable text, whitespace
// collapsed and capped at the job context limit.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%d %s for url: %s", resp.StatusCode, http.StatusText(resp.StatusCode), u)
	}

	text, err := ExtractText(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return prompt.Truncate(text, f.maxRune), nil
}

// ExtractText tokenizes HTML and returns the text outside script and style
// elements with whitespace collapsed. Plain text passes through unchanged
// apart from whitespace.
func ExtractText(r io.Reader) (string, error) {
	z := html.NewTokenizer(r)
	var b strings.Builder
	skip := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return "", err
			}
			return strings.TrimSpace(whitespace.ReplaceAllString(b.String(), " ")), nil
		case html.StartTagToken:
			if name, _ := z.TagName(); isSkipped(name) {
				skip++
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			if name, _ := z.TagName(); isSkipped(name) && skip > 0 {
				skip--
			}
			b.WriteByte(' ')
		case html.SelfClosingTagToken:
			b.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func isSkipped(tag []byte) bool {
	switch string(tag) {
	case "script", "style":
		return true
	}
	return false
}

// Describe renders a fetch failure as the sentinel text the prompt assembler
// ignores.
func Describe(err error) string {
	return fmt.Sprintf("%s %v]", domain.FetchFailurePrefix, err)
}
