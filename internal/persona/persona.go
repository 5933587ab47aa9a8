// Package persona loads the roster of personas and their content documents.
// The roster is read once at startup and is immutable afterwards, so it can be
// shared by every session without locking.
package persona

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/comptoir-labs/comptoir/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed example
var exampleFS embed.FS

// ErrNotFound is returned when a persona id is not in the roster.
var ErrNotFound = errors.New("persona not found")

// Roster is the validated, ordered set of personas.
type Roster struct {
	order []*domain.Persona
	byID  map[string]*domain.Persona
}

type rosterFile struct {
	Personas []personaEntry `yaml:"personas"`
}

type personaEntry struct {
	ID             string           `yaml:"id"`
	Name           string           `yaml:"name"`
	Content        string           `yaml:"content"`
	ContentFile    string           `yaml:"content_file"`
	Guidance       string           `yaml:"guidance"`
	ContactEmail   string           `yaml:"contact_email"`
	DefaultFraming string           `yaml:"default_framing"`
	Framings       []domain.Framing `yaml:"framings"`
}

// Load reads a roster file from disk. Content files are resolved relative to
// the roster's directory.
func Load(rosterPath string) (*Roster, error) {
	dir, name := filepath.Split(rosterPath)
	if dir == "" {
		dir = "."
	}
	return LoadFS(os.DirFS(dir), name)
}

// LoadExample returns the embedded example roster.
func LoadExample() (*Roster, error) {
	return LoadFS(exampleFS, "example/roster.yaml")
}

// LoadFS reads a roster from fsys.
func LoadFS(fsys fs.FS, name string) (*Roster, error) {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}

	var file rosterFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse roster %s: %w", name, err)
	}
	if len(file.Personas) == 0 {
		return nil, fmt.Errorf("roster %s: no personas defined", name)
	}

	base := path.Dir(name)
	r := &Roster{byID: make(map[string]*domain.Persona, len(file.Personas))}
	var errs []error
	for i, e := range file.Personas {
		p, err := e.build(fsys, base)
		if err != nil {
			errs = append(errs, fmt.Errorf("persona %d (%s): %w", i, e.ID, err))
			continue
		}
		if _, dup := r.byID[p.ID]; dup {
			errs = append(errs, fmt.Errorf("persona %d: duplicate id %q", i, p.ID))
			continue
		}
		r.byID[p.ID] = p
		r.order = append(r.order, p)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid roster %s: %w", name, err)
	}
	return r, nil
}

func (e personaEntry) build(fsys fs.FS, base string) (*domain.Persona, error) {
	var errs []error
	if strings.TrimSpace(e.ID) == "" {
		errs = append(errs, errors.New("id is required"))
	}
	if strings.TrimSpace(e.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}

	content := e.Content
	switch {
	case e.ContentFile != "" && content != "":
		errs = append(errs, errors.New("set either content or content_file, not both"))
	case e.ContentFile != "":
		raw, err := fs.ReadFile(fsys, path.Join(base, e.ContentFile))
		if err != nil {
			errs = append(errs, fmt.Errorf("read content_file: %w", err))
		}
		content = string(raw)
	}
	if strings.TrimSpace(content) == "" && e.ContentFile == "" {
		errs = append(errs, errors.New("content or content_file is required"))
	}

	if len(e.Framings) == 0 {
		errs = append(errs, errors.New("at least one framing is required"))
	}
	labels := make(map[string]bool, len(e.Framings))
	for i, f := range e.Framings {
		if f.Label == "" || f.Title == "" || f.Summary == "" {
			errs = append(errs, fmt.Errorf("framing %d: label, title and summary are required", i))
		}
		if labels[f.Label] {
			errs = append(errs, fmt.Errorf("framing %d: duplicate label %q", i, f.Label))
		}
		labels[f.Label] = true
	}
	switch {
	case e.DefaultFraming == "":
		errs = append(errs, errors.New("default_framing is required"))
	case !labels[e.DefaultFraming]:
		errs = append(errs, fmt.Errorf("default_framing %q does not name a framing", e.DefaultFraming))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	framings := make([]domain.Framing, len(e.Framings))
	copy(framings, e.Framings)
	return &domain.Persona{
		ID:             e.ID,
		Name:           e.Name,
		Content:        content,
		Guidance:       e.Guidance,
		Framings:       framings,
		DefaultFraming: e.DefaultFraming,
		ContactEmail:   e.ContactEmail,
	}, nil
}

// Get returns the persona with id. An empty id selects the default persona.
func (r *Roster) Get(id string) (*domain.Persona, error) {
	if id == "" {
		return r.Default(), nil
	}
	p, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p, nil
}

// Default returns the first persona in the roster.
func (r *Roster) Default() *domain.Persona {
	return r.order[0]
}

// All returns personas in roster order.
func (r *Roster) All() []*domain.Persona {
	out := make([]*domain.Persona, len(r.order))
	copy(out, r.order)
	return out
}
