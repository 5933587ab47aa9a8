// Package plan holds the localized marketing-plan documents offered as a
// PDF download.
package plan

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/comptoir-labs/comptoir/internal/i18n"
	"gopkg.in/yaml.v3"
)

//go:embed plans/*.yaml
var embedded embed.FS

// Section is one heading plus a markdown-lite body.
type Section struct {
	Heading string `yaml:"heading" json:"heading"`
	Body    string `yaml:"body" json:"body"`
}

// Plan is one language's document.
type Plan struct {
	Language string    `yaml:"-" json:"language"`
	Title    string    `yaml:"title" json:"title"`
	Subtitle string    `yaml:"subtitle" json:"subtitle"`
	Date     string    `yaml:"date" json:"date"`
	Sections []Section `yaml:"sections" json:"sections"`
}

// Book maps language codes to plans.
type Book struct {
	plans map[string]*Plan
}

var loadDefault = sync.OnceValues(func() (*Book, error) {
	sub, err := fs.Sub(embedded, "plans")
	if err != nil {
		return nil, err
	}
	return LoadFS(sub)
})

// Default returns the embedded plan book.
func Default() (*Book, error) {
	return loadDefault()
}

// LoadDir reads <lang>.yaml files from dir.
func LoadDir(dir string) (*Book, error) {
	return LoadFS(os.DirFS(dir))
}

// LoadFS reads <lang>.yaml files for every supported language present in
// fsys. The default language must be present.
func LoadFS(fsys fs.FS) (*Book, error) {
	b := &Book{plans: make(map[string]*Plan)}
	for _, lang := range i18n.Languages {
		data, err := fs.ReadFile(fsys, lang.Code+".yaml")
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read plan %s: %w", lang.Code, err)
		}

		var p Plan
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parse plan %s: %w", lang.Code+".yaml", err)
		}
		if err := p.validate(); err != nil {
			return nil, fmt.Errorf("plan %s: %w", lang.Code, err)
		}
		p.Language = lang.Code
		b.plans[lang.Code] = &p
	}
	if _, ok := b.plans[i18n.Default]; !ok {
		return nil, fmt.Errorf("plan for default language %q is missing", i18n.Default)
	}
	return b, nil
}

func (p *Plan) validate() error {
	var errs []error
	if strings.TrimSpace(p.Title) == "" {
		errs = append(errs, errors.New("title is required"))
	}
	if len(p.Sections) == 0 {
		errs = append(errs, errors.New("at least one section is required"))
	}
	for i, s := range p.Sections {
		if strings.TrimSpace(s.Heading) == "" {
			errs = append(errs, fmt.Errorf("section %d: heading is required", i+1))
		}
	}
	return errors.Join(errs...)
}

// Get returns the plan for lang, falling back to the default language.
func (b *Book) Get(lang string) *Plan {
	if p, ok := b.plans[i18n.Normalize(lang)]; ok {
		return p
	}
	return b.plans[i18n.Default]
}

// Languages lists the codes with a plan, in i18n order.
func (b *Book) Languages() []string {
	var out []string
	for _, lang := range i18n.Languages {
		if _, ok := b.plans[lang.Code]; ok {
			out = append(out, lang.Code)
		}
	}
	return out
}
