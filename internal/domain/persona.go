package domain

// Framing is a selectable title/summary overlay that biases how a persona's
// background is presented.
type Framing struct {
	Label   string `json:"label" yaml:"label"`
	Title   string `json:"title" yaml:"title"`
	Summary string `json:"summary" yaml:"summary"`
}

// Persona is an immutable identity profile the agent speaks about.
type Persona struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Content        string    `json:"-"`
	Guidance       string    `json:"-"`
	Framings       []Framing `json:"framings"`
	DefaultFraming string    `json:"default_framing"`
	ContactEmail   string    `json:"contact_email,omitempty"`
}

// Framing returns the framing with the given label. An empty label selects
// the default framing.
func (p *Persona) Framing(label string) (Framing, bool) {
	if label == "" {
		label = p.DefaultFraming
	}
	for _, f := range p.Framings {
		if f.Label == label {
			return f, true
		}
	}
	return Framing{}, false
}
