// Package prompt assembles the system instruction sent to the model for a
// turn. Assembly is a pure function of its input.
package prompt

import (
	"strings"

	"github.com/comptoir-labs/comptoir/internal/domain"
	"github.com/comptoir-labs/comptoir/internal/i18n"
)

// MaxJobContextChars caps the job description embedded in a prompt.
const MaxJobContextChars = 10_000

// Input carries everything the instruction depends on.
type Input struct {
	PersonaName string
	Guidance    string
	Content     string
	Framing     *domain.Framing
	JobContext  string
	Language    string
	Verbosity   domain.Verbosity
}

// fragment is one optional piece of the instruction. Fragments are rendered
// in declaration order when include reports true.
type fragment struct {
	name    string
	include func(in Input) bool
	render  func(b *strings.Builder, in Input)
}

var fragments = []fragment{
	{name: "stance", include: always, render: renderStance},
	{name: "content", include: always, render: renderContent},
	{name: "framing", include: hasFraming, render: renderFraming},
	{name: "job", include: hasJob, render: renderJob},
	{name: "brevity", include: isConcise, render: renderBrevity},
	{name: "language", include: isTranslated, render: renderLanguage},
}

// Assemble builds the instruction string. The same input always yields the
// same bytes.
func Assemble(in Input) string {
	in.JobContext = JobContext(in.JobContext)
	in.Language = i18n.Normalize(in.Language)

	var b strings.Builder
	for _, f := range fragments {
		if f.include(in) {
			f.render(&b, in)
		}
	}
	return b.String()
}

// Sections lists the fragments Assemble would include for in, in order.
func Sections(in Input) []string {
	in.JobContext = JobContext(in.JobContext)
	in.Language = i18n.Normalize(in.Language)

	var names []string
	for _, f := range fragments {
		if f.include(in) {
			names = append(names, f.name)
		}
	}
	return names
}

// JobContext normalizes a job description for embedding: fetch-failure
// diagnostics become empty and the text is capped at MaxJobContextChars.
func JobContext(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, domain.FetchFailurePrefix) {
		return ""
	}
	return Truncate(text, MaxJobContextChars)
}

// Truncate cuts s to at most n characters, counted in runes.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func always(Input) bool { return true }

func hasFraming(in Input) bool { return in.Framing != nil }

func hasJob(in Input) bool { return in.JobContext != "" }

func isConcise(in Input) bool { return in.Verbosity == domain.VerbosityConcise }

func isTranslated(in Input) bool { return in.Language != i18n.Default }
