package prompt

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/comptoir-labs/comptoir/internal/domain"
	"github.com/google/go-cmp/cmp"
)

func baseInput() Input {
	return Input{
		PersonaName: "Ada Example",
		Content:     "Ada built a streaming ingest pipeline at Acme.",
		Language:    "en",
		Verbosity:   domain.VerbosityFull,
	}
}

func TestAssembleIsDeterministic(t *testing.T) {
	in := baseInput()
	in.Framing = &domain.Framing{Label: "Eng", Title: "Staff Engineer", Summary: "Builds systems."}
	in.JobContext = "Senior data engineer, Zurich."
	in.Language = "fr"
	in.Verbosity = domain.VerbosityConcise

	first := Assemble(in)
	for i := 0; i < 10; i++ {
		if got := Assemble(in); got != first {
			t.Fatalf("run %d differs:\n%s", i, cmp.Diff(first, got))
		}
	}
}

func TestAssembleEmbedsContentVerbatim(t *testing.T) {
	in := baseInput()
	in.Content = "line one\n  indented *markdown*\n"
	out := Assemble(in)
	want := "---BEGIN PORTFOLIO---\n" + in.Content + "\n---END PORTFOLIO---\n"
	if !strings.Contains(out, want) {
		t.Fatalf("content block not verbatim:\n%s", out)
	}
}

func TestBrevityDirectiveFollowsVerbosity(t *testing.T) {
	in := baseInput()

	in.Verbosity = domain.VerbosityConcise
	if !strings.Contains(Assemble(in), BrevityDirective) {
		t.Fatal("concise prompt must contain the brevity directive")
	}

	in.Verbosity = domain.VerbosityFull
	if strings.Contains(Assemble(in), BrevityDirective) {
		t.Fatal("full prompt must not contain the brevity directive")
	}
}

func TestSections(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Input)
		want   []string
	}{
		{
			name:   "minimal",
			modify: func(*Input) {},
			want:   []string{"stance", "content"},
		},
		{
			name: "everything",
			modify: func(in *Input) {
				in.Framing = &domain.Framing{Title: "T", Summary: "S"}
				in.JobContext = "job"
				in.Verbosity = domain.VerbosityConcise
				in.Language = "de"
			},
			want: []string{"stance", "content", "framing", "job", "brevity", "language"},
		},
		{
			name: "fetch failure is not job context",
			modify: func(in *Input) {
				in.JobContext = "[Could not fetch URL: dial tcp: timeout]"
			},
			want: []string{"stance", "content"},
		},
		{
			name: "unknown language is default",
			modify: func(in *Input) {
				in.Language = "it"
			},
			want: []string{"stance", "content"},
		},
		{
			name: "whitespace job is empty",
			modify: func(in *Input) {
				in.JobContext = " \n\t "
			},
			want: []string{"stance", "content"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInput()
			tt.modify(&in)
			if diff := cmp.Diff(tt.want, Sections(in)); diff != "" {
				t.Fatalf("sections mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFragmentOrder(t *testing.T) {
	in := baseInput()
	in.Framing = &domain.Framing{Title: "Quant Engineer", Summary: "Stochastic systems."}
	in.JobContext = "JOBTEXT"
	in.Verbosity = domain.VerbosityConcise
	in.Language = "de"

	out := Assemble(in)
	markers := []string{
		"## Your Stance",
		"---END PORTFOLIO---",
		"Title: Quant Engineer",
		"JOBTEXT",
		BrevityDirective,
		"You MUST respond entirely in Deutsch",
	}
	last := -1
	for _, m := range markers {
		idx := strings.Index(out, m)
		if idx < 0 {
			t.Fatalf("missing %q", m)
		}
		if idx <= last {
			t.Fatalf("%q out of order", m)
		}
		last = idx
	}
}

func TestJobBlockCarriesAllLenses(t *testing.T) {
	in := baseInput()
	in.JobContext = "Platform engineer"
	out := Assemble(in)
	for _, lens := range JobLenses {
		if !strings.Contains(out, lens) {
			t.Errorf("missing lens %q", lens)
		}
	}
}

func TestJobContextTruncatedToCap(t *testing.T) {
	raw := strings.Repeat("é", 15_000)
	got := JobContext(raw)
	if n := utf8.RuneCountInString(got); n != MaxJobContextChars {
		t.Fatalf("expected %d characters, got %d", MaxJobContextChars, n)
	}

	in := baseInput()
	in.JobContext = strings.Repeat("x", 15_000)
	out := Assemble(in)
	if strings.Contains(out, strings.Repeat("x", MaxJobContextChars+1)) {
		t.Fatal("job context embedded beyond the cap")
	}
	if !strings.Contains(out, strings.Repeat("x", MaxJobContextChars)) {
		t.Fatal("job context should keep exactly the capped prefix")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello", 3, "hel"},
		{"héllo", 2, "hé"},
		{"", 3, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestGuidanceRenderedInStance(t *testing.T) {
	in := baseInput()
	in.Guidance = "Be frank about career transitions."
	out := Assemble(in)
	stanceEnd := strings.Index(out, "## Rules")
	if idx := strings.Index(out, in.Guidance); idx < 0 || idx > stanceEnd {
		t.Fatalf("guidance should sit in the stance section:\n%s", out)
	}
}
