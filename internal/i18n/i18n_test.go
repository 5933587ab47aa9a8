package i18n

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"en":  "en",
		"FR":  "fr",
		" de": "de",
		"it":  "en",
		"":    "en",
	}
	for in, want := range tests {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNegotiate(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"fr-CH,fr;q=0.9,en;q=0.8", "fr"},
		{"de-CH", "de"},
		{"en-GB,en;q=0.9", "en"},
		{"ja", "en"},
		{"", "en"},
		{"not a header;;", "en"},
	}
	for _, tt := range tests {
		if got := Negotiate(tt.header); got != tt.want {
			t.Errorf("Negotiate(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestLookupFallsBackToEnglish(t *testing.T) {
	if got := Lookup("xx").PasscodeSubmit; got != "Unlock" {
		t.Fatalf("expected English fallback, got %q", got)
	}
	if got := Lookup("de").PasscodeSubmit; got != "Freischalten" {
		t.Fatalf("unexpected German string %q", got)
	}
}

func TestTablesAreComplete(t *testing.T) {
	for _, l := range Languages {
		s, ok := tables[l.Code]
		if !ok {
			t.Fatalf("missing table for %s", l.Code)
		}
		if s.Remaining == "" || s.Exhausted == "" || s.PasscodeInvalid == "" || s.ModelError == "" {
			t.Errorf("%s: required strings are empty", l.Code)
		}
		if len(s.ExampleQuestions) == 0 || len(s.JobQuestions) == 0 {
			t.Errorf("%s: example questions missing", l.Code)
		}
	}
}

func TestWithName(t *testing.T) {
	s := Lookup("en").WithName("Ada")
	if !strings.Contains(s.ChatPlaceholder, "Ada's work") {
		t.Fatalf("name not substituted: %q", s.ChatPlaceholder)
	}
	for _, q := range append(s.ExampleQuestions, s.JobQuestions...) {
		if strings.Contains(q, "{name}") {
			t.Fatalf("placeholder left in %q", q)
		}
	}
	if strings.Contains(Lookup("en").ChatPlaceholder, "Ada") {
		t.Fatal("WithName must not mutate the shared table")
	}
}

func TestCountTexts(t *testing.T) {
	tests := []struct {
		lang string
		n    int
		want string
	}{
		{"en", 1, "1 free question remaining"},
		{"en", 3, "3 free questions remaining"},
		{"fr", 2, "2 questions gratuites restantes"},
		{"de", 1, "1 kostenlose Frage übrig"},
		{"de", 4, "4 kostenlose Fragen übrig"},
	}
	for _, tt := range tests {
		if got := Lookup(tt.lang).RemainingText(tt.n); got != tt.want {
			t.Errorf("%s RemainingText(%d) = %q, want %q", tt.lang, tt.n, got, tt.want)
		}
	}
	if got := Lookup("en").ExhaustedText(5); !strings.Contains(got, "all 5 questions") {
		t.Errorf("unexpected exhausted text %q", got)
	}
}
