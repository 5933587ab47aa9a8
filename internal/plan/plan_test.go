package plan

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestDefaultBookHasAllLanguages(t *testing.T) {
	t.Parallel()

	b, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	got := strings.Join(b.Languages(), ",")
	if got != "en,fr,de" {
		t.Fatalf("Languages = %s", got)
	}

	for _, lang := range b.Languages() {
		p := b.Get(lang)
		if p.Language != lang {
			t.Errorf("Get(%s).Language = %s", lang, p.Language)
		}
		if len(p.Sections) != 5 {
			t.Errorf("%s: expected 5 sections, got %d", lang, len(p.Sections))
		}
	}
}

func TestGetFallsBackToEnglish(t *testing.T) {
	t.Parallel()

	b, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	for _, lang := range []string{"", "es", "zz"} {
		if p := b.Get(lang); p.Language != "en" {
			t.Errorf("Get(%q) = %s, want en", lang, p.Language)
		}
	}
	if p := b.Get("fr"); p.Title != "Plan Marketing" {
		t.Fatalf("unexpected French title %q", p.Title)
	}
}

func TestLoadFSValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		files   fstest.MapFS
		wantErr string
	}{
		{
			name:    "missing default language",
			files:   fstest.MapFS{"fr.yaml": {Data: []byte("title: T\nsections: [{heading: H, body: b}]\n")}},
			wantErr: "default language",
		},
		{
			name:    "missing title",
			files:   fstest.MapFS{"en.yaml": {Data: []byte("sections: [{heading: H, body: b}]\n")}},
			wantErr: "title is required",
		},
		{
			name:    "blank heading",
			files:   fstest.MapFS{"en.yaml": {Data: []byte("title: T\nsections: [{heading: '', body: b}]\n")}},
			wantErr: "heading is required",
		},
		{
			name:    "bad yaml",
			files:   fstest.MapFS{"en.yaml": {Data: []byte("title: [unterminated\n")}},
			wantErr: "parse plan",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := LoadFS(tt.files)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadFSPartialBook(t *testing.T) {
	t.Parallel()

	b, err := LoadFS(fstest.MapFS{"en.yaml": {Data: []byte("title: Only English\nsections: [{heading: H, body: b}]\n")}})
	if err != nil {
		t.Fatal(err)
	}
	if p := b.Get("de"); p.Title != "Only English" {
		t.Fatalf("expected English fallback, got %q", p.Title)
	}
}
