// Package i18n holds the UI string tables. Portfolio content stays in
// English; the model answers in the visitor's language.
package i18n

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// Default is the language the portfolio content is written in.
const Default = "en"

// Language is a supported UI and response language.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Languages lists supported languages in display order.
var Languages = []Language{
	{Code: "en", Name: "English"},
	{Code: "fr", Name: "Français"},
	{Code: "de", Name: "Deutsch"},
}

var matcher = language.NewMatcher([]language.Tag{
	language.English,
	language.French,
	language.German,
})

// Supported reports whether code is a known language code.
func Supported(code string) bool {
	for _, l := range Languages {
		if l.Code == code {
			return true
		}
	}
	return false
}

// Normalize maps unknown or empty codes to Default.
func Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if Supported(code) {
		return code
	}
	return Default
}

// Name returns the display name of a language, falling back to English.
func Name(code string) string {
	for _, l := range Languages {
		if l.Code == code {
			return l.Name
		}
	}
	return Languages[0].Name
}

// Negotiate picks the best supported language for an Accept-Language header.
func Negotiate(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default
	}
	return Languages[idx].Code
}

// Lookup returns the string table for a language, falling back to English.
func Lookup(code string) Strings {
	if s, ok := tables[Normalize(code)]; ok {
		return s
	}
	return tables[Default]
}

// WithName substitutes the persona's name into every {name} placeholder.
func (s Strings) WithName(name string) Strings {
	r := strings.NewReplacer("{name}", name)
	s.HeaderTagline = r.Replace(s.HeaderTagline)
	s.IdentityHelp = r.Replace(s.IdentityHelp)
	s.ChatPlaceholder = r.Replace(s.ChatPlaceholder)
	s.ExampleQuestions = replaceAll(r, s.ExampleQuestions)
	s.JobQuestions = replaceAll(r, s.JobQuestions)
	return s
}

// RemainingText renders the "n questions remaining" line.
func (s Strings) RemainingText(n int) string { return formatCount(s.Remaining, n) }

// ExhaustedText renders the quota-exhausted notice.
func (s Strings) ExhaustedText(n int) string { return formatCount(s.Exhausted, n) }

// UnlockBodyText renders the unlock invitation.
func (s Strings) UnlockBodyText(n int) string { return formatCount(s.UnlockBody, n) }

func replaceAll(r *strings.Replacer, in []string) []string {
	out := make([]string, len(in))
	for i, q := range in {
		out[i] = r.Replace(q)
	}
	return out
}

func formatCount(tmpl string, n int) string {
	plural, pluralDE := "s", "n"
	if n == 1 {
		plural, pluralDE = "", ""
	}
	return strings.NewReplacer(
		"{n}", strconv.Itoa(n),
		"{s}", plural,
		"{n_de}", pluralDE,
	).Replace(tmpl)
}
