package logging

import "regexp"

// Redactor masks credentials in strings before they reach log output.
// The default patterns cover the key shapes the supported vendors use;
// callers can append their own.
type Redactor struct {
	patterns []redactPattern
}

type redactPattern struct {
	regex       *regexp.Regexp
	replacement string
}

// Pattern is a custom redaction rule.
type Pattern struct {
	Regex       string
	Replacement string
}

// NewRedactor creates a Redactor with the default credential patterns
// plus any custom ones. Custom patterns that fail to compile are
// skipped.
func NewRedactor(custom []Pattern) *Redactor {
	r := &Redactor{}

	defaults := []Pattern{
		// Anthropic and OpenAI style secret keys.
		{Regex: `sk-(?:ant-)?[a-zA-Z0-9_-]{8,}`, Replacement: "sk-***"},
		// Google API keys.
		{Regex: `AIza[a-zA-Z0-9_-]{20,}`, Replacement: "AIza***"},
		// Authorization headers.
		{Regex: `Bearer\s+[a-zA-Z0-9\-._~+/]+=*`, Replacement: "Bearer ***"},
		// Generic key=value credential assignments.
		{Regex: `(?i)(api[-_]?key|token|secret)["':=\s]+[a-zA-Z0-9\-._~+/]{8,}`, Replacement: "$1=***"},
	}

	for _, p := range append(defaults, custom...) {
		regex, err := regexp.Compile(p.Regex)
		if err != nil {
			continue
		}
		r.patterns = append(r.patterns, redactPattern{regex: regex, replacement: p.Replacement})
	}
	return r
}

// Redact applies every pattern to the input.
func (r *Redactor) Redact(s string) string {
	for _, p := range r.patterns {
		s = p.regex.ReplaceAllString(s, p.replacement)
	}
	return s
}
