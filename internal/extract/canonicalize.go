package extract

import (
	"regexp"
	"strings"
)

var blankRunPattern = regexp.MustCompile(`\n\s*\n+`)

// TextCanonicalizer strips per-language boilerplate from raw page text and
// normalizes it into a clean line stream. Canonicalize is a pure function:
// the same pages and profile always produce the same lines.
type TextCanonicalizer struct {
	profile *LanguageProfile
}

// NewTextCanonicalizer creates a canonicalizer for the given profile.
func NewTextCanonicalizer(profile *LanguageProfile) *TextCanonicalizer {
	return &TextCanonicalizer{profile: profile}
}

// Canonicalize joins the pages of a range, applies the profile removal
// patterns in order, collapses blank line runs and trims every line.
func (c *TextCanonicalizer) Canonicalize(pages []string, r PageRange) []string {
	var sb strings.Builder
	for i := r.Start; i <= r.End && i < len(pages); i++ {
		sb.WriteString(pages[i])
		sb.WriteString("\n")
	}
	return c.CanonicalizeText(sb.String())
}

// CanonicalizeText runs the cleanup over already-joined text.
func (c *TextCanonicalizer) CanonicalizeText(text string) []string {
	for _, pat := range c.profile.removalPatterns() {
		text = pat.ReplaceAllString(text, "")
	}

	text = blankRunPattern.ReplaceAllString(text, "\n\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return lines
}

// StripArtifacts applies the profile removal patterns to a single flattened
// string, used by the finalizer on assembled fields.
func (c *TextCanonicalizer) StripArtifacts(s string) string {
	for _, pat := range c.profile.removalPatterns() {
		s = pat.ReplaceAllString(s, "")
	}
	return collapseWhitespace(s)
}
