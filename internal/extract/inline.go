package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Test fragments shorter than this, or without terminal punctuation, are
// assumed to be truncated by column flattening and extended with lookahead.
const truncatedSpanThreshold = 30

var bulletPrefixPattern = regexp.MustCompile(`^•\s*`)

// InlineTestExtractor detects and removes test procedure fragments embedded
// inside narrative text. Extracted fragments are appended to the
// requirement's Tests; incomplete fragments are completed by pulling in
// following lines.
type InlineTestExtractor struct {
	profile      *LanguageProfile
	cleaner      *TextCanonicalizer
	verbPatterns []*regexp.Regexp
}

// NewInlineTestExtractor creates an extractor for the given profile.
func NewInlineTestExtractor(profile *LanguageProfile, cleaner *TextCanonicalizer) *InlineTestExtractor {
	verbs := profile.indicatorVerbs()
	patterns := make([]*regexp.Regexp, len(verbs))
	for i, verb := range verbs {
		// A span runs from the bullet to the next bullet or end of text.
		patterns[i] = regexp.MustCompile(`(?i)•\s*` + regexp.QuoteMeta(verb) + `[^•]*`)
	}
	return &InlineTestExtractor{
		profile:      profile,
		cleaner:      cleaner,
		verbPatterns: patterns,
	}
}

// Extract pulls every bullet-prefixed test span out of line into req.Tests,
// completing truncated spans from lines after cursor. It returns the
// remaining narrative text and the index of the furthest line consumed
// (cursor itself when no lookahead happened).
func (e *InlineTestExtractor) Extract(line string, req *Requirement, lines []string, cursor int) (string, int) {
	remaining := line
	consumed := cursor
	scanner := &continuationScanner{lines: lines}
	stop := e.stopPredicate()

	for _, pat := range e.verbPatterns {
		matches := pat.FindAllStringIndex(remaining, -1)
		// Right to left so earlier offsets stay valid after removal.
		for m := len(matches) - 1; m >= 0; m-- {
			start, end := matches[m][0], matches[m][1]
			span := strings.TrimSpace(bulletPrefixPattern.ReplaceAllString(remaining[start:end], ""))

			if utf8.RuneCountInString(span) < truncatedSpanThreshold || !endsSentence(span) {
				extended, next := scanner.scan(span, cursor+1, stop, true)
				span = extended
				if next-1 > consumed {
					consumed = next - 1
				}
			}

			span = e.cleaner.StripArtifacts(span)
			if utf8.RuneCountInString(span) > significanceThreshold {
				if !containsTest(req.Tests, span) {
					req.Tests = append(req.Tests, span)
				}
				remaining = remaining[:start] + " " + remaining[end:]
			}
		}
	}

	return collapseWhitespace(remaining), consumed
}

// ExtractResidual runs the inline pass over already-assembled text with no
// lookahead, catching spans the line-by-line pass left behind.
func (e *InlineTestExtractor) ExtractResidual(text string, req *Requirement) string {
	remaining, _ := e.Extract(text, req, nil, -1)
	return remaining
}

// stopPredicate matches the stop conditions of standalone test capture: a
// new requirement number, another test line, a guidance-type marker, or an
// ignorable line.
func (e *InlineTestExtractor) stopPredicate() stopPredicate {
	p := e.profile
	return func(line string) bool {
		return MatchRequirementNumber(line) != "" ||
			p.IsTestLine(line) ||
			(p.ApplicabilityMarker != "" && strings.HasPrefix(line, p.ApplicabilityMarker)) ||
			(p.GuidanceMarker != "" && strings.HasPrefix(line, p.GuidanceMarker)) ||
			p.ShouldIgnore(line)
	}
}

func containsTest(tests []string, candidate string) bool {
	for _, t := range tests {
		if t == candidate {
			return true
		}
	}
	return false
}
