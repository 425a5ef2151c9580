package extract

import (
	"strings"
	"unicode/utf8"
)

// RequirementParser consumes the canonical line stream and produces
// Requirement records. It is a two-state machine: outside any requirement,
// only a requirement-number line does anything; inside one, each line is
// classified as test procedure, guidance marker, ignorable chrome, or
// narrative.
type RequirementParser struct {
	profile   *LanguageProfile
	inline    *InlineTestExtractor
	finalizer *RequirementFinalizer
}

// NewRequirementParser creates a parser for the given profile.
func NewRequirementParser(profile *LanguageProfile) *RequirementParser {
	cleaner := NewTextCanonicalizer(profile)
	inline := NewInlineTestExtractor(profile, cleaner)
	return &RequirementParser{
		profile:   profile,
		inline:    inline,
		finalizer: NewRequirementFinalizer(cleaner, inline),
	}
}

// Parse walks the canonical lines and returns the raw extraction order of
// finalized requirements. Duplicate numbers, produced by repeated header
// lines in the source layout, keep only their first occurrence.
func (p *RequirementParser) Parse(lines []string) []Requirement {
	var reqs []Requirement
	var current *Requirement
	scanner := &continuationScanner{lines: lines}

	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			i++
			continue
		}

		if num := MatchRequirementNumber(line); num != "" {
			if current != nil {
				reqs = p.close(reqs, current)
			}
			current = &Requirement{
				Number: num,
				Text:   stripNumberPrefix(line, num),
				Tests:  []string{},
			}
			i++
			continue
		}

		if current == nil {
			i++
			continue
		}

		switch {
		case p.profile.IsTestLine(line):
			text := strings.TrimSpace(bulletPrefixPattern.ReplaceAllString(line, ""))
			text, next := scanner.scan(text, i+1, p.testStop(), false)
			text = p.finalizer.cleaner.StripArtifacts(text)
			if utf8.RuneCountInString(text) > significanceThreshold {
				current.Tests = append(current.Tests, text)
			}
			i = next

		case p.profile.ApplicabilityMarker != "" && strings.HasPrefix(line, p.profile.ApplicabilityMarker):
			text := strings.Trim(line[len(p.profile.ApplicabilityMarker):], ": ")
			text, next := scanner.scan(text, i+1, p.guidanceStop(p.profile.ApplicabilityMarker), false)
			// A later guidance-type marker overwrites an earlier value.
			current.Guidance = p.finalizer.cleaner.StripArtifacts(text)
			i = next

		case p.profile.GuidanceMarker != "" && strings.HasPrefix(line, p.profile.GuidanceMarker):
			text := strings.Trim(line[len(p.profile.GuidanceMarker):], ": ")
			text, next := scanner.scan(text, i+1, p.guidanceStop(p.profile.GuidanceMarker), false)
			current.Guidance = p.finalizer.cleaner.StripArtifacts(text)
			i = next

		case p.profile.ShouldIgnore(line):
			i++

		default:
			remaining, consumed := p.inline.Extract(line, current, lines, i)
			if consumed > i {
				i = consumed + 1
				continue
			}
			if p.isValidNarrative(remaining, current.Text) {
				if current.Text != "" {
					current.Text += " " + remaining
				} else {
					current.Text = remaining
				}
			}
			i++
		}
	}

	if current != nil {
		reqs = p.close(reqs, current)
	}

	return reqs
}

// close finalizes a completed requirement and appends it unless its number
// was already emitted.
func (p *RequirementParser) close(reqs []Requirement, req *Requirement) []Requirement {
	p.finalizer.Finalize(req)
	for _, existing := range reqs {
		if existing.Number == req.Number {
			return reqs
		}
	}
	return append(reqs, *req)
}

// testStop ends standalone test capture on any structural boundary.
func (p *RequirementParser) testStop() stopPredicate {
	return p.inline.stopPredicate()
}

// guidanceStop ends guidance capture on any structural boundary except the
// marker that opened the capture.
func (p *RequirementParser) guidanceStop(openingMarker string) stopPredicate {
	prof := p.profile
	return func(line string) bool {
		if MatchRequirementNumber(line) != "" || prof.IsTestLine(line) || prof.ShouldIgnore(line) {
			return true
		}
		if prof.ApplicabilityMarker != "" && prof.ApplicabilityMarker != openingMarker &&
			strings.HasPrefix(line, prof.ApplicabilityMarker) {
			return true
		}
		if prof.GuidanceMarker != "" && prof.GuidanceMarker != openingMarker &&
			strings.HasPrefix(line, prof.GuidanceMarker) {
			return true
		}
		return false
	}
}

// isValidNarrative filters out repeated fragments and residual artifacts
// before a line joins the requirement text.
func (p *RequirementParser) isValidNarrative(line, currentText string) bool {
	if utf8.RuneCountInString(line) <= 2 {
		return false
	}
	if currentText != "" && strings.Contains(currentText, line) {
		return false
	}
	return true
}
