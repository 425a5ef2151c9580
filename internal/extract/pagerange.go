package extract

import (
	"regexp"
	"strings"
)

// PageRange bounds the numbered-requirements section of a document,
// expressed as zero-based page indices, inclusive.
type PageRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// startAnchorPattern matches the first subordinate requirement ("1.1.1") at
// the start of a line, which anchors the beginning of the requirements
// section in every SAQ D translation.
var startAnchorPattern = regexp.MustCompile(`(?m)^1\.1\.1\s+`)

// PageRangeLocator finds the pages that bound the numbered-requirements
// section, falling back to the profile defaults when detection fails.
type PageRangeLocator struct {
	profile *LanguageProfile
}

// NewPageRangeLocator creates a locator for the given profile.
func NewPageRangeLocator(profile *LanguageProfile) *PageRangeLocator {
	return &PageRangeLocator{profile: profile}
}

// FindStart scans pages in order and returns the index of the first page
// containing the start anchor. The second return value is false when no page
// matched and the profile fallback was used.
func (l *PageRangeLocator) FindStart(pages []string) (int, bool) {
	for i, page := range pages {
		if startAnchorPattern.MatchString(page) {
			return i, true
		}
	}
	return l.profile.FallbackStartPage, false
}

// FindEnd scans all pages for hierarchical requirement numbers and returns
// the page holding the greatest in-range number under the zero-padded tuple
// ordering. The second return value is false when nothing matched.
func (l *PageRangeLocator) FindEnd(pages []string) (int, bool) {
	highest := ""
	end := l.profile.FallbackEndPage

	for i, page := range pages {
		for _, line := range strings.Split(page, "\n") {
			num := MatchRequirementNumber(line)
			if num == "" {
				continue
			}
			if highest == "" || CompareNumbers(num, highest) > 0 {
				highest = num
				end = i
			}
		}
	}

	return end, highest != ""
}

// Locate resolves the full page range, clamping a detected end page that
// falls at or before the start to a bounded window past it.
func (l *PageRangeLocator) Locate(pages []string) (PageRange, []Diagnostic) {
	var diags []Diagnostic

	start, ok := l.FindStart(pages)
	if !ok {
		diags = append(diags, Diagnostic{
			Kind:    DiagPageDetectionFailure,
			Message: "start anchor not found, using fallback start page",
		})
	}

	end, ok := l.FindEnd(pages)
	if !ok {
		diags = append(diags, Diagnostic{
			Kind:    DiagPageDetectionFailure,
			Message: "no requirement numbers found, using fallback end page",
		})
	}

	if end <= start {
		end = start + 100
	}
	if end > len(pages)-1 {
		end = len(pages) - 1
	}
	if start > end {
		start = end
	}
	if start < 0 {
		start = 0
	}

	return PageRange{Start: start, End: end}, diags
}
