package extract

import "unicode/utf8"

// RequirementFinalizer post-processes a completed requirement: residual test
// extraction, artifact stripping, whitespace normalization and test
// de-duplication. After finalization the record is append-only output.
type RequirementFinalizer struct {
	cleaner *TextCanonicalizer
	inline  *InlineTestExtractor
}

// NewRequirementFinalizer creates a finalizer sharing the parser's cleaner
// and inline extractor.
func NewRequirementFinalizer(cleaner *TextCanonicalizer, inline *InlineTestExtractor) *RequirementFinalizer {
	return &RequirementFinalizer{cleaner: cleaner, inline: inline}
}

// Finalize cleans the requirement in place.
func (f *RequirementFinalizer) Finalize(req *Requirement) {
	// Tests split across narrative lines can survive the line-by-line pass
	// once reassembled; one more inline pass over the joined text catches
	// them.
	req.Text = f.inline.ExtractResidual(req.Text, req)
	req.Text = f.cleaner.StripArtifacts(req.Text)

	cleaned := make([]string, 0, len(req.Tests))
	for _, test := range req.Tests {
		t := f.cleaner.StripArtifacts(test)
		if utf8.RuneCountInString(t) <= significanceThreshold || containsTest(cleaned, t) {
			continue
		}
		cleaned = append(cleaned, t)
	}
	req.Tests = cleaned

	req.Guidance = f.cleaner.StripArtifacts(req.Guidance)
}
