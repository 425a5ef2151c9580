package extract

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Diagnostic kinds reported by the service. All of them are non-fatal: a
// batch caller can always skip one bad document and keep going.
const (
	DiagPageDetectionFailure = "page_detection_failure"
	DiagExtractionFailure    = "extraction_failure"
	DiagNoRequirementsFound  = "no_requirements_found"
)

// Diagnostic describes a soft failure or content anomaly observed during an
// extraction run.
type Diagnostic struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ExtractRequest asks for extraction over already-linearized page texts.
type ExtractRequest struct {
	Pages   []string
	Profile *LanguageProfile
}

// ExtractFileRequest asks for extraction from a PDF file on disk.
type ExtractFileRequest struct {
	Path string
	// Language selects a built-in profile. When empty the language is
	// detected from the filename, falling back to English.
	Language string
	// Profile overrides Language when set.
	Profile *LanguageProfile
}

// ExtractionSummary aggregates counts over one extraction run.
type ExtractionSummary struct {
	TotalRequirements int    `json:"total_requirements"`
	WithTests         int    `json:"with_tests"`
	WithGuidance      int    `json:"with_guidance"`
	TotalTests        int    `json:"total_tests"`
	FirstNumber       string `json:"first_number,omitempty"`
	LastNumber        string `json:"last_number,omitempty"`
}

// ExtractResult is the outcome of one extraction run. Requirements are
// sorted by hierarchical number and unique by number.
type ExtractResult struct {
	Requirements []Requirement     `json:"requirements"`
	Language     string            `json:"language"`
	Range        PageRange         `json:"page_range"`
	Summary      ExtractionSummary `json:"summary"`
	Diagnostics  []Diagnostic      `json:"diagnostics,omitempty"`
}

// PageReader supplies the per-page text of a document.
type PageReader interface {
	ReadPages(path string) ([]string, error)
}

// Service runs the extraction pipeline. It holds no per-document state, so
// one Service can serve concurrent extractions.
type Service struct {
	reader PageReader
	log    *logrus.Logger
}

// NewService creates an extraction service. reader may be nil when only
// ExtractRequirements is used.
func NewService(reader PageReader, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
	}
	return &Service{reader: reader, log: log}
}

// ExtractRequirements runs the full pipeline over supplied page texts.
// Content-level problems never surface as an error; they degrade to an empty
// list plus diagnostics. The error return is reserved for misuse.
func (s *Service) ExtractRequirements(req ExtractRequest) (*ExtractResult, error) {
	if req.Profile == nil {
		return nil, fmt.Errorf("language profile cannot be nil")
	}

	result := &ExtractResult{
		Requirements: []Requirement{},
		Language:     req.Profile.Code,
	}

	if len(req.Pages) == 0 {
		result.Diagnostics = append(result.Diagnostics, Diagnostic{
			Kind:    DiagExtractionFailure,
			Message: "document has no pages",
		})
		s.logDiagnostics(req.Profile.Code, result.Diagnostics)
		return result, nil
	}

	locator := NewPageRangeLocator(req.Profile)
	pageRange, diags := locator.Locate(req.Pages)
	result.Range = pageRange
	result.Diagnostics = append(result.Diagnostics, diags...)

	canonicalizer := NewTextCanonicalizer(req.Profile)
	lines := canonicalizer.Canonicalize(req.Pages, pageRange)

	parser := NewRequirementParser(req.Profile)
	reqs := parser.Parse(lines)
	SortRequirements(reqs)
	result.Requirements = reqs

	if len(reqs) == 0 {
		result.Diagnostics = append(result.Diagnostics, Diagnostic{
			Kind:    DiagNoRequirementsFound,
			Message: "no requirement numbers matched in the selected page range",
		})
	}

	result.Summary = summarize(reqs)
	s.logDiagnostics(req.Profile.Code, result.Diagnostics)
	return result, nil
}

// ExtractFromFile reads a PDF into page texts, resolves the profile and
// delegates to ExtractRequirements. Read failures degrade to an empty result
// with a diagnostic so a batch run can skip the document.
func (s *Service) ExtractFromFile(req ExtractFileRequest) (*ExtractResult, error) {
	if s.reader == nil {
		return nil, fmt.Errorf("service has no page reader configured")
	}

	profile := req.Profile
	if profile == nil {
		code := req.Language
		if code == "" {
			code = DetectLanguage(filepath.Base(req.Path))
		}
		p, err := ProfileFor(code)
		if err != nil {
			return nil, err
		}
		profile = p
	}

	pages, err := s.reader.ReadPages(req.Path)
	if err != nil {
		result := &ExtractResult{
			Requirements: []Requirement{},
			Language:     profile.Code,
			Diagnostics: []Diagnostic{{
				Kind:    DiagExtractionFailure,
				Message: fmt.Sprintf("failed to read %s: %v", req.Path, err),
			}},
		}
		s.logDiagnostics(profile.Code, result.Diagnostics)
		return result, nil
	}

	return s.ExtractRequirements(ExtractRequest{Pages: pages, Profile: profile})
}

func (s *Service) logDiagnostics(language string, diags []Diagnostic) {
	for _, d := range diags {
		s.log.WithFields(logrus.Fields{
			"language": language,
			"kind":     d.Kind,
		}).Warn(d.Message)
	}
}

func summarize(reqs []Requirement) ExtractionSummary {
	summary := ExtractionSummary{TotalRequirements: len(reqs)}
	for _, r := range reqs {
		if len(r.Tests) > 0 {
			summary.WithTests++
		}
		if r.Guidance != "" {
			summary.WithGuidance++
		}
		summary.TotalTests += len(r.Tests)
	}
	if len(reqs) > 0 {
		summary.FirstNumber = reqs[0].Number
		summary.LastNumber = reqs[len(reqs)-1].Number
	}
	return summary
}
