package mcp

import (
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regdata/saqextract/internal/config"
	"github.com/regdata/saqextract/internal/extract"
	"github.com/regdata/saqextract/internal/pdfio"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.DocumentDirectory = t.TempDir()

	log := logrus.New()
	log.SetOutput(io.Discard)

	extractor := extract.NewService(pdfio.NewReader(cfg.MaxFileSize), log)
	validator := pdfio.NewValidator(cfg.MaxFileSize)

	s, err := NewServer(cfg, extractor, validator, log)
	require.NoError(t, err)
	return s
}

func TestNewServer(t *testing.T) {
	s := newTestServer(t)
	assert.NotNil(t, s.mcpServer)
}

func TestNewServerValidation(t *testing.T) {
	cfg := config.DefaultConfig()
	validator := pdfio.NewValidator(cfg.MaxFileSize)
	extractor := extract.NewService(nil, nil)

	_, err := NewServer(cfg, nil, validator, nil)
	assert.Error(t, err)

	_, err = NewServer(cfg, extractor, nil, nil)
	assert.Error(t, err)

	// nil logger is replaced, not rejected
	s, err := NewServer(cfg, extractor, validator, nil)
	require.NoError(t, err)
	assert.NotNil(t, s.log)
}

func TestResolvePath(t *testing.T) {
	s := newTestServer(t)
	dir := s.config.DocumentDirectory

	assert.Equal(t, filepath.Join(dir, "saq-d-merchant-fr.pdf"), s.resolvePath("saq-d-merchant-fr.pdf"))
	assert.Equal(t, filepath.Join(dir, "docs", "saq.pdf"), s.resolvePath(filepath.Join("docs", "saq.pdf")))

	abs := filepath.Join(string(filepath.Separator), "data", "saq.pdf")
	assert.Equal(t, abs, s.resolvePath(abs))
	assert.Equal(t, "", s.resolvePath(""))
}

func TestFormatExtractResultSummary(t *testing.T) {
	s := newTestServer(t)

	result := &extract.ExtractResult{
		Requirements: []extract.Requirement{
			{
				Number:   "1.1.1",
				Text:     "Security policies are documented.",
				Tests:    []string{"Examine policies to verify documentation."},
				Guidance: "Applies to all merchants.",
			},
		},
		Language: "EN",
		Range:    extract.PageRange{Start: 15, End: 120},
		Summary: extract.ExtractionSummary{
			TotalRequirements: 1,
			WithTests:         1,
			WithGuidance:      1,
			TotalTests:        1,
			FirstNumber:       "1.1.1",
			LastNumber:        "1.1.1",
		},
		Diagnostics: []extract.Diagnostic{
			{Kind: extract.DiagPageDetectionFailure, Message: "using fallback"},
		},
	}

	text := s.formatExtractResult(result, "summary")

	assert.Contains(t, text, "Extracted 1 requirement(s), language EN")
	assert.Contains(t, text, "Pages 16-121")
	assert.Contains(t, text, "1.1.1 Security policies are documented.")
	assert.Contains(t, text, "Examine policies to verify documentation.")
	assert.Contains(t, text, "Guidance: Applies to all merchants.")
	assert.Contains(t, text, "Warning (page_detection_failure)")
}

func TestFormatExtractResultCSV(t *testing.T) {
	s := newTestServer(t)

	result := &extract.ExtractResult{
		Requirements: []extract.Requirement{
			{Number: "1.2", Text: "Network controls are configured.", Tests: []string{}},
		},
		Language: "FR",
		Summary:  extract.ExtractionSummary{TotalRequirements: 1, FirstNumber: "1.2", LastNumber: "1.2"},
	}

	text := s.formatExtractResult(result, "csv")

	assert.Contains(t, text, "req_num,text,tests,guidance")
	assert.True(t, strings.Contains(text, "1.2,Network controls are configured.,,"))
}
