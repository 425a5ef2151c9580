package extract

import (
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePageReader struct {
	pages []string
	err   error
}

func (r *fakePageReader) ReadPages(path string) ([]string, error) {
	return r.pages, r.err
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func serviceTestPages() []string {
	return []string{
		"Cover page",
		"1.1.1 Security policies are documented and maintained.\n" +
			"• Examine documented policies to verify they address all requirements.\n" +
			"Notes: Applies to all merchant environments.",
		"1.1.2 Roles and responsibilities are assigned.\n" +
			"• Interview personnel to verify roles are understood and assigned.\n" +
			"1.2 Network security controls are configured.",
	}
}

func TestExtractRequirements(t *testing.T) {
	svc := NewService(nil, quietLogger())

	result, err := svc.ExtractRequirements(ExtractRequest{
		Pages:   serviceTestPages(),
		Profile: parserTestProfile(),
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Empty(t, result.Diagnostics)
	assert.Equal(t, "EN", result.Language)
	assert.Equal(t, 1, result.Range.Start)
	assert.Equal(t, 2, result.Range.End)

	require.Len(t, result.Requirements, 3)
	assert.Equal(t, "1.1.1", result.Requirements[0].Number)
	assert.Equal(t, "1.1.2", result.Requirements[1].Number)
	assert.Equal(t, "1.2", result.Requirements[2].Number)

	require.Len(t, result.Requirements[0].Tests, 1)
	assert.Equal(t, "Applies to all merchant environments.", result.Requirements[0].Guidance)

	assert.Equal(t, 3, result.Summary.TotalRequirements)
	assert.Equal(t, 2, result.Summary.WithTests)
	assert.Equal(t, 1, result.Summary.WithGuidance)
	assert.Equal(t, 2, result.Summary.TotalTests)
	assert.Equal(t, "1.1.1", result.Summary.FirstNumber)
	assert.Equal(t, "1.2", result.Summary.LastNumber)
}

func TestExtractRequirementsNilProfile(t *testing.T) {
	svc := NewService(nil, quietLogger())

	_, err := svc.ExtractRequirements(ExtractRequest{Pages: []string{"text"}})
	assert.Error(t, err)
}

func TestExtractRequirementsEmptyPages(t *testing.T) {
	svc := NewService(nil, quietLogger())

	result, err := svc.ExtractRequirements(ExtractRequest{
		Pages:   nil,
		Profile: parserTestProfile(),
	})
	require.NoError(t, err)

	assert.Empty(t, result.Requirements)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, DiagExtractionFailure, result.Diagnostics[0].Kind)
}

func TestExtractRequirementsNoMatches(t *testing.T) {
	svc := NewService(nil, quietLogger())

	pages := []string{"Narrative only.", "Still no requirement numbers here."}
	result, err := svc.ExtractRequirements(ExtractRequest{
		Pages:   pages,
		Profile: parserTestProfile(),
	})
	require.NoError(t, err)

	assert.Empty(t, result.Requirements)

	kinds := make(map[string]int)
	for _, d := range result.Diagnostics {
		kinds[d.Kind]++
	}
	assert.Equal(t, 2, kinds[DiagPageDetectionFailure])
	assert.Equal(t, 1, kinds[DiagNoRequirementsFound])
}

func TestExtractRequirementsSorted(t *testing.T) {
	svc := NewService(nil, quietLogger())

	pages := []string{
		"1.1.1 Anchor requirement text.\n1.10 Tenth requirement text.\n1.2 Second requirement text.",
	}
	result, err := svc.ExtractRequirements(ExtractRequest{
		Pages:   pages,
		Profile: parserTestProfile(),
	})
	require.NoError(t, err)

	require.Len(t, result.Requirements, 3)
	assert.Equal(t, "1.1.1", result.Requirements[0].Number)
	assert.Equal(t, "1.2", result.Requirements[1].Number)
	assert.Equal(t, "1.10", result.Requirements[2].Number)
}

func TestExtractFromFile(t *testing.T) {
	reader := &fakePageReader{pages: serviceTestPages()}
	svc := NewService(reader, quietLogger())

	result, err := svc.ExtractFromFile(ExtractFileRequest{
		Path:    "saq-d-merchant_en.pdf",
		Profile: parserTestProfile(),
	})
	require.NoError(t, err)
	assert.Len(t, result.Requirements, 3)
}

func TestExtractFromFileLanguageResolution(t *testing.T) {
	reader := &fakePageReader{pages: []string{"no requirements"}}
	svc := NewService(reader, quietLogger())

	result, err := svc.ExtractFromFile(ExtractFileRequest{Path: "saq-d-merchant-fr.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "FR", result.Language)

	result, err = svc.ExtractFromFile(ExtractFileRequest{Path: "document.pdf", Language: "DE"})
	require.NoError(t, err)
	assert.Equal(t, "DE", result.Language)

	_, err = svc.ExtractFromFile(ExtractFileRequest{Path: "document.pdf", Language: "XX"})
	assert.Error(t, err)
}

func TestExtractFromFileReadFailure(t *testing.T) {
	reader := &fakePageReader{err: fmt.Errorf("corrupt xref table")}
	svc := NewService(reader, quietLogger())

	result, err := svc.ExtractFromFile(ExtractFileRequest{Path: "broken.pdf", Language: "EN"})
	require.NoError(t, err)

	assert.Empty(t, result.Requirements)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, DiagExtractionFailure, result.Diagnostics[0].Kind)
	assert.Contains(t, result.Diagnostics[0].Message, "corrupt xref table")
}

func TestExtractFromFileNoReader(t *testing.T) {
	svc := NewService(nil, quietLogger())

	_, err := svc.ExtractFromFile(ExtractFileRequest{Path: "x.pdf", Language: "EN"})
	assert.Error(t, err)
}

// A single service and profile serve concurrent extractions without shared
// state interference.
func TestExtractRequirementsConcurrent(t *testing.T) {
	svc := NewService(nil, quietLogger())
	profile := parserTestProfile()
	pages := serviceTestPages()

	baseline, err := svc.ExtractRequirements(ExtractRequest{Pages: pages, Profile: profile})
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*ExtractResult, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := svc.ExtractRequirements(ExtractRequest{Pages: pages, Profile: profile})
			assert.NoError(t, err)
			results[i] = r
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, baseline.Requirements, r.Requirements)
		assert.Equal(t, baseline.Summary, r.Summary)
	}
}
