package extract

import "testing"

func rangeTestProfile() *LanguageProfile {
	return newProfile(LanguageProfile{
		Code:              "EN",
		TestIndicators:    []string{"• Examine"},
		FallbackStartPage: 2,
		FallbackEndPage:   5,
	})
}

func TestFindStart(t *testing.T) {
	locator := NewPageRangeLocator(rangeTestProfile())

	pages := []string{
		"Cover page",
		"Table of contents",
		"Section overview\n1.1 Processes are defined.",
		"1.1.1 Policies are documented.\nMore text.",
		"1.1.2 Roles are assigned.",
	}

	start, ok := locator.FindStart(pages)
	if !ok {
		t.Fatal("expected anchor detection to succeed")
	}
	if start != 3 {
		t.Errorf("start = %d, want 3", start)
	}
}

func TestFindStartFallback(t *testing.T) {
	locator := NewPageRangeLocator(rangeTestProfile())

	pages := []string{"Cover", "Contents", "No anchors here", "Still nothing"}

	start, ok := locator.FindStart(pages)
	if ok {
		t.Error("expected fallback, got detection")
	}
	if start != 2 {
		t.Errorf("start = %d, want fallback 2", start)
	}

	// The anchor must start a line; an inline occurrence does not count.
	inline := []string{"see section 1.1.1 for details"}
	if _, ok := locator.FindStart(inline); ok {
		t.Error("mid-line anchor should not match")
	}
}

func TestFindEnd(t *testing.T) {
	locator := NewPageRangeLocator(rangeTestProfile())

	pages := []string{
		"1.1.1 Policies are documented.",
		"1.10 Later requirement.\n12.3 High requirement.",
		"12.3.4 Highest requirement on this page.",
		"Appendix text with no numbers.",
	}

	end, ok := locator.FindEnd(pages)
	if !ok {
		t.Fatal("expected end detection to succeed")
	}
	if end != 2 {
		t.Errorf("end = %d, want 2", end)
	}
}

func TestFindEndIgnoresOutOfRange(t *testing.T) {
	locator := NewPageRangeLocator(rangeTestProfile())

	pages := []string{
		"1.2 Real requirement.",
		"13.1 Appendix numbering outside the standard.",
	}

	end, ok := locator.FindEnd(pages)
	if !ok {
		t.Fatal("expected end detection to succeed")
	}
	if end != 0 {
		t.Errorf("end = %d, want 0", end)
	}
}

func TestLocate(t *testing.T) {
	locator := NewPageRangeLocator(rangeTestProfile())

	pages := []string{
		"Cover",
		"1.1.1 Policies are documented.",
		"1.2 More requirements.",
		"12.11 Final requirement.",
		"Appendix",
	}

	r, diags := locator.Locate(pages)
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	if r.Start != 1 || r.End != 3 {
		t.Errorf("range = %d..%d, want 1..3", r.Start, r.End)
	}
}

func TestLocateFallbackDiagnostics(t *testing.T) {
	locator := NewPageRangeLocator(rangeTestProfile())

	pages := []string{"a", "b", "c", "d", "e", "f", "g"}

	r, diags := locator.Locate(pages)
	if len(diags) != 2 {
		t.Fatalf("diagnostics = %d, want 2", len(diags))
	}
	for _, d := range diags {
		if d.Kind != DiagPageDetectionFailure {
			t.Errorf("diagnostic kind = %s", d.Kind)
		}
	}
	if r.Start != 2 || r.End != 5 {
		t.Errorf("range = %d..%d, want fallback 2..5", r.Start, r.End)
	}
}

func TestLocateClampsInvertedRange(t *testing.T) {
	locator := NewPageRangeLocator(rangeTestProfile())

	// The only requirement number sits on the same page as the anchor, so the
	// detected end collapses onto the start and gets pushed out, then capped
	// at the last page.
	pages := []string{
		"Cover",
		"Contents",
		"Overview",
		"1.1.1 Policies are documented.",
		"Appendix",
	}

	r, _ := locator.Locate(pages)
	if r.Start != 3 {
		t.Errorf("start = %d, want 3", r.Start)
	}
	if r.End != 4 {
		t.Errorf("end = %d, want cap at last page 4", r.End)
	}
}
