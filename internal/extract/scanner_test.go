package extract

import "testing"

func TestScan(t *testing.T) {
	stopOnDash := func(line string) bool { return line == "--" }

	tests := []struct {
		name           string
		lines          []string
		initial        string
		start          int
		stopAtSentence bool
		wantText       string
		wantNext       int
	}{
		{
			name:     "accumulates until stop line",
			lines:    []string{"one", "two", "--", "three"},
			initial:  "zero",
			start:    0,
			wantText: "zero one two",
			wantNext: 2,
		},
		{
			name:     "skips blank lines",
			lines:    []string{"one", "", "  ", "two", "--"},
			initial:  "zero",
			start:    0,
			wantText: "zero one two",
			wantNext: 4,
		},
		{
			name:     "runs off the end",
			lines:    []string{"one", "two"},
			initial:  "zero",
			start:    0,
			wantText: "zero one two",
			wantNext: 2,
		},
		{
			name:           "sentence stop includes terminal line",
			lines:          []string{"first part", "second part.", "third part"},
			initial:        "start",
			start:          0,
			stopAtSentence: true,
			wantText:       "start first part second part.",
			wantNext:       2,
		},
		{
			name:     "start past end returns initial",
			lines:    []string{"one"},
			initial:  "zero",
			start:    5,
			wantText: "zero",
			wantNext: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &continuationScanner{lines: tt.lines}
			text, next := s.scan(tt.initial, tt.start, stopOnDash, tt.stopAtSentence)
			if text != tt.wantText {
				t.Errorf("text = %q, want %q", text, tt.wantText)
			}
			if next != tt.wantNext {
				t.Errorf("next = %d, want %d", next, tt.wantNext)
			}
		})
	}
}

func TestEndsSentence(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"Complete sentence.", true},
		{"Really!", true},
		{"Is it?", true},
		{"trailing comma,", false},
		{"no punctuation", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := endsSentence(tt.line); got != tt.want {
			t.Errorf("endsSentence(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}
