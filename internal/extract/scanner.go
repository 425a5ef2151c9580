package extract

import "strings"

// stopPredicate reports whether a line ends the logical unit being
// accumulated.
type stopPredicate func(line string) bool

// continuationScanner accumulates following lines into one logical unit
// until a stop predicate fires. The same loop backs test capture, guidance
// capture and inline test continuation, each with its own predicate.
type continuationScanner struct {
	lines []string
}

// scan appends non-blank lines starting at index start to the initial text,
// space-joined, until stop fires or input ends. It returns the accumulated
// text and the index of the first unconsumed line. When stopAtSentence is
// true, scanning also ends after a line with terminal punctuation, with that
// line included.
func (s *continuationScanner) scan(initial string, start int, stop stopPredicate, stopAtSentence bool) (string, int) {
	text := initial
	i := start
	for i < len(s.lines) {
		line := strings.TrimSpace(s.lines[i])
		if line == "" {
			i++
			continue
		}
		if stop(line) {
			break
		}
		text += " " + line
		i++
		if stopAtSentence && endsSentence(line) {
			break
		}
	}
	return text, i
}

func endsSentence(line string) bool {
	return strings.HasSuffix(line, ".") ||
		strings.HasSuffix(line, "!") ||
		strings.HasSuffix(line, "?")
}
