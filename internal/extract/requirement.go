package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	// PCI DSS top-level requirements run from 1 to 12.
	minTopLevel = 1
	maxTopLevel = 12

	// Cleaned test procedures of this many characters or fewer are
	// discarded as noise. All length thresholds count characters, not
	// bytes, since four of the five document languages use accented text.
	significanceThreshold = 10
)

// Requirement is one structured compliance control extracted from a
// SAQ/PCI DSS document, keyed by its hierarchical dotted number.
type Requirement struct {
	Number   string   `json:"req_num"`
	Text     string   `json:"text"`
	Tests    []string `json:"tests"`
	Guidance string   `json:"guidance"`
}

// requirementNumberPattern matches a dot-separated hierarchical number at the
// start of a line, e.g. "1.2.3.4 ", capturing the number itself.
var requirementNumberPattern = regexp.MustCompile(`^(\d+\.\d+(?:\.\d+)*)\s+`)

// MatchRequirementNumber returns the hierarchical number starting the line,
// or "" when the line does not open a requirement. Numbers whose top-level
// integer falls outside the PCI DSS range are rejected so that page numbers
// and version stamps never open a record.
func MatchRequirementNumber(line string) string {
	m := requirementNumberPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return ""
	}
	num := m[1]
	top, err := strconv.Atoi(num[:strings.Index(num, ".")])
	if err != nil || top < minTopLevel || top > maxTopLevel {
		return ""
	}
	return num
}

// numberParts splits a dotted number into its integer components.
// Malformed components parse as 0, which keeps the comparison total.
func numberParts(num string) []int {
	fields := strings.Split(num, ".")
	parts := make([]int, len(fields))
	for i, f := range fields {
		n, _ := strconv.Atoi(f)
		parts[i] = n
	}
	return parts
}

// CompareNumbers orders two hierarchical numbers. The shorter tuple is
// right-padded with zeros before element-wise comparison, so "1.10" sorts
// after "1.2" and a child always sorts after its parent.
func CompareNumbers(a, b string) int {
	pa, pb := numberParts(a), numberParts(b)
	for len(pa) < len(pb) {
		pa = append(pa, 0)
	}
	for len(pb) < len(pa) {
		pb = append(pb, 0)
	}
	for i := range pa {
		if pa[i] != pb[i] {
			if pa[i] < pb[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// SortRequirements orders requirements in place by hierarchical number.
func SortRequirements(reqs []Requirement) {
	sort.SliceStable(reqs, func(i, j int) bool {
		return CompareNumbers(reqs[i].Number, reqs[j].Number) < 0
	})
}

// stripNumberPrefix removes the leading requirement number and following
// whitespace from a line, leaving the narrative remainder.
func stripNumberPrefix(line, num string) string {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, num) {
		return strings.TrimSpace(trimmed[len(num):])
	}
	return trimmed
}

// collapseWhitespace reduces all whitespace runs to single spaces and trims.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
