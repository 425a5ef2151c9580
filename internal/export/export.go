// Package export writes extracted requirements to flat formats consumed by
// downstream comparison and persistence tooling.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/regdata/saqextract/internal/extract"
)

// TestsDelimiter joins multiple test procedures into one CSV cell.
const TestsDelimiter = " ; "

var csvHeader = []string{"req_num", "text", "tests", "guidance"}

// WriteCSV writes requirements as flat rows. The caller is responsible for
// ordering; rows are written as given.
func WriteCSV(w io.Writer, reqs []extract.Requirement) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range reqs {
		row := []string{r.Number, r.Text, strings.Join(r.Tests, TestsDelimiter), r.Guidance}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write requirement %s: %w", r.Number, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteJSON writes requirements as an indented JSON array.
func WriteJSON(w io.Writer, reqs []extract.Requirement) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(reqs); err != nil {
		return fmt.Errorf("failed to encode requirements: %w", err)
	}
	return nil
}

// WriteFile writes requirements to path in the given format ("csv" or
// "json").
func WriteFile(path, format string, reqs []extract.Requirement) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(format) {
	case "csv":
		return WriteCSV(f, reqs)
	case "json":
		return WriteJSON(f, reqs)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}
