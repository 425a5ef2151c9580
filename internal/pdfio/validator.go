package pdfio

import (
	"fmt"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ValidateFileResult reports whether a file is a readable PDF.
type ValidateFileResult struct {
	Path    string `json:"path"`
	Valid   bool   `json:"valid"`
	Pages   int    `json:"pages,omitempty"`
	Message string `json:"message,omitempty"`
}

// Validator checks documents before extraction.
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a validator with the given file size limit.
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{maxFileSize: maxFileSize}
}

// ValidateFile runs structural validation. A failed validation is reported
// in the result, not as an error.
func (v *Validator) ValidateFile(path string) (*ValidateFileResult, error) {
	result := &ValidateFileResult{Path: path}

	if err := v.validate(path); err != nil {
		result.Message = err.Error()
		return result, nil
	}

	pages, err := api.PageCountFile(path)
	if err != nil {
		result.Message = fmt.Sprintf("failed to count pages: %v", err)
		return result, nil
	}

	result.Valid = true
	result.Pages = pages
	return result, nil
}

func (v *Validator) validate(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return fmt.Errorf("file is not a PDF: %s", path)
	}
	if fileInfo.Size() > v.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)", fileInfo.Size(), v.maxFileSize)
	}

	// Scanned SAQ documents are frequently produced by varied tooling, so
	// validate in relaxed mode like most viewers do.
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.ValidateFile(path, conf); err != nil {
		return fmt.Errorf("PDF validation failed: %w", err)
	}

	return nil
}

// IsValidPDF performs a quick validation check on a file.
func (v *Validator) IsValidPDF(path string) bool {
	return v.validate(path) == nil
}
