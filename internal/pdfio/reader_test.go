package pdfio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadPagesValidation(t *testing.T) {
	dir := t.TempDir()

	textPath := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(textPath, []byte("plain text"), 0o600); err != nil {
		t.Fatal(err)
	}

	bigPath := filepath.Join(dir, "big.pdf")
	if err := os.WriteFile(bigPath, make([]byte, 2048), 0o600); err != nil {
		t.Fatal(err)
	}

	notPDF := filepath.Join(dir, "fake.pdf")
	if err := os.WriteFile(notPDF, []byte("not a pdf at all"), 0o600); err != nil {
		t.Fatal(err)
	}

	reader := NewReader(1024)

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{
			name:    "empty path",
			path:    "",
			wantErr: "path cannot be empty",
		},
		{
			name:    "missing file",
			path:    filepath.Join(dir, "missing.pdf"),
			wantErr: "does not exist",
		},
		{
			name:    "directory",
			path:    dir + string(filepath.Separator) + "sub.pdf",
			wantErr: "does not exist",
		},
		{
			name:    "wrong extension",
			path:    textPath,
			wantErr: "not a PDF",
		},
		{
			name:    "too large",
			path:    bigPath,
			wantErr: "file too large",
		},
		{
			name:    "invalid content",
			path:    notPDF,
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages, err := reader.ReadPages(tt.path)
			if err == nil {
				t.Fatalf("expected error, got %d pages", len(pages))
			}
			if tt.wantErr != "" && !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestReadPagesDirectory(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "docs.pdf")
	if err := os.Mkdir(sub, 0o750); err != nil {
		t.Fatal(err)
	}

	reader := NewReader(1024)
	if _, err := reader.ReadPages(sub); err == nil || !strings.Contains(err.Error(), "directory") {
		t.Errorf("expected directory error, got %v", err)
	}
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()

	textPath := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(textPath, []byte("plain text"), 0o600); err != nil {
		t.Fatal(err)
	}

	fakePDF := filepath.Join(dir, "fake.pdf")
	if err := os.WriteFile(fakePDF, []byte("not a pdf"), 0o600); err != nil {
		t.Fatal(err)
	}

	v := NewValidator(1024 * 1024)

	tests := []struct {
		name string
		path string
	}{
		{name: "empty path", path: ""},
		{name: "missing file", path: filepath.Join(dir, "missing.pdf")},
		{name: "wrong extension", path: textPath},
		{name: "invalid content", path: fakePDF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := v.ValidateFile(tt.path)
			if err != nil {
				t.Fatalf("validation should report in result, got error: %v", err)
			}
			if result.Valid {
				t.Error("expected invalid result")
			}
			if result.Message == "" {
				t.Error("expected a failure message")
			}
		})
	}
}

func TestIsValidPDF(t *testing.T) {
	dir := t.TempDir()
	textPath := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(textPath, []byte("plain text"), 0o600); err != nil {
		t.Fatal(err)
	}

	v := NewValidator(1024 * 1024)
	if v.IsValidPDF(textPath) {
		t.Error("text file reported as valid PDF")
	}
	if v.IsValidPDF(filepath.Join(dir, "missing.pdf")) {
		t.Error("missing file reported as valid PDF")
	}
}
