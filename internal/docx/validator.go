package docx

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Supported input extensions. Legacy .doc files must go through a converter
// before they can be opened.
const (
	ExtDocx = ".docx"
	ExtDoc  = ".doc"
)

// ValidationResult reports whether a file can be opened as a .docx package.
type ValidationResult struct {
	Path    string `json:"path"`
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// Validator handles input file validation
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a validator with the given size limit in bytes.
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{maxFileSize: maxFileSize}
}

// ValidateFile checks the file and reports the outcome. A failed check is
// reported in the result, not as an error.
func (v *Validator) ValidateFile(path string) *ValidationResult {
	result := &ValidationResult{Path: path}
	if err := v.validateDocxFile(path); err != nil {
		result.Message = err.Error()
		return result
	}
	result.Valid = true
	return result
}

// IsSupported reports whether the extension is .docx or .doc.
func IsSupported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtDocx, ExtDoc:
		return true
	}
	return false
}

// CheckFileInfo performs the size and type checks without opening the file.
func (v *Validator) CheckFileInfo(path string, info os.FileInfo) error {
	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if !IsSupported(path) {
		return fmt.Errorf("file is not a Word document: %s", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("file is empty: %s", path)
	}
	if v.maxFileSize > 0 && info.Size() > v.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)", info.Size(), v.maxFileSize)
	}
	return nil
}

func (v *Validator) validateDocxFile(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	if err := v.CheckFileInfo(path, info); err != nil {
		return err
	}

	// .doc needs conversion; only its metadata can be checked here
	if strings.EqualFold(filepath.Ext(path), ExtDoc) {
		return nil
	}

	if _, err := Open(path); err != nil {
		return fmt.Errorf("invalid .docx file: %w", err)
	}
	return nil
}
