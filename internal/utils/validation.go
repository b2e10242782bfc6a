package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidateInputFile checks that path names an existing regular file. field
// names the flag or plan key the path came from.
func ValidateInputFile(field, path string) error {
	if path == "" {
		return &ValidationError{
			Field:   field,
			Message: "path is required",
		}
	}

	fileInfo, err := os.Stat(path)
	if err != nil {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("file does not exist: %s", path),
			Err:     err,
		}
	}
	if fileInfo.IsDir() {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be a file, not a directory: %s", path),
		}
	}

	return nil
}

// ValidateOutputPath validates an output directory, creating it if needed,
// and checks that it is writable
func ValidateOutputPath(output string) error {
	if output == "" {
		return &ValidationError{
			Field:   "output",
			Message: "output path is required",
		}
	}

	if fileInfo, err := os.Stat(output); err == nil && !fileInfo.IsDir() {
		return &ValidationError{
			Field:   "output",
			Message: fmt.Sprintf("output must be a directory, not a file: %s", output),
		}
	}

	// Create output directory if it doesn't exist
	if err := os.MkdirAll(output, 0755); err != nil {
		return &ValidationError{
			Field:   "output",
			Message: "failed to create output directory",
			Err:     err,
		}
	}

	probe, err := os.CreateTemp(output, ".lessonlint-*")
	if err != nil {
		return &ValidationError{
			Field:   "output",
			Message: "output directory is not writable",
			Err:     err,
		}
	}
	name := probe.Name()
	if err := probe.Close(); err != nil {
		LogWarning("Failed to close probe file: %v", err)
	}
	if err := os.Remove(name); err != nil {
		LogWarning("Failed to remove probe file: %v", err)
	}

	return nil
}

// ValidateFileExtension checks if a file has one of the allowed extensions
func ValidateFileExtension(filePath string, allowedExts []string) error {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, allowedExt := range allowedExts {
		if ext == allowedExt {
			return nil
		}
	}
	return &ValidationError{
		Field:   "extension",
		Message: fmt.Sprintf("file extension %s not allowed. Allowed extensions: %v", ext, allowedExts),
	}
}
