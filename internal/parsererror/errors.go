// Package parsererror defines the typed errors raised while loading export
// files, transforming rows and decoding job descriptors.
package parsererror

import (
	"errors"
	"fmt"
)

// ErrFileNotFound is wrapped by LoadError when the requested file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ParseError represents an error while decoding a file's content
type ParseError struct {
	Parser string
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse %s='%s': %v",
		e.Parser, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError represents a loaded table that cannot be processed.
// Reason is one of the fixed texts used in job diagnostics.
type ValidationError struct {
	FilePath string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.FilePath, e.Reason)
}

// InvalidFormatError represents a file whose extension maps to no loader.
type InvalidFormatError struct {
	FilePath       string
	ExpectedFormat string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("Unsupported file type: %s (must be %s)", e.FilePath, e.ExpectedFormat)
}

// DataExtractionError represents a structurally valid file from which no
// table could be extracted (for example a workbook without sheets).
type DataExtractionError struct {
	FilePath string
	Reason   string
}

func (e *DataExtractionError) Error() string {
	return fmt.Sprintf("data extraction failed in file '%s': %s", e.FilePath, e.Reason)
}

// LoadError wraps any failure to turn a file into a table.
type LoadError struct {
	File string
	Err  error
}

func (e *LoadError) Error() string {
	if errors.Is(e.Err, ErrFileNotFound) {
		return fmt.Sprintf("File not found: %s", e.File)
	}
	return e.Err.Error()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// TransformError reports a row that could not become a record because a
// required field was absent or unparseable.
type TransformError struct {
	Kind  string
	Field string
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("missing required field %s", e.Field)
}

// MalformedJobError reports a queue message that does not describe a job.
type MalformedJobError struct {
	Field  string
	Reason string
}

func (e *MalformedJobError) Error() string {
	return fmt.Sprintf("invalid job descriptor: %s %s", e.Field, e.Reason)
}
