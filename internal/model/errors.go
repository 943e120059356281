package model

import "fmt"

// SourceFormat identifies the ingestion source of a document.
type SourceFormat string

const (
	SourceXML     SourceFormat = "xml"
	SourceCSV     SourceFormat = "csv"
	SourceUnknown SourceFormat = "unknown"
)

// ParseError represents a fatal parse failure with source context.
// Per-field problems never produce a ParseError; they default silently.
type ParseError struct {
	Source  SourceFormat
	Field   string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Source, e.Field, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Source, e.Field, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// NewParseError creates a new parse error
func NewParseError(source SourceFormat, field, message string, cause error) *ParseError {
	return &ParseError{
		Source:  source,
		Field:   field,
		Message: message,
		Cause:   cause,
	}
}

// ImportError represents a failure importing one record of a batch. It is
// collected into the batch result, never raised past the orchestrator.
type ImportError struct {
	SourceID string
	Message  string
	Cause    error
}

func (e *ImportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("import %s: %s (%v)", e.SourceID, e.Message, e.Cause)
	}
	return fmt.Sprintf("import %s: %s", e.SourceID, e.Message)
}

func (e *ImportError) Unwrap() error {
	return e.Cause
}

// NewImportError creates a new import error
func NewImportError(sourceID, message string, cause error) *ImportError {
	return &ImportError{
		SourceID: sourceID,
		Message:  message,
		Cause:    cause,
	}
}
