package ingestion

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidEncoding indicates the document is not valid UTF-8.
	ErrInvalidEncoding = errors.New("invalid UTF-8 encoding")

	// ErrBinaryContent indicates the document contains NUL bytes.
	ErrBinaryContent = errors.New("binary content")

	// ErrTooShort indicates the extracted text is below the minimum
	// document length.
	ErrTooShort = errors.New("document too short")

	// ErrNoChunks indicates no chunk of the document met the minimum chunk
	// length.
	ErrNoChunks = errors.New("no chunk above minimum length")
)

// ExtractionError reports a document that could not be read or chunked.
type ExtractionError struct {
	DocumentID string // Document that failed
	Reason     string // Short description of the failure
	Cause      error  // Underlying error
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction failed [document=%s]: %s: %v", e.DocumentID, e.Reason, e.Cause)
	}
	return fmt.Sprintf("extraction failed [document=%s]: %s", e.DocumentID, e.Reason)
}

// Unwrap returns the underlying cause error.
func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// NewExtractionError creates a new ExtractionError.
func NewExtractionError(documentID, reason string, cause error) *ExtractionError {
	return &ExtractionError{
		DocumentID: documentID,
		Reason:     reason,
		Cause:      cause,
	}
}
