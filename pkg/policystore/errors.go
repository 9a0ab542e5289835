package policystore

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Get for an unknown chunk ID.
	ErrNotFound = errors.New("chunk not found")

	// ErrClosed is returned by operations on a closed Store.
	ErrClosed = errors.New("policy store closed")
)

// StoreError represents a persistence or embedding failure.
type StoreError struct {
	Backend   string // Storage backend type ("sqlite", "sqlite3", "memory")
	Operation string // Operation that failed ("open", "upsert", "query", ...)
	Cause     error  // Underlying error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("policy store error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// NewStoreError creates a new StoreError.
func NewStoreError(backend, operation string, cause error) *StoreError {
	return &StoreError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}

// Rejection explains why one chunk of an Upsert batch was not stored.
type Rejection struct {
	ChunkID string
	Err     error
}

// Error implements the error interface.
func (r Rejection) Error() string {
	return fmt.Sprintf("chunk %s rejected: %v", r.ChunkID, r.Err)
}

// Unwrap returns the rejection reason.
func (r Rejection) Unwrap() error {
	return r.Err
}

var (
	errEmptyDocumentID = errors.New("empty document id")
	errNegativeIndex   = errors.New("negative chunk index")
	errEmptyText       = errors.New("empty chunk text")
	errDimension       = errors.New("embedding dimension mismatch")
)

func errIDMismatch(got, want string) error {
	return fmt.Errorf("chunk id %q does not match document and index (want %q)", got, want)
}
