package orchestrator

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is the cause of the InputError for blank requests.
var ErrEmptyInput = errors.New("no input provided")

// InputError reports a request rejected before any stage ran.
type InputError struct {
	Cause error
}

// Error implements the error interface.
func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: %v", e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *InputError) Unwrap() error {
	return e.Cause
}

// StageError reports the pipeline stage that failed. Error names only the
// stage so that the message can be shown to callers; the cause stays
// available through Unwrap.
type StageError struct {
	Stage string
	Cause error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("request processing failed at stage %q", e.Stage)
}

// Unwrap returns the underlying cause error.
func (e *StageError) Unwrap() error {
	return e.Cause
}

// NewStageError creates a new StageError.
func NewStageError(stage string, cause error) *StageError {
	return &StageError{
		Stage: stage,
		Cause: cause,
	}
}
