package decision

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownStrategy is returned by Lookup for an unregistered name.
	ErrUnknownStrategy = errors.New("unknown decision strategy")

	// ErrNoStrategy is reported when EvaluateSafely gets a nil strategy.
	ErrNoStrategy = errors.New("no decision strategy")

	// ErrInvalidStatus is reported when a strategy returns an unknown status.
	ErrInvalidStatus = errors.New("invalid decision status")
)

// DecisionError reports a failing decision strategy.
type DecisionError struct {
	Strategy string // Strategy name
	Cause    error  // Underlying error
}

// Error implements the error interface.
func (e *DecisionError) Error() string {
	return fmt.Sprintf("decision strategy %q failed: %v", e.Strategy, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *DecisionError) Unwrap() error {
	return e.Cause
}

// NewDecisionError creates a new DecisionError.
func NewDecisionError(strategy string, cause error) *DecisionError {
	return &DecisionError{
		Strategy: strategy,
		Cause:    cause,
	}
}
