package decision

import (
	"context"
	"fmt"
	"strings"
)

// Status is the outcome of an evaluation.
type Status string

const (
	StatusApproved      Status = "APPROVED"
	StatusRejected      Status = "REJECTED"
	StatusPendingReview Status = "PENDING_REVIEW"
	StatusUncertain     Status = "UNCERTAIN"
)

// Decision is the result of evaluating a request against policy evidence.
type Decision struct {
	Status     Status  `json:"status"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"reason"`
	NextStep   string  `json:"next_step,omitempty"`
}

// Evidence is one retrieved policy chunk, best match first.
type Evidence struct {
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
}

// Strategy evaluates masked request text against the retrieved evidence.
// Implementations must not modify evidence.
type Strategy interface {
	// Name identifies the strategy in configuration, logs and metrics.
	Name() string

	// Evaluate classifies the request.
	Evaluate(ctx context.Context, masked string, evidence []Evidence) (Decision, error)
}

// DefaultStrategy is the strategy selected when configuration names none.
const DefaultStrategy = "reference"

// Lookup returns the strategy registered under name.
//
// Supported strategies:
//   - "reference": conservative routing to human review
func Lookup(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", DefaultStrategy:
		return Reference{}, nil
	default:
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnknownStrategy, name, DefaultStrategy)
	}
}

// EvaluateSafely runs s and guarantees a usable decision. When s fails or
// panics, the returned decision is UNCERTAIN with zero confidence and the
// error is a *DecisionError naming the strategy.
func EvaluateSafely(ctx context.Context, s Strategy, masked string, evidence []Evidence) (d Decision, err error) {
	if s == nil {
		return fallback(), NewDecisionError("", ErrNoStrategy)
	}

	defer func() {
		if r := recover(); r != nil {
			d = fallback()
			err = NewDecisionError(s.Name(), fmt.Errorf("panic: %v", r))
		}
	}()

	d, err = s.Evaluate(ctx, masked, evidence)
	if err != nil {
		return fallback(), NewDecisionError(s.Name(), err)
	}
	if !d.Status.Valid() {
		return fallback(), NewDecisionError(s.Name(), fmt.Errorf("%w: %q", ErrInvalidStatus, d.Status))
	}
	return d, nil
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusPendingReview, StatusUncertain:
		return true
	}
	return false
}

func fallback() Decision {
	return Decision{
		Status:     StatusUncertain,
		Confidence: noEvidenceConfidence,
		Rationale:  "Decision strategy failed; the request needs manual handling.",
		NextStep:   "Human Verification Required",
	}
}
