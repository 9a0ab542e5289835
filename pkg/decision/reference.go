package decision

import (
	"context"
	"unicode/utf8"
)

const (
	referenceConfidence   = 0.85
	noEvidenceConfidence  = 0.1
	rationaleExcerptRunes = 100

	// NextStepHumanReview is the next step attached to PENDING_REVIEW.
	NextStepHumanReview = "Human Verification Required"

	noEvidenceRationale = "No relevant policies found in the database."
)

// Reference routes every request with supporting evidence to human review.
// It is a pure function of its inputs and never fails.
type Reference struct{}

// Name implements Strategy.
func (Reference) Name() string { return DefaultStrategy }

// Evaluate implements Strategy.
func (Reference) Evaluate(_ context.Context, _ string, evidence []Evidence) (Decision, error) {
	if len(evidence) == 0 {
		return Decision{
			Status:     StatusUncertain,
			Confidence: noEvidenceConfidence,
			Rationale:  noEvidenceRationale,
		}, nil
	}

	return Decision{
		Status:     StatusPendingReview,
		Confidence: referenceConfidence,
		Rationale:  "Evaluated against policy: " + excerpt(evidence[0].Text, rationaleExcerptRunes) + "...",
		NextStep:   NextStepHumanReview,
	}, nil
}

// excerpt returns the first n characters of s.
func excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
