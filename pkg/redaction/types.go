package redaction

import (
	"fmt"
	"strings"
)

// EntityType names a category of personal data.
type EntityType string

const (
	// EntityPerson is a personal name.
	EntityPerson EntityType = "PERSON"

	// EntityPhoneNumber is a telephone number.
	EntityPhoneNumber EntityType = "PHONE_NUMBER"

	// EntityEmailAddress is an e-mail address.
	EntityEmailAddress EntityType = "EMAIL_ADDRESS"

	// EntityLocation is a city, district or street level place name.
	EntityLocation EntityType = "LOCATION"

	// EntityGovernmentID is a state-issued identifier (SSN, Aadhaar, PAN,
	// passport or driver license number).
	EntityGovernmentID EntityType = "GOVERNMENT_ID"
)

// supportedEntities is the closed taxonomy, in placeholder reservation order.
var supportedEntities = []EntityType{
	EntityPerson,
	EntityPhoneNumber,
	EntityEmailAddress,
	EntityLocation,
	EntityGovernmentID,
}

// SupportedEntities returns every entity type the redactor can detect.
func SupportedEntities() []EntityType {
	out := make([]EntityType, len(supportedEntities))
	copy(out, supportedEntities)
	return out
}

// ParseEntityType converts a configuration string into an EntityType.
// Matching is case-insensitive; unknown names return a ConfigError.
func ParseEntityType(s string) (EntityType, error) {
	candidate := EntityType(strings.ToUpper(strings.TrimSpace(s)))
	for _, e := range supportedEntities {
		if e == candidate {
			return e, nil
		}
	}
	return "", NewConfigError(s, fmt.Sprintf("unsupported entity type (supported: %s)", joinEntities(supportedEntities)))
}

// Placeholder returns the token that replaces a span of the given type.
func Placeholder(e EntityType) string {
	return "<" + string(e) + ">"
}

// Span is a detected entity over byte offsets [Start, End) of the original text.
type Span struct {
	Start      int        `json:"start"`
	End        int        `json:"end"`
	Entity     EntityType `json:"entity_type"`
	Confidence float64    `json:"confidence"`

	// Recognizer names the pattern that produced the span. It is diagnostic
	// only and never influences resolution.
	Recognizer string `json:"recognizer,omitempty"`
}

// Len returns the span length in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

// Overlaps reports whether the two half-open ranges intersect.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Result is the outcome of redacting one text.
type Result struct {
	// Text is the anonymized text.
	Text string

	// Spans are the resolved spans over the original text, sorted by Start.
	Spans []Span

	// Rescanned are the spans found by later passes. Their offsets refer to
	// the partially masked text of their own pass.
	Rescanned []Span
}

// Counts returns the number of masked entities per type across all passes.
func (r Result) Counts() map[EntityType]int {
	counts := make(map[EntityType]int, len(r.Spans)+len(r.Rescanned))
	for _, s := range r.Spans {
		counts[s.Entity]++
	}
	for _, s := range r.Rescanned {
		counts[s.Entity]++
	}
	return counts
}

func joinEntities(es []EntityType) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = string(e)
	}
	return strings.Join(parts, ", ")
}
