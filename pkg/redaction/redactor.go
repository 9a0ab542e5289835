package redaction

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// DefaultMinConfidence is the confidence floor applied when Config leaves it unset.
const DefaultMinConfidence = 0.5

// Config selects the recognizers a Redactor runs.
type Config struct {
	// Entities lists the entity types to detect. Empty enables every
	// supported type.
	Entities []EntityType

	// Locations extends the built-in LOCATION gazetteer.
	Locations []string

	// MinConfidence drops candidates scored below it.
	// Default: 0.5
	MinConfidence float64
}

// Redactor detects personal data and replaces it with typed placeholders.
type Redactor struct {
	entities      []EntityType
	recognizers   []Recognizer
	minConfidence float64
	reserved      *regexp.Regexp
}

// New validates cfg and compiles the recognizer set.
func New(cfg Config) (*Redactor, error) {
	enabled := make(map[EntityType]bool, len(supportedEntities))
	var entities []EntityType

	if len(cfg.Entities) == 0 {
		entities = SupportedEntities()
	} else {
		for _, e := range cfg.Entities {
			parsed, err := ParseEntityType(string(e))
			if err != nil {
				return nil, err
			}
			if !enabled[parsed] {
				entities = append(entities, parsed)
			}
			enabled[parsed] = true
		}
	}
	for _, e := range entities {
		enabled[e] = true
	}

	if cfg.MinConfidence < 0 || cfg.MinConfidence > 1 {
		return nil, &ConfigError{
			Field:   "min_confidence",
			Value:   fmt.Sprintf("%g", cfg.MinConfidence),
			Message: "must be within [0, 1]",
		}
	}
	minConfidence := cfg.MinConfidence
	if minConfidence == 0 {
		minConfidence = DefaultMinConfidence
	}

	return &Redactor{
		entities:      entities,
		recognizers:   buildRecognizers(enabled, cfg.Locations),
		minConfidence: minConfidence,
		reserved:      placeholderPattern(),
	}, nil
}

// Entities returns the entity types this Redactor detects.
func (r *Redactor) Entities() []EntityType {
	out := make([]EntityType, len(r.entities))
	copy(out, r.entities)
	return out
}

// Candidates returns every span the recognizers report, before resolution.
// Spans below the confidence floor and spans touching a placeholder are
// already removed.
func (r *Redactor) Candidates(text string) []Span {
	if text == "" {
		return nil
	}

	reserved := r.reserved.FindAllStringIndex(text, -1)

	var out []Span
	for _, rec := range r.recognizers {
		for _, s := range rec.Find(text) {
			if s.Confidence < r.minConfidence {
				continue
			}
			if touchesReserved(s, reserved) {
				continue
			}
			out = append(out, s)
		}
	}
	return out
}

// Detect returns the resolved spans for text: sorted by Start and
// non-overlapping.
func (r *Redactor) Detect(text string) []Span {
	return Resolve(r.Candidates(text))
}

// Anonymize replaces each span of text with its placeholder. Spans are
// resolved first, and spans outside text are ignored.
func (r *Redactor) Anonymize(text string, spans []Span) string {
	return anonymize(text, Resolve(spans))
}

// Redact detects and anonymizes text until no further entity is found.
// Spans holds the first pass over the original text and Rescanned the rest.
func (r *Redactor) Redact(text string) Result {
	spans := r.Detect(text)
	if len(spans) == 0 {
		return Result{Text: text}
	}

	masked := anonymize(text, spans)
	var rescanned []Span

	// Replacing a span can expose a neighbour (a digit run that now follows
	// ">" starts on a word boundary). Each pass strictly shrinks the
	// unmasked part of the text, so the loop terminates.
	for {
		next := r.Detect(masked)
		if len(next) == 0 {
			break
		}
		masked = anonymize(masked, next)
		rescanned = append(rescanned, next...)
	}

	return Result{Text: masked, Spans: spans, Rescanned: rescanned}
}

// Mask returns text with every detected entity replaced by its placeholder.
func (r *Redactor) Mask(text string) string {
	return r.Redact(text).Text
}

// Resolve collapses candidate spans into a non-overlapping cover sorted by
// Start. Candidates are ordered by start, then longest first, then most
// confident first; each is accepted unless it overlaps an accepted span.
// The input slice is not modified.
func Resolve(spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}

	sorted := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.End > s.Start && s.Start >= 0 {
			sorted = append(sorted, s)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.Len() != b.Len() {
			return a.Len() > b.Len()
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		return a.Entity < b.Entity
	})

	accepted := make([]Span, 0, len(sorted))
	for _, s := range sorted {
		// Accepted spans are disjoint and ordered, so the last one reaches
		// furthest right.
		if n := len(accepted); n > 0 && accepted[n-1].Overlaps(s) {
			continue
		}
		accepted = append(accepted, s)
	}
	return accepted
}

// anonymize expects resolved spans. Replacement runs right to left so earlier
// offsets stay valid.
func anonymize(text string, spans []Span) string {
	if len(spans) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))

	cursor := len(text)
	parts := make([]string, 0, 2*len(spans)+1)
	for i := len(spans) - 1; i >= 0; i-- {
		s := spans[i]
		if s.End > cursor || s.Start < 0 {
			continue
		}
		parts = append(parts, text[s.End:cursor], Placeholder(s.Entity))
		cursor = s.Start
	}
	parts = append(parts, text[:cursor])

	for i := len(parts) - 1; i >= 0; i-- {
		b.WriteString(parts[i])
	}
	return b.String()
}

func touchesReserved(s Span, reserved [][]int) bool {
	for _, r := range reserved {
		if s.Start < r[1] && r[0] < s.End {
			return true
		}
	}
	return false
}
