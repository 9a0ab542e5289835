package redaction

import (
	"regexp"
	"sort"
	"strings"
)

// Recognizer reports candidate spans for a single entity type.
type Recognizer interface {
	// Name identifies the recognizer in spans and logs.
	Name() string

	// Entity is the type every reported span carries.
	Entity() EntityType

	// Find returns candidate spans over text. Spans may overlap each other.
	Find(text string) []Span
}

// patternRecognizer matches a regular expression and reports either the
// whole match or a single capture group.
type patternRecognizer struct {
	name       string
	entity     EntityType
	regex      *regexp.Regexp
	group      int
	confidence float64
}

func (p *patternRecognizer) Name() string      { return p.name }
func (p *patternRecognizer) Entity() EntityType { return p.entity }

func (p *patternRecognizer) Find(text string) []Span {
	matches := p.regex.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	spans := make([]Span, 0, len(matches))
	for _, m := range matches {
		start, end := m[2*p.group], m[2*p.group+1]
		if start < 0 || end <= start {
			continue
		}
		spans = append(spans, Span{
			Start:      start,
			End:        end,
			Entity:     p.entity,
			Confidence: p.confidence,
			Recognizer: p.name,
		})
	}
	return spans
}

// Name fragments shared by the context-based PERSON and LOCATION patterns.
// A proper noun is a capitalized word; up to three of them form a name.
const properNoun = `\p{Lu}\p{Ll}+(?:\s+\p{Lu}\p{Ll}+){0,2}`

// defaultLocations seeds the LOCATION gazetteer. Operators extend it through
// redaction.locations in the configuration file.
var defaultLocations = []string{
	"Ahmedabad", "Bangalore", "Bengaluru", "Chennai", "Delhi", "Hyderabad",
	"Kochi", "Kolkata", "Lucknow", "Mumbai", "New Delhi", "Pune", "Jaipur",
	"Thiruvananthapuram", "Karnataka", "Kerala", "Maharashtra", "Tamil Nadu",
	"Boston", "Chicago", "Los Angeles", "New York", "San Francisco", "Seattle",
	"London", "Toronto",
}

// buildRecognizers compiles the recognizer set for the enabled entity types.
func buildRecognizers(enabled map[EntityType]bool, extraLocations []string) []Recognizer {
	var out []Recognizer

	add := func(name string, entity EntityType, pattern string, group int, confidence float64) {
		if !enabled[entity] {
			return
		}
		out = append(out, &patternRecognizer{
			name:       name,
			entity:     entity,
			regex:      regexp.MustCompile(pattern),
			group:      group,
			confidence: confidence,
		})
	}

	add("email", EntityEmailAddress,
		`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`, 0, 1.0)

	// Indian mobile numbers, bare or grouped 5+5 with an optional +91 or
	// trunk 0 prefix, and North American numbers. Both fire on a bare
	// ten-digit mobile; resolution keeps the more confident one.
	add("phone_in_mobile", EntityPhoneNumber,
		`(?:\+91[-\s]?|\b0?)[6-9]\d{4}[-\s]?\d{5}\b`, 0, 0.75)
	add("phone_nanp", EntityPhoneNumber,
		`(?:\+1[-.\s]?)?(?:\(\d{3}\)|\b\d{3})[-.\s]?\d{3}[-.\s]?\d{4}\b`, 0, 0.7)

	add("us_ssn", EntityGovernmentID, `\b\d{3}-\d{2}-\d{4}\b`, 0, 0.85)
	add("in_aadhaar", EntityGovernmentID, `\b[2-9]\d{3}[\s-]?\d{4}[\s-]?\d{4}\b`, 0, 0.85)
	add("in_pan", EntityGovernmentID, `\b[A-Z]{5}\d{4}[A-Z]\b`, 0, 0.8)
	add("passport", EntityGovernmentID,
		`(?i:passport(?:\s+(?:number|no\.?|#))?)[:\s]+([A-Z][0-9]{7})\b`, 1, 0.8)
	add("driver_license", EntityGovernmentID,
		`(?i:driver'?s?\s+licen[cs]e(?:\s+(?:number|no\.?|#))?)[:\s]+([A-Z0-9][A-Z0-9-]{4,15}[0-9])\b`, 1, 0.7)

	add("person_context", EntityPerson,
		`(?i:\b(?:my name is|name is|this is|signed by|applicant)\b)[:\s]+(`+properNoun+`)`, 1, 0.85)
	add("person_title", EntityPerson,
		`\b(?:Mr|Mrs|Ms|Miss|Dr|Shri|Smt|Kumari)\.?\s+(`+properNoun+`)`, 1, 0.8)

	add("location_context", EntityLocation,
		`(?i:\b(?:living in|live in|lives in|resident of|residing (?:in|at)|located in|moved to)\b)\s+(`+properNoun+`)`, 1, 0.6)
	if enabled[EntityLocation] {
		if g := newGazetteer("location_gazetteer", EntityLocation, append(append([]string{}, defaultLocations...), extraLocations...), 0.7); g != nil {
			out = append(out, g)
		}
	}

	return out
}

// newGazetteer builds a recognizer that matches a fixed list of names as
// whole words. Longer names are tried first so "New Delhi" wins over "Delhi".
func newGazetteer(name string, entity EntityType, terms []string, confidence float64) Recognizer {
	seen := make(map[string]bool, len(terms))
	var quoted []string
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		quoted = append(quoted, regexp.QuoteMeta(t))
	}
	if len(quoted) == 0 {
		return nil
	}
	sort.SliceStable(quoted, func(i, j int) bool { return len(quoted[i]) > len(quoted[j]) })

	return &patternRecognizer{
		name:       name,
		entity:     entity,
		regex:      regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`),
		confidence: confidence,
	}
}

// placeholderPattern matches every reserved placeholder token.
func placeholderPattern() *regexp.Regexp {
	names := make([]string, len(supportedEntities))
	for i, e := range supportedEntities {
		names[i] = regexp.QuoteMeta(string(e))
	}
	return regexp.MustCompile(`<(?:` + strings.Join(names, "|") + `)>`)
}
