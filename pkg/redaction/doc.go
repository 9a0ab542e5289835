// Package redaction detects and anonymizes personal data in citizen requests.
//
// # Overview
//
// Detection runs a fixed set of recognizers over the input text. Each
// recognizer covers one entity type (PERSON, PHONE_NUMBER, EMAIL_ADDRESS,
// LOCATION, GOVERNMENT_ID) and reports candidate spans with a confidence.
// Recognizers may disagree: two phone patterns can match the same digits and
// a context-based PERSON match can nest inside a LOCATION gazetteer hit.
// Resolve collapses the candidates into a sorted, non-overlapping cover.
//
// Anonymization replaces each accepted span with a placeholder naming its
// entity type, for example "<PERSON>". Placeholders are reserved: no
// recognizer ever reports a span that overlaps one, which makes Mask
// idempotent.
//
// # Usage
//
//	r, err := redaction.New(redaction.Config{
//	    Entities: []redaction.EntityType{redaction.EntityPerson, redaction.EntityPhoneNumber},
//	})
//	if err != nil {
//	    return err // unsupported entity type
//	}
//	masked := r.Mask("My name is Deepak, phone 9876543210.")
//	// "My name is <PERSON>, phone <PHONE_NUMBER>."
//
// # Thread Safety
//
// A Redactor is immutable after New and safe for concurrent use.
package redaction
