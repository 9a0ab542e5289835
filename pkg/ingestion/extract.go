package ingestion

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Extract turns the raw bytes of a document into indexable text.
//
// The bytes must be valid UTF-8 without NUL bytes. A leading byte order mark
// is dropped, line endings become "\n", the text is normalized to NFC and
// control characters other than newline and tab are removed. The result must
// hold at least minLength characters once surrounding whitespace is trimmed.
func Extract(documentID string, raw []byte, minLength int) (string, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)

	if bytes.IndexByte(raw, 0) >= 0 {
		return "", NewExtractionError(documentID, "unreadable source", ErrBinaryContent)
	}
	if !utf8.Valid(raw) {
		return "", NewExtractionError(documentID, "encoding failure", ErrInvalidEncoding)
	}

	text := string(raw)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = norm.NFC.String(text)
	text = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)

	if n := utf8.RuneCountInString(strings.TrimSpace(text)); n < minLength {
		return "", NewExtractionError(documentID, "below minimum length", ErrTooShort)
	}
	return text, nil
}
