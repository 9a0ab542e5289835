package logging

import (
	"log/slog"
	"strings"
)

// Masker replaces personal data in free text. *redaction.Redactor satisfies it.
type Masker interface {
	Mask(text string) string
}

// Scrubber removes personal data and secrets from log attributes.
type Scrubber struct {
	masker Masker
}

// NewScrubber creates a Scrubber. A nil masker scrubs secrets only.
func NewScrubber(masker Masker) *Scrubber {
	return &Scrubber{masker: masker}
}

// sensitiveKeys mark attributes whose values are dropped entirely.
var sensitiveKeys = []string{
	"password", "passwd", "pwd",
	"secret", "token", "api_key", "apikey",
	"authorization",
	"private_key", "privatekey",
}

// ScrubString masks personal data in value.
func (s *Scrubber) ScrubString(value string) string {
	if s == nil || s.masker == nil || value == "" {
		return value
	}
	return s.masker.Mask(value)
}

// ScrubAttr returns a with personal data masked in string values and in
// errors, recursing into groups.
func (s *Scrubber) ScrubAttr(a slog.Attr) slog.Attr {
	if s == nil {
		return a
	}

	if isSensitiveKey(a.Key) {
		return slog.String(a.Key, "***")
	}

	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return slog.String(a.Key, s.ScrubString(v.String()))
	case slog.KindGroup:
		group := v.Group()
		scrubbed := make([]slog.Attr, len(group))
		for i, ga := range group {
			scrubbed[i] = s.ScrubAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(scrubbed...)}
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return slog.String(a.Key, s.ScrubString(err.Error()))
		}
	}
	return slog.Attr{Key: a.Key, Value: v}
}

// isSensitiveKey checks if a key name indicates secret data.
func isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)
	for _, sensitive := range sensitiveKeys {
		if strings.Contains(lowerKey, sensitive) {
			return true
		}
	}
	return false
}
