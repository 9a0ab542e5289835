package logging

import (
	"log/slog"
	"strings"
	"testing"
)

// upperMasker stands in for the PII redactor.
type upperMasker struct{}

func (upperMasker) Mask(text string) string { return strings.ToUpper(text) }

func TestScrubber_ScrubAttr(t *testing.T) {
	s := NewScrubber(upperMasker{})

	tests := []struct {
		name string
		attr slog.Attr
		want string
	}{
		{name: "string", attr: slog.String("input", "deepak"), want: "DEEPAK"},
		{name: "int untouched", attr: slog.Int("count", 3), want: "3"},
		{name: "secret key", attr: slog.String("Authorization", "Bearer x"), want: "***"},
		{name: "password key", attr: slog.Int("db_password", 1234), want: "***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.ScrubAttr(tt.attr)
			if got.Value.String() != tt.want {
				t.Errorf("ScrubAttr(%v) = %q, want %q", tt.attr, got.Value.String(), tt.want)
			}
			if got.Key != tt.attr.Key {
				t.Errorf("key changed to %q", got.Key)
			}
		})
	}
}

func TestScrubber_Group(t *testing.T) {
	s := NewScrubber(upperMasker{})

	got := s.ScrubAttr(slog.Group("request", slog.String("text", "abc"), slog.String("token", "t")))
	group := got.Value.Group()
	if len(group) != 2 {
		t.Fatalf("expected 2 group attrs, got %d", len(group))
	}
	if group[0].Value.String() != "ABC" {
		t.Errorf("text = %q", group[0].Value.String())
	}
	if group[1].Value.String() != "***" {
		t.Errorf("token = %q", group[1].Value.String())
	}
}

func TestScrubber_NilMasker(t *testing.T) {
	s := NewScrubber(nil)

	if got := s.ScrubString("deepak"); got != "deepak" {
		t.Errorf("ScrubString() = %q, want unchanged", got)
	}

	var nilScrubber *Scrubber
	attr := slog.String("input", "deepak")
	if got := nilScrubber.ScrubAttr(attr); got.Value.String() != "deepak" {
		t.Errorf("nil scrubber changed value to %q", got.Value.String())
	}
}
