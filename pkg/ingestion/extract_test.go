package ingestion

import (
	"errors"
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name      string
		raw       []byte
		minLength int
		want      string
		wantErr   error
	}{
		{
			name:      "plain text",
			raw:       []byte("Income limit is 3 lakh per year."),
			minLength: 10,
			want:      "Income limit is 3 lakh per year.",
		},
		{
			name:      "line endings and control characters",
			raw:       []byte("\xEF\xBB\xBFLine one\r\nLine\x07 two\rLine three\tend"),
			minLength: 10,
			want:      "Line one\nLine two\nLine three\tend",
		},
		{
			name:      "decomposed accents normalized",
			raw:       []byte("Cafe\u0301 licensing policy"),
			minLength: 5,
			want:      "Caf\u00e9 licensing policy",
		},
		{
			name:      "invalid utf-8",
			raw:       []byte("policy \xff\xfe text that is long enough"),
			minLength: 5,
			wantErr:   ErrInvalidEncoding,
		},
		{
			name:      "binary content",
			raw:       []byte("%PDF-1.4\x00\x01\x02 binary"),
			minLength: 5,
			wantErr:   ErrBinaryContent,
		},
		{
			name:      "too short",
			raw:       []byte("   short   "),
			minLength: 50,
			wantErr:   ErrTooShort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract("doc.txt", tt.raw, tt.minLength)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Extract() error = %v, want %v", err, tt.wantErr)
				}
				var extErr *ExtractionError
				if !errors.As(err, &extErr) {
					t.Fatalf("expected *ExtractionError, got %T", err)
				}
				if extErr.DocumentID != "doc.txt" {
					t.Errorf("DocumentID = %q, want doc.txt", extErr.DocumentID)
				}
				return
			}

			if err != nil {
				t.Fatalf("Extract() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Extract() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestContentCID(t *testing.T) {
	a, err := ContentCID([]byte("housing policy"))
	if err != nil {
		t.Fatalf("ContentCID() failed: %v", err)
	}
	b, _ := ContentCID([]byte("housing policy"))
	c, _ := ContentCID([]byte("housing policy v2"))

	if a != b {
		t.Errorf("same content gave different CIDs: %s vs %s", a, b)
	}
	if a == c {
		t.Error("different content gave the same CID")
	}
	// CIDv1 in the default base32 encoding.
	if len(a) == 0 || a[0] != 'b' {
		t.Errorf("CID = %q, want base32 CIDv1", a)
	}
}
