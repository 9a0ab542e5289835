package embedding

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "case folding stopwords and plurals",
			text: "The Housing SUBSIDIES, for 2024!",
			want: []string{"housing", "subsidy", "2024"},
		},
		{
			name: "placeholders dropped",
			text: "My name is <PERSON>, phone <PHONE_NUMBER>.",
			want: []string{"name", "phone"},
		},
		{
			name: "lowercase angle brackets kept",
			text: "limit <income> applies",
			want: []string{"limit", "income", "apply"},
		},
		{
			name: "words ending in ss us is kept",
			text: "process status analysis limits",
			want: []string{"process", "status", "analysis", "limit"},
		},
		{
			name: "empty",
			text: "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestNewHashingEmbedder_Dimensions(t *testing.T) {
	if _, err := NewHashingEmbedder(4); !errors.Is(err, ErrDimensions) {
		t.Errorf("expected ErrDimensions, got %v", err)
	}

	e, err := NewHashingEmbedder(64)
	if err != nil {
		t.Fatalf("NewHashingEmbedder() failed: %v", err)
	}
	if e.Dimensions() != 64 {
		t.Errorf("Dimensions() = %d, want 64", e.Dimensions())
	}
}

func TestHashingEmbedder_Embed(t *testing.T) {
	ctx := context.Background()
	e, err := NewHashingEmbedder(DefaultDimensions)
	if err != nil {
		t.Fatalf("NewHashingEmbedder() failed: %v", err)
	}

	a, err := e.Embed(ctx, "Housing subsidy applicants must have an annual income below the limit.")
	if err != nil {
		t.Fatalf("Embed() failed: %v", err)
	}
	b, _ := e.Embed(ctx, "Housing subsidy applicants must have an annual income below the limit.")

	if len(a) != DefaultDimensions {
		t.Fatalf("len = %d, want %d", len(a), DefaultDimensions)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("Embed() is not deterministic")
	}

	var norm float64
	for _, v := range a {
		norm += float64(v) * float64(v)
	}
	if math.Abs(norm-1) > 1e-5 {
		t.Errorf("vector norm^2 = %f, want 1", norm)
	}

	zero, err := e.Embed(ctx, "  the of and  ")
	if err != nil {
		t.Fatalf("Embed() failed: %v", err)
	}
	if !IsZero(zero) {
		t.Error("expected zero vector for stopword-only text")
	}
}

func TestHashingEmbedder_Similarity(t *testing.T) {
	ctx := context.Background()
	e, _ := NewHashingEmbedder(DefaultDimensions)

	query, _ := e.Embed(ctx, "I want to apply for a housing subsidy.")
	housing, _ := e.Embed(ctx, "Housing subsidy scheme: applicants with household income below the limit may apply.")
	transport, _ := e.Embed(ctx, "Driving licence renewal requires a medical certificate and a fee receipt.")

	hs := Cosine(query, housing)
	ts := Cosine(query, transport)
	if hs <= ts {
		t.Errorf("expected housing policy closer than transport policy: housing=%f transport=%f", hs, ts)
	}
	if hs <= 0.3 {
		t.Errorf("housing similarity = %f, want > 0.3", hs)
	}
}

func TestHashingEmbedder_IgnoresPlaceholders(t *testing.T) {
	ctx := context.Background()
	e, _ := NewHashingEmbedder(DefaultDimensions)

	masked, err := e.Embed(ctx, "<PERSON> <PHONE_NUMBER> housing subsidy application")
	if err != nil {
		t.Fatalf("Embed() failed: %v", err)
	}
	plain, _ := e.Embed(ctx, "housing subsidy application")
	if !reflect.DeepEqual(masked, plain) {
		t.Error("placeholders changed the embedding")
	}

	only, _ := e.Embed(ctx, "<PERSON> <PHONE_NUMBER> <LOCATION>")
	if !IsZero(only) {
		t.Error("expected zero vector for placeholder-only text")
	}
}

func TestHashingEmbedder_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e, _ := NewHashingEmbedder(16)
	if _, err := e.Embed(ctx, "housing"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1},
		{name: "mismatched", a: []float32{1}, b: []float32{1, 0}, want: 0},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 0}, want: 0},
		{name: "empty", a: nil, b: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cosine(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Cosine() = %f, want %f", got, tt.want)
			}
		})
	}
}
