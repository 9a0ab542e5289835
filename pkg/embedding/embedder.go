package embedding

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
)

// DefaultDimensions is the vector length used when none is configured.
const DefaultDimensions = 256

// MinDimensions is the smallest vector length NewHashingEmbedder accepts.
const MinDimensions = 8

// bigramWeight scales adjacent-token features relative to single tokens.
const bigramWeight = 0.5

// Embedder maps text to a vector of fixed length.
type Embedder interface {
	// Embed returns the vector for text. The result always has Dimensions()
	// elements.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the output vector length.
	Dimensions() int
}

// ErrDimensions is returned for a vector length below MinDimensions.
var ErrDimensions = errors.New("embedding dimensions too small")

// HashingEmbedder is a deterministic feature-hashing embedder.
type HashingEmbedder struct {
	dims int
}

// NewHashingEmbedder creates an embedder producing dims-length vectors.
func NewHashingEmbedder(dims int) (*HashingEmbedder, error) {
	if dims < MinDimensions {
		return nil, fmt.Errorf("%w: got %d, need at least %d", ErrDimensions, dims, MinDimensions)
	}
	return &HashingEmbedder{dims: dims}, nil
}

// Dimensions returns the output vector length.
func (h *HashingEmbedder) Dimensions() int {
	return h.dims
}

// Embed hashes the tokens of text into a normalized vector. Text without
// tokens yields the zero vector.
func (h *HashingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float64, h.dims)
	tokens := Tokenize(text)
	for i, tok := range tokens {
		h.add(vec, tok, 1)
		if i > 0 {
			h.add(vec, tokens[i-1]+" "+tok, bigramWeight)
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	out := make([]float32, h.dims)
	if norm == 0 {
		return out, nil
	}
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out, nil
}

// add folds one feature into vec. The top hash bit picks the sign so
// collisions cancel rather than accumulate.
func (h *HashingEmbedder) add(vec []float64, feature string, weight float64) {
	hasher := fnv.New64a()
	hasher.Write([]byte(feature))
	sum := hasher.Sum64()

	idx := int(sum % uint64(h.dims))
	if sum>>63 == 1 {
		weight = -weight
	}
	vec[idx] += weight
}

// Cosine returns the cosine similarity of a and b. Mismatched lengths and
// zero vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}

// IsZero reports whether every element of v is zero.
func IsZero(v []float32) bool {
	for _, f := range v {
		if f != 0 {
			return false
		}
	}
	return true
}
