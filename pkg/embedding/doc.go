// Package embedding turns text into fixed-length vectors for similarity search.
//
// # Overview
//
// The policy store only needs two things from an embedder: a deterministic
// text to vector transform and a fixed output dimensionality. Embedder
// captures that contract so a model-backed implementation can replace the
// default without touching the store.
//
// HashingEmbedder is the default. It case-folds and tokenizes the text, drops
// stopwords, applies a light plural stemmer and hashes unigrams and bigrams
// into a signed bag-of-features vector, which is then L2 normalized. Two texts
// sharing vocabulary ("housing subsidy", "income limit") land close under
// cosine similarity.
//
// # Thread Safety
//
// HashingEmbedder holds no mutable state and is safe for concurrent use.
package embedding
