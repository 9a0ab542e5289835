// Package policystore persists policy chunks with their embeddings and answers
// nearest-neighbour queries over them.
//
// # Overview
//
// A Store owns one collection of chunks. Each chunk is identified by
// ChunkID(documentID, index), so re-ingesting a document overwrites its
// chunks in place instead of accumulating duplicates. Embeddings are computed
// by an injected embedding.Embedder; the store only checks that every vector
// has the collection's dimensionality.
//
// Durability is delegated to a Backend. The SQLite backend writes each
// Upsert batch in one transaction with synchronous=FULL and returns only
// after the commit. The memory backend is for tests and throwaway runs.
//
// # Concurrency
//
// Queries read an immutable snapshot published through an atomic pointer and
// never block on writers. Upserts of the same chunk ID are serialized by a
// per-ID lock; unrelated IDs write concurrently and only contend briefly when
// the next snapshot is published.
//
// # Ranking
//
// Query scores every chunk by cosine similarity and sorts by score
// descending. Equal scores keep insertion order: the chunk first ingested
// ranks first, and re-upserting a chunk does not move it.
package policystore
