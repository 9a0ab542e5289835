package policystore

import (
	"strconv"
	"strings"
	"time"
)

// idSeparator joins document ID and chunk index in a chunk ID.
const idSeparator = "::"

// ChunkID returns the identifier of chunk index of documentID. It is a pure
// function of its arguments.
func ChunkID(documentID string, index int) string {
	return documentID + idSeparator + strconv.Itoa(index)
}

// ParseChunkID splits a chunk ID into document ID and index. Document IDs
// may themselves contain the separator; the last one wins.
func ParseChunkID(id string) (documentID string, index int, ok bool) {
	i := strings.LastIndex(id, idSeparator)
	if i <= 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(id[i+len(idSeparator):])
	if err != nil || n < 0 {
		return "", 0, false
	}
	return id[:i], n, true
}

// Chunk is a bounded piece of a source document, the unit of storage and
// retrieval.
type Chunk struct {
	// ID is ChunkID(DocumentID, Index). Upsert fills it in when empty and
	// rejects the chunk when it disagrees.
	ID string `json:"id"`

	DocumentID string            `json:"document_id"`
	Index      int               `json:"chunk_index"`
	Text       string            `json:"text"`
	Metadata   map[string]string `json:"metadata,omitempty"`

	// Embedding is computed by the store on Upsert.
	Embedding []float32 `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// clone returns a deep copy so callers never share backing arrays with the
// published snapshot.
func (c Chunk) clone() Chunk {
	out := c
	if c.Metadata != nil {
		out.Metadata = make(map[string]string, len(c.Metadata))
		for k, v := range c.Metadata {
			out.Metadata[k] = v
		}
	}
	if c.Embedding != nil {
		out.Embedding = append([]float32(nil), c.Embedding...)
	}
	return out
}

// StoredChunk is a chunk as persisted by a Backend. Seq records insertion
// order and is kept across re-upserts of the same ID.
type StoredChunk struct {
	Chunk
	Seq int64
}

// Match is a query result.
type Match struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// UpsertReport lists the outcome of every chunk in an Upsert batch.
type UpsertReport struct {
	// Accepted holds the IDs of committed chunks in batch order.
	Accepted []string

	// Rejected holds the chunks that were not stored and why.
	Rejected []Rejection
}

// Partial reports whether some but not all chunks were stored.
func (r UpsertReport) Partial() bool {
	return len(r.Accepted) > 0 && len(r.Rejected) > 0
}
