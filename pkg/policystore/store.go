package policystore

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/embedding"
)

// Default option values.
const (
	DefaultCollection = "gov_policies"
	DriverMemory      = "memory"
)

// Options configures Open.
type Options struct {
	// Backend overrides the backend selected by SQLite.Driver.
	Backend Backend

	// SQLite configures the durable backend. Driver "memory" selects the
	// in-memory backend instead.
	SQLite SQLiteConfig

	// Collection names the chunk collection.
	// Default: "gov_policies"
	Collection string

	// Embedder computes chunk and query vectors.
	// Default: a HashingEmbedder with embedding.DefaultDimensions
	Embedder embedding.Embedder

	// MinSimilarity drops query results scoring below it. Zero disables
	// the filter.
	MinSimilarity float64

	// Logger receives store lifecycle events.
	Logger *slog.Logger
}

// Store is an embedding-indexed collection of policy chunks.
type Store struct {
	backend       Backend
	embedder      embedding.Embedder
	collection    string
	minSimilarity float64
	logger        *slog.Logger

	snapshot  atomic.Pointer[snapshot]
	publishMu sync.Mutex
	locks     *keyLocks
	seq       atomic.Int64
	closed    atomic.Bool

	now func() time.Time
}

// snapshot is an immutable view of the collection. Chunks are ordered by Seq.
type snapshot struct {
	chunks []*StoredChunk
	byID   map[string]*StoredChunk
}

func newSnapshot(byID map[string]*StoredChunk) *snapshot {
	chunks := make([]*StoredChunk, 0, len(byID))
	for _, sc := range byID {
		chunks = append(chunks, sc)
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Seq < chunks[j].Seq })
	return &snapshot{chunks: chunks, byID: byID}
}

// Open creates the backend, ensures the collection exists with the
// embedder's dimensionality and loads the stored chunks.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.Collection == "" {
		opts.Collection = DefaultCollection
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Embedder == nil {
		e, err := embedding.NewHashingEmbedder(embedding.DefaultDimensions)
		if err != nil {
			return nil, err
		}
		opts.Embedder = e
	}
	logger := opts.Logger.With("component", "policystore", "collection", opts.Collection)

	backend := opts.Backend
	if backend == nil {
		if opts.SQLite.Driver == DriverMemory {
			backend = NewMemoryBackend()
		} else {
			b, err := NewSQLiteBackend(opts.SQLite, opts.Logger)
			if err != nil {
				return nil, err
			}
			backend = b
		}
	}

	dims := opts.Embedder.Dimensions()
	if err := backend.EnsureCollection(ctx, opts.Collection, dims); err != nil {
		backend.Close()
		return nil, NewStoreError(backend.Name(), "ensure_collection", err)
	}

	rows, err := backend.LoadAll(ctx, opts.Collection)
	if err != nil {
		backend.Close()
		return nil, NewStoreError(backend.Name(), "load", err)
	}

	s := &Store{
		backend:       backend,
		embedder:      opts.Embedder,
		collection:    opts.Collection,
		minSimilarity: opts.MinSimilarity,
		logger:        logger,
		locks:         newKeyLocks(),
		now:           func() time.Time { return time.Now().UTC() },
	}

	byID := make(map[string]*StoredChunk, len(rows))
	var maxSeq int64
	for i := range rows {
		sc := rows[i]
		byID[sc.ID] = &sc
		if sc.Seq > maxSeq {
			maxSeq = sc.Seq
		}
	}
	s.seq.Store(maxSeq)
	s.snapshot.Store(newSnapshot(byID))

	logger.Info("policy store opened",
		"backend", backend.Name(),
		"chunks", len(byID),
		"dimensions", dims,
	)

	return s, nil
}

// Backend returns the name of the underlying backend.
func (s *Store) Backend() string {
	return s.backend.Name()
}

// Collection returns the collection name.
func (s *Store) Collection() string {
	return s.collection
}

// Dimensions returns the embedding length of the collection.
func (s *Store) Dimensions() int {
	return s.embedder.Dimensions()
}

// Upsert embeds and stores chunks, replacing any chunk with the same ID.
//
// Chunks that fail validation or embedding are reported in Rejected and the
// rest are still committed. When the backend write fails nothing from the
// batch is committed, every pending chunk is reported as rejected and a
// *StoreError is returned.
func (s *Store) Upsert(ctx context.Context, chunks []Chunk) (UpsertReport, error) {
	var report UpsertReport
	if s.closed.Load() {
		return report, NewStoreError(s.backend.Name(), "upsert", ErrClosed)
	}

	dims := s.embedder.Dimensions()
	pending := make([]StoredChunk, 0, len(chunks))
	position := make(map[string]int, len(chunks))

	for _, in := range chunks {
		c := in.clone()
		if err := normalizeChunk(&c); err != nil {
			report.Rejected = append(report.Rejected, Rejection{ChunkID: c.ID, Err: err})
			continue
		}

		vec, err := s.embedder.Embed(ctx, c.Text)
		if err != nil {
			if ctx.Err() != nil {
				return report, NewStoreError(s.backend.Name(), "embed", ctx.Err())
			}
			report.Rejected = append(report.Rejected, Rejection{ChunkID: c.ID, Err: fmt.Errorf("embed: %w", err)})
			continue
		}
		if len(vec) != dims {
			report.Rejected = append(report.Rejected, Rejection{
				ChunkID: c.ID,
				Err:     fmt.Errorf("%w: got %d, want %d", errDimension, len(vec), dims),
			})
			continue
		}
		c.Embedding = vec

		// A later occurrence of the same ID in one batch wins.
		if i, ok := position[c.ID]; ok {
			pending[i] = StoredChunk{Chunk: c}
			continue
		}
		position[c.ID] = len(pending)
		pending = append(pending, StoredChunk{Chunk: c})
	}

	if len(pending) == 0 {
		return report, nil
	}

	ids := make([]string, len(pending))
	for i, sc := range pending {
		ids[i] = sc.ID
	}

	unlock := s.locks.lock(ids)
	defer unlock()

	now := s.now()
	current := s.snapshot.Load()
	for i := range pending {
		if prev, ok := current.byID[pending[i].ID]; ok {
			pending[i].Seq = prev.Seq
			pending[i].CreatedAt = prev.CreatedAt
		} else {
			pending[i].Seq = s.seq.Add(1)
			pending[i].CreatedAt = now
		}
		pending[i].UpdatedAt = now
	}

	if err := s.backend.Put(ctx, s.collection, pending); err != nil {
		for _, id := range ids {
			report.Rejected = append(report.Rejected, Rejection{ChunkID: id, Err: err})
		}
		return report, NewStoreError(s.backend.Name(), "upsert", err)
	}

	s.publish(func(m map[string]*StoredChunk) {
		for i := range pending {
			sc := pending[i]
			m[sc.ID] = &sc
		}
	})

	report.Accepted = ids
	if len(report.Rejected) > 0 {
		s.logger.Warn("partial upsert",
			"accepted", len(report.Accepted),
			"rejected", len(report.Rejected),
		)
	}
	return report, nil
}

// normalizeChunk fills in or checks the chunk ID.
func normalizeChunk(c *Chunk) error {
	if c.DocumentID == "" {
		return errEmptyDocumentID
	}
	if c.Index < 0 {
		return errNegativeIndex
	}
	want := ChunkID(c.DocumentID, c.Index)
	if c.ID == "" {
		c.ID = want
	}
	if c.ID != want {
		return errIDMismatch(c.ID, want)
	}
	if c.Text == "" {
		return errEmptyText
	}
	return nil
}

// publish installs a new snapshot built by applying fn to a copy of the
// current ID index.
func (s *Store) publish(fn func(map[string]*StoredChunk)) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	current := s.snapshot.Load()
	next := make(map[string]*StoredChunk, len(current.byID)+1)
	for id, sc := range current.byID {
		next[id] = sc
	}
	fn(next)
	s.snapshot.Store(newSnapshot(next))
}

// Query returns at most k chunks ordered by descending cosine similarity to
// text. Equal scores keep insertion order. k <= 0 yields no results.
func (s *Store) Query(ctx context.Context, text string, k int) ([]Match, error) {
	if s.closed.Load() {
		return nil, NewStoreError(s.backend.Name(), "query", ErrClosed)
	}
	if k <= 0 {
		return []Match{}, nil
	}

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, NewStoreError(s.backend.Name(), "embed", err)
	}
	if embedding.IsZero(vec) {
		return []Match{}, nil
	}

	snap := s.snapshot.Load()
	type scored struct {
		chunk *StoredChunk
		score float64
	}
	candidates := make([]scored, 0, len(snap.chunks))
	for _, sc := range snap.chunks {
		score := embedding.Cosine(vec, sc.Embedding)
		if s.minSimilarity > 0 && score < s.minSimilarity {
			continue
		}
		candidates = append(candidates, scored{chunk: sc, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}

	out := make([]Match, len(candidates))
	for i, c := range candidates {
		out[i] = Match{Chunk: c.chunk.clone(), Score: c.score}
	}
	return out, nil
}

// Get returns the chunk with the given ID.
func (s *Store) Get(ctx context.Context, id string) (Chunk, error) {
	if s.closed.Load() {
		return Chunk{}, NewStoreError(s.backend.Name(), "get", ErrClosed)
	}
	sc, ok := s.snapshot.Load().byID[id]
	if !ok {
		return Chunk{}, ErrNotFound
	}
	return sc.clone(), nil
}

// Count returns the number of stored chunks.
func (s *Store) Count() int {
	return len(s.snapshot.Load().chunks)
}

// DocumentChunks returns the number of stored chunks of documentID.
func (s *Store) DocumentChunks(documentID string) int {
	n := 0
	for _, sc := range s.snapshot.Load().chunks {
		if sc.DocumentID == documentID {
			n++
		}
	}
	return n
}

// DeleteDocument removes every chunk of documentID.
func (s *Store) DeleteDocument(ctx context.Context, documentID string) (int, error) {
	return s.PruneDocument(ctx, documentID, 0)
}

// PruneDocument removes the chunks of documentID whose index is keep or
// higher. Ingestion calls it after a document shrank.
func (s *Store) PruneDocument(ctx context.Context, documentID string, keep int) (int, error) {
	if s.closed.Load() {
		return 0, NewStoreError(s.backend.Name(), "delete", ErrClosed)
	}

	var ids []string
	for _, sc := range s.snapshot.Load().chunks {
		if sc.DocumentID == documentID && sc.Index >= keep {
			ids = append(ids, sc.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	unlock := s.locks.lock(ids)
	defer unlock()

	removed, err := s.backend.Delete(ctx, s.collection, ids)
	if err != nil {
		return 0, NewStoreError(s.backend.Name(), "delete", err)
	}

	s.publish(func(m map[string]*StoredChunk) {
		for _, id := range ids {
			delete(m, id)
		}
	})

	s.logger.Debug("chunks deleted", "document_id", documentID, "from_index", keep, "removed", removed)
	return removed, nil
}

// Ping verifies the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.closed.Load() {
		return NewStoreError(s.backend.Name(), "ping", ErrClosed)
	}
	if err := s.backend.Ping(ctx); err != nil {
		return NewStoreError(s.backend.Name(), "ping", err)
	}
	return nil
}

// Close releases the backend. Close is idempotent.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	if err := s.backend.Close(); err != nil {
		return NewStoreError(s.backend.Name(), "close", err)
	}
	s.logger.Info("policy store closed")
	return nil
}
