package policystore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/embedding"
)

// failingEmbedder wraps a real embedder and fails for texts containing marker.
type failingEmbedder struct {
	embedding.Embedder
	marker string
}

func (f failingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.Contains(text, f.marker) {
		return nil, errors.New("embedding model unavailable")
	}
	return f.Embedder.Embed(ctx, text)
}

// failingBackend rejects every write.
type failingBackend struct {
	*MemoryBackend
}

func (f failingBackend) Put(ctx context.Context, collection string, chunks []StoredChunk) error {
	return errors.New("disk I/O error")
}

func newTestEmbedder(t *testing.T) embedding.Embedder {
	t.Helper()

	e, err := embedding.NewHashingEmbedder(embedding.DefaultDimensions)
	if err != nil {
		t.Fatalf("NewHashingEmbedder() failed: %v", err)
	}
	return e
}

func openMemoryStore(t *testing.T, opts Options) *Store {
	t.Helper()

	if opts.Backend == nil {
		opts.Backend = NewMemoryBackend()
	}
	if opts.Embedder == nil {
		opts.Embedder = newTestEmbedder(t)
	}

	s, err := Open(context.Background(), opts)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestChunkID(t *testing.T) {
	id := ChunkID("housing_policy.txt", 3)
	if id != "housing_policy.txt::3" {
		t.Errorf("ChunkID() = %q", id)
	}
	if ChunkID("housing_policy.txt", 3) != id {
		t.Error("ChunkID() is not deterministic")
	}

	doc, idx, ok := ParseChunkID("a::b::12")
	if !ok || doc != "a::b" || idx != 12 {
		t.Errorf("ParseChunkID() = %q, %d, %v", doc, idx, ok)
	}

	for _, bad := range []string{"", "doc", "::1", "doc::x", "doc::-1"} {
		if _, _, ok := ParseChunkID(bad); ok {
			t.Errorf("ParseChunkID(%q) succeeded, want failure", bad)
		}
	}
}

func TestStore_UpsertReplacesSameID(t *testing.T) {
	ctx := context.Background()
	s := openMemoryStore(t, Options{})

	first := Chunk{DocumentID: "housing.txt", Index: 0, Text: "Housing subsidy requires income below 3 lakh."}
	if _, err := s.Upsert(ctx, []Chunk{first}); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}
	before, _ := s.Get(ctx, ChunkID("housing.txt", 0))

	second := Chunk{
		DocumentID: "housing.txt",
		Index:      0,
		Text:       "Housing subsidy requires income below 5 lakh.",
		Metadata:   map[string]string{"source": "housing.txt"},
	}
	report, err := s.Upsert(ctx, []Chunk{second})
	if err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}
	if len(report.Accepted) != 1 || len(report.Rejected) != 0 {
		t.Errorf("report = %+v, want one accepted", report)
	}

	if s.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", s.Count())
	}

	got, err := s.Get(ctx, ChunkID("housing.txt", 0))
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Text != second.Text {
		t.Errorf("Text = %q, want latest text", got.Text)
	}
	if got.Metadata["source"] != "housing.txt" {
		t.Errorf("Metadata = %v, want replaced metadata", got.Metadata)
	}
	if !got.CreatedAt.Equal(before.CreatedAt) {
		t.Errorf("CreatedAt changed on replace: %v -> %v", before.CreatedAt, got.CreatedAt)
	}
}

func TestStore_UpsertDuplicateInBatch(t *testing.T) {
	ctx := context.Background()
	s := openMemoryStore(t, Options{})

	report, err := s.Upsert(ctx, []Chunk{
		{DocumentID: "d", Index: 0, Text: "old text"},
		{DocumentID: "d", Index: 0, Text: "new text"},
	})
	if err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}
	if len(report.Accepted) != 1 {
		t.Errorf("Accepted = %v, want one id", report.Accepted)
	}

	got, _ := s.Get(ctx, "d::0")
	if got.Text != "new text" {
		t.Errorf("Text = %q, want later occurrence", got.Text)
	}
}

func TestStore_UpsertValidation(t *testing.T) {
	ctx := context.Background()
	s := openMemoryStore(t, Options{})

	report, err := s.Upsert(ctx, []Chunk{
		{DocumentID: "", Index: 0, Text: "no document"},
		{DocumentID: "d", Index: -1, Text: "negative"},
		{ID: "other::0", DocumentID: "d", Index: 0, Text: "wrong id"},
		{DocumentID: "d", Index: 1, Text: ""},
		{ID: "d::2", DocumentID: "d", Index: 2, Text: "valid"},
	})
	if err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	if len(report.Rejected) != 4 {
		t.Errorf("Rejected = %d, want 4: %+v", len(report.Rejected), report.Rejected)
	}
	if len(report.Accepted) != 1 || report.Accepted[0] != "d::2" {
		t.Errorf("Accepted = %v, want [d::2]", report.Accepted)
	}
	if !report.Partial() {
		t.Error("Partial() = false, want true")
	}
}

func TestStore_UpsertPartialEmbeddingFailure(t *testing.T) {
	ctx := context.Background()
	s := openMemoryStore(t, Options{
		Embedder: failingEmbedder{Embedder: newTestEmbedder(t), marker: "CORRUPT"},
	})

	report, err := s.Upsert(ctx, []Chunk{
		{DocumentID: "a.txt", Index: 0, Text: "pension eligibility rules"},
		{DocumentID: "b.txt", Index: 0, Text: "CORRUPT bytes"},
		{DocumentID: "c.txt", Index: 0, Text: "ration card renewal"},
	})
	if err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	if len(report.Accepted) != 2 {
		t.Errorf("Accepted = %v, want 2 ids", report.Accepted)
	}
	if len(report.Rejected) != 1 || report.Rejected[0].ChunkID != "b.txt::0" {
		t.Errorf("Rejected = %+v, want b.txt::0", report.Rejected)
	}
	if s.Count() != 2 {
		t.Errorf("Count() = %d, want 2", s.Count())
	}
}

func TestStore_UpsertBackendFailure(t *testing.T) {
	ctx := context.Background()
	s := openMemoryStore(t, Options{Backend: failingBackend{NewMemoryBackend()}})

	report, err := s.Upsert(ctx, []Chunk{
		{DocumentID: "a.txt", Index: 0, Text: "pension eligibility rules"},
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("expected *StoreError, got %T", err)
	}
	if storeErr.Operation != "upsert" {
		t.Errorf("Operation = %q, want upsert", storeErr.Operation)
	}
	if len(report.Accepted) != 0 || len(report.Rejected) != 1 {
		t.Errorf("report = %+v, want one rejection", report)
	}
	if s.Count() != 0 {
		t.Errorf("Count() = %d, want 0", s.Count())
	}
}

func TestStore_Query(t *testing.T) {
	ctx := context.Background()
	s := openMemoryStore(t, Options{})

	_, err := s.Upsert(ctx, []Chunk{
		{DocumentID: "housing.txt", Index: 0, Text: "Housing subsidy scheme for families with income below the limit."},
		{DocumentID: "pension.txt", Index: 0, Text: "Old age pension is paid monthly to citizens above sixty."},
		{DocumentID: "transport.txt", Index: 0, Text: "Driving licence renewal requires a medical certificate."},
		{DocumentID: "housing.txt", Index: 1, Text: "Applicants for housing assistance submit income proof."},
	})
	if err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	for _, k := range []int{1, 2, 3, 4, 10} {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			matches, err := s.Query(ctx, "apply for a housing subsidy", k)
			if err != nil {
				t.Fatalf("Query() failed: %v", err)
			}

			want := k
			if want > 4 {
				want = 4
			}
			if len(matches) != want {
				t.Errorf("len = %d, want %d", len(matches), want)
			}
			for i := 1; i < len(matches); i++ {
				if matches[i].Score > matches[i-1].Score {
					t.Errorf("scores not non-increasing at %d: %f > %f", i, matches[i].Score, matches[i-1].Score)
				}
			}
			if matches[0].Chunk.ID != "housing.txt::0" {
				t.Errorf("top match = %s, want housing.txt::0", matches[0].Chunk.ID)
			}
		})
	}

	for _, k := range []int{0, -3} {
		matches, err := s.Query(ctx, "housing", k)
		if err != nil || len(matches) != 0 {
			t.Errorf("Query(k=%d) = %v, %v; want empty", k, matches, err)
		}
	}

	if matches, _ := s.Query(ctx, "the of and", 3); len(matches) != 0 {
		t.Errorf("stopword-only query returned %d matches", len(matches))
	}
}

func TestStore_QueryTiesKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := openMemoryStore(t, Options{})

	text := "Identical policy clause on housing income limits."
	for _, doc := range []string{"first.txt", "second.txt", "third.txt"} {
		if _, err := s.Upsert(ctx, []Chunk{{DocumentID: doc, Index: 0, Text: text}}); err != nil {
			t.Fatalf("Upsert() failed: %v", err)
		}
	}

	// Re-upserting does not move a chunk to the back.
	if _, err := s.Upsert(ctx, []Chunk{{DocumentID: "first.txt", Index: 0, Text: text}}); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	matches, err := s.Query(ctx, "housing income", 3)
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}

	want := []string{"first.txt::0", "second.txt::0", "third.txt::0"}
	for i, m := range matches {
		if m.Chunk.ID != want[i] {
			t.Errorf("match %d = %s, want %s", i, m.Chunk.ID, want[i])
		}
	}
}

func TestStore_QueryMinSimilarity(t *testing.T) {
	ctx := context.Background()
	s := openMemoryStore(t, Options{MinSimilarity: 0.99})

	if _, err := s.Upsert(ctx, []Chunk{{DocumentID: "d", Index: 0, Text: "pension rules for retired teachers"}}); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	matches, err := s.Query(ctx, "housing subsidy", 2)
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected no match above threshold, got %+v", matches)
	}
}

func TestStore_QueryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := openMemoryStore(t, Options{})

	s.Upsert(ctx, []Chunk{{DocumentID: "d", Index: 0, Text: "housing", Metadata: map[string]string{"source": "d"}}})

	matches, _ := s.Query(ctx, "housing", 1)
	matches[0].Chunk.Metadata["source"] = "tampered"

	got, _ := s.Get(ctx, "d::0")
	if got.Metadata["source"] != "d" {
		t.Error("query result shares metadata with the store")
	}
}

func TestStore_PruneDocument(t *testing.T) {
	ctx := context.Background()
	s := openMemoryStore(t, Options{})

	var chunks []Chunk
	for i := 0; i < 5; i++ {
		chunks = append(chunks, Chunk{DocumentID: "doc", Index: i, Text: fmt.Sprintf("section %d of the policy", i)})
	}
	chunks = append(chunks, Chunk{DocumentID: "other", Index: 0, Text: "unrelated"})
	if _, err := s.Upsert(ctx, chunks); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	removed, err := s.PruneDocument(ctx, "doc", 3)
	if err != nil {
		t.Fatalf("PruneDocument() failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if s.DocumentChunks("doc") != 3 {
		t.Errorf("DocumentChunks(doc) = %d, want 3", s.DocumentChunks("doc"))
	}

	removed, err = s.DeleteDocument(ctx, "doc")
	if err != nil || removed != 3 {
		t.Errorf("DeleteDocument() = %d, %v; want 3", removed, err)
	}
	if _, err := s.Get(ctx, "doc::0"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete = %v, want ErrNotFound", err)
	}
	if s.Count() != 1 {
		t.Errorf("Count() = %d, want 1", s.Count())
	}
}

func TestStore_ConcurrentUpsertAndQuery(t *testing.T) {
	ctx := context.Background()
	s := openMemoryStore(t, Options{})

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				// Writers overlap on the same IDs.
				doc := fmt.Sprintf("doc-%d", i%4)
				_, err := s.Upsert(ctx, []Chunk{{DocumentID: doc, Index: w % 2, Text: fmt.Sprintf("housing policy revision %d by %d", i, w)}})
				if err != nil {
					t.Errorf("Upsert() failed: %v", err)
					return
				}
			}
		}(w)
	}
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				matches, err := s.Query(ctx, "housing policy", 3)
				if err != nil {
					t.Errorf("Query() failed: %v", err)
					return
				}
				if len(matches) > 3 {
					t.Errorf("Query() returned %d results, want <= 3", len(matches))
					return
				}
			}
		}()
	}
	wg.Wait()

	if s.Count() != 8 {
		t.Errorf("Count() = %d, want 8 unique ids", s.Count())
	}
}

func TestStore_Closed(t *testing.T) {
	ctx := context.Background()
	s := openMemoryStore(t, Options{})

	if err := s.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() failed: %v", err)
	}

	if _, err := s.Query(ctx, "housing", 1); !errors.Is(err, ErrClosed) {
		t.Errorf("Query() after close = %v, want ErrClosed", err)
	}
	if _, err := s.Upsert(ctx, []Chunk{{DocumentID: "d", Index: 0, Text: "x"}}); !errors.Is(err, ErrClosed) {
		t.Errorf("Upsert() after close = %v, want ErrClosed", err)
	}
	if err := s.Ping(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("Ping() after close = %v, want ErrClosed", err)
	}
}
