package ingestion

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/config"
	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/policystore"
	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/telemetry/metrics"
)

// failingUpserter fails every call with err.
type failingUpserter struct {
	err error
}

func (f failingUpserter) Upsert(ctx context.Context, chunks []policystore.Chunk) (policystore.UpsertReport, error) {
	var report policystore.UpsertReport
	for _, c := range chunks {
		report.Rejected = append(report.Rejected, policystore.Rejection{ChunkID: policystore.ChunkID(c.DocumentID, c.Index), Err: f.err})
	}
	return report, policystore.NewStoreError("memory", "upsert", f.err)
}

func (f failingUpserter) PruneDocument(ctx context.Context, documentID string, keep int) (int, error) {
	return 0, f.err
}

func (f failingUpserter) DeleteDocument(ctx context.Context, documentID string) (int, error) {
	return 0, f.err
}

// panickingUpserter panics on Upsert for one document.
type panickingUpserter struct {
	Upserter
	documentID string
}

func (p panickingUpserter) Upsert(ctx context.Context, chunks []policystore.Chunk) (policystore.UpsertReport, error) {
	if len(chunks) > 0 && chunks[0].DocumentID == p.documentID {
		panic("index corrupted")
	}
	return p.Upserter.Upsert(ctx, chunks)
}

func TestNewPipeline_InvalidConfig(t *testing.T) {
	store := newTestStore(t)

	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "zero chunk size", cfg: Config{ChunkSize: 0}},
		{name: "overlap equals size", cfg: Config{ChunkSize: 10, ChunkOverlap: 10}},
		{name: "negative overlap", cfg: Config{ChunkSize: 10, ChunkOverlap: -1}},
		{name: "negative min chunk", cfg: Config{ChunkSize: 10, MinChunkLength: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewPipeline(store, tt.cfg, Options{}); err == nil {
				t.Error("NewPipeline() expected error, got nil")
			}
		})
	}

	if _, err := NewPipeline(nil, testConfig(), Options{}); err == nil {
		t.Error("NewPipeline(nil store) expected error, got nil")
	}
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.IngestionConfig{
		ChunkSize:         1000,
		ChunkOverlap:      200,
		MinChunkLength:    50,
		MinDocumentLength: 50,
		PruneStale:        true,
		Extensions:        []string{".TXT"},
	})

	if cfg.ChunkSize != 1000 || cfg.ChunkOverlap != 200 || cfg.MinChunkLength != 50 || !cfg.PruneStale {
		t.Errorf("ConfigFrom() = %+v", cfg)
	}

	p := newTestPipeline(t, newTestStore(t), cfg)
	if !p.accepts("policy.txt") {
		t.Error("extension match should ignore case")
	}
	if p.accepts("policy.pdf") {
		t.Error("policy.pdf should not be accepted")
	}
}

func TestPipeline_Ingest(t *testing.T) {
	store := newTestStore(t)
	p := newTestPipeline(t, store, testConfig())
	ctx := context.Background()

	res := p.Ingest(ctx, "housing/subsidy.txt", []byte(policyText(300)))
	if res.Err != nil {
		t.Fatalf("Ingest() failed: %v", res.Err)
	}
	// 300 characters, window 100, step 80: starts 0, 80, 160, 240.
	if res.ChunksIndexed != 4 {
		t.Errorf("ChunksIndexed = %d, want 4", res.ChunksIndexed)
	}
	if res.Outcome() != OutcomeIndexed {
		t.Errorf("Outcome() = %q, want %q", res.Outcome(), OutcomeIndexed)
	}
	if store.DocumentChunks("housing/subsidy.txt") != 4 {
		t.Errorf("store holds %d chunks, want 4", store.DocumentChunks("housing/subsidy.txt"))
	}

	chunk, err := store.Get(ctx, policystore.ChunkID("housing/subsidy.txt", 1))
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	md := chunk.Metadata
	if md[MetaSource] != "subsidy.txt" {
		t.Errorf("source = %q, want subsidy.txt", md[MetaSource])
	}
	if md[MetaType] != DocumentType {
		t.Errorf("type = %q, want %q", md[MetaType], DocumentType)
	}
	if md[MetaDocumentCID] != res.DocumentCID || res.DocumentCID == "" {
		t.Errorf("document_cid = %q, result CID = %q", md[MetaDocumentCID], res.DocumentCID)
	}
	wantCID, _ := ContentCID([]byte(chunk.Text))
	if md[MetaContentCID] != wantCID {
		t.Errorf("content_cid = %q, want %q", md[MetaContentCID], wantCID)
	}
	if md[MetaCharStart] != "80" || md[MetaCharEnd] != "180" {
		t.Errorf("offsets = [%s,%s), want [80,180)", md[MetaCharStart], md[MetaCharEnd])
	}
}

func TestPipeline_ReingestReplaces(t *testing.T) {
	store := newTestStore(t)
	p := newTestPipeline(t, store, testConfig())
	ctx := context.Background()

	first := p.Ingest(ctx, "policy.txt", []byte(policyText(300)))
	second := p.Ingest(ctx, "policy.txt", []byte(policyText(300)))

	if first.Err != nil || second.Err != nil {
		t.Fatalf("Ingest() failed: %v / %v", first.Err, second.Err)
	}
	if first.DocumentCID != second.DocumentCID {
		t.Error("unchanged document produced a new CID")
	}
	if got := store.Count(); got != first.ChunksIndexed {
		t.Errorf("Count() = %d after re-ingest, want %d", got, first.ChunksIndexed)
	}
}

func TestPipeline_PrunesStaleChunks(t *testing.T) {
	store := newTestStore(t)
	p := newTestPipeline(t, store, testConfig())
	ctx := context.Background()

	if res := p.Ingest(ctx, "policy.txt", []byte(policyText(400))); res.ChunksIndexed != 5 {
		t.Fatalf("ChunksIndexed = %d, want 5", res.ChunksIndexed)
	}

	res := p.Ingest(ctx, "policy.txt", []byte(policyText(150)))
	if res.Err != nil {
		t.Fatalf("Ingest() failed: %v", res.Err)
	}
	if res.ChunksIndexed != 2 {
		t.Errorf("ChunksIndexed = %d, want 2", res.ChunksIndexed)
	}
	if res.ChunksPruned != 3 {
		t.Errorf("ChunksPruned = %d, want 3", res.ChunksPruned)
	}
	if got := store.DocumentChunks("policy.txt"); got != 2 {
		t.Errorf("DocumentChunks() = %d, want 2", got)
	}
}

func TestPipeline_NoPruneKeepsStaleChunks(t *testing.T) {
	store := newTestStore(t)
	cfg := testConfig()
	cfg.PruneStale = false
	p := newTestPipeline(t, store, cfg)
	ctx := context.Background()

	p.Ingest(ctx, "policy.txt", []byte(policyText(400)))
	res := p.Ingest(ctx, "policy.txt", []byte(policyText(150)))

	if res.ChunksPruned != 0 {
		t.Errorf("ChunksPruned = %d, want 0", res.ChunksPruned)
	}
	if got := store.DocumentChunks("policy.txt"); got != 5 {
		t.Errorf("DocumentChunks() = %d, want 5", got)
	}
}

func TestPipeline_IngestFailures(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		raw     []byte
		wantErr error
	}{
		{name: "too short", id: "a.txt", raw: []byte("tiny"), wantErr: ErrTooShort},
		{name: "binary", id: "b.txt", raw: []byte("\x00\x01\x02" + policyText(100)), wantErr: ErrBinaryContent},
		{name: "empty id", id: "  ", raw: []byte(policyText(100))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			p := newTestPipeline(t, store, testConfig())

			res := p.Ingest(context.Background(), tt.id, tt.raw)
			if !res.Failed() {
				t.Fatal("expected failure")
			}
			var extErr *ExtractionError
			if !errors.As(res.Err, &extErr) {
				t.Fatalf("expected *ExtractionError, got %T", res.Err)
			}
			if tt.wantErr != nil && !errors.Is(res.Err, tt.wantErr) {
				t.Errorf("error = %v, want %v", res.Err, tt.wantErr)
			}
			if len(res.Errors) != 1 {
				t.Errorf("Errors = %v, want one entry", res.Errors)
			}
			if store.Count() != 0 {
				t.Errorf("store holds %d chunks after failure", store.Count())
			}
		})
	}
}

func TestPipeline_StoreFailure(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(&config.MetricsConfig{Enabled: true}, registry)

	p, err := NewPipeline(failingUpserter{err: errors.New("disk full")}, testConfig(), Options{Metrics: collector})
	if err != nil {
		t.Fatalf("NewPipeline() failed: %v", err)
	}

	res := p.Ingest(context.Background(), "policy.txt", []byte(policyText(300)))

	var storeErr *policystore.StoreError
	if !errors.As(res.Err, &storeErr) {
		t.Fatalf("expected *StoreError, got %v", res.Err)
	}
	if res.ChunksIndexed != 0 || res.ChunksSkipped != 4 {
		t.Errorf("indexed=%d skipped=%d, want 0 and 4", res.ChunksIndexed, res.ChunksSkipped)
	}

	if got := testutil.CollectAndCount(registry, "aigov_orchestrator_store_errors_total"); got != 1 {
		t.Errorf("store error series = %d, want 1", got)
	}
}

func TestPipeline_IngestBatch_IsolatesCorruptDocument(t *testing.T) {
	store := newTestStore(t)
	p := newTestPipeline(t, store, testConfig())

	docs := []Document{
		{ID: "one.txt", Raw: []byte(policyText(300))},
		{ID: "two.txt", Raw: []byte("corrupt \xff\xfe\xfd" + policyText(100))},
		{ID: "three.txt", Raw: []byte(policyText(180))},
	}

	report := p.IngestBatch(context.Background(), docs)

	if report.Documents != 3 || report.Succeeded != 2 || report.Failed != 1 {
		t.Fatalf("report = %+v, want 3 documents, 2 succeeded, 1 failed", report)
	}
	// one.txt yields 4 chunks, three.txt 2.
	if report.ChunksIndexed != 6 {
		t.Errorf("ChunksIndexed = %d, want 6", report.ChunksIndexed)
	}
	if store.Count() != 6 {
		t.Errorf("Count() = %d, want 6", store.Count())
	}

	failures := report.Failures()
	if len(failures) != 1 || failures[0].DocumentID != "two.txt" {
		t.Fatalf("Failures() = %+v, want two.txt", failures)
	}
	if !errors.Is(failures[0].Err, ErrInvalidEncoding) {
		t.Errorf("failure reason = %v, want invalid encoding", failures[0].Err)
	}
	if !report.NeedsReingest() {
		t.Error("NeedsReingest() = false with a failed document")
	}
}

func TestPipeline_IngestBatch_RecoversPanic(t *testing.T) {
	store := newTestStore(t)
	p := newTestPipeline(t, panickingUpserter{Upserter: store, documentID: "bad.txt"}, testConfig())

	report := p.IngestBatch(context.Background(), []Document{
		{ID: "bad.txt", Raw: []byte(policyText(200))},
		{ID: "good.txt", Raw: []byte(policyText(200))},
		{ID: "missing.txt", Err: os.ErrPermission},
	})

	if report.Failed != 2 || report.Succeeded != 1 {
		t.Fatalf("report = %+v, want 1 succeeded and 2 failed", report)
	}
	if !errors.Is(report.Results[2].Err, os.ErrPermission) {
		t.Errorf("read failure = %v, want permission error", report.Results[2].Err)
	}
}

func TestPipeline_IngestBatch_CancelledContext(t *testing.T) {
	store := newTestStore(t)
	p := newTestPipeline(t, store, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := p.IngestBatch(ctx, []Document{{ID: "a.txt", Raw: []byte(policyText(200))}})
	if report.Failed != 1 || !errors.Is(report.Results[0].Err, context.Canceled) {
		t.Errorf("report = %+v, want cancelled failure", report)
	}
}

func TestPipeline_IngestBatch_ReportsProgress(t *testing.T) {
	store := newTestStore(t)

	var calls [][2]int
	p, err := NewPipeline(store, testConfig(), Options{
		OnProgress: func(done, total int) { calls = append(calls, [2]int{done, total}) },
	})
	if err != nil {
		t.Fatalf("NewPipeline() failed: %v", err)
	}

	p.IngestBatch(context.Background(), []Document{
		{ID: "a.txt", Raw: []byte(policyText(200))},
		{ID: "b.txt", Raw: []byte{0xff, 0xfe, 0x00}},
		{ID: "c.txt", Raw: []byte(policyText(300))},
	})

	want := [][2]int{{1, 3}, {2, 3}, {3, 3}}
	if len(calls) != len(want) {
		t.Fatalf("progress calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("progress call %d = %v, want %v", i, calls[i], want[i])
		}
	}
}

func TestPipeline_IngestDirectory(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"housing.txt":          policyText(300),
		"health/clinics.md":    policyText(200),
		"notes.pdf":            policyText(200),
		".hidden.txt":          policyText(200),
		".drafts/draft.txt":    policyText(200),
		"health/too_short.txt": "short",
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	store := newTestStore(t)
	p := newTestPipeline(t, store, testConfig())

	report, err := p.IngestDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("IngestDirectory() failed: %v", err)
	}

	var ids []string
	for _, r := range report.Results {
		ids = append(ids, r.DocumentID)
	}
	want := []string{"health/clinics.md", "health/too_short.txt", "housing.txt"}
	if len(ids) != len(want) {
		t.Fatalf("ingested %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("document %d = %q, want %q", i, ids[i], want[i])
		}
	}
	if report.Failed != 1 || report.Succeeded != 2 {
		t.Errorf("report = %+v, want 2 succeeded, 1 failed", report)
	}
	if store.DocumentChunks("health/clinics.md") == 0 {
		t.Error("health/clinics.md not indexed")
	}
}

func TestPipeline_IngestDirectory_Missing(t *testing.T) {
	p := newTestPipeline(t, newTestStore(t), testConfig())

	if _, err := p.IngestDirectory(context.Background(), filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("IngestDirectory() expected error for missing directory")
	}
}

func TestPipeline_Remove(t *testing.T) {
	store := newTestStore(t)
	p := newTestPipeline(t, store, testConfig())
	ctx := context.Background()

	res := p.Ingest(ctx, "policy.txt", []byte(policyText(300)))
	removed, err := p.Remove(ctx, "policy.txt")
	if err != nil {
		t.Fatalf("Remove() failed: %v", err)
	}
	if removed != res.ChunksIndexed {
		t.Errorf("Remove() = %d, want %d", removed, res.ChunksIndexed)
	}
	if store.Count() != 0 {
		t.Errorf("Count() = %d after Remove", store.Count())
	}
}

func TestPipeline_Metrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(&config.MetricsConfig{Enabled: true}, registry)

	store := newTestStore(t)
	p, err := NewPipeline(store, testConfig(), Options{Metrics: collector})
	if err != nil {
		t.Fatalf("NewPipeline() failed: %v", err)
	}

	p.IngestBatch(context.Background(), []Document{
		{ID: "a.txt", Raw: []byte(policyText(300))},
		{ID: "b.txt", Raw: []byte("tiny")},
	})

	for outcome, want := range map[string]float64{OutcomeIndexed: 1, OutcomeFailed: 1} {
		got := counterValue(t, registry, "aigov_orchestrator_documents_ingested_total", "outcome", outcome)
		if got != want {
			t.Errorf("documents_ingested_total{outcome=%q} = %v, want %v", outcome, got, want)
		}
	}
	if got := counterValue(t, registry, "aigov_orchestrator_chunks_total", "result", "indexed"); got != 4 {
		t.Errorf("chunks_total{result=indexed} = %v, want 4", got)
	}
}

// counterValue returns the value of the counter series name{label=value}.
func counterValue(t *testing.T, registry *prometheus.Registry, name, label, value string) float64 {
	t.Helper()

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather() failed: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	t.Fatalf("no series %s{%s=%q}", name, label, value)
	return 0
}
