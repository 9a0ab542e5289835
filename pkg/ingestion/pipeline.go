package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/config"
	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/policystore"
	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/telemetry/metrics"
	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/telemetry/tracing"
)

// Metadata keys written on every chunk.
const (
	MetaSource      = "source"
	MetaType        = "type"
	MetaDocumentCID = "document_cid"
	MetaContentCID  = "content_cid"
	MetaCharStart   = "char_start"
	MetaCharEnd     = "char_end"

	// DocumentType is the value of MetaType for ingested policies.
	DocumentType = "official_document"
)

// Outcomes recorded per document.
const (
	OutcomeIndexed = "indexed"
	OutcomePartial = "partial"
	OutcomeFailed  = "failed"
)

// Upserter is the part of the policy store the pipeline writes to.
type Upserter interface {
	Upsert(ctx context.Context, chunks []policystore.Chunk) (policystore.UpsertReport, error)
	PruneDocument(ctx context.Context, documentID string, keep int) (int, error)
	DeleteDocument(ctx context.Context, documentID string) (int, error)
}

// Config parameterizes extraction and chunking.
type Config struct {
	ChunkSize         int
	ChunkOverlap      int
	MinChunkLength    int
	MinDocumentLength int
	PruneStale        bool

	// Extensions filters the files IngestDirectory reads. Empty accepts
	// every file.
	Extensions []string
}

// ConfigFrom converts the ingestion section of the configuration file.
func ConfigFrom(cfg config.IngestionConfig) Config {
	return Config{
		ChunkSize:         cfg.ChunkSize,
		ChunkOverlap:      cfg.ChunkOverlap,
		MinChunkLength:    cfg.MinChunkLength,
		MinDocumentLength: cfg.MinDocumentLength,
		PruneStale:        cfg.PruneStale,
		Extensions:        cfg.Extensions,
	}
}

func (c Config) validate() error {
	switch {
	case c.ChunkSize <= 0:
		return fmt.Errorf("chunk size must be positive, got %d", c.ChunkSize)
	case c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize:
		return fmt.Errorf("chunk overlap must be within [0, %d), got %d", c.ChunkSize, c.ChunkOverlap)
	case c.MinChunkLength < 0:
		return fmt.Errorf("minimum chunk length must not be negative, got %d", c.MinChunkLength)
	case c.MinDocumentLength < 0:
		return fmt.Errorf("minimum document length must not be negative, got %d", c.MinDocumentLength)
	}
	return nil
}

// Options carries the optional collaborators of a Pipeline.
type Options struct {
	Logger  *slog.Logger
	Metrics *metrics.Collector
	Tracer  *tracing.Tracer
	// OnProgress, if set, is called after each document of a batch.
	OnProgress func(done, total int)
}

// Pipeline ingests documents into a policy store.
type Pipeline struct {
	store   Upserter
	config  Config
	logger  *slog.Logger
	metrics *metrics.Collector
	tracer  *tracing.Tracer

	onProgress func(done, total int)
}

// NewPipeline validates cfg and returns a pipeline writing to store.
func NewPipeline(store Upserter, cfg Config, opts Options) (*Pipeline, error) {
	if store == nil {
		return nil, errors.New("ingestion: store is required")
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("ingestion: %w", err)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	exts := make([]string, 0, len(cfg.Extensions))
	for _, e := range cfg.Extensions {
		exts = append(exts, strings.ToLower(e))
	}
	cfg.Extensions = exts

	return &Pipeline{
		store:   store,
		config:  cfg,
		logger:  opts.Logger.With("component", "ingestion"),
		metrics: opts.Metrics,
		tracer:  opts.Tracer,

		onProgress: opts.OnProgress,
	}, nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config {
	return p.config
}

// IngestResult describes the ingestion of one document.
type IngestResult struct {
	DocumentID    string   `json:"document_id"`
	DocumentCID   string   `json:"document_cid,omitempty"`
	ChunksIndexed int      `json:"chunks_indexed"`
	ChunksSkipped int      `json:"chunks_skipped"`
	ChunksPruned  int      `json:"chunks_pruned"`
	Errors        []string `json:"errors,omitempty"`

	// Err is set when the document as a whole failed.
	Err error `json:"-"`
}

// Failed reports whether the document was not indexed.
func (r IngestResult) Failed() bool {
	return r.Err != nil
}

// Outcome classifies the result as indexed, partial or failed.
func (r IngestResult) Outcome() string {
	switch {
	case r.Err != nil:
		return OutcomeFailed
	case r.ChunksSkipped > 0:
		return OutcomePartial
	default:
		return OutcomeIndexed
	}
}

// Ingest extracts, chunks and upserts one document. Failures are reported in
// the result rather than returned.
func (p *Pipeline) Ingest(ctx context.Context, documentID string, raw []byte) IngestResult {
	ctx, span := p.tracer.Start(ctx, "ingestion.document")
	defer span.End()

	res := p.ingest(ctx, documentID, raw)

	tracing.SetDocumentAttributes(span, res.DocumentID, res.DocumentCID, res.ChunksIndexed, res.ChunksSkipped, res.ChunksPruned)
	tracing.SetStatus(span, res.Err)
	p.metrics.RecordIngestedDocument(res.Outcome(), res.ChunksIndexed, res.ChunksSkipped, res.ChunksPruned)

	logger := p.logger.With("document_id", documentID)
	switch res.Outcome() {
	case OutcomeFailed:
		logger.Warn("document ingestion failed", "error", res.Err)
	case OutcomePartial:
		logger.Warn("document partially indexed",
			"chunks_indexed", res.ChunksIndexed,
			"chunks_skipped", res.ChunksSkipped,
		)
	default:
		logger.Info("document indexed",
			"chunks_indexed", res.ChunksIndexed,
			"chunks_pruned", res.ChunksPruned,
			"document_cid", res.DocumentCID,
		)
	}
	return res
}

func (p *Pipeline) ingest(ctx context.Context, documentID string, raw []byte) IngestResult {
	res := IngestResult{DocumentID: documentID}
	fail := func(err error) IngestResult {
		res.Err = err
		res.Errors = append(res.Errors, err.Error())
		return res
	}

	if strings.TrimSpace(documentID) == "" {
		return fail(NewExtractionError(documentID, "empty document id", nil))
	}

	text, err := Extract(documentID, raw, p.config.MinDocumentLength)
	if err != nil {
		return fail(err)
	}

	docCID, err := ContentCID([]byte(text))
	if err != nil {
		return fail(NewExtractionError(documentID, "content identifier", err))
	}
	res.DocumentCID = docCID

	pieces := Chunk(text, p.config)
	if len(pieces) == 0 {
		return fail(NewExtractionError(documentID, "chunking", ErrNoChunks))
	}

	source := path.Base(documentID)
	chunks := make([]policystore.Chunk, 0, len(pieces))
	for _, piece := range pieces {
		contentCID, err := ContentCID([]byte(piece.Text))
		if err != nil {
			return fail(NewExtractionError(documentID, "content identifier", err))
		}
		chunks = append(chunks, policystore.Chunk{
			DocumentID: documentID,
			Index:      piece.Index,
			Text:       piece.Text,
			Metadata: map[string]string{
				MetaSource:      source,
				MetaType:        DocumentType,
				MetaDocumentCID: docCID,
				MetaContentCID:  contentCID,
				MetaCharStart:   strconv.Itoa(piece.Start),
				MetaCharEnd:     strconv.Itoa(piece.End),
			},
		})
	}

	report, err := p.store.Upsert(ctx, chunks)
	res.ChunksIndexed = len(report.Accepted)
	res.ChunksSkipped = len(report.Rejected)
	for _, r := range report.Rejected {
		res.Errors = append(res.Errors, r.Error())
	}
	if err != nil {
		p.metrics.RecordStoreError("upsert")
		res.Err = err
		return res
	}

	if p.config.PruneStale {
		pruned, err := p.store.PruneDocument(ctx, documentID, len(pieces))
		if err != nil {
			p.metrics.RecordStoreError("prune")
			res.Errors = append(res.Errors, fmt.Sprintf("prune stale chunks: %v", err))
		}
		res.ChunksPruned = pruned
	}
	return res
}

// Remove deletes every chunk of documentID from the store.
func (p *Pipeline) Remove(ctx context.Context, documentID string) (int, error) {
	removed, err := p.store.DeleteDocument(ctx, documentID)
	if err != nil {
		p.metrics.RecordStoreError("delete")
		return 0, err
	}
	p.logger.Info("document removed", "document_id", documentID, "chunks_removed", removed)
	return removed, nil
}

// Document is one source document of a batch.
type Document struct {
	ID  string
	Raw []byte

	// Err records a failure to read the document. The document is reported
	// as failed without being extracted.
	Err error
}

// BatchReport aggregates the results of a batch.
type BatchReport struct {
	Results       []IngestResult `json:"results"`
	Documents     int            `json:"documents"`
	Succeeded     int            `json:"succeeded"`
	Failed        int            `json:"failed"`
	ChunksIndexed int            `json:"chunks_indexed"`
	ChunksSkipped int            `json:"chunks_skipped"`
	ChunksPruned  int            `json:"chunks_pruned"`
}

// Failures returns the results of failed documents.
func (r BatchReport) Failures() []IngestResult {
	var out []IngestResult
	for _, res := range r.Results {
		if res.Failed() {
			out = append(out, res)
		}
	}
	return out
}

// NeedsReingest reports whether any document or chunk was not indexed.
func (r BatchReport) NeedsReingest() bool {
	return r.Failed > 0 || r.ChunksSkipped > 0
}

func (r *BatchReport) add(res IngestResult) {
	r.Results = append(r.Results, res)
	r.Documents++
	if res.Failed() {
		r.Failed++
	} else {
		r.Succeeded++
	}
	r.ChunksIndexed += res.ChunksIndexed
	r.ChunksSkipped += res.ChunksSkipped
	r.ChunksPruned += res.ChunksPruned
}

// IngestBatch ingests docs in order. A failing document, including one that
// panics, is recorded and the batch continues. Once ctx is done the
// remaining documents are reported as failed.
func (p *Pipeline) IngestBatch(ctx context.Context, docs []Document) BatchReport {
	var report BatchReport
	for i, doc := range docs {
		switch {
		case ctx.Err() != nil:
			report.add(failedResult(doc.ID, ctx.Err()))
		case doc.Err != nil:
			err := NewExtractionError(doc.ID, "unreadable source", doc.Err)
			p.metrics.RecordIngestedDocument(OutcomeFailed, 0, 0, 0)
			p.logger.Warn("document ingestion failed", "document_id", doc.ID, "error", err)
			report.add(failedResult(doc.ID, err))
		default:
			report.add(p.safeIngest(ctx, doc))
		}
		if p.onProgress != nil {
			p.onProgress(i+1, len(docs))
		}
	}

	p.logger.Info("ingestion batch completed",
		"documents", report.Documents,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"chunks_indexed", report.ChunksIndexed,
		"chunks_skipped", report.ChunksSkipped,
		"chunks_pruned", report.ChunksPruned,
	)
	return report
}

func (p *Pipeline) safeIngest(ctx context.Context, doc Document) (res IngestResult) {
	defer func() {
		if r := recover(); r != nil {
			err := NewExtractionError(doc.ID, "panic during ingestion", fmt.Errorf("%v", r))
			p.logger.Error("document ingestion panicked", "document_id", doc.ID, "error", err)
			res = failedResult(doc.ID, err)
		}
	}()
	return p.Ingest(ctx, doc.ID, doc.Raw)
}

func failedResult(documentID string, err error) IngestResult {
	return IngestResult{
		DocumentID: documentID,
		Errors:     []string{err.Error()},
		Err:        err,
	}
}

// IngestDirectory ingests every matching file under dir. Document IDs are
// slash-separated paths relative to dir. Hidden files and directories are
// skipped. The error is non-nil only when dir itself cannot be walked.
func (p *Pipeline) IngestDirectory(ctx context.Context, dir string) (BatchReport, error) {
	paths, err := p.listDocuments(dir)
	if err != nil {
		return BatchReport{}, err
	}
	if len(paths) == 0 {
		p.logger.Warn("no documents found", "dir", dir, "extensions", p.config.Extensions)
	}

	docs := make([]Document, 0, len(paths))
	for _, rel := range paths {
		docs = append(docs, readDocument(dir, rel))
	}
	return p.IngestBatch(ctx, docs), nil
}

func (p *Pipeline) listDocuments(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("ingestion: source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("ingestion: source %q is not a directory", dir)
	}

	var paths []string
	err = filepath.WalkDir(dir, func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if name == dir {
			return nil
		}
		if isHidden(name) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !p.accepts(name) {
			return nil
		}
		rel, err := filepath.Rel(dir, name)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ingestion: walk %q: %w", dir, err)
	}

	sort.Strings(paths)
	return paths, nil
}

// accepts reports whether name has one of the configured extensions.
func (p *Pipeline) accepts(name string) bool {
	if len(p.config.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range p.config.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func readDocument(dir, rel string) Document {
	raw, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	return Document{ID: rel, Raw: raw, Err: err}
}

func isHidden(name string) bool {
	return strings.HasPrefix(filepath.Base(name), ".")
}
