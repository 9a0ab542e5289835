package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/decision"
	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/policystore"
	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/redaction"
	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/telemetry/logging"
	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/telemetry/metrics"
	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/telemetry/tracing"
)

// Pipeline stages, in execution order.
const (
	StageRedaction = "redaction"
	StageRetrieval = "retrieval"
	StageDecision  = "decision"
)

// DefaultTopK is the number of policy chunks retrieved when Options leaves
// TopK unset.
const DefaultTopK = 2

// Redactor masks personal data in request text.
type Redactor interface {
	Redact(text string) redaction.Result
}

// Retriever returns the policy chunks most similar to text, best first.
type Retriever interface {
	Query(ctx context.Context, text string, k int) ([]policystore.Match, error)
}

// Options configures an Orchestrator.
type Options struct {
	// TopK bounds the number of policy chunks handed to the strategy.
	// Default: 2
	TopK int

	Logger  *slog.Logger
	Metrics *metrics.Collector
	Tracer  *tracing.Tracer

	// NewSessionID mints the session ID of each request.
	// Default: random UUIDs
	NewSessionID func() string

	// Now returns the processing timestamp.
	// Default: time.Now
	Now func() time.Time
}

// Orchestrator wires the redactor, the policy store and a decision strategy
// into the request pipeline. It is safe for concurrent use when its
// collaborators are.
type Orchestrator struct {
	redactor  Redactor
	retriever Retriever
	strategy  decision.Strategy
	topK      int
	logger    *slog.Logger
	metrics   *metrics.Collector
	tracer    *tracing.Tracer
	sessionID func() string
	now       func() time.Time
}

// Record is the audit record of one processed request.
type Record struct {
	SessionID     string              `json:"session_id"`
	OriginalInput string              `json:"original_input"`
	MaskedInput   string              `json:"masked_input"`
	PoliciesUsed  []string            `json:"policies_used"`
	Decision      decision.Decision   `json:"expert_decision"`
	Matches       []decision.Evidence `json:"policy_matches"`
	Redactions    map[string]int      `json:"redactions,omitempty"`
	ProcessedAt   time.Time           `json:"processed_at"`
}

// New creates an Orchestrator.
func New(redactor Redactor, retriever Retriever, strategy decision.Strategy, opts Options) (*Orchestrator, error) {
	if redactor == nil {
		return nil, errors.New("orchestrator: redactor is required")
	}
	if retriever == nil {
		return nil, errors.New("orchestrator: retriever is required")
	}
	if strategy == nil {
		return nil, errors.New("orchestrator: decision strategy is required")
	}
	if opts.TopK < 0 {
		return nil, fmt.Errorf("orchestrator: top_k must not be negative, got %d", opts.TopK)
	}
	if opts.TopK == 0 {
		opts.TopK = DefaultTopK
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.NewSessionID == nil {
		opts.NewSessionID = uuid.NewString
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Orchestrator{
		redactor:  redactor,
		retriever: retriever,
		strategy:  strategy,
		topK:      opts.TopK,
		logger:    opts.Logger.With("component", "orchestrator"),
		metrics:   opts.Metrics,
		tracer:    opts.Tracer,
		sessionID: opts.NewSessionID,
		now:       opts.Now,
	}, nil
}

// Strategy returns the decision strategy in use.
func (o *Orchestrator) Strategy() decision.Strategy {
	return o.strategy
}

// Process runs raw through redaction, retrieval and decision.
//
// Blank input returns *InputError. A redaction or retrieval failure returns
// *StageError and no record. A decision strategy failure is logged and the
// record carries the UNCERTAIN fallback decision.
func (o *Orchestrator) Process(ctx context.Context, raw string) (*Record, error) {
	start := time.Now()

	if strings.TrimSpace(raw) == "" {
		o.metrics.RecordRequest("invalid", time.Since(start))
		return nil, &InputError{Cause: ErrEmptyInput}
	}

	sessionID := o.sessionID()
	ctx = logging.WithSessionID(ctx, sessionID)

	ctx, span := o.tracer.Start(ctx, "orchestrator.process")
	defer span.End()
	tracing.SetSessionAttribute(span, sessionID)

	rec, err := o.process(ctx, raw)
	if err != nil {
		tracing.SetError(span, err)
		o.metrics.RecordRequest("error", time.Since(start))
		o.logger.ErrorContext(ctx, "request processing failed", "error", err)
		return nil, err
	}

	rec.SessionID = sessionID
	tracing.SetStatus(span, nil)
	o.metrics.RecordRequest("ok", time.Since(start))
	o.logger.InfoContext(ctx, "request processed",
		"status", string(rec.Decision.Status),
		"confidence", rec.Decision.Confidence,
		"policies_used", len(rec.PoliciesUsed),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return rec, nil
}

func (o *Orchestrator) process(ctx context.Context, raw string) (*Record, error) {
	masked, counts, err := o.redact(ctx, raw)
	if err != nil {
		return nil, err
	}

	evidence, err := o.retrieve(ctx, masked)
	if err != nil {
		return nil, err
	}

	d := o.decide(ctx, masked, evidence)

	policies := make([]string, len(evidence))
	for i, e := range evidence {
		policies[i] = e.Text
	}

	return &Record{
		OriginalInput: raw,
		MaskedInput:   masked,
		PoliciesUsed:  policies,
		Decision:      d,
		Matches:       evidence,
		Redactions:    counts,
		ProcessedAt:   o.now().UTC(),
	}, nil
}

func (o *Orchestrator) redact(ctx context.Context, raw string) (masked string, counts map[string]int, err error) {
	ctx = logging.WithStage(ctx, StageRedaction)
	ctx, span := o.tracer.Start(ctx, "orchestrator.redaction")
	defer span.End()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = o.stageFailed(StageRedaction, fmt.Errorf("panic: %v", r))
			tracing.SetError(span, err)
		}
	}()

	res := o.redactor.Redact(raw)

	counts = make(map[string]int)
	for entity, n := range res.Counts() {
		counts[string(entity)] = n
		o.metrics.RecordRedaction(string(entity), n)
	}
	tracing.SetRedactionAttributes(span, counts)
	o.metrics.RecordStage(StageRedaction, time.Since(start))

	o.logger.DebugContext(ctx, "input masked", "entities", len(res.Spans)+len(res.Rescanned))
	return res.Text, counts, nil
}

func (o *Orchestrator) retrieve(ctx context.Context, masked string) ([]decision.Evidence, error) {
	ctx = logging.WithStage(ctx, StageRetrieval)
	ctx, span := o.tracer.Start(ctx, "orchestrator.retrieval")
	defer span.End()
	start := time.Now()

	matches, err := o.retriever.Query(ctx, masked, o.topK)
	if err != nil {
		o.metrics.RecordStoreError("query")
		err = o.stageFailed(StageRetrieval, err)
		tracing.SetError(span, err)
		return nil, err
	}

	evidence := make([]decision.Evidence, len(matches))
	var top float64
	for i, m := range matches {
		evidence[i] = decision.Evidence{
			ChunkID:    m.Chunk.ID,
			DocumentID: m.Chunk.DocumentID,
			Text:       m.Chunk.Text,
			Score:      m.Score,
		}
		if i == 0 {
			top = m.Score
		}
	}

	tracing.SetRetrievalAttributes(span, o.topK, len(matches), top)
	o.metrics.RecordRetrieval(len(matches))
	o.metrics.RecordStage(StageRetrieval, time.Since(start))

	o.logger.DebugContext(ctx, "policies retrieved", "matches", len(matches), "top_score", top)
	return evidence, nil
}

func (o *Orchestrator) decide(ctx context.Context, masked string, evidence []decision.Evidence) decision.Decision {
	ctx = logging.WithStage(ctx, StageDecision)
	ctx, span := o.tracer.Start(ctx, "orchestrator.decision")
	defer span.End()
	start := time.Now()

	d, err := decision.EvaluateSafely(ctx, o.strategy, masked, evidence)
	if err != nil {
		o.metrics.RecordStageError(StageDecision)
		tracing.SetError(span, err)
		o.logger.WarnContext(ctx, "decision strategy failed, falling back", "strategy", o.strategy.Name(), "error", err)
	}

	tracing.SetDecisionAttributes(span, o.strategy.Name(), string(d.Status), d.Confidence)
	o.metrics.RecordDecision(o.strategy.Name(), string(d.Status))
	o.metrics.RecordStage(StageDecision, time.Since(start))
	return d
}

func (o *Orchestrator) stageFailed(stage string, cause error) error {
	o.metrics.RecordStageError(stage)
	return NewStageError(stage, cause)
}
