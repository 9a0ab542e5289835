package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/config"
)

// otherLabel replaces label values once the cardinality limit is reached.
const otherLabel = "other"

// Collector is the main entry point for all Prometheus metrics in the
// orchestrator. It manages metric registration and provides a unified
// interface for recording metrics across the redactor, the ingestion
// pipeline, the decision engine and the HTTP server.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	requestMetrics   *RequestMetrics
	redactionMetrics *RedactionMetrics
	decisionMetrics  *DecisionMetrics
	ingestMetrics    *IngestionMetrics

	// Strategy names come from a registry that callers can extend.
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "aigov",
//		Subsystem: "orchestrator",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.StageDurationBuckets) == 0 {
		// Stages are in-process; most finish well under a millisecond.
		cfg.StageDurationBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(100),
	}

	c.requestMetrics = NewRequestMetrics(cfg, registry)
	c.redactionMetrics = NewRedactionMetrics(cfg, registry)
	c.decisionMetrics = NewDecisionMetrics(cfg, registry)
	c.ingestMetrics = NewIngestionMetrics(cfg, registry)

	return c
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordRequest records a completed submission.
//
// Parameters:
//   - status: "success", "invalid" or "error"
//   - duration: Total processing time
func (c *Collector) RecordRequest(status string, duration time.Duration) {
	if !c.enabled() {
		return
	}

	c.requestMetrics.RecordRequest(status, duration)
}

// RecordStage records the duration of one pipeline stage
// ("redact", "retrieve", "decide", "embed", "upsert").
func (c *Collector) RecordStage(stage string, duration time.Duration) {
	if !c.enabled() {
		return
	}

	c.requestMetrics.RecordStage(stage, duration)
}

// RecordStageError counts a failure attributed to a stage.
func (c *Collector) RecordStageError(stage string) {
	if !c.enabled() {
		return
	}

	c.requestMetrics.RecordStageError(stage)
}

// RecordRedaction adds count masked entities of the given type.
func (c *Collector) RecordRedaction(entity string, count int) {
	if !c.enabled() || count <= 0 {
		return
	}

	c.redactionMetrics.RecordEntities(entity, count)
}

// RecordDecision counts a decision produced by a strategy.
func (c *Collector) RecordDecision(strategy, status string) {
	if !c.enabled() {
		return
	}

	if !c.cardinalityLimiter.Allow("decision:" + strategy) {
		strategy = otherLabel
	}
	c.decisionMetrics.RecordDecision(strategy, status)
}

// RecordRetrieval observes how many policy chunks a query returned.
func (c *Collector) RecordRetrieval(matches int) {
	if !c.enabled() {
		return
	}

	c.decisionMetrics.RecordRetrieval(matches)
}

// RecordIngestedDocument records the outcome of ingesting one document.
//
// Parameters:
//   - outcome: "indexed", "partial" or "failed"
//   - indexed: Chunks accepted by the store
//   - skipped: Chunks rejected by the store or dropped as too short
//   - pruned: Stale chunks removed after re-ingestion
func (c *Collector) RecordIngestedDocument(outcome string, indexed, skipped, pruned int) {
	if !c.enabled() {
		return
	}

	c.ingestMetrics.RecordDocument(outcome, indexed, skipped, pruned)
}

// RecordStoreError counts a failed store operation.
func (c *Collector) RecordStoreError(operation string) {
	if !c.enabled() {
		return
	}

	c.ingestMetrics.RecordStoreError(operation)
}

// RegisterStoreSize exposes the number of stored chunks as a gauge read at
// scrape time. It may be called once per collector.
func (c *Collector) RegisterStoreSize(size func() float64) error {
	if !c.enabled() {
		return nil
	}

	return c.registry.Register(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: c.config.Namespace,
			Subsystem: c.config.Subsystem,
			Name:      "store_chunks",
			Help:      "Number of policy chunks currently in the store",
		},
		size,
	))
}

// Registry returns the Prometheus registry used by this collector.
// This can be used to create an HTTP handler for the /metrics endpoint:
//
//	http.Handle("/metrics", promhttp.HandlerFor(
//		collector.Registry(),
//		promhttp.HandlerOpts{},
//	))
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label combinations per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label set is allowed. Returns true if the label set
// already exists or if we haven't reached the cardinality limit yet.
// Returns false if adding this label set would exceed the limit.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
