package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/config"
)

// Helper function to create test config
func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:              true,
		Namespace:            "test",
		Subsystem:            "metrics",
		StageDurationBuckets: []float64{0.001, 0.01, 0.1, 1},
	}
}

func TestCollector_NewCollector(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()

	collector := NewCollector(cfg, registry)

	if collector == nil {
		t.Fatal("Expected non-nil collector")
	}
	if collector.config != cfg {
		t.Error("Collector config not set correctly")
	}
	if collector.Registry() != registry {
		t.Error("Collector registry not set correctly")
	}
}

func TestCollector_AppliesDefaults(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: true}
	NewCollector(cfg, nil)

	if cfg.Namespace != config.DefaultMetricsNamespace {
		t.Errorf("namespace = %q", cfg.Namespace)
	}
	if len(cfg.StageDurationBuckets) == 0 {
		t.Error("expected default buckets")
	}
}

func TestCollector_RecordRequest(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	tests := []struct {
		name     string
		status   string
		duration time.Duration
	}{
		{name: "success", status: "success", duration: 5 * time.Millisecond},
		{name: "invalid input", status: "invalid", duration: time.Millisecond},
		{name: "stage failure", status: "error", duration: 20 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector.RecordRequest(tt.status, tt.duration)

			count := testutil.ToFloat64(collector.requestMetrics.requestsTotal.WithLabelValues(tt.status))
			if count != 1 {
				t.Errorf("requests_total{status=%q} = %v, want 1", tt.status, count)
			}
		})
	}

	if got := testutil.CollectAndCount(collector.requestMetrics.requestDuration); got != 1 {
		t.Errorf("expected 1 duration series, got %d", got)
	}
}

func TestCollector_RecordStage(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.RecordStage("redact", time.Millisecond)
	collector.RecordStage("retrieve", 2*time.Millisecond)
	collector.RecordStage("redact", time.Millisecond)
	collector.RecordStageError("decide")

	if got := testutil.CollectAndCount(collector.requestMetrics.stageDuration); got != 2 {
		t.Errorf("expected 2 stage series, got %d", got)
	}
	if got := testutil.ToFloat64(collector.requestMetrics.stageErrors.WithLabelValues("decide")); got != 1 {
		t.Errorf("stage_errors_total{stage=decide} = %v, want 1", got)
	}
}

func TestCollector_RecordRedaction(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.RecordRedaction("PERSON", 2)
	collector.RecordRedaction("PERSON", 1)
	collector.RecordRedaction("EMAIL_ADDRESS", 0)

	if got := testutil.ToFloat64(collector.redactionMetrics.entitiesTotal.WithLabelValues("PERSON")); got != 3 {
		t.Errorf("entities_redacted_total{entity=PERSON} = %v, want 3", got)
	}
	if got := testutil.CollectAndCount(collector.redactionMetrics.entitiesTotal); got != 1 {
		t.Errorf("expected zero counts to be skipped, got %d series", got)
	}
}

func TestCollector_RecordDecision(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.RecordDecision("reference", "PENDING_REVIEW")
	collector.RecordDecision("reference", "UNCERTAIN")
	collector.RecordRetrieval(2)

	if got := testutil.ToFloat64(collector.decisionMetrics.decisionsTotal.WithLabelValues("reference", "PENDING_REVIEW")); got != 1 {
		t.Errorf("decisions_total = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(collector.decisionMetrics.retrievalMatches); got != 1 {
		t.Errorf("expected retrieval histogram, got %d series", got)
	}
}

func TestCollector_RecordDecisionCardinality(t *testing.T) {
	collector := NewCollector(testConfig(), nil)
	collector.cardinalityLimiter = NewCardinalityLimiter(1)

	collector.RecordDecision("reference", "UNCERTAIN")
	collector.RecordDecision("custom", "UNCERTAIN")

	if got := testutil.ToFloat64(collector.decisionMetrics.decisionsTotal.WithLabelValues(otherLabel, "UNCERTAIN")); got != 1 {
		t.Errorf("expected overflow strategy aggregated as %q, got %v", otherLabel, got)
	}
}

func TestCollector_RecordIngestedDocument(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.RecordIngestedDocument("indexed", 3, 0, 1)
	collector.RecordIngestedDocument("partial", 2, 1, 0)
	collector.RecordIngestedDocument("failed", 0, 0, 0)
	collector.RecordStoreError("upsert")

	im := collector.ingestMetrics
	if got := testutil.ToFloat64(im.chunksTotal.WithLabelValues("indexed")); got != 5 {
		t.Errorf("chunks_total{result=indexed} = %v, want 5", got)
	}
	if got := testutil.ToFloat64(im.chunksTotal.WithLabelValues("skipped")); got != 1 {
		t.Errorf("chunks_total{result=skipped} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(im.chunksTotal.WithLabelValues("pruned")); got != 1 {
		t.Errorf("chunks_total{result=pruned} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(im.documentsTotal.WithLabelValues("failed")); got != 1 {
		t.Errorf("documents_ingested_total{outcome=failed} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(im.storeErrors.WithLabelValues("upsert")); got != 1 {
		t.Errorf("store_errors_total{operation=upsert} = %v, want 1", got)
	}
}

func TestCollector_DisabledAndNil(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	disabled := NewCollector(cfg, nil)

	disabled.RecordRequest("success", time.Millisecond)
	if got := testutil.CollectAndCount(disabled.requestMetrics.requestsTotal); got != 0 {
		t.Errorf("disabled collector recorded %d series", got)
	}

	var nilCollector *Collector
	nilCollector.RecordRequest("success", time.Millisecond)
	nilCollector.RecordStage("redact", time.Millisecond)
	nilCollector.RecordRedaction("PERSON", 1)
	nilCollector.RecordDecision("reference", "UNCERTAIN")
	nilCollector.RecordIngestedDocument("indexed", 1, 0, 0)
	if err := nilCollector.RegisterStoreSize(func() float64 { return 1 }); err != nil {
		t.Errorf("RegisterStoreSize on nil collector: %v", err)
	}
}

func TestCollector_Handler(t *testing.T) {
	collector := NewCollector(testConfig(), nil)
	if err := collector.RegisterStoreSize(func() float64 { return 42 }); err != nil {
		t.Fatalf("RegisterStoreSize() failed: %v", err)
	}
	collector.RecordRedaction("PHONE_NUMBER", 1)

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"test_metrics_store_chunks 42",
		`test_metrics_entities_redacted_total{entity="PHONE_NUMBER"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}

	var nilCollector *Collector
	rec = httptest.NewRecorder()
	nilCollector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("nil collector status = %d, want 404", rec.Code)
	}
}

func TestCardinalityLimiter(t *testing.T) {
	cl := NewCardinalityLimiter(2)

	if !cl.Allow("a") || !cl.Allow("b") {
		t.Fatal("expected first two label sets to be allowed")
	}
	if cl.Allow("c") {
		t.Error("expected third label set to be rejected")
	}
	if !cl.Allow("a") {
		t.Error("expected existing label set to stay allowed")
	}
	if cl.Count() != 2 {
		t.Errorf("Count() = %d, want 2", cl.Count())
	}
}
