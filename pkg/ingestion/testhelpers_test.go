package ingestion

import (
	"context"
	"strings"
	"testing"

	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/policystore"
)

const housingPolicy = "Housing subsidy scheme: applicants whose annual household income is below " +
	"the notified limit may apply for a housing subsidy. Proof of income and residence is required. "

func newTestStore(t *testing.T) *policystore.Store {
	t.Helper()

	store, err := policystore.Open(context.Background(), policystore.Options{
		SQLite: policystore.SQLiteConfig{Driver: policystore.DriverMemory},
	})
	if err != nil {
		t.Fatalf("policystore.Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testConfig() Config {
	return Config{
		ChunkSize:         100,
		ChunkOverlap:      20,
		MinChunkLength:    10,
		MinDocumentLength: 20,
		PruneStale:        true,
		Extensions:        []string{".txt", ".md"},
	}
}

func newTestPipeline(t *testing.T, store Upserter, cfg Config) *Pipeline {
	t.Helper()

	p, err := NewPipeline(store, cfg, Options{})
	if err != nil {
		t.Fatalf("NewPipeline() failed: %v", err)
	}
	return p
}

// policyText returns a document of roughly n characters.
func policyText(n int) string {
	var b strings.Builder
	for b.Len() < n {
		b.WriteString(housingPolicy)
	}
	return b.String()[:n]
}
