package config

import "time"

// ConfigBuilder provides a fluent API for building Config instances in tests.
// It starts with default values and allows selective overrides.
type ConfigBuilder struct {
	cfg Config
}

// NewTestConfig creates a new ConfigBuilder with defaults and an in-memory
// store. The resulting configuration is valid and can be used immediately.
func NewTestConfig() *ConfigBuilder {
	cfg := Default()
	cfg.Store.Driver = "memory"
	return &ConfigBuilder{cfg: *cfg}
}

// Build returns the built Config instance.
func (b *ConfigBuilder) Build() *Config {
	return &b.cfg
}

// WithListenAddress sets the server listen address.
func (b *ConfigBuilder) WithListenAddress(addr string) *ConfigBuilder {
	b.cfg.Server.ListenAddress = addr
	return b
}

// WithRequestTimeout sets the per-request timeout.
func (b *ConfigBuilder) WithRequestTimeout(d time.Duration) *ConfigBuilder {
	b.cfg.Server.RequestTimeout = d
	return b
}

// WithEntities sets the redaction entity list.
func (b *ConfigBuilder) WithEntities(entities ...string) *ConfigBuilder {
	b.cfg.Redaction.Entities = entities
	return b
}

// WithChunking sets chunk size and overlap.
func (b *ConfigBuilder) WithChunking(size, overlap int) *ConfigBuilder {
	b.cfg.Ingestion.ChunkSize = size
	b.cfg.Ingestion.ChunkOverlap = overlap
	return b
}

// WithSchedule sets the ingestion cron schedule.
func (b *ConfigBuilder) WithSchedule(expr string) *ConfigBuilder {
	b.cfg.Ingestion.Schedule = expr
	return b
}

// WithStore sets the store driver and path.
func (b *ConfigBuilder) WithStore(driver, path string) *ConfigBuilder {
	b.cfg.Store.Driver = driver
	b.cfg.Store.Path = path
	return b
}

// WithTopK sets the retrieval depth.
func (b *ConfigBuilder) WithTopK(k int) *ConfigBuilder {
	b.cfg.Retrieval.TopK = k
	return b
}

// WithTracing enables tracing with the given sample ratio.
func (b *ConfigBuilder) WithTracing(ratio float64) *ConfigBuilder {
	b.cfg.Telemetry.Tracing.Enabled = true
	b.cfg.Telemetry.Tracing.SampleRatio = ratio
	return b
}
