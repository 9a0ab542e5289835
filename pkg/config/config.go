package config

import "time"

// Config is the root configuration structure for the policy orchestrator.
// It is loaded once at startup and passed down explicitly; nothing reads it
// through a global.
type Config struct {
	// Redaction selects the personal data the redactor detects.
	Redaction RedactionConfig `yaml:"redaction"`

	// Ingestion controls how policy documents are read, chunked and indexed.
	Ingestion IngestionConfig `yaml:"ingestion"`

	// Store contains the policy store location and backend settings.
	Store StoreConfig `yaml:"store"`

	// Retrieval bounds the policy matches handed to the decision strategy.
	Retrieval RetrievalConfig `yaml:"retrieval"`

	// Decision selects the compliance decision strategy.
	Decision DecisionConfig `yaml:"decision"`

	// Server contains the HTTP request API configuration.
	Server ServerConfig `yaml:"server"`

	// Telemetry contains configuration for logging, metrics, tracing and
	// health checks.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// RedactionConfig contains PII redactor configuration.
type RedactionConfig struct {
	// Entities lists the entity types to detect.
	// Options: "PERSON", "PHONE_NUMBER", "EMAIL_ADDRESS", "LOCATION", "GOVERNMENT_ID"
	// Default: all of them
	Entities []string `yaml:"entities"`

	// Locations adds place names to the built-in LOCATION gazetteer.
	Locations []string `yaml:"locations"`

	// MinConfidence drops detections scored below it (0.0 to 1.0).
	// Default: 0.5
	MinConfidence float64 `yaml:"min_confidence"`
}

// IngestionConfig contains ingestion pipeline configuration.
type IngestionConfig struct {
	// SourceDir is the directory of raw policy documents.
	// Default: "./data/raw_policies"
	SourceDir string `yaml:"source_dir"`

	// Extensions lists the file extensions that are ingested.
	// Default: [".txt", ".md"]
	Extensions []string `yaml:"extensions"`

	// ChunkSize is the sliding window length in characters.
	// Default: 1000
	ChunkSize int `yaml:"chunk_size"`

	// ChunkOverlap is how many characters consecutive windows share. It must
	// be smaller than ChunkSize.
	// Default: 200
	ChunkOverlap int `yaml:"chunk_overlap"`

	// MinChunkLength discards chunks whose trimmed length does not exceed it.
	// Default: 50
	MinChunkLength int `yaml:"min_chunk_length"`

	// MinDocumentLength fails documents whose extracted text is shorter.
	// Default: 50
	MinDocumentLength int `yaml:"min_document_length"`

	// PruneStale deletes chunks left over from a longer earlier version of a
	// re-ingested document.
	// Default: true
	PruneStale bool `yaml:"prune_stale"`

	// Watch re-ingests documents when they change on disk.
	// Default: false
	Watch bool `yaml:"watch"`

	// WatchDebounce is the quiet period before changed files are re-ingested.
	// Default: 500ms
	WatchDebounce time.Duration `yaml:"watch_debounce"`

	// Schedule is a cron expression for periodic full re-ingestion.
	// Empty disables scheduling.
	// Example: "0 2 * * *" (daily at 2 AM)
	Schedule string `yaml:"schedule"`
}

// StoreConfig contains policy store configuration.
type StoreConfig struct {
	// Path is the SQLite database file.
	// Default: "data/policy_store.db"
	Path string `yaml:"path"`

	// Driver selects the storage driver.
	// Options: "sqlite" (pure Go), "sqlite3" (cgo), "memory" (not persisted)
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// Collection names the chunk collection.
	// Default: "gov_policies"
	Collection string `yaml:"collection"`

	// Dimensions is the embedding vector length. Changing it requires a new
	// collection or database.
	// Default: 256
	Dimensions int `yaml:"dimensions"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// WALMode enables Write-Ahead Logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`
}

// RetrievalConfig contains policy retrieval configuration.
type RetrievalConfig struct {
	// TopK is the number of policy chunks retrieved per request.
	// Default: 2
	TopK int `yaml:"top_k"`

	// MinSimilarity drops matches scoring below it. Zero disables the filter.
	// Default: 0
	MinSimilarity float64 `yaml:"min_similarity"`
}

// DecisionConfig contains decision engine configuration.
type DecisionConfig struct {
	// Strategy names the registered decision strategy.
	// Options: "reference"
	// Default: "reference"
	Strategy string `yaml:"strategy"`
}

// ServerConfig contains configuration for the HTTP request API.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "0.0.0.0:5001"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// RequestTimeout bounds the processing of a single request.
	// Default: 30s
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MaxBodyBytes limits the request body size.
	// Default: 1048576 (1MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS configuration.
type CORSConfig struct {
	// Enabled controls whether CORS headers are sent.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods.
	// Default: ["GET", "POST", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed request headers.
	// Default: ["Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// MaxAge is the preflight cache lifetime in seconds.
	// Default: 3600
	MaxAge int `yaml:"max_age"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactPII masks personal data in log attributes with the same
	// recognizers the request pipeline uses.
	// Default: true
	RedactPII bool `yaml:"redact_pii"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "aigov"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "orchestrator"
	Subsystem string `yaml:"subsystem"`

	// StageDurationBuckets defines histogram buckets for pipeline stage
	// duration (seconds).
	// Default: [0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5]
	StageDurationBuckets []float64 `yaml:"stage_duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "ai-gov-orchestrator"
	ServiceName string `yaml:"service_name"`

	// Insecure disables TLS for the OTLP connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// HealthConfig contains health check endpoint configuration.
type HealthConfig struct {
	// LivenessPath is the path for the liveness endpoint.
	// Default: "/api/health"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the path for the readiness endpoint.
	// Default: "/api/ready"
	ReadinessPath string `yaml:"readiness_path"`

	// CheckTimeout is the timeout for individual component health checks.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}
