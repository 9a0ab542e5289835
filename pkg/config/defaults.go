package config

import "time"

// Default values for configuration fields.
const (
	// Redaction defaults
	DefaultRedactionMinConfidence = 0.5

	// Ingestion defaults
	DefaultIngestionSourceDir         = "./data/raw_policies"
	DefaultIngestionChunkSize         = 1000
	DefaultIngestionChunkOverlap      = 200
	DefaultIngestionMinChunkLength    = 50
	DefaultIngestionMinDocumentLength = 50
	DefaultIngestionPruneStale        = true
	DefaultIngestionWatch             = false
	DefaultIngestionWatchDebounce     = 500 * time.Millisecond

	// Store defaults
	DefaultStorePath        = "data/policy_store.db"
	DefaultStoreDriver      = "sqlite"
	DefaultStoreCollection  = "gov_policies"
	DefaultStoreDimensions  = 256
	DefaultStoreBusyTimeout = 5 * time.Second
	DefaultStoreWALMode     = true

	// Retrieval defaults
	DefaultRetrievalTopK = 2

	// Decision defaults
	DefaultDecisionStrategy = "reference"

	// Server defaults
	DefaultListenAddress   = "0.0.0.0:5001"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRequestTimeout  = 30 * time.Second
	DefaultMaxBodyBytes    = int64(1048576) // 1MB

	// CORS defaults
	DefaultCORSEnabled = true
	DefaultCORSMaxAge  = 3600 // 1 hour

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultLoggingRedactPII   = true
	DefaultMetricsEnabled     = true
	DefaultPrometheusPath     = "/metrics"
	DefaultMetricsNamespace   = "aigov"
	DefaultMetricsSubsystem   = "orchestrator"
	DefaultTracingEnabled     = false
	DefaultTracingSampleRatio = 1.0
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingService     = "ai-gov-orchestrator"
	DefaultTracingInsecure    = true
	DefaultTracingTimeout     = 10 * time.Second
	DefaultLivenessPath       = "/api/health"
	DefaultReadinessPath      = "/api/ready"
	DefaultHealthCheckTimeout = 5 * time.Second
)

// Default slice values. Functions return fresh copies.
var (
	defaultEntities = []string{"PERSON", "PHONE_NUMBER", "EMAIL_ADDRESS", "LOCATION", "GOVERNMENT_ID"}

	defaultExtensions = []string{".txt", ".md"}

	defaultCORSOrigins = []string{"*"}
	defaultCORSMethods = []string{"GET", "POST", "OPTIONS"}
	defaultCORSHeaders = []string{"Content-Type", "X-Request-ID"}

	defaultStageDurationBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}
)

// Default returns a configuration with every field at its default value.
// Loaders unmarshal YAML on top of it, so booleans that default to true
// can still be switched off in the file.
func Default() *Config {
	return &Config{
		Redaction: RedactionConfig{
			Entities:      clone(defaultEntities),
			MinConfidence: DefaultRedactionMinConfidence,
		},
		Ingestion: IngestionConfig{
			SourceDir:         DefaultIngestionSourceDir,
			Extensions:        clone(defaultExtensions),
			ChunkSize:         DefaultIngestionChunkSize,
			ChunkOverlap:      DefaultIngestionChunkOverlap,
			MinChunkLength:    DefaultIngestionMinChunkLength,
			MinDocumentLength: DefaultIngestionMinDocumentLength,
			PruneStale:        DefaultIngestionPruneStale,
			Watch:             DefaultIngestionWatch,
			WatchDebounce:     DefaultIngestionWatchDebounce,
		},
		Store: StoreConfig{
			Path:        DefaultStorePath,
			Driver:      DefaultStoreDriver,
			Collection:  DefaultStoreCollection,
			Dimensions:  DefaultStoreDimensions,
			BusyTimeout: DefaultStoreBusyTimeout,
			WALMode:     DefaultStoreWALMode,
		},
		Retrieval: RetrievalConfig{
			TopK: DefaultRetrievalTopK,
		},
		Decision: DecisionConfig{
			Strategy: DefaultDecisionStrategy,
		},
		Server: ServerConfig{
			ListenAddress:   DefaultListenAddress,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			RequestTimeout:  DefaultRequestTimeout,
			MaxBodyBytes:    DefaultMaxBodyBytes,
			CORS: CORSConfig{
				Enabled:        DefaultCORSEnabled,
				AllowedOrigins: clone(defaultCORSOrigins),
				AllowedMethods: clone(defaultCORSMethods),
				AllowedHeaders: clone(defaultCORSHeaders),
				MaxAge:         DefaultCORSMaxAge,
			},
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{
				Level:     DefaultLoggingLevel,
				Format:    DefaultLoggingFormat,
				RedactPII: DefaultLoggingRedactPII,
			},
			Metrics: MetricsConfig{
				Enabled:              DefaultMetricsEnabled,
				Path:                 DefaultPrometheusPath,
				Namespace:            DefaultMetricsNamespace,
				Subsystem:            DefaultMetricsSubsystem,
				StageDurationBuckets: append([]float64(nil), defaultStageDurationBuckets...),
			},
			Tracing: TracingConfig{
				Enabled:     DefaultTracingEnabled,
				SampleRatio: DefaultTracingSampleRatio,
				Endpoint:    DefaultTracingEndpoint,
				ServiceName: DefaultTracingService,
				Insecure:    DefaultTracingInsecure,
				Timeout:     DefaultTracingTimeout,
			},
			Health: HealthConfig{
				LivenessPath:  DefaultLivenessPath,
				ReadinessPath: DefaultReadinessPath,
				CheckTimeout:  DefaultHealthCheckTimeout,
			},
		},
	}
}

// ApplyDefaults sets defaults for fields that still hold zero values, for
// example after a YAML file set a section to an empty value. Booleans are
// left alone: their defaults come from Default.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Redaction defaults
	if len(cfg.Redaction.Entities) == 0 {
		cfg.Redaction.Entities = clone(defaultEntities)
	}
	if cfg.Redaction.MinConfidence == 0 {
		cfg.Redaction.MinConfidence = DefaultRedactionMinConfidence
	}

	// Ingestion defaults
	if cfg.Ingestion.SourceDir == "" {
		cfg.Ingestion.SourceDir = DefaultIngestionSourceDir
	}
	if len(cfg.Ingestion.Extensions) == 0 {
		cfg.Ingestion.Extensions = clone(defaultExtensions)
	}
	if cfg.Ingestion.ChunkSize == 0 {
		cfg.Ingestion.ChunkSize = DefaultIngestionChunkSize
	}
	if cfg.Ingestion.MinChunkLength == 0 {
		cfg.Ingestion.MinChunkLength = DefaultIngestionMinChunkLength
	}
	if cfg.Ingestion.MinDocumentLength == 0 {
		cfg.Ingestion.MinDocumentLength = DefaultIngestionMinDocumentLength
	}
	if cfg.Ingestion.WatchDebounce == 0 {
		cfg.Ingestion.WatchDebounce = DefaultIngestionWatchDebounce
	}

	// Store defaults
	if cfg.Store.Path == "" {
		cfg.Store.Path = DefaultStorePath
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = DefaultStoreDriver
	}
	if cfg.Store.Collection == "" {
		cfg.Store.Collection = DefaultStoreCollection
	}
	if cfg.Store.Dimensions == 0 {
		cfg.Store.Dimensions = DefaultStoreDimensions
	}
	if cfg.Store.BusyTimeout == 0 {
		cfg.Store.BusyTimeout = DefaultStoreBusyTimeout
	}

	// Retrieval defaults
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = DefaultRetrievalTopK
	}

	// Decision defaults
	if cfg.Decision.Strategy == "" {
		cfg.Decision.Strategy = DefaultDecisionStrategy
	}

	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	applyCORSDefaults(&cfg.Server.CORS)

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultPrometheusPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Telemetry.Metrics.StageDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.StageDurationBuckets = append([]float64(nil), defaultStageDurationBuckets...)
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingService
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
	if cfg.Telemetry.Health.LivenessPath == "" {
		cfg.Telemetry.Health.LivenessPath = DefaultLivenessPath
	}
	if cfg.Telemetry.Health.ReadinessPath == "" {
		cfg.Telemetry.Health.ReadinessPath = DefaultReadinessPath
	}
	if cfg.Telemetry.Health.CheckTimeout == 0 {
		cfg.Telemetry.Health.CheckTimeout = DefaultHealthCheckTimeout
	}
}

// applyCORSDefaults applies default values to CORS configuration.
func applyCORSDefaults(cors *CORSConfig) {
	if len(cors.AllowedOrigins) == 0 {
		cors.AllowedOrigins = clone(defaultCORSOrigins)
	}
	if len(cors.AllowedMethods) == 0 {
		cors.AllowedMethods = clone(defaultCORSMethods)
	}
	if len(cors.AllowedHeaders) == 0 {
		cors.AllowedHeaders = clone(defaultCORSHeaders)
	}
	if cors.MaxAge == 0 {
		cors.MaxAge = DefaultCORSMaxAge
	}
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}
