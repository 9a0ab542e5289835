package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/redaction"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "store.path").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateRedaction(&cfg.Redaction)...)
	errs = append(errs, validateIngestion(&cfg.Ingestion)...)
	errs = append(errs, validateStore(&cfg.Store)...)
	errs = append(errs, validateRetrieval(&cfg.Retrieval)...)
	errs = append(errs, validateDecision(&cfg.Decision)...)
	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateRedaction rejects unsupported entity types here, at configuration
// time, rather than letting the redactor skip them.
func validateRedaction(cfg *RedactionConfig) []FieldError {
	var errs []FieldError

	for i, name := range cfg.Entities {
		if _, err := redaction.ParseEntityType(name); err != nil {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("redaction.entities[%d]", i),
				Message: fmt.Sprintf("unsupported entity type %q", name),
			})
		}
	}

	if cfg.MinConfidence < 0 || cfg.MinConfidence > 1 {
		errs = append(errs, FieldError{
			Field:   "redaction.min_confidence",
			Message: "must be between 0.0 and 1.0",
		})
	}

	return errs
}

// validateIngestion validates ingestion pipeline configuration.
func validateIngestion(cfg *IngestionConfig) []FieldError {
	var errs []FieldError

	if cfg.SourceDir == "" {
		errs = append(errs, FieldError{
			Field:   "ingestion.source_dir",
			Message: "source directory is required",
		})
	}

	for i, ext := range cfg.Extensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("ingestion.extensions[%d]", i),
				Message: fmt.Sprintf("extension %q must start with a dot", ext),
			})
		}
	}

	if cfg.ChunkSize <= 0 {
		errs = append(errs, FieldError{
			Field:   "ingestion.chunk_size",
			Message: "chunk size must be positive",
		})
	}
	if cfg.ChunkOverlap < 0 {
		errs = append(errs, FieldError{
			Field:   "ingestion.chunk_overlap",
			Message: "chunk overlap must be non-negative",
		})
	}
	if cfg.ChunkSize > 0 && cfg.ChunkOverlap >= cfg.ChunkSize {
		errs = append(errs, FieldError{
			Field:   "ingestion.chunk_overlap",
			Message: fmt.Sprintf("chunk overlap (%d) must be smaller than chunk size (%d)", cfg.ChunkOverlap, cfg.ChunkSize),
		})
	}
	if cfg.MinChunkLength < 0 {
		errs = append(errs, FieldError{
			Field:   "ingestion.min_chunk_length",
			Message: "minimum chunk length must be non-negative",
		})
	}
	if cfg.ChunkSize > 0 && cfg.MinChunkLength >= cfg.ChunkSize {
		errs = append(errs, FieldError{
			Field:   "ingestion.min_chunk_length",
			Message: "minimum chunk length must be smaller than chunk size",
		})
	}
	if cfg.MinDocumentLength < 0 {
		errs = append(errs, FieldError{
			Field:   "ingestion.min_document_length",
			Message: "minimum document length must be non-negative",
		})
	}
	if cfg.WatchDebounce < 0 {
		errs = append(errs, FieldError{
			Field:   "ingestion.watch_debounce",
			Message: "watch debounce must be non-negative",
		})
	}

	if cfg.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "ingestion.schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}

	return errs
}

// validateStore validates policy store configuration.
func validateStore(cfg *StoreConfig) []FieldError {
	var errs []FieldError

	validDrivers := map[string]bool{"sqlite": true, "sqlite3": true, "memory": true}
	if !validDrivers[cfg.Driver] {
		errs = append(errs, FieldError{
			Field:   "store.driver",
			Message: fmt.Sprintf("invalid driver %q (must be: sqlite, sqlite3, memory)", cfg.Driver),
		})
	}

	if cfg.Driver != "memory" && cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "store.path",
			Message: "store path is required",
		})
	}

	if cfg.Collection == "" {
		errs = append(errs, FieldError{
			Field:   "store.collection",
			Message: "collection name is required",
		})
	}

	if cfg.Dimensions < 8 {
		errs = append(errs, FieldError{
			Field:   "store.dimensions",
			Message: "dimensions must be at least 8",
		})
	}

	if cfg.BusyTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "store.busy_timeout",
			Message: "busy timeout must be non-negative",
		})
	}

	return errs
}

// validateRetrieval validates retrieval configuration.
func validateRetrieval(cfg *RetrievalConfig) []FieldError {
	var errs []FieldError

	if cfg.TopK < 1 {
		errs = append(errs, FieldError{
			Field:   "retrieval.top_k",
			Message: "top_k must be at least 1",
		})
	}
	if cfg.MinSimilarity < -1 || cfg.MinSimilarity > 1 {
		errs = append(errs, FieldError{
			Field:   "retrieval.min_similarity",
			Message: "must be between -1.0 and 1.0",
		})
	}

	return errs
}

// validateDecision validates decision engine configuration.
func validateDecision(cfg *DecisionConfig) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(cfg.Strategy) == "" {
		errs = append(errs, FieldError{
			Field:   "decision.strategy",
			Message: "strategy is required",
		})
	}

	return errs
}

// validateServer validates HTTP server configuration.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	} else if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: fmt.Sprintf("invalid host:port: %v", err),
		})
	}

	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must be positive",
		})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.idle_timeout",
			Message: "idle timeout must be positive",
		})
	}
	if cfg.RequestTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.request_timeout",
			Message: "request timeout must be positive",
		})
	}
	if cfg.MaxBodyBytes <= 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_body_bytes",
			Message: "max body bytes must be positive",
		})
	}
	if cfg.CORS.MaxAge < 0 {
		errs = append(errs, FieldError{
			Field:   "server.cors.max_age",
			Message: "max age must be non-negative",
		})
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid log level %q (must be: debug, info, warn, error)", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if !validFormats[strings.ToLower(cfg.Logging.Format)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid log format %q (must be: json, text, console)", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}
	for i := 1; i < len(cfg.Metrics.StageDurationBuckets); i++ {
		if cfg.Metrics.StageDurationBuckets[i] <= cfg.Metrics.StageDurationBuckets[i-1] {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.stage_duration_buckets",
				Message: "buckets must be strictly increasing",
			})
			break
		}
	}

	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}
	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "endpoint is required when tracing is enabled",
		})
	}

	for field, path := range map[string]string{
		"telemetry.health.liveness_path":  cfg.Health.LivenessPath,
		"telemetry.health.readiness_path": cfg.Health.ReadinessPath,
	} {
		if !strings.HasPrefix(path, "/") {
			errs = append(errs, FieldError{
				Field:   field,
				Message: "path must start with /",
			})
		}
	}

	return errs
}
