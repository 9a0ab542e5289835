package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "AIGOV_"

// LoadConfig loads configuration from a YAML file at the specified path.
// The file is decoded on top of Default, then ApplyDefaults and Validate
// run. An empty path yields the validated defaults. Environment variables
// are not consulted; use LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	cfg, err := loadFile(path)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention AIGOV_SECTION_FIELD (e.g., AIGOV_STORE_PATH) and always take
// precedence over the file.
//
// The loading sequence is:
// 1. Start from default values
// 2. Decode the YAML file on top
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := loadFile(path)
	if err != nil {
		return nil, err
	}

	if errs := applyEnvOverrides(cfg, os.LookupEnv); len(errs) > 0 {
		return nil, fmt.Errorf("invalid environment override: %w", ValidationError{Errors: errs})
	}
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)
	return cfg, nil
}

// lookupFunc matches os.LookupEnv so tests can inject an environment.
type lookupFunc func(key string) (string, bool)

// envOverrides applies AIGOV_* variables and records every unparsable value.
type envOverrides struct {
	lookup lookupFunc
	errs   []FieldError
}

func (e *envOverrides) get(name string) (string, bool) {
	val, ok := e.lookup(EnvPrefix + name)
	if !ok || val == "" {
		return "", false
	}
	return val, true
}

func (e *envOverrides) fail(name, val, kind string) {
	e.errs = append(e.errs, FieldError{
		Field:   EnvPrefix + name,
		Message: fmt.Sprintf("cannot parse %q as %s", val, kind),
	})
}

func (e *envOverrides) str(name string, dst *string) {
	if val, ok := e.get(name); ok {
		*dst = val
	}
}

func (e *envOverrides) list(name string, dst *[]string) {
	val, ok := e.get(name)
	if !ok {
		return
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}

func (e *envOverrides) integer(name string, dst *int) {
	if val, ok := e.get(name); ok {
		i, err := strconv.Atoi(val)
		if err != nil {
			e.fail(name, val, "integer")
			return
		}
		*dst = i
	}
}

func (e *envOverrides) integer64(name string, dst *int64) {
	if val, ok := e.get(name); ok {
		i, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			e.fail(name, val, "integer")
			return
		}
		*dst = i
	}
}

func (e *envOverrides) float(name string, dst *float64) {
	if val, ok := e.get(name); ok {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			e.fail(name, val, "number")
			return
		}
		*dst = f
	}
}

func (e *envOverrides) boolean(name string, dst *bool) {
	if val, ok := e.get(name); ok {
		b, err := strconv.ParseBool(val)
		if err != nil {
			e.fail(name, val, "boolean")
			return
		}
		*dst = b
	}
}

func (e *envOverrides) duration(name string, dst *time.Duration) {
	if val, ok := e.get(name); ok {
		d, err := time.ParseDuration(val)
		if err != nil {
			e.fail(name, val, "duration")
			return
		}
		*dst = d
	}
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. List values are comma separated.
func applyEnvOverrides(cfg *Config, lookup lookupFunc) []FieldError {
	env := &envOverrides{lookup: lookup}

	// Redaction overrides
	env.list("REDACTION_ENTITIES", &cfg.Redaction.Entities)
	env.list("REDACTION_LOCATIONS", &cfg.Redaction.Locations)
	env.float("REDACTION_MIN_CONFIDENCE", &cfg.Redaction.MinConfidence)

	// Ingestion overrides
	env.str("INGESTION_SOURCE_DIR", &cfg.Ingestion.SourceDir)
	env.list("INGESTION_EXTENSIONS", &cfg.Ingestion.Extensions)
	env.integer("INGESTION_CHUNK_SIZE", &cfg.Ingestion.ChunkSize)
	env.integer("INGESTION_CHUNK_OVERLAP", &cfg.Ingestion.ChunkOverlap)
	env.integer("INGESTION_MIN_CHUNK_LENGTH", &cfg.Ingestion.MinChunkLength)
	env.integer("INGESTION_MIN_DOCUMENT_LENGTH", &cfg.Ingestion.MinDocumentLength)
	env.boolean("INGESTION_PRUNE_STALE", &cfg.Ingestion.PruneStale)
	env.boolean("INGESTION_WATCH", &cfg.Ingestion.Watch)
	env.duration("INGESTION_WATCH_DEBOUNCE", &cfg.Ingestion.WatchDebounce)
	env.str("INGESTION_SCHEDULE", &cfg.Ingestion.Schedule)

	// Store overrides
	env.str("STORE_PATH", &cfg.Store.Path)
	env.str("STORE_DRIVER", &cfg.Store.Driver)
	env.str("STORE_COLLECTION", &cfg.Store.Collection)
	env.integer("STORE_DIMENSIONS", &cfg.Store.Dimensions)
	env.duration("STORE_BUSY_TIMEOUT", &cfg.Store.BusyTimeout)
	env.boolean("STORE_WAL_MODE", &cfg.Store.WALMode)

	// Retrieval overrides
	env.integer("RETRIEVAL_TOP_K", &cfg.Retrieval.TopK)
	env.float("RETRIEVAL_MIN_SIMILARITY", &cfg.Retrieval.MinSimilarity)

	// Decision overrides
	env.str("DECISION_STRATEGY", &cfg.Decision.Strategy)

	// Server overrides
	env.str("SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	env.duration("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	env.duration("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	env.duration("SERVER_IDLE_TIMEOUT", &cfg.Server.IdleTimeout)
	env.duration("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	env.duration("SERVER_REQUEST_TIMEOUT", &cfg.Server.RequestTimeout)
	env.integer64("SERVER_MAX_BODY_BYTES", &cfg.Server.MaxBodyBytes)
	env.boolean("SERVER_CORS_ENABLED", &cfg.Server.CORS.Enabled)
	env.list("SERVER_CORS_ALLOWED_ORIGINS", &cfg.Server.CORS.AllowedOrigins)

	// Telemetry overrides
	env.str("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	env.str("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	env.boolean("TELEMETRY_LOGGING_ADD_SOURCE", &cfg.Telemetry.Logging.AddSource)
	env.boolean("TELEMETRY_LOGGING_REDACT_PII", &cfg.Telemetry.Logging.RedactPII)
	env.boolean("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	env.str("TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	env.boolean("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	env.str("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	env.float("TELEMETRY_TRACING_SAMPLE_RATIO", &cfg.Telemetry.Tracing.SampleRatio)
	env.str("TELEMETRY_TRACING_SERVICE_NAME", &cfg.Telemetry.Tracing.ServiceName)
	env.boolean("TELEMETRY_TRACING_INSECURE", &cfg.Telemetry.Tracing.Insecure)

	return env.errs
}
