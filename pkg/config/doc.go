// Package config provides configuration management for the policy
// orchestrator.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. Every section has a
// sensible default, so an empty file (or no file at all) yields a runnable
// configuration.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention AIGOV_SECTION_FIELD.
// For example:
//
//   - AIGOV_STORE_PATH overrides store.path
//   - AIGOV_RETRIEVAL_TOP_K overrides retrieval.top_k
//   - AIGOV_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// List values such as AIGOV_REDACTION_ENTITIES are comma separated.
// Environment variables always take precedence over file-based configuration.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// There is no package-level singleton. The CLI loads a *Config once and
// passes the relevant sections to each component.
//
// # Validation
//
// All configuration is validated automatically during loading. Validation includes:
//
//   - Taxonomy checks (every redaction entity must be supported)
//   - Range validation (e.g., chunk_overlap < chunk_size, top_k >= 1)
//   - Format validation (e.g., cron schedules, host:port addresses)
//   - Known values (store driver, log level and format)
package config
