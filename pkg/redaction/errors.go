package redaction

import "fmt"

// ConfigError reports an invalid redactor configuration, most often an entity
// type outside the supported taxonomy.
type ConfigError struct {
	Field   string // "entity" or "min_confidence"
	Value   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("redaction config error [%s=%q]: %s", e.Field, e.Value, e.Message)
}

// NewConfigError creates a ConfigError for an entity type value.
func NewConfigError(value, message string) *ConfigError {
	return &ConfigError{
		Field:   "entity",
		Value:   value,
		Message: message,
	}
}
