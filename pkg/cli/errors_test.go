package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigError(t *testing.T) {
	cause := errors.New("ingestion.chunk_overlap: must be less than chunk_size")

	tests := []struct {
		name string
		err  *ConfigError
		want string
	}{
		{
			name: "with path",
			err:  NewConfigError("/etc/aigov/config.yaml", cause),
			want: "invalid configuration /etc/aigov/config.yaml: ingestion.chunk_overlap: must be less than chunk_size",
		},
		{
			name: "defaults only",
			err:  NewConfigError("", cause),
			want: "invalid configuration: ingestion.chunk_overlap: must be less than chunk_size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if !errors.Is(tt.err, cause) {
				t.Error("errors.Is() should see through ConfigError")
			}
		})
	}
}

func TestCommandError(t *testing.T) {
	underlyingErr := errors.New("store is closed")
	err := NewCommandError("ingest", underlyingErr)

	if err.Error() != "ingest: store is closed" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, underlyingErr) {
		t.Error("errors.Is() should see through CommandError")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "success", err: nil, want: 0},
		{name: "command failure", err: NewCommandError("query", errors.New("boom")), want: ExitFailure},
		{name: "config error", err: NewConfigError("", errors.New("bad")), want: ExitConfig},
		{name: "wrapped config error", err: fmt.Errorf("startup: %w", NewConfigError("", errors.New("bad"))), want: ExitConfig},
		{name: "plain error", err: errors.New("unknown flag"), want: ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
