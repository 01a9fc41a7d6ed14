// Package config provides configuration management for resolve-mcp.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/postflow/resolve-mcp/internal/marker"
)

// ValidationError contains all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string

	if len(e.Errors) > 0 {
		parts = append(parts, fmt.Sprintf("Errors:\n  - %s", strings.Join(e.Errors, "\n  - ")))
	}

	if len(e.Warnings) > 0 {
		parts = append(parts, fmt.Sprintf("Warnings:\n  - %s", strings.Join(e.Warnings, "\n  - ")))
	}

	return fmt.Sprintf("configuration validation failed:\n%s", strings.Join(parts, "\n"))
}

// HasErrors returns true if there are validation errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// HasWarnings returns true if there are validation warnings.
func (e *ValidationError) HasWarnings() bool {
	return len(e.Warnings) > 0
}

// Addf adds a formatted error to the validation error.
func (e *ValidationError) Addf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

// Warnf adds a formatted warning to the validation error.
func (e *ValidationError) Warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

// Validate checks the configuration for errors and warnings. The
// returned *ValidationError is non-nil only when at least one error or
// warning was recorded; callers gate on HasErrors for fatality.
func Validate(cfg *Config) *ValidationError {
	ve := &ValidationError{}

	validateServer(&cfg.Server, ve)
	validateResolve(&cfg.Resolve, ve)
	validateMarkers(&cfg.Markers, ve)
	validateLayout(&cfg.Layout, ve)
	validateOutput(&cfg.Output, ve)

	if !ve.HasErrors() && !ve.HasWarnings() {
		return nil
	}
	return ve
}

func validateServer(s *ServerConfig, ve *ValidationError) {
	if s.Port < 1 || s.Port > 65535 {
		ve.Addf("server.port %d is out of range", s.Port)
	}
	if s.Host == "" {
		ve.Addf("server.host must not be empty")
	}
	if s.Host != "127.0.0.1" && s.Host != "localhost" && s.Host != "::1" {
		ve.Warnf("server.host %q exposes the adapter beyond the local machine; set server.api_key", s.Host)
	}
	if s.APIKey != "" && strings.HasPrefix(s.APIKey, "${") {
		ve.Warnf("server.api_key references an unset environment variable")
	}
	if s.ReadTimeout < 0 || s.WriteTimeout < 0 || s.ShutdownTimeout < 0 {
		ve.Addf("server timeouts must not be negative")
	}
}

func validateResolve(r *ResolveConfig, ve *ValidationError) {
	if r.FuscriptPath != "" {
		if _, err := os.Stat(r.FuscriptPath); err != nil {
			ve.Warnf("resolve.fuscript_path %q does not exist", r.FuscriptPath)
		}
	}
	if r.ConnectTimeout <= 0 {
		ve.Addf("resolve.connect_timeout must be positive")
	}
	if r.CallTimeout <= 0 {
		ve.Addf("resolve.call_timeout must be positive")
	}
	if r.MinVersion != "" {
		if _, err := semver.NewVersion(r.MinVersion); err != nil {
			ve.Addf("resolve.min_version %q is not a valid version: %v", r.MinVersion, err)
		}
	}
	if r.RetryAttempts < 1 {
		ve.Addf("resolve.retry_attempts must be at least 1")
	}
	if r.RetryDelay < 0 {
		ve.Addf("resolve.retry_delay must not be negative")
	}
}

func validateMarkers(m *MarkersConfig, ve *ValidationError) {
	if _, err := marker.ParsePolicy(m.InvalidColorPolicy); err != nil {
		ve.Addf("markers.invalid_color_policy %q is not valid, want reject or default", m.InvalidColorPolicy)
	}
}

func validateLayout(l *LayoutConfig, ve *ValidationError) {
	if l.PresetDir == "" {
		ve.Addf("layout.preset_dir must not be empty")
	}
}

var validLogLevels = []string{"debug", "info", "warn", "error"}

func validateOutput(o *OutputConfig, ve *ValidationError) {
	if o.Format != "text" && o.Format != "json" {
		ve.Addf("output.format %q is not valid, want text or json", o.Format)
	}
	if !slices.Contains(validLogLevels, strings.ToLower(o.LogLevel)) {
		ve.Addf("output.log_level %q is not valid, want one of %s", o.LogLevel, strings.Join(validLogLevels, ", "))
	}
	if o.Verbose && o.Quiet {
		ve.Warnf("output.verbose and output.quiet are both set; quiet wins")
	}
}
