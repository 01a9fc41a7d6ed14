package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDefaultsAreClean(t *testing.T) {
	ve := Validate(DefaultConfig())
	assert.Nil(t, ve)
}

func TestValidateServer(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		wantErrs bool
		wantWarn bool
	}{
		{
			name:     "port too low",
			mutate:   func(c *Config) { c.Server.Port = 0 },
			wantErrs: true,
		},
		{
			name:     "port too high",
			mutate:   func(c *Config) { c.Server.Port = 70000 },
			wantErrs: true,
		},
		{
			name:     "empty host",
			mutate:   func(c *Config) { c.Server.Host = "" },
			wantErrs: true,
		},
		{
			name:     "non-local host warns",
			mutate:   func(c *Config) { c.Server.Host = "0.0.0.0" },
			wantWarn: true,
		},
		{
			name:     "negative timeout",
			mutate:   func(c *Config) { c.Server.ReadTimeout = -1 },
			wantErrs: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			ve := Validate(cfg)
			require.NotNil(t, ve)
			assert.Equal(t, tt.wantErrs, ve.HasErrors())
			if tt.wantWarn {
				assert.True(t, ve.HasWarnings())
			}
		})
	}
}

func TestValidateResolve(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Resolve.MinVersion = "not-a-version"
	ve := Validate(cfg)
	require.NotNil(t, ve)
	assert.True(t, ve.HasErrors())

	cfg = DefaultConfig()
	cfg.Resolve.RetryAttempts = 0
	ve = Validate(cfg)
	require.NotNil(t, ve)
	assert.True(t, ve.HasErrors())

	cfg = DefaultConfig()
	cfg.Resolve.CallTimeout = 0
	ve = Validate(cfg)
	require.NotNil(t, ve)
	assert.True(t, ve.HasErrors())
}

func TestValidateMarkers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Markers.InvalidColorPolicy = "lenient"
	ve := Validate(cfg)
	require.NotNil(t, ve)
	assert.True(t, ve.HasErrors())

	for _, policy := range []string{"reject", "default"} {
		cfg := DefaultConfig()
		cfg.Markers.InvalidColorPolicy = policy
		assert.Nil(t, Validate(cfg), policy)
	}
}

func TestValidateOutput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output.LogLevel = "chatty"
	ve := Validate(cfg)
	require.NotNil(t, ve)
	assert.True(t, ve.HasErrors())

	cfg = DefaultConfig()
	cfg.Output.Format = "xml"
	ve = Validate(cfg)
	require.NotNil(t, ve)
	assert.True(t, ve.HasErrors())

	cfg = DefaultConfig()
	cfg.Output.Verbose = true
	cfg.Output.Quiet = true
	ve = Validate(cfg)
	require.NotNil(t, ve)
	assert.False(t, ve.HasErrors())
	assert.True(t, ve.HasWarnings())
}

func TestValidationErrorMessage(t *testing.T) {
	ve := &ValidationError{}
	ve.Addf("bad port %d", 0)
	ve.Warnf("exposed host")
	msg := ve.Error()
	assert.Contains(t, msg, "bad port 0")
	assert.Contains(t, msg, "exposed host")
	assert.Contains(t, msg, "configuration validation failed")
}
