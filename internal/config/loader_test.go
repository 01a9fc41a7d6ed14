package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := NewLoader().WithSearchPaths(t.TempDir()).Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8765, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "18.0.0", cfg.Resolve.MinVersion)
	assert.Equal(t, 3, cfg.Resolve.RetryAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Resolve.RetryDelay)
	assert.Equal(t, "reject", cfg.Markers.InvalidColorPolicy)
	assert.True(t, cfg.Layout.Watch)
	assert.Equal(t, "info", cfg.Output.LogLevel)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resolve-mcp.yaml")
	content := `
server:
  host: 0.0.0.0
  port: 9000
resolve:
  call_timeout: 45s
markers:
  invalid_color_policy: default
output:
  log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 45*time.Second, cfg.Resolve.CallTimeout)
	assert.Equal(t, "default", cfg.Markers.InvalidColorPolicy)
	assert.Equal(t, "debug", cfg.Output.LogLevel)
	// Unset values keep their defaults.
	assert.Equal(t, 10*time.Second, cfg.Resolve.ConnectTimeout)
}

func TestLoadFromDirectorySearchesKnownNames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".resolve-mcp.yml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 8123\n"), 0o644))

	cfg, err := LoadFromDirectory(dir)
	require.NoError(t, err)
	assert.Equal(t, 8123, cfg.Server.Port)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestEnvVarExpansion(t *testing.T) {
	t.Setenv("RESOLVE_MCP_TEST_KEY", "sekrit")

	dir := t.TempDir()
	path := filepath.Join(dir, "resolve-mcp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  api_key: ${RESOLVE_MCP_TEST_KEY}\n"), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sekrit", cfg.Server.APIKey)
}

func TestEnvVarExpansionDefault(t *testing.T) {
	assert.Equal(t, "fallback", expandEnvVar("${RESOLVE_MCP_UNSET_VAR_42:-fallback}"))
	assert.Equal(t, "", expandEnvVar("${RESOLVE_MCP_UNSET_VAR_42}"))
	assert.Equal(t, "literal", expandEnvVar("literal"))

	t.Setenv("RESOLVE_MCP_SET_VAR", "value")
	assert.Equal(t, "value", expandEnvVar("$RESOLVE_MCP_SET_VAR"))
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("RESOLVE_MCP_SERVER_PORT", "9999")

	cfg, err := NewLoader().WithSearchPaths(t.TempDir()).Load()
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
}

func TestWriteAndReloadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resolve-mcp.yaml")

	original := DefaultConfig()
	original.Server.Port = 8111
	require.NoError(t, WriteConfig(original, path))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 8111, cfg.Server.Port)
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	_, err := FindConfigFile(dir)
	require.Error(t, err)
	assert.False(t, ConfigExists(dir))

	path := filepath.Join(dir, "resolve-mcp.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	found, err := FindConfigFile(dir)
	require.NoError(t, err)
	assert.Equal(t, path, found)
	assert.True(t, ConfigExists(dir))
}
