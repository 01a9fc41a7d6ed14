package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postflow/resolve-mcp/internal/config"
)

func resetGlobals(t *testing.T) {
	t.Helper()
	prevCfg, prevVerbose, prevLevel, prevJSON := cfg, verbose, logLevel, outputJSON
	t.Cleanup(func() {
		cfg, verbose, logLevel, outputJSON = prevCfg, prevVerbose, prevLevel, prevJSON
		logger.SetLevel(log.InfoLevel)
		Cleanup()
	})
}

func TestCommandTree(t *testing.T) {
	names := make([]string, 0)
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"serve", "mcp", "export", "status", "version"} {
		assert.Contains(t, names, want)
	}

	sub := make([]string, 0)
	for _, cmd := range mcpCmd.Commands() {
		sub = append(sub, cmd.Name())
	}
	assert.Contains(t, sub, "serve")
}

func TestExportCommandFlags(t *testing.T) {
	require.NotNil(t, exportCmd.Flags().Lookup("path"))
	require.NotNil(t, exportCmd.Flags().Lookup("format"))

	annotations := exportCmd.Flags().Lookup("path").Annotations
	assert.Contains(t, annotations, cobra.BashCompOneRequiredFlag)
}

func TestInitConfigUsesDefaultsWithoutFile(t *testing.T) {
	resetGlobals(t)
	t.Chdir(t.TempDir())

	require.NoError(t, initConfig())
	assert.Equal(t, 8765, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "reject", cfg.Markers.InvalidColorPolicy)
}

func TestVerboseFlagRaisesLogLevel(t *testing.T) {
	resetGlobals(t)
	cfg = config.DefaultConfig()
	verbose = true

	applyGlobalFlags()
	configureLogLevel()

	assert.True(t, cfg.Output.Verbose)
	assert.Equal(t, log.DebugLevel, logger.GetLevel())
}

func TestLogLevelFlagOverridesConfig(t *testing.T) {
	resetGlobals(t)
	cfg = config.DefaultConfig()
	logLevel = "error"

	applyGlobalFlags()
	configureLogLevel()

	assert.Equal(t, log.ErrorLevel, logger.GetLevel())
}

func TestConfigureLogFile(t *testing.T) {
	resetGlobals(t)
	cfg = config.DefaultConfig()
	cfg.Output.LogFile = filepath.Join(t.TempDir(), "adapter.log")

	require.NoError(t, configureLogFile())
	require.NotNil(t, logFile)
	Cleanup()
	assert.Nil(t, logFile)

	logger.SetOutput(os.Stderr)
}
