package cli

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/postflow/resolve-mcp/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol (MCP) server commands",
	Long: `Manage the MCP server for AI agent integration.

The Model Context Protocol lets AI agents drive DaVinci Resolve
through a standardized protocol over stdio.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server on stdio",
	Long: `Start the MCP server for AI agent communication.

The server uses stdio transport: register this command in an MCP
client configuration and the client spawns it on demand.

Tools are namespaced resolve.* and map one-to-one onto operations,
from resolve.get_projects through resolve.start_rendering.

Resources available:
  - resolve://version:      host version string
  - resolve://capabilities: probed scripting API surface
  - resolve://project:      open project summary
  - resolve://timelines:    current timeline details
  - resolve://markers:      markers on the current timeline
  - resolve://media-pool:   media pool clips
  - resolve://render-queue: render queue state`,
	RunE: runMCPServe,
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
}

func runMCPServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Stdout belongs to the protocol; all logging goes to stderr as
	// JSON so MCP clients can surface it.
	mcpLogger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	registry, client, _, err := buildRegistry(mcpLogger)
	if err != nil {
		return err
	}
	defer client.Close()

	srv := mcp.NewServer(registry, mcp.WithLogger(mcpLogger))

	mcpLogger.Info("starting MCP server",
		"version", versionInfo.Version,
		"transport", "stdio",
		"operations", len(registry.Supported()))

	return srv.ServeStdio(ctx)
}
