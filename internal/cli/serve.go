package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/postflow/resolve-mcp/internal/server"
)

var (
	serveHost   string
	servePort   int
	serveAPIKey string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and WebSocket server",
	Long: `Start the HTTP and WebSocket server for editor-side tooling.

Endpoints:
  GET /health       liveness, no auth
  GET /info         server and connection details
  GET /operations   supported operation names
  GET /mcp          WebSocket upgrade for the request protocol

The server binds to loopback by default; it controls a local
application and should not be exposed to a network. Set server.api_key
(or --api-key) to require an X-API-Key header on every request.

Examples:
  # Start on the default port 8765
  resolve-mcp serve

  # Custom port with an API key
  resolve-mcp serve --port 9000 --api-key "$RESOLVE_MCP_KEY"`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen address (default: 127.0.0.1)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default: 8765)")
	serveCmd.Flags().StringVar(&serveAPIKey, "api-key", "", "require this API key on every request")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if serveAPIKey != "" {
		cfg.Server.APIKey = serveAPIKey
	}

	slogger := slogLogger()
	registry, client, store, err := buildRegistry(slogger)
	if err != nil {
		return err
	}
	defer client.Close()

	srv := server.New(server.Deps{
		Config:   cfg.Server,
		Registry: registry,
		Client:   client,
		Logger:   slogger,
	})

	logger.Info("starting server",
		"address", srv.Address(),
		"operations", len(registry.Supported()),
		"auth", cfg.Server.APIKey != "")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(ctx)
	})
	if cfg.Layout.Watch {
		g.Go(func() error {
			return store.Watch(ctx)
		})
	}

	// The watcher reports ctx.Err() on shutdown; that is not a failure.
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
