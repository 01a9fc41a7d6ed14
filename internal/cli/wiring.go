package cli

import (
	"log/slog"

	"github.com/postflow/resolve-mcp/internal/layout"
	"github.com/postflow/resolve-mcp/internal/ops"
	"github.com/postflow/resolve-mcp/internal/resolve"
)

// buildRegistry wires the resolve client, layout store, and operation
// registry from the loaded config. The client connects lazily, so this
// succeeds even when Resolve is not running yet.
func buildRegistry(slogger *slog.Logger) (*ops.Registry, *resolve.Client, *layout.Store, error) {
	client, err := resolve.NewClient(resolve.Options{
		FuscriptPath:   cfg.Resolve.FuscriptPath,
		ConnectTimeout: cfg.Resolve.ConnectTimeout,
		CallTimeout:    cfg.Resolve.CallTimeout,
		MinVersion:     cfg.Resolve.MinVersion,
	}, resolve.WithLogger(slogger))
	if err != nil {
		return nil, nil, nil, err
	}

	store, err := layout.NewStore(cfg.Layout.PresetDir, slogger)
	if err != nil {
		client.Close()
		return nil, nil, nil, err
	}

	registry := ops.New(&ops.Deps{
		Client: client,
		Config: cfg,
		Layout: store,
		Logger: slogger,
	})
	return registry, client, store, nil
}
