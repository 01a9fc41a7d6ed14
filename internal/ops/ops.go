// Package ops implements the remotely callable operations of the
// adapter. Every operation is a thin pass-through over the vendor
// object hierarchy: it validates input, hops handles, makes a small
// number of vendor calls, and reports failures as error values rather
// than crashing any serving loop.
package ops

import (
	"context"
	"log/slog"
	"sort"

	"github.com/postflow/resolve-mcp/internal/config"
	"github.com/postflow/resolve-mcp/internal/errors"
	"github.com/postflow/resolve-mcp/internal/layout"
	"github.com/postflow/resolve-mcp/internal/marker"
	"github.com/postflow/resolve-mcp/internal/resolve"
)

// Deps carries everything a handler may need.
type Deps struct {
	Client *resolve.Client
	Config *config.Config
	Layout *layout.Store
	Logger *slog.Logger
}

// ColorPolicy returns the configured marker color policy.
func (d *Deps) ColorPolicy() marker.ColorPolicy {
	policy, err := marker.ParsePolicy(d.Config.Markers.InvalidColorPolicy)
	if err != nil {
		return marker.PolicyReject
	}
	return policy
}

// Handler executes one operation.
type Handler func(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error)

// Registry is the operation dispatch table.
type Registry struct {
	deps     *Deps
	handlers map[string]Handler
}

// New builds the registry with every operation registered.
func New(deps *Deps) *Registry {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	r := &Registry{
		deps:     deps,
		handlers: map[string]Handler{},
	}
	registerProjectOps(r)
	registerTimelineOps(r)
	registerMarkerOps(r)
	registerTimecodeOps(r)
	registerMediaOps(r)
	registerColorOps(r)
	registerRenderOps(r)
	registerSettingsOps(r)
	registerLayoutOps(r)
	return r
}

func (r *Registry) register(name string, h Handler) {
	r.handlers[name] = h
}

// Supported returns the sorted operation allow-list.
func (r *Registry) Supported() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether an operation exists.
func (r *Registry) Has(name string) bool {
	_, ok := r.handlers[name]
	return ok
}

// Dispatch runs one operation by name.
func (r *Registry) Dispatch(ctx context.Context, name string, data map[string]any) (map[string]any, error) {
	const op = "ops.Dispatch"
	h, ok := r.handlers[name]
	if !ok {
		return nil, errors.Validation(op, "unsupported operation: "+name)
	}
	if data == nil {
		data = map[string]any{}
	}
	result, err := h(ctx, r.deps, data)
	if err != nil {
		r.deps.Logger.Debug("operation failed", "operation", name, "error", err)
		return nil, err
	}
	return result, nil
}

// Capabilities returns the current probe result for error payloads.
func (r *Registry) Capabilities() resolve.Capabilities {
	return r.deps.Client.Capabilities()
}
