// Package server exposes the operation registry over HTTP and
// WebSocket for editor-side tooling on the same machine.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/postflow/resolve-mcp/internal/config"
	"github.com/postflow/resolve-mcp/internal/ops"
	"github.com/postflow/resolve-mcp/internal/resolve"
)

// Server is the HTTP and WebSocket front of the adapter.
type Server struct {
	cfg        config.ServerConfig
	logger     *slog.Logger
	registry   *ops.Registry
	client     *resolve.Client
	router     chi.Router
	httpServer *http.Server
	hub        *Hub
	startedAt  time.Time
}

// Deps contains everything needed to build a server.
type Deps struct {
	Config   config.ServerConfig
	Registry *ops.Registry
	Client   *resolve.Client
	Logger   *slog.Logger
}

// New creates the server. Call Start to serve.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:       deps.Config,
		logger:    logger,
		registry:  deps.Registry,
		client:    deps.Client,
		startedAt: time.Now(),
	}
	s.hub = NewHub(s.registry, s.client, logger)
	s.router = s.setupRouter()
	s.httpServer = &http.Server{
		Addr:         s.Address(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Address returns the listen address.
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.Address())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.Address(), err)
	}
	s.logger.Info("server listening", "address", s.Address())

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout())
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

// Shutdown closes WebSocket sessions and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) shutdownTimeout() time.Duration {
	if s.cfg.ShutdownTimeout > 0 {
		return s.cfg.ShutdownTimeout
	}
	return 30 * time.Second
}
