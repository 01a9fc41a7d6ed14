package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/postflow/resolve-mcp/internal/resolve"
	"github.com/postflow/resolve-mcp/internal/version"
)

func (s *Server) setupRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(s.corsMiddleware())

	// Health stays unauthenticated so supervisors can poll it.
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(apiKeyAuth(s.cfg.APIKey))
		r.Get("/", s.handleRoot)
		r.Get("/info", s.handleInfo)
		r.Get("/operations", s.handleOperations)
		r.Get("/mcp", s.hub.HandleConnection)
	})

	return r
}

func (s *Server) corsMiddleware() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"server":    "resolve-mcp",
		"version":   version.Get(),
		"endpoints": []string{"/", "/info", "/health", "/operations", "/mcp"},
	})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	info := map[string]any{
		"server":     "resolve-mcp",
		"version":    version.Get(),
		"uptime":     time.Since(s.startedAt).Round(time.Second).String(),
		"state":      string(s.client.State()),
		"operations": len(s.registry.Supported()),
		"sessions":   s.hub.SessionCount(),
	}
	if s.client.Connected() {
		info["resolve_version"] = s.client.Version()
		info["api_capabilities"] = s.client.Capabilities()
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	state := s.client.State()
	status := "ok"
	code := http.StatusOK
	if state == resolve.StateClosed {
		status = "closed"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status": status,
		"state":  string(state),
	})
}

func (s *Server) handleOperations(w http.ResponseWriter, r *http.Request) {
	operations := s.registry.Supported()
	writeJSON(w, http.StatusOK, map[string]any{
		"operations": operations,
		"count":      len(operations),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
