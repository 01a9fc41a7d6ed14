package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/postflow/resolve-mcp/internal/errors"
	"github.com/postflow/resolve-mcp/internal/ops"
	"github.com/postflow/resolve-mcp/internal/version"
)

// toolPrefix namespaces every operation as an MCP tool.
const toolPrefix = "resolve."

// Server exposes the operation registry as an MCP server.
type Server struct {
	registry *ops.Registry
	logger   *slog.Logger
	cache    *ResourceCache
}

// ServerOption configures the MCP server.
type ServerOption func(*Server)

// WithLogger sets a custom logger. MCP servers own stdout, so loggers
// must write to stderr or a file.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithCache replaces the resource cache, mainly for tests.
func WithCache(cache *ResourceCache) ServerOption {
	return func(s *Server) {
		s.cache = cache
	}
}

// NewServer creates an MCP server over the operation registry.
func NewServer(registry *ops.Registry, opts ...ServerOption) *Server {
	s := &Server{
		registry: registry,
		logger:   slog.New(slog.NewTextHandler(os.Stderr, nil)),
		cache:    NewResourceCache(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ServeStdio serves MCP over stdin/stdout until EOF.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve runs the message loop over the given reader and writer.
func (s *Server) Serve(ctx context.Context, reader io.Reader, writer io.Writer) error {
	transport := NewStdioTransport(reader, writer)
	defer transport.Close()

	loop := NewMessageLoop(transport, s)
	s.logger.Info("mcp server started", "version", version.Get())
	return loop.Run(ctx)
}

// HandleRequest implements MessageHandler.
func (s *Server) HandleRequest(ctx context.Context, req *Request) *Response {
	s.logger.Debug("handling request", "method", req.Method, "id", req.ID)

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "initialized", "notifications/initialized":
		// Notification, no response needed.
		return nil
	case "tools/list":
		return NewResponse(req.ID, ListToolsResult{Tools: s.listTools()})
	case "tools/call":
		return s.handleCallTool(ctx, req)
	case "resources/list":
		return NewResponse(req.ID, ListResourcesResult{Resources: s.listResources()})
	case "resources/read":
		return s.handleReadResource(ctx, req)
	case "prompts/list":
		return NewResponse(req.ID, ListPromptsResult{Prompts: s.listPrompts()})
	case "prompts/get":
		return s.handleGetPrompt(ctx, req)
	case "ping":
		return NewResponse(req.ID, map[string]any{})
	default:
		return NewErrorResponse(req.ID, ErrCodeMethodNotFound, "Method not found", req.Method)
	}
}

func (s *Server) handleInitialize(req *Request) *Response {
	var params InitializeParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return NewErrorResponse(req.ID, ErrCodeInvalidParams, "Invalid params", err.Error())
	}

	result := InitializeResult{
		ProtocolVersion: MCPVersion,
		Capabilities: ServerCapabilities{
			Tools:     &ToolsCapability{},
			Resources: &ResourcesCapability{},
			Prompts:   &PromptsCapability{},
			Logging:   &LoggingCapability{},
		},
		ServerInfo: Implementation{
			Name:    "resolve-mcp",
			Version: version.Get(),
		},
		Instructions: `resolve-mcp bridges AI agents to a running DaVinci Resolve instance.

Tools are namespaced resolve.* and map one-to-one onto editing operations:
projects and timelines, markers, source timecode reports, media pool
management, color page grading nodes, the render queue, project and
timeline settings, and UI layout presets. Call resolve.get_api_capabilities
first to learn what the connected host supports.

Resources give cheap read-only snapshots:
- resolve://version: host version string
- resolve://capabilities: probed scripting API surface
- resolve://project: open project summary
- resolve://timelines: current timeline with tracks and clips
- resolve://markers: markers on the current timeline
- resolve://media-pool: media pool clips and bins
- resolve://render-queue: render queue state

Resolve must be running with scripting enabled; operations fail with a
connection error otherwise.`,
	}

	return NewResponse(req.ID, result)
}

func (s *Server) handleCallTool(ctx context.Context, req *Request) *Response {
	var params CallToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return NewErrorResponse(req.ID, ErrCodeInvalidParams, "Invalid params", err.Error())
	}

	opName := strings.TrimPrefix(params.Name, toolPrefix)
	if opName == params.Name || !s.registry.Has(opName) {
		return NewErrorResponse(req.ID, ErrCodeMethodNotFound, "Tool not found", params.Name)
	}

	result, err := s.registry.Dispatch(ctx, opName, params.Arguments)
	if err != nil {
		// Tool failures are tool results, not protocol errors, so the
		// agent can read them and adjust.
		return NewResponse(req.ID, NewToolResultError(errors.RedactError(err).Error()))
	}

	if mutatingOps[opName] {
		s.cache.InvalidateProjectState()
	}

	toolResult, err := NewToolResultJSON(result)
	if err != nil {
		return NewErrorResponse(req.ID, ErrCodeInternalError, "Failed to encode result", err.Error())
	}
	return NewResponse(req.ID, toolResult)
}

func (s *Server) handleReadResource(ctx context.Context, req *Request) *Response {
	var params ReadResourceParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return NewErrorResponse(req.ID, ErrCodeInvalidParams, "Invalid params", err.Error())
	}

	if cached := s.cache.Get(params.URI); cached != nil {
		return NewResponse(req.ID, cached)
	}

	result, err := s.readResource(ctx, params.URI)
	if err != nil {
		return NewErrorResponse(req.ID, ErrCodeInternalError, "Resource read failed", errors.RedactError(err).Error())
	}
	if result == nil {
		return NewErrorResponse(req.ID, ErrCodeInvalidParams, "Unknown resource", params.URI)
	}

	s.cache.Set(params.URI, result)
	return NewResponse(req.ID, result)
}

func (s *Server) handleGetPrompt(ctx context.Context, req *Request) *Response {
	var params GetPromptParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return NewErrorResponse(req.ID, ErrCodeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.getPrompt(ctx, params.Name, params.Arguments)
	if err != nil {
		return NewErrorResponse(req.ID, ErrCodeInternalError, "Prompt failed", err.Error())
	}
	if result == nil {
		return NewErrorResponse(req.ID, ErrCodeMethodNotFound, "Prompt not found", params.Name)
	}
	return NewResponse(req.ID, result)
}
