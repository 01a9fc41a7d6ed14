package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postflow/resolve-mcp/internal/config"
	"github.com/postflow/resolve-mcp/internal/layout"
	"github.com/postflow/resolve-mcp/internal/ops"
	"github.com/postflow/resolve-mcp/internal/resolve/resolvetest"
)

func newTestServer(t *testing.T, f *resolvetest.Fake) (*Server, *resolvetest.Fake) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Resolve.RetryAttempts = 1
	cfg.Resolve.RetryDelay = time.Millisecond
	cfg.Layout.PresetDir = t.TempDir()

	store, err := layout.NewStore(cfg.Layout.PresetDir, nil)
	require.NoError(t, err)
	client, err := resolvetest.NewClient(f)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	registry := ops.New(&ops.Deps{Client: client, Config: cfg, Layout: store})
	srv := NewServer(registry, WithLogger(slog.New(slog.DiscardHandler)))
	return srv, f
}

func request(t *testing.T, id any, method string, params any) *Request {
	t.Helper()
	req := &Request{JSONRPC: JSONRPCVersion, ID: id, Method: method}
	if params != nil {
		raw, err := json.Marshal(params)
		require.NoError(t, err)
		req.Params = raw
	}
	return req
}

func toolText(t *testing.T, resp *Response) (string, bool) {
	t.Helper()
	result, ok := resp.Result.(*CallToolResult)
	require.True(t, ok, "result is %T, want *CallToolResult", resp.Result)
	require.NotEmpty(t, result.Content)
	return result.Content[0].Text, result.IsError
}

func TestInitialize(t *testing.T) {
	srv, _ := newTestServer(t, resolvetest.Connected())

	resp := srv.HandleRequest(context.Background(), request(t, 1, "initialize", InitializeParams{
		ProtocolVersion: MCPVersion,
		ClientInfo:      Implementation{Name: "test", Version: "0.0.1"},
	}))
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(InitializeResult)
	require.True(t, ok)
	assert.Equal(t, MCPVersion, result.ProtocolVersion)
	assert.Equal(t, "resolve-mcp", result.ServerInfo.Name)
	assert.NotNil(t, result.Capabilities.Tools)
	assert.NotNil(t, result.Capabilities.Resources)
	assert.NotNil(t, result.Capabilities.Prompts)
	assert.Contains(t, result.Instructions, "resolve.get_api_capabilities")
}

func TestInitializedNotificationHasNoResponse(t *testing.T) {
	srv, _ := newTestServer(t, resolvetest.Connected())
	assert.Nil(t, srv.HandleRequest(context.Background(), request(t, nil, "notifications/initialized", nil)))
}

func TestListToolsMatchesRegistry(t *testing.T) {
	srv, _ := newTestServer(t, resolvetest.Connected())

	resp := srv.HandleRequest(context.Background(), request(t, 2, "tools/list", nil))
	require.Nil(t, resp.Error)
	result, ok := resp.Result.(ListToolsResult)
	require.True(t, ok)

	supported := srv.registry.Supported()
	require.Len(t, result.Tools, len(supported))
	for _, tool := range result.Tools {
		assert.True(t, strings.HasPrefix(tool.Name, toolPrefix), "tool %s lacks prefix", tool.Name)
		op := strings.TrimPrefix(tool.Name, toolPrefix)
		assert.True(t, srv.registry.Has(op), "tool %s has no operation", tool.Name)
		assert.NotEmpty(t, tool.Description, "tool %s has no description", tool.Name)
		assert.Equal(t, "object", tool.InputSchema.Type)
	}
}

func TestEveryMutatingOpExists(t *testing.T) {
	srv, _ := newTestServer(t, resolvetest.Connected())
	for op := range mutatingOps {
		assert.True(t, srv.registry.Has(op), "mutating op %s not registered", op)
	}
}

func TestCallTool(t *testing.T) {
	srv, _ := newTestServer(t, resolvetest.Connected())

	resp := srv.HandleRequest(context.Background(), request(t, 3, "tools/call", CallToolParams{
		Name: "resolve.get_projects",
	}))
	require.Nil(t, resp.Error)
	text, isErr := toolText(t, resp)
	assert.False(t, isErr)
	assert.Contains(t, text, "Demo")
}

func TestCallToolUnknownTool(t *testing.T) {
	srv, _ := newTestServer(t, resolvetest.Connected())

	resp := srv.HandleRequest(context.Background(), request(t, 4, "tools/call", CallToolParams{
		Name: "resolve.make_coffee",
	}))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeMethodNotFound, resp.Error.Code)
}

func TestCallToolFailureIsToolResult(t *testing.T) {
	srv, _ := newTestServer(t, resolvetest.Connected())

	resp := srv.HandleRequest(context.Background(), request(t, 5, "tools/call", CallToolParams{
		Name: "resolve.create_project",
	}))
	require.Nil(t, resp.Error, "operation failures surface as tool results, not protocol errors")
	text, isErr := toolText(t, resp)
	assert.True(t, isErr)
	assert.Contains(t, text, "name")
}

func TestListResources(t *testing.T) {
	srv, _ := newTestServer(t, resolvetest.Connected())

	resp := srv.HandleRequest(context.Background(), request(t, 6, "resources/list", nil))
	require.Nil(t, resp.Error)
	result, ok := resp.Result.(ListResourcesResult)
	require.True(t, ok)
	require.Len(t, result.Resources, 7)

	uris := make([]string, 0, len(result.Resources))
	for _, r := range result.Resources {
		uris = append(uris, r.URI)
		assert.Equal(t, "application/json", r.MIMEType)
	}
	assert.Contains(t, uris, "resolve://project")
	assert.Contains(t, uris, "resolve://markers")
}

func TestReadResourceCachesUntilMutation(t *testing.T) {
	f := resolvetest.Connected()
	f.OnResult("tl.GetMarkers", map[string]any{
		"86400": map[string]any{"color": "Blue", "name": "Review", "duration": float64(1)},
	})
	f.OnResult("SaveProject", true)
	srv, _ := newTestServer(t, f)
	ctx := context.Background()

	read := func(id int) *Response {
		return srv.HandleRequest(ctx, request(t, id, "resources/read", ReadResourceParams{
			URI: "resolve://markers",
		}))
	}

	resp := read(7)
	require.Nil(t, resp.Error)
	result, ok := resp.Result.(*ReadResourceResult)
	require.True(t, ok)
	require.Len(t, result.Contents, 1)
	assert.Contains(t, result.Contents[0].Text, "86400")

	require.Nil(t, read(8).Error)
	assert.Len(t, f.CallsTo("GetMarkers"), 1, "second read should hit the cache")

	mut := srv.HandleRequest(ctx, request(t, 9, "tools/call", CallToolParams{Name: "resolve.save_project"}))
	require.Nil(t, mut.Error)

	require.Nil(t, read(10).Error)
	assert.Len(t, f.CallsTo("GetMarkers"), 2, "mutation should invalidate the cache")
}

func TestReadResourceUnknownURI(t *testing.T) {
	srv, _ := newTestServer(t, resolvetest.Connected())

	resp := srv.HandleRequest(context.Background(), request(t, 11, "resources/read", ReadResourceParams{
		URI: "resolve://teapot",
	}))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidParams, resp.Error.Code)
}

func TestReadVersionResource(t *testing.T) {
	srv, _ := newTestServer(t, resolvetest.Connected())

	resp := srv.HandleRequest(context.Background(), request(t, 12, "resources/read", ReadResourceParams{
		URI: "resolve://version",
	}))
	require.Nil(t, resp.Error)
	result, ok := resp.Result.(*ReadResourceResult)
	require.True(t, ok)
	assert.Contains(t, result.Contents[0].Text, "19.0.2")
	assert.NotContains(t, result.Contents[0].Text, "api_capabilities")
}

func TestPrompts(t *testing.T) {
	srv, _ := newTestServer(t, resolvetest.Connected())
	ctx := context.Background()

	resp := srv.HandleRequest(ctx, request(t, 13, "prompts/list", nil))
	require.Nil(t, resp.Error)
	result, ok := resp.Result.(ListPromptsResult)
	require.True(t, ok)
	assert.Len(t, result.Prompts, 3)

	resp = srv.HandleRequest(ctx, request(t, 14, "prompts/get", GetPromptParams{
		Name:      "grading-review",
		Arguments: map[string]string{"focus": "skin tones"},
	}))
	require.Nil(t, resp.Error)
	prompt, ok := resp.Result.(*GetPromptResult)
	require.True(t, ok)
	require.Len(t, prompt.Messages, 1)
	assert.Equal(t, RoleUser, prompt.Messages[0].Role)
	assert.Contains(t, prompt.Messages[0].Content.Text, "skin tones")

	resp = srv.HandleRequest(ctx, request(t, 15, "prompts/get", GetPromptParams{Name: "daily-standup"}))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeMethodNotFound, resp.Error.Code)
}

func TestPingAndUnknownMethod(t *testing.T) {
	srv, _ := newTestServer(t, resolvetest.Connected())
	ctx := context.Background()

	resp := srv.HandleRequest(ctx, request(t, 16, "ping", nil))
	require.Nil(t, resp.Error)

	resp = srv.HandleRequest(ctx, request(t, 17, "frobnicate", nil))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeMethodNotFound, resp.Error.Code)
}

func TestServeSpeaksNDJSON(t *testing.T) {
	srv, _ := newTestServer(t, resolvetest.Connected())

	var out strings.Builder
	in := strings.NewReader(
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05"}}` + "\n" +
			`{"jsonrpc":"2.0","id":2,"method":"tools/list"}` + "\n")

	err := srv.Serve(context.Background(), in, &out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"protocolVersion":"2024-11-05"`)
	assert.Contains(t, lines[1], "resolve.get_projects")
}
