package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postflow/resolve-mcp/internal/config"
	"github.com/postflow/resolve-mcp/internal/layout"
	"github.com/postflow/resolve-mcp/internal/ops"
	"github.com/postflow/resolve-mcp/internal/resolve/resolvetest"
)

func newTestServer(t *testing.T, apiKey string) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Server.APIKey = apiKey
	cfg.Resolve.RetryAttempts = 1
	cfg.Resolve.RetryDelay = time.Millisecond
	cfg.Layout.PresetDir = t.TempDir()

	store, err := layout.NewStore(cfg.Layout.PresetDir, nil)
	require.NoError(t, err)
	client, err := resolvetest.NewClient(resolvetest.Connected())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	registry := ops.New(&ops.Deps{Client: client, Config: cfg, Layout: store})
	return New(Deps{
		Config:   cfg.Server,
		Registry: registry,
		Client:   client,
	})
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, "")
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestHealthSkipsAuth(t *testing.T) {
	s := newTestServer(t, "sekrit")
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIKeyRequired(t *testing.T) {
	s := newTestServer(t, "sekrit")

	req := httptest.NewRequest(http.MethodGet, "/operations", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/operations", nil)
	req.Header.Set("X-API-Key", "sekrit")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIKeyViaBearerAndQuery(t *testing.T) {
	s := newTestServer(t, "sekrit")

	req := httptest.NewRequest(http.MethodGet, "/operations", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/operations?api_key=sekrit", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOperationsEndpoint(t *testing.T) {
	s := newTestServer(t, "")
	req := httptest.NewRequest(http.MethodGet, "/operations", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Operations []string `json:"operations"`
		Count      int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, len(body.Operations), body.Count)
	assert.Contains(t, body.Operations, "get_projects")
	assert.Contains(t, body.Operations, "add_timeline_marker")
}

func TestInfoEndpoint(t *testing.T) {
	s := newTestServer(t, "")
	req := httptest.NewRequest(http.MethodGet, "/info", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "resolve-mcp", body["server"])
	assert.Equal(t, "disconnected", body["state"])
}

func dialWS(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/mcp"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// wireReply mirrors Reply but keeps data raw so each test can decode
// it into the shape that frame type carries.
type wireReply struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Operation string          `json:"operation"`
	Data      json.RawMessage `json:"data"`
}

func readReply(t *testing.T, conn *websocket.Conn) wireReply {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var r wireReply
	require.NoError(t, conn.ReadJSON(&r))
	return r
}

func decodeData(t *testing.T, r wireReply, into any) {
	t.Helper()
	require.NotEmpty(t, r.Data, "frame %q carries no data", r.Type)
	require.NoError(t, json.Unmarshal(r.Data, into))
}

func TestWebSocketServerInfoOnConnect(t *testing.T) {
	conn := dialWS(t, newTestServer(t, ""))

	frame := readReply(t, conn)
	assert.Equal(t, TypeServerInfo, frame.Type)
	var info ServerInfo
	decodeData(t, frame, &info)
	assert.Equal(t, "resolve-mcp", info.Server)
	assert.Contains(t, info.Operations, "get_projects")
}

func TestWebSocketPingPong(t *testing.T) {
	conn := dialWS(t, newTestServer(t, ""))
	readReply(t, conn)

	require.NoError(t, conn.WriteJSON(Envelope{ID: "1", Type: TypePing}))
	pong := readReply(t, conn)
	assert.Equal(t, TypePong, pong.Type)
	assert.Equal(t, "1", pong.ID)
}

func TestWebSocketRequestResponse(t *testing.T) {
	conn := dialWS(t, newTestServer(t, ""))
	readReply(t, conn)

	require.NoError(t, conn.WriteJSON(Envelope{ID: "2", Type: TypeRequest, Operation: "get_projects"}))
	resp := readReply(t, conn)
	assert.Equal(t, TypeResponse, resp.Type)
	assert.Equal(t, "2", resp.ID)
	assert.Equal(t, "get_projects", resp.Operation)
	var data map[string]any
	decodeData(t, resp, &data)
	assert.Equal(t, []any{"Demo"}, data["projects"])
}

func TestWebSocketResponseFrameShape(t *testing.T) {
	conn := dialWS(t, newTestServer(t, ""))
	readReply(t, conn)

	require.NoError(t, conn.WriteJSON(Envelope{ID: "p1", Type: TypeRequest, Operation: "get_projects"}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame map[string]any
	require.NoError(t, json.Unmarshal(raw, &frame))
	assert.Equal(t, "p1", frame["id"])
	assert.Equal(t, TypeResponse, frame["type"])
	assert.Equal(t, "get_projects", frame["operation"])
	assert.Contains(t, frame, "data")
	assert.NotContains(t, frame, "result")
	assert.NotContains(t, frame, "error")
}

func TestWebSocketUnknownOperation(t *testing.T) {
	conn := dialWS(t, newTestServer(t, ""))
	readReply(t, conn)

	require.NoError(t, conn.WriteJSON(Envelope{ID: "3", Type: TypeRequest, Operation: "frobnicate"}))
	resp := readReply(t, conn)
	assert.Equal(t, TypeError, resp.Type)
	assert.Equal(t, "frobnicate", resp.Operation)
	var perr ErrorPayload
	decodeData(t, resp, &perr)
	assert.Equal(t, "validation", perr.Kind)
	assert.True(t, perr.Recoverable)
	assert.Contains(t, perr.Message, "unsupported operation")
}

func TestWebSocketCloseHandshake(t *testing.T) {
	conn := dialWS(t, newTestServer(t, ""))
	readReply(t, conn)

	require.NoError(t, conn.WriteJSON(Envelope{ID: "4", Type: TypeClose}))
	ack := readReply(t, conn)
	assert.Equal(t, TypeCloseAck, ack.Type)
	assert.Equal(t, "4", ack.ID)
}

func TestWebSocketMalformedFrame(t *testing.T) {
	conn := dialWS(t, newTestServer(t, ""))
	readReply(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	resp := readReply(t, conn)
	assert.Equal(t, TypeError, resp.Type)
	var perr ErrorPayload
	decodeData(t, resp, &perr)
	assert.Contains(t, perr.Message, "malformed frame")
}
