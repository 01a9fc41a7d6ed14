package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/postflow/resolve-mcp/internal/errors"
	"github.com/postflow/resolve-mcp/internal/ops"
	"github.com/postflow/resolve-mcp/internal/resolve"
	"github.com/postflow/resolve-mcp/internal/version"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin checking is handled by the CORS middleware.
		return true
	},
}

// Envelope is one client frame.
type Envelope struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Operation string         `json:"operation,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// Reply is one server frame: {id, type, operation?, data}. Response
// frames echo the operation they answer; the payload always travels
// under data.
type Reply struct {
	ID        string `json:"id,omitempty"`
	Type      string `json:"type"`
	Operation string `json:"operation,omitempty"`
	Data      any    `json:"data,omitempty"`
}

// ErrorPayload is the data of an error frame.
type ErrorPayload struct {
	Message     string `json:"message"`
	Kind        string `json:"kind"`
	Recoverable bool   `json:"recoverable"`
}

// ServerInfo is the data of the server_info frame pushed on connect.
type ServerInfo struct {
	Server     string   `json:"server"`
	Version    string   `json:"version"`
	Operations []string `json:"operations"`
}

// Frame types.
const (
	TypePing       = "ping"
	TypePong       = "pong"
	TypeRequest    = "request"
	TypeResponse   = "response"
	TypeError      = "error"
	TypeClose      = "close"
	TypeCloseAck   = "close_ack"
	TypeServerInfo = "server_info"
)

// session is one WebSocket connection.
type session struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks live sessions and dispatches their requests.
type Hub struct {
	registry *ops.Registry
	client   *resolve.Client
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[*session]bool
	closed   bool
}

// NewHub creates the hub.
func NewHub(registry *ops.Registry, client *resolve.Client, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		registry: registry,
		client:   client,
		logger:   logger,
		sessions: map[*session]bool{},
	}
}

// SessionCount returns the number of live sessions.
func (h *Hub) SessionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Close drops every session.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for s := range h.sessions {
		close(s.send)
		delete(h.sessions, s)
	}
}

// HandleConnection upgrades the request and starts the session pumps.
// The first frame the client sees is server_info with the operation
// allow-list.
func (h *Hub) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	s := &session{hub: h, conn: conn, send: make(chan []byte, 64)}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.sessions[s] = true
	h.mu.Unlock()
	h.logger.Debug("websocket session opened", "sessions", h.SessionCount())

	s.reply(Reply{
		Type: TypeServerInfo,
		Data: ServerInfo{
			Server:     "resolve-mcp",
			Version:    version.Get(),
			Operations: h.registry.Supported(),
		},
	})

	go s.writePump()
	go s.readPump()
}

func (h *Hub) drop(s *session) {
	h.mu.Lock()
	if _, ok := h.sessions[s]; ok {
		delete(h.sessions, s)
		close(s.send)
	}
	h.mu.Unlock()
	h.logger.Debug("websocket session closed", "sessions", h.SessionCount())
}

func (s *session) reply(r Reply) {
	data, err := json.Marshal(r)
	if err != nil {
		s.hub.logger.Error("encoding websocket reply", "error", err)
		return
	}
	defer func() {
		// A send on a closed channel means the hub dropped us mid-reply.
		_ = recover()
	}()
	select {
	case s.send <- data:
	default:
		s.hub.logger.Warn("websocket send buffer full, dropping frame")
	}
}

func (s *session) readPump() {
	defer func() {
		s.hub.drop(s)
		_ = s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.hub.logger.Debug("websocket read error", "error", err)
			}
			return
		}
		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			s.reply(Reply{Type: TypeError, Data: &ErrorPayload{
				Message: "malformed frame: " + err.Error(),
				Kind:    errors.KindValidation.String(),
			}})
			continue
		}

		switch env.Type {
		case TypePing:
			s.reply(Reply{ID: env.ID, Type: TypePong})
		case TypeClose:
			s.reply(Reply{ID: env.ID, Type: TypeCloseAck})
			return
		case TypeRequest:
			s.handleRequest(env)
		default:
			s.reply(Reply{ID: env.ID, Type: TypeError, Data: &ErrorPayload{
				Message: "unknown frame type: " + env.Type,
				Kind:    errors.KindValidation.String(),
			}})
		}
	}
}

func (s *session) handleRequest(env Envelope) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := s.hub.registry.Dispatch(ctx, env.Operation, env.Data)
	if err != nil {
		s.reply(Reply{ID: env.ID, Type: TypeError, Operation: env.Operation, Data: &ErrorPayload{
			Message:     errors.RedactError(err).Error(),
			Kind:        errors.GetKind(err).String(),
			Recoverable: errors.IsRecoverable(err),
		}})
		return
	}
	s.reply(Reply{ID: env.ID, Type: TypeResponse, Operation: env.Operation, Data: result})
}

func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
