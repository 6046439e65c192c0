// Package ws serves the game protocol over websocket connections.
//
// Each connection gets an id, an outbound queue in the hub, a writer
// goroutine that drains the queue and pings, and a reader loop that hands
// every text frame to the session orchestrator.
package ws

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/KirkDiggler/hexroom/internal/errors"
	"github.com/KirkDiggler/hexroom/internal/hub"
	"github.com/KirkDiggler/hexroom/internal/orchestrators/session"
	"github.com/KirkDiggler/hexroom/internal/pkg/idgen"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 << 20
)

// Config holds the dependencies for the websocket handler
type Config struct {
	Sessions    session.Service
	Hub         *hub.Hub
	IDGenerator idgen.Generator
	// CheckOrigin defaults to accepting every origin
	CheckOrigin func(r *http.Request) bool
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Sessions == nil {
		vb.RequiredField("Sessions")
	}
	if c.Hub == nil {
		vb.RequiredField("Hub")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}

	return vb.Build()
}

// Handler upgrades requests and runs one connection per request
type Handler struct {
	sessions session.Service
	hub      *hub.Hub
	idGen    idgen.Generator
	upgrader websocket.Upgrader
}

// NewHandler creates a websocket handler with the provided dependencies
func NewHandler(cfg *Config) (*Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	checkOrigin := cfg.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}

	return &Handler{
		sessions: cfg.Sessions,
		hub:      cfg.Hub,
		idGen:    cfg.IDGenerator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     checkOrigin,
		},
	}, nil
}

// ServeHTTP blocks for the life of the connection
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("Websocket upgrade failed", "remote_addr", r.RemoteAddr, "error", err)
		return
	}

	id := h.idGen.Generate()
	out := h.hub.Register(id)
	slog.Info("Client connected", "connection_id", id, "remote_addr", r.RemoteAddr)

	ctx := context.WithoutCancel(r.Context())
	done := make(chan struct{})
	go func() {
		defer close(done)
		writePump(conn, out)
	}()

	h.readPump(ctx, conn, id)

	h.sessions.Disconnect(ctx, id)
	h.hub.Unregister(id)
	<-done
	if err := conn.Close(); err != nil {
		slog.Debug("Failed to close websocket", "connection_id", id, "error", err)
	}

	slog.Info("Client disconnected", "connection_id", id, "dropped_messages", out.Dropped())
}

// readPump dispatches inbound frames until the connection fails or goes quiet
func (h *Handler) readPump(ctx context.Context, conn *websocket.Conn, id string) {
	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		kind, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("Websocket read failed", "connection_id", id, "error", err)
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		h.sessions.HandleMessage(ctx, id, msg)
	}
}

// writePump drains the outbound queue and keeps the connection alive. It
// returns when the queue is closed or a write fails. An evicted queue closes
// with a policy violation so the client rejoins for a fresh snapshot.
func writePump(conn *websocket.Conn, out *hub.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-out.Outbound():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				if out.Evicted() {
					_ = conn.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "outbound queue overflow"))
					// Unblocks the reader so the connection is torn down
					_ = conn.Close()
					return
				}
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				// Unblocks the reader so the connection is torn down
				_ = conn.Close()
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}
