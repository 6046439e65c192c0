// Package httpapi serves the health check, room inspection endpoints, the
// websocket upgrade route and, optionally, the browser client's static files.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/KirkDiggler/hexroom/internal/entities"
	"github.com/KirkDiggler/hexroom/internal/errors"
	"github.com/KirkDiggler/hexroom/internal/pkg/clock"
	"github.com/KirkDiggler/hexroom/internal/services/room"
)

// Config holds the dependencies for the HTTP handler
type Config struct {
	Rooms room.Service
	Clock clock.Clock
	// WebSocket is mounted at /ws when set
	WebSocket http.Handler
	// StaticDir is served at / when set
	StaticDir string
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Rooms == nil {
		vb.RequiredField("Rooms")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}

	return vb.Build()
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status    string  `json:"status"`
	Uptime    float64 `json:"uptime"`
	Timestamp int64   `json:"timestamp"` // unix milliseconds
	RoomCount int     `json:"roomCount"`
}

// RoomsResponse is the body of GET /rooms
type RoomsResponse struct {
	Rooms []entities.RoomSummary `json:"rooms"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Handler routes the HTTP surface
type Handler struct {
	rooms   room.Service
	clock   clock.Clock
	started time.Time
	mux     *http.ServeMux
}

// NewHandler creates the HTTP handler with the provided dependencies
func NewHandler(cfg *Config) (*Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	h := &Handler{
		rooms:   cfg.Rooms,
		clock:   cfg.Clock,
		started: cfg.Clock.Now(),
		mux:     http.NewServeMux(),
	}

	h.mux.HandleFunc("GET /health", h.health)
	h.mux.HandleFunc("GET /rooms", h.listRooms)
	h.mux.HandleFunc("GET /rooms/{id}", h.getRoom)
	if cfg.WebSocket != nil {
		h.mux.Handle("/ws", cfg.WebSocket)
	}
	if cfg.StaticDir != "" {
		h.mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	return h, nil
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	now := h.clock.Now()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Uptime:    now.Sub(h.started).Seconds(),
		Timestamp: now.UnixMilli(),
		RoomCount: h.rooms.Count(),
	})
}

func (h *Handler) listRooms(w http.ResponseWriter, r *http.Request) {
	out, err := h.rooms.ListRooms(r.Context(), &room.ListRoomsInput{})
	if err != nil {
		writeError(w, err)
		return
	}

	rooms := out.Rooms
	if rooms == nil {
		rooms = []entities.RoomSummary{}
	}
	writeJSON(w, http.StatusOK, RoomsResponse{Rooms: rooms})
}

func (h *Handler) getRoom(w http.ResponseWriter, r *http.Request) {
	out, err := h.rooms.GetRoom(r.Context(), &room.GetRoomInput{RoomID: r.PathValue("id")})
	if err != nil {
		writeError(w, err)
		return
	}

	out.Room.Lock()
	summary := out.Room.Summary()
	out.Room.Unlock()

	writeJSON(w, http.StatusOK, summary)
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == errors.CodeInternal {
		slog.Error("Request failed", "error", err)
	}

	resp := ErrorResponse{Error: errors.GetMessage(err), Code: code.String()}
	if reason := errors.GetReason(err); reason != "" {
		resp.Code = reason.String()
	}
	writeJSON(w, code.HTTPStatus(), resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Debug("Failed to write response", "error", err)
	}
}
