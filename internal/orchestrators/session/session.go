// Package session routes decoded client intents to their rooms.
//
// Every intent resolves its room, checks that the sending connection is a
// member, validates, mutates and queues its broadcasts while holding the room
// lock, so members of a room observe one total order of events. Failures go
// back to the sender as a single error event and change nothing.
package session

//go:generate mockgen -destination=mock/mock_service.go -package=sessionmock github.com/KirkDiggler/hexroom/internal/orchestrators/session Service,Notifier

import (
	"context"
	"log/slog"
	"sync"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/KirkDiggler/hexroom/internal/entities"
	"github.com/KirkDiggler/hexroom/internal/errors"
	"github.com/KirkDiggler/hexroom/internal/orchestrators/dice"
	"github.com/KirkDiggler/hexroom/internal/pkg/clock"
	"github.com/KirkDiggler/hexroom/internal/protocol"
	terrainlibrary "github.com/KirkDiggler/hexroom/internal/repositories/terrain_library"
	"github.com/KirkDiggler/hexroom/internal/services/room"
)

// TracerName names the spans opened per intent
const TracerName = "github.com/KirkDiggler/hexroom/internal/orchestrators/session"

// Notifier delivers encoded events to a connection without blocking
type Notifier interface {
	// Send reports false when the message could not be queued
	Send(connID string, msg []byte) bool
}

// Service handles the life of every client connection
type Service interface {
	// HandleMessage decodes a raw frame and dispatches it
	HandleMessage(ctx context.Context, connID string, raw []byte)

	// Dispatch runs one intent; the returned error has already been sent to connID
	Dispatch(ctx context.Context, connID string, intent protocol.Intent) error

	// Disconnect removes the connection from its room
	Disconnect(ctx context.Context, connID string)

	// RoomOf returns the room a connection belongs to
	RoomOf(connID string) (string, bool)
}

// Config holds the dependencies for the session orchestrator
type Config struct {
	Rooms          room.Service
	Notifier       Notifier
	Dice           dice.Service
	TerrainLibrary terrainlibrary.Repository
	Clock          clock.Clock

	// EventBus receives combat events; optional
	EventBus events.EventBus
	// Tracer defaults to the global provider's tracer
	Tracer trace.Tracer
	// WeatherTypes defaults to the built-in weather set
	WeatherTypes []string
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Rooms == nil {
		vb.RequiredField("Rooms")
	}
	if c.Notifier == nil {
		vb.RequiredField("Notifier")
	}
	if c.Dice == nil {
		vb.RequiredField("Dice")
	}
	if c.TerrainLibrary == nil {
		vb.RequiredField("TerrainLibrary")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}

	return vb.Build()
}

// DefaultWeatherTypes is used when no rules override them
var DefaultWeatherTypes = []string{
	entities.WeatherClear,
	entities.WeatherRain,
	entities.WeatherSnow,
	entities.WeatherFog,
}

type service struct {
	rooms    room.Service
	notifier Notifier
	dice     dice.Service
	library  terrainlibrary.Repository
	clock    clock.Clock
	bus      events.EventBus
	tracer   trace.Tracer
	weather  []string

	// connection id -> room id; taken after room locks, never before
	mu    sync.Mutex
	conns map[string]string
}

// NewService creates a session orchestrator with the provided dependencies
func NewService(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	weather := cfg.WeatherTypes
	if len(weather) == 0 {
		weather = DefaultWeatherTypes
	}

	return &service{
		rooms:    cfg.Rooms,
		notifier: cfg.Notifier,
		dice:     cfg.Dice,
		library:  cfg.TerrainLibrary,
		clock:    cfg.Clock,
		bus:      cfg.EventBus,
		tracer:   tracer,
		weather:  weather,
		conns:    make(map[string]string),
	}, nil
}

// HandleMessage decodes a raw frame and dispatches it
func (s *service) HandleMessage(ctx context.Context, connID string, raw []byte) {
	intent, err := protocol.DecodeIntent(raw)
	if err != nil {
		slog.Debug("Rejected malformed message", "connection_id", connID, "error", err)
		s.sendError(connID, err)
		return
	}
	_ = s.Dispatch(ctx, connID, intent)
}

// Dispatch runs one intent inside its own span
func (s *service) Dispatch(ctx context.Context, connID string, intent protocol.Intent) error {
	attrs := []attribute.KeyValue{
		attribute.String("hexroom.connection_id", connID),
		attribute.String("hexroom.intent", intent.IntentName()),
	}
	if scoped, ok := intent.(protocol.RoomScoped); ok {
		attrs = append(attrs, attribute.String("hexroom.room_id", scoped.TargetRoom()))
	}
	ctx, span := s.tracer.Start(ctx, "session."+intent.IntentName(), trace.WithAttributes(attrs...))
	defer span.End()

	err := s.dispatch(ctx, connID, intent)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, errors.GetMessage(err))

		if errors.GetCode(err) == errors.CodeInternal {
			slog.Error("Intent failed",
				"connection_id", connID,
				"intent", intent.IntentName(),
				"error", err,
			)
		} else {
			slog.Debug("Intent rejected",
				"connection_id", connID,
				"intent", intent.IntentName(),
				"reason", errors.GetReason(err),
				"error", err,
			)
		}
		s.sendError(connID, err)
	}
	return err
}

func (s *service) dispatch(ctx context.Context, connID string, intent protocol.Intent) error {
	switch in := intent.(type) {
	case *protocol.CreateRoom:
		return s.createRoom(ctx, connID)
	case *protocol.JoinRoom:
		return s.joinRoom(ctx, connID, in)
	case *protocol.UpdateHex:
		return s.withMember(ctx, connID, in, s.updateHex(in))
	case *protocol.RemoveHex:
		return s.withMember(ctx, connID, in, s.removeHex(in))
	case *protocol.UpdateFullTerrain:
		return s.withMember(ctx, connID, in, s.updateFullTerrain(in))
	case *protocol.UpdateCharacterPosition:
		return s.withMember(ctx, connID, in, s.updateCharacterPosition(in))
	case *protocol.DiceRoll:
		return s.withMember(ctx, connID, in, s.relayDiceRoll(in))
	case *protocol.StartCombat:
		return s.withMember(ctx, connID, in, s.startCombat(in))
	case *protocol.EndCombat:
		return s.withMember(ctx, connID, in, s.endCombat())
	case *protocol.UpdateTurn:
		return s.withMember(ctx, connID, in, s.updateTurn(in))
	case *protocol.EndTurn:
		return s.withMember(ctx, connID, in, s.endTurn())
	case *protocol.UseAction:
		return s.withMember(ctx, connID, in, s.useAction(in))
	case *protocol.UpdateWeather:
		return s.withMember(ctx, connID, in, s.updateWeather(in))
	case *protocol.ChatMessage:
		return s.withMember(ctx, connID, in, s.chatMessage(in))
	case *protocol.UpdateGameSettings:
		return s.withMember(ctx, connID, in, s.updateGameSettings(in))
	case *protocol.RollDice:
		return s.rollDice(ctx, connID, in)
	case *protocol.GetDiceHistory:
		return s.getDiceHistory(ctx, connID, in)
	case *protocol.SaveTerrain:
		return s.saveTerrain(ctx, connID, in)
	case *protocol.LoadTerrain:
		return s.loadTerrain(ctx, connID, in)
	case *protocol.ListTerrains:
		return s.listTerrains(ctx, connID, in)
	default:
		return errors.BadRequest("unsupported event %q", intent.IntentName())
	}
}

// memberFunc runs with the room locked and the sender verified as a member
type memberFunc func(ctx context.Context, r *room.Room, connID string) error

// withMember resolves the intent's room, locks it, checks membership and runs fn
func (s *service) withMember(ctx context.Context, connID string, in protocol.RoomScoped, fn memberFunc) error {
	r, err := s.lockMember(ctx, connID, in.TargetRoom())
	if err != nil {
		return err
	}
	defer r.Unlock()

	return fn(ctx, r, connID)
}

// lockMember returns the room locked, or an error with nothing held
func (s *service) lockMember(ctx context.Context, connID, roomID string) (*room.Room, error) {
	out, err := s.rooms.GetRoom(ctx, &room.GetRoomInput{RoomID: roomID})
	if err != nil {
		return nil, err
	}
	r := out.Room

	r.Lock()
	if r.Closed() {
		r.Unlock()
		return nil, errors.RoomNotFound(roomID)
	}
	if !r.HasUser(connID) {
		r.Unlock()
		return nil, errors.UserNotInRoom(roomID, connID)
	}
	return r, nil
}

// RoomOf returns the room a connection belongs to
func (s *service) RoomOf(connID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.conns[connID]
	return id, ok
}

func (s *service) setRoom(connID, roomID string) {
	s.mu.Lock()
	s.conns[connID] = roomID
	s.mu.Unlock()
}

func (s *service) takeRoom(connID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.conns[connID]
	delete(s.conns, connID)
	return id, ok
}
