package session

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/hexroom/internal/errors"
	"github.com/KirkDiggler/hexroom/internal/protocol"
	"github.com/KirkDiggler/hexroom/internal/services/room"
)

func (s *service) createRoom(ctx context.Context, connID string) error {
	s.leaveCurrent(ctx, connID)

	out, err := s.rooms.CreateRoom(ctx, &room.CreateRoomInput{CreatorID: connID})
	if err != nil {
		return err
	}
	r := out.Room

	r.Lock()
	defer r.Unlock()

	s.setRoom(connID, r.ID)
	state := r.State()
	s.reply(connID, protocol.RoomCreated{
		RoomID:    r.ID,
		UserID:    connID,
		RoomState: &state,
	})
	return nil
}

func (s *service) joinRoom(ctx context.Context, connID string, in *protocol.JoinRoom) error {
	out, err := s.rooms.GetRoom(ctx, &room.GetRoomInput{RoomID: in.RoomID})
	if err != nil {
		return err
	}

	if current, ok := s.RoomOf(connID); ok && current != in.RoomID {
		s.leaveCurrent(ctx, connID)
	}

	r := out.Room
	r.Lock()
	defer r.Unlock()

	if r.Closed() {
		return errors.RoomNotFound(in.RoomID)
	}

	// Joining a room twice re-sends the state without announcing anyone
	rejoin := r.HasUser(connID)
	if !rejoin {
		r.AddUser(connID, false)
	}
	s.setRoom(connID, r.ID)

	state := r.State()
	s.reply(connID, protocol.RoomJoined{
		RoomID: r.ID,
		UserID: connID,
		State:  &state,
	})
	if rejoin {
		return nil
	}

	user, _ := r.User(connID)
	s.broadcastExcept(r, connID, protocol.UserJoined{UserID: connID, User: user})
	s.broadcastExcept(r, connID, protocol.CharacterJoined{CharacterID: connID, Position: user.Position})

	slog.Info("User joined room",
		"room_id", r.ID,
		"connection_id", connID,
		"user_count", r.UserCount(),
	)
	return nil
}

// Disconnect removes the connection from its room
func (s *service) Disconnect(ctx context.Context, connID string) {
	s.leaveCurrent(ctx, connID)
}

// leaveCurrent drops the connection from its room, tells the rest, and arms
// deletion when the room is left empty
func (s *service) leaveCurrent(ctx context.Context, connID string) {
	roomID, ok := s.takeRoom(connID)
	if !ok {
		return
	}

	out, err := s.rooms.GetRoom(ctx, &room.GetRoomInput{RoomID: roomID})
	if err != nil {
		return
	}
	r := out.Room

	r.Lock()
	if r.Closed() || !r.RemoveUser(connID) {
		r.Unlock()
		return
	}
	s.broadcast(r, protocol.UserLeft{UserID: connID})
	s.broadcast(r, protocol.CharacterLeft{CharacterID: connID})
	empty := r.UserCount() == 0
	r.Unlock()

	slog.Info("User left room",
		"room_id", roomID,
		"connection_id", connID,
		"room_empty", empty,
	)

	if empty {
		if _, err := s.rooms.RemoveIfEmpty(ctx, &room.RemoveIfEmptyInput{RoomID: roomID}); err != nil {
			slog.Warn("Failed to schedule room deletion", "room_id", roomID, "error", err)
		}
	}
}

// reply sends an event to a single connection
func (s *service) reply(connID string, ev protocol.Event) {
	msg, err := protocol.Encode(ev)
	if err != nil {
		slog.Error("Failed to encode event", "event", ev.EventName(), "error", err)
		return
	}
	s.notifier.Send(connID, msg)
}

// broadcast sends an event to every member of a locked room
func (s *service) broadcast(r *room.Room, ev protocol.Event) {
	s.broadcastExcept(r, "", ev)
}

// broadcastExcept sends an event to every member of a locked room but one
func (s *service) broadcastExcept(r *room.Room, exclude string, ev protocol.Event) {
	msg, err := protocol.Encode(ev)
	if err != nil {
		slog.Error("Failed to encode event", "event", ev.EventName(), "room_id", r.ID, "error", err)
		return
	}
	for _, id := range r.UserIDs() {
		if id == exclude {
			continue
		}
		s.notifier.Send(id, msg)
	}
}

func (s *service) sendError(connID string, err error) {
	s.reply(connID, protocol.ErrorEvent(err))
}
