package session

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/rpg-toolkit/core"
	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/KirkDiggler/hexroom/internal/protocol"
	"github.com/KirkDiggler/hexroom/internal/services/room"
)

// Combat event types published on the event bus
const (
	EventTypeCombatStarted = "hexroom.combat.started"
	EventTypeCombatEnded   = "hexroom.combat.ended"
	EventTypeTurnUpdated   = "hexroom.combat.turn_updated"
	EventTypeActionUsed    = "hexroom.combat.action_used"
)

// Keys set on published event contexts
const (
	ContextKeyRoomID     = "room_id"
	ContextKeyActionType = "action_type"
	ContextKeyCost       = "cost"
	ContextKeyRemaining  = "remaining"
	ContextKeyRound      = "round"
)

// roomEntity lets a room act as the source of bus events
type roomEntity struct {
	id string
}

func (e roomEntity) GetID() string   { return e.id }
func (e roomEntity) GetType() string { return "room" }

var _ core.Entity = roomEntity{}

func (s *service) startCombat(in *protocol.StartCombat) memberFunc {
	return func(ctx context.Context, r *room.Room, _ string) error {
		tracker := r.Combat()
		if err := tracker.Start(in.TurnOrder); err != nil {
			return err
		}

		snap := tracker.Snapshot()
		current := tracker.Current()
		s.broadcast(r, protocol.CombatStarted{
			CurrentTurnID: current.GetID(),
			TurnOrder:     snap.TurnOrder,
			ActionPoints:  snap.ActionPoints,
			Round:         snap.Round,
		})

		slog.Info("Combat started",
			"room_id", r.ID,
			"combatants", len(snap.TurnOrder),
			"current_turn_id", current.GetID(),
		)
		s.publish(ctx, EventTypeCombatStarted, r.ID, current, map[string]any{
			ContextKeyRound: snap.Round,
		})
		return nil
	}
}

func (s *service) endCombat() memberFunc {
	return func(ctx context.Context, r *room.Room, _ string) error {
		if err := r.Combat().End(); err != nil {
			return err
		}

		s.broadcast(r, protocol.CombatEnded{})

		slog.Info("Combat ended", "room_id", r.ID)
		s.publish(ctx, EventTypeCombatEnded, r.ID, nil, nil)
		return nil
	}
}

func (s *service) updateTurn(in *protocol.UpdateTurn) memberFunc {
	return func(ctx context.Context, r *room.Room, _ string) error {
		if err := r.Combat().AdvanceTo(in.CharacterID); err != nil {
			return err
		}
		s.turnChanged(ctx, r)
		return nil
	}
}

// endTurn passes the turn to the next actor in order, wrapping into a new round
func (s *service) endTurn() memberFunc {
	return func(ctx context.Context, r *room.Room, _ string) error {
		if _, err := r.Combat().Next(); err != nil {
			return err
		}
		s.turnChanged(ctx, r)
		return nil
	}
}

func (s *service) turnChanged(ctx context.Context, r *room.Room) {
	tracker := r.Combat()
	current := tracker.Current()
	s.broadcast(r, protocol.TurnUpdated{
		CurrentTurnID: current.GetID(),
		ActionPoints:  tracker.ActionPoints(),
		Round:         tracker.Round(),
	})

	s.publish(ctx, EventTypeTurnUpdated, r.ID, current, map[string]any{
		ContextKeyRound: tracker.Round(),
	})
}

// useAction spends points for the named actor, or the sender when none is named
func (s *service) useAction(in *protocol.UseAction) memberFunc {
	return func(ctx context.Context, r *room.Room, connID string) error {
		actorID := in.CharacterID
		if actorID == "" {
			actorID = connID
		}

		tracker := r.Combat()
		remaining, err := tracker.UseAction(actorID, in.Cost)
		if err != nil {
			return err
		}

		s.broadcast(r, protocol.ActionUsed{
			CharacterID: actorID,
			ActionType:  in.ActionType,
			Cost:        in.Cost,
		})
		s.broadcast(r, protocol.TurnUpdated{
			CurrentTurnID: actorID,
			ActionPoints:  tracker.ActionPoints(),
			Round:         tracker.Round(),
		})

		s.publish(ctx, EventTypeActionUsed, r.ID, tracker.Current(), map[string]any{
			ContextKeyActionType: in.ActionType,
			ContextKeyCost:       in.Cost,
			ContextKeyRemaining:  remaining,
		})
		return nil
	}
}

// publish hands a combat event to the bus; handlers run synchronously under the room lock
func (s *service) publish(ctx context.Context, eventType, roomID string, target core.Entity, meta map[string]any) {
	if s.bus == nil {
		return
	}

	ev := events.NewGameEvent(eventType, roomEntity{id: roomID}, target)
	ev.Context().Set(ContextKeyRoomID, roomID)
	for k, v := range meta {
		ev.Context().Set(k, v)
	}

	if err := s.bus.Publish(ctx, ev); err != nil {
		slog.Warn("Failed to publish event",
			"event_type", eventType,
			"room_id", roomID,
			"error", err,
		)
	}
}
