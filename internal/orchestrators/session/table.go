package session

import (
	"context"
	"encoding/json"
	"math"

	"github.com/KirkDiggler/hexroom/internal/errors"
	"github.com/KirkDiggler/hexroom/internal/hexgrid"
	"github.com/KirkDiggler/hexroom/internal/orchestrators/dice"
	"github.com/KirkDiggler/hexroom/internal/protocol"
	"github.com/KirkDiggler/hexroom/internal/services/room"
)

// updateCharacterPosition moves the sender's token. Integral positions must be
// valid cube coordinates; fractional ones snap to the nearest hex.
func (s *service) updateCharacterPosition(in *protocol.UpdateCharacterPosition) memberFunc {
	return func(_ context.Context, r *room.Room, connID string) error {
		pos, err := normalizePosition(in.Position)
		if err != nil {
			return err
		}

		user, _ := r.User(connID)
		user.Position = pos

		s.broadcast(r, protocol.CharacterPositionUpdate{
			CharacterID: connID,
			Position:    pos,
		})
		return nil
	}
}

func normalizePosition(p protocol.Position) (hexgrid.Cube, error) {
	if p.Q == nil || p.R == nil || p.S == nil {
		return hexgrid.Cube{}, errors.InvalidCoordinates("Invalid cube coordinates")
	}

	q, r, s := *p.Q, *p.R, *p.S
	for _, v := range [3]float64{q, r, s} {
		if math.IsNaN(v) || math.Abs(v) > hexgrid.MaxAxis {
			return hexgrid.Cube{}, errors.InvalidCoordinates("Invalid cube coordinates")
		}
	}
	if q == math.Trunc(q) && r == math.Trunc(r) && s == math.Trunc(s) {
		return hexgrid.New(int(q), int(r), int(s))
	}
	return hexgrid.CubeRound(q, r, s)
}

// relayDiceRoll forwards a client-side roll unchanged
func (s *service) relayDiceRoll(in *protocol.DiceRoll) memberFunc {
	return func(_ context.Context, r *room.Room, connID string) error {
		userID := in.UserID
		if userID == "" {
			userID = connID
		}
		results := in.Results
		if len(results) == 0 {
			results = json.RawMessage("[]")
		}

		s.broadcast(r, protocol.DiceRollResult{
			UserID:  userID,
			Results: results,
			Total:   in.Total,
		})
		return nil
	}
}

func (s *service) updateWeather(in *protocol.UpdateWeather) memberFunc {
	return func(_ context.Context, r *room.Room, _ string) error {
		vb := errors.NewValidationBuilder()
		errors.ValidateEnum("weatherType", in.WeatherType, s.weather, vb)
		errors.ValidateFloatRange("weatherIntensity", in.WeatherIntensity, 0, 1, vb)
		if err := vb.Build(); err != nil {
			return err
		}

		settings := r.Settings()
		settings.WeatherType = in.WeatherType
		settings.WeatherIntensity = in.WeatherIntensity
		r.SetSettings(settings)

		s.broadcast(r, protocol.WeatherUpdated{
			WeatherType:      in.WeatherType,
			WeatherIntensity: in.WeatherIntensity,
		})
		return nil
	}
}

func (s *service) updateGameSettings(in *protocol.UpdateGameSettings) memberFunc {
	return func(_ context.Context, r *room.Room, _ string) error {
		settings := r.Settings()
		if in.FogOfWar != nil {
			settings.FogOfWar = *in.FogOfWar
		}
		if in.WeatherEnabled != nil {
			settings.WeatherEnabled = *in.WeatherEnabled
		}
		if in.DayNightCycle != nil {
			settings.DayNightCycle = *in.DayNightCycle
		}
		r.SetSettings(settings)

		s.broadcast(r, protocol.GameSettingsUpdated{GameSettings: settings})
		return nil
	}
}

func (s *service) chatMessage(in *protocol.ChatMessage) memberFunc {
	return func(_ context.Context, r *room.Room, connID string) error {
		userID := in.UserID
		if userID == "" {
			userID = connID
		}

		s.broadcast(r, protocol.ChatMessageSent{
			UserID:    userID,
			Message:   in.Message,
			Timestamp: s.clock.Now().UTC(),
		})
		return nil
	}
}

// rollDice rolls on the server and records the result in the room's dice
// session. The dice service is called without holding the room lock.
func (s *service) rollDice(ctx context.Context, connID string, in *protocol.RollDice) error {
	if err := s.checkMember(ctx, connID, in.RoomID); err != nil {
		return err
	}

	out, err := s.dice.RollDice(ctx, &dice.RollDiceInput{
		RoomID:      in.RoomID,
		UserID:      connID,
		Notation:    in.Notation,
		Description: in.Description,
	})
	if err != nil {
		return err
	}

	results, err := json.Marshal(dice.FormatResults(out.Roll))
	if err != nil {
		return errors.Wrap(err, "failed to encode dice results")
	}

	// The sender may have left while the roll was recorded
	return s.withMember(ctx, connID, in, func(_ context.Context, r *room.Room, _ string) error {
		s.broadcast(r, protocol.DiceRollResult{
			UserID:   connID,
			Results:  results,
			Total:    float64(out.Roll.Total),
			Notation: out.Roll.Notation,
			RollID:   out.Roll.RollID,
		})
		return nil
	})
}

func (s *service) getDiceHistory(ctx context.Context, connID string, in *protocol.GetDiceHistory) error {
	if err := s.checkMember(ctx, connID, in.RoomID); err != nil {
		return err
	}

	out, err := s.dice.GetRollSession(ctx, &dice.GetRollSessionInput{RoomID: in.RoomID})
	if err != nil {
		return err
	}

	rolls := make([]protocol.RollRecord, 0, len(out.Session.Rolls))
	for _, roll := range out.Session.Rolls {
		rolls = append(rolls, protocol.RollRecord{
			RollID:      roll.RollID,
			UserID:      roll.UserID,
			Notation:    roll.Notation,
			Results:     dice.FormatResults(&roll),
			Total:       int(roll.Total),
			Description: roll.Description,
			RolledAt:    roll.RolledAt,
		})
	}

	s.reply(connID, protocol.DiceHistory{Rolls: rolls})
	return nil
}
