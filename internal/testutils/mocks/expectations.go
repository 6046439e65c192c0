// Package mocks provides mock expectation helpers for common testing patterns
package mocks

import (
	"time"

	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/hexroom/internal/orchestrators/dice"
	dicemock "github.com/KirkDiggler/hexroom/internal/orchestrators/dice/mock"
	dicesession "github.com/KirkDiggler/hexroom/internal/repositories/dice_session"
	"github.com/KirkDiggler/hexroom/internal/terrain"
	terrainmock "github.com/KirkDiggler/hexroom/internal/terrain/mock"
)

// ExpectGenerate makes every room created with the mock generator start with m
func ExpectGenerate(mockGen *terrainmock.MockGenerator, m terrain.Map) *gomock.Call {
	return mockGen.EXPECT().
		Generate().
		DoAndReturn(func() terrain.Map {
			out := make(terrain.Map, len(m))
			for k, v := range m {
				out[k] = v
			}
			return out
		}).
		AnyTimes()
}

// ExpectRollDice sets up a single server roll for a user in a room. ctx may be a matcher.
func ExpectRollDice(
	ctx any, mockDice *dicemock.MockService,
	roomID, userID, notation string, values ...int32,
) *dicesession.DiceRoll {
	n, err := dice.ParseNotation(notation)
	if err != nil {
		panic(err)
	}

	total := int32(n.Modifier)
	for _, v := range values {
		total += v
	}
	roll := &dicesession.DiceRoll{
		RollID:    "roll_" + userID,
		UserID:    userID,
		Notation:  notation,
		Size:      n.Size,
		Dice:      values,
		Total:     total,
		DiceTotal: total - int32(n.Modifier),
		Modifier:  int32(n.Modifier),
		RolledAt:  time.Unix(1700000000, 0).UTC(),
	}

	mockDice.EXPECT().
		RollDice(ctx, &dice.RollDiceInput{RoomID: roomID, UserID: userID, Notation: notation}).
		Return(&dice.RollDiceOutput{
			Roll:    roll,
			Session: &dicesession.DiceSession{RoomID: roomID, Rolls: []dicesession.DiceRoll{*roll}},
		}, nil)

	return roll
}

// ExpectDiceHistory returns the given rolls for a room's history
func ExpectDiceHistory(
	ctx any, mockDice *dicemock.MockService,
	roomID string, rolls ...dicesession.DiceRoll,
) *gomock.Call {
	return mockDice.EXPECT().
		GetRollSession(ctx, &dice.GetRollSessionInput{RoomID: roomID}).
		Return(&dice.GetRollSessionOutput{
			Session: &dicesession.DiceSession{RoomID: roomID, Rolls: rolls},
		}, nil)
}
