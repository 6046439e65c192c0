package dice

import (
	"time"

	dicesession "github.com/KirkDiggler/hexroom/internal/repositories/dice_session"
)

// RollDiceInput defines the request for rolling dice
type RollDiceInput struct {
	RoomID      string
	UserID      string
	Notation    string
	Description string
	TTL         time.Duration
}

// RollDiceOutput defines the response for rolling dice
type RollDiceOutput struct {
	Roll    *dicesession.DiceRoll
	Session *dicesession.DiceSession
}

// GetRollSessionInput defines the request for getting a room's roll history
type GetRollSessionInput struct {
	RoomID string
}

// GetRollSessionOutput defines the response for getting a roll session.
// Session is empty, not nil, when the room has no rolls.
type GetRollSessionOutput struct {
	Session *dicesession.DiceSession
}

// ClearRollSessionInput defines the request for clearing a roll session
type ClearRollSessionInput struct {
	RoomID string
}

// ClearRollSessionOutput defines the response for clearing a roll session
type ClearRollSessionOutput struct {
	RollsDeleted int32
}

// Notation is a parsed NdM[+/-K] expression
type Notation struct {
	Count    int
	Size     int
	Modifier int
}
