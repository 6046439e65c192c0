// Package dicesession stores the recent dice rolls of each room.
//
// A session is an append-only, bounded history: every roll is appended
// atomically, the oldest rolls fall off past the history limit, and the
// whole session expires when no roll has been made for its TTL.
package dicesession

import (
	"context"
	"time"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=dicesessionmock github.com/KirkDiggler/hexroom/internal/repositories/dice_session Repository

const (
	// DefaultTTL is how long a session lives after its last roll
	DefaultTTL = 15 * time.Minute

	// DefaultHistoryLimit caps the rolls kept per room
	DefaultHistoryLimit = 100
)

// DiceSession is the roll history of one room
type DiceSession struct {
	RoomID string

	// Rolls oldest first
	Rolls []DiceRoll

	// ExpiresAt is zero for a room with no history
	ExpiresAt time.Time
}

// DiceRoll is one server-side roll
type DiceRoll struct {
	RollID string `json:"roll_id"`

	// Connection that asked for the roll
	UserID string `json:"user_id"`

	// Canonical notation, e.g. "4d6" or "1d20+5"
	Notation string `json:"notation"`

	Size        int     `json:"size"`
	Dice        []int32 `json:"dice"`
	Total       int32   `json:"total"`
	Description string  `json:"description,omitempty"`

	// Raw dice total before the modifier
	DiceTotal int32 `json:"dice_total"`
	Modifier  int32 `json:"modifier"`

	RolledAt time.Time `json:"rolled_at"`
}

// AppendInput contains one roll to add to a room's history
type AppendInput struct {
	RoomID string
	Roll   DiceRoll
	// TTL is measured from this roll; zero uses DefaultTTL
	TTL time.Duration
	// Limit keeps only the newest rolls; zero uses DefaultHistoryLimit
	Limit int
}

// AppendOutput contains the history after the append
type AppendOutput struct {
	Session *DiceSession
}

// GetInput contains parameters for retrieving a dice session
type GetInput struct {
	RoomID string
}

// GetOutput contains the result of retrieving a dice session
type GetOutput struct {
	Session *DiceSession
}

// DeleteInput contains parameters for deleting a dice session
type DeleteInput struct {
	RoomID string
}

// DeleteOutput contains the result of deleting a dice session
type DeleteOutput struct {
	RollsDeleted int32
}

// Repository defines the interface for dice session storage operations
type Repository interface {
	// Append adds a roll, trims the history and restarts the TTL in one step
	Append(ctx context.Context, input AppendInput) (*AppendOutput, error)

	// Get retrieves a room's dice session; NotFound when there is none
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Delete removes a dice session; deleting a missing session is not an error
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)
}

const (
	errRoomIDEmpty = "room ID cannot be empty"
	errRollIDEmpty = "roll ID cannot be empty"
)

func (in *AppendInput) defaults() (time.Duration, int) {
	ttl, limit := in.TTL, in.Limit
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return ttl, limit
}
