package dicesession

import (
	"context"
	"sync"
	"time"

	"github.com/KirkDiggler/hexroom/internal/errors"
	"github.com/KirkDiggler/hexroom/internal/pkg/clock"
)

// InMemoryRepository implements Repository using in-memory storage.
// Expired sessions are dropped lazily on access.
type InMemoryRepository struct {
	mu    sync.Mutex
	clock clock.Clock
	store map[string]*history
}

type history struct {
	rolls     []DiceRoll
	expiresAt time.Time
}

// NewInMemory creates a new in-memory repository
func NewInMemory(clk clock.Clock) *InMemoryRepository {
	if clk == nil {
		clk = clock.New()
	}
	return &InMemoryRepository{
		clock: clk,
		store: make(map[string]*history),
	}
}

var _ Repository = (*InMemoryRepository)(nil)

// Append adds a roll to a room's history
func (r *InMemoryRepository) Append(_ context.Context, input AppendInput) (*AppendOutput, error) {
	if err := validateAppend(input); err != nil {
		return nil, err
	}
	ttl, limit := input.defaults()
	now := r.clock.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	h := r.live(input.RoomID, now)
	if h == nil {
		h = &history{}
		r.store[input.RoomID] = h
	}

	h.rolls = append(h.rolls, input.Roll)
	if over := len(h.rolls) - limit; over > 0 {
		h.rolls = append([]DiceRoll(nil), h.rolls[over:]...)
	}
	h.expiresAt = now.Add(ttl)

	return &AppendOutput{Session: h.session(input.RoomID)}, nil
}

// Get retrieves a room's dice session
func (r *InMemoryRepository) Get(_ context.Context, input GetInput) (*GetOutput, error) {
	if input.RoomID == "" {
		return nil, errors.InvalidArgument(errRoomIDEmpty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	h := r.live(input.RoomID, r.clock.Now())
	if h == nil {
		return nil, errors.NotFound("dice session not found").WithMeta("room_id", input.RoomID)
	}

	return &GetOutput{Session: h.session(input.RoomID)}, nil
}

// Delete removes a dice session
func (r *InMemoryRepository) Delete(_ context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.RoomID == "" {
		return nil, errors.InvalidArgument(errRoomIDEmpty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var rollsDeleted int32
	if h := r.live(input.RoomID, r.clock.Now()); h != nil {
		// nolint:gosec // bounded by the history limit
		rollsDeleted = int32(len(h.rolls))
	}
	delete(r.store, input.RoomID)

	return &DeleteOutput{RollsDeleted: rollsDeleted}, nil
}

// live returns the unexpired history for roomID; callers hold mu
func (r *InMemoryRepository) live(roomID string, now time.Time) *history {
	h, ok := r.store[roomID]
	if !ok {
		return nil
	}
	if !now.Before(h.expiresAt) {
		delete(r.store, roomID)
		return nil
	}
	return h
}

func (h *history) session(roomID string) *DiceSession {
	return &DiceSession{
		RoomID:    roomID,
		Rolls:     append([]DiceRoll(nil), h.rolls...),
		ExpiresAt: h.expiresAt,
	}
}

func validateAppend(input AppendInput) error {
	vb := errors.NewValidationBuilder()
	if input.RoomID == "" {
		vb.Field("RoomID", errRoomIDEmpty)
	}
	if input.Roll.RollID == "" {
		vb.Field("Roll.RollID", errRollIDEmpty)
	}
	return vb.Build()
}
