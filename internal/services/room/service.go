// Package room provides the registry of live rooms and their lifecycle.
package room

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/KirkDiggler/hexroom/internal/entities"
	"github.com/KirkDiggler/hexroom/internal/errors"
	"github.com/KirkDiggler/hexroom/internal/pkg/clock"
	"github.com/KirkDiggler/hexroom/internal/pkg/idgen"
	"github.com/KirkDiggler/hexroom/internal/terrain"
)

//go:generate mockgen -destination=mock/mock_service.go -package=roommock github.com/KirkDiggler/hexroom/internal/services/room Service

// DefaultGracePeriod is how long an empty room survives before deletion
const DefaultGracePeriod = 30 * time.Second

// Service defines the room registry interface
type Service interface {
	// CreateRoom allocates a room seeded with generated terrain; the creator joins as GM
	CreateRoom(ctx context.Context, input *CreateRoomInput) (*CreateRoomOutput, error)

	// GetRoom looks up a live room
	GetRoom(ctx context.Context, input *GetRoomInput) (*GetRoomOutput, error)

	// RemoveIfEmpty arms a deferred deletion that only happens if the room is still empty when it fires
	RemoveIfEmpty(ctx context.Context, input *RemoveIfEmptyInput) (*RemoveIfEmptyOutput, error)

	// ListRooms summarizes every live room
	ListRooms(ctx context.Context, input *ListRoomsInput) (*ListRoomsOutput, error)

	// Count returns the number of live rooms
	Count() int
}

// CreateRoomInput contains room creation parameters
type CreateRoomInput struct {
	CreatorID string
}

// CreateRoomOutput contains the new room
type CreateRoomOutput struct {
	Room *Room
}

// GetRoomInput contains room lookup parameters
type GetRoomInput struct {
	RoomID string
}

// GetRoomOutput contains the room
type GetRoomOutput struct {
	Room *Room
}

// RemoveIfEmptyInput contains deferred deletion parameters
type RemoveIfEmptyInput struct {
	RoomID string
	// Grace overrides the configured grace period when non-zero
	Grace time.Duration
}

// RemoveIfEmptyOutput reports whether a deletion was armed
type RemoveIfEmptyOutput struct {
	Scheduled bool
}

// ListRoomsInput is empty; rooms are not paged
type ListRoomsInput struct{}

// ListRoomsOutput contains room summaries, oldest first
type ListRoomsOutput struct {
	Rooms []entities.RoomSummary
}

// Config holds the dependencies for the room registry
type Config struct {
	IDGenerator  idgen.Generator
	Clock        clock.Clock
	Generator    terrain.Generator
	GracePeriod  time.Duration
	ActionPoints int
	// OnDelete runs after a room is garbage collected, outside every lock
	OnDelete func(roomID string)
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}
	if c.Generator == nil {
		vb.RequiredField("Generator")
	}
	if c.GracePeriod < 0 {
		vb.Field("GracePeriod", "must not be negative")
	}

	return vb.Build()
}

type registry struct {
	idGen        idgen.Generator
	clock        clock.Clock
	generator    terrain.Generator
	grace        time.Duration
	actionPoints int
	onDelete     func(roomID string)

	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewService creates a room registry with the provided dependencies
func NewService(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	grace := cfg.GracePeriod
	if grace == 0 {
		grace = DefaultGracePeriod
	}

	return &registry{
		idGen:        cfg.IDGenerator,
		clock:        cfg.Clock,
		generator:    cfg.Generator,
		grace:        grace,
		actionPoints: cfg.ActionPoints,
		onDelete:     cfg.OnDelete,
		rooms:        make(map[string]*Room),
	}, nil
}

// CreateRoom allocates a room seeded with generated terrain
func (s *registry) CreateRoom(ctx context.Context, input *CreateRoomInput) (*CreateRoomOutput, error) {
	if input == nil || input.CreatorID == "" {
		return nil, errors.InvalidArgument("creator ID is required")
	}

	store, err := terrain.NewStoreFrom(s.generator.Generate())
	if err != nil {
		return nil, errors.RoomCreationFailed(err)
	}

	id := s.idGen.Generate()
	r := newRoom(id, s.clock.Now(), store, s.actionPoints)
	r.AddUser(input.CreatorID, true)

	s.mu.Lock()
	if _, exists := s.rooms[id]; exists {
		s.mu.Unlock()
		return nil, errors.RoomCreationFailed(errors.AlreadyExistsf("room %s already exists", id))
	}
	s.rooms[id] = r
	count := len(s.rooms)
	s.mu.Unlock()

	slog.Info("Room created",
		"room_id", id,
		"creator_id", input.CreatorID,
		"hex_count", store.Len(),
		"room_count", count,
	)

	return &CreateRoomOutput{Room: r}, nil
}

// GetRoom looks up a live room
func (s *registry) GetRoom(ctx context.Context, input *GetRoomInput) (*GetRoomOutput, error) {
	if input == nil || input.RoomID == "" {
		return nil, errors.RoomNotFound("")
	}

	s.mu.RLock()
	r, ok := s.rooms[input.RoomID]
	s.mu.RUnlock()

	if !ok {
		return nil, errors.RoomNotFound(input.RoomID)
	}

	return &GetRoomOutput{Room: r}, nil
}

// RemoveIfEmpty arms a deferred deletion for an empty room. Arming again
// replaces the pending timer.
func (s *registry) RemoveIfEmpty(ctx context.Context, input *RemoveIfEmptyInput) (*RemoveIfEmptyOutput, error) {
	if input == nil || input.RoomID == "" {
		return nil, errors.InvalidArgument("room ID is required")
	}

	out, err := s.GetRoom(ctx, &GetRoomInput{RoomID: input.RoomID})
	if err != nil {
		return nil, err
	}
	r := out.Room

	grace := input.Grace
	if grace <= 0 {
		grace = s.grace
	}

	r.Lock()
	defer r.Unlock()

	if r.closed || r.UserCount() > 0 {
		return &RemoveIfEmptyOutput{Scheduled: false}, nil
	}

	if r.gcTimer != nil {
		r.gcTimer.Stop()
	}
	if r.emptySince == nil {
		now := s.clock.Now()
		r.emptySince = &now
	}

	r.gcGen++
	gen := r.gcGen
	r.gcTimer = s.clock.AfterFunc(grace, func() {
		s.expire(r, gen)
	})

	slog.Info("Room scheduled for deletion",
		"room_id", r.ID,
		"grace_period", grace,
	)

	return &RemoveIfEmptyOutput{Scheduled: true}, nil
}

// expire deletes r if it is still empty and gen is still the armed timer
func (s *registry) expire(r *Room, gen uint64) {
	if !s.deleteIfEmpty(r, gen) {
		return
	}
	if s.onDelete != nil {
		s.onDelete(r.ID)
	}
}

func (s *registry) deleteIfEmpty(r *Room, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.Lock()
	defer r.Unlock()

	if r.closed || r.gcGen != gen || r.gcTimer == nil {
		return false
	}
	r.gcTimer = nil

	if r.UserCount() > 0 {
		slog.Info("Room repopulated during grace period", "room_id", r.ID, "user_count", r.UserCount())
		return false
	}

	if current, ok := s.rooms[r.ID]; ok && current == r {
		delete(s.rooms, r.ID)
	}
	r.closed = true

	slog.Info("Deleted empty room",
		"room_id", r.ID,
		"room_count", len(s.rooms),
	)
	return true
}

// ListRooms summarizes every live room, oldest first
func (s *registry) ListRooms(ctx context.Context, input *ListRoomsInput) (*ListRoomsOutput, error) {
	s.mu.RLock()
	rooms := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}
	s.mu.RUnlock()

	summaries := make([]entities.RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		r.Lock()
		summaries = append(summaries, r.Summary())
		r.Unlock()
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].CreatedAt.Equal(summaries[j].CreatedAt) {
			return summaries[i].ID < summaries[j].ID
		}
		return summaries[i].CreatedAt.Before(summaries[j].CreatedAt)
	})

	return &ListRoomsOutput{Rooms: summaries}, nil
}

// Count returns the number of live rooms
func (s *registry) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}
