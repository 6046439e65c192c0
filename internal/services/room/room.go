package room

import (
	"sort"
	"sync"
	"time"

	"github.com/KirkDiggler/hexroom/internal/combat"
	"github.com/KirkDiggler/hexroom/internal/entities"
	"github.com/KirkDiggler/hexroom/internal/hexgrid"
	"github.com/KirkDiggler/hexroom/internal/pkg/clock"
	"github.com/KirkDiggler/hexroom/internal/terrain"
)

// Room is one isolated game session.
//
// Callers hold the room lock for the whole of an intent, from reading state
// through queuing the resulting broadcasts; every accessor below assumes the
// lock is held.
type Room struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	users    map[string]*entities.User
	terrain  *terrain.Store
	combat   *combat.Tracker
	settings entities.GameSettings

	closed     bool
	emptySince *time.Time
	gcTimer    clock.Timer
	gcGen      uint64
}

func newRoom(id string, createdAt time.Time, store *terrain.Store, budget int) *Room {
	return &Room{
		ID:        id,
		CreatedAt: createdAt,
		users:     make(map[string]*entities.User),
		terrain:   store,
		combat:    combat.NewTracker(budget),
		settings:  entities.DefaultGameSettings(),
	}
}

// Lock acquires the room
func (r *Room) Lock() { r.mu.Lock() }

// Unlock releases the room
func (r *Room) Unlock() { r.mu.Unlock() }

// Closed reports whether the registry has deleted the room
func (r *Room) Closed() bool {
	return r.closed
}

// Terrain returns the room's terrain store
func (r *Room) Terrain() *terrain.Store {
	return r.terrain
}

// Combat returns the room's turn tracker
func (r *Room) Combat() *combat.Tracker {
	return r.combat
}

// Settings returns the current game settings
func (r *Room) Settings() entities.GameSettings {
	return r.settings
}

// SetSettings replaces the game settings
func (r *Room) SetSettings(s entities.GameSettings) {
	r.settings = s
}

// AddUser places a connection at the origin. Joining disarms any pending deletion.
func (r *Room) AddUser(connID string, isGM bool) *entities.User {
	u := &entities.User{ID: connID, Position: hexgrid.Origin, IsGM: isGM}
	r.users[connID] = u

	if r.gcTimer != nil {
		r.gcTimer.Stop()
		r.gcTimer = nil
	}
	r.emptySince = nil
	return u
}

// RemoveUser drops a connection and reports whether it was a member
func (r *Room) RemoveUser(connID string) bool {
	if _, ok := r.users[connID]; !ok {
		return false
	}
	delete(r.users, connID)
	return true
}

// User returns the member with the given connection id
func (r *Room) User(connID string) (*entities.User, bool) {
	u, ok := r.users[connID]
	return u, ok
}

// HasUser reports membership
func (r *Room) HasUser(connID string) bool {
	_, ok := r.users[connID]
	return ok
}

// UserCount returns the number of members
func (r *Room) UserCount() int {
	return len(r.users)
}

// UserIDs returns member connection ids in a stable order
func (r *Room) UserIDs() []string {
	ids := make([]string, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// State returns a full snapshot for create and join replies
func (r *Room) State() entities.RoomState {
	users := make(map[string]entities.User, len(r.users))
	for id, u := range r.users {
		users[id] = *u
	}

	return entities.RoomState{
		ID:           r.ID,
		Users:        users,
		Terrain:      r.terrain.Snapshot(),
		Combat:       r.combat.Snapshot(),
		GameSettings: r.settings,
	}
}

// Summary returns the inspection view of the room
func (r *Room) Summary() entities.RoomSummary {
	return entities.RoomSummary{
		ID:            r.ID,
		UserCount:     len(r.users),
		HexCount:      r.terrain.Len(),
		CombatActive:  r.combat.Active(),
		CreatedAt:     r.CreatedAt,
		EmptySince:    r.emptySince,
		PendingDelete: r.gcTimer != nil,
	}
}
