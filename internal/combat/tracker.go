// Package combat implements the per-room turn and action point state machine.
//
// A Tracker is Inactive until Start and returns to Inactive on End. While
// active it knows the turn order supplied by the client (never re-sorted), the
// current actor, and every actor's remaining action points. Turn advancement
// is explicit: AdvanceTo jumps to any actor in the order and UseAction never
// moves the turn.
package combat

import (
	"github.com/KirkDiggler/rpg-toolkit/core"

	"github.com/KirkDiggler/hexroom/internal/entities"
	"github.com/KirkDiggler/hexroom/internal/errors"
)

// DefaultActionPoints is the per-turn budget when no rules override it
const DefaultActionPoints = 5

// EntityType is the core.Entity type of every combatant
const EntityType = "combatant"

// Combatant is one actor in the turn order
type Combatant struct {
	entities.TurnEntry
}

// GetID implements core.Entity
func (c *Combatant) GetID() string {
	return c.ID
}

// GetType implements core.Entity
func (c *Combatant) GetType() string {
	return EntityType
}

var _ core.Entity = (*Combatant)(nil)

// Tracker is a room's combat state. It is not safe for concurrent use.
type Tracker struct {
	budget int

	active       bool
	order        []*Combatant
	current      int
	round        int
	actionPoints map[string]int
}

// NewTracker creates an inactive tracker. A budget <= 0 uses DefaultActionPoints.
func NewTracker(budget int) *Tracker {
	if budget <= 0 {
		budget = DefaultActionPoints
	}
	return &Tracker{budget: budget}
}

// Active reports whether an encounter is running
func (t *Tracker) Active() bool {
	return t.active
}

// Budget returns the action points granted at the start of a turn
func (t *Tracker) Budget() int {
	return t.budget
}

// Start begins an encounter with the given order, replacing any running one
func (t *Tracker) Start(order []entities.TurnEntry) error {
	if len(order) == 0 {
		return errors.InvalidArgument("turn order must not be empty")
	}

	seen := make(map[string]bool, len(order))
	combatants := make([]*Combatant, 0, len(order))
	for _, entry := range order {
		if entry.ID == "" {
			return errors.InvalidArgument("turn order entries need an id")
		}
		if seen[entry.ID] {
			return errors.InvalidArgumentf("duplicate id %q in turn order", entry.ID)
		}
		seen[entry.ID] = true
		combatants = append(combatants, &Combatant{TurnEntry: entry})
	}

	ap := make(map[string]int, len(combatants))
	for _, c := range combatants {
		ap[c.ID] = t.budget
	}

	t.active = true
	t.order = combatants
	t.current = 0
	t.round = 1
	t.actionPoints = ap
	return nil
}

// Current returns the actor whose turn it is, or nil when inactive
func (t *Tracker) Current() core.Entity {
	if !t.active {
		return nil
	}
	return t.order[t.current]
}

// AdvanceTo makes actorID the current actor and refills its action points
func (t *Tracker) AdvanceTo(actorID string) error {
	if !t.active {
		return errNotActive()
	}

	idx := t.indexOf(actorID)
	if idx < 0 {
		return errors.UnknownActor(actorID)
	}

	if idx == 0 && (t.current != 0 || len(t.order) == 1) {
		t.round++
	}
	t.current = idx
	t.actionPoints[actorID] = t.budget
	return nil
}

// Next advances to the following actor in order, wrapping to the top
func (t *Tracker) Next() (core.Entity, error) {
	if !t.active {
		return nil, errNotActive()
	}

	next := t.order[(t.current+1)%len(t.order)]
	if err := t.AdvanceTo(next.ID); err != nil {
		return nil, err
	}
	return next, nil
}

// UseAction spends cost action points for actorID. Only the current actor may act.
// It returns the actor's remaining points.
func (t *Tracker) UseAction(actorID string, cost int) (int, error) {
	if !t.active {
		return 0, errNotActive()
	}
	if cost < 0 {
		return 0, errors.InvalidArgumentf("action cost must not be negative, got %d", cost)
	}

	current := t.order[t.current]
	if actorID != current.ID {
		return 0, errors.NotYourTurn(actorID)
	}

	available := t.actionPoints[actorID]
	if cost > available {
		return 0, errors.InsufficientActionPoints(actorID, cost, available)
	}

	t.actionPoints[actorID] = available - cost
	return t.actionPoints[actorID], nil
}

// End clears the encounter
func (t *Tracker) End() error {
	if !t.active {
		return errNotActive()
	}
	t.active = false
	t.order = nil
	t.current = 0
	t.round = 0
	t.actionPoints = nil
	return nil
}

// ActionPoints returns a copy of every actor's remaining points
func (t *Tracker) ActionPoints() map[string]int {
	out := make(map[string]int, len(t.actionPoints))
	for k, v := range t.actionPoints {
		out[k] = v
	}
	return out
}

// Round returns the 1-based round counter, 0 when inactive
func (t *Tracker) Round() int {
	return t.round
}

// Snapshot returns the wire view of the encounter, nil when inactive
func (t *Tracker) Snapshot() *entities.CombatState {
	if !t.active {
		return nil
	}

	order := make([]entities.TurnEntry, len(t.order))
	for i, c := range t.order {
		order[i] = c.TurnEntry
	}

	return &entities.CombatState{
		Active:           true,
		TurnOrder:        order,
		CurrentTurnIndex: t.current,
		ActionPoints:     t.ActionPoints(),
		Round:            t.round,
	}
}

func errNotActive() error {
	return errors.CombatNotActive()
}

func (t *Tracker) indexOf(actorID string) int {
	for i, c := range t.order {
		if c.ID == actorID {
			return i
		}
	}
	return -1
}
