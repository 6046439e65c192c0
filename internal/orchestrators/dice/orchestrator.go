// Package dice implements server-side dice rolls recorded per room
package dice

//go:generate mockgen -destination=mock/mock_service.go -package=dicemock github.com/KirkDiggler/hexroom/internal/orchestrators/dice Service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/hexroom/internal/errors"
	"github.com/KirkDiggler/hexroom/internal/pkg/clock"
	"github.com/KirkDiggler/hexroom/internal/pkg/idgen"
	dicesession "github.com/KirkDiggler/hexroom/internal/repositories/dice_session"
)

const (
	// DefaultSessionTTL is how long a room's roll history lives after its last roll
	DefaultSessionTTL = dicesession.DefaultTTL

	// MaxDice bounds the count in a single roll
	MaxDice = 100

	// MaxDieSize bounds the faces of a single die
	MaxDieSize = 1000
)

// Regex for dice notation like "2d6", "1d20+5", "3d8-1"
var diceNotationRegex = regexp.MustCompile(`^(\d+)d(\d+)(?:([+-])(\d+))?$`)

// Service defines the interface for dice operations
type Service interface {
	RollDice(ctx context.Context, input *RollDiceInput) (*RollDiceOutput, error)
	GetRollSession(ctx context.Context, input *GetRollSessionInput) (*GetRollSessionOutput, error)
	ClearRollSession(ctx context.Context, input *ClearRollSessionInput) (*ClearRollSessionOutput, error)
}

// Config holds the dependencies for the dice orchestrator
type Config struct {
	DiceSessionRepo dicesession.Repository
	IDGenerator     idgen.Generator
	Clock           clock.Clock
	// Roller defaults to the toolkit's crypto roller
	Roller     dice.Roller
	SessionTTL time.Duration
	// HistoryLimit caps the rolls kept per room
	HistoryLimit int
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.DiceSessionRepo == nil {
		vb.RequiredField("DiceSessionRepo")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}
	if c.SessionTTL < 0 {
		vb.Field("SessionTTL", "must not be negative")
	}
	if c.HistoryLimit < 0 {
		vb.Field("HistoryLimit", "must not be negative")
	}

	return vb.Build()
}

type orchestrator struct {
	diceSessionRepo dicesession.Repository
	idGen           idgen.Generator
	clock           clock.Clock
	roller          dice.Roller
	ttl             time.Duration
	historyLimit    int
}

// NewOrchestrator creates a new dice orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	roller := cfg.Roller
	if roller == nil {
		roller = dice.DefaultRoller
	}
	ttl := cfg.SessionTTL
	if ttl == 0 {
		ttl = DefaultSessionTTL
	}

	return &orchestrator{
		diceSessionRepo: cfg.DiceSessionRepo,
		idGen:           cfg.IDGenerator,
		clock:           cfg.Clock,
		roller:          roller,
		ttl:             ttl,
		historyLimit:    cfg.HistoryLimit,
	}, nil
}

// ParseNotation parses NdM[+/-K]
func ParseNotation(notation string) (Notation, error) {
	matches := diceNotationRegex.FindStringSubmatch(strings.ToLower(strings.TrimSpace(notation)))
	if matches == nil {
		return Notation{}, errors.InvalidArgumentf("invalid dice notation: %s (expected format: NdM, NdM+K or NdM-K)", notation)
	}

	count, err := strconv.Atoi(matches[1])
	if err != nil {
		return Notation{}, errors.InvalidArgumentf("invalid dice count in notation: %s", notation)
	}
	size, err := strconv.Atoi(matches[2])
	if err != nil {
		return Notation{}, errors.InvalidArgumentf("invalid die size in notation: %s", notation)
	}

	if count <= 0 || size <= 0 {
		return Notation{}, errors.InvalidArgumentf("dice count and size must be positive: %s", notation)
	}
	if count > MaxDice {
		return Notation{}, errors.InvalidArgumentf("at most %d dice per roll: %s", MaxDice, notation)
	}
	if size > MaxDieSize {
		return Notation{}, errors.InvalidArgumentf("dice have at most %d sides: %s", MaxDieSize, notation)
	}

	var modifier int
	if matches[4] != "" {
		modifier, err = strconv.Atoi(matches[4])
		if err != nil {
			return Notation{}, errors.InvalidArgumentf("invalid modifier in notation: %s", notation)
		}
		if matches[3] == "-" {
			modifier = -modifier
		}
	}

	return Notation{Count: count, Size: size, Modifier: modifier}, nil
}

// String renders the notation in canonical form
func (n Notation) String() string {
	switch {
	case n.Modifier > 0:
		return fmt.Sprintf("%dd%d+%d", n.Count, n.Size, n.Modifier)
	case n.Modifier < 0:
		return fmt.Sprintf("%dd%d%d", n.Count, n.Size, n.Modifier)
	default:
		return fmt.Sprintf("%dd%d", n.Count, n.Size)
	}
}

// FormatResults renders each die as "dM: value"
func FormatResults(roll *dicesession.DiceRoll) []string {
	out := make([]string, len(roll.Dice))
	for i, v := range roll.Dice {
		out[i] = fmt.Sprintf("d%d: %d", roll.Size, v)
	}
	return out
}

// RollDice rolls dice using the specified notation and appends the result to the room's session
func (o *orchestrator) RollDice(ctx context.Context, input *RollDiceInput) (*RollDiceOutput, error) {
	if input.RoomID == "" {
		return nil, errors.InvalidArgument("room ID is required")
	}
	if input.UserID == "" {
		return nil, errors.InvalidArgument("user ID is required")
	}
	if input.Notation == "" {
		return nil, errors.InvalidArgument("dice notation is required")
	}

	notation, err := ParseNotation(input.Notation)
	if err != nil {
		return nil, err
	}

	values, err := o.roller.RollN(notation.Count, notation.Size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to roll dice")
	}

	diceValues := make([]int32, len(values))
	var diceTotal int32
	for i, v := range values {
		// nolint:gosec // bounded by MaxDieSize
		diceValues[i] = int32(v)
		diceTotal += diceValues[i]
	}
	// nolint:gosec // modifier comes from a short regex match
	modifier := int32(notation.Modifier)

	roll := &dicesession.DiceRoll{
		RollID:      o.idGen.Generate(),
		UserID:      input.UserID,
		Notation:    notation.String(),
		Size:        notation.Size,
		Dice:        diceValues,
		Total:       diceTotal + modifier,
		Description: input.Description,
		DiceTotal:   diceTotal,
		Modifier:    modifier,
		RolledAt:    o.clock.Now(),
	}

	ttl := input.TTL
	if ttl == 0 {
		ttl = o.ttl
	}

	appended, err := o.diceSessionRepo.Append(ctx, dicesession.AppendInput{
		RoomID: input.RoomID,
		Roll:   *roll,
		TTL:    ttl,
		Limit:  o.historyLimit,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to record roll")
	}

	slog.Info("Dice rolled successfully",
		"room_id", input.RoomID,
		"user_id", input.UserID,
		"notation", roll.Notation,
		"total", roll.Total,
		"roll_id", roll.RollID,
	)

	return &RollDiceOutput{
		Roll:    roll,
		Session: appended.Session,
	}, nil
}

// GetRollSession retrieves a room's roll history
func (o *orchestrator) GetRollSession(ctx context.Context, input *GetRollSessionInput) (*GetRollSessionOutput, error) {
	if input.RoomID == "" {
		return nil, errors.InvalidArgument("room ID is required")
	}

	getOutput, err := o.diceSessionRepo.Get(ctx, dicesession.GetInput{RoomID: input.RoomID})
	if err != nil {
		if errors.IsNotFound(err) {
			return &GetRollSessionOutput{Session: &dicesession.DiceSession{RoomID: input.RoomID}}, nil
		}
		return nil, errors.Wrap(err, "failed to get dice session")
	}

	return &GetRollSessionOutput{
		Session: getOutput.Session,
	}, nil
}

// ClearRollSession removes a room's roll history
func (o *orchestrator) ClearRollSession(ctx context.Context, input *ClearRollSessionInput) (*ClearRollSessionOutput, error) {
	if input.RoomID == "" {
		return nil, errors.InvalidArgument("room ID is required")
	}

	deleteOutput, err := o.diceSessionRepo.Delete(ctx, dicesession.DeleteInput{RoomID: input.RoomID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to delete dice session")
	}

	slog.Info("Dice session cleared",
		"room_id", input.RoomID,
		"rolls_deleted", deleteOutput.RollsDeleted,
	)

	return &ClearRollSessionOutput{
		RollsDeleted: deleteOutput.RollsDeleted,
	}, nil
}
