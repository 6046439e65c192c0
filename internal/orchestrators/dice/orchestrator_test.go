package dice_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/hexroom/internal/errors"
	"github.com/KirkDiggler/hexroom/internal/orchestrators/dice"
	"github.com/KirkDiggler/hexroom/internal/pkg/clock"
	"github.com/KirkDiggler/hexroom/internal/pkg/idgen"
	dicesession "github.com/KirkDiggler/hexroom/internal/repositories/dice_session"
	dicesessionmock "github.com/KirkDiggler/hexroom/internal/repositories/dice_session/mock"
)

// fixedRoller returns the same faces every time
type fixedRoller struct {
	values []int
}

func (f *fixedRoller) Roll(_ int) (int, error) { return f.values[0], nil }
func (f *fixedRoller) RollN(count, _ int) ([]int, error) {
	out := make([]int, count)
	for i := range out {
		out[i] = f.values[i%len(f.values)]
	}
	return out, nil
}

type OrchestratorTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	mockRepo *dicesessionmock.MockRepository
	clock    *clock.Fake
	roller   *fixedRoller
	orch     dice.Service
	ctx      context.Context
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockRepo = dicesessionmock.NewMockRepository(s.ctrl)
	s.clock = clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	s.roller = &fixedRoller{values: []int{4, 2}}
	s.ctx = context.Background()

	var err error
	s.orch, err = dice.NewOrchestrator(&dice.Config{
		DiceSessionRepo: s.mockRepo,
		IDGenerator:     idgen.NewSequential("roll"),
		Clock:           s.clock,
		Roller:          s.roller,
	})
	s.Require().NoError(err)
}

func (s *OrchestratorTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *OrchestratorTestSuite) TestNewOrchestratorValidatesConfig() {
	_, err := dice.NewOrchestrator(&dice.Config{})
	s.Require().Error(err)
	s.Assert().True(errors.IsInvalidArgument(err))

	_, err = dice.NewOrchestrator(&dice.Config{
		DiceSessionRepo: s.mockRepo,
		IDGenerator:     idgen.NewSequential("roll"),
		Clock:           s.clock,
		HistoryLimit:    -1,
	})
	s.Assert().True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestParseNotation() {
	testCases := []struct {
		input    string
		expected dice.Notation
		str      string
	}{
		{"1d20", dice.Notation{Count: 1, Size: 20}, "1d20"},
		{"2D6+3", dice.Notation{Count: 2, Size: 6, Modifier: 3}, "2d6+3"},
		{" 3d8-1 ", dice.Notation{Count: 3, Size: 8, Modifier: -1}, "3d8-1"},
		{"1d6+0", dice.Notation{Count: 1, Size: 6}, "1d6"},
	}
	for _, tc := range testCases {
		s.Run(tc.input, func() {
			n, err := dice.ParseNotation(tc.input)
			s.Require().NoError(err)
			s.Assert().Equal(tc.expected, n)
			s.Assert().Equal(tc.str, n.String())
		})
	}
}

func (s *OrchestratorTestSuite) TestParseNotationRejects() {
	for _, input := range []string{"", "d20", "2d", "0d6", "2d0", "1d20+", "101d6", "1d1001", "2d6*2", "abc"} {
		s.Run(input, func() {
			_, err := dice.ParseNotation(input)
			s.Require().Error(err)
			s.Assert().True(errors.IsInvalidArgument(err))
		})
	}
}

func (s *OrchestratorTestSuite) TestRollDiceRecordsRoll() {
	s.mockRepo.EXPECT().
		Append(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input dicesession.AppendInput) (*dicesession.AppendOutput, error) {
			s.Assert().Equal("room_1", input.RoomID)
			s.Assert().Equal(dice.DefaultSessionTTL, input.TTL)
			s.Assert().Zero(input.Limit)
			s.Assert().Equal("roll_1", input.Roll.RollID)
			return &dicesession.AppendOutput{Session: &dicesession.DiceSession{
				RoomID: "room_1",
				Rolls:  []dicesession.DiceRoll{{RollID: "old"}, input.Roll},
			}}, nil
		})

	out, err := s.orch.RollDice(s.ctx, &dice.RollDiceInput{
		RoomID:      "room_1",
		UserID:      "conn_1",
		Notation:    "3d6+2",
		Description: "fireball",
	})
	s.Require().NoError(err)

	s.Assert().Equal("roll_1", out.Roll.RollID)
	s.Assert().Equal("conn_1", out.Roll.UserID)
	s.Assert().Equal([]int32{4, 2, 4}, out.Roll.Dice)
	s.Assert().Equal(int32(10), out.Roll.DiceTotal)
	s.Assert().Equal(int32(2), out.Roll.Modifier)
	s.Assert().Equal(int32(12), out.Roll.Total)
	s.Assert().Equal("fireball", out.Roll.Description)
	s.Assert().True(out.Roll.RolledAt.Equal(s.clock.Now()))
	s.Assert().Equal([]string{"d6: 4", "d6: 2", "d6: 4"}, dice.FormatResults(out.Roll))
	s.Assert().Len(out.Session.Rolls, 2)
}

func (s *OrchestratorTestSuite) TestRollDicePassesHistoryLimit() {
	orch, err := dice.NewOrchestrator(&dice.Config{
		DiceSessionRepo: s.mockRepo,
		IDGenerator:     idgen.NewSequential("roll"),
		Clock:           s.clock,
		Roller:          s.roller,
		SessionTTL:      time.Minute,
		HistoryLimit:    5,
	})
	s.Require().NoError(err)

	s.mockRepo.EXPECT().
		Append(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input dicesession.AppendInput) (*dicesession.AppendOutput, error) {
			s.Assert().Equal(time.Minute, input.TTL)
			s.Assert().Equal(5, input.Limit)
			return &dicesession.AppendOutput{Session: &dicesession.DiceSession{RoomID: input.RoomID}}, nil
		})

	_, err = orch.RollDice(s.ctx, &dice.RollDiceInput{RoomID: "room_1", UserID: "conn_1", Notation: "1d20"})
	s.Require().NoError(err)
}

func (s *OrchestratorTestSuite) TestRollDiceValidation() {
	testCases := []struct {
		name  string
		input *dice.RollDiceInput
	}{
		{"missing room", &dice.RollDiceInput{UserID: "u", Notation: "1d6"}},
		{"missing user", &dice.RollDiceInput{RoomID: "r", Notation: "1d6"}},
		{"missing notation", &dice.RollDiceInput{RoomID: "r", UserID: "u"}},
		{"bad notation", &dice.RollDiceInput{RoomID: "r", UserID: "u", Notation: "lots"}},
	}
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.orch.RollDice(s.ctx, tc.input)
			s.Require().Error(err)
			s.Assert().True(errors.IsInvalidArgument(err))
		})
	}
}

func (s *OrchestratorTestSuite) TestRollDiceRepositoryFailure() {
	s.mockRepo.EXPECT().
		Append(s.ctx, gomock.Any()).
		Return(nil, errors.Internal("redis down"))

	_, err := s.orch.RollDice(s.ctx, &dice.RollDiceInput{RoomID: "room_1", UserID: "u", Notation: "1d6"})
	s.Require().Error(err)
	s.Assert().True(errors.IsInternal(err))
}

func (s *OrchestratorTestSuite) TestGetRollSessionEmpty() {
	s.mockRepo.EXPECT().
		Get(s.ctx, dicesession.GetInput{RoomID: "room_1"}).
		Return(nil, errors.NotFound("dice session not found"))

	out, err := s.orch.GetRollSession(s.ctx, &dice.GetRollSessionInput{RoomID: "room_1"})
	s.Require().NoError(err)
	s.Assert().Equal("room_1", out.Session.RoomID)
	s.Assert().Empty(out.Session.Rolls)
}

func (s *OrchestratorTestSuite) TestClearRollSession() {
	s.mockRepo.EXPECT().
		Delete(s.ctx, dicesession.DeleteInput{RoomID: "room_1"}).
		Return(&dicesession.DeleteOutput{RollsDeleted: 3}, nil)

	out, err := s.orch.ClearRollSession(s.ctx, &dice.ClearRollSessionInput{RoomID: "room_1"})
	s.Require().NoError(err)
	s.Assert().Equal(int32(3), out.RollsDeleted)
}
