package combat_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/hexroom/internal/combat"
	"github.com/KirkDiggler/hexroom/internal/entities"
	"github.com/KirkDiggler/hexroom/internal/errors"
)

type TrackerTestSuite struct {
	suite.Suite
	tracker *combat.Tracker
	order   []entities.TurnEntry
}

func TestTrackerSuite(t *testing.T) {
	suite.Run(t, new(TrackerTestSuite))
}

func (s *TrackerTestSuite) SetupTest() {
	s.tracker = combat.NewTracker(0)
	s.order = []entities.TurnEntry{
		{ID: "A", Name: "Aria", Initiative: 10},
		{ID: "B", Name: "Brom", Initiative: 15},
	}
}

func (s *TrackerTestSuite) TestStartTrustsClientOrder() {
	s.Require().NoError(s.tracker.Start(s.order))

	snap := s.tracker.Snapshot()
	s.Require().NotNil(snap)
	s.Assert().True(snap.Active)
	s.Assert().Equal(0, snap.CurrentTurnIndex)
	s.Assert().Equal("A", snap.CurrentTurnID())
	s.Assert().Equal(s.order, snap.TurnOrder)
	s.Assert().Equal(map[string]int{"A": 5, "B": 5}, snap.ActionPoints)
	s.Assert().Equal(1, snap.Round)
	s.Assert().Equal("A", s.tracker.Current().GetID())
	s.Assert().Equal(combat.EntityType, s.tracker.Current().GetType())
}

func (s *TrackerTestSuite) TestStartRejectsBadOrders() {
	testCases := []struct {
		name  string
		order []entities.TurnEntry
	}{
		{"empty", nil},
		{"missing id", []entities.TurnEntry{{Name: "nobody"}}},
		{"duplicate id", []entities.TurnEntry{{ID: "A"}, {ID: "A"}}},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			err := s.tracker.Start(tc.order)
			s.Require().Error(err)
			s.Assert().True(errors.IsInvalidArgument(err))
			s.Assert().False(s.tracker.Active())
		})
	}
}

func (s *TrackerTestSuite) TestRestartReplacesEncounter() {
	s.Require().NoError(s.tracker.Start(s.order))
	_, err := s.tracker.UseAction("A", 3)
	s.Require().NoError(err)

	s.Require().NoError(s.tracker.Start([]entities.TurnEntry{{ID: "C"}}))
	s.Assert().Equal(map[string]int{"C": 5}, s.tracker.ActionPoints())
}

func (s *TrackerTestSuite) TestUseAction() {
	s.Require().NoError(s.tracker.Start(s.order))

	s.Run("deducts exactly the cost", func() {
		remaining, err := s.tracker.UseAction("A", 2)
		s.Require().NoError(err)
		s.Assert().Equal(3, remaining)
		s.Assert().Equal(3, s.tracker.ActionPoints()["A"])
	})

	s.Run("zero cost is allowed", func() {
		remaining, err := s.tracker.UseAction("A", 0)
		s.Require().NoError(err)
		s.Assert().Equal(3, remaining)
	})

	s.Run("wrong actor fails without change", func() {
		before := s.tracker.ActionPoints()
		_, err := s.tracker.UseAction("B", 1)
		s.Assert().True(errors.HasReason(err, errors.ReasonNotYourTurn))
		s.Assert().Equal("Not your turn", errors.GetMessage(err))
		s.Assert().Equal(before, s.tracker.ActionPoints())
	})

	s.Run("over budget fails without change", func() {
		before := s.tracker.ActionPoints()
		_, err := s.tracker.UseAction("A", 4)
		s.Assert().True(errors.HasReason(err, errors.ReasonInsufficientActionPoints))
		s.Assert().Equal("Not enough AP", errors.GetMessage(err))
		s.Assert().Equal(before, s.tracker.ActionPoints())
	})

	s.Run("negative cost is rejected", func() {
		_, err := s.tracker.UseAction("A", -1)
		s.Assert().True(errors.IsInvalidArgument(err))
	})

	s.Run("spending everything does not advance the turn", func() {
		remaining, err := s.tracker.UseAction("A", 3)
		s.Require().NoError(err)
		s.Assert().Equal(0, remaining)
		s.Assert().Equal("A", s.tracker.Current().GetID())
	})
}

func (s *TrackerTestSuite) TestAdvanceTo() {
	s.Require().NoError(s.tracker.Start(s.order))
	_, err := s.tracker.UseAction("A", 5)
	s.Require().NoError(err)

	s.Run("any actor may be chosen", func() {
		s.Require().NoError(s.tracker.AdvanceTo("B"))
		s.Assert().Equal("B", s.tracker.Current().GetID())
		s.Assert().Equal(1, s.tracker.Round())
	})

	s.Run("returning to the first actor refills and starts a new round", func() {
		s.Require().NoError(s.tracker.AdvanceTo("A"))
		s.Assert().Equal(5, s.tracker.ActionPoints()["A"])
		s.Assert().Equal(2, s.tracker.Round())
	})

	s.Run("unknown actor changes nothing", func() {
		before := s.tracker.Snapshot()
		err := s.tracker.AdvanceTo("Z")
		s.Assert().True(errors.HasReason(err, errors.ReasonUnknownActor))
		s.Assert().Equal(before, s.tracker.Snapshot())
	})
}

func (s *TrackerTestSuite) TestNext() {
	s.Require().NoError(s.tracker.Start(s.order))

	next, err := s.tracker.Next()
	s.Require().NoError(err)
	s.Assert().Equal("B", next.GetID())

	next, err = s.tracker.Next()
	s.Require().NoError(err)
	s.Assert().Equal("A", next.GetID())
	s.Assert().Equal(2, s.tracker.Round())
}

func (s *TrackerTestSuite) TestInactive() {
	s.Assert().Nil(s.tracker.Snapshot())
	s.Assert().Nil(s.tracker.Current())

	_, err := s.tracker.UseAction("A", 1)
	s.Assert().True(errors.HasReason(err, errors.ReasonCombatNotActive))
	s.Assert().True(errors.HasReason(s.tracker.AdvanceTo("A"), errors.ReasonCombatNotActive))
	s.Assert().True(errors.HasReason(s.tracker.End(), errors.ReasonCombatNotActive))
	_, err = s.tracker.Next()
	s.Assert().True(errors.HasReason(err, errors.ReasonCombatNotActive))
}

func (s *TrackerTestSuite) TestEnd() {
	s.Require().NoError(s.tracker.Start(s.order))
	s.Require().NoError(s.tracker.End())

	s.Assert().False(s.tracker.Active())
	s.Assert().Nil(s.tracker.Snapshot())
	s.Assert().Empty(s.tracker.ActionPoints())

	s.Require().NoError(s.tracker.Start(s.order), "tracker is re-entrant")
}

func TestCustomBudget(t *testing.T) {
	tracker := combat.NewTracker(3)
	if err := tracker.Start([]entities.TurnEntry{{ID: "solo"}}); err != nil {
		t.Fatal(err)
	}
	if got := tracker.ActionPoints()["solo"]; got != 3 {
		t.Fatalf("expected 3 AP, got %d", got)
	}
}
