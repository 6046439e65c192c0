package room_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/hexroom/internal/entities"
	"github.com/KirkDiggler/hexroom/internal/errors"
	"github.com/KirkDiggler/hexroom/internal/hexgrid"
	"github.com/KirkDiggler/hexroom/internal/pkg/clock"
	"github.com/KirkDiggler/hexroom/internal/pkg/idgen"
	"github.com/KirkDiggler/hexroom/internal/services/room"
	"github.com/KirkDiggler/hexroom/internal/terrain"
	terrainmock "github.com/KirkDiggler/hexroom/internal/terrain/mock"
	"github.com/KirkDiggler/hexroom/internal/testutils/mocks"
)

type RegistryTestSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	generator *terrainmock.MockGenerator
	clock     *clock.Fake
	registry  room.Service
	ctx       context.Context
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (s *RegistryTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.generator = terrainmock.NewMockGenerator(s.ctrl)
	s.clock = clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	s.ctx = context.Background()

	mocks.ExpectGenerate(s.generator, terrain.Map{
		"0,0,0":   {Q: 0, R: 0, S: 0, Type: entities.TerrainGrass},
		"0,0,0:1": {Q: 0, R: 0, S: 0, Type: entities.TerrainGrass, IsStacked: true, StackLevel: 1},
	})

	var err error
	s.registry, err = room.NewService(&room.Config{
		IDGenerator: idgen.NewSequential("room"),
		Clock:       s.clock,
		Generator:   s.generator,
		GracePeriod: 30 * time.Second,
	})
	s.Require().NoError(err)
}

func (s *RegistryTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *RegistryTestSuite) createRoom(creator string) *room.Room {
	out, err := s.registry.CreateRoom(s.ctx, &room.CreateRoomInput{CreatorID: creator})
	s.Require().NoError(err)
	return out.Room
}

func (s *RegistryTestSuite) TestNewServiceValidatesConfig() {
	_, err := room.NewService(&room.Config{})
	s.Require().Error(err)
	s.Assert().True(errors.IsInvalidArgument(err))
}

func (s *RegistryTestSuite) TestCreateRoom() {
	r := s.createRoom("conn-1")

	s.Assert().Equal("room_1", r.ID)
	s.Assert().Equal(1, s.registry.Count())

	r.Lock()
	defer r.Unlock()

	state := r.State()
	s.Assert().Len(state.Terrain, 2)
	s.Require().Len(state.Users, 1)
	s.Assert().True(state.Users["conn-1"].IsGM)
	s.Assert().Nil(state.Combat)
	s.Assert().Equal(entities.DefaultGameSettings(), state.GameSettings)
}

func (s *RegistryTestSuite) TestCreateRoomRequiresCreator() {
	_, err := s.registry.CreateRoom(s.ctx, &room.CreateRoomInput{})
	s.Assert().True(errors.IsInvalidArgument(err))
}

func (s *RegistryTestSuite) TestCreateRoomFailsOnBadTerrain() {
	gen := terrainmock.NewMockGenerator(s.ctrl)
	gen.EXPECT().Generate().Return(terrain.Map{"0,0,0:2": {}})

	registry, err := room.NewService(&room.Config{
		IDGenerator: idgen.NewSequential("room"),
		Clock:       s.clock,
		Generator:   gen,
	})
	s.Require().NoError(err)

	_, err = registry.CreateRoom(s.ctx, &room.CreateRoomInput{CreatorID: "c"})
	s.Assert().True(errors.HasReason(err, errors.ReasonRoomCreationFailed))
	s.Assert().Equal(0, registry.Count())
}

func (s *RegistryTestSuite) TestGetRoom() {
	r := s.createRoom("conn-1")

	out, err := s.registry.GetRoom(s.ctx, &room.GetRoomInput{RoomID: r.ID})
	s.Require().NoError(err)
	s.Assert().Same(r, out.Room)

	_, err = s.registry.GetRoom(s.ctx, &room.GetRoomInput{RoomID: "missing"})
	s.Assert().True(errors.HasReason(err, errors.ReasonRoomNotFound))
	s.Assert().Equal("Room not found", errors.GetMessage(err))
}

func (s *RegistryTestSuite) leave(r *room.Room, connID string) {
	r.Lock()
	r.RemoveUser(connID)
	r.Unlock()
}

func (s *RegistryTestSuite) TestRemoveIfEmptyWaitsForGracePeriod() {
	r := s.createRoom("conn-1")
	s.leave(r, "conn-1")

	out, err := s.registry.RemoveIfEmpty(s.ctx, &room.RemoveIfEmptyInput{RoomID: r.ID})
	s.Require().NoError(err)
	s.Assert().True(out.Scheduled)

	s.clock.Advance(29 * time.Second)
	s.Assert().Equal(1, s.registry.Count(), "room must survive inside the grace period")

	s.clock.Advance(time.Second)
	s.Assert().Equal(0, s.registry.Count())

	r.Lock()
	s.Assert().True(r.Closed())
	r.Unlock()

	_, err = s.registry.GetRoom(s.ctx, &room.GetRoomInput{RoomID: r.ID})
	s.Assert().True(errors.HasReason(err, errors.ReasonRoomNotFound))
}

func (s *RegistryTestSuite) TestOnDeleteRunsAfterCollection() {
	var (
		deleted  []string
		registry room.Service
		err      error
	)
	registry, err = room.NewService(&room.Config{
		IDGenerator: idgen.NewSequential("hook"),
		Clock:       s.clock,
		Generator:   s.generator,
		OnDelete: func(roomID string) {
			// would deadlock if the registry lock were still held
			s.Assert().Equal(0, registry.Count())
			deleted = append(deleted, roomID)
		},
	})
	s.Require().NoError(err)

	out, err := registry.CreateRoom(s.ctx, &room.CreateRoomInput{CreatorID: "conn-1"})
	s.Require().NoError(err)
	s.leave(out.Room, "conn-1")

	_, err = registry.RemoveIfEmpty(s.ctx, &room.RemoveIfEmptyInput{RoomID: out.Room.ID})
	s.Require().NoError(err)

	s.clock.Advance(room.DefaultGracePeriod)
	s.Assert().Equal([]string{"hook_1"}, deleted)
	s.Assert().Equal(0, registry.Count())
}

func (s *RegistryTestSuite) TestRejoinDuringGraceKeepsRoom() {
	r := s.createRoom("conn-1")
	s.leave(r, "conn-1")

	_, err := s.registry.RemoveIfEmpty(s.ctx, &room.RemoveIfEmptyInput{RoomID: r.ID})
	s.Require().NoError(err)

	s.clock.Advance(10 * time.Second)
	r.Lock()
	r.AddUser("conn-2", false)
	r.Unlock()

	s.clock.Advance(time.Minute)
	s.Assert().Equal(1, s.registry.Count())

	r.Lock()
	s.Assert().False(r.Closed())
	s.Assert().False(r.Summary().PendingDelete)
	r.Unlock()
}

func (s *RegistryTestSuite) TestRemoveIfEmptyIgnoresOccupiedRooms() {
	r := s.createRoom("conn-1")

	out, err := s.registry.RemoveIfEmpty(s.ctx, &room.RemoveIfEmptyInput{RoomID: r.ID})
	s.Require().NoError(err)
	s.Assert().False(out.Scheduled)
	s.Assert().Equal(0, s.clock.Pending())
}

func (s *RegistryTestSuite) TestRearmReplacesTimer() {
	r := s.createRoom("conn-1")
	s.leave(r, "conn-1")

	_, err := s.registry.RemoveIfEmpty(s.ctx, &room.RemoveIfEmptyInput{RoomID: r.ID})
	s.Require().NoError(err)
	s.clock.Advance(20 * time.Second)

	_, err = s.registry.RemoveIfEmpty(s.ctx, &room.RemoveIfEmptyInput{RoomID: r.ID, Grace: 30 * time.Second})
	s.Require().NoError(err)
	s.Assert().Equal(1, s.clock.Pending())

	s.clock.Advance(15 * time.Second)
	s.Assert().Equal(1, s.registry.Count())

	s.clock.Advance(15 * time.Second)
	s.Assert().Equal(0, s.registry.Count())
}

func (s *RegistryTestSuite) TestListRooms() {
	first := s.createRoom("conn-1")
	s.clock.Advance(time.Second)
	second := s.createRoom("conn-2")

	out, err := s.registry.ListRooms(s.ctx, &room.ListRoomsInput{})
	s.Require().NoError(err)
	s.Require().Len(out.Rooms, 2)
	s.Assert().Equal(first.ID, out.Rooms[0].ID)
	s.Assert().Equal(second.ID, out.Rooms[1].ID)
	s.Assert().Equal(1, out.Rooms[0].UserCount)
	s.Assert().Equal(2, out.Rooms[0].HexCount)
}

func (s *RegistryTestSuite) TestRoomMembership() {
	r := s.createRoom("gm")
	r.Lock()
	defer r.Unlock()

	player := r.AddUser("player", false)
	s.Assert().Equal(hexgrid.Origin, player.Position)
	s.Assert().False(player.IsGM)
	s.Assert().Equal([]string{"gm", "player"}, r.UserIDs())

	u, ok := r.User("gm")
	s.Require().True(ok)
	s.Assert().True(u.IsGM)

	s.Assert().True(r.RemoveUser("player"))
	s.Assert().False(r.RemoveUser("player"))
	s.Assert().False(r.HasUser("player"))
	s.Assert().Equal(1, r.UserCount())
}
