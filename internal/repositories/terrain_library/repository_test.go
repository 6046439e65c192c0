package terrainlibrary_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/hexroom/internal/errors"
	"github.com/KirkDiggler/hexroom/internal/pkg/clock"
	terrainlibrary "github.com/KirkDiggler/hexroom/internal/repositories/terrain_library"
	"github.com/KirkDiggler/hexroom/internal/testutils"
)

var testStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type LibraryTestSuite struct {
	suite.Suite
	ctx     context.Context
	clock   *clock.Fake
	repo    terrainlibrary.Repository
	open    func(clk clock.Clock) (terrainlibrary.Repository, func())
	cleanup func()
}

func TestInMemoryLibrary(t *testing.T) {
	suite.Run(t, &LibraryTestSuite{
		open: func(clk clock.Clock) (terrainlibrary.Repository, func()) {
			return terrainlibrary.NewInMemory(clk), func() {}
		},
	})
}

func TestRedisLibrary(t *testing.T) {
	s := &LibraryTestSuite{}
	s.open = func(clk clock.Clock) (terrainlibrary.Repository, func()) {
		client, cleanup := testutils.CreateTestRedisClient(s.T())
		repo, err := terrainlibrary.NewRedisRepository(&terrainlibrary.RedisConfig{Client: client, Clock: clk})
		s.Require().NoError(err)
		return repo, cleanup
	}
	suite.Run(t, s)
}

func TestSQLiteLibrary(t *testing.T) {
	s := &LibraryTestSuite{}
	s.open = func(clk clock.Clock) (terrainlibrary.Repository, func()) {
		repo, err := terrainlibrary.OpenSQLite(":memory:", clk)
		s.Require().NoError(err)
		return repo, func() { _ = repo.Close() }
	}
	suite.Run(t, s)
}

func (s *LibraryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = clock.NewFake(testStart)
	s.repo, s.cleanup = s.open(s.clock)
}

func (s *LibraryTestSuite) TearDownTest() {
	s.cleanup()
}

func sampleTerrain(n int) []byte {
	var b bytes.Buffer
	b.WriteString("{")
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(`"0,0,0":{"q":0,"r":0,"s":0,"type":"grass","elevation":0}`)
	}
	b.WriteString("}")
	return b.Bytes()
}

func (s *LibraryTestSuite) TestSaveAndLoad() {
	data := sampleTerrain(50)

	saved, err := s.repo.Save(s.ctx, &terrainlibrary.SaveInput{Name: "Keep Level 1", HexCount: 1, Data: data})
	s.Require().NoError(err)
	s.Assert().Equal("Keep Level 1", saved.Entry.Name)
	s.Assert().True(saved.Entry.SavedAt.Equal(testStart))

	loaded, err := s.repo.Load(s.ctx, &terrainlibrary.LoadInput{Name: "Keep Level 1"})
	s.Require().NoError(err)
	s.Assert().Equal(data, loaded.Data)
	s.Assert().Equal(1, loaded.Entry.HexCount)
}

func (s *LibraryTestSuite) TestSaveOverwrites() {
	_, err := s.repo.Save(s.ctx, &terrainlibrary.SaveInput{Name: "arena", HexCount: 1, Data: []byte(`{"a":1}`)})
	s.Require().NoError(err)

	s.clock.Advance(time.Minute)
	_, err = s.repo.Save(s.ctx, &terrainlibrary.SaveInput{Name: "arena", HexCount: 2, Data: []byte(`{"b":2}`)})
	s.Require().NoError(err)

	loaded, err := s.repo.Load(s.ctx, &terrainlibrary.LoadInput{Name: "arena"})
	s.Require().NoError(err)
	s.Assert().Equal([]byte(`{"b":2}`), loaded.Data)
	s.Assert().Equal(2, loaded.Entry.HexCount)
	s.Assert().True(loaded.Entry.SavedAt.Equal(testStart.Add(time.Minute)))

	list, err := s.repo.List(s.ctx, &terrainlibrary.ListInput{})
	s.Require().NoError(err)
	s.Assert().Len(list.Entries, 1)
}

func (s *LibraryTestSuite) TestLoadMissing() {
	_, err := s.repo.Load(s.ctx, &terrainlibrary.LoadInput{Name: "nowhere"})
	s.Require().Error(err)
	s.Assert().True(errors.IsNotFound(err))
}

func (s *LibraryTestSuite) TestListSortedByName() {
	for _, name := range []string{"swamp", "arena", "mines"} {
		_, err := s.repo.Save(s.ctx, &terrainlibrary.SaveInput{Name: name, Data: []byte(`{}`)})
		s.Require().NoError(err)
	}

	list, err := s.repo.List(s.ctx, &terrainlibrary.ListInput{})
	s.Require().NoError(err)
	names := make([]string, len(list.Entries))
	for i, e := range list.Entries {
		names[i] = e.Name
	}
	s.Assert().Equal([]string{"arena", "mines", "swamp"}, names)
}

func (s *LibraryTestSuite) TestDelete() {
	_, err := s.repo.Save(s.ctx, &terrainlibrary.SaveInput{Name: "arena", Data: []byte(`{}`)})
	s.Require().NoError(err)

	out, err := s.repo.Delete(s.ctx, &terrainlibrary.DeleteInput{Name: "arena"})
	s.Require().NoError(err)
	s.Assert().True(out.Deleted)

	out, err = s.repo.Delete(s.ctx, &terrainlibrary.DeleteInput{Name: "arena"})
	s.Require().NoError(err)
	s.Assert().False(out.Deleted)

	list, err := s.repo.List(s.ctx, &terrainlibrary.ListInput{})
	s.Require().NoError(err)
	s.Assert().Empty(list.Entries)
}

func (s *LibraryTestSuite) TestValidation() {
	testCases := []struct {
		name  string
		input *terrainlibrary.SaveInput
	}{
		{"nil input", nil},
		{"empty name", &terrainlibrary.SaveInput{Data: []byte(`{}`)}},
		{"path name", &terrainlibrary.SaveInput{Name: "../x", Data: []byte(`{}`)}},
		{"no data", &terrainlibrary.SaveInput{Name: "arena"}},
	}
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.repo.Save(s.ctx, tc.input)
			s.Require().Error(err)
			s.Assert().True(errors.IsInvalidArgument(err))
		})
	}
}

func TestValidateName(t *testing.T) {
	for _, name := range []string{"a", "Keep Level 1", "map_2.v3", "x-y"} {
		if err := terrainlibrary.ValidateName(name); err != nil {
			t.Errorf("expected %q to be valid: %v", name, err)
		}
	}
	for _, name := range []string{"", "a/b", "name!", string(make([]byte, 65))} {
		if err := terrainlibrary.ValidateName(name); err == nil {
			t.Errorf("expected %q to be rejected", name)
		}
	}
}
