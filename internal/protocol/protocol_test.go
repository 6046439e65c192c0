package protocol_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/hexroom/internal/entities"
	"github.com/KirkDiggler/hexroom/internal/errors"
	"github.com/KirkDiggler/hexroom/internal/protocol"
)

type ProtocolTestSuite struct {
	suite.Suite
}

func TestProtocolSuite(t *testing.T) {
	suite.Run(t, new(ProtocolTestSuite))
}

func (s *ProtocolTestSuite) TestDecodeCreateRoomWithoutData() {
	for _, raw := range []string{
		`{"event":"createRoom"}`,
		`{"event":"createRoom","data":null}`,
		`{"event":"createRoom","data":{}}`,
	} {
		intent, err := protocol.DecodeIntent([]byte(raw))
		s.Require().NoError(err, raw)
		s.Assert().Equal(protocol.IntentCreateRoom, intent.IntentName())
	}
}

func (s *ProtocolTestSuite) TestDecodeUpdateHex() {
	raw := `{"event":"updateHex","data":{"roomId":"room_1","hexId":"1,-1,0:2",
		"hexData":{"q":1,"r":-1,"s":0,"type":"forest","isStacked":true,"stackLevel":2}}}`

	intent, err := protocol.DecodeIntent([]byte(raw))
	s.Require().NoError(err)

	update, ok := intent.(*protocol.UpdateHex)
	s.Require().True(ok)
	s.Assert().Equal("room_1", update.TargetRoom())
	s.Assert().Equal("1,-1,0:2", update.HexID)
	s.Require().NotNil(update.HexData.Q)
	s.Assert().Equal(1, *update.HexData.Q)
	s.Assert().Equal("forest", update.HexData.Type)
	s.Assert().Equal(2, update.HexData.StackLevel)
}

func (s *ProtocolTestSuite) TestDecodeKeepsMissingCoordinatesNil() {
	raw := `{"event":"updateHex","data":{"roomId":"room_1","hexId":"0,0,0","hexData":{"type":"grass"}}}`

	intent, err := protocol.DecodeIntent([]byte(raw))
	s.Require().NoError(err)

	update := intent.(*protocol.UpdateHex)
	s.Assert().Nil(update.HexData.Q)
	s.Assert().Nil(update.HexData.R)
	s.Assert().Nil(update.HexData.S)
}

func (s *ProtocolTestSuite) TestDecodeRejects() {
	testCases := []struct {
		name string
		raw  string
	}{
		{"not json", `hello`},
		{"missing event", `{"data":{}}`},
		{"unknown event", `{"event":"teleport","data":{}}`},
		{"missing room id", `{"event":"joinRoom","data":{}}`},
		{"empty room id", `{"event":"joinRoom","data":{"roomId":""}}`},
		{"bad hex id", `{"event":"removeHex","data":{"roomId":"r","hexId":"a,b,c"}}`},
		{"fractional cost", `{"event":"useAction","data":{"roomId":"r","cost":1.5}}`},
		{"missing cost", `{"event":"useAction","data":{"roomId":"r"}}`},
		{"empty turn order", `{"event":"startCombat","data":{"roomId":"r","turnOrder":[]}}`},
		{"turn entry without id", `{"event":"startCombat","data":{"roomId":"r","turnOrder":[{"name":"x"}]}}`},
		{"chat too long", `{"event":"chatMessage","data":{"roomId":"r","message":"` + longString(501) + `"}}`},
		{"bad terrain name", `{"event":"saveTerrain","data":{"roomId":"r","name":"../etc"}}`},
		{"data is array", `{"event":"joinRoom","data":[]}`},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := protocol.DecodeIntent([]byte(tc.raw))
			s.Require().Error(err)
			s.Assert().True(errors.HasReason(err, errors.ReasonBadRequest))
		})
	}
}

func (s *ProtocolTestSuite) TestDecodeStartCombatKeepsOrder() {
	raw := `{"event":"startCombat","data":{"roomId":"r","turnOrder":[
		{"id":"b","name":"Bandit","initiative":3},
		{"id":"a","name":"Aria","initiative":18}]}}`

	intent, err := protocol.DecodeIntent([]byte(raw))
	s.Require().NoError(err)

	start := intent.(*protocol.StartCombat)
	s.Require().Len(start.TurnOrder, 2)
	s.Assert().Equal("b", start.TurnOrder[0].ID)
	s.Assert().Equal("a", start.TurnOrder[1].ID)
}

func (s *ProtocolTestSuite) TestDecodeGameSettingsPartial() {
	raw := `{"event":"updateGameSettings","data":{"roomId":"r","fogOfWar":true}}`

	intent, err := protocol.DecodeIntent([]byte(raw))
	s.Require().NoError(err)

	update := intent.(*protocol.UpdateGameSettings)
	s.Require().NotNil(update.FogOfWar)
	s.Assert().True(*update.FogOfWar)
	s.Assert().Nil(update.WeatherEnabled)
	s.Assert().Nil(update.DayNightCycle)
}

func (s *ProtocolTestSuite) TestEveryIntentIsRoomScopedExceptCreate() {
	intents := map[string]string{
		protocol.IntentJoinRoom:          `{"roomId":"r"}`,
		protocol.IntentEndCombat:         `{"roomId":"r"}`,
		protocol.IntentEndTurn:           `{"roomId":"r"}`,
		protocol.IntentGetDiceHistory:    `{"roomId":"r"}`,
		protocol.IntentListTerrains:      `{"roomId":"r"}`,
		protocol.IntentUpdateTurn:        `{"roomId":"r","characterId":"a"}`,
		protocol.IntentRollDice:          `{"roomId":"r","notation":"2d6+1"}`,
		protocol.IntentUpdateWeather:     `{"roomId":"r","weatherType":"rain","weatherIntensity":0.5}`,
		protocol.IntentUpdateFullTerrain: `{"roomId":"r","terrainData":{}}`,
	}
	for name, data := range intents {
		raw, err := json.Marshal(protocol.Envelope{Event: name, Data: json.RawMessage(data)})
		s.Require().NoError(err)

		intent, err := protocol.DecodeIntent(raw)
		s.Require().NoError(err, name)
		scoped, ok := intent.(protocol.RoomScoped)
		s.Require().True(ok, name)
		s.Assert().Equal("r", scoped.TargetRoom())
	}

	intent, err := protocol.DecodeIntent([]byte(`{"event":"createRoom"}`))
	s.Require().NoError(err)
	_, ok := intent.(protocol.RoomScoped)
	s.Assert().False(ok)
}

func (s *ProtocolTestSuite) TestEncode() {
	out, err := protocol.Encode(protocol.TerrainUpdate{
		Type:       protocol.TerrainHexRemove,
		HexID:      "0,0,0",
		RemovedIDs: []string{"0,0,0", "0,0,0:1"},
	})
	s.Require().NoError(err)
	s.Assert().JSONEq(`{"event":"terrainUpdate","data":{"type":"hexRemove","hexId":"0,0,0","removedIds":["0,0,0","0,0,0:1"]}}`, string(out))

	out, err = protocol.Encode(protocol.CombatEnded{})
	s.Require().NoError(err)
	s.Assert().JSONEq(`{"event":"combatEnded","data":{}}`, string(out))
}

func (s *ProtocolTestSuite) TestEncodeRoomState() {
	state := &entities.RoomState{
		ID:           "room_1",
		Users:        map[string]entities.User{"c1": {ID: "c1", IsGM: true}},
		Terrain:      map[string]entities.HexRecord{},
		GameSettings: entities.DefaultGameSettings(),
	}
	out, err := protocol.Encode(protocol.RoomCreated{RoomID: "room_1", UserID: "c1", RoomState: state})
	s.Require().NoError(err)

	var env protocol.Envelope
	s.Require().NoError(json.Unmarshal(out, &env))
	s.Assert().Equal(protocol.EventRoomCreated, env.Event)

	var decoded struct {
		RoomState struct {
			Combat *entities.CombatState `json:"combat"`
			Users  map[string]entities.User
		} `json:"roomState"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &decoded))
	s.Assert().Nil(decoded.RoomState.Combat)
	s.Assert().True(decoded.RoomState.Users["c1"].IsGM)
}

func (s *ProtocolTestSuite) TestErrorEvent() {
	ev := protocol.ErrorEvent(errors.NotYourTurn("a"))
	s.Assert().Equal("Not your turn", ev.Message)
	s.Assert().Equal(string(errors.ReasonNotYourTurn), ev.Code)

	ev = protocol.ErrorEvent(errors.InvalidArgument("bad"))
	s.Assert().Equal(string(errors.CodeInvalidArgument), ev.Code)

	ev = protocol.ErrorEvent(json.Unmarshal([]byte("{"), &struct{}{}))
	s.Assert().Equal("Internal error", ev.Message)
	s.Assert().Equal(string(errors.CodeInternal), ev.Code)
}

func longString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'x'
	}
	return string(b)
}
