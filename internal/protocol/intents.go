package protocol

import (
	"encoding/json"

	"github.com/KirkDiggler/hexroom/internal/entities"
)

// Client to server event names
const (
	IntentCreateRoom              = "createRoom"
	IntentJoinRoom                = "joinRoom"
	IntentUpdateHex               = "updateHex"
	IntentRemoveHex               = "removeHex"
	IntentUpdateFullTerrain       = "updateFullTerrain"
	IntentUpdateCharacterPosition = "updateCharacterPosition"
	IntentDiceRoll                = "diceRoll"
	IntentStartCombat             = "startCombat"
	IntentEndCombat               = "endCombat"
	IntentUpdateTurn              = "updateTurn"
	IntentEndTurn                 = "endTurn"
	IntentUseAction               = "useAction"
	IntentUpdateWeather           = "updateWeather"
	IntentChatMessage             = "chatMessage"
	IntentUpdateGameSettings      = "updateGameSettings"
	IntentRollDice                = "rollDice"
	IntentGetDiceHistory          = "getDiceHistory"
	IntentSaveTerrain             = "saveTerrain"
	IntentLoadTerrain             = "loadTerrain"
	IntentListTerrains            = "listTerrains"
)

// Intent is a decoded client request
type Intent interface {
	IntentName() string
}

// RoomScoped is an intent addressed to an existing room
type RoomScoped interface {
	Intent
	TargetRoom() string
}

// RoomRef carries the room an intent targets
type RoomRef struct {
	RoomID string `json:"roomId"`
}

// TargetRoom implements RoomScoped
func (r RoomRef) TargetRoom() string { return r.RoomID }

// CreateRoom asks for a new room with the sender as GM
type CreateRoom struct{}

// JoinRoom adds the sender to a room
type JoinRoom struct {
	RoomRef
}

// HexData is a hex record as sent by a client; coordinates may be missing
type HexData struct {
	Q           *int    `json:"q"`
	R           *int    `json:"r"`
	S           *int    `json:"s"`
	Type        string  `json:"type"`
	Elevation   float64 `json:"elevation"`
	IsStacked   bool    `json:"isStacked"`
	StackLevel  int     `json:"stackLevel"`
	StackHeight float64 `json:"stackHeight"`
}

// UpdateHex writes one hex
type UpdateHex struct {
	RoomRef
	HexID   string  `json:"hexId"`
	HexData HexData `json:"hexData"`
}

// RemoveHex deletes a hex and anything stacked on it
type RemoveHex struct {
	RoomRef
	HexID string `json:"hexId"`
}

// UpdateFullTerrain replaces the room's terrain
type UpdateFullTerrain struct {
	RoomRef
	TerrainData json.RawMessage `json:"terrainData"`
}

// Position is a possibly fractional cube coordinate
type Position struct {
	Q *float64 `json:"q"`
	R *float64 `json:"r"`
	S *float64 `json:"s"`
}

// UpdateCharacterPosition moves the sender's token
type UpdateCharacterPosition struct {
	RoomRef
	CharacterID string   `json:"characterId"`
	Position    Position `json:"position"`
}

// DiceRoll relays a client-side roll
type DiceRoll struct {
	RoomRef
	UserID  string          `json:"userId"`
	Results json.RawMessage `json:"results"`
	Total   float64         `json:"total"`
}

// StartCombat begins an encounter with a client-ordered turn list
type StartCombat struct {
	RoomRef
	TurnOrder []entities.TurnEntry `json:"turnOrder"`
}

// EndCombat stops the encounter
type EndCombat struct {
	RoomRef
}

// UpdateTurn jumps the turn to an actor
type UpdateTurn struct {
	RoomRef
	CharacterID string `json:"characterId"`
}

// EndTurn passes the turn to the next actor in order
type EndTurn struct {
	RoomRef
}

// UseAction spends action points for the current actor
type UseAction struct {
	RoomRef
	CharacterID string `json:"characterId"`
	ActionType  string `json:"actionType"`
	Cost        int    `json:"cost"`
}

// UpdateWeather changes the room weather
type UpdateWeather struct {
	RoomRef
	WeatherType      string  `json:"weatherType"`
	WeatherIntensity float64 `json:"weatherIntensity"`
}

// ChatMessage posts a line of chat
type ChatMessage struct {
	RoomRef
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

// UpdateGameSettings toggles presentation settings; omitted fields are left alone
type UpdateGameSettings struct {
	RoomRef
	FogOfWar       *bool `json:"fogOfWar"`
	WeatherEnabled *bool `json:"weatherEnabled"`
	DayNightCycle  *bool `json:"dayNightCycle"`
}

// RollDice asks the server to roll on the sender's behalf
type RollDice struct {
	RoomRef
	Notation    string `json:"notation"`
	Description string `json:"description"`
}

// GetDiceHistory requests the room's recorded rolls
type GetDiceHistory struct {
	RoomRef
}

// SaveTerrain stores the room's terrain under a name
type SaveTerrain struct {
	RoomRef
	Name string `json:"name"`
}

// LoadTerrain replaces the room's terrain with a saved map
type LoadTerrain struct {
	RoomRef
	Name string `json:"name"`
}

// ListTerrains requests the saved map names
type ListTerrains struct {
	RoomRef
}

func (CreateRoom) IntentName() string              { return IntentCreateRoom }
func (JoinRoom) IntentName() string                { return IntentJoinRoom }
func (UpdateHex) IntentName() string               { return IntentUpdateHex }
func (RemoveHex) IntentName() string               { return IntentRemoveHex }
func (UpdateFullTerrain) IntentName() string       { return IntentUpdateFullTerrain }
func (UpdateCharacterPosition) IntentName() string { return IntentUpdateCharacterPosition }
func (DiceRoll) IntentName() string                { return IntentDiceRoll }
func (StartCombat) IntentName() string             { return IntentStartCombat }
func (EndCombat) IntentName() string               { return IntentEndCombat }
func (UpdateTurn) IntentName() string              { return IntentUpdateTurn }
func (EndTurn) IntentName() string                 { return IntentEndTurn }
func (UseAction) IntentName() string               { return IntentUseAction }
func (UpdateWeather) IntentName() string           { return IntentUpdateWeather }
func (ChatMessage) IntentName() string             { return IntentChatMessage }
func (UpdateGameSettings) IntentName() string      { return IntentUpdateGameSettings }
func (RollDice) IntentName() string                { return IntentRollDice }
func (GetDiceHistory) IntentName() string          { return IntentGetDiceHistory }
func (SaveTerrain) IntentName() string             { return IntentSaveTerrain }
func (LoadTerrain) IntentName() string             { return IntentLoadTerrain }
func (ListTerrains) IntentName() string            { return IntentListTerrains }

// intentFactories builds an empty intent for each known event name
var intentFactories = map[string]func() Intent{
	IntentCreateRoom:              func() Intent { return &CreateRoom{} },
	IntentJoinRoom:                func() Intent { return &JoinRoom{} },
	IntentUpdateHex:               func() Intent { return &UpdateHex{} },
	IntentRemoveHex:               func() Intent { return &RemoveHex{} },
	IntentUpdateFullTerrain:       func() Intent { return &UpdateFullTerrain{} },
	IntentUpdateCharacterPosition: func() Intent { return &UpdateCharacterPosition{} },
	IntentDiceRoll:                func() Intent { return &DiceRoll{} },
	IntentStartCombat:             func() Intent { return &StartCombat{} },
	IntentEndCombat:               func() Intent { return &EndCombat{} },
	IntentUpdateTurn:              func() Intent { return &UpdateTurn{} },
	IntentEndTurn:                 func() Intent { return &EndTurn{} },
	IntentUseAction:               func() Intent { return &UseAction{} },
	IntentUpdateWeather:           func() Intent { return &UpdateWeather{} },
	IntentChatMessage:             func() Intent { return &ChatMessage{} },
	IntentUpdateGameSettings:      func() Intent { return &UpdateGameSettings{} },
	IntentRollDice:                func() Intent { return &RollDice{} },
	IntentGetDiceHistory:          func() Intent { return &GetDiceHistory{} },
	IntentSaveTerrain:             func() Intent { return &SaveTerrain{} },
	IntentLoadTerrain:             func() Intent { return &LoadTerrain{} },
	IntentListTerrains:            func() Intent { return &ListTerrains{} },
}
