package protocol

import (
	"encoding/json"
	"time"

	"github.com/KirkDiggler/hexroom/internal/entities"
	"github.com/KirkDiggler/hexroom/internal/hexgrid"
)

// Server to client event names
const (
	EventRoomCreated             = "roomCreated"
	EventRoomJoined              = "roomJoined"
	EventUserJoined              = "userJoined"
	EventUserLeft                = "userLeft"
	EventCharacterJoined         = "characterJoined"
	EventCharacterLeft           = "characterLeft"
	EventTerrainUpdate           = "terrainUpdate"
	EventCharacterPositionUpdate = "characterPositionUpdate"
	EventDiceRollResult          = "diceRollResult"
	EventCombatStarted           = "combatStarted"
	EventCombatEnded             = "combatEnded"
	EventTurnUpdated             = "turnUpdated"
	EventActionUsed              = "actionUsed"
	EventWeatherUpdated          = "weatherUpdated"
	EventChatMessage             = "chatMessage"
	EventGameSettingsUpdated     = "gameSettingsUpdated"
	EventDiceHistory             = "diceHistory"
	EventTerrainSaved            = "terrainSaved"
	EventTerrainList             = "terrainList"
	EventError                   = "error"
)

// terrainUpdate variants
const (
	TerrainHexUpdate  = "hexUpdate"
	TerrainHexRemove  = "hexRemove"
	TerrainFullUpdate = "fullUpdate"
)

// Event is a server message
type Event interface {
	EventName() string
}

// RoomCreated answers createRoom
type RoomCreated struct {
	RoomID    string              `json:"roomId"`
	UserID    string              `json:"userId"`
	RoomState *entities.RoomState `json:"roomState"`
}

// RoomJoined answers joinRoom
type RoomJoined struct {
	RoomID string              `json:"roomId"`
	UserID string              `json:"userId"`
	State  *entities.RoomState `json:"state"`
}

// UserJoined tells existing members about a new user
type UserJoined struct {
	UserID string         `json:"userId"`
	User   *entities.User `json:"user"`
}

// UserLeft tells remaining members a user disconnected
type UserLeft struct {
	UserID string `json:"userId"`
}

// CharacterJoined announces the new user's token
type CharacterJoined struct {
	CharacterID string       `json:"characterId"`
	Position    hexgrid.Cube `json:"position"`
}

// CharacterLeft removes a token
type CharacterLeft struct {
	CharacterID string `json:"characterId"`
}

// TerrainUpdate carries one of the three terrain change shapes
type TerrainUpdate struct {
	Type        string                        `json:"type"`
	HexID       string                        `json:"hexId,omitempty"`
	HexData     *entities.HexRecord           `json:"hexData,omitempty"`
	RemovedIDs  []string                      `json:"removedIds,omitempty"`
	TerrainData map[string]entities.HexRecord `json:"terrainData,omitempty"`
}

// CharacterPositionUpdate moves a token
type CharacterPositionUpdate struct {
	CharacterID string       `json:"characterId"`
	Position    hexgrid.Cube `json:"position"`
}

// DiceRollResult relays a roll; Notation and RollID are set for server rolls
type DiceRollResult struct {
	UserID   string          `json:"userId"`
	Results  json.RawMessage `json:"results"`
	Total    float64         `json:"total"`
	Notation string          `json:"notation,omitempty"`
	RollID   string          `json:"rollId,omitempty"`
}

// CombatStarted announces a new encounter
type CombatStarted struct {
	CurrentTurnID string               `json:"currentTurnId"`
	TurnOrder     []entities.TurnEntry `json:"turnOrder"`
	ActionPoints  map[string]int       `json:"actionPoints"`
	Round         int                  `json:"round"`
}

// CombatEnded announces the encounter is over
type CombatEnded struct{}

// TurnUpdated carries the current actor and the AP table
type TurnUpdated struct {
	CurrentTurnID string         `json:"currentTurnId"`
	ActionPoints  map[string]int `json:"actionPoints"`
	Round         int            `json:"round"`
}

// ActionUsed reports a spent action
type ActionUsed struct {
	CharacterID string `json:"characterId"`
	ActionType  string `json:"actionType"`
	Cost        int    `json:"cost"`
}

// WeatherUpdated carries new weather
type WeatherUpdated struct {
	WeatherType      string  `json:"weatherType"`
	WeatherIntensity float64 `json:"weatherIntensity"`
}

// ChatMessageSent is the broadcast form of a chat line
type ChatMessageSent struct {
	UserID    string    `json:"userId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// GameSettingsUpdated carries the full settings after a change
type GameSettingsUpdated struct {
	GameSettings entities.GameSettings `json:"gameSettings"`
}

// RollRecord is one entry of a room's dice history
type RollRecord struct {
	RollID      string    `json:"rollId"`
	UserID      string    `json:"userId"`
	Notation    string    `json:"notation"`
	Results     []string  `json:"results"`
	Total       int       `json:"total"`
	Description string    `json:"description,omitempty"`
	RolledAt    time.Time `json:"rolledAt"`
}

// DiceHistory answers getDiceHistory
type DiceHistory struct {
	Rolls []RollRecord `json:"rolls"`
}

// TerrainSaved confirms saveTerrain to the sender
type TerrainSaved struct {
	Name     string `json:"name"`
	HexCount int    `json:"hexCount"`
}

// TerrainList answers listTerrains
type TerrainList struct {
	Names []string `json:"names"`
}

// Error is sent to the offending connection only
type Error struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (RoomCreated) EventName() string             { return EventRoomCreated }
func (RoomJoined) EventName() string              { return EventRoomJoined }
func (UserJoined) EventName() string              { return EventUserJoined }
func (UserLeft) EventName() string                { return EventUserLeft }
func (CharacterJoined) EventName() string         { return EventCharacterJoined }
func (CharacterLeft) EventName() string           { return EventCharacterLeft }
func (TerrainUpdate) EventName() string           { return EventTerrainUpdate }
func (CharacterPositionUpdate) EventName() string { return EventCharacterPositionUpdate }
func (DiceRollResult) EventName() string          { return EventDiceRollResult }
func (CombatStarted) EventName() string           { return EventCombatStarted }
func (CombatEnded) EventName() string             { return EventCombatEnded }
func (TurnUpdated) EventName() string             { return EventTurnUpdated }
func (ActionUsed) EventName() string              { return EventActionUsed }
func (WeatherUpdated) EventName() string          { return EventWeatherUpdated }
func (ChatMessageSent) EventName() string         { return EventChatMessage }
func (GameSettingsUpdated) EventName() string     { return EventGameSettingsUpdated }
func (DiceHistory) EventName() string             { return EventDiceHistory }
func (TerrainSaved) EventName() string            { return EventTerrainSaved }
func (TerrainList) EventName() string             { return EventTerrainList }
func (Error) EventName() string                   { return EventError }
