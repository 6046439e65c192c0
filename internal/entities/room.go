// Package entities provides the core data structures shared across hexroom.
package entities

import (
	"time"

	"github.com/KirkDiggler/hexroom/internal/hexgrid"
)

// TerrainType is the surface of a hex
type TerrainType string

// Terrain types understood by the client
const (
	TerrainGrass     TerrainType = "grass"
	TerrainForest    TerrainType = "forest"
	TerrainWater     TerrainType = "water"
	TerrainMountain  TerrainType = "mountain"
	TerrainDesert    TerrainType = "desert"
	TerrainSnow      TerrainType = "snow"
	TerrainLava      TerrainType = "lava"
	TerrainAcid      TerrainType = "acid"
	TerrainMagic     TerrainType = "magic"
	TerrainCorrupted TerrainType = "corrupted"
)

// TerrainTypes lists every valid terrain type
var TerrainTypes = []TerrainType{
	TerrainGrass, TerrainForest, TerrainWater, TerrainMountain, TerrainDesert,
	TerrainSnow, TerrainLava, TerrainAcid, TerrainMagic, TerrainCorrupted,
}

// Valid reports whether t is a known terrain type
func (t TerrainType) Valid() bool {
	for _, known := range TerrainTypes {
		if t == known {
			return true
		}
	}
	return false
}

// HexRecord is one entry of a room's terrain, keyed by its hex id
type HexRecord struct {
	Q           int         `json:"q"`
	R           int         `json:"r"`
	S           int         `json:"s"`
	Type        TerrainType `json:"type"`
	Elevation   float64     `json:"elevation"`
	IsStacked   bool        `json:"isStacked,omitempty"`
	StackLevel  int         `json:"stackLevel,omitempty"`
	StackHeight float64     `json:"stackHeight,omitempty"`
}

// Cube returns the record's base coordinate
func (h HexRecord) Cube() hexgrid.Cube {
	return hexgrid.Cube{Q: h.Q, R: h.R, S: h.S}
}

// StackHeightPerLevel is the render height of one stacked level
const StackHeightPerLevel = 0.4

// User is a connection that has joined a room
type User struct {
	ID       string       `json:"id"`
	Position hexgrid.Cube `json:"position"`
	IsGM     bool         `json:"isGM"`
}

// Weather types
const (
	WeatherClear = "clear"
	WeatherRain  = "rain"
	WeatherSnow  = "snow"
	WeatherFog   = "fog"
)

// GameSettings holds per-room presentation toggles shared by all clients
type GameSettings struct {
	FogOfWar         bool    `json:"fogOfWar"`
	WeatherEnabled   bool    `json:"weatherEnabled"`
	DayNightCycle    bool    `json:"dayNightCycle"`
	WeatherType      string  `json:"weatherType"`
	WeatherIntensity float64 `json:"weatherIntensity"`
}

// DefaultGameSettings returns the settings every new room starts with
func DefaultGameSettings() GameSettings {
	return GameSettings{
		WeatherType:      WeatherClear,
		WeatherIntensity: 0,
	}
}

// TurnEntry is one actor in the combat turn order
type TurnEntry struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Initiative int    `json:"initiative"`
}

// CombatState is the wire view of an active encounter
type CombatState struct {
	Active           bool           `json:"active"`
	TurnOrder        []TurnEntry    `json:"turnOrder"`
	CurrentTurnIndex int            `json:"currentTurnIndex"`
	ActionPoints     map[string]int `json:"actionPoints"`
	Round            int            `json:"round"`
}

// CurrentTurnID returns the id of the actor whose turn it is
func (c *CombatState) CurrentTurnID() string {
	if c == nil || len(c.TurnOrder) == 0 {
		return ""
	}
	return c.TurnOrder[c.CurrentTurnIndex].ID
}

// RoomState is the full snapshot sent to a client on create and join
type RoomState struct {
	ID           string               `json:"id"`
	Users        map[string]User      `json:"users"`
	Terrain      map[string]HexRecord `json:"terrain"`
	Combat       *CombatState         `json:"combat"`
	GameSettings GameSettings         `json:"gameSettings"`
}

// RoomSummary is the inspection view of a live room
type RoomSummary struct {
	ID            string     `json:"id"`
	UserCount     int        `json:"userCount"`
	HexCount      int        `json:"hexCount"`
	CombatActive  bool       `json:"combatActive"`
	CreatedAt     time.Time  `json:"createdAt"`
	EmptySince    *time.Time `json:"emptySince,omitempty"`
	PendingDelete bool       `json:"pendingDelete"`
}
