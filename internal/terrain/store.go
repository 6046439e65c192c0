// Package terrain holds a room's authoritative hex map and the generators
// that seed it.
//
// Stacked hexes share a base coordinate and sit at levels 1, 2, ... above the
// base record (level 0). The store keeps every stack contiguous: a level can
// only be written when the level below it exists, and removing a level removes
// everything above it.
//
// A Store is not safe for concurrent use; the owning room serializes access.
package terrain

import (
	"encoding/json"

	"github.com/KirkDiggler/hexroom/internal/entities"
	"github.com/KirkDiggler/hexroom/internal/errors"
	"github.com/KirkDiggler/hexroom/internal/hexgrid"
)

// Map is terrain keyed by hex id
type Map map[string]entities.HexRecord

// Store is the terrain of one room
type Store struct {
	hexes Map
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{hexes: make(Map)}
}

// NewStoreFrom creates a store seeded with a validated copy of m
func NewStoreFrom(m Map) (*Store, error) {
	s := NewStore()
	if err := s.ReplaceAll(m); err != nil {
		return nil, err
	}
	return s, nil
}

// Len returns the number of records, stacked levels included
func (s *Store) Len() int {
	return len(s.hexes)
}

// Get returns the record stored under id
func (s *Store) Get(id string) (entities.HexRecord, bool) {
	rec, ok := s.hexes[id]
	return rec, ok
}

// SetHex inserts or overwrites one record and returns the stored form.
// The store is unchanged when an error is returned.
func (s *Store) SetHex(rawID string, rec entities.HexRecord) (entities.HexRecord, error) {
	id, normalized, err := normalize(rawID, rec)
	if err != nil {
		return entities.HexRecord{}, err
	}

	if id.Level > 0 {
		if _, ok := s.hexes[id.Below().String()]; !ok {
			return entities.HexRecord{}, errors.StackGap(id.String(), id.Level)
		}
	}

	s.hexes[id.String()] = normalized
	return normalized, nil
}

// RemoveHex deletes a record and every level stacked above it. It returns the
// removed ids, bottom first; nothing is removed when the id is absent.
func (s *Store) RemoveHex(rawID string) ([]string, error) {
	id, err := hexgrid.ParseHexID(rawID)
	if err != nil {
		return nil, err
	}

	var removed []string
	for cur := id; ; cur = cur.Above() {
		key := cur.String()
		if _, ok := s.hexes[key]; !ok {
			break
		}
		delete(s.hexes, key)
		removed = append(removed, key)
	}

	return removed, nil
}

// ReplaceAll validates m as a whole and swaps it in. Invalid input leaves the
// store unchanged.
func (s *Store) ReplaceAll(m Map) error {
	next, err := validateMap(m)
	if err != nil {
		return err
	}
	s.hexes = next
	return nil
}

// GetStack returns the records at c from level 0 upward, stopping at the first gap
func (s *Store) GetStack(c hexgrid.Cube) []entities.HexRecord {
	var stack []entities.HexRecord
	for level := 0; ; level++ {
		rec, ok := s.hexes[hexgrid.StackID(c, level).String()]
		if !ok {
			return stack
		}
		stack = append(stack, rec)
	}
}

// Snapshot returns a copy of the full mapping
func (s *Store) Snapshot() Map {
	out := make(Map, len(s.hexes))
	for k, v := range s.hexes {
		out[k] = v
	}
	return out
}

// Serialize encodes the mapping as a JSON object keyed by hex id
func (s *Store) Serialize() ([]byte, error) {
	data, err := json.Marshal(s.hexes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize terrain")
	}
	return data, nil
}

// Load decodes a serialized mapping and replaces the store's contents
func (s *Store) Load(data []byte) error {
	m, err := Decode(data)
	if err != nil {
		return err
	}
	return s.ReplaceAll(m)
}

// wireRecord distinguishes absent coordinates from zero
type wireRecord struct {
	Q           *int                 `json:"q"`
	R           *int                 `json:"r"`
	S           *int                 `json:"s"`
	Type        entities.TerrainType `json:"type"`
	Elevation   float64              `json:"elevation"`
	IsStacked   bool                 `json:"isStacked"`
	StackLevel  int                  `json:"stackLevel"`
	StackHeight float64              `json:"stackHeight"`
}

// Decode parses a serialized terrain mapping, rejecting records without coordinates
func Decode(data []byte) (Map, error) {
	var raw map[string]wireRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.BadRequest("terrain data is not a valid hex map")
	}

	m := make(Map, len(raw))
	for id, w := range raw {
		if w.Q == nil || w.R == nil || w.S == nil {
			return nil, errors.InvalidCoordinates("Invalid cube coordinates for hex %s", id)
		}
		m[id] = entities.HexRecord{
			Q:           *w.Q,
			R:           *w.R,
			S:           *w.S,
			Type:        w.Type,
			Elevation:   w.Elevation,
			IsStacked:   w.IsStacked,
			StackLevel:  w.StackLevel,
			StackHeight: w.StackHeight,
		}
	}
	return m, nil
}

func validateMap(m Map) (Map, error) {
	next := make(Map, len(m))
	ids := make(map[string]hexgrid.HexID, len(m))

	for rawID, rec := range m {
		id, normalized, err := normalize(rawID, rec)
		if err != nil {
			return nil, err
		}
		key := id.String()
		if _, dup := next[key]; dup {
			return nil, errors.InvalidCoordinates("duplicate hex id %s", key)
		}
		next[key] = normalized
		ids[key] = id
	}

	for key, id := range ids {
		if id.Level == 0 {
			continue
		}
		if _, ok := next[id.Below().String()]; !ok {
			return nil, errors.StackGap(key, id.Level)
		}
	}

	return next, nil
}

// normalize checks a record against its id and fills in the stack fields
func normalize(rawID string, rec entities.HexRecord) (hexgrid.HexID, entities.HexRecord, error) {
	id, err := hexgrid.ParseHexID(rawID)
	if err != nil {
		return hexgrid.HexID{}, entities.HexRecord{}, err
	}

	if !rec.Cube().Valid() {
		return hexgrid.HexID{}, entities.HexRecord{}, errors.InvalidCoordinates("Invalid cube coordinates").
			WithMeta("hex_id", rawID)
	}
	if rec.Cube() != id.Cube {
		return hexgrid.HexID{}, entities.HexRecord{}, errors.InvalidCoordinates(
			"hex %s does not match record coordinates %s", rawID, hexgrid.FormatCube(rec.Cube()))
	}
	if rec.StackLevel != 0 && rec.StackLevel != id.Level {
		return hexgrid.HexID{}, entities.HexRecord{}, errors.InvalidCoordinates(
			"hex %s does not match stack level %d", rawID, rec.StackLevel)
	}

	if rec.Type == "" {
		rec.Type = entities.TerrainGrass
	}
	if !rec.Type.Valid() {
		return hexgrid.HexID{}, entities.HexRecord{}, errors.InvalidArgumentf("unknown terrain type %q", rec.Type)
	}

	rec.IsStacked = id.Level > 0
	rec.StackLevel = id.Level
	if rec.IsStacked && rec.StackHeight == 0 {
		rec.StackHeight = float64(id.Level) * entities.StackHeightPerLevel
	}
	if !rec.IsStacked {
		rec.StackHeight = 0
	}

	return id, rec, nil
}
