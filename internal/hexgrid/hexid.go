package hexgrid

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KirkDiggler/hexroom/internal/errors"
)

// HexID addresses a hex record: a base coordinate plus a stack level.
// Level 0 is the base hex; stacked hexes start at level 1.
type HexID struct {
	Cube
	Level int
}

// ParseHexID parses "q,r,s" or "q,r,s:level"
func ParseHexID(raw string) (HexID, error) {
	coords, levelPart, stacked := strings.Cut(raw, ":")

	parts := strings.Split(coords, ",")
	if len(parts) != 3 {
		return HexID{}, errors.InvalidCoordinates("Invalid hex id %q", raw)
	}

	var vals [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return HexID{}, errors.InvalidCoordinates("Invalid hex id %q", raw)
		}
		vals[i] = v
	}

	c, err := New(vals[0], vals[1], vals[2])
	if err != nil {
		return HexID{}, err
	}

	id := HexID{Cube: c}
	if stacked {
		level, err := strconv.Atoi(levelPart)
		if err != nil || level < 1 {
			return HexID{}, errors.InvalidCoordinates("Invalid stack level in hex id %q", raw)
		}
		id.Level = level
	}

	return id, nil
}

// MustParseHexID is ParseHexID for ids known to be valid
func MustParseHexID(raw string) HexID {
	id, err := ParseHexID(raw)
	if err != nil {
		panic(err)
	}
	return id
}

// String formats the id in its wire form
func (h HexID) String() string {
	base := FormatCube(h.Cube)
	if h.Level == 0 {
		return base
	}
	return fmt.Sprintf("%s:%d", base, h.Level)
}

// Base returns the id of the level-0 hex under this one
func (h HexID) Base() HexID {
	return HexID{Cube: h.Cube}
}

// Below returns the id one level down. Calling it on a base hex returns the base.
func (h HexID) Below() HexID {
	if h.Level == 0 {
		return h
	}
	return HexID{Cube: h.Cube, Level: h.Level - 1}
}

// Above returns the id one level up
func (h HexID) Above() HexID {
	return HexID{Cube: h.Cube, Level: h.Level + 1}
}

// FormatCube formats a base hex id
func FormatCube(c Cube) string {
	return fmt.Sprintf("%d,%d,%d", c.Q, c.R, c.S)
}

// StackID builds the id for the given level above c
func StackID(c Cube, level int) HexID {
	return HexID{Cube: c, Level: level}
}
