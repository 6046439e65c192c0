package terrain

import (
	"math"

	"github.com/KirkDiggler/hexroom/internal/entities"
	"github.com/KirkDiggler/hexroom/internal/hexgrid"
)

//go:generate mockgen -destination=mock/mock_generator.go -package=terrainmock github.com/KirkDiggler/hexroom/internal/terrain Generator

// DefaultRadius is the board radius used for new rooms
const DefaultRadius = 53

// Generator produces the starting terrain of a new room
type Generator interface {
	Generate() Map
}

// hill raises the terrain around a peak
type hill struct {
	peak   hexgrid.Cube
	height int
	radius int
}

var classicHills = []hill{
	{peak: hexgrid.Cube{Q: 3, R: -5, S: 2}, height: 3, radius: 3},
	{peak: hexgrid.Cube{Q: -4, R: 2, S: 2}, height: 4, radius: 4},
	{peak: hexgrid.Cube{Q: 6, R: -2, S: -4}, height: 2, radius: 2},
}

// ClassicGenerator builds the hand-tuned default board: three hills near the
// center, trigonometric noise for mountains, water, forest, desert, snow and
// lava patches, grass everywhere else.
type ClassicGenerator struct {
	Radius int
}

// NewClassicGenerator returns a generator for the default board
func NewClassicGenerator(radius int) *ClassicGenerator {
	if radius <= 0 {
		radius = DefaultRadius
	}
	return &ClassicGenerator{Radius: radius}
}

// Generate implements Generator
func (g *ClassicGenerator) Generate() Map {
	m := make(Map)
	for _, c := range hexgrid.InRange(hexgrid.Origin, g.Radius) {
		t, elevation := classicCell(c)
		placeColumn(m, c, t, elevation)
	}
	return m
}

func classicCell(c hexgrid.Cube) (entities.TerrainType, int) {
	q, r, s := float64(c.Q), float64(c.R), float64(c.S)
	t := entities.TerrainGrass
	elevation := 0

	dist := c.Length()
	noise := math.Sin(q*0.5) * math.Cos(r*0.5) * math.Sin(s*0.3)

	for _, h := range classicHills {
		d := hexgrid.Distance(c, h.peak)
		if d > h.radius {
			continue
		}

		hillElevation := int(math.Max(0, math.Floor(float64(h.height)*(1-float64(d)/float64(h.radius)))))
		elevation = max(elevation, hillElevation)

		switch {
		case float64(hillElevation) > float64(h.height)*0.7:
			if h.height >= 4 {
				t = entities.TerrainSnow
			} else {
				t = entities.TerrainMountain
			}
		case float64(hillElevation) > float64(h.height)*0.3:
			t = entities.TerrainForest
		}
	}

	if elevation != 0 {
		return t, elevation
	}

	switch {
	case dist > 3 && dist < 6 && noise > 0.2:
		t = entities.TerrainMountain
		elevation = int(math.Floor(noise*3)) + 1
	case c.Q < -2 && c.R > 2 && noise < 0:
		t = entities.TerrainWater
	case (c.Q > 0 && c.R < 0) || (noise > 0.1 && dist < 5):
		t = entities.TerrainForest
		if noise > 0.15 {
			elevation = 1
		}
	case c.Q > 3 && c.R < -1:
		t = entities.TerrainDesert
		elevation = int(math.Floor(math.Abs(noise * 2)))
	case c.Q < -3 && c.R < -3 && noise > 0:
		t = entities.TerrainSnow
		elevation = int(math.Floor(math.Abs(noise) * 2))
	case dist > 6 && c.Q > 3 && c.R > 1:
		t = entities.TerrainLava
		elevation = 1
	}

	return t, elevation
}

// placeColumn writes a base record plus one stacked record per elevation level
func placeColumn(m Map, c hexgrid.Cube, t entities.TerrainType, elevation int) {
	m[hexgrid.FormatCube(c)] = entities.HexRecord{Q: c.Q, R: c.R, S: c.S, Type: t}

	for level := 1; level <= elevation; level++ {
		m[hexgrid.StackID(c, level).String()] = entities.HexRecord{
			Q:           c.Q,
			R:           c.R,
			S:           c.S,
			Type:        t,
			IsStacked:   true,
			StackLevel:  level,
			StackHeight: float64(level) * entities.StackHeightPerLevel,
		}
	}
}
