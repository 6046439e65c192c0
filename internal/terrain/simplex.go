package terrain

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/KirkDiggler/hexroom/internal/entities"
	"github.com/KirkDiggler/hexroom/internal/hexgrid"
)

// SimplexConfig tunes the noise generator
type SimplexConfig struct {
	Seed      int64
	Radius    int
	MaxHeight int
	SeaLevel  float64
}

// SimplexGenerator derives terrain from layered opensimplex noise: one field
// for elevation, one for moisture, one for arcane corruption.
type SimplexGenerator struct {
	cfg      SimplexConfig
	elev     opensimplex.Noise
	moisture opensimplex.Noise
	arcane   opensimplex.Noise
}

// NewSimplexGenerator creates a seeded noise generator
func NewSimplexGenerator(cfg SimplexConfig) *SimplexGenerator {
	if cfg.Radius <= 0 {
		cfg.Radius = DefaultRadius
	}
	if cfg.MaxHeight <= 0 {
		cfg.MaxHeight = 4
	}
	if cfg.SeaLevel == 0 {
		cfg.SeaLevel = 0.32
	}

	return &SimplexGenerator{
		cfg:      cfg,
		elev:     opensimplex.NewNormalized(cfg.Seed),
		moisture: opensimplex.NewNormalized(cfg.Seed + 1),
		arcane:   opensimplex.NewNormalized(cfg.Seed + 2),
	}
}

// Generate implements Generator
func (g *SimplexGenerator) Generate() Map {
	cells := hexgrid.InRange(hexgrid.Origin, g.cfg.Radius)

	elevation := make(map[hexgrid.Cube]float64, len(cells))
	for _, c := range cells {
		x, y := toPlane(c)
		elevation[c] = octaveNoise(g.elev, x, y, 4, 0.08, 0.5)
	}

	// Average each cell with its neighbors so stacks step down gently.
	smoothed := make(map[hexgrid.Cube]float64, len(cells))
	for _, c := range cells {
		sum, n := elevation[c], 1.0
		for _, nb := range hexgrid.Neighbors(c) {
			if e, ok := elevation[nb]; ok {
				sum += e
				n++
			}
		}
		smoothed[c] = sum / n
	}

	m := make(Map)
	for _, c := range cells {
		x, y := toPlane(c)
		e := smoothed[c]
		moist := octaveNoise(g.moisture, x, y, 3, 0.06, 0.5)
		arcane := octaveNoise(g.arcane, x, y, 2, 0.04, 0.5)

		t := g.classify(e, moist, arcane)
		height := 0
		if t != entities.TerrainWater && e > g.cfg.SeaLevel {
			height = int(math.Floor((e - g.cfg.SeaLevel) / (1 - g.cfg.SeaLevel) * float64(g.cfg.MaxHeight+1)))
			height = min(height, g.cfg.MaxHeight)
		}
		placeColumn(m, c, t, height)
	}
	return m
}

func (g *SimplexGenerator) classify(elev, moist, arcane float64) entities.TerrainType {
	switch {
	case elev < g.cfg.SeaLevel:
		return entities.TerrainWater
	case arcane > 0.82:
		return entities.TerrainMagic
	case arcane < 0.12:
		return entities.TerrainCorrupted
	case elev > 0.78:
		return entities.TerrainSnow
	case elev > 0.66:
		return entities.TerrainMountain
	case moist < 0.3 && elev > 0.5:
		return entities.TerrainLava
	case moist < 0.3:
		return entities.TerrainDesert
	case moist > 0.75 && elev < 0.4:
		return entities.TerrainAcid
	case moist > 0.55:
		return entities.TerrainForest
	default:
		return entities.TerrainGrass
	}
}

// toPlane converts cube coordinates to a continuous plane for noise sampling
func toPlane(c hexgrid.Cube) (float64, float64) {
	x := float64(c.Q) + float64(c.R)*0.5
	y := float64(c.R) * math.Sqrt(3.0) / 2.0
	return x, y
}

// octaveNoise layers several frequencies of the same noise field
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
