// Package hexgrid provides cube coordinate math for the hex board.
//
// Every coordinate satisfies q + r + s == 0. The arithmetic is delegated to
// the toolkit's spatial.CubeCoordinate; this package adds the q/r/s wire
// shape, bounds checking, rounding and range enumeration. Functions are pure
// and safe for concurrent use.
package hexgrid

import (
	"math"

	"github.com/KirkDiggler/rpg-toolkit/tools/spatial"

	"github.com/KirkDiggler/hexroom/internal/errors"
)

// MaxAxis bounds every axis so sums and distances never overflow an int
const MaxAxis = math.MaxInt32

// Cube is a hex position in cube coordinates
type Cube struct {
	Q int `json:"q"`
	R int `json:"r"`
	S int `json:"s"`
}

// Origin is the center of every board
var Origin = Cube{}

// FromSpatial maps a toolkit coordinate onto q/r/s (X->Q, Y->R, Z->S)
func FromSpatial(c spatial.CubeCoordinate) Cube {
	return Cube{Q: c.X, R: c.Y, S: c.Z}
}

// Spatial returns the toolkit form of the coordinate
func (c Cube) Spatial() spatial.CubeCoordinate {
	return spatial.CubeCoordinate{X: c.Q, Y: c.R, Z: c.S}
}

// New builds a cube coordinate, failing when an axis is out of bounds or the
// axes do not sum to zero
func New(q, r, s int) (Cube, error) {
	for _, v := range [3]int{q, r, s} {
		if v > MaxAxis || v < -MaxAxis {
			return Cube{}, errors.InvalidCoordinates("coordinate %d out of range", v)
		}
	}

	c := Cube{Q: q, R: r, S: s}
	if !c.Valid() {
		return Cube{}, errors.InvalidCoordinates("Invalid cube coordinates: %d,%d,%d", q, r, s)
	}
	return c, nil
}

// Valid reports whether the coordinate satisfies q+r+s == 0
func (c Cube) Valid() bool {
	return c.Spatial().IsValid()
}

// Add returns the component-wise sum
func (c Cube) Add(o Cube) Cube {
	return FromSpatial(c.Spatial().Add(o.Spatial()))
}

// Sub returns the component-wise difference
func (c Cube) Sub(o Cube) Cube {
	return FromSpatial(c.Spatial().Subtract(o.Spatial()))
}

// Length is the distance from the origin
func (c Cube) Length() int {
	return Distance(Origin, c)
}

// Distance returns the number of steps between two hexes
func Distance(a, b Cube) int {
	return a.Spatial().Distance(b.Spatial())
}

// Neighbors returns the six adjacent coordinates
func Neighbors(c Cube) [6]Cube {
	var out [6]Cube
	for i, n := range c.Spatial().GetNeighbors() {
		out[i] = FromSpatial(n)
	}
	return out
}

// InRange returns every coordinate within n steps of center, center included.
// Negative n yields nothing.
func InRange(center Cube, n int) []Cube {
	if n < 0 {
		return nil
	}

	out := make([]Cube, 0, 3*n*(n+1)+1)
	for dq := -n; dq <= n; dq++ {
		lo := max(-n, -dq-n)
		hi := min(n, -dq+n)
		for dr := lo; dr <= hi; dr++ {
			ds := -dq - dr
			out = append(out, center.Add(Cube{Q: dq, R: dr, S: ds}))
		}
	}
	return out
}

// CubeRound snaps fractional cube coordinates to the nearest hex. The axis
// with the largest rounding error is re-derived from the other two so the
// result always sums to zero.
func CubeRound(q, r, s float64) (Cube, error) {
	for _, v := range []float64{q, r, s} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Cube{}, errors.InvalidCoordinates("coordinates must be finite")
		}
		if math.Abs(v) > MaxAxis {
			return Cube{}, errors.InvalidCoordinates("coordinate %g out of range", v)
		}
	}

	rq := math.Round(q)
	rr := math.Round(r)
	rs := math.Round(s)

	dq := math.Abs(rq - q)
	dr := math.Abs(rr - r)
	ds := math.Abs(rs - s)

	switch {
	case dq > dr && dq > ds:
		rq = -rr - rs
	case dr > ds:
		rr = -rq - rs
	default:
		rs = -rq - rr
	}

	return New(int(rq), int(rr), int(rs))
}
