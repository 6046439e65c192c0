// Package idgen provides ID generation for rooms, connections and rolls
package idgen

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

//go:generate mockgen -destination=mock/mock.go -package=idgenmock github.com/KirkDiggler/hexroom/internal/pkg/idgen Generator

// Generator generates unique identifiers
type Generator interface {
	Generate() string
}

// UUIDGenerator generates UUIDs, optionally as "<prefix>_<uuid>". Rooms use
// bare UUIDs so ids match what browser clients already expect.
type UUIDGenerator struct {
	prefix  string
	ordered bool
}

// NewUUID creates a random (v4) UUID generator
func NewUUID(prefix string) *UUIDGenerator {
	return &UUIDGenerator{prefix: prefix}
}

// NewTimeOrderedUUID creates a v7 UUID generator; later ids sort after earlier ones
func NewTimeOrderedUUID(prefix string) *UUIDGenerator {
	return &UUIDGenerator{prefix: prefix, ordered: true}
}

// Generate implements Generator
func (g *UUIDGenerator) Generate() string {
	id := uuid.New()
	if g.ordered {
		// NewV7 only fails when the random source does; v4 is still unique
		if v7, err := uuid.NewV7(); err == nil {
			id = v7
		}
	}
	return withPrefix(g.prefix, id.String())
}

// SequentialGenerator generates predictable IDs for tests
type SequentialGenerator struct {
	prefix  string
	counter atomic.Uint64
}

// NewSequential creates a new sequential generator
func NewSequential(prefix string) *SequentialGenerator {
	return &SequentialGenerator{prefix: prefix}
}

// Generate returns the next ID in sequence, starting at 1
func (g *SequentialGenerator) Generate() string {
	return withPrefix(g.prefix, strconv.FormatUint(g.counter.Add(1), 10))
}

func withPrefix(prefix, id string) string {
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}
