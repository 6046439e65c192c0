package terrainlibrary

import (
	"context"
	"sort"
	"sync"

	"github.com/KirkDiggler/hexroom/internal/pkg/clock"
)

type memoryRecord struct {
	entry Entry
	data  []byte
}

// InMemoryRepository keeps maps for the life of the process
type InMemoryRepository struct {
	mu    sync.RWMutex
	clock clock.Clock
	maps  map[string]memoryRecord
}

// NewInMemory creates an empty in-memory library
func NewInMemory(clk clock.Clock) *InMemoryRepository {
	if clk == nil {
		clk = clock.New()
	}
	return &InMemoryRepository{
		clock: clk,
		maps:  make(map[string]memoryRecord),
	}
}

var _ Repository = (*InMemoryRepository)(nil)

// Save stores a copy of the map
func (r *InMemoryRepository) Save(_ context.Context, input *SaveInput) (*SaveOutput, error) {
	if err := validateSave(input); err != nil {
		return nil, err
	}

	entry := Entry{Name: input.Name, HexCount: input.HexCount, SavedAt: r.clock.Now()}

	r.mu.Lock()
	r.maps[input.Name] = memoryRecord{entry: entry, data: append([]byte(nil), input.Data...)}
	r.mu.Unlock()

	return &SaveOutput{Entry: entry}, nil
}

// Load returns a copy of the map
func (r *InMemoryRepository) Load(_ context.Context, input *LoadInput) (*LoadOutput, error) {
	if err := validateLoad(input); err != nil {
		return nil, err
	}

	r.mu.RLock()
	rec, ok := r.maps[input.Name]
	r.mu.RUnlock()

	if !ok {
		return nil, notFound(input.Name)
	}
	return &LoadOutput{Entry: rec.entry, Data: append([]byte(nil), rec.data...)}, nil
}

// List returns every saved map sorted by name
func (r *InMemoryRepository) List(_ context.Context, _ *ListInput) (*ListOutput, error) {
	r.mu.RLock()
	entries := make([]Entry, 0, len(r.maps))
	for _, rec := range r.maps {
		entries = append(entries, rec.entry)
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return &ListOutput{Entries: entries}, nil
}

// Delete removes a map
func (r *InMemoryRepository) Delete(_ context.Context, input *DeleteInput) (*DeleteOutput, error) {
	if input == nil {
		return &DeleteOutput{}, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.maps[input.Name]
	delete(r.maps, input.Name)
	return &DeleteOutput{Deleted: ok}, nil
}
