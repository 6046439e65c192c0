package terrainlibrary

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/hexroom/internal/errors"
	"github.com/KirkDiggler/hexroom/internal/pkg/clock"
	redisclient "github.com/KirkDiggler/hexroom/internal/redis"
)

const (
	// Key pattern: terrain_library:map:{name}
	mapKeyPrefix = "terrain_library:map:"
	// Set of every saved name
	namesKey = "terrain_library:names"
)

// redisRecord is the value stored per map; Data holds zstd-compressed terrain JSON
type redisRecord struct {
	Name     string    `json:"name"`
	HexCount int       `json:"hexCount"`
	SavedAt  time.Time `json:"savedAt"`
	Data     []byte    `json:"data"`
}

// RedisConfig holds the configuration for the Redis repository
type RedisConfig struct {
	Client redisclient.Client
	Clock  clock.Clock
}

// Validate ensures all required dependencies are provided
func (c *RedisConfig) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Client == nil {
		vb.RequiredField("Client")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}
	return vb.Build()
}

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
}

// NewRedisRepository creates a Redis-backed terrain library
func NewRedisRepository(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &redisRepository{client: cfg.Client, clock: cfg.Clock}, nil
}

// Save stores the map and indexes its name in one transaction
func (r *redisRepository) Save(ctx context.Context, input *SaveInput) (*SaveOutput, error) {
	if err := validateSave(input); err != nil {
		return nil, err
	}

	rec := redisRecord{
		Name:     input.Name,
		HexCount: input.HexCount,
		SavedAt:  r.clock.Now(),
		Data:     compress(input.Data),
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal terrain %s", input.Name)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, mapKeyPrefix+input.Name, raw, 0)
	pipe.SAdd(ctx, namesKey, input.Name)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to store terrain %s in Redis", input.Name)
	}

	return &SaveOutput{Entry: rec.entry()}, nil
}

// Load returns the decompressed map
func (r *redisRepository) Load(ctx context.Context, input *LoadInput) (*LoadOutput, error) {
	if err := validateLoad(input); err != nil {
		return nil, err
	}

	rec, err := r.get(ctx, input.Name)
	if err != nil {
		return nil, err
	}

	data, err := decompress(rec.Data)
	if err != nil {
		return nil, err
	}
	return &LoadOutput{Entry: rec.entry(), Data: data}, nil
}

// List returns every saved map sorted by name
func (r *redisRepository) List(ctx context.Context, _ *ListInput) (*ListOutput, error) {
	names, err := r.client.SMembers(ctx, namesKey).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list terrain names")
	}
	sort.Strings(names)

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		rec, err := r.get(ctx, name)
		if errors.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, rec.entry())
	}
	return &ListOutput{Entries: entries}, nil
}

// Delete removes the map and its index entry
func (r *redisRepository) Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error) {
	if input == nil {
		return &DeleteOutput{}, nil
	}

	pipe := r.client.TxPipeline()
	del := pipe.Del(ctx, mapKeyPrefix+input.Name)
	pipe.SRem(ctx, namesKey, input.Name)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete terrain %s", input.Name)
	}
	return &DeleteOutput{Deleted: del.Val() > 0}, nil
}

func (r *redisRepository) get(ctx context.Context, name string) (*redisRecord, error) {
	raw, err := r.client.Get(ctx, mapKeyPrefix+name).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, notFound(name)
		}
		return nil, errors.Wrapf(err, "failed to get terrain %s from Redis", name)
	}

	var rec redisRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal terrain %s", name)
	}
	return &rec, nil
}

func (rec redisRecord) entry() Entry {
	return Entry{Name: rec.Name, HexCount: rec.HexCount, SavedAt: rec.SavedAt}
}
