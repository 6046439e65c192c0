package dicesession

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/hexroom/internal/errors"
	"github.com/KirkDiggler/hexroom/internal/pkg/clock"
	redisclient "github.com/KirkDiggler/hexroom/internal/redis"
)

// Keys share a {room_id} hash tag so one transaction touches one cluster slot:
//
//	dice_session:{room_id}:rolls    list of JSON rolls, oldest first
//	dice_session:{room_id}:expires  unix nanos after which the session is gone
const sessionKeyPrefix = "dice_session:"

// Config holds the configuration for the Redis repository
type Config struct {
	Client redisclient.Client
	Clock  clock.Clock
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
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

// NewRedisRepository creates a new Redis repository for dice sessions
func NewRedisRepository(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &redisRepository{
		client: cfg.Client,
		clock:  cfg.Clock,
	}, nil
}

var _ Repository = (*redisRepository)(nil)

// Append pushes a roll, trims the list and restarts both keys' TTL in one MULTI
func (r *redisRepository) Append(ctx context.Context, input AppendInput) (*AppendOutput, error) {
	if err := validateAppend(input); err != nil {
		return nil, err
	}
	ttl, limit := input.defaults()

	payload, err := json.Marshal(input.Roll)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal roll")
	}

	rollsKey, expiresKey := r.keys(input.RoomID)
	now := r.clock.Now()

	// An expired history must not leak old rolls into the new session
	if _, err := r.load(ctx, input.RoomID, now); err != nil && !errors.IsNotFound(err) {
		return nil, err
	}

	var rolls *redis.StringSliceCmd
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, rollsKey, payload)
		pipe.LTrim(ctx, rollsKey, int64(-limit), -1)
		pipe.Set(ctx, expiresKey, now.Add(ttl).UnixNano(), ttl)
		pipe.PExpire(ctx, rollsKey, ttl)
		rolls = pipe.LRange(ctx, rollsKey, 0, -1)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to append roll in Redis")
	}

	decoded, err := decodeRolls(rolls.Val())
	if err != nil {
		return nil, err
	}

	return &AppendOutput{Session: &DiceSession{
		RoomID:    input.RoomID,
		Rolls:     decoded,
		ExpiresAt: now.Add(ttl),
	}}, nil
}

// Get retrieves a room's dice session
func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.RoomID == "" {
		return nil, errors.InvalidArgument(errRoomIDEmpty)
	}

	session, err := r.load(ctx, input.RoomID, r.clock.Now())
	if err != nil {
		return nil, err
	}
	return &GetOutput{Session: session}, nil
}

// Delete removes a dice session
func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.RoomID == "" {
		return nil, errors.InvalidArgument(errRoomIDEmpty)
	}

	var rollsDeleted int32
	session, err := r.load(ctx, input.RoomID, r.clock.Now())
	switch {
	case err == nil:
		// nolint:gosec // bounded by the history limit
		rollsDeleted = int32(len(session.Rolls))
	case !errors.IsNotFound(err):
		return nil, err
	}

	rollsKey, expiresKey := r.keys(input.RoomID)
	if err := r.client.Del(ctx, rollsKey, expiresKey).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to delete session from Redis")
	}

	return &DeleteOutput{RollsDeleted: rollsDeleted}, nil
}

// load reads both keys and drops a session whose expiry has passed on the
// repository clock
func (r *redisRepository) load(ctx context.Context, roomID string, now time.Time) (*DiceSession, error) {
	rollsKey, expiresKey := r.keys(roomID)

	var (
		rolls   *redis.StringSliceCmd
		expires *redis.StringCmd
	)
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		rolls = pipe.LRange(ctx, rollsKey, 0, -1)
		expires = pipe.Get(ctx, expiresKey)
		return nil
	})
	if err != nil && err != redis.Nil {
		return nil, errors.Wrapf(err, "failed to get session from Redis")
	}

	raw, err := expires.Result()
	if err == redis.Nil || len(rolls.Val()) == 0 {
		return nil, errors.NotFound("dice session not found").WithMeta("room_id", roomID)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get session expiry from Redis")
	}

	nanos, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, errors.Wrapf(err, "corrupt session expiry for room %s", roomID)
	}
	expiresAt := time.Unix(0, nanos).UTC()

	if !now.Before(expiresAt) {
		_ = r.client.Del(ctx, rollsKey, expiresKey) // nolint:errcheck // next write replaces it anyway
		return nil, errors.NotFound("dice session has expired").WithMeta("room_id", roomID)
	}

	decoded, err := decodeRolls(rolls.Val())
	if err != nil {
		return nil, err
	}

	return &DiceSession{RoomID: roomID, Rolls: decoded, ExpiresAt: expiresAt}, nil
}

func (r *redisRepository) keys(roomID string) (rolls, expires string) {
	base := sessionKeyPrefix + "{" + roomID + "}"
	return base + ":rolls", base + ":expires"
}

func decodeRolls(raw []string) ([]DiceRoll, error) {
	out := make([]DiceRoll, 0, len(raw))
	for _, item := range raw {
		var roll DiceRoll
		if err := json.Unmarshal([]byte(item), &roll); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal roll")
		}
		out = append(out, roll)
	}
	return out, nil
}
