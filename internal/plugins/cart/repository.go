package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mmfoods/storefront/internal/apperror"
)

// cartKeyPrefix is the Redis key prefix for persisted carts.
const cartKeyPrefix = "cart:"

// Repository persists cart projections keyed by session id.
type Repository interface {
	Load(ctx context.Context, sid string) ([]persistedLine, error)
	Save(ctx context.Context, sid string, lines []persistedLine) error
	Clear(ctx context.Context, sid string) error
}

// redisRepository stores carts as JSON arrays in Redis with a TTL.
type redisRepository struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRepository creates a Redis-backed cart repository.
func NewRepository(rdb *redis.Client, ttl time.Duration) Repository {
	return &redisRepository{redis: rdb, ttl: ttl}
}

// Load returns the persisted pairs for sid, or nil when none exist.
func (r *redisRepository) Load(ctx context.Context, sid string) ([]persistedLine, error) {
	raw, err := r.redis.Get(ctx, cartKeyPrefix+sid).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("loading cart: %w", err))
	}
	var lines []persistedLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		// A corrupt record is unrecoverable; treat it as empty rather
		// than wedging the session.
		return nil, nil
	}
	return lines, nil
}

// Save writes the persisted pairs for sid. An empty snapshot is skipped:
// a transient empty in-memory cart must never clobber a non-empty stored
// cart. Emptying for real goes through Clear.
func (r *redisRepository) Save(ctx context.Context, sid string, lines []persistedLine) error {
	if len(lines) == 0 {
		return nil
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("encoding cart: %w", err))
	}
	if err := r.redis.Set(ctx, cartKeyPrefix+sid, raw, r.ttl).Err(); err != nil {
		return apperror.NewInternal(fmt.Errorf("saving cart: %w", err))
	}
	return nil
}

// Clear removes the persisted cart for sid.
func (r *redisRepository) Clear(ctx context.Context, sid string) error {
	if err := r.redis.Del(ctx, cartKeyPrefix+sid).Err(); err != nil {
		return apperror.NewInternal(fmt.Errorf("clearing cart: %w", err))
	}
	return nil
}
