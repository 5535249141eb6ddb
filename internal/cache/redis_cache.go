package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/reelscore/backend/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	ratingsListKey       = "ratings:list"
	ratingsGenerationKey = "ratings:list:gen"
)

// NewRedisClient parses redisURL and checks the server is reachable.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// RedisRatingsCache implements RatingsCache as one JSON value with a TTL.
type RedisRatingsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRatingsCache(client *redis.Client, ttl time.Duration) *RedisRatingsCache {
	return &RedisRatingsCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *RedisRatingsCache) GetRatingsList(ctx context.Context) ([]models.MovieRatings, bool, error) {
	data, err := c.client.Get(ctx, ratingsListKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var list []models.MovieRatings
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, false, err
	}
	return list, true, nil
}

// Generation returns the current write generation; a missing key counts as 0.
func (c *RedisRatingsCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, ratingsGenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// SetRatingsList stores list only if no write bumped the generation since it was read.
// A lost race is not an error: the next reader fills the cache again.
func (c *RedisRatingsCache) SetRatingsList(ctx context.Context, generation int64, list []models.MovieRatings) error {
	data, err := json.Marshal(list)
	if err != nil {
		return err
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, ratingsGenerationKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, ratingsListKey, data, c.ttl)
			return nil
		})
		return err
	}, ratingsGenerationKey)
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

// Invalidate drops the cached list and starts a new generation in one transaction.
func (c *RedisRatingsCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, ratingsGenerationKey)
		pipe.Del(ctx, ratingsListKey)
		return nil
	})
	return err
}

func (c *RedisRatingsCache) Close() error {
	return c.client.Close()
}
