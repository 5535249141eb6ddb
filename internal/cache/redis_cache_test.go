package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/reelscore/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestCache(t *testing.T) (*RedisRatingsCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)

	c := NewRedisRatingsCache(client, time.Minute)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func sampleList() []models.MovieRatings {
	year := 1999
	return []models.MovieRatings{
		{ID: 1, Title: "The Matrix", ReleaseYear: &year, Ratings: []int{8, 9}},
		{ID: 2, Title: "Untitled", Ratings: []int{}},
	}
}

func TestRedisRatingsCache_MissThenHit(t *testing.T) {
	c, _ := setupTestCache(t)
	ctx := context.Background()

	_, ok, err := c.GetRatingsList(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "empty cache should miss")

	require.NoError(t, c.SetRatingsList(ctx, 0, sampleList()))

	list, ok, err := c.GetRatingsList(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, sampleList(), list)
}

func TestRedisRatingsCache_Invalidate(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetRatingsList(ctx, 0, sampleList()))
	assert.True(t, mr.Exists(ratingsListKey))

	require.NoError(t, c.Invalidate(ctx))

	assert.False(t, mr.Exists(ratingsListKey))
	_, ok, err := c.GetRatingsList(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisRatingsCache_FillAfterWriteIsDropped(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()

	// A reader takes the generation, then a write lands before its fill.
	generation, err := c.Generation(ctx)
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx))

	require.NoError(t, c.SetRatingsList(ctx, generation, sampleList()))
	assert.False(t, mr.Exists(ratingsListKey), "a fill older than the last write must not be stored")

	current, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, generation+1, current)

	require.NoError(t, c.SetRatingsList(ctx, current, sampleList()))
	_, ok, err := c.GetRatingsList(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisRatingsCache_Expires(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetRatingsList(ctx, 0, sampleList()))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.GetRatingsList(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "entry should expire after the TTL")
}

func TestNewRedisClient_Errors(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "not-a-url")
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err = NewRedisClient(context.Background(), "redis://"+addr)
	assert.Error(t, err, "unreachable server should fail the ping")
}

func TestNopCache(t *testing.T) {
	var c RatingsCache = NopCache{}
	ctx := context.Background()

	assert.NoError(t, c.SetRatingsList(ctx, 0, sampleList()))
	_, ok, err := c.GetRatingsList(ctx)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.Invalidate(ctx))
}
