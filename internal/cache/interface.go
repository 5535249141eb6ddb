package cache

import (
	"context"

	"github.com/reelscore/backend/internal/models"
)

// RatingsCache holds the last computed public ratings list.
// Any write to ratings or movies must call Invalidate, which also bumps the
// generation. A reader takes the generation before reading the database and
// passes it to SetRatingsList; the fill is dropped if a write happened since.
type RatingsCache interface {
	// GetRatingsList reports ok=false on a miss.
	GetRatingsList(ctx context.Context) (list []models.MovieRatings, ok bool, err error)
	Generation(ctx context.Context) (int64, error)
	SetRatingsList(ctx context.Context, generation int64, list []models.MovieRatings) error
	Invalidate(ctx context.Context) error

	Close() error
}

// NopCache is used when Redis is not configured; every read misses.
type NopCache struct{}

func (NopCache) GetRatingsList(context.Context) ([]models.MovieRatings, bool, error) {
	return nil, false, nil
}

func (NopCache) Generation(context.Context) (int64, error) { return 0, nil }

func (NopCache) SetRatingsList(context.Context, int64, []models.MovieRatings) error { return nil }

func (NopCache) Invalidate(context.Context) error { return nil }

func (NopCache) Close() error { return nil }
