package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/reelscore/backend/internal/apperror"
	"github.com/reelscore/backend/internal/cache"
	"github.com/reelscore/backend/internal/journal"
	"github.com/reelscore/backend/internal/models"
	"github.com/reelscore/backend/internal/policy"
	"github.com/reelscore/backend/internal/repository"
	"github.com/reelscore/backend/internal/utils"
	"github.com/reelscore/backend/pkg/logger"
	"go.uber.org/zap"
)

var ErrMovieFieldsRequired = apperror.InvalidInput("Title and Release Year are required")

const maxTitleLength = 100

type CreateMovieInput struct {
	Title       string
	Description *string
	ReleaseYear *int
}

// UserRating is one attributed entry of a movie's detail view.
type UserRating struct {
	ID     uint `json:"id"`
	UserID uint `json:"user_id"`
	Rating int  `json:"rating"`
}

type MovieDetail struct {
	ID          uint         `json:"id"`
	Title       string       `json:"title"`
	Description *string      `json:"description"`
	ReleaseYear *int         `json:"release_year"`
	Ratings     []UserRating `json:"ratings"`
}

type MovieService struct {
	store    *repository.Store
	cache    cache.RatingsCache
	recorder Recorder
}

func NewMovieService(store *repository.Store, ratingsCache cache.RatingsCache, recorder Recorder) *MovieService {
	if ratingsCache == nil {
		ratingsCache = cache.NopCache{}
	}
	return &MovieService{
		store:    store,
		cache:    ratingsCache,
		recorder: recorder,
	}
}

// Create adds a movie to the catalog. Only admins may call it.
func (s *MovieService) Create(ctx context.Context, caller *utils.Claims, input CreateMovieInput) (*models.Movie, error) {
	var (
		admin *models.User
		movie *models.Movie
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		user, err := authorize(ctx, tx, caller, policy.ActionAddMovie, nil)
		if err != nil {
			return err
		}
		admin = user

		title := strings.TrimSpace(input.Title)
		if title == "" || input.ReleaseYear == nil {
			return ErrMovieFieldsRequired
		}
		if len(title) > maxTitleLength {
			return apperror.InvalidInput("Title must be at most 100 characters")
		}

		movie = &models.Movie{
			Title:       title,
			Description: input.Description,
			ReleaseYear: input.ReleaseYear,
		}
		if err := tx.Movies.CreateMovie(ctx, movie); err != nil {
			return fmt.Errorf("create movie: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		logger.Log.Warn("Failed to invalidate ratings cache", zap.Error(err))
	}
	recordEvent(s.recorder, journal.Entry{
		Action:   journal.ActionMovieAdded,
		ActorID:  admin.ID,
		TargetID: movie.ID,
		Detail:   movie.Title,
	})

	logger.Log.Info("Movie added",
		zap.Uint("movie_id", movie.ID),
		zap.String("title", movie.Title),
		zap.Uint("admin_id", admin.ID),
	)
	return movie, nil
}

// GetDetail returns a movie with its per-user ratings.
func (s *MovieService) GetDetail(ctx context.Context, movieID uint) (*MovieDetail, error) {
	var detail *MovieDetail
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		movie, err := tx.Movies.GetMovieByID(ctx, movieID)
		if err != nil {
			return fmt.Errorf("find movie: %w", err)
		}
		if movie == nil {
			return ErrMovieNotFound
		}

		ratings, err := tx.Ratings.ListByMovie(ctx, movieID)
		if err != nil {
			return fmt.Errorf("list ratings: %w", err)
		}

		detail = &MovieDetail{
			ID:          movie.ID,
			Title:       movie.Title,
			Description: movie.Description,
			ReleaseYear: movie.ReleaseYear,
			Ratings:     make([]UserRating, 0, len(ratings)),
		}
		for _, r := range ratings {
			detail.Ratings = append(detail.Ratings, UserRating{ID: r.ID, UserID: r.UserID, Rating: r.Rating})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}
