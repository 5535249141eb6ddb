package service

import (
	"context"
	"fmt"

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

var (
	ErrRatingOutOfRange = apperror.InvalidInput("Rating must be between 1 and 10")
	ErrMovieNotFound    = apperror.NotFound("Movie")
	ErrRatingNotFound   = apperror.NotFound("Rating")
)

// Recorder receives moderation events; *journal.Journal implements it.
type Recorder interface {
	Append(entry journal.Entry) error
}

type RatingService struct {
	store    *repository.Store
	cache    cache.RatingsCache
	recorder Recorder
}

// NewRatingService wires the ledger. A nil ratingsCache disables caching and a nil
// recorder disables the moderation journal.
func NewRatingService(store *repository.Store, ratingsCache cache.RatingsCache, recorder Recorder) *RatingService {
	if ratingsCache == nil {
		ratingsCache = cache.NopCache{}
	}
	return &RatingService{
		store:    store,
		cache:    ratingsCache,
		recorder: recorder,
	}
}

// Submit creates the caller's rating for a movie or overwrites the existing one.
func (s *RatingService) Submit(ctx context.Context, caller *utils.Claims, movieID uint, value int) (*models.Rating, error) {
	var result *models.Rating
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		user, err := authorize(ctx, tx, caller, policy.ActionSubmitRating, nil)
		if err != nil {
			return err
		}
		result, err = upsert(ctx, tx, user.ID, movieID, value)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	logger.Log.Info("Rating submitted",
		zap.Uint("rating_id", result.ID),
		zap.Uint("user_id", result.UserID),
		zap.Uint("movie_id", movieID),
		zap.Int("rating", value),
	)
	return result, nil
}

// Update changes the caller's existing rating; it never creates one.
func (s *RatingService) Update(ctx context.Context, caller *utils.Claims, movieID uint, value int) (*models.Rating, error) {
	var result *models.Rating
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		user, err := authorize(ctx, tx, caller, policy.ActionUpdateRating, nil)
		if err != nil {
			return err
		}
		result, err = updateExisting(ctx, tx, user.ID, movieID, value)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	logger.Log.Info("Rating updated",
		zap.Uint("rating_id", result.ID),
		zap.Uint("user_id", result.UserID),
		zap.Uint("movie_id", movieID),
		zap.Int("rating", value),
	)
	return result, nil
}

// DeleteOwn removes the caller's rating of a movie.
func (s *RatingService) DeleteOwn(ctx context.Context, caller *utils.Claims, movieID uint) error {
	var deleted *models.Rating
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		subject, _, err := loadSubject(ctx, tx, caller)
		if err != nil {
			return err
		}

		var existing *models.Rating
		if subject.Found && !subject.IsAdmin {
			existing, err = tx.Ratings.GetByUserAndMovie(ctx, subject.UserID, movieID)
			if err != nil {
				return fmt.Errorf("find rating: %w", err)
			}
		}

		var target *policy.Target
		if existing != nil {
			target = &policy.Target{OwnerID: existing.UserID}
		}
		if decision := policy.Evaluate(subject, policy.ActionDeleteOwnRating, target); !decision.Allowed {
			return decision.Error()
		}
		if existing == nil {
			return ErrRatingNotFound
		}

		deleted = existing
		return tx.Ratings.Delete(ctx, existing.ID)
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx)
	logger.Log.Info("Rating deleted by owner",
		zap.Uint("rating_id", deleted.ID),
		zap.Uint("user_id", deleted.UserID),
		zap.Uint("movie_id", movieID),
	)
	return nil
}

// DeleteByID is the moderation path: an admin removes any rating, whoever owns it.
func (s *RatingService) DeleteByID(ctx context.Context, caller *utils.Claims, ratingID uint) error {
	var (
		admin   *models.User
		deleted *models.Rating
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		user, err := authorize(ctx, tx, caller, policy.ActionAdminDeleteRating, nil)
		if err != nil {
			return err
		}
		admin = user

		existing, err := tx.Ratings.GetByID(ctx, ratingID)
		if err != nil {
			return fmt.Errorf("find rating: %w", err)
		}
		if existing == nil {
			return ErrRatingNotFound
		}

		deleted = existing
		return tx.Ratings.Delete(ctx, existing.ID)
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx)
	recordEvent(s.recorder, journal.Entry{
		Action:   journal.ActionRatingDeleted,
		ActorID:  admin.ID,
		TargetID: deleted.ID,
		OwnerID:  deleted.UserID,
		MovieID:  deleted.MovieID,
	})
	logger.Log.Info("Rating deleted by admin",
		zap.Uint("rating_id", deleted.ID),
		zap.Uint("admin_id", admin.ID),
		zap.Uint("owner_id", deleted.UserID),
	)
	return nil
}

// ListAll returns, for every movie, its raw rating values.
func (s *RatingService) ListAll(ctx context.Context) ([]models.MovieRatings, error) {
	if list, ok, err := s.cache.GetRatingsList(ctx); err != nil {
		logger.Log.Warn("Ratings cache read failed, falling back to database", zap.Error(err))
	} else if ok {
		return list, nil
	}

	// Taken before the database read so a write committed in between voids the fill.
	generation, genErr := s.cache.Generation(ctx)
	if genErr != nil {
		logger.Log.Warn("Ratings cache generation read failed", zap.Error(genErr))
	}

	var list []models.MovieRatings
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		movies, err := tx.Movies.ListMovies(ctx)
		if err != nil {
			return fmt.Errorf("list movies: %w", err)
		}
		ratings, err := tx.Ratings.ListAll(ctx)
		if err != nil {
			return fmt.Errorf("list ratings: %w", err)
		}
		list = groupByMovie(movies, ratings)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if genErr == nil {
		if err := s.cache.SetRatingsList(ctx, generation, list); err != nil {
			logger.Log.Warn("Ratings cache write failed", zap.Error(err))
		}
	}
	return list, nil
}

func upsert(ctx context.Context, tx *repository.Store, userID, movieID uint, value int) (*models.Rating, error) {
	if !models.ValidRating(value) {
		return nil, ErrRatingOutOfRange
	}

	movie, err := tx.Movies.GetMovieByID(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("find movie: %w", err)
	}
	if movie == nil {
		return nil, ErrMovieNotFound
	}

	if err := tx.Ratings.Upsert(ctx, &models.Rating{UserID: userID, MovieID: movieID, Rating: value}); err != nil {
		return nil, fmt.Errorf("upsert rating: %w", err)
	}

	rating, err := tx.Ratings.GetByUserAndMovie(ctx, userID, movieID)
	if err != nil {
		return nil, fmt.Errorf("reload rating: %w", err)
	}
	if rating == nil {
		return nil, ErrRatingNotFound
	}
	return rating, nil
}

func updateExisting(ctx context.Context, tx *repository.Store, userID, movieID uint, value int) (*models.Rating, error) {
	if !models.ValidRating(value) {
		return nil, ErrRatingOutOfRange
	}

	rating, err := tx.Ratings.GetByUserAndMovie(ctx, userID, movieID)
	if err != nil {
		return nil, fmt.Errorf("find rating: %w", err)
	}
	if rating == nil {
		return nil, ErrRatingNotFound
	}

	if err := tx.Ratings.UpdateValue(ctx, rating, value); err != nil {
		return nil, fmt.Errorf("update rating: %w", err)
	}
	rating.Rating = value
	return rating, nil
}

// groupByMovie keeps movie order and attaches each movie's values in rating id order.
func groupByMovie(movies []models.Movie, ratings []models.Rating) []models.MovieRatings {
	values := make(map[uint][]int, len(movies))
	for _, r := range ratings {
		values[r.MovieID] = append(values[r.MovieID], r.Rating)
	}

	list := make([]models.MovieRatings, 0, len(movies))
	for _, m := range movies {
		v := values[m.ID]
		if v == nil {
			v = []int{}
		}
		list = append(list, models.MovieRatings{
			ID:          m.ID,
			Title:       m.Title,
			ReleaseYear: m.ReleaseYear,
			Ratings:     v,
		})
	}
	return list
}

func (s *RatingService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.Log.Warn("Failed to invalidate ratings cache", zap.Error(err))
	}
}

func recordEvent(recorder Recorder, entry journal.Entry) {
	if recorder == nil {
		return
	}
	if err := recorder.Append(entry); err != nil {
		logger.Log.Error("Failed to record moderation event",
			zap.String("action", string(entry.Action)),
			zap.Uint("target_id", entry.TargetID),
			zap.Error(err),
		)
	}
}
