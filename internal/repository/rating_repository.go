package repository

import (
	"context"
	"errors"

	"github.com/reelscore/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RatingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// Upsert inserts the rating or, when the (user_id, movie_id) pair already exists,
// overwrites its value in place. The conflict is resolved by the database so two
// concurrent submissions for the same pair can never both insert.
func (r *RatingRepository) Upsert(ctx context.Context, rating *models.Rating) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "movie_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "updated_at"}),
		}).
		Create(rating).Error
}

// GetByUserAndMovie returns nil, nil when the user has not rated the movie.
func (r *RatingRepository) GetByUserAndMovie(ctx context.Context, userID, movieID uint) (*models.Rating, error) {
	var rating models.Rating
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		First(&rating).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rating, nil
}

// GetByID returns nil, nil when the rating does not exist.
func (r *RatingRepository) GetByID(ctx context.Context, id uint) (*models.Rating, error) {
	var rating models.Rating
	err := r.db.WithContext(ctx).First(&rating, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rating, nil
}

// UpdateValue sets a new value on an existing rating row.
func (r *RatingRepository) UpdateValue(ctx context.Context, rating *models.Rating, value int) error {
	return r.db.WithContext(ctx).
		Model(rating).
		Omit(clause.Associations).
		Update("rating", value).Error
}

func (r *RatingRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Rating{}, id).Error
}

// ListByMovie returns all ratings of a movie ordered by id.
func (r *RatingRepository) ListByMovie(ctx context.Context, movieID uint) ([]models.Rating, error) {
	var ratings []models.Rating
	err := r.db.WithContext(ctx).
		Where("movie_id = ?", movieID).
		Order("id ASC").
		Find(&ratings).Error
	return ratings, err
}

// ListAll returns every rating ordered by movie then id.
func (r *RatingRepository) ListAll(ctx context.Context) ([]models.Rating, error) {
	var ratings []models.Rating
	err := r.db.WithContext(ctx).
		Order("movie_id ASC, id ASC").
		Find(&ratings).Error
	return ratings, err
}
