package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store aggregates the per-entity repositories over one database handle.
// A Store created inside Transaction is bound to that transaction.
type Store struct {
	db *gorm.DB

	Users   *UserRepository
	Movies  *MovieRepository
	Ratings *RatingRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:      db,
		Users:   NewUserRepository(db),
		Movies:  NewMovieRepository(db),
		Ratings: NewRatingRepository(db),
	}
}

// Transaction runs fn with a Store scoped to a single transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
