package models

import "time"

const (
	MinRating = 1
	MaxRating = 10
)

// Rating is a single user's score for a movie. (user_id, movie_id) is unique.
type Rating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:uq_ratings_user_movie" json:"user_id"`
	MovieID   uint      `gorm:"not null;uniqueIndex:uq_ratings_user_movie;index" json:"movie_id"`
	Rating    int       `gorm:"not null;check:ratings_range_chk,rating BETWEEN 1 AND 10" json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Foreign Key Relationships
	User  User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Movie Movie `gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE" json:"-"`
}

// ValidRating reports whether v is inside the accepted 1..10 range.
func ValidRating(v int) bool {
	return v >= MinRating && v <= MaxRating
}
