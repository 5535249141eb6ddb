package models

import "time"

type Movie struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(100);not null" json:"title"`
	Description *string   `gorm:"type:text" json:"description"`
	ReleaseYear *int      `json:"release_year"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MovieRatings is one entry of the public ratings list: a movie and its raw
// rating values without user attribution.
type MovieRatings struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	ReleaseYear *int   `json:"release_year"`
	Ratings     []int  `json:"ratings"`
}
