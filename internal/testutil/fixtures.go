package testutil

import (
	"testing"

	"github.com/reelscore/backend/internal/models"
	"github.com/reelscore/backend/internal/utils"
	"gorm.io/gorm"
)

// CreateTestUser inserts a user with a hashed password and returns it
func CreateTestUser(t *testing.T, db *gorm.DB, username, password string, isAdmin bool) *models.User {
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hashedPassword,
		IsAdmin:      isAdmin,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return user
}

// DefaultTestUser inserts a regular user "alice"
func DefaultTestUser(t *testing.T, db *gorm.DB) *models.User {
	return CreateTestUser(t, db, "alice", "Alice123456", false)
}

// DefaultAdminUser inserts an admin user "root"
func DefaultAdminUser(t *testing.T, db *gorm.DB) *models.User {
	return CreateTestUser(t, db, "root", "Root123456", true)
}

// CreateTestMovie inserts a movie with the given title and release year
func CreateTestMovie(t *testing.T, db *gorm.DB, title string, releaseYear int) *models.Movie {
	movie := &models.Movie{
		Title:       title,
		ReleaseYear: &releaseYear,
	}
	if err := db.Create(movie).Error; err != nil {
		t.Fatalf("Failed to create movie %s: %v", title, err)
	}
	return movie
}

// CreateTestRating inserts a rating row directly, bypassing the service rules
func CreateTestRating(t *testing.T, db *gorm.DB, userID, movieID uint, value int) *models.Rating {
	rating := &models.Rating{
		UserID:  userID,
		MovieID: movieID,
		Rating:  value,
	}
	if err := db.Omit("User", "Movie").Create(rating).Error; err != nil {
		t.Fatalf("Failed to create rating: %v", err)
	}
	return rating
}
