package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/reelscore/backend/internal/config"
	"github.com/reelscore/backend/internal/database"
	"github.com/reelscore/backend/internal/models"
	"github.com/reelscore/backend/internal/repository"
	"github.com/reelscore/backend/internal/utils"
	"github.com/reelscore/backend/pkg/logger"
	"go.uber.org/zap"
)

// seed creates the administrator account. Registration only ever creates
// regular users, so this is the one way an admin comes to exist.
func main() {
	cfg := config.Load()
	if err := logger.Init(!cfg.IsProduction()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	adminUsername := strings.TrimSpace(os.Getenv("ADMIN_USERNAME"))
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminUsername == "" || adminPassword == "" {
		logger.Log.Fatal("Missing environment variables: ADMIN_USERNAME, ADMIN_PASSWORD")
	}

	db, err := database.Open(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("Failed to run migrations", zap.Error(err))
	}

	ctx := context.Background()
	store := repository.NewStore(db)

	existing, err := store.Users.GetUserByUsername(ctx, adminUsername)
	if err != nil {
		logger.Log.Fatal("Failed to look up admin", zap.Error(err))
	}
	if existing != nil {
		if !existing.IsAdmin {
			logger.Log.Fatal("User exists but is not an admin", zap.String("username", adminUsername))
		}
		logger.Log.Info("Admin user already exists", zap.String("username", existing.Username))
		return
	}

	passwordHash, err := utils.HashPassword(adminPassword)
	if err != nil {
		logger.Log.Fatal("Failed to hash password", zap.Error(err))
	}

	admin := &models.User{
		Username:     adminUsername,
		PasswordHash: passwordHash,
		IsAdmin:      true,
	}
	if err := store.Users.CreateUser(ctx, admin); err != nil {
		logger.Log.Fatal("Failed to create admin", zap.Error(err))
	}

	logger.Log.Info("Admin user created successfully",
		zap.Uint("user_id", admin.ID),
		zap.String("username", admin.Username),
	)
}
