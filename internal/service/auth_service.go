package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/reelscore/backend/internal/apperror"
	"github.com/reelscore/backend/internal/models"
	"github.com/reelscore/backend/internal/repository"
	"github.com/reelscore/backend/internal/utils"
	"github.com/reelscore/backend/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrUsernameAlreadyExists = apperror.Conflict("Username already exists")
	ErrMissingCredentials    = apperror.InvalidInput("Username and password are required")
	ErrInvalidCredentials    = apperror.Unauthenticated("Invalid username or password")
)

const (
	maxUsernameLength = 50
	maxPasswordLength = 128
)

type AuthService struct {
	store         *repository.Store
	jwtSecret     string
	jwtExpiration time.Duration
	environment   string
}

func NewAuthService(store *repository.Store, jwtSecret string, jwtExpiration time.Duration, environment string) *AuthService {
	return &AuthService{
		store:         store,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		environment:   environment,
	}
}

// IsProduction returns true if running in production environment
func (s *AuthService) IsProduction() bool {
	return s.environment == "production"
}

// Register creates a regular (non-admin) user.
func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	start := time.Now()
	username = strings.TrimSpace(username)

	if err := validateCredentials(username, password); err != nil {
		logger.Log.Warn("Registration validation failed",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, err
	}

	hashStart := time.Now()
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		logger.Log.Error("Failed to hash password", zap.Error(err))
		return nil, err
	}
	hashDuration := time.Since(hashStart)

	user := &models.User{
		Username:     username,
		PasswordHash: hashedPassword,
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		existing, err := tx.Users.GetUserByUsername(ctx, username)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrUsernameAlreadyExists
		}
		err = tx.Users.CreateUser(ctx, user)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUsernameAlreadyExists
		}
		return err
	})
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			logger.Log.Warn("Username already exists", zap.String("username", username))
		} else {
			logger.Log.Error("Failed to create user in database",
				zap.String("username", username),
				zap.Error(err),
			)
		}
		return nil, err
	}

	logger.Log.Info("User registered successfully",
		zap.Uint("user_id", user.ID),
		zap.String("username", username),
		zap.Duration("hash_duration", hashDuration),
		zap.Duration("total_duration", time.Since(start)),
	)

	return user, nil
}

// Login verifies the password and issues a bearer token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	start := time.Now()
	username = strings.TrimSpace(username)

	if username == "" || password == "" {
		return nil, "", ErrMissingCredentials
	}

	user, err := s.store.Users.GetUserByUsername(ctx, username)
	if err != nil {
		logger.Log.Error("Failed to get user by username",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, "", err
	}
	if user == nil {
		logger.Log.Warn("Login failed: user not found", zap.String("username", username))
		return nil, "", ErrInvalidCredentials
	}

	valid, err := utils.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		logger.Log.Error("Failed to verify password",
			zap.Uint("user_id", user.ID),
			zap.Error(err),
		)
		return nil, "", err
	}
	if !valid {
		logger.Log.Warn("Login failed: invalid password", zap.Uint("user_id", user.ID))
		return nil, "", ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(user, s.jwtSecret, s.jwtExpiration)
	if err != nil {
		logger.Log.Error("Failed to generate JWT token",
			zap.Uint("user_id", user.ID),
			zap.Error(err),
		)
		return nil, "", err
	}

	logger.Log.Info("User logged in successfully",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username),
		zap.Bool("is_admin", user.IsAdmin),
		zap.Duration("total_duration", time.Since(start)),
	)

	return user, token, nil
}

// VerifyToken is the token verifier used by the auth middleware.
func (s *AuthService) VerifyToken(token string) (*utils.Claims, error) {
	return utils.ValidateToken(token, s.jwtSecret)
}

func validateCredentials(username, password string) error {
	if username == "" || password == "" {
		return ErrMissingCredentials
	}
	if len(username) > maxUsernameLength {
		return apperror.InvalidInput("Username must be at most 50 characters")
	}
	if len(password) > maxPasswordLength {
		return apperror.InvalidInput("Password must be at most 128 characters")
	}
	return nil
}
