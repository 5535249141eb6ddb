package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reelscore/backend/internal/service"
	"github.com/reelscore/backend/pkg/logger"
	"go.uber.org/zap"
)

// AttemptResetter clears the failed-attempt counter of a client;
// *middleware.RateLimiter implements it.
type AttemptResetter interface {
	Reset(ctx context.Context, key string) error
}

type AuthHandler struct {
	authService *service.AuthService
	attempts    AttemptResetter
}

// NewAuthHandler builds the handler. attempts may be nil when rate limiting is off.
func NewAuthHandler(authService *service.AuthService, attempts AttemptResetter) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		attempts:    attempts,
	}
}

// Presence is checked by the service so every missing field gets the same message.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a regular user.
// POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	var req CredentialsRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log.Warn("Registration request parsing failed",
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		badRequest(c, "Invalid request body")
		return
	}

	logger.Log.Info("User registration attempt",
		zap.String("username", req.Username),
		zap.String("ip", c.ClientIP()),
	)

	user, err := h.authService.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err, !h.authService.IsProduction())
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    user,
	})
}

// Login returns a bearer token for valid credentials.
// POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var req CredentialsRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log.Warn("Login request parsing failed",
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		badRequest(c, "Invalid request body")
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err, !h.authService.IsProduction())
		return
	}

	// A successful login clears the client's attempt counter.
	if h.attempts != nil {
		if err := h.attempts.Reset(c.Request.Context(), c.ClientIP()); err != nil {
			logger.Log.Warn("Failed to reset login attempts",
				zap.String("ip", c.ClientIP()),
				zap.Error(err),
			)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Login successful",
		"access_token": token,
		"user":         user,
	})
}
