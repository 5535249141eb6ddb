package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/reelscore/backend/internal/middleware"
)

// Routes groups the handlers and middleware needed to serve the API.
type Routes struct {
	Auth    *AuthHandler
	Movies  *MovieHandler
	Ratings *RatingHandler
	Admin   *AdminHandler
	Uploads *UploadHandler

	Verify middleware.TokenVerifier
	// AuthLimiter guards /register and /login; nil disables rate limiting.
	AuthLimiter gin.HandlerFunc
	// UploadDir is served read-only under /uploads when set.
	UploadDir string
	// Ping reports database health for /health.
	Ping func(ctx context.Context) error
}

func (r Routes) Register(router *gin.Engine) {
	router.GET("/health", r.health)

	auth := router.Group("/")
	if r.AuthLimiter != nil {
		auth.Use(r.AuthLimiter)
	}
	auth.POST("/register", r.Auth.Register)
	auth.POST("/login", r.Auth.Login)

	router.GET("/movies/:id", r.Movies.GetMovie)
	router.GET("/ratings/list", r.Ratings.ListRatings)
	if r.UploadDir != "" {
		router.Static("/uploads", r.UploadDir)
	}

	protected := router.Group("/")
	protected.Use(middleware.AuthMiddleware(r.Verify))
	{
		protected.POST("/movies/add", r.Movies.AddMovie)
		protected.POST("/movies/:id/rating", r.Ratings.SubmitRating)
		protected.PUT("/movies/:id/rating", r.Ratings.UpdateRating)
		protected.DELETE("/movies/:id/rating", r.Ratings.DeleteOwnRating)
		protected.DELETE("/admin/ratings/:id", r.Admin.DeleteRating)
		if r.Uploads != nil {
			protected.POST("/uploads", r.Uploads.UploadImage)
		}
	}
}

func (r Routes) health(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	}
	if r.Ping != nil {
		if err := r.Ping(c.Request.Context()); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
		}
	}
	c.JSON(status, body)
}
