package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/reelscore/backend/internal/cache"
	"github.com/reelscore/backend/internal/config"
	"github.com/reelscore/backend/internal/database"
	"github.com/reelscore/backend/internal/handler"
	"github.com/reelscore/backend/internal/journal"
	"github.com/reelscore/backend/internal/middleware"
	"github.com/reelscore/backend/internal/repository"
	"github.com/reelscore/backend/internal/service"
	"github.com/reelscore/backend/internal/storage"
	"github.com/reelscore/backend/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(!cfg.IsProduction()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.JWTSecret == "" {
		logger.Log.Fatal("JWT_SECRET must be set")
	}

	db, err := database.Open(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("Failed to run migrations", zap.Error(err))
	}

	moderationJournal, err := journal.Open(cfg.JournalPath)
	if err != nil {
		logger.Log.Fatal("Failed to open moderation journal", zap.Error(err))
	}
	defer moderationJournal.Close()

	images, err := storage.NewLocalStorage(cfg.UploadDir, cfg.UploadMaxBytes)
	if err != nil {
		logger.Log.Fatal("Failed to prepare upload directory", zap.Error(err))
	}

	// Redis is optional: without it the ratings list is not cached and
	// /register and /login are not rate limited.
	var (
		ratingsCache  cache.RatingsCache = cache.NopCache{}
		authLimiter   gin.HandlerFunc
		loginAttempts handler.AttemptResetter
	)
	if cfg.RedisURL != "" {
		redisClient, err := cache.NewRedisClient(context.Background(), cfg.RedisURL)
		if err != nil {
			logger.Log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		ratingsCache = cache.NewRedisRatingsCache(redisClient, cfg.RatingsCacheTTL)
		limiter := newAuthLimiter(redisClient, cfg)
		authLimiter = limiter.Middleware()
		loginAttempts = limiter
	}
	defer ratingsCache.Close()

	store := repository.NewStore(db)

	authService := service.NewAuthService(store, cfg.JWTSecret, cfg.JWTExpiry, cfg.Environment)
	ratingService := service.NewRatingService(store, ratingsCache, moderationJournal)
	movieService := service.NewMovieService(store, ratingsCache, moderationJournal)
	uploadService := service.NewUploadService(store, images)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	if len(cfg.CORSAllowedOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
		corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
		router.Use(cors.New(corsConfig))
	}
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.HSTSMiddleware(cfg.IsProduction()))

	handler.Routes{
		Auth:        handler.NewAuthHandler(authService, loginAttempts),
		Movies:      handler.NewMovieHandler(movieService, cfg.IsProduction()),
		Ratings:     handler.NewRatingHandler(ratingService, cfg.IsProduction()),
		Admin:       handler.NewAdminHandler(ratingService, cfg.IsProduction()),
		Uploads:     handler.NewUploadHandler(uploadService, cfg.UploadMaxBytes, cfg.IsProduction()),
		Verify:      authService.VerifyToken,
		AuthLimiter: authLimiter,
		UploadDir:   images.Dir(),
		Ping:        func(ctx context.Context) error { return database.Ping(ctx, db) },
	}.Register(router)

	srv := &http.Server{
		Addr:              cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("Server starting",
			zap.String("addr", cfg.ServerPort),
			zap.String("environment", cfg.Environment),
			zap.String("database", cfg.DatabaseDriver),
			zap.Bool("redis", cfg.RedisURL != ""),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}
}

func newAuthLimiter(client *redis.Client, cfg *config.Config) *middleware.RateLimiter {
	return middleware.NewRateLimiter(client, middleware.RateLimiterConfig{
		MaxRequests: cfg.RateLimitMaxRequests,
		Window:      cfg.RateLimitWindow,
		KeyPrefix:   "ratelimit:auth",
	})
}
