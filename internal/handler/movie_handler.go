package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reelscore/backend/internal/middleware"
	"github.com/reelscore/backend/internal/service"
	"github.com/reelscore/backend/pkg/logger"
	"go.uber.org/zap"
)

type MovieHandler struct {
	movieService *service.MovieService
	exposeDetail bool
}

func NewMovieHandler(movieService *service.MovieService, isProduction bool) *MovieHandler {
	return &MovieHandler{
		movieService: movieService,
		exposeDetail: !isProduction,
	}
}

type AddMovieRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	ReleaseYear *int    `json:"release_year"`
}

// GetMovie returns a movie with its per-user ratings.
// GET /movies/:id
func (h *MovieHandler) GetMovie(c *gin.Context) {
	movieID, ok := parseID(c, "id")
	if !ok {
		badRequest(c, "Invalid movie id")
		return
	}

	detail, err := h.movieService.GetDetail(c.Request.Context(), movieID)
	if err != nil {
		writeError(c, err, h.exposeDetail)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// AddMovie creates a movie (admin only).
// POST /movies/add
func (h *MovieHandler) AddMovie(c *gin.Context) {
	var req AddMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log.Warn("Add movie request parsing failed", zap.Error(err))
		badRequest(c, "Invalid request body")
		return
	}

	movie, err := h.movieService.Create(c.Request.Context(), middleware.CurrentClaims(c), service.CreateMovieInput{
		Title:       req.Title,
		Description: req.Description,
		ReleaseYear: req.ReleaseYear,
	})
	if err != nil {
		writeError(c, err, h.exposeDetail)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Movie added successfully",
		"movie":   movie.ID,
	})
}
