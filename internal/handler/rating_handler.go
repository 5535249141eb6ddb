package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reelscore/backend/internal/middleware"
	"github.com/reelscore/backend/internal/models"
	"github.com/reelscore/backend/internal/service"
	"github.com/reelscore/backend/internal/utils"
)

type RatingHandler struct {
	ratingService *service.RatingService
	exposeDetail  bool
}

func NewRatingHandler(ratingService *service.RatingService, isProduction bool) *RatingHandler {
	return &RatingHandler{
		ratingService: ratingService,
		exposeDetail:  !isProduction,
	}
}

type RatingRequest struct {
	Rating *int `json:"rating"`
}

// SubmitRating creates or overwrites the caller's rating.
// POST /movies/:id/rating
func (h *RatingHandler) SubmitRating(c *gin.Context) {
	h.writeRating(c, h.ratingService.Submit, "Rating submitted successfully")
}

// UpdateRating changes an existing rating of the caller.
// PUT /movies/:id/rating
func (h *RatingHandler) UpdateRating(c *gin.Context) {
	h.writeRating(c, h.ratingService.Update, "Rating updated successfully")
}

type ratingWriter func(ctx context.Context, caller *utils.Claims, movieID uint, value int) (*models.Rating, error)

func (h *RatingHandler) writeRating(c *gin.Context, write ratingWriter, message string) {
	movieID, ok := parseID(c, "id")
	if !ok {
		badRequest(c, "Invalid movie id")
		return
	}

	value, ok := bindRatingValue(c)
	if !ok {
		return
	}

	rating, err := write(c.Request.Context(), middleware.CurrentClaims(c), movieID, value)
	if err != nil {
		writeError(c, err, h.exposeDetail)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"rating":  rating,
	})
}

// DeleteOwnRating removes the caller's rating of a movie.
// DELETE /movies/:id/rating
func (h *RatingHandler) DeleteOwnRating(c *gin.Context) {
	movieID, ok := parseID(c, "id")
	if !ok {
		badRequest(c, "Invalid movie id")
		return
	}

	if err := h.ratingService.DeleteOwn(c.Request.Context(), middleware.CurrentClaims(c), movieID); err != nil {
		writeError(c, err, h.exposeDetail)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Rating deleted successfully"})
}

// ListRatings returns every movie with its raw rating values.
// GET /ratings/list
func (h *RatingHandler) ListRatings(c *gin.Context) {
	list, err := h.ratingService.ListAll(c.Request.Context())
	if err != nil {
		writeError(c, err, h.exposeDetail)
		return
	}

	c.JSON(http.StatusOK, list)
}

// bindRatingValue reads {"rating": n}. A missing value becomes 0 so the service
// still runs its authorization checks before rejecting the range.
func bindRatingValue(c *gin.Context) (int, bool) {
	var req RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "Invalid request body")
		return 0, false
	}
	if req.Rating == nil {
		return 0, true
	}
	return *req.Rating, true
}
