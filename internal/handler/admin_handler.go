package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reelscore/backend/internal/middleware"
	"github.com/reelscore/backend/internal/service"
	"github.com/reelscore/backend/pkg/logger"
	"go.uber.org/zap"
)

type AdminHandler struct {
	ratingService *service.RatingService
	exposeDetail  bool
}

func NewAdminHandler(ratingService *service.RatingService, isProduction bool) *AdminHandler {
	return &AdminHandler{
		ratingService: ratingService,
		exposeDetail:  !isProduction,
	}
}

// DeleteRating removes any user's rating by id.
// DELETE /admin/ratings/:id
func (h *AdminHandler) DeleteRating(c *gin.Context) {
	ratingID, ok := parseID(c, "id")
	if !ok {
		badRequest(c, "Invalid rating id")
		return
	}

	claims := middleware.CurrentClaims(c)
	if claims != nil {
		logger.Log.Info("Admin deleting rating",
			zap.Uint("admin_id", claims.UserID),
			zap.Uint("rating_id", ratingID),
		)
	}

	if err := h.ratingService.DeleteByID(c.Request.Context(), claims, ratingID); err != nil {
		writeError(c, err, h.exposeDetail)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Rating deleted successfully",
	})
}
