package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/reelscore/backend/internal/apperror"
	"github.com/reelscore/backend/pkg/logger"
	"go.uber.org/zap"
)

// writeError maps service errors onto status codes. Anything outside the
// apperror taxonomy is a 500; its text is only shown when exposeDetail is set.
func writeError(c *gin.Context, err error, exposeDetail bool) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(statusFor(appErr), gin.H{"message": appErr.Message})
		return
	}

	logger.Log.Error("Request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)

	body := gin.H{"message": "Internal server error"}
	if exposeDetail {
		body["detail"] = err.Error()
	}
	c.JSON(http.StatusInternalServerError, body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrInvalidInput), errors.Is(err, apperror.ErrConflict):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseID reads a positive numeric path parameter.
func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": message})
}
