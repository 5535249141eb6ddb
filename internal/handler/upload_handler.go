package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reelscore/backend/internal/middleware"
	"github.com/reelscore/backend/internal/service"
	"github.com/reelscore/backend/internal/storage"
	"github.com/reelscore/backend/pkg/logger"
	"go.uber.org/zap"
)

type UploadHandler struct {
	uploadService *service.UploadService
	maxBytes      int64
	exposeDetail  bool
}

func NewUploadHandler(uploadService *service.UploadService, maxBytes int64, isProduction bool) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		maxBytes:      maxBytes,
		exposeDetail:  !isProduction,
	}
}

// UploadImage accepts a multipart "file" field and stores it under /uploads.
// POST /uploads
func (h *UploadHandler) UploadImage(c *gin.Context) {
	// Leave room for the multipart envelope; storage enforces the exact limit.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+1<<20)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		logger.Log.Warn("Upload without file", zap.Error(err))
		badRequest(c, "No file uploaded")
		return
	}

	if !storage.AllowedExtension(fileHeader.Filename) {
		badRequest(c, "Only png, jpeg and gif images are allowed")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		writeError(c, err, h.exposeDetail)
		return
	}
	defer file.Close()

	name, err := h.uploadService.UploadImage(c.Request.Context(), middleware.CurrentClaims(c), fileHeader.Filename, file)
	if err != nil {
		writeError(c, err, h.exposeDetail)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "File uploaded successfully",
		"filename": name,
		"url":      "/uploads/" + name,
	})
}
