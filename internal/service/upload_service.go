package service

import (
	"context"
	"errors"
	"io"

	"github.com/reelscore/backend/internal/apperror"
	"github.com/reelscore/backend/internal/policy"
	"github.com/reelscore/backend/internal/repository"
	"github.com/reelscore/backend/internal/storage"
	"github.com/reelscore/backend/internal/utils"
	"github.com/reelscore/backend/pkg/logger"
	"go.uber.org/zap"
)

// ImageStore persists uploaded images; *storage.LocalStorage implements it.
type ImageStore interface {
	Save(filename string, r io.Reader) (string, error)
}

type UploadService struct {
	store  *repository.Store
	images ImageStore
}

func NewUploadService(store *repository.Store, images ImageStore) *UploadService {
	return &UploadService{
		store:  store,
		images: images,
	}
}

// UploadImage stores an image for an authenticated user and returns the stored file name.
func (s *UploadService) UploadImage(ctx context.Context, caller *utils.Claims, filename string, r io.Reader) (string, error) {
	var userID uint
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		user, err := authorize(ctx, tx, caller, policy.ActionUploadImage, nil)
		if err != nil {
			return err
		}
		userID = user.ID
		return nil
	})
	if err != nil {
		return "", err
	}

	name, err := s.images.Save(filename, r)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrExtensionNotAllowed):
			return "", apperror.InvalidInput("Only png, jpeg and gif images are allowed")
		case errors.Is(err, storage.ErrContentMismatch):
			return "", apperror.InvalidInput("File content does not match its extension")
		case errors.Is(err, storage.ErrFileTooLarge):
			return "", apperror.InvalidInput("File too large")
		case errors.Is(err, storage.ErrEmptyFile):
			return "", apperror.InvalidInput("File is empty")
		}
		logger.Log.Error("Failed to store upload",
			zap.Uint("user_id", userID),
			zap.String("filename", filename),
			zap.Error(err),
		)
		return "", err
	}

	logger.Log.Info("Image uploaded",
		zap.Uint("user_id", userID),
		zap.String("stored_as", name),
	)
	return name, nil
}
