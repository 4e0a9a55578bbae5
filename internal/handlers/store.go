package handlers

import (
	"context"

	"art-assistant-backend/internal/models"
)

// Store is the persistence surface the CRUD endpoints need.
type Store interface {
	CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	CreateSearchImage(ctx context.Context, userID int64, filePath string) (*models.SearchImage, error)
	ListSearchImages(ctx context.Context) ([]models.SearchImage, error)
	CreateSearchText(ctx context.Context, searchImageID int64, query string) (*models.SearchText, error)
	ListSearchTexts(ctx context.Context) ([]models.SearchText, error)

	CreateGenerateImage(ctx context.Context, userID int64, filePath string) (*models.GenerateImage, error)
	ListGenerateImages(ctx context.Context) ([]models.GenerateImage, error)
	ListGenerateImagesByUser(ctx context.Context, userID int64) ([]models.GenerateImage, error)
	CreateGenerateText(ctx context.Context, generateImageID int64, query string) (*models.GenerateText, error)
	ListGenerateTexts(ctx context.Context) ([]models.GenerateText, error)

	CreateSavedImage(ctx context.Context, userID int64, path string) (*models.SavedImage, error)
	ListSavedImages(ctx context.Context) ([]models.SavedImage, error)
	ListSavedImagesByUser(ctx context.Context, userID int64) ([]models.SavedImage, error)
}
