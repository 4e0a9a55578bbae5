package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"art-assistant-backend/internal/models"
)

func (d *DatabaseClient) CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error) {
	createdAt := d.timestamp()
	id, err := d.insertReturningID(ctx, `
		INSERT INTO users (user_email, user_password, created_at)
		VALUES ($1, $2, $3)
		RETURNING user_id
	`, email, passwordHash, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &models.User{ID: id, Email: email, PasswordHash: passwordHash, CreatedAt: createdAt}, nil
}

func (d *DatabaseClient) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := queryRows(ctx, d.db, scanUser, `
		SELECT user_id, user_email, user_password, created_at
		FROM users
		ORDER BY user_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (d *DatabaseClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := d.db.QueryRowContext(ctx, `
		SELECT user_id, user_email, user_password, created_at
		FROM users
		WHERE user_email = $1
	`, email).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func scanUser(rows *sql.Rows) (models.User, error) {
	var user models.User
	err := rows.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return user, fmt.Errorf("failed to scan user: %w", err)
	}
	return user, nil
}

func (d *DatabaseClient) CreateSearchImage(ctx context.Context, userID int64, filePath string) (*models.SearchImage, error) {
	createdAt := d.timestamp()
	id, err := d.insertReturningID(ctx, `
		INSERT INTO search_images (user_id, s_image_file_path, created_at)
		VALUES ($1, $2, $3)
		RETURNING s_image_id
	`, userID, filePath, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create search image: %w", err)
	}

	return &models.SearchImage{ID: id, UserID: userID, FilePath: filePath, CreatedAt: createdAt}, nil
}

func (d *DatabaseClient) ListSearchImages(ctx context.Context) ([]models.SearchImage, error) {
	images, err := queryRows(ctx, d.db, func(rows *sql.Rows) (models.SearchImage, error) {
		var img models.SearchImage
		err := rows.Scan(&img.ID, &img.UserID, &img.FilePath, &img.CreatedAt)
		return img, err
	}, `
		SELECT s_image_id, user_id, s_image_file_path, created_at
		FROM search_images
		ORDER BY s_image_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list search images: %w", err)
	}
	return images, nil
}

func (d *DatabaseClient) CreateSearchText(ctx context.Context, searchImageID int64, query string) (*models.SearchText, error) {
	createdAt := d.timestamp()
	id, err := d.insertReturningID(ctx, `
		INSERT INTO search_texts (s_image_id, s_text_query, created_at)
		VALUES ($1, $2, $3)
		RETURNING s_text_id
	`, searchImageID, query, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create search text: %w", err)
	}

	return &models.SearchText{ID: id, SearchImageID: searchImageID, Query: query, CreatedAt: createdAt}, nil
}

func (d *DatabaseClient) ListSearchTexts(ctx context.Context) ([]models.SearchText, error) {
	texts, err := queryRows(ctx, d.db, func(rows *sql.Rows) (models.SearchText, error) {
		var text models.SearchText
		err := rows.Scan(&text.ID, &text.SearchImageID, &text.Query, &text.CreatedAt)
		return text, err
	}, `
		SELECT s_text_id, s_image_id, s_text_query, created_at
		FROM search_texts
		ORDER BY s_text_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list search texts: %w", err)
	}
	return texts, nil
}

func (d *DatabaseClient) CreateGenerateImage(ctx context.Context, userID int64, filePath string) (*models.GenerateImage, error) {
	createdAt := d.timestamp()
	id, err := d.insertReturningID(ctx, `
		INSERT INTO generate_images (user_id, g_image_file_path, created_at)
		VALUES ($1, $2, $3)
		RETURNING g_image_id
	`, userID, filePath, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create generate image: %w", err)
	}

	return &models.GenerateImage{ID: id, UserID: userID, FilePath: filePath, CreatedAt: createdAt}, nil
}

func (d *DatabaseClient) ListGenerateImages(ctx context.Context) ([]models.GenerateImage, error) {
	return d.listGenerateImages(ctx, `
		SELECT g_image_id, user_id, g_image_file_path, created_at
		FROM generate_images
		ORDER BY g_image_id
	`)
}

func (d *DatabaseClient) ListGenerateImagesByUser(ctx context.Context, userID int64) ([]models.GenerateImage, error) {
	return d.listGenerateImages(ctx, `
		SELECT g_image_id, user_id, g_image_file_path, created_at
		FROM generate_images
		WHERE user_id = $1
		ORDER BY g_image_id
	`, userID)
}

func (d *DatabaseClient) listGenerateImages(ctx context.Context, query string, args ...interface{}) ([]models.GenerateImage, error) {
	images, err := queryRows(ctx, d.db, func(rows *sql.Rows) (models.GenerateImage, error) {
		var img models.GenerateImage
		err := rows.Scan(&img.ID, &img.UserID, &img.FilePath, &img.CreatedAt)
		return img, err
	}, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list generate images: %w", err)
	}
	return images, nil
}

func (d *DatabaseClient) CreateGenerateText(ctx context.Context, generateImageID int64, query string) (*models.GenerateText, error) {
	createdAt := d.timestamp()
	id, err := d.insertReturningID(ctx, `
		INSERT INTO generate_texts (g_image_id, g_text_query, created_at)
		VALUES ($1, $2, $3)
		RETURNING g_text_id
	`, generateImageID, query, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create generate text: %w", err)
	}

	return &models.GenerateText{ID: id, GenerateImageID: generateImageID, Query: query, CreatedAt: createdAt}, nil
}

func (d *DatabaseClient) ListGenerateTexts(ctx context.Context) ([]models.GenerateText, error) {
	texts, err := queryRows(ctx, d.db, func(rows *sql.Rows) (models.GenerateText, error) {
		var text models.GenerateText
		err := rows.Scan(&text.ID, &text.GenerateImageID, &text.Query, &text.CreatedAt)
		return text, err
	}, `
		SELECT g_text_id, g_image_id, g_text_query, created_at
		FROM generate_texts
		ORDER BY g_text_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list generate texts: %w", err)
	}
	return texts, nil
}

func (d *DatabaseClient) CreateSavedImage(ctx context.Context, userID int64, path string) (*models.SavedImage, error) {
	createdAt := d.timestamp()
	id, err := d.insertReturningID(ctx, `
		INSERT INTO saved_images (user_id, sd_image_path, created_at)
		VALUES ($1, $2, $3)
		RETURNING sd_image_id
	`, userID, path, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create saved image: %w", err)
	}

	return &models.SavedImage{ID: id, UserID: userID, Path: path, CreatedAt: createdAt}, nil
}

func (d *DatabaseClient) ListSavedImages(ctx context.Context) ([]models.SavedImage, error) {
	return d.listSavedImages(ctx, `
		SELECT sd_image_id, user_id, sd_image_path, created_at
		FROM saved_images
		ORDER BY sd_image_id
	`)
}

func (d *DatabaseClient) ListSavedImagesByUser(ctx context.Context, userID int64) ([]models.SavedImage, error) {
	return d.listSavedImages(ctx, `
		SELECT sd_image_id, user_id, sd_image_path, created_at
		FROM saved_images
		WHERE user_id = $1
		ORDER BY sd_image_id
	`, userID)
}

func (d *DatabaseClient) listSavedImages(ctx context.Context, query string, args ...interface{}) ([]models.SavedImage, error) {
	images, err := queryRows(ctx, d.db, func(rows *sql.Rows) (models.SavedImage, error) {
		var img models.SavedImage
		err := rows.Scan(&img.ID, &img.UserID, &img.Path, &img.CreatedAt)
		return img, err
	}, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved images: %w", err)
	}
	return images, nil
}
