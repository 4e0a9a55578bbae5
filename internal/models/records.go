package models

import "time"

type User struct {
	ID           int64     `json:"user_id"`
	Email        string    `json:"user_email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type SearchImage struct {
	ID        int64     `json:"s_image_id"`
	UserID    int64     `json:"user_id"`
	FilePath  string    `json:"s_image_file_path"`
	CreatedAt time.Time `json:"created_at"`
}

type SearchText struct {
	ID            int64     `json:"s_text_id"`
	SearchImageID int64     `json:"s_image_id"`
	Query         string    `json:"s_text_query"`
	CreatedAt     time.Time `json:"created_at"`
}

type GenerateImage struct {
	ID        int64     `json:"g_image_id"`
	UserID    int64     `json:"user_id"`
	FilePath  string    `json:"g_image_file_path"`
	CreatedAt time.Time `json:"created_at"`
}

type GenerateText struct {
	ID              int64     `json:"g_text_id"`
	GenerateImageID int64     `json:"g_image_id"`
	Query           string    `json:"g_text_query"`
	CreatedAt       time.Time `json:"created_at"`
}

type SavedImage struct {
	ID        int64     `json:"sd_image_id"`
	UserID    int64     `json:"user_id"`
	Path      string    `json:"sd_image_path"`
	CreatedAt time.Time `json:"created_at"`
}
