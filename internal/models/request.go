package models

// Insert payloads. Pointer fields distinguish "missing" from zero values so a
// body without the key is rejected instead of inserting a zero reference.

type InsertUserRequest struct {
	Email    string `json:"user_email" binding:"required,email"`
	Password string `json:"user_password" binding:"required"`
}

type InsertSearchImageRequest struct {
	UserID   *int64 `json:"user_id" binding:"required"`
	FilePath string `json:"s_image_file_path" binding:"required"`
}

type InsertSearchTextRequest struct {
	SearchImageID *int64 `json:"s_image_id" binding:"required"`
	Query         string `json:"s_text_query" binding:"required"`
}

type InsertGenerateImageRequest struct {
	UserID   *int64 `json:"user_id" binding:"required"`
	FilePath string `json:"g_image_file_path" binding:"required"`
}

type InsertGenerateTextRequest struct {
	GenerateImageID *int64 `json:"g_image_id" binding:"required"`
	Query           string `json:"g_text_query" binding:"required"`
}

type InsertSavedImageRequest struct {
	UserID *int64 `json:"user_id" binding:"required"`
	Path   string `json:"sd_image_path" binding:"required"`
}

type UserLookupRequest struct {
	Email string `json:"email" binding:"required"`
}

type UserScopedRequest struct {
	UserID *int64 `json:"user_id" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"user_email" binding:"required"`
	Password string `json:"user_password" binding:"required"`
}

// SearchRequest carries either a keyword query or a base64 encoded image.
type SearchRequest struct {
	Query *string `json:"query"`
	Image string  `json:"image"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
