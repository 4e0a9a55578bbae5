package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Database
	DatabaseDriver string
	DatabaseURL    string

	// Backbone (sd-webui)
	WebUIURL           string
	WebUIMaxConcurrent int
	WebUITimeout       time.Duration

	// Generation output
	GenerationFolder        string
	GenerationSweepSchedule string
	GenerationMaxAge        time.Duration
	MaxUploadMB             int64

	// Captioning
	CaptionProvider string
	CaptionURL      string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	OpenAIModel     string

	// Search provider
	SearchAPIURL   string
	SearchAPIToken string
	SearchLimit    int
	RedisURL       string
	SearchCacheTTL time.Duration

	// Supabase Storage (saved images)
	SupabaseURL           string
	SupabaseServiceKey    string
	SupabaseStorageBucket string

	// Auth
	JWTSecret    string
	AuthRequired bool
	TokenTTL     time.Duration

	// Logging
	LogLevel string
	LogFile  string

	// Server
	Port               string
	Environment        string
	CORSAllowedOrigins []string
}

func Load() (*Config, error) {
	cfg := &Config{
		DatabaseDriver: getEnv("DATABASE_DRIVER", "postgres"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),

		WebUIURL:           getEnv("WEBUI_URL", "http://127.0.0.1:7860"),
		WebUIMaxConcurrent: getEnvInt("WEBUI_MAX_CONCURRENT", 1),
		WebUITimeout:       getEnvDuration("WEBUI_TIMEOUT", 5*time.Minute),

		GenerationFolder:        getEnv("GENERATION_FOLDER", "./generations"),
		GenerationSweepSchedule: getEnv("GENERATION_SWEEP_SCHEDULE", "@every 10m"),
		GenerationMaxAge:        getEnvDuration("GENERATION_MAX_AGE", 10*time.Minute),
		MaxUploadMB:             int64(getEnvInt("MAX_UPLOAD_MB", 32)),

		CaptionProvider: getEnv("CAPTION_PROVIDER", "http"),
		CaptionURL:      getEnv("CAPTION_URL", "http://127.0.0.1:7861"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:     getEnv("OPENAI_CAPTION_MODEL", "gpt-4o-mini"),

		SearchAPIURL:   getEnv("SEARCH_API_URL", "https://api.pinterest.com"),
		SearchAPIToken: getEnv("SEARCH_API_TOKEN", ""),
		SearchLimit:    getEnvInt("SEARCH_LIMIT", 25),
		RedisURL:       getEnv("REDIS_URL", ""),
		SearchCacheTTL: getEnvDuration("SEARCH_CACHE_TTL", 15*time.Minute),

		SupabaseURL:           getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey:    getEnv("SUPABASE_SERVICE_KEY", ""),
		SupabaseStorageBucket: getEnv("SUPABASE_STORAGE_BUCKET", "saved-images"),

		JWTSecret:    getEnv("JWT_SECRET", ""),
		AuthRequired: getEnvBool("AUTH_REQUIRED", false),
		TokenTTL:     getEnvDuration("TOKEN_TTL", 24*time.Hour),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),

		Port:               getEnv("PORT", "5000"),
		Environment:        getEnv("ENVIRONMENT", "development"),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseDriver != "postgres" && c.DatabaseDriver != "sqlite" {
		return fmt.Errorf("DATABASE_DRIVER must be postgres or sqlite, got %q", c.DatabaseDriver)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.CaptionProvider != "http" && c.CaptionProvider != "openai" {
		return fmt.Errorf("CAPTION_PROVIDER must be http or openai, got %q", c.CaptionProvider)
	}
	if c.CaptionProvider == "openai" && c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when CAPTION_PROVIDER=openai")
	}
	if c.AuthRequired && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when AUTH_REQUIRED=true")
	}
	if c.WebUIMaxConcurrent < 1 {
		return fmt.Errorf("WEBUI_MAX_CONCURRENT must be at least 1")
	}
	return nil
}

// StorageEnabled reports whether saved-image uploads can reach Supabase Storage.
func (c *Config) StorageEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseServiceKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
