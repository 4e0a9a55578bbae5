package config_test

import (
	"testing"
	"time"

	"art-assistant-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/art")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, "http://127.0.0.1:7860", cfg.WebUIURL)
	assert.Equal(t, "./generations", cfg.GenerationFolder)
	assert.Equal(t, 1, cfg.WebUIMaxConcurrent)
	assert.Equal(t, 15*time.Minute, cfg.SearchCacheTTL)
	assert.Equal(t, "5000", cfg.Port)
	assert.False(t, cfg.AuthRequired)
	assert.False(t, cfg.StorageEnabled())
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "art.db")
	t.Setenv("WEBUI_MAX_CONCURRENT", "3")
	t.Setenv("SEARCH_CACHE_TTL", "90s")
	t.Setenv("AUTH_REQUIRED", "true")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")
	t.Setenv("SUPABASE_SERVICE_KEY", "key")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, https://art.example.com")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, 3, cfg.WebUIMaxConcurrent)
	assert.Equal(t, 90*time.Second, cfg.SearchCacheTTL)
	assert.True(t, cfg.AuthRequired)
	assert.True(t, cfg.StorageEnabled())
	assert.Equal(t, []string{"http://localhost:3000", "https://art.example.com"}, cfg.CORSAllowedOrigins)
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := config.Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL is required")
}

func TestValidate(t *testing.T) {
	base := func() *config.Config {
		return &config.Config{
			DatabaseDriver:     "postgres",
			DatabaseURL:        "postgres://localhost/art",
			CaptionProvider:    "http",
			WebUIMaxConcurrent: 1,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{"valid", func(c *config.Config) {}, ""},
		{"unknown driver", func(c *config.Config) { c.DatabaseDriver = "mysql" }, "DATABASE_DRIVER"},
		{"unknown caption provider", func(c *config.Config) { c.CaptionProvider = "blip" }, "CAPTION_PROVIDER"},
		{"openai without key", func(c *config.Config) { c.CaptionProvider = "openai" }, "OPENAI_API_KEY"},
		{"auth without secret", func(c *config.Config) { c.AuthRequired = true }, "JWT_SECRET"},
		{"zero concurrency", func(c *config.Config) { c.WebUIMaxConcurrent = 0 }, "WEBUI_MAX_CONCURRENT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
