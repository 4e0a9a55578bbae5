// @title           Art Assistant Backend API
// @version         1.0.0
// @description     Stores users and search/generation history, searches reference images by keyword or example image, and generates artwork through a Stable Diffusion WebUI with ControlNet.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:5000
// @BasePath  /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"art-assistant-backend/internal/caption"
	"art-assistant-backend/internal/config"
	"art-assistant-backend/internal/database"
	"art-assistant-backend/internal/handlers"
	"art-assistant-backend/internal/logging"
	"art-assistant-backend/internal/search"
	"art-assistant-backend/internal/services"
	"art-assistant-backend/internal/supabase"
	"art-assistant-backend/internal/webui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.ForEnvironment(cfg.Environment, cfg.LogLevel, cfg.LogFile)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	dbClient, err := database.NewDatabaseClient(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to initialize database client: %v", err)
	}
	defer dbClient.Close()

	if err := dbClient.Migrate(logger); err != nil {
		logger.Fatalf("Migration failed: %v", err)
	}
	logger.Info("Migrations completed successfully")

	captioner := newCaptioner(cfg)
	searcher := newSearcher(cfg, logger)

	webuiClient := webui.NewClient(cfg.WebUIURL, cfg.WebUIMaxConcurrent, cfg.WebUITimeout)
	generator, err := services.NewGenerationService(webuiClient, cfg.GenerationFolder, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize generation service: %v", err)
	}

	sweeper, err := services.NewSweeper(cfg.GenerationFolder, cfg.GenerationSweepSchedule, cfg.GenerationMaxAge, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize generation sweeper: %v", err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	var images handlers.ImageStore
	if cfg.StorageEnabled() {
		images = supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseStorageBucket)
	} else {
		logger.Warn("SUPABASE_URL or SUPABASE_SERVICE_KEY not set. Saved image uploads are disabled.")
	}

	router := handlers.NewRouter(handlers.Dependencies{
		Config:    cfg,
		Log:       logger,
		Store:     dbClient,
		Database:  dbClient,
		Backbone:  webuiClient,
		Captioner: captioner,
		Searcher:  searcher,
		Generator: generator,
		Images:    images,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	// Generations can take a while; give them time to finish and clean up.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.WebUITimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Graceful shutdown failed: %v", err)
	}
}

func newCaptioner(cfg *config.Config) caption.Captioner {
	if cfg.CaptionProvider == "openai" {
		return caption.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	}
	return caption.NewHTTPClient(cfg.CaptionURL)
}

func newSearcher(cfg *config.Config, logger *logrus.Logger) search.Searcher {
	client := search.NewClient(cfg.SearchAPIURL, cfg.SearchAPIToken, cfg.SearchLimit)
	if cfg.RedisURL == "" {
		return client
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Warnf("Invalid REDIS_URL, search results will not be cached: %v", err)
		return client
	}
	return search.NewCachedSearcher(client, redis.NewClient(opts), cfg.SearchCacheTTL, logger)
}
