package handlers

import (
	"net/http"
	"reflect"
	"strings"
	"sync"

	"art-assistant-backend/internal/caption"
	"art-assistant-backend/internal/config"
	"art-assistant-backend/internal/middleware"
	"art-assistant-backend/internal/models"
	"art-assistant-backend/internal/search"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// Dependencies are the collaborators the HTTP layer is built from. Backbone
// and Images may be nil.
type Dependencies struct {
	Config    *config.Config
	Log       logrus.FieldLogger
	Store     Store
	Database  Pinger
	Backbone  Pinger
	Captioner caption.Captioner
	Searcher  search.Searcher
	Generator Generator
	Images    ImageStore
}

var registerJSONNames sync.Once

// NewRouter wires every route onto a fresh gin engine.
func NewRouter(deps Dependencies) *gin.Engine {
	registerJSONNames.Do(useJSONFieldNames)

	cfg := deps.Config
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.NoMethod(MethodNotAllowed)
	router.NoRoute(NotFound)

	router.Use(middleware.RequestLogger(deps.Log))
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		middleware.Logger(c, deps.Log).WithField("panic", recovered).Error("handler panicked")
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: "internal server error",
		})
	}))
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	health := NewHealthHandler(deps.Database, deps.Backbone, deps.Log)
	users := NewUsersHandler(deps.Store, deps.Log, cfg.JWTSecret, cfg.TokenTTL)
	records := NewRecordsHandler(deps.Store, deps.Log)
	searchHandler := NewSearchHandler(deps.Captioner, deps.Searcher, deps.Log)
	upload := NewUploadHandler(deps.Generator, deps.Log, cfg.MaxUploadMB)
	savedUpload := NewSavedImageUploadHandler(deps.Images, deps.Store, deps.Log, cfg.MaxUploadMB)

	router.GET("/health", health.Health)

	userRoutes := router.Group("/users")
	userRoutes.GET("/get", users.List)
	userRoutes.POST("/insert", users.Insert)
	userRoutes.POST("/get_id", users.GetID)
	userRoutes.POST("/login", users.Login)

	router.GET("/search_image/get", records.ListSearchImages)
	router.POST("/search_image/insert", records.InsertSearchImage)

	router.GET("/search_text/get", records.ListSearchTexts)
	router.POST("/search_text/insert", records.InsertSearchText)

	router.GET("/generate_image/get", records.ListGenerateImages)
	router.POST("/generate_image/insert", records.InsertGenerateImage)
	router.POST("/generate_image/get/user", records.ListGenerateImagesByUser)

	router.GET("/generate_text/get", records.ListGenerateTexts)
	router.POST("/generate_text/insert", records.InsertGenerateText)

	router.GET("/saved_image/get", records.ListSavedImages)
	router.POST("/saved_image/insert", records.InsertSavedImage)
	router.POST("/saved_image/get/user", records.ListSavedImagesByUser)

	// Routes that reach external services or object storage.
	protected := router.Group("/")
	if cfg.AuthRequired {
		protected.Use(middleware.AuthMiddleware(cfg))
	}
	protected.POST("/saved_image/upload", savedUpload.Upload)
	protected.POST("/search", searchHandler.Search)
	protected.POST("/upload", upload.Upload)

	return router
}

// useJSONFieldNames makes validation errors report JSON keys instead of Go
// field names.
func useJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
