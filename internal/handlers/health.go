package handlers

import (
	"context"
	"net/http"
	"time"

	"art-assistant-backend/internal/middleware"
	"art-assistant-backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const checkUnreachable = "unreachable"

// Pinger is anything health can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	database Pinger
	backbone Pinger
	log      logrus.FieldLogger
	timeout  time.Duration
}

// NewHealthHandler builds the health probe. backbone may be nil.
func NewHealthHandler(database, backbone Pinger, log logrus.FieldLogger) *HealthHandler {
	return &HealthHandler{database: database, backbone: backbone, log: log, timeout: 2 * time.Second}
}

// Health godoc
// @Summary     Health check
// @Description Reports database and generation backbone reachability
// @Tags        health
// @Produce     json
// @Success     200 {object} models.HealthResponse
// @Failure     503 {object} models.HealthResponse
// @Router      /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	response := models.HealthResponse{
		Status: "ok",
		Checks: map[string]string{},
	}
	status := http.StatusOK

	if err := h.database.Ping(ctx); err != nil {
		middleware.Logger(c, h.log).WithError(err).Error("database health check failed")
		response.Checks["database"] = checkUnreachable
		response.Status = "unavailable"
		status = http.StatusServiceUnavailable
	} else {
		response.Checks["database"] = "ok"
	}

	// The backbone is allowed to be down; only generation depends on it.
	if h.backbone != nil {
		if err := h.backbone.Ping(ctx); err != nil {
			middleware.Logger(c, h.log).WithError(err).Warn("backbone health check failed")
			response.Checks["backbone"] = checkUnreachable
			if status == http.StatusOK {
				response.Status = "degraded"
			}
		} else {
			response.Checks["backbone"] = "ok"
		}
	}

	c.JSON(status, response)
}
