package handlers_test

import (
	"net/http"
	"testing"

	"art-assistant-backend/internal/handlers"
	"art-assistant-backend/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body models.HealthResponse
	decode(t, w, &body)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "ok", body.Checks["database"])
}

func TestHealth_BackboneDownIsDegraded(t *testing.T) {
	env := newTestEnv(t, func(d *handlers.Dependencies) { d.Backbone = unreachable{} })

	w := env.doJSON(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body models.HealthResponse
	decode(t, w, &body)
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "unreachable", body.Checks["backbone"])
	assert.NotContains(t, w.Body.String(), "connection refused")

	var logged *logrus.Entry
	for _, entry := range env.logs.AllEntries() {
		if entry.Message == "backbone health check failed" {
			logged = entry
		}
	}
	require.NotNil(t, logged)
	assert.Equal(t, logrus.WarnLevel, logged.Level)
	assert.EqualError(t, logged.Data[logrus.ErrorKey].(error), "connection refused")
}

func TestHealth_DatabaseDown(t *testing.T) {
	env := newTestEnv(t, func(d *handlers.Dependencies) { d.Database = unreachable{} })

	w := env.doJSON(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body models.HealthResponse
	decode(t, w, &body)
	assert.Equal(t, "unavailable", body.Status)
	assert.Equal(t, "unreachable", body.Checks["database"])
	assert.NotContains(t, w.Body.String(), "connection refused")
}
