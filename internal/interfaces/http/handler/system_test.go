package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/assetflow/backend/internal/infrastructure/persistence"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func systemRequest(t *testing.T, h *SystemHandler, route string, register func(*gin.Engine, *SystemHandler)) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	register(r, h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, route, nil)
	r.ServeHTTP(w, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestSystemHandler_Health(t *testing.T) {
	h := NewSystemHandler(nil)
	w, body := systemRequest(t, h, "/health", func(r *gin.Engine, h *SystemHandler) {
		r.GET("/health", h.Health)
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestSystemHandler_Ready_NoDatabase(t *testing.T) {
	h := NewSystemHandler(nil)
	w, body := systemRequest(t, h, "/ready", func(r *gin.Engine, h *SystemHandler) {
		r.GET("/ready", h.Ready)
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ready", body["status"])
	assert.NotContains(t, body, "db_pool")
}

func TestSystemHandler_Ready_ReportsPoolStats(t *testing.T) {
	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	h := NewSystemHandler(&persistence.Database{DB: gormDB})
	w, body := systemRequest(t, h, "/ready", func(r *gin.Engine, h *SystemHandler) {
		r.GET("/ready", h.Ready)
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ready", body["status"])
	require.Contains(t, body, "db_pool")
	pool, ok := body["db_pool"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, pool, "open")
	assert.Contains(t, pool, "in_use")
	assert.Contains(t, pool, "idle")
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	h := NewSystemHandler(nil)
	w, body := systemRequest(t, h, "/info", func(r *gin.Engine, h *SystemHandler) {
		r.GET("/info", h.GetSystemInfo)
	})

	assert.Equal(t, http.StatusOK, w.Code)
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "AssetFlow Backend API", data["name"])
	assert.NotEmpty(t, data["go_version"])
	assert.NotEmpty(t, data["uptime"])
}
