package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func requestLog(t *testing.T, logs *observer.ObservedLogs) observer.LoggedEntry {
	t.Helper()
	for _, entry := range logs.All() {
		if entry.Message == "HTTP Request" {
			return entry
		}
	}
	t.Fatal("no HTTP Request entry logged")
	return observer.LoggedEntry{}
}

func TestGinMiddleware(t *testing.T) {
	t.Run("logs method path and status at info", func(t *testing.T) {
		l, logs := observedLogger(t)
		router := gin.New()
		router.Use(GinMiddleware(l))
		router.GET("/api/v1/assets", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/assets?status=IN_STOCK", nil))

		entry := requestLog(t, logs)
		assert.Equal(t, zap.InfoLevel, entry.Level)
		assert.Equal(t, http.MethodGet, fieldValue(t, entry, "method"))
		assert.Equal(t, "/api/v1/assets", fieldValue(t, entry, "path"))
		assert.Equal(t, "status=IN_STOCK", fieldValue(t, entry, "query"))
	})

	t.Run("carries the request id set upstream", func(t *testing.T) {
		l, logs := observedLogger(t)
		router := gin.New()
		router.Use(func(c *gin.Context) { c.Set("request_id", "req-5150") })
		router.Use(GinMiddleware(l))
		router.GET("/api/v1/transfers", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/transfers", nil))

		assert.Equal(t, "req-5150", fieldValue(t, requestLog(t, logs), "request_id"))
	})

	t.Run("stores the scoped logger on the request context", func(t *testing.T) {
		l, logs := observedLogger(t)
		router := gin.New()
		router.Use(func(c *gin.Context) { c.Set("request_id", "req-6001") })
		router.Use(GinMiddleware(l))
		router.GET("/api/v1/debts", func(c *gin.Context) {
			FromContext(c.Request.Context()).Info("handler ran")
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/debts", nil))

		var handlerEntry *observer.LoggedEntry
		for _, entry := range logs.All() {
			if entry.Message == "handler ran" {
				e := entry
				handlerEntry = &e
			}
		}
		require.NotNil(t, handlerEntry)
		assert.Equal(t, "req-6001", fieldValue(t, *handlerEntry, "request_id"))
	})

	t.Run("4xx logs at warn", func(t *testing.T) {
		l, logs := observedLogger(t)
		router := gin.New()
		router.Use(GinMiddleware(l))
		router.GET("/api/v1/assets/:serial", func(c *gin.Context) { c.Status(http.StatusNotFound) })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/assets/POS-99999", nil))

		assert.Equal(t, zap.WarnLevel, requestLog(t, logs).Level)
	})

	t.Run("5xx logs at error with gin errors attached", func(t *testing.T) {
		l, logs := observedLogger(t)
		router := gin.New()
		router.Use(GinMiddleware(l))
		router.POST("/api/v1/transfers", func(c *gin.Context) {
			_ = c.Error(assert.AnError)
			c.Status(http.StatusInternalServerError)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/transfers", nil))

		entry := requestLog(t, logs)
		assert.Equal(t, zap.ErrorLevel, entry.Level)

		var hasErrors bool
		for _, f := range entry.Context {
			if f.Key == "errors" {
				hasErrors = true
			}
		}
		assert.True(t, hasErrors)
	})
}

func TestRecovery(t *testing.T) {
	l, logs := observedLogger(t)
	router := gin.New()
	router.Use(Recovery(l))
	router.GET("/api/v1/inventory", func(c *gin.Context) {
		panic("part ledger unavailable")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/inventory", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Panic recovered", entry.Message)
	assert.Equal(t, zap.ErrorLevel, entry.Level)
}

func TestGetGinLogger(t *testing.T) {
	t.Run("returns the stored logger", func(t *testing.T) {
		l, _ := observedLogger(t)
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Set("logger", l)

		assert.Same(t, l, GetGinLogger(c))
	})

	t.Run("falls back to a no-op logger", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		require.NotNil(t, GetGinLogger(c))

		c.Set("logger", "wrong type")
		require.NotNil(t, GetGinLogger(c))
	})
}
