package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func corsRouter(cfg CORSConfig) *gin.Engine {
	r := gin.New()
	r.Use(CORSWithConfig(cfg))
	r.GET("/api/v1/assets", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"assets": []string{}})
	})
	return r
}

func TestCORSWithConfig(t *testing.T) {
	whitelist := CORSConfig{
		AllowOrigins:     []string{"https://portal.example.com"},
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           time.Hour,
	}

	t.Run("allowed origin gets CORS headers", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/assets", nil)
		req.Header.Set("Origin", "https://portal.example.com")
		corsRouter(whitelist).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://portal.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "GET, POST", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "X-Request-ID", w.Header().Get("Access-Control-Expose-Headers"))
		assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("unknown origin gets no CORS headers", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/assets", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		corsRouter(whitelist).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("empty whitelist rejects every origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/assets", nil)
		req.Header.Set("Origin", "https://portal.example.com")
		corsRouter(DefaultCORSConfig()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard allows any origin without credentials", func(t *testing.T) {
		cfg := whitelist
		cfg.AllowOrigins = []string{"*"}
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/assets", nil)
		req.Header.Set("Origin", "https://anywhere.example.com")
		corsRouter(cfg).ServeHTTP(w, req)

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("preflight answers 204 for allowed origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodOptions, "/api/v1/assets", nil)
		req.Header.Set("Origin", "https://portal.example.com")
		corsRouter(whitelist).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://portal.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight answers 204 even without CORS headers", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodOptions, "/api/v1/assets", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		corsRouter(whitelist).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/api/v1/branches", func(c *gin.Context) {
		id, _ := c.Get("request_id")
		c.JSON(http.StatusOK, gin.H{"request_id": id})
	})

	t.Run("generates an id when absent", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/branches", nil)
		r.ServeHTTP(w, req)

		got := w.Header().Get("X-Request-ID")
		require.NotEmpty(t, got)
		_, err := uuid.Parse(got)
		assert.NoError(t, err)
	})

	t.Run("keeps a caller-provided id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/branches", nil)
		req.Header.Set("X-Request-ID", "caller-supplied")
		r.ServeHTTP(w, req)

		assert.Equal(t, "caller-supplied", w.Header().Get("X-Request-ID"))
	})
}

func secureHeaders(cfg SecurityConfig) http.Header {
	r := gin.New()
	r.Use(SecureWithConfig(cfg))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)
	return w.Header()
}

func TestSecureWithConfig(t *testing.T) {
	t.Run("baseline headers are always set", func(t *testing.T) {
		h := secureHeaders(SecurityConfig{})
		assert.Equal(t, "DENY", h.Get("X-Frame-Options"))
		assert.Equal(t, "1; mode=block", h.Get("X-XSS-Protection"))
		assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
		assert.Equal(t, "strict-origin-when-cross-origin", h.Get("Referrer-Policy"))
		assert.Empty(t, h.Get("Strict-Transport-Security"))
		assert.Empty(t, h.Get("Content-Security-Policy"))
	})

	t.Run("defaults enable CSP and permissions policy but not HSTS", func(t *testing.T) {
		h := secureHeaders(DefaultSecurityConfig())
		assert.Contains(t, h.Get("Content-Security-Policy"), "default-src 'self'")
		assert.Contains(t, h.Get("Permissions-Policy"), "camera=()")
		assert.Empty(t, h.Get("Strict-Transport-Security"))
	})

	t.Run("HSTS directives", func(t *testing.T) {
		h := secureHeaders(SecurityConfig{
			HSTSEnabled:           true,
			HSTSMaxAge:            600,
			HSTSIncludeSubdomains: true,
			HSTSPreload:           true,
		})
		assert.Equal(t, "max-age=600; includeSubDomains; preload", h.Get("Strict-Transport-Security"))
	})
}

func TestDefaultCORSConfig(t *testing.T) {
	cfg := DefaultCORSConfig()
	assert.Empty(t, cfg.AllowOrigins)
	assert.Contains(t, cfg.AllowHeaders, "X-Branch-ID")
	assert.Contains(t, cfg.ExposeHeaders, "X-RateLimit-Remaining")
	assert.True(t, cfg.AllowCredentials)
	assert.Equal(t, 12*time.Hour, cfg.MaxAge)
}

func TestDefaultSecurityConfig(t *testing.T) {
	cfg := DefaultSecurityConfig()
	assert.False(t, cfg.HSTSEnabled)
	assert.True(t, cfg.CSPEnabled)
	assert.True(t, cfg.PermissionsPolicyEnabled)
	assert.Equal(t, 31536000, cfg.HSTSMaxAge)
}
