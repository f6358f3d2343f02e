package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func hit(router *gin.Engine, method, path string, headers map[string]string, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func limitedRouter(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw)
	r.GET("/assets", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestRateLimiter_Allow(t *testing.T) {
	t.Run("serves the full budget then blocks", func(t *testing.T) {
		limiter := NewRateLimiter(3, time.Minute)
		for i := 0; i < 3; i++ {
			assert.True(t, limiter.Allow("branch-central"), "request %d", i+1)
		}
		assert.False(t, limiter.Allow("branch-central"))
	})

	t.Run("keys do not share a budget", func(t *testing.T) {
		limiter := NewRateLimiter(1, time.Minute)
		assert.True(t, limiter.Allow("branch-central"))
		assert.False(t, limiter.Allow("branch-central"))
		assert.True(t, limiter.Allow("branch-east"))
	})

	t.Run("window expiry refills the budget", func(t *testing.T) {
		limiter := NewRateLimiter(1, 30*time.Millisecond)
		assert.True(t, limiter.Allow("branch-central"))
		assert.False(t, limiter.Allow("branch-central"))

		time.Sleep(40 * time.Millisecond)
		assert.True(t, limiter.Allow("branch-central"))
	})
}

func TestRateLimiter_Remaining(t *testing.T) {
	limiter := NewRateLimiter(5, time.Minute)
	assert.Equal(t, 5, limiter.Remaining("branch-central"))

	limiter.Allow("branch-central")
	limiter.Allow("branch-central")
	assert.Equal(t, 3, limiter.Remaining("branch-central"))
}

func TestRateLimiter_Concurrent(t *testing.T) {
	limiter := NewRateLimiter(100, time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < 150; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Allow("shared") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, allowed)
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("passes until exhausted, then 429", func(t *testing.T) {
		router := limitedRouter(RateLimit(NewRateLimiter(2, time.Minute)))

		assert.Equal(t, http.StatusOK, hit(router, http.MethodGet, "/assets", nil, "").Code)
		assert.Equal(t, http.StatusOK, hit(router, http.MethodGet, "/assets", nil, "").Code)

		w := hit(router, http.MethodGet, "/assets", nil, "")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
	})

	t.Run("reports the budget in headers", func(t *testing.T) {
		router := limitedRouter(RateLimit(NewRateLimiter(5, time.Minute)))

		w := hit(router, http.MethodGet, "/assets", nil, "")
		assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("branch header scopes the key", func(t *testing.T) {
		router := limitedRouter(RateLimit(NewRateLimiter(1, time.Minute)))
		central := map[string]string{"X-Branch-ID": "branch-central"}
		east := map[string]string{"X-Branch-ID": "branch-east"}

		assert.Equal(t, http.StatusOK, hit(router, http.MethodGet, "/assets", central, "").Code)
		assert.Equal(t, http.StatusTooManyRequests, hit(router, http.MethodGet, "/assets", central, "").Code)
		assert.Equal(t, http.StatusOK, hit(router, http.MethodGet, "/assets", east, "").Code)
	})

	t.Run("client IPs do not share a budget", func(t *testing.T) {
		router := limitedRouter(RateLimit(NewRateLimiter(1, time.Minute)))

		assert.Equal(t, http.StatusOK, hit(router, http.MethodGet, "/assets", nil, "10.0.0.1:40001").Code)
		assert.Equal(t, http.StatusTooManyRequests, hit(router, http.MethodGet, "/assets", nil, "10.0.0.1:40001").Code)
		assert.Equal(t, http.StatusOK, hit(router, http.MethodGet, "/assets", nil, "10.0.0.2:40001").Code)
	})
}

func TestRateLimitByKey(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := limitedRouter(RateLimitByKey(NewRateLimiter(1, time.Minute), func(c *gin.Context) string {
		return c.GetHeader("X-User-ID")
	}))
	clerk := map[string]string{"X-User-ID": "usr-301"}

	assert.Equal(t, http.StatusOK, hit(router, http.MethodGet, "/assets", clerk, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(router, http.MethodGet, "/assets", clerk, "").Code)
}

// Bulk imports sit behind a much tighter limiter than the read API; one
// must not starve the other.
func TestRateLimit_IndependentLimiters(t *testing.T) {
	gin.SetMode(gin.TestMode)

	strict := NewRateLimiter(1, time.Minute)
	relaxed := NewRateLimiter(100, time.Minute)

	router := gin.New()
	imports := router.Group("/asset-imports")
	imports.Use(RateLimitByKey(strict, func(c *gin.Context) string { return "import:" + c.ClientIP() }))
	imports.POST("", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.Use(RateLimit(relaxed))
	router.GET("/assets", func(c *gin.Context) { c.Status(http.StatusOK) })

	addr := "10.0.0.9:40001"
	assert.Equal(t, http.StatusOK, hit(router, http.MethodPost, "/asset-imports", nil, addr).Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(router, http.MethodPost, "/asset-imports", nil, addr).Code)
	assert.Equal(t, http.StatusOK, hit(router, http.MethodGet, "/assets", nil, addr).Code)
}
