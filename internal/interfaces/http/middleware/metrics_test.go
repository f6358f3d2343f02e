package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newManualMeter(t *testing.T) (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = mp.Shutdown(context.Background())
	})
	return mp, reader
}

func readMetric(t *testing.T, reader *sdkmetric.ManualReader, name string) *metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func counterTotal(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected Sum data for counter")
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func metricsRouter(mp *sdkmetric.MeterProvider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(HTTPMetricsWithMeter(mp.Meter("http.server"), true))
	r.GET("/api/v1/assets/:serial", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"serial": c.Param("serial")})
	})
	r.POST("/api/v1/transfers", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"status": "PENDING"})
	})
	r.GET("/api/v1/debts", func(c *gin.Context) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ledger offline"})
	})
	return r
}

func TestHTTPMetrics_NoOpWhenDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for name, mw := range map[string]gin.HandlerFunc{
		"disabled config":     HTTPMetrics(HTTPMetricsConfig{Enabled: false}),
		"nil meter provider":  HTTPMetrics(HTTPMetricsConfig{Enabled: true, MeterProvider: nil}),
		"disabled with meter": nil,
	} {
		t.Run(name, func(t *testing.T) {
			if mw == nil {
				mp, _ := newManualMeter(t)
				mw = HTTPMetricsWithMeter(mp.Meter("http.server"), false)
			}
			r := gin.New()
			r.Use(mw)
			r.GET("/api/v1/branches", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"branches": []string{}})
			})

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/api/v1/branches", nil)
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestHTTPMetricsWithMeter_CountsRequestsPerRouteAndStatus(t *testing.T) {
	mp, reader := newManualMeter(t)
	r := metricsRouter(mp)

	for _, path := range []string{
		"/api/v1/assets/POS-001",
		"/api/v1/assets/POS-002",
		"/api/v1/debts",
	} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		r.ServeHTTP(w, req)
	}

	m := readMetric(t, reader, "http_server_request_total")
	require.NotNil(t, m)
	assert.Equal(t, int64(3), counterTotal(t, m))

	// Both assets requests collapse onto the route pattern, so there is one
	// data point per route+status pair, not per URL.
	sum := m.Data.(metricdata.Sum[int64])
	routes := map[string]int64{}
	for _, dp := range sum.DataPoints {
		for _, attr := range dp.Attributes.ToSlice() {
			if string(attr.Key) == "http.route" {
				routes[attr.Value.AsString()] += dp.Value
			}
		}
	}
	assert.Equal(t, int64(2), routes["/api/v1/assets/:serial"])
	assert.Equal(t, int64(1), routes["/api/v1/debts"])
}

func TestHTTPMetricsWithMeter_RecordsSizesAndDuration(t *testing.T) {
	mp, reader := newManualMeter(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(HTTPMetricsWithMeter(mp.Meter("http.server"), true))
	r.POST("/api/v1/transfers", func(c *gin.Context) {
		time.Sleep(10 * time.Millisecond)
		c.JSON(http.StatusCreated, gin.H{"status": "PENDING"})
	})

	w := httptest.NewRecorder()
	body := strings.NewReader(`{"source_branch_id":"a","destination_branch_id":"b"}`)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/transfers", body)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	for _, name := range []string{
		"http_server_request_duration_seconds",
		"http_server_request_size_bytes",
		"http_server_response_size_bytes",
	} {
		m := readMetric(t, reader, name)
		require.NotNil(t, m, name)
		hist, ok := m.Data.(metricdata.Histogram[float64])
		require.True(t, ok, name)
		require.Len(t, hist.DataPoints, 1, name)
		assert.Greater(t, hist.DataPoints[0].Sum, 0.0, name)
	}
}

func TestHTTPMetricsWithMeter_TracksActiveRequests(t *testing.T) {
	mp, reader := newManualMeter(t)
	r := metricsRouter(mp)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/assets/SIM-100", nil)
	r.ServeHTTP(w, req)

	m := readMetric(t, reader, "http_server_active_requests")
	require.NotNil(t, m)
	// The request finished, so increments and decrements cancel out.
	assert.Equal(t, int64(0), counterTotal(t, m))
}

func TestHTTPMetricsWithMeter_BranchAttribute(t *testing.T) {
	mp, reader := newManualMeter(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(JWTBranchIDKey, "branch-main")
		c.Next()
	})
	r.Use(HTTPMetricsWithMeter(mp.Meter("http.server"), true))
	r.GET("/api/v1/inventory", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"items": []string{}})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/inventory", nil)
	r.ServeHTTP(w, req)

	m := readMetric(t, reader, "http_server_request_total")
	require.NotNil(t, m)
	sum := m.Data.(metricdata.Sum[int64])
	require.Len(t, sum.DataPoints, 1)

	found := false
	for _, attr := range sum.DataPoints[0].Attributes.ToSlice() {
		if string(attr.Key) == "branch_id" {
			assert.Equal(t, "branch-main", attr.Value.AsString())
			found = true
		}
	}
	assert.True(t, found, "branch_id attribute missing")
}

func TestRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("matched route", func(t *testing.T) {
		r := gin.New()
		var route string
		r.GET("/api/v1/assets/:serial", func(c *gin.Context) {
			route = routePattern(c)
			c.Status(http.StatusOK)
		})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/assets/POS-9", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, "/api/v1/assets/:serial", route)
	})

	t.Run("unmatched route", func(t *testing.T) {
		r := gin.New()
		var route string
		r.NoRoute(func(c *gin.Context) {
			route = routePattern(c)
			c.Status(http.StatusNotFound)
		})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/nope", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, "unknown", route)
	})
}

func TestDefaultHTTPMetricsConfig(t *testing.T) {
	cfg := DefaultHTTPMetricsConfig()
	assert.Equal(t, "assetflow-backend", cfg.ServiceName)
	assert.True(t, cfg.Enabled)
	assert.Nil(t, cfg.MeterProvider)
}
