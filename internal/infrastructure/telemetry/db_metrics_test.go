package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func manualMeter(t *testing.T) (metric.Meter, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return provider.Meter("db.client.test"), reader
}

func collectMetric(t *testing.T, reader *sdkmetric.ManualReader, name string) (metricdata.Metrics, bool) {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func sumByAttr(t *testing.T, m metricdata.Metrics, key attribute.Key) map[string]int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	out := make(map[string]int64)
	for _, dp := range sum.DataPoints {
		label, _ := dp.Attributes.Value(key)
		out[label.AsString()] += dp.Value
	}
	return out
}

func TestDefaultDBMetricsConfig(t *testing.T) {
	cfg := DefaultDBMetricsConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThreshold)
	assert.Equal(t, 15*time.Second, cfg.PoolStatsInterval)
}

func TestNewDBMetrics_AppliesDefaults(t *testing.T) {
	meter, _ := manualMeter(t)

	m, err := NewDBMetrics(meter, DBMetricsConfig{Enabled: true}, nil)
	require.NoError(t, err)

	assert.NotNil(t, m.logger)
	assert.Equal(t, 200*time.Millisecond, m.config.SlowQueryThreshold)
	assert.Equal(t, 15*time.Second, m.config.PoolStatsInterval)
}

func TestRecordQuery(t *testing.T) {
	t.Run("counts statements by operation", func(t *testing.T) {
		meter, reader := manualMeter(t)
		m, err := NewDBMetrics(meter, DefaultDBMetricsConfig(), zap.NewNop())
		require.NoError(t, err)

		ctx := context.Background()
		m.RecordQuery(ctx, "select", "assets", time.Millisecond)
		m.RecordQuery(ctx, "SELECT", "assets", time.Millisecond)
		m.RecordQuery(ctx, "insert", "transfer_orders", time.Millisecond)
		m.RecordQuery(ctx, "", "assets", time.Millisecond)

		total, ok := collectMetric(t, reader, "db_query_total")
		require.True(t, ok)
		byOp := sumByAttr(t, total, AttrDBOperation)
		assert.Equal(t, int64(2), byOp["SELECT"])
		assert.Equal(t, int64(1), byOp["INSERT"])
		assert.Equal(t, int64(1), byOp["UNKNOWN"])
	})

	t.Run("records latency", func(t *testing.T) {
		meter, reader := manualMeter(t)
		m, err := NewDBMetrics(meter, DefaultDBMetricsConfig(), zap.NewNop())
		require.NoError(t, err)

		m.RecordQuery(context.Background(), "SELECT", "assets", 30*time.Millisecond)

		dur, ok := collectMetric(t, reader, "db_query_duration_seconds")
		require.True(t, ok)
		hist, ok := dur.Data.(metricdata.Histogram[float64])
		require.True(t, ok)
		require.Len(t, hist.DataPoints, 1)
		assert.InDelta(t, 0.03, hist.DataPoints[0].Sum, 0.001)
	})

	t.Run("slow statements bump the per-table counter", func(t *testing.T) {
		meter, reader := manualMeter(t)
		cfg := DBMetricsConfig{Enabled: true, SlowQueryThreshold: 10 * time.Millisecond}
		m, err := NewDBMetrics(meter, cfg, zap.NewNop())
		require.NoError(t, err)

		ctx := context.Background()
		m.RecordQuery(ctx, "SELECT", "debt_records", 50*time.Millisecond)
		m.RecordQuery(ctx, "SELECT", "", 50*time.Millisecond)
		m.RecordQuery(ctx, "SELECT", "assets", time.Millisecond)

		slow, ok := collectMetric(t, reader, "db_slow_query_total")
		require.True(t, ok)
		byTable := sumByAttr(t, slow, AttrDBTable)
		assert.Equal(t, int64(1), byTable["debt_records"])
		assert.Equal(t, int64(1), byTable["unknown"])
		assert.NotContains(t, byTable, "assets")
	})
}

func TestCollectPoolStats(t *testing.T) {
	meter, reader := manualMeter(t)
	m, err := NewDBMetrics(meter, DefaultDBMetricsConfig(), zap.NewNop())
	require.NoError(t, err)

	db := openTelemetryDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(7)
	m.SetSQLDB(sqlDB)

	m.collectPoolStats(context.Background())

	maxConns, ok := collectMetric(t, reader, "db_pool_connections_max")
	require.True(t, ok)
	maxGauge, ok := maxConns.Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, maxGauge.DataPoints, 1)
	assert.Equal(t, int64(7), maxGauge.DataPoints[0].Value)

	pool, ok := collectMetric(t, reader, "db_pool_connections")
	require.True(t, ok)
	gauge, ok := pool.Data.(metricdata.Gauge[int64])
	require.True(t, ok)

	states := make(map[string]bool)
	for _, dp := range gauge.DataPoints {
		state, _ := dp.Attributes.Value(AttrDBState)
		states[state.AsString()] = true
	}
	assert.True(t, states["idle"])
	assert.True(t, states["in_use"])
	assert.True(t, states["open"])
}

func TestStartPoolStatsCollection(t *testing.T) {
	t.Run("collects immediately on start", func(t *testing.T) {
		meter, reader := manualMeter(t)
		cfg := DBMetricsConfig{Enabled: true, PoolStatsInterval: time.Hour}
		m, err := NewDBMetrics(meter, cfg, zap.NewNop())
		require.NoError(t, err)

		db := openTelemetryDB(t)
		sqlDB, err := db.DB()
		require.NoError(t, err)
		m.SetSQLDB(sqlDB)

		m.StartPoolStatsCollection(context.Background())
		m.Stop()

		_, ok := collectMetric(t, reader, "db_pool_connections_max")
		assert.True(t, ok)
	})

	t.Run("refuses to start without a pool", func(t *testing.T) {
		meter, reader := manualMeter(t)
		m, err := NewDBMetrics(meter, DefaultDBMetricsConfig(), zap.NewNop())
		require.NoError(t, err)

		m.StartPoolStatsCollection(context.Background())
		m.Stop()

		_, ok := collectMetric(t, reader, "db_pool_connections_max")
		assert.False(t, ok)
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		meter, _ := manualMeter(t)
		cfg := DBMetricsConfig{Enabled: true, PoolStatsInterval: time.Hour}
		m, err := NewDBMetrics(meter, cfg, zap.NewNop())
		require.NoError(t, err)

		db := openTelemetryDB(t)
		sqlDB, err := db.DB()
		require.NoError(t, err)
		m.SetSQLDB(sqlDB)

		m.StartPoolStatsCollection(context.Background())
		m.Stop()
		m.Stop()
	})
}

func TestDBMetricsPlugin(t *testing.T) {
	meter, reader := manualMeter(t)
	m, err := NewDBMetrics(meter, DefaultDBMetricsConfig(), zap.NewNop())
	require.NoError(t, err)

	db := openTelemetryDB(t)
	require.NoError(t, db.Use(NewDBMetricsPlugin(m, zap.NewNop())))

	require.NoError(t, db.Create(&trackedAsset{SerialNumber: "SIM-44001", ModelCode: "NANO"}).Error)
	var found trackedAsset
	require.NoError(t, db.Where("serial_number = ?", "SIM-44001").First(&found).Error)
	require.NoError(t, db.Model(&found).Update("model_code", "MICRO").Error)
	require.NoError(t, db.Exec("DELETE FROM tracked_assets WHERE serial_number = ?", "SIM-44001").Error)

	total, ok := collectMetric(t, reader, "db_query_total")
	require.True(t, ok)
	byOp := sumByAttr(t, total, AttrDBOperation)
	assert.GreaterOrEqual(t, byOp["INSERT"], int64(1))
	assert.GreaterOrEqual(t, byOp["SELECT"], int64(1))
	assert.GreaterOrEqual(t, byOp["UPDATE"], int64(1))
	// raw Exec goes through the SQL sniffer
	assert.GreaterOrEqual(t, byOp["DELETE"], int64(1))
}

func TestDBMetricsPlugin_Name(t *testing.T) {
	plugin := NewDBMetricsPlugin(nil, nil)
	assert.Equal(t, "db_metrics", plugin.Name())
}

func TestRecordQuery_Concurrent(t *testing.T) {
	meter, reader := manualMeter(t)
	m, err := NewDBMetrics(meter, DefaultDBMetricsConfig(), zap.NewNop())
	require.NoError(t, err)

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 50; j++ {
				m.RecordQuery(context.Background(), "SELECT", "assets", time.Millisecond)
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	total, ok := collectMetric(t, reader, "db_query_total")
	require.True(t, ok)
	assert.Equal(t, int64(400), sumByAttr(t, total, AttrDBOperation)["SELECT"])
}

func TestDetectOperationType(t *testing.T) {
	cases := map[string]string{
		"SELECT * FROM assets":                     "SELECT",
		"  select id from parts":                   "SELECT",
		"INSERT INTO debt_records VALUES (?)":      "INSERT",
		"update assets set status = ?":             "UPDATE",
		"DELETE FROM transfer_orders WHERE id = ?": "DELETE",
		"PRAGMA foreign_keys = ON":                 "OTHER",
		"": "OTHER",
	}
	for sql, want := range cases {
		assert.Equal(t, want, detectOperationType(sql), sql)
	}
}

func TestRegisterDBMetrics(t *testing.T) {
	t.Run("disabled config returns nil metrics", func(t *testing.T) {
		db := openTelemetryDB(t)

		m, err := RegisterDBMetrics(db, nil, DBMetricsConfig{Enabled: false}, zap.NewNop())
		require.NoError(t, err)
		assert.Nil(t, m)
	})

	t.Run("missing meter provider returns nil metrics", func(t *testing.T) {
		db := openTelemetryDB(t)

		m, err := RegisterDBMetrics(db, nil, DefaultDBMetricsConfig(), zap.NewNop())
		require.NoError(t, err)
		assert.Nil(t, m)
	})

	t.Run("disabled meter provider returns nil metrics", func(t *testing.T) {
		db := openTelemetryDB(t)
		mp, err := NewMeterProvider(context.Background(), MetricsConfig{Enabled: false}, zap.NewNop())
		require.NoError(t, err)

		m, err := RegisterDBMetrics(db, mp, DefaultDBMetricsConfig(), zap.NewNop())
		require.NoError(t, err)
		assert.Nil(t, m)
	})
}
