package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type trackedAsset struct {
	ID           uint   `gorm:"primaryKey"`
	SerialNumber string `gorm:"size:64;uniqueIndex"`
	ModelCode    string `gorm:"size:32"`
	CreatedAt    time.Time
}

func openTelemetryDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&trackedAsset{}))
	return db
}

// tracedStatement builds a gorm session carrying a live recording span,
// the way otelgorm leaves the statement context mid-query.
func tracedStatement(t *testing.T, db *gorm.DB) (*gorm.DB, *tracetest.SpanRecorder, func() sdktrace.ReadOnlySpan) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	ctx, span := tp.Tracer("test").Start(context.Background(), "gorm.Query")

	session := db.Session(&gorm.Session{NewDB: true}).WithContext(ctx)
	session.Statement.Context = ctx

	return session, recorder, func() sdktrace.ReadOnlySpan {
		span.End()
		spans := recorder.Ended()
		require.Len(t, spans, 1)
		return spans[0]
	}
}

func spanAttrValue(span sdktrace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()

	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "postgresql", cfg.DBSystem)
}

func TestNewDBTracingPlugin_AppliesDefaults(t *testing.T) {
	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true}, nil)

	assert.NotNil(t, plugin.logger)
	assert.Equal(t, 200*time.Millisecond, plugin.config.SlowQueryThresh)
}

func TestRegisterOtelGorm(t *testing.T) {
	t.Run("disabled config registers nothing", func(t *testing.T) {
		db := openTelemetryDB(t)
		plugin := NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop())

		require.NoError(t, plugin.RegisterOtelGorm(db))
		assert.Nil(t, db.Callback().Query().Get("db_trace:after_query"))
	})

	t.Run("enabled config hooks every statement kind", func(t *testing.T) {
		db := openTelemetryDB(t)
		cfg := DefaultDBTracingConfig()
		cfg.Enabled = true
		cfg.DBSystem = "sqlite"

		require.NoError(t, NewDBTracingPlugin(cfg, zap.NewNop()).RegisterOtelGorm(db))

		assert.NotNil(t, db.Callback().Create().Get("db_trace:before_create"))
		assert.NotNil(t, db.Callback().Query().Get("db_trace:after_query"))
		assert.NotNil(t, db.Callback().Raw().Get("db_trace:after_raw"))
	})

	t.Run("full SQL mode still registers", func(t *testing.T) {
		db := openTelemetryDB(t)
		cfg := DBTracingConfig{Enabled: true, LogFullSQL: true, DBSystem: "sqlite"}

		require.NoError(t, NewDBTracingPlugin(cfg, zap.NewNop()).RegisterOtelGorm(db))
	})

	t.Run("second registration on the same db fails", func(t *testing.T) {
		db := openTelemetryDB(t)
		cfg := DBTracingConfig{Enabled: true, DBSystem: "sqlite"}

		require.NoError(t, NewDBTracingPlugin(cfg, zap.NewNop()).RegisterOtelGorm(db))
		assert.Error(t, NewDBTracingPlugin(cfg, zap.NewNop()).RegisterOtelGorm(db))
	})
}

func TestMarkStart_StampsStatementContext(t *testing.T) {
	db := openTelemetryDB(t)
	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true}, zap.NewNop())

	session := db.Session(&gorm.Session{NewDB: true})
	session.Statement.Context = context.Background()
	plugin.markStart(session)

	_, ok := session.Statement.Context.Value(queryStartTimeKey).(time.Time)
	assert.True(t, ok)
}

func TestAnnotateSpan(t *testing.T) {
	t.Run("rows affected and table name land on the span", func(t *testing.T) {
		db := openTelemetryDB(t)
		plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true, SlowQueryThresh: time.Second}, zap.NewNop())

		session, _, finish := tracedStatement(t, db)
		session.Statement.RowsAffected = 3
		session.Statement.Table = "assets"
		plugin.annotateSpan(session)

		span := finish()
		rows, ok := spanAttrValue(span, "db.rows_affected")
		require.True(t, ok)
		assert.Equal(t, int64(3), rows.AsInt64())
		table, ok := spanAttrValue(span, "db.sql.table")
		require.True(t, ok)
		assert.Equal(t, "assets", table.AsString())
	})

	t.Run("statement errors mark the span", func(t *testing.T) {
		db := openTelemetryDB(t)
		plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true, SlowQueryThresh: time.Second}, zap.NewNop())

		session, _, finish := tracedStatement(t, db)
		session.Error = errors.New("UNIQUE constraint failed: assets.serial_number")
		plugin.annotateSpan(session)

		span := finish()
		assert.Equal(t, codes.Error, span.Status().Code)
		require.NotEmpty(t, span.Events())
		assert.Equal(t, "exception", span.Events()[0].Name)
	})

	t.Run("record not found is not a span error", func(t *testing.T) {
		db := openTelemetryDB(t)
		plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true, SlowQueryThresh: time.Second}, zap.NewNop())

		session, _, finish := tracedStatement(t, db)
		session.Error = gorm.ErrRecordNotFound
		plugin.annotateSpan(session)

		assert.Equal(t, codes.Unset, finish().Status().Code)
	})

	t.Run("slow statements get the warning event", func(t *testing.T) {
		db := openTelemetryDB(t)
		plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true, SlowQueryThresh: time.Nanosecond}, zap.NewNop())

		session, _, finish := tracedStatement(t, db)
		session.Statement.Context = WithQueryStartTime(session.Statement.Context)
		time.Sleep(time.Millisecond)
		plugin.annotateSpan(session)

		span := finish()
		slow, ok := spanAttrValue(span, "db.slow_query")
		require.True(t, ok)
		assert.True(t, slow.AsBool())

		var sawWarning bool
		for _, ev := range span.Events() {
			if ev.Name == "slow_query_warning" {
				sawWarning = true
			}
		}
		assert.True(t, sawWarning)
	})

	t.Run("fast statements stay unannotated", func(t *testing.T) {
		db := openTelemetryDB(t)
		plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true, SlowQueryThresh: time.Minute}, zap.NewNop())

		session, _, finish := tracedStatement(t, db)
		session.Statement.Context = WithQueryStartTime(session.Statement.Context)
		plugin.annotateSpan(session)

		_, ok := spanAttrValue(finish(), "db.slow_query")
		assert.False(t, ok)
	})

	t.Run("no context is a no-op", func(t *testing.T) {
		db := openTelemetryDB(t)
		plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true}, zap.NewNop())

		session := db.Session(&gorm.Session{NewDB: true})
		session.Statement.Context = nil
		plugin.annotateSpan(session)
	})
}

func TestWithQueryStartTime(t *testing.T) {
	ctx := WithQueryStartTime(context.Background())

	start, ok := ctx.Value(queryStartTimeKey).(time.Time)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now(), start, time.Second)
}

func TestRegisterOtelGorm_SpansFollowQueries(t *testing.T) {
	db := openTelemetryDB(t)
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	// otelgorm picks its tracer off the global provider.
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	cfg := DBTracingConfig{Enabled: true, DBSystem: "sqlite", SlowQueryThresh: time.Second}
	require.NoError(t, NewDBTracingPlugin(cfg, zap.NewNop()).RegisterOtelGorm(db))

	ctx, root := tp.Tracer("test").Start(context.Background(), "transfer.receive")
	require.NoError(t, db.WithContext(ctx).Create(&trackedAsset{SerialNumber: "POS-31001", ModelCode: "V2S"}).Error)

	var found trackedAsset
	require.NoError(t, db.WithContext(ctx).Where("serial_number = ?", "POS-31001").First(&found).Error)
	assert.Equal(t, "V2S", found.ModelCode)
	root.End()

	// otelgorm opened child spans under the root for both statements.
	var children int
	for _, span := range recorder.Ended() {
		if span.Parent().SpanID() == root.SpanContext().SpanID() {
			children++
		}
	}
	assert.GreaterOrEqual(t, children, 2)
}

func BenchmarkAnnotateSpan(b *testing.B) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		b.Fatal(err)
	}

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	ctx, span := tp.Tracer("bench").Start(context.Background(), "gorm.Query")
	defer span.End()

	session := db.Session(&gorm.Session{NewDB: true})
	session.Statement.Context = WithQueryStartTime(ctx)
	session.Statement.RowsAffected = 1
	session.Statement.Table = "assets"

	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true, SlowQueryThresh: time.Second}, zap.NewNop())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		plugin.annotateSpan(session)
	}
}
