package logger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newGormObserver(t *testing.T, level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), logs
}

func TestNewGormLogger_Defaults(t *testing.T) {
	gl, _ := newGormObserver(t, gormlogger.Warn)

	assert.Equal(t, gormlogger.Warn, gl.logLevel)
	assert.Equal(t, 200*time.Millisecond, gl.slowThreshold)
	assert.True(t, gl.ignoreRecordNotFoundError)
}

func TestNewGormLogger_Options(t *testing.T) {
	gl, _ := newGormObserver(t, gormlogger.Info,
		WithSlowThreshold(50*time.Millisecond),
		WithIgnoreRecordNotFoundError(false),
	)

	assert.Equal(t, 50*time.Millisecond, gl.slowThreshold)
	assert.False(t, gl.ignoreRecordNotFoundError)
}

func TestLogMode_ReturnsClone(t *testing.T) {
	gl, _ := newGormObserver(t, gormlogger.Warn)

	quieter := gl.LogMode(gormlogger.Silent)

	assert.Equal(t, gormlogger.Warn, gl.logLevel)
	assert.Equal(t, gormlogger.Silent, quieter.(*GormLogger).logLevel)
}

func TestLeveledMessages(t *testing.T) {
	ctx := context.Background()

	t.Run("emitted at or above the configured level", func(t *testing.T) {
		gl, logs := newGormObserver(t, gormlogger.Info)

		gl.Info(ctx, "migrating %s", "assets")
		gl.Warn(ctx, "retrying %s", "lock")
		gl.Error(ctx, "constraint %s", "violated")

		assert.Equal(t, 3, logs.Len())
	})

	t.Run("suppressed below the configured level", func(t *testing.T) {
		gl, logs := newGormObserver(t, gormlogger.Error)

		gl.Info(ctx, "dropped")
		gl.Warn(ctx, "dropped")
		gl.Error(ctx, "kept")

		assert.Equal(t, 1, logs.Len())
	})
}

func TestTrace(t *testing.T) {
	ctx := context.Background()
	statement := func() (string, int64) {
		return "SELECT * FROM assets WHERE serial_number = ?", 1
	}

	t.Run("logs queries at debug when level is info", func(t *testing.T) {
		gl, logs := newGormObserver(t, gormlogger.Info)

		gl.Trace(ctx, time.Now(), statement, nil)

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, zap.DebugLevel, entry.Level)
		assert.Equal(t, "query", entry.Message)
		assert.Equal(t, "SELECT * FROM assets WHERE serial_number = ?", fieldValue(t, entry, "sql"))
	})

	t.Run("silent level logs nothing", func(t *testing.T) {
		gl, logs := newGormObserver(t, gormlogger.Silent)

		gl.Trace(ctx, time.Now(), statement, nil)

		assert.Zero(t, logs.Len())
	})

	t.Run("slow queries log at warn", func(t *testing.T) {
		gl, logs := newGormObserver(t, gormlogger.Warn, WithSlowThreshold(time.Nanosecond))

		gl.Trace(ctx, time.Now().Add(-time.Millisecond), statement, nil)

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, zap.WarnLevel, entry.Level)
		assert.Contains(t, entry.Message, "slow query")
	})

	t.Run("errors log at error", func(t *testing.T) {
		gl, logs := newGormObserver(t, gormlogger.Error)

		gl.Trace(ctx, time.Now(), statement, assert.AnError)

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, zap.ErrorLevel, entry.Level)
		assert.Equal(t, "query failed", entry.Message)
	})

	t.Run("record not found stays quiet by default", func(t *testing.T) {
		gl, logs := newGormObserver(t, gormlogger.Error)

		gl.Trace(ctx, time.Now(), statement, gormlogger.ErrRecordNotFound)

		assert.Zero(t, logs.Len())
	})

	t.Run("record not found logs when configured", func(t *testing.T) {
		gl, logs := newGormObserver(t, gormlogger.Error, WithIgnoreRecordNotFoundError(false))

		gl.Trace(ctx, time.Now(), statement, gormlogger.ErrRecordNotFound)

		assert.Equal(t, 1, logs.Len())
	})

	t.Run("request id from context rides along", func(t *testing.T) {
		gl, logs := newGormObserver(t, gormlogger.Info)
		reqCtx := context.WithValue(ctx, RequestIDKey, "req-8080")

		gl.Trace(reqCtx, time.Now(), statement, nil)

		assert.Equal(t, "req-8080", fieldValue(t, logs.All()[0], "request_id"))
	})
}

func TestMapGormLogLevel(t *testing.T) {
	cases := map[string]gormlogger.LogLevel{
		"silent":  gormlogger.Silent,
		"error":   gormlogger.Error,
		"warn":    gormlogger.Warn,
		"info":    gormlogger.Info,
		"debug":   gormlogger.Info,
		"":        gormlogger.Warn,
		"unknown": gormlogger.Warn,
	}
	for in, want := range cases {
		assert.Equal(t, want, MapGormLogLevel(in), in)
	}
}
