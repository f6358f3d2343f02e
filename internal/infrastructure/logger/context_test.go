package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observedLogger(t *testing.T) (*zap.Logger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

func fieldValue(t *testing.T, entry observer.LoggedEntry, key string) string {
	t.Helper()
	for _, f := range entry.Context {
		if f.Key == key {
			return f.String
		}
	}
	t.Fatalf("field %s not on entry", key)
	return ""
}

func TestWithContext_RoundTrip(t *testing.T) {
	l, _ := observedLogger(t)
	ctx := WithContext(context.Background(), l)

	assert.Same(t, l, FromContext(ctx))
}

func TestFromContext_Fallbacks(t *testing.T) {
	t.Run("empty context gets a no-op logger", func(t *testing.T) {
		l := FromContext(context.Background())
		require.NotNil(t, l)
		l.Info("must not panic")
	})

	t.Run("wrong value type gets a no-op logger", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), LoggerKey, "not a logger")
		require.NotNil(t, FromContext(ctx))
	})
}

func TestWithRequestID(t *testing.T) {
	l, logs := observedLogger(t)

	ctx, enriched := WithRequestID(context.Background(), l, "req-4021")

	assert.Equal(t, "req-4021", GetRequestID(ctx))
	enriched.Info("received")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "req-4021", fieldValue(t, logs.All()[0], "request_id"))
}

func TestWithBranchID(t *testing.T) {
	l, logs := observedLogger(t)

	ctx, enriched := WithBranchID(context.Background(), l, "branch-central")

	assert.Equal(t, "branch-central", GetBranchID(ctx))
	enriched.Info("scoped")
	assert.Equal(t, "branch-central", fieldValue(t, logs.All()[0], "branch_id"))
}

func TestWithUserID(t *testing.T) {
	l, logs := observedLogger(t)

	ctx, enriched := WithUserID(context.Background(), l, "usr-907")

	assert.Equal(t, "usr-907", GetUserID(ctx))
	enriched.Info("authenticated")
	assert.Equal(t, "usr-907", fieldValue(t, logs.All()[0], "user_id"))
}

func TestEnrichmentAccumulates(t *testing.T) {
	l, logs := observedLogger(t)

	ctx, _ := WithRequestID(context.Background(), l, "req-1")
	ctx, _ = WithBranchID(ctx, FromContext(ctx), "branch-east")
	ctx, _ = WithUserID(ctx, FromContext(ctx), "usr-2")

	// FromContext hands back the logger carrying all three fields.
	FromContext(ctx).Info("transfer created")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "req-1", fieldValue(t, entry, "request_id"))
	assert.Equal(t, "branch-east", fieldValue(t, entry, "branch_id"))
	assert.Equal(t, "usr-2", fieldValue(t, entry, "user_id"))
}

func TestGetters_Missing(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetBranchID(ctx))
	assert.Empty(t, GetUserID(ctx))
}

func TestWithTraceContext(t *testing.T) {
	t.Run("no span leaves the logger unchanged", func(t *testing.T) {
		l, logs := observedLogger(t)

		WithTraceContext(context.Background(), l).Info("plain")

		entry := logs.All()[0]
		for _, f := range entry.Context {
			assert.NotEqual(t, "trace_id", f.Key)
		}
	})

	t.Run("active span contributes trace and span ids", func(t *testing.T) {
		l, logs := observedLogger(t)
		tp := sdktrace.NewTracerProvider()
		ctx, span := tp.Tracer("test").Start(context.Background(), "asset.retire")
		defer span.End()

		WithTraceContext(ctx, l).Info("correlated")

		entry := logs.All()[0]
		assert.Equal(t, span.SpanContext().TraceID().String(), fieldValue(t, entry, "trace_id"))
		assert.Equal(t, span.SpanContext().SpanID().String(), fieldValue(t, entry, "span_id"))
	})
}
