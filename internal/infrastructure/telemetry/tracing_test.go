package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/assetflow/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func recordingTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func attrMap(span sdktrace.ReadOnlySpan) map[string]interface{} {
	m := make(map[string]interface{}, len(span.Attributes()))
	for _, a := range span.Attributes() {
		m[string(a.Key)] = a.Value.AsInterface()
	}
	return m
}

func TestStartSpan(t *testing.T) {
	t.Run("records name and default kind", func(t *testing.T) {
		sr := recordingTracer(t)

		_, span := telemetry.StartSpan(context.Background(), "asset.register")
		span.End()

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, "asset.register", spans[0].Name())
		assert.Equal(t, trace.SpanKindInternal, spans[0].SpanKind())
	})

	t.Run("applies options", func(t *testing.T) {
		sr := recordingTracer(t)

		_, span := telemetry.StartSpan(context.Background(), "transfer.dispatch",
			telemetry.WithAttribute(telemetry.SpanAttrOrderNumber, "TRF-20260830-0001"),
			telemetry.WithSpanKind(trace.SpanKindServer),
		)
		span.End()

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind())
		assert.Equal(t, "TRF-20260830-0001", attrMap(spans[0])[telemetry.SpanAttrOrderNumber])
	})

	t.Run("child span joins the parent trace", func(t *testing.T) {
		sr := recordingTracer(t)

		ctx, parent := telemetry.StartSpan(context.Background(), "maintenance.settle")
		_, child := telemetry.StartSpan(ctx, "inventory.deduct")
		child.End()
		parent.End()

		spans := sr.Ended()
		require.Len(t, spans, 2)
		assert.Equal(t, spans[1].SpanContext().TraceID(), spans[0].SpanContext().TraceID())
		assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())
	})
}

func TestStartServiceSpan(t *testing.T) {
	sr := recordingTracer(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "transfer_order", "create")
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "transfer_order.create", spans[0].Name())
}

func TestSetAttributes(t *testing.T) {
	t.Run("pairs become typed attributes", func(t *testing.T) {
		sr := recordingTracer(t)

		_, span := telemetry.StartSpan(context.Background(), "maintenance.diagnose")
		telemetry.SetAttributes(span,
			telemetry.SpanAttrSerialNumber, "SN-1001",
			telemetry.SpanAttrQuantity, 2,
			"billable", true,
			"labor_cost", 19.5,
		)
		span.End()

		got := attrMap(sr.Ended()[0])
		assert.Equal(t, "SN-1001", got[telemetry.SpanAttrSerialNumber])
		assert.Equal(t, int64(2), got[telemetry.SpanAttrQuantity])
		assert.Equal(t, true, got["billable"])
		assert.Equal(t, 19.5, got["labor_cost"])
	})

	t.Run("non-string keys are skipped", func(t *testing.T) {
		sr := recordingTracer(t)

		_, span := telemetry.StartSpan(context.Background(), "debt.record_payment")
		telemetry.SetAttributes(span, 42, "ignored", "amount", "60.00")
		span.End()

		got := attrMap(sr.Ended()[0])
		assert.Equal(t, "60.00", got["amount"])
		assert.Len(t, got, 1)
	})

	t.Run("nil span is a no-op", func(t *testing.T) {
		telemetry.SetAttributes(nil, "key", "value")
		telemetry.SetAttribute(nil, "key", "value")
	})
}

func TestToAttributeConversions(t *testing.T) {
	sr := recordingTracer(t)

	id := uuid.New()
	_, span := telemetry.StartSpan(context.Background(), "asset.lookup")
	telemetry.SetAttributes(span,
		"asset_id", id,
		"serials", []string{"SN-1", "SN-2"},
		"counts", []int64{1, 2, 3},
		"ratio", 0.25,
		"attempts", int64(4),
	)
	span.End()

	got := attrMap(sr.Ended()[0])
	// uuid.UUID goes through fmt.Stringer.
	assert.Equal(t, id.String(), got["asset_id"])
	assert.Equal(t, []string{"SN-1", "SN-2"}, got["serials"])
	assert.Equal(t, []int64{1, 2, 3}, got["counts"])
	assert.Equal(t, 0.25, got["ratio"])
	assert.Equal(t, int64(4), got["attempts"])
}

func TestRecordError(t *testing.T) {
	t.Run("records the error and flips status", func(t *testing.T) {
		sr := recordingTracer(t)

		_, span := telemetry.StartSpan(context.Background(), "transfer.receive")
		telemetry.RecordError(span, errors.New("serial not on manifest"))
		span.End()

		ended := sr.Ended()[0]
		assert.Equal(t, codes.Error, ended.Status().Code)
		assert.Equal(t, "serial not on manifest", ended.Status().Description)
		require.Len(t, ended.Events(), 1)
		assert.Equal(t, "exception", ended.Events()[0].Name)
	})

	t.Run("nil error and nil span are no-ops", func(t *testing.T) {
		sr := recordingTracer(t)

		_, span := telemetry.StartSpan(context.Background(), "noop")
		telemetry.RecordError(span, nil)
		telemetry.RecordError(nil, errors.New("dropped"))
		span.End()

		assert.NotEqual(t, codes.Error, sr.Ended()[0].Status().Code)
	})
}

func TestSetOK(t *testing.T) {
	sr := recordingTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "approval.approve")
	telemetry.SetOK(span)
	span.End()

	assert.Equal(t, codes.Ok, sr.Ended()[0].Status().Code)
}

func TestAddEvent(t *testing.T) {
	sr := recordingTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "maintenance.settle")
	telemetry.AddEvent(span, "stock_deducted",
		telemetry.SpanAttrPartCode, "SCRN-52",
		telemetry.SpanAttrQuantity, 2,
	)
	span.End()

	events := sr.Ended()[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "stock_deducted", events[0].Name)

	found := false
	for _, a := range events[0].Attributes {
		if string(a.Key) == telemetry.SpanAttrPartCode {
			assert.Equal(t, "SCRN-52", a.Value.AsString())
			found = true
		}
	}
	assert.True(t, found)
}

func TestTraceAndSpanIDs(t *testing.T) {
	t.Run("from an active span", func(t *testing.T) {
		recordingTracer(t)

		ctx, span := telemetry.StartSpan(context.Background(), "asset.history")
		defer span.End()

		assert.Equal(t, span.SpanContext().TraceID().String(), telemetry.GetTraceID(ctx))
		assert.Equal(t, span.SpanContext().SpanID().String(), telemetry.GetSpanID(ctx))
	})

	t.Run("empty without a span", func(t *testing.T) {
		ctx := context.Background()
		assert.Empty(t, telemetry.GetTraceID(ctx))
		assert.Empty(t, telemetry.GetSpanID(ctx))
	})
}

func TestContextWithSpan(t *testing.T) {
	recordingTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "carrier")
	defer span.End()

	ctx := telemetry.ContextWithSpan(context.Background(), span)
	assert.Equal(t, span, telemetry.SpanFromContext(ctx))
}
