package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type movementEvent struct {
	shared.BaseDomainEvent
	Serial string `json:"serial"`
}

func movement(eventType string) *movementEvent {
	return &movementEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Asset", uuid.New()),
		Serial:          "POS-31001",
	}
}

// recordingHandler collects the events it sees; an injected error
// simulates a failing subscriber.
type recordingHandler struct {
	mu         sync.Mutex
	eventTypes []string
	seen       []shared.DomainEvent
	err        error
}

func recorder(eventTypes ...string) *recordingHandler {
	return &recordingHandler{eventTypes: eventTypes}
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = append(h.seen, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.eventTypes }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.seen)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	h := recorder("asset.moved")
	bus.Subscribe(h, "asset.moved")

	require.NoError(t, bus.Publish(context.Background(), movement("asset.moved")))
	assert.Equal(t, 1, h.count())
}

func TestInMemoryEventBus_PublishBatch(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	h := recorder("asset.moved")
	bus.Subscribe(h, "asset.moved")

	err := bus.Publish(context.Background(), movement("asset.moved"), movement("asset.moved"))
	require.NoError(t, err)
	assert.Equal(t, 2, h.count())
}

func TestInMemoryEventBus_FanOut(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	ledger := recorder("asset.moved")
	audit := recorder() // wildcard
	other := recorder("stock.deducted")
	bus.Subscribe(ledger, "asset.moved")
	bus.Subscribe(audit)
	bus.Subscribe(other, "stock.deducted")

	require.NoError(t, bus.Publish(context.Background(), movement("asset.moved")))

	assert.Equal(t, 1, ledger.count())
	assert.Equal(t, 1, audit.count())
	assert.Equal(t, 0, other.count())
}

func TestInMemoryEventBus_HandlerErrorDoesNotStopDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := recorder("asset.moved")
	failing.err = errors.New("ledger offline")
	healthy := recorder("asset.moved")
	bus.Subscribe(failing, "asset.moved")
	bus.Subscribe(healthy, "asset.moved")

	require.NoError(t, bus.Publish(context.Background(), movement("asset.moved")))
	assert.Equal(t, 1, failing.count())
	assert.Equal(t, 1, healthy.count())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	h := recorder("asset.moved")
	bus.Subscribe(h, "asset.moved")

	_ = bus.Publish(context.Background(), movement("asset.moved"))
	require.Equal(t, 1, h.count())

	bus.Unsubscribe(h)
	_ = bus.Publish(context.Background(), movement("asset.moved"))
	assert.Equal(t, 1, h.count())
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	ctx := context.Background()
	require.NoError(t, bus.Start(ctx))

	h := recorder("asset.moved")
	bus.Subscribe(h, "asset.moved")
	require.NoError(t, bus.Publish(ctx, movement("asset.moved")))
	assert.Equal(t, 1, h.count())

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(stopCtx))
}
