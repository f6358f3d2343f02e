package inventory

import (
	"context"
	"fmt"

	"github.com/assetflow/backend/internal/domain/inventory"
	"github.com/assetflow/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LowStockHandler reacts to StockBelowThreshold events by alerting the
// owning branch. Delivery failures are logged and dropped; event handling
// never fails the originating transaction.
type LowStockHandler struct {
	logger   *zap.Logger
	notifier shared.Notifier
}

// NewLowStockHandler creates a new handler for low-stock events
func NewLowStockHandler(logger *zap.Logger) *LowStockHandler {
	return &LowStockHandler{logger: logger}
}

// WithNotifier sets the branch notifier
func (h *LowStockHandler) WithNotifier(notifier shared.Notifier) *LowStockHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockBelowThreshold}
}

// Handle processes a StockBelowThresholdEvent
func (h *LowStockHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	thresholdEvent, ok := event.(*inventory.StockBelowThresholdEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			inventory.EventTypeStockBelowThreshold, event.EventType())
	}

	h.logger.Warn("stock below threshold",
		zap.String("branch_id", thresholdEvent.BranchID.String()),
		zap.String("part_code", thresholdEvent.PartCode),
		zap.String("quantity", thresholdEvent.Quantity.String()),
		zap.String("min_quantity", thresholdEvent.MinQuantity.String()),
	)

	if h.notifier != nil {
		h.notifier.Notify(ctx, shared.Notification{
			BranchID: thresholdEvent.BranchID,
			Type:     shared.NotificationLowStock,
			Title:    "Low stock: " + thresholdEvent.PartCode,
			Message: fmt.Sprintf("%s at %s, minimum is %s",
				thresholdEvent.PartName, thresholdEvent.Quantity, thresholdEvent.MinQuantity),
			Payload: map[string]interface{}{
				"part_code": thresholdEvent.PartCode,
				"quantity":  thresholdEvent.Quantity.String(),
			},
		})
	}
	return nil
}

var _ shared.EventHandler = (*LowStockHandler)(nil)
