package inventory

import (
	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/assetflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Event type identifiers for inventory events
const (
	EventTypeStockIncreased      = "inventory.stock_increased"
	EventTypeStockDeducted       = "inventory.stock_deducted"
	EventTypeStockBelowThreshold = "inventory.stock_below_threshold"
)

// StockIncreasedEvent is raised when a branch receives stock
type StockIncreasedEvent struct {
	shared.BaseDomainEvent
	BranchID uuid.UUID            `json:"branch_id"`
	PartCode string               `json:"part_code"`
	Quantity valueobject.Quantity `json:"quantity"`
}

func NewStockIncreasedEvent(item *InventoryItem, quantity valueobject.Quantity) *StockIncreasedEvent {
	return &StockIncreasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockIncreased, "InventoryItem", item.ID),
		BranchID:        item.BranchID,
		PartCode:        item.PartCode,
		Quantity:        quantity,
	}
}

// StockDeductedEvent is raised when stock leaves a branch
type StockDeductedEvent struct {
	shared.BaseDomainEvent
	BranchID uuid.UUID            `json:"branch_id"`
	PartCode string               `json:"part_code"`
	Quantity valueobject.Quantity `json:"quantity"`
}

func NewStockDeductedEvent(item *InventoryItem, quantity valueobject.Quantity) *StockDeductedEvent {
	return &StockDeductedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockDeducted, "InventoryItem", item.ID),
		BranchID:        item.BranchID,
		PartCode:        item.PartCode,
		Quantity:        quantity,
	}
}

// StockBelowThresholdEvent is raised when a deduction leaves the on-hand
// quantity at or below the configured minimum level
type StockBelowThresholdEvent struct {
	shared.BaseDomainEvent
	BranchID    uuid.UUID            `json:"branch_id"`
	PartCode    string               `json:"part_code"`
	PartName    string               `json:"part_name"`
	Quantity    valueobject.Quantity `json:"quantity"`
	MinQuantity valueobject.Quantity `json:"min_quantity"`
}

func NewStockBelowThresholdEvent(item *InventoryItem) *StockBelowThresholdEvent {
	return &StockBelowThresholdEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowThreshold, "InventoryItem", item.ID),
		BranchID:        item.BranchID,
		PartCode:        item.PartCode,
		PartName:        item.PartName,
		Quantity:        item.Quantity,
		MinQuantity:     item.MinQuantity,
	}
}
