package inventory

import (
	"time"

	"github.com/assetflow/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreatePartRequest registers a part in a branch's inventory catalog
type CreatePartRequest struct {
	PartCode    string          `json:"part_code" binding:"required"`
	PartName    string          `json:"part_name" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	MinQuantity int64           `json:"min_quantity" binding:"min=0"`
}

// ReplenishRequest adds stock to a branch
type ReplenishRequest struct {
	PartCode string `json:"part_code" binding:"required"`
	Quantity int64  `json:"quantity" binding:"required,min=1"`
	Notes    string `json:"notes"`
}

// AdjustRequest corrects stock after a physical count. Direction is derived
// from the sign of the delta.
type AdjustRequest struct {
	PartCode string `json:"part_code" binding:"required"`
	Delta    int64  `json:"delta" binding:"required"`
	Notes    string `json:"notes" binding:"required"`
}

// InventoryItemResponse is the API representation of a stock line
type InventoryItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	BranchID    uuid.UUID       `json:"branch_id"`
	PartCode    string          `json:"part_code"`
	PartName    string          `json:"part_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	MinQuantity decimal.Decimal `json:"min_quantity"`
	LowStock    bool            `json:"low_stock"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// StockMovementResponse is one journal line in a response
type StockMovementResponse struct {
	ID        uuid.UUID       `json:"id"`
	BranchID  uuid.UUID       `json:"branch_id"`
	PartCode  string          `json:"part_code"`
	Direction string          `json:"direction"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Source    string          `json:"source"`
	SourceID  *uuid.UUID      `json:"source_id,omitempty"`
	Billable  bool            `json:"billable"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// ToInventoryItemResponse converts a stock line to its API representation
func ToInventoryItemResponse(item *inventory.InventoryItem) InventoryItemResponse {
	lowStock := !item.MinQuantity.IsZero() && item.MinQuantity.GreaterThanOrEqual(item.Quantity)
	return InventoryItemResponse{
		ID:          item.ID,
		BranchID:    item.BranchID,
		PartCode:    item.PartCode,
		PartName:    item.PartName,
		Quantity:    item.Quantity.Value(),
		UnitPrice:   item.UnitPrice,
		MinQuantity: item.MinQuantity.Value(),
		LowStock:    lowStock,
		UpdatedAt:   item.UpdatedAt,
	}
}

// ToStockMovementResponse converts a journal line to its API representation
func ToStockMovementResponse(m *inventory.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:        m.ID,
		BranchID:  m.BranchID,
		PartCode:  m.PartCode,
		Direction: string(m.Direction),
		Quantity:  m.Quantity.Value(),
		UnitPrice: m.UnitPrice,
		Source:    string(m.Source),
		SourceID:  m.SourceID,
		Billable:  m.Billable,
		Notes:     m.Notes,
		CreatedAt: m.CreatedAt,
	}
}
