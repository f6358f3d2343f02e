package inventory

import (
	"fmt"
	"time"

	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/assetflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryItem is the per-branch quantity of one consumable part.
// It is the aggregate root for inventory operations; the composite
// identifier is BranchID + PartCode. The quantity never goes negative:
// a deduction that would cross zero is rejected whole.
type InventoryItem struct {
	shared.BaseAggregateRoot
	BranchID    uuid.UUID
	PartCode    string
	PartName    string
	Quantity    valueobject.Quantity
	UnitPrice   decimal.Decimal
	MinQuantity valueobject.Quantity // low-stock alert threshold
}

// NewInventoryItem creates a new inventory item for a branch-part combination
func NewInventoryItem(branchID uuid.UUID, partCode, partName string, unitPrice decimal.Decimal) (*InventoryItem, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if partCode == "" {
		return nil, shared.NewDomainError("INVALID_PART", "Part code cannot be empty")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	return &InventoryItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BranchID:          branchID,
		PartCode:          partCode,
		PartName:          partName,
		Quantity:          valueobject.ZeroQuantity(),
		UnitPrice:         unitPrice,
		MinQuantity:       valueobject.ZeroQuantity(),
	}, nil
}

// SetMinQuantity sets the low-stock alert threshold
func (i *InventoryItem) SetMinQuantity(min valueobject.Quantity) {
	i.MinQuantity = min
	i.UpdatedAt = time.Now()
}

// SetUnitPrice updates the part's unit price
func (i *InventoryItem) SetUnitPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	i.UnitPrice = price
	i.UpdatedAt = time.Now()
	return nil
}

// Increase adds stock to the branch (import, replenishment, adjustment)
func (i *InventoryItem) Increase(quantity valueobject.Quantity) error {
	if quantity.IsZero() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	i.Quantity = i.Quantity.Add(quantity)
	i.UpdatedAt = time.Now()
	i.AddDomainEvent(NewStockIncreasedEvent(i, quantity))
	return nil
}

// Deduct removes stock from the branch. A request exceeding the available
// quantity is rejected as INSUFFICIENT_STOCK naming the shortfall; nothing
// is written. Crossing the minimum level raises a StockBelowThreshold event.
func (i *InventoryItem) Deduct(quantity valueobject.Quantity) error {
	if quantity.IsZero() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if i.Quantity.LessThan(quantity) {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Part %s: requested %s, available %s", i.PartCode, quantity, i.Quantity))
	}

	remaining, err := i.Quantity.Sub(quantity)
	if err != nil {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Part %s: requested %s, available %s", i.PartCode, quantity, i.Quantity))
	}
	i.Quantity = remaining
	i.UpdatedAt = time.Now()
	i.AddDomainEvent(NewStockDeductedEvent(i, quantity))

	if !i.MinQuantity.IsZero() && i.MinQuantity.GreaterThanOrEqual(i.Quantity) {
		i.AddDomainEvent(NewStockBelowThresholdEvent(i))
	}
	return nil
}

// CanCover reports whether the item can satisfy the requested quantity.
// Used by quote-time availability checks; it does NOT reserve stock.
func (i *InventoryItem) CanCover(quantity valueobject.Quantity) bool {
	return i.Quantity.GreaterThanOrEqual(quantity)
}
