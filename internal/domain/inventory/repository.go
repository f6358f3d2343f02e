package inventory

import (
	"context"

	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InventoryItemRepository defines persistence for branch inventory
type InventoryItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryItem, error)
	FindByBranchAndPart(ctx context.Context, branchID uuid.UUID, partCode string) (*InventoryItem, error)
	FindByBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]*InventoryItem, error)
	FindBelowThreshold(ctx context.Context, branchID uuid.UUID) ([]*InventoryItem, error)
	Save(ctx context.Context, item *InventoryItem) error
	SaveWithLock(ctx context.Context, item *InventoryItem) error
	CountByBranch(ctx context.Context, branchID uuid.UUID) (int64, error)
}

// StockMovementRepository defines persistence for the movement journal
type StockMovementRepository interface {
	Append(ctx context.Context, movement *StockMovement) error
	FindByBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]*StockMovement, error)
	FindBySource(ctx context.Context, source MovementSource, sourceID uuid.UUID) ([]*StockMovement, error)
}
