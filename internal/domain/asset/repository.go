package asset

import (
	"context"

	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AssetRepository provides access to Asset aggregates
type AssetRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Asset, error)
	FindBySerial(ctx context.Context, serialNumber string) (*Asset, error)
	FindBySerials(ctx context.Context, serialNumbers []string) ([]Asset, error)
	FindByBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]Asset, error)
	Save(ctx context.Context, a *Asset) error
	// SaveWithLock saves with an optimistic version check and returns
	// CONCURRENCY_CONFLICT when the row moved underneath the caller.
	SaveWithLock(ctx context.Context, a *Asset) error
	ExistsBySerial(ctx context.Context, serialNumber string) (bool, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// MovementLogRepository is the append-only audit sink for asset lifecycle
// events.
type MovementLogRepository interface {
	Append(ctx context.Context, log *MovementLog) error
	FindByAsset(ctx context.Context, assetID uuid.UUID, filter shared.Filter) ([]MovementLog, error)
	FindBySerial(ctx context.Context, serialNumber string, filter shared.Filter) ([]MovementLog, error)
}
