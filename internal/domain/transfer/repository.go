package transfer

import (
	"context"

	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TransferOrderRepository provides access to TransferOrder aggregates
type TransferOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*TransferOrder, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*TransferOrder, error)
	FindByBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]TransferOrder, error)
	Save(ctx context.Context, order *TransferOrder) error
	// FindPendingBySerial returns open orders (PENDING or PARTIAL) whose
	// manifest includes the given serial. Used to reject double-shipping.
	FindPendingBySerial(ctx context.Context, serialNumber string) ([]TransferOrder, error)
	// GenerateOrderNumber derives the next date-scoped sequential order
	// number for the given prefix: <PREFIX>-<YYYYMMDD>-<seq>.
	GenerateOrderNumber(ctx context.Context) (string, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
