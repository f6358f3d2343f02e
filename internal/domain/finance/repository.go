package finance

import (
	"context"

	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BranchDebtRepository defines persistence for inter-branch debts
type BranchDebtRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BranchDebt, error)
	FindByDebtNumber(ctx context.Context, debtNumber string) (*BranchDebt, error)
	FindByAssignment(ctx context.Context, assignmentID uuid.UUID) (*BranchDebt, error)
	FindByDebtor(ctx context.Context, debtorBranchID uuid.UUID, filter shared.Filter) ([]*BranchDebt, error)
	FindByCreditor(ctx context.Context, creditorBranchID uuid.UUID, filter shared.Filter) ([]*BranchDebt, error)
	Save(ctx context.Context, debt *BranchDebt) error
	SaveWithLock(ctx context.Context, debt *BranchDebt) error
	GenerateDebtNumber(ctx context.Context) (string, error)
	Count(ctx context.Context, branchID uuid.UUID, status DebtStatus) (int64, error)
}
