package maintenance

import (
	"context"

	"github.com/assetflow/backend/internal/domain/asset"
	"github.com/assetflow/backend/internal/domain/finance"
	"github.com/assetflow/backend/internal/domain/inventory"
	"github.com/assetflow/backend/internal/domain/maintenance"
)

// TransactionScope provides transactional access to the repositories a
// maintenance operation touches. A settlement mutates the assignment, the
// asset, the center's inventory and the debt ledger atomically.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories sharing the
// current database transaction.
type TransactionalRepositories interface {
	Assets() asset.AssetRepository
	MovementLogs() asset.MovementLogRepository
	Assignments() maintenance.ServiceAssignmentRepository
	Approvals() maintenance.MaintenanceApprovalRepository
	Inventory() inventory.InventoryItemRepository
	StockMovements() inventory.StockMovementRepository
	Debts() finance.BranchDebtRepository
}

// NoOpTransactionScope runs the function without a real transaction.
type NoOpTransactionScope struct {
	assetRepo      asset.AssetRepository
	logRepo        asset.MovementLogRepository
	assignmentRepo maintenance.ServiceAssignmentRepository
	approvalRepo   maintenance.MaintenanceApprovalRepository
	inventoryRepo  inventory.InventoryItemRepository
	movementRepo   inventory.StockMovementRepository
	debtRepo       finance.BranchDebtRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(
	assetRepo asset.AssetRepository,
	logRepo asset.MovementLogRepository,
	assignmentRepo maintenance.ServiceAssignmentRepository,
	approvalRepo maintenance.MaintenanceApprovalRepository,
	inventoryRepo inventory.InventoryItemRepository,
	movementRepo inventory.StockMovementRepository,
	debtRepo finance.BranchDebtRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		assetRepo:      assetRepo,
		logRepo:        logRepo,
		assignmentRepo: assignmentRepo,
		approvalRepo:   approvalRepo,
		inventoryRepo:  inventoryRepo,
		movementRepo:   movementRepo,
		debtRepo:       debtRepo,
	}
}

// Execute runs the function directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Assets returns the asset repository
func (s *NoOpTransactionScope) Assets() asset.AssetRepository { return s.assetRepo }

// MovementLogs returns the movement log repository
func (s *NoOpTransactionScope) MovementLogs() asset.MovementLogRepository { return s.logRepo }

// Assignments returns the service assignment repository
func (s *NoOpTransactionScope) Assignments() maintenance.ServiceAssignmentRepository {
	return s.assignmentRepo
}

// Approvals returns the maintenance approval repository
func (s *NoOpTransactionScope) Approvals() maintenance.MaintenanceApprovalRepository {
	return s.approvalRepo
}

// Inventory returns the inventory item repository
func (s *NoOpTransactionScope) Inventory() inventory.InventoryItemRepository {
	return s.inventoryRepo
}

// StockMovements returns the stock movement repository
func (s *NoOpTransactionScope) StockMovements() inventory.StockMovementRepository {
	return s.movementRepo
}

// Debts returns the branch debt repository
func (s *NoOpTransactionScope) Debts() finance.BranchDebtRepository { return s.debtRepo }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
