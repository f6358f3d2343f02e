package persistence

import (
	"context"

	appmaint "github.com/assetflow/backend/internal/application/maintenance"
	"github.com/assetflow/backend/internal/domain/asset"
	"github.com/assetflow/backend/internal/domain/finance"
	"github.com/assetflow/backend/internal/domain/inventory"
	"github.com/assetflow/backend/internal/domain/maintenance"
	"gorm.io/gorm"
)

// GormMaintenanceTransactionScope implements the maintenance TransactionScope
// using GORM transactions. Settlement mutates the assignment, the asset, the
// center's inventory and the debt ledger in one transaction.
type GormMaintenanceTransactionScope struct {
	db *gorm.DB
}

// NewGormMaintenanceTransactionScope creates a new GormMaintenanceTransactionScope.
func NewGormMaintenanceTransactionScope(db *gorm.DB) *GormMaintenanceTransactionScope {
	return &GormMaintenanceTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormMaintenanceTransactionScope) Execute(ctx context.Context, fn func(repos appmaint.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&maintenanceTxRepositories{tx: tx})
	})
}

type maintenanceTxRepositories struct {
	tx *gorm.DB
}

// Assets returns the asset repository scoped to the current transaction.
func (r *maintenanceTxRepositories) Assets() asset.AssetRepository {
	return NewGormAssetRepository(r.tx)
}

// MovementLogs returns the movement log repository scoped to the current transaction.
func (r *maintenanceTxRepositories) MovementLogs() asset.MovementLogRepository {
	return NewGormMovementLogRepository(r.tx)
}

// Assignments returns the service assignment repository scoped to the current transaction.
func (r *maintenanceTxRepositories) Assignments() maintenance.ServiceAssignmentRepository {
	return NewGormServiceAssignmentRepository(r.tx)
}

// Approvals returns the maintenance approval repository scoped to the current transaction.
func (r *maintenanceTxRepositories) Approvals() maintenance.MaintenanceApprovalRepository {
	return NewGormMaintenanceApprovalRepository(r.tx)
}

// Inventory returns the inventory item repository scoped to the current transaction.
func (r *maintenanceTxRepositories) Inventory() inventory.InventoryItemRepository {
	return NewGormInventoryItemRepository(r.tx)
}

// StockMovements returns the stock movement repository scoped to the current transaction.
func (r *maintenanceTxRepositories) StockMovements() inventory.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

// Debts returns the branch debt repository scoped to the current transaction.
func (r *maintenanceTxRepositories) Debts() finance.BranchDebtRepository {
	return NewGormBranchDebtRepository(r.tx)
}

var _ appmaint.TransactionScope = (*GormMaintenanceTransactionScope)(nil)
var _ appmaint.TransactionalRepositories = (*maintenanceTxRepositories)(nil)
