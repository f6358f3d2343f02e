package persistence

import (
	"context"

	apptransfer "github.com/assetflow/backend/internal/application/transfer"
	"github.com/assetflow/backend/internal/domain/asset"
	"github.com/assetflow/backend/internal/domain/maintenance"
	"github.com/assetflow/backend/internal/domain/transfer"
	"gorm.io/gorm"
)

// GormTransferTransactionScope implements the transfer TransactionScope
// using GORM transactions.
type GormTransferTransactionScope struct {
	db *gorm.DB
}

// NewGormTransferTransactionScope creates a new GormTransferTransactionScope.
func NewGormTransferTransactionScope(db *gorm.DB) *GormTransferTransactionScope {
	return &GormTransferTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransferTransactionScope) Execute(ctx context.Context, fn func(repos apptransfer.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&transferTxRepositories{tx: tx})
	})
}

type transferTxRepositories struct {
	tx *gorm.DB
}

// Orders returns the transfer order repository scoped to the current transaction.
func (r *transferTxRepositories) Orders() transfer.TransferOrderRepository {
	return NewGormTransferOrderRepository(r.tx)
}

// Assets returns the asset repository scoped to the current transaction.
func (r *transferTxRepositories) Assets() asset.AssetRepository {
	return NewGormAssetRepository(r.tx)
}

// MovementLogs returns the movement log repository scoped to the current transaction.
func (r *transferTxRepositories) MovementLogs() asset.MovementLogRepository {
	return NewGormMovementLogRepository(r.tx)
}

// Assignments returns the service assignment repository scoped to the current transaction.
func (r *transferTxRepositories) Assignments() maintenance.ServiceAssignmentRepository {
	return NewGormServiceAssignmentRepository(r.tx)
}

var _ apptransfer.TransactionScope = (*GormTransferTransactionScope)(nil)
var _ apptransfer.TransactionalRepositories = (*transferTxRepositories)(nil)
