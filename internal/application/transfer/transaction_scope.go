package transfer

import (
	"context"

	"github.com/assetflow/backend/internal/domain/asset"
	"github.com/assetflow/backend/internal/domain/maintenance"
	"github.com/assetflow/backend/internal/domain/transfer"
)

// TransactionScope provides transactional access to the repositories a
// transfer operation touches. All repository operations executed within
// the scope commit or roll back atomically.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories sharing the
// current database transaction. A transfer mutates three aggregates at once
// (the order, each asset, the held assignments) plus the audit journal.
type TransactionalRepositories interface {
	Orders() transfer.TransferOrderRepository
	Assets() asset.AssetRepository
	MovementLogs() asset.MovementLogRepository
	Assignments() maintenance.ServiceAssignmentRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Useful for tests with in-memory repositories.
type NoOpTransactionScope struct {
	orderRepo      transfer.TransferOrderRepository
	assetRepo      asset.AssetRepository
	logRepo        asset.MovementLogRepository
	assignmentRepo maintenance.ServiceAssignmentRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(
	orderRepo transfer.TransferOrderRepository,
	assetRepo asset.AssetRepository,
	logRepo asset.MovementLogRepository,
	assignmentRepo maintenance.ServiceAssignmentRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orderRepo:      orderRepo,
		assetRepo:      assetRepo,
		logRepo:        logRepo,
		assignmentRepo: assignmentRepo,
	}
}

// Execute runs the function directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Orders returns the transfer order repository
func (s *NoOpTransactionScope) Orders() transfer.TransferOrderRepository {
	return s.orderRepo
}

// Assets returns the asset repository
func (s *NoOpTransactionScope) Assets() asset.AssetRepository {
	return s.assetRepo
}

// MovementLogs returns the movement log repository
func (s *NoOpTransactionScope) MovementLogs() asset.MovementLogRepository {
	return s.logRepo
}

// Assignments returns the service assignment repository
func (s *NoOpTransactionScope) Assignments() maintenance.ServiceAssignmentRepository {
	return s.assignmentRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
