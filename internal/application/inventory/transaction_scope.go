package inventory

import (
	"context"

	"github.com/assetflow/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to inventory repositories.
// A stock mutation and its journal line commit or roll back together.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the inventory repositories
// sharing the current database transaction.
type TransactionalRepositories interface {
	Items() inventory.InventoryItemRepository
	Movements() inventory.StockMovementRepository
}

// NoOpTransactionScope runs the function without a real transaction.
type NoOpTransactionScope struct {
	itemRepo     inventory.InventoryItemRepository
	movementRepo inventory.StockMovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(itemRepo inventory.InventoryItemRepository, movementRepo inventory.StockMovementRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{itemRepo: itemRepo, movementRepo: movementRepo}
}

// Execute runs the function directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Items returns the inventory item repository
func (s *NoOpTransactionScope) Items() inventory.InventoryItemRepository { return s.itemRepo }

// Movements returns the stock movement repository
func (s *NoOpTransactionScope) Movements() inventory.StockMovementRepository {
	return s.movementRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
