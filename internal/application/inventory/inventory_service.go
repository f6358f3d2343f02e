package inventory

import (
	"context"

	"github.com/assetflow/backend/internal/domain/inventory"
	"github.com/assetflow/backend/internal/domain/org"
	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/assetflow/backend/internal/domain/shared/valueobject"
	"github.com/assetflow/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InventoryService manages per-branch consumable stock: the part catalog,
// replenishment, count adjustments and the movement journal. Maintenance
// deductions do not go through here; they happen inside the settlement
// transaction.
type InventoryService struct {
	txScope         TransactionScope
	itemRepo        inventory.InventoryItemRepository
	movementRepo    inventory.StockMovementRepository
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(
	txScope TransactionScope,
	itemRepo inventory.InventoryItemRepository,
	movementRepo inventory.StockMovementRepository,
) *InventoryService {
	return &InventoryService{
		txScope:      txScope,
		itemRepo:     itemRepo,
		movementRepo: movementRepo,
		logger:       zap.NewNop(),
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *InventoryService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *InventoryService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// SetLogger sets the service logger
func (s *InventoryService) SetLogger(logger *zap.Logger) {
	s.logger = logger
}

// CreatePart registers a part in the branch's catalog at zero stock
func (s *InventoryService) CreatePart(ctx context.Context, scope org.Scope, branchID uuid.UUID, req CreatePartRequest) (*InventoryItemResponse, error) {
	if !scope.Covers(branchID) {
		return nil, shared.ErrOutOfScope
	}
	if existing, err := s.itemRepo.FindByBranchAndPart(ctx, branchID, req.PartCode); err == nil && existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Part already registered at this branch: "+req.PartCode)
	}

	item, err := inventory.NewInventoryItem(branchID, req.PartCode, req.PartName, req.UnitPrice)
	if err != nil {
		return nil, err
	}
	if req.MinQuantity > 0 {
		min, err := valueobject.NewQuantityFromInt(req.MinQuantity)
		if err != nil {
			return nil, err
		}
		item.SetMinQuantity(min)
	}
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	response := ToInventoryItemResponse(item)
	return &response, nil
}

// Replenish adds stock to the branch and journals the IN movement
func (s *InventoryService) Replenish(ctx context.Context, scope org.Scope, branchID uuid.UUID, req ReplenishRequest) (*InventoryItemResponse, error) {
	if !scope.Covers(branchID) {
		return nil, shared.ErrOutOfScope
	}
	qty, err := valueobject.NewQuantityFromInt(req.Quantity)
	if err != nil {
		return nil, err
	}

	var item *inventory.InventoryItem
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		item, err = repos.Items().FindByBranchAndPart(ctx, branchID, req.PartCode)
		if err != nil {
			return err
		}
		if err := item.Increase(qty); err != nil {
			return err
		}
		if err := repos.Items().SaveWithLock(ctx, item); err != nil {
			return err
		}
		movement := inventory.NewStockMovement(branchID, item.PartCode, inventory.MovementIn,
			qty, item.UnitPrice, inventory.SourceImport).WithActor(scope.UserID)
		movement.Notes = req.Notes
		return repos.Movements().Append(ctx, movement)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, item.GetDomainEvents())
	item.ClearDomainEvents()

	response := ToInventoryItemResponse(item)
	return &response, nil
}

// Adjust corrects stock after a physical count. Negative deltas follow the
// same no-negative-stock rule as any deduction.
func (s *InventoryService) Adjust(ctx context.Context, scope org.Scope, branchID uuid.UUID, req AdjustRequest) (*InventoryItemResponse, error) {
	if !scope.Covers(branchID) {
		return nil, shared.ErrOutOfScope
	}
	if req.Delta == 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Adjustment delta cannot be zero")
	}

	var item *inventory.InventoryItem
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		item, err = repos.Items().FindByBranchAndPart(ctx, branchID, req.PartCode)
		if err != nil {
			return err
		}

		direction := inventory.MovementIn
		magnitude := req.Delta
		if req.Delta < 0 {
			direction = inventory.MovementOut
			magnitude = -req.Delta
		}
		qty, err := valueobject.NewQuantityFromInt(magnitude)
		if err != nil {
			return err
		}
		if direction == inventory.MovementIn {
			err = item.Increase(qty)
		} else {
			err = item.Deduct(qty)
		}
		if err != nil {
			return err
		}
		if err := repos.Items().SaveWithLock(ctx, item); err != nil {
			return err
		}
		movement := inventory.NewStockMovement(branchID, item.PartCode, direction,
			qty, item.UnitPrice, inventory.SourceAdjustment).WithActor(scope.UserID)
		movement.Notes = req.Notes
		return repos.Movements().Append(ctx, movement)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, item.GetDomainEvents())
	item.ClearDomainEvents()

	response := ToInventoryItemResponse(item)
	return &response, nil
}

// SetMinQuantity updates the low-stock threshold for a part
func (s *InventoryService) SetMinQuantity(ctx context.Context, scope org.Scope, branchID uuid.UUID, partCode string, minQuantity int64) (*InventoryItemResponse, error) {
	if !scope.Covers(branchID) {
		return nil, shared.ErrOutOfScope
	}
	item, err := s.itemRepo.FindByBranchAndPart(ctx, branchID, partCode)
	if err != nil {
		return nil, err
	}
	min, err := valueobject.NewQuantityFromInt(minQuantity)
	if err != nil {
		return nil, err
	}
	item.SetMinQuantity(min)
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	response := ToInventoryItemResponse(item)
	return &response, nil
}

// SetUnitPrice updates the catalog price for a part
func (s *InventoryService) SetUnitPrice(ctx context.Context, scope org.Scope, branchID uuid.UUID, partCode string, price decimal.Decimal) (*InventoryItemResponse, error) {
	if !scope.Covers(branchID) {
		return nil, shared.ErrOutOfScope
	}
	item, err := s.itemRepo.FindByBranchAndPart(ctx, branchID, partCode)
	if err != nil {
		return nil, err
	}
	if err := item.SetUnitPrice(price); err != nil {
		return nil, err
	}
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	response := ToInventoryItemResponse(item)
	return &response, nil
}

// ListByBranch lists a branch's stock lines
func (s *InventoryService) ListByBranch(ctx context.Context, scope org.Scope, branchID uuid.UUID, filter shared.Filter) ([]InventoryItemResponse, error) {
	if !scope.Covers(branchID) {
		return nil, shared.ErrOutOfScope
	}
	items, err := s.itemRepo.FindByBranch(ctx, branchID, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]InventoryItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, ToInventoryItemResponse(item))
	}
	return responses, nil
}

// ListLowStock lists stock lines at or below their threshold
func (s *InventoryService) ListLowStock(ctx context.Context, scope org.Scope, branchID uuid.UUID) ([]InventoryItemResponse, error) {
	if !scope.Covers(branchID) {
		return nil, shared.ErrOutOfScope
	}
	items, err := s.itemRepo.FindBelowThreshold(ctx, branchID)
	if err != nil {
		return nil, err
	}
	responses := make([]InventoryItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, ToInventoryItemResponse(item))
	}
	return responses, nil
}

// ListMovements lists the branch's stock journal
func (s *InventoryService) ListMovements(ctx context.Context, scope org.Scope, branchID uuid.UUID, filter shared.Filter) ([]StockMovementResponse, error) {
	if !scope.Covers(branchID) {
		return nil, shared.ErrOutOfScope
	}
	movements, err := s.movementRepo.FindByBranch(ctx, branchID, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]StockMovementResponse, 0, len(movements))
	for _, m := range movements {
		responses = append(responses, ToStockMovementResponse(m))
	}
	return responses, nil
}

func (s *InventoryService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range events {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
}
