package transfer

import (
	"context"
	"fmt"

	"github.com/assetflow/backend/internal/domain/asset"
	"github.com/assetflow/backend/internal/domain/org"
	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/assetflow/backend/internal/domain/transfer"
	"github.com/assetflow/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TransferOrderService drives the transfer order engine: opening manifests,
// receiving serials at the destination, and rolling back rejected or
// cancelled shipments.
type TransferOrderService struct {
	txScope         TransactionScope
	orderRepo       transfer.TransferOrderRepository
	assetRepo       asset.AssetRepository
	branchRepo      org.BranchRepository
	notifier        shared.Notifier
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
}

// NewTransferOrderService creates a new TransferOrderService
func NewTransferOrderService(
	txScope TransactionScope,
	orderRepo transfer.TransferOrderRepository,
	assetRepo asset.AssetRepository,
	branchRepo org.BranchRepository,
) *TransferOrderService {
	return &TransferOrderService{
		txScope:    txScope,
		orderRepo:  orderRepo,
		assetRepo:  assetRepo,
		branchRepo: branchRepo,
		logger:     zap.NewNop(),
	}
}

// SetNotifier sets the best-effort branch notifier
func (s *TransferOrderService) SetNotifier(n shared.Notifier) {
	s.notifier = n
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *TransferOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *TransferOrderService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// SetLogger sets the service logger
func (s *TransferOrderService) SetLogger(logger *zap.Logger) {
	s.logger = logger
}

// Create opens a transfer order and flips every listed asset into its
// transit status in one transaction. Validation happens before the
// transaction; the branch-pair rules hold for every caller including admins.
func (s *TransferOrderService) Create(ctx context.Context, scope org.Scope, req CreateTransferOrderRequest) (*TransferOrderResponse, error) {
	purpose := transfer.TransferPurpose(req.Purpose)
	if !purpose.IsValid() {
		return nil, shared.NewDomainError("INVALID_PURPOSE", "Transfer purpose is not valid")
	}
	if !scope.Covers(req.SourceBranchID) {
		return nil, shared.ErrOutOfScope
	}
	s.logScopeOverride(scope, req.SourceBranchID, "transfer.create")

	sourceBranch, err := s.branchRepo.FindByID(ctx, req.SourceBranchID)
	if err != nil {
		return nil, err
	}
	destBranch, err := s.branchRepo.FindByID(ctx, req.DestinationBranchID)
	if err != nil {
		return nil, err
	}
	if err := validateBranchPair(purpose, sourceBranch, destBranch); err != nil {
		return nil, err
	}

	assets, err := s.loadManifestAssets(ctx, purpose, sourceBranch, destBranch, req.SerialNumbers)
	if err != nil {
		return nil, err
	}

	orderNumber, err := s.orderRepo.GenerateOrderNumber(ctx)
	if err != nil {
		return nil, err
	}
	order, err := transfer.NewTransferOrder(orderNumber, req.SourceBranchID, req.DestinationBranchID, purpose)
	if err != nil {
		return nil, err
	}
	order.Remark = req.Remark
	order.SetCreatedBy(scope.UserID)
	for _, a := range assets {
		if _, err := order.AddItem(a.ID, a.SerialNumber); err != nil {
			return nil, err
		}
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.Orders().Save(ctx, order); err != nil {
			return err
		}
		for i := range assets {
			a := &assets[i]
			from := a.Status
			if purpose == transfer.PurposeReturn {
				if err := a.TransitionTo(asset.StatusReturning, nil); err != nil {
					return err
				}
				if a.ActiveAssignmentID != nil {
					assignment, err := repos.Assignments().FindByID(ctx, *a.ActiveAssignmentID)
					if err != nil {
						return err
					}
					if err := assignment.HoldForTransfer(order.ID); err != nil {
						return err
					}
					if err := repos.Assignments().Save(ctx, assignment); err != nil {
						return err
					}
				}
			} else {
				if err := a.BeginTransit(); err != nil {
					return err
				}
			}
			if err := repos.Assets().SaveWithLock(ctx, a); err != nil {
				return err
			}
			log := asset.NewMovementLog(a, from, a.Status, req.Remark, asset.LogPayload{
				"order_number": order.OrderNumber,
				"purpose":      purpose.String(),
			}, &scope.UserID)
			if err := repos.MovementLogs().Append(ctx, log); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order.GetDomainEvents())
	order.ClearDomainEvents()
	if s.businessMetrics != nil {
		s.businessMetrics.RecordTransferOrder(ctx, purpose.String(), order.Status.String())
	}
	s.notify(ctx, shared.Notification{
		BranchID: order.DestinationBranchID,
		Type:     shared.NotificationTransferIncoming,
		Title:    "Incoming transfer " + order.OrderNumber,
		Message:  fmt.Sprintf("%d asset(s) dispatched from %s", len(order.Items), sourceBranch.Name),
		Payload:  map[string]interface{}{"order_id": order.ID.String(), "purpose": purpose.String()},
	})

	response := ToTransferOrderResponse(order)
	return &response, nil
}

// Receive acknowledges serials at the destination branch. Receiving a serial
// twice is a no-op; the asset lands in its purpose-specific target status.
func (s *TransferOrderService) Receive(ctx context.Context, scope org.Scope, orderID uuid.UUID, req ReceiveTransferRequest) (*ReceiveResultResponse, error) {
	var order *transfer.TransferOrder
	var changed []string

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if !scope.Covers(order.DestinationBranchID) {
			return shared.ErrOutOfScope
		}
		s.logScopeOverride(scope, order.DestinationBranchID, "transfer.receive")

		changed, err = order.ReceiveItems(req.SerialNumbers)
		if err != nil {
			return err
		}

		for _, serial := range changed {
			a, err := repos.Assets().FindBySerial(ctx, serial)
			if err != nil {
				return err
			}
			from := a.Status
			switch order.Purpose {
			case transfer.PurposeMaintenance:
				if err := a.TransitionTo(asset.StatusReceivedAtCenter, nil); err != nil {
					return err
				}
				a.StampOrigin(order.SourceBranchID)
				if err := a.TransferOwnership(order.DestinationBranchID); err != nil {
					return err
				}
			case transfer.PurposeReturn:
				if err := a.ConfirmReturned(); err != nil {
					return err
				}
				if a.ActiveAssignmentID != nil {
					assignment, err := repos.Assignments().FindByID(ctx, *a.ActiveAssignmentID)
					if err != nil {
						return err
					}
					if err := assignment.CloseReturned(); err != nil {
						return err
					}
					if err := repos.Assignments().Save(ctx, assignment); err != nil {
						return err
					}
					a.DetachAssignment()
				}
			case transfer.PurposeStockTransfer:
				if err := a.ConfirmStockArrival(order.DestinationBranchID); err != nil {
					return err
				}
			}
			if err := repos.Assets().SaveWithLock(ctx, a); err != nil {
				return err
			}
			log := asset.NewMovementLog(a, from, a.Status, "", asset.LogPayload{
				"order_number": order.OrderNumber,
				"purpose":      order.Purpose.String(),
			}, &scope.UserID)
			if err := repos.MovementLogs().Append(ctx, log); err != nil {
				return err
			}
		}
		return repos.Orders().Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order.GetDomainEvents())
	order.ClearDomainEvents()
	if s.businessMetrics != nil {
		s.businessMetrics.RecordTransferOrder(ctx, order.Purpose.String(), order.Status.String())
	}

	return &ReceiveResultResponse{
		Order:           ToTransferOrderResponse(order),
		ReceivedSerials: changed,
	}, nil
}

// Reject declines a pending order at the destination and restores every
// asset to its pre-transit state at the sender.
func (s *TransferOrderService) Reject(ctx context.Context, scope org.Scope, orderID uuid.UUID, req RejectTransferRequest) (*TransferOrderResponse, error) {
	var order *transfer.TransferOrder

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if !scope.Covers(order.DestinationBranchID) {
			return shared.ErrOutOfScope
		}
		s.logScopeOverride(scope, order.DestinationBranchID, "transfer.reject")

		if err := order.Reject(req.Reason); err != nil {
			return err
		}
		if err := s.rollbackManifest(ctx, repos, order, scope.UserID, req.Reason); err != nil {
			return err
		}
		return repos.Orders().Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order.GetDomainEvents())
	order.ClearDomainEvents()
	s.notify(ctx, shared.Notification{
		BranchID: order.SourceBranchID,
		Type:     shared.NotificationTransferRejected,
		Title:    "Transfer " + order.OrderNumber + " rejected",
		Message:  req.Reason,
		Payload:  map[string]interface{}{"order_id": order.ID.String()},
	})

	response := ToTransferOrderResponse(order)
	return &response, nil
}

// Cancel withdraws a pending order. Only the creator or an admin may cancel.
func (s *TransferOrderService) Cancel(ctx context.Context, scope org.Scope, orderID uuid.UUID, req CancelTransferRequest) (*TransferOrderResponse, error) {
	var order *transfer.TransferOrder

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if !scope.Unrestricted() && (order.CreatedBy == nil || *order.CreatedBy != scope.UserID) {
			return shared.NewDomainError("FORBIDDEN", "Only the order creator or an admin can cancel a transfer")
		}

		if err := order.Cancel(req.Reason); err != nil {
			return err
		}
		if err := s.rollbackManifest(ctx, repos, order, scope.UserID, req.Reason); err != nil {
			return err
		}
		return repos.Orders().Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order.GetDomainEvents())
	order.ClearDomainEvents()
	s.notify(ctx, shared.Notification{
		BranchID: order.DestinationBranchID,
		Type:     shared.NotificationTransferCancelled,
		Title:    "Transfer " + order.OrderNumber + " cancelled",
		Message:  req.Reason,
		Payload:  map[string]interface{}{"order_id": order.ID.String()},
	})

	response := ToTransferOrderResponse(order)
	return &response, nil
}

// GetByID retrieves a transfer order visible to the caller's scope
func (s *TransferOrderService) GetByID(ctx context.Context, scope org.Scope, orderID uuid.UUID) (*TransferOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !scope.Covers(order.SourceBranchID) && !scope.Covers(order.DestinationBranchID) {
		return nil, shared.ErrOutOfScope
	}
	response := ToTransferOrderResponse(order)
	return &response, nil
}

// ListByBranch lists orders where the branch is sender or receiver
func (s *TransferOrderService) ListByBranch(ctx context.Context, scope org.Scope, branchID uuid.UUID, filter TransferOrderListFilter) ([]TransferOrderResponse, int64, error) {
	if !scope.Covers(branchID) {
		return nil, 0, shared.ErrOutOfScope
	}

	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.Purpose != "" {
		domainFilter.Filters["purpose"] = filter.Purpose
	}

	orders, err := s.orderRepo.FindByBranch(ctx, branchID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orderRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]TransferOrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, ToTransferOrderResponse(&orders[i]))
	}
	return responses, total, nil
}

// rollbackManifest restores every manifest asset to its pre-transit status
// and releases assignment holds. Runs inside the caller's transaction.
func (s *TransferOrderService) rollbackManifest(ctx context.Context, repos TransactionalRepositories, order *transfer.TransferOrder, actorID uuid.UUID, reason string) error {
	for _, item := range order.Items {
		a, err := repos.Assets().FindBySerial(ctx, item.SerialNumber)
		if err != nil {
			return err
		}
		from := a.Status
		if order.Purpose == transfer.PurposeReturn {
			if err := a.AbortReturn(); err != nil {
				return err
			}
			if a.ActiveAssignmentID != nil {
				assignment, err := repos.Assignments().FindByID(ctx, *a.ActiveAssignmentID)
				if err != nil {
					return err
				}
				assignment.ReleaseHold()
				if err := repos.Assignments().Save(ctx, assignment); err != nil {
					return err
				}
			}
		} else {
			if err := a.AbortTransit(); err != nil {
				return err
			}
		}
		if err := repos.Assets().SaveWithLock(ctx, a); err != nil {
			return err
		}
		log := asset.NewMovementLog(a, from, a.Status, reason, asset.LogPayload{
			"order_number": order.OrderNumber,
		}, &actorID)
		if err := repos.MovementLogs().Append(ctx, log); err != nil {
			return err
		}
	}
	return nil
}

// loadManifestAssets loads and validates every serial against the purpose's
// availability rules before anything is written.
func (s *TransferOrderService) loadManifestAssets(ctx context.Context, purpose transfer.TransferPurpose, source, dest *org.Branch, serials []string) ([]asset.Asset, error) {
	assets, err := s.assetRepo.FindBySerials(ctx, serials)
	if err != nil {
		return nil, err
	}
	bySerial := make(map[string]*asset.Asset, len(assets))
	for i := range assets {
		bySerial[assets[i].SerialNumber] = &assets[i]
	}

	ordered := make([]asset.Asset, 0, len(serials))
	for _, serial := range serials {
		a, ok := bySerial[serial]
		if !ok {
			return nil, shared.NewDomainError("NOT_FOUND", "Unknown serial number: "+serial)
		}
		if a.BranchID != source.ID {
			return nil, shared.NewDomainError("ASSET_NOT_AT_SOURCE",
				fmt.Sprintf("Asset %s is not held by branch %s", serial, source.Code))
		}
		switch purpose {
		case transfer.PurposeReturn:
			if a.Status != asset.StatusReadyForReturn {
				return nil, shared.NewDomainError("ASSET_UNAVAILABLE",
					fmt.Sprintf("Asset %s is not ready for return (status %s)", serial, a.Status))
			}
			if a.OriginBranchID == nil || *a.OriginBranchID != dest.ID {
				return nil, shared.NewDomainError("RETURN_DESTINATION_MISMATCH",
					fmt.Sprintf("Asset %s must return to its origin branch", serial))
			}
		default:
			if !a.Status.IsPreCenter() {
				return nil, shared.NewDomainError("ASSET_UNAVAILABLE",
					fmt.Sprintf("Asset %s cannot be shipped (status %s)", serial, a.Status))
			}
		}

		open, err := s.orderRepo.FindPendingBySerial(ctx, serial)
		if err != nil {
			return nil, err
		}
		if len(open) > 0 {
			return nil, shared.NewDomainError("ASSET_ALREADY_ON_ORDER",
				fmt.Sprintf("Asset %s is already on open order %s", serial, open[0].OrderNumber))
		}
		ordered = append(ordered, *a)
	}
	return ordered, nil
}

// validateBranchPair enforces the purpose binding rules. The rules are pure
// and hold for every caller regardless of authorization scope.
func validateBranchPair(purpose transfer.TransferPurpose, source, dest *org.Branch) error {
	if source.ID == dest.ID {
		return shared.NewDomainError("INVALID_BRANCH_PAIR", "Source and destination branches must differ")
	}
	switch purpose {
	case transfer.PurposeMaintenance:
		if !dest.Type.CanReceiveMaintenance() {
			return shared.NewDomainError("INVALID_BRANCH_PAIR",
				fmt.Sprintf("Branch %s is not a maintenance center", dest.Code))
		}
	case transfer.PurposeReturn:
		if !source.Type.CanReceiveMaintenance() {
			return shared.NewDomainError("INVALID_BRANCH_PAIR",
				fmt.Sprintf("Return transfers originate at a maintenance center, not %s", source.Code))
		}
	}
	return nil
}

func (s *TransferOrderService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
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

func (s *TransferOrderService) notify(ctx context.Context, n shared.Notification) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, n)
}

func (s *TransferOrderService) logScopeOverride(scope org.Scope, branchID uuid.UUID, operation string) {
	if scope.Unrestricted() && scope.BranchID != branchID {
		s.logger.Info("admin scope override",
			zap.String("operation", operation),
			zap.String("user_id", scope.UserID.String()),
			zap.String("branch_id", branchID.String()))
	}
}
