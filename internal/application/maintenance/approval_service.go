package maintenance

import (
	"context"
	"errors"
	"fmt"

	"github.com/assetflow/backend/internal/domain/asset"
	"github.com/assetflow/backend/internal/domain/finance"
	"github.com/assetflow/backend/internal/domain/inventory"
	"github.com/assetflow/backend/internal/domain/maintenance"
	"github.com/assetflow/backend/internal/domain/org"
	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/assetflow/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ApprovalService handles the approval gate and settlement of repair jobs.
// Settlement is the single place inventory is deducted and debt is created;
// a quote never reserves stock.
type ApprovalService struct {
	txScope         TransactionScope
	assignmentRepo  maintenance.ServiceAssignmentRepository
	approvalRepo    maintenance.MaintenanceApprovalRepository
	notifier        shared.Notifier
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
}

// NewApprovalService creates a new ApprovalService
func NewApprovalService(
	txScope TransactionScope,
	assignmentRepo maintenance.ServiceAssignmentRepository,
	approvalRepo maintenance.MaintenanceApprovalRepository,
) *ApprovalService {
	return &ApprovalService{
		txScope:        txScope,
		assignmentRepo: assignmentRepo,
		approvalRepo:   approvalRepo,
		logger:         zap.NewNop(),
	}
}

// SetNotifier sets the best-effort branch notifier
func (s *ApprovalService) SetNotifier(n shared.Notifier) {
	s.notifier = n
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ApprovalService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *ApprovalService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// SetLogger sets the service logger
func (s *ApprovalService) SetLogger(logger *zap.Logger) {
	s.logger = logger
}

// RequestApproval sends the job's quote to the asset's owning branch. The
// quote checks availability but deducts nothing; the job and the asset move
// into the approval gate.
func (s *ApprovalService) RequestApproval(ctx context.Context, scope org.Scope, req RequestApprovalRequest) (*ApprovalResponse, error) {
	var approval *maintenance.MaintenanceApproval
	var assignment *maintenance.ServiceAssignment

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		assignment, err = repos.Assignments().FindByID(ctx, req.AssignmentID)
		if err != nil {
			return err
		}
		if !scope.Covers(assignment.CenterBranchID) {
			return shared.ErrOutOfScope
		}
		existing, err := repos.Approvals().FindPendingByAssignment(ctx, assignment.ID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if existing != nil {
			return shared.NewDomainError("APPROVAL_ALREADY_PENDING", "A quote is already awaiting an answer")
		}
		if err := enumerateShortfalls(ctx, repos.Inventory(), assignment); err != nil {
			return err
		}

		approval, err = maintenance.NewMaintenanceApproval(assignment, req.Notes)
		if err != nil {
			return err
		}
		approval.SetCreatedBy(scope.UserID)

		if err := assignment.MarkPendingApproval(); err != nil {
			return err
		}
		a, err := repos.Assets().FindByID(ctx, assignment.AssetID)
		if err != nil {
			return err
		}
		from := a.Status
		if err := a.TransitionTo(asset.StatusAwaitingApproval, nil); err != nil {
			return err
		}

		if err := repos.Approvals().Save(ctx, approval); err != nil {
			return err
		}
		if err := repos.Assignments().SaveWithLock(ctx, assignment); err != nil {
			return err
		}
		if err := repos.Assets().SaveWithLock(ctx, a); err != nil {
			return err
		}
		log := asset.NewMovementLog(a, from, a.Status, req.Notes, asset.LogPayload{
			"approval_id": approval.ID.String(),
			"total_cost":  approval.TotalCost.String(),
		}, &scope.UserID)
		return repos.MovementLogs().Append(ctx, log)
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, shared.Notification{
		BranchID: approval.RespondingBranchID,
		Type:     shared.NotificationApprovalRequested,
		Title:    "Repair approval requested for " + approval.SerialNumber,
		Message:  fmt.Sprintf("Quoted cost %s", approval.TotalCost),
		Payload:  map[string]interface{}{"approval_id": approval.ID.String()},
	})

	response := ToApprovalResponse(approval)
	return &response, nil
}

// RespondApproval answers a pending quote. Only the owning branch or an
// admin may answer; a rejection closes the job unrepaired with no deduction.
func (s *ApprovalService) RespondApproval(ctx context.Context, scope org.Scope, approvalID uuid.UUID, req RespondApprovalRequest) (*ApprovalResponse, error) {
	var approval *maintenance.MaintenanceApproval

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		approval, err = repos.Approvals().FindByID(ctx, approvalID)
		if err != nil {
			return err
		}
		if !scope.Covers(approval.RespondingBranchID) {
			return shared.ErrOutOfScope
		}
		s.logScopeOverride(scope, approval.RespondingBranchID, "approval.respond")

		assignment, err := repos.Assignments().FindByID(ctx, approval.AssignmentID)
		if err != nil {
			return err
		}
		a, err := repos.Assets().FindByID(ctx, assignment.AssetID)
		if err != nil {
			return err
		}
		from := a.Status

		if req.Approve {
			if err := approval.Approve(scope.UserID, req.Reason); err != nil {
				return err
			}
			if err := assignment.MarkApproved(); err != nil {
				return err
			}
			if err := a.TransitionTo(asset.StatusInProgress, nil); err != nil {
				return err
			}
		} else {
			if err := approval.Reject(scope.UserID, req.Reason); err != nil {
				return err
			}
			if err := assignment.ReturnToMaintenance(); err != nil {
				return err
			}
			if err := assignment.Complete(asset.ResolutionRejectedRepair); err != nil {
				return err
			}
			resolution := asset.ResolutionRejectedRepair
			if err := a.TransitionTo(asset.StatusReadyForReturn, &resolution); err != nil {
				return err
			}
		}

		if err := repos.Approvals().Save(ctx, approval); err != nil {
			return err
		}
		if err := repos.Assignments().SaveWithLock(ctx, assignment); err != nil {
			return err
		}
		if err := repos.Assets().SaveWithLock(ctx, a); err != nil {
			return err
		}
		log := asset.NewMovementLog(a, from, a.Status, req.Reason, asset.LogPayload{
			"approval_id": approval.ID.String(),
			"approved":    req.Approve,
		}, &scope.UserID)
		return repos.MovementLogs().Append(ctx, log)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, approval.GetDomainEvents())
	approval.ClearDomainEvents()
	s.notify(ctx, shared.Notification{
		BranchID: approval.RequestingBranchID,
		Type:     shared.NotificationApprovalAnswered,
		Title:    "Approval answered for " + approval.SerialNumber,
		Message:  string(approval.Status),
		Payload:  map[string]interface{}{"approval_id": approval.ID.String()},
	})

	response := ToApprovalResponse(approval)
	return &response, nil
}

// CompleteDirect settles a job that needed no approval gate: warranty work
// or repairs below the owning branch's approval threshold.
func (s *ApprovalService) CompleteDirect(ctx context.Context, scope org.Scope, req CompleteRequest) (*AssignmentResponse, error) {
	return s.complete(ctx, scope, req, maintenance.AssignmentUnderMaintenance)
}

// CompleteAfterApproval settles a job whose quote was approved
func (s *ApprovalService) CompleteAfterApproval(ctx context.Context, scope org.Scope, req CompleteRequest) (*AssignmentResponse, error) {
	return s.complete(ctx, scope, req, maintenance.AssignmentApproved)
}

// complete runs the settlement transaction: deduct every part line, journal
// the OUT movements, create at most one debt, close the job and flip the
// asset to READY_FOR_RETURN as REPAIRED. Any failure aborts the whole thing.
func (s *ApprovalService) complete(ctx context.Context, scope org.Scope, req CompleteRequest, requiredStatus maintenance.AssignmentStatus) (*AssignmentResponse, error) {
	var assignment *maintenance.ServiceAssignment
	var debt *finance.BranchDebt

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		assignment, err = repos.Assignments().FindByID(ctx, req.AssignmentID)
		if err != nil {
			return err
		}
		if !scope.Covers(assignment.CenterBranchID) {
			return shared.ErrOutOfScope
		}
		if assignment.Status != requiredStatus {
			return shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("Job is %s, expected %s", assignment.Status, requiredStatus))
		}
		if err := enumerateShortfalls(ctx, repos.Inventory(), assignment); err != nil {
			return err
		}

		for _, line := range assignment.Parts {
			item, err := repos.Inventory().FindByBranchAndPart(ctx, assignment.CenterBranchID, line.PartCode)
			if err != nil {
				return err
			}
			if err := item.Deduct(line.Quantity); err != nil {
				return err
			}
			if err := repos.Inventory().SaveWithLock(ctx, item); err != nil {
				return err
			}
			movement := inventory.NewStockMovement(item.BranchID, item.PartCode, inventory.MovementOut,
				line.Quantity, line.UnitPrice, inventory.SourceMaintenance).
				WithSourceRef(assignment.ID, line.Billable).
				WithActor(scope.UserID)
			if err := repos.StockMovements().Append(ctx, movement); err != nil {
				return err
			}
			s.publishEvents(ctx, item.GetDomainEvents())
			item.ClearDomainEvents()
		}

		if assignment.HasBillableParts() {
			debtNumber, err := repos.Debts().GenerateDebtNumber(ctx)
			if err != nil {
				return err
			}
			snapshot := make(maintenance.QuotedParts, 0, len(assignment.Parts))
			for _, line := range assignment.Parts {
				snapshot = append(snapshot, maintenance.QuotedPart{
					PartCode:  line.PartCode,
					PartName:  line.PartName,
					Quantity:  line.Quantity.Value(),
					UnitPrice: line.UnitPrice,
					Total:     line.TotalPrice,
					Billable:  line.Billable,
				})
			}
			debt, err = finance.NewBranchDebt(debtNumber, assignment.OriginBranchID, assignment.CenterBranchID,
				assignment.ID, assignment.SerialNumber, assignment.BillableTotal(), snapshot)
			if err != nil {
				return err
			}
			debt.SetCreatedBy(scope.UserID)
			if err := repos.Debts().Save(ctx, debt); err != nil {
				return err
			}
		}

		if err := assignment.Complete(asset.ResolutionRepaired); err != nil {
			return err
		}
		a, err := repos.Assets().FindByID(ctx, assignment.AssetID)
		if err != nil {
			return err
		}
		from := a.Status
		resolution := asset.ResolutionRepaired
		if err := a.TransitionTo(asset.StatusReadyForReturn, &resolution); err != nil {
			return err
		}

		if err := repos.Assignments().SaveWithLock(ctx, assignment); err != nil {
			return err
		}
		if err := repos.Assets().SaveWithLock(ctx, a); err != nil {
			return err
		}
		payload := asset.LogPayload{"assignment_id": assignment.ID.String()}
		if debt != nil {
			payload["debt_number"] = debt.DebtNumber
		}
		log := asset.NewMovementLog(a, from, a.Status, req.Notes, payload, &scope.UserID)
		return repos.MovementLogs().Append(ctx, log)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, assignment.GetDomainEvents())
	assignment.ClearDomainEvents()
	if s.businessMetrics != nil {
		s.businessMetrics.RecordAssignmentSettled(ctx, assignment.BillableTotal())
	}
	if debt != nil {
		s.publishEvents(ctx, debt.GetDomainEvents())
		debt.ClearDomainEvents()
		s.notify(ctx, shared.Notification{
			BranchID: debt.DebtorBranchID,
			Type:     shared.NotificationDebtCreated,
			Title:    "Repair debt " + debt.DebtNumber,
			Message:  fmt.Sprintf("Amount %s for asset %s", debt.Amount, debt.SerialNumber),
			Payload:  map[string]interface{}{"debt_id": debt.ID.String()},
		})
	}

	response := ToAssignmentResponse(assignment)
	return &response, nil
}

// CloseWithoutRepair ends a job as SCRAPPED or REJECTED_REPAIR. Nothing is
// deducted and no debt is created.
func (s *ApprovalService) CloseWithoutRepair(ctx context.Context, scope org.Scope, req CloseWithoutRepairRequest) (*AssignmentResponse, error) {
	resolution := asset.Resolution(req.Resolution)
	if resolution == asset.ResolutionRepaired || !resolution.IsValid() {
		return nil, shared.NewDomainError("INVALID_RESOLUTION", "Closing without repair requires SCRAPPED or REJECTED_REPAIR")
	}

	var assignment *maintenance.ServiceAssignment
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		assignment, err = repos.Assignments().FindByID(ctx, req.AssignmentID)
		if err != nil {
			return err
		}
		if !scope.Covers(assignment.CenterBranchID) {
			return shared.ErrOutOfScope
		}
		if err := assignment.Complete(resolution); err != nil {
			return err
		}

		a, err := repos.Assets().FindByID(ctx, assignment.AssetID)
		if err != nil {
			return err
		}
		from := a.Status
		if err := a.TransitionTo(asset.StatusReadyForReturn, &resolution); err != nil {
			return err
		}

		if err := repos.Assignments().SaveWithLock(ctx, assignment); err != nil {
			return err
		}
		if err := repos.Assets().SaveWithLock(ctx, a); err != nil {
			return err
		}
		log := asset.NewMovementLog(a, from, a.Status, req.Notes, asset.LogPayload{
			"assignment_id": assignment.ID.String(),
		}, &scope.UserID)
		return repos.MovementLogs().Append(ctx, log)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, assignment.GetDomainEvents())
	assignment.ClearDomainEvents()

	response := ToAssignmentResponse(assignment)
	return &response, nil
}

// ListPendingForBranch lists quotes awaiting an answer from a branch
func (s *ApprovalService) ListPendingForBranch(ctx context.Context, scope org.Scope, branchID uuid.UUID, filter shared.Filter) ([]ApprovalResponse, error) {
	if !scope.Covers(branchID) {
		return nil, shared.ErrOutOfScope
	}
	approvals, err := s.approvalRepo.FindPendingForBranch(ctx, branchID, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]ApprovalResponse, 0, len(approvals))
	for _, a := range approvals {
		responses = append(responses, ToApprovalResponse(a))
	}
	return responses, nil
}

func (s *ApprovalService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
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

func (s *ApprovalService) notify(ctx context.Context, n shared.Notification) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, n)
}

func (s *ApprovalService) logScopeOverride(scope org.Scope, branchID uuid.UUID, operation string) {
	if scope.Unrestricted() && scope.BranchID != branchID {
		s.logger.Info("admin scope override",
			zap.String("operation", operation),
			zap.String("user_id", scope.UserID.String()),
			zap.String("branch_id", branchID.String()))
	}
}
