package maintenance

import (
	"context"
	"fmt"

	"github.com/assetflow/backend/internal/domain/asset"
	"github.com/assetflow/backend/internal/domain/inventory"
	"github.com/assetflow/backend/internal/domain/maintenance"
	"github.com/assetflow/backend/internal/domain/org"
	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/assetflow/backend/internal/domain/shared/valueobject"
	"github.com/assetflow/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WorkflowService drives the repair cycle at a maintenance center: intake,
// technician assignment, status transitions and diagnosis.
type WorkflowService struct {
	txScope         TransactionScope
	assetRepo       asset.AssetRepository
	assignmentRepo  maintenance.ServiceAssignmentRepository
	branchRepo      org.BranchRepository
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
}

// NewWorkflowService creates a new WorkflowService
func NewWorkflowService(
	txScope TransactionScope,
	assetRepo asset.AssetRepository,
	assignmentRepo maintenance.ServiceAssignmentRepository,
	branchRepo org.BranchRepository,
) *WorkflowService {
	return &WorkflowService{
		txScope:        txScope,
		assetRepo:      assetRepo,
		assignmentRepo: assignmentRepo,
		branchRepo:     branchRepo,
		logger:         zap.NewNop(),
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *WorkflowService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *WorkflowService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// SetLogger sets the service logger
func (s *WorkflowService) SetLogger(logger *zap.Logger) {
	s.logger = logger
}

// Intake registers an asset arriving at the center outside a transfer order:
// walk-ins and repeat repairs re-enter the cycle here from any status.
func (s *WorkflowService) Intake(ctx context.Context, scope org.Scope, req IntakeRequest) error {
	center, err := s.branchRepo.FindByID(ctx, scope.BranchID)
	if err != nil {
		return err
	}
	if !center.IsCenter() {
		return shared.NewDomainError("NOT_A_CENTER", "Intake is only available at a maintenance center")
	}

	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		a, err := repos.Assets().FindBySerial(ctx, req.SerialNumber)
		if err != nil {
			return err
		}
		from := a.Status
		if err := a.ForceIntake(center.ID); err != nil {
			return err
		}
		if err := repos.Assets().SaveWithLock(ctx, a); err != nil {
			return err
		}
		log := asset.NewMovementLog(a, from, a.Status, req.Notes, asset.LogPayload{
			"intake": "direct",
		}, &scope.UserID)
		return repos.MovementLogs().Append(ctx, log)
	})
}

// Assign hands a received asset to a technician and opens the repair job
func (s *WorkflowService) Assign(ctx context.Context, scope org.Scope, req AssignRequest) (*AssignmentResponse, error) {
	var assignment *maintenance.ServiceAssignment

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		a, err := repos.Assets().FindBySerial(ctx, req.SerialNumber)
		if err != nil {
			return err
		}
		if !scope.Covers(a.BranchID) {
			return shared.ErrOutOfScope
		}
		if a.OriginBranchID == nil {
			return shared.NewDomainError("MISSING_ORIGIN", "Asset has no recorded origin branch")
		}

		assignment, err = maintenance.NewServiceAssignment(a.ID, a.SerialNumber, req.TechnicianID, a.BranchID, *a.OriginBranchID)
		if err != nil {
			return err
		}
		assignment.SetCreatedBy(scope.UserID)

		from := a.Status
		if err := a.TransitionTo(asset.StatusAssigned, nil); err != nil {
			return err
		}
		if err := a.AttachAssignment(assignment.ID); err != nil {
			return err
		}
		if err := repos.Assignments().Save(ctx, assignment); err != nil {
			return err
		}
		if err := repos.Assets().SaveWithLock(ctx, a); err != nil {
			return err
		}
		log := asset.NewMovementLog(a, from, a.Status, "", asset.LogPayload{
			"assignment_id": assignment.ID.String(),
			"technician_id": req.TechnicianID.String(),
		}, &scope.UserID)
		return repos.MovementLogs().Append(ctx, log)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, assignment.GetDomainEvents())
	assignment.ClearDomainEvents()
	if s.businessMetrics != nil {
		s.businessMetrics.RecordAssignmentOpened(ctx)
	}

	response := ToAssignmentResponse(assignment)
	return &response, nil
}

// Transition moves an asset along the repair cycle table. Terminal moves
// into READY_FOR_RETURN go through the settlement services, not here.
func (s *WorkflowService) Transition(ctx context.Context, scope org.Scope, req TransitionRequest) error {
	target := asset.AssetStatus(req.TargetStatus)
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown status %q", req.TargetStatus))
	}
	if target == asset.StatusReadyForReturn {
		return shared.NewDomainError("INVALID_TRANSITION",
			"READY_FOR_RETURN is reached by settling or closing the repair job")
	}
	if target == asset.StatusAwaitingApproval {
		return shared.NewDomainError("INVALID_TRANSITION",
			"AWAITING_APPROVAL is reached by requesting an approval")
	}

	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		a, err := repos.Assets().FindBySerial(ctx, req.SerialNumber)
		if err != nil {
			return err
		}
		if !scope.Covers(a.BranchID) {
			return shared.ErrOutOfScope
		}
		from := a.Status
		if err := a.TransitionTo(target, nil); err != nil {
			return err
		}
		if err := repos.Assets().SaveWithLock(ctx, a); err != nil {
			return err
		}
		log := asset.NewMovementLog(a, from, a.Status, req.Notes, nil, &scope.UserID)
		return repos.MovementLogs().Append(ctx, log)
	})
}

// Diagnose records the technician's findings, labor cost and the planned
// part consumption on the open job. Part names and prices come from the
// center's inventory catalog; availability is checked but not reserved.
func (s *WorkflowService) Diagnose(ctx context.Context, scope org.Scope, assignmentID uuid.UUID, req DiagnoseRequest) (*AssignmentResponse, error) {
	var assignment *maintenance.ServiceAssignment

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		assignment, err = repos.Assignments().FindByID(ctx, assignmentID)
		if err != nil {
			return err
		}
		if !scope.Covers(assignment.CenterBranchID) {
			return shared.ErrOutOfScope
		}

		if req.Notes != "" {
			if err := assignment.SetDiagnosis(req.Notes); err != nil {
				return err
			}
		}
		if !req.LaborCost.IsZero() {
			if err := assignment.SetLaborCost(req.LaborCost); err != nil {
				return err
			}
		}

		for _, line := range req.Parts {
			item, err := repos.Inventory().FindByBranchAndPart(ctx, assignment.CenterBranchID, line.PartCode)
			if err != nil {
				return err
			}
			qty, err := valueobject.NewQuantityFromInt(line.Quantity)
			if err != nil {
				return err
			}
			if !item.CanCover(qty) {
				return shared.NewDomainError("INSUFFICIENT_STOCK",
					fmt.Sprintf("Part %s: requested %s, available %s", line.PartCode, qty, item.Quantity))
			}
			billable := line.Billable == nil || *line.Billable
			if _, err := assignment.AddPart(item.PartCode, item.PartName, qty, item.UnitPrice, billable); err != nil {
				return err
			}
		}
		return repos.Assignments().SaveWithLock(ctx, assignment)
	})
	if err != nil {
		return nil, err
	}

	response := ToAssignmentResponse(assignment)
	return &response, nil
}

// GetAssignment retrieves a repair job visible to the caller's scope
func (s *WorkflowService) GetAssignment(ctx context.Context, scope org.Scope, assignmentID uuid.UUID) (*AssignmentResponse, error) {
	assignment, err := s.assignmentRepo.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if !scope.Covers(assignment.CenterBranchID) && !scope.Covers(assignment.OriginBranchID) {
		return nil, shared.ErrOutOfScope
	}
	response := ToAssignmentResponse(assignment)
	return &response, nil
}

// ListByCenter lists repair jobs at a center
func (s *WorkflowService) ListByCenter(ctx context.Context, scope org.Scope, centerBranchID uuid.UUID, filter shared.Filter) ([]AssignmentResponse, error) {
	if !scope.Covers(centerBranchID) {
		return nil, shared.ErrOutOfScope
	}
	assignments, err := s.assignmentRepo.FindByCenter(ctx, centerBranchID, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		responses = append(responses, ToAssignmentResponse(a))
	}
	return responses, nil
}

func (s *WorkflowService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
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

// enumerateShortfalls checks every part line against the center's stock and
// returns one error naming all shortfalls, or nil when everything is covered.
func enumerateShortfalls(ctx context.Context, repo inventory.InventoryItemRepository, assignment *maintenance.ServiceAssignment) error {
	var shortfalls []string
	for _, line := range assignment.Parts {
		item, err := repo.FindByBranchAndPart(ctx, assignment.CenterBranchID, line.PartCode)
		if err != nil {
			return err
		}
		if !item.CanCover(line.Quantity) {
			shortfalls = append(shortfalls,
				fmt.Sprintf("%s: requested %s, available %s", line.PartCode, line.Quantity, item.Quantity))
		}
	}
	if len(shortfalls) > 0 {
		msg := "Insufficient stock for: "
		for i, sf := range shortfalls {
			if i > 0 {
				msg += "; "
			}
			msg += sf
		}
		return shared.NewDomainError("INSUFFICIENT_STOCK", msg)
	}
	return nil
}
