package maintenance

import (
	"context"

	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ServiceAssignmentRepository defines persistence for repair jobs
type ServiceAssignmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ServiceAssignment, error)
	FindOpenByAsset(ctx context.Context, assetID uuid.UUID) (*ServiceAssignment, error)
	FindByCenter(ctx context.Context, centerBranchID uuid.UUID, filter shared.Filter) ([]*ServiceAssignment, error)
	FindByTechnician(ctx context.Context, technicianID uuid.UUID, filter shared.Filter) ([]*ServiceAssignment, error)
	Save(ctx context.Context, assignment *ServiceAssignment) error
	SaveWithLock(ctx context.Context, assignment *ServiceAssignment) error
	Count(ctx context.Context, centerBranchID uuid.UUID, status AssignmentStatus) (int64, error)
}

// MaintenanceApprovalRepository defines persistence for repair quotes
type MaintenanceApprovalRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*MaintenanceApproval, error)
	FindPendingByAssignment(ctx context.Context, assignmentID uuid.UUID) (*MaintenanceApproval, error)
	FindPendingForBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]*MaintenanceApproval, error)
	Save(ctx context.Context, approval *MaintenanceApproval) error
}
