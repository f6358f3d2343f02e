package persistence

import (
	"context"
	"errors"

	"github.com/assetflow/backend/internal/domain/maintenance"
	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/assetflow/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMaintenanceApprovalRepository implements MaintenanceApprovalRepository using GORM
type GormMaintenanceApprovalRepository struct {
	db *gorm.DB
}

// NewGormMaintenanceApprovalRepository creates a new GormMaintenanceApprovalRepository
func NewGormMaintenanceApprovalRepository(db *gorm.DB) *GormMaintenanceApprovalRepository {
	return &GormMaintenanceApprovalRepository{db: db}
}

// FindByID finds an approval by its ID
func (r *GormMaintenanceApprovalRepository) FindByID(ctx context.Context, id uuid.UUID) (*maintenance.MaintenanceApproval, error) {
	var model models.MaintenanceApprovalModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindPendingByAssignment finds the open quote for an assignment
func (r *GormMaintenanceApprovalRepository) FindPendingByAssignment(ctx context.Context, assignmentID uuid.UUID) (*maintenance.MaintenanceApproval, error) {
	var model models.MaintenanceApprovalModel
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND status = ?", assignmentID, string(maintenance.ApprovalPending)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindPendingForBranch finds quotes awaiting an answer from a branch
func (r *GormMaintenanceApprovalRepository) FindPendingForBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]*maintenance.MaintenanceApproval, error) {
	var rows []models.MaintenanceApprovalModel
	query := r.db.WithContext(ctx).
		Model(&models.MaintenanceApprovalModel{}).
		Where("responding_branch_id = ? AND status = ?", branchID, string(maintenance.ApprovalPending))

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, CommonSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	approvals := make([]*maintenance.MaintenanceApproval, len(rows))
	for i := range rows {
		approvals[i] = rows[i].ToDomain()
	}
	return approvals, nil
}

// Save creates or updates an approval
func (r *GormMaintenanceApprovalRepository) Save(ctx context.Context, approval *maintenance.MaintenanceApproval) error {
	model := models.MaintenanceApprovalModelFromDomain(approval)
	return r.db.WithContext(ctx).Save(model).Error
}

var _ maintenance.MaintenanceApprovalRepository = (*GormMaintenanceApprovalRepository)(nil)
