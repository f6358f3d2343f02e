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

// GormServiceAssignmentRepository implements ServiceAssignmentRepository using GORM
type GormServiceAssignmentRepository struct {
	db *gorm.DB
}

// NewGormServiceAssignmentRepository creates a new GormServiceAssignmentRepository
func NewGormServiceAssignmentRepository(db *gorm.DB) *GormServiceAssignmentRepository {
	return &GormServiceAssignmentRepository{db: db}
}

// FindByID finds a service assignment with its part lines by ID
func (r *GormServiceAssignmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*maintenance.ServiceAssignment, error) {
	var model models.ServiceAssignmentModel
	if err := r.db.WithContext(ctx).
		Preload("Parts").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindOpenByAsset finds the single non-returned assignment for an asset
func (r *GormServiceAssignmentRepository) FindOpenByAsset(ctx context.Context, assetID uuid.UUID) (*maintenance.ServiceAssignment, error) {
	var model models.ServiceAssignmentModel
	if err := r.db.WithContext(ctx).
		Preload("Parts").
		Where("asset_id = ? AND status <> ?", assetID, string(maintenance.AssignmentReturned)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCenter finds assignments processed at a maintenance center
func (r *GormServiceAssignmentRepository) FindByCenter(ctx context.Context, centerBranchID uuid.UUID, filter shared.Filter) ([]*maintenance.ServiceAssignment, error) {
	var rows []models.ServiceAssignmentModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.ServiceAssignmentModel{}).
			Where("center_branch_id = ?", centerBranchID),
		filter,
	)
	if err := query.Preload("Parts").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainAssignments(rows), nil
}

// FindByTechnician finds assignments held by a technician
func (r *GormServiceAssignmentRepository) FindByTechnician(ctx context.Context, technicianID uuid.UUID, filter shared.Filter) ([]*maintenance.ServiceAssignment, error) {
	var rows []models.ServiceAssignmentModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.ServiceAssignmentModel{}).
			Where("technician_id = ?", technicianID),
		filter,
	)
	if err := query.Preload("Parts").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainAssignments(rows), nil
}

// Save creates or updates an assignment together with its part lines
func (r *GormServiceAssignmentRepository) Save(ctx context.Context, assignment *maintenance.ServiceAssignment) error {
	model := models.ServiceAssignmentModelFromDomain(assignment)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		parts := model.Parts
		model.Parts = nil
		if err := tx.Save(model).Error; err != nil {
			return err
		}

		currentIDs := make([]uuid.UUID, len(parts))
		for i := range parts {
			currentIDs[i] = parts[i].ID
		}
		if len(currentIDs) > 0 {
			if err := tx.Where("assignment_id = ? AND id NOT IN ?", model.ID, currentIDs).
				Delete(&models.PartLineModel{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("assignment_id = ?", model.ID).
				Delete(&models.PartLineModel{}).Error; err != nil {
				return err
			}
		}

		for i := range parts {
			if err := tx.Save(&parts[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormServiceAssignmentRepository) SaveWithLock(ctx context.Context, assignment *maintenance.ServiceAssignment) error {
	model := models.ServiceAssignmentModelFromDomain(assignment)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ServiceAssignmentModel{}).
			Where("id = ? AND version = ?", model.ID, model.Version).
			Updates(map[string]interface{}{
				"status":              model.Status,
				"resolution":          model.Resolution,
				"diagnosis_notes":     model.DiagnosisNotes,
				"labor_cost":          model.LaborCost,
				"pending_transfer_id": model.PendingTransferID,
				"completed_at":        model.CompletedAt,
				"version":             model.Version + 1,
				"updated_at":          model.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENCY_CONFLICT", "Service assignment was modified by another transaction")
		}

		for i := range model.Parts {
			if err := tx.Save(&model.Parts[i]).Error; err != nil {
				return err
			}
		}
		assignment.IncrementVersion()
		return nil
	})
}

// Count counts assignments at a center, optionally narrowed to one status
func (r *GormServiceAssignmentRepository) Count(ctx context.Context, centerBranchID uuid.UUID, status maintenance.AssignmentStatus) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&models.ServiceAssignmentModel{}).
		Where("center_branch_id = ?", centerBranchID)
	if status != "" {
		query = query.Where("status = ?", string(status))
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormServiceAssignmentRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "origin_branch_id":
			query = query.Where("origin_branch_id = ?", value)
		case "serial_number":
			query = query.Where("serial_number = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, ServiceAssignmentSortFields, "created_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

func toDomainAssignments(rows []models.ServiceAssignmentModel) []*maintenance.ServiceAssignment {
	assignments := make([]*maintenance.ServiceAssignment, len(rows))
	for i := range rows {
		assignments[i] = rows[i].ToDomain()
	}
	return assignments
}

var _ maintenance.ServiceAssignmentRepository = (*GormServiceAssignmentRepository)(nil)
