package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/assetflow/backend/internal/domain/asset"
	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/assetflow/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAssetRepository implements AssetRepository using GORM
type GormAssetRepository struct {
	db *gorm.DB
}

// NewGormAssetRepository creates a new GormAssetRepository
func NewGormAssetRepository(db *gorm.DB) *GormAssetRepository {
	return &GormAssetRepository{db: db}
}

// FindByID finds an asset by its ID
func (r *GormAssetRepository) FindByID(ctx context.Context, id uuid.UUID) (*asset.Asset, error) {
	var model models.AssetModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySerial finds an asset by its externally unique serial number
func (r *GormAssetRepository) FindBySerial(ctx context.Context, serialNumber string) (*asset.Asset, error) {
	var model models.AssetModel
	if err := r.db.WithContext(ctx).First(&model, "serial_number = ?", serialNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySerials finds all assets whose serial is in the given set
func (r *GormAssetRepository) FindBySerials(ctx context.Context, serialNumbers []string) ([]asset.Asset, error) {
	if len(serialNumbers) == 0 {
		return []asset.Asset{}, nil
	}
	var rows []models.AssetModel
	if err := r.db.WithContext(ctx).
		Where("serial_number IN ?", serialNumbers).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainAssets(rows), nil
}

// FindByBranch finds all assets currently held by a branch
func (r *GormAssetRepository) FindByBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]asset.Asset, error) {
	var rows []models.AssetModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.AssetModel{}).Where("branch_id = ?", branchID),
		filter,
	)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainAssets(rows), nil
}

// Save creates or updates an asset
func (r *GormAssetRepository) Save(ctx context.Context, a *asset.Asset) error {
	model := models.AssetModelFromDomain(a)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking: the update matches the version
// the aggregate was loaded with and advances it by one, regardless of how
// many domain mutations happened in between.
func (r *GormAssetRepository) SaveWithLock(ctx context.Context, a *asset.Asset) error {
	model := models.AssetModelFromDomain(a)
	result := r.db.WithContext(ctx).
		Model(&models.AssetModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version).
		Updates(map[string]interface{}{
			"branch_id":            model.BranchID,
			"status":               model.Status,
			"origin_branch_id":     model.OriginBranchID,
			"active_assignment_id": model.ActiveAssignmentID,
			"resolution":           model.Resolution,
			"version":              model.Version + 1,
			"updated_at":           model.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENCY_CONFLICT", "Asset was modified by another transaction")
	}
	a.IncrementVersion()
	return nil
}

// ExistsBySerial checks whether a serial number is already registered
func (r *GormAssetRepository) ExistsBySerial(ctx context.Context, serialNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.AssetModel{}).
		Where("serial_number = ?", serialNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Count counts assets matching the filter
func (r *GormAssetRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.AssetModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormAssetRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, AssetSortFields, "created_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

func (r *GormAssetRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "branch_id":
			query = query.Where("branch_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "category":
			query = query.Where("category = ?", value)
		case "vendor":
			query = query.Where("vendor = ?", value)
		}
	}

	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(serial_number) LIKE ? OR LOWER(model) LIKE ?", search, search)
	}

	return query
}

func toDomainAssets(rows []models.AssetModel) []asset.Asset {
	assets := make([]asset.Asset, len(rows))
	for i := range rows {
		assets[i] = *rows[i].ToDomain()
	}
	return assets
}

var _ asset.AssetRepository = (*GormAssetRepository)(nil)
