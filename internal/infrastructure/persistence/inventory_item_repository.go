package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/assetflow/backend/internal/domain/inventory"
	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/assetflow/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInventoryItemRepository implements InventoryItemRepository using GORM
type GormInventoryItemRepository struct {
	db *gorm.DB
}

// NewGormInventoryItemRepository creates a new GormInventoryItemRepository
func NewGormInventoryItemRepository(db *gorm.DB) *GormInventoryItemRepository {
	return &GormInventoryItemRepository{db: db}
}

// FindByID finds an inventory item by its ID
func (r *GormInventoryItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.InventoryItem, error) {
	var model models.InventoryItemModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByBranchAndPart finds the inventory row for a branch-part combination
func (r *GormInventoryItemRepository) FindByBranchAndPart(ctx context.Context, branchID uuid.UUID, partCode string) (*inventory.InventoryItem, error) {
	var model models.InventoryItemModel
	if err := r.db.WithContext(ctx).
		Where("branch_id = ? AND part_code = ?", branchID, partCode).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByBranch finds all inventory items held by a branch
func (r *GormInventoryItemRepository) FindByBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]*inventory.InventoryItem, error) {
	var rows []models.InventoryItemModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.InventoryItemModel{}).Where("branch_id = ?", branchID),
		filter,
	)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainInventoryItems(rows), nil
}

// FindBelowThreshold finds items at or below their low-stock threshold
func (r *GormInventoryItemRepository) FindBelowThreshold(ctx context.Context, branchID uuid.UUID) ([]*inventory.InventoryItem, error) {
	var rows []models.InventoryItemModel
	if err := r.db.WithContext(ctx).
		Where("branch_id = ? AND min_quantity > 0 AND quantity <= min_quantity", branchID).
		Order("part_code ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainInventoryItems(rows), nil
}

// Save creates or updates an inventory item
func (r *GormInventoryItemRepository) Save(ctx context.Context, item *inventory.InventoryItem) error {
	model := models.InventoryItemModelFromDomain(item)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormInventoryItemRepository) SaveWithLock(ctx context.Context, item *inventory.InventoryItem) error {
	model := models.InventoryItemModelFromDomain(item)
	result := r.db.WithContext(ctx).
		Model(&models.InventoryItemModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version).
		Updates(map[string]interface{}{
			"part_name":    model.PartName,
			"quantity":     model.Quantity,
			"unit_price":   model.UnitPrice,
			"min_quantity": model.MinQuantity,
			"version":      model.Version + 1,
			"updated_at":   model.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENCY_CONFLICT", "Inventory item was modified by another transaction")
	}
	item.IncrementVersion()
	return nil
}

// CountByBranch counts the inventory rows held by a branch
func (r *GormInventoryItemRepository) CountByBranch(ctx context.Context, branchID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InventoryItemModel{}).
		Where("branch_id = ?", branchID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormInventoryItemRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "part_code":
			query = query.Where("part_code = ?", value)
		case "below_threshold":
			if value == true {
				query = query.Where("min_quantity > 0 AND quantity <= min_quantity")
			}
		case "has_stock":
			if value == true {
				query = query.Where("quantity > 0")
			}
		}
	}

	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(part_code) LIKE ? OR LOWER(part_name) LIKE ?", search, search)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, InventoryItemSortFields, "part_code")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

func toDomainInventoryItems(rows []models.InventoryItemModel) []*inventory.InventoryItem {
	items := make([]*inventory.InventoryItem, len(rows))
	for i := range rows {
		items[i] = rows[i].ToDomain()
	}
	return items
}

var _ inventory.InventoryItemRepository = (*GormInventoryItemRepository)(nil)
