package persistence

import (
	"context"

	"github.com/assetflow/backend/internal/domain/inventory"
	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/assetflow/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStockMovementRepository implements StockMovementRepository using GORM.
// The journal is append-only; no update or delete methods exist.
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// Append writes a new journal line
func (r *GormStockMovementRepository) Append(ctx context.Context, movement *inventory.StockMovement) error {
	model := models.StockMovementModelFromDomain(movement)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByBranch returns the stock journal for a branch
func (r *GormStockMovementRepository) FindByBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]*inventory.StockMovement, error) {
	var rows []models.StockMovementModel
	query := r.db.WithContext(ctx).
		Model(&models.StockMovementModel{}).
		Where("branch_id = ?", branchID)

	for key, value := range filter.Filters {
		switch key {
		case "part_code":
			query = query.Where("part_code = ?", value)
		case "direction":
			query = query.Where("direction = ?", value)
		case "source":
			query = query.Where("source = ?", value)
		case "billable":
			query = query.Where("billable = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, CommonSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainStockMovements(rows), nil
}

// FindBySource returns the journal lines recorded for one originating event
func (r *GormStockMovementRepository) FindBySource(ctx context.Context, source inventory.MovementSource, sourceID uuid.UUID) ([]*inventory.StockMovement, error) {
	var rows []models.StockMovementModel
	if err := r.db.WithContext(ctx).
		Where("source = ? AND source_id = ?", string(source), sourceID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainStockMovements(rows), nil
}

func toDomainStockMovements(rows []models.StockMovementModel) []*inventory.StockMovement {
	movements := make([]*inventory.StockMovement, len(rows))
	for i := range rows {
		movements[i] = rows[i].ToDomain()
	}
	return movements
}

var _ inventory.StockMovementRepository = (*GormStockMovementRepository)(nil)
