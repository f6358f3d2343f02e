package persistence

import (
	"context"

	"github.com/assetflow/backend/internal/domain/asset"
	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/assetflow/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMovementLogRepository implements MovementLogRepository using GORM.
// The journal is append-only; no update or delete methods exist.
type GormMovementLogRepository struct {
	db *gorm.DB
}

// NewGormMovementLogRepository creates a new GormMovementLogRepository
func NewGormMovementLogRepository(db *gorm.DB) *GormMovementLogRepository {
	return &GormMovementLogRepository{db: db}
}

// Append writes a new audit entry
func (r *GormMovementLogRepository) Append(ctx context.Context, log *asset.MovementLog) error {
	model := models.MovementLogModelFromDomain(log)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByAsset returns the audit trail for an asset, newest first by default
func (r *GormMovementLogRepository) FindByAsset(ctx context.Context, assetID uuid.UUID, filter shared.Filter) ([]asset.MovementLog, error) {
	var rows []models.MovementLogModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.MovementLogModel{}).Where("asset_id = ?", assetID),
		filter,
	)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainMovementLogs(rows), nil
}

// FindBySerial returns the audit trail for a serial number
func (r *GormMovementLogRepository) FindBySerial(ctx context.Context, serialNumber string, filter shared.Filter) ([]asset.MovementLog, error) {
	var rows []models.MovementLogModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.MovementLogModel{}).Where("serial_number = ?", serialNumber),
		filter,
	)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainMovementLogs(rows), nil
}

func (r *GormMovementLogRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "branch_id":
			query = query.Where("branch_id = ?", value)
		case "to_status":
			query = query.Where("to_status = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, CommonSortFields, "created_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

func toDomainMovementLogs(rows []models.MovementLogModel) []asset.MovementLog {
	logs := make([]asset.MovementLog, len(rows))
	for i := range rows {
		logs[i] = *rows[i].ToDomain()
	}
	return logs
}

var _ asset.MovementLogRepository = (*GormMovementLogRepository)(nil)
