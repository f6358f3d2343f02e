package telemetry

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInventoryMetricsProvider implements InventoryMetricsProvider using GORM.
// It queries the inventory_items table directly for aggregated metrics.
type GormInventoryMetricsProvider struct {
	db *gorm.DB
}

// NewGormInventoryMetricsProvider creates a new GormInventoryMetricsProvider.
func NewGormInventoryMetricsProvider(db *gorm.DB) *GormInventoryMetricsProvider {
	return &GormInventoryMetricsProvider{db: db}
}

// GetLowStockCountByBranch returns, per branch, the number of parts at or
// below their minimum stock threshold.
func (p *GormInventoryMetricsProvider) GetLowStockCountByBranch(ctx context.Context) (map[uuid.UUID]int64, error) {
	type result struct {
		BranchID uuid.UUID `gorm:"column:branch_id"`
		LowStock int64     `gorm:"column:low_stock"`
	}

	var results []result
	err := p.db.WithContext(ctx).
		Table("inventory_items").
		Select("branch_id, COUNT(*) as low_stock").
		Where("min_quantity > 0 AND quantity <= min_quantity AND deleted_at IS NULL").
		Group("branch_id").
		Find(&results).Error

	if err != nil {
		return nil, err
	}

	m := make(map[uuid.UUID]int64, len(results))
	for _, r := range results {
		m[r.BranchID] = r.LowStock
	}

	return m, nil
}
