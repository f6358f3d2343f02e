package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/assetflow/backend/internal/domain/transfer"
	"github.com/assetflow/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const transferOrderPrefix = "TRF"

// GormTransferOrderRepository implements TransferOrderRepository using GORM
type GormTransferOrderRepository struct {
	db *gorm.DB
}

// NewGormTransferOrderRepository creates a new GormTransferOrderRepository
func NewGormTransferOrderRepository(db *gorm.DB) *GormTransferOrderRepository {
	return &GormTransferOrderRepository{db: db}
}

// FindByID finds a transfer order with its manifest by ID
func (r *GormTransferOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*transfer.TransferOrder, error) {
	var model models.TransferOrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrderNumber finds a transfer order with its manifest by order number
func (r *GormTransferOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*transfer.TransferOrder, error) {
	var model models.TransferOrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&model, "order_number = ?", orderNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByBranch finds transfer orders where the branch is source or destination
func (r *GormTransferOrderRepository) FindByBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]transfer.TransferOrder, error) {
	var rows []models.TransferOrderModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.TransferOrderModel{}).
			Where("source_branch_id = ? OR destination_branch_id = ?", branchID, branchID),
		filter,
	)
	if err := query.Preload("Items").Find(&rows).Error; err != nil {
		return nil, err
	}
	orders := make([]transfer.TransferOrder, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, nil
}

// FindPendingBySerial returns open orders (PENDING or PARTIAL) whose manifest
// includes the given serial. Used to reject double-shipping.
func (r *GormTransferOrderRepository) FindPendingBySerial(ctx context.Context, serialNumber string) ([]transfer.TransferOrder, error) {
	var rows []models.TransferOrderModel
	if err := r.db.WithContext(ctx).
		Joins("JOIN transfer_order_items ON transfer_order_items.order_id = transfer_orders.id").
		Where("transfer_order_items.serial_number = ?", serialNumber).
		Where("transfer_orders.status IN ?", []string{
			string(transfer.TransferOrderStatusPending),
			string(transfer.TransferOrderStatusPartial),
		}).
		Preload("Items").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	orders := make([]transfer.TransferOrder, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, nil
}

// Save creates or updates a transfer order together with its manifest lines
func (r *GormTransferOrderRepository) Save(ctx context.Context, order *transfer.TransferOrder) error {
	model := models.TransferOrderModelFromDomain(order)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := model.Items
		model.Items = nil
		if err := tx.Save(model).Error; err != nil {
			return err
		}

		// Manifest lines are fixed at dispatch; only the received flags move.
		for i := range items {
			if err := tx.Save(&items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GenerateOrderNumber derives the next date-scoped sequential order number.
// Format: TRF-YYYYMMDD-NNNN (e.g. TRF-20260830-0001)
func (r *GormTransferOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("%s-%s-", transferOrderPrefix, time.Now().Format("20060102"))

	var lastNumber string
	err := r.db.WithContext(ctx).
		Model(&models.TransferOrderModel{}).
		Where("order_number LIKE ?", prefix+"%").
		Order("order_number DESC").
		Limit(1).
		Pluck("order_number", &lastNumber).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if lastNumber != "" {
		parts := strings.Split(lastNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	return fmt.Sprintf("%s%04d", prefix, nextNum), nil
}

// Count counts transfer orders matching the filter
func (r *GormTransferOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.TransferOrderModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormTransferOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, TransferOrderSortFields, "created_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

func (r *GormTransferOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "purpose":
			query = query.Where("purpose = ?", value)
		case "source_branch_id":
			query = query.Where("source_branch_id = ?", value)
		case "destination_branch_id":
			query = query.Where("destination_branch_id = ?", value)
		}
	}

	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(order_number) LIKE ?", search)
	}

	return query
}

var _ transfer.TransferOrderRepository = (*GormTransferOrderRepository)(nil)
