package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/assetflow/backend/internal/domain/finance"
	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/assetflow/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const branchDebtPrefix = "DBT"

// GormBranchDebtRepository implements BranchDebtRepository using GORM
type GormBranchDebtRepository struct {
	db *gorm.DB
}

// NewGormBranchDebtRepository creates a new GormBranchDebtRepository
func NewGormBranchDebtRepository(db *gorm.DB) *GormBranchDebtRepository {
	return &GormBranchDebtRepository{db: db}
}

// FindByID finds a debt by its ID
func (r *GormBranchDebtRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.BranchDebt, error) {
	var model models.BranchDebtModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByDebtNumber finds a debt by its unique debt number
func (r *GormBranchDebtRepository) FindByDebtNumber(ctx context.Context, debtNumber string) (*finance.BranchDebt, error) {
	var model models.BranchDebtModel
	if err := r.db.WithContext(ctx).First(&model, "debt_number = ?", debtNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByAssignment finds the single debt created for a settled repair job
func (r *GormBranchDebtRepository) FindByAssignment(ctx context.Context, assignmentID uuid.UUID) (*finance.BranchDebt, error) {
	var model models.BranchDebtModel
	if err := r.db.WithContext(ctx).First(&model, "assignment_id = ?", assignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByDebtor finds debts owed by a branch
func (r *GormBranchDebtRepository) FindByDebtor(ctx context.Context, debtorBranchID uuid.UUID, filter shared.Filter) ([]*finance.BranchDebt, error) {
	var rows []models.BranchDebtModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.BranchDebtModel{}).
			Where("debtor_branch_id = ?", debtorBranchID),
		filter,
	)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainDebts(rows), nil
}

// FindByCreditor finds debts owed to a branch
func (r *GormBranchDebtRepository) FindByCreditor(ctx context.Context, creditorBranchID uuid.UUID, filter shared.Filter) ([]*finance.BranchDebt, error) {
	var rows []models.BranchDebtModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.BranchDebtModel{}).
			Where("creditor_branch_id = ?", creditorBranchID),
		filter,
	)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainDebts(rows), nil
}

// Save creates or updates a debt
func (r *GormBranchDebtRepository) Save(ctx context.Context, debt *finance.BranchDebt) error {
	model := models.BranchDebtModelFromDomain(debt)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormBranchDebtRepository) SaveWithLock(ctx context.Context, debt *finance.BranchDebt) error {
	model := models.BranchDebtModelFromDomain(debt)
	result := r.db.WithContext(ctx).
		Model(&models.BranchDebtModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version).
		Updates(map[string]interface{}{
			"paid_amount":        model.PaidAmount,
			"outstanding_amount": model.OutstandingAmount,
			"status":             model.Status,
			"payments":           model.Payments,
			"settled_at":         model.SettledAt,
			"version":            model.Version + 1,
			"updated_at":         model.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENCY_CONFLICT", "Branch debt was modified by another transaction")
	}
	debt.IncrementVersion()
	return nil
}

// GenerateDebtNumber derives the next date-scoped sequential debt number.
// Format: DBT-YYYYMMDD-NNNN (e.g. DBT-20260830-0001)
func (r *GormBranchDebtRepository) GenerateDebtNumber(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("%s-%s-", branchDebtPrefix, time.Now().Format("20060102"))

	var lastNumber string
	err := r.db.WithContext(ctx).
		Model(&models.BranchDebtModel{}).
		Where("debt_number LIKE ?", prefix+"%").
		Order("debt_number DESC").
		Limit(1).
		Pluck("debt_number", &lastNumber).Error
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

// Count counts debts in which the branch is debtor or creditor, optionally by status
func (r *GormBranchDebtRepository) Count(ctx context.Context, branchID uuid.UUID, status finance.DebtStatus) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&models.BranchDebtModel{}).
		Where("debtor_branch_id = ? OR creditor_branch_id = ?", branchID, branchID)
	if status != "" {
		query = query.Where("status = ?", string(status))
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormBranchDebtRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "serial_number":
			query = query.Where("serial_number = ?", value)
		}
	}

	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(debt_number) LIKE ?", search)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, BranchDebtSortFields, "created_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

func toDomainDebts(rows []models.BranchDebtModel) []*finance.BranchDebt {
	debts := make([]*finance.BranchDebt, len(rows))
	for i := range rows {
		debts[i] = rows[i].ToDomain()
	}
	return debts
}

var _ finance.BranchDebtRepository = (*GormBranchDebtRepository)(nil)
