package persistence

import (
	"context"
	"testing"

	"github.com/assetflow/backend/internal/domain/inventory"
	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/assetflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInventoryItem(t *testing.T, branchID uuid.UUID, partCode string, qty int64) *inventory.InventoryItem {
	t.Helper()
	item, err := inventory.NewInventoryItem(branchID, partCode, "Printer Head", decimal.NewFromInt(25))
	require.NoError(t, err)
	if qty > 0 {
		require.NoError(t, item.Increase(valueobject.MustNewQuantity(decimal.NewFromInt(qty))))
	}
	return item
}

func TestGormInventoryItemRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInventoryItemRepository(db)
	ctx := context.Background()

	branchID := uuid.New()
	item := newTestInventoryItem(t, branchID, "PRT-HEAD", 10)
	require.NoError(t, repo.Save(ctx, item))

	t.Run("finds by branch and part", func(t *testing.T) {
		found, err := repo.FindByBranchAndPart(ctx, branchID, "PRT-HEAD")
		require.NoError(t, err)
		assert.Equal(t, item.ID, found.ID)
		assert.True(t, found.Quantity.Value().Equal(decimal.NewFromInt(10)))
	})

	t.Run("returns not found for unknown part", func(t *testing.T) {
		_, err := repo.FindByBranchAndPart(ctx, branchID, "NO-SUCH-PART")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormInventoryItemRepository_SaveWithLock(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInventoryItemRepository(db)
	ctx := context.Background()

	branchID := uuid.New()
	item := newTestInventoryItem(t, branchID, "CARD-READER", 5)
	require.NoError(t, repo.Save(ctx, item))

	t.Run("persists deduction when version matches", func(t *testing.T) {
		require.NoError(t, item.Deduct(valueobject.MustNewQuantity(decimal.NewFromInt(2))))
		require.NoError(t, repo.SaveWithLock(ctx, item))

		found, err := repo.FindByID(ctx, item.ID)
		require.NoError(t, err)
		assert.True(t, found.Quantity.Value().Equal(decimal.NewFromInt(3)))
	})

	t.Run("rejects stale version", func(t *testing.T) {
		stale, err := repo.FindByID(ctx, item.ID)
		require.NoError(t, err)

		require.NoError(t, item.Deduct(valueobject.MustNewQuantity(decimal.NewFromInt(1))))
		require.NoError(t, repo.SaveWithLock(ctx, item))

		require.NoError(t, stale.Deduct(valueobject.MustNewQuantity(decimal.NewFromInt(1))))
		err = repo.SaveWithLock(ctx, stale)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CONCURRENCY_CONFLICT", domainErr.Code)
	})
}

func TestGormInventoryItemRepository_FindBelowThreshold(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInventoryItemRepository(db)
	ctx := context.Background()

	branchID := uuid.New()

	low := newTestInventoryItem(t, branchID, "SIM-TRAY", 2)
	low.SetMinQuantity(valueobject.MustNewQuantity(decimal.NewFromInt(5)))
	require.NoError(t, repo.Save(ctx, low))

	healthy := newTestInventoryItem(t, branchID, "BATTERY", 20)
	healthy.SetMinQuantity(valueobject.MustNewQuantity(decimal.NewFromInt(5)))
	require.NoError(t, repo.Save(ctx, healthy))

	noThreshold := newTestInventoryItem(t, branchID, "SCREW", 0)
	require.NoError(t, repo.Save(ctx, noThreshold))

	found, err := repo.FindBelowThreshold(ctx, branchID)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "SIM-TRAY", found[0].PartCode)
}

func TestGormInventoryItemRepository_CountByBranch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInventoryItemRepository(db)
	ctx := context.Background()

	branchA := uuid.New()
	branchB := uuid.New()
	require.NoError(t, repo.Save(ctx, newTestInventoryItem(t, branchA, "PRT-HEAD", 1)))
	require.NoError(t, repo.Save(ctx, newTestInventoryItem(t, branchA, "BATTERY", 1)))
	require.NoError(t, repo.Save(ctx, newTestInventoryItem(t, branchB, "PRT-HEAD", 1)))

	count, err := repo.CountByBranch(ctx, branchA)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
