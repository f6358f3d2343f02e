package persistence

import (
	"context"
	"testing"

	"github.com/assetflow/backend/internal/domain/asset"
	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAsset(t *testing.T, serial string, branchID uuid.UUID) *asset.Asset {
	t.Helper()
	a, err := asset.NewAsset(serial, asset.CategoryPOSMachine, "V2 Pro", "Ingenico", branchID)
	require.NoError(t, err)
	return a
}

func TestGormAssetRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormAssetRepository(db)
	ctx := context.Background()

	branchID := uuid.New()
	a := newTestAsset(t, "SN-1001", branchID)
	require.NoError(t, repo.Save(ctx, a))

	t.Run("finds by ID", func(t *testing.T) {
		found, err := repo.FindByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "SN-1001", found.SerialNumber)
		assert.Equal(t, asset.StatusNew, found.Status)
		assert.Equal(t, branchID, found.BranchID)
	})

	t.Run("finds by serial", func(t *testing.T) {
		found, err := repo.FindBySerial(ctx, "SN-1001")
		require.NoError(t, err)
		assert.Equal(t, a.ID, found.ID)
	})

	t.Run("returns not found for unknown serial", func(t *testing.T) {
		_, err := repo.FindBySerial(ctx, "SN-MISSING")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormAssetRepository_FindBySerials(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormAssetRepository(db)
	ctx := context.Background()

	branchID := uuid.New()
	require.NoError(t, repo.Save(ctx, newTestAsset(t, "SN-2001", branchID)))
	require.NoError(t, repo.Save(ctx, newTestAsset(t, "SN-2002", branchID)))
	require.NoError(t, repo.Save(ctx, newTestAsset(t, "SN-2003", branchID)))

	found, err := repo.FindBySerials(ctx, []string{"SN-2001", "SN-2003", "SN-9999"})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	empty, err := repo.FindBySerials(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGormAssetRepository_ExistsBySerial(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormAssetRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newTestAsset(t, "SN-3001", uuid.New())))

	exists, err := repo.ExistsBySerial(ctx, "SN-3001")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsBySerial(ctx, "SN-3002")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGormAssetRepository_SaveWithLock(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormAssetRepository(db)
	ctx := context.Background()

	t.Run("persists changes when version matches", func(t *testing.T) {
		a := newTestAsset(t, "SN-4001", uuid.New())
		require.NoError(t, repo.Save(ctx, a))

		require.NoError(t, a.BeginTransit())
		require.NoError(t, repo.SaveWithLock(ctx, a))

		found, err := repo.FindByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, asset.StatusInTransit, found.Status)
		assert.Equal(t, a.Version, found.Version)
	})

	t.Run("saves once after several mutations", func(t *testing.T) {
		origin := uuid.New()
		center := uuid.New()
		a := newTestAsset(t, "SN-4003", origin)
		require.NoError(t, repo.Save(ctx, a))

		loaded, err := repo.FindByID(ctx, a.ID)
		require.NoError(t, err)
		require.NoError(t, loaded.BeginTransit())
		require.NoError(t, loaded.TransitionTo(asset.StatusReceivedAtCenter, nil))
		loaded.StampOrigin(origin)
		require.NoError(t, loaded.TransferOwnership(center))
		require.NoError(t, repo.SaveWithLock(ctx, loaded))

		found, err := repo.FindByID(ctx, loaded.ID)
		require.NoError(t, err)
		assert.Equal(t, asset.StatusReceivedAtCenter, found.Status)
		assert.Equal(t, center, found.BranchID)
		assert.Equal(t, loaded.Version, found.Version)

		// The in-memory aggregate stays saveable without a reload.
		require.NoError(t, loaded.TransitionTo(asset.StatusUnderInspection, nil))
		require.NoError(t, repo.SaveWithLock(ctx, loaded))
	})

	t.Run("rejects stale version", func(t *testing.T) {
		a := newTestAsset(t, "SN-4002", uuid.New())
		require.NoError(t, repo.Save(ctx, a))

		stale, err := repo.FindByID(ctx, a.ID)
		require.NoError(t, err)

		require.NoError(t, a.BeginTransit())
		require.NoError(t, repo.SaveWithLock(ctx, a))

		require.NoError(t, stale.BeginTransit())
		err = repo.SaveWithLock(ctx, stale)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CONCURRENCY_CONFLICT", domainErr.Code)
	})
}

func TestGormAssetRepository_FindByBranch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormAssetRepository(db)
	ctx := context.Background()

	branchA := uuid.New()
	branchB := uuid.New()
	require.NoError(t, repo.Save(ctx, newTestAsset(t, "SN-5001", branchA)))
	require.NoError(t, repo.Save(ctx, newTestAsset(t, "SN-5002", branchA)))
	require.NoError(t, repo.Save(ctx, newTestAsset(t, "SN-5003", branchB)))

	found, err := repo.FindByBranch(ctx, branchA, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Len(t, found, 2)

	filter := shared.DefaultFilter()
	filter.Filters["status"] = string(asset.StatusNew)
	found, err = repo.FindByBranch(ctx, branchB, filter)
	require.NoError(t, err)
	assert.Len(t, found, 1)
	assert.Equal(t, "SN-5003", found[0].SerialNumber)
}
