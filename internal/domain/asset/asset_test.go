package asset

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAsset(t *testing.T) *Asset {
	t.Helper()
	a, err := NewAsset("SN-001", CategoryPOSMachine, "V200", "Verifone", uuid.New())
	require.NoError(t, err)
	a.ClearDomainEvents()
	return a
}

func TestNewAsset(t *testing.T) {
	branchID := uuid.New()

	t.Run("creates asset in NEW status", func(t *testing.T) {
		a, err := NewAsset("SN-100", CategorySIMCard, "", "", branchID)
		require.NoError(t, err)
		assert.Equal(t, StatusNew, a.Status)
		assert.Equal(t, branchID, a.BranchID)
		assert.Nil(t, a.OriginBranchID)
		assert.Len(t, a.GetDomainEvents(), 1)
	})

	t.Run("rejects empty serial", func(t *testing.T) {
		_, err := NewAsset("", CategoryPOSMachine, "", "", branchID)
		assert.Error(t, err)
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		_, err := NewAsset("SN-101", AssetCategory("TABLET"), "", "", branchID)
		assert.Error(t, err)
	})

	t.Run("rejects nil branch", func(t *testing.T) {
		_, err := NewAsset("SN-102", CategoryPOSMachine, "", "", uuid.Nil)
		assert.Error(t, err)
	})
}

func TestAssetStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    AssetStatus
		to      AssetStatus
		allowed bool
	}{
		{"in transit to received", StatusInTransit, StatusReceivedAtCenter, true},
		{"received to inspection", StatusReceivedAtCenter, StatusUnderInspection, true},
		{"received to assigned", StatusReceivedAtCenter, StatusAssigned, true},
		{"assigned to in progress", StatusAssigned, StatusInProgress, true},
		{"assigned to inspection", StatusAssigned, StatusUnderInspection, true},
		{"inspection to awaiting approval", StatusUnderInspection, StatusAwaitingApproval, true},
		{"inspection to in progress", StatusUnderInspection, StatusInProgress, true},
		{"inspection to ready for return", StatusUnderInspection, StatusReadyForReturn, true},
		{"inspection back to assigned", StatusUnderInspection, StatusAssigned, true},
		{"awaiting approval to in progress", StatusAwaitingApproval, StatusInProgress, true},
		{"awaiting approval to ready for return", StatusAwaitingApproval, StatusReadyForReturn, true},
		{"in progress to ready for return", StatusInProgress, StatusReadyForReturn, true},
		{"ready for return to returning", StatusReadyForReturn, StatusReturning, true},
		{"returning to completed", StatusReturning, StatusCompleted, true},

		{"new cannot enter table directly", StatusNew, StatusReceivedAtCenter, false},
		{"completed cannot re-enter table", StatusCompleted, StatusInTransit, false},
		{"in transit cannot skip to assigned", StatusInTransit, StatusAssigned, false},
		{"in progress cannot go back to assigned", StatusInProgress, StatusAssigned, false},
		{"returning cannot revert", StatusReturning, StatusReadyForReturn, false},
		{"sold is terminal", StatusSold, StatusNew, false},
		{"scrapped is terminal", StatusScrapped, StatusNew, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestAssetTransitionTo(t *testing.T) {
	t.Run("follows the table", func(t *testing.T) {
		a := newTestAsset(t)
		require.NoError(t, a.BeginTransit())
		require.NoError(t, a.TransitionTo(StatusReceivedAtCenter, nil))
		require.NoError(t, a.TransitionTo(StatusAssigned, nil))
		require.NoError(t, a.TransitionTo(StatusInProgress, nil))
		assert.Equal(t, StatusInProgress, a.Status)
	})

	t.Run("ready for return requires a resolution", func(t *testing.T) {
		a := newTestAsset(t)
		require.NoError(t, a.BeginTransit())
		require.NoError(t, a.TransitionTo(StatusReceivedAtCenter, nil))
		require.NoError(t, a.TransitionTo(StatusUnderInspection, nil))

		err := a.TransitionTo(StatusReadyForReturn, nil)
		assert.Error(t, err)
		assert.Equal(t, StatusUnderInspection, a.Status)

		res := ResolutionRepaired
		require.NoError(t, a.TransitionTo(StatusReadyForReturn, &res))
		require.NotNil(t, a.Resolution)
		assert.Equal(t, ResolutionRepaired, *a.Resolution)
	})

	t.Run("rejects invalid resolution value", func(t *testing.T) {
		a := newTestAsset(t)
		require.NoError(t, a.BeginTransit())
		require.NoError(t, a.TransitionTo(StatusReceivedAtCenter, nil))
		require.NoError(t, a.TransitionTo(StatusUnderInspection, nil))

		bad := Resolution("FIXED")
		err := a.TransitionTo(StatusReadyForReturn, &bad)
		assert.Error(t, err)
	})

	t.Run("rejects off-table move", func(t *testing.T) {
		a := newTestAsset(t)
		err := a.TransitionTo(StatusReceivedAtCenter, nil)
		assert.Error(t, err)
	})
}

func TestAssetBeginTransit(t *testing.T) {
	t.Run("NEW may begin transit", func(t *testing.T) {
		a := newTestAsset(t)
		require.NoError(t, a.BeginTransit())
		assert.Equal(t, StatusInTransit, a.Status)
	})

	t.Run("COMPLETED may begin transit", func(t *testing.T) {
		a := newTestAsset(t)
		a.Status = StatusCompleted
		require.NoError(t, a.BeginTransit())
		assert.Equal(t, StatusInTransit, a.Status)
	})

	t.Run("mid-cycle statuses may not", func(t *testing.T) {
		for _, s := range []AssetStatus{StatusInTransit, StatusReceivedAtCenter, StatusAssigned, StatusInProgress, StatusSold, StatusScrapped} {
			a := newTestAsset(t)
			a.Status = s
			assert.Error(t, a.BeginTransit(), "status %s", s)
		}
	})
}

func TestAssetForceIntake(t *testing.T) {
	center := uuid.New()

	t.Run("accepts any status and stamps origin", func(t *testing.T) {
		a := newTestAsset(t)
		home := a.BranchID
		a.Status = StatusSold

		require.NoError(t, a.ForceIntake(center))
		assert.Equal(t, StatusReceivedAtCenter, a.Status)
		assert.Equal(t, center, a.BranchID)
		require.NotNil(t, a.OriginBranchID)
		assert.Equal(t, home, *a.OriginBranchID)
	})

	t.Run("preserves an existing origin stamp", func(t *testing.T) {
		a := newTestAsset(t)
		origin := uuid.New()
		a.OriginBranchID = &origin
		a.BranchID = uuid.New()

		require.NoError(t, a.ForceIntake(center))
		assert.Equal(t, origin, *a.OriginBranchID)
	})

	t.Run("clears a stale resolution", func(t *testing.T) {
		a := newTestAsset(t)
		res := ResolutionRepaired
		a.Resolution = &res
		require.NoError(t, a.ForceIntake(center))
		assert.Nil(t, a.Resolution)
	})

	t.Run("rejects nil center", func(t *testing.T) {
		a := newTestAsset(t)
		assert.Error(t, a.ForceIntake(uuid.Nil))
	})
}

func TestAssetConfirmReturned(t *testing.T) {
	t.Run("completes at origin and releases the stamp", func(t *testing.T) {
		a := newTestAsset(t)
		origin := a.BranchID
		center := uuid.New()
		require.NoError(t, a.BeginTransit())
		require.NoError(t, a.TransitionTo(StatusReceivedAtCenter, nil))
		a.StampOrigin(origin)
		a.BranchID = center
		require.NoError(t, a.TransitionTo(StatusUnderInspection, nil))
		res := ResolutionRepaired
		require.NoError(t, a.TransitionTo(StatusReadyForReturn, &res))
		require.NoError(t, a.TransitionTo(StatusReturning, nil))

		require.NoError(t, a.ConfirmReturned())
		assert.Equal(t, StatusCompleted, a.Status)
		assert.Equal(t, origin, a.BranchID)
		assert.Nil(t, a.OriginBranchID)
	})

	t.Run("rejected outside RETURNING", func(t *testing.T) {
		a := newTestAsset(t)
		assert.Error(t, a.ConfirmReturned())
	})
}

func TestAssetTransitRollback(t *testing.T) {
	t.Run("abort transit keeps current branch", func(t *testing.T) {
		a := newTestAsset(t)
		home := a.BranchID
		require.NoError(t, a.BeginTransit())
		require.NoError(t, a.AbortTransit())
		assert.Equal(t, StatusNew, a.Status)
		assert.Equal(t, home, a.BranchID)
	})

	t.Run("abort return preserves resolution", func(t *testing.T) {
		a := newTestAsset(t)
		res := ResolutionScrapped
		a.Status = StatusReadyForReturn
		a.Resolution = &res
		require.NoError(t, a.TransitionTo(StatusReturning, nil))
		require.NoError(t, a.AbortReturn())
		assert.Equal(t, StatusReadyForReturn, a.Status)
		require.NotNil(t, a.Resolution)
		assert.Equal(t, ResolutionScrapped, *a.Resolution)
	})

	t.Run("stock arrival lands as NEW at destination", func(t *testing.T) {
		a := newTestAsset(t)
		dest := uuid.New()
		require.NoError(t, a.BeginTransit())
		require.NoError(t, a.ConfirmStockArrival(dest))
		assert.Equal(t, StatusNew, a.Status)
		assert.Equal(t, dest, a.BranchID)
	})

	t.Run("stock arrival requires transit", func(t *testing.T) {
		a := newTestAsset(t)
		assert.Error(t, a.ConfirmStockArrival(uuid.New()))
	})
}

func TestAssetAssignmentLink(t *testing.T) {
	a := newTestAsset(t)
	first := uuid.New()

	require.NoError(t, a.AttachAssignment(first))
	err := a.AttachAssignment(uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "active service assignment")

	a.DetachAssignment()
	assert.NoError(t, a.AttachAssignment(uuid.New()))
}

func TestAssetRetirement(t *testing.T) {
	t.Run("sell from NEW", func(t *testing.T) {
		a := newTestAsset(t)
		require.NoError(t, a.MarkSold())
		assert.Equal(t, StatusSold, a.Status)
	})

	t.Run("cannot sell mid-cycle", func(t *testing.T) {
		a := newTestAsset(t)
		require.NoError(t, a.BeginTransit())
		assert.Error(t, a.MarkSold())
	})

	t.Run("cannot scrap twice", func(t *testing.T) {
		a := newTestAsset(t)
		require.NoError(t, a.MarkScrapped())
		assert.Error(t, a.MarkScrapped())
	})
}

func TestAssetAvailableForTransfer(t *testing.T) {
	tests := []struct {
		status    AssetStatus
		available bool
	}{
		{StatusNew, true},
		{StatusCompleted, true},
		{StatusReadyForReturn, true},
		{StatusInTransit, false},
		{StatusReceivedAtCenter, false},
		{StatusInProgress, false},
		{StatusReturning, false},
		{StatusSold, false},
		{StatusScrapped, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			a := newTestAsset(t)
			a.Status = tt.status
			assert.Equal(t, tt.available, a.AvailableForTransfer())
		})
	}
}
