package cache

import (
	"context"
	"testing"

	"github.com/assetflow/backend/internal/domain/org"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingResolver struct {
	calls int
	scope org.Scope
	err   error
}

func (r *countingResolver) Resolve(_ context.Context, userID, branchID uuid.UUID, role org.Role) (org.Scope, error) {
	r.calls++
	if r.err != nil {
		return org.Scope{}, r.err
	}
	scope := r.scope
	scope.UserID = userID
	scope.BranchID = branchID
	scope.Role = role
	return scope, nil
}

func TestCachingScopeResolver_ResolvesOnceThenCaches(t *testing.T) {
	cache := NewInMemoryScopeCache()
	defer cache.Close()

	inner := &countingResolver{}
	resolver := NewCachingScopeResolver(inner, cache)
	ctx := context.Background()

	userID := uuid.New()
	branchID := uuid.New()

	first, err := resolver.Resolve(ctx, userID, branchID, org.RoleBranchStaff)
	require.NoError(t, err)
	assert.Equal(t, userID, first.UserID)
	assert.Equal(t, 1, inner.calls)

	second, err := resolver.Resolve(ctx, userID, branchID, org.RoleBranchStaff)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)
}

func TestCachingScopeResolver_InvalidateBranchForcesReresolve(t *testing.T) {
	cache := NewInMemoryScopeCache()
	defer cache.Close()

	inner := &countingResolver{}
	resolver := NewCachingScopeResolver(inner, cache)
	ctx := context.Background()

	userID := uuid.New()
	branchID := uuid.New()

	_, err := resolver.Resolve(ctx, userID, branchID, org.RoleBranchStaff)
	require.NoError(t, err)

	resolver.InvalidateBranch(ctx, branchID)

	_, err = resolver.Resolve(ctx, userID, branchID, org.RoleBranchStaff)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachingScopeResolver_PropagatesResolverError(t *testing.T) {
	cache := NewInMemoryScopeCache()
	defer cache.Close()

	inner := &countingResolver{err: assert.AnError}
	resolver := NewCachingScopeResolver(inner, cache)

	_, err := resolver.Resolve(context.Background(), uuid.New(), uuid.New(), org.RoleBranchStaff)
	assert.ErrorIs(t, err, assert.AnError)
}
