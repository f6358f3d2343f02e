package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/assetflow/backend/internal/domain/org"
	"github.com/google/uuid"
)

// Default TTL for cached scopes. Hierarchy changes invalidate explicitly,
// the TTL only bounds staleness after missed invalidations.
const DefaultScopeTTL = 5 * time.Minute

// ScopeCache stores resolved authorization scopes keyed by actor claims.
type ScopeCache interface {
	// Get returns the cached scope, or nil on a miss.
	Get(ctx context.Context, userID, branchID uuid.UUID, role org.Role) (*org.Scope, error)
	// Set stores a resolved scope. A zero ttl uses the cache default.
	Set(ctx context.Context, scope org.Scope, ttl time.Duration) error
	// InvalidateBranch drops every cached scope that covers the branch.
	InvalidateBranch(ctx context.Context, branchID uuid.UUID) error
	// Close releases cache resources.
	Close() error
}

// scopeKey builds the cache key for one actor's claims
func scopeKey(userID, branchID uuid.UUID, role org.Role) string {
	return fmt.Sprintf("scope:%s:%s:%s", userID, branchID, role)
}
