package cache

import (
	"context"
	"time"

	"github.com/assetflow/backend/internal/domain/org"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CachingScopeResolver wraps a ScopeResolver with a ScopeCache. Cache
// failures degrade to direct resolution, never to a denied request.
type CachingScopeResolver struct {
	inner  org.ScopeResolver
	cache  ScopeCache
	ttl    time.Duration
	logger *zap.Logger
}

// CachingScopeResolverOption is a functional option for configuring the resolver
type CachingScopeResolverOption func(*CachingScopeResolver)

// WithResolverTTL sets the TTL for cached scopes
func WithResolverTTL(ttl time.Duration) CachingScopeResolverOption {
	return func(r *CachingScopeResolver) {
		r.ttl = ttl
	}
}

// WithResolverLogger sets the logger for the resolver
func WithResolverLogger(logger *zap.Logger) CachingScopeResolverOption {
	return func(r *CachingScopeResolver) {
		r.logger = logger
	}
}

// NewCachingScopeResolver creates a new CachingScopeResolver
func NewCachingScopeResolver(inner org.ScopeResolver, cache ScopeCache, opts ...CachingScopeResolverOption) *CachingScopeResolver {
	r := &CachingScopeResolver{
		inner:  inner,
		cache:  cache,
		ttl:    DefaultScopeTTL,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the cached scope when present, resolving and caching otherwise
func (r *CachingScopeResolver) Resolve(ctx context.Context, userID, branchID uuid.UUID, role org.Role) (org.Scope, error) {
	cached, err := r.cache.Get(ctx, userID, branchID, role)
	if err != nil {
		r.logger.Warn("scope cache read failed, resolving directly", zap.Error(err))
	} else if cached != nil {
		return *cached, nil
	}

	scope, err := r.inner.Resolve(ctx, userID, branchID, role)
	if err != nil {
		return org.Scope{}, err
	}

	if err := r.cache.Set(ctx, scope, r.ttl); err != nil {
		r.logger.Warn("scope cache write failed", zap.Error(err))
	}
	return scope, nil
}

// InvalidateBranch drops cached scopes after a hierarchy change
func (r *CachingScopeResolver) InvalidateBranch(ctx context.Context, branchID uuid.UUID) {
	if err := r.cache.InvalidateBranch(ctx, branchID); err != nil {
		r.logger.Warn("scope cache invalidation failed",
			zap.String("branch_id", branchID.String()),
			zap.Error(err),
		)
	}
}

var _ org.ScopeResolver = (*CachingScopeResolver)(nil)
