package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/assetflow/backend/internal/domain/org"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultCleanupInterval = 30 * time.Second

// InMemoryScopeCache implements ScopeCache using in-process storage.
// Suitable for single-instance deployments and tests; in a multi-instance
// deployment InvalidateBranch only reaches the local process.
type InMemoryScopeCache struct {
	entries sync.Map // map[string]*scopeEntry
	ttl     time.Duration
	logger  *zap.Logger
	stopCh  chan struct{}
	stopped int32

	hits   int64
	misses int64
}

type scopeEntry struct {
	scope     org.Scope
	expiresAt time.Time
}

func (e *scopeEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryScopeCacheOption is a functional option for configuring the cache
type InMemoryScopeCacheOption func(*InMemoryScopeCache)

// WithScopeTTL sets the default TTL for cached scopes
func WithScopeTTL(ttl time.Duration) InMemoryScopeCacheOption {
	return func(c *InMemoryScopeCache) {
		c.ttl = ttl
	}
}

// WithScopeCacheLogger sets the logger for the cache
func WithScopeCacheLogger(logger *zap.Logger) InMemoryScopeCacheOption {
	return func(c *InMemoryScopeCache) {
		c.logger = logger
	}
}

// NewInMemoryScopeCache creates a new in-memory scope cache
func NewInMemoryScopeCache(opts ...InMemoryScopeCacheOption) *InMemoryScopeCache {
	cache := &InMemoryScopeCache{
		ttl:    DefaultScopeTTL,
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(cache)
	}

	go cache.cleanupExpired()

	return cache
}

// Get retrieves a cached scope, or nil on a miss
func (c *InMemoryScopeCache) Get(_ context.Context, userID, branchID uuid.UUID, role org.Role) (*org.Scope, error) {
	key := scopeKey(userID, branchID, role)

	if value, ok := c.entries.Load(key); ok {
		entry := value.(*scopeEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			scope := entry.scope
			return &scope, nil
		}
		c.entries.Delete(key)
	}

	atomic.AddInt64(&c.misses, 1)
	return nil, nil
}

// Set stores a resolved scope
func (c *InMemoryScopeCache) Set(_ context.Context, scope org.Scope, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}
	key := scopeKey(scope.UserID, scope.BranchID, scope.Role)
	c.entries.Store(key, &scopeEntry{
		scope:     scope,
		expiresAt: time.Now().Add(ttl),
	})
	return nil
}

// InvalidateBranch drops every cached scope that covers the branch
func (c *InMemoryScopeCache) InvalidateBranch(_ context.Context, branchID uuid.UUID) error {
	var dropped int
	c.entries.Range(func(key, value interface{}) bool {
		entry := value.(*scopeEntry)
		if entry.scope.Covers(branchID) {
			c.entries.Delete(key)
			dropped++
		}
		return true
	})
	c.logger.Debug("invalidated cached scopes for branch",
		zap.String("branch_id", branchID.String()),
		zap.Int("dropped", dropped),
	)
	return nil
}

// Stats returns hit and miss counts for monitoring
func (c *InMemoryScopeCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Close stops the background cleanup goroutine
func (c *InMemoryScopeCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

func (c *InMemoryScopeCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.entries.Range(func(key, value interface{}) bool {
				if value.(*scopeEntry).isExpired() {
					c.entries.Delete(key)
				}
				return true
			})
		}
	}
}

var _ ScopeCache = (*InMemoryScopeCache)(nil)
