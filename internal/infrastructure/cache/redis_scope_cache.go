package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/assetflow/backend/internal/domain/org"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisScopePrefix = "scope:"

// RedisScopeCache implements ScopeCache using Redis. Suitable for
// distributed deployments where every instance must see an invalidation.
type RedisScopeCache struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisScopeCache creates a new Redis-based scope cache
func NewRedisScopeCache(cfg RedisConfig, ttl time.Duration) (*RedisScopeCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if ttl == 0 {
		ttl = DefaultScopeTTL
	}
	return &RedisScopeCache{client: client, ttl: ttl}, nil
}

// NewRedisScopeCacheWithClient creates a cache with an existing Redis client.
// Useful for testing or when sharing a client across components.
func NewRedisScopeCacheWithClient(client *redis.Client, ttl time.Duration) *RedisScopeCache {
	if ttl == 0 {
		ttl = DefaultScopeTTL
	}
	return &RedisScopeCache{client: client, ttl: ttl}
}

type cachedScope struct {
	UserID             uuid.UUID   `json:"user_id"`
	BranchID           uuid.UUID   `json:"branch_id"`
	AuthorizedBranches []uuid.UUID `json:"authorized_branches,omitempty"`
	Role               string      `json:"role"`
}

// Get retrieves a cached scope, or nil on a miss
func (c *RedisScopeCache) Get(ctx context.Context, userID, branchID uuid.UUID, role org.Role) (*org.Scope, error) {
	data, err := c.client.Get(ctx, scopeKey(userID, branchID, role)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cached scope: %w", err)
	}

	var cached cachedScope
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("failed to decode cached scope: %w", err)
	}
	return &org.Scope{
		UserID:             cached.UserID,
		BranchID:           cached.BranchID,
		AuthorizedBranches: cached.AuthorizedBranches,
		Role:               org.Role(cached.Role),
	}, nil
}

// Set stores a resolved scope
func (c *RedisScopeCache) Set(ctx context.Context, scope org.Scope, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}
	data, err := json.Marshal(cachedScope{
		UserID:             scope.UserID,
		BranchID:           scope.BranchID,
		AuthorizedBranches: scope.AuthorizedBranches,
		Role:               string(scope.Role),
	})
	if err != nil {
		return fmt.Errorf("failed to encode scope: %w", err)
	}
	key := scopeKey(scope.UserID, scope.BranchID, scope.Role)
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache scope: %w", err)
	}
	return nil
}

// InvalidateBranch drops all cached scopes. A manager's cached scope can
// cover the changed branch through the descendant list, which the key does
// not encode, so the whole prefix is cleared. Hierarchy changes are rare.
func (c *RedisScopeCache) InvalidateBranch(ctx context.Context, _ uuid.UUID) error {
	iter := c.client.Scan(ctx, 0, redisScopePrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to invalidate cached scope: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cached scopes: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisScopeCache) Close() error {
	return c.client.Close()
}

var _ ScopeCache = (*RedisScopeCache)(nil)
