package cache

import (
	"fmt"
	"time"

	"github.com/assetflow/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ScopeCacheFactory creates scope caches based on configuration
type ScopeCacheFactory struct {
	redisConfig           config.RedisConfig
	ttl                   time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ScopeCacheFactoryOption is a functional option for configuring the factory
type ScopeCacheFactoryOption func(*ScopeCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ScopeCacheFactoryOption {
	return func(f *ScopeCacheFactory) {
		f.logger = logger
	}
}

// WithTTL sets the TTL for cached scopes
func WithTTL(ttl time.Duration) ScopeCacheFactoryOption {
	return func(f *ScopeCacheFactory) {
		f.ttl = ttl
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) ScopeCacheFactoryOption {
	return func(f *ScopeCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewScopeCacheFactory creates a new factory
func NewScopeCacheFactory(cfg config.RedisConfig, opts ...ScopeCacheFactoryOption) *ScopeCacheFactory {
	f := &ScopeCacheFactory{
		redisConfig:           cfg,
		ttl:                   DefaultScopeTTL,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateRedisCache creates a Redis-based scope cache
func (f *ScopeCacheFactory) CreateRedisCache() (ScopeCache, error) {
	cache, err := NewRedisScopeCache(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, f.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis scope cache: %w", err)
	}
	return cache, nil
}

// CreateInMemoryCache creates an in-memory scope cache
func (f *ScopeCacheFactory) CreateInMemoryCache() ScopeCache {
	return NewInMemoryScopeCache(
		WithScopeTTL(f.ttl),
		WithScopeCacheLogger(f.logger),
	)
}

// CreateCache creates a scope cache, preferring Redis and falling back to
// in-memory when Redis is unavailable and fallback is allowed.
func (f *ScopeCacheFactory) CreateCache() (ScopeCache, error) {
	cache, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis scope cache")
		return cache, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for scope cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory scope cache. "+
		"Branch invalidations will not reach other instances.",
		zap.Error(err),
	)
	return f.CreateInMemoryCache(), nil
}
