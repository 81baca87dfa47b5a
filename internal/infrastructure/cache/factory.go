package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/shopstack/backend/internal/domain/shared"
	"github.com/shopstack/backend/internal/infrastructure/config"
)

// Factory creates caches based on configuration.
type Factory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FactoryOption is a functional option for configuring the factory.
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory.
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory
// cache when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a cache factory.
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisCache creates a Redis-backed cache.
func (f *Factory) CreateRedisCache() (shared.Cache, error) {
	cache, err := NewRedisCache(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis cache: %w", err)
	}

	return cache, nil
}

// CreateCache tries Redis first and falls back to the in-memory cache
// when Redis is unavailable and fallback is allowed.
func (f *Factory) CreateCache() (shared.Cache, error) {
	cache, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis cache")
		return cache, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for caching but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory cache. "+
		"Invalidations will not propagate across instances.",
		zap.Error(err),
	)
	return NewInMemoryCache(), nil
}
