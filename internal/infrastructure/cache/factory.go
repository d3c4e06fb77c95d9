package cache

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gridbase/backend/internal/infrastructure/config"
)

// IdempotencyStoreFactory picks the idempotency store backend. Redis is
// the default; the in-memory store covers development and tests.
type IdempotencyStoreFactory struct {
	redisCfg   config.RedisConfig
	logger     *zap.Logger
	fallbackOK bool
}

// IdempotencyStoreFactoryOption configures the factory
type IdempotencyStoreFactoryOption func(*IdempotencyStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) { f.logger = logger }
}

// WithInMemoryFallback controls whether an unreachable Redis falls back
// to the in-memory store. Enabled by default.
func WithInMemoryFallback(allow bool) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) { f.fallbackOK = allow }
}

// NewIdempotencyStoreFactory creates a new factory
func NewIdempotencyStoreFactory(cfg config.RedisConfig, opts ...IdempotencyStoreFactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{
		redisCfg:   cfg,
		logger:     zap.NewNop(),
		fallbackOK: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateRedisStore creates a Redis-based idempotency store
func (f *IdempotencyStoreFactory) CreateRedisStore() (IdempotencyStore, error) {
	store, err := NewRedisIdempotencyStore(RedisConfig{
		Host:     f.redisCfg.Host,
		Port:     f.redisCfg.Port,
		Password: f.redisCfg.Password,
		DB:       f.redisCfg.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis idempotency store: %w", err)
	}
	return store, nil
}

// CreateInMemoryStore creates an in-memory idempotency store.
// Suitable for single-instance deployments and testing; replays are
// not shared across process instances.
func (f *IdempotencyStoreFactory) CreateInMemoryStore() IdempotencyStore {
	return NewInMemoryIdempotencyStore(time.Minute)
}

// CreateStore tries Redis first and falls back to in-memory when Redis
// is unavailable and fallback is allowed
func (f *IdempotencyStoreFactory) CreateStore() (IdempotencyStore, error) {
	store, err := f.CreateRedisStore()
	if err == nil {
		f.logger.Info("using Redis idempotency store")
		return store, nil
	}
	if !f.fallbackOK {
		return nil, fmt.Errorf("Redis required for idempotency but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory idempotency store. "+
		"Replayed invoice requests will not be detected across instances.",
		zap.Error(err),
	)
	return f.CreateInMemoryStore(), nil
}
