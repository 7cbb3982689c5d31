package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/medstore/backend/internal/domain/shared"
	"github.com/medstore/backend/internal/infrastructure/auth"
	"github.com/medstore/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Stores bundles the key-value backed stores of the server. They share one
// Redis client when Redis is enabled and reachable, and fall back to
// in-process implementations otherwise.
type Stores struct {
	Idempotency shared.IdempotencyStore
	Blacklist   auth.TokenBlacklist
	client      *redis.Client
}

// StoresOption configures NewStores
type StoresOption func(*storesOptions)

type storesOptions struct {
	logger                *zap.Logger
	allowInMemoryFallback bool
	pingTimeout           time.Duration
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) StoresOption {
	return func(o *storesOptions) {
		o.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// in-memory stores (default true) or fails startup
func WithInMemoryFallback(allow bool) StoresOption {
	return func(o *storesOptions) {
		o.allowInMemoryFallback = allow
	}
}

// NewRedisClient connects to Redis and verifies the connection with PING
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, timeout time.Duration) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr(), err)
	}
	return client, nil
}

// NewStores builds the idempotency store and token blacklist
func NewStores(ctx context.Context, cfg config.RedisConfig, opts ...StoresOption) (*Stores, error) {
	o := &storesOptions{
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		pingTimeout:           5 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}

	if cfg.Enabled {
		client, err := NewRedisClient(ctx, cfg, o.pingTimeout)
		if err == nil {
			o.logger.Info("Using Redis for idempotency keys and token blacklist", zap.String("addr", cfg.Addr()))
			return NewRedisStores(client), nil
		}
		if !o.allowInMemoryFallback {
			return nil, fmt.Errorf("redis required but unavailable: %w", err)
		}
		o.logger.Warn("Redis unavailable, falling back to in-memory stores. "+
			"Idempotency keys and revoked tokens will not be shared across instances.",
			zap.Error(err))
	}

	return NewInMemoryStores(), nil
}

// NewRedisStores builds Redis-backed stores on client. Close closes client.
func NewRedisStores(client *redis.Client) *Stores {
	return &Stores{
		Idempotency: NewRedisIdempotencyStore(client, ""),
		Blacklist:   auth.NewRedisTokenBlacklist(client),
		client:      client,
	}
}

// NewInMemoryStores builds process-local stores
func NewInMemoryStores() *Stores {
	return &Stores{
		Idempotency: NewInMemoryIdempotencyStore(),
		Blacklist:   auth.NewInMemoryTokenBlacklist(),
	}
}

// UsesRedis reports whether the stores are Redis-backed
func (s *Stores) UsesRedis() bool {
	return s.client != nil
}

// Ping checks Redis health. In-memory stores are always healthy.
func (s *Stores) Ping(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Ping(ctx).Err()
}

// Close releases the stores and the Redis client
func (s *Stores) Close() error {
	var errs []error
	if err := s.Idempotency.Close(); err != nil {
		errs = append(errs, err)
	}
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
