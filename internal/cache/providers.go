// Package cache keeps short-lived read models in Redis.
package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"provider-booking-api/internal/model"
)

const providersKey = "providers:list"

// ProviderCache stores the provider listing. A nil *ProviderCache is a
// valid cache that never hits, so callers need no Redis in development.
type ProviderCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewProviderCache(client *redis.Client, ttl time.Duration) *ProviderCache {
	if client == nil {
		return nil
	}
	return &ProviderCache{redis: client, ttl: ttl}
}

// NewClient builds a Redis client, or returns nil when addr is empty.
func NewClient(addr, password string, useTLS bool) *redis.Client {
	if addr == "" {
		return nil
	}
	opts := &redis.Options{Addr: addr, Password: password}
	if useTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return redis.NewClient(opts)
}

// Get returns the cached listing; ok is false on a miss.
func (c *ProviderCache) Get(ctx context.Context) (providers []model.ProviderSummary, ok bool, err error) {
	if c == nil {
		return nil, false, nil
	}
	data, err := c.redis.Get(ctx, providersKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: get providers: %w", err)
	}
	if err := json.Unmarshal(data, &providers); err != nil {
		return nil, false, fmt.Errorf("cache: unmarshal providers: %w", err)
	}
	return providers, true, nil
}

func (c *ProviderCache) Set(ctx context.Context, providers []model.ProviderSummary) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(providers)
	if err != nil {
		return fmt.Errorf("cache: marshal providers: %w", err)
	}
	if err := c.redis.Set(ctx, providersKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: set providers: %w", err)
	}
	return nil
}

// Invalidate drops the listing after a provider is created or changed.
func (c *ProviderCache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if err := c.redis.Del(ctx, providersKey).Err(); err != nil {
		return fmt.Errorf("cache: invalidate providers: %w", err)
	}
	return nil
}
