package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/donolu/enterprise-grc-system-sub000/internal/domain"
)

// TenantCache caches hostname->tenant resolutions
type TenantCache interface {
	Get(ctx context.Context, hostname string) (*domain.Tenant, error)
	Set(ctx context.Context, hostname string, tenant *domain.Tenant) error
	Invalidate(ctx context.Context, hostname string) error
}

// DomainCache caches hostname->tenant mappings in Redis so the registry is
// not hit on every request. Entries carry the tenant status, so lifecycle
// transitions must invalidate; the TTL bounds staleness if one is missed.
type DomainCache struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewDomainCache creates a new resolution cache
func NewDomainCache(redisClient *redis.Client, ttl time.Duration) *DomainCache {
	return &DomainCache{
		redis: redisClient,
		ttl:   ttl,
	}
}

func cacheKey(hostname string) string {
	return fmt.Sprintf("resolver:domain:%s", hostname)
}

// Get returns the cached tenant for a hostname, if present
func (c *DomainCache) Get(ctx context.Context, hostname string) (*domain.Tenant, error) {
	data, err := c.redis.Get(ctx, cacheKey(hostname)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read resolution cache: %w", err)
	}

	var tenant domain.Tenant
	if err := json.Unmarshal(data, &tenant); err != nil {
		return nil, fmt.Errorf("failed to decode cached tenant: %w", err)
	}

	return &tenant, nil
}

// Set stores a hostname->tenant mapping with TTL
func (c *DomainCache) Set(ctx context.Context, hostname string, tenant *domain.Tenant) error {
	data, err := json.Marshal(tenant)
	if err != nil {
		return fmt.Errorf("failed to encode tenant for cache: %w", err)
	}

	if err := c.redis.Set(ctx, cacheKey(hostname), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write resolution cache: %w", err)
	}

	return nil
}

// Invalidate removes the cached mapping for a hostname
func (c *DomainCache) Invalidate(ctx context.Context, hostname string) error {
	if err := c.redis.Del(ctx, cacheKey(hostname)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate resolution cache: %w", err)
	}
	return nil
}
