// Package accountcache keeps read-only account snapshots in Redis.
package accountcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/Proton-105/socialpulse-onboarding/internal/domain"
)

// DefaultTTL is used when Set receives a non-positive ttl.
const DefaultTTL = 5 * time.Minute

// Cache provides Redis-backed caching for account snapshots.
// Cached snapshots carry no credential and must not feed a write.
type Cache struct {
	client *redis.Client
}

// NewCache constructs an account cache backed by the provided Redis client.
// A nil client yields a cache that never hits.
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Get fetches a cached account snapshot; a miss is nil, nil.
func (c *Cache) Get(ctx context.Context, accountID int64) (*domain.Account, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}

	data, err := c.client.Get(ctx, cacheKey(accountID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cached account: %w", err)
	}

	var account domain.Account
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, fmt.Errorf("decode cached account: %w", err)
	}

	return &account, nil
}

// Set stores the account snapshot for ttl.
func (c *Cache) Set(ctx context.Context, account *domain.Account, ttl time.Duration) error {
	if c == nil || c.client == nil || account == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	payload, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("encode account for cache: %w", err)
	}

	if err := c.client.Set(ctx, cacheKey(account.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("set cached account: %w", err)
	}

	return nil
}

// Invalidate removes the cached snapshot if it exists.
func (c *Cache) Invalidate(ctx context.Context, accountID int64) error {
	if c == nil || c.client == nil {
		return nil
	}

	if err := c.client.Del(ctx, cacheKey(accountID)).Err(); err != nil {
		return fmt.Errorf("delete cached account: %w", err)
	}

	return nil
}

func cacheKey(accountID int64) string {
	return fmt.Sprintf("onboarding:account:%d", accountID)
}
