package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	appbilling "github.com/dmflow/backend/internal/application/billing"
	"github.com/dmflow/backend/internal/infrastructure/config"
)

const tierKeyPrefix = "tier:user:"

// TierCache caches resolved tiers in Redis, keyed per user. Entries
// expire after the configured TTL, bounding how stale a resolution can
// get even if an invalidation is missed.
type TierCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewClient creates a Redis client from configuration and verifies the
// connection
func NewClient(cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// NewTierCache creates a tier cache with the given TTL
func NewTierCache(client *redis.Client, ttl time.Duration) *TierCache {
	return &TierCache{client: client, ttl: ttl}
}

// GetUserTier returns the cached resolution for the user, or nil on a miss
func (c *TierCache) GetUserTier(ctx context.Context, userID uuid.UUID) (*appbilling.ResolvedTier, error) {
	data, err := c.client.Get(ctx, tierKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var resolved appbilling.ResolvedTier
	if err := json.Unmarshal(data, &resolved); err != nil {
		// A corrupt entry is treated as a miss and dropped.
		c.client.Del(ctx, tierKey(userID))
		return nil, nil
	}
	return &resolved, nil
}

// SetUserTier caches the resolution for the user
func (c *TierCache) SetUserTier(ctx context.Context, userID uuid.UUID, resolved *appbilling.ResolvedTier) error {
	data, err := json.Marshal(resolved)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, tierKey(userID), data, c.ttl).Err()
}

// InvalidateUser drops the cached resolution for one user
func (c *TierCache) InvalidateUser(ctx context.Context, userID uuid.UUID) error {
	return c.client.Del(ctx, tierKey(userID)).Err()
}

// Flush drops every cached resolution. Called after catalog or
// subscription writes, which can change any user's effective tier.
func (c *TierCache) Flush(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, tierKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func tierKey(userID uuid.UUID) string {
	return tierKeyPrefix + userID.String()
}

// Ensure TierCache implements the interface
var _ appbilling.TierCache = (*TierCache)(nil)
