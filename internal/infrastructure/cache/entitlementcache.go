package cache

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/postforge/postforge/internal/domain/plan"
	"github.com/postforge/postforge/internal/shared/logger"
)

const (
	entitlementKeyPrefix = "entitlement:plan:"
	// Subscriptions expire by date without an event, so entries stay short.
	baseEntitlementTTL   = 5 * time.Minute
	entitlementTTLJitter = 2 * time.Minute
	fieldPlan            = "plan"
	fieldCachedAt        = "cached_at"
)

// RedisEntitlementCache stores each user's resolved effective plan in a hash.
type RedisEntitlementCache struct {
	client *redis.Client
	logger logger.Interface
}

func NewRedisEntitlementCache(client *redis.Client, logger logger.Interface) *RedisEntitlementCache {
	return &RedisEntitlementCache{
		client: client,
		logger: logger,
	}
}

func (c *RedisEntitlementCache) key(userID uint) string {
	return fmt.Sprintf("%s%d", entitlementKeyPrefix, userID)
}

func (c *RedisEntitlementCache) GetPlan(ctx context.Context, userID uint) (plan.Tier, bool, error) {
	result, err := c.client.HGetAll(ctx, c.key(userID)).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to get plan from cache: %w", err)
	}
	tier, ok := result[fieldPlan]
	if !ok || tier == "" {
		return "", false, nil
	}
	return plan.Tier(tier), true, nil
}

func (c *RedisEntitlementCache) SetPlan(ctx context.Context, userID uint, tier plan.Tier) error {
	key := c.key(userID)

	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		fieldPlan:     tier.String(),
		fieldCachedAt: strconv.FormatInt(time.Now().Unix(), 10),
	})
	pipe.Expire(ctx, key, entitlementTTLWithJitter())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set plan in cache: %w", err)
	}

	c.logger.Debugw("effective plan cached", "user_id", userID, "plan", tier)
	return nil
}

func (c *RedisEntitlementCache) InvalidatePlan(ctx context.Context, userID uint) error {
	if err := c.client.Del(ctx, c.key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate plan cache: %w", err)
	}
	c.logger.Debugw("effective plan cache invalidated", "user_id", userID)
	return nil
}

// entitlementTTLWithJitter spreads expiry so entries written together do not
// expire together.
func entitlementTTLWithJitter() time.Duration {
	return baseEntitlementTTL + time.Duration(rand.Int64N(int64(entitlementTTLJitter)))
}
