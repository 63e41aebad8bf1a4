package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/planwise/nutrisync/internal/domain"
)

// planTTL bounds how long a cached weekly plan survives without a mutation.
const planTTL = 24 * time.Hour

// RedisPlanCache caches the current weekly plan per user. All errors
// degrade to a miss; callers always fall through to the store.
type RedisPlanCache struct {
	client *redis.Client
}

// NewRedisPlanCache connects to Redis and verifies the connection.
func NewRedisPlanCache(redisHost, redisPort string) (*RedisPlanCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", redisHost, redisPort),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisPlanCache{client: client}, nil
}

func planKey(userID string) string {
	return fmt.Sprintf("user:%s:plan", userID)
}

// Get returns the cached plan for a user, if any.
func (c *RedisPlanCache) Get(ctx context.Context, userID string) (*domain.Plan, bool) {
	result := c.client.Get(ctx, planKey(userID))
	if result.Err() != nil {
		return nil, false
	}

	var plan domain.Plan
	if err := json.Unmarshal([]byte(result.Val()), &plan); err != nil {
		return nil, false
	}
	return &plan, true
}

// Set stores the plan under its user's key with the cache TTL.
func (c *RedisPlanCache) Set(ctx context.Context, plan *domain.Plan) {
	data, err := json.Marshal(plan)
	if err != nil {
		return
	}
	c.client.Set(ctx, planKey(plan.UserID), data, planTTL)
}

// Invalidate drops the cached plan for a user. Every plan mutation calls
// this before returning.
func (c *RedisPlanCache) Invalidate(ctx context.Context, userID string) {
	c.client.Del(ctx, planKey(userID))
}

// Close closes the Redis connection.
func (c *RedisPlanCache) Close() error {
	return c.client.Close()
}
