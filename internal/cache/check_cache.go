// Package cache provides a Redis read-through cache for the check history
// query. Keys embed a per-user version counter; bumping the counter on every
// new check invalidates all cached pages for that user without scanning keys.
package cache

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CheckHistoryCache caches serialized history responses per user and query.
// Redis failures degrade to cache misses; they never fail the request.
type CheckHistoryCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCheckHistoryCache creates a cache with the given entry TTL.
func NewCheckHistoryCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *CheckHistoryCache {
	return &CheckHistoryCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns the cached payload for the user's query, or ok=false on a miss.
func (c *CheckHistoryCache) Get(ctx context.Context, userID int64, query string) ([]byte, bool) {
	key, err := c.dataKey(ctx, userID, query)
	if err != nil {
		c.logger.Warn("check history cache unavailable", zap.Error(err))
		return nil, false
	}

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("check history cache read failed", zap.Error(err))
		return nil, false
	}
	return payload, true
}

// Set stores the payload for the user's query under the current version.
func (c *CheckHistoryCache) Set(ctx context.Context, userID int64, query string, payload []byte) {
	key, err := c.dataKey(ctx, userID, query)
	if err != nil {
		c.logger.Warn("check history cache unavailable", zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("check history cache write failed", zap.Error(err))
	}
}

// Invalidate bumps the user's version counter, orphaning every cached page of
// their history. Orphaned entries expire with their TTL.
func (c *CheckHistoryCache) Invalidate(ctx context.Context, userID int64) {
	if err := c.client.Incr(ctx, c.versionKey(userID)).Err(); err != nil {
		c.logger.Warn("check history cache invalidation failed", zap.Error(err))
	}
}

func (c *CheckHistoryCache) versionKey(userID int64) string {
	return fmt.Sprintf("checks:ver:%d", userID)
}

func (c *CheckHistoryCache) dataKey(ctx context.Context, userID int64, query string) (string, error) {
	version, err := c.client.Get(ctx, c.versionKey(userID)).Int64()
	if err == redis.Nil {
		version = 0
	} else if err != nil {
		return "", err
	}

	h := fnv.New64a()
	h.Write([]byte(query))
	return fmt.Sprintf("checks:data:%d:v%d:%x", userID, version, h.Sum64()), nil
}
