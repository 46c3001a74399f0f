package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/GTDGit/gtd_shop/internal/auth"
)

// RevocationCache records signed-out admin sessions in Redis.
type RevocationCache struct {
	redis *RedisClient
}

// NewRevocationCache creates a new RevocationCache.
func NewRevocationCache(redis *RedisClient) *RevocationCache {
	return &RevocationCache{redis: redis}
}

func (c *RevocationCache) key(jti string) string {
	return fmt.Sprintf("session:revoked:%s", jti)
}

// Revoke marks jti as signed out for ttl.
func (c *RevocationCache) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.redis.Set(ctx, c.key(jti), "1", ttl)
}

// IsRevoked reports whether jti was signed out.
func (c *RevocationCache) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return c.redis.Exists(ctx, c.key(jti))
}

var _ auth.RevocationStore = (*RevocationCache)(nil)
