package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/GTDGit/gtd_shop/internal/checkout"
)

// DraftCache keeps checkout snapshots in Redis between requests. Each save
// restarts the expiry.
type DraftCache struct {
	redis *RedisClient
	ttl   time.Duration
}

// NewDraftCache creates a new DraftCache.
func NewDraftCache(redis *RedisClient, ttl time.Duration) *DraftCache {
	return &DraftCache{redis: redis, ttl: ttl}
}

// keyByCheckoutID returns the Redis key for a checkout draft.
func (c *DraftCache) keyByCheckoutID(id string) string {
	return fmt.Sprintf("checkout:draft:%s", id)
}

// Load returns the stored snapshot or checkout.ErrSessionNotFound.
func (c *DraftCache) Load(ctx context.Context, id string) (*checkout.Snapshot, error) {
	jsonData, err := c.redis.Get(ctx, c.keyByCheckoutID(id))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, checkout.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get checkout draft: %w", err)
	}

	var snap checkout.Snapshot
	if err := json.Unmarshal([]byte(jsonData), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkout draft: %w", err)
	}
	return &snap, nil
}

// Save stores the snapshot.
func (c *DraftCache) Save(ctx context.Context, id string, snap *checkout.Snapshot) error {
	jsonData, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal checkout draft: %w", err)
	}
	if err := c.redis.Set(ctx, c.keyByCheckoutID(id), string(jsonData), c.ttl); err != nil {
		return fmt.Errorf("failed to set checkout draft: %w", err)
	}
	return nil
}

var _ checkout.DraftStore = (*DraftCache)(nil)
