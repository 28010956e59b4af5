package listings

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	redisclient "github.com/angelmondragon/wanderlust-backend/pkg/redis"
)

const cacheKind = "listing"

// DetailCache stores viewer independent listing details.
type DetailCache interface {
	Get(ctx context.Context, id uuid.UUID) (*ListingDetail, bool, error)
	Set(ctx context.Context, detail *ListingDetail) error
	Invalidate(ctx context.Context, id uuid.UUID) error
}

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CacheKey(kind, id string) string
}

// RedisCache is a read-through cache of listing details in redis.
type RedisCache struct {
	store cacheStore
	ttl   time.Duration
}

// NewRedisCache caches details under the client's cache namespace.
func NewRedisCache(client *redisclient.Client, ttl time.Duration) *RedisCache {
	return newRedisCache(client, ttl)
}

func newRedisCache(store cacheStore, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCache{store: store, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, id uuid.UUID) (*ListingDetail, bool, error) {
	raw, err := c.store.Get(ctx, c.store.CacheKey(cacheKind, id.String()))
	if err != nil {
		if redisclient.IsMiss(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var detail ListingDetail
	if err := json.Unmarshal([]byte(raw), &detail); err != nil {
		return nil, false, err
	}
	return &detail, true, nil
}

func (c *RedisCache) Set(ctx context.Context, detail *ListingDetail) error {
	if detail == nil {
		return nil
	}
	cached := *detail
	cached.IsLiked = false
	payload, err := json.Marshal(cached)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, c.store.CacheKey(cacheKind, detail.ID.String()), payload, c.ttl)
}

func (c *RedisCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	return c.store.Del(ctx, c.store.CacheKey(cacheKind, id.String()))
}
