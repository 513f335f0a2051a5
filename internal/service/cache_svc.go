package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache TTLs. Trending feeds are keyed by a time bucket of the same
// length, so a recompute happens at most once per bucket per limit.
const (
	TrustCacheTTL    = 5 * time.Minute
	TrendingCacheTTL = 5 * time.Minute
	ContentCacheTTL  = 5 * time.Minute
)

// CacheService provides a Redis cache-aside layer for trust lookups,
// trending feeds, and content reads.
type CacheService struct {
	rdb *redis.Client
}

// NewCacheService creates a new CacheService. If redisURL is empty or
// connection fails, it returns a CacheService with a nil client and
// all cache operations become no-ops.
func NewCacheService(redisURL string) *CacheService {
	if redisURL == "" {
		log.Println("redis: no URL configured, caching disabled")
		return &CacheService{}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("redis: invalid URL %q, caching disabled: %v", redisURL, err)
		return &CacheService{}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("redis: connection failed, caching disabled: %v", err)
		return &CacheService{}
	}

	log.Println("redis: connected, caching enabled")
	return &CacheService{rdb: rdb}
}

// Client returns the underlying Redis client (for health checks). May be nil.
func (c *CacheService) Client() *redis.Client {
	return c.rdb
}

func (c *CacheService) get(ctx context.Context, key string) ([]byte, error) {
	if c.rdb == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return data, err
}

func (c *CacheService) set(ctx context.Context, key string, data any, ttl time.Duration) error {
	if c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, ttl).Err()
}

// GetTrust retrieves a cached trust response for one (item, viewer)
// pair. Returns nil if not cached or cache is disabled.
func (c *CacheService) GetTrust(ctx context.Context, itemID, viewerID string) ([]byte, error) {
	return c.get(ctx, trustKey(itemID, viewerID))
}

// SetTrust stores a trust response. Valid until the endorsement set or
// social graph changes, bounded by TTL.
func (c *CacheService) SetTrust(ctx context.Context, itemID, viewerID string, data any) error {
	return c.set(ctx, trustKey(itemID, viewerID), data, TrustCacheTTL)
}

// GetTrending retrieves a cached trending feed for a time bucket.
func (c *CacheService) GetTrending(ctx context.Context, bucket int64, limit int) ([]byte, error) {
	return c.get(ctx, trendingKey(bucket, limit))
}

// SetTrending stores a computed trending feed.
func (c *CacheService) SetTrending(ctx context.Context, bucket int64, limit int, data any) error {
	return c.set(ctx, trendingKey(bucket, limit), data, TrendingCacheTTL)
}

// GetItem retrieves a cached content item. Returns nil on miss.
func (c *CacheService) GetItem(ctx context.Context, itemID string) ([]byte, error) {
	return c.get(ctx, itemKey(itemID))
}

// SetItem stores a content item response in cache.
func (c *CacheService) SetItem(ctx context.Context, itemID string, data any) error {
	return c.set(ctx, itemKey(itemID), data, ContentCacheTTL)
}

// InvalidateItem removes an item from cache (called after toggles and
// ledger recounts).
func (c *CacheService) InvalidateItem(ctx context.Context, itemID string) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, itemKey(itemID)).Err()
}

// Close shuts down the Redis connection.
func (c *CacheService) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func trustKey(itemID, viewerID string) string {
	return fmt.Sprintf("trust:%s:%s", itemID, viewerID)
}

func trendingKey(bucket int64, limit int) string {
	return fmt.Sprintf("trending:%d:%d", bucket, limit)
}

func itemKey(itemID string) string {
	return fmt.Sprintf("item:%s", itemID)
}
