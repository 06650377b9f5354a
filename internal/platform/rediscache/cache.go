// Package rediscache provides the Redis-backed read-through cache for task
// listings.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Kamran-007-lab/task-management-api/internal/domain"
	"github.com/Kamran-007-lab/task-management-api/internal/platform/logger"
)

// listingKeyPrefix namespaces every listing key so invalidation can sweep
// them with a single pattern scan.
const listingKeyPrefix = "tasks:listing:"

// ErrCacheMiss is returned when no entry exists for the requested key.
var ErrCacheMiss = errors.New("cache miss")

// CachedListing is the value stored per listing key: one page of tasks plus
// the total row count the page was computed against.
type CachedListing struct {
	Tasks []domain.Task `json:"tasks"`
	Total int64         `json:"total"`
}

// ListingKey builds the canonical cache key for a listing page. Keys are
// derived only from pagination parameters, never from caller-supplied strings.
func ListingKey(page, pageSize int) string {
	return fmt.Sprintf("%sp%d:n%d", listingKeyPrefix, page, pageSize)
}

// ListingCache stores serialized task listing pages in Redis with a TTL
// backstop. Explicit invalidation on writes is the primary freshness
// mechanism; the TTL only bounds the damage if an invalidation is missed.
type ListingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewListingCache creates a ListingCache on top of an existing Redis client.
func NewListingCache(client *redis.Client, ttl time.Duration) *ListingCache {
	return &ListingCache{
		client: client,
		ttl:    ttl,
	}
}

// GetListing retrieves a cached listing page. Returns ErrCacheMiss when the
// key is absent.
func (c *ListingCache) GetListing(ctx context.Context, key string) (*CachedListing, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to read cached listing: %w", err)
	}

	var listing CachedListing
	if err := json.Unmarshal(data, &listing); err != nil {
		// A corrupt entry reads as a miss so the caller falls back to the
		// database and overwrites it.
		logger.FromContext(ctx).Warn("discarding unreadable cache entry", "key", key, "error", err)
		return nil, ErrCacheMiss
	}

	return &listing, nil
}

// SetListing stores a listing page under the given key with the configured TTL.
func (c *ListingCache) SetListing(ctx context.Context, key string, listing *CachedListing) error {
	data, err := json.Marshal(listing)
	if err != nil {
		return fmt.Errorf("failed to serialize listing for cache: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cached listing: %w", err)
	}

	return nil
}

// InvalidateListings removes every cached listing page. Any task mutation can
// change any page, so the whole namespace is swept.
func (c *ListingCache) InvalidateListings(ctx context.Context) error {
	log := logger.FromContext(ctx)

	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, listingKeyPrefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan listing keys: %w", err)
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete listing keys: %w", err)
			}
			deleted += len(keys)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	if deleted > 0 {
		log.Debug("invalidated cached task listings", "keys_deleted", deleted)
	}

	return nil
}
