package rediscache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kamran-007-lab/task-management-api/internal/domain"
)

const testTTL = 5 * time.Minute

func newTestCache(t *testing.T) (*ListingCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewListingCache(client, testTTL), mr
}

func sampleListing(t *testing.T) *CachedListing {
	t.Helper()

	task, err := domain.NewTask("Buy milk", nil, domain.TaskPriorityHigh, nil, uuid.New())
	require.NoError(t, err)

	return &CachedListing{
		Tasks: []domain.Task{*task},
		Total: 25,
	}
}

func TestListingKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "tasks:listing:p1:n10", ListingKey(1, 10))
	assert.Equal(t, "tasks:listing:p3:n25", ListingKey(3, 25))

	// Distinct pagination parameters must never collide.
	assert.NotEqual(t, ListingKey(1, 10), ListingKey(11, 0))
}

func TestGetListingMiss(t *testing.T) {
	cache, _ := newTestCache(t)

	listing, err := cache.GetListing(context.Background(), ListingKey(1, 10))

	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, listing)
}

func TestListingRoundTrip(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	key := ListingKey(1, 10)
	stored := sampleListing(t)

	require.NoError(t, cache.SetListing(ctx, key, stored))

	got, err := cache.GetListing(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, stored.Total, got.Total)
	require.Len(t, got.Tasks, 1)
	assert.Equal(t, stored.Tasks[0].ID, got.Tasks[0].ID)
	assert.Equal(t, stored.Tasks[0].Title, got.Tasks[0].Title)

	assert.Equal(t, testTTL, mr.TTL(key), "entries carry the configured TTL backstop")
}

func TestGetListingCorruptEntry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	key := ListingKey(1, 10)

	require.NoError(t, mr.Set(key, "{not json"))

	listing, err := cache.GetListing(ctx, key)
	assert.ErrorIs(t, err, ErrCacheMiss, "an unreadable entry reads as a miss")
	assert.Nil(t, listing)

	// The miss path overwrites the corrupt entry with a fresh one.
	require.NoError(t, cache.SetListing(ctx, key, sampleListing(t)))

	got, err := cache.GetListing(ctx, key)
	require.NoError(t, err)
	assert.EqualValues(t, 25, got.Total)
}

func TestInvalidateListings(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	// Well past a single SCAN batch so invalidation has to follow the cursor.
	for page := 1; page <= 250; page++ {
		require.NoError(t, cache.SetListing(ctx, ListingKey(page, 10), sampleListing(t)))
	}
	require.NoError(t, mr.Set("session:abc", "keep me"))

	require.NoError(t, cache.InvalidateListings(ctx))

	for _, page := range []int{1, 100, 250} {
		assert.False(t, mr.Exists(ListingKey(page, 10)), "listing key p%d should be swept", page)
	}
	assert.True(t, mr.Exists("session:abc"), "keys outside the listing namespace survive")
}

func TestInvalidateListingsEmptyNamespace(t *testing.T) {
	cache, _ := newTestCache(t)

	assert.NoError(t, cache.InvalidateListings(context.Background()))
}

func TestSetListingNilTasks(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()
	key := ListingKey(2, 10)

	require.NoError(t, cache.SetListing(ctx, key, &CachedListing{Tasks: nil, Total: 0}))

	got, err := cache.GetListing(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, got.Tasks)
	assert.Zero(t, got.Total)
}

func TestListingKeysAreIndependentPerPage(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	for page := 1; page <= 3; page++ {
		listing := sampleListing(t)
		listing.Tasks[0].Title = fmt.Sprintf("page %d task", page)
		require.NoError(t, cache.SetListing(ctx, ListingKey(page, 10), listing))
	}

	got, err := cache.GetListing(ctx, ListingKey(2, 10))
	require.NoError(t, err)
	assert.Equal(t, "page 2 task", got.Tasks[0].Title)
}
