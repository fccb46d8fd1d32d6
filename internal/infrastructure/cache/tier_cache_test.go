package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appbilling "github.com/dmflow/backend/internal/application/billing"
	"github.com/dmflow/backend/internal/domain/billing"
)

func setupTierCache(t *testing.T) (*TierCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTierCache(client, 5*time.Minute), mr
}

func resolvedFixture(t *testing.T) *appbilling.ResolvedTier {
	t.Helper()
	tier, err := billing.NewTier("Pro", billing.Limits{
		AIMessages: billing.Int64(2000),
		APIAccess:  billing.Bool(false),
	})
	require.NoError(t, err)
	return &appbilling.ResolvedTier{
		Tier:   tier,
		Limits: tier.Limits,
		Source: appbilling.TierSourceDirect,
	}
}

func TestTierCache_RoundTrip(t *testing.T) {
	cache, _ := setupTierCache(t)
	ctx := context.Background()
	userID := uuid.New()

	miss, err := cache.GetUserTier(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, miss)

	resolved := resolvedFixture(t)
	require.NoError(t, cache.SetUserTier(ctx, userID, resolved))

	hit, err := cache.GetUserTier(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, "Pro", hit.Tier.Name)
	assert.Equal(t, appbilling.TierSourceDirect, hit.Source)
	require.NotNil(t, hit.Limits.AIMessages)
	assert.Equal(t, int64(2000), *hit.Limits.AIMessages)
}

func TestTierCache_TTLExpires(t *testing.T) {
	cache, mr := setupTierCache(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, cache.SetUserTier(ctx, userID, resolvedFixture(t)))

	mr.FastForward(6 * time.Minute)

	hit, err := cache.GetUserTier(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, hit)
}

func TestTierCache_InvalidateUser(t *testing.T) {
	cache, _ := setupTierCache(t)
	ctx := context.Background()
	userID := uuid.New()
	otherID := uuid.New()

	require.NoError(t, cache.SetUserTier(ctx, userID, resolvedFixture(t)))
	require.NoError(t, cache.SetUserTier(ctx, otherID, resolvedFixture(t)))

	require.NoError(t, cache.InvalidateUser(ctx, userID))

	gone, err := cache.GetUserTier(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	kept, err := cache.GetUserTier(ctx, otherID)
	require.NoError(t, err)
	assert.NotNil(t, kept)
}

func TestTierCache_FlushDropsAllEntries(t *testing.T) {
	cache, mr := setupTierCache(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, cache.SetUserTier(ctx, uuid.New(), resolvedFixture(t)))
	}
	// Unrelated keys survive the flush.
	require.NoError(t, mr.Set("session:abc", "1"))

	require.NoError(t, cache.Flush(ctx))

	keys := mr.Keys()
	assert.Equal(t, []string{"session:abc"}, keys)
}

func TestTierCache_CorruptEntryIsAMiss(t *testing.T) {
	cache, mr := setupTierCache(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, mr.Set(tierKey(userID), "{not json"))

	hit, err := cache.GetUserTier(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, hit)
}
