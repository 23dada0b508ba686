package preference

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T, defaultSkip bool) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client, defaultSkip, zap.NewNop()), mr
}

func TestSkipRestrictedDefaults(t *testing.T) {
	store, _ := newTestStore(t, false)
	assert.False(t, store.SkipRestricted(context.Background()))

	store, _ = newTestStore(t, true)
	assert.True(t, store.SkipRestricted(context.Background()))
}

func TestSkipRestrictedRoundTrip(t *testing.T) {
	store, mr := newTestStore(t, false)
	ctx := context.Background()

	require.NoError(t, store.SetSkipRestricted(ctx, true))
	assert.True(t, store.SkipRestricted(ctx))

	val, err := mr.Get(skipRestrictedKey)
	require.NoError(t, err)
	assert.Equal(t, "true", val)

	require.NoError(t, store.SetSkipRestricted(ctx, false))
	assert.False(t, store.SkipRestricted(ctx))
}

func TestSkipRestrictedFallsBackOnBadData(t *testing.T) {
	store, mr := newTestStore(t, true)
	require.NoError(t, mr.Set(skipRestrictedKey, "maybe"))

	assert.True(t, store.SkipRestricted(context.Background()))
}

func TestSkipRestrictedFallsBackWhenRedisDown(t *testing.T) {
	store, mr := newTestStore(t, true)
	mr.Close()

	assert.True(t, store.SkipRestricted(context.Background()))
	assert.Error(t, store.SetSkipRestricted(context.Background(), false))
}

func TestStaticStore(t *testing.T) {
	store := NewStaticStore(true)
	assert.True(t, store.SkipRestricted(context.Background()))

	require.NoError(t, store.SetSkipRestricted(context.Background(), false))
	assert.False(t, store.SkipRestricted(context.Background()))
}
