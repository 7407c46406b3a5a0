package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, ttl time.Duration) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewSessionStore(client, ttl), mr
}

func TestSessionStore_Lifecycle(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	id, err := store.Create(ctx, 42)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.True(t, mr.Exists(SessionPrefix+id))

	sess, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint(42), sess.AccountID)

	require.NoError(t, store.Delete(ctx, id))
	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_Expiry(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	id, err := store.Create(ctx, 1)
	require.NoError(t, err)

	mr.FastForward(30 * time.Second)
	_, err = store.Get(ctx, id)
	require.NoError(t, err)

	// Get slides the expiry forward
	mr.FastForward(45 * time.Second)
	_, err = store.Get(ctx, id)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_UnknownIDs(t *testing.T) {
	store, _ := newTestStore(t, time.Minute)
	ctx := context.Background()

	_, err := store.Get(ctx, "")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = store.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.NoError(t, store.Delete(ctx, "nope"))
}

func TestCacheHelper_NilClient(t *testing.T) {
	h := NewCacheHelper(nil, "x:")
	ctx := context.Background()

	assert.ErrorIs(t, h.Set(ctx, "k", 1, time.Minute), ErrCacheNotAvailable)
	var v int
	assert.ErrorIs(t, h.Get(ctx, "k", &v), ErrCacheNotAvailable)
	assert.NoError(t, h.Delete(ctx, "k"))
}
