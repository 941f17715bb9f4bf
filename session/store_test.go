package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewStore(rdb, "test"), mr
}

func TestStoreLifecycle(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	ok, err := store.CheckTokenExists(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.StoreToken(ctx, "token-a"))

	ok, err = store.CheckTokenExists(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.DeleteToken(ctx, "token-a"))

	ok, err = store.CheckTokenExists(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreKeysAreHashed(t *testing.T) {
	store, mr := newTestStore(t)
	token := "eyJhbGciOiJIUzI1NiJ9.secret-payload.signature"

	require.NoError(t, store.StoreToken(context.Background(), token))

	for _, key := range mr.Keys() {
		assert.NotContains(t, key, "secret-payload")
		assert.True(t, strings.HasPrefix(key, "test:"), "unexpected key %q", key)
	}
	assert.True(t, mr.Exists(store.tokenKey(token)))
}

func TestStoreCounterIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.StoreToken(ctx, "a"))
	require.NoError(t, store.StoreToken(ctx, "a"))
	require.NoError(t, store.StoreToken(ctx, "b"))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, store.DeleteToken(ctx, "a"))
	require.NoError(t, store.DeleteToken(ctx, "a"))
	require.NoError(t, store.DeleteToken(ctx, "never-stored"))

	n, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, store.DeleteToken(ctx, "b"))
	require.NoError(t, store.DeleteToken(ctx, "b"))

	n, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestStoreCounterNeverNegative(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.StoreToken(ctx, "a"))
	// Counter lost while the token survives, e.g. after a partial restore.
	mr.Del(store.countKey())

	require.NoError(t, store.DeleteToken(ctx, "a"))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.False(t, mr.Exists(store.countKey()))
}

func TestStoreConcurrent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.StoreToken(ctx, fmt.Sprintf("tok-%d", i)))
		}(i)
	}
	wg.Wait()

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(n), count)
}

func TestStoreLookup(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	_, ok, err := store.Lookup(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.StoreToken(ctx, "tok"))

	rec, ok, err := store.Lookup(ctx, "tok")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, fixed, rec.StoredAt)
}

func TestStoreLookupCorrupt(t *testing.T) {
	store, mr := newTestStore(t)
	require.NoError(t, mr.Set(store.tokenKey("tok"), "garbage"))

	_, _, err := store.Lookup(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrRecordCorrupt)
}

func TestStoreRedisDown(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()
	ctx := context.Background()

	_, err := store.CheckTokenExists(ctx, "tok")
	assert.ErrorIs(t, err, ErrRedisUnavailable)
	assert.ErrorIs(t, store.StoreToken(ctx, "tok"), ErrRedisUnavailable)
	assert.ErrorIs(t, store.DeleteToken(ctx, "tok"), ErrRedisUnavailable)
	_, err = store.Count(ctx)
	assert.ErrorIs(t, err, ErrRedisUnavailable)
}

func TestRecordEncoding(t *testing.T) {
	at := time.Unix(1_700_000_000, 0).UTC()
	raw, err := Record{StoredAt: at}.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, raw, recordSize)

	var rec Record
	require.NoError(t, rec.UnmarshalBinary(raw))
	assert.Equal(t, at, rec.StoredAt)

	raw[0] = 9
	assert.ErrorIs(t, rec.UnmarshalBinary(raw), ErrRecordCorrupt)
	assert.ErrorIs(t, rec.UnmarshalBinary(raw[:3]), ErrRecordCorrupt)
}
