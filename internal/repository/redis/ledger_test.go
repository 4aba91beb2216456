package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/errors"
)

func setupTestRedis(t *testing.T, ttl time.Duration) (*LedgerStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewLedgerStore(client, ttl), mr
}

const payload = `{"items":[],"coupon_code":"SPRING"}`

// ---------------------------------------------------------------------------
// Get
// ---------------------------------------------------------------------------

func TestLedgerStore_Get_Success(t *testing.T) {
	store, mr := setupTestRedis(t, time.Hour)
	require.NoError(t, mr.Set("cart:ledger:profile-1", payload))

	got, err := store.Get(context.Background(), "profile-1")
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(got))
}

func TestLedgerStore_Get_NotFound(t *testing.T) {
	store, _ := setupTestRedis(t, time.Hour)

	_, err := store.Get(context.Background(), "nobody")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLedgerStore_Get_ConnectionError(t *testing.T) {
	store, mr := setupTestRedis(t, time.Hour)
	mr.Close()

	_, err := store.Get(context.Background(), "profile-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
	assert.Contains(t, err.Error(), "redis get ledger")
}

// ---------------------------------------------------------------------------
// Put
// ---------------------------------------------------------------------------

func TestLedgerStore_Put_OverwritesAndSetsTTL(t *testing.T) {
	store, mr := setupTestRedis(t, 30*time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "profile-1", []byte(`{"items":[]}`)))
	require.NoError(t, store.Put(ctx, "profile-1", []byte(payload)))

	stored, err := mr.Get("cart:ledger:profile-1")
	require.NoError(t, err)
	assert.JSONEq(t, payload, stored)
	assert.Equal(t, 30*time.Minute, mr.TTL("cart:ledger:profile-1"))
}

func TestLedgerStore_Put_ExpiresAfterTTL(t *testing.T) {
	store, mr := setupTestRedis(t, time.Minute)
	require.NoError(t, store.Put(context.Background(), "profile-1", []byte(payload)))

	mr.FastForward(2 * time.Minute)

	_, err := store.Get(context.Background(), "profile-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// ---------------------------------------------------------------------------
// Delete / Ping
// ---------------------------------------------------------------------------

func TestLedgerStore_Delete(t *testing.T) {
	store, mr := setupTestRedis(t, time.Hour)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "profile-1", []byte(payload)))

	require.NoError(t, store.Delete(ctx, "profile-1"))
	assert.False(t, mr.Exists("cart:ledger:profile-1"))

	require.NoError(t, store.Delete(ctx, "profile-1"))
}

func TestLedgerStore_Ping(t *testing.T) {
	store, mr := setupTestRedis(t, time.Hour)
	assert.NoError(t, store.Ping(context.Background()))

	mr.Close()
	assert.Error(t, store.Ping(context.Background()))
}
